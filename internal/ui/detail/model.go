package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// Model is the task detail view: the task body plus its subscriber list,
// with ownership-gated actions handled by the root app.
type Model struct {
	task        *model.Task
	subscribers []model.User
	userID      int
	loading     bool
	viewport    viewport.Model
	width       int
	height      int
}

// New creates a new detail view model.
func New(width, height int) Model {
	vp := viewport.New(width, height-2)
	return Model{
		viewport: vp,
		width:    width,
		height:   height,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.refreshContent()
}

// SetUser records the current user for action gating.
func (m *Model) SetUser(userID int) {
	m.userID = userID
}

// SetLoading toggles the loading placeholder.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetTask replaces the displayed task.
func (m *Model) SetTask(task model.Task) {
	m.task = &task
	m.loading = false
	m.refreshContent()
}

// SetSubscribers replaces the displayed subscriber list.
func (m *Model) SetSubscribers(subscribers []model.User) {
	m.subscribers = subscribers
	m.refreshContent()
}

// Task returns the currently displayed task.
func (m Model) Task() (model.Task, bool) {
	if m.task == nil {
		return model.Task{}, false
	}
	return *m.task, true
}

// CanEdit reports whether the current user owns the displayed task.
func (m Model) CanEdit() bool {
	return m.task != nil && m.task.CanEdit(m.userID)
}

// CanSubscribe reports whether the current user may follow the displayed
// task. Private tasks and the user's own tasks are never subscribable.
func (m Model) CanSubscribe() bool {
	return m.task != nil && m.task.CanSubscribe(m.userID)
}

// IsSubscribed reports whether the current user appears in the loaded
// subscriber list.
func (m Model) IsSubscribed() bool {
	for _, u := range m.subscribers {
		if u.ID == m.userID {
			return true
		}
	}
	return false
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail panel.
func (m Model) View() string {
	if m.loading {
		return theme.HelpStyle.Render("loading task...")
	}
	if m.task == nil {
		return theme.HelpStyle.Render("no task selected")
	}
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(m.viewport.View())
}

// refreshContent re-renders the viewport body from the current task.
func (m *Model) refreshContent() {
	if m.task == nil {
		return
	}
	m.viewport.SetContent(m.renderBody())
}

// renderBody formats the task, its metadata, and its subscribers.
func (m Model) renderBody() string {
	t := m.task
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render(t.Title))
	b.WriteString("\n\n")

	status := "open"
	if t.IsCompleted {
		status = "completed"
	}
	b.WriteString(theme.CompletionStyle(t.IsCompleted).Render(status))
	if t.IsPublic {
		b.WriteString(theme.VisibilityStyle(true).Render("public"))
	} else {
		b.WriteString(theme.VisibilityStyle(false).Render("private"))
	}
	b.WriteString("\n\n")

	if t.Description != "" {
		b.WriteString(t.Description)
		b.WriteString("\n\n")
	}

	owner := t.Owner.FullName
	if owner == "" {
		owner = t.Owner.Email
	}
	b.WriteString(theme.HelpStyle.Render(fmt.Sprintf(
		"owner: %s, updated %s",
		owner,
		t.UpdatedAt.Format("2006-01-02 15:04"),
	)))
	b.WriteString("\n\n")

	if t.IsPublic {
		b.WriteString(theme.HeaderStyle.Render(
			fmt.Sprintf("Subscribers (%d)", len(m.subscribers)),
		))
		b.WriteString("\n")
		if len(m.subscribers) == 0 {
			b.WriteString(theme.HelpStyle.Render("no subscribers yet"))
		}
		for _, u := range m.subscribers {
			name := u.FullName
			if name == "" {
				name = u.Email
			}
			marker := ""
			if u.ID == m.userID {
				marker = " (you)"
			}
			b.WriteString("  • " + name + marker + "\n")
		}
	}

	return b.String()
}
