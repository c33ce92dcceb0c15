package tasklist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskhub/internal/keys"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/query"
	"github.com/nhle/taskhub/internal/theme"
)

// Scope selects which task list endpoint backs the view.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
	ScopePublic
)

func (s Scope) String() string {
	switch s {
	case ScopeMine:
		return "mine"
	case ScopePublic:
		return "public"
	default:
		return "all"
	}
}

// TasksLoadedMsg is sent when a page of tasks has been fetched. It
// carries the scope and filters the fetch was issued for, so a response
// for state the user has already left is never applied.
type TasksLoadedMsg struct {
	Scope   Scope
	Filters model.TaskFilters
	Page    model.Page[model.Task]
}

// LoadFailedMsg is sent when a fetch fails.
type LoadFailedMsg struct {
	Err error
}

// SelectedTaskMsg is sent when the user opens a task's detail view.
type SelectedTaskMsg struct {
	TaskID int
}

// Model is the task list view with scope tabs, search, completion
// filtering, and pagination.
type Model struct {
	list        list.Model
	queries     *query.Queries
	keys        *keys.KeyMap
	scope       Scope
	filters     model.TaskFilters
	page        model.Page[model.Task]
	userID      int
	searchMode  bool
	searchInput textinput.Model
	loading     bool
	width       int
	height      int
}

// New creates a new task list model.
func New(q *query.Queries, k *keys.KeyMap, pageSize, width, height int) Model {
	delegate := TaskDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-3)
	l.Title = "Tasks"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		queries:     q,
		keys:        k,
		scope:       ScopeAll,
		filters:     model.TaskFilters{Page: 1, Limit: pageSize},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial page.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}

// SetUser records the current user for ownership labels and gating.
func (m *Model) SetUser(userID int) {
	m.userID = userID
}

// SelectedTask returns the task under the cursor.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Scope returns the active list scope.
func (m Model) Scope() Scope {
	return m.scope
}

// SearchActive reports whether the search input owns keystrokes.
func (m Model) SearchActive() bool {
	return m.searchMode
}

// LoadTasks returns a command that fetches the current scope and filters.
func (m Model) LoadTasks() tea.Cmd {
	q := m.queries
	scope := m.scope
	filters := m.filters
	return func() tea.Msg {
		ctx := context.Background()

		var (
			page model.Page[model.Task]
			err  error
		)
		switch scope {
		case ScopeMine:
			page, err = q.MyTasks(ctx, filters)
		case ScopePublic:
			page, err = q.PublicTasks(ctx, filters)
		default:
			page, err = q.Tasks(ctx, filters)
		}
		if err != nil {
			return LoadFailedMsg{Err: err}
		}
		return TasksLoadedMsg{Scope: scope, Filters: filters, Page: page}
	}
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if msg.Scope != m.scope || msg.Filters != m.filters {
			// A response for a scope or filter the user has already left.
			return m, nil
		}
		m.loading = false
		m.page = msg.Page
		items := make([]list.Item, len(msg.Page.Data))
		for i, task := range msg.Page.Data {
			items[i] = TaskItem{Task: task, CurrentUserID: m.userID}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case LoadFailedMsg:
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filters.Search = m.searchInput.Value()
		m.filters.Page = 1
		return m.reload()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filters.Search = ""
		m.filters.Page = 1
		return m.reload()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NextScope):
		m.scope = (m.scope + 1) % 3
		m.filters.Page = 1
		return m.reload()

	case key.Matches(msg, m.keys.FilterCompleted):
		m.filters.IsCompleted = cycleBoolFilter(m.filters.IsCompleted)
		m.filters.Page = 1
		return m.reload()

	case key.Matches(msg, m.keys.NextPage):
		if m.filters.Page < m.page.TotalPages {
			m.filters.Page++
			return m.reload()
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		if m.filters.Page > 1 {
			m.filters.Page--
			return m.reload()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.reload()

	case key.Matches(msg, m.keys.Select):
		if task, ok := m.SelectedTask(); ok {
			taskID := task.ID
			return m, func() tea.Msg { return SelectedTaskMsg{TaskID: taskID} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// reload marks the view loading and issues a fetch for the current state.
func (m Model) reload() (Model, tea.Cmd) {
	m.loading = true
	return m, m.LoadTasks()
}

// FilterSummary describes the active filters for the status bar.
func (m Model) FilterSummary() string {
	summary := ""
	if m.filters.Search != "" {
		summary += fmt.Sprintf("search: %q ", m.filters.Search)
	}
	if m.filters.IsCompleted != nil {
		if *m.filters.IsCompleted {
			summary += "completed only "
		} else {
			summary += "open only "
		}
	}
	return summary
}

// View renders the task list with its scope tabs and pagination line.
func (m Model) View() string {
	if m.searchMode {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderTabs(),
			m.searchInput.View(),
			m.list.View(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTabs(),
		m.list.View(),
		m.renderPagination(),
	)
}

// renderTabs renders the all/mine/public scope tabs.
func (m Model) renderTabs() string {
	tabs := make([]string, 0, 3)
	for _, s := range []Scope{ScopeAll, ScopeMine, ScopePublic} {
		style := theme.TabStyle
		if s == m.scope {
			style = theme.ActiveTabStyle
		}
		tabs = append(tabs, style.Render(s.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderPagination renders the page indicator line.
func (m Model) renderPagination() string {
	if m.loading {
		return theme.HelpStyle.Render("loading...")
	}
	if m.page.TotalPages <= 1 {
		return theme.HelpStyle.Render(fmt.Sprintf("%d tasks", m.page.Total))
	}
	return theme.HelpStyle.Render(fmt.Sprintf(
		"page %d/%d (%d tasks)", m.page.Page, m.page.TotalPages, m.page.Total,
	))
}

// cycleBoolFilter steps nil → true → false → nil.
func cycleBoolFilter(current *bool) *bool {
	switch {
	case current == nil:
		v := true
		return &v
	case *current:
		v := false
		return &v
	default:
		return nil
	}
}
