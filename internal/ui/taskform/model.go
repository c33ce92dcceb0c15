package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// TaskCreatedMsg is dispatched when a new task form is submitted.
type TaskCreatedMsg struct {
	Form model.TaskForm
}

// TaskUpdatedMsg is dispatched when an edit form is submitted.
type TaskUpdatedMsg struct {
	TaskID int
	Update model.TaskUpdate
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	isPublic    bool
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   int
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// StartCreate initializes the form for creating a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.fb.title = ""
	m.fb.description = ""
	m.fb.isPublic = false
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing task's fields.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editMode = true
	m.editID = task.ID
	m.fb.title = task.Title
	m.fb.description = task.Description
	m.fb.isPublic = task.IsPublic
	m.form = m.buildForm()
	return m.form.Init()
}

// buildForm assembles the huh form over the current bindings.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.fb.title).
				Validate(validateTitle),
			huh.NewText().
				Title("Description").
				Value(&m.fb.description).
				Validate(validateDescription),
			huh.NewConfirm().
				Title("Public?").
				Description("Public tasks can be discovered and followed by other users.").
				Value(&m.fb.isPublic),
		),
	).WithShowHelp(false)
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.editMode {
			title := strings.TrimSpace(m.fb.title)
			description := m.fb.description
			isPublic := m.fb.isPublic
			update := model.TaskUpdate{
				Title:       &title,
				Description: &description,
				IsPublic:    &isPublic,
			}
			editID := m.editID
			return m, func() tea.Msg {
				return TaskUpdatedMsg{TaskID: editID, Update: update}
			}
		}

		form := model.TaskForm{
			Title:       strings.TrimSpace(m.fb.title),
			Description: m.fb.description,
			IsPublic:    m.fb.isPublic,
		}
		return m, func() tea.Msg { return TaskCreatedMsg{Form: form} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := "New task"
	if m.editMode {
		title = "Edit task"
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(theme.HeaderStyle.Render(title) + "\n\n" + m.form.View())
}

func validateTitle(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("title is required")
	}
	if len(trimmed) > 200 {
		return fmt.Errorf("title must be at most 200 characters")
	}
	return nil
}

func validateDescription(value string) error {
	if len(value) > 1000 {
		return fmt.Errorf("description must be at most 1000 characters")
	}
	return nil
}
