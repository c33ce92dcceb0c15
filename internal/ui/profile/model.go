package profile

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// SubmittedMsg is dispatched when the profile form is completed.
type SubmittedMsg struct {
	Form model.ProfileForm
}

// CancelMsg is dispatched when the user abandons the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	fullName string
	email    string
}

// Model is the profile edit view.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	user   model.User
	width  int
	height int
}

// New creates a new profile view model.
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

// Start initializes the form with the current profile.
func (m *Model) Start(user model.User) tea.Cmd {
	m.user = user
	m.fb.fullName = user.FullName
	m.fb.email = user.Email
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&m.fb.fullName).
				Validate(validateFullName),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateEmail),
		),
	).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the profile view.
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
		// Send only the fields that changed.
		form := model.ProfileForm{}
		if name := strings.TrimSpace(m.fb.fullName); name != m.user.FullName {
			form.FullName = &name
		}
		if email := strings.TrimSpace(m.fb.email); email != m.user.Email {
			form.Email = &email
		}

		if form.FullName == nil && form.Email == nil {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		return m, func() tea.Msg { return SubmittedMsg{Form: form} }
	}

	return m, cmd
}

// View renders the profile form with account metadata.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.HeaderStyle.Render("Profile"))
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(fmt.Sprintf(
		"member since %s", m.user.CreatedAt.Format("2006-01-02"),
	)))
	b.WriteString("\n\n")

	if m.form != nil {
		b.WriteString(m.form.View())
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(b.String())
}

func validateFullName(value string) error {
	if len(strings.TrimSpace(value)) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func validateEmail(value string) error {
	trimmed := strings.TrimSpace(value)
	if !strings.Contains(trimmed, "@") || len(trimmed) < 3 {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}
