package authview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// LoginSubmittedMsg is dispatched when the login form is completed.
type LoginSubmittedMsg struct {
	Form model.LoginForm
}

// RegisterSubmittedMsg is dispatched when the registration form is completed.
type RegisterSubmittedMsg struct {
	Form model.RegisterForm
}

// mode selects which form is shown.
type mode int

const (
	modeLogin mode = iota
	modeRegister
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	email    string
	password string
	fullName string
}

// Model is the Bubble Tea model for the login/registration screen.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	mode     mode
	errorMsg string
	width    int
	height   int
}

// New creates a new auth view model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init starts the login form.
func (m *Model) Init() tea.Cmd {
	return m.startLogin()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetError shows a failure message above the form, typically a rejected
// login or registration.
func (m *Model) SetError(message string) tea.Cmd {
	m.errorMsg = message
	// Rebuild the form so the user can retype credentials.
	if m.mode == modeRegister {
		return m.startRegister()
	}
	return m.startLogin()
}

// startLogin initializes the login form.
func (m *Model) startLogin() tea.Cmd {
	m.mode = modeLogin
	m.fb.password = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
		),
	).WithShowHelp(false)
	return m.form.Init()
}

// startRegister initializes the registration form.
func (m *Model) startRegister() tea.Cmd {
	m.mode = modeRegister
	m.fb.password = ""
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
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
		),
	).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the auth view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+t" {
		// Switch between login and registration.
		m.errorMsg = ""
		if m.mode == modeLogin {
			return m, m.startRegister()
		}
		return m, m.startLogin()
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.errorMsg = ""
		if m.mode == modeRegister {
			form := model.RegisterForm{
				FullName: strings.TrimSpace(m.fb.fullName),
				Email:    strings.TrimSpace(m.fb.email),
				Password: m.fb.password,
			}
			return m, func() tea.Msg { return RegisterSubmittedMsg{Form: form} }
		}
		form := model.LoginForm{
			Email:    strings.TrimSpace(m.fb.email),
			Password: m.fb.password,
		}
		return m, func() tea.Msg { return LoginSubmittedMsg{Form: form} }
	}

	return m, cmd
}

// View renders the auth screen.
func (m Model) View() string {
	var b strings.Builder

	title := "Sign in to taskhub"
	hint := "ctrl+t switch to registration"
	if m.mode == modeRegister {
		title = "Create a taskhub account"
		hint = "ctrl+t switch to sign in"
	}

	b.WriteString(theme.HeaderStyle.Render(title))
	b.WriteString("\n\n")

	if m.errorMsg != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errorMsg))
		b.WriteString("\n\n")
	}

	if m.form != nil {
		b.WriteString(m.form.View())
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(hint))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Render(b.String())
}

func validateEmail(value string) error {
	trimmed := strings.TrimSpace(value)
	if !strings.Contains(trimmed, "@") || len(trimmed) < 3 {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}

func validatePassword(value string) error {
	if len(value) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

func validateFullName(value string) error {
	if len(strings.TrimSpace(value)) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}
