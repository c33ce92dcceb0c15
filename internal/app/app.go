package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskhub/internal/keys"
	"github.com/nhle/taskhub/internal/mutation"
	"github.com/nhle/taskhub/internal/query"
	"github.com/nhle/taskhub/internal/session"
	appsync "github.com/nhle/taskhub/internal/sync"
	"github.com/nhle/taskhub/internal/ui"
	"github.com/nhle/taskhub/internal/ui/authview"
	"github.com/nhle/taskhub/internal/ui/detail"
	"github.com/nhle/taskhub/internal/ui/helpview"
	"github.com/nhle/taskhub/internal/ui/notifications"
	"github.com/nhle/taskhub/internal/ui/profile"
	"github.com/nhle/taskhub/internal/ui/subscriptions"
	"github.com/nhle/taskhub/internal/ui/taskform"
	"github.com/nhle/taskhub/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewList
	ViewDetail
	ViewTaskForm
	ViewNotifications
	ViewSubscriptions
	ViewProfile
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, the
// session lifecycle, and the notification poller.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	session   *session.Controller
	queries   *query.Queries
	mutations *mutation.Mutations
	poller    *appsync.Poller
	sessionCh chan session.State

	authView     authview.Model
	taskList     tasklist.Model
	detailView   detail.Model
	taskFormView taskform.Model
	notifView    notifications.Model
	subsView     subscriptions.Model
	profileView  profile.Model
	helpView     helpview.Model

	ready       bool
	unreadCount int
	statusMsg   string
	errorMsg    string
}

// New creates the root application model.
func New(
	ctrl *session.Controller,
	q *query.Queries,
	m *mutation.Mutations,
	poller *appsync.Poller,
	pageSize int,
) Model {
	k := keys.DefaultKeyMap()

	// Observers run sequentially, so there is a single writer. The UI
	// only needs where the session ended up: when it is not draining,
	// replace the undelivered state rather than dropping the newest one.
	sessionCh := make(chan session.State, 1)
	ctrl.Subscribe(func(state session.State) {
		for {
			select {
			case sessionCh <- state:
				return
			default:
				select {
				case <-sessionCh:
				default:
				}
			}
		}
	})

	return Model{
		currentView:  ViewAuth,
		keys:         k,
		session:      ctrl,
		queries:      q,
		mutations:    m,
		poller:       poller,
		sessionCh:    sessionCh,
		authView:     authview.New(80, 24),
		taskList:     tasklist.New(q, k, pageSize, 80, 24),
		detailView:   detail.New(80, 24),
		taskFormView: taskform.New(80, 24),
		notifView:    notifications.New(k, pageSize, 80, 24),
		subsView:     subscriptions.New(k, 80, 24),
		profileView:  profile.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
	}
}

// Init rehydrates the stored session and starts listening for session
// transitions.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.rehydrate(),
		m.waitForSessionChange(),
		m.authView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.authView.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.detailView.SetSize(w, h)
		m.taskFormView.SetSize(w, h)
		m.notifView.SetSize(w, h)
		m.subsView.SetSize(w, h)
		m.profileView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to the active view so huh forms can size themselves.
		return m.updateActiveView(msg)

	case rehydratedMsg:
		if msg.authenticated {
			return m.enterAuthenticated()
		}
		m.currentView = ViewAuth
		return m, nil

	case sessionChangedMsg:
		cmd := m.waitForSessionChange()
		// A transition to anonymous from anywhere (logout, expired or
		// rejected token) drops back to the auth screen.
		if msg.state == session.StateAnonymous && m.currentView != ViewAuth {
			m.poller.Stop()
			m.unreadCount = 0
			m.currentView = ViewAuth
			m.errorMsg = ""
			return m, tea.Batch(cmd, m.authView.Init())
		}
		return m, cmd

	case authview.LoginSubmittedMsg:
		m.errorMsg = ""
		return m, m.login(msg.Form)

	case authview.RegisterSubmittedMsg:
		m.errorMsg = ""
		return m, m.register(msg.Form)

	case authResultMsg:
		if msg.err != nil {
			return m, m.authView.SetError(errorText(msg.err))
		}
		return m.enterAuthenticated()

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetLoading(true)
		return m, tea.Batch(
			m.loadTask(msg.TaskID),
			m.loadSubscribers(msg.TaskID),
		)

	case tasklist.LoadFailedMsg:
		m.errorMsg = errorText(msg.Err)
		return m, nil

	case taskLoadedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			m.currentView = ViewList
			return m, nil
		}
		m.detailView.SetTask(msg.task)
		return m, nil

	case subscribersLoadedMsg:
		if msg.err == nil {
			m.detailView.SetSubscribers(msg.subscribers)
		}
		return m, nil

	case taskform.TaskCreatedMsg:
		return m, m.createTask(msg.Form)

	case taskform.TaskUpdatedMsg:
		return m, m.updateTask(msg.TaskID, msg.Update)

	case taskform.CancelMsg, profile.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case taskSavedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "task saved"
		m.currentView = ViewList
		return m, m.taskList.LoadTasks()

	case taskMutatedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			return m, nil
		}
		m.statusMsg = msg.status
		// Invalidation has already happened; refetch what is on screen.
		cmds := []tea.Cmd{m.taskList.LoadTasks()}
		if m.currentView == ViewDetail && msg.taskID > 0 {
			cmds = append(cmds,
				m.loadTask(msg.taskID),
				m.loadSubscribers(msg.taskID),
			)
		}
		if msg.closeDetail {
			m.currentView = ViewList
		}
		return m, tea.Batch(cmds...)

	case subscriptions.OpenTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetLoading(true)
		return m, tea.Batch(
			m.loadTask(msg.TaskID),
			m.loadSubscribers(msg.TaskID),
		)

	case subscriptions.UnsubscribeRequestMsg:
		return m, m.unsubscribe(msg.TaskID)

	case subscriptionsLoadedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			return m, nil
		}
		var cmd tea.Cmd
		m.subsView, cmd = m.subsView.Update(subscriptions.LoadedMsg{
			Subscriptions: msg.subscriptions,
		})
		return m, cmd

	case notifications.MarkReadRequestMsg:
		return m, m.markNotificationRead(msg.NotificationID)

	case notifications.MarkAllReadRequestMsg:
		return m, m.markAllNotificationsRead()

	case notifications.DeleteRequestMsg:
		return m, m.deleteNotification(msg.NotificationID)

	case notifications.FilterChangedMsg:
		return m, m.loadNotifications(msg.Filters)

	case notificationsLoadedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			return m, nil
		}
		var cmd tea.Cmd
		m.notifView, cmd = m.notifView.Update(notifications.LoadedMsg{
			Filters: msg.filters,
			Page:    msg.page,
		})
		return m, cmd

	case notificationMutatedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			return m, nil
		}
		return m, tea.Batch(
			m.loadNotifications(m.notifView.Filters()),
			m.fetchUnreadCount(),
		)

	case profile.SubmittedMsg:
		return m, m.updateProfile(msg.Form)

	case profileSavedMsg:
		if msg.err != nil {
			m.errorMsg = errorText(msg.err)
			return m, nil
		}
		m.statusMsg = "profile updated"
		m.currentView = m.previousView
		return m, nil

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case appsync.ResultMsg:
		waitCmd := m.poller.WaitForNextResult()
		if msg.Err != nil {
			// Auth failures already routed through the session controller.
			return m, waitCmd
		}
		m.unreadCount = msg.Unread
		if m.currentView == ViewNotifications {
			return m, tea.Batch(
				waitCmd,
				m.loadNotifications(m.notifView.Filters()),
			)
		}
		return m, waitCmd

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// enterAuthenticated switches into the task list and starts polling.
func (m Model) enterAuthenticated() (tea.Model, tea.Cmd) {
	if user := m.session.CurrentUser(); user != nil {
		m.taskList.SetUser(user.ID)
		m.detailView.SetUser(user.ID)
	}
	m.currentView = ViewList
	m.statusMsg = ""
	m.errorMsg = ""
	return m, tea.Batch(
		m.taskList.LoadTasks(),
		m.poller.Start(),
	)
}

// handleGlobalKeys processes keys that switch views or end the session.
// Forms and search input keep every keystroke to themselves.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if m.inputCaptured() {
		return false, m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.poller.Stop()
		return true, m, tea.Quit

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return true, m, nil

	case "esc":
		if m.currentView == ViewList || m.currentView == ViewAuth {
			return false, m, nil
		}
		m.currentView = m.previousView
		if m.currentView == ViewDetail {
			// Returning to a detail view whose task may have changed.
			if task, ok := m.detailView.Task(); ok {
				return true, m, tea.Batch(
					m.loadTask(task.ID),
					m.loadSubscribers(task.ID),
				)
			}
		}
		return true, m, nil

	case "N":
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return true, m, m.loadNotifications(m.notifView.Filters())

	case "S":
		m.previousView = m.currentView
		m.currentView = ViewSubscriptions
		return true, m, m.loadSubscriptions()

	case "P":
		if user := m.session.CurrentUser(); user != nil {
			m.previousView = m.currentView
			m.currentView = ViewProfile
			return true, m, m.profileView.Start(*user)
		}
		return true, m, nil

	case "Q":
		return true, m, m.logout()

	case "n":
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewTaskForm
			return true, m, m.taskFormView.StartCreate()
		}

	case "e":
		if m.currentView == ViewDetail && m.detailView.CanEdit() {
			if task, ok := m.detailView.Task(); ok {
				m.previousView = m.currentView
				m.currentView = ViewTaskForm
				return true, m, m.taskFormView.StartEdit(task)
			}
		}

	case "x":
		if m.currentView == ViewDetail && m.detailView.CanEdit() {
			if task, ok := m.detailView.Task(); ok {
				return true, m, m.toggleTask(task.ID, !task.IsCompleted)
			}
		}
		if m.currentView == ViewList {
			if task, ok := m.taskList.SelectedTask(); ok {
				if user := m.session.CurrentUser(); user != nil && task.CanEdit(user.ID) {
					return true, m, m.toggleTask(task.ID, !task.IsCompleted)
				}
			}
		}

	case "d":
		if m.currentView == ViewDetail && m.detailView.CanEdit() {
			if task, ok := m.detailView.Task(); ok {
				return true, m, m.deleteTask(task.ID)
			}
		}

	case "s":
		// Subscribe is offered only for public tasks owned by others.
		if m.currentView == ViewDetail &&
			m.detailView.CanSubscribe() && !m.detailView.IsSubscribed() {
			if task, ok := m.detailView.Task(); ok {
				return true, m, m.subscribe(task.ID)
			}
		}

	case "u":
		if m.currentView == ViewDetail && m.detailView.IsSubscribed() {
			if task, ok := m.detailView.Task(); ok {
				return true, m, m.unsubscribe(task.ID)
			}
		}
	}

	return false, m, nil
}

// inputCaptured reports whether the active view owns all keystrokes.
func (m Model) inputCaptured() bool {
	switch m.currentView {
	case ViewAuth, ViewTaskForm, ViewProfile:
		return true
	case ViewList:
		return m.taskList.SearchActive()
	default:
		return false
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.authView, cmd = m.authView.Update(msg)
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewTaskForm:
		m.taskFormView, cmd = m.taskFormView.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewSubscriptions:
		m.subsView, cmd = m.subsView.Update(msg)
	case ViewProfile:
		m.profileView, cmd = m.profileView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerTitle returns the title with the unread badge when relevant.
func (m Model) headerTitle() string {
	if m.unreadCount > 0 {
		return fmt.Sprintf("taskhub [%d unread]", m.unreadCount)
	}
	return "taskhub"
}

// headerStatus describes the session for the header's right side.
func (m Model) headerStatus() string {
	user := m.session.CurrentUser()
	if user == nil {
		return "signed out"
	}
	if user.FullName != "" {
		return user.FullName
	}
	return user.Email
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAuth:
		return m.authView.View()
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewTaskForm:
		return m.taskFormView.View()
	case ViewNotifications:
		return m.notifView.View()
	case ViewSubscriptions:
		return m.subsView.View()
	case ViewProfile:
		return m.profileView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// statusLine returns the status bar content: errors first, then view
// hints.
func (m Model) statusLine() string {
	if m.errorMsg != "" {
		return "error: " + m.errorMsg
	}
	if m.statusMsg != "" {
		return m.statusMsg
	}

	switch m.currentView {
	case ViewAuth:
		return "enter submit | ctrl+t switch mode"
	case ViewDetail:
		hints := "esc back"
		if m.detailView.CanEdit() {
			hints += " | e edit | x toggle | d delete"
		}
		if m.detailView.CanSubscribe() {
			if m.detailView.IsSubscribed() {
				hints += " | u unsubscribe"
			} else {
				hints += " | s subscribe"
			}
		}
		return hints
	case ViewTaskForm, ViewProfile:
		return "enter submit | esc cancel"
	case ViewNotifications:
		return "m mark read | M mark all | d delete | f unread only | esc back"
	case ViewSubscriptions:
		return "enter open | u unsubscribe | esc back"
	case ViewHelp:
		return "? close help"
	default:
		if summary := m.taskList.FilterSummary(); summary != "" {
			return summary + " | c clear"
		}
		return "q quit | ? help | n new | / search | tab scope | N notifications | S subscriptions"
	}
}
