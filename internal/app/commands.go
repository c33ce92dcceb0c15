package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/session"
)

// rehydratedMsg reports the outcome of startup session rehydration.
type rehydratedMsg struct {
	authenticated bool
}

// sessionChangedMsg carries a session state transition into the UI loop.
type sessionChangedMsg struct {
	state session.State
}

// authResultMsg reports a login or registration attempt.
type authResultMsg struct {
	err error
}

// taskLoadedMsg carries a fetched task detail.
type taskLoadedMsg struct {
	task model.Task
	err  error
}

// subscribersLoadedMsg carries a fetched subscriber list.
type subscribersLoadedMsg struct {
	subscribers []model.User
	err         error
}

// taskSavedMsg reports a create or update through the task form.
type taskSavedMsg struct {
	err error
}

// taskMutatedMsg reports any other task write (toggle, delete,
// subscribe, unsubscribe).
type taskMutatedMsg struct {
	taskID      int
	status      string
	closeDetail bool
	err         error
}

// subscriptionsLoadedMsg carries the fetched subscription list.
type subscriptionsLoadedMsg struct {
	subscriptions []model.Subscription
	err           error
}

// notificationsLoadedMsg carries a fetched notification page, tagged
// with the filters the fetch was issued for.
type notificationsLoadedMsg struct {
	page    model.Page[model.Notification]
	filters model.NotificationFilters
	err     error
}

// notificationMutatedMsg reports a notification write.
type notificationMutatedMsg struct {
	err error
}

// profileSavedMsg reports a profile update.
type profileSavedMsg struct {
	err error
}

// unreadCountMsg carries the unread notification count.
type unreadCountMsg struct {
	count int
}

// errorText extracts the user-facing message from an error chain,
// preferring the backend-supplied message.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// rehydrate resolves the stored session at startup.
func (m Model) rehydrate() tea.Cmd {
	ctrl := m.session
	return func() tea.Msg {
		// A failure here just means anonymous; the error is not shown.
		_ = ctrl.Rehydrate(context.Background())
		return rehydratedMsg{
			authenticated: ctrl.State() == session.StateAuthenticated,
		}
	}
}

// waitForSessionChange blocks on the next session transition.
func (m Model) waitForSessionChange() tea.Cmd {
	ch := m.sessionCh
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg{state: state}
	}
}

func (m Model) login(form model.LoginForm) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		_, err := muts.Login(context.Background(), form)
		return authResultMsg{err: err}
	}
}

func (m Model) register(form model.RegisterForm) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		_, err := muts.Register(context.Background(), form)
		return authResultMsg{err: err}
	}
}

// logout ends the session. It never fails; the session transition it
// triggers moves the UI back to the auth screen.
func (m Model) logout() tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		muts.Logout(context.Background())
		return nil
	}
}

func (m Model) loadTask(taskID int) tea.Cmd {
	q := m.queries
	return func() tea.Msg {
		task, err := q.Task(context.Background(), taskID)
		return taskLoadedMsg{task: task, err: err}
	}
}

func (m Model) loadSubscribers(taskID int) tea.Cmd {
	q := m.queries
	return func() tea.Msg {
		subscribers, err := q.TaskSubscribers(context.Background(), taskID)
		return subscribersLoadedMsg{subscribers: subscribers, err: err}
	}
}

func (m Model) loadSubscriptions() tea.Cmd {
	q := m.queries
	return func() tea.Msg {
		subs, err := q.Subscriptions(context.Background())
		return subscriptionsLoadedMsg{subscriptions: subs, err: err}
	}
}

func (m Model) loadNotifications(filters model.NotificationFilters) tea.Cmd {
	q := m.queries
	return func() tea.Msg {
		page, err := q.Notifications(context.Background(), filters)
		return notificationsLoadedMsg{page: page, filters: filters, err: err}
	}
}

func (m Model) fetchUnreadCount() tea.Cmd {
	q := m.queries
	return func() tea.Msg {
		unread, err := q.UnreadCount(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: unread.Count}
	}
}

func (m Model) createTask(form model.TaskForm) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		_, err := muts.CreateTask(context.Background(), form)
		return taskSavedMsg{err: err}
	}
}

func (m Model) updateTask(taskID int, update model.TaskUpdate) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		_, err := muts.UpdateTask(context.Background(), taskID, update)
		return taskSavedMsg{err: err}
	}
}

func (m Model) toggleTask(taskID int, isCompleted bool) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		task, err := muts.ToggleTaskCompletion(
			context.Background(), taskID, isCompleted,
		)
		status := "task reopened"
		if err == nil && task.IsCompleted {
			status = "task completed"
		}
		return taskMutatedMsg{taskID: taskID, status: status, err: err}
	}
}

func (m Model) deleteTask(taskID int) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		err := muts.DeleteTask(context.Background(), taskID)
		return taskMutatedMsg{
			taskID:      taskID,
			status:      "task deleted",
			closeDetail: true,
			err:         err,
		}
	}
}

func (m Model) subscribe(taskID int) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		err := muts.Subscribe(context.Background(), taskID)
		return taskMutatedMsg{taskID: taskID, status: "subscribed", err: err}
	}
}

func (m Model) unsubscribe(taskID int) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		err := muts.Unsubscribe(context.Background(), taskID)
		return taskMutatedMsg{taskID: taskID, status: "unsubscribed", err: err}
	}
}

func (m Model) markNotificationRead(id int) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		err := muts.MarkNotificationRead(context.Background(), id)
		return notificationMutatedMsg{err: err}
	}
}

func (m Model) markAllNotificationsRead() tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		err := muts.MarkAllNotificationsRead(context.Background())
		return notificationMutatedMsg{err: err}
	}
}

func (m Model) deleteNotification(id int) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		err := muts.DeleteNotification(context.Background(), id)
		return notificationMutatedMsg{err: err}
	}
}

func (m Model) updateProfile(form model.ProfileForm) tea.Cmd {
	muts := m.mutations
	return func() tea.Msg {
		_, err := muts.UpdateProfile(context.Background(), form)
		return profileSavedMsg{err: err}
	}
}
