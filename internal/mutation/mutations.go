// Package mutation implements the write bindings. Each binding calls the
// backend and, on success, invalidates exactly the cache entries the
// operation can have affected, before the success is reported, so a
// subsequent read is guaranteed to refetch. Failures leave the cache
// untouched. No binding writes a response into the cache speculatively:
// correctness favors a round trip over rollback.
package mutation

import (
	"context"
	"fmt"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/credential"
	"github.com/nhle/taskhub/internal/model"
)

// SessionWriter is what the mutation layer needs from the session
// controller: establishing and tearing down the authenticated identity.
type SessionWriter interface {
	// Establish persists the session, resets the cache, and transitions
	// to authenticated.
	Establish(session credential.Session) error

	// Clear drops the stored session, resets the cache, and transitions
	// to anonymous.
	Clear()

	// SetUser replaces the cached user snapshot after a profile update.
	SetUser(user model.User)
}

// Mutations bundles the write bindings over one client, cache, and
// session controller.
type Mutations struct {
	client  *api.Client
	cache   *cache.Cache
	session SessionWriter
}

// New creates the mutation bindings.
func New(client *api.Client, c *cache.Cache, session SessionWriter) *Mutations {
	return &Mutations{client: client, cache: c, session: session}
}

// apply runs the table entry for kind. Invalidation happens on the
// caller's goroutine, before the mutation returns.
func (m *Mutations) apply(kind Kind, taskID int) {
	for _, match := range Affected(kind, taskID) {
		m.cache.Invalidate(match)
	}
}

// Login authenticates and establishes the session. The whole cache is
// reset so nothing fetched anonymously survives into the authenticated
// view.
func (m *Mutations) Login(ctx context.Context, form model.LoginForm) (model.User, error) {
	var auth model.AuthResponse
	if err := m.client.Post(ctx, "/auth/login", form, &auth); err != nil {
		return model.User{}, fmt.Errorf("logging in: %w", err)
	}

	if err := m.session.Establish(credential.Session{
		Token: auth.Token,
		User:  auth.User,
	}); err != nil {
		return model.User{}, fmt.Errorf("establishing session: %w", err)
	}

	return auth.User, nil
}

// Register creates an account and establishes the session, exactly like
// a successful login.
func (m *Mutations) Register(ctx context.Context, form model.RegisterForm) (model.User, error) {
	var auth model.AuthResponse
	if err := m.client.Post(ctx, "/auth/register", form, &auth); err != nil {
		return model.User{}, fmt.Errorf("registering: %w", err)
	}

	if err := m.session.Establish(credential.Session{
		Token: auth.Token,
		User:  auth.User,
	}); err != nil {
		return model.User{}, fmt.Errorf("establishing session: %w", err)
	}

	return auth.User, nil
}

// Logout ends the session. The local teardown is authoritative: the
// server call's outcome is ignored, so logout never fails.
func (m *Mutations) Logout(ctx context.Context) {
	_ = m.client.Post(ctx, "/auth/logout", nil, nil)
	m.session.Clear()
}

// CreateTask creates a task owned by the current user.
func (m *Mutations) CreateTask(ctx context.Context, form model.TaskForm) (model.Task, error) {
	var task model.Task
	if err := m.client.Post(ctx, "/tasks", form, &task); err != nil {
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}

	m.apply(KindCreateTask, task.ID)
	return task, nil
}

// UpdateTask applies a partial update to a task the current user owns.
func (m *Mutations) UpdateTask(ctx context.Context, id int, update model.TaskUpdate) (model.Task, error) {
	var task model.Task
	if err := m.client.Put(ctx, fmt.Sprintf("/tasks/%d", id), update, &task); err != nil {
		return model.Task{}, fmt.Errorf("updating task %d: %w", id, err)
	}

	m.apply(KindUpdateTask, id)
	return task, nil
}

// ToggleTaskCompletion sets a task's completion flag.
func (m *Mutations) ToggleTaskCompletion(ctx context.Context, id int, isCompleted bool) (model.Task, error) {
	update := model.TaskUpdate{IsCompleted: &isCompleted}

	var task model.Task
	if err := m.client.Put(ctx, fmt.Sprintf("/tasks/%d", id), update, &task); err != nil {
		return model.Task{}, fmt.Errorf("toggling task %d: %w", id, err)
	}

	m.apply(KindToggleTask, id)
	return task, nil
}

// DeleteTask removes a task the current user owns. Subscriptions to it
// are removed server-side, so the subscriptions cache is invalidated too.
func (m *Mutations) DeleteTask(ctx context.Context, id int) error {
	if err := m.client.Delete(ctx, fmt.Sprintf("/tasks/%d", id)); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}

	m.apply(KindDeleteTask, id)
	return nil
}

// Subscribe follows a public task owned by another user.
func (m *Mutations) Subscribe(ctx context.Context, taskID int) error {
	if err := m.client.Post(ctx, fmt.Sprintf("/tasks/%d/subscribe", taskID), nil, nil); err != nil {
		return fmt.Errorf("subscribing to task %d: %w", taskID, err)
	}

	m.apply(KindSubscribe, taskID)
	return nil
}

// Unsubscribe stops following a task.
func (m *Mutations) Unsubscribe(ctx context.Context, taskID int) error {
	if err := m.client.Delete(ctx, fmt.Sprintf("/tasks/%d/unsubscribe", taskID)); err != nil {
		return fmt.Errorf("unsubscribing from task %d: %w", taskID, err)
	}

	m.apply(KindUnsubscribe, taskID)
	return nil
}

// MarkNotificationRead marks one notification as read.
func (m *Mutations) MarkNotificationRead(ctx context.Context, id int) error {
	if err := m.client.Patch(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}

	m.apply(KindMarkNotificationRead, 0)
	return nil
}

// MarkAllNotificationsRead marks every notification as read.
func (m *Mutations) MarkAllNotificationsRead(ctx context.Context) error {
	if err := m.client.Patch(ctx, "/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}

	m.apply(KindMarkAllNotificationsRead, 0)
	return nil
}

// DeleteNotification removes one notification.
func (m *Mutations) DeleteNotification(ctx context.Context, id int) error {
	if err := m.client.Delete(ctx, fmt.Sprintf("/notifications/%d", id)); err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}

	m.apply(KindDeleteNotification, 0)
	return nil
}

// UpdateProfile applies a partial update to the current user's profile
// and refreshes the session's user snapshot.
func (m *Mutations) UpdateProfile(ctx context.Context, form model.ProfileForm) (model.User, error) {
	var user model.User
	if err := m.client.Put(ctx, "/auth/me", form, &user); err != nil {
		return model.User{}, fmt.Errorf("updating profile: %w", err)
	}

	m.session.SetUser(user)
	m.apply(KindUpdateProfile, 0)
	return user, nil
}
