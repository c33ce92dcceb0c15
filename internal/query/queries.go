// Package query implements the read bindings: cache-aware fetches of
// tasks, subscriptions, and notifications. Concurrent callers asking for
// the same key share one network request, and responses are applied in
// request-issue order so a slow stale response never clobbers a fresh one.
package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/model"
)

// Queries bundles the read bindings over one client and cache.
type Queries struct {
	client *api.Client
	cache  *cache.Cache
	group  singleflight.Group
}

// New creates the query bindings.
func New(client *api.Client, c *cache.Cache) *Queries {
	return &Queries{client: client, cache: c}
}

// Cache exposes the underlying cache for consumers that render directly
// from entries (reads only; writes stay with mutations and the session
// controller).
func (q *Queries) Cache() *cache.Cache {
	return q.cache
}

// Tasks lists all tasks visible to the caller.
func (q *Queries) Tasks(ctx context.Context, filters model.TaskFilters) (model.Page[model.Task], error) {
	key := cache.NewKey(cache.ResourceTasks, filters.Params())
	return fetch[model.Page[model.Task]](ctx, q, key, "/tasks", filters.Params())
}

// MyTasks lists the caller's own tasks. The visibility flag is implied
// and therefore stripped from the filter.
func (q *Queries) MyTasks(ctx context.Context, filters model.TaskFilters) (model.Page[model.Task], error) {
	params := filters.WithoutVisibility().Params()
	key := cache.NewKey(cache.ResourceMyTasks, params)
	return fetch[model.Page[model.Task]](ctx, q, key, "/tasks/mine", params)
}

// PublicTasks lists public tasks from all users.
func (q *Queries) PublicTasks(ctx context.Context, filters model.TaskFilters) (model.Page[model.Task], error) {
	params := filters.WithoutVisibility().Params()
	key := cache.NewKey(cache.ResourcePublicTasks, params)
	return fetch[model.Page[model.Task]](ctx, q, key, "/tasks/public", params)
}

// Task fetches a single task. The call is gated on a valid id.
func (q *Queries) Task(ctx context.Context, id int) (model.Task, error) {
	if id <= 0 {
		return model.Task{}, fmt.Errorf("query: invalid task id %d", id)
	}
	key := cache.IDKey(cache.ResourceTask, id)
	return fetch[model.Task](ctx, q, key, fmt.Sprintf("/tasks/%d", id), nil)
}

// Subscriptions lists the caller's task subscriptions.
func (q *Queries) Subscriptions(ctx context.Context) ([]model.Subscription, error) {
	key := cache.NewKey(cache.ResourceSubscriptions, nil)
	return fetch[[]model.Subscription](ctx, q, key, "/subscriptions", nil)
}

// TaskSubscribers lists the users following a task. The call is gated on
// a valid id.
func (q *Queries) TaskSubscribers(ctx context.Context, taskID int) ([]model.User, error) {
	if taskID <= 0 {
		return nil, fmt.Errorf("query: invalid task id %d", taskID)
	}
	key := cache.IDKey(cache.ResourceTaskSubscribers, taskID)
	return fetch[[]model.User](ctx, q, key, fmt.Sprintf("/tasks/%d/subscribers", taskID), nil)
}

// Notifications lists the caller's notifications.
func (q *Queries) Notifications(ctx context.Context, filters model.NotificationFilters) (model.Page[model.Notification], error) {
	key := cache.NewKey(cache.ResourceNotifications, filters.Params())
	return fetch[model.Page[model.Notification]](ctx, q, key, "/notifications", filters.Params())
}

// UnreadCount fetches the number of unread notifications.
func (q *Queries) UnreadCount(ctx context.Context) (model.UnreadCount, error) {
	key := cache.NewKey(cache.ResourceUnreadCount, nil)
	return fetch[model.UnreadCount](ctx, q, key, "/notifications/unread-count", nil)
}

// fetch serves key from the cache when fresh; otherwise it issues exactly
// one request per distinct key, no matter how many callers arrive while
// it is in flight, and applies the response through the cache's ordering
// check.
func fetch[T any](
	ctx context.Context,
	q *Queries,
	key cache.Key,
	path string,
	params map[string]string,
) (T, error) {
	if entry := q.cache.Get(key); entry.Fresh() {
		if value, ok := entry.Value.(T); ok {
			return value, nil
		}
	}

	flightKey := string(key.Resource) + "|" + key.Signature
	result, err, _ := q.group.Do(flightKey, func() (any, error) {
		ticket := q.cache.Begin(key)

		var value T
		if err := q.client.Get(ctx, path, params, &value); err != nil {
			q.cache.Fail(ticket)
			return value, err
		}

		q.cache.Complete(ticket, value)
		return value, nil
	})

	value, _ := result.(T)
	if err != nil {
		return value, fmt.Errorf("fetching %s: %w", key.Resource, err)
	}
	return value, nil
}
