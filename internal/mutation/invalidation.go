package mutation

import "github.com/nhle/taskhub/internal/cache"

// Kind identifies a write operation for the invalidation table.
type Kind string

const (
	KindCreateTask               Kind = "create-task"
	KindUpdateTask               Kind = "update-task"
	KindToggleTask               Kind = "toggle-task"
	KindDeleteTask               Kind = "delete-task"
	KindSubscribe                Kind = "subscribe"
	KindUnsubscribe              Kind = "unsubscribe"
	KindMarkNotificationRead     Kind = "mark-notification-read"
	KindMarkAllNotificationsRead Kind = "mark-all-notifications-read"
	KindDeleteNotification       Kind = "delete-notification"
	KindUpdateProfile            Kind = "update-profile"
)

// taskListResources are the list shapes any task write can affect. A
// create or visibility toggle can move a task into a public list that did
// not previously include it, so public-tasks is always in the set.
var taskListResources = []cache.Resource{
	cache.ResourceTasks,
	cache.ResourceMyTasks,
	cache.ResourcePublicTasks,
}

// invalidations maps each mutation kind to the cache keys it can have
// affected. taskID is zero for kinds that do not target a single task.
// Login, register, and logout are absent: those reset the whole cache
// through the session controller rather than invalidating selectively.
var invalidations = map[Kind]func(taskID int) []cache.Matcher{
	KindCreateTask: func(int) []cache.Matcher {
		return []cache.Matcher{cache.ByResource(taskListResources...)}
	},
	KindUpdateTask: taskWithDetail,
	KindToggleTask: taskWithDetail,
	KindDeleteTask: func(taskID int) []cache.Matcher {
		// Deleting a task also removes its subscriptions server-side.
		return []cache.Matcher{
			cache.ByResource(taskListResources...),
			cache.ByResource(cache.ResourceSubscriptions),
			cache.ByKey(cache.IDKey(cache.ResourceTask, taskID)),
		}
	},
	KindSubscribe:                subscriptionEdge,
	KindUnsubscribe:              subscriptionEdge,
	KindMarkNotificationRead:     notificationState,
	KindMarkAllNotificationsRead: notificationState,
	KindDeleteNotification:       notificationState,
	KindUpdateProfile: func(int) []cache.Matcher {
		// Owner snapshots embedded in cached tasks go stale with the profile.
		return []cache.Matcher{cache.ByResource(taskListResources...)}
	},
}

func taskWithDetail(taskID int) []cache.Matcher {
	return []cache.Matcher{
		cache.ByResource(taskListResources...),
		cache.ByKey(cache.IDKey(cache.ResourceTask, taskID)),
	}
}

func subscriptionEdge(taskID int) []cache.Matcher {
	return []cache.Matcher{
		cache.ByResource(cache.ResourceSubscriptions),
		cache.ByKey(cache.IDKey(cache.ResourceTaskSubscribers, taskID)),
		cache.ByKey(cache.IDKey(cache.ResourceTask, taskID)),
	}
}

func notificationState(int) []cache.Matcher {
	return []cache.Matcher{
		cache.ByResource(
			cache.ResourceNotifications,
			cache.ResourceUnreadCount,
		),
	}
}

// Affected returns the cache matchers a mutation kind invalidates.
// Exposed so invalidation completeness can be checked mechanically.
func Affected(kind Kind, taskID int) []cache.Matcher {
	build, ok := invalidations[kind]
	if !ok {
		return nil
	}
	return build(taskID)
}
