package model

import (
	"strconv"
	"time"
)

// NotificationKind identifies the event that produced a notification.
type NotificationKind string

const (
	NotificationTaskUpdated   NotificationKind = "task_updated"
	NotificationTaskCompleted NotificationKind = "task_completed"
	NotificationTaskDeleted   NotificationKind = "task_deleted"
	NotificationNewSubscriber NotificationKind = "new_subscriber"
)

// Notification is an alert generated by the backend when another user
// acts on a task the recipient owns or follows.
type Notification struct {
	// ID is the backend-assigned numeric identifier.
	ID int `json:"id"`

	// UserID is the recipient.
	UserID int `json:"userId"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Kind identifies the originating event.
	Kind NotificationKind `json:"type"`

	// IsRead reports whether the recipient has seen this notification.
	IsRead bool `json:"isRead"`

	// RelatedTaskID links to the originating task, when one still exists.
	RelatedTaskID *int `json:"relatedTaskId,omitempty"`

	// CreatedAt is when the notification was generated.
	CreatedAt time.Time `json:"createdAt"`

	// RelatedTask is a snapshot of the originating task, when included.
	RelatedTask *Task `json:"relatedTask,omitempty"`
}

// UnreadCount is the payload of the unread-count endpoint.
type UnreadCount struct {
	Count int `json:"count"`
}

// NotificationFilters controls filtering and pagination for notification
// list queries. The zero value requests the backend defaults.
type NotificationFilters struct {
	// IsRead filters by read state when set.
	IsRead *bool

	// Kind filters by notification kind when set.
	Kind NotificationKind

	// Page is the 1-based page number. Zero requests the backend default.
	Page int

	// Limit is the page size. Zero requests the backend default.
	Limit int
}

// Params returns the filter as normalized query parameters, omitting
// unset fields.
func (f NotificationFilters) Params() map[string]string {
	params := make(map[string]string)
	if f.IsRead != nil {
		params["isRead"] = strconv.FormatBool(*f.IsRead)
	}
	if f.Kind != "" {
		params["type"] = string(f.Kind)
	}
	if f.Page > 0 {
		params["page"] = strconv.Itoa(f.Page)
	}
	if f.Limit > 0 {
		params["limit"] = strconv.Itoa(f.Limit)
	}
	return params
}
