package model

import (
	"strconv"
	"time"
)

// Task is a work item owned by exactly one user. Public tasks are
// discoverable by, and subscribable for, other users.
type Task struct {
	// ID is the backend-assigned numeric identifier.
	ID int `json:"id"`

	// Title is the human-readable summary.
	Title string `json:"title"`

	// Description is the optional full body text.
	Description string `json:"description,omitempty"`

	// IsCompleted reports whether the owner has marked the task done.
	IsCompleted bool `json:"isCompleted"`

	// IsPublic gates discovery and subscription by non-owners.
	IsPublic bool `json:"isPublic"`

	// UserID is the owner's user ID.
	UserID int `json:"userId"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updatedAt"`

	// Owner is the owning user's profile, denormalized by the backend.
	Owner User `json:"owner"`

	// Subscribers holds subscriber profiles when the endpoint includes them.
	Subscribers []User `json:"subscribers,omitempty"`

	// SubscriberCount is present on detail responses.
	SubscriberCount *int `json:"subscriberCount,omitempty"`
}

// IsOwnedBy reports whether the task belongs to the given user.
func (t Task) IsOwnedBy(userID int) bool {
	return t.UserID == userID
}

// CanEdit reports whether the given user may update or delete the task.
// Only the owner may; the backend enforces the same rule.
func (t Task) CanEdit(userID int) bool {
	return t.IsOwnedBy(userID)
}

// CanSubscribe reports whether the given user may subscribe to the task.
// Owners may not subscribe to their own tasks, and private tasks are not
// subscribable at all.
func (t Task) CanSubscribe(userID int) bool {
	return t.IsPublic && !t.IsOwnedBy(userID)
}

// TaskForm carries validated input for creating a task.
type TaskForm struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
}

// TaskUpdate carries a partial task update. Nil fields are left unchanged
// by the backend.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
	IsCompleted *bool   `json:"isCompleted,omitempty"`
}

// TaskFilters controls filtering and pagination for task list queries.
// The zero value requests the backend defaults.
type TaskFilters struct {
	// Search matches against title and description.
	Search string

	// IsCompleted filters by completion state when set.
	IsCompleted *bool

	// IsPublic filters by visibility when set. Only meaningful for the
	// combined task list; the mine/public lists imply it.
	IsPublic *bool

	// Page is the 1-based page number. Zero requests the backend default.
	Page int

	// Limit is the page size. Zero requests the backend default.
	Limit int
}

// Params returns the filter as normalized query parameters. Unset fields
// are omitted entirely rather than rendered as empty values, so two
// filters with the same set fields produce the same map.
func (f TaskFilters) Params() map[string]string {
	params := make(map[string]string)
	if f.Search != "" {
		params["search"] = f.Search
	}
	if f.IsCompleted != nil {
		params["isCompleted"] = strconv.FormatBool(*f.IsCompleted)
	}
	if f.IsPublic != nil {
		params["isPublic"] = strconv.FormatBool(*f.IsPublic)
	}
	if f.Page > 0 {
		params["page"] = strconv.Itoa(f.Page)
	}
	if f.Limit > 0 {
		params["limit"] = strconv.Itoa(f.Limit)
	}
	return params
}

// WithoutVisibility returns a copy of the filter with the visibility flag
// cleared, for the mine/public list endpoints where it is implied.
func (f TaskFilters) WithoutVisibility() TaskFilters {
	f.IsPublic = nil
	return f
}
