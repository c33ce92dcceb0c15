package model

import "time"

// Subscription is the edge between a user and a public task they follow.
// A user holds at most one active subscription per task, and never to a
// task they own.
type Subscription struct {
	// ID is the backend-assigned numeric identifier.
	ID int `json:"id"`

	// UserID is the subscribing user.
	UserID int `json:"userId"`

	// TaskID is the followed task.
	TaskID int `json:"taskId"`

	// CreatedAt is when the subscription was made.
	CreatedAt time.Time `json:"createdAt"`

	// Task is a snapshot of the followed task, denormalized by the backend.
	Task Task `json:"task"`
}
