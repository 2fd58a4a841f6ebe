// Package models defines server-side data models persisted in the database.
package models

import "time"

// Todo is a task owned by exactly one user. OwnerID is stamped on creation
// and never changes.
type Todo struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Title         string    `json:"title"`
	Done          bool      `json:"done"`
	AttachmentKey string    `json:"attachmentKey,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TodoInput carries the caller-controlled fields of a new todo.
type TodoInput struct {
	Title string
	Done  bool
}

// TodoPatch is a partial update; nil fields are left untouched.
type TodoPatch struct {
	Title *string
	Done  *bool
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Done == nil
}
