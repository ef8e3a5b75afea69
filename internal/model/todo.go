// Package model defines the data structures used throughout the application.
package model

import "time"

// Todo is the single persisted entity: a task with a title, an optional
// description and a completion flag.
//
// Description is a pointer so that "never supplied" serializes as JSON null
// rather than an empty string.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoPatch carries a partial update. A nil field means "leave unchanged".
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply copies every non-nil field of p onto t.
func (p TodoPatch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}
