package models

import "time"

// Todo is a single task item owned by exactly one user.
// Description is nil when the item has no description; an empty or
// all-whitespace description is normalized to nil before storage.
type Todo struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      int       `json:"user_id"`
}
