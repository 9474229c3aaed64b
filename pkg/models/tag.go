package models

import "time"

// Tag is a label attachable to leads. A lead/tag pair is a set
// membership: attaching twice is a no-op, not an error.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
