package models

import "time"

// Board is the drag-and-drop pipeline visualization. It owns an ordered
// set of columns; each column owns an ordered set of cards.
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	IsDefault bool      `json:"is_default"`
	Columns   []*Column `json:"columns,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Column is a named ordered group of cards. Position is dense among the
// board's columns.
type Column struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	Name      string    `json:"name" validate:"required"`
	Position  int       `json:"position"`
	Cards     []*Card   `json:"cards,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Card is a draggable item inside a column, optionally representing a
// lead. Card positions within a column are dense: after every committed
// mutation they equal exactly {0..n-1} with no gaps or duplicates.
type Card struct {
	ID        string    `json:"id"`
	ColumnID  string    `json:"column_id"`
	Title     string    `json:"title" validate:"required"`
	LeadID    *string   `json:"lead_id,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
