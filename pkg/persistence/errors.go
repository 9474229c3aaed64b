// Package persistence defines the repository contracts and standardized
// error types shared by all persistence backends.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrLeadNotFound indicates a lead was not found by the given identifier.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrBoardNotFound indicates a board was not found by the given identifier.
	ErrBoardNotFound = errors.New("board not found")

	// ErrColumnNotFound indicates a column was not found by the given identifier.
	ErrColumnNotFound = errors.New("column not found")

	// ErrCardNotFound indicates a card was not found by the given identifier.
	ErrCardNotFound = errors.New("card not found")

	// ErrTagNotFound indicates a tag was not found by the given identifier.
	ErrTagNotFound = errors.New("tag not found")

	// ErrUserNotFound indicates a user was not found by the given identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPosition indicates a card position outside [0, count].
	ErrInvalidPosition = errors.New("position out of range")

	// ErrDuplicateDefaultBoard indicates a second board was marked default.
	ErrDuplicateDefaultBoard = errors.New("default board already exists")

	// ErrCursorConflict indicates a rotation cursor update lost a race with
	// a concurrent assignment. The operation is safe to retry.
	ErrCursorConflict = errors.New("rotation cursor conflict")

	// ErrConcurrentMove indicates the card changed columns while its
	// column locks were being acquired. The operation is safe to retry.
	ErrConcurrentMove = errors.New("card moved concurrently")
)

// CardError wraps card ordering errors with operation context.
type CardError struct {
	Op       string // Operation being performed (e.g. "Create", "Move", "Delete")
	CardID   string
	ColumnID string
	Err      error
}

func (e *CardError) Error() string {
	if e.ColumnID != "" {
		return fmt.Sprintf("%s operation failed for card %s in column %s: %v", e.Op, e.CardID, e.ColumnID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for card %s: %v", e.Op, e.CardID, e.Err)
}

func (e *CardError) Unwrap() error {
	return e.Err
}

func (e *CardError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsLeadNotFound checks if an error indicates a lead was not found.
func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrLeadNotFound) ||
		errors.Is(err, ErrBoardNotFound) ||
		errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrTagNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsInvalidPosition checks if an error indicates an out-of-range position.
func IsInvalidPosition(err error) bool {
	return errors.Is(err, ErrInvalidPosition)
}

// IsCursorConflict checks if an error indicates a lost rotation cursor race.
func IsCursorConflict(err error) bool {
	return errors.Is(err, ErrCursorConflict)
}

// IsConcurrentMove reports whether err is a card move that lost a race
// with another move of the same card.
func IsConcurrentMove(err error) bool {
	return errors.Is(err, ErrConcurrentMove)
}

// IsConflict checks if an error indicates a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateDefaultBoard)
}
