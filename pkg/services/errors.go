// Package services provides the business logic between the HTTP surface
// and the persistence layer.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrInvalidTriggerType   = errors.New("invalid trigger type")
	ErrInvalidActionType    = errors.New("invalid action type")
	ErrInvalidTriggerConfig = errors.New("invalid trigger config")
	ErrInvalidActionConfig  = errors.New("invalid action config")
	ErrInvalidStage         = errors.New("invalid pipeline stage")

	// ErrNoEligibleUsers indicates the round-robin pool is empty.
	ErrNoEligibleUsers = errors.New("no eligible users for assignment")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrInvalidTriggerType) ||
		errors.Is(err, ErrInvalidActionType) ||
		errors.Is(err, ErrInvalidTriggerConfig) ||
		errors.Is(err, ErrInvalidActionConfig) ||
		errors.Is(err, ErrInvalidStage)
}

// IsNoEligibleUsers checks if an error indicates an empty rotation pool.
func IsNoEligibleUsers(err error) bool {
	return errors.Is(err, ErrNoEligibleUsers)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}
