// Package protocol defines the contracts for pluggable workflow actions.
package protocol

import (
	"context"
	"log/slog"

	"github.com/funildev/funil/pkg/models"
)

// ExecutionContext carries the triggering lead and workflow into an
// action execution.
type ExecutionContext struct {
	WorkflowID string
	Lead       *models.Lead
}

// Action performs one side effect when a workflow fires. Each Execute
// call is its own atomic unit: it either commits its effect or leaves no
// partial state behind.
type Action interface {
	Execute(ctx context.Context, executionCtx ExecutionContext, logger *slog.Logger) error
}

// ActionFactory creates action instances of one kind and describes the
// kind's configuration. New action kinds plug in by registering a factory.
type ActionFactory interface {
	// ID returns the action type this factory builds (e.g. "send_message").
	ID() string

	// Schema returns the JSON schema the action's config must satisfy.
	// Config is validated against it at workflow-creation time.
	Schema() map[string]any

	// Create builds an action from its validated configuration.
	Create(config map[string]any) (Action, error)
}
