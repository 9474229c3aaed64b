package automation

import (
	"context"
	"log/slog"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/protocol"
	"github.com/funildev/funil/pkg/registry"
)

// DispatchResult reports what happened to one fired workflow's actions.
type DispatchResult struct {
	WorkflowID string
	Executed   int
	Failed     int
	Skipped    int
}

// Dispatcher executes the actions of matched workflows. Dispatch is
// best-effort per action: one action failing is logged and does not stop
// the remaining actions, and unknown action kinds are skipped so that
// configurations written for newer deployments do not poison older ones.
type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewDispatcher creates a new action dispatcher.
func NewDispatcher(registry *registry.Registry, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger.With("module", "action_dispatcher"),
	}
}

// Dispatch runs every matched workflow's actions against the lead and
// returns one result per fired workflow.
func (d *Dispatcher) Dispatch(ctx context.Context, lead *models.Lead, matches []MatchResult) []DispatchResult {
	results := make([]DispatchResult, 0, len(matches))

	for _, match := range matches {
		result := DispatchResult{WorkflowID: match.Workflow.ID}

		executionCtx := protocol.ExecutionContext{
			WorkflowID: match.Workflow.ID,
			Lead:       lead,
		}

		for _, action := range match.Workflow.Actions {
			if !d.registry.HasAction(string(action.Type)) {
				d.logger.WarnContext(ctx, "Skipping unknown action type",
					"workflow_id", match.Workflow.ID,
					"action_id", action.ID,
					"action_type", action.Type)

				result.Skipped++

				continue
			}

			err := d.executeAction(ctx, executionCtx, action)
			if err != nil {
				d.logger.ErrorContext(ctx, "Action execution failed",
					"workflow_id", match.Workflow.ID,
					"action_id", action.ID,
					"action_type", action.Type,
					"error", err)

				result.Failed++

				continue
			}

			result.Executed++
		}

		results = append(results, result)
	}

	return results
}

func (d *Dispatcher) executeAction(ctx context.Context, executionCtx protocol.ExecutionContext, action *models.Action) error {
	executable, err := d.registry.CreateAction(string(action.Type), action.Config)
	if err != nil {
		return err
	}

	return executable.Execute(ctx, executionCtx, d.logger)
}
