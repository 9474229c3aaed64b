package services

import (
	"context"
	"fmt"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/registry"
)

// Workflow implements workflow management: creation with per-kind config
// validation, listing, updates, and soft deletion.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, registry *registry.Registry) *Workflow {
	return &Workflow{
		persistence: persistence,
		registry:    registry,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create validates and persists a workflow with its triggers and actions.
// Trigger and action configs are checked against their kind's schema here,
// at creation time, so dispatch never sees a malformed config.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	err := w.validate(workflow)
	if err != nil {
		return nil, err
	}

	err = w.persistence.Workflows().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// FetchByID returns a workflow with triggers and actions loaded.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.Workflows().GetByID(ctx, id)
}

// List returns all workflows.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	return w.persistence.Workflows().GetAll(ctx)
}

// UpdateWorkflowRequest contains optional fields for a partial update.
// Nil fields keep their stored value; non-nil trigger/action sets replace
// the stored sets wholesale.
type UpdateWorkflowRequest struct {
	Name     *string
	IsActive *bool
	Triggers []*models.Trigger
	Actions  []*models.Action
}

// Update applies a partial update and revalidates the result.
func (w *Workflow) Update(ctx context.Context, id string, req UpdateWorkflowRequest) (*models.Workflow, error) {
	workflow, err := w.persistence.Workflows().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		workflow.Name = *req.Name
	}

	if req.IsActive != nil {
		workflow.IsActive = *req.IsActive
	}

	if req.Triggers != nil {
		for _, trigger := range req.Triggers {
			trigger.ID = ""
		}

		workflow.Triggers = req.Triggers
	}

	if req.Actions != nil {
		for _, action := range req.Actions {
			action.ID = ""
		}

		workflow.Actions = req.Actions
	}

	err = w.validate(workflow)
	if err != nil {
		return nil, err
	}

	err = w.persistence.Workflows().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Delete soft deletes a workflow together with its triggers and actions.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.persistence.Workflows().Delete(ctx, id)
}

func (w *Workflow) validate(workflow *models.Workflow) error {
	if workflow.Name == "" {
		return NewValidationError("ValidateWorkflow", "name must not be empty", ErrWorkflowNameRequired)
	}

	for _, trigger := range workflow.Triggers {
		if trigger.Type != models.TriggerLeadStageChanged {
			return NewValidationError("ValidateWorkflow",
				fmt.Sprintf("unknown trigger type %q", trigger.Type), ErrInvalidTriggerType)
		}

		err := w.registry.ValidateTriggerConfig(trigger.Type, trigger.Config)
		if err != nil {
			return NewValidationError("ValidateWorkflow", err.Error(), ErrInvalidTriggerConfig)
		}

		if !models.LeadStage(trigger.ConfigStage()).IsValid() {
			return NewValidationError("ValidateWorkflow",
				fmt.Sprintf("unknown pipeline stage %q", trigger.ConfigStage()), ErrInvalidStage)
		}
	}

	for _, action := range workflow.Actions {
		if !w.registry.HasAction(string(action.Type)) {
			return NewValidationError("ValidateWorkflow",
				fmt.Sprintf("unknown action type %q", action.Type), ErrInvalidActionType)
		}

		err := w.registry.ValidateActionConfig(string(action.Type), action.Config)
		if err != nil {
			return NewValidationError("ValidateWorkflow", err.Error(), ErrInvalidActionConfig)
		}
	}

	return nil
}
