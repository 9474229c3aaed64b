package memory

import (
	"context"
	"sort"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// WorkflowRepository stores workflows in memory.
type WorkflowRepository struct {
	store *store
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		workflow.ID = newID()
	}

	for _, trigger := range workflow.Triggers {
		if trigger.ID == "" {
			trigger.ID = newID()
		}

		trigger.WorkflowID = workflow.ID
	}

	for _, action := range workflow.Actions {
		if action.ID == "" {
			action.ID = newID()
		}

		action.WorkflowID = workflow.ID
	}

	r.store.workflows[workflow.ID] = cloneWorkflow(workflow)

	return nil
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflow, ok := r.store.workflows[id]
	if !ok || workflow.DeletedAt != nil {
		return nil, persistence.ErrWorkflowNotFound
	}

	return cloneWorkflow(workflow), nil
}

func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflows := make([]*models.Workflow, 0, len(r.store.workflows))

	for _, workflow := range r.store.workflows {
		if workflow.DeletedAt != nil {
			continue
		}

		workflows = append(workflows, cloneWorkflow(workflow))
	}

	sortWorkflows(workflows)

	return workflows, nil
}

func (r *WorkflowRepository) ListActive(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflows := make([]*models.Workflow, 0)

	for _, workflow := range r.store.workflows {
		if workflow.DeletedAt != nil || !workflow.IsActive {
			continue
		}

		for _, trigger := range workflow.Triggers {
			if trigger.Type == triggerType {
				workflows = append(workflows, cloneWorkflow(workflow))

				break
			}
		}
	}

	sortWorkflows(workflows)

	return workflows, nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflow, ok := r.store.workflows[id]
	if !ok || workflow.DeletedAt != nil {
		return persistence.ErrWorkflowNotFound
	}

	now := time.Now().UTC()
	workflow.DeletedAt = &now
	workflow.Triggers = nil
	workflow.Actions = nil

	return nil
}

func sortWorkflows(workflows []*models.Workflow) {
	sort.Slice(workflows, func(i, j int) bool {
		if workflows[i].CreatedAt.Equal(workflows[j].CreatedAt) {
			return workflows[i].ID < workflows[j].ID
		}

		return workflows[i].CreatedAt.After(workflows[j].CreatedAt)
	})
}

func cloneWorkflow(workflow *models.Workflow) *models.Workflow {
	clone := *workflow

	clone.Triggers = make([]*models.Trigger, len(workflow.Triggers))
	for i, trigger := range workflow.Triggers {
		t := *trigger
		clone.Triggers[i] = &t
	}

	clone.Actions = make([]*models.Action, len(workflow.Actions))
	for i, action := range workflow.Actions {
		a := *action
		clone.Actions[i] = &a
	}

	return &clone
}
