package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/persistence/memory"
	"github.com/funildev/funil/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkflowService(t *testing.T) (*Workflow, *memory.Persistence) {
	t.Helper()

	p := memory.NewPersistence()
	reg := registry.NewDefaultRegistry(slog.Default(), p)

	return NewWorkflow(p, reg), p
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:     "Proposta enviada flow",
		IsActive: true,
		Triggers: []*models.Trigger{
			{Type: models.TriggerLeadStageChanged, Config: map[string]any{"stage": string(models.StageProposalSent)}},
		},
		Actions: []*models.Action{
			{Type: models.ActionSendMessage, Config: map[string]any{"channel": "email"}},
		},
	}
}

func TestWorkflowCreate_Valid(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	created, err := service.Create(ctx, validWorkflow())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	require.Len(t, created.Triggers, 1)
	assert.NotEmpty(t, created.Triggers[0].ID)
	require.Len(t, created.Actions, 1)
	assert.NotEmpty(t, created.Actions[0].ID)
}

func TestWorkflowCreate_EmptyNameRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Name = ""

	_, err := service.Create(ctx, workflow)
	assert.ErrorIs(t, err, ErrWorkflowNameRequired)
}

func TestWorkflowCreate_UnknownTriggerTypeRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Triggers[0].Type = "lead_sneezed"

	_, err := service.Create(ctx, workflow)
	assert.ErrorIs(t, err, ErrInvalidTriggerType)
}

func TestWorkflowCreate_TriggerConfigMissingStageRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Triggers[0].Config = map[string]any{}

	_, err := service.Create(ctx, workflow)
	assert.ErrorIs(t, err, ErrInvalidTriggerConfig)
}

func TestWorkflowCreate_UnknownStageRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Triggers[0].Config = map[string]any{"stage": "Em hibernação"}

	_, err := service.Create(ctx, workflow)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestWorkflowCreate_UnknownActionTypeRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Actions[0].Type = "launch_rocket"

	_, err := service.Create(ctx, workflow)
	assert.ErrorIs(t, err, ErrInvalidActionType)
}

func TestWorkflowCreate_BadActionConfigRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	workflow := validWorkflow()
	workflow.Actions[0] = &models.Action{Type: models.ActionAddTag, Config: map[string]any{}}

	_, err := service.Create(ctx, workflow)
	assert.ErrorIs(t, err, ErrInvalidActionConfig)
}

func TestWorkflowUpdate_PartialFields(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	created, err := service.Create(ctx, validWorkflow())
	require.NoError(t, err)

	name := "Renamed flow"
	inactive := false

	updated, err := service.Update(ctx, created.ID, UpdateWorkflowRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Renamed flow", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Len(t, updated.Triggers, 1)
}

func TestWorkflowUpdate_ReplacesTriggerSet(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	created, err := service.Create(ctx, validWorkflow())
	require.NoError(t, err)

	triggers := []*models.Trigger{
		{Type: models.TriggerLeadStageChanged, Config: map[string]any{"stage": string(models.StageClosed)}},
	}

	updated, err := service.Update(ctx, created.ID, UpdateWorkflowRequest{Triggers: triggers})
	require.NoError(t, err)
	require.Len(t, updated.Triggers, 1)
	assert.Equal(t, string(models.StageClosed), updated.Triggers[0].ConfigStage())
}

func TestWorkflowUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	name := "x"
	_, err := service.Update(ctx, "missing", UpdateWorkflowRequest{Name: &name})
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestWorkflowDelete_RemovesFromList(t *testing.T) {
	ctx := context.Background()
	service, _ := setupWorkflowService(t)

	created, err := service.Create(ctx, validWorkflow())
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.FetchByID(ctx, created.ID)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)

	workflows, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, workflows)
}
