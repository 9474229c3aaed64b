package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/google/uuid"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// GetAll returns all workflows from the database.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , is_active
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	return r.queryWorkflows(ctx, query)
}

// ListActive returns active workflows having at least one trigger of the
// given type, with triggers and actions loaded.
func (r *WorkflowRepository) ListActive(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error) {
	query := `
		SELECT DISTINCT
			w.id
		  , w.name
		  , w.is_active
		  , w.created_at
		  , w.updated_at
		  , w.deleted_at
		FROM workflows w
		JOIN workflow_triggers t ON t.workflow_id = w.id
		WHERE w.deleted_at IS NULL
		  AND w.is_active = true
		  AND t.trigger_type = $1
		ORDER BY w.created_at DESC
	`

	return r.queryWorkflows(ctx, query, string(triggerType))
}

func (r *WorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflowBase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	for _, workflow := range workflows {
		err = r.loadTriggersAndActions(ctx, workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow triggers and actions: %w", err)
		}
	}

	return workflows, nil
}

// GetByID returns a workflow by its ID with triggers and actions loaded.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , is_active
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE id = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id)

	workflow, err := scanWorkflowBase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := r.loadTriggersAndActions(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to load workflow triggers and actions: %w", err)
	}

	return workflow, nil
}

// Save saves a workflow with its triggers and actions in one transaction.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	workflowQuery := `
		INSERT INTO workflows (id, name, is_active, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = tx.ExecContext(ctx, workflowQuery,
		workflow.ID,
		workflow.Name,
		workflow.IsActive,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow base: %w", err)
	}

	// Triggers and actions are owned by the workflow; replace wholesale.
	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_triggers WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing triggers: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_actions WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing actions: %w", err)
	}

	err = saveTriggers(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow triggers: %w", err)
	}

	err = saveActions(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow actions: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

func saveTriggers(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	query := `
		INSERT INTO workflow_triggers (id, workflow_id, trigger_type, trigger_config)
		VALUES ($1, $2, $3, $4)
	`

	for _, trigger := range workflow.Triggers {
		if trigger.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate trigger ID: %w", err)
			}

			trigger.ID = id.String()
		}

		trigger.WorkflowID = workflow.ID

		configJSON, err := json.Marshal(trigger.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal trigger config: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, trigger.ID, trigger.WorkflowID, trigger.Type, configJSON)
		if err != nil {
			return fmt.Errorf("failed to insert trigger: %w", err)
		}
	}

	return nil
}

func saveActions(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	query := `
		INSERT INTO workflow_actions (id, workflow_id, action_type, action_config)
		VALUES ($1, $2, $3, $4)
	`

	for _, action := range workflow.Actions {
		if action.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate action ID: %w", err)
			}

			action.ID = id.String()
		}

		action.WorkflowID = workflow.ID

		configJSON, err := json.Marshal(action.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal action config: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, action.ID, action.WorkflowID, action.Type, configJSON)
		if err != nil {
			return fmt.Errorf("failed to insert action: %w", err)
		}
	}

	return nil
}

func (r *WorkflowRepository) loadTriggersAndActions(ctx context.Context, workflow *models.Workflow) error {
	triggersQuery := `
		SELECT id, workflow_id, trigger_type, trigger_config
		FROM workflow_triggers
		WHERE workflow_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, triggersQuery, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query workflow triggers: %w", err)
	}

	workflow.Triggers = make([]*models.Trigger, 0)

	for rows.Next() {
		var (
			trigger    models.Trigger
			configJSON []byte
		)

		err = rows.Scan(&trigger.ID, &trigger.WorkflowID, &trigger.Type, &configJSON)
		if err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to scan trigger: %w", err)
		}

		err = json.Unmarshal(configJSON, &trigger.Config)
		if err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to unmarshal trigger config: %w", err)
		}

		workflow.Triggers = append(workflow.Triggers, &trigger)
	}

	err = rows.Close()
	if err != nil {
		return fmt.Errorf("failed to close trigger rows: %w", err)
	}

	actionsQuery := `
		SELECT id, workflow_id, action_type, action_config
		FROM workflow_actions
		WHERE workflow_id = $1
		ORDER BY id
	`

	rows, err = r.db.QueryContext(ctx, actionsQuery, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query workflow actions: %w", err)
	}

	workflow.Actions = make([]*models.Action, 0)

	for rows.Next() {
		var (
			action     models.Action
			configJSON []byte
		)

		err = rows.Scan(&action.ID, &action.WorkflowID, &action.Type, &configJSON)
		if err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to scan action: %w", err)
		}

		err = json.Unmarshal(configJSON, &action.Config)
		if err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to unmarshal action config: %w", err)
		}

		workflow.Actions = append(workflow.Actions, &action)
	}

	err = rows.Close()
	if err != nil {
		return fmt.Errorf("failed to close action rows: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflowBase(row rowScanner) (*models.Workflow, error) {
	var (
		workflow  models.Workflow
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.IsActive,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}
