package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// RotationRepository persists the round-robin cursor. The cursor advance
// is a compare-and-swap: the update is guarded by the previously read
// value, and zero affected rows signals a lost race. A plain read followed
// by an unguarded write would let two concurrent assignments hand out the
// same user.
type RotationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRotationRepository creates a new rotation repository.
func NewRotationRepository(db *sql.DB, logger *slog.Logger) *RotationRepository {
	return &RotationRepository{db: db, logger: logger}
}

// AdvanceCursor picks the assignee following the stored cursor in pool
// order, persists the new cursor, and writes the lead's assigned_to, all
// in one transaction. Returns persistence.ErrCursorConflict when a
// concurrent call advanced the cursor first.
func (r *RotationRepository) AdvanceCursor(ctx context.Context, key string, pool []*models.User, leadID string) (*models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		last   string
		exists = true
	)

	err = tx.QueryRowContext(ctx,
		"SELECT last_assignee_id FROM rotation_cursors WHERE key = $1", key,
	).Scan(&last)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to read rotation cursor: %w", err)
		}

		exists = false
		err = nil
	}

	assignee := models.NextAssignee(pool, last)
	if assignee == nil {
		err = errors.New("empty rotation pool")

		return nil, err
	}

	var result sql.Result

	if exists {
		result, err = tx.ExecContext(ctx, `
			UPDATE rotation_cursors
			SET last_assignee_id = $2, updated_at = NOW()
			WHERE key = $1 AND last_assignee_id = $3
		`, key, assignee.ID, last)
	} else {
		result, err = tx.ExecContext(ctx, `
			INSERT INTO rotation_cursors (key, last_assignee_id, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO NOTHING
		`, key, assignee.ID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to advance rotation cursor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = persistence.ErrCursorConflict

		return nil, err
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE leads SET assigned_to = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, leadID, assignee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign lead: %w", err)
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		err = persistence.ErrLeadNotFound

		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return assignee, nil
}

// Cursor returns the stored cursor for key, or nil when absent.
func (r *RotationRepository) Cursor(ctx context.Context, key string) (*models.RotationCursor, error) {
	var cursor models.RotationCursor

	err := r.db.QueryRowContext(ctx, `
		SELECT key, last_assignee_id, updated_at
		FROM rotation_cursors
		WHERE key = $1
	`, key).Scan(&cursor.Key, &cursor.LastAssigneeID, &cursor.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read rotation cursor: %w", err)
	}

	return &cursor, nil
}
