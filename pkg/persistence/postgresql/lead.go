package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/google/uuid"
)

// LeadRepository handles lead database operations.
type LeadRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *sql.DB, logger *slog.Logger) *LeadRepository {
	return &LeadRepository{db: db, logger: logger}
}

// Save inserts or updates a lead.
func (r *LeadRepository) Save(ctx context.Context, lead *models.Lead) error {
	now := time.Now().UTC()

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	lead.UpdatedAt = now

	if lead.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate lead ID: %w", err)
		}

		lead.ID = id.String()
	}

	query := `
		INSERT INTO leads (id, name, email, phone, stage, status, assigned_to, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			stage = EXCLUDED.stage,
			status = EXCLUDED.status,
			assigned_to = EXCLUDED.assigned_to,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err := r.db.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Stage,
		lead.Status,
		lead.AssignedTo,
		lead.CreatedAt,
		lead.UpdatedAt,
		lead.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}

	return nil
}

// GetByID returns a lead by its ID.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	query := `
		SELECT id, name, email, phone, stage, status, assigned_to, created_at, updated_at, deleted_at
		FROM leads
		WHERE id = $1 AND deleted_at IS NULL
	`

	lead, err := scanLead(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrLeadNotFound
		}

		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}

	return lead, nil
}

// GetAll returns all non-deleted leads.
func (r *LeadRepository) GetAll(ctx context.Context) ([]*models.Lead, error) {
	query := `
		SELECT id, name, email, phone, stage, status, assigned_to, created_at, updated_at, deleted_at
		FROM leads
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	leads := make([]*models.Lead, 0)

	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}

		leads = append(leads, lead)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

// Delete soft deletes a lead.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE leads SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrLeadNotFound
	}

	return nil
}

func scanLead(row rowScanner) (*models.Lead, error) {
	var (
		lead       models.Lead
		email      sql.NullString
		phone      sql.NullString
		assignedTo sql.NullString
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&email,
		&phone,
		&lead.Stage,
		&lead.Status,
		&assignedTo,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Email = email.String
	lead.Phone = phone.String

	if assignedTo.Valid {
		lead.AssignedTo = &assignedTo.String
	}

	if deletedAt.Valid {
		lead.DeletedAt = &deletedAt.Time
	}

	return &lead, nil
}
