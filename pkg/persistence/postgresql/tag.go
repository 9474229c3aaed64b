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

// TagRepository handles tags and the lead/tag membership set.
type TagRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *sql.DB, logger *slog.Logger) *TagRepository {
	return &TagRepository{db: db, logger: logger}
}

// Save inserts or updates a tag.
func (r *TagRepository) Save(ctx context.Context, tag *models.Tag) error {
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	if tag.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate tag ID: %w", err)
		}

		tag.ID = id.String()
	}

	query := `
		INSERT INTO tags (id, name, color, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color
	`

	_, err := r.db.ExecContext(ctx, query, tag.ID, tag.Name, tag.Color, tag.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}

	return nil
}

// GetByID returns a tag by its ID.
func (r *TagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := `SELECT id, name, color, created_at FROM tags WHERE id = $1`

	var (
		tag   models.Tag
		color sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(&tag.ID, &tag.Name, &color, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrTagNotFound
		}

		return nil, fmt.Errorf("failed to scan tag: %w", err)
	}

	tag.Color = color.String

	return &tag, nil
}

// Attach adds the tag to the lead's tag set. The membership is a set, so
// attaching an already attached tag is a no-op.
func (r *TagRepository) Attach(ctx context.Context, leadID, tagID string) error {
	query := `
		INSERT INTO lead_tags (lead_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (lead_id, tag_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, leadID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}

	return nil
}

// LeadTags returns the lead's tags.
func (r *TagRepository) LeadTags(ctx context.Context, leadID string) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.color, t.created_at
		FROM tags t
		JOIN lead_tags lt ON lt.tag_id = t.id
		WHERE lt.lead_id = $1
		ORDER BY t.name
	`

	rows, err := r.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead tags: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	tags := make([]*models.Tag, 0)

	for rows.Next() {
		var (
			tag   models.Tag
			color sql.NullString
		)

		err = rows.Scan(&tag.ID, &tag.Name, &color, &tag.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}

		tag.Color = color.String

		tags = append(tags, &tag)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}
