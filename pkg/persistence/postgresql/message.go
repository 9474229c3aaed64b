package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/google/uuid"
)

// MessageRepository handles the outbound message queue.
type MessageRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *sql.DB, logger *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, logger: logger}
}

// Create enqueues a message row. Transport happens out of process.
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if message.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate message ID: %w", err)
		}

		message.ID = id.String()
	}

	query := `
		INSERT INTO messages (id, lead_id, direction, channel, subject, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.LeadID,
		message.Direction,
		message.Channel,
		message.Subject,
		message.Body,
		message.Status,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListByLead returns the lead's messages, newest first.
func (r *MessageRepository) ListByLead(ctx context.Context, leadID string) ([]*models.Message, error) {
	query := `
		SELECT id, lead_id, direction, channel, subject, body, status, created_at
		FROM messages
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	messages := make([]*models.Message, 0)

	for rows.Next() {
		var (
			message models.Message
			subject sql.NullString
			body    sql.NullString
		)

		err = rows.Scan(
			&message.ID,
			&message.LeadID,
			&message.Direction,
			&message.Channel,
			&subject,
			&body,
			&message.Status,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		message.Subject = subject.String
		message.Body = body.String

		messages = append(messages, &message)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}
