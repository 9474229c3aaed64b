package memory

import (
	"context"
	"errors"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// RotationRepository stores the round-robin cursor in memory. The store
// mutex covers the whole read-advance-write, which gives the same
// no-lost-update guarantee the SQL backend gets from its
// compare-and-swap.
type RotationRepository struct {
	store *store
}

func (r *RotationRepository) AdvanceCursor(ctx context.Context, key string, pool []*models.User, leadID string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	last := ""
	if cursor, ok := r.store.cursors[key]; ok {
		last = cursor.LastAssigneeID
	}

	assignee := models.NextAssignee(pool, last)
	if assignee == nil {
		return nil, errors.New("empty rotation pool")
	}

	lead, ok := r.store.leads[leadID]
	if !ok || lead.DeletedAt != nil {
		return nil, persistence.ErrLeadNotFound
	}

	now := time.Now().UTC()

	r.store.cursors[key] = &models.RotationCursor{
		Key:            key,
		LastAssigneeID: assignee.ID,
		UpdatedAt:      now,
	}

	assigneeID := assignee.ID
	lead.AssignedTo = &assigneeID
	lead.UpdatedAt = now

	clone := *assignee

	return &clone, nil
}

func (r *RotationRepository) Cursor(ctx context.Context, key string) (*models.RotationCursor, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cursor, ok := r.store.cursors[key]
	if !ok {
		return nil, nil
	}

	clone := *cursor

	return &clone, nil
}
