package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/eventbus"
	"github.com/funildev/funil/pkg/events"
	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// Rotation implements round-robin lead assignment over the pool of
// active admins and managers. The cursor advance is a compare-and-swap
// inside the persistence layer; a lost race surfaces as a conflict the
// caller may retry, never as a duplicate assignee.
type Rotation struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

// NewRotation creates a new rotation service.
func NewRotation(persistence persistence.Persistence, eventBus eventbus.EventBus, logger *slog.Logger) *Rotation {
	return &Rotation{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("module", "rotation_service"),
	}
}

// Assign picks the next assignee in rotation order, writes it to the
// lead, advances the cursor, and publishes lead.assigned. Returns
// ErrNoEligibleUsers when no active admin or manager exists, and
// ErrCursorConflict when a concurrent assignment won the cursor race;
// the caller may retry, which re-reads current state.
func (r *Rotation) Assign(ctx context.Context, leadID string) (*models.User, error) {
	lead, err := r.persistence.Leads().GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	pool, err := r.persistence.Users().EligibleAssignees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignee pool: %w", err)
	}

	if len(pool) == 0 {
		return nil, NewValidationError("AssignLead", "no active admins or managers", ErrNoEligibleUsers)
	}

	assignee, err := r.persistence.Rotation().AdvanceCursor(ctx, models.RotationKeyLeadAssign, pool, lead.ID)
	if err != nil {
		if persistence.IsCursorConflict(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to advance rotation cursor: %w", err)
	}

	r.logger.InfoContext(ctx, "Assigned lead via round-robin",
		"lead_id", lead.ID, "assignee_id", assignee.ID)

	event := &events.LeadAssigned{
		BaseEvent: events.BaseEvent{
			ID:        r.eventBus.GenerateID(),
			Type:      events.LeadAssignedEvent,
			Timestamp: time.Now().UTC(),
		},
		LeadID:     lead.ID,
		AssigneeID: assignee.ID,
		PoolKey:    models.RotationKeyLeadAssign,
	}

	err = r.eventBus.Publish(ctx, lead.ID, event)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", events.LeadAssignedEvent, "lead_id", lead.ID, "error", err)
	}

	return assignee, nil
}

// Cursor returns the stored rotation cursor, or nil before the first
// assignment.
func (r *Rotation) Cursor(ctx context.Context) (*models.RotationCursor, error) {
	return r.persistence.Rotation().Cursor(ctx, models.RotationKeyLeadAssign)
}
