package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/automation"
	"github.com/funildev/funil/pkg/eventbus"
	"github.com/funildev/funil/pkg/events"
	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// Lead implements lead management. Updating a lead's pipeline stage is
// the entry point of workflow automation: the new stage is committed
// first, then matching workflows run synchronously in the same request,
// and only afterwards are domain events published best-effort.
type Lead struct {
	persistence persistence.Persistence
	matcher     *automation.Matcher
	dispatcher  *automation.Dispatcher
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

// NewLead creates a new lead service.
func NewLead(
	persistence persistence.Persistence,
	matcher *automation.Matcher,
	dispatcher *automation.Dispatcher,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
) *Lead {
	return &Lead{
		persistence: persistence,
		matcher:     matcher,
		dispatcher:  dispatcher,
		eventBus:    eventBus,
		logger:      logger.With("module", "lead_service"),
	}
}

// Create persists a new lead. An empty stage defaults to the first
// pipeline stage; an empty status defaults to open.
func (l *Lead) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if lead.Stage == "" {
		lead.Stage = models.StageProspect
	}

	if !lead.Stage.IsValid() {
		return nil, NewValidationError("CreateLead",
			fmt.Sprintf("unknown pipeline stage %q", lead.Stage), ErrInvalidStage)
	}

	if lead.Status == "" {
		lead.Status = models.LeadStatusOpen
	}

	err := l.persistence.Leads().Save(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	return lead, nil
}

// FetchByID returns a lead by its ID.
func (l *Lead) FetchByID(ctx context.Context, id string) (*models.Lead, error) {
	return l.persistence.Leads().GetByID(ctx, id)
}

// List returns all leads.
func (l *Lead) List(ctx context.Context) ([]*models.Lead, error) {
	return l.persistence.Leads().GetAll(ctx)
}

// Delete soft deletes a lead.
func (l *Lead) Delete(ctx context.Context, id string) error {
	return l.persistence.Leads().Delete(ctx, id)
}

// UpdateLeadRequest contains optional fields for a partial lead update.
// Nil fields keep their stored value.
type UpdateLeadRequest struct {
	Name   *string
	Email  *string
	Phone  *string
	Stage  *models.LeadStage
	Status *models.LeadStatus
}

// Update applies a partial update to a lead. When the update changes the
// lead's stage to a different value, the change is committed and then
// matching workflows fire exactly once each before Update returns.
// Writing the same stage again fires nothing.
func (l *Lead) Update(ctx context.Context, id string, req UpdateLeadRequest) (*models.Lead, error) {
	lead, err := l.persistence.Leads().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStage := lead.Stage

	if req.Name != nil {
		lead.Name = *req.Name
	}

	if req.Email != nil {
		lead.Email = *req.Email
	}

	if req.Phone != nil {
		lead.Phone = *req.Phone
	}

	if req.Stage != nil {
		if !req.Stage.IsValid() {
			return nil, NewValidationError("UpdateLead",
				fmt.Sprintf("unknown pipeline stage %q", *req.Stage), ErrInvalidStage)
		}

		lead.Stage = *req.Stage
	}

	if req.Status != nil {
		lead.Status = *req.Status
	}

	err = l.persistence.Leads().Save(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	if lead.Stage != previousStage {
		l.runAutomation(ctx, lead, previousStage)
	}

	return lead, nil
}

// runAutomation matches and dispatches workflows for a committed stage
// change, then publishes the corresponding events. The stage change is
// already durable at this point, so failures here are logged and never
// surfaced to the caller.
func (l *Lead) runAutomation(ctx context.Context, lead *models.Lead, previousStage models.LeadStage) {
	event := automation.StageChangeEvent{
		LeadID:        lead.ID,
		PreviousStage: previousStage,
		NewStage:      lead.Stage,
	}

	workflows, err := l.persistence.Workflows().ListActive(ctx, models.TriggerLeadStageChanged)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to load active workflows for stage change",
			"lead_id", lead.ID, "error", err)

		return
	}

	matches := l.matcher.MatchStageChange(event, workflows)
	results := l.dispatcher.Dispatch(ctx, lead, matches)

	l.publish(ctx, lead.ID, &events.LeadStageChanged{
		BaseEvent:     l.baseEvent(events.LeadStageChangedEvent),
		LeadID:        lead.ID,
		PreviousStage: previousStage,
		NewStage:      lead.Stage,
	})

	for _, result := range results {
		l.publish(ctx, lead.ID, &events.AutomationFired{
			BaseEvent:    l.baseEvent(events.AutomationFiredEvent),
			WorkflowID:   result.WorkflowID,
			LeadID:       lead.ID,
			ActionsRun:   result.Executed,
			ActionsError: result.Failed,
		})
	}
}

func (l *Lead) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        l.eventBus.GenerateID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (l *Lead) publish(ctx context.Context, key string, event eventbus.Event) {
	err := l.eventBus.Publish(ctx, key, event)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "key", key, "error", err)
	}
}
