// Package events defines event types published on the funil event bus.
package events

import (
	"time"

	"github.com/funildev/funil/pkg/models"
)

type EventType string

// Topic is the Kafka topic carrying funil domain events.
const Topic = "funil.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	LeadStageChangedEvent EventType = "lead.stage_changed"
	LeadAssignedEvent     EventType = "lead.assigned"
	CardMovedEvent        EventType = "card.moved"
	AutomationFiredEvent  EventType = "automation.fired"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// LeadStageChanged is published after a lead's stage is committed to a
// new, different value. Automation already ran synchronously by the time
// this event reaches the bus; consumers are external (dashboards, chat
// widget, delivery workers).
type LeadStageChanged struct {
	BaseEvent

	LeadID        string           `json:"lead_id"`
	PreviousStage models.LeadStage `json:"previous_stage"`
	NewStage      models.LeadStage `json:"new_stage"`
}

func (e LeadStageChanged) GetType() EventType {
	return LeadStageChangedEvent
}

// LeadAssigned is published after a round-robin assignment commits.
type LeadAssigned struct {
	BaseEvent

	LeadID     string `json:"lead_id"`
	AssigneeID string `json:"assignee_id"`
	PoolKey    string `json:"pool_key"`
}

func (e LeadAssigned) GetType() EventType {
	return LeadAssignedEvent
}

// CardMoved is published after a board card move commits.
type CardMoved struct {
	BaseEvent

	CardID       string `json:"card_id"`
	FromColumnID string `json:"from_column_id"`
	ToColumnID   string `json:"to_column_id"`
	FromPosition int    `json:"from_position"`
	ToPosition   int    `json:"to_position"`
}

func (e CardMoved) GetType() EventType {
	return CardMovedEvent
}

// AutomationFired is published once per workflow fired for an event,
// after its actions were dispatched.
type AutomationFired struct {
	BaseEvent

	WorkflowID   string `json:"workflow_id"`
	LeadID       string `json:"lead_id"`
	ActionsRun   int    `json:"actions_run"`
	ActionsError int    `json:"actions_error"`
}

func (e AutomationFired) GetType() EventType {
	return AutomationFiredEvent
}
