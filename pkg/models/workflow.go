package models

import "time"

// TriggerType identifies the kind of event a trigger listens for.
type TriggerType string

const (
	// TriggerLeadStageChanged fires when a lead's pipeline stage is
	// committed to a new, different value.
	TriggerLeadStageChanged TriggerType = "lead_stage_changed"
)

// ActionType identifies the kind of side effect an action performs.
// New action kinds register a factory with the registry; the dispatcher
// skips kinds it does not know.
type ActionType string

const (
	ActionSendMessage ActionType = "send_message"
	ActionAddTag      ActionType = "add_tag"
)

// Workflow reacts to lead events with configured side effects. A workflow
// owns its triggers and actions; deleting it deletes them.
type Workflow struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"      validate:"required,min=3"`
	IsActive  bool       `json:"is_active"`
	Triggers  []*Trigger `json:"triggers"`
	Actions   []*Action  `json:"actions"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Trigger is a condition that, when matched by an event, fires the owning
// workflow's actions. Config carries the per-kind payload and is validated
// against the kind's schema at workflow-creation time.
type Trigger struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Type       TriggerType    `json:"trigger_type" validate:"required"`
	Config     map[string]any `json:"trigger_config"`
}

// Action is a side effect executed when the owning workflow fires. Config
// carries the per-kind payload, validated at workflow-creation time.
type Action struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Type       ActionType     `json:"action_type" validate:"required"`
	Config     map[string]any `json:"action_config"`
}

// StageConfig is the typed payload of a lead_stage_changed trigger.
type StageConfig struct {
	Stage string `json:"stage" validate:"required"`
}

// ConfigStage extracts the target stage from a lead_stage_changed
// trigger's config. Returns an empty string when absent.
func (t *Trigger) ConfigStage() string {
	if t.Config == nil {
		return ""
	}

	stage, _ := t.Config["stage"].(string)

	return stage
}
