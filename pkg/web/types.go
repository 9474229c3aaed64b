// Package web provides HTTP request and response types for the funil API.
package web

import "github.com/funildev/funil/pkg/models"

// TriggerRequest represents one trigger inside a workflow payload.
type TriggerRequest struct {
	Type   string         `json:"trigger_type"   validate:"required"`
	Config map[string]any `json:"trigger_config"`
}

// ActionRequest represents one action inside a workflow payload.
type ActionRequest struct {
	Type   string         `json:"action_type"   validate:"required"`
	Config map[string]any `json:"action_config"`
}

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name     string           `json:"name"      validate:"required,min=3"`
	IsActive *bool            `json:"is_active"`
	Triggers []TriggerRequest `json:"triggers"  validate:"required,min=1,dive"`
	Actions  []ActionRequest  `json:"actions"   validate:"required,min=1,dive"`
}

// UpdateWorkflowRequest represents the request body for updating a workflow.
// All fields are optional to support partial updates; non-nil trigger and
// action lists replace the stored lists wholesale.
type UpdateWorkflowRequest struct {
	Name     *string          `json:"name,omitempty"     validate:"omitempty,min=3"`
	IsActive *bool            `json:"is_active,omitempty"`
	Triggers []TriggerRequest `json:"triggers,omitempty" validate:"omitempty,dive"`
	Actions  []ActionRequest  `json:"actions,omitempty"  validate:"omitempty,dive"`
}

// CreateLeadRequest represents the request body for creating a new lead.
type CreateLeadRequest struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
	Stage string `json:"stage"`
}

// UpdateLeadRequest represents the request body for updating a lead. A
// stage value different from the stored one fires matching workflows
// before the response is sent.
type UpdateLeadRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"  validate:"omitempty,email"`
	Phone  *string `json:"phone,omitempty"`
	Stage  *string `json:"stage,omitempty"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=open won lost"`
}

// AssignLeadRequest represents the request body for round-robin assignment.
type AssignLeadRequest struct {
	LeadID string `json:"lead_id" validate:"required"`
}

// AssignLeadResponse reports the assignee chosen by the rotation.
type AssignLeadResponse struct {
	LeadID     string `json:"lead_id"`
	AssignedTo string `json:"assigned_to"`
}

// CreateBoardRequest represents the request body for creating a board.
type CreateBoardRequest struct {
	Name      string `json:"name" validate:"required"`
	IsDefault bool   `json:"is_default"`
}

// CreateColumnRequest represents the request body for creating a column.
type CreateColumnRequest struct {
	BoardID string `json:"board_id" validate:"required"`
	Name    string `json:"name"     validate:"required"`
}

// CreateCardRequest represents the request body for creating a card.
// A nil position appends the card at the end of the column.
type CreateCardRequest struct {
	ColumnID string  `json:"column_id" validate:"required"`
	Title    string  `json:"title"     validate:"required"`
	LeadID   *string `json:"lead_id,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// MoveCardRequest represents the request body for moving a card. An empty
// column ID moves within the card's current column; a nil position appends
// at the end of the target column.
type MoveCardRequest struct {
	ColumnID string `json:"column_id"`
	Position *int   `json:"position,omitempty"`
}

func toTriggers(reqs []TriggerRequest) []*models.Trigger {
	triggers := make([]*models.Trigger, 0, len(reqs))

	for _, req := range reqs {
		triggers = append(triggers, &models.Trigger{
			Type:   models.TriggerType(req.Type),
			Config: req.Config,
		})
	}

	return triggers
}

func toActions(reqs []ActionRequest) []*models.Action {
	actions := make([]*models.Action, 0, len(reqs))

	for _, req := range reqs {
		actions = append(actions, &models.Action{
			Type:   models.ActionType(req.Type),
			Config: req.Config,
		})
	}

	return actions
}
