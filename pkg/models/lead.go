// Package models defines the core domain models for the lead pipeline.
package models

import "time"

// LeadStage represents the pipeline stage of a lead. Stages form an
// ordered funnel; changing a lead's stage is the event that drives
// workflow automation.
type LeadStage string

const (
	StageProspect      LeadStage = "Base de prospects"
	StageContactMade   LeadStage = "Contato feito"
	StageProposalSent  LeadStage = "Proposta enviada"
	StageReadyToAct    LeadStage = "Pronto para agir"
	StageClosed        LeadStage = "Fechado"
)

// LeadStages lists every pipeline stage in funnel order.
var LeadStages = []LeadStage{
	StageProspect,
	StageContactMade,
	StageProposalSent,
	StageReadyToAct,
	StageClosed,
}

// IsValid reports whether the stage is a known pipeline stage.
func (s LeadStage) IsValid() bool {
	for _, stage := range LeadStages {
		if s == stage {
			return true
		}
	}

	return false
}

type LeadStatus string

const (
	LeadStatusOpen LeadStatus = "open"
	LeadStatusWon  LeadStatus = "won"
	LeadStatusLost LeadStatus = "lost"
)

// Lead is a sales prospect moving through the pipeline. The automation
// subsystem consumes leads by reference; CRUD ownership lives elsewhere.
type Lead struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"       validate:"required"`
	Email      string     `json:"email"      validate:"omitempty,email"`
	Phone      string     `json:"phone"`
	Stage      LeadStage  `json:"stage"`
	Status     LeadStatus `json:"status"`
	AssignedTo *string    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
