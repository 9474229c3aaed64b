// Package automation implements the trigger matching and action dispatch
// that run synchronously after a lead's pipeline stage changes.
package automation

import (
	"log/slog"

	"github.com/funildev/funil/pkg/models"
)

// StageChangeEvent describes a committed lead stage transition. It is
// only emitted when the new stage differs from the previous one.
type StageChangeEvent struct {
	LeadID        string
	PreviousStage models.LeadStage
	NewStage      models.LeadStage
}

// MatchResult pairs a workflow with the trigger that matched the event.
type MatchResult struct {
	Workflow       *models.Workflow
	MatchedTrigger *models.Trigger
}

// Matcher finds workflows whose trigger configuration matches a domain
// event. It is a pure query step with no side effects.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a new trigger matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With("module", "trigger_matcher"),
	}
}

// MatchStageChange returns one MatchResult per active workflow having at
// least one lead_stage_changed trigger whose configured stage equals the
// event's new stage. A workflow fires at most once per event even when
// several of its triggers match, so its actions never run multiple times
// for one stage transition.
func (m *Matcher) MatchStageChange(event StageChangeEvent, workflows []*models.Workflow) []MatchResult {
	var results []MatchResult

	m.logger.Debug("Matching stage change against workflows",
		"lead_id", event.LeadID,
		"new_stage", event.NewStage,
		"workflows_count", len(workflows))

	for _, workflow := range workflows {
		if !workflow.IsActive {
			continue
		}

		for _, trigger := range workflow.Triggers {
			if !m.matchTrigger(event, trigger) {
				continue
			}

			results = append(results, MatchResult{
				Workflow:       workflow,
				MatchedTrigger: trigger,
			})

			m.logger.Debug("Found matching workflow",
				"workflow_id", workflow.ID,
				"workflow_name", workflow.Name,
				"trigger_id", trigger.ID)

			break
		}
	}

	m.logger.Info("Completed trigger matching",
		"lead_id", event.LeadID,
		"new_stage", event.NewStage,
		"matches_found", len(results))

	return results
}

func (m *Matcher) matchTrigger(event StageChangeEvent, trigger *models.Trigger) bool {
	switch trigger.Type {
	case models.TriggerLeadStageChanged:
		return trigger.ConfigStage() == string(event.NewStage)
	default:
		m.logger.Warn("Unknown trigger type", "type", trigger.Type)

		return false
	}
}
