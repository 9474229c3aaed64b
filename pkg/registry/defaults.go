package registry

import (
	"log/slog"

	"github.com/funildev/funil/pkg/actions/addtag"
	"github.com/funildev/funil/pkg/actions/sendmessage"
	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// NewDefaultRegistry builds a registry with every built-in action kind and
// trigger schema registered.
func NewDefaultRegistry(logger *slog.Logger, persistence persistence.Persistence) *Registry {
	registry := NewRegistry(logger)

	registry.RegisterAction(sendmessage.NewFactory(persistence))
	registry.RegisterAction(addtag.NewFactory(persistence))

	registry.RegisterTriggerSchema(models.TriggerLeadStageChanged, map[string]any{
		"type": "object",
		"properties": map[string]any{
			"stage": map[string]any{
				"type":        "string",
				"description": "Pipeline stage that fires the workflow when a lead reaches it",
				"minLength":   1,
			},
		},
		"required": []string{"stage"},
	})

	return registry
}
