package addtag

import (
	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/protocol"
)

// Factory builds add_tag actions.
type Factory struct {
	persistence persistence.Persistence
}

// NewFactory creates a new add_tag action factory.
func NewFactory(persistence persistence.Persistence) *Factory {
	return &Factory{persistence: persistence}
}

// ID returns the action type this factory builds.
func (*Factory) ID() string {
	return string(models.ActionAddTag)
}

// Schema returns the JSON schema for the action configuration.
func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tag_id": map[string]any{
				"type":        "string",
				"description": "Identifier of the tag to attach to the lead",
				"minLength":   1,
			},
		},
		"required": []string{"tag_id"},
	}
}

// Create builds an add_tag action from its configuration.
func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(f.persistence.Tags(), config), nil
}
