package sendmessage

import (
	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/protocol"
)

// Factory builds send_message actions.
type Factory struct {
	persistence persistence.Persistence
}

// NewFactory creates a new send_message action factory.
func NewFactory(persistence persistence.Persistence) *Factory {
	return &Factory{persistence: persistence}
}

// ID returns the action type this factory builds.
func (*Factory) ID() string {
	return string(models.ActionSendMessage)
}

// Schema returns the JSON schema for the action configuration.
func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"channel": map[string]any{
				"type":        "string",
				"description": "Transport channel for the queued message",
				"default":     DefaultChannel,
				"enum":        []string{"email", "sms", "whatsapp"},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Message subject, used by channels that support one",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Message body. A fixed default body is used when absent.",
			},
		},
	}
}

// Create builds a send_message action from its configuration.
func (f *Factory) Create(config map[string]any) (protocol.Action, error) {
	if config == nil {
		config = map[string]any{}
	}

	return NewAction(f.persistence.Messages(), config), nil
}
