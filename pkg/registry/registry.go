// Package registry holds the known action kinds and trigger kinds and
// validates their configurations.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[string]protocol.ActionFactory
	triggerSchemas  map[models.TriggerType]map[string]any
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger,
		actionFactories: make(map[string]protocol.ActionFactory),
		triggerSchemas:  make(map[models.TriggerType]map[string]any),
	}
}

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

func (r *Registry) RegisterTriggerSchema(triggerType models.TriggerType, schema map[string]any) {
	r.triggerSchemas[triggerType] = schema
}

// HasAction reports whether an action kind is registered.
func (r *Registry) HasAction(actionType string) bool {
	_, ok := r.actionFactories[actionType]

	return ok
}

// CreateAction builds an executable action for the given kind and config.
func (r *Registry) CreateAction(actionType string, config map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(config)
}

// ValidateActionConfig checks an action config against its kind's schema.
func (r *Registry) ValidateActionConfig(actionType string, config map[string]any) error {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return fmt.Errorf("action type '%s' not registered", actionType)
	}

	return validateAgainstSchema(factory.Schema(), config)
}

// ValidateTriggerConfig checks a trigger config against its kind's schema.
func (r *Registry) ValidateTriggerConfig(triggerType models.TriggerType, config map[string]any) error {
	schema, ok := r.triggerSchemas[triggerType]
	if !ok {
		return fmt.Errorf("trigger type '%s' not registered", triggerType)
	}

	return validateAgainstSchema(schema, config)
}

// HealthCheck reports whether the registry is usable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.actionFactories) == 0 {
		return "No action kinds registered", false
	}

	return "Registry is healthy", true
}

func validateAgainstSchema(schema, config map[string]any) error {
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid config: %s", strings.Join(details, "; "))
	}

	return nil
}
