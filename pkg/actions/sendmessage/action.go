// Package sendmessage implements the send_message action: it enqueues an
// outbound message for the triggering lead. Delivery is handled by an
// external transport worker.
package sendmessage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/protocol"
)

const (
	// DefaultChannel is used when the action config names no channel.
	DefaultChannel = "email"

	// DefaultBody is used when the action config carries no body.
	DefaultBody = "Olá! Temos novidades sobre o seu atendimento."
)

type Action struct {
	messages persistence.MessageRepository
	channel  string
	subject  string
	body     string
}

func NewAction(messages persistence.MessageRepository, config map[string]any) *Action {
	action := &Action{
		messages: messages,
		channel:  DefaultChannel,
		body:     DefaultBody,
	}

	if channel, ok := config["channel"].(string); ok && channel != "" {
		action.channel = channel
	}

	if subject, ok := config["subject"].(string); ok {
		action.subject = subject
	}

	if body, ok := config["body"].(string); ok && body != "" {
		action.body = body
	}

	return action
}

func (a *Action) Execute(ctx context.Context, executionCtx protocol.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_type", models.ActionSendMessage)

	message := &models.Message{
		LeadID:    executionCtx.Lead.ID,
		Direction: models.MessageOutbound,
		Channel:   a.channel,
		Subject:   a.subject,
		Body:      a.body,
		Status:    models.MessageQueued,
	}

	err := a.messages.Create(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}

	logger.InfoContext(ctx, "Message enqueued",
		"message_id", message.ID,
		"lead_id", message.LeadID,
		"channel", message.Channel)

	return nil
}
