// Package addtag implements the add_tag action: it ensures the triggering
// lead carries the configured tag. The lead/tag pair is a set membership,
// so re-attaching is a no-op.
package addtag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/protocol"
)

type Action struct {
	tags  persistence.TagRepository
	tagID string
}

func NewAction(tags persistence.TagRepository, config map[string]any) *Action {
	action := &Action{tags: tags}

	if tagID, ok := config["tag_id"].(string); ok {
		action.tagID = tagID
	}

	return action
}

func (a *Action) Execute(ctx context.Context, executionCtx protocol.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_type", models.ActionAddTag)

	_, err := a.tags.GetByID(ctx, a.tagID)
	if err != nil {
		return fmt.Errorf("failed to resolve tag %s: %w", a.tagID, err)
	}

	err = a.tags.Attach(ctx, executionCtx.Lead.ID, a.tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}

	logger.InfoContext(ctx, "Tag attached",
		"lead_id", executionCtx.Lead.ID,
		"tag_id", a.tagID)

	return nil
}
