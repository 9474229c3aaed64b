package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/eventbus"
	"github.com/funildev/funil/pkg/events"
	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// Kanban implements board management on top of the position ledger in
// the persistence layer. Every card mutation goes through the ledger,
// which keeps each column's positions dense.
type Kanban struct {
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

// NewKanban creates a new kanban service.
func NewKanban(persistence persistence.Persistence, eventBus eventbus.EventBus, logger *slog.Logger) *Kanban {
	return &Kanban{
		persistence: persistence,
		eventBus:    eventBus,
		logger:      logger.With("module", "kanban_service"),
	}
}

// CreateBoard persists a new board. At most one board may be the
// default; the persistence layer rejects a second one.
func (k *Kanban) CreateBoard(ctx context.Context, board *models.Board) (*models.Board, error) {
	if board.Name == "" {
		return nil, NewValidationError("CreateBoard", "board name must not be empty", ErrInvalidRequest)
	}

	err := k.persistence.Boards().SaveBoard(ctx, board)
	if err != nil {
		return nil, err
	}

	return board, nil
}

// FetchBoard returns a board with its columns and cards loaded in
// position order.
func (k *Kanban) FetchBoard(ctx context.Context, id string) (*models.Board, error) {
	return k.persistence.Boards().GetBoard(ctx, id)
}

// ListBoards returns all boards without their columns.
func (k *Kanban) ListBoards(ctx context.Context) ([]*models.Board, error) {
	return k.persistence.Boards().ListBoards(ctx)
}

// CreateColumn appends a column to a board.
func (k *Kanban) CreateColumn(ctx context.Context, column *models.Column) (*models.Column, error) {
	if column.Name == "" {
		return nil, NewValidationError("CreateColumn", "column name must not be empty", ErrInvalidRequest)
	}

	_, err := k.persistence.Boards().GetBoard(ctx, column.BoardID)
	if err != nil {
		return nil, err
	}

	err = k.persistence.Boards().SaveColumn(ctx, column)
	if err != nil {
		return nil, err
	}

	return column, nil
}

// CreateCard inserts a card into a column. With position nil the card is
// appended at the end; otherwise the requested slot must lie within
// [0, count] and existing cards shift right to make room.
func (k *Kanban) CreateCard(ctx context.Context, card *models.Card, position *int) (*models.Card, error) {
	if card.Title == "" {
		return nil, NewValidationError("CreateCard", "card title must not be empty", ErrInvalidRequest)
	}

	if position == nil {
		card.Position = -1
	} else {
		if *position < 0 {
			return nil, &persistence.CardError{
				Op:       "CreateCard",
				ColumnID: card.ColumnID,
				Err:      persistence.ErrInvalidPosition,
			}
		}

		card.Position = *position
	}

	err := k.persistence.Boards().CreateCard(ctx, card)
	if err != nil {
		return nil, err
	}

	return card, nil
}

// FetchCard returns a card by its ID.
func (k *Kanban) FetchCard(ctx context.Context, id string) (*models.Card, error) {
	return k.persistence.Boards().GetCard(ctx, id)
}

// MoveCard moves a card within its column or across columns and
// publishes card.moved once the move is committed. A nil position
// appends at the end of the target column.
func (k *Kanban) MoveCard(ctx context.Context, cardID, toColumnID string, position *int) (*models.Card, error) {
	before, err := k.persistence.Boards().GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if toColumnID == "" {
		toColumnID = before.ColumnID
	}

	card, err := k.persistence.Boards().MoveCard(ctx, cardID, toColumnID, position)
	if err != nil {
		return nil, err
	}

	event := &events.CardMoved{
		BaseEvent: events.BaseEvent{
			ID:        k.eventBus.GenerateID(),
			Type:      events.CardMovedEvent,
			Timestamp: time.Now().UTC(),
		},
		CardID:       card.ID,
		FromColumnID: before.ColumnID,
		ToColumnID:   card.ColumnID,
		FromPosition: before.Position,
		ToPosition:   card.Position,
	}

	err = k.eventBus.Publish(ctx, card.ID, event)
	if err != nil {
		k.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", events.CardMovedEvent, "card_id", card.ID, "error", err)
	}

	return card, nil
}

// DeleteCard removes a card; the cards after it shift left so the
// column stays dense.
func (k *Kanban) DeleteCard(ctx context.Context, cardID string) error {
	err := k.persistence.Boards().DeleteCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	return nil
}
