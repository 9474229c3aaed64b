package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKanbanService(t *testing.T) (*Kanban, *memory.Persistence) {
	t.Helper()

	p := memory.NewPersistence()

	return NewKanban(p, newTestEventBus(), slog.Default()), p
}

func TestKanban_BoardColumnCardFlow(t *testing.T) {
	ctx := context.Background()
	service, _ := setupKanbanService(t)

	board, err := service.CreateBoard(ctx, &models.Board{Name: "Pipeline", IsDefault: true})
	require.NoError(t, err)
	require.NotEmpty(t, board.ID)

	column, err := service.CreateColumn(ctx, &models.Column{BoardID: board.ID, Name: "Novo"})
	require.NoError(t, err)

	first, err := service.CreateCard(ctx, &models.Card{ColumnID: column.ID, Title: "Ana"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)

	second, err := service.CreateCard(ctx, &models.Card{ColumnID: column.ID, Title: "Bruno"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	loaded, err := service.FetchBoard(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Columns, 1)
	require.Len(t, loaded.Columns[0].Cards, 2)
	assert.Equal(t, "Ana", loaded.Columns[0].Cards[0].Title)
}

func TestKanban_CreateBoardEmptyNameRejected(t *testing.T) {
	service, _ := setupKanbanService(t)

	_, err := service.CreateBoard(context.Background(), &models.Board{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestKanban_SecondDefaultBoardRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupKanbanService(t)

	_, err := service.CreateBoard(ctx, &models.Board{Name: "Main", IsDefault: true})
	require.NoError(t, err)

	_, err = service.CreateBoard(ctx, &models.Board{Name: "Other", IsDefault: true})
	assert.ErrorIs(t, err, persistence.ErrDuplicateDefaultBoard)
}

func TestKanban_CreateColumnUnknownBoard(t *testing.T) {
	service, _ := setupKanbanService(t)

	_, err := service.CreateColumn(context.Background(), &models.Column{BoardID: "missing", Name: "Novo"})
	assert.ErrorIs(t, err, persistence.ErrBoardNotFound)
}

func TestKanban_CreateCardNegativePositionRejected(t *testing.T) {
	ctx := context.Background()
	service, _ := setupKanbanService(t)

	board, err := service.CreateBoard(ctx, &models.Board{Name: "Pipeline"})
	require.NoError(t, err)

	column, err := service.CreateColumn(ctx, &models.Column{BoardID: board.ID, Name: "Novo"})
	require.NoError(t, err)

	pos := -1
	_, err = service.CreateCard(ctx, &models.Card{ColumnID: column.ID, Title: "Ana"}, &pos)
	assert.True(t, persistence.IsInvalidPosition(err))
}

func TestKanban_MoveCardEmptyTargetStaysInColumn(t *testing.T) {
	ctx := context.Background()
	service, _ := setupKanbanService(t)

	board, err := service.CreateBoard(ctx, &models.Board{Name: "Pipeline"})
	require.NoError(t, err)

	column, err := service.CreateColumn(ctx, &models.Column{BoardID: board.ID, Name: "Novo"})
	require.NoError(t, err)

	first, err := service.CreateCard(ctx, &models.Card{ColumnID: column.ID, Title: "Ana"}, nil)
	require.NoError(t, err)

	_, err = service.CreateCard(ctx, &models.Card{ColumnID: column.ID, Title: "Bruno"}, nil)
	require.NoError(t, err)

	pos := 1
	moved, err := service.MoveCard(ctx, first.ID, "", &pos)
	require.NoError(t, err)
	assert.Equal(t, column.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Position)
}

func TestKanban_DeleteCard(t *testing.T) {
	ctx := context.Background()
	service, p := setupKanbanService(t)

	board, err := service.CreateBoard(ctx, &models.Board{Name: "Pipeline"})
	require.NoError(t, err)

	column, err := service.CreateColumn(ctx, &models.Column{BoardID: board.ID, Name: "Novo"})
	require.NoError(t, err)

	card, err := service.CreateCard(ctx, &models.Card{ColumnID: column.ID, Title: "Ana"}, nil)
	require.NoError(t, err)

	require.NoError(t, service.DeleteCard(ctx, card.ID))

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
