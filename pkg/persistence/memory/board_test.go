package memory

import (
	"context"
	"testing"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupColumn(t *testing.T, p *Persistence, cardTitles ...string) *models.Column {
	t.Helper()

	ctx := context.Background()

	board := &models.Board{Name: "Pipeline"}
	require.NoError(t, p.Boards().SaveBoard(ctx, board))

	column := &models.Column{BoardID: board.ID, Name: "Novo"}
	require.NoError(t, p.Boards().SaveColumn(ctx, column))

	for _, title := range cardTitles {
		card := &models.Card{ColumnID: column.ID, Title: title, Position: -1}
		require.NoError(t, p.Boards().CreateCard(ctx, card))
	}

	return column
}

func addColumn(t *testing.T, p *Persistence, boardID, name string, cardTitles ...string) *models.Column {
	t.Helper()

	ctx := context.Background()

	column := &models.Column{BoardID: boardID, Name: name}
	require.NoError(t, p.Boards().SaveColumn(ctx, column))

	for _, title := range cardTitles {
		card := &models.Card{ColumnID: column.ID, Title: title, Position: -1}
		require.NoError(t, p.Boards().CreateCard(ctx, card))
	}

	return column
}

// columnTitles returns the card titles of a column in position order and
// asserts that positions are exactly 0..n-1.
func columnTitles(t *testing.T, p *Persistence, columnID string) []string {
	t.Helper()

	cards, err := p.Boards().ListCards(context.Background(), columnID)
	require.NoError(t, err)

	titles := make([]string, 0, len(cards))

	for i, card := range cards {
		require.Equal(t, i, card.Position, "positions must be dense")

		titles = append(titles, card.Title)
	}

	return titles
}

func TestCreateCard_AppendsAtEnd(t *testing.T) {
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3")

	assert.Equal(t, []string{"c1", "c2", "c3"}, columnTitles(t, p, column.ID))
}

func TestCreateCard_AtPositionShiftsSiblings(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3")

	card := &models.Card{ColumnID: column.ID, Title: "c4", Position: 1}
	require.NoError(t, p.Boards().CreateCard(ctx, card))

	assert.Equal(t, []string{"c1", "c4", "c2", "c3"}, columnTitles(t, p, column.ID))
}

func TestCreateCard_PositionBeyondCountRejected(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2")

	card := &models.Card{ColumnID: column.ID, Title: "c3", Position: 5}
	err := p.Boards().CreateCard(ctx, card)
	assert.True(t, persistence.IsInvalidPosition(err))
}

func TestMoveCard_ForwardWithinColumn(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3", "c4")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := 2
	moved, err := p.Boards().MoveCard(ctx, cards[0].ID, column.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)

	assert.Equal(t, []string{"c2", "c3", "c1", "c4"}, columnTitles(t, p, column.ID))
}

func TestMoveCard_BackwardWithinColumn(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3", "c4")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := 0
	moved, err := p.Boards().MoveCard(ctx, cards[3].ID, column.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)

	assert.Equal(t, []string{"c4", "c1", "c2", "c3"}, columnTitles(t, p, column.ID))
}

func TestMoveCard_SamePositionIsNoOp(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := 1
	moved, err := p.Boards().MoveCard(ctx, cards[1].ID, column.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)

	assert.Equal(t, []string{"c1", "c2", "c3"}, columnTitles(t, p, column.ID))
}

func TestMoveCard_AcrossColumns(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	source := setupColumn(t, p, "a1", "a2", "a3")
	target := addColumn(t, p, source.BoardID, "Em andamento", "b1", "b2")

	cards, err := p.Boards().ListCards(ctx, source.ID)
	require.NoError(t, err)

	pos := 1
	moved, err := p.Boards().MoveCard(ctx, cards[0].ID, target.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Position)

	assert.Equal(t, []string{"a2", "a3"}, columnTitles(t, p, source.ID))
	assert.Equal(t, []string{"b1", "a1", "b2"}, columnTitles(t, p, target.ID))
}

func TestMoveCard_AcrossColumnsAppendsWithNilPosition(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	source := setupColumn(t, p, "a1", "a2")
	target := addColumn(t, p, source.BoardID, "Em andamento", "b1")

	cards, err := p.Boards().ListCards(ctx, source.ID)
	require.NoError(t, err)

	moved, err := p.Boards().MoveCard(ctx, cards[1].ID, target.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)

	assert.Equal(t, []string{"a1"}, columnTitles(t, p, source.ID))
	assert.Equal(t, []string{"b1", "a2"}, columnTitles(t, p, target.ID))
}

func TestMoveCard_AcrossColumnsIntoEmptyColumn(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	source := setupColumn(t, p, "a1")
	target := addColumn(t, p, source.BoardID, "Vazio")

	cards, err := p.Boards().ListCards(ctx, source.ID)
	require.NoError(t, err)

	pos := 0
	moved, err := p.Boards().MoveCard(ctx, cards[0].ID, target.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)

	assert.Empty(t, columnTitles(t, p, source.ID))
	assert.Equal(t, []string{"a1"}, columnTitles(t, p, target.ID))
}

func TestMoveCard_SameColumnPositionEqualToCountRejected(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	// Within one column the highest valid slot is count-1.
	pos := 3
	_, err = p.Boards().MoveCard(ctx, cards[0].ID, column.ID, &pos)
	assert.True(t, persistence.IsInvalidPosition(err))
}

func TestMoveCard_CrossColumnPositionEqualToCountAppends(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	source := setupColumn(t, p, "a1")
	target := addColumn(t, p, source.BoardID, "Em andamento", "b1", "b2")

	cards, err := p.Boards().ListCards(ctx, source.ID)
	require.NoError(t, err)

	pos := 2
	moved, err := p.Boards().MoveCard(ctx, cards[0].ID, target.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)

	assert.Equal(t, []string{"b1", "b2", "a1"}, columnTitles(t, p, target.ID))
}

func TestMoveCard_NegativePositionRejected(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := -2
	_, err = p.Boards().MoveCard(ctx, cards[0].ID, column.ID, &pos)
	assert.True(t, persistence.IsInvalidPosition(err))
}

func TestMoveCard_UnknownCard(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1")

	_, err := p.Boards().MoveCard(ctx, "missing", column.ID, nil)
	assert.ErrorIs(t, err, persistence.ErrCardNotFound)
}

func TestMoveCard_UnknownTargetColumn(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	_, err = p.Boards().MoveCard(ctx, cards[0].ID, "missing", nil)
	assert.ErrorIs(t, err, persistence.ErrColumnNotFound)
}

func TestDeleteCard_ClosesGap(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	require.NoError(t, p.Boards().DeleteCard(ctx, cards[1].ID))

	assert.Equal(t, []string{"c1", "c3"}, columnTitles(t, p, column.ID))
}

func TestDeleteCard_Unknown(t *testing.T) {
	p := NewPersistence()

	err := p.Boards().DeleteCard(context.Background(), "missing")
	assert.ErrorIs(t, err, persistence.ErrCardNotFound)
}

func TestLedger_StaysDenseAcrossMixedOperations(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()
	column := setupColumn(t, p, "c1", "c2", "c3", "c4", "c5")
	other := addColumn(t, p, column.BoardID, "Outro")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := 0
	_, err = p.Boards().MoveCard(ctx, cards[4].ID, column.ID, &pos)
	require.NoError(t, err)

	require.NoError(t, p.Boards().DeleteCard(ctx, cards[2].ID))

	_, err = p.Boards().MoveCard(ctx, cards[0].ID, other.ID, nil)
	require.NoError(t, err)

	extra := &models.Card{ColumnID: column.ID, Title: "c6", Position: 1}
	require.NoError(t, p.Boards().CreateCard(ctx, extra))

	assert.Equal(t, []string{"c5", "c6", "c2", "c4"}, columnTitles(t, p, column.ID))
	assert.Equal(t, []string{"c1"}, columnTitles(t, p, other.ID))
}

func TestSaveBoard_SecondDefaultRejected(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence()

	require.NoError(t, p.Boards().SaveBoard(ctx, &models.Board{Name: "Main", IsDefault: true}))

	err := p.Boards().SaveBoard(ctx, &models.Board{Name: "Other", IsDefault: true})
	assert.ErrorIs(t, err, persistence.ErrDuplicateDefaultBoard)
}
