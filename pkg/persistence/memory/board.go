package memory

import (
	"context"
	"sort"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// BoardRepository stores boards, columns, and cards in memory and keeps
// card positions dense per column.
type BoardRepository struct {
	store *store
}

func (r *BoardRepository) SaveBoard(ctx context.Context, board *models.Board) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if board.CreatedAt.IsZero() {
		board.CreatedAt = now
	}

	board.UpdatedAt = now

	if board.ID == "" {
		board.ID = newID()
	}

	if board.IsDefault {
		for _, other := range r.store.boards {
			if other.IsDefault && other.ID != board.ID {
				return persistence.ErrDuplicateDefaultBoard
			}
		}
	}

	stored := *board
	stored.Columns = nil
	r.store.boards[board.ID] = &stored

	return nil
}

func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	board, ok := r.store.boards[id]
	if !ok {
		return nil, persistence.ErrBoardNotFound
	}

	clone := *board
	clone.Columns = make([]*models.Column, 0)

	for _, column := range r.store.columns {
		if column.BoardID != id {
			continue
		}

		c := *column
		c.Cards = r.columnCards(column.ID)
		clone.Columns = append(clone.Columns, &c)
	}

	sort.Slice(clone.Columns, func(i, j int) bool {
		return clone.Columns[i].Position < clone.Columns[j].Position
	})

	return &clone, nil
}

func (r *BoardRepository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	boards := make([]*models.Board, 0, len(r.store.boards))

	for _, board := range r.store.boards {
		clone := *board
		boards = append(boards, &clone)
	}

	sort.Slice(boards, func(i, j int) bool {
		if boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].ID < boards[j].ID
		}

		return boards[i].CreatedAt.Before(boards[j].CreatedAt)
	})

	return boards, nil
}

func (r *BoardRepository) SaveColumn(ctx context.Context, column *models.Column) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if column.CreatedAt.IsZero() {
		column.CreatedAt = time.Now().UTC()
	}

	if column.ID == "" {
		column.ID = newID()
		column.Position = r.boardColumnCount(column.BoardID)
	}

	stored := *column
	stored.Cards = nil
	r.store.columns[column.ID] = &stored

	return nil
}

func (r *BoardRepository) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	column, ok := r.store.columns[id]
	if !ok {
		return nil, persistence.ErrColumnNotFound
	}

	clone := *column
	clone.Cards = r.columnCards(id)

	return &clone, nil
}

func (r *BoardRepository) CreateCard(ctx context.Context, card *models.Card) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.columns[card.ColumnID]; !ok {
		return persistence.ErrColumnNotFound
	}

	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	if card.ID == "" {
		card.ID = newID()
	}

	count := len(r.columnCards(card.ColumnID))

	switch {
	case card.Position < 0 || card.Position == count:
		card.Position = count
	case card.Position > count:
		return &persistence.CardError{Op: "Create", CardID: card.ID, ColumnID: card.ColumnID, Err: persistence.ErrInvalidPosition}
	default:
		for _, sibling := range r.store.cards {
			if sibling.ColumnID == card.ColumnID && sibling.Position >= card.Position {
				sibling.Position++
			}
		}
	}

	stored := *card
	r.store.cards[card.ID] = &stored

	return nil
}

func (r *BoardRepository) GetCard(ctx context.Context, id string) (*models.Card, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	card, ok := r.store.cards[id]
	if !ok {
		return nil, persistence.ErrCardNotFound
	}

	clone := *card

	return &clone, nil
}

func (r *BoardRepository) ListCards(ctx context.Context, columnID string) ([]*models.Card, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.columnCards(columnID), nil
}

func (r *BoardRepository) MoveCard(ctx context.Context, cardID, toColumnID string, position *int) (*models.Card, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	card, ok := r.store.cards[cardID]
	if !ok {
		return nil, persistence.ErrCardNotFound
	}

	if _, ok := r.store.columns[toColumnID]; !ok {
		return nil, persistence.ErrColumnNotFound
	}

	fromColumnID := card.ColumnID
	fromPos := card.Position
	sameColumn := fromColumnID == toColumnID

	count := len(r.columnCards(toColumnID))

	maxPos := count
	if sameColumn {
		maxPos = count - 1
	}

	toPos := maxPos
	if position != nil {
		toPos = *position
		if toPos < 0 || toPos > maxPos {
			return nil, &persistence.CardError{Op: "Move", CardID: cardID, ColumnID: toColumnID, Err: persistence.ErrInvalidPosition}
		}
	}

	switch {
	case sameColumn && fromPos == toPos:
		// Already in place.
	case sameColumn && fromPos < toPos:
		for _, sibling := range r.store.cards {
			if sibling.ID != cardID && sibling.ColumnID == fromColumnID &&
				sibling.Position > fromPos && sibling.Position <= toPos {
				sibling.Position--
			}
		}
	case sameColumn:
		for _, sibling := range r.store.cards {
			if sibling.ID != cardID && sibling.ColumnID == fromColumnID &&
				sibling.Position >= toPos && sibling.Position < fromPos {
				sibling.Position++
			}
		}
	default:
		for _, sibling := range r.store.cards {
			if sibling.ColumnID == fromColumnID && sibling.Position > fromPos {
				sibling.Position--
			}

			if sibling.ColumnID == toColumnID && sibling.Position >= toPos {
				sibling.Position++
			}
		}
	}

	card.ColumnID = toColumnID
	card.Position = toPos
	card.UpdatedAt = time.Now().UTC()

	clone := *card

	return &clone, nil
}

func (r *BoardRepository) DeleteCard(ctx context.Context, cardID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	card, ok := r.store.cards[cardID]
	if !ok {
		return persistence.ErrCardNotFound
	}

	delete(r.store.cards, cardID)

	for _, sibling := range r.store.cards {
		if sibling.ColumnID == card.ColumnID && sibling.Position > card.Position {
			sibling.Position--
		}
	}

	return nil
}

// columnCards returns clones of the column's cards in position order.
// Callers must hold the store mutex.
func (r *BoardRepository) columnCards(columnID string) []*models.Card {
	cards := make([]*models.Card, 0)

	for _, card := range r.store.cards {
		if card.ColumnID == columnID {
			clone := *card
			cards = append(cards, &clone)
		}
	}

	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Position < cards[j].Position
	})

	return cards
}

func (r *BoardRepository) boardColumnCount(boardID string) int {
	count := 0

	for _, column := range r.store.columns {
		if column.BoardID == boardID {
			count++
		}
	}

	return count
}
