package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// BoardRepository handles boards, columns, and cards. Card mutations keep
// every touched column's positions dense: exactly {0..n-1} after commit.
// Column rows are locked FOR UPDATE before any count or shift so that two
// concurrent mutations of the same column serialize instead of both
// observing the pre-mutation state.
type BoardRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewBoardRepository creates a new board repository.
func NewBoardRepository(db *sql.DB, logger *slog.Logger) *BoardRepository {
	return &BoardRepository{db: db, logger: logger}
}

// SaveBoard inserts or updates a board.
func (r *BoardRepository) SaveBoard(ctx context.Context, board *models.Board) error {
	now := time.Now().UTC()

	if board.CreatedAt.IsZero() {
		board.CreatedAt = now
	}

	board.UpdatedAt = now

	if board.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate board ID: %w", err)
		}

		board.ID = id.String()
	}

	query := `
		INSERT INTO boards (id, name, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			is_default = EXCLUDED.is_default,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, board.ID, board.Name, board.IsDefault, board.CreatedAt, board.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return persistence.ErrDuplicateDefaultBoard
		}

		return fmt.Errorf("failed to save board: %w", err)
	}

	return nil
}

// GetBoard returns a board with its columns and cards in position order.
func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	query := `
		SELECT id, name, is_default, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	var board models.Board

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID, &board.Name, &board.IsDefault, &board.CreatedAt, &board.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrBoardNotFound
		}

		return nil, fmt.Errorf("failed to scan board: %w", err)
	}

	err = r.loadColumns(ctx, &board)
	if err != nil {
		return nil, err
	}

	return &board, nil
}

// ListBoards returns all boards without columns.
func (r *BoardRepository) ListBoards(ctx context.Context) ([]*models.Board, error) {
	query := `
		SELECT id, name, is_default, created_at, updated_at
		FROM boards
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query boards: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	boards := make([]*models.Board, 0)

	for rows.Next() {
		var board models.Board

		err = rows.Scan(&board.ID, &board.Name, &board.IsDefault, &board.CreatedAt, &board.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}

		boards = append(boards, &board)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating boards: %w", err)
	}

	return boards, nil
}

// SaveColumn inserts or updates a column. New columns append at the end
// of their board's column order.
func (r *BoardRepository) SaveColumn(ctx context.Context, column *models.Column) error {
	if column.CreatedAt.IsZero() {
		column.CreatedAt = time.Now().UTC()
	}

	isNew := column.ID == ""
	if isNew {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate column ID: %w", err)
		}

		column.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if isNew {
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM board_columns WHERE board_id = $1", column.BoardID,
		).Scan(&column.Position)
		if err != nil {
			return fmt.Errorf("failed to count board columns: %w", err)
		}
	}

	query := `
		INSERT INTO board_columns (id, board_id, name, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position
	`

	_, err = tx.ExecContext(ctx, query, column.ID, column.BoardID, column.Name, column.Position, column.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save column: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetColumn returns a column with its cards in position order.
func (r *BoardRepository) GetColumn(ctx context.Context, id string) (*models.Column, error) {
	query := `
		SELECT id, board_id, name, position, created_at
		FROM board_columns
		WHERE id = $1
	`

	var column models.Column

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&column.ID, &column.BoardID, &column.Name, &column.Position, &column.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrColumnNotFound
		}

		return nil, fmt.Errorf("failed to scan column: %w", err)
	}

	column.Cards, err = r.ListCards(ctx, id)
	if err != nil {
		return nil, err
	}

	return &column, nil
}

// CreateCard inserts the card. With Position < 0 the card is appended at
// the end of its column; otherwise a slot is opened at Position, which
// must lie in [0, count].
func (r *BoardRepository) CreateCard(ctx context.Context, card *models.Card) error {
	now := time.Now().UTC()
	card.CreatedAt = now
	card.UpdatedAt = now

	if card.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate card ID: %w", err)
		}

		card.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	count, err := lockColumn(ctx, tx, card.ColumnID)
	if err != nil {
		return err
	}

	switch {
	case card.Position < 0 || card.Position == count:
		card.Position = count
	case card.Position > count:
		err = &persistence.CardError{Op: "Create", CardID: card.ID, ColumnID: card.ColumnID, Err: persistence.ErrInvalidPosition}

		return err
	default:
		// Open a slot for the new card.
		_, err = tx.ExecContext(ctx, `
			UPDATE cards SET position = position + 1, updated_at = $3
			WHERE column_id = $1 AND position >= $2
		`, card.ColumnID, card.Position, now)
		if err != nil {
			return fmt.Errorf("failed to shift cards: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cards (id, column_id, title, lead_id, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, card.ID, card.ColumnID, card.Title, card.LeadID, card.Position, card.CreatedAt, card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCard returns a card by its ID.
func (r *BoardRepository) GetCard(ctx context.Context, id string) (*models.Card, error) {
	query := `
		SELECT id, column_id, title, lead_id, position, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrCardNotFound
		}

		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	return card, nil
}

// ListCards returns the column's cards in position order.
func (r *BoardRepository) ListCards(ctx context.Context, columnID string) ([]*models.Card, error) {
	query := `
		SELECT id, column_id, title, lead_id, position, created_at, updated_at
		FROM cards
		WHERE column_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	cards := make([]*models.Card, 0)

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		cards = append(cards, card)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// MoveCard moves the card to toColumnID at the given position. A nil
// position appends at the end of the target column. Sibling positions are
// shifted before the moved card's final position is written so a transient
// duplicate never collides with a sibling under the uniqueness constraint.
func (r *BoardRepository) MoveCard(ctx context.Context, cardID, toColumnID string, position *int) (*models.Card, error) {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	card, err := readCard(ctx, tx, cardID)
	if err != nil {
		return nil, err
	}

	fromColumnID := card.ColumnID
	sameColumn := fromColumnID == toColumnID

	// Column locks must be taken before the card row lock: sibling
	// shifts update card rows while holding the column locks, so a
	// transaction sitting on the card row while waiting for a column
	// would deadlock against a shift in flight. Columns are locked in
	// id order so concurrent opposite moves cannot deadlock either.
	err = lockColumns(ctx, tx, fromColumnID, toColumnID)
	if err != nil {
		return nil, err
	}

	card, err = lockCard(ctx, tx, cardID)
	if err != nil {
		return nil, err
	}

	if card.ColumnID != fromColumnID {
		// The card changed columns between the plain read and the
		// column locks, so the wrong columns are locked.
		err = &persistence.CardError{Op: "Move", CardID: cardID, ColumnID: toColumnID, Err: persistence.ErrConcurrentMove}

		return nil, err
	}

	fromPos := card.Position

	var count int

	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cards WHERE column_id = $1", toColumnID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}

	// Within the same column the moved card already occupies a slot, so
	// the last valid target position is count-1; across columns a new
	// slot opens and count itself is valid.
	maxPos := count
	if sameColumn {
		maxPos = count - 1
	}

	toPos := maxPos
	if position != nil {
		toPos = *position
		if toPos < 0 || toPos > maxPos {
			err = &persistence.CardError{Op: "Move", CardID: cardID, ColumnID: toColumnID, Err: persistence.ErrInvalidPosition}

			return nil, err
		}
	}

	switch {
	case sameColumn && fromPos == toPos:
		// Already in place.
	case sameColumn && fromPos < toPos:
		_, err = tx.ExecContext(ctx, `
			UPDATE cards SET position = position - 1, updated_at = $4
			WHERE column_id = $1 AND position > $2 AND position <= $3 AND id <> $5
		`, fromColumnID, fromPos, toPos, now, cardID)
	case sameColumn:
		_, err = tx.ExecContext(ctx, `
			UPDATE cards SET position = position + 1, updated_at = $4
			WHERE column_id = $1 AND position >= $2 AND position < $3 AND id <> $5
		`, fromColumnID, toPos, fromPos, now, cardID)
	default:
		// Close the gap left behind, then open a slot in the target.
		_, err = tx.ExecContext(ctx, `
			UPDATE cards SET position = position - 1, updated_at = $3
			WHERE column_id = $1 AND position > $2
		`, fromColumnID, fromPos, now)
		if err == nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE cards SET position = position + 1, updated_at = $3
				WHERE column_id = $1 AND position >= $2
			`, toColumnID, toPos, now)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to shift cards: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE cards SET column_id = $2, position = $3, updated_at = $4
		WHERE id = $1
	`, cardID, toColumnID, toPos, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update moved card: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	card.ColumnID = toColumnID
	card.Position = toPos
	card.UpdatedAt = now

	return card, nil
}

// DeleteCard deletes the card and closes the gap in its column.
func (r *BoardRepository) DeleteCard(ctx context.Context, cardID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	card, err := readCard(ctx, tx, cardID)
	if err != nil {
		return err
	}

	// Same lock order as MoveCard: column first, card row second.
	_, err = lockColumn(ctx, tx, card.ColumnID)
	if err != nil {
		return err
	}

	locked, err := lockCard(ctx, tx, cardID)
	if err != nil {
		return err
	}

	if locked.ColumnID != card.ColumnID {
		err = &persistence.CardError{Op: "Delete", CardID: cardID, ColumnID: card.ColumnID, Err: persistence.ErrConcurrentMove}

		return err
	}

	card = locked

	_, err = tx.ExecContext(ctx, "DELETE FROM cards WHERE id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE cards SET position = position - 1, updated_at = NOW()
		WHERE column_id = $1 AND position > $2
	`, card.ColumnID, card.Position)
	if err != nil {
		return fmt.Errorf("failed to shift cards: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// lockColumn locks the column row and returns its current card count.
func lockColumn(ctx context.Context, tx *sql.Tx, columnID string) (int, error) {
	var locked string

	err := tx.QueryRowContext(ctx,
		"SELECT id FROM board_columns WHERE id = $1 FOR UPDATE", columnID,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, persistence.ErrColumnNotFound
		}

		return 0, fmt.Errorf("failed to lock column: %w", err)
	}

	var count int

	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cards WHERE column_id = $1", columnID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}

	return count, nil
}

func lockColumns(ctx context.Context, tx *sql.Tx, columnIDs ...string) error {
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM board_columns WHERE id = ANY($1) ORDER BY id FOR UPDATE",
		pq.Array(columnIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to lock columns: %w", err)
	}

	locked := make(map[string]bool)

	for rows.Next() {
		var id string

		err = rows.Scan(&id)
		if err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to scan locked column: %w", err)
		}

		locked[id] = true
	}

	err = rows.Close()
	if err != nil {
		return fmt.Errorf("failed to close rows: %w", err)
	}

	for _, id := range columnIDs {
		if !locked[id] {
			return persistence.ErrColumnNotFound
		}
	}

	return nil
}

func lockCard(ctx context.Context, tx *sql.Tx, cardID string) (*models.Card, error) {
	card, err := scanCard(tx.QueryRowContext(ctx, `
		SELECT id, column_id, title, lead_id, position, created_at, updated_at
		FROM cards
		WHERE id = $1
		FOR UPDATE
	`, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrCardNotFound
		}

		return nil, fmt.Errorf("failed to lock card: %w", err)
	}

	return card, nil
}

// readCard reads the card without locking its row. Callers that mutate
// must re-read with lockCard after the column locks are held.
func readCard(ctx context.Context, tx *sql.Tx, cardID string) (*models.Card, error) {
	card, err := scanCard(tx.QueryRowContext(ctx, `
		SELECT id, column_id, title, lead_id, position, created_at, updated_at
		FROM cards
		WHERE id = $1
	`, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrCardNotFound
		}

		return nil, fmt.Errorf("failed to read card: %w", err)
	}

	return card, nil
}

func scanCard(row rowScanner) (*models.Card, error) {
	var (
		card   models.Card
		leadID sql.NullString
	)

	err := row.Scan(
		&card.ID,
		&card.ColumnID,
		&card.Title,
		&leadID,
		&card.Position,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if leadID.Valid {
		card.LeadID = &leadID.String
	}

	return &card, nil
}

func (r *BoardRepository) loadColumns(ctx context.Context, board *models.Board) error {
	query := `
		SELECT id, board_id, name, position, created_at
		FROM board_columns
		WHERE board_id = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, board.ID)
	if err != nil {
		return fmt.Errorf("failed to query columns: %w", err)
	}

	board.Columns = make([]*models.Column, 0)

	for rows.Next() {
		var column models.Column

		err = rows.Scan(&column.ID, &column.BoardID, &column.Name, &column.Position, &column.CreatedAt)
		if err != nil {
			_ = rows.Close()

			return fmt.Errorf("failed to scan column: %w", err)
		}

		board.Columns = append(board.Columns, &column)
	}

	err = rows.Close()
	if err != nil {
		return fmt.Errorf("failed to close rows: %w", err)
	}

	for _, column := range board.Columns {
		column.Cards, err = r.ListCards(ctx, column.ID)
		if err != nil {
			return err
		}
	}

	return nil
}
