package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{
		"rotation_cursors", "cards", "board_columns", "boards",
		"messages", "lead_tags", "tags",
		"workflow_actions", "workflow_triggers", "workflows",
		"leads", "users", "schema_migrations",
	} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("funil_test"),
			postgres.WithUsername("funil"),
			postgres.WithPassword("funil"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx
}

func createBoardWithColumn(ctx context.Context, t *testing.T, p *postgresql.Persistence, cardTitles ...string) *models.Column {
	t.Helper()

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

// assertDense verifies the column's positions are exactly 0..n-1 and
// returns the titles in order.
func assertDense(ctx context.Context, t *testing.T, p *postgresql.Persistence, columnID string) []string {
	t.Helper()

	cards, err := p.Boards().ListCards(ctx, columnID)
	require.NoError(t, err)

	titles := make([]string, 0, len(cards))

	for i, card := range cards {
		require.Equal(t, i, card.Position)

		titles = append(titles, card.Title)
	}

	return titles
}

func TestNewPersistence_Migrations(t *testing.T) {
	p, ctx := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestWorkflowRepository_SaveAndLoad(t *testing.T) {
	p, ctx := setupTestDB(t)

	workflow := &models.Workflow{
		Name:     "Welcome flow",
		IsActive: true,
		Triggers: []*models.Trigger{
			{Type: models.TriggerLeadStageChanged, Config: map[string]any{"stage": string(models.StageContactMade)}},
		},
		Actions: []*models.Action{
			{Type: models.ActionSendMessage, Config: map[string]any{"body": "Oi!"}},
		},
	}

	require.NoError(t, p.Workflows().Save(ctx, workflow))
	require.NotEmpty(t, workflow.ID)

	loaded, err := p.Workflows().GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome flow", loaded.Name)
	require.Len(t, loaded.Triggers, 1)
	assert.Equal(t, string(models.StageContactMade), loaded.Triggers[0].ConfigStage())
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, "Oi!", loaded.Actions[0].Config["body"])

	active, err := p.Workflows().ListActive(ctx, models.TriggerLeadStageChanged)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.NoError(t, p.Workflows().Delete(ctx, workflow.ID))

	_, err = p.Workflows().GetByID(ctx, workflow.ID)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestBoardRepository_MoveWithinColumn(t *testing.T) {
	p, ctx := setupTestDB(t)

	column := createBoardWithColumn(ctx, t, p, "c1", "c2", "c3", "c4")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := 2
	moved, err := p.Boards().MoveCard(ctx, cards[0].ID, column.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)

	assert.Equal(t, []string{"c2", "c3", "c1", "c4"}, assertDense(ctx, t, p, column.ID))
}

func TestBoardRepository_MoveAcrossColumns(t *testing.T) {
	p, ctx := setupTestDB(t)

	source := createBoardWithColumn(ctx, t, p, "a1", "a2", "a3")

	target := &models.Column{BoardID: source.BoardID, Name: "Em andamento"}
	require.NoError(t, p.Boards().SaveColumn(ctx, target))

	for _, title := range []string{"b1", "b2"} {
		card := &models.Card{ColumnID: target.ID, Title: title, Position: -1}
		require.NoError(t, p.Boards().CreateCard(ctx, card))
	}

	cards, err := p.Boards().ListCards(ctx, source.ID)
	require.NoError(t, err)

	pos := 1
	moved, err := p.Boards().MoveCard(ctx, cards[0].ID, target.ID, &pos)
	require.NoError(t, err)
	assert.Equal(t, target.ID, moved.ColumnID)
	assert.Equal(t, 1, moved.Position)

	assert.Equal(t, []string{"a2", "a3"}, assertDense(ctx, t, p, source.ID))
	assert.Equal(t, []string{"b1", "a1", "b2"}, assertDense(ctx, t, p, target.ID))
}

func TestBoardRepository_DeleteCardClosesGap(t *testing.T) {
	p, ctx := setupTestDB(t)

	column := createBoardWithColumn(ctx, t, p, "c1", "c2", "c3")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	require.NoError(t, p.Boards().DeleteCard(ctx, cards[1].ID))

	assert.Equal(t, []string{"c1", "c3"}, assertDense(ctx, t, p, column.ID))
}

func TestBoardRepository_OutOfRangePositionRejected(t *testing.T) {
	p, ctx := setupTestDB(t)

	column := createBoardWithColumn(ctx, t, p, "c1", "c2")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	pos := 2
	_, err = p.Boards().MoveCard(ctx, cards[0].ID, column.ID, &pos)
	assert.True(t, persistence.IsInvalidPosition(err))
}

func TestBoardRepository_ConcurrentMovesKeepColumnDense(t *testing.T) {
	p, ctx := setupTestDB(t)

	column := createBoardWithColumn(ctx, t, p, "c1", "c2", "c3", "c4", "c5")

	cards, err := p.Boards().ListCards(ctx, column.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for i, target := range []int{4, 0, 2} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			pos := target
			_, err := p.Boards().MoveCard(ctx, cards[i].ID, column.ID, &pos)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	titles := assertDense(ctx, t, p, column.ID)
	assert.Len(t, titles, 5)
}

// Opposite cross-column moves shift sibling rows in each other's columns.
// Both transactions must take the column locks before touching any card
// row or one of them aborts with a deadlock instead of serializing.
func TestBoardRepository_OpposingCrossColumnMoves(t *testing.T) {
	p, ctx := setupTestDB(t)

	source := createBoardWithColumn(ctx, t, p, "a1", "a2", "a3")

	target := &models.Column{BoardID: source.BoardID, Name: "Em andamento"}
	require.NoError(t, p.Boards().SaveColumn(ctx, target))

	for _, title := range []string{"b1", "b2", "b3"} {
		card := &models.Card{ColumnID: target.ID, Title: title, Position: -1}
		require.NoError(t, p.Boards().CreateCard(ctx, card))
	}

	sourceCards, err := p.Boards().ListCards(ctx, source.ID)
	require.NoError(t, err)

	targetCards, err := p.Boards().ListCards(ctx, target.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup

	pingPong := func(cardID, first, second string) {
		defer wg.Done()

		for range 4 {
			pos := 0
			_, err := p.Boards().MoveCard(ctx, cardID, first, &pos)
			assert.NoError(t, err)

			_, err = p.Boards().MoveCard(ctx, cardID, second, &pos)
			assert.NoError(t, err)
		}
	}

	wg.Add(2)

	go pingPong(sourceCards[0].ID, target.ID, source.ID)
	go pingPong(targetCards[0].ID, source.ID, target.ID)

	wg.Wait()

	assert.Len(t, assertDense(ctx, t, p, source.ID), 3)
	assert.Len(t, assertDense(ctx, t, p, target.ID), 3)
}

func TestBoardRepository_SecondDefaultBoardRejected(t *testing.T) {
	p, ctx := setupTestDB(t)

	require.NoError(t, p.Boards().SaveBoard(ctx, &models.Board{Name: "Main", IsDefault: true}))

	err := p.Boards().SaveBoard(ctx, &models.Board{Name: "Other", IsDefault: true})
	assert.ErrorIs(t, err, persistence.ErrDuplicateDefaultBoard)
}

func TestRotationRepository_AdvanceCursor(t *testing.T) {
	p, ctx := setupTestDB(t)

	for _, id := range []string{"u10", "u11", "u12"} {
		user := &models.User{
			ID:     id,
			Name:   "User " + id,
			Email:  id + "@funil.dev",
			Role:   models.RoleManager,
			Active: true,
		}
		require.NoError(t, p.Users().Save(ctx, user))
	}

	lead := &models.Lead{Name: "Ana", Stage: models.StageProspect, Status: models.LeadStatusOpen}
	require.NoError(t, p.Leads().Save(ctx, lead))

	pool, err := p.Users().EligibleAssignees(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 3)

	var got []string

	for range 4 {
		assignee, err := p.Rotation().AdvanceCursor(ctx, models.RotationKeyLeadAssign, pool, lead.ID)
		require.NoError(t, err)

		got = append(got, assignee.ID)
	}

	assert.Equal(t, []string{"u10", "u11", "u12", "u10"}, got)

	stored, err := p.Leads().GetByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AssignedTo)
	assert.Equal(t, "u10", *stored.AssignedTo)

	cursor, err := p.Rotation().Cursor(ctx, models.RotationKeyLeadAssign)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "u10", cursor.LastAssigneeID)
}

func TestRotationRepository_ConcurrentAdvanceNeverDuplicates(t *testing.T) {
	p, ctx := setupTestDB(t)

	for _, id := range []string{"u10", "u11"} {
		user := &models.User{
			ID:     id,
			Name:   "User " + id,
			Email:  id + "@funil.dev",
			Role:   models.RoleAdmin,
			Active: true,
		}
		require.NoError(t, p.Users().Save(ctx, user))
	}

	leads := make([]*models.Lead, 2)
	for i := range leads {
		leads[i] = &models.Lead{Name: "Lead", Stage: models.StageProspect, Status: models.LeadStatusOpen}
		require.NoError(t, p.Leads().Save(ctx, leads[i]))
	}

	pool, err := p.Users().EligibleAssignees(ctx)
	require.NoError(t, err)

	// Both goroutines start from the same cursor snapshot. The
	// compare-and-swap lets exactly one win per round; the loser
	// retries until it commits a distinct assignee.
	results := make([]string, 2)

	var wg sync.WaitGroup

	for i := range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				assignee, err := p.Rotation().AdvanceCursor(ctx, models.RotationKeyLeadAssign, pool, leads[i].ID)
				if persistence.IsCursorConflict(err) {
					continue
				}

				assert.NoError(t, err)

				if assignee != nil {
					results[i] = assignee.ID
				}

				return
			}
		}()
	}

	wg.Wait()

	assert.NotEqual(t, results[0], results[1])
	assert.ElementsMatch(t, []string{"u10", "u11"}, results)

	cursor, err := p.Rotation().Cursor(ctx, models.RotationKeyLeadAssign)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Contains(t, results, cursor.LastAssigneeID)
}

func TestTagRepository_AttachIsIdempotent(t *testing.T) {
	p, ctx := setupTestDB(t)

	lead := &models.Lead{Name: "Ana", Stage: models.StageProspect, Status: models.LeadStatusOpen}
	require.NoError(t, p.Leads().Save(ctx, lead))

	tag := &models.Tag{Name: "hot", Color: "#ff0000"}
	require.NoError(t, p.Tags().Save(ctx, tag))

	require.NoError(t, p.Tags().Attach(ctx, lead.ID, tag.ID))
	require.NoError(t, p.Tags().Attach(ctx, lead.ID, tag.ID))

	tags, err := p.Tags().LeadTags(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "hot", tags[0].Name)
}

func TestMessageRepository_CreateAndList(t *testing.T) {
	p, ctx := setupTestDB(t)

	lead := &models.Lead{Name: "Ana", Stage: models.StageProspect, Status: models.LeadStatusOpen}
	require.NoError(t, p.Leads().Save(ctx, lead))

	message := &models.Message{
		LeadID:    lead.ID,
		Direction: models.MessageOutbound,
		Channel:   "email",
		Body:      "Oi!",
		Status:    models.MessageQueued,
	}
	require.NoError(t, p.Messages().Create(ctx, message))

	messages, err := p.Messages().ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, models.MessageQueued, messages[0].Status)
}
