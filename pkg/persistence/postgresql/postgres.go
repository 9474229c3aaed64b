// Package postgresql provides the PostgreSQL persistence implementation
// for workflows, leads, boards, and the rotation cursor.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	workflowRepo *WorkflowRepository
	leadRepo     *LeadRepository
	boardRepo    *BoardRepository
	userRepo     *UserRepository
	tagRepo      *TagRepository
	messageRepo  *MessageRepository
	rotationRepo *RotationRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		workflowRepo: NewWorkflowRepository(database, logger),
		leadRepo:     NewLeadRepository(database, logger),
		boardRepo:    NewBoardRepository(database, logger),
		userRepo:     NewUserRepository(database, logger),
		tagRepo:      NewTagRepository(database, logger),
		messageRepo:  NewMessageRepository(database, logger),
		rotationRepo: NewRotationRepository(database, logger),
	}

	// Run migrations on initialization
	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

func (p *Persistence) Workflows() persistence.WorkflowRepository { return p.workflowRepo }
func (p *Persistence) Leads() persistence.LeadRepository         { return p.leadRepo }
func (p *Persistence) Boards() persistence.BoardRepository       { return p.boardRepo }
func (p *Persistence) Users() persistence.UserRepository         { return p.userRepo }
func (p *Persistence) Tags() persistence.TagRepository           { return p.tagRepo }
func (p *Persistence) Messages() persistence.MessageRepository   { return p.messageRepo }
func (p *Persistence) Rotation() persistence.RotationRepository  { return p.rotationRepo }

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
