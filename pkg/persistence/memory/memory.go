// Package memory provides an in-memory persistence implementation used by
// unit tests and local development. All repositories share one store and
// one mutex, so every operation is atomic with respect to the others.
// That is the same guarantee the PostgreSQL backend gets from
// transactions and row locks.
package memory

import (
	"context"
	"sync"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
	"github.com/google/uuid"
)

type store struct {
	mu sync.Mutex

	workflows map[string]*models.Workflow
	leads     map[string]*models.Lead
	boards    map[string]*models.Board
	columns   map[string]*models.Column
	cards     map[string]*models.Card
	users     map[string]*models.User
	tags      map[string]*models.Tag
	leadTags  map[string]map[string]bool
	messages  []*models.Message
	cursors   map[string]*models.RotationCursor
}

// Persistence implements the persistence layer in process memory.
type Persistence struct {
	store        *store
	workflowRepo *WorkflowRepository
	leadRepo     *LeadRepository
	boardRepo    *BoardRepository
	userRepo     *UserRepository
	tagRepo      *TagRepository
	messageRepo  *MessageRepository
	rotationRepo *RotationRepository
}

// NewPersistence creates an empty in-memory persistence layer.
func NewPersistence() *Persistence {
	s := &store{
		workflows: make(map[string]*models.Workflow),
		leads:     make(map[string]*models.Lead),
		boards:    make(map[string]*models.Board),
		columns:   make(map[string]*models.Column),
		cards:     make(map[string]*models.Card),
		users:     make(map[string]*models.User),
		tags:      make(map[string]*models.Tag),
		leadTags:  make(map[string]map[string]bool),
		cursors:   make(map[string]*models.RotationCursor),
	}

	return &Persistence{
		store:        s,
		workflowRepo: &WorkflowRepository{store: s},
		leadRepo:     &LeadRepository{store: s},
		boardRepo:    &BoardRepository{store: s},
		userRepo:     &UserRepository{store: s},
		tagRepo:      &TagRepository{store: s},
		messageRepo:  &MessageRepository{store: s},
		rotationRepo: &RotationRepository{store: s},
	}
}

func (p *Persistence) Workflows() persistence.WorkflowRepository { return p.workflowRepo }
func (p *Persistence) Leads() persistence.LeadRepository         { return p.leadRepo }
func (p *Persistence) Boards() persistence.BoardRepository       { return p.boardRepo }
func (p *Persistence) Users() persistence.UserRepository         { return p.userRepo }
func (p *Persistence) Tags() persistence.TagRepository           { return p.tagRepo }
func (p *Persistence) Messages() persistence.MessageRepository   { return p.messageRepo }
func (p *Persistence) Rotation() persistence.RotationRepository  { return p.rotationRepo }

func (p *Persistence) HealthCheck(ctx context.Context) error { return nil }

func (p *Persistence) Close(ctx context.Context) error { return nil }

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
