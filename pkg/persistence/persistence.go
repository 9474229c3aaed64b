package persistence

import (
	"context"

	"github.com/funildev/funil/pkg/models"
)

// Persistence is the facade over all repositories of one backend.
type Persistence interface {
	Workflows() WorkflowRepository
	Leads() LeadRepository
	Boards() BoardRepository
	Users() UserRepository
	Tags() TagRepository
	Messages() MessageRepository
	Rotation() RotationRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflows together with their owned triggers
// and actions. Deleting a workflow deletes both.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *models.Workflow) error
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// ListActive returns active workflows having at least one trigger of
	// the given type, with triggers and actions loaded.
	ListActive(ctx context.Context, triggerType models.TriggerType) ([]*models.Workflow, error)
	Delete(ctx context.Context, id string) error
}

type LeadRepository interface {
	Save(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	GetAll(ctx context.Context) ([]*models.Lead, error)
	Delete(ctx context.Context, id string) error
}

// BoardRepository stores boards, columns, and cards, and owns the dense
// ordering of card positions. Every mutating card operation runs as one
// atomic unit and leaves each touched column's positions equal to
// {0..n-1}.
type BoardRepository interface {
	SaveBoard(ctx context.Context, board *models.Board) error
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	ListBoards(ctx context.Context) ([]*models.Board, error)

	SaveColumn(ctx context.Context, column *models.Column) error
	GetColumn(ctx context.Context, id string) (*models.Column, error)

	// CreateCard inserts the card. With Position < 0 the card is appended
	// at the end of its column; otherwise a slot is opened at Position,
	// which must lie in [0, count].
	CreateCard(ctx context.Context, card *models.Card) error
	GetCard(ctx context.Context, id string) (*models.Card, error)
	ListCards(ctx context.Context, columnID string) ([]*models.Card, error)
	// MoveCard moves the card to toColumnID. A nil position appends at the
	// end of the target column.
	MoveCard(ctx context.Context, cardID, toColumnID string, position *int) (*models.Card, error)
	DeleteCard(ctx context.Context, cardID string) error
}

type UserRepository interface {
	Save(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// EligibleAssignees returns active admins and managers ordered by id
	// ascending. This ordering is what makes the rotation deterministic.
	EligibleAssignees(ctx context.Context) ([]*models.User, error)
}

type TagRepository interface {
	Save(ctx context.Context, tag *models.Tag) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	// Attach adds the tag to the lead's tag set. Attaching an already
	// attached tag is a no-op.
	Attach(ctx context.Context, leadID, tagID string) error
	LeadTags(ctx context.Context, leadID string) ([]*models.Tag, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByLead(ctx context.Context, leadID string) ([]*models.Message, error)
}

// RotationRepository owns the persisted round-robin cursor. AdvanceCursor
// must be atomic: a naive read-then-write is a defect because two
// concurrent calls could hand out the same assignee.
type RotationRepository interface {
	// AdvanceCursor picks the next assignee from pool after the stored
	// cursor for key, persists the new cursor with a compare-and-swap, and
	// writes the assignee to the lead's assigned_to in the same atomic
	// step. Returns ErrCursorConflict when a concurrent call won the race;
	// the caller may retry.
	AdvanceCursor(ctx context.Context, key string, pool []*models.User, leadID string) (*models.User, error)
	// Cursor returns the stored cursor for key, or nil when absent.
	Cursor(ctx context.Context, key string) (*models.RotationCursor, error)
}
