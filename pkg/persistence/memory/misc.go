package memory

import (
	"context"
	"sort"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// UserRepository stores users in memory.
type UserRepository struct {
	store *store
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if user.ID == "" {
		user.ID = newID()
	}

	clone := *user
	r.store.users[user.ID] = &clone

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, persistence.ErrUserNotFound
	}

	clone := *user

	return &clone, nil
}

func (r *UserRepository) EligibleAssignees(ctx context.Context) ([]*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	users := make([]*models.User, 0)

	for _, user := range r.store.users {
		if !user.Active {
			continue
		}

		if user.Role != models.RoleAdmin && user.Role != models.RoleManager {
			continue
		}

		clone := *user
		users = append(users, &clone)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// TagRepository stores tags and lead/tag memberships in memory.
type TagRepository struct {
	store *store
}

func (r *TagRepository) Save(ctx context.Context, tag *models.Tag) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = time.Now().UTC()
	}

	if tag.ID == "" {
		tag.ID = newID()
	}

	clone := *tag
	r.store.tags[tag.ID] = &clone

	return nil
}

func (r *TagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tag, ok := r.store.tags[id]
	if !ok {
		return nil, persistence.ErrTagNotFound
	}

	clone := *tag

	return &clone, nil
}

func (r *TagRepository) Attach(ctx context.Context, leadID, tagID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.leadTags[leadID] == nil {
		r.store.leadTags[leadID] = make(map[string]bool)
	}

	r.store.leadTags[leadID][tagID] = true

	return nil
}

func (r *TagRepository) LeadTags(ctx context.Context, leadID string) ([]*models.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tags := make([]*models.Tag, 0)

	for tagID := range r.store.leadTags[leadID] {
		if tag, ok := r.store.tags[tagID]; ok {
			clone := *tag
			tags = append(tags, &clone)
		}
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags, nil
}

// MessageRepository stores the outbound message queue in memory.
type MessageRepository struct {
	store *store
}

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if message.ID == "" {
		message.ID = newID()
	}

	clone := *message
	r.store.messages = append(r.store.messages, &clone)

	return nil
}

func (r *MessageRepository) ListByLead(ctx context.Context, leadID string) ([]*models.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	messages := make([]*models.Message, 0)

	for _, message := range r.store.messages {
		if message.LeadID == leadID {
			clone := *message
			messages = append(messages, &clone)
		}
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})

	return messages, nil
}
