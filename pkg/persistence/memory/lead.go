package memory

import (
	"context"
	"sort"
	"time"

	"github.com/funildev/funil/pkg/models"
	"github.com/funildev/funil/pkg/persistence"
)

// LeadRepository stores leads in memory.
type LeadRepository struct {
	store *store
}

func (r *LeadRepository) Save(ctx context.Context, lead *models.Lead) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	lead.UpdatedAt = now

	if lead.ID == "" {
		lead.ID = newID()
	}

	clone := *lead
	r.store.leads[lead.ID] = &clone

	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lead, ok := r.store.leads[id]
	if !ok || lead.DeletedAt != nil {
		return nil, persistence.ErrLeadNotFound
	}

	clone := *lead

	return &clone, nil
}

func (r *LeadRepository) GetAll(ctx context.Context) ([]*models.Lead, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	leads := make([]*models.Lead, 0, len(r.store.leads))

	for _, lead := range r.store.leads {
		if lead.DeletedAt != nil {
			continue
		}

		clone := *lead
		leads = append(leads, &clone)
	}

	sort.Slice(leads, func(i, j int) bool {
		if leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].ID < leads[j].ID
		}

		return leads[i].CreatedAt.After(leads[j].CreatedAt)
	})

	return leads, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lead, ok := r.store.leads[id]
	if !ok || lead.DeletedAt != nil {
		return persistence.ErrLeadNotFound
	}

	now := time.Now().UTC()
	lead.DeletedAt = &now

	return nil
}
