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

func setupRotationService(t *testing.T) (*Rotation, *memory.Persistence) {
	t.Helper()

	p := memory.NewPersistence()

	return NewRotation(p, newTestEventBus(), slog.Default()), p
}

func saveManager(t *testing.T, p *memory.Persistence, id string, active bool) {
	t.Helper()

	user := &models.User{
		ID:     id,
		Name:   "User " + id,
		Email:  id + "@funil.dev",
		Role:   models.RoleManager,
		Active: active,
	}
	require.NoError(t, p.Users().Save(context.Background(), user))
}

func saveLead(t *testing.T, p *memory.Persistence, name string) *models.Lead {
	t.Helper()

	lead := &models.Lead{Name: name, Stage: models.StageProspect, Status: models.LeadStatusOpen}
	require.NoError(t, p.Leads().Save(context.Background(), lead))

	return lead
}

func TestAssign_RoundRobinFairness(t *testing.T) {
	ctx := context.Background()
	service, p := setupRotationService(t)

	saveManager(t, p, "u10", true)
	saveManager(t, p, "u11", true)
	saveManager(t, p, "u12", true)

	var got []string

	for i := range 4 {
		lead := saveLead(t, p, "Lead "+string(rune('A'+i)))

		assignee, err := service.Assign(ctx, lead.ID)
		require.NoError(t, err)

		got = append(got, assignee.ID)

		stored, err := p.Leads().GetByID(ctx, lead.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AssignedTo)
		assert.Equal(t, assignee.ID, *stored.AssignedTo)
	}

	assert.Equal(t, []string{"u10", "u11", "u12", "u10"}, got)
}

func TestAssign_EmptyPool(t *testing.T) {
	ctx := context.Background()
	service, p := setupRotationService(t)

	// Agents never enter the rotation.
	user := &models.User{Name: "Agent", Email: "agent@funil.dev", Role: models.RoleAgent, Active: true}
	require.NoError(t, p.Users().Save(ctx, user))

	lead := saveLead(t, p, "Ana")

	_, err := service.Assign(ctx, lead.ID)
	assert.ErrorIs(t, err, ErrNoEligibleUsers)
}

func TestAssign_UnknownLead(t *testing.T) {
	ctx := context.Background()
	service, p := setupRotationService(t)

	saveManager(t, p, "u10", true)

	_, err := service.Assign(ctx, "missing")
	assert.ErrorIs(t, err, persistence.ErrLeadNotFound)
}

func TestAssign_CursorMemberLeftPoolResetsToFirst(t *testing.T) {
	ctx := context.Background()
	service, p := setupRotationService(t)

	saveManager(t, p, "u10", true)
	saveManager(t, p, "u11", true)

	first, err := service.Assign(ctx, saveLead(t, p, "Ana").ID)
	require.NoError(t, err)
	require.Equal(t, "u10", first.ID)

	second, err := service.Assign(ctx, saveLead(t, p, "Bruno").ID)
	require.NoError(t, err)
	require.Equal(t, "u11", second.ID)

	// u11 holds the cursor and then leaves the pool.
	saveManager(t, p, "u11", false)

	third, err := service.Assign(ctx, saveLead(t, p, "Carla").ID)
	require.NoError(t, err)
	assert.Equal(t, "u10", third.ID)
}

func TestCursor_ReflectsLastAssignment(t *testing.T) {
	ctx := context.Background()
	service, p := setupRotationService(t)

	saveManager(t, p, "u10", true)

	cursor, err := service.Cursor(ctx)
	require.NoError(t, err)
	assert.Nil(t, cursor)

	_, err = service.Assign(ctx, saveLead(t, p, "Ana").ID)
	require.NoError(t, err)

	cursor, err = service.Cursor(ctx)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, "u10", cursor.LastAssigneeID)
}
