package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTournament(t *testing.T, ms *store.MemoryStore, tournament *models.Tournament) {
	t.Helper()
	require.NoError(t, ms.Create(context.Background(), tournament))
}

func baseTournament(id string, status models.TournamentStatus) *models.Tournament {
	now := time.Now()
	return &models.Tournament{
		ID:     id,
		Name:   "test cup",
		Game:   "chess",
		Type:   models.TypeSingleElimination,
		Status: status,
		Settings: models.Settings{
			Seeding:     models.SeedingManual,
			Advancement: models.AdvancePerMatch,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTransitionLegalEdges(t *testing.T) {
	edges := []struct {
		from models.TournamentStatus
		to   models.TournamentStatus
	}{
		{models.StatusDraft, models.StatusRegistration},
		{models.StatusRegistration, models.StatusCheckin},
		{models.StatusRegistration, models.StatusArchived},
		{models.StatusCheckin, models.StatusLive},
		{models.StatusCheckin, models.StatusArchived},
		{models.StatusLive, models.StatusCompleted},
		{models.StatusLive, models.StatusArchived},
		{models.StatusCompleted, models.StatusArchived},
	}

	for _, edge := range edges {
		t.Run(string(edge.from)+"_to_"+string(edge.to), func(t *testing.T) {
			ms := store.NewMemoryStore()
			seedTournament(t, ms, baseTournament("t1", edge.from))
			svc := NewStatusService(ms, nil)

			updated, err := svc.Transition(context.Background(), "t1", edge.to)
			require.NoError(t, err)
			assert.Equal(t, edge.to, updated.Status)
			assert.False(t, updated.UpdatedAt.IsZero())
		})
	}
}

func TestTransitionIllegalEdges(t *testing.T) {
	cases := []struct {
		from models.TournamentStatus
		to   models.TournamentStatus
	}{
		{models.StatusDraft, models.StatusLive},
		{models.StatusDraft, models.StatusArchived},
		{models.StatusRegistration, models.StatusLive},
		{models.StatusCheckin, models.StatusRegistration},
		{models.StatusLive, models.StatusCheckin},
		{models.StatusCompleted, models.StatusLive},
		{models.StatusArchived, models.StatusDraft},
		{models.StatusCancelled, models.StatusRegistration},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			ms := store.NewMemoryStore()
			seedTournament(t, ms, baseTournament("t1", tc.from))
			svc := NewStatusService(ms, nil)

			_, err := svc.Transition(context.Background(), "t1", tc.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			var ite *InvalidTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, tc.from, ite.From)
			assert.Equal(t, tc.to, ite.To)
		})
	}
}

func TestTransitionFailedEdgeLeavesStatusUntouched(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTournament(t, ms, baseTournament("t1", models.StatusDraft))
	svc := NewStatusService(ms, nil)

	_, err := svc.Transition(context.Background(), "t1", models.StatusLive)
	require.Error(t, err)

	stored, err := ms.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status)
}

func TestTransitionIsNotRepeatable(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTournament(t, ms, baseTournament("t1", models.StatusDraft))
	svc := NewStatusService(ms, nil)

	_, err := svc.Transition(context.Background(), "t1", models.StatusRegistration)
	require.NoError(t, err)

	// The source status has moved, so the same call now fails.
	_, err = svc.Transition(context.Background(), "t1", models.StatusRegistration)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionUnknownTournament(t *testing.T) {
	svc := NewStatusService(store.NewMemoryStore(), nil)
	_, err := svc.Transition(context.Background(), "missing", models.StatusRegistration)
	assert.True(t, errors.Is(err, ErrTournamentNotFound))
}

func TestCanTransitionTerminalStates(t *testing.T) {
	for _, from := range []models.TournamentStatus{models.StatusArchived, models.StatusCancelled} {
		for _, to := range []models.TournamentStatus{
			models.StatusDraft, models.StatusRegistration, models.StatusCheckin,
			models.StatusLive, models.StatusCompleted, models.StatusArchived,
		} {
			assert.False(t, CanTransition(from, to), "%s should have no outgoing edges", from)
		}
	}
}
