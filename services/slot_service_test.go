package services

import (
	"context"
	"testing"

	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlotFixture(t *testing.T, maxPlayers int) (SlotService, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	tournament := baseTournament("t1", models.StatusRegistration)
	tournament.Settings.MaxPlayers = maxPlayers
	seedTournament(t, ms, tournament)
	return NewSlotService(ms), ms
}

func TestRegisterIsIdempotent(t *testing.T) {
	svc, _ := newSlotFixture(t, 0)

	first, err := svc.Register(context.Background(), "t1", "p1")
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), "t1", "p1")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1"}, first.Slots.Registered)
	assert.Equal(t, []string{"p1"}, second.Slots.Registered)
}

func TestRegisterOverflowGoesToWaitlist(t *testing.T) {
	svc, _ := newSlotFixture(t, 2)

	for _, id := range []string{"p1", "p2"} {
		_, err := svc.Register(context.Background(), "t1", id)
		require.NoError(t, err)
	}
	updated, err := svc.Register(context.Background(), "t1", "p3")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2"}, updated.Slots.Registered)
	assert.Equal(t, []string{"p3"}, updated.Slots.Waitlist)
}

func TestRegisterZeroCapacityIsUnlimited(t *testing.T) {
	svc, _ := newSlotFixture(t, 0)

	var updated *models.Tournament
	var err error
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		updated, err = svc.Register(context.Background(), "t1", id)
		require.NoError(t, err)
	}
	assert.Len(t, updated.Slots.Registered, 5)
	assert.Empty(t, updated.Slots.Waitlist)
}

func TestCheckInClearsRegistrationSets(t *testing.T) {
	svc, _ := newSlotFixture(t, 1)

	_, err := svc.Register(context.Background(), "t1", "p1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "t1", "p2") // waitlisted
	require.NoError(t, err)

	updated, err := svc.CheckIn(context.Background(), "t1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, updated.Slots.Registered)
	assert.Empty(t, updated.Slots.Waitlist)
	assert.Equal(t, []string{"p2"}, updated.Slots.CheckedIn)
}

func TestCheckInUnknownParticipantIsOverride(t *testing.T) {
	svc, _ := newSlotFixture(t, 0)

	updated, err := svc.CheckIn(context.Background(), "t1", "walkin")
	require.NoError(t, err)
	assert.Equal(t, []string{"walkin"}, updated.Slots.CheckedIn)
}

func TestWithdrawPromotesWaitlistHead(t *testing.T) {
	svc, _ := newSlotFixture(t, 2)

	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		_, err := svc.Register(context.Background(), "t1", id)
		require.NoError(t, err)
	}

	updated, err := svc.Withdraw(context.Background(), "t1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, updated.Slots.Registered)
	assert.Equal(t, []string{"p4"}, updated.Slots.Waitlist)
}

func TestWithdrawFromWaitlistDoesNotPromote(t *testing.T) {
	svc, _ := newSlotFixture(t, 1)

	for _, id := range []string{"p1", "p2", "p3"} {
		_, err := svc.Register(context.Background(), "t1", id)
		require.NoError(t, err)
	}

	updated, err := svc.Withdraw(context.Background(), "t1", "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, updated.Slots.Registered)
	assert.Equal(t, []string{"p3"}, updated.Slots.Waitlist)
}

func TestAddLateEntryDeduplicates(t *testing.T) {
	svc, _ := newSlotFixture(t, 0)

	_, err := svc.AddLateEntry(context.Background(), "t1", "p9")
	require.NoError(t, err)
	updated, err := svc.AddLateEntry(context.Background(), "t1", "p9")
	require.NoError(t, err)
	assert.Equal(t, []string{"p9"}, updated.Slots.LateEntries)
}

func TestSlotOpsUnknownTournament(t *testing.T) {
	svc := NewSlotService(store.NewMemoryStore())
	_, err := svc.Register(context.Background(), "missing", "p1")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
