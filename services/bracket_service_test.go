package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBracketFixture(t *testing.T, checkedIn []string, advancement models.AdvancementPolicy) (BracketService, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	tournament := baseTournament("t1", models.StatusCheckin)
	tournament.Settings.Advancement = advancement
	tournament.Slots.CheckedIn = checkedIn
	seedTournament(t, ms, tournament)

	svc := NewBracketService(ms, nil, rand.New(rand.NewSource(1)), discardLogger())
	return svc, ms
}

func TestGenerateBuildsRound1AndGoesLive(t *testing.T) {
	svc, _ := newBracketFixture(t, []string{"a", "b", "c", "d"}, models.AdvancePerMatch)

	outcome, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, outcome.Tournament)
	assert.Nil(t, outcome.Unpaired)
	assert.Equal(t, models.StatusLive, outcome.Tournament.Status)

	bracket := outcome.Tournament.Bracket
	require.NotNil(t, bracket)
	require.Len(t, bracket.Rounds, 1)
	require.Len(t, bracket.Rounds[0].Matches, 2)
	assert.Equal(t, "t1_R1_M1", bracket.Rounds[0].Matches[0].MatchID)
	assert.Equal(t, "t1_R1_M2", bracket.Rounds[0].Matches[1].MatchID)
	for _, m := range bracket.Rounds[0].Matches {
		assert.Equal(t, models.MatchPending, m.Status)
		assert.Len(t, m.Players, 2)
	}
}

func TestGenerateManualSeedingKeepsOrder(t *testing.T) {
	svc, _ := newBracketFixture(t, []string{"a", "b", "c", "d"}, models.AdvancePerMatch)

	outcome, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	matches := outcome.Tournament.Bracket.Rounds[0].Matches
	assert.Equal(t, []string{"a", "b"}, matches[0].Players)
	assert.Equal(t, []string{"c", "d"}, matches[1].Players)
}

func TestGenerateOddPoolReportsUnpaired(t *testing.T) {
	svc, _ := newBracketFixture(t, []string{"a", "b", "c"}, models.AdvancePerMatch)

	outcome, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, outcome.Unpaired)
	assert.Equal(t, "c", *outcome.Unpaired)
	require.Len(t, outcome.Tournament.Bracket.Rounds, 1)
	assert.Len(t, outcome.Tournament.Bracket.Rounds[0].Matches, 1)
}

func TestGenerateEmptyPoolStaysInCheckin(t *testing.T) {
	svc, ms := newBracketFixture(t, nil, models.AdvancePerMatch)

	outcome, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, outcome.Tournament.Bracket.Rounds)
	assert.Equal(t, models.StatusCheckin, outcome.Tournament.Status)

	stored, err := ms.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckin, stored.Status)
}

func TestGenerateTwiceFails(t *testing.T) {
	svc, _ := newBracketFixture(t, []string{"a", "b"}, models.AdvancePerMatch)

	_, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrBracketExists)
}

func TestGenerateUnknownTournament(t *testing.T) {
	svc := NewBracketService(store.NewMemoryStore(), nil, rand.New(rand.NewSource(1)), discardLogger())
	_, err := svc.Generate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func setWinner(t *testing.T, ms *store.MemoryStore, matchID, winner string) {
	t.Helper()
	_, err := ms.Update(context.Background(), "t1", func(tn *models.Tournament) error {
		match, _, _, ok := tn.Bracket.FindMatch(matchID)
		require.True(t, ok)
		w := winner
		match.Winner = &w
		match.Status = models.MatchCompleted
		return nil
	})
	require.NoError(t, err)
}

func TestAdvanceRoundRequiresPerRoundPolicy(t *testing.T) {
	svc, _ := newBracketFixture(t, []string{"a", "b", "c", "d"}, models.AdvancePerMatch)
	_, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)

	_, _, err = svc.AdvanceRound(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrAdvancementPolicy)
}

func TestAdvanceRoundIncompleteIsQuietNoop(t *testing.T) {
	svc, ms := newBracketFixture(t, []string{"a", "b", "c", "d"}, models.AdvancePerRound)
	_, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	setWinner(t, ms, "t1_R1_M1", "a")

	updated, advanced, err := svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Len(t, updated.Bracket.Rounds, 1)
}

func TestAdvanceRoundPairsCompletedWinners(t *testing.T) {
	svc, ms := newBracketFixture(t, []string{"a", "b", "c", "d"}, models.AdvancePerRound)
	_, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	setWinner(t, ms, "t1_R1_M1", "a")
	setWinner(t, ms, "t1_R1_M2", "d")

	updated, advanced, err := svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, advanced)
	require.Len(t, updated.Bracket.Rounds, 2)
	final := updated.Bracket.Rounds[1]
	require.Len(t, final.Matches, 1)
	assert.Equal(t, []string{"a", "d"}, final.Matches[0].Players)
}

func TestAdvanceRoundDecidedFinalCompletesTournament(t *testing.T) {
	svc, ms := newBracketFixture(t, []string{"a", "b", "c", "d"}, models.AdvancePerRound)
	_, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)
	setWinner(t, ms, "t1_R1_M1", "a")
	setWinner(t, ms, "t1_R1_M2", "d")

	_, _, err = svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	setWinner(t, ms, "t1_R2_M1", "a")

	updated, advanced, err := svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	// Nothing further to advance.
	updated, advanced, err = svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestAdvanceRoundUndecidedFinalIsNoop(t *testing.T) {
	svc, ms := newBracketFixture(t, []string{"a", "b"}, models.AdvancePerRound)
	_, err := svc.Generate(context.Background(), "t1")
	require.NoError(t, err)

	updated, advanced, err := svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, models.StatusLive, updated.Status)

	setWinner(t, ms, "t1_R1_M1", "b")
	updated, advanced, err = svc.AdvanceRound(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}
