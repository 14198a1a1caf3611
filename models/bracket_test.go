package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBracket() *StructuredBracket {
	winner := "a"
	loser := "b"
	completedAt := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	return &StructuredBracket{
		Rounds: []BracketRound{
			{
				RoundNumber: 1,
				Matches: []BracketMatch{
					{
						MatchID:     "t1_R1_M1",
						Players:     []string{"a", "b"},
						Winner:      &winner,
						Loser:       &loser,
						Score:       map[string]int{"a": 10, "b": 7},
						Status:      MatchCompleted,
						CompletedAt: &completedAt,
					},
					{
						MatchID: "t1_R1_M2",
						Players: []string{"c", "d"},
						Status:  MatchPending,
					},
				},
			},
			{
				RoundNumber: 2,
				Matches: []BracketMatch{
					{
						MatchID: "t1_R2_M1",
						Players: []string{"a"},
						Status:  MatchPending,
						Tickets: map[string]string{"a": "ABCD1234"},
					},
				},
			},
		},
	}
}

func TestStructuredBracketJSONRoundTrip(t *testing.T) {
	original := sampleBracket()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded StructuredBracket
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.Rounds, 2)
	for ri, round := range original.Rounds {
		assert.Equal(t, round.RoundNumber, decoded.Rounds[ri].RoundNumber)
		require.Len(t, decoded.Rounds[ri].Matches, len(round.Matches))
		for mi, match := range round.Matches {
			got := decoded.Rounds[ri].Matches[mi]
			assert.Equal(t, match.MatchID, got.MatchID)
			assert.Equal(t, match.Players, got.Players)
			assert.Equal(t, match.Status, got.Status)
			assert.Equal(t, match.Winner, got.Winner)
			assert.Equal(t, match.Score, got.Score)
			assert.Equal(t, match.Tickets, got.Tickets)
		}
	}
}

func TestMatchIDFormat(t *testing.T) {
	assert.Equal(t, "t1_R1_M1", MatchID("t1", 1, 1))
	assert.Equal(t, "abc_R3_M12", MatchID("abc", 3, 12))
}

func TestFindMatchReturnsAliasingPointer(t *testing.T) {
	b := sampleBracket()

	match, ri, mi, ok := b.FindMatch("t1_R1_M2")
	require.True(t, ok)
	assert.Equal(t, 0, ri)
	assert.Equal(t, 1, mi)

	match.Status = MatchInProgress
	assert.Equal(t, MatchInProgress, b.Rounds[0].Matches[1].Status)
}

func TestFindMatchMissing(t *testing.T) {
	b := sampleBracket()
	_, _, _, ok := b.FindMatch("t1_R9_M9")
	assert.False(t, ok)

	var nilBracket *StructuredBracket
	_, _, _, ok = nilBracket.FindMatch("t1_R1_M1")
	assert.False(t, ok)
}

func TestBracketCloneIsDeep(t *testing.T) {
	original := sampleBracket()
	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Rounds[0].Matches[0].Score["a"] = 99
	clone.Rounds[0].Matches[0].Players[0] = "z"
	*clone.Rounds[0].Matches[0].Winner = "z"

	assert.Equal(t, 10, original.Rounds[0].Matches[0].Score["a"])
	assert.Equal(t, "a", original.Rounds[0].Matches[0].Players[0])
	assert.Equal(t, "a", *original.Rounds[0].Matches[0].Winner)
}
