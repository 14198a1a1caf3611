package brackets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/arenaops/bracket-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRound1Pairing(t *testing.T) {
	testCases := []struct {
		name     string
		seeds    []string
		expected [][]string
		unpaired *string
	}{
		{
			name:     "two players single match",
			seeds:    []string{"a", "b"},
			expected: [][]string{{"a", "b"}},
		},
		{
			name:     "four players paired in seed order",
			seeds:    []string{"a", "b", "c", "d"},
			expected: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:     "odd pool leaves the last seed unpaired",
			seeds:    []string{"a", "b", "c"},
			expected: [][]string{{"a", "b"}},
			unpaired: strPtr("c"),
		},
		{
			name:     "single player cannot form a match",
			seeds:    []string{"a"},
			expected: nil,
			unpaired: strPtr("a"),
		},
	}

	gen := NewSingleEliminationGenerator()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := gen.Generate(context.Background(), GenerateParams{
				TournamentID: "t1",
				Seeds:        tc.seeds,
				Seeding:      models.SeedingManual,
			})
			require.NoError(t, err)

			if tc.unpaired == nil {
				assert.Nil(t, result.Unpaired)
			} else {
				require.NotNil(t, result.Unpaired)
				assert.Equal(t, *tc.unpaired, *result.Unpaired)
			}

			if len(tc.expected) == 0 {
				assert.Empty(t, result.Bracket.Rounds)
				return
			}

			require.Len(t, result.Bracket.Rounds, 1)
			round := result.Bracket.Rounds[0]
			assert.Equal(t, 1, round.RoundNumber)
			require.Len(t, round.Matches, len(tc.expected))
			for i, match := range round.Matches {
				assert.Equal(t, models.MatchID("t1", 1, i+1), match.MatchID)
				assert.Equal(t, tc.expected[i], match.Players)
				assert.Equal(t, models.MatchPending, match.Status)
				assert.Nil(t, match.Winner)
			}
		})
	}
}

func TestGenerateEmptyPool(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	result, err := gen.Generate(context.Background(), GenerateParams{
		TournamentID: "t1",
		Seeds:        nil,
		Seeding:      models.SeedingRandom,
		Rand:         rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Bracket.Rounds)
	assert.Nil(t, result.Unpaired)
}

func TestGenerateRandomSeedingIsReproducible(t *testing.T) {
	seeds := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	gen := NewSingleEliminationGenerator()

	generate := func(seed int64) *GenerateResult {
		result, err := gen.Generate(context.Background(), GenerateParams{
			TournamentID: "t1",
			Seeds:        seeds,
			Seeding:      models.SeedingRandom,
			Rand:         rand.New(rand.NewSource(seed)),
		})
		require.NoError(t, err)
		return result
	}

	first := generate(42)
	second := generate(42)
	assert.Equal(t, first.Bracket, second.Bracket)

	// Every seed still lands in exactly one slot.
	seen := map[string]int{}
	for _, m := range first.Bracket.Rounds[0].Matches {
		for _, p := range m.Players {
			seen[p]++
		}
	}
	for _, id := range seeds {
		assert.Equal(t, 1, seen[id], "seed %s should appear exactly once", id)
	}
}

func TestGenerateDoesNotMutateInputSeeds(t *testing.T) {
	seeds := []string{"a", "b", "c", "d"}
	gen := NewSingleEliminationGenerator()
	_, err := gen.Generate(context.Background(), GenerateParams{
		TournamentID: "t1",
		Seeds:        seeds,
		Seeding:      models.SeedingRandom,
		Rand:         rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, seeds)
}

func strPtr(s string) *string { return &s }
