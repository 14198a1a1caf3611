package brackets

import (
	"context"

	"github.com/arenaops/bracket-engine/models"
)

// SingleEliminationGenerator seeds the pool and emits round 1 only. Later
// rounds are built by advancement (per-match promotion or whole-round
// pairing), not up front.
type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	seeds := make([]string, len(params.Seeds))
	copy(seeds, params.Seeds)

	switch params.Seeding {
	case models.SeedingRandom:
		if params.Rand != nil {
			params.Rand.Shuffle(len(seeds), func(i, j int) {
				seeds[i], seeds[j] = seeds[j], seeds[i]
			})
		}
	case models.SeedingLeaderboard, models.SeedingManual:
		// Pass-through: the order was supplied by the caller.
	}

	result := &GenerateResult{Bracket: &models.StructuredBracket{}}
	if len(seeds) == 0 {
		// No checked-in participants: empty round list, caller must not
		// assume a round exists.
		return result, nil
	}

	matches := make([]models.BracketMatch, 0, len(seeds)/2)
	for i := 0; i+1 < len(seeds); i += 2 {
		matches = append(matches, models.BracketMatch{
			MatchID: models.MatchID(params.TournamentID, 1, len(matches)+1),
			Players: []string{seeds[i], seeds[i+1]},
			Status:  models.MatchPending,
		})
	}
	if len(seeds)%2 == 1 {
		last := seeds[len(seeds)-1]
		result.Unpaired = &last
	}

	if len(matches) > 0 {
		result.Bracket.Rounds = []models.BracketRound{{RoundNumber: 1, Matches: matches}}
	}
	return result, nil
}
