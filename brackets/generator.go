package brackets

import (
	"context"
	"math/rand"

	"github.com/arenaops/bracket-engine/models"
)

// GenerateParams carries everything a generator needs. Seeds is the
// checked-in pool in caller-supplied order; Rand is the injected source so
// random seeding is reproducible in tests.
type GenerateParams struct {
	TournamentID string
	Seeds        []string
	Seeding      models.SeedingPolicy
	Rand         *rand.Rand
}

// GenerateResult is the bracket plus whatever the pairing could not place.
// Unpaired is non-nil when the pool had odd size: the last seeded participant
// ends up without an opponent and is not put in a match. Resolving that
// (manual bye, late entry) is the caller's decision.
type GenerateResult struct {
	Bracket  *models.StructuredBracket
	Unpaired *string
}

type Generator interface {
	Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error)

	Name() string
}
