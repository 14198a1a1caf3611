package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/arenaops/bracket-engine/brackets"
	"github.com/arenaops/bracket-engine/metrics"
	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
)

// GenerateOutcome reports what generation produced. Unpaired surfaces the
// dangling participant of an odd-sized pool so callers can decide what to do
// with them; the engine does not auto-advance a bye.
type GenerateOutcome struct {
	Tournament *models.Tournament `json:"tournament"`
	Unpaired   *string            `json:"unpaired,omitempty"`
}

type BracketService interface {
	Generate(ctx context.Context, tournamentID string) (*GenerateOutcome, error)
	AdvanceRound(ctx context.Context, tournamentID string) (*models.Tournament, bool, error)
}

type bracketService struct {
	tournaments store.TournamentStore
	hub         Broadcaster
	rng         *rand.Rand
	logger      *slog.Logger
	now         func() time.Time
}

// NewBracketService builds the generation/advancement service. rng seeds the
// random seeding policy; inject a fixed source to make shuffles reproducible.
func NewBracketService(tournaments store.TournamentStore, hub Broadcaster, rng *rand.Rand, logger *slog.Logger) BracketService {
	return &bracketService{
		tournaments: tournaments,
		hub:         hub,
		rng:         rng,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate seeds the checked-in pool, builds round 1 and flips the
// tournament live, all inside one document transaction. An empty pool
// persists an empty round list and leaves the status alone: callers must not
// assume a round exists afterward.
func (s *bracketService) Generate(ctx context.Context, tournamentID string) (*GenerateOutcome, error) {
	outcome := &GenerateOutcome{}
	generator := brackets.NewSingleEliminationGenerator()

	updated, err := s.tournaments.Update(ctx, tournamentID, func(t *models.Tournament) error {
		if t.Bracket != nil && len(t.Bracket.Rounds) > 0 {
			return ErrBracketExists
		}

		result, genErr := generator.Generate(ctx, brackets.GenerateParams{
			TournamentID: t.ID,
			Seeds:        t.Slots.CheckedIn,
			Seeding:      t.Settings.Seeding,
			Rand:         s.rng,
		})
		if genErr != nil {
			return fmt.Errorf("failed to generate bracket structure: %w", genErr)
		}

		t.Bracket = result.Bracket
		outcome.Unpaired = result.Unpaired
		t.UpdatedAt = s.now()

		if len(result.Bracket.Rounds) == 0 {
			return nil
		}
		return applyTransition(t, models.StatusLive, s.now())
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrBracketExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %s: %w", tournamentID, err)
	}

	outcome.Tournament = updated
	metrics.BracketsGenerated.Inc()
	s.logger.Info("bracket generated",
		slog.String("tournament_id", tournamentID),
		slog.Int("rounds", len(roundsOf(updated))),
		slog.Bool("unpaired", outcome.Unpaired != nil),
	)

	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentID, brackets.Event{
			Type:         brackets.EventBracketUpdated,
			TournamentID: tournamentID,
			Payload:      updated.Bracket,
		})
	}
	return outcome, nil
}

// AdvanceRound pairs the last round's winners into the next round, or
// completes the tournament once the final is decided. It is meaningful only
// for per-round tournaments; per-match tournaments promote winners as each
// match resolves. Incomplete rounds are a silent no-op.
func (s *bracketService) AdvanceRound(ctx context.Context, tournamentID string) (*models.Tournament, bool, error) {
	advanced := false
	updated, err := s.tournaments.Update(ctx, tournamentID, func(t *models.Tournament) error {
		if t.Settings.Advancement != models.AdvancePerRound {
			return ErrAdvancementPolicy
		}
		if t.Bracket == nil {
			return nil
		}

		last := t.Bracket.LastRound()
		if last == nil {
			return nil
		}
		if len(last.Matches) == 1 {
			// The final. A decided final completes the tournament.
			if last.Matches[0].Winner != nil && CanTransition(t.Status, models.StatusCompleted) {
				advanced = true
				return applyTransition(t, models.StatusCompleted, s.now())
			}
			return nil
		}

		if brackets.AdvanceRound(t.Bracket, t.ID) {
			advanced = true
			t.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, false, ErrTournamentNotFound
		}
		if errors.Is(err, ErrAdvancementPolicy) {
			return nil, false, err
		}
		return nil, false, fmt.Errorf("failed to advance round for tournament %s: %w", tournamentID, err)
	}

	if advanced && s.hub != nil {
		s.hub.BroadcastToRoom(tournamentID, brackets.Event{
			Type:         brackets.EventBracketUpdated,
			TournamentID: tournamentID,
			Payload:      updated.Bracket,
		})
	}
	return updated, advanced, nil
}

func roundsOf(t *models.Tournament) []models.BracketRound {
	if t.Bracket == nil {
		return nil
	}
	return t.Bracket.Rounds
}
