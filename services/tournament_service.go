package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name     string                `json:"name"`
	Game     string                `json:"game"`
	Type     models.TournamentType `json:"type"`
	Settings models.Settings       `json:"settings"`
}

// TournamentView is the full aggregate plus the collaborator state callers
// render next to it.
type TournamentView struct {
	Tournament    *models.Tournament     `json:"tournament"`
	OpenDisputes  []*models.MatchDispute `json:"open_disputes"`
	ActiveTickets int                    `json:"active_tickets"`
}

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	FullView(ctx context.Context, id string) (*TournamentView, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Delete(ctx context.Context, id string) error
	PurgeArchived(ctx context.Context, olderThan time.Duration) (int, error)
}

type tournamentService struct {
	tournaments store.TournamentStore
	disputes    store.DisputeStore
	tickets     store.TicketStore
	logger      *slog.Logger
	now         func() time.Time
}

func NewTournamentService(
	tournaments store.TournamentStore,
	disputes store.DisputeStore,
	tickets store.TicketStore,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournaments: tournaments,
		disputes:    disputes,
		tickets:     tickets,
		logger:      logger,
		now:         time.Now,
	}
}

// Create builds a draft tournament with empty slots. Defaults: random
// seeding and per-match advancement when unset.
func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if input.Settings.MaxPlayers < 0 {
		return nil, fmt.Errorf("%w: max_players must not be negative", ErrValidationFailed)
	}
	if input.Type == "" {
		input.Type = models.TypeSingleElimination
	}
	if input.Settings.Seeding == "" {
		input.Settings.Seeding = models.SeedingRandom
	}
	if input.Settings.Advancement == "" {
		input.Settings.Advancement = models.AdvancePerMatch
	}

	now := s.now()
	t := &models.Tournament{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Game:     input.Game,
		Type:     input.Type,
		Status:   models.StatusDraft,
		Settings: input.Settings,
		Slots: models.Slots{
			Registered:  []string{},
			Waitlist:    []string{},
			CheckedIn:   []string{},
			LateEntries: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tournaments.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	s.logger.Info("tournament created", slog.String("tournament_id", t.ID), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

// FullView assembles the aggregate, its open disputes and the live ticket
// count in parallel.
func (s *tournamentService) FullView(ctx context.Context, id string) (*TournamentView, error) {
	view := &TournamentView{OpenDisputes: []*models.MatchDispute{}}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.GetByID(gCtx, id)
		if err != nil {
			return err
		}
		view.Tournament = t
		return nil
	})

	g.Go(func() error {
		disputes, err := s.disputes.ListOpenByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list open disputes for tournament %s: %w", id, err)
		}
		if disputes != nil {
			view.OpenDisputes = disputes
		}
		return nil
	})

	g.Go(func() error {
		n, err := s.tickets.CountActiveByCompetition(gCtx, id, s.now())
		if err != nil {
			return fmt.Errorf("failed to count active tickets for tournament %s: %w", id, err)
		}
		view.ActiveTickets = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *tournamentService) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	tournaments, err := s.tournaments.List(ctx, filter.Status, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []*models.Tournament{}, nil
	}
	return tournaments, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	if err := s.tournaments.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return nil
}

// PurgeArchived physically deletes archived tournaments whose retention
// window has passed. Driven by the scheduler; returns how many went away.
func (s *tournamentService) PurgeArchived(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)
	expired, err := s.tournaments.ListArchivedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list archived tournaments: %w", err)
	}

	purged := 0
	for _, t := range expired {
		if err := s.tournaments.Delete(ctx, t.ID); err != nil {
			s.logger.Error("failed to purge archived tournament",
				slog.String("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		purged++
	}
	if purged > 0 {
		s.logger.Info("archived tournaments purged", slog.Int("count", purged))
	}
	return purged, nil
}
