package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arenaops/bracket-engine/brackets"
	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
)

// statusEdges is the exhaustive transition table. A source status missing
// from the map (or a target missing from its list) has no such edge.
var statusEdges = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft:        {models.StatusRegistration},
	models.StatusRegistration: {models.StatusCheckin, models.StatusArchived},
	models.StatusCheckin:      {models.StatusLive, models.StatusArchived},
	models.StatusLive:         {models.StatusCompleted, models.StatusArchived},
	models.StatusCompleted:    {models.StatusArchived},
}

// CanTransition reports whether the from/to pair is a legal lifecycle edge.
func CanTransition(from, to models.TournamentStatus) bool {
	for _, allowed := range statusEdges[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// applyTransition validates and performs the edge on an in-memory aggregate.
// It is shared with the services that transition as part of a larger
// mutation (bracket generation, final-round completion) so the whole step
// stays inside one document transaction.
func applyTransition(t *models.Tournament, target models.TournamentStatus, now time.Time) error {
	if !CanTransition(t.Status, target) {
		return &InvalidTransitionError{From: t.Status, To: target}
	}
	t.Status = target
	t.UpdatedAt = now
	return nil
}

type StatusService interface {
	Transition(ctx context.Context, tournamentID string, target models.TournamentStatus) (*models.Tournament, error)
}

type statusService struct {
	tournaments store.TournamentStore
	hub         Broadcaster
	now         func() time.Time
}

func NewStatusService(tournaments store.TournamentStore, hub Broadcaster) StatusService {
	return &statusService{tournaments: tournaments, hub: hub, now: time.Now}
}

// Transition performs one legal edge and stamps the update time. The machine
// only validates legality; deciding when to transition belongs to bracket
// generation/advancement or to administrative action.
func (s *statusService) Transition(ctx context.Context, tournamentID string, target models.TournamentStatus) (*models.Tournament, error) {
	updated, err := s.tournaments.Update(ctx, tournamentID, func(t *models.Tournament) error {
		return applyTransition(t, target, s.now())
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		if errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to transition tournament %s: %w", tournamentID, err)
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentID, brackets.Event{
			Type:         brackets.EventStatusChanged,
			TournamentID: tournamentID,
			Payload:      map[string]interface{}{"status": updated.Status},
		})
	}
	return updated, nil
}
