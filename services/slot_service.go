package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arenaops/bracket-engine/metrics"
	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
)

type SlotService interface {
	Register(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error)
	CheckIn(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error)
	Withdraw(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error)
	AddLateEntry(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error)
}

type slotService struct {
	tournaments store.TournamentStore
	now         func() time.Time
}

func NewSlotService(tournaments store.TournamentStore) SlotService {
	return &slotService{tournaments: tournaments, now: time.Now}
}

func (s *slotService) update(ctx context.Context, tournamentID string, mutate func(*models.Tournament) error) (*models.Tournament, error) {
	updated, err := s.tournaments.Update(ctx, tournamentID, mutate)
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update slots for tournament %s: %w", tournamentID, err)
	}
	return updated, nil
}

// Register is idempotent: an id already in registered or waitlist is a no-op.
// A full roster routes the participant to the waitlist instead of rejecting:
// soft admission, not an error. Capacity 0 means unlimited and is read from
// the settings snapshot inside the transaction.
func (s *slotService) Register(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error) {
	t, err := s.update(ctx, tournamentID, func(t *models.Tournament) error {
		if t.Slots.IsRegistered(participantID) || t.Slots.IsWaitlisted(participantID) {
			return nil
		}
		capacity := t.Settings.MaxPlayers
		if capacity == 0 || len(t.Slots.Registered) < capacity {
			t.Slots.Registered = append(t.Slots.Registered, participantID)
		} else {
			t.Slots.Waitlist = append(t.Slots.Waitlist, participantID)
		}
		t.UpdatedAt = s.now()
		return nil
	})
	if err == nil {
		metrics.Registrations.Inc()
	}
	return t, err
}

// CheckIn adds the participant to checkedIn and clears them from
// registered/waitlist. An id that was in neither still checks in; that is
// the administrative override path, not a bug.
func (s *slotService) CheckIn(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error) {
	t, err := s.update(ctx, tournamentID, func(t *models.Tournament) error {
		t.Slots.RemoveRegistered(participantID)
		t.Slots.RemoveWaitlisted(participantID)
		if !t.Slots.IsCheckedIn(participantID) {
			t.Slots.CheckedIn = append(t.Slots.CheckedIn, participantID)
		}
		t.UpdatedAt = s.now()
		return nil
	})
	if err == nil {
		metrics.CheckIns.Inc()
	}
	return t, err
}

// Withdraw removes the participant from registered/waitlist. Freeing a
// registered seat promotes the first waitlisted participant into it.
func (s *slotService) Withdraw(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error) {
	return s.update(ctx, tournamentID, func(t *models.Tournament) error {
		wasRegistered := t.Slots.IsRegistered(participantID)
		t.Slots.RemoveRegistered(participantID)
		t.Slots.RemoveWaitlisted(participantID)
		if wasRegistered && len(t.Slots.Waitlist) > 0 {
			promoted := t.Slots.Waitlist[0]
			t.Slots.Waitlist = t.Slots.Waitlist[1:]
			t.Slots.Registered = append(t.Slots.Registered, promoted)
		}
		t.UpdatedAt = s.now()
		return nil
	})
}

// AddLateEntry records an id in lateEntries. The set is advisory; it never
// feeds bracket generation.
func (s *slotService) AddLateEntry(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error) {
	return s.update(ctx, tournamentID, func(t *models.Tournament) error {
		for _, id := range t.Slots.LateEntries {
			if id == participantID {
				return nil
			}
		}
		t.Slots.LateEntries = append(t.Slots.LateEntries, participantID)
		t.UpdatedAt = s.now()
		return nil
	})
}
