package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arenaops/bracket-engine/metrics"
	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
	"github.com/google/uuid"
)

type ReportDisputeInput struct {
	TournamentID string `json:"tournament_id"`
	MatchID      string `json:"match_id"`
	ReportedBy   string `json:"reported_by"`
	Reason       string `json:"reason"`
	Description  string `json:"description,omitempty"`
}

type DisputeService interface {
	Report(ctx context.Context, input ReportDisputeInput) (*models.MatchDispute, error)
	Resolve(ctx context.Context, disputeID, resolution, resolvedBy string) (*models.MatchDispute, error)
	Dismiss(ctx context.Context, disputeID, resolvedBy string) (*models.MatchDispute, error)
	ListByMatch(ctx context.Context, matchID string) ([]*models.MatchDispute, error)
}

type disputeService struct {
	disputes    store.DisputeStore
	tournaments store.TournamentStore
	now         func() time.Time
}

func NewDisputeService(disputes store.DisputeStore, tournaments store.TournamentStore) DisputeService {
	return &disputeService{disputes: disputes, tournaments: tournaments, now: time.Now}
}

// Report records a new open dispute against a match. Flipping the match's
// own status to disputed is a UI convention the engine honors as a best-effort
// side effect; the two pieces of state are not otherwise kept in sync.
func (s *disputeService) Report(ctx context.Context, input ReportDisputeInput) (*models.MatchDispute, error) {
	if input.MatchID == "" || input.ReportedBy == "" || input.Reason == "" {
		return nil, fmt.Errorf("%w: match_id, reported_by and reason are required", ErrValidationFailed)
	}

	dispute := &models.MatchDispute{
		ID:           uuid.NewString(),
		TournamentID: input.TournamentID,
		MatchID:      input.MatchID,
		ReportedBy:   input.ReportedBy,
		Reason:       input.Reason,
		Description:  input.Description,
		Status:       models.DisputeOpen,
		CreatedAt:    s.now(),
	}
	if err := s.disputes.Create(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to create dispute for match %s: %w", input.MatchID, err)
	}

	_, err := s.tournaments.Update(ctx, input.TournamentID, func(t *models.Tournament) error {
		match, _, _, ok := t.Bracket.FindMatch(input.MatchID)
		if !ok {
			return ErrMatchNotFound
		}
		match.Status = models.MatchDisputed
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil && !errors.Is(err, ErrMatchNotFound) && !errors.Is(err, store.ErrTournamentNotFound) {
		return nil, fmt.Errorf("dispute %s recorded but match flag update failed: %w", dispute.ID, err)
	}

	metrics.DisputesReported.Inc()
	return dispute, nil
}

// Resolve closes the dispute with a resolution note. It never rewrites the
// match winner; corrections go through the administrative result override.
func (s *disputeService) Resolve(ctx context.Context, disputeID, resolution, resolvedBy string) (*models.MatchDispute, error) {
	return s.close(ctx, disputeID, models.DisputeResolved, resolution, resolvedBy)
}

func (s *disputeService) Dismiss(ctx context.Context, disputeID, resolvedBy string) (*models.MatchDispute, error) {
	return s.close(ctx, disputeID, models.DisputeDismissed, "", resolvedBy)
}

func (s *disputeService) close(ctx context.Context, disputeID string, status models.DisputeStatus, resolution, resolvedBy string) (*models.MatchDispute, error) {
	updated, err := s.disputes.Update(ctx, disputeID, func(d *models.MatchDispute) error {
		now := s.now()
		d.Status = status
		d.ResolvedAt = &now
		d.ResolvedBy = &resolvedBy
		if resolution != "" {
			d.Resolution = &resolution
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDisputeNotFound) {
			return nil, ErrDisputeNotFound
		}
		return nil, fmt.Errorf("failed to close dispute %s: %w", disputeID, err)
	}
	return updated, nil
}

func (s *disputeService) ListByMatch(ctx context.Context, matchID string) ([]*models.MatchDispute, error) {
	disputes, err := s.disputes.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes for match %s: %w", matchID, err)
	}
	if disputes == nil {
		return []*models.MatchDispute{}, nil
	}
	return disputes, nil
}
