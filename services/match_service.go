package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenaops/bracket-engine/brackets"
	"github.com/arenaops/bracket-engine/metrics"
	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
)

// ReportResultInput is the administrative override. Only non-nil fields are
// written; no validation that Winner is one of the match's players happens on
// this path, it sits inside the admin trust boundary.
type ReportResultInput struct {
	Winner     string              `json:"winner"`
	Loser      *string             `json:"loser,omitempty"`
	Score      map[string]int      `json:"score,omitempty"`
	Status     *models.MatchStatus `json:"status,omitempty"`
	StreamLink *string             `json:"stream_link,omitempty"`
}

type SubmitScoreInput struct {
	UserID        string `json:"user_id"`
	CompetitionID string `json:"competition_id"`
	MatchID       string `json:"match_id"`
	TicketCode    string `json:"ticket_code"`
	Score         int    `json:"score"`
}

type MatchService interface {
	ReportResult(ctx context.Context, tournamentID, matchID string, input ReportResultInput) (*models.Tournament, error)
	SubmitScore(ctx context.Context, input SubmitScoreInput) (*models.BracketMatch, error)
	SetStreamLink(ctx context.Context, tournamentID, matchID, link string) (*models.Tournament, error)
}

type matchService struct {
	tournaments store.TournamentStore
	tickets     TicketService
	hub         Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

func NewMatchService(tournaments store.TournamentStore, tickets TicketService, hub Broadcaster, logger *slog.Logger) MatchService {
	return &matchService{
		tournaments: tournaments,
		tickets:     tickets,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

// ReportResult overwrites a match outcome by administrative fiat. Status
// defaults to completed unless explicitly given as disputed.
func (s *matchService) ReportResult(ctx context.Context, tournamentID, matchID string, input ReportResultInput) (*models.Tournament, error) {
	updated, err := s.tournaments.Update(ctx, tournamentID, func(t *models.Tournament) error {
		match, _, _, ok := t.Bracket.FindMatch(matchID)
		if !ok {
			return ErrMatchNotFound
		}

		winner := input.Winner
		match.Winner = &winner
		if input.Loser != nil {
			match.Loser = input.Loser
		}
		if input.Score != nil {
			match.Score = input.Score
		}
		if input.StreamLink != nil {
			match.StreamLink = input.StreamLink
		}
		if input.Status != nil && *input.Status == models.MatchDisputed {
			match.Status = models.MatchDisputed
		} else {
			match.Status = models.MatchCompleted
			now := s.now()
			match.CompletedAt = &now
		}
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to report result for match %s: %w", matchID, err)
	}

	s.broadcastMatch(tournamentID, matchID, updated)
	return updated, nil
}

// SubmitScore is the ticket-gated self-reporting path. The ticket check and
// the tournament mutation touch two aggregates and are not covered by a
// single transaction: two submissions racing on the same ticket can both pass
// validation. Accepted weakness, not a guarantee.
func (s *matchService) SubmitScore(ctx context.Context, input SubmitScoreInput) (*models.BracketMatch, error) {
	ticket, err := s.tickets.Validate(ctx, input.TicketCode, input.CompetitionID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != input.UserID {
		return nil, ErrInvalidTicket
	}
	if ticket.MatchID != nil && *ticket.MatchID != input.MatchID {
		return nil, ErrInvalidTicket
	}

	// Pre-generate the follow-up code so a promotion inside the transaction
	// can record it on the next match; the ticket row is written after commit.
	followUpCode := s.tickets.NewCode()

	var (
		result        models.BracketMatch
		promotedTo    string
		promotedRound int
		decidedFinal  bool
	)

	updated, err := s.tournaments.Update(ctx, input.CompetitionID, func(t *models.Tournament) error {
		match, roundIdx, _, ok := t.Bracket.FindMatch(input.MatchID)
		if !ok {
			return ErrMatchNotFound
		}
		if !match.HasPlayer(input.UserID) {
			return ErrNotAParticipant
		}
		if _, submitted := match.Score[input.UserID]; submitted {
			return ErrAlreadySubmitted
		}

		if match.Score == nil {
			match.Score = make(map[string]int, 2)
		}
		match.Score[input.UserID] = input.Score

		if len(match.Score) < 2 || len(match.Players) < 2 {
			// Waiting on the opponent's report.
			match.Status = models.MatchInProgress
			t.UpdatedAt = s.now()
			result = *match
			return nil
		}

		a, b := match.Players[0], match.Players[1]
		now := s.now()
		match.Status = models.MatchCompleted
		match.CompletedAt = &now

		switch {
		case match.Score[a] > match.Score[b]:
			match.Winner = &a
			match.Loser = &b
		case match.Score[b] > match.Score[a]:
			match.Winner = &b
			match.Loser = &a
		default:
			// Exact tie: no winner. The match stays completed and the bracket
			// needs administrative resolution to move on.
			match.Winner = nil
			match.Loser = nil
		}

		if match.Winner != nil {
			round := &t.Bracket.Rounds[roundIdx]
			if len(round.Matches) == 1 {
				// Final decided.
				if CanTransition(t.Status, models.StatusCompleted) {
					if err := applyTransition(t, models.StatusCompleted, now); err != nil {
						return err
					}
					decidedFinal = true
				}
			} else if t.Settings.Advancement == models.AdvancePerMatch {
				promotedTo = brackets.PromoteWinner(t.Bracket, t.ID, roundIdx, *match.Winner, followUpCode)
				promotedRound = round.RoundNumber + 1
			}
		}

		t.UpdatedAt = now
		result = *match
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		if errors.Is(err, ErrMatchNotFound) || errors.Is(err, ErrNotAParticipant) || errors.Is(err, ErrAlreadySubmitted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit score for match %s: %w", input.MatchID, err)
	}

	// The submission ticket is spent regardless of how the match resolved.
	if err := s.tickets.MarkUsed(ctx, input.TicketCode); err != nil {
		s.logger.Warn("failed to mark ticket used",
			slog.String("code", input.TicketCode), slog.Any("error", err))
	}

	if promotedTo != "" {
		roundID := fmt.Sprintf("R%d", promotedRound)
		if _, err := s.tickets.Issue(ctx, IssueTicketInput{
			UserID:        *result.Winner,
			CompetitionID: input.CompetitionID,
			RoundID:       &roundID,
			MatchID:       &promotedTo,
			Code:          followUpCode,
		}); err != nil {
			s.logger.Error("failed to issue follow-up ticket",
				slog.String("match_id", promotedTo), slog.Any("error", err))
		}
	}

	metrics.ScoreSubmissions.Inc()
	s.logger.Info("score submitted",
		slog.String("tournament_id", input.CompetitionID),
		slog.String("match_id", input.MatchID),
		slog.String("user_id", input.UserID),
		slog.String("status", string(result.Status)),
		slog.Bool("final_decided", decidedFinal),
	)
	s.broadcastMatch(input.CompetitionID, input.MatchID, updated)
	return &result, nil
}

func (s *matchService) SetStreamLink(ctx context.Context, tournamentID, matchID, link string) (*models.Tournament, error) {
	updated, err := s.tournaments.Update(ctx, tournamentID, func(t *models.Tournament) error {
		match, _, _, ok := t.Bracket.FindMatch(matchID)
		if !ok {
			return ErrMatchNotFound
		}
		match.StreamLink = &link
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set stream link for match %s: %w", matchID, err)
	}
	s.broadcastMatch(tournamentID, matchID, updated)
	return updated, nil
}

func (s *matchService) broadcastMatch(tournamentID, matchID string, t *models.Tournament) {
	if s.hub == nil {
		return
	}
	match, _, _, ok := t.Bracket.FindMatch(matchID)
	if !ok {
		return
	}
	s.hub.BroadcastToRoom(tournamentID, brackets.Event{
		Type:         brackets.EventMatchUpdated,
		TournamentID: tournamentID,
		Payload:      match,
	})
}
