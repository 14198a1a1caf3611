package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/arenaops/bracket-engine/metrics"
	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/store"
)

const (
	ticketCodeLength  = 8
	ticketCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultTicketTTL  = 2 * time.Hour
)

type IssueTicketInput struct {
	UserID        string
	CompetitionID string
	RoundID       *string
	MatchID       *string
	TTL           time.Duration
	// Code pins the generated code; empty means generate one. Used by
	// promotion to pre-record the follow-up code on the next match before the
	// ticket record itself is written.
	Code string
}

type TicketService interface {
	Issue(ctx context.Context, input IssueTicketInput) (*models.Ticket, error)
	Validate(ctx context.Context, code, competitionID string) (*models.Ticket, error)
	MarkUsed(ctx context.Context, code string) error
	Revoke(ctx context.Context, code string) error
	NewCode() string
}

type ticketService struct {
	tickets store.TicketStore
	now     func() time.Time
}

func NewTicketService(tickets store.TicketStore) TicketService {
	return &ticketService{tickets: tickets, now: time.Now}
}

// NewCode returns an 8-character uppercase alphanumeric code. No collision
// check is made against existing codes; the space is large enough that
// birthday-bound risk is accepted, and the store's unique constraint is the
// backstop.
func (s *ticketService) NewCode() string {
	out := make([]byte, ticketCodeLength)
	max := big.NewInt(int64(len(ticketCodeCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means something is deeply wrong with the host.
			panic(fmt.Sprintf("ticket code generation: %v", err))
		}
		out[i] = ticketCodeCharset[n.Int64()]
	}
	return string(out)
}

func (s *ticketService) Issue(ctx context.Context, input IssueTicketInput) (*models.Ticket, error) {
	code := input.Code
	if code == "" {
		code = s.NewCode()
	}
	ttl := input.TTL
	if ttl <= 0 {
		ttl = defaultTicketTTL
	}
	now := s.now()
	ticket := &models.Ticket{
		Code:          code,
		UserID:        input.UserID,
		CompetitionID: input.CompetitionID,
		RoundID:       input.RoundID,
		MatchID:       input.MatchID,
		Valid:         true,
		IssuedAt:      now,
		ExpiresAt:     now.Add(ttl),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to issue ticket for user %s: %w", input.UserID, err)
	}
	return ticket, nil
}

// Validate returns the ticket only if a matching, unexpired, still-valid
// record exists for the competition. An expired-but-still-flagged-valid
// ticket is lazily invalidated as a side effect of this read; a ticket whose
// flag is already false can never come back.
func (s *ticketService) Validate(ctx context.Context, code, competitionID string) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			metrics.TicketValidations.WithLabelValues("missing").Inc()
			return nil, ErrInvalidTicket
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}

	if ticket.CompetitionID != competitionID {
		metrics.TicketValidations.WithLabelValues("wrong_scope").Inc()
		return nil, ErrInvalidTicket
	}
	if !ticket.Valid {
		metrics.TicketValidations.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidTicket
	}
	if ticket.Expired(s.now()) {
		// Lazy flag flip; the expiry alone already made it invalid.
		if err := s.tickets.SetValid(ctx, code, false); err != nil {
			return nil, fmt.Errorf("failed to invalidate expired ticket: %w", err)
		}
		metrics.TicketValidations.WithLabelValues("expired").Inc()
		return nil, ErrInvalidTicket
	}

	metrics.TicketValidations.WithLabelValues("ok").Inc()
	return ticket, nil
}

func (s *ticketService) MarkUsed(ctx context.Context, code string) error {
	if err := s.tickets.SetValid(ctx, code, false); err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return ErrInvalidTicket
		}
		return fmt.Errorf("failed to mark ticket used: %w", err)
	}
	return nil
}

func (s *ticketService) Revoke(ctx context.Context, code string) error {
	return s.MarkUsed(ctx, code)
}
