package store

import (
	"context"
	"errors"
	"time"

	"github.com/arenaops/bracket-engine/models"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament id already exists")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrTicketConflict     = errors.New("ticket code already exists")
	ErrDisputeNotFound    = errors.New("dispute not found")
)

// TournamentStore persists one document per tournament. Update is the only
// write path for multi-step mutations: it runs mutate inside a
// read-modify-write transaction scoped to that single document, so two
// concurrent registrations or score submissions cannot lose each other's
// writes.
type TournamentStore interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]*models.Tournament, error)
	Update(ctx context.Context, id string, mutate func(*models.Tournament) error) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error

	// ListArchivedBefore returns archived tournaments last updated before the
	// cutoff, for the retention sweep.
	ListArchivedBefore(ctx context.Context, cutoff time.Time) ([]*models.Tournament, error)
}

type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByCode(ctx context.Context, code string) (*models.Ticket, error)
	SetValid(ctx context.Context, code string, valid bool) error
	CountActiveByCompetition(ctx context.Context, competitionID string, now time.Time) (int, error)
}

type DisputeStore interface {
	Create(ctx context.Context, dispute *models.MatchDispute) error
	GetByID(ctx context.Context, id string) (*models.MatchDispute, error)
	ListByMatch(ctx context.Context, matchID string) ([]*models.MatchDispute, error)
	ListOpenByTournament(ctx context.Context, tournamentID string) ([]*models.MatchDispute, error)
	Update(ctx context.Context, id string, mutate func(*models.MatchDispute) error) (*models.MatchDispute, error)
}
