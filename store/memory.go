package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arenaops/bracket-engine/models"
)

// MemoryStore is a mutex-guarded in-process implementation of all three
// stores. It backs the unit tests and works as a dev backend; the mutex gives
// Update the same lost-update protection the Postgres transaction does.
type MemoryStore struct {
	mu          sync.Mutex
	tournaments map[string]*models.Tournament
	tickets     map[string]*models.Ticket
	disputes    map[string]*models.MatchDispute
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments: make(map[string]*models.Tournament),
		tickets:     make(map[string]*models.Ticket),
		disputes:    make(map[string]*models.MatchDispute),
	}
}

func (s *MemoryStore) Create(ctx context.Context, t *models.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[t.ID]; ok {
		return ErrTournamentConflict
	}
	s.tournaments[t.ID] = t.Clone()
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*models.Tournament{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*models.Tournament) error) (*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	working := t.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	s.tournaments[id] = working
	return working.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[id]; !ok {
		return ErrTournamentNotFound
	}
	delete(s.tournaments, id)
	return nil
}

func (s *MemoryStore) ListArchivedBefore(ctx context.Context, cutoff time.Time) ([]*models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Tournament
	for _, t := range s.tournaments {
		if t.Status == models.StatusArchived && t.UpdatedAt.Before(cutoff) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func cloneTicket(t *models.Ticket) *models.Ticket {
	cp := *t
	if t.RoundID != nil {
		v := *t.RoundID
		cp.RoundID = &v
	}
	if t.MatchID != nil {
		v := *t.MatchID
		cp.MatchID = &v
	}
	return &cp
}

func (s *MemoryStore) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[ticket.Code]; ok {
		return ErrTicketConflict
	}
	s.tickets[ticket.Code] = cloneTicket(ticket)
	return nil
}

func (s *MemoryStore) GetByCode(ctx context.Context, code string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[code]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return cloneTicket(t), nil
}

func (s *MemoryStore) SetValid(ctx context.Context, code string, valid bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[code]
	if !ok {
		return ErrTicketNotFound
	}
	t.Valid = valid
	return nil
}

func (s *MemoryStore) CountActiveByCompetition(ctx context.Context, competitionID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if t.CompetitionID == competitionID && t.Valid && !t.Expired(now) {
			n++
		}
	}
	return n, nil
}

func cloneDispute(d *models.MatchDispute) *models.MatchDispute {
	cp := *d
	if d.ResolvedAt != nil {
		v := *d.ResolvedAt
		cp.ResolvedAt = &v
	}
	if d.ResolvedBy != nil {
		v := *d.ResolvedBy
		cp.ResolvedBy = &v
	}
	if d.Resolution != nil {
		v := *d.Resolution
		cp.Resolution = &v
	}
	return &cp
}

func (s *MemoryStore) CreateDispute(ctx context.Context, dispute *models.MatchDispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disputes[dispute.ID] = cloneDispute(dispute)
	return nil
}

func (s *MemoryStore) GetDisputeByID(ctx context.Context, id string) (*models.MatchDispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disputes[id]
	if !ok {
		return nil, ErrDisputeNotFound
	}
	return cloneDispute(d), nil
}

func (s *MemoryStore) ListByMatch(ctx context.Context, matchID string) ([]*models.MatchDispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MatchDispute
	for _, d := range s.disputes {
		if d.MatchID == matchID {
			out = append(out, cloneDispute(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListOpenByTournament(ctx context.Context, tournamentID string) ([]*models.MatchDispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MatchDispute
	for _, d := range s.disputes {
		if d.TournamentID == tournamentID && (d.Status == models.DisputeOpen || d.Status == models.DisputeUnderReview) {
			out = append(out, cloneDispute(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateDispute(ctx context.Context, id string, mutate func(*models.MatchDispute) error) (*models.MatchDispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disputes[id]
	if !ok {
		return nil, ErrDisputeNotFound
	}
	working := cloneDispute(d)
	if err := mutate(working); err != nil {
		return nil, err
	}
	s.disputes[id] = working
	return cloneDispute(working), nil
}

// Tickets and Disputes adapt the single MemoryStore to the narrower store
// interfaces, since the Go method sets would otherwise collide on names.
func (s *MemoryStore) Tickets() TicketStore   { return memoryTickets{s} }
func (s *MemoryStore) Disputes() DisputeStore { return memoryDisputes{s} }

type memoryTickets struct{ s *MemoryStore }

func (m memoryTickets) Create(ctx context.Context, t *models.Ticket) error {
	return m.s.CreateTicket(ctx, t)
}
func (m memoryTickets) GetByCode(ctx context.Context, code string) (*models.Ticket, error) {
	return m.s.GetByCode(ctx, code)
}
func (m memoryTickets) SetValid(ctx context.Context, code string, valid bool) error {
	return m.s.SetValid(ctx, code, valid)
}
func (m memoryTickets) CountActiveByCompetition(ctx context.Context, competitionID string, now time.Time) (int, error) {
	return m.s.CountActiveByCompetition(ctx, competitionID, now)
}

type memoryDisputes struct{ s *MemoryStore }

func (m memoryDisputes) Create(ctx context.Context, d *models.MatchDispute) error {
	return m.s.CreateDispute(ctx, d)
}
func (m memoryDisputes) GetByID(ctx context.Context, id string) (*models.MatchDispute, error) {
	return m.s.GetDisputeByID(ctx, id)
}
func (m memoryDisputes) ListByMatch(ctx context.Context, matchID string) ([]*models.MatchDispute, error) {
	return m.s.ListByMatch(ctx, matchID)
}
func (m memoryDisputes) ListOpenByTournament(ctx context.Context, tournamentID string) ([]*models.MatchDispute, error) {
	return m.s.ListOpenByTournament(ctx, tournamentID)
}
func (m memoryDisputes) Update(ctx context.Context, id string, mutate func(*models.MatchDispute) error) (*models.MatchDispute, error) {
	return m.s.UpdateDispute(ctx, id, mutate)
}
