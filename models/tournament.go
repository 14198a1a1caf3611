package models

import "time"

// TournamentStatus represents the lifecycle state of a tournament.
type TournamentStatus string

const (
	StatusDraft        TournamentStatus = "draft"
	StatusRegistration TournamentStatus = "registration"
	StatusCheckin      TournamentStatus = "checkin"
	StatusUpcoming     TournamentStatus = "upcoming"
	StatusLive         TournamentStatus = "live"
	StatusCompleted    TournamentStatus = "completed"
	StatusCancelled    TournamentStatus = "cancelled"
	StatusArchived     TournamentStatus = "archived"
)

type TournamentType string

const (
	TypeSingleElimination TournamentType = "single_elimination"
	TypeDoubleElimination TournamentType = "double_elimination"
	TypeSwiss             TournamentType = "swiss"
	TypeRoundRobin        TournamentType = "round_robin"
	TypeLeague            TournamentType = "league"
)

// SeedingPolicy orders the checked-in pool before round 1 pairing.
// Leaderboard and manual are pass-through: the order is supplied by the caller.
type SeedingPolicy string

const (
	SeedingRandom      SeedingPolicy = "random"
	SeedingLeaderboard SeedingPolicy = "leaderboard"
	SeedingManual      SeedingPolicy = "manual"
)

// AdvancementPolicy selects how winners move into the next round: promoted
// one at a time as their match completes, or in bulk once a whole round is done.
type AdvancementPolicy string

const (
	AdvancePerMatch AdvancementPolicy = "per_match"
	AdvancePerRound AdvancementPolicy = "per_round"
)

type Settings struct {
	// MaxPlayers of 0 means unlimited; overflow goes to the waitlist, never rejected.
	MaxPlayers    int               `json:"max_players"`
	TeamCap       int               `json:"team_cap,omitempty"`
	Seeding       SeedingPolicy     `json:"seeding"`
	Advancement   AdvancementPolicy `json:"advancement"`
	RequireStream bool              `json:"require_stream,omitempty"`
	AllowDisputes bool              `json:"allow_disputes"`

	// Advisory windows. The engine never enforces them; callers may.
	RegistrationOpensAt  *time.Time `json:"registration_opens_at,omitempty"`
	RegistrationClosesAt *time.Time `json:"registration_closes_at,omitempty"`
	CheckinClosesAt      *time.Time `json:"checkin_closes_at,omitempty"`
	StartsAt             *time.Time `json:"starts_at,omitempty"`
}

// Slots tracks the four participant sets of a tournament. A participant id
// appears in at most one of registered/waitlist at a time and reaches
// checkedIn only through one of those two (or an administrative override).
type Slots struct {
	Registered  []string `json:"registered"`
	Waitlist    []string `json:"waitlist"`
	CheckedIn   []string `json:"checked_in"`
	LateEntries []string `json:"late_entries"`
}

// Tournament is the root aggregate. One document per tournament; all
// multi-step mutations happen inside a single read-modify-write transaction.
type Tournament struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Game     string             `json:"game"`
	Type     TournamentType     `json:"type"`
	Status   TournamentStatus   `json:"status"`
	Settings Settings           `json:"settings"`
	Slots    Slots              `json:"slots"`
	Bracket  *StructuredBracket `json:"bracket,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func remove(set []string, id string) []string {
	out := set[:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (s *Slots) IsRegistered(id string) bool { return contains(s.Registered, id) }
func (s *Slots) IsWaitlisted(id string) bool { return contains(s.Waitlist, id) }
func (s *Slots) IsCheckedIn(id string) bool  { return contains(s.CheckedIn, id) }

func (s *Slots) RemoveRegistered(id string) { s.Registered = remove(s.Registered, id) }
func (s *Slots) RemoveWaitlisted(id string) { s.Waitlist = remove(s.Waitlist, id) }

// Clone returns a deep copy so store implementations can hand out isolated
// snapshots without callers mutating shared state.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Slots = Slots{
		Registered:  append([]string(nil), t.Slots.Registered...),
		Waitlist:    append([]string(nil), t.Slots.Waitlist...),
		CheckedIn:   append([]string(nil), t.Slots.CheckedIn...),
		LateEntries: append([]string(nil), t.Slots.LateEntries...),
	}
	if t.Settings.RegistrationOpensAt != nil {
		v := *t.Settings.RegistrationOpensAt
		cp.Settings.RegistrationOpensAt = &v
	}
	if t.Settings.RegistrationClosesAt != nil {
		v := *t.Settings.RegistrationClosesAt
		cp.Settings.RegistrationClosesAt = &v
	}
	if t.Settings.CheckinClosesAt != nil {
		v := *t.Settings.CheckinClosesAt
		cp.Settings.CheckinClosesAt = &v
	}
	if t.Settings.StartsAt != nil {
		v := *t.Settings.StartsAt
		cp.Settings.StartsAt = &v
	}
	cp.Bracket = t.Bracket.Clone()
	return &cp
}
