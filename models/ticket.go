package models

import "time"

// Ticket is a short-lived, single-use entry code scoping a user to a
// competition and optionally a round/match. Once Valid flips to false it can
// never be revalidated.
type Ticket struct {
	Code          string  `json:"code"`
	UserID        string  `json:"user_id"`
	CompetitionID string  `json:"competition_id"`
	RoundID       *string `json:"round_id,omitempty"`
	MatchID       *string `json:"match_id,omitempty"`
	Valid         bool    `json:"valid"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the ticket is past its expiry, regardless of the
// Valid flag. Flipping the flag on expiry is a lazy side effect of validation.
func (t *Ticket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
