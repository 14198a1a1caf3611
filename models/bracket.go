package models

import (
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "pending"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchDisputed   MatchStatus = "disputed"
)

// BracketMatch is one pairing inside a round. Players holds at most two ids;
// it may temporarily hold fewer while a slot awaits a promotion.
type BracketMatch struct {
	MatchID string         `json:"match_id"`
	Players []string       `json:"players"`
	Winner  *string        `json:"winner,omitempty"`
	Loser   *string        `json:"loser,omitempty"`
	Score   map[string]int `json:"score,omitempty"`
	Status  MatchStatus    `json:"status"`

	StreamLink *string `json:"stream_link,omitempty"`

	// Tickets maps a player id to the entry code pre-authorizing their next
	// submission in this match. Filled by promotion so the winner of the
	// previous round does not have to request a fresh code.
	Tickets map[string]string `json:"tickets,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type BracketRound struct {
	RoundNumber int            `json:"round_number"`
	Matches     []BracketMatch `json:"matches"`
}

// StructuredBracket is the ordered list of rounds. Round numbers are 1-based,
// strictly increasing, without gaps.
type StructuredBracket struct {
	Rounds []BracketRound `json:"rounds"`
}

// MatchID derives the deterministic id for a match from its coordinates.
func MatchID(tournamentID string, round, matchIndex int) string {
	return fmt.Sprintf("%s_R%d_M%d", tournamentID, round, matchIndex)
}

// HasPlayer reports whether id occupies one of the match's player slots.
func (m *BracketMatch) HasPlayer(id string) bool {
	for _, p := range m.Players {
		if p == id {
			return true
		}
	}
	return false
}

// FindMatch looks a match up by id across all rounds and returns it together
// with its (roundIndex, matchIndex) coordinates. The pointer aliases the
// bracket's backing array, so mutations through it are visible on the bracket.
func (b *StructuredBracket) FindMatch(matchID string) (*BracketMatch, int, int, bool) {
	if b == nil {
		return nil, 0, 0, false
	}
	for ri := range b.Rounds {
		for mi := range b.Rounds[ri].Matches {
			if b.Rounds[ri].Matches[mi].MatchID == matchID {
				return &b.Rounds[ri].Matches[mi], ri, mi, true
			}
		}
	}
	return nil, 0, 0, false
}

// LastRound returns the highest-numbered round, or nil for an empty bracket.
func (b *StructuredBracket) LastRound() *BracketRound {
	if b == nil || len(b.Rounds) == 0 {
		return nil
	}
	return &b.Rounds[len(b.Rounds)-1]
}

func (b *StructuredBracket) Clone() *StructuredBracket {
	if b == nil {
		return nil
	}
	cp := &StructuredBracket{Rounds: make([]BracketRound, len(b.Rounds))}
	for ri, r := range b.Rounds {
		round := BracketRound{RoundNumber: r.RoundNumber, Matches: make([]BracketMatch, len(r.Matches))}
		for mi, m := range r.Matches {
			mc := m
			mc.Players = append([]string(nil), m.Players...)
			if m.Winner != nil {
				v := *m.Winner
				mc.Winner = &v
			}
			if m.Loser != nil {
				v := *m.Loser
				mc.Loser = &v
			}
			if m.StreamLink != nil {
				v := *m.StreamLink
				mc.StreamLink = &v
			}
			if m.CompletedAt != nil {
				v := *m.CompletedAt
				mc.CompletedAt = &v
			}
			if m.Score != nil {
				mc.Score = make(map[string]int, len(m.Score))
				for k, v := range m.Score {
					mc.Score[k] = v
				}
			}
			if m.Tickets != nil {
				mc.Tickets = make(map[string]string, len(m.Tickets))
				for k, v := range m.Tickets {
					mc.Tickets[k] = v
				}
			}
			round.Matches[mi] = mc
		}
		cp.Rounds[ri] = round
	}
	return cp
}
