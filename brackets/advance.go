package brackets

import (
	"math"

	"github.com/arenaops/bracket-engine/models"
)

// PromoteWinner pushes a single winner from the round at fromRoundIdx into
// the first next-round match with an open player slot, creating the next
// round's empty match shells if it does not exist yet. ticketCode, when
// non-empty, is recorded on the target match so the winner's next submission
// is pre-authorized.
//
// The open-slot search is not position-aware: it fills whichever match has
// capacity first. Under concurrent resolution of sibling matches that can
// scramble intended matchups; the per-tournament transaction keeps each
// promotion atomic but not topology-aware.
//
// Returns the id of the match the winner landed in, or "" when the source
// round is the final and there is nowhere to promote to.
func PromoteWinner(b *models.StructuredBracket, tournamentID string, fromRoundIdx int, winner, ticketCode string) string {
	if b == nil || fromRoundIdx < 0 || fromRoundIdx >= len(b.Rounds) {
		return ""
	}
	from := &b.Rounds[fromRoundIdx]
	if len(from.Matches) <= 1 {
		// Final round: the bracket ends here.
		return ""
	}

	if fromRoundIdx == len(b.Rounds)-1 {
		b.Rounds = append(b.Rounds, buildEmptyRound(tournamentID, from))
	}
	next := &b.Rounds[fromRoundIdx+1]

	for mi := range next.Matches {
		m := &next.Matches[mi]
		if len(m.Players) < 2 {
			m.Players = append(m.Players, winner)
			if ticketCode != "" {
				if m.Tickets == nil {
					m.Tickets = make(map[string]string)
				}
				m.Tickets[winner] = ticketCode
			}
			return m.MatchID
		}
	}
	return ""
}

func buildEmptyRound(tournamentID string, from *models.BracketRound) models.BracketRound {
	count := int(math.Ceil(float64(len(from.Matches)) / 2))
	round := models.BracketRound{RoundNumber: from.RoundNumber + 1}
	for i := 1; i <= count; i++ {
		round.Matches = append(round.Matches, models.BracketMatch{
			MatchID: models.MatchID(tournamentID, round.RoundNumber, i),
			Players: []string{},
			Status:  models.MatchPending,
		})
	}
	return round
}

// AdvanceRound pairs the winners of the last round, in original match order,
// into a freshly appended round. Fewer than two winners is a silent no-op:
// the round is not complete yet and callers re-check rather than rely on an
// error. Returns whether a round was appended.
func AdvanceRound(b *models.StructuredBracket, tournamentID string) bool {
	last := b.LastRound()
	if last == nil {
		return false
	}

	var winners []string
	for _, m := range last.Matches {
		if m.Winner != nil {
			winners = append(winners, *m.Winner)
		}
	}
	if len(winners) < 2 {
		return false
	}

	round := models.BracketRound{RoundNumber: last.RoundNumber + 1}
	for i := 0; i < len(winners); i += 2 {
		players := []string{winners[i]}
		if i+1 < len(winners) {
			players = append(players, winners[i+1])
		}
		round.Matches = append(round.Matches, models.BracketMatch{
			MatchID: models.MatchID(tournamentID, round.RoundNumber, len(round.Matches)+1),
			Players: players,
			Status:  models.MatchPending,
		})
	}
	b.Rounds = append(b.Rounds, round)
	return true
}
