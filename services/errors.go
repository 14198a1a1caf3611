package services

import (
	"errors"
	"fmt"

	"github.com/arenaops/bracket-engine/models"
)

// Errors shared across services and mapped to HTTP statuses in handlers.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrDisputeNotFound    = errors.New("dispute not found")
	ErrTeamNotFound       = errors.New("team not found")

	ErrInvalidTransition = errors.New("invalid tournament status transition")
	ErrInvalidTicket     = errors.New("invalid, expired or wrong-scope ticket")
	ErrNotAParticipant   = errors.New("user is not a participant of this match")
	ErrAlreadySubmitted  = errors.New("score already submitted for this match")

	ErrAdvancementPolicy = errors.New("operation not allowed under the tournament's advancement policy")
	ErrBracketExists     = errors.New("bracket has already been generated")

	ErrValidationFailed       = errors.New("validation failed")
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
)

// InvalidTransitionError names the attempted edge. It matches
// ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	From models.TournamentStatus
	To   models.TournamentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid tournament status transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
