package models

import "time"

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeDismissed   DisputeStatus = "dismissed"
)

// MatchDispute contests the outcome of exactly one match. Recording or
// resolving a dispute never mutates the match's winner; a correction goes
// through the administrative result override.
type MatchDispute struct {
	ID           string        `json:"id"`
	TournamentID string        `json:"tournament_id"`
	MatchID      string        `json:"match_id"`
	ReportedBy   string        `json:"reported_by"`
	Reason       string        `json:"reason"`
	Description  string        `json:"description,omitempty"`
	Status       DisputeStatus `json:"status"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *string    `json:"resolved_by,omitempty"`
	Resolution *string    `json:"resolution,omitempty"`
}
