package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/arenaops/bracket-engine/services"
	"github.com/go-chi/chi/v5"
)

type TicketHandler struct {
	ticketService services.TicketService
}

func NewTicketHandler(ticketService services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// IssueHandler handles POST /tournaments/{tournamentID}/tickets. Admin-only.
func (h *TicketHandler) IssueHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID     string  `json:"user_id"`
		RoundID    *string `json:"round_id,omitempty"`
		MatchID    *string `json:"match_id,omitempty"`
		TTLMinutes int     `json:"ttl_minutes,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == "" {
		badRequestResponse(w, r, errors.New("user_id is required"))
		return
	}

	ticket, err := h.ticketService.Issue(r.Context(), services.IssueTicketInput{
		UserID:        input.UserID,
		CompetitionID: chi.URLParam(r, "tournamentID"),
		RoundID:       input.RoundID,
		MatchID:       input.MatchID,
		TTL:           time.Duration(input.TTLMinutes) * time.Minute,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ticket": ticket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ValidateHandler handles POST /tournaments/{tournamentID}/tickets/validate.
// Checks a code without consuming it; expired codes are invalidated as a side
// effect of the check.
func (h *TicketHandler) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Code string `json:"code"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ticket, err := h.ticketService.Validate(r.Context(), input.Code, chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ticket": ticket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RevokeHandler handles DELETE /tournaments/{tournamentID}/tickets/{code}. Admin-only.
func (h *TicketHandler) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.ticketService.Revoke(r.Context(), chi.URLParam(r, "code")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
