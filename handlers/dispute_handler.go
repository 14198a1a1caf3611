package handlers

import (
	"errors"
	"net/http"

	"github.com/arenaops/bracket-engine/middleware"
	"github.com/arenaops/bracket-engine/services"
	"github.com/go-chi/chi/v5"
)

type DisputeHandler struct {
	disputeService services.DisputeService
}

func NewDisputeHandler(disputeService services.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// ReportHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/disputes.
func (h *DisputeHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ReportedBy  string `json:"reported_by"`
		Reason      string `json:"reason"`
		Description string `json:"description,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	dispute, err := h.disputeService.Report(r.Context(), services.ReportDisputeInput{
		TournamentID: chi.URLParam(r, "tournamentID"),
		MatchID:      chi.URLParam(r, "matchID"),
		ReportedBy:   input.ReportedBy,
		Reason:       input.Reason,
		Description:  input.Description,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"dispute": dispute}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByMatchHandler handles GET /tournaments/{tournamentID}/matches/{matchID}/disputes.
func (h *DisputeHandler) ListByMatchHandler(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.disputeService.ListByMatch(r.Context(), chi.URLParam(r, "matchID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"disputes": disputes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveHandler handles POST /disputes/{disputeID}/resolve. Admin-only.
func (h *DisputeHandler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Resolution string `json:"resolution"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Resolution == "" {
		badRequestResponse(w, r, errors.New("resolution is required"))
		return
	}

	resolvedBy, _ := middleware.SubjectFromContext(r.Context())
	dispute, err := h.disputeService.Resolve(r.Context(), chi.URLParam(r, "disputeID"), input.Resolution, resolvedBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dispute": dispute}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DismissHandler handles POST /disputes/{disputeID}/dismiss. Admin-only.
func (h *DisputeHandler) DismissHandler(w http.ResponseWriter, r *http.Request) {
	resolvedBy, _ := middleware.SubjectFromContext(r.Context())
	dispute, err := h.disputeService.Dismiss(r.Context(), chi.URLParam(r, "disputeID"), resolvedBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dispute": dispute}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
