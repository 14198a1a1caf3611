package handlers

import (
	"net/http"

	"github.com/arenaops/bracket-engine/services"
	"github.com/go-chi/chi/v5"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

// GenerateHandler handles POST /tournaments/{tournamentID}/bracket/generate.
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	outcome, err := h.bracketService.Generate(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceHandler handles POST /tournaments/{tournamentID}/bracket/advance.
func (h *BracketHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	tournament, advanced, err := h.bracketService.AdvanceRound(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"advanced": advanced, "tournament": tournament}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
