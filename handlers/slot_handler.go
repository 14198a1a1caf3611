package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/arenaops/bracket-engine/models"
	"github.com/arenaops/bracket-engine/services"
	"github.com/go-chi/chi/v5"
)

type SlotHandler struct {
	slotService services.SlotService
}

func NewSlotHandler(slotService services.SlotService) *SlotHandler {
	return &SlotHandler{slotService: slotService}
}

type slotOp func(ctx context.Context, tournamentID, participantID string) (*models.Tournament, error)

func (h *SlotHandler) handle(w http.ResponseWriter, r *http.Request, op slotOp) {
	tournamentID := chi.URLParam(r, "tournamentID")

	var input struct {
		ParticipantID string `json:"participant_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ParticipantID == "" {
		badRequestResponse(w, r, errors.New("participant_id is required"))
		return
	}

	tournament, err := op(r.Context(), tournamentID, input.ParticipantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slots": tournament.Slots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterHandler handles POST /tournaments/{tournamentID}/register.
func (h *SlotHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.slotService.Register)
}

// CheckInHandler handles POST /tournaments/{tournamentID}/checkin.
func (h *SlotHandler) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.slotService.CheckIn)
}

// WithdrawHandler handles POST /tournaments/{tournamentID}/withdraw.
func (h *SlotHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.slotService.Withdraw)
}

// LateEntryHandler handles POST /tournaments/{tournamentID}/late-entry.
func (h *SlotHandler) LateEntryHandler(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.slotService.AddLateEntry)
}
