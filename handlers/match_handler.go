package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arenaops/bracket-engine/services"
	"github.com/arenaops/bracket-engine/storage"
	"github.com/go-chi/chi/v5"
)

const maxProofUploadBytes = 10 << 20 // 10MB

type MatchHandler struct {
	matchService services.MatchService
	uploader     storage.FileUploader
}

// NewMatchHandler wires the match endpoints. uploader may be nil, in which
// case proof uploads are disabled.
func NewMatchHandler(matchService services.MatchService, uploader storage.FileUploader) *MatchHandler {
	return &MatchHandler{matchService: matchService, uploader: uploader}
}

// ReportResultHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/result.
func (h *MatchHandler) ReportResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")

	var input services.ReportResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Winner == "" {
		badRequestResponse(w, r, errors.New("winner is required"))
		return
	}

	tournament, err := h.matchService.ReportResult(r.Context(), tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	match, _, _, _ := tournament.Bracket.FindMatch(matchID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitScoreHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/score.
func (h *MatchHandler) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID     string `json:"user_id"`
		TicketCode string `json:"ticket_code"`
		Score      int    `json:"score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.SubmitScore(r.Context(), services.SubmitScoreInput{
		UserID:        input.UserID,
		CompetitionID: chi.URLParam(r, "tournamentID"),
		MatchID:       chi.URLParam(r, "matchID"),
		TicketCode:    input.TicketCode,
		Score:         input.Score,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadProofHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/proof.
// Multipart upload of a score-proof screenshot, stored in R2.
func (h *MatchHandler) UploadProofHandler(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		errorResponse(w, r, http.StatusServiceUnavailable, "proof uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxProofUploadBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("proof")
	if err != nil {
		badRequestResponse(w, r, errors.New("proof file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("proofs/%s/%s/%d_%s",
		chi.URLParam(r, "tournamentID"),
		chi.URLParam(r, "matchID"),
		time.Now().UnixNano(),
		header.Filename,
	)
	result, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"proof_url": result.Location, "key": result.Key}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetStreamLinkHandler handles POST /tournaments/{tournamentID}/matches/{matchID}/stream.
func (h *MatchHandler) SetStreamLinkHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		StreamLink string `json:"stream_link"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.StreamLink == "" {
		badRequestResponse(w, r, errors.New("stream_link is required"))
		return
	}

	tournamentID := chi.URLParam(r, "tournamentID")
	matchID := chi.URLParam(r, "matchID")
	tournament, err := h.matchService.SetStreamLink(r.Context(), tournamentID, matchID, input.StreamLink)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	match, _, _, _ := tournament.Bracket.FindMatch(matchID)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
