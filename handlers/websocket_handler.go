package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arenaops/bracket-engine/brackets"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin to the frontend domain before exposing publicly.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs upgrades the connection and subscribes the client to the
// tournament's event room. One room per tournament.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("tournamentID is required"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client; just log.
		h.logger.Error("websocket upgrade failed",
			slog.String("tournament_id", tournamentID),
			slog.Any("error", err))
		return
	}

	h.hub.NewClient(conn, tournamentID)
	h.logger.Info("websocket client joined",
		slog.String("tournament_id", tournamentID),
		slog.String("remote_addr", r.RemoteAddr))
}
