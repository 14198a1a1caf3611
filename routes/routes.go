package routes

import (
	"net/http"

	"github.com/arenaops/bracket-engine/handlers"
	"github.com/arenaops/bracket-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Slot       *handlers.SlotHandler
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	Ticket     *handlers.TicketHandler
	Dispute    *handlers.DisputeHandler
	WebSocket  *handlers.WebSocketHandler
}

// SetupRoutes mounts the full HTTP surface. Score submission, slot
// operations, validation and dispute reporting are open to participants;
// everything that rewrites tournament state directly is admin-only.
func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret []byte) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/auth/token", h.Auth.TokenHandler)

	router.Get("/ws/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)

		// Participant-facing operations, gated by the engine itself
		// (status machine, capacity, tickets) rather than by auth.
		r.Post("/{tournamentID}/register", h.Slot.RegisterHandler)
		r.Post("/{tournamentID}/checkin", h.Slot.CheckInHandler)
		r.Post("/{tournamentID}/withdraw", h.Slot.WithdrawHandler)

		r.Post("/{tournamentID}/matches/{matchID}/score", h.Match.SubmitScoreHandler)
		r.Post("/{tournamentID}/matches/{matchID}/proof", h.Match.UploadProofHandler)
		r.Post("/{tournamentID}/matches/{matchID}/disputes", h.Dispute.ReportHandler)
		r.Get("/{tournamentID}/matches/{matchID}/disputes", h.Dispute.ListByMatchHandler)

		r.Post("/{tournamentID}/tickets/validate", h.Ticket.ValidateHandler)

		// Organizer operations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(jwtSecret))
			r.Use(middleware.RequireRole("admin"))

			r.Post("/", h.Tournament.CreateHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
			r.Post("/{tournamentID}/transition", h.Tournament.TransitionHandler)

			r.Post("/{tournamentID}/late-entry", h.Slot.LateEntryHandler)

			r.Post("/{tournamentID}/bracket/generate", h.Bracket.GenerateHandler)
			r.Post("/{tournamentID}/bracket/advance", h.Bracket.AdvanceHandler)

			r.Post("/{tournamentID}/matches/{matchID}/result", h.Match.ReportResultHandler)
			r.Post("/{tournamentID}/matches/{matchID}/stream", h.Match.SetStreamLinkHandler)

			r.Post("/{tournamentID}/tickets", h.Ticket.IssueHandler)
			r.Delete("/{tournamentID}/tickets/{code}", h.Ticket.RevokeHandler)
		})
	})

	router.Route("/disputes", func(r chi.Router) {
		r.Use(middleware.Authenticator(jwtSecret))
		r.Use(middleware.RequireRole("admin"))

		r.Post("/{disputeID}/resolve", h.Dispute.ResolveHandler)
		r.Post("/{disputeID}/dismiss", h.Dispute.DismissHandler)
	})
}
