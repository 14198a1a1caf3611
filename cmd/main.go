package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arenaops/bracket-engine/brackets"
	"github.com/arenaops/bracket-engine/config"
	"github.com/arenaops/bracket-engine/db"
	"github.com/arenaops/bracket-engine/handlers"
	"github.com/arenaops/bracket-engine/metrics"
	api "github.com/arenaops/bracket-engine/routes"
	"github.com/arenaops/bracket-engine/services"
	"github.com/arenaops/bracket-engine/storage"
	"github.com/arenaops/bracket-engine/store"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const purgeInterval = 1 * time.Hour // how often the retention sweep runs

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err := store.Migrate(context.Background(), dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	metrics.Register()

	// Proof uploads are optional; without R2 credentials the endpoint
	// answers 503.
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 storage not configured, proof uploads disabled")
	}

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()

	tournamentStore := store.NewPostgresTournamentStore(dbConn)
	ticketStore := store.NewPostgresTicketStore(dbConn)
	disputeStore := store.NewPostgresDisputeStore(dbConn)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authService := services.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, []byte(cfg.JWTSecretKey))
	tournamentService := services.NewTournamentService(tournamentStore, disputeStore, ticketStore, logger)
	statusService := services.NewStatusService(tournamentStore, wsHub)
	slotService := services.NewSlotService(tournamentStore)
	ticketService := services.NewTicketService(ticketStore)
	bracketService := services.NewBracketService(tournamentStore, wsHub, rng, logger)
	matchService := services.NewMatchService(tournamentStore, ticketService, wsHub, logger)
	disputeService := services.NewDisputeService(disputeStore, tournamentStore)

	// Retention sweep: archived tournaments past the configured window are
	// physically deleted.
	go func() {
		retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		logger.Info("retention sweep started",
			slog.Int("retention_days", cfg.RetentionDays),
			slog.Duration("interval", purgeInterval))
		for range ticker.C {
			purged, err := tournamentService.PurgeArchived(context.Background(), retention)
			if err != nil {
				logger.Error("retention sweep failed", slog.Any("error", err))
				continue
			}
			if purged > 0 {
				logger.Info("retention sweep purged tournaments", slog.Int("count", purged))
			}
		}
	}()

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Tournament: handlers.NewTournamentHandler(tournamentService, statusService),
		Slot:       handlers.NewSlotHandler(slotService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		Match:      handlers.NewMatchHandler(matchService, uploader),
		Ticket:     handlers.NewTicketHandler(ticketService),
		Dispute:    handlers.NewDisputeHandler(disputeService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
	}, []byte(cfg.JWTSecretKey))
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
