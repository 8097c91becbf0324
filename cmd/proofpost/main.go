package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/proofpost-systems/proofpost/internal/anchor"
	"github.com/proofpost-systems/proofpost/internal/archive"
	"github.com/proofpost-systems/proofpost/internal/config"
	"github.com/proofpost-systems/proofpost/internal/dispatch"
	"github.com/proofpost-systems/proofpost/internal/events"
	"github.com/proofpost-systems/proofpost/internal/handlers"
	"github.com/proofpost-systems/proofpost/internal/logging"
	"github.com/proofpost-systems/proofpost/internal/middleware"
	"github.com/proofpost-systems/proofpost/internal/ratelimit"
	"github.com/proofpost-systems/proofpost/internal/receipt"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/server"
	"github.com/proofpost-systems/proofpost/internal/service"
	"github.com/proofpost-systems/proofpost/internal/signer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("proofpost"))
	logging.SetDefault(logger)

	slog.Info("Starting ProofPost API",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("database", cfg.Database.Type),
	)

	// Repository
	var repo repository.Repository
	if cfg.Database.Type == "postgres" {
		connString := cfg.Database.Postgres.DSN()

		slog.Info("Connecting to PostgreSQL",
			slog.String("host", cfg.Database.Postgres.Host),
			slog.Int("port", cfg.Database.Postgres.Port),
			slog.String("database", cfg.Database.Postgres.Database),
		)

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			slog.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pgRepo.Close()
		repo = pgRepo

		slog.Info("Running database migrations")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			slog.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		slog.Warn("Using in-memory repository (development only)")
		repo = repository.NewInMemoryRepository()
	}

	// Signing key
	keyJSON, err := cfg.Signing.LoadKey()
	if err != nil {
		slog.Error("Failed to load signing key", slog.String("error", err.Error()))
		os.Exit(1)
	}
	provider := signer.New(keyJSON)
	if err := provider.Load(); err != nil {
		slog.Error("Failed to initialize signing key", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Temporal anchor
	var anchors anchor.Fetcher = anchor.Disabled{}
	if cfg.Anchor.Enabled {
		anchors = anchor.NewClient(cfg.Anchor.URL, cfg.Anchor.ChainHash, cfg.Anchor.Timeout)
		slog.Info("Temporal anchoring enabled", slog.String("url", cfg.Anchor.URL))
	} else {
		slog.Info("Temporal anchoring disabled")
	}

	// Event publishing
	var publisher events.Publisher = events.NoOpPublisher{}
	if cfg.NATS.Enabled {
		natsPub, err := events.NewNATSPublisher(events.Config{
			URL:           cfg.NATS.URL,
			Name:          "proofpost-events",
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
			Timeout:       5 * time.Second,
		})
		if err != nil {
			slog.Warn("Failed to connect to NATS, continuing without events", slog.String("error", err.Error()))
		} else {
			publisher = natsPub
			slog.Info("Event publishing enabled", slog.String("url", cfg.NATS.URL))
		}
	}
	defer publisher.Close()

	// Archival
	var archiveClient *archive.Client
	if cfg.Archive.Enabled {
		archiveClient, err = archive.NewClient(archive.Config{
			URL:           cfg.Archive.URL,
			Username:      cfg.Archive.Username,
			Password:      cfg.Archive.Password,
			TLSSkipVerify: cfg.Archive.TLSSkipVerify,
			IndexPrefix:   cfg.Archive.IndexPrefix,
		})
		if err != nil {
			slog.Warn("Failed to create archive client, continuing without archival", slog.String("error", err.Error()))
			archiveClient = nil
		} else {
			slog.Info("Receipt archival enabled", slog.String("url", cfg.Archive.URL))
		}
	}

	// Rate limiting
	var limiter ratelimit.RateLimiter = &ratelimit.NoOpRateLimiter{}
	if cfg.RateLimit.Enabled {
		redisLimiter, err := ratelimit.NewRedisRateLimiter(cfg.RateLimit.RedisURL, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			slog.Warn("Failed to initialize rate limiter, continuing without rate limiting", slog.String("error", err.Error()))
		} else {
			limiter = redisLimiter
			slog.Info("Rate limiting enabled",
				slog.Int("requests", cfg.RateLimit.Requests),
				slog.String("window", cfg.RateLimit.Window.String()),
			)
		}
	}
	defer limiter.Close()

	// Domain services
	engine := receipt.NewEngine(provider, anchors, repo)
	dispatcher := dispatch.New(cfg.Portal.BaseURL)
	deliveries := service.NewDeliveryService(repo, dispatcher, engine, publisher, archiveClient)
	process := service.NewProcessService(repo, publisher)

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	if !authMiddleware.Enabled() {
		slog.Warn("API authentication disabled (no JWT secret configured)")
	}

	router := server.NewRouter(server.RouterConfig{
		DeliveryHandler: handlers.NewDeliveryHandler(deliveries, limiter),
		ReceiptHandler:  handlers.NewReceiptHandler(engine, repo),
		ServiceHandler:  handlers.NewServiceHandler(process),
		AuthMiddleware:  authMiddleware,
		Ready:           provider.Load,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("ProofPost API listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", slog.String("error", err.Error()))
	}
	slog.Info("Server stopped")
}
