package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	rsvpservice "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service"
	rsvppostgres "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/adapters/postgres"
	rsvpworkers "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/rsvp-service/application/workers"
	schedulingengine "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine"
	schedulingpostgres "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/adapters/postgres"
	schedulingworkers "github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/application/workers"
	"github.com/Z3r0J/togetherly-backend-sub001/contexts/social-coordination/scheduling-engine/domain/entities"
	"github.com/Z3r0J/togetherly-backend-sub001/internal/platform/config"
	"github.com/Z3r0J/togetherly-backend-sub001/internal/platform/db"
	"github.com/Z3r0J/togetherly-backend-sub001/internal/platform/httpserver"
	"github.com/Z3r0J/togetherly-backend-sub001/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  schedulingworkers.OutboxRelay
	relayEnabled bool
	consumer     rsvpworkers.ScheduleConsumer
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	schedulingRepo := schedulingpostgres.NewRepository(pg.DB, logger)
	schedulingModule := schedulingengine.NewModule(schedulingengine.Dependencies{
		Events:     schedulingRepo,
		Candidates: schedulingRepo,
		Votes:      schedulingRepo,
		Members:    schedulingRepo,
		Outbox:     schedulingRepo,
		Tx:         schedulingRepo,
		Clock:      schedulingpostgres.SystemClock{},
		IDGen:      schedulingpostgres.UUIDGenerator{},
		Policy: entities.FinalizePolicy{
			RequireVotes: cfg.FinalizeRequireVotes,
			MinVotes:     cfg.FinalizeMinVotes,
		},
		Logger: logger,
	})

	rsvpRepo := rsvppostgres.NewRepository(pg.DB, logger)
	rsvpModule := rsvpservice.NewModule(rsvpservice.Dependencies{
		Rsvps:   rsvpRepo,
		Windows: rsvpRepo,
		Dedup:   rsvpRepo,
		Clock:   rsvppostgres.SystemClock{},
		IDGen:   rsvppostgres.UUIDGenerator{},
		Logger:  logger,
	})

	server := httpserver.New(schedulingModule, rsvpModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	schedulingRepo := schedulingpostgres.NewRepository(pg.DB, logger)
	rsvpRepo := rsvppostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: schedulingworkers.OutboxRelay{
			Outbox:    schedulingRepo,
			Publisher: kafka,
			Clock:     schedulingpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		consumer: rsvpworkers.ScheduleConsumer{
			Subscriber: kafka,
			Dedup:      rsvpRepo,
			Windows:    rsvpRepo,
			Clock:      rsvppostgres.SystemClock{},
			DedupTTL:   7 * 24 * time.Hour,
			Disabled:   !cfg.EnableScheduleConsumer,
			Logger:     logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.consumer.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
