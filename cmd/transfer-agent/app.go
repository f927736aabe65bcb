package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/kubev2v/transfer-agent/internal/config"
	"github.com/kubev2v/transfer-agent/internal/events"
	"github.com/kubev2v/transfer-agent/internal/services"
	"github.com/kubev2v/transfer-agent/internal/store"
	"github.com/kubev2v/transfer-agent/internal/store/migrations"
	"github.com/kubev2v/transfer-agent/pkg/job"
	"github.com/kubev2v/transfer-agent/pkg/scheduler"
)

// app holds what every command needs.
type app struct {
	db        *sql.DB
	registry  *prometheus.Registry
	scheduler *scheduler.Scheduler
	bus       *events.Bus
	transfers *services.TransferService
	exports   *services.ExportService
}

func newApp(ctx context.Context, cfg *config.Configuration) (*app, error) {
	db, err := store.NewDB(cfg.Storage.DataFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	st := store.NewStore(db)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sched := scheduler.NewScheduler(cfg.Agent.NumWorkers,
		scheduler.WithName("transfers"),
		scheduler.WithMetrics(registry),
	)

	// report jobs run on the default scheduler, away from the transfers
	job.SetDefaultWorkers(cfg.Agent.NumWorkers)

	bus := events.NewBus()

	return &app{
		db:        db,
		registry:  registry,
		scheduler: sched,
		bus:       bus,
		transfers: services.NewTransferService(st, bus, sched, cfg.Storage.StorageDir, services.RetryConfig{
			MaxRetries:    cfg.Agent.MaxRetries,
			RetryInterval: cfg.Agent.RetryInterval,
		}),
		exports: services.NewExportService(st, nil, cfg.Storage.StorageDir),
	}, nil
}

func (a *app) Close() {
	a.scheduler.Close()
	job.Shutdown()
	if err := a.db.Close(); err != nil {
		zap.S().Named("main").Warnw("failed to close database", "error", err)
	}
}
