package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cesargomez89/walkmlb/internal/cache"
	"github.com/cesargomez89/walkmlb/internal/config"
	"github.com/cesargomez89/walkmlb/internal/constants"
	"github.com/cesargomez89/walkmlb/internal/logger"
	"github.com/cesargomez89/walkmlb/internal/statsapi"
	"github.com/cesargomez89/walkmlb/internal/store"
	"github.com/cesargomez89/walkmlb/internal/syncer"
	"github.com/cesargomez89/walkmlb/internal/telemetry"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *store.DB
	cache  *cache.Store
	engine *syncer.Engine

	shutdownTelemetry func(context.Context) error
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load time zone: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.OTelEndpoint, constants.AppName)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	db, err := store.NewSQLiteDB(cfg.Database.Path)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("open database: %w", err)
	}

	cs := cache.New(db)
	client := statsapi.New(statsapi.Config{
		BaseURL:           cfg.StatsAPI.BaseURL,
		LiveURL:           cfg.StatsAPI.LiveURL,
		Timeout:           cfg.StatsAPI.Timeout,
		RequestsPerSecond: cfg.StatsAPI.RequestsPerSecond,
		MaxAttempts:       cfg.StatsAPI.MaxAttempts,
	}, log)

	engine, err := syncer.New(client, db, cs, syncer.Options{
		Location:        loc,
		Retention:       cfg.Retention(),
		Verbose:         cfg.Updater.LogDetail,
		LiveInterval:    cfg.Updater.LiveInterval,
		IdleInterval:    cfg.Updater.IdleInterval,
		Concurrency:     cfg.Updater.Concurrency,
		MaxBackfillDays: cfg.Updater.MaxBackfillDays,
		DiagCapacity:    cfg.Updater.DiagnosticsCapacity,
	}, log)
	if err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, fmt.Errorf("init engine: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db, cache: cs, engine: engine, shutdownTelemetry: shutdown}, nil
}

func (a *app) Close() error {
	a.engine.Close()
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdown)
	defer cancel()
	return errors.Join(a.db.Close(), a.shutdownTelemetry(ctx))
}
