package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/syssam/chinook/config"
	"github.com/syssam/chinook/dialect/sql"
	"github.com/syssam/chinook/dialect/sql/schema"
	"github.com/syssam/chinook/engine"
	"github.com/syssam/chinook/graph"
	"github.com/syssam/chinook/metrics"
	"github.com/syssam/chinook/relation"
	"github.com/syssam/chinook/repository"
)

// app is the wired service: store, engine, executor and metrics.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	level   *slog.LevelVar
	drv     *sql.Driver
	stats   *sql.StatsDriver
	metrics *metrics.Metrics
	engine  *engine.Engine
	exec    *graph.Executor
}

// newLogger builds the process logger from cfg. The returned level can be
// changed while the logger is in use.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, *slog.LevelVar, error) {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	level := new(slog.LevelVar)
	level.Set(lvl)
	return slog.New(cfg.Handler(w, level)), level, nil
}

// openStore opens and pings the configured store.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (*sql.Driver, error) {
	drv, err := sql.Open(cfg.Dialect, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		drv.DB().SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := drv.Ping(ctx); err != nil {
		_ = drv.Close()
		return nil, err
	}
	return drv, nil
}

func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	log, level, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}
	drv, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a, err := wire(ctx, cfg, log, level, drv)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, log *slog.Logger, level *slog.LevelVar, drv *sql.Driver) (*app, error) {
	if cfg.Database.ValidateSchema {
		res, err := schema.Check(ctx, drv, schema.Chinook)
		if err != nil {
			return nil, fmt.Errorf("inspect store: %w", err)
		}
		for _, w := range res.Warnings {
			log.WarnContext(ctx, "store shape", "table", w.Table, "column", w.Column, "warning", w.Message)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
	}
	m := metrics.New()
	stats := sql.NewStatsDriver(drv,
		sql.WithSlowThreshold(cfg.Stats.SlowQueryThreshold),
		sql.WithSlowQueryLog(log),
		sql.WithQueryObserver(m.ObserveQuery),
	)
	// Query logging follows the live log level, see reload.
	store := sql.NewDebugDriver(stats,
		sql.DebugWithLog(func(ctx context.Context, v ...any) {
			log.DebugContext(ctx, fmt.Sprint(v...))
		}),
		sql.DebugWhen(func(ctx context.Context) bool {
			return log.Enabled(ctx, slog.LevelDebug)
		}),
	)
	repo := repository.New(store, repository.WithLogger(log))
	eng, err := engine.New(repo,
		engine.WithLogger(log),
		engine.WithSimilarityThreshold(cfg.Engine.SimilarityThreshold),
	)
	if err != nil {
		return nil, err
	}
	rel := relation.New(repo,
		relation.WithLogger(log),
		relation.WithBatchWait(cfg.Engine.BatchWait),
		relation.WithBatchCapacity(cfg.Engine.BatchCapacity),
	)
	exec, err := graph.New(eng, rel,
		graph.WithLogger(log),
		graph.WithBatching(cfg.Engine.Batching),
		graph.WithObserver(m),
	)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		log:     log,
		level:   level,
		drv:     drv,
		stats:   stats,
		metrics: m,
		engine:  eng,
		exec:    exec,
	}, nil
}

// reload applies the settings that can change without a restart. Store and
// server settings are ignored until the next start.
func (a *app) reload(cfg *config.Config) {
	if err := a.engine.SetSimilarityThreshold(cfg.Engine.SimilarityThreshold); err != nil {
		a.log.Warn("similarity threshold not applied", "error", err)
	}
	if lvl, err := cfg.Log.SlogLevel(); err == nil {
		a.level.Set(lvl)
	}
	a.stats.SetSlowThreshold(cfg.Stats.SlowQueryThreshold)
	a.exec.SetBatching(cfg.Engine.Batching)
	a.log.Info("settings applied",
		"similarity_threshold", a.engine.SimilarityThreshold(),
		"batching", cfg.Engine.Batching,
		"log_level", a.level.Level().String(),
	)
}

func (a *app) Close() error {
	a.log.Info("closing store", "stats", a.stats.QueryStats().Stats().String())
	return a.drv.Close()
}
