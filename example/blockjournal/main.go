// Command blockjournal feeds synthetic block events through a two-step handler chain:
// every event is first appended to a Postgres journal and then reported by a progress logger.
// It exits non-zero at the first event the chain fails on.
//
// All settings come from the environment, see package config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/oteladapters"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/postgresjournal"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/example/blockjournal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("block journal failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating database pool: %w", err)
	}
	defer pool.Close()

	inst := instrumentation{logger: logger}

	if cfg.TelemetryStdout {
		tel, telErr := newStdoutTelemetry(ctx, cfg.ServiceName)
		if telErr != nil {
			return fmt.Errorf("setting up telemetry: %w", telErr)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tel.shutdown(shutdownCtx)
		}()

		inst.metrics = tel.metricsCollector()
		inst.tracing = tel.tracingCollector()
	}

	journalOptions := []postgresjournal.Option{
		postgresjournal.WithTableName(cfg.TableName),
		postgresjournal.WithName(cfg.ServiceName),
		postgresjournal.WithContextualLogger(logger),
	}
	if inst.metrics != nil {
		journalOptions = append(journalOptions, postgresjournal.WithMetrics(inst.metrics), postgresjournal.WithTracing(inst.tracing))
	}

	journal, err := postgresjournal.NewJournalFromPGXPool(pool, journalOptions...)
	if err != nil {
		return err
	}

	if err = journal.CreateTable(ctx); err != nil {
		return err
	}

	progress := newProgressLogger(logger)

	pipeline, err := buildPipeline(journal, progress, inst)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "feeding blocks", "from", cfg.StartHeight, "to", cfg.EndHeight(), "table", cfg.TableName)

	if err = feedBlocks(ctx, pipeline, cfg.StartHeight, cfg.EndHeight(), cfg.ABCIEventsPerBlock, cfg.HandleTimeout); err != nil {
		return err
	}

	logger.InfoContext(ctx, "all blocks journaled", "last_height", progress.LastHeight())

	return nil
}

func newPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pingErr
	}

	return pool, nil
}
