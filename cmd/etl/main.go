// Package main runs the movies ETL: PostgreSQL content tables into Elasticsearch indexes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/config"
	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	"github.com/DjordjeVuckovic/movies-etl/internal/server"
	"github.com/DjordjeVuckovic/movies-etl/internal/state"
	"github.com/DjordjeVuckovic/movies-etl/internal/storage/es"
	"github.com/DjordjeVuckovic/movies-etl/internal/storage/pg"
	pkgserver "github.com/DjordjeVuckovic/movies-etl/pkg/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("ETL stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cli, err := parseFlags(args)
	if err != nil {
		return err
	}
	forcedStart, err := cli.forcedStart()
	if err != nil {
		return err
	}

	cfg, err := NewAppConfig().Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	pipelinesCfg, err := config.LoadFile(cfg.PipelinesConfigPath)
	if err != nil {
		return err
	}

	opsCfg, err := server.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.PgConnStr})
	if err != nil {
		return fmt.Errorf("pg connection: %w", err)
	}
	defer pool.Close()

	esClient, err := es.NewClient(cfg.Es)
	if err != nil {
		return fmt.Errorf("es client: %w", err)
	}

	pumpers, specs, err := buildPipelines(pipelinesCfg.Enabled(), deps{
		pool:      pool,
		es:        esClient,
		storage:   state.NewJSONFileStorage(cfg.StateFilePath),
		startDate: cfg.StartDate,
	})
	if err != nil {
		return err
	}

	if cli.EnsureIndexes {
		if err := es.NewIndexManager(esClient, specs...).Ensure(ctx, cli.DeleteIndexes); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}

	runner := etl.NewRunner(pumpers...)
	slog.Info("🚀 Starting ETL",
		"pipelines", len(pumpers),
		"state_file", cfg.StateFilePath,
		"sleep_time", cfg.SleepTime,
		"once", cli.Once,
	)

	if cli.Once {
		return sweepOnce(ctx, runner, forcedStart)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runner.Run(gctx, cfg.SleepTime, forcedStart)
	})

	if opsCfg.Enabled {
		ops := server.NewServer(opsCfg, runner, map[string]pkgserver.HealthChecker{
			"postgres":      pg.NewHealthChecker(pool),
			"elasticsearch": es.NewHealthChecker(esClient),
		})
		g.Go(func() error {
			return ops.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("Shutdown complete")
	return nil
}

// sweepOnce runs a single sweep. A signal stops the process after the sweep,
// not in the middle of it, the same as between sweeps in continuous mode.
func sweepOnce(ctx context.Context, runner *etl.Runner, forcedStart *time.Time) error {
	return runner.RunOnce(context.WithoutCancel(ctx), forcedStart)
}
