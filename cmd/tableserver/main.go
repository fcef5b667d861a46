// Package main runs the table server: the Telnet console backed by the dice
// engine, per-connection initiative trackers, and the shared roster.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sixthworld/internal/config"
	"github.com/cory-johannsen/sixthworld/internal/frontend/handlers"
	"github.com/cory-johannsen/sixthworld/internal/frontend/telnet"
	"github.com/cory-johannsen/sixthworld/internal/game/dice"
	"github.com/cory-johannsen/sixthworld/internal/game/roster"
	"github.com/cory-johannsen/sixthworld/internal/game/ruleset"
	"github.com/cory-johannsen/sixthworld/internal/game/session"
	"github.com/cory-johannsen/sixthworld/internal/observability"
	"github.com/cory-johannsen/sixthworld/internal/server"
	"github.com/cory-johannsen/sixthworld/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	var seed dice.Seed
	flag.Var(&seed, "seed", "replay every roll from this seed (default: crypto randomness)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	store, err := openStore(ctx, cfg, logger, lifecycle)
	if err != nil {
		logger.Fatal("opening roster store", zap.Error(err))
	}

	var catalog *ruleset.Catalog
	if cfg.Rules.SkillsFile != "" {
		catalog, err = ruleset.LoadSkills(cfg.Rules.SkillsFile)
		if err != nil {
			logger.Fatal("loading skill catalog", zap.Error(err))
		}
		logger.Info("skill catalog loaded", zap.Int("skills", catalog.Len()))
	}

	src := seed.Source()
	if seed.Given() {
		logger.Warn("rolling from a fixed seed", zap.Uint64("seed", seed.Value()))
	}

	console := handlers.NewConsoleHandler(handlers.Options{
		Roller:           dice.NewLoggedRoller(src, logger.Named("dice")),
		Roster:           roster.New(store, cfg.Storage.Key, logger.Named("roster")),
		Catalog:          catalog,
		Tables:           session.NewManager(),
		DefaultThreshold: cfg.Rules.DefaultThreshold,
		Logger:           logger.Named("console"),
	})
	lifecycle.Add("telnet", telnet.NewAcceptor(cfg.Telnet, console, logger.Named("telnet")))

	logger.Info("table server initialized",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// openStore returns the roster BlobStore selected by cfg.Storage.Backend.
// A postgres pool is health-checked in the background and closed on shutdown.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger, lc *server.Lifecycle) (roster.BlobStore, error) {
	if cfg.Storage.Backend != config.BackendPostgres {
		logger.Warn("using in-memory roster; saved characters are lost on restart")
		return roster.NewMemoryStore(), nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	lc.Add("postgres-health", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					_ = pool.Health(ctx, 5*time.Second)
				}
			}
		},
		StopFn: func() { close(done) },
	})
	lc.OnShutdown("postgres", func() error {
		pool.Close()
		return nil
	})
	return postgres.NewBlobStore(pool.DB()), nil
}
