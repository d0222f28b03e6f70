// Package main provides the build advisor binary: an MCP server over stdio
// backed by the effective-health and upgrade calculators and an optional
// PostgreSQL item catalog.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/dochoss/poe2-mcp/internal/build/defense"
	"github.com/dochoss/poe2-mcp/internal/config"
	"github.com/dochoss/poe2-mcp/internal/mcpserver"
	"github.com/dochoss/poe2-mcp/internal/observability"
	"github.com/dochoss/poe2-mcp/internal/server"
	"github.com/dochoss/poe2-mcp/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	threatsDir := flag.String("threats-dir", "", "path to threat profile YAML directory; overrides config")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	dir := cfg.Advisor.ThreatsDir
	if *threatsDir != "" {
		dir = *threatsDir
	}
	threats := map[string]defense.ThreatProfile{}
	if dir != "" {
		defs, err := defense.LoadThreatDefs(dir)
		if err != nil {
			logger.Fatal("loading threat profiles", zap.Error(err))
		}
		for _, def := range defs {
			threats[def.ID] = def.Profile()
		}
		logger.Info("threat profiles loaded", zap.Int("count", len(threats)), zap.String("dir", dir))
	}

	opts := mcpserver.Options{
		Logger:        logger,
		Threats:       threats,
		DefaultThreat: cfg.Advisor.DefaultThreat,
		TopK:          cfg.Advisor.TopK,
	}

	var pool *postgres.Pool
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts.Items = postgres.NewItemRepository(pool.DB())
		opts.Builds = postgres.NewBuildRepository(pool.DB())
	}

	srv, err := mcpserver.New(opts)
	if err != nil {
		logger.Fatal("creating mcp server", zap.Error(err))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Stop order is the reverse of add order: the MCP loop drains before the
	// pool closes.
	lifecycle := server.NewLifecycle(logger)
	if pool != nil {
		lifecycle.Add("database", &server.FuncService{
			StartFn: func() error { return nil },
			StopFn:  pool.Close,
		})
	}
	lifecycle.Add("mcp", &server.FuncService{
		StartFn: func() error { return srv.Run(runCtx) },
		StopFn:  cancel,
	})

	if err := lifecycle.Run(runCtx); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}
