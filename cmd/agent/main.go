// Command agent runs a small demo service with the instrumentation agent
// embedded, showing the wiring a real host service performs.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/akarpov/telescout/internal/config"
	"github.com/akarpov/telescout/pkg/util"
)

// Set via -ldflags at build time.
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	util.PrintBuildInfo(buildVersion, buildDate, buildCommit)

	cfg, err := config.LoadAgentConfig(os.Args[1:], os.Stderr)
	if err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("agent setup failed", zap.Error(err))
	}
	defer cleanup()

	logger.Info("agent starting",
		zap.String("microservice", cfg.Microservice),
		zap.String("backend", cfg.Backend),
		zap.Duration("interval", cfg.Interval),
	)
	if err := run(ctx, cfg, a, logger); err != nil {
		logger.Fatal("agent exited", zap.Error(err))
	}
}
