package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"EdgarScanner/internal/app"
	"EdgarScanner/internal/config"
	"EdgarScanner/internal/logging"
)

func main() {
	untilBoundary := flag.Bool("until-boundary", false,
		"retry scans until the window boundary is crossed with entries kept")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	run := application.Run
	if *untilBoundary {
		run = application.RunUntilBoundary
	}
	stats, err := run(ctx)
	if err != nil {
		logger.Error("scan stopped", "error", err)
		os.Exit(1)
	}

	// CI deployments treat an inconclusive scan as a failed job so the
	// workflow retries it.
	if cfg.Runner.CIMode && !stats.Succeeded() {
		logger.Error("scan inconclusive",
			"hit_boundary", stats.HitBoundary, "kept", stats.EntriesKept)
		os.Exit(2)
	}
}
