// Package app wires configuration to the scan pipeline and the retry runner.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"EdgarScanner/internal/ban"
	"EdgarScanner/internal/config"
	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/infrastructure/documents"
	"EdgarScanner/internal/infrastructure/enrichment"
	"EdgarScanner/internal/infrastructure/feed"
	"EdgarScanner/internal/infrastructure/httpx"
	"EdgarScanner/internal/infrastructure/news"
	"EdgarScanner/internal/infrastructure/output"
	"EdgarScanner/internal/infrastructure/paginator"
	"EdgarScanner/internal/infrastructure/seen"
	"EdgarScanner/internal/infrastructure/webhook"
	"EdgarScanner/internal/logging"
	"EdgarScanner/internal/ports"
	"EdgarScanner/internal/score"
	"EdgarScanner/internal/usecase"
	"EdgarScanner/internal/window"
)

// State file names, kept alongside the output artifacts.
const (
	checkpointFile = "sec_scan_checkpoint.json"
	seenKeysFile   = "sec_seen_keys.json"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	runner   *usecase.Runner
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	loc := cfg.Window.Location()
	resolver, err := window.New(loc, cfg.Window.CutoffHour, cfg.Window.CutoffMinute,
		cfg.Window.BusinessDays, cfg.Window.WeekendTail)
	if err != nil {
		return nil, fmt.Errorf("build window resolver: %w", err)
	}

	client := httpx.New(httpx.Options{
		UserAgent:         cfg.HTTP.UserAgent,
		Timeout:           time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		RetryCount:        cfg.HTTP.RetryCount,
		RetrySleep:        time.Duration(cfg.HTTP.RetrySleepSeconds * float64(time.Second)),
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
	}, logging.Component(baseLogger, "http"))

	registry := feed.NewRegistry()
	registry.Register(feed.NewAtomSource(client, feed.DefaultBaseURL, loc,
		logging.Component(baseLogger, "feed.atom")))
	registry.Register(feed.NewHTMLSource(client, feed.DefaultBaseURL, loc,
		logging.Component(baseLogger, "feed.html")))
	source, err := registry.Resolve(cfg.Scan.Source)
	if err != nil {
		return nil, err
	}

	writer, err := output.NewWriter(cfg.Output.Dir)
	if err != nil {
		return nil, err
	}

	pager := paginator.New(source,
		paginator.NewFileCheckpointStore(filepath.Join(cfg.Output.Dir, checkpointFile)),
		paginator.Options{
			MaxPages:      cfg.Scan.MaxPages,
			CountPerPage:  cfg.Scan.CountPerPage,
			PagePause:     time.Duration(cfg.Scan.PagePauseSeconds * float64(time.Second)),
			MaxEmptyPages: cfg.Scan.MaxEmptyPages,
			PageBudget:    cfg.Scan.PageBudget,
			SeekMode:      cfg.Scan.SeekMode,
			ExtendDays:    cfg.Scan.ScanExtendDays,
		}, logging.Component(baseLogger, "paginator"))

	var docs ports.DocumentFetcher
	if cfg.Scan.FetchDocuments {
		docs = documents.New(client, logging.Component(baseLogger, "documents"))
	}

	var collector *news.Collector
	if cfg.News.Enabled {
		collector = news.New(client, news.Config{
			TopN:             cfg.News.TopN,
			Lookback:         time.Duration(cfg.News.LookbackHours) * time.Hour,
			MaxHitsPerTicker: cfg.News.MaxHitsPerTicker,
			YahooRSSURL:      cfg.News.YahooRSSURL,
			SearchEndpoints:  cfg.News.SearchEndpoints,
			PositiveKeywords: cfg.Scoring.PositiveKeywords,
			NegativeKeywords: cfg.Scoring.NegativeKeywords,
		}, logging.Component(baseLogger, "news"))
	}

	var uploader ports.Uploader
	if up := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.AllowedFilenames,
		time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second,
		logging.Component(baseLogger, "webhook")); up != nil {
		uploader = up
	}

	pipeline := usecase.NewPipeline(usecase.Deps{
		Resolver:  resolver,
		Paginator: pager,
		Enricher: enrichment.New(client, "", "",
			logging.Component(baseLogger, "enrichment")),
		Docs:         docs,
		Seen:         seen.Load(filepath.Join(cfg.Output.Dir, seenKeysFile)),
		Scorer:       score.New(cfg.Scoring.ScoreConfig()),
		Ban:          ban.New(cfg.Ban.BanFilterConfig()),
		Writer:       writer,
		News:         collector,
		Uploader:     uploader,
		Clock:        systemClock{},
		Logger:       logging.Component(baseLogger, "pipeline"),
		TrackedForms: cfg.Scan.TrackedForms,
	})

	backoffs := make([]time.Duration, len(cfg.Runner.BackoffSeconds))
	for i, s := range cfg.Runner.BackoffSeconds {
		backoffs[i] = time.Duration(s) * time.Second
	}
	runner := usecase.NewRunner(pipeline, cfg.Runner.MaxAttempts, backoffs,
		logging.Component(baseLogger, "runner"))

	return &Application{cfg: cfg, pipeline: pipeline, runner: runner}, nil
}

// Run executes a single scan attempt.
func (a *Application) Run(ctx context.Context) (domain.RunStats, error) {
	return a.pipeline.Run(ctx)
}

// RunUntilBoundary retries scans until one crosses the window boundary.
func (a *Application) RunUntilBoundary(ctx context.Context) (domain.RunStats, error) {
	return a.runner.RunUntilBoundary(ctx)
}
