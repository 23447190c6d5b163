package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"EdgarScanner/internal/domain"
)

// Runner repeats pipeline attempts until one crosses the window boundary and
// keeps at least one entry, backing off between attempts. Checkpoints make
// every retry resume where the previous attempt stopped.
type Runner struct {
	pipeline    *Pipeline
	maxAttempts int
	backoffs    []time.Duration
	logger      *slog.Logger
}

// NewRunner clamps maxAttempts to at least one; an empty backoff list means
// immediate retries.
func NewRunner(pipeline *Pipeline, maxAttempts int, backoffs []time.Duration, logger *slog.Logger) *Runner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Runner{
		pipeline:    pipeline,
		maxAttempts: maxAttempts,
		backoffs:    backoffs,
		logger:      logger,
	}
}

// RunUntilBoundary drives attempts until one succeeds or attempts run out.
// The stats of the last attempt are always returned so callers can inspect
// how far the final attempt got.
func (r *Runner) RunUntilBoundary(ctx context.Context) (domain.RunStats, error) {
	var last domain.RunStats

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if err := r.wait(ctx, attempt); err != nil {
			return last, err
		}

		stats, err := r.pipeline.Run(ctx)
		last = stats
		if err != nil {
			if ctx.Err() != nil {
				return last, err
			}
			r.logger.Warn("attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		if stats.Succeeded() {
			r.logger.Info("boundary reached", "attempt", attempt+1, "kept", stats.EntriesKept)
			return stats, nil
		}
		r.logger.Warn("attempt incomplete",
			"attempt", attempt+1,
			"hit_boundary", stats.HitBoundary,
			"kept", stats.EntriesKept)
	}

	return last, fmt.Errorf("no attempt reached the boundary after %d tries", r.maxAttempts)
}

// wait sleeps the attempt's backoff. Attempts beyond the list reuse its last
// entry.
func (r *Runner) wait(ctx context.Context, attempt int) error {
	if attempt == 0 || len(r.backoffs) == 0 {
		return ctx.Err()
	}
	idx := attempt
	if idx >= len(r.backoffs) {
		idx = len(r.backoffs) - 1
	}
	d := r.backoffs[idx]
	if d <= 0 {
		return ctx.Err()
	}
	r.logger.Info("backing off before retry", "attempt", attempt+1, "sleep", d)

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
