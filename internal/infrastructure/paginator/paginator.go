// Package paginator walks the current-filings feed backward in time until
// the oldest entry on a page falls before the target window, checkpointing
// after every page so an interrupted run resumes at the right offset.
package paginator

import (
	"context"
	"log/slog"
	"time"

	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/ports"
)

// Seek strides by how far the page's oldest entry still is from the window
// end; large jumps while far out, single pages once close.
var seekStrides = []struct {
	gap    time.Duration
	stride int
}{
	{4 * time.Hour, 2000},
	{2 * time.Hour, 1000},
	{1 * time.Hour, 500},
	{0, 200},
}

// Options tune one pagination attempt.
type Options struct {
	MaxPages      int
	CountPerPage  int
	PagePause     time.Duration
	MaxEmptyPages int
	PageBudget    int
	SeekMode      bool
	ExtendDays    int
}

// Result summarizes one attempt. Failure streaks and budget exhaustion are
// reported here, not returned as errors; a single bad page is never fatal.
type Result struct {
	Entries             []domain.FilingEntry
	PagesFetched        int
	FetchErrors         int
	HitBoundary         bool
	HitExtendedBoundary bool
	HitPageBudget       bool
	Resumed             bool
	ResumeOffset        int
	LastOldestScanned   time.Time
}

// Paginator drives a FeedSource through consecutive offsets.
type Paginator struct {
	source ports.FeedSource
	store  ports.CheckpointStore
	opts   Options
	logger *slog.Logger
}

// New wires the source and checkpoint store.
func New(source ports.FeedSource, store ports.CheckpointStore, opts Options, logger *slog.Logger) *Paginator {
	if opts.CountPerPage < 1 {
		opts.CountPerPage = 100
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = 1
	}
	if opts.PageBudget < 1 {
		opts.PageBudget = opts.MaxPages
	}
	if opts.MaxEmptyPages < 1 {
		opts.MaxEmptyPages = 10
	}
	return &Paginator{source: source, store: store, opts: opts, logger: logger}
}

// Run scans pages until the boundary is conclusively crossed, a failure
// streak persists, or the page budget runs out. Entries whose timestamps fall
// inside win (or tail, when non-nil) are collected; everything else on the
// page is discarded. The checkpoint is updated after every page.
func (p *Paginator) Run(ctx context.Context, win domain.TimeWindow, tail *domain.TimeWindow) (Result, error) {
	res := Result{}

	offset := 0
	if ckpt, err := p.store.Load(); err != nil {
		p.warn("checkpoint unreadable, starting fresh", "error", err)
	} else if ckpt.Status == domain.CheckpointIncomplete && ckpt.Matches(win) {
		offset = ckpt.NextOffset
		res.Resumed = true
		res.ResumeOffset = offset
		p.info("resuming scan", "offset", offset)
	}

	// The conclusive stop line: window start minus the extra lookback margin.
	extendedStop := win.Start.AddDate(0, 0, -p.opts.ExtendDays)

	crossedEnd := !p.opts.SeekMode
	emptyStreak := 0

	for page := 0; page < p.opts.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if res.PagesFetched >= p.opts.PageBudget {
			p.info("page budget exhausted", "budget", p.opts.PageBudget)
			res.HitPageBudget = true
			break
		}

		entries, err := p.source.FetchPage(ctx, offset, p.opts.CountPerPage)
		res.PagesFetched++

		if err != nil {
			res.FetchErrors++
			emptyStreak++
			p.warn("page fetch failed", "offset", offset, "streak", emptyStreak, "error", err)
			p.checkpoint(win, offset, res.LastOldestScanned)
			if emptyStreak >= p.opts.MaxEmptyPages {
				break
			}
			p.pause(ctx)
			continue
		}
		if len(entries) == 0 {
			emptyStreak++
			p.checkpoint(win, offset, res.LastOldestScanned)
			if emptyStreak >= p.opts.MaxEmptyPages {
				break
			}
			p.pause(ctx)
			continue
		}
		newest, oldest := bounds(entries)
		if oldest.IsZero() {
			// Page parsed but no entry carried a usable timestamp; treat like
			// an empty page so a stretch of them still terminates the attempt.
			emptyStreak++
			offset += len(entries)
			p.checkpoint(win, offset, res.LastOldestScanned)
			if emptyStreak >= p.opts.MaxEmptyPages {
				break
			}
			p.pause(ctx)
			continue
		}
		emptyStreak = 0
		res.LastOldestScanned = oldest
		if page%10 == 0 {
			p.info("scan heartbeat", "page", page, "offset", offset,
				"newest", newest.Format(time.RFC3339), "oldest", oldest.Format(time.RFC3339))
		}

		// Seek mode: while even the oldest entry on the page is newer than the
		// window end we are still scanning recent, irrelevant pages; jump
		// ahead instead of advancing one page at a time.
		if !crossedEnd {
			if oldest.After(win.End) && (tail == nil || oldest.After(tail.End)) {
				stride := seekStride(oldest.Sub(win.End))
				offset += stride
				p.debug("seek jump", "stride", stride, "offset", offset)
				p.checkpoint(win, offset, res.LastOldestScanned)
				p.pause(ctx)
				continue
			}
			crossedEnd = true
		}

		for _, entry := range entries {
			if win.Contains(entry.FiledAt) || (tail != nil && tail.Contains(entry.FiledAt)) {
				res.Entries = append(res.Entries, entry)
			}
		}

		if oldest.Before(win.Start) {
			res.HitBoundary = true
		}
		if oldest.Before(extendedStop) {
			res.HitExtendedBoundary = true
			offset += len(entries)
			p.checkpoint(win, offset, res.LastOldestScanned)
			break
		}

		offset += len(entries)
		p.checkpoint(win, offset, res.LastOldestScanned)
		p.pause(ctx)
	}

	if res.HitExtendedBoundary {
		res.HitBoundary = true
	}
	return res, nil
}

// Finalize marks the window's checkpoint complete so the next run starts
// fresh unless the window matches again.
func (p *Paginator) Finalize(win domain.TimeWindow, lastOldest time.Time) {
	ckpt := domain.NewCheckpoint(win, 0, formatOldest(lastOldest))
	ckpt.Status = domain.CheckpointComplete
	if err := p.store.Save(ckpt); err != nil {
		p.warn("finalize checkpoint failed", "error", err)
	}
}

func (p *Paginator) checkpoint(win domain.TimeWindow, nextOffset int, lastOldest time.Time) {
	ckpt := domain.NewCheckpoint(win, nextOffset, formatOldest(lastOldest))
	if err := p.store.Save(ckpt); err != nil {
		p.warn("checkpoint save failed", "error", err)
	}
}

func (p *Paginator) pause(ctx context.Context) {
	if p.opts.PagePause <= 0 {
		return
	}
	timer := time.NewTimer(p.opts.PagePause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func bounds(entries []domain.FilingEntry) (newest, oldest time.Time) {
	for _, e := range entries {
		if e.FiledAt.IsZero() {
			continue
		}
		if newest.IsZero() || e.FiledAt.After(newest) {
			newest = e.FiledAt
		}
		if oldest.IsZero() || e.FiledAt.Before(oldest) {
			oldest = e.FiledAt
		}
	}
	return newest, oldest
}

func seekStride(gap time.Duration) int {
	for _, s := range seekStrides {
		if gap > s.gap {
			return s.stride
		}
	}
	return seekStrides[len(seekStrides)-1].stride
}

func formatOldest(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func (p *Paginator) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Paginator) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Paginator) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
