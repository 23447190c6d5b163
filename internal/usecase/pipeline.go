// Package usecase wires the scan pipeline: resolve the window, walk the feed
// backward, filter, enrich, score and emit artifacts. The runner in this
// package retries the pipeline until the boundary is conclusively crossed.
package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"EdgarScanner/internal/ban"
	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/infrastructure/news"
	"EdgarScanner/internal/infrastructure/output"
	"EdgarScanner/internal/infrastructure/paginator"
	"EdgarScanner/internal/ports"
	"EdgarScanner/internal/score"
	"EdgarScanner/internal/window"
)

// Deps collects everything one pipeline run needs. Docs, News and Uploader
// are optional; nil disables the corresponding step.
type Deps struct {
	Resolver  *window.Resolver
	Paginator *paginator.Paginator
	Enricher  ports.Enricher
	Docs      ports.DocumentFetcher
	Seen      ports.SeenStore
	Scorer    *score.Scorer
	Ban       *ban.Filter
	Writer    *output.Writer
	News      *news.Collector
	Uploader  ports.Uploader
	Clock     ports.Clock
	Logger    *slog.Logger

	TrackedForms []string
}

// Pipeline executes one complete scan.
type Pipeline struct {
	deps    Deps
	tracked map[string]struct{}
	logger  *slog.Logger
}

// NewPipeline compiles the tracked-form set.
func NewPipeline(deps Deps) *Pipeline {
	tracked := make(map[string]struct{}, len(deps.TrackedForms))
	for _, f := range deps.TrackedForms {
		tracked[f] = struct{}{}
	}
	return &Pipeline{deps: deps, tracked: tracked, logger: deps.Logger}
}

// Run performs a single scan attempt. The statistics snapshot is written even
// when the run fails partway; the returned stats mirror the persisted file.
func (p *Pipeline) Run(ctx context.Context) (domain.RunStats, error) {
	now := p.deps.Clock.Now()
	win, tail := p.deps.Resolver.Resolve(now)

	stats := domain.RunStats{
		WindowStart:     win.Start.Format(time.RFC3339),
		WindowEnd:       win.End.Format(time.RFC3339),
		CutoffLocalTime: win.End.Format("15:04"),
		StartedAt:       now.Format(time.RFC3339),
	}
	p.logger.Info("scan window resolved",
		"start", stats.WindowStart, "end", stats.WindowEnd, "tail", tail != nil)

	res, err := p.deps.Paginator.Run(ctx, win, tail)
	stats.PagesFetched = res.PagesFetched
	stats.FetchErrors = res.FetchErrors
	stats.HitBoundary = res.HitBoundary
	stats.HitExtendedBoundary = res.HitExtendedBoundary
	stats.HitPageBudget = res.HitPageBudget
	stats.Resumed = res.Resumed
	stats.ResumeOffset = res.ResumeOffset
	if !res.LastOldestScanned.IsZero() {
		stats.LastOldestScanned = res.LastOldestScanned.Format(time.RFC3339)
	}
	if err != nil {
		return p.fail(stats, err)
	}
	stats.EntriesSeen = len(res.Entries)

	records := p.process(ctx, res.Entries, &stats)

	kept := make([]domain.ScoredRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Banned {
			kept = append(kept, rec)
		}
	}
	stats.EntriesKept = len(kept)
	sortRecords(kept)
	sortRecords(records)

	if err := p.deps.Writer.WriteRaw(toRows(records)); err != nil {
		return p.fail(stats, err)
	}
	if err := p.deps.Writer.WriteSnapshot(toRows(kept)); err != nil {
		return p.fail(stats, err)
	}
	if err := p.deps.Seen.Flush(); err != nil {
		p.logger.Warn("seen registry flush failed", "error", err)
	}

	if p.deps.News != nil {
		overlay := p.deps.News.Collect(ctx, now, candidates(kept))
		stats.NewsTickers = len(overlay.Tickers)
		if err := p.deps.Writer.WriteOverlay(overlay); err != nil {
			p.logger.Warn("overlay write failed", "error", err)
		}
	}

	stats.FinishedAt = p.deps.Clock.Now().Format(time.RFC3339)
	if err := p.deps.Writer.WriteStats(stats); err != nil {
		return stats, err
	}

	if p.deps.Uploader != nil {
		stats.UploadedFiles = p.deps.Uploader.Upload(ctx, p.artifactPaths())
		if err := p.deps.Writer.WriteStats(stats); err != nil {
			p.logger.Warn("stats rewrite failed", "error", err)
		}
	}

	if res.HitBoundary {
		p.deps.Paginator.Finalize(win, res.LastOldestScanned)
	}

	p.logger.Info("scan finished",
		"seen", stats.EntriesSeen, "kept", stats.EntriesKept,
		"hit_boundary", stats.HitBoundary, "pages", stats.PagesFetched)
	return stats, nil
}

// process filters entries down to tracked, unseen forms and attaches
// enrichment, document signals, ban verdicts and scores.
func (p *Pipeline) process(ctx context.Context, entries []domain.FilingEntry, stats *domain.RunStats) []domain.ScoredRecord {
	records := make([]domain.ScoredRecord, 0, len(entries))

	for _, entry := range entries {
		if _, ok := p.tracked[entry.Form]; !ok {
			continue
		}
		key := entry.Key()
		if p.deps.Seen.Contains(key) {
			continue
		}
		p.deps.Seen.Add(key)

		rec := domain.ScoredRecord{Entry: entry}
		rec.Enrichment = p.deps.Enricher.Enrich(ctx, entry.CIK)
		if entry.CIK != "" && rec.Enrichment == (domain.EnrichmentRecord{}) {
			stats.EnrichErrors++
		}

		if p.deps.Docs != nil && wantsDocument(entry.Form) {
			excerpt, err := p.deps.Docs.Excerpt(ctx, entry.Link)
			if err != nil {
				stats.FetchErrors++
				p.logger.Debug("document excerpt failed", "link", entry.Link, "error", err)
			} else {
				rec.Excerpt = excerpt
			}
		}

		text := entry.Title + " " + entry.Summary + " " + rec.Excerpt
		rec.ItemCodes = score.ExtractItemCodes(text)
		rec.Form4Codes = score.ExtractForm4Codes(text)

		company := rec.Enrichment.CompanyName
		if company == "" {
			company = entry.Company
		}
		banned, reason := p.deps.Ban.Banned(
			rec.Enrichment.SIC, rec.Enrichment.SICDescription,
			company+" "+entry.Title+" "+entry.Summary)
		rec.Banned = banned
		rec.BanReason = reason
		switch reason {
		case ban.ReasonSIC, ban.ReasonDescription:
			stats.BannedSIC++
		case ban.ReasonKeyword:
			stats.BannedKeyword++
		}

		rec.Score = p.deps.Scorer.Score(entry.Form, rec.ItemCodes, rec.Form4Codes, text)
		records = append(records, rec)
	}
	return records
}

// fail persists the partial statistics with the captured error before
// returning it.
func (p *Pipeline) fail(stats domain.RunStats, err error) (domain.RunStats, error) {
	stats.LastError = err.Error()
	stats.FinishedAt = p.deps.Clock.Now().Format(time.RFC3339)
	if werr := p.deps.Writer.WriteStats(stats); werr != nil {
		p.logger.Error("stats write failed after error", "error", werr)
	}
	return stats, err
}

func (p *Pipeline) artifactPaths() []string {
	names := []string{
		output.SnapshotJSONFile, output.SnapshotCSVFile,
		output.RawJSONFile, output.StatsFile,
	}
	if p.deps.News != nil {
		names = append(names, output.OverlayFile)
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = p.deps.Writer.Path(name)
	}
	return paths
}

// wantsDocument reports whether the form's scoring signals live in the
// document body rather than the feed entry.
func wantsDocument(form string) bool {
	return strings.HasPrefix(form, "8-K") || form == "Form 4" || form == "4/A"
}

// sortRecords orders by score, newest filing breaking ties.
func sortRecords(records []domain.ScoredRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].Entry.FiledAt.After(records[j].Entry.FiledAt)
	})
}

func toRows(records []domain.ScoredRecord) []output.Row {
	rows := make([]output.Row, len(records))
	for i, rec := range records {
		rows[i] = output.NewRow(rec)
	}
	return rows
}

func candidates(kept []domain.ScoredRecord) []news.Candidate {
	out := make([]news.Candidate, 0, len(kept))
	for _, rec := range kept {
		out = append(out, news.Candidate{
			Ticker:  rec.Enrichment.Ticker,
			Company: rec.Enrichment.CompanyName,
			Score:   rec.Score,
		})
	}
	return out
}
