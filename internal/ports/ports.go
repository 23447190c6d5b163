package ports

import (
	"context"
	"time"

	"EdgarScanner/internal/domain"
)

// FeedSource fetches one page of the current-filings feed at the given
// offset. Implementations parse the raw payload into normalized entries.
type FeedSource interface {
	Name() string
	FetchPage(ctx context.Context, offset, count int) ([]domain.FilingEntry, error)
}

// Enricher resolves issuer metadata for a zero-padded CIK. Implementations
// degrade to zero-value records on failure instead of returning errors.
type Enricher interface {
	Enrich(ctx context.Context, cik string) domain.EnrichmentRecord
}

// DocumentFetcher retrieves a bounded plain-text excerpt of a filing's
// primary document, following the filing index page.
type DocumentFetcher interface {
	Excerpt(ctx context.Context, indexURL string) (string, error)
}

// CheckpointStore persists the paginator cursor between process invocations.
type CheckpointStore interface {
	Load() (domain.Checkpoint, error)
	Save(ckpt domain.Checkpoint) error
}

// SeenStore remembers dedup keys across runs.
type SeenStore interface {
	Contains(key string) bool
	Add(key string)
	Flush() error
}

// StatsSink receives the run statistics snapshot; used so failures can still
// record a captured error message before the process exits.
type StatsSink interface {
	WriteStats(stats domain.RunStats) error
}

// Uploader pushes output files to an external hosting endpoint. Failures are
// reported per file and never abort the run.
type Uploader interface {
	Upload(ctx context.Context, paths []string) []string
}

// Clock abstracts wall-clock time for deterministic tests.
type Clock interface {
	Now() time.Time
}
