package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// FilingEntry is a core entity describing one item parsed from the EDGAR
// current-filings feed. Immutable after parsing; enrichment and scoring
// attach to it via ScoredRecord.
type FilingEntry struct {
	Title   string
	Summary string
	Form    string
	Company string
	CIK     string
	FiledAt time.Time
	Link    string
}

// Key returns a stable dedup key for the entry. Feeds do not guarantee
// uniqueness, so identity is a content hash of link, CIK, form and timestamp.
func (e FilingEntry) Key() string {
	base := fmt.Sprintf("%s|%s|%s|%s", e.Link, e.CIK, e.Form, e.FiledAt.UTC().Format(time.RFC3339))
	if base == "|||" {
		base = e.Title + "|" + e.Summary
	}
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// EnrichmentRecord carries issuer metadata resolved from the submissions API.
// A zero SIC means the industry code is unknown.
type EnrichmentRecord struct {
	Ticker         string
	SIC            int
	SICDescription string
	CompanyName    string
}

// ScoredRecord is a filing entry plus its enrichment, extracted signals and
// the final relevance score. Banned records are excluded from the snapshot
// output but still appear in raw output and debug statistics.
type ScoredRecord struct {
	Entry      FilingEntry
	Enrichment EnrichmentRecord
	ItemCodes  []string
	Form4Codes []string
	Excerpt    string
	Score      int
	Banned     bool
	BanReason  string
}

// TimeWindow bounds which filings are kept. Both instants are zone-aware and
// Start precedes End.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, boundaries included.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Checkpoint statuses.
const (
	CheckpointIncomplete = "incomplete"
	CheckpointComplete   = "complete"
)

// Checkpoint is the resumable pagination cursor, persisted after every page.
// It is honored on resume only when its recorded window matches the window
// computed for the new run.
type Checkpoint struct {
	Status            string `json:"status"`
	WindowStart       string `json:"window_start"`
	WindowEnd         string `json:"window_end"`
	NextOffset        int    `json:"next_page_offset"`
	LastOldestScanned string `json:"last_oldest_timestamp_scanned"`
}

// Matches reports whether the checkpoint belongs to the given window.
func (c Checkpoint) Matches(w TimeWindow) bool {
	return c.WindowStart == w.Start.Format(time.RFC3339) &&
		c.WindowEnd == w.End.Format(time.RFC3339)
}

// NewCheckpoint builds an incomplete checkpoint for the window at offset.
func NewCheckpoint(w TimeWindow, offset int, lastOldest string) Checkpoint {
	return Checkpoint{
		Status:            CheckpointIncomplete,
		WindowStart:       w.Start.Format(time.RFC3339),
		WindowEnd:         w.End.Format(time.RFC3339),
		NextOffset:        offset,
		LastOldestScanned: lastOldest,
	}
}

// RunStats records counters for one pipeline invocation. Written to the
// stats file even when the run fails partway.
type RunStats struct {
	WindowStart         string   `json:"window_start"`
	WindowEnd           string   `json:"window_end"`
	CutoffLocalTime     string   `json:"cutoff_local_time"`
	PagesFetched        int      `json:"pages_fetched"`
	EntriesSeen         int      `json:"entries_seen"`
	EntriesKept         int      `json:"entries_kept"`
	BannedSIC           int      `json:"banned_sic"`
	BannedKeyword       int      `json:"banned_kw"`
	FetchErrors         int      `json:"fetch_errors"`
	EnrichErrors        int      `json:"enrich_errors"`
	HitBoundary         bool     `json:"hit_boundary"`
	HitExtendedBoundary bool     `json:"hit_extended_boundary"`
	HitPageBudget       bool     `json:"hit_page_budget"`
	LastOldestScanned   string   `json:"last_oldest_scanned"`
	Resumed             bool     `json:"resumed"`
	ResumeOffset        int      `json:"resume_offset"`
	StartedAt           string   `json:"started_at"`
	FinishedAt          string   `json:"finished_at"`
	LastError           string   `json:"last_error,omitempty"`
	NewsTickers         int      `json:"news_tickers,omitempty"`
	UploadedFiles       []string `json:"uploaded_files,omitempty"`
}

// Succeeded reports the condition the external retry controller looks for:
// the backward scan conclusively crossed the window boundary and at least one
// entry survived filtering.
func (s RunStats) Succeeded() bool {
	return s.HitBoundary && s.EntriesKept > 0
}
