package domain

import (
	"testing"
	"time"
)

func TestFilingEntryKeyStable(t *testing.T) {
	t.Parallel()

	e := FilingEntry{
		Form:    "8-K",
		CIK:     "0001234567",
		FiledAt: time.Date(2026, 8, 26, 10, 15, 0, 0, time.UTC),
		Link:    "https://www.sec.gov/Archives/edgar/data/1234567/a-index.htm",
	}
	if e.Key() != e.Key() {
		t.Fatal("key not deterministic")
	}

	other := e
	other.Link = "https://www.sec.gov/Archives/edgar/data/1234567/b-index.htm"
	if e.Key() == other.Key() {
		t.Fatal("distinct links must yield distinct keys")
	}

	// Title changes alone do not alter identity.
	retitled := e
	retitled.Title = "different title"
	if e.Key() != retitled.Key() {
		t.Fatal("title should not affect the key")
	}
}

func TestTimeWindowContains(t *testing.T) {
	t.Parallel()

	w := TimeWindow{
		Start: time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
	}
	if !w.Contains(w.Start) || !w.Contains(w.End) {
		t.Fatal("boundaries must be inclusive")
	}
	if w.Contains(w.Start.Add(-time.Second)) || w.Contains(w.End.Add(time.Second)) {
		t.Fatal("instants outside the window accepted")
	}
}

func TestCheckpointMatches(t *testing.T) {
	t.Parallel()

	w := TimeWindow{
		Start: time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
	}
	ckpt := NewCheckpoint(w, 300, "")
	if ckpt.Status != CheckpointIncomplete {
		t.Fatalf("status = %q", ckpt.Status)
	}
	if !ckpt.Matches(w) {
		t.Fatal("checkpoint must match its own window")
	}

	shifted := TimeWindow{Start: w.Start.Add(time.Hour), End: w.End}
	if ckpt.Matches(shifted) {
		t.Fatal("checkpoint matched a different window")
	}
}

func TestRunStatsSucceeded(t *testing.T) {
	t.Parallel()

	if (RunStats{HitBoundary: true, EntriesKept: 0}).Succeeded() {
		t.Fatal("no kept entries must not count as success")
	}
	if (RunStats{HitBoundary: false, EntriesKept: 5}).Succeeded() {
		t.Fatal("success requires crossing the boundary")
	}
	if !(RunStats{HitBoundary: true, EntriesKept: 1}).Succeeded() {
		t.Fatal("boundary plus kept entries is success")
	}
}
