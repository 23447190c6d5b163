package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"EdgarScanner/internal/domain"
)

func testRecord() domain.ScoredRecord {
	return domain.ScoredRecord{
		Entry: domain.FilingEntry{
			Title:   "8-K - Acme Corp (0001234567) (Filer)",
			Form:    "8-K",
			Company: "Acme Corp",
			CIK:     "0001234567",
			FiledAt: time.Date(2026, 8, 26, 10, 15, 0, 0, time.UTC),
			Link:    "https://www.sec.gov/Archives/edgar/data/1234567/x-index.htm",
		},
		Enrichment: domain.EnrichmentRecord{
			Ticker:         "ACME",
			SIC:            3711,
			SICDescription: "Motor Vehicles",
			CompanyName:    "Acme Corp",
		},
		ItemCodes: []string{"2.02"},
		Score:     23,
	}
}

func TestWriteSnapshotCSVColumns(t *testing.T) {
	t.Parallel()

	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteSnapshot([]Row{NewRow(testRecord())}); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	raw, err := os.ReadFile(w.Path(SnapshotCSVFile))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d csv rows, want header + 1", len(records))
	}
	if !reflect.DeepEqual(records[0], csvColumns) {
		t.Fatalf("header = %v", records[0])
	}
	row := records[1]
	if row[1] != "8-K" || row[3] != "ACME" || row[6] != "3711" || row[8] != "23" {
		t.Fatalf("row = %v", row)
	}
}

func TestWriteSnapshotEmptyKeepsHeader(t *testing.T) {
	t.Parallel()

	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteSnapshot(nil); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	raw, err := os.ReadFile(w.Path(SnapshotCSVFile))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("empty snapshot should be header only, got %q", raw)
	}

	var rows []Row
	data, err := os.ReadFile(w.Path(SnapshotJSONFile))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty list, got %d rows", len(rows))
	}
}

func TestWriteStatsRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	stats := domain.RunStats{
		WindowStart: "2026-08-25T09:30:00-04:00",
		WindowEnd:   "2026-08-26T09:30:00-04:00",
		EntriesKept: 7,
		HitBoundary: true,
	}
	if err := w.WriteStats(stats); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, StatsFile))
	if err != nil {
		t.Fatalf("read stats: %v", err)
	}
	var got domain.RunStats
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("parse stats: %v", err)
	}
	if got.EntriesKept != 7 || !got.HitBoundary || got.WindowStart != stats.WindowStart {
		t.Fatalf("stats round trip mismatch: %+v", got)
	}
	if !strings.Contains(string(raw), `"hit_boundary": true`) {
		t.Fatalf("stats json missing hit_boundary: %s", raw)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteRaw([]Row{NewRow(testRecord())}); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}
