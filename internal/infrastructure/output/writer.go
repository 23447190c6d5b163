// Package output serializes run artifacts: the kept-records snapshot (JSON +
// CSV), the raw pre-filter dump, and the debug statistics. The CSV is written
// even when zero records are kept so downstream consumers always find a file
// with at least the header row.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/ports"
)

// Artifact file names, referenced by the uploader allow-list.
const (
	SnapshotJSONFile = "sec_filings_snapshot.json"
	SnapshotCSVFile  = "sec_filings_snapshot.csv"
	RawJSONFile      = "sec_filings_raw.json"
	StatsFile        = "sec_debug_stats.json"
	OverlayFile      = "sec_news_overlay.json"
)

// csvColumns is the fixed CSV schema; stable within one deployment.
var csvColumns = []string{
	"filing_datetime", "form", "company", "ticker", "cik",
	"industry", "sic", "title", "score", "link",
}

// Row is the flat serialized form of a scored record.
type Row struct {
	FilingDatetime string   `json:"filing_datetime"`
	Form           string   `json:"form"`
	Company        string   `json:"company"`
	Ticker         string   `json:"ticker"`
	CIK            string   `json:"cik"`
	Industry       string   `json:"industry"`
	SIC            string   `json:"sic"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	ItemCodes      []string `json:"items,omitempty"`
	Score          int      `json:"score"`
	Banned         bool     `json:"banned,omitempty"`
	BanReason      string   `json:"ban_reason,omitempty"`
	Link           string   `json:"link"`
}

// NewRow flattens a scored record.
func NewRow(rec domain.ScoredRecord) Row {
	company := rec.Enrichment.CompanyName
	if company == "" {
		company = rec.Entry.Company
	}
	sic := ""
	if rec.Enrichment.SIC != 0 {
		sic = strconv.Itoa(rec.Enrichment.SIC)
	}
	return Row{
		FilingDatetime: rec.Entry.FiledAt.Format(time.RFC3339),
		Form:           rec.Entry.Form,
		Company:        company,
		Ticker:         rec.Enrichment.Ticker,
		CIK:            rec.Entry.CIK,
		Industry:       rec.Enrichment.SICDescription,
		SIC:            sic,
		Title:          rec.Entry.Title,
		Summary:        rec.Entry.Summary,
		ItemCodes:      rec.ItemCodes,
		Score:          rec.Score,
		Banned:         rec.Banned,
		BanReason:      rec.BanReason,
		Link:           rec.Entry.Link,
	}
}

// Writer emits artifacts into one directory.
type Writer struct {
	dir string
}

var _ ports.StatsSink = (*Writer)(nil)

// NewWriter ensures the output directory exists.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Path returns the absolute location of a named artifact.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteSnapshot writes the kept records as JSON and CSV.
func (w *Writer) WriteSnapshot(rows []Row) error {
	if err := w.writeJSON(SnapshotJSONFile, rows); err != nil {
		return err
	}
	return w.writeCSV(SnapshotCSVFile, rows)
}

// WriteRaw dumps every parsed record regardless of ban filtering, for
// debugging.
func (w *Writer) WriteRaw(rows []Row) error {
	return w.writeJSON(RawJSONFile, rows)
}

// WriteStats persists the statistics snapshot.
func (w *Writer) WriteStats(stats domain.RunStats) error {
	return w.writeJSON(StatsFile, stats)
}

// WriteOverlay persists the news overlay result.
func (w *Writer) WriteOverlay(v any) error {
	return w.writeJSON(OverlayFile, v)
}

func (w *Writer) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return w.atomicWrite(name, raw)
}

func (w *Writer) writeCSV(name string, rows []Row) error {
	var sb strings.Builder
	cw := csv.NewWriter(&sb)

	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.FilingDatetime, r.Form, r.Company, r.Ticker, r.CIK,
			r.Industry, r.SIC, r.Title, strconv.Itoa(r.Score), r.Link,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return w.atomicWrite(name, []byte(sb.String()))
}

// atomicWrite goes through a temp file and rename so consumers never observe
// a torn artifact.
func (w *Writer) atomicWrite(name string, data []byte) error {
	path := w.Path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
