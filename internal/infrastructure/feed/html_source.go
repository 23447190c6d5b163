package feed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/forms"
	"EdgarScanner/internal/infrastructure/httpx"
	"EdgarScanner/internal/ports"
)

const secOrigin = "https://www.sec.gov"

// HTMLSource reads the getcurrent feed in its plain HTML table form. Used as
// a fallback when the Atom variant misbehaves; both yield the same entries.
type HTMLSource struct {
	client  *httpx.Client
	baseURL string
	loc     *time.Location
	logger  *slog.Logger
}

var _ ports.FeedSource = (*HTMLSource)(nil)

// NewHTMLSource wires the shared HTTP client.
func NewHTMLSource(client *httpx.Client, baseURL string, loc *time.Location, logger *slog.Logger) *HTMLSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if loc == nil {
		loc = time.UTC
	}
	return &HTMLSource{client: client, baseURL: baseURL, loc: loc, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *HTMLSource) Name() string {
	return "html"
}

// FetchPage retrieves one HTML page and walks the filings table. Rows that
// do not parse are skipped.
func (s *HTMLSource) FetchPage(ctx context.Context, offset, count int) ([]domain.FilingEntry, error) {
	u, err := pageURL(s.baseURL, offset, count, false)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch html page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html page: %w", err)
	}

	var entries []domain.FilingEntry
	doc.Find("table.tableFile2 tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		formText := strings.TrimSpace(cells.Eq(0).Text())
		form := forms.Normalize(formText)
		company := strings.TrimSpace(cells.Eq(1).Text())
		filedText := strings.TrimSpace(cells.Eq(3).Text())

		link := ""
		if href, ok := cells.Eq(1).Find("a[href]").First().Attr("href"); ok {
			link = absoluteLink(href)
		}

		filedAt, err := parseTableTime(filedText, s.loc)
		if err != nil {
			s.debug("dropped html row", "filed", filedText, "error", err)
			return
		}

		entries = append(entries, domain.FilingEntry{
			Title:   fmt.Sprintf("%s - %s", formText, company),
			Form:    form,
			Company: company,
			CIK:     ExtractCIK(link),
			FiledAt: filedAt,
			Link:    link,
		})
	})
	return entries, nil
}

// parseTableTime handles the naive local timestamps the HTML table reports
// ("2026-08-27 17:30:15" or without seconds), interpreting them in the
// scanner's reference zone.
func parseTableTime(text string, loc *time.Location) (time.Time, error) {
	normalized := strings.Join(strings.Fields(strings.ReplaceAll(text, "T", " ")), " ")
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized feed timestamp %q", text)
}

func absoluteLink(href string) string {
	if strings.HasPrefix(href, "/") {
		return secOrigin + href
	}
	return href
}

func (s *HTMLSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
