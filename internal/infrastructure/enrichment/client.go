// Package enrichment resolves issuer metadata (ticker, SIC industry code,
// canonical company name) for a CIK via the public submissions API, cached
// per run.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/infrastructure/httpx"
	"EdgarScanner/internal/ports"
)

const (
	// DefaultSubmissionsURL is a format string taking the padded CIK.
	DefaultSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	// DefaultTickersURL maps every registered company to its ticker.
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
)

// Client looks up metadata with a per-run CIK cache and a lazily loaded
// ticker map. Lookup failures degrade to empty records; callers fall back to
// the company name parsed from the filing title.
type Client struct {
	client         *httpx.Client
	submissionsURL string
	tickersURL     string
	cache          map[string]domain.EnrichmentRecord
	tickerMap      map[string]tickerInfo
	tickersLoaded  bool
	logger         *slog.Logger
}

var _ ports.Enricher = (*Client)(nil)

type tickerInfo struct {
	ticker string
	name   string
}

// submissionsResponse is the subset of the submissions payload we read.
type submissionsResponse struct {
	Name           string   `json:"name"`
	Tickers        []string `json:"tickers"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
}

// New builds a client; empty URLs select the public endpoints.
func New(client *httpx.Client, submissionsURL, tickersURL string, logger *slog.Logger) *Client {
	if submissionsURL == "" {
		submissionsURL = DefaultSubmissionsURL
	}
	if tickersURL == "" {
		tickersURL = DefaultTickersURL
	}
	return &Client{
		client:         client,
		submissionsURL: submissionsURL,
		tickersURL:     tickersURL,
		cache:          map[string]domain.EnrichmentRecord{},
		logger:         logger,
	}
}

// Enrich resolves metadata for the zero-padded CIK. Never fails: on lookup
// errors the returned record is simply empty.
func (c *Client) Enrich(ctx context.Context, cik string) domain.EnrichmentRecord {
	if cik == "" {
		return domain.EnrichmentRecord{}
	}
	if rec, ok := c.cache[cik]; ok {
		return rec
	}

	rec := domain.EnrichmentRecord{}
	if info, ok := c.lookupTicker(ctx, cik); ok {
		rec.Ticker = info.ticker
		rec.CompanyName = info.name
	}

	if sub, err := c.fetchSubmissions(ctx, cik); err != nil {
		c.warn("submissions lookup failed", "cik", cik, "error", err)
	} else {
		if rec.Ticker == "" && len(sub.Tickers) > 0 {
			rec.Ticker = sub.Tickers[0]
		}
		if rec.CompanyName == "" {
			rec.CompanyName = sub.Name
		}
		rec.SICDescription = sub.SICDescription
		if sic, err := strconv.Atoi(strings.TrimSpace(sub.SIC)); err == nil {
			rec.SIC = sic
		}
	}

	c.cache[cik] = rec
	return rec
}

func (c *Client) fetchSubmissions(ctx context.Context, cik string) (submissionsResponse, error) {
	body, err := c.client.Get(ctx, fmt.Sprintf(c.submissionsURL, cik))
	if err != nil {
		return submissionsResponse{}, err
	}
	var sub submissionsResponse
	if err := json.Unmarshal(body, &sub); err != nil {
		return submissionsResponse{}, fmt.Errorf("parse submissions: %w", err)
	}
	return sub, nil
}

// lookupTicker consults the company-wide ticker map, fetching it on first
// use. The published payload is an object keyed by arbitrary indices.
func (c *Client) lookupTicker(ctx context.Context, cik string) (tickerInfo, bool) {
	if !c.tickersLoaded {
		c.tickersLoaded = true
		if err := c.loadTickerMap(ctx); err != nil {
			c.warn("ticker map unavailable", "error", err)
		}
	}
	info, ok := c.tickerMap[cik]
	return info, ok
}

func (c *Client) loadTickerMap(ctx context.Context) error {
	body, err := c.client.Get(ctx, c.tickersURL)
	if err != nil {
		return err
	}

	var rows map[string]struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("parse ticker map: %w", err)
	}

	c.tickerMap = make(map[string]tickerInfo, len(rows))
	for _, row := range rows {
		key := fmt.Sprintf("%010d", row.CIK)
		c.tickerMap[key] = tickerInfo{ticker: row.Ticker, name: row.Title}
	}
	c.info("loaded ticker map", "companies", len(c.tickerMap))
	return nil
}

func (c *Client) info(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
