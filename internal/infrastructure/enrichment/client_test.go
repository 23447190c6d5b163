package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"EdgarScanner/internal/infrastructure/httpx"
)

const tickersPayload = `{
  "0": {"cik_str": 1234567, "ticker": "ACME", "title": "Acme Corp"},
  "1": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}
}`

const submissionsPayload = `{
  "cik": "1234567",
  "name": "ACME CORP",
  "tickers": ["ACME"],
  "sic": "3711",
  "sicDescription": "Motor Vehicles"
}`

func testClient() *httpx.Client {
	return httpx.New(httpx.Options{
		UserAgent:         "test-agent",
		RequestsPerSecond: 1000,
		RetrySleep:        time.Millisecond,
	}, nil)
}

func TestEnrichMergesTickerMapAndSubmissions(t *testing.T) {
	t.Parallel()

	var submissionCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "tickers"):
			fmt.Fprint(w, tickersPayload)
		default:
			submissionCalls.Add(1)
			fmt.Fprint(w, submissionsPayload)
		}
	}))
	defer srv.Close()

	c := New(testClient(), srv.URL+"/submissions/CIK%s.json", srv.URL+"/tickers.json", nil)

	rec := c.Enrich(context.Background(), "0001234567")
	if rec.Ticker != "ACME" {
		t.Fatalf("ticker = %q", rec.Ticker)
	}
	if rec.CompanyName != "Acme Corp" {
		t.Fatalf("company = %q", rec.CompanyName)
	}
	if rec.SIC != 3711 || rec.SICDescription != "Motor Vehicles" {
		t.Fatalf("sic = %d %q", rec.SIC, rec.SICDescription)
	}

	// Second lookup for the same CIK is served from the cache.
	c.Enrich(context.Background(), "0001234567")
	if submissionCalls.Load() != 1 {
		t.Fatalf("submissions calls = %d, want 1", submissionCalls.Load())
	}
}

func TestEnrichDegradesWhenLookupsFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(testClient(), srv.URL+"/submissions/CIK%s.json", srv.URL+"/tickers.json", nil)

	rec := c.Enrich(context.Background(), "0001234567")
	if rec.Ticker != "" || rec.SIC != 0 || rec.CompanyName != "" {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestEnrichEmptyCIK(t *testing.T) {
	t.Parallel()

	c := New(testClient(), "", "", nil)
	if rec := c.Enrich(context.Background(), ""); rec.Ticker != "" || rec.SIC != 0 {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}
