package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const htmlPage = `<html><body>
<table class="tableFile2" summary="Results">
  <tr><th>Form</th><th>Description</th><th>Filing</th><th>Accepted</th></tr>
  <tr>
    <td>8-K</td>
    <td><a href="/Archives/edgar/data/1234567/000123456726000001-index.htm">Acme Corp</a></td>
    <td>Current report</td>
    <td>2026-08-26
17:30:15</td>
  </tr>
  <tr>
    <td>SC 13D</td>
    <td><a href="/Archives/edgar/data/7654321/000765432126000009-index.htm">Big Holdings</a></td>
    <td>Beneficial ownership</td>
    <td>2026-08-26 17:10</td>
  </tr>
  <tr>
    <td>8-K</td>
    <td>No Link Corp</td>
    <td>Current report</td>
    <td>not a date</td>
  </tr>
</table>
</body></html>`

func TestHTMLSourceFetchPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, htmlPage)
	}))
	defer srv.Close()

	loc, _ := time.LoadLocation("America/New_York")
	source := NewHTMLSource(testClient(), srv.URL, loc, nil)

	entries, err := source.FetchPage(context.Background(), 0, 40)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	// The row with an unparseable timestamp is dropped.
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.Form != "8-K" || first.Company != "Acme Corp" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.CIK != "0001234567" {
		t.Fatalf("cik = %q", first.CIK)
	}
	if first.Link != "https://www.sec.gov/Archives/edgar/data/1234567/000123456726000001-index.htm" {
		t.Fatalf("link = %q", first.Link)
	}
	want := time.Date(2026, 8, 26, 17, 30, 15, 0, loc)
	if !first.FiledAt.Equal(want) {
		t.Fatalf("filedAt = %v, want %v", first.FiledAt, want)
	}

	second := entries[1]
	if second.Form != "SC 13D" {
		t.Fatalf("form = %q, want SC 13D", second.Form)
	}
	if second.FiledAt.Minute() != 10 {
		t.Fatalf("filedAt = %v, want 17:10", second.FiledAt)
	}
}

func TestParseTableTime(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	for _, text := range []string{
		"2026-08-26 17:30:15",
		"2026-08-26\n17:30:15",
		"2026-08-26T17:30:15",
	} {
		ts, err := parseTableTime(text, loc)
		if err != nil {
			t.Fatalf("parseTableTime(%q): %v", text, err)
		}
		if ts.Hour() != 17 || ts.Second() != 15 {
			t.Fatalf("parseTableTime(%q) = %v", text, ts)
		}
	}

	if _, err := parseTableTime("yesterday", loc); err == nil {
		t.Fatal("expected error for junk timestamp")
	}
}
