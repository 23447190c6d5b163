package documents

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"EdgarScanner/internal/infrastructure/httpx"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Options{
		UserAgent:         "test-agent",
		RequestsPerSecond: 1000,
		RetrySleep:        time.Millisecond,
	}, nil)
}

func TestExcerptFollowsFirstDocument(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.htm", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		<table class="tableFile" summary="Document Format Files">
		  <tr><td>1</td><td><a href="/doc/body.htm">body.htm</a></td></tr>
		  <tr><td>2</td><td><a href="/doc/image.jpg">image.jpg</a></td></tr>
		</table>
		</body></html>`)
	})
	mux.HandleFunc("/doc/body.htm", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Item 2.02   Results of Operations</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := New(testClient(), nil)
	got, err := f.Excerpt(context.Background(), srv.URL+"/index.htm")
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if !strings.Contains(got, "Item 2.02 Results of Operations") {
		t.Fatalf("excerpt = %q", got)
	}
}

func TestExcerptFallsBackToIndexText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No format table here, just Item 8.01 text</p></body></html>`)
	}))
	defer srv.Close()

	f := New(testClient(), nil)
	got, err := f.Excerpt(context.Background(), srv.URL+"/index.htm")
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if !strings.Contains(got, "Item 8.01") {
		t.Fatalf("excerpt = %q", got)
	}
}

func TestExcerptClipsLongDocuments(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>", strings.Repeat("word ", 5000), "</body></html>")
	}))
	defer srv.Close()

	f := New(testClient(), nil)
	got, err := f.Excerpt(context.Background(), srv.URL+"/index.htm")
	if err != nil {
		t.Fatalf("Excerpt: %v", err)
	}
	if len(got) > excerptLimit {
		t.Fatalf("excerpt length %d exceeds limit %d", len(got), excerptLimit)
	}
}

func TestExcerptEmptyURL(t *testing.T) {
	t.Parallel()

	f := New(testClient(), nil)
	got, err := f.Excerpt(context.Background(), "")
	if err != nil || got != "" {
		t.Fatalf("Excerpt(\"\") = %q, %v", got, err)
	}
}
