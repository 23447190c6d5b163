// Package documents fetches a filing's primary document and reduces it to a
// bounded plain-text excerpt for scoring. Item codes and transaction codes
// live in the document body, not the feed entry.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"EdgarScanner/internal/infrastructure/httpx"
	"EdgarScanner/internal/ports"
)

// excerptLimit bounds how much document text feeds the scorer.
const excerptLimit = 5000

// Fetcher follows a filing index page to its first document and extracts
// text.
type Fetcher struct {
	client *httpx.Client
	logger *slog.Logger
}

var _ ports.DocumentFetcher = (*Fetcher)(nil)

// New wires the shared HTTP client.
func New(client *httpx.Client, logger *slog.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

// Excerpt fetches the index page, locates the first .htm/.html/.txt document
// in the format-files table, fetches it and returns stripped text. When no
// document link is found the index page's own text is used.
func (f *Fetcher) Excerpt(ctx context.Context, indexURL string) (string, error) {
	if indexURL == "" {
		return "", nil
	}

	body, err := f.client.Get(ctx, indexURL)
	if err != nil {
		return "", fmt.Errorf("fetch filing index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse filing index: %w", err)
	}

	docURL := firstDocumentLink(doc, indexURL)
	if docURL == "" {
		return clip(doc.Text()), nil
	}

	payload, err := f.client.Get(ctx, docURL)
	if err != nil {
		f.debug("document fetch failed, falling back to index text", "url", docURL, "error", err)
		return clip(doc.Text()), nil
	}

	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return clip(string(payload)), nil
	}
	return clip(parsed.Text()), nil
}

// firstDocumentLink returns the first document-looking href in the format
// files table, resolved against the index page URL.
func firstDocumentLink(doc *goquery.Document, indexURL string) string {
	base, err := url.Parse(indexURL)
	if err != nil {
		return ""
	}
	link := ""
	doc.Find("table.tableFile a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)
		if strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html") ||
			strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".xml") {
			ref, err := url.Parse(href)
			if err != nil {
				return true
			}
			link = base.ResolveReference(ref).String()
			return false
		}
		return true
	})
	return link
}

func clip(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > excerptLimit {
		return text[:excerptLimit]
	}
	return text
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
