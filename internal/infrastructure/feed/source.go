// Package feed turns raw EDGAR current-filings pages into normalized
// domain.FilingEntry values. Two source strategies exist for the same
// endpoint: the Atom feed (preferred) and the plain HTML table (fallback);
// a registry resolves the configured one by name.
package feed

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"EdgarScanner/internal/ports"
)

// DefaultBaseURL is the EDGAR current-events endpoint; start/count query
// parameters paginate it.
const DefaultBaseURL = "https://www.sec.gov/cgi-bin/browse-edgar"

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]ports.FeedSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.FeedSource{}}
}

// Register adds or replaces a feed source implementation.
func (r *Registry) Register(source ports.FeedSource) {
	if r.sources == nil {
		r.sources = map[string]ports.FeedSource{}
	}
	r.sources[source.Name()] = source
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.FeedSource, error) {
	if source, ok := r.sources[name]; ok {
		return source, nil
	}
	return nil, fmt.Errorf("feed source %s is not registered", name)
}

var (
	cikQueryExpr = regexp.MustCompile(`(?i)[?&]CIK=(\d{1,10})\b`)
	cikPathExpr  = regexp.MustCompile(`/data/(\d{1,10})/`)
	cikTitleExpr = regexp.MustCompile(`\((\d{10})\)`)
	// Feed titles read "8-K - Acme Corp (0001234567) (Filer)"; the form never
	// has spaces around its hyphen, so the first " - " separates it from the
	// company name.
	companyExpr = regexp.MustCompile(`^\s*.*?\s+-\s+(.*?)\s*\(\d{7,10}\)`)
)

// ExtractCIK pulls the issuer CIK out of a filing link, zero-padded to ten
// digits, or "" when the link carries none.
func ExtractCIK(href string) string {
	if href == "" {
		return ""
	}
	if m := cikQueryExpr.FindStringSubmatch(href); m != nil {
		return padCIK(m[1])
	}
	if m := cikPathExpr.FindStringSubmatch(href); m != nil {
		return padCIK(m[1])
	}
	return ""
}

// CompanyFromTitle recovers an issuer name from a feed title such as
// "8-K - Acme Corp (0001234567) (Filer)". Best effort; used when enrichment
// is unavailable.
func CompanyFromTitle(title string) string {
	if m := companyExpr.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	t := title
	if m := cikTitleExpr.FindStringIndex(t); m != nil {
		t = t[:m[0]]
	}
	if i := strings.Index(t, " - "); i >= 0 {
		t = t[i+3:]
	}
	return strings.Trim(strings.TrimSpace(t), "-– ")
}

func padCIK(raw string) string {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%010d", n)
}

// pageURL appends pagination parameters to the base getcurrent URL.
func pageURL(base string, offset, count int, atom bool) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}
	query := parsed.Query()
	query.Set("action", "getcurrent")
	query.Set("start", strconv.Itoa(offset))
	query.Set("count", strconv.Itoa(count))
	if atom {
		query.Set("output", "atom")
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
