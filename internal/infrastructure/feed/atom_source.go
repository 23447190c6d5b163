package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"EdgarScanner/internal/domain"
	"EdgarScanner/internal/forms"
	"EdgarScanner/internal/infrastructure/httpx"
	"EdgarScanner/internal/ports"
)

// AtomSource reads the getcurrent feed in Atom form. The form type comes
// from the entry's category term, falling back to the title text.
type AtomSource struct {
	client  *httpx.Client
	baseURL string
	loc     *time.Location
	parser  *gofeed.Parser
	logger  *slog.Logger
}

var _ ports.FeedSource = (*AtomSource)(nil)

// NewAtomSource wires the shared HTTP client; baseURL defaults to the public
// getcurrent endpoint.
func NewAtomSource(client *httpx.Client, baseURL string, loc *time.Location, logger *slog.Logger) *AtomSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AtomSource{
		client:  client,
		baseURL: baseURL,
		loc:     loc,
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (s *AtomSource) Name() string {
	return "atom"
}

// FetchPage retrieves and parses one feed page. Entries missing a parseable
// timestamp are dropped and logged; the page itself still succeeds.
func (s *AtomSource) FetchPage(ctx context.Context, offset, count int) ([]domain.FilingEntry, error) {
	u, err := pageURL(s.baseURL, offset, count, true)
	if err != nil {
		return nil, err
	}

	body, err := s.client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch atom page: %w", err)
	}

	parsed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse atom page: %w", err)
	}

	entries := make([]domain.FilingEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry, ok := s.toEntry(item)
		if !ok {
			s.debug("dropped atom item", "title", item.Title)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *AtomSource) toEntry(item *gofeed.Item) (domain.FilingEntry, bool) {
	ts := item.UpdatedParsed
	if ts == nil {
		ts = item.PublishedParsed
	}
	if ts == nil {
		return domain.FilingEntry{}, false
	}

	form := ""
	for _, cat := range item.Categories {
		if form = forms.Normalize(cat); form != "" {
			break
		}
	}
	if form == "" {
		form = forms.FromText(item.Title)
	}

	link := item.Link
	if link == "" && len(item.Links) > 0 {
		link = item.Links[0]
	}

	cik := ExtractCIK(link)
	if cik == "" {
		if m := cikTitleExpr.FindStringSubmatch(item.Title); m != nil {
			cik = m[1]
		}
	}

	return domain.FilingEntry{
		Title:   item.Title,
		Summary: item.Description,
		Form:    form,
		Company: CompanyFromTitle(item.Title),
		CIK:     cik,
		FiledAt: ts.In(s.loc),
		Link:    link,
	}, true
}

func (s *AtomSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
