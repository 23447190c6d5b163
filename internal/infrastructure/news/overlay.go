// Package news builds the optional press-coverage overlay: for the
// top-scoring tickers of a run it pulls recent headlines from the Yahoo
// Finance RSS feed and probes newswire search pages, then classifies the
// collected coverage tone.
package news

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"EdgarScanner/internal/infrastructure/httpx"
)

// Sentiment labels for a ticker's collected coverage.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
	SentimentNeutral  = "neutral"
)

// Candidate is a scored ticker the overlay may cover.
type Candidate struct {
	Ticker  string
	Company string
	Score   int
}

// Item is a single collected headline.
type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published,omitempty"`
}

// TickerNews is the per-ticker overlay section.
type TickerNews struct {
	Ticker    string   `json:"ticker"`
	Company   string   `json:"company,omitempty"`
	BestScore int      `json:"best_score"`
	Sentiment string   `json:"sentiment"`
	Portals   []string `json:"portals,omitempty"`
	Items     []Item   `json:"items"`
}

// Overlay is the serialized sec_news_overlay.json payload.
type Overlay struct {
	GeneratedAt string       `json:"generated_at"`
	Lookback    string       `json:"lookback"`
	Tickers     []TickerNews `json:"tickers"`
}

// Config tunes the collector.
type Config struct {
	TopN             int
	Lookback         time.Duration
	MaxHitsPerTicker int
	YahooRSSURL      string
	SearchEndpoints  map[string]string
	PositiveKeywords []string
	NegativeKeywords []string
}

// Collector gathers coverage per ticker. Every lookup degrades on failure;
// the overlay is best effort and never aborts the run.
type Collector struct {
	client *httpx.Client
	parser *gofeed.Parser
	cfg    Config
	logger *slog.Logger
}

// New builds a collector with lowercased sentiment keyword lists.
func New(client *httpx.Client, cfg Config, logger *slog.Logger) *Collector {
	if cfg.TopN < 1 {
		cfg.TopN = 50
	}
	if cfg.MaxHitsPerTicker < 1 {
		cfg.MaxHitsPerTicker = 10
	}
	cfg.PositiveKeywords = lowerAll(cfg.PositiveKeywords)
	cfg.NegativeKeywords = lowerAll(cfg.NegativeKeywords)
	return &Collector{
		client: client,
		parser: gofeed.NewParser(),
		cfg:    cfg,
		logger: logger,
	}
}

// Collect covers the highest-scoring distinct tickers, up to TopN. Candidates
// without a ticker are skipped; duplicate tickers keep their best score.
func (c *Collector) Collect(ctx context.Context, now time.Time, candidates []Candidate) Overlay {
	best := map[string]Candidate{}
	for _, cand := range candidates {
		if cand.Ticker == "" {
			continue
		}
		if prev, ok := best[cand.Ticker]; !ok || cand.Score > prev.Score {
			best[cand.Ticker] = cand
		}
	}

	ranked := make([]Candidate, 0, len(best))
	for _, cand := range best {
		ranked = append(ranked, cand)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})
	if len(ranked) > c.cfg.TopN {
		ranked = ranked[:c.cfg.TopN]
	}

	cutoff := now.Add(-c.cfg.Lookback)
	overlay := Overlay{
		GeneratedAt: now.Format(time.RFC3339),
		Lookback:    c.cfg.Lookback.String(),
		Tickers:     []TickerNews{},
	}

	for _, cand := range ranked {
		if err := ctx.Err(); err != nil {
			c.warn("overlay interrupted", "error", err)
			break
		}
		section := c.cover(ctx, cand, cutoff)
		overlay.Tickers = append(overlay.Tickers, section)
	}
	return overlay
}

func (c *Collector) cover(ctx context.Context, cand Candidate, cutoff time.Time) TickerNews {
	section := TickerNews{
		Ticker:    cand.Ticker,
		Company:   cand.Company,
		BestScore: cand.Score,
		Items:     []Item{},
	}
	dedup := map[string]struct{}{}

	for _, item := range c.yahooItems(ctx, cand.Ticker, cutoff) {
		if _, ok := dedup[item.Link]; ok {
			continue
		}
		dedup[item.Link] = struct{}{}
		section.Items = append(section.Items, item)
		if len(section.Items) >= c.cfg.MaxHitsPerTicker {
			break
		}
	}

	// Portal probes are hints only: they report which newswires have fresh
	// coverage pages but contribute at most a couple of links each.
	portals := make([]string, 0, len(c.cfg.SearchEndpoints))
	for name := range c.cfg.SearchEndpoints {
		portals = append(portals, name)
	}
	sort.Strings(portals)

	for _, name := range portals {
		if len(section.Items) >= c.cfg.MaxHitsPerTicker {
			break
		}
		items, hit := c.portalItems(ctx, name, c.cfg.SearchEndpoints[name], cand)
		if hit {
			section.Portals = append(section.Portals, name)
		}
		for _, item := range items {
			if _, ok := dedup[item.Link]; ok {
				continue
			}
			dedup[item.Link] = struct{}{}
			section.Items = append(section.Items, item)
			if len(section.Items) >= c.cfg.MaxHitsPerTicker {
				break
			}
		}
	}

	section.Sentiment = c.classify(section.Items)
	return section
}

// yahooItems pulls the per-symbol RSS feed and keeps entries published after
// the cutoff. Entries without a parsed timestamp are kept; the feed only
// serves recent headlines anyway.
func (c *Collector) yahooItems(ctx context.Context, ticker string, cutoff time.Time) []Item {
	if c.cfg.YahooRSSURL == "" {
		return nil
	}
	feedURL := fmt.Sprintf(c.cfg.YahooRSSURL, url.QueryEscape(ticker))
	body, err := c.client.Get(ctx, feedURL)
	if err != nil {
		c.warn("yahoo feed fetch failed", "ticker", ticker, "error", err)
		return nil
	}
	feed, err := c.parser.ParseString(string(body))
	if err != nil {
		c.warn("yahoo feed parse failed", "ticker", ticker, "error", err)
		return nil
	}

	items := make([]Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		published := ""
		if fi.PublishedParsed != nil {
			if fi.PublishedParsed.Before(cutoff) {
				continue
			}
			published = fi.PublishedParsed.Format(time.RFC3339)
		}
		items = append(items, Item{
			Title:     strings.TrimSpace(fi.Title),
			Link:      fi.Link,
			Source:    "yahoo",
			Published: published,
		})
	}
	return items
}

// portalItems fetches a newswire search page for the ticker and scrapes
// headline anchors mentioning the ticker or company name. The boolean reports
// whether the portal returned any matching coverage at all.
func (c *Collector) portalItems(ctx context.Context, name, endpoint string, cand Candidate) ([]Item, bool) {
	body, err := c.client.Get(ctx, endpoint+url.QueryEscape(cand.Ticker))
	if err != nil {
		c.debug("portal probe failed", "portal", name, "ticker", cand.Ticker, "error", err)
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, false
	}

	needleTicker := strings.ToLower(cand.Ticker)
	needleCompany := strings.ToLower(cand.Company)

	var items []Item
	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		title := strings.TrimSpace(a.Text())
		if len(title) < 20 {
			return true
		}
		lower := strings.ToLower(title)
		if !strings.Contains(lower, needleTicker) &&
			(needleCompany == "" || !strings.Contains(lower, needleCompany)) {
			return true
		}
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "/") {
			if base, err := url.Parse(endpoint); err == nil {
				href = base.Scheme + "://" + base.Host + href
			}
		}
		items = append(items, Item{Title: title, Link: href, Source: name})
		return len(items) < 2
	})
	return items, len(items) > 0
}

// classify labels the collected headlines by keyword tone. Both tones present
// means mixed; neither means neutral.
func (c *Collector) classify(items []Item) string {
	positive, negative := false, false
	for _, item := range items {
		lower := strings.ToLower(item.Title)
		for _, kw := range c.cfg.PositiveKeywords {
			if strings.Contains(lower, kw) {
				positive = true
				break
			}
		}
		for _, kw := range c.cfg.NegativeKeywords {
			if strings.Contains(lower, kw) {
				negative = true
				break
			}
		}
	}
	switch {
	case positive && negative:
		return SentimentMixed
	case positive:
		return SentimentPositive
	case negative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Collector) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Collector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
