package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"EdgarScanner/internal/ban"
	"EdgarScanner/internal/score"
)

const (
	defaultTimezone = "America/New_York"

	configPathEnv    = "EDGAR_SCANNER_CONFIG"
	userAgentEnv     = "SEC_USER_AGENT"
	webhookURLEnv    = "WEBHOOK_URL"
	webhookSecretEnv = "WEBHOOK_SECRET"
	outputDirEnv     = "EDGAR_SCANNER_OUT"
	ciEnv            = "CI"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Window  WindowConfig  `yaml:"window"`
	HTTP    HTTPConfig    `yaml:"http"`
	Scan    ScanConfig    `yaml:"scan"`
	Ban     BanConfig     `yaml:"ban"`
	Scoring ScoringConfig `yaml:"scoring"`
	Output  OutputConfig  `yaml:"output"`
	News    NewsConfig    `yaml:"news"`
	Webhook WebhookConfig `yaml:"webhook"`
	Runner  RunnerConfig  `yaml:"runner"`
}

// LoggingConfig controls slog construction.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WindowConfig defines the cutoff-to-cutoff filing window.
type WindowConfig struct {
	Timezone     string         `yaml:"timezone"`
	CutoffHour   int            `yaml:"cutoffHour"`
	CutoffMinute int            `yaml:"cutoffMinute"`
	BusinessDays bool           `yaml:"businessDays"`
	WeekendTail  bool           `yaml:"weekendTail"`
	location     *time.Location `yaml:"-"`
}

// Location resolves the configured timezone string to a time.Location.
func (w WindowConfig) Location() *time.Location {
	if w.location != nil {
		return w.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// HTTPConfig covers every outbound request: identification header, timeout,
// retry policy and courteous pacing.
type HTTPConfig struct {
	UserAgent         string  `yaml:"userAgent"`
	TimeoutSeconds    int     `yaml:"timeoutSeconds"`
	RetryCount        int     `yaml:"retryCount"`
	RetrySleepSeconds float64 `yaml:"retrySleepSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// ScanConfig parameterizes the boundary-seeking paginator.
type ScanConfig struct {
	Source           string   `yaml:"source"`
	MaxPages         int      `yaml:"maxPages"`
	CountPerPage     int      `yaml:"countPerPage"`
	PagePauseSeconds float64  `yaml:"pagePauseSeconds"`
	MaxEmptyPages    int      `yaml:"maxEmptyPages"`
	SeekMode         bool     `yaml:"seekMode"`
	PageBudget       int      `yaml:"pageBudget"`
	ScanExtendDays   int      `yaml:"scanExtendDays"`
	TrackedForms     []string `yaml:"trackedForms"`
	FetchDocuments   bool     `yaml:"fetchDocuments"`
}

// BanConfig lists the industry and keyword deny rules.
type BanConfig struct {
	SICPrefixes     []string `yaml:"sicPrefixes"`
	SICExact        []int    `yaml:"sicExact"`
	SICDescriptions []string `yaml:"sicDescriptions"`
	Keywords        []string `yaml:"keywords"`
}

// ScoringConfig carries all relevance weights.
type ScoringConfig struct {
	FormWeights      map[string]int `yaml:"formWeights"`
	ItemBoosts8K     map[string]int `yaml:"itemBoosts8k"`
	Form4CodeBoosts  map[string]int `yaml:"form4CodeBoosts"`
	PositiveKeywords []string       `yaml:"positiveKeywords"`
	NegativeKeywords []string       `yaml:"negativeKeywords"`
	PositiveBoost    int            `yaml:"positiveBoost"`
	NegativePenalty  int            `yaml:"negativePenalty"`
}

// OutputConfig names the artifact directory.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// NewsConfig controls the optional press-coverage overlay.
type NewsConfig struct {
	Enabled          bool              `yaml:"enabled"`
	TopN             int               `yaml:"topN"`
	LookbackHours    int               `yaml:"lookbackHours"`
	MaxHitsPerTicker int               `yaml:"maxHitsPerTicker"`
	YahooRSSURL      string            `yaml:"yahooRssUrl"`
	SearchEndpoints  map[string]string `yaml:"searchEndpoints"`
}

// WebhookConfig controls the optional upload of output files.
type WebhookConfig struct {
	URL              string   `yaml:"url"`
	Secret           string   `yaml:"secret"`
	AllowedFilenames []string `yaml:"allowedFilenames"`
}

// RunnerConfig drives the until-boundary supervisor loop.
type RunnerConfig struct {
	MaxAttempts    int   `yaml:"maxAttempts"`
	BackoffSeconds []int `yaml:"backoffSeconds"`
	CIMode         bool  `yaml:"ciMode"`
}

// ScoreConfig converts the YAML weights into the scorer's configuration.
func (s ScoringConfig) ScoreConfig() score.Config {
	return score.Config{
		FormWeights:      s.FormWeights,
		ItemBoosts8K:     s.ItemBoosts8K,
		Form4CodeBoosts:  s.Form4CodeBoosts,
		PositiveKeywords: s.PositiveKeywords,
		NegativeKeywords: s.NegativeKeywords,
		PositiveBoost:    s.PositiveBoost,
		NegativePenalty:  s.NegativePenalty,
	}
}

// BanFilterConfig converts the YAML deny lists into the filter's configuration.
func (b BanConfig) BanFilterConfig() ban.Config {
	return ban.Config{
		SICPrefixes:     b.SICPrefixes,
		SICExact:        b.SICExact,
		SICDescriptions: b.SICDescriptions,
		Keywords:        b.Keywords,
	}
}

// Load reads YAML configuration (if present) on top of defaults and applies
// environment overrides. Missing YAML keys keep their default values.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.clamp()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(userAgentEnv); v != "" {
		c.HTTP.UserAgent = v
	}
	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Webhook.URL = v
	}
	if v := os.Getenv(webhookSecretEnv); v != "" {
		c.Webhook.Secret = v
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(ciEnv); v != "" {
		if ci, err := strconv.ParseBool(v); err == nil {
			c.Runner.CIMode = ci
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Window.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Window.location = loc
}

// clamp keeps operator-supplied values inside the ranges the upstream server
// tolerates; the getcurrent endpoint caps count at 100.
func (c *Config) clamp() {
	if c.Scan.CountPerPage < 1 {
		c.Scan.CountPerPage = 1
	}
	if c.Scan.CountPerPage > 100 {
		c.Scan.CountPerPage = 100
	}
	if c.Scan.MaxPages < 1 {
		c.Scan.MaxPages = 1
	}
	if c.Scan.PageBudget < 1 {
		c.Scan.PageBudget = 1
	}
	if c.HTTP.RetryCount < 0 {
		c.HTTP.RetryCount = 0
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		c.HTTP.RequestsPerSecond = 1
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Window: WindowConfig{
			Timezone:     defaultTimezone,
			CutoffHour:   9,
			CutoffMinute: 30,
			BusinessDays: true,
			WeekendTail:  false,
			location:     tz,
		},
		HTTP: HTTPConfig{
			UserAgent:         "EdgarScanner/1.0 (contact@example.com)",
			TimeoutSeconds:    30,
			RetryCount:        6,
			RetrySleepSeconds: 2.0,
			RequestsPerSecond: 2.0,
		},
		Scan: ScanConfig{
			Source:           "atom",
			MaxPages:         2000,
			CountPerPage:     100,
			PagePauseSeconds: 2.0,
			MaxEmptyPages:    40,
			SeekMode:         true,
			PageBudget:       250,
			ScanExtendDays:   3,
			FetchDocuments:   true,
			TrackedForms: []string{
				"8-K", "8-K/A", "6-K", "6-K/A", "10-Q", "10-Q/A", "10-K", "10-K/A",
				"SC 13D", "SC 13D/A", "SC 13G", "SC 13G/A", "Form 3", "3/A", "Form 4", "4/A",
			},
		},
		Ban: BanConfig{
			// 6000-6999: finance, insurance and real estate.
			SICPrefixes: []string{"60", "61", "62", "63", "64", "65", "66", "67"},
			SICExact:    []int{2111, 7011},
			SICDescriptions: []string{
				"commercial bank", "savings institution", "insurance",
				"real estate investment trust", "blank check",
			},
			Keywords: []string{
				"casino", "gambling", "tobacco", "cigarette", "weapon", "firearm",
				"payday", "bank", "insurance", "adult entertainment",
			},
		},
		Scoring: ScoringConfig{
			FormWeights: map[string]int{
				"8-K": 10, "6-K": 7, "10-Q": 8, "10-K": 6,
				"Form 3": 5, "Form 4": 9, "3/A": 4, "4/A": 8,
				"SC 13D": 9, "SC 13D/A": 8, "SC 13G": 7, "SC 13G/A": 6,
			},
			ItemBoosts8K: map[string]int{
				"1.01": 12, "2.01": 12, "2.02": 10, "8.01": 6,
				"3.01": -12, "3.02": -15, "5.03": -10,
			},
			Form4CodeBoosts: map[string]int{"P": 6, "S": -4, "A": 2},
			PositiveKeywords: []string{
				"raises guidance", "guidance raise", "boosts guidance", "reaffirms guidance",
				"merger", "acquisition", "buyout", "being acquired", "definitive agreement",
				"buyback", "repurchase", "special dividend", "approval", "fda approval",
				"clearance", "contract awarded", "strategic partnership", "partnership",
				"collaboration", "upgrade", "added to index", "secures funding",
				"non-dilutive", "surpasses expectations",
			},
			NegativeKeywords: []string{
				"offering", "registered direct", "at-the-market", "atm offering", "shelf",
				"pipe", "warrant", "convertible", "preferred stock", "rights offering",
				"reverse split", "delisting", "deficiency", "going concern",
				"securities purchase agreement", "unit offering",
			},
			PositiveBoost:   3,
			NegativePenalty: 6,
		},
		Output: OutputConfig{Dir: "outputs"},
		News: NewsConfig{
			Enabled:          false,
			TopN:             50,
			LookbackHours:    36,
			MaxHitsPerTicker: 10,
			YahooRSSURL:      "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US",
			SearchEndpoints: map[string]string{
				"prnewswire":    "https://www.prnewswire.com/search/news/?query=",
				"globenewswire": "https://www.globenewswire.com/Search/NewsSearch?keyword=",
				"benzinga":      "https://www.benzinga.com/search?q=",
			},
		},
		Webhook: WebhookConfig{
			AllowedFilenames: []string{
				"sec_filings_snapshot.json", "sec_filings_snapshot.csv",
				"sec_filings_raw.json", "sec_debug_stats.json", "sec_news_overlay.json",
			},
		},
		Runner: RunnerConfig{
			MaxAttempts:    6,
			BackoffSeconds: []int{0, 30, 60, 120, 180, 300},
		},
	}
}
