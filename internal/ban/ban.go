// Package ban rejects filings from disallowed industries. A record is banned
// when any rule matches; rules are evaluated SIC code, then SIC description,
// then keyword, so debug counters attribute a ban to the first matching rule.
package ban

import (
	"strconv"
	"strings"
)

// Reasons attributed to a ban, in evaluation order.
const (
	ReasonSIC         = "sic"
	ReasonDescription = "sic_description"
	ReasonKeyword     = "keyword"
)

// Config lists the deny rules. SICPrefixes are decimal string prefixes
// ("60" bans 6000-6099 and 60xx), SICExact are whole codes.
type Config struct {
	SICPrefixes     []string
	SICExact        []int
	SICDescriptions []string
	Keywords        []string
}

// Filter is the compiled predicate.
type Filter struct {
	prefixes     []string
	exact        map[int]struct{}
	descriptions []string
	keywords     []string
}

// New compiles the deny lists; description and keyword matching is
// case-insensitive substring matching.
func New(cfg Config) *Filter {
	f := &Filter{
		prefixes: cfg.SICPrefixes,
		exact:    make(map[int]struct{}, len(cfg.SICExact)),
	}
	for _, code := range cfg.SICExact {
		f.exact[code] = struct{}{}
	}
	for _, d := range cfg.SICDescriptions {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			f.descriptions = append(f.descriptions, d)
		}
	}
	for _, k := range cfg.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			f.keywords = append(f.keywords, k)
		}
	}
	return f
}

// Banned evaluates the filing. sic of 0 means unknown and skips the numeric
// rules. blob is the concatenated free text (company, title, summary).
// Returns the matched rule's reason, or "" when the record passes.
func (f *Filter) Banned(sic int, sicDescription, blob string) (bool, string) {
	if sic != 0 {
		if _, ok := f.exact[sic]; ok {
			return true, ReasonSIC
		}
		s := strconv.Itoa(sic)
		for _, p := range f.prefixes {
			if p != "" && strings.HasPrefix(s, p) {
				return true, ReasonSIC
			}
		}
	}

	if desc := strings.ToLower(sicDescription); desc != "" {
		for _, d := range f.descriptions {
			if strings.Contains(desc, d) {
				return true, ReasonDescription
			}
		}
	}

	lower := strings.ToLower(blob)
	for _, k := range f.keywords {
		if strings.Contains(lower, k) {
			return true, ReasonKeyword
		}
	}

	return false, ""
}
