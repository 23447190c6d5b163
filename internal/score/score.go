// Package score assigns the heuristic relevance score to a filing. The score
// is a pure function of form, extracted codes and text: identical input and
// configuration always yield the identical score.
package score

import (
	"regexp"
	"sort"
	"strings"

	"EdgarScanner/internal/forms"
)

var (
	itemCodeExpr  = regexp.MustCompile(`(?i)Item\s+([1-9]\.\d{2})`)
	form4CodeExpr = regexp.MustCompile(`(?i)Transaction\s+Code\s*[:\-]?\s*([A-Z])`)
)

// Config carries all scoring weights. Keyword boosts are category-capped: the
// positive bonus and the negative penalty apply at most once each regardless
// of how many keywords from the category occur in the text.
type Config struct {
	FormWeights      map[string]int
	ItemBoosts8K     map[string]int
	Form4CodeBoosts  map[string]int
	PositiveKeywords []string
	NegativeKeywords []string
	PositiveBoost    int
	NegativePenalty  int
}

// Scorer evaluates filings against a fixed configuration.
type Scorer struct {
	cfg Config
}

// New builds a scorer; keyword lists are lowercased once up front.
func New(cfg Config) *Scorer {
	cfg.PositiveKeywords = lowerAll(cfg.PositiveKeywords)
	cfg.NegativeKeywords = lowerAll(cfg.NegativeKeywords)
	return &Scorer{cfg: cfg}
}

// ExtractItemCodes pulls 8-K item codes ("2.02", "3.01", ...) out of document
// text, deduplicated and sorted.
func ExtractItemCodes(text string) []string {
	return uniqueMatches(itemCodeExpr, text, strings.ToUpper)
}

// ExtractForm4Codes pulls Form 4 transaction codes out of document text.
func ExtractForm4Codes(text string) []string {
	return uniqueMatches(form4CodeExpr, text, strings.ToUpper)
}

// Score computes the relevance score for a filing. text is the concatenated
// free text (title, summary, document excerpt). Never negative.
func (s *Scorer) Score(form string, itemCodes, form4Codes []string, text string) int {
	total := s.baseWeight(form)

	if strings.HasPrefix(form, "8-K") {
		for _, code := range itemCodes {
			total += s.cfg.ItemBoosts8K[code]
		}
	}
	if form == "Form 4" || form == "4/A" {
		for _, code := range form4Codes {
			total += s.cfg.Form4CodeBoosts[code]
		}
	}

	lower := strings.ToLower(text)
	if containsAny(lower, s.cfg.PositiveKeywords) {
		total += s.cfg.PositiveBoost
	}
	if containsAny(lower, s.cfg.NegativeKeywords) {
		total -= s.cfg.NegativePenalty
	}

	if total < 0 {
		return 0
	}
	return total
}

// baseWeight looks up the form weight, falling back to the unamended form so
// "10-K/A" inherits the "10-K" weight unless configured separately.
func (s *Scorer) baseWeight(form string) int {
	if w, ok := s.cfg.FormWeights[form]; ok {
		return w
	}
	if forms.IsAmendment(form) {
		return s.cfg.FormWeights[strings.TrimSuffix(form, "/A")]
	}
	return 0
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func uniqueMatches(expr *regexp.Regexp, text string, transform func(string) string) []string {
	seen := map[string]struct{}{}
	for _, m := range expr.FindAllStringSubmatch(text, -1) {
		seen[transform(m[1])] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
