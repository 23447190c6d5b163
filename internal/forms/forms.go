// Package forms normalizes SEC form-type strings into a small canonical set.
// Feeds spell the same form many ways ("SC13D", "Schedule 13D", "SC 13 D");
// a single priority-ordered rule table keeps the normalization auditable.
package forms

import (
	"regexp"
	"strings"
)

type rule struct {
	pattern   *regexp.Regexp
	canonical string
}

// Rules are evaluated top to bottom; amendment variants come before their
// base forms so "/A" suffixes are not swallowed.
var rules = []rule{
	{regexp.MustCompile(`\bSC(?:HEDULE)?\s*13\s*D/A\b`), "SC 13D/A"},
	{regexp.MustCompile(`\bSC(?:HEDULE)?\s*13\s*G/A\b`), "SC 13G/A"},
	{regexp.MustCompile(`\bSC(?:HEDULE)?\s*13\s*D\b`), "SC 13D"},
	{regexp.MustCompile(`\bSC(?:HEDULE)?\s*13\s*G\b`), "SC 13G"},
	{regexp.MustCompile(`\b8-K/A\b`), "8-K/A"},
	{regexp.MustCompile(`\b8-K\b`), "8-K"},
	{regexp.MustCompile(`\b6-K/A\b`), "6-K/A"},
	{regexp.MustCompile(`\b6-K\b`), "6-K"},
	{regexp.MustCompile(`\b10-Q/A\b`), "10-Q/A"},
	{regexp.MustCompile(`\b10-Q\b`), "10-Q"},
	{regexp.MustCompile(`\b10-K/A\b`), "10-K/A"},
	{regexp.MustCompile(`\b10-K\b`), "10-K"},
	{regexp.MustCompile(`\bFORM\s*3/A\b|^3/A$`), "3/A"},
	{regexp.MustCompile(`\bFORM\s*4/A\b|^4/A$`), "4/A"},
	{regexp.MustCompile(`\bFORM\s*3\b|^3$`), "Form 3"},
	{regexp.MustCompile(`\bFORM\s*4\b|^4$`), "Form 4"},
}

var spaces = regexp.MustCompile(`\s+`)

// Normalize maps a raw form string to its canonical spelling, or "" when the
// string does not denote a tracked form family. Idempotent.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ToUpper(raw))
	s = spaces.ReplaceAllString(s, " ")
	if s == "" {
		return ""
	}
	for _, r := range rules {
		if r.pattern.MatchString(s) {
			return r.canonical
		}
	}
	return ""
}

// FromText searches free text (a feed title, a category label) for the first
// recognizable form mention.
func FromText(text string) string {
	s := spaces.ReplaceAllString(strings.ToUpper(text), " ")
	best := -1
	canonical := ""
	for _, r := range rules {
		loc := r.pattern.FindStringIndex(s)
		if loc == nil {
			continue
		}
		if best == -1 || loc[0] < best {
			best = loc[0]
			canonical = r.canonical
		}
	}
	return canonical
}

// IsAmendment reports whether the canonical form carries an /A suffix.
func IsAmendment(form string) bool {
	return strings.HasSuffix(form, "/A")
}
