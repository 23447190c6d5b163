// Package window computes the cutoff-to-cutoff time span that bounds which
// filings a run keeps. Pure functions of wall-clock time and timezone rules;
// no network access.
package window

import (
	"fmt"
	"time"

	"EdgarScanner/internal/domain"
)

// Resolver derives run windows from a fixed cutoff time-of-day.
type Resolver struct {
	loc          *time.Location
	cutoffHour   int
	cutoffMinute int
	businessDays bool
	weekendTail  bool
}

// New builds a resolver. businessDays makes the window span one business day
// (Sat/Sun skipped); weekendTail appends a secondary window covering the
// weekend itself so rare Saturday filings are still captured.
func New(loc *time.Location, cutoffHour, cutoffMinute int, businessDays, weekendTail bool) (*Resolver, error) {
	if loc == nil {
		return nil, fmt.Errorf("window: nil location")
	}
	if cutoffHour < 0 || cutoffHour > 23 || cutoffMinute < 0 || cutoffMinute > 59 {
		return nil, fmt.Errorf("window: invalid cutoff %02d:%02d", cutoffHour, cutoffMinute)
	}
	return &Resolver{
		loc:          loc,
		cutoffHour:   cutoffHour,
		cutoffMinute: cutoffMinute,
		businessDays: businessDays,
		weekendTail:  weekendTail,
	}, nil
}

// Resolve returns the primary window ending at the most recent cutoff instant
// not in the future, starting one (business) day earlier, plus an optional
// tail window from the primary end up to now when the run happens on a
// weekend with weekendTail enabled.
func (r *Resolver) Resolve(now time.Time) (domain.TimeWindow, *domain.TimeWindow) {
	local := now.In(r.loc)

	end := r.cutoffOn(local)
	if local.Before(end) {
		end = r.cutoffOn(local.AddDate(0, 0, -1))
	}
	if r.businessDays {
		end = r.backToWeekday(end)
	}

	start := r.cutoffOn(end.AddDate(0, 0, -1))
	if r.businessDays {
		start = r.backToWeekday(start)
	}

	win := domain.TimeWindow{Start: start, End: end}

	if r.weekendTail && isWeekend(local) && local.After(end) {
		tail := domain.TimeWindow{Start: end, End: local}
		return win, &tail
	}
	return win, nil
}

func (r *Resolver) cutoffOn(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), r.cutoffHour, r.cutoffMinute, 0, 0, r.loc)
}

func (r *Resolver) backToWeekday(t time.Time) time.Time {
	for isWeekend(t) {
		t = r.cutoffOn(t.AddDate(0, 0, -1))
	}
	return t
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
