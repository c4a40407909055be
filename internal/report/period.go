package report

import (
	"fmt"
	"time"
)

// PeriodKind identifies the granularity of a report period.
type PeriodKind string

const (
	Daily     PeriodKind = "daily"
	Weekly    PeriodKind = "weekly"
	Monthly   PeriodKind = "monthly"
	Quarterly PeriodKind = "quarterly"
	Annual    PeriodKind = "annual"
)

// Kinds lists all period kinds, finest first.
var Kinds = []PeriodKind{Daily, Weekly, Monthly, Quarterly, Annual}

// ParseKind validates a kind string.
func ParseKind(s string) (PeriodKind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown period kind %q", s)
}

// PeriodKey uniquely identifies one report: a kind plus the period's first
// calendar day. The end date is derived, never stored.
type PeriodKey struct {
	Kind  PeriodKind `json:"kind"`
	Start time.Time  `json:"start_date"`
}

// NewPeriodKey builds the key for the period of the given kind containing t.
// The start is normalized to midnight of the period's first day in t's
// location.
func NewPeriodKey(kind PeriodKind, t time.Time) PeriodKey {
	y, m, d := t.Date()
	loc := t.Location()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	var start time.Time
	switch kind {
	case Daily:
		start = day
	case Weekly:
		// Weeks run Monday through Sunday.
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
	case Monthly:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Quarterly:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start = time.Date(y, qm, 1, 0, 0, 0, 0, loc)
	case Annual:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		start = day
	}
	return PeriodKey{Kind: kind, Start: start}
}

// Previous returns the key of the most recent complete period of the given
// kind before now. Triggers fire shortly after a period ends and always
// report on the period just closed.
func Previous(kind PeriodKind, now time.Time) PeriodKey {
	current := NewPeriodKey(kind, now)
	return NewPeriodKey(kind, current.Start.AddDate(0, 0, -1))
}

// End returns the period's last calendar day (midnight).
func (k PeriodKey) End() time.Time {
	switch k.Kind {
	case Daily:
		return k.Start
	case Weekly:
		return k.Start.AddDate(0, 0, 6)
	case Monthly:
		return k.Start.AddDate(0, 1, -1)
	case Quarterly:
		return k.Start.AddDate(0, 3, -1)
	case Annual:
		return k.Start.AddDate(1, 0, -1)
	default:
		return k.Start
	}
}

// Bounds returns the half-open timestamp range [start, end) covering the
// whole period, suitable for record queries.
func (k PeriodKey) Bounds() (time.Time, time.Time) {
	return k.Start, k.End().AddDate(0, 0, 1)
}

// Days returns every calendar day in the period, in order.
func (k PeriodKey) Days() []time.Time {
	var days []time.Time
	end := k.End()
	for d := k.Start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String renders the key in its canonical "kind_YYYY-MM-DD" form.
func (k PeriodKey) String() string {
	return fmt.Sprintf("%s_%s", k.Kind, k.Start.Format("2006-01-02"))
}

// DateKey formats a day the way daily_breakdowns is keyed.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
