package report

import (
	"activity-reports/internal/logger"
	"activity-reports/internal/store"
)

// Aggregate sums record durations into group, category and per-day buckets
// for the given period. It is pure given the resolve function: the same
// records and resolver snapshot always produce the same breakdowns.
//
// Every calendar day of the period appears in the day map, zero-initialized
// when nothing was logged. Records timestamped outside the period are
// counted as anomalies and skipped; they never fail the aggregation.
func Aggregate(records []store.ActivityRecord, key PeriodKey, resolve func(string) string) (TimeBreakdown, map[string]TimeBreakdown) {
	summary := NewTimeBreakdown()

	days := make(map[string]TimeBreakdown)
	for _, d := range key.Days() {
		days[DateKey(d)] = NewTimeBreakdown()
	}

	lower, upper := key.Bounds()
	anomalies := 0
	for _, rec := range records {
		// Compare in the period's location so a record logged near midnight
		// lands on the same day the period math uses.
		ts := rec.Timestamp.In(key.Start.Location())
		if ts.Before(lower) || !ts.Before(upper) {
			anomalies++
			logger.GetLogger().Warnf("Record %s dated %s falls outside period %s, skipping",
				rec.ID, ts.Format("2006-01-02"), key)
			continue
		}

		category := resolve(rec.Group)

		summary.TotalMinutes += rec.DurationMinutes
		summary.MinutesByGroup[rec.Group] += rec.DurationMinutes
		summary.MinutesByCategory[category] += rec.DurationMinutes

		dayKey := DateKey(ts)
		day := days[dayKey]
		day.TotalMinutes += rec.DurationMinutes
		day.MinutesByGroup[rec.Group] += rec.DurationMinutes
		day.MinutesByCategory[category] += rec.DurationMinutes
		days[dayKey] = day
	}

	if anomalies > 0 {
		logger.GetLogger().Warnf("Excluded %d out-of-period records from %s aggregation", anomalies, key)
	}

	return summary, days
}
