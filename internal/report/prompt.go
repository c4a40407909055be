package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"activity-reports/internal/store"
	"activity-reports/internal/taxonomy"
)

// buildPrompt assembles the generation prompt: the aggregated totals, the
// full taxonomy (spelled out to bias the generator toward the canonical
// structure), and a bounded most-recent-first sample of the raw records.
func buildPrompt(key PeriodKey, summary TimeBreakdown, tax taxonomy.Taxonomy, records []store.ActivityRecord, sampleSize int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %s activity report for %s to %s.\n\n",
		key.Kind, key.Start.Format("2006-01-02"), key.End().Format("2006-01-02"))

	b.WriteString("Respond with a single JSON object with these fields:\n")
	b.WriteString(`{"narrative": "<2-3 paragraph summary of the period>", ` +
		`"insights": ["<observation>", ...], ` +
		`"recommendations": ["<suggestion>", ...]}` + "\n\n")

	fmt.Fprintf(&b, "Total time logged: %d minutes.\n\n", summary.TotalMinutes)

	b.WriteString("Time by group (minutes):\n")
	for _, g := range sortedKeys(summary.MinutesByGroup) {
		fmt.Fprintf(&b, "- %s: %d\n", g, summary.MinutesByGroup[g])
	}

	b.WriteString("\nTime by category (minutes):\n")
	for _, c := range sortedKeys(summary.MinutesByCategory) {
		fmt.Fprintf(&b, "- %s: %d\n", c, summary.MinutesByCategory[c])
	}

	b.WriteString("\nCategory taxonomy (groups belong to these categories):\n")
	if taxJSON, err := json.Marshal(tax); err == nil {
		b.Write(taxJSON)
		b.WriteByte('\n')
	}

	sample := sampleRecords(records, sampleSize)
	if len(sample) > 0 {
		fmt.Fprintf(&b, "\nSample of raw activity records (%d of %d, most recent first):\n", len(sample), len(records))
		for _, rec := range sample {
			fmt.Fprintf(&b, "- [%s] %s (%d min): %s\n",
				rec.Timestamp.Format("2006-01-02 15:04"), rec.Group, rec.DurationMinutes, rec.Description)
		}
	}

	return b.String()
}

// sampleRecords returns up to n records, most recent first. The cap bounds
// prompt size for long periods.
func sampleRecords(records []store.ActivityRecord, n int) []store.ActivityRecord {
	if n <= 0 {
		return nil
	}

	sorted := make([]store.ActivityRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
