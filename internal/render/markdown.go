// Package render turns finished reports into display artifacts. The
// pipeline itself only guarantees the Report shape; renderers are
// downstream consumers.
package render

import (
	"fmt"
	"sort"
	"strings"

	"activity-reports/internal/report"
)

// Markdown renders a report as a plain markdown document.
type Markdown struct{}

func NewMarkdown() *Markdown {
	return &Markdown{}
}

func (m *Markdown) Render(r *report.Report) ([]byte, error) {
	var b strings.Builder

	title := strings.ToUpper(string(r.Period.Kind)[:1]) + string(r.Period.Kind)[1:]
	fmt.Fprintf(&b, "# %s Activity Report: %s to %s\n\n",
		title, r.Period.Start.Format("2006-01-02"), r.Period.End().Format("2006-01-02"))

	if r.Narrative != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Narrative)
	}

	fmt.Fprintf(&b, "## Summary\n\nTotal time: %d minutes\n\n", r.Summary.TotalMinutes)

	b.WriteString("### Time by category\n\n")
	writeMinuteTable(&b, r.Summary.MinutesByCategory)

	b.WriteString("### Time by group\n\n")
	writeMinuteTable(&b, r.Summary.MinutesByGroup)

	if len(r.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, line := range r.Insights {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteByte('\n')
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, line := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteByte('\n')
	}

	if len(r.DailyBreakdowns) > 0 && r.Period.Kind != report.Daily {
		b.WriteString("## Daily breakdown\n\n")
		b.WriteString("| Date | Minutes |\n|---|---|\n")
		days := make([]string, 0, len(r.DailyBreakdowns))
		for day := range r.DailyBreakdowns {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			fmt.Fprintf(&b, "| %s | %d |\n", day, r.DailyBreakdowns[day].TotalMinutes)
		}
		b.WriteByte('\n')
	}

	return []byte(b.String()), nil
}

func writeMinuteTable(b *strings.Builder, minutes map[string]int) {
	keys := make([]string, 0, len(minutes))
	for k := range minutes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if minutes[keys[i]] != minutes[keys[j]] {
			return minutes[keys[i]] > minutes[keys[j]]
		}
		return keys[i] < keys[j]
	})

	b.WriteString("| Label | Minutes |\n|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %d |\n", k, minutes[k])
	}
	b.WriteByte('\n')
}
