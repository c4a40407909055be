package report

import (
	"activity-reports/internal/store"
)

// TimeBreakdown is the deterministic numeric core of a report: total minutes
// plus per-group and per-category splits. Both splits always sum to the
// total.
type TimeBreakdown struct {
	TotalMinutes      int            `json:"total_minutes"`
	MinutesByGroup    map[string]int `json:"minutes_by_group"`
	MinutesByCategory map[string]int `json:"minutes_by_category"`
}

// NewTimeBreakdown returns an empty breakdown with initialized maps, so that
// zero-activity days serialize as {} rather than null.
func NewTimeBreakdown() TimeBreakdown {
	return TimeBreakdown{
		MinutesByGroup:    make(map[string]int),
		MinutesByCategory: make(map[string]int),
	}
}

// Report is one finished synthesis result. It is immutable once built;
// regeneration replaces the whole value under the same PeriodKey.
type Report struct {
	Period          PeriodKey                `json:"period"`
	Summary         TimeBreakdown            `json:"summary"`
	DailyBreakdowns map[string]TimeBreakdown `json:"daily_breakdowns"`
	Narrative       string                   `json:"narrative"`
	Insights        []string                 `json:"insights"`
	Recommendations []string                 `json:"recommendations"`
	Details         []store.ActivityRecord   `json:"details"`
	GroupToCategory map[string]string        `json:"group_to_category"`
}

// Renderer turns a finished report into a display artifact. Rendering is a
// downstream concern; the pipeline only guarantees the Report shape.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}
