package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"activity-reports/internal/store"
	"activity-reports/internal/taxonomy"
)

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, maxRetries int) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type fakeRecords struct {
	records []store.ActivityRecord
	err     error
}

func (r *fakeRecords) ListActivities(start, end time.Time) ([]store.ActivityRecord, error) {
	return r.records, r.err
}

type fakeSettings struct {
	settings *store.Settings
	err      error
}

func (s *fakeSettings) GetSettings() (*store.Settings, error) {
	return s.settings, s.err
}

// memReportStore backs a Cache with a plain map.
type memReportStore struct {
	entries map[string][]byte
}

func newMemReportStore() *memReportStore {
	return &memReportStore{entries: make(map[string][]byte)}
}

func (m *memReportStore) key(kind string, start time.Time) string {
	return kind + "_" + start.Format("2006-01-02")
}

func (m *memReportStore) GetReport(kind string, start time.Time) ([]byte, error) {
	return m.entries[m.key(kind, start)], nil
}

func (m *memReportStore) PutReport(kind string, start time.Time, data []byte) error {
	m.entries[m.key(kind, start)] = data
	return nil
}

func newTestSynthesizer(gen *fakeGenerator, records []store.ActivityRecord) (*Synthesizer, *memReportStore) {
	mem := newMemReportStore()
	s := NewSynthesizer(
		&fakeRecords{records: records},
		&fakeSettings{},
		gen,
		NewCache(mem),
		Options{MaxRetries: 0, SampleSize: 10},
	)
	return s, mem
}

func testRecords() []store.ActivityRecord {
	return []store.ActivityRecord{
		{ID: "a", Group: "deep learning", Timestamp: date(2026, time.August, 26).Add(9 * time.Hour), DurationMinutes: 90},
		{ID: "b", Group: "Stock", Timestamp: date(2026, time.August, 26).Add(14 * time.Hour), DurationMinutes: 30},
	}
}

func TestSynthesize_GatewayFailureStillProducesReport(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if rep == nil {
		t.Fatal("Synthesize returned nil")
	}
	if rep.Summary.TotalMinutes != 120 {
		t.Errorf("TotalMinutes = %d, want 120", rep.Summary.TotalMinutes)
	}
	if rep.Narrative == "" {
		t.Error("fallback report has empty narrative")
	}
	if want := "Basic report generated from 2 activities."; rep.Narrative != want {
		t.Errorf("Narrative = %q, want %q", rep.Narrative, want)
	}
	if rep.Insights == nil || rep.Recommendations == nil {
		t.Error("fallback lists must be empty, not nil")
	}
	if len(rep.GroupToCategory) != 2 {
		t.Errorf("GroupToCategory has %d entries, want 2", len(rep.GroupToCategory))
	}
}

func TestSynthesize_UnparseableResponseFallsBack(t *testing.T) {
	gen := &fakeGenerator{response: "Sorry, I cannot help with that."}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if !strings.HasPrefix(rep.Narrative, "Basic report") {
		t.Errorf("expected fallback narrative, got %q", rep.Narrative)
	}
	if rep.Summary.TotalMinutes != 120 {
		t.Errorf("TotalMinutes = %d, want 120", rep.Summary.TotalMinutes)
	}
}

func TestSynthesize_EmptyListFallsBack(t *testing.T) {
	gen := &fakeGenerator{response: "[]"}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if !strings.HasPrefix(rep.Narrative, "Basic report") {
		t.Errorf("expected fallback narrative, got %q", rep.Narrative)
	}
}

func TestSynthesize_FullResponse(t *testing.T) {
	gen := &fakeGenerator{response: `{
		"narrative": "A productive day split between training and trading.",
		"insights": ["Most time went to deep learning."],
		"recommendations": ["Block a fixed slot for trading review."]
	}`}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if rep.Narrative != "A productive day split between training and trading." {
		t.Errorf("Narrative = %q", rep.Narrative)
	}
	if len(rep.Insights) != 1 || len(rep.Recommendations) != 1 {
		t.Errorf("got %d insights, %d recommendations, want 1 each", len(rep.Insights), len(rep.Recommendations))
	}
	// Numbers come from the aggregate regardless of what the generator said.
	if rep.Summary.TotalMinutes != 120 {
		t.Errorf("TotalMinutes = %d, want 120", rep.Summary.TotalMinutes)
	}
	if len(rep.Details) != 2 {
		t.Errorf("got %d detail records, want 2", len(rep.Details))
	}
}

func TestSynthesize_MissingFieldsSynthesized(t *testing.T) {
	gen := &fakeGenerator{response: `{"narrative": "Short day."}`}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if rep.Narrative != "Short day." {
		t.Errorf("Narrative = %q, want generator's value kept", rep.Narrative)
	}
	if rep.Insights == nil || rep.Recommendations == nil {
		t.Error("missing list fields must come back empty, not nil")
	}
	if len(rep.Insights) != 0 {
		t.Errorf("Insights = %v, want empty", rep.Insights)
	}
}

func TestSynthesize_ResolverOverridesGeneratorCategories(t *testing.T) {
	// The generator miscategorizes a known group; the taxonomy wins.
	gen := &fakeGenerator{response: `{
		"narrative": "Day report.",
		"insights": [],
		"recommendations": [],
		"group_to_category": {"deep learning": "Business", "made-up-group": "Coding"}
	}`}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if got := rep.GroupToCategory["deep learning"]; got != "Training" {
		t.Errorf("deep learning mapped to %q, want Training", got)
	}
	// Groups the generator invented are still mapped, through the fallback.
	if got := rep.GroupToCategory["made-up-group"]; got != taxonomy.Fallback {
		t.Errorf("made-up-group mapped to %q, want %q", got, taxonomy.Fallback)
	}
}

func TestSynthesize_CacheHitSkipsGateway(t *testing.T) {
	gen := &fakeGenerator{response: `{"narrative": "Cached.", "insights": [], "recommendations": []}`}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	first := s.Synthesize(context.Background(), key, false)
	second := s.Synthesize(context.Background(), key, false)

	if gen.calls != 1 {
		t.Errorf("gateway called %d times, want 1", gen.calls)
	}
	if second.Narrative != first.Narrative {
		t.Errorf("cached narrative %q differs from original %q", second.Narrative, first.Narrative)
	}
	if second.Period != first.Period {
		t.Errorf("cached period %v differs from original %v", second.Period, first.Period)
	}
}

func TestSynthesize_ForceRefreshRegenerates(t *testing.T) {
	gen := &fakeGenerator{response: `{"narrative": "v1", "insights": [], "recommendations": []}`}
	s, _ := newTestSynthesizer(gen, testRecords())
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	s.Synthesize(context.Background(), key, false)
	gen.response = `{"narrative": "v2", "insights": [], "recommendations": []}`
	rep := s.Synthesize(context.Background(), key, true)

	if gen.calls != 2 {
		t.Errorf("gateway called %d times, want 2", gen.calls)
	}
	if rep.Narrative != "v2" {
		t.Errorf("Narrative = %q, want v2", rep.Narrative)
	}

	// The refreshed report replaces the cache entry.
	cached := s.Synthesize(context.Background(), key, false)
	if cached.Narrative != "v2" {
		t.Errorf("cached narrative after refresh = %q, want v2", cached.Narrative)
	}
}

func TestSynthesize_RecordSourceErrorDegradesToEmpty(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("down")}
	mem := newMemReportStore()
	s := NewSynthesizer(
		&fakeRecords{err: fmt.Errorf("database locked")},
		&fakeSettings{},
		gen,
		NewCache(mem),
		Options{},
	)
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if rep == nil {
		t.Fatal("Synthesize returned nil")
	}
	if rep.Summary.TotalMinutes != 0 {
		t.Errorf("TotalMinutes = %d, want 0", rep.Summary.TotalMinutes)
	}
	if len(rep.Details) != 0 {
		t.Errorf("got %d details, want 0", len(rep.Details))
	}
}

func TestSynthesize_SettingsTaxonomyUsed(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("offline")}
	mem := newMemReportStore()
	s := NewSynthesizer(
		&fakeRecords{records: []store.ActivityRecord{
			{ID: "a", Group: "Gardening", Timestamp: date(2026, time.August, 26).Add(8 * time.Hour), DurationMinutes: 40},
		}},
		&fakeSettings{settings: &store.Settings{
			Taxonomy: taxonomy.Taxonomy{Categories: []taxonomy.Category{
				{Name: "Hobby", Groups: []string{"Gardening"}},
			}},
		}},
		gen,
		NewCache(mem),
		Options{},
	)
	key := NewPeriodKey(Daily, date(2026, time.August, 26))

	rep := s.Synthesize(context.Background(), key, false)

	if got := rep.GroupToCategory["Gardening"]; got != "Hobby" {
		t.Errorf("Gardening mapped to %q, want Hobby", got)
	}
	if rep.Summary.MinutesByCategory["Hobby"] != 40 {
		t.Errorf("Hobby minutes = %d, want 40", rep.Summary.MinutesByCategory["Hobby"])
	}
}
