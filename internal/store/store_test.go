package store

import (
	"path/filepath"
	"testing"
	"time"

	"activity-reports/internal/taxonomy"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestActivityRoundtrip(t *testing.T) {
	s := newTestStore(t)

	ts := time.Date(2026, time.August, 26, 9, 30, 0, 0, time.UTC)
	record := &ActivityRecord{
		ID:              "rec-1",
		Group:           "NLP Course",
		Category:        "Training",
		Timestamp:       ts,
		DurationMinutes: 45,
		Description:     "Attention lecture",
	}
	if err := s.SaveActivity(record); err != nil {
		t.Fatalf("SaveActivity failed: %v", err)
	}

	day := time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC)
	records, err := s.ListActivities(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	got := records[0]
	if got.ID != record.ID || got.Group != record.Group || got.DurationMinutes != 45 {
		t.Errorf("got %+v, want %+v", got, *record)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %s, want %s", got.Timestamp, ts)
	}
}

func TestListActivities_RangeIsHalfOpen(t *testing.T) {
	s := newTestStore(t)

	day := time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{
		day.Add(-time.Minute),   // before
		day,                     // inclusive lower bound
		day.Add(23 * time.Hour), // inside
		day.AddDate(0, 0, 1),    // exclusive upper bound
	} {
		rec := &ActivityRecord{
			ID:              string(rune('a' + i)),
			Group:           "ColabsReview",
			Timestamp:       ts,
			DurationMinutes: 10,
		}
		if err := s.SaveActivity(rec); err != nil {
			t.Fatalf("SaveActivity failed: %v", err)
		}
	}

	records, err := s.ListActivities(day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListActivities failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "b" || records[1].ID != "c" {
		t.Errorf("got order %s, %s; want b, c", records[0].ID, records[1].ID)
	}
}

func TestDeleteActivity(t *testing.T) {
	s := newTestStore(t)

	rec := &ActivityRecord{ID: "gone", Group: "MultiAgent", Timestamp: time.Now(), DurationMinutes: 5}
	if err := s.SaveActivity(rec); err != nil {
		t.Fatalf("SaveActivity failed: %v", err)
	}
	if err := s.DeleteActivity("gone"); err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}
	if err := s.DeleteActivity("gone"); err == nil {
		t.Error("deleting a missing record did not fail")
	}

	n, err := s.CountActivities()
	if err != nil {
		t.Fatalf("CountActivities failed: %v", err)
	}
	if n != 0 {
		t.Errorf("CountActivities = %d, want 0", n)
	}
}

func TestSettings_EmptyThenSeedThenUpdate(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != nil {
		t.Fatalf("GetSettings on empty store = %+v, want nil", settings)
	}

	seeded, err := s.EnsureSettings("http://localhost:1234/v1", "gpt-4o-mini", taxonomy.Default())
	if err != nil {
		t.Fatalf("EnsureSettings failed: %v", err)
	}
	if seeded.GenerationModel != "gpt-4o-mini" {
		t.Errorf("seeded model = %q", seeded.GenerationModel)
	}

	seeded.GenerationModel = "qwen2.5-32b"
	if err := s.SaveSettings(seeded); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	// A second EnsureSettings must return the stored row, not reseed.
	again, err := s.EnsureSettings("http://other/v1", "default-model", taxonomy.Taxonomy{})
	if err != nil {
		t.Fatalf("EnsureSettings failed: %v", err)
	}
	if again.GenerationModel != "qwen2.5-32b" {
		t.Errorf("model after reseed attempt = %q, want qwen2.5-32b", again.GenerationModel)
	}
	if len(again.Taxonomy.Categories) != len(taxonomy.Default().Categories) {
		t.Errorf("taxonomy has %d categories, want %d", len(again.Taxonomy.Categories), len(taxonomy.Default().Categories))
	}
}

func TestReportCache(t *testing.T) {
	s := newTestStore(t)

	start := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)

	data, err := s.GetReport("weekly", start)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if data != nil {
		t.Fatalf("GetReport on empty cache = %q, want nil", data)
	}

	if err := s.PutReport("weekly", start, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("PutReport failed: %v", err)
	}

	has, err := s.HasReport("weekly", start)
	if err != nil {
		t.Fatalf("HasReport failed: %v", err)
	}
	if !has {
		t.Error("HasReport = false after PutReport")
	}

	// Same day in a different location still hits the entry.
	data, err = s.GetReport("weekly", start.In(time.FixedZone("X", 3600)))
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if string(data) != `{"v":1}` {
		t.Errorf("GetReport = %q, want {\"v\":1}", data)
	}

	// Upsert replaces, never duplicates.
	if err := s.PutReport("weekly", start, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("PutReport failed: %v", err)
	}
	data, _ = s.GetReport("weekly", start)
	if string(data) != `{"v":2}` {
		t.Errorf("GetReport after upsert = %q, want {\"v\":2}", data)
	}

	// Entries of another kind on the same start are distinct.
	has, _ = s.HasReport("daily", start)
	if has {
		t.Error("HasReport found an entry under the wrong kind")
	}
}

func TestListReportKeys(t *testing.T) {
	s := newTestStore(t)

	for _, d := range []int{24, 17, 31} {
		start := time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC)
		if err := s.PutReport("weekly", start, []byte(`{}`)); err != nil {
			t.Fatalf("PutReport failed: %v", err)
		}
	}
	if err := s.PutReport("daily", time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC), []byte(`{}`)); err != nil {
		t.Fatalf("PutReport failed: %v", err)
	}

	starts, err := s.ListReportKeys("weekly")
	if err != nil {
		t.Fatalf("ListReportKeys failed: %v", err)
	}
	if len(starts) != 3 {
		t.Fatalf("got %d keys, want 3", len(starts))
	}
	want := []int{31, 24, 17}
	for i, start := range starts {
		if start.Day() != want[i] {
			t.Errorf("key %d starts on day %d, want %d", i, start.Day(), want[i])
		}
	}
}
