package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"activity-reports/internal/llm"
	"activity-reports/internal/logger"
	"activity-reports/internal/store"
	"activity-reports/internal/taxonomy"
)

// Generator produces raw text for a prompt, retrying internally up to
// maxRetries extra attempts. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxRetries int) (string, error)
}

// RecordSource lists activity records for a timestamp range. *store.Store
// satisfies it.
type RecordSource interface {
	ListActivities(start, end time.Time) ([]store.ActivityRecord, error)
}

// SettingsSource reads the current settings. The synthesizer re-reads them
// on every run so taxonomy edits take effect without a restart.
type SettingsSource interface {
	GetSettings() (*store.Settings, error)
}

// Options tunes a Synthesizer.
type Options struct {
	MaxRetries      int               // extra gateway attempts per run
	SampleSize      int               // record cap embedded in the prompt
	DefaultTaxonomy taxonomy.Taxonomy // used when no settings row exists
}

// Synthesizer builds one Report per PeriodKey. It runs the pipeline
//
//	aggregate -> prompt -> gateway -> normalize -> reconcile -> validate
//
// and degrades to a deterministic aggregate-only report when any generation
// step fails. Synthesize never fails: the numeric core of a report does not
// depend on the generator.
type Synthesizer struct {
	records  RecordSource
	settings SettingsSource
	gateway  Generator
	cache    *Cache
	opts     Options

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewSynthesizer(records RecordSource, settings SettingsSource, gateway Generator, cache *Cache, opts Options) *Synthesizer {
	if opts.SampleSize <= 0 {
		opts.SampleSize = 50
	}
	return &Synthesizer{
		records:  records,
		settings: settings,
		gateway:  gateway,
		cache:    cache,
		opts:     opts,
		inflight: make(map[string]*sync.Mutex),
	}
}

// Synthesize returns the report for key, producing and caching it if needed.
// With forceRefresh the cache check is skipped and the fresh result
// overwrites any previous entry. Concurrent calls for the same key are
// serialized; the second caller gets the first caller's cached result.
func (s *Synthesizer) Synthesize(ctx context.Context, key PeriodKey, forceRefresh bool) *Report {
	unlock := s.lockKey(key)
	defer unlock()

	log := logger.GetLogger()

	if !forceRefresh {
		cached, err := s.cache.Get(key)
		if err != nil {
			log.Warnf("Cache lookup for %s failed: %v", key, err)
		} else if cached != nil {
			log.Debugf("Cache hit for %s", key)
			return cached
		}
	}

	lower, upper := key.Bounds()
	records, err := s.records.ListActivities(lower, upper)
	if err != nil {
		log.Errorf("Failed to list records for %s: %v, proceeding with none", key, err)
		records = nil
	}

	// One taxonomy snapshot per run keeps group_to_category self-consistent
	// even if settings change mid-synthesis.
	tax := s.taxonomySnapshot()
	resolver := taxonomy.NewResolver(tax)

	summary, days := Aggregate(records, key, resolver.Resolve)

	rep, err := s.generate(ctx, key, summary, days, records, resolver, tax)
	if err != nil {
		log.Warnf("Generation for %s failed, building fallback report: %v", key, err)
		rep = s.fallback(key, summary, days, records, resolver)
	}

	if err := s.cache.Put(rep); err != nil {
		log.Errorf("Failed to cache report %s: %v", key, err)
	}

	return rep
}

// generate runs the generator-dependent half of the pipeline. Any error it
// returns routes the caller onto the fallback edge.
func (s *Synthesizer) generate(ctx context.Context, key PeriodKey, summary TimeBreakdown, days map[string]TimeBreakdown, records []store.ActivityRecord, resolver *taxonomy.Resolver, tax taxonomy.Taxonomy) (*Report, error) {
	prompt := buildPrompt(key, summary, tax, records, s.opts.SampleSize)

	raw, err := s.gateway.Generate(ctx, prompt, s.opts.MaxRetries)
	if err != nil {
		return nil, err
	}

	val, err := llm.ExtractJSON(raw)
	if err != nil {
		var perr *llm.ParseError
		if errors.As(err, &perr) {
			logger.GetLogger().Warnf("Unparseable generator response for %s: %s", key, truncate(perr.Raw, 300))
		}
		return nil, err
	}

	obj, ok := val.(map[string]any)
	if !ok {
		// Arrays are the activity-log shape, not a report. An empty one
		// means the generator produced nothing usable.
		if arr, isArr := val.([]any); isArr && len(arr) == 0 {
			return nil, fmt.Errorf("generator produced an empty list")
		}
		return nil, fmt.Errorf("generator returned a list, not a report object")
	}

	return s.assemble(key, summary, days, records, resolver, obj), nil
}

// assemble reconciles and validates the generator's object into a Report.
// Missing report fields are synthesized from the aggregate rather than
// rejected, and the taxonomy-driven resolver always overrides whatever
// categorization the generator proposed.
func (s *Synthesizer) assemble(key PeriodKey, summary TimeBreakdown, days map[string]TimeBreakdown, records []store.ActivityRecord, resolver *taxonomy.Resolver, obj map[string]any) *Report {
	log := logger.GetLogger()

	var missing []string

	narrative := stringField(obj, "narrative")
	if narrative == "" {
		narrative = defaultNarrative(key, summary, len(records))
		missing = append(missing, "narrative")
	}

	insights, ok := stringListField(obj, "insights")
	if !ok {
		missing = append(missing, "insights")
	}
	recommendations, ok := stringListField(obj, "recommendations")
	if !ok {
		missing = append(missing, "recommendations")
	}

	if len(missing) > 0 {
		log.Warnf("Generator response for %s missing fields %v, synthesized from aggregate data", key, missing)
	}

	return &Report{
		Period:          key,
		Summary:         summary,
		DailyBreakdowns: days,
		Narrative:       narrative,
		Insights:        insights,
		Recommendations: recommendations,
		Details:         detailRecords(records),
		GroupToCategory: s.reconcileGroups(summary, records, resolver, obj),
	}
}

// reconcileGroups recomputes the category of every group seen anywhere in
// this run: in the records, in the aggregate, and in any group or category
// map the generator proposed.
func (s *Synthesizer) reconcileGroups(summary TimeBreakdown, records []store.ActivityRecord, resolver *taxonomy.Resolver, obj map[string]any) map[string]string {
	seen := make(map[string]bool)
	var groups []string
	add := func(g string) {
		if g != "" && !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}

	for _, g := range sortedKeys(summary.MinutesByGroup) {
		add(g)
	}
	for _, rec := range records {
		add(rec.Group)
	}
	for _, field := range []string{"time_by_group", "minutes_by_group", "group_to_category"} {
		if m, ok := obj[field].(map[string]any); ok {
			for g := range m {
				add(g)
			}
		}
	}

	return resolver.MapGroups(groups)
}

// fallback builds the aggregate-only report. This path has no external
// dependencies and must always succeed.
func (s *Synthesizer) fallback(key PeriodKey, summary TimeBreakdown, days map[string]TimeBreakdown, records []store.ActivityRecord, resolver *taxonomy.Resolver) *Report {
	groups := sortedKeys(summary.MinutesByGroup)
	return &Report{
		Period:          key,
		Summary:         summary,
		DailyBreakdowns: days,
		Narrative:       fmt.Sprintf("Basic report generated from %d activities.", len(records)),
		Insights:        []string{},
		Recommendations: []string{},
		Details:         detailRecords(records),
		GroupToCategory: resolver.MapGroups(groups),
	}
}

func (s *Synthesizer) taxonomySnapshot() taxonomy.Taxonomy {
	settings, err := s.settings.GetSettings()
	if err != nil {
		logger.GetLogger().Warnf("Failed to read settings, using default taxonomy: %v", err)
		return s.defaultTaxonomy()
	}
	if settings == nil || len(settings.Taxonomy.Categories) == 0 {
		return s.defaultTaxonomy()
	}
	return settings.Taxonomy
}

func (s *Synthesizer) defaultTaxonomy() taxonomy.Taxonomy {
	if len(s.opts.DefaultTaxonomy.Categories) > 0 {
		return s.opts.DefaultTaxonomy
	}
	return taxonomy.Default()
}

// lockKey serializes synthesis per PeriodKey. Two writers racing on the same
// cache entry would leave whichever finished last, so the second caller
// waits and then reads the first one's result from the cache.
func (s *Synthesizer) lockKey(key PeriodKey) func() {
	s.mu.Lock()
	l, ok := s.inflight[key.String()]
	if !ok {
		l = &sync.Mutex{}
		s.inflight[key.String()] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func defaultNarrative(key PeriodKey, summary TimeBreakdown, recordCount int) string {
	return fmt.Sprintf("Logged %d minutes across %d groups between %s and %s (%d activities).",
		summary.TotalMinutes, len(summary.MinutesByGroup),
		key.Start.Format("2006-01-02"), key.End().Format("2006-01-02"), recordCount)
}

func detailRecords(records []store.ActivityRecord) []store.ActivityRecord {
	if records == nil {
		return []store.ActivityRecord{}
	}
	return records
}

func stringField(obj map[string]any, field string) string {
	if v, ok := obj[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func stringListField(obj map[string]any, field string) ([]string, bool) {
	raw, ok := obj[field].([]any)
	if !ok {
		return []string{}, false
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
