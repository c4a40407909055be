package cmd

import (
	"fmt"

	"activity-reports/internal/config"
	"activity-reports/internal/llm"
	"activity-reports/internal/logger"
	"activity-reports/internal/report"
	"activity-reports/internal/scheduler"
	"activity-reports/internal/store"
)

// app wires the pipeline together for the commands: config, store, gateway,
// cache, synthesizer, controller.
type app struct {
	cfg   *config.Config
	store *store.Store
	cache *report.Cache
	synth *report.Synthesizer
	ctrl  *scheduler.Controller
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Endpoint and model come from the settings row, seeded from config on
	// first run. Taxonomy edits apply per synthesis run; endpoint changes
	// apply on restart.
	settings, err := st.EnsureSettings(cfg.Generation.Endpoint, cfg.Generation.Model, cfg.Taxonomy)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	client := llm.NewClient(
		settings.GenerationEndpoint,
		cfg.Generation.APIKey,
		settings.GenerationModel,
		cfg.Generation.Temperature,
		cfg.Generation.MaxCompletionTokens,
		cfg.Generation.Timeout(),
	)

	cache := report.NewCache(st)
	synth := report.NewSynthesizer(st, st, client, cache, report.Options{
		MaxRetries:      cfg.Generation.MaxRetries,
		SampleSize:      cfg.Report.PromptSampleSize,
		DefaultTaxonomy: cfg.Taxonomy,
	})

	return &app{
		cfg:   cfg,
		store: st,
		cache: cache,
		synth: synth,
		ctrl:  scheduler.New(synth, cache, cfg.Schedule),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
