package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "storage:\n  db_path: ./test.db\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Generation.Endpoint != "http://localhost:1234/v1" {
		t.Errorf("endpoint = %q", cfg.Generation.Endpoint)
	}
	if cfg.Generation.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxCompletionTokens != 2000 {
		t.Errorf("max_completion_tokens = %d, want 2000", cfg.Generation.MaxCompletionTokens)
	}
	if cfg.Schedule.DailyCron != "0 5 0 * * *" {
		t.Errorf("daily_cron = %q", cfg.Schedule.DailyCron)
	}
	if cfg.Schedule.QuarterlyCron != "0 20 0 1 1,4,7,10 *" {
		t.Errorf("quarterly_cron = %q", cfg.Schedule.QuarterlyCron)
	}
	if cfg.Report.PromptSampleSize != 50 {
		t.Errorf("prompt_sample_size = %d, want 50", cfg.Report.PromptSampleSize)
	}
	if len(cfg.Taxonomy.Categories) == 0 {
		t.Error("taxonomy not populated with built-in default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
generation:
  endpoint: http://10.0.0.5:8080/v1
  model: qwen2.5-32b
  max_retries: 5
  request_timeout: 10m
schedule:
  daily_cron: "0 0 1 * * *"
taxonomy:
  categories:
    - name: Hobby
      groups: [Gardening, Chess]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Generation.Endpoint != "http://10.0.0.5:8080/v1" {
		t.Errorf("endpoint = %q", cfg.Generation.Endpoint)
	}
	if cfg.Generation.MaxRetries != 5 {
		t.Errorf("max_retries = %d, want 5", cfg.Generation.MaxRetries)
	}
	if cfg.Generation.Timeout() != 10*time.Minute {
		t.Errorf("Timeout() = %s, want 10m", cfg.Generation.Timeout())
	}
	if cfg.Schedule.DailyCron != "0 0 1 * * *" {
		t.Errorf("daily_cron = %q", cfg.Schedule.DailyCron)
	}
	if len(cfg.Taxonomy.Categories) != 1 || cfg.Taxonomy.Categories[0].Name != "Hobby" {
		t.Errorf("taxonomy = %+v, want single Hobby category", cfg.Taxonomy.Categories)
	}
	if cfg.Taxonomy.GroupCount() != 2 {
		t.Errorf("GroupCount = %d, want 2", cfg.Taxonomy.GroupCount())
	}
}

func TestLoad_RejectsInvalidTimeout(t *testing.T) {
	path := writeConfig(t, "generation:\n  request_timeout: soon\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an unparseable request_timeout")
	}
}

func TestLoad_RejectsNegativeRetries(t *testing.T) {
	path := writeConfig(t, "generation:\n  max_retries: -1\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted negative max_retries")
	}
}

func TestTimeout_FallsBackToDefault(t *testing.T) {
	c := GenerationConfig{}
	if c.Timeout() != 3*time.Minute {
		t.Errorf("Timeout() = %s, want 3m", c.Timeout())
	}
}
