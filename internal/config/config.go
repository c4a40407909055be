package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"activity-reports/internal/logger"
	"activity-reports/internal/taxonomy"
)

type Config struct {
	Generation GenerationConfig  `mapstructure:"generation"`
	Schedule   ScheduleConfig    `mapstructure:"schedule"`
	Storage    StorageConfig     `mapstructure:"storage"`
	Report     ReportConfig      `mapstructure:"report"`
	Taxonomy   taxonomy.Taxonomy `mapstructure:"taxonomy"`
}

// GenerationConfig describes the external text-generation endpoint. The
// endpoint must expose an OpenAI-compatible /chat/completions route; LM
// Studio, Ollama and the hosted APIs all qualify.
type GenerationConfig struct {
	Endpoint            string  `mapstructure:"endpoint"`
	APIKey              string  `mapstructure:"api_key"`
	Model               string  `mapstructure:"model"`
	Temperature         float64 `mapstructure:"temperature"`
	MaxCompletionTokens int     `mapstructure:"max_completion_tokens"`
	MaxRetries          int     `mapstructure:"max_retries"`
	RequestTimeout      string  `mapstructure:"request_timeout"`
}

// ScheduleConfig carries the cron specs for the five report triggers.
// Specs use the six-field form with seconds.
type ScheduleConfig struct {
	DailyCron     string `mapstructure:"daily_cron"`
	WeeklyCron    string `mapstructure:"weekly_cron"`
	MonthlyCron   string `mapstructure:"monthly_cron"`
	QuarterlyCron string `mapstructure:"quarterly_cron"`
	AnnualCron    string `mapstructure:"annual_cron"`
}

type StorageConfig struct {
	DBPath string    `mapstructure:"db_path"`
	Log    LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`
	FilePath     string `mapstructure:"file_path"`
	RotationTime string `mapstructure:"rotation_time"`
	MaxSize      int    `mapstructure:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"`
	Compress     bool   `mapstructure:"compress"`
}

// ReportConfig bounds the prompt the synthesizer sends to the generator.
type ReportConfig struct {
	PromptSampleSize int `mapstructure:"prompt_sample_size"`
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")

		execPath, err := os.Executable()
		if err == nil {
			execDir := filepath.Dir(execPath)
			viper.AddConfigPath(filepath.Join(execDir, "config"))
			viper.AddConfigPath(execDir)
		}

		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")

		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".activity-reports"))
		}
	}

	viper.SetDefault("generation.endpoint", "http://localhost:1234/v1")
	viper.SetDefault("generation.model", "gpt-4o-mini")
	viper.SetDefault("generation.temperature", 0.7)
	viper.SetDefault("generation.max_completion_tokens", 2000)
	viper.SetDefault("generation.max_retries", 2)
	viper.SetDefault("generation.request_timeout", "3m")

	// Staggered minutes keep the triggers from firing at the same instant
	// after midnight; coarser reports fire later than the dailies they
	// depend on.
	viper.SetDefault("schedule.daily_cron", "0 5 0 * * *")
	viper.SetDefault("schedule.weekly_cron", "0 10 0 * * 1")
	viper.SetDefault("schedule.monthly_cron", "0 15 0 1 * *")
	viper.SetDefault("schedule.quarterly_cron", "0 20 0 1 1,4,7,10 *")
	viper.SetDefault("schedule.annual_cron", "0 25 0 1 1 *")

	viper.SetDefault("storage.db_path", "./data/activity-reports.db")
	viper.SetDefault("storage.log.level", "info")
	viper.SetDefault("storage.log.rotation_time", "24h")
	viper.SetDefault("storage.log.max_size", 100)
	viper.SetDefault("storage.log.max_backups", 3)
	viper.SetDefault("storage.log.max_age", 28)
	viper.SetDefault("storage.log.compress", true)

	viper.SetDefault("report.prompt_sample_size", 50)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Taxonomy.Categories) == 0 {
		cfg.Taxonomy = taxonomy.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Generation.Endpoint == "" {
		return fmt.Errorf("generation.endpoint must be set")
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model must be set")
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must not be negative")
	}
	if c.Generation.RequestTimeout != "" {
		if _, err := time.ParseDuration(c.Generation.RequestTimeout); err != nil {
			return fmt.Errorf("invalid generation.request_timeout: %w", err)
		}
	}
	if c.Report.PromptSampleSize <= 0 {
		return fmt.Errorf("report.prompt_sample_size must be positive")
	}
	return nil
}

// Timeout parses the configured request timeout, falling back to three
// minutes. Generation against local models is slow and a single request can
// legitimately run for minutes.
func (c *GenerationConfig) Timeout() time.Duration {
	if c.RequestTimeout == "" {
		return 3 * time.Minute
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		logger.GetLogger().Warnf("Invalid request_timeout %q, using 3m", c.RequestTimeout)
		return 3 * time.Minute
	}
	return d
}

// LoggerConfig converts the storage log section into the logger package's
// config shape.
func (c *Config) LoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:        c.Storage.Log.Level,
		FilePath:     c.Storage.Log.FilePath,
		RotationTime: c.Storage.Log.RotationTime,
		MaxSize:      c.Storage.Log.MaxSize,
		MaxBackups:   c.Storage.Log.MaxBackups,
		MaxAge:       c.Storage.Log.MaxAge,
		Compress:     c.Storage.Log.Compress,
	}
}
