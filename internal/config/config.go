package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	SourcesFile    string `mapstructure:"sources_file"`
	PublishersFile string `mapstructure:"publishers_file"`
	OutputDir      string `mapstructure:"output_dir"`
	MetricsFile    string `mapstructure:"metrics_file"`

	SiteTitle  string `mapstructure:"site_title"`
	FooterNote string `mapstructure:"footer_note"`
	Timezone   string `mapstructure:"timezone"`

	SummaryLength       int            `mapstructure:"summary_length"`
	FetchTimeoutSeconds int64          `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration  `mapstructure:"-"`
	FetchConcurrency    int            `mapstructure:"fetch_concurrency"`
	Location            *time.Location `mapstructure:"-"`

	NYTKey     string `mapstructure:"nyt_key"`
	FinnhubKey string `mapstructure:"finnhub_key"`
	SportsKey  string `mapstructure:"sports_key"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "daily-brief")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("output_dir", ".")
	v.SetDefault("metrics_file", "")
	v.SetDefault("site_title", "The Daily Brief")
	v.SetDefault("footer_note", "Generated on a schedule • Automated Personal Curator")
	v.SetDefault("timezone", "America/New_York")
	v.SetDefault("summary_length", 200)
	v.SetDefault("fetch_timeout_seconds", 10)
	v.SetDefault("fetch_concurrency", 1)
	v.SetDefault("nyt_key", "")
	v.SetDefault("finnhub_key", "")
	v.SetDefault("sports_key", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.SummaryLength <= 0 {
		return fmt.Errorf("invalid summary_length (must be a positive number of characters)")
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	c.FetchTimeout = time.Duration(c.FetchTimeoutSeconds) * time.Second

	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = 1
	}

	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return nil
}

// APIKeys returns the configured API tokens keyed by the names sources refer to in their auth field.
func (c *Config) APIKeys() map[string]string {
	if c == nil {
		return nil
	}
	return map[string]string{
		"nyt":     strings.TrimSpace(c.NYTKey),
		"finnhub": strings.TrimSpace(c.FinnhubKey),
		"sports":  strings.TrimSpace(c.SportsKey),
	}
}

// Redacted returns a copy safe to log: API keys are masked.
func (c *Config) Redacted() Config {
	if c == nil {
		return Config{}
	}
	out := *c
	out.NYTKey = mask(c.NYTKey)
	out.FinnhubKey = mask(c.FinnhubKey)
	out.SportsKey = mask(c.SportsKey)
	out.Location = nil
	return out
}

func mask(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return "***"
}
