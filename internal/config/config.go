// Package config loads and validates the monitor configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
)

const (
	envPrefix  = "SOSIK"
	dateLayout = "2006-01-02"
)

// DefaultKeywords is the stock keyword set shipped with the monitor.
var DefaultKeywords = []string{
	"CIP",
	"한전",
	"전기위원회",
	"해상풍력",
	"전남해상풍력",
	"청정수소",
	"암모니아",
}

// Config is the full runtime configuration. Values come from the YAML file
// with SOSIK_* environment overrides; the provider API key is env-only.
type Config struct {
	Keywords      string `mapstructure:"keywords"`       // comma-separated; empty selects DefaultKeywords
	CustomKeyword string `mapstructure:"custom_keyword"` // appended after the selected keywords
	StartDate     string `mapstructure:"start_date"`     // YYYY-MM-DD; empty derives from days
	EndDate       string `mapstructure:"end_date"`       // YYYY-MM-DD; empty means today
	Days          int    `mapstructure:"days"`           // lookback window when dates are unset

	SearchBaseURL      string `mapstructure:"search_base_url"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`

	GeminiAPIKey    string `mapstructure:"gemini_api_key"`
	Model           string `mapstructure:"model"`
	ClassifyWorkers int    `mapstructure:"classify_workers"`
	ReplyCachePath  string `mapstructure:"reply_cache_path"` // empty disables the cache

	OutputDir      string `mapstructure:"output_dir"`
	PublishersFile string `mapstructure:"publishers_file"` // empty disables publishing
	LogLevel       string `mapstructure:"log_level"`
}

// Load reads the config file at path (optional), applies environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default (even an empty one): viper only surfaces
	// AutomaticEnv values for keys it already knows about, and the API key
	// never appears in the config file.
	v.SetDefault("keywords", "")
	v.SetDefault("custom_keyword", "")
	v.SetDefault("start_date", "")
	v.SetDefault("end_date", "")
	v.SetDefault("days", 7)
	v.SetDefault("search_base_url", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("model", "gemini-1.5-flash")
	v.SetDefault("classify_workers", 4)
	v.SetDefault("reply_cache_path", "")
	v.SetDefault("output_dir", ".")
	v.SetDefault("publishers_file", "")
	v.SetDefault("log_level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields a run cannot proceed without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("gemini api key is required (SOSIK_GEMINI_API_KEY)")
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model is required")
	}
	if c.Days < 1 {
		return errors.New("days must be at least 1")
	}
	if c.HTTPTimeoutSeconds < 1 {
		return errors.New("http_timeout_seconds must be at least 1")
	}
	if len(c.KeywordList()) == 0 {
		return errors.New("at least one keyword is required")
	}
	if _, err := c.Range(); err != nil {
		return err
	}
	return nil
}

// KeywordList returns the selected keywords in order, custom keyword last.
// Blank entries are dropped; duplicates are kept and searched independently.
func (c *Config) KeywordList() []string {
	var out []string

	selected := DefaultKeywords
	if strings.TrimSpace(c.Keywords) != "" {
		selected = strings.Split(c.Keywords, ",")
	}
	for _, kw := range selected {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	if custom := strings.TrimSpace(c.CustomKeyword); custom != "" {
		out = append(out, custom)
	}
	return out
}

// Range resolves the configured date range. Explicit dates win; otherwise the
// window is the last Days days ending today. Inverted explicit ranges are
// accepted and passed through to the search endpoint unchanged.
func (c *Config) Range() (domain.DateRange, error) {
	start := strings.TrimSpace(c.StartDate)
	end := strings.TrimSpace(c.EndDate)

	if start == "" && end == "" {
		return domain.LastDays(c.Days), nil
	}

	r := domain.LastDays(c.Days)
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("parse start_date: %w", err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("parse end_date: %w", err)
		}
		r.End = t
	}
	return r, nil
}

// HTTPTimeout returns the transport timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
