// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// defaultTerms is the topic list the pipeline tracks when none is configured.
var defaultTerms = []string{
	"information-technology",
	"office-admin",
	"agriculture",
	"engineering",
	"building-construction",
	"business-management",
	"cleaning-maintenance",
	"community-social-welfare",
	"education",
	"nursing",
	"finance",
	"programming",
}

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// ScrapeConfig governs the acquisition pipeline: crawl target, topics,
// paging and scheduling cadence.
type ScrapeConfig struct {
	BaseURL       string   `mapstructure:"base_url"`
	Terms         []string `mapstructure:"terms"`
	PageLimit     int      `mapstructure:"page_limit"`
	Concurrency   int      `mapstructure:"concurrency"`
	IntervalHours int      `mapstructure:"interval_hours"`
}

// HTTPConfig configures the outbound HTTP client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// CacheConfig sets the response cache location and expiry policy.
type CacheConfig struct {
	Dir             string `mapstructure:"dir"`
	MaxEntries      int    `mapstructure:"max_entries"`
	DefaultTTLHours int    `mapstructure:"default_ttl_hours"`
	StaleGraceHours int    `mapstructure:"stale_grace_hours"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBFINDERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8084)
	v.SetDefault("logging.development", true)
	v.SetDefault("scrape.base_url", "https://www.careerjunction.co.za")
	v.SetDefault("scrape.terms", defaultTerms)
	v.SetDefault("scrape.page_limit", 1)
	v.SetDefault("scrape.concurrency", 8)
	v.SetDefault("scrape.interval_hours", 3)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent",
		"Mozilla/4.0 (compatible; MSIE 7.0; Windows NT 5.1; .NET CLR 1.1.4322; .NET CLR 2.0.50727; .NET CLR 3.0.04506.30)")
	v.SetDefault("cache.dir", "./cache")
	v.SetDefault("cache.max_entries", 1023)
	v.SetDefault("cache.default_ttl_hours", 12)
	v.SetDefault("cache.stale_grace_hours", 24)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url is required")
	}
	if len(c.Scrape.Terms) == 0 {
		return fmt.Errorf("scrape.terms must not be empty")
	}
	if c.Scrape.PageLimit <= 0 {
		return fmt.Errorf("scrape.page_limit must be > 0")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be > 0")
	}
	if c.Scrape.IntervalHours <= 0 {
		return fmt.Errorf("scrape.interval_hours must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be > 0")
	}
	if c.Cache.DefaultTTLHours <= 0 {
		return fmt.Errorf("cache.default_ttl_hours must be > 0")
	}
	if c.Cache.StaleGraceHours < 0 {
		return fmt.Errorf("cache.stale_grace_hours must be >= 0")
	}
	return nil
}

// Timeout converts the HTTP timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// Interval is the scheduling cadence between scrape cycles.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Scrape.IntervalHours) * time.Hour
}

// CacheTTL is the default freshness window for cached responses.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.DefaultTTLHours) * time.Hour
}

// StaleGrace is the window past ttl during which an expired response may
// still be served if a re-fetch fails.
func (c Config) StaleGrace() time.Duration {
	return time.Duration(c.Cache.StaleGraceHours) * time.Hour
}
