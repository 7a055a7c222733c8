package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL  string `yaml:"api_base_url"`
	HTTPTimeout int    `yaml:"http_timeout_seconds"`
	SessionFile string `yaml:"session_file"`
	PageLimit   int    `yaml:"page_limit"`

	DetailCacheTTL int `yaml:"detail_cache_ttl_seconds"`

	Audit struct {
		BatchSize     int    `yaml:"batch_size"`
		FlushInterval int    `yaml:"flush_interval_seconds"`
		ChannelSize   int    `yaml:"channel_size"`
		FilterWord    string `yaml:"filter_word"`
	} `yaml:"audit"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.APIBaseURL == "" {
		return nil, errors.New("api base URL is required")
	}
	if cfg.PageLimit < 1 {
		return nil, errors.New("page_limit must be >= 1")
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		APIBaseURL:     "https://ismarliyorum.com/api",
		HTTPTimeout:    15,
		SessionFile:    "store_session.json",
		PageLimit:      20,
		DetailCacheTTL: 300,
	}
	cfg.Audit.BatchSize = 10
	cfg.Audit.FlushInterval = 5
	cfg.Audit.ChannelSize = 256
	return cfg
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = getEnv("STOREKIT_API_URL", cfg.APIBaseURL)
	cfg.SessionFile = getEnv("STOREKIT_SESSION_FILE", cfg.SessionFile)
	cfg.HTTPTimeout = getEnvInt("STOREKIT_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.PageLimit = getEnvInt("STOREKIT_PAGE_LIMIT", cfg.PageLimit)
	cfg.DetailCacheTTL = getEnvInt("STOREKIT_DETAIL_TTL", cfg.DetailCacheTTL)
	cfg.Audit.FilterWord = getEnv("STOREKIT_AUDIT_FILTER", cfg.Audit.FilterWord)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

func (c *Config) DetailTTL() time.Duration {
	return time.Duration(c.DetailCacheTTL) * time.Second
}

func (c *Config) AuditFlush() time.Duration {
	return time.Duration(c.Audit.FlushInterval) * time.Second
}
