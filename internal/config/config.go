package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"feed_ingestor/internal/registry"

	"github.com/joho/godotenv"
)

const (
	ParserPattern = "pattern"
	ParserGofeed  = "gofeed"

	defaultHTTPAddr     = ":8080"
	defaultWorkers      = 4
	defaultFetchTimeout = 10
)

// Config holds the service settings and the feed source registry.
type Config struct {
	DatabaseURL  string                     `json:"database_url"`
	RedisAddr    string                     `json:"redis_addr"`
	HTTPAddr     string                     `json:"http_addr"`
	Parser       string                     `json:"parser"`
	Workers      int                        `json:"workers"`
	FetchTimeout int                        `json:"fetch_timeout"`
	UserAgent    string                     `json:"user_agent"`
	DefaultImage string                     `json:"default_image"`
	Sources      map[string]registry.Source `json:"sources"`
	Poll         PollConfig                 `json:"poll"`
}

// PollConfig enables scheduled ingestion for a fixed set of users.
type PollConfig struct {
	Users           []string `json:"users"`
	IntervalMinutes int      `json:"interval_minutes"`
	Window          string   `json:"window"`
}

// FetchTimeoutDuration returns the per-fetch timeout.
func (cfg *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(cfg.FetchTimeout) * time.Second
}

// Registry builds the source registry from the configured sources, or from
// the built-in table when none are configured.
func (cfg *Config) Registry() *registry.Registry {
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = registry.Defaults()
	}
	return registry.New(sources, cfg.DefaultImage)
}

// Validate checks worker count, timeout, parser kind, source URLs and the
// poll schedule.
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return errors.New("workers must be ≥ 1")
	}
	if cfg.FetchTimeout < 1 {
		return errors.New("fetch timeout must be ≥ 1 second")
	}
	if cfg.Parser != ParserPattern && cfg.Parser != ParserGofeed {
		return fmt.Errorf("unknown parser: %q", cfg.Parser)
	}
	for name, src := range cfg.Sources {
		if _, err := url.ParseRequestURI(src.FeedURL); err != nil {
			return fmt.Errorf("invalid feed URL for source %q: %s", name, src.FeedURL)
		}
	}
	if len(cfg.Poll.Users) > 0 && cfg.Poll.IntervalMinutes < 1 {
		return errors.New("poll interval must be ≥ 1 minute")
	}
	return nil
}

// LoadConfig reads the JSON file at path, fills defaults and applies the
// DATABASE_URL, REDIS_ADDR and HTTP_ADDR environment overrides.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the
// process environment. Missing files are not an error.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.Parser == "" {
		cfg.Parser = ParserPattern
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
}
