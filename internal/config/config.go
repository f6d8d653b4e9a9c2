package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Vicinity/internal/amenity"
	"github.com/MikeSquared-Agency/Vicinity/internal/scoring"
)

const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	Amenities AmenitiesConfig `yaml:"amenities"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	// RateLimit is requests per minute per client address; 0 disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HermesConfig points at NATS. An empty URL runs without the event bus.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type AmenitiesConfig struct {
	Source         string `yaml:"source"`
	File           string `yaml:"file"`
	URL            string `yaml:"url"`
	Token          string `yaml:"token"`
	FetchTimeoutMs int    `yaml:"fetch_timeout_ms"`
}

type SessionsConfig struct {
	IdleTimeoutMs   int `yaml:"idle_timeout_ms"`
	SweepIntervalMs int `yaml:"sweep_interval_ms"`
	MaxSessions     int `yaml:"max_sessions"`
}

type ScoringConfig struct {
	RankWeights []float64                         `yaml:"rank_weights"`
	Criteria    map[string]scoring.StrategyConfig `yaml:"criteria"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Amenities.FetchTimeoutMs) * time.Millisecond
}

func (c *Config) SessionIdleTimeout() time.Duration {
	return time.Duration(c.Sessions.IdleTimeoutMs) * time.Millisecond
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sessions.SweepIntervalMs) * time.Millisecond
}

// ScoringConfigs returns the strategy config for every category, with
// configured criteria replacing the built-in defaults. Two keys naming the
// same category are an error.
func (c *Config) ScoringConfigs() (map[amenity.Category]scoring.StrategyConfig, error) {
	names := make([]string, 0, len(c.Scoring.Criteria))
	for name := range c.Scoring.Criteria {
		names = append(names, name)
	}
	sort.Strings(names)

	out := scoring.DefaultConfigs()
	seen := make(map[amenity.Category]string, len(names))
	for _, name := range names {
		sc := c.Scoring.Criteria[name]
		cat, err := amenity.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("scoring.criteria: %w", err)
		}
		if prev, ok := seen[cat]; ok {
			return nil, fmt.Errorf("scoring.criteria: %q and %q both configure %s", prev, name, cat)
		}
		seen[cat] = name
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("scoring.criteria.%s: %w", name, err)
		}
		out[cat] = sc
	}
	return out, nil
}

// RankWeights returns the configured rank table; empty means raw rank.
func (c *Config) RankWeights() (scoring.RankWeights, error) {
	rw := scoring.RankWeights(c.Scoring.RankWeights)
	if err := rw.Validate(); err != nil {
		return nil, fmt.Errorf("scoring.rank_weights: %w", err)
	}
	return rw, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Amenities.Source {
	case SourceFile:
		if c.Amenities.File == "" {
			return fmt.Errorf("amenities.file is required for source %q", SourceFile)
		}
	case SourceHTTP:
		if c.Amenities.URL == "" {
			return fmt.Errorf("amenities.url is required for source %q", SourceHTTP)
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for source %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown amenities.source %q", c.Amenities.Source)
	}
	if c.Amenities.FetchTimeoutMs < 0 {
		return fmt.Errorf("amenities.fetch_timeout_ms must not be negative")
	}
	if c.Sessions.MaxSessions < 0 {
		return fmt.Errorf("sessions.max_sessions must not be negative")
	}
	if _, err := c.RankWeights(); err != nil {
		return err
	}
	if _, err := c.ScoringConfigs(); err != nil {
		return err
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   120,
		},
		Amenities: AmenitiesConfig{
			Source:         SourceFile,
			File:           "amenities.yaml",
			FetchTimeoutMs: 10000,
		},
		Sessions: SessionsConfig{
			IdleTimeoutMs:   1800000,
			SweepIntervalMs: 60000,
			MaxSessions:     10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	cfg.Amenities.Source = strings.ToLower(strings.TrimSpace(cfg.Amenities.Source))
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VICINITY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("VICINITY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("VICINITY_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("VICINITY_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("VICINITY_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("VICINITY_AMENITY_SOURCE"); v != "" {
		cfg.Amenities.Source = v
	}
	if v := os.Getenv("VICINITY_AMENITY_FILE"); v != "" {
		cfg.Amenities.File = v
	}
	if v := os.Getenv("VICINITY_AMENITY_URL"); v != "" {
		cfg.Amenities.URL = v
	}
	if v := os.Getenv("VICINITY_AMENITY_TOKEN"); v != "" {
		cfg.Amenities.Token = v
	}
	if v := os.Getenv("VICINITY_FETCH_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Amenities.FetchTimeoutMs = n
		}
	}
	if v := os.Getenv("VICINITY_SESSION_IDLE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.IdleTimeoutMs = n
		}
	}
	if v := os.Getenv("VICINITY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VICINITY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
