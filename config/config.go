// ABOUTME: Process configuration for leadflow
// ABOUTME: Defaults, then YAML at the XDG config path, then .env and LEADFLOW_* overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG config and data directories.
	AppName = "leadflow"

	// ConfigFileName is the YAML file under the config directory.
	ConfigFileName = "config.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LEADFLOW_"
)

type Config struct {
	DBPath       string        `yaml:"db_path"`
	StoreTimeout time.Duration `yaml:"store_timeout"`
	Scoring      ScoringConfig `yaml:"scoring"`
	Redis        RedisConfig   `yaml:"redis"`
	Log          LogConfig     `yaml:"log"`
}

// ScoringConfig tunes batch recalculation. Criteria and weights are not here;
// they live in the settings table.
type ScoringConfig struct {
	Concurrency         int     `yaml:"concurrency"`
	MaxUpdatesPerSecond float64 `yaml:"max_updates_per_second"`
}

// RedisConfig enables cross-process change events when URL is set.
type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		DBPath:       filepath.Join(xdg.DataHome, AppName, "leadflow.db"),
		StoreTimeout: 10 * time.Second,
		Scoring: ScoringConfig{
			Concurrency: 5,
		},
		Redis: RedisConfig{
			Channel: "leadflow:events",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads the config file at path, or Path() when empty. A missing file is not
// an error. Values from a .env file in the working directory and LEADFLOW_*
// variables are applied on top.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("DB_PATH"); ok {
		c.DBPath = v
	}
	if v, ok := get("STORE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSTORE_TIMEOUT: %w", EnvPrefix, err)
		}
		c.StoreTimeout = d
	}
	if v, ok := get("SCORING_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSCORING_CONCURRENCY: %w", EnvPrefix, err)
		}
		c.Scoring.Concurrency = n
	}
	if v, ok := get("SCORING_MAX_UPDATES_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSCORING_MAX_UPDATES_PER_SECOND: %w", EnvPrefix, err)
		}
		c.Scoring.MaxUpdatesPerSecond = f
	}
	if v, ok := get("REDIS_URL"); ok {
		c.Redis.URL = v
	}
	if v, ok := get("REDIS_CHANNEL"); ok {
		c.Redis.Channel = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("LOG_DEVELOPMENT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sLOG_DEVELOPMENT: %w", EnvPrefix, err)
		}
		c.Log.Development = b
	}
	return nil
}

// Validate rejects values that cannot work. Concurrency outside 1..10 is clamped
// later by the scoring engine, so it is not checked here.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.StoreTimeout < 0 {
		return fmt.Errorf("store_timeout must not be negative")
	}
	if c.Scoring.MaxUpdatesPerSecond < 0 {
		return fmt.Errorf("scoring.max_updates_per_second must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
