// Package config loads mathsim settings from defaults, an optional YAML
// file, a .env file and MATHSIM_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/mathsim/internal/cache"
	"github.com/abhisek/mathsim/internal/llm"
	"github.com/abhisek/mathsim/internal/logging"
	"github.com/abhisek/mathsim/internal/observability"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAddr is the HTTP listen address used when none is configured.
const DefaultAddr = ":8080"

// Config is the complete runtime configuration.
type Config struct {
	Addr     string                      `yaml:"addr"`
	DB       string                      `yaml:"db"`
	Log      logging.Config              `yaml:"log"`
	Cache    CacheConfig                 `yaml:"cache"`
	Tracing  observability.TracingConfig `yaml:"tracing"`
	LLM      llm.Config                  `yaml:"llm"`
	Workflow WorkflowConfig              `yaml:"workflow"`
}

// CacheConfig configures the shared response cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// Bounds returns the cache package configuration.
func (c CacheConfig) Bounds() cache.Config {
	return cache.Config{TTL: c.TTL, MaxEntries: c.MaxEntries}
}

// WorkflowConfig holds per-step model overrides. Steps without an entry
// use the provider's configured model.
type WorkflowConfig struct {
	Models           map[string]string `yaml:"models"`
	ImprovementModel string            `yaml:"improvement_model"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Addr: DefaultAddr,
		Log:  logging.DefaultConfig(),
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        cache.DefaultTTL,
			MaxEntries: cache.DefaultMaxEntries,
		},
		Tracing: observability.TracingConfig{Exporter: observability.ExporterNone},
		LLM:     llm.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty; a missing .env file
// is not an error, a missing or invalid YAML file at an explicit path is.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MATHSIM_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MATHSIM_DB"); v != "" {
		cfg.DB = v
	}
	if v := os.Getenv("MATHSIM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MATHSIM_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("MATHSIM_CACHE_TTL"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MATHSIM_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = time.Duration(secs * float64(time.Second))
	}
	if v := os.Getenv("MATHSIM_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MATHSIM_CACHE_SIZE: %w", err)
		}
		cfg.Cache.MaxEntries = n
	}
	if v, ok := os.LookupEnv("MATHSIM_CACHE_ENABLED"); ok {
		cfg.Cache.Enabled = !isOff(v)
	}

	if v := os.Getenv("MATHSIM_TRACING"); v != "" {
		cfg.Tracing.Exporter = strings.ToLower(v)
	}
	if v := os.Getenv("MATHSIM_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}

	cfg.LLM = llm.ApplyEnv(cfg.LLM)
	return nil
}

// isOff reports whether v is one of the recognized "disabled" spellings.
func isOff(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}
