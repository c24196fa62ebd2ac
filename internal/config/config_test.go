package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv isolates a test from MATHSIM_* and vendor key variables set in
// the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"MATHSIM_ADDR", "MATHSIM_DB", "MATHSIM_LOG_LEVEL", "MATHSIM_LOG_FORMAT",
		"MATHSIM_CACHE_TTL", "MATHSIM_CACHE_SIZE", "MATHSIM_CACHE_ENABLED",
		"MATHSIM_TRACING", "MATHSIM_OTLP_ENDPOINT", "MATHSIM_LLM_PROVIDER",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	// Run from a directory without a .env file.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 600*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 128, cfg.Cache.MaxEntries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mathsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
cache:
  ttl: 30s
  max_entries: 16
llm:
  provider: mock
workflow:
  models:
    tutor: gpt-4o
`), 0o644))

	t.Setenv("MATHSIM_CACHE_SIZE", "64")
	t.Setenv("MATHSIM_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 64, cfg.Cache.MaxEntries, "env wins over the file")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.Workflow.Models["tutor"])
	assert.Equal(t, 30*time.Second, cfg.Cache.Bounds().TTL)
}

func TestLoadCacheTTLSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATHSIM_CACHE_TTL", "2.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, cfg.Cache.TTL)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATHSIM_CACHE_SIZE", "lots")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCacheEnabledSpellings(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"0", false},
		{"false", false},
		{"NO", false},
		{" Off ", false},
		{"1", true},
		{"yes", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MATHSIM_CACHE_ENABLED", tt.value)
			cfg, err := Load("")
			require.NoError(t, err)
			if cfg.Cache.Enabled != tt.want {
				t.Errorf("MATHSIM_CACHE_ENABLED=%q: enabled = %v, want %v", tt.value, cfg.Cache.Enabled, tt.want)
			}
		})
	}
}

func TestDotEnvIsLoaded(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("MATHSIM_ADDR=:7070\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MATHSIM_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}
