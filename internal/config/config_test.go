package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	assert.Equal(t, filepath.Join("/custom/cache", "rsdoc"), cacheBase())
	assert.Equal(t, filepath.Join("/custom/cache", "rsdoc", "daemon.log"), LogPath())
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	assert.Equal(t, filepath.Join(home, ".cache", "rsdoc"), cacheBase())
}

func TestCacheBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	// Should use os.TempDir() when HOME is unset
	assert.True(t, strings.Contains(cacheBase(), "rsdoc"))
}

func TestSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/test")
	assert.Equal(t, "/run/test/rsdoc/daemon.sock", SocketPath())

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.True(t, strings.HasPrefix(SocketPath(), "/run/user/"))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://docs.rs", cfg.Docs.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Docs.Timeout)
	assert.Empty(t, cfg.Docs.Preload)
	assert.Equal(t, 10, cfg.Docs.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Docs.Cache.TTL)
	assert.Equal(t, "https://crates.io/api/v1", cfg.Registry.BaseURL)
	assert.Equal(t, time.Second, cfg.Registry.RateLimit)
	assert.Equal(t, 600, cfg.Daemon.ExpirationSeconds)
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	toml := `
[docs]
timeout = "15s"
preload = ["serde", "tokio@1.40.0"]

[docs.cache]
max_entries = 3
ttl = "10m"

[registry]
rate_limit = "250ms"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := load(dir)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Docs.Timeout)
	assert.Equal(t, []CrateSpec{{Name: "serde"}, {Name: "tokio", Version: "1.40.0"}}, cfg.Docs.Preload)
	assert.Equal(t, 3, cfg.Docs.Cache.MaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.Docs.Cache.TTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Registry.RateLimit)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://docs.rs", cfg.Docs.BaseURL)
}

func TestLoad_PreloadTables(t *testing.T) {
	dir := t.TempDir()
	toml := `
[[docs.preload]]
name = "serde"
version = "1.0.210"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := load(dir)
	require.NoError(t, err)
	assert.Equal(t, []CrateSpec{{Name: "serde", Version: "1.0.210"}}, cfg.Docs.Preload)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("RSDOC_DOCS_CACHE_TTL", "5m")
	t.Setenv("RSDOC_DOCS_CACHE_MAX_ENTRIES", "25")
	t.Setenv("RSDOC_DOCS_PRELOAD", "anyhow,thiserror@2.0.0")
	t.Setenv("RSDOC_DAEMON_EXPIRATION_SECONDS", "30")

	cfg, err := load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Docs.Cache.TTL)
	assert.Equal(t, 25, cfg.Docs.Cache.MaxEntries)
	assert.Equal(t, []CrateSpec{{Name: "anyhow"}, {Name: "thiserror", Version: "2.0.0"}}, cfg.Docs.Preload)
	assert.Equal(t, 30, cfg.Daemon.ExpirationSeconds)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		wantErr string
	}{
		{"zero ttl", "[docs.cache]\nttl = \"0s\"\n", "docs.cache.ttl"},
		{"negative timeout", "[docs]\ntimeout = \"-1s\"\n", "docs.timeout"},
		{"bad duration", "[docs]\ntimeout = \"soon\"\n", "failed to unmarshal config"},
		{"empty preload name", "[docs]\npreload = [\"@1.0.0\"]\n", "docs.preload"},
		{"malformed toml", "[docs\n", "failed to read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(tt.toml), 0o644))
			_, err := load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCrateSpec(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CrateSpec{Name: "serde"}, ParseCrateSpec("serde"))
	assert.Equal(t, CrateSpec{Name: "serde", Version: "1.0.0"}, ParseCrateSpec(" serde@1.0.0 "))
	assert.Equal(t, "serde@1.0.0", CrateSpec{Name: "serde", Version: "1.0.0"}.String())
	assert.Equal(t, "serde", CrateSpec{Name: "serde"}.String())
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "ERROR"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "chatty"}.SlogLevel())
}
