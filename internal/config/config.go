package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jcdickinson/rsdoc/internal/docs"
	"github.com/jcdickinson/rsdoc/internal/registry"
)

// CrateSpec names a crate and an optional version. In config files it is
// written as "name" or "name@version", or as a table with name and version.
type CrateSpec struct {
	Name    string `mapstructure:"name" json:"name"`
	Version string `mapstructure:"version" json:"version,omitempty"`
}

func (s CrateSpec) String() string {
	if s.Version == "" {
		return s.Name
	}
	return s.Name + "@" + s.Version
}

// ParseCrateSpec parses "name" or "name@version".
func ParseCrateSpec(s string) CrateSpec {
	name, version, _ := strings.Cut(strings.TrimSpace(s), "@")
	return CrateSpec{Name: name, Version: version}
}

type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`
}

type DocsConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Preload   []CrateSpec   `mapstructure:"preload"`
	Cache     CacheConfig   `mapstructure:"cache"`
}

type RegistryConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	RateLimit time.Duration `mapstructure:"rate_limit"`
}

type DaemonConfig struct {
	ExpirationSeconds int `mapstructure:"expiration_seconds"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel parses Level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type Config struct {
	Docs     DocsConfig     `mapstructure:"docs"`
	Registry RegistryConfig `mapstructure:"registry"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`
}

// cacheBase returns the base cache directory for rsdoc.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/rsdoc as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "rsdoc")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "rsdoc")
	}
	return filepath.Join(os.TempDir(), "rsdoc")
}

// LogPath returns the path to the daemon's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "daemon.log")
}

// SocketPath returns the path to the daemon's unix socket.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "rsdoc", "daemon.sock")
	}
	return filepath.Join(fmt.Sprintf("/run/user/%d", os.Getuid()), "rsdoc", "daemon.sock")
}

func configDirs() []string {
	dirs := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "rsdoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "rsdoc"))
	}
	return dirs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("docs.base_url", docs.DefaultBaseURL)
	v.SetDefault("docs.user_agent", docs.DefaultUserAgent)
	v.SetDefault("docs.timeout", docs.DefaultFetchTimeout)
	v.SetDefault("docs.preload", []string{})
	v.SetDefault("docs.cache.max_entries", docs.DefaultCacheEntries)
	v.SetDefault("docs.cache.ttl", docs.DefaultCacheTTL)
	v.SetDefault("registry.base_url", registry.DefaultBaseURL)
	v.SetDefault("registry.rate_limit", registry.DefaultInterval)
	v.SetDefault("daemon.expiration_seconds", 600)
	v.SetDefault("log.level", "info")
}

func newViper(dirs ...string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	setDefaults(v)

	v.SetEnvPrefix("RSDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func stringToCrateSpecHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(CrateSpec{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return ParseCrateSpec(data.(string)), nil
		}
		return data, nil
	}
}

// Load reads config.toml from the working directory or the user config
// directory, then applies RSDOC_* environment overrides.
func Load() (*Config, error) {
	return load(configDirs()...)
}

func load(dirs ...string) (*Config, error) {
	v, err := newViper(dirs...)
	if err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			stringToCrateSpecHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch {
	case c.Docs.Timeout <= 0:
		return fmt.Errorf("docs.timeout must be positive, got %s", c.Docs.Timeout)
	case c.Docs.Cache.TTL <= 0:
		return fmt.Errorf("docs.cache.ttl must be positive, got %s", c.Docs.Cache.TTL)
	case c.Registry.RateLimit < 0:
		return fmt.Errorf("registry.rate_limit must not be negative, got %s", c.Registry.RateLimit)
	}
	for _, spec := range c.Docs.Preload {
		if spec.Name == "" {
			return errors.New("docs.preload entries need a crate name")
		}
	}
	return nil
}
