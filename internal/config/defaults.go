package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Fetch defaults
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultMaxBodySize = "32MiB"

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = time.Hour
	DefaultImmutableTTL = 30 * 24 * time.Hour

	// Concurrency defaults
	DefaultWorkers = 4
	MaxWorkers     = 32

	// Output defaults
	DefaultOutputFormat = "json"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// EnvPrefix is the prefix of environment overrides (CGITSCRAPE_FETCH_TIMEOUT)
const EnvPrefix = "CGITSCRAPE"

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cgitscrape"
	}
	return filepath.Join(home, ".cgitscrape")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout:     DefaultTimeout,
			MaxRetries:  DefaultMaxRetries,
			MaxBodySize: DefaultMaxBodySize,
		},
		Cache: CacheConfig{
			Enabled:      DefaultCacheEnabled,
			TTL:          DefaultCacheTTL,
			ImmutableTTL: DefaultImmutableTTL,
			Directory:    CacheDir(),
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
