package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Fetch       FetchConfig       `mapstructure:"fetch" yaml:"fetch"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// FetchConfig contains HTTP settings
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
	ProxyURL   string        `mapstructure:"proxy_url" yaml:"proxy_url"`
	Insecure   bool          `mapstructure:"insecure" yaml:"insecure"`
	// MaxBodySize is a human readable byte size such as "32MB"
	MaxBodySize string `mapstructure:"max_body_size" yaml:"max_body_size"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL          time.Duration `mapstructure:"ttl" yaml:"ttl"`
	ImmutableTTL time.Duration `mapstructure:"immutable_ttl" yaml:"immutable_ttl"`
	Directory    string        `mapstructure:"directory" yaml:"directory"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	// File is empty for stdout
	File string `mapstructure:"file" yaml:"file"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, clamping out of range numbers to
// their defaults
func (c *Config) Validate() error {
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Concurrency.Workers > MaxWorkers {
		c.Concurrency.Workers = MaxWorkers
	}
	if c.Fetch.Timeout < time.Second {
		c.Fetch.Timeout = DefaultTimeout
	}
	if c.Fetch.MaxRetries < 0 {
		c.Fetch.MaxRetries = 0
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.ImmutableTTL < c.Cache.TTL {
		c.Cache.ImmutableTTL = c.Cache.TTL
	}
	if c.Fetch.MaxBodySize == "" {
		c.Fetch.MaxBodySize = DefaultMaxBodySize
	} else if _, err := ParseSize(c.Fetch.MaxBodySize); err != nil {
		return &domain.ValidationError{Field: "fetch.max_body_size", Message: err.Error()}
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = DefaultOutputFormat
	}
	if c.Output.Format == "yml" {
		c.Output.Format = "yaml"
	}
	if c.Output.Format != "json" && c.Output.Format != "yaml" {
		return &domain.ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("unknown format %q (want json or yaml)", c.Output.Format),
		}
	}

	switch c.Logging.Format {
	case "pretty", "json":
	case "":
		c.Logging.Format = DefaultLogFormat
	default:
		return &domain.ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q (want pretty or json)", c.Logging.Format),
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	return nil
}

// MaxBodyBytes returns the parsed fetch.max_body_size
func (c *Config) MaxBodyBytes() int64 {
	n, err := ParseSize(c.Fetch.MaxBodySize)
	if err != nil {
		return 0
	}
	return n
}

// ParseSize parses a byte size such as "512KB", "32 MiB" or "1048576"
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative size not allowed")
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int64(n), nil
}
