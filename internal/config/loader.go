package config

import (
	"errors"
	"os"
	"strings"

	"github.com/quantmind-br/cgitscrape/internal/utils"
	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults using the
// global viper instance, which carries the CLI flag bindings. An empty
// configFile searches ~/.cgitscrape and the working directory.
func Load(configFile string) (*Config, error) {
	return load(viper.GetViper(), configFile)
}

// LoadWithViper loads configuration into a fresh viper instance and returns
// it so flags can be merged later
func LoadWithViper(configFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// LoadFrom loads configuration through v, which may already carry flag
// bindings
func LoadFrom(v *viper.Viper, configFile string) (*Config, error) {
	return load(v, configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(utils.ExpandPath(configFile))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found, unless it was asked for)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (CGITSCRAPE_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Cache.Directory = utils.ExpandPath(cfg.Cache.Directory)

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Fetch defaults
	v.SetDefault("fetch.timeout", DefaultTimeout)
	v.SetDefault("fetch.max_retries", DefaultMaxRetries)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.proxy_url", "")
	v.SetDefault("fetch.insecure", false)
	v.SetDefault("fetch.max_body_size", DefaultMaxBodySize)

	// Cache defaults
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.immutable_ttl", DefaultImmutableTTL)
	v.SetDefault("cache.directory", CacheDir())

	// Concurrency defaults
	v.SetDefault("concurrency.workers", DefaultWorkers)

	// Output defaults
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.file", "")

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}

// EnsureCacheDir creates the cache directory if it doesn't exist
func EnsureCacheDir() error {
	return os.MkdirAll(CacheDir(), 0755)
}
