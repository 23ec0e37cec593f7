package app

import (
	"fmt"
	"io"

	"github.com/quantmind-br/cgitscrape/internal/cache"
	"github.com/quantmind-br/cgitscrape/internal/config"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/quantmind-br/cgitscrape/internal/fetcher"
	"github.com/quantmind-br/cgitscrape/internal/parser"
	"github.com/quantmind-br/cgitscrape/internal/utils"
)

// Dependencies holds the collaborators built from a configuration
type Dependencies struct {
	Config  *config.Config
	Logger  *utils.Logger
	Cache   domain.Cache
	Fetcher domain.Fetcher
	Parser  *parser.Parser
	Scraper *Scraper
}

// DependencyOptions contains options for building Dependencies
type DependencyOptions struct {
	Config  *config.Config
	BaseURL string
	Verbose bool
	NoCache bool
	// LogOutput defaults to stderr
	LogOutput io.Writer
	// Progress receives batch progress bars; nil disables them
	Progress io.Writer
	// Fetcher replaces the HTTP client, mainly in tests
	Fetcher domain.Fetcher
}

// NewDependencies wires logger, cache, fetcher, parser and scraper. An
// empty BaseURL builds everything but the scraper, which is enough for
// offline parsing.
func NewDependencies(opts DependencyOptions) (*Dependencies, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  opts.LogOutput,
		Verbose: opts.Verbose,
	})

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Parser: parser.New(parser.Options{
			Diagnostics: utils.NewLogSink(logger.WithComponent("parser")),
		}),
	}

	if opts.BaseURL == "" {
		return deps, nil
	}

	deps.Fetcher = opts.Fetcher
	if deps.Fetcher == nil {
		if cfg.Cache.Enabled && !opts.NoCache {
			store, err := cache.NewBadgerCache(cache.Options{
				Directory: utils.ExpandPath(cfg.Cache.Directory),
			})
			if err != nil {
				// A locked or unreadable cache only costs speed
				logger.Warn().Err(err).Str("dir", cfg.Cache.Directory).Msg("cache disabled")
			} else {
				deps.Cache = store
			}
		}

		client, err := fetcher.NewClient(fetcher.ClientOptions{
			Timeout:      cfg.Fetch.Timeout,
			MaxRetries:   retriesFor(cfg.Fetch.MaxRetries),
			EnableCache:  deps.Cache != nil,
			CacheTTL:     cfg.Cache.TTL,
			ImmutableTTL: cfg.Cache.ImmutableTTL,
			Cache:        deps.Cache,
			UserAgent:    cfg.Fetch.UserAgent,
			ProxyURL:     cfg.Fetch.ProxyURL,
			Insecure:     cfg.Fetch.Insecure,
			MaxBodySize:  cfg.MaxBodyBytes(),
			Logger:       logger,
		})
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to create fetcher: %w", err)
		}
		deps.Fetcher = client
	}

	scraper, err := NewScraper(ScraperOptions{
		BaseURL:  opts.BaseURL,
		Fetcher:  deps.Fetcher,
		Parser:   deps.Parser,
		Workers:  cfg.Concurrency.Workers,
		Logger:   logger,
		Progress: opts.Progress,
	})
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.Scraper = scraper

	return deps, nil
}

// retriesFor maps the configured count to the retrier convention, where
// zero means the default and a negative count disables retrying
func retriesFor(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

// Close releases the fetcher and the cache
func (d *Dependencies) Close() error {
	var errs []error
	if d.Fetcher != nil {
		errs = append(errs, d.Fetcher.Close())
	}
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	return utils.FirstError(errs)
}
