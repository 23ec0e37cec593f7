package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/quantmind-br/cgitscrape/internal/app"
	"github.com/quantmind-br/cgitscrape/internal/config"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/quantmind-br/cgitscrape/internal/output"
	"github.com/quantmind-br/cgitscrape/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Dependencies for testing
	fetcherOverride domain.Fetcher
	osStat          = os.Stat
)

func main() {
	// CGITSCRAPE_* overrides may live in ./.env; a missing file is fine
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the global flag state of one command tree
type cli struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	noCache bool
	force   bool
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "cgitscrape",
		Short: "Extract structured data from cgit web interfaces",
		Long: `cgitscrape reads the HTML pages of a cgit installation and turns
repository indexes, logs, trees, refs, commits, diffs and READMEs into
JSON or YAML.

Saved pages can be extracted offline with the parse command.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is ~/.cgitscrape/config.yaml)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	flags.StringP("format", "f", config.DefaultOutputFormat, "Output format (json, yaml)")
	flags.StringP("output", "o", "", "Write output to file instead of stdout")
	flags.BoolVar(&c.force, "force", false, "Overwrite an existing output file")
	flags.BoolVar(&c.noCache, "no-cache", false, "Disable the page cache")
	flags.Duration("timeout", config.DefaultTimeout, "Request timeout")
	flags.String("user-agent", "", "Custom User-Agent")
	flags.IntP("workers", "j", config.DefaultWorkers, "Concurrent fetches for batch commands")
	flags.Bool("insecure", false, "Skip TLS certificate verification")

	// Bind flags to viper
	_ = c.v.BindPFlag("output.format", flags.Lookup("format"))
	_ = c.v.BindPFlag("output.file", flags.Lookup("output"))
	_ = c.v.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = c.v.BindPFlag("fetch.user_agent", flags.Lookup("user-agent"))
	_ = c.v.BindPFlag("fetch.insecure", flags.Lookup("insecure"))
	_ = c.v.BindPFlag("concurrency.workers", flags.Lookup("workers"))

	rootCmd.AddCommand(
		c.reposCmd(),
		c.logCmd(),
		c.treeCmd(),
		c.refsCmd(),
		c.commitCmd(),
		c.diffCmd(),
		c.summaryCmd(),
		c.aboutCmd(),
		c.blobCmd(),
		c.getCmd(),
		c.parseCmd(),
		c.batchCmd(),
		c.doctorCmd(),
		versionCmd(),
	)

	return rootCmd
}

// session is what a running command needs: configuration, wired
// dependencies, an output writer and a cancellable context
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   *app.Dependencies
	out    *output.Writer
}

func (s *session) Close() {
	s.cancel()
	if s.deps != nil {
		if err := s.deps.Close(); err != nil {
			s.deps.Logger.Warn().Err(err).Msg("close failed")
		}
	}
}

// open loads configuration and wires dependencies. An empty baseURL gives
// an offline session that can only parse.
func (c *cli) open(cmd *cobra.Command, baseURL string) (*session, error) {
	cfg, err := config.LoadFrom(c.v, c.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	out, err := output.NewWriter(output.WriterOptions{
		Format: cfg.Output.Format,
		File:   cfg.Output.File,
		Out:    cmd.OutOrStdout(),
		Force:  c.force,
	})
	if err != nil {
		return nil, err
	}

	deps, err := app.NewDependencies(app.DependencyOptions{
		Config:    cfg,
		BaseURL:   baseURL,
		Verbose:   c.verbose,
		NoCache:   c.noCache,
		LogOutput: cmd.ErrOrStderr(),
		Progress:  progressOutput(cmd),
		Fetcher:   fetcherOverride,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	s := &session{ctx: ctx, cancel: cancel, deps: deps, out: out}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			deps.Logger.Info().Msg("Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return s, nil
}

// progressOutput sends batch progress to stderr unless output is piped
// into the same stream
func progressOutput(cmd *cobra.Command) io.Writer {
	if cmd.ErrOrStderr() == cmd.OutOrStdout() {
		return nil
	}
	return cmd.ErrOrStderr()
}

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [base-url]",
		Short: "Check configuration, cache and connectivity",
		Long: `Verifies that the configuration loads, the cache directory is usable and,
when a base URL is given, that the cgit installation answers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Checking cgitscrape setup...")
			allPassed := true

			// Check 1: Config file
			fmt.Fprint(w, "  Config file: ")
			cfg, err := config.LoadFrom(c.v, c.cfgFile)
			if err != nil {
				fmt.Fprintf(w, "FAILED (%v)\n", err)
				cfg = config.Default()
				allPassed = false
			} else if used := c.v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(w, "OK (%s)\n", used)
			} else {
				fmt.Fprintln(w, "OK (defaults)")
			}

			// Check 2: Cache directory
			fmt.Fprint(w, "  Cache directory: ")
			switch {
			case !cfg.Cache.Enabled:
				fmt.Fprintln(w, "DISABLED")
			case checkCacheDir(cfg.Cache.Directory):
				fmt.Fprintf(w, "OK (%s)\n", cfg.Cache.Directory)
			default:
				fmt.Fprintln(w, "WARN (will be created on first use)")
			}

			// Check 3: cgit installation
			if len(args) == 1 {
				fmt.Fprint(w, "  cgit index: ")
				if n, err := c.checkIndex(cmd, args[0]); err != nil {
					fmt.Fprintf(w, "FAILED (%v)\n", err)
					allPassed = false
				} else {
					fmt.Fprintf(w, "OK (%d repositories)\n", n)
				}
			}

			fmt.Fprintln(w)
			if allPassed {
				fmt.Fprintln(w, "All critical checks passed!")
			} else {
				fmt.Fprintln(w, "Some checks failed. Please resolve the issues above.")
			}
			return nil
		},
	}
}

// checkIndex fetches the repository index of baseURL
func (c *cli) checkIndex(cmd *cobra.Command, baseURL string) (int, error) {
	s, err := c.open(cmd, baseURL)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
	defer cancel()

	projects, err := s.deps.Scraper.Repositories(ctx)
	if err != nil {
		return 0, err
	}
	return len(projects), nil
}

// checkCacheDir checks if the cache directory exists
func checkCacheDir(path string) bool {
	info, err := osStat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
