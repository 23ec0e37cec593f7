package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/quantmind-br/cgitscrape/internal/app"
	"github.com/quantmind-br/cgitscrape/internal/converter"
	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/quantmind-br/cgitscrape/internal/manifest"
	"github.com/spf13/cobra"
)

// onlineFunc fetches one page through the session scraper. args excludes
// the base URL.
type onlineFunc func(s *session, args []string) (any, error)

// online builds the RunE of a command whose first argument is the cgit
// base URL
func (c *cli) online(fetch onlineFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := c.open(cmd, args[0])
		if err != nil {
			return err
		}
		defer s.Close()

		v, err := fetch(s, args[1:])
		if err != nil {
			return err
		}
		return s.out.Write(v)
	}
}

func (c *cli) reposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos <base-url>",
		Short: "List the repositories of a cgit installation",
		Args:  cobra.ExactArgs(1),
		RunE: c.online(func(s *session, _ []string) (any, error) {
			return s.deps.Scraper.Repositories(s.ctx)
		}),
	}
}

func (c *cli) logCmd() *cobra.Command {
	var opts app.LogOptions
	cmd := &cobra.Command{
		Use:   "log <base-url> <repo>",
		Short: "Show one page of a repository's commit log",
		Args:  cobra.ExactArgs(2),
		RunE: c.online(func(s *session, args []string) (any, error) {
			return s.deps.Scraper.CommitLog(s.ctx, args[0], opts)
		}),
	}
	cmd.Flags().IntVar(&opts.Offset, "ofs", 0, "Number of commits to skip")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Branch, tag or commit to start from")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Only commits touching this path")
	return cmd
}

func (c *cli) treeCmd() *cobra.Command {
	var ref string
	cmd := &cobra.Command{
		Use:   "tree <base-url> <repo> [path]",
		Short: "List a directory of a repository",
		Args:  cobra.RangeArgs(2, 3),
		RunE: c.online(func(s *session, args []string) (any, error) {
			return s.deps.Scraper.Tree(s.ctx, args[0], optionalArg(args, 1), ref)
		}),
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Branch, tag or commit to list")
	return cmd
}

func (c *cli) refsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs <base-url> <repo>",
		Short: "List branches and tags",
		Args:  cobra.ExactArgs(2),
		RunE: c.online(func(s *session, args []string) (any, error) {
			return s.deps.Scraper.Refs(s.ctx, args[0])
		}),
	}
}

func (c *cli) commitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <base-url> <repo> <sha>...",
		Short: "Show commit metadata and changed files",
		Long: `Show commit metadata and changed files. With several SHAs the commits
are fetched concurrently and reported in argument order; the command
fails if any of them failed.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			repo, shas := args[1], args[2:]
			if len(shas) == 1 {
				commit, err := s.deps.Scraper.Commit(s.ctx, repo, shas[0])
				if err != nil {
					return err
				}
				return s.out.Write(commit)
			}

			results := s.deps.Scraper.Commits(s.ctx, repo, shas)
			if err := s.out.Write(results); err != nil {
				return err
			}
			return batchError(results)
		},
	}
}

// batchError summarizes the failed entries of a commit batch
func batchError(results []app.CommitResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.SHA, r.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d commits failed: %w", len(errs), len(results), errors.Join(errs...))
}

func (c *cli) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <base-url> <repo> <sha>",
		Short: "Show the parsed diff of a commit",
		Args:  cobra.ExactArgs(3),
		RunE: c.online(func(s *session, args []string) (any, error) {
			return s.deps.Scraper.Diff(s.ctx, args[0], args[1])
		}),
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <base-url> <repo>",
		Short: "Show a repository overview",
		Args:  cobra.ExactArgs(2),
		RunE: c.online(func(s *session, args []string) (any, error) {
			return s.deps.Scraper.Summary(s.ctx, args[0])
		}),
	}
}

func (c *cli) aboutCmd() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "about <base-url> <repo>",
		Short: "Show the sanitized README of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			about, err := s.deps.Scraper.About(s.ctx, args[1])
			if err != nil {
				return err
			}
			if !markdown {
				return s.out.Write(about)
			}
			return writeMarkdown(s, about, s.deps.Scraper.BaseURL())
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the README as Markdown")
	return cmd
}

func writeMarkdown(s *session, about *domain.AboutContent, domainURL string) error {
	md, err := converter.NewMarkdownConverter(converter.MarkdownOptions{
		Domain: domainURL,
	}).Convert(about.HTML)
	if err != nil {
		return err
	}
	return s.out.WriteRaw(md)
}

func (c *cli) blobCmd() *cobra.Command {
	var (
		ref string
		raw bool
	)
	cmd := &cobra.Command{
		Use:   "blob <base-url> <repo> <path>",
		Short: "Show the content of a file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			blob, err := s.deps.Scraper.Blob(s.ctx, args[1], args[2], ref)
			if err != nil {
				return err
			}
			if !raw {
				return s.out.Write(blob)
			}
			return writeBlob(s, blob)
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Branch, tag or commit to read from")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the file content only")
	return cmd
}

func writeBlob(s *session, blob *domain.Blob) error {
	if blob.Binary {
		return fmt.Errorf("%s is a binary file", blob.Path)
	}
	return s.out.WriteRaw(strings.TrimSuffix(blob.Content, "\n"))
}

// pageResult wraps an auto-detected page with its kind
type pageResult struct {
	Kind app.PageKind `json:"kind" yaml:"kind"`
	Data any          `json:"data" yaml:"data"`
}

func (c *cli) getCmd() *cobra.Command {
	var mount string
	cmd := &cobra.Command{
		Use:   "get <page-url>",
		Short: "Fetch any cgit page and extract it by its URL shape",
		Long: `Fetch any cgit page and extract it by its URL shape. Use --mount when
cgit is served below a path prefix, for example --mount /cgit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := mountURL(args[0], mount)
			if err != nil {
				return err
			}

			s, err := c.open(cmd, base)
			if err != nil {
				return err
			}
			defer s.Close()

			kind, v, err := s.deps.Scraper.Page(s.ctx, args[0])
			if err != nil {
				return err
			}
			return s.out.Write(pageResult{Kind: kind, Data: v})
		},
	}
	cmd.Flags().StringVar(&mount, "mount", "", "Path prefix of the cgit installation")
	return cmd
}

// mountURL returns the installation root of pageURL
func mountURL(pageURL, mount string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", &domain.ValidationError{Field: "url", Message: fmt.Sprintf("invalid page URL %q", pageURL)}
	}
	u.Path = "/" + strings.Trim(mount, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

func (c *cli) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Run the jobs of a YAML or JSON manifest",
		Long: `Run the jobs of a YAML or JSON manifest and write all results as one
document. The manifest's output and format options apply unless -o or -f
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.NewLoader().Load(args[0])
			if err != nil {
				return err
			}

			base := m.BaseURL
			if base == "" {
				// only get jobs; their host is the installation
				if base, err = mountURL(m.Jobs[0].URL, ""); err != nil {
					return err
				}
			}

			if m.Options.Output != "" && !cmd.Flags().Changed("output") {
				c.v.Set("output.file", m.Options.Output)
			}
			if m.Options.Format != "" && !cmd.Flags().Changed("format") {
				c.v.Set("output.format", m.Options.Format)
			}

			s, err := c.open(cmd, base)
			if err != nil {
				return err
			}
			defer s.Close()

			results, runErr := s.deps.Scraper.RunManifest(s.ctx, m)
			if err := s.out.Write(results); err != nil {
				return err
			}
			return runErr
		},
	}
}

func (c *cli) parseCmd() *cobra.Command {
	var (
		sourceURL string
		markdown  bool
	)
	cmd := &cobra.Command{
		Use:   "parse <kind> [file]",
		Short: "Extract a saved cgit page without fetching",
		Long: fmt.Sprintf(`Extract a saved cgit page without fetching. The file defaults to
stdin ("-"). Kinds: %s.`, kindList()),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := app.ParseKind(args[0])
			if err != nil {
				return err
			}

			raw, err := readPage(cmd, optionalArg(args, 1))
			if err != nil {
				return err
			}

			s, err := c.open(cmd, "")
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := app.Extract(s.deps.Parser, kind, raw, sourceURL)
			if err != nil {
				return err
			}
			if about, ok := v.(*domain.AboutContent); ok && markdown {
				return writeMarkdown(s, about, sourceURL)
			}
			return s.out.Write(v)
		},
	}
	cmd.Flags().StringVar(&sourceURL, "url", "", "URL the page was saved from, used to resolve links")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print about pages as Markdown")
	return cmd
}

func kindList() string {
	names := make([]string, len(app.AllPageKinds))
	for i, k := range app.AllPageKinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// readPage reads a saved page from path, or stdin for "" and "-", decoding
// legacy charsets to UTF-8
func readPage(cmd *cobra.Command, path string) (string, error) {
	var (
		content []byte
		err     error
	)
	if path == "" || path == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}

	decoded, err := document.ConvertToUTF8(content)
	if err != nil {
		return string(content), nil
	}
	return string(decoded), nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
