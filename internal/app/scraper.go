package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/cgitscrape/internal/document"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/quantmind-br/cgitscrape/internal/parser"
	"github.com/quantmind-br/cgitscrape/internal/utils"
)

// Scraper maps repository operations onto cgit URLs, fetches the pages and
// hands them to the parser
type Scraper struct {
	baseURL  string
	fetcher  domain.Fetcher
	parser   *parser.Parser
	workers  int
	logger   *utils.Logger
	progress io.Writer
}

// ScraperOptions contains options for creating a Scraper
type ScraperOptions struct {
	// BaseURL is the root of the cgit installation
	BaseURL string
	Fetcher domain.Fetcher
	// Parser defaults to a parser without diagnostics
	Parser *parser.Parser
	// Workers bounds concurrent fetches in Commits
	Workers int
	Logger  *utils.Logger
	// Progress receives the batch progress bar; nil disables it
	Progress io.Writer
}

// LogOptions selects a page of the commit log
type LogOptions struct {
	Offset int
	Ref    string
	// Path limits the log to commits touching a file or directory
	Path string
}

// CommitResult is the outcome of one commit in a batch
type CommitResult struct {
	SHA    string               `json:"sha" yaml:"sha"`
	Commit *domain.CommitDetail `json:"commit,omitempty" yaml:"commit,omitempty"`
	Error  string               `json:"error,omitempty" yaml:"error,omitempty"`
	Err    error                `json:"-" yaml:"-"`
}

// NewScraper creates a new Scraper
func NewScraper(opts ScraperOptions) (*Scraper, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	base, err := utils.NormalizeBaseURL(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if opts.Parser == nil {
		opts.Parser = parser.New(parser.Options{})
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &Scraper{
		baseURL:  base,
		fetcher:  opts.Fetcher,
		parser:   opts.Parser,
		workers:  opts.Workers,
		logger:   opts.Logger.WithComponent("scraper"),
		progress: opts.Progress,
	}, nil
}

// BaseURL returns the normalized installation root
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// Repositories lists the projects of the index page
func (s *Scraper) Repositories(ctx context.Context) ([]domain.Project, error) {
	raw, src, err := s.fetch(ctx, s.url("", "", nil))
	if err != nil {
		return nil, err
	}
	return s.parser.Repositories(raw, src)
}

// CommitLog returns one page of a repository's history
func (s *Scraper) CommitLog(ctx context.Context, repo string, opts LogOptions) (*domain.CommitLog, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}

	q := url.Values{}
	if opts.Offset > 0 {
		q.Set("ofs", strconv.Itoa(opts.Offset))
	}
	if opts.Ref != "" {
		q.Set("h", opts.Ref)
	}

	raw, src, err := s.fetch(ctx, s.url(repo, joinPage("log", opts.Path), q))
	if err != nil {
		return nil, err
	}
	return s.parser.CommitLog(raw, src)
}

// Tree lists a directory. An empty path is the repository root.
func (s *Scraper) Tree(ctx context.Context, repo, path, ref string) ([]domain.TreeNode, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}

	raw, src, err := s.fetch(ctx, s.url(repo, joinPage("tree", path), refQuery(ref)))
	if err != nil {
		return nil, err
	}
	return s.parser.Tree(raw, src)
}

// Refs lists branches and tags
func (s *Scraper) Refs(ctx context.Context, repo string) (*domain.Refs, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}

	raw, src, err := s.fetch(ctx, s.url(repo, "refs", nil))
	if err != nil {
		return nil, err
	}
	return s.parser.Refs(raw, src)
}

// Commit returns the detail page of one commit
func (s *Scraper) Commit(ctx context.Context, repo, sha string) (*domain.CommitDetail, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sha) == "" {
		return nil, &domain.ValidationError{Field: "sha", Message: "commit id is required"}
	}

	raw, src, err := s.fetch(ctx, s.url(repo, "commit", url.Values{"id": {sha}}))
	if err != nil {
		return nil, err
	}
	return s.parser.Commit(raw, src)
}

// Commits fetches several commits on a bounded worker pool. Results keep
// the order of shas; a failed commit carries its error instead of
// aborting the batch.
func (s *Scraper) Commits(ctx context.Context, repo string, shas []string) []CommitResult {
	bar := s.newBar(len(shas))

	details, errs := utils.ParallelMap(ctx, shas, s.workers, func(ctx context.Context, sha string) (*domain.CommitDetail, error) {
		detail, err := s.Commit(ctx, repo, sha)
		if bar != nil {
			_ = bar.Add(1)
		}
		return detail, err
	})
	if bar != nil {
		_ = bar.Finish()
	}

	results := make([]CommitResult, len(shas))
	for i, sha := range shas {
		results[i] = CommitResult{SHA: sha, Commit: details[i], Err: errs[i]}
		if results[i].Err == nil && details[i] == nil {
			// never started because ctx ended
			results[i].Err = ctx.Err()
		}
		if results[i].Err != nil {
			results[i].Error = results[i].Err.Error()
			s.logger.Warn().Err(results[i].Err).Str("sha", sha).Msg("commit failed")
		}
	}

	s.logger.Debug().
		Int("total", len(shas)).
		Int("failed", len(utils.CollectErrors(errs))).
		Msg("batch complete")

	return results
}

// Diff fetches the raw patch of a commit and parses it
func (s *Scraper) Diff(ctx context.Context, repo, sha string) ([]domain.DiffFile, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sha) == "" {
		return nil, &domain.ValidationError{Field: "sha", Message: "commit id is required"}
	}

	raw, src, err := s.fetch(ctx, s.url(repo, "patch", url.Values{"id": {sha}}))
	if err != nil {
		return nil, err
	}
	return s.parser.Diff(raw, src)
}

// Summary returns the repository overview
func (s *Scraper) Summary(ctx context.Context, repo string) (*domain.RepositorySummary, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}

	raw, src, err := s.fetch(ctx, s.url(repo, "", nil))
	if err != nil {
		return nil, err
	}
	return s.parser.Summary(raw, src)
}

// About returns the sanitized README body. A repository without an about
// page yields empty content rather than an error.
func (s *Scraper) About(ctx context.Context, repo string) (*domain.AboutContent, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}

	raw, src, err := s.fetch(ctx, s.url(repo, "about", nil))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.AboutContent{}, nil
		}
		return nil, err
	}
	return s.parser.About(raw, src)
}

// Blob returns the content of one file
func (s *Scraper) Blob(ctx context.Context, repo, path, ref string) (*domain.Blob, error) {
	if err := requireRepo(repo); err != nil {
		return nil, err
	}
	if strings.Trim(path, "/") == "" {
		return nil, &domain.ValidationError{Field: "path", Message: "file path is required"}
	}

	raw, src, err := s.fetch(ctx, s.url(repo, joinPage("tree", path), refQuery(ref)))
	if err != nil {
		return nil, err
	}
	return s.parser.Blob(raw, src)
}

// Page fetches any cgit URL under the installation and extracts it by
// the kind its shape implies
func (s *Scraper) Page(ctx context.Context, pageURL string) (PageKind, any, error) {
	mount := ""
	if u, err := url.Parse(s.baseURL); err == nil {
		mount = u.Path
	}

	target, err := DetectPage(pageURL, mount)
	if err != nil {
		return PageUnknown, nil, err
	}

	raw, src, err := s.fetch(ctx, pageURL)
	if err != nil {
		return target.Kind, nil, err
	}

	v, err := Extract(s.parser, target.Kind, raw, src)
	return target.Kind, v, err
}

func (s *Scraper) url(repo, page string, query url.Values) string {
	return utils.RepoURL(s.baseURL, repo, page, query)
}

// fetch returns the decoded page and the URL it was served from
func (s *Scraper) fetch(ctx context.Context, pageURL string) (string, string, error) {
	start := time.Now()
	resp, err := s.fetcher.Get(ctx, pageURL)
	if err != nil {
		return "", pageURL, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	body, err := document.ConvertToUTF8(resp.Body)
	if err != nil {
		s.logger.Debug().Err(err).Str("url", pageURL).Msg("charset conversion failed, using raw bytes")
		body = resp.Body
	}

	src := resp.URL
	if src == "" {
		src = pageURL
	}

	s.logger.Debug().
		Str("url", src).
		Bool("cached", resp.FromCache).
		Dur("elapsed", time.Since(start)).
		Msg("page ready")

	return string(body), src, nil
}

// progressSink is the part of a progress bar Commits drives
type progressSink interface {
	Add(int) error
	Finish() error
}

func (s *Scraper) newBar(total int) progressSink {
	if s.progress == nil || total < 2 {
		return nil
	}
	return utils.NewProgressBar(total, utils.DescFetching, s.progress)
}

func requireRepo(repo string) error {
	if strings.Trim(repo, "/") == "" {
		return &domain.ValidationError{Field: "repo", Message: "repository is required"}
	}
	return nil
}

func refQuery(ref string) url.Values {
	if ref == "" {
		return nil
	}
	return url.Values{"h": {ref}}
}

func joinPage(page, path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return page
	}
	return page + "/" + path
}
