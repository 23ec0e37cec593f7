package app

import (
	"context"
	"fmt"

	"github.com/quantmind-br/cgitscrape/internal/manifest"
)

// JobResult is the outcome of one manifest job
type JobResult struct {
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Data  any    `json:"data,omitempty" yaml:"data,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	Err   error  `json:"-" yaml:"-"`
}

// RunManifest runs the jobs of m in order. Without continue_on_error the
// first failure stops the run; the results gathered so far are returned
// with the error.
func (s *Scraper) RunManifest(ctx context.Context, m *manifest.Config) ([]JobResult, error) {
	results := make([]JobResult, 0, len(m.Jobs))
	failed := 0

	for _, job := range m.Jobs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		s.logger.Info().Str("job", job.Label()).Msg("running job")
		data, err := s.RunJob(ctx, job)

		r := JobResult{Name: job.Label(), Kind: job.Kind, Data: data, Err: err}
		if err != nil {
			r.Error = err.Error()
			failed++
			s.logger.Warn().Err(err).Str("job", r.Name).Msg("job failed")
		}
		results = append(results, r)

		if err != nil && !m.Options.ContinueOnError {
			return results, fmt.Errorf("%s: %w", r.Name, err)
		}
	}

	if failed > 0 {
		return results, fmt.Errorf("%d of %d jobs failed", failed, len(m.Jobs))
	}
	return results, nil
}

// RunJob runs a single manifest job
func (s *Scraper) RunJob(ctx context.Context, job manifest.Job) (any, error) {
	switch job.Kind {
	case manifest.KindRepos:
		return s.Repositories(ctx)
	case manifest.KindLog:
		return s.CommitLog(ctx, job.Repo, LogOptions{Offset: job.Offset, Ref: job.Ref, Path: job.Path})
	case manifest.KindTree:
		return s.Tree(ctx, job.Repo, job.Path, job.Ref)
	case manifest.KindRefs:
		return s.Refs(ctx, job.Repo)
	case manifest.KindCommit:
		shas := job.Commits()
		if len(shas) == 1 {
			return s.Commit(ctx, job.Repo, shas[0])
		}
		results := s.Commits(ctx, job.Repo, shas)
		for _, r := range results {
			if r.Err != nil {
				return results, fmt.Errorf("commit %s: %w", r.SHA, r.Err)
			}
		}
		return results, nil
	case manifest.KindDiff:
		return s.Diff(ctx, job.Repo, job.SHA)
	case manifest.KindSummary:
		return s.Summary(ctx, job.Repo)
	case manifest.KindAbout:
		return s.About(ctx, job.Repo)
	case manifest.KindBlob:
		return s.Blob(ctx, job.Repo, job.Path, job.Ref)
	case manifest.KindGet:
		kind, v, err := s.Page(ctx, job.URL)
		if err != nil {
			return nil, err
		}
		return pageData{Kind: kind, Data: v}, nil
	default:
		return nil, fmt.Errorf("%w %q", manifest.ErrUnknownKind, job.Kind)
	}
}

// pageData tags an auto-detected page with its kind
type pageData struct {
	Kind PageKind `json:"kind" yaml:"kind"`
	Data any      `json:"data" yaml:"data"`
}
