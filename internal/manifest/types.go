package manifest

import (
	"fmt"
	"strings"
)

// Job kinds
const (
	KindRepos   = "repos"
	KindLog     = "log"
	KindTree    = "tree"
	KindRefs    = "refs"
	KindCommit  = "commit"
	KindDiff    = "diff"
	KindSummary = "summary"
	KindAbout   = "about"
	KindBlob    = "blob"
	// KindGet fetches URL and extracts it by its shape
	KindGet = "get"
)

// Kinds lists the accepted job kinds
var Kinds = []string{
	KindRepos, KindLog, KindTree, KindRefs, KindCommit,
	KindDiff, KindSummary, KindAbout, KindBlob, KindGet,
}

// Config represents the complete manifest configuration
type Config struct {
	BaseURL string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Jobs    []Job   `yaml:"jobs" json:"jobs"`
	Options Options `yaml:"options" json:"options"`
}

// Job is one extraction
type Job struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Kind string `yaml:"kind" json:"kind"`
	Repo string `yaml:"repo,omitempty" json:"repo,omitempty"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	Ref  string `yaml:"ref,omitempty" json:"ref,omitempty"`
	// Offset is the log ofs parameter
	Offset int      `yaml:"offset,omitempty" json:"offset,omitempty"`
	SHA    string   `yaml:"sha,omitempty" json:"sha,omitempty"`
	SHAs   []string `yaml:"shas,omitempty" json:"shas,omitempty"`
	URL    string   `yaml:"url,omitempty" json:"url,omitempty"`
}

// Options represents global manifest options
type Options struct {
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error"`
	// Output and Format apply unless given on the command line
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Label names the job in results
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}
	switch {
	case j.Kind == KindGet:
		return KindGet + " " + j.URL
	case j.Repo == "":
		return j.Kind
	case j.Path != "":
		return j.Kind + " " + j.Repo + ":" + j.Path
	default:
		return j.Kind + " " + j.Repo
	}
}

// Commits returns SHA and SHAs as one list
func (j Job) Commits() []string {
	if j.SHA == "" {
		return j.SHAs
	}
	return append([]string{j.SHA}, j.SHAs...)
}

// Validate validates the manifest configuration
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return ErrNoJobs
	}
	for i, job := range c.Jobs {
		if err := job.validate(); err != nil {
			return fmt.Errorf("job %d (%s): %w", i, job.Label(), err)
		}
		if job.Kind != KindGet && c.BaseURL == "" {
			return fmt.Errorf("job %d (%s): %w", i, job.Label(), ErrNoBaseURL)
		}
	}
	return nil
}

func (j Job) validate() error {
	known := false
	for _, k := range Kinds {
		if j.Kind == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w %q", ErrUnknownKind, j.Kind)
	}

	switch j.Kind {
	case KindGet:
		return requireField("url", j.URL)
	case KindRepos:
		return nil
	}

	if err := requireField("repo", j.Repo); err != nil {
		return err
	}
	switch j.Kind {
	case KindCommit:
		if len(j.Commits()) == 0 {
			return fmt.Errorf("%w: sha or shas", ErrMissingField)
		}
	case KindDiff:
		return requireField("sha", j.SHA)
	case KindBlob:
		return requireField("path", j.Path)
	}
	return nil
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}
