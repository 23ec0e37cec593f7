package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_Load_FileNotFound(t *testing.T) {
	cfg, err := NewLoader().Load("/nonexistent/path/manifest.yaml")

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoader_Load_ValidYAML(t *testing.T) {
	path := writeManifest(t, "jobs.yaml", `
base_url: " https://git.example.org/cgit "
jobs:
  - kind: Refs
    repo: /tools/cgit/
  - kind: log
    repo: tools/cgit
    ref: master
    offset: 50
    path: src
  - kind: commit
    repo: tools/cgit
    sha: 0123456789abcdef0123456789abcdef01234567
    shas: [fedcba9876543210fedcba9876543210fedcba98]
  - name: readme
    kind: get
    url: https://git.example.org/cgit/tools/cgit/about/
options:
  continue_on_error: true
  output: results.json
  format: yaml
`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://git.example.org/cgit", cfg.BaseURL)
	require.Len(t, cfg.Jobs, 4)
	assert.Equal(t, KindRefs, cfg.Jobs[0].Kind)
	assert.Equal(t, "tools/cgit", cfg.Jobs[0].Repo)
	assert.Equal(t, 50, cfg.Jobs[1].Offset)
	assert.Equal(t, "src", cfg.Jobs[1].Path)
	assert.Equal(t, []string{
		"0123456789abcdef0123456789abcdef01234567",
		"fedcba9876543210fedcba9876543210fedcba98",
	}, cfg.Jobs[2].Commits())
	assert.Equal(t, "readme", cfg.Jobs[3].Label())
	assert.True(t, cfg.Options.ContinueOnError)
	assert.Equal(t, "results.json", cfg.Options.Output)
	assert.Equal(t, "yaml", cfg.Options.Format)
}

func TestLoader_Load_ValidJSON(t *testing.T) {
	path := writeManifest(t, "jobs.JSON", `{
		"jobs": [
			{"kind": "get", "url": "https://git.example.org/repo/refs/"}
		]
	}`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Jobs, 1)
	assert.Empty(t, cfg.BaseURL)
	assert.False(t, cfg.Options.ContinueOnError)
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"invalid yaml", "bad.yaml", "jobs: [\n  - kind: refs\n    repo: [", ErrInvalidFormat},
		{"invalid json", "bad.json", `{"jobs": [`, ErrInvalidFormat},
		{"unsupported extension", "jobs.toml", "jobs = []", ErrUnsupportedExt},
		{"no jobs", "empty.yaml", "base_url: https://git.example.org\n", ErrNoJobs},
		{"unknown kind", "kind.yaml", "base_url: https://x\njobs:\n  - kind: blame\n    repo: r\n", ErrUnknownKind},
		{"missing repo", "repo.yaml", "base_url: https://x\njobs:\n  - kind: refs\n", ErrMissingField},
		{"missing base", "base.yaml", "jobs:\n  - kind: refs\n    repo: r\n", ErrNoBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewLoader().Load(writeManifest(t, tt.file, tt.content))
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadFromBytes_YMLExtension(t *testing.T) {
	cfg, err := NewLoader().LoadFromBytes([]byte("base_url: https://x\njobs:\n  - kind: repos\n"), ".YML")
	require.NoError(t, err)
	assert.Equal(t, KindRepos, cfg.Jobs[0].Kind)
}

func TestLoader_Load_ReadError(t *testing.T) {
	// a directory exists but cannot be read as a file
	_, err := NewLoader().Load(t.TempDir())
	assert.Error(t, err)
}
