package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader loads and validates manifest files
type Loader struct{}

// NewLoader creates a new manifest loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a manifest file
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return l.LoadFromBytes(data, filepath.Ext(path))
}

// LoadFromBytes parses manifest configuration from raw bytes
func (l *Loader) LoadFromBytes(data []byte, ext string) (*Config, error) {
	var cfg Config
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExt, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// normalize trims the fields users tend to pad and lowercases kinds
func normalize(cfg *Config) {
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		job.Kind = strings.ToLower(strings.TrimSpace(job.Kind))
		job.Repo = strings.Trim(strings.TrimSpace(job.Repo), "/")
		job.URL = strings.TrimSpace(job.URL)
	}
}
