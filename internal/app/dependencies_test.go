package app

import (
	"bytes"
	"testing"

	"github.com/quantmind-br/cgitscrape/internal/config"
	"github.com/quantmind-br/cgitscrape/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewDependencies(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		_, err := NewDependencies(DependencyOptions{})
		assert.Error(t, err)
	})

	t.Run("offline", func(t *testing.T) {
		deps, err := NewDependencies(DependencyOptions{Config: config.Default(), LogOutput: &bytes.Buffer{}})
		require.NoError(t, err)
		defer deps.Close()

		assert.NotNil(t, deps.Parser)
		assert.NotNil(t, deps.Logger)
		assert.Nil(t, deps.Scraper)
		assert.Nil(t, deps.Fetcher)
	})

	t.Run("injected fetcher", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := mocks.NewMockFetcher(ctrl)
		f.EXPECT().Close().Return(nil)

		deps, err := NewDependencies(DependencyOptions{
			Config:    config.Default(),
			BaseURL:   testBase,
			Fetcher:   f,
			LogOutput: &bytes.Buffer{},
		})
		require.NoError(t, err)

		require.NotNil(t, deps.Scraper)
		assert.Equal(t, testBase, deps.Scraper.BaseURL())
		assert.Equal(t, config.DefaultWorkers, deps.Scraper.workers)
		assert.Nil(t, deps.Cache)
		assert.NoError(t, deps.Close())
	})

	t.Run("real client with cache", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Directory = t.TempDir()

		deps, err := NewDependencies(DependencyOptions{
			Config:    cfg,
			BaseURL:   testBase,
			LogOutput: &bytes.Buffer{},
		})
		require.NoError(t, err)

		assert.NotNil(t, deps.Cache)
		assert.NotNil(t, deps.Fetcher)
		assert.NoError(t, deps.Close())
	})

	t.Run("no cache flag", func(t *testing.T) {
		deps, err := NewDependencies(DependencyOptions{
			Config:    config.Default(),
			BaseURL:   testBase,
			NoCache:   true,
			LogOutput: &bytes.Buffer{},
		})
		require.NoError(t, err)
		defer deps.Close()

		assert.Nil(t, deps.Cache)
	})

	t.Run("bad base url", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Enabled = false

		_, err := NewDependencies(DependencyOptions{Config: cfg, BaseURL: "ftp://nope", LogOutput: &bytes.Buffer{}})
		assert.Error(t, err)
	})
}

func TestRetriesFor(t *testing.T) {
	assert.Equal(t, -1, retriesFor(0))
	assert.Equal(t, 3, retriesFor(3))
}
