package utils

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressBar(t *testing.T) {
	t.Run("known total", func(t *testing.T) {
		bar := NewProgressBar(10, DescFetching, io.Discard)
		require.NotNil(t, bar)
		require.NoError(t, bar.Add(3))
		assert.Equal(t, int64(3), bar.State().CurrentNum)
	})

	t.Run("unknown total", func(t *testing.T) {
		bar := NewProgressBar(-1, DescParsing, io.Discard)
		require.NotNil(t, bar)
		require.NoError(t, bar.Add(1))
	})

	t.Run("renders description", func(t *testing.T) {
		var buf bytes.Buffer
		bar := NewProgressBar(2, DescFetching, &buf)
		require.NoError(t, bar.Add(2))
		require.NoError(t, bar.Finish())
		assert.Contains(t, buf.String(), DescFetching)
	})
}
