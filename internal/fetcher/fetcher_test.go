package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantmind-br/cgitscrape/internal/cache"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/quantmind-br/cgitscrape/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestClient(t *testing.T, opts ClientOptions) *Client {
	t.Helper()
	client, err := NewClient(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// fastRetrier keeps retry tests quick
func fastRetrier(maxRetries int) *Retrier {
	return NewRetrier(RetrierOptions{
		MaxRetries:      maxRetries,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      1.5,
	})
}

func TestDefaultClientOptions(t *testing.T) {
	opts := DefaultClientOptions()
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Equal(t, 3, opts.MaxRetries)
	assert.True(t, opts.EnableCache)
	assert.Equal(t, time.Hour, opts.CacheTTL)
	assert.Equal(t, 30*24*time.Hour, opts.ImmutableTTL)
	assert.Equal(t, int64(DefaultMaxBodySize), opts.MaxBodySize)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		opts ClientOptions
	}{
		{"defaults", DefaultClientOptions()},
		{"zero options", ClientOptions{}},
		{"custom user agent", ClientOptions{UserAgent: "cgitscrape-test"}},
		{"insecure", ClientOptions{Insecure: true}},
		{"proxy", ClientOptions{ProxyURL: "http://127.0.0.1:3128"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.opts)
			assert.NotNil(t, client.tlsClient)
			assert.NotNil(t, client.retrier)
			assert.Positive(t, client.maxBodySize)
		})
	}

	t.Run("immutable ttl never below page ttl", func(t *testing.T) {
		client := newTestClient(t, ClientOptions{CacheTTL: 2 * time.Hour, ImmutableTTL: time.Minute})
		assert.Equal(t, 2*time.Hour, client.immutableTTL)
	})
}

func TestClient_Get(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=UTF-8")
			w.Write([]byte("<html><body><table class='list'></table></body></html>"))
		}))
		defer server.Close()

		client := newTestClient(t, ClientOptions{EnableCache: false})
		resp, err := client.Get(context.Background(), server.URL+"/repo/log/")

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(resp.Body), "table class='list'")
		assert.Equal(t, "text/html; charset=UTF-8", resp.ContentType)
		assert.False(t, resp.FromCache)
	})

	t.Run("sends browser headers", func(t *testing.T) {
		var gotUA, gotAccept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotAccept = r.Header.Get("Accept")
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		client := newTestClient(t, ClientOptions{UserAgent: "cgitscrape-test"})
		_, err := client.Get(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "cgitscrape-test", gotUA)
		assert.Contains(t, gotAccept, "text/html")
	})

	t.Run("not found is permanent", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(t, ClientOptions{})
		client.retrier = fastRetrier(3)

		_, err := client.Get(context.Background(), server.URL+"/missing/")

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		var fetchErr *domain.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries service unavailable", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("recovered"))
		}))
		defer server.Close()

		client := newTestClient(t, ClientOptions{})
		client.retrier = fastRetrier(3)

		resp, err := client.Get(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "recovered", string(resp.Body))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := newTestClient(t, ClientOptions{})
		client.retrier = fastRetrier(2)

		_, err := client.Get(context.Background(), server.URL)

		require.Error(t, err)
		assert.True(t, domain.IsRetryable(err))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("body too large", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(make([]byte, 2048))
		}))
		defer server.Close()

		client := newTestClient(t, ClientOptions{MaxBodySize: 1024})
		_, err := client.Get(context.Background(), server.URL)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "larger than 1024 bytes")
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("late"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := newTestClient(t, ClientOptions{})
		_, err := client.Get(ctx, server.URL)
		assert.Error(t, err)
	})
}

func TestClient_CacheIntegration(t *testing.T) {
	t.Run("hit skips the network", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)

		url := "https://git.example.org/repo/refs/"
		entry := &cache.Entry{
			URL:         url,
			Content:     []byte("<html>refs</html>"),
			ContentType: "text/html",
			FetchedAt:   time.Now(),
			ExpiresAt:   time.Now().Add(time.Hour),
		}
		data, err := entry.Encode()
		require.NoError(t, err)

		mockCache.EXPECT().Get(gomock.Any(), cache.PageKey(url)).Return(data, nil)

		client := newTestClient(t, ClientOptions{EnableCache: true, Cache: mockCache})
		resp, err := client.Get(context.Background(), url)

		require.NoError(t, err)
		assert.True(t, resp.FromCache)
		assert.Equal(t, entry.Content, resp.Body)
		assert.Equal(t, "text/html", resp.ContentType)
		assert.Equal(t, url, resp.URL)
	})

	t.Run("miss fetches and stores", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("fresh"))
		}))
		defer server.Close()

		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)
		url := server.URL + "/repo/log/"

		mockCache.EXPECT().Get(gomock.Any(), cache.PageKey(url)).Return(nil, domain.ErrCacheMiss)
		mockCache.EXPECT().Set(gomock.Any(), cache.PageKey(url), gomock.Any(), time.Hour).
			DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
				stored, err := cache.DecodeEntry(value)
				require.NoError(t, err)
				assert.Equal(t, []byte("fresh"), stored.Content)
				assert.Equal(t, "text/html", stored.ContentType)
				return nil
			})

		client := newTestClient(t, ClientOptions{EnableCache: true, Cache: mockCache, CacheTTL: time.Hour})
		resp, err := client.Get(context.Background(), url)

		require.NoError(t, err)
		assert.False(t, resp.FromCache)
	})

	t.Run("pinned commit pages use immutable ttl", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("commit"))
		}))
		defer server.Close()

		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)
		url := server.URL + "/repo/commit/?id=0123456789abcdef0123456789abcdef01234567"

		mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheMiss)
		mockCache.EXPECT().Set(gomock.Any(), cache.PageKey(url), gomock.Any(), 48*time.Hour).Return(nil)

		client := newTestClient(t, ClientOptions{
			EnableCache:  true,
			Cache:        mockCache,
			CacheTTL:     time.Hour,
			ImmutableTTL: 48 * time.Hour,
		})
		_, err := client.Get(context.Background(), url)
		require.NoError(t, err)
	})

	t.Run("write failure does not fail the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)
		mockCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrCacheMiss)
		mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		client := newTestClient(t, ClientOptions{EnableCache: true, Cache: mockCache})
		resp, err := client.Get(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "ok", string(resp.Body))
	})

	t.Run("disabled cache is never touched", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		defer server.Close()

		ctrl := gomock.NewController(t)
		mockCache := mocks.NewMockCache(ctrl)

		client := newTestClient(t, ClientOptions{EnableCache: false, Cache: mockCache})
		_, err := client.Get(context.Background(), server.URL)
		require.NoError(t, err)
	})

	t.Run("badger round trip", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte("summary page"))
		}))
		defer server.Close()

		store, err := cache.NewBadgerCache(cache.Options{InMemory: true})
		require.NoError(t, err)
		defer store.Close()

		client := newTestClient(t, ClientOptions{EnableCache: true, Cache: store, CacheTTL: time.Hour})
		url := server.URL + "/repo/summary"

		first, err := client.Get(context.Background(), url)
		require.NoError(t, err)
		second, err := client.Get(context.Background(), url)
		require.NoError(t, err)

		assert.False(t, first.FromCache)
		assert.True(t, second.FromCache)
		assert.Equal(t, first.Body, second.Body)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClient_SetCache(t *testing.T) {
	client := newTestClient(t, ClientOptions{})
	ctrl := gomock.NewController(t)
	mockCache := mocks.NewMockCache(ctrl)

	client.SetCache(mockCache)
	client.SetCacheEnabled(true)
	assert.True(t, client.useCache())

	client.SetCacheEnabled(false)
	assert.False(t, client.useCache())
}

func TestNewRetrier(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		r := NewRetrier(RetrierOptions{})
		assert.Equal(t, 3, r.maxRetries)
		assert.Equal(t, time.Second, r.initialInterval)
		assert.Equal(t, 30*time.Second, r.maxInterval)
		assert.Equal(t, 2.0, r.multiplier)
	})

	t.Run("negative disables retries", func(t *testing.T) {
		r := NewRetrier(RetrierOptions{MaxRetries: -1})
		assert.Equal(t, 0, r.maxRetries)
	})
}

func TestRetrier_Retry(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := fastRetrier(3).Retry(context.Background(), func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries retryable errors", func(t *testing.T) {
		calls := 0
		err := fastRetrier(3).Retry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &domain.RetryableError{Err: errors.New("flaky")}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		permanent := errors.New("permanent")
		err := fastRetrier(3).Retry(context.Background(), func() error {
			calls++
			return permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("respects cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := fastRetrier(3).Retry(ctx, func() error {
			return &domain.RetryableError{Err: errors.New("flaky")}
		})
		assert.Error(t, err)
	})
}

func TestRetryWithValue(t *testing.T) {
	calls := 0
	got, err := RetryWithValue(context.Background(), fastRetrier(2), func() (string, error) {
		calls++
		if calls == 1 {
			return "", &domain.RetryableError{Err: domain.ErrTimeout}
		}
		return "page", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "page", got)
	assert.Equal(t, 2, calls)
}

func TestShouldRetryStatus(t *testing.T) {
	tests := []struct {
		status   int
		expected bool
	}{
		{200, false},
		{400, false},
		{403, false},
		{404, false},
		{429, true},
		{500, false},
		{502, true},
		{503, true},
		{504, true},
		{520, true},
		{530, true},
		{531, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ShouldRetryStatus(tt.status), "status %d", tt.status)
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, 5*time.Second, ParseRetryAfter("5"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("-3"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("soon"))
	assert.Equal(t, time.Minute, ParseRetryAfter("3600"))

	future := time.Now().Add(20 * time.Second).UTC().Format(http.TimeFormat)
	d := ParseRetryAfter(future)
	assert.Greater(t, d, 10*time.Second)
	assert.LessOrEqual(t, d, 20*time.Second)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	assert.Equal(t, time.Duration(0), ParseRetryAfter(past))
}

func TestRequestHeaders(t *testing.T) {
	t.Run("given user agent", func(t *testing.T) {
		h := RequestHeaders("Mozilla/5.0 Chrome/131.0.0.0")
		assert.Equal(t, "Mozilla/5.0 Chrome/131.0.0.0", h["User-Agent"])
		assert.NotEmpty(t, h["Sec-CH-UA"])
		assert.NotEmpty(t, h["Accept-Language"])
	})

	t.Run("firefox has no client hints", func(t *testing.T) {
		h := RequestHeaders("Mozilla/5.0 (X11; Linux x86_64; rv:132.0) Gecko/20100101 Firefox/132.0")
		assert.Empty(t, h["Sec-CH-UA"])
	})

	t.Run("random user agent from pool", func(t *testing.T) {
		h := RequestHeaders("")
		assert.Contains(t, UserAgents, h["User-Agent"])
	})
}
