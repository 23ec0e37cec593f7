package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/quantmind-br/cgitscrape/internal/cache"
	"github.com/quantmind-br/cgitscrape/internal/domain"
	"github.com/quantmind-br/cgitscrape/internal/utils"
)

// Ensure Client implements domain.Fetcher
var _ domain.Fetcher = (*Client)(nil)

// DefaultMaxBodySize bounds a single page; large blobs and patches beyond
// it are rejected
const DefaultMaxBodySize = 32 << 20

// Client fetches cgit pages through tls-client with retry and caching
type Client struct {
	tlsClient    tls_client.HttpClient
	userAgent    string
	retrier      *Retrier
	cache        domain.Cache
	cacheEnabled bool
	cacheTTL     time.Duration
	immutableTTL time.Duration
	maxBodySize  int64
	logger       *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout     time.Duration
	MaxRetries  int
	EnableCache bool
	CacheTTL    time.Duration
	// ImmutableTTL applies to pages pinned to a full commit id
	ImmutableTTL time.Duration
	Cache        domain.Cache
	UserAgent    string
	ProxyURL     string
	MaxBodySize  int64
	// Insecure skips TLS verification, for self-signed mirrors
	Insecure bool
	Logger   *utils.Logger
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		EnableCache:  true,
		CacheTTL:     time.Hour,
		ImmutableTTL: 30 * 24 * time.Hour,
		MaxBodySize:  DefaultMaxBodySize,
	}
}

// NewClient creates a new HTTP client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.ImmutableTTL < opts.CacheTTL {
		opts.ImmutableTTL = opts.CacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(opts.Timeout.Seconds())),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}

	if opts.ProxyURL != "" {
		tlsOpts = append(tlsOpts, tls_client.WithProxyUrl(opts.ProxyURL))
	}
	if opts.Insecure {
		tlsOpts = append(tlsOpts, tls_client.WithInsecureSkipVerify())
	}

	tlsClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	retrier := NewRetrier(RetrierOptions{
		MaxRetries:      opts.MaxRetries,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	})

	return &Client{
		tlsClient:    tlsClient,
		userAgent:    opts.UserAgent,
		retrier:      retrier,
		cache:        opts.Cache,
		cacheEnabled: opts.EnableCache,
		cacheTTL:     opts.CacheTTL,
		immutableTTL: opts.ImmutableTTL,
		maxBodySize:  opts.MaxBodySize,
		logger:       opts.Logger.WithComponent("fetcher"),
	}, nil
}

// Get fetches a page, serving it from cache when possible
func (c *Client) Get(ctx context.Context, url string) (*domain.Response, error) {
	if c.useCache() {
		if cached, err := c.getFromCache(ctx, url); err == nil {
			c.logger.Debug().Str("url", url).Msg("cache hit")
			return cached, nil
		}
	}

	start := time.Now()
	resp, err := RetryWithValue(ctx, c.retrier, func() (*domain.Response, error) {
		return c.doRequest(ctx, url)
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("fetch failed")
		return nil, err
	}

	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	if c.useCache() {
		if err := c.saveToCache(ctx, url, resp); err != nil {
			c.logger.Warn().Err(err).Str("url", url).Msg("cache write failed")
		}
	}

	return resp, nil
}

func (c *Client) useCache() bool {
	return c.cacheEnabled && c.cache != nil
}

// doRequest performs the actual HTTP request
func (c *Client) doRequest(ctx context.Context, targetURL string) (*domain.Response, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: targetURL, Err: fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)}
	}

	for k, v := range RequestHeaders(c.userAgent) {
		req.Header.Set(k, v)
	}

	resp, err := c.tlsClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		fetchErr := &domain.FetchError{URL: targetURL, Err: fmt.Errorf("request failed: %w", err)}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
			fetchErr.Err = fmt.Errorf("request failed: %w", domain.ErrTimeout)
		}
		return nil, &domain.RetryableError{Err: fetchErr}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		statusErr := &domain.FetchError{
			URL:        targetURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
		if resp.StatusCode == http.StatusNotFound {
			statusErr.Err = fmt.Errorf("HTTP %d: %w", resp.StatusCode, domain.ErrNotFound)
		}
		if ShouldRetryStatus(resp.StatusCode) {
			return nil, &domain.RetryableError{
				Err:        statusErr,
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &domain.RetryableError{Err: &domain.FetchError{URL: targetURL, Err: fmt.Errorf("failed to read response body: %w", err)}}
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, &domain.FetchError{
			URL:        targetURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response larger than %d bytes", c.maxBodySize),
		}
	}

	httpHeaders := make(http.Header, len(resp.Header))
	for k, v := range resp.Header {
		httpHeaders[k] = v
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &domain.Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		Headers:     httpHeaders,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         finalURL,
		FromCache:   false,
	}, nil
}

// Close releases client resources
func (c *Client) Close() error {
	c.tlsClient.CloseIdleConnections()
	return nil
}

// getFromCache retrieves a response from cache
func (c *Client) getFromCache(ctx context.Context, url string) (*domain.Response, error) {
	data, err := c.cache.Get(ctx, cache.PageKey(url))
	if err != nil {
		return nil, err
	}

	entry, err := cache.DecodeEntry(data)
	if err != nil || entry.IsExpired() {
		return nil, domain.ErrCacheMiss
	}

	finalURL := entry.URL
	if finalURL == "" {
		finalURL = url
	}

	return &domain.Response{
		StatusCode:  http.StatusOK,
		Body:        entry.Content,
		Headers:     http.Header{"Content-Type": {entry.ContentType}},
		ContentType: entry.ContentType,
		URL:         finalURL,
		FromCache:   true,
	}, nil
}

// saveToCache saves a response to cache
func (c *Client) saveToCache(ctx context.Context, url string, resp *domain.Response) error {
	ttl := c.cacheTTL
	if cache.IsImmutableURL(url) {
		ttl = c.immutableTTL
	}

	now := time.Now()
	entry := &cache.Entry{
		URL:         resp.URL,
		Content:     resp.Body,
		ContentType: resp.ContentType,
		FetchedAt:   now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	data, err := entry.Encode()
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, cache.PageKey(url), data, ttl)
}

// SetCache sets the cache implementation
func (c *Client) SetCache(cache domain.Cache) {
	c.cache = cache
}

// SetCacheEnabled enables or disables caching
func (c *Client) SetCacheEnabled(enabled bool) {
	c.cacheEnabled = enabled
}
