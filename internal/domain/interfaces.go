package domain

import (
	"context"
	"net/http"
	"time"
)

// Fetcher retrieves raw pages from a cgit installation
type Fetcher interface {
	// Get fetches content from a URL
	Get(ctx context.Context, url string) (*Response, error)
	// Close releases resources
	Close() error
}

// Response represents an HTTP response
type Response struct {
	StatusCode  int
	Body        []byte
	Headers     http.Header
	ContentType string
	URL         string
	FromCache   bool
}

// Cache defines the interface for page caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}

// Diagnostic is a recoverable oddity met while extracting a page
type Diagnostic struct {
	Component string
	Message   string
	Selector  string
	SourceURL string
	Fields    map[string]string
}

// DiagnosticSink receives diagnostics from the extractors. Implementations
// must be safe for concurrent use.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// NopDiagnostics discards every diagnostic
type NopDiagnostics struct{}

// Report implements DiagnosticSink
func (NopDiagnostics) Report(Diagnostic) {}

// DiagnosticFunc adapts a function to DiagnosticSink
type DiagnosticFunc func(d Diagnostic)

// Report implements DiagnosticSink
func (f DiagnosticFunc) Report(d Diagnostic) { f(d) }
