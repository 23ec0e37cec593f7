package fetcher

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
}

// RetrierOptions contains options for creating a Retrier
type RetrierOptions struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetrierOptions returns default retrier options
func DefaultRetrierOptions() RetrierOptions {
	return RetrierOptions{
		MaxRetries:      3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

// NewRetrier creates a new Retrier with the given options. A negative
// MaxRetries disables retrying.
func NewRetrier(opts RetrierOptions) *Retrier {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 1 * time.Second
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}

	return &Retrier{
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		maxInterval:     opts.MaxInterval,
		multiplier:      opts.Multiplier,
	}
}

func (r *Retrier) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.Multiplier = r.multiplier
	b.RandomizationFactor = 0.5
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxRetries)), ctx)
}

// Retry executes an operation with exponential backoff. Errors that are
// not retryable stop the loop at once and are returned unwrapped.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	_, err := RetryWithValue(ctx, r, func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}

// RetryWithValue executes an operation with exponential backoff and returns a value
func RetryWithValue[T any](ctx context.Context, r *Retrier, operation func() (T, error)) (T, error) {
	var result T
	var lastErr error

	err := backoff.RetryNotify(func() error {
		var err error
		result, err = operation()
		if err == nil {
			return nil
		}

		lastErr = err
		if !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		if wait := retryAfter(err); wait > 0 {
			// Honor the server's hint before the backoff picks its own delay
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			case <-timer.C:
			}
		}
		return err
	}, r.newBackoff(ctx), nil)

	if err != nil {
		if lastErr == nil || ctx.Err() != nil {
			return result, err
		}
		return result, lastErr
	}

	return result, nil
}

func retryAfter(err error) time.Duration {
	var retryable *domain.RetryableError
	if errors.As(err, &retryable) && retryable.RetryAfter > 0 {
		return time.Duration(retryable.RetryAfter) * time.Second
	}
	return 0
}

// ShouldRetryStatus returns true if the HTTP status code should be retried
func ShouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}

	// Cloudflare errors (520-530)
	return statusCode >= 520 && statusCode <= 530
}

// maxRetryAfter caps server supplied delays
const maxRetryAfter = time.Minute

// ParseRetryAfter parses the Retry-After header value, given either as
// seconds or as an HTTP date
func ParseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		d = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = time.Until(at)
	}

	if d < 0 {
		return 0
	}
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
