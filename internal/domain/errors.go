package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrInvalidDocument indicates an empty or unusable input document
	ErrInvalidDocument = errors.New("invalid document")

	// ErrMissingElement indicates a required structural anchor was not found
	ErrMissingElement = errors.New("missing element")

	// ErrParseFailure indicates the underlying document parser failed
	ErrParseFailure = errors.New("parse failure")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheExpired indicates the cached entry has expired
	ErrCacheExpired = errors.New("cache entry expired")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL indicates an invalid URL was provided
	ErrInvalidURL = errors.New("invalid URL")
)

// ErrorKind is the taxonomy member of an extraction failure
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidDocument
	KindMissingElement
	KindParseFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidDocument:
		return "invalid_document"
	case KindMissingElement:
		return "missing_element"
	case KindParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// KindOf classifies err into the extraction taxonomy
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidDocument):
		return KindInvalidDocument
	case errors.Is(err, ErrMissingElement):
		return KindMissingElement
	case errors.Is(err, ErrParseFailure):
		return KindParseFailure
	default:
		return KindUnknown
	}
}

// InvalidDocumentError is returned for empty or unusable input
type InvalidDocumentError struct {
	SourceURL string
}

func (e *InvalidDocumentError) Error() string {
	if e.SourceURL != "" {
		return fmt.Sprintf("invalid document from %s: document is empty", e.SourceURL)
	}
	return "invalid document: document is empty"
}

func (e *InvalidDocumentError) Unwrap() error {
	return ErrInvalidDocument
}

// NewInvalidDocumentError creates a new InvalidDocumentError
func NewInvalidDocumentError(sourceURL string) *InvalidDocumentError {
	return &InvalidDocumentError{SourceURL: sourceURL}
}

// MissingElementError reports a required element that could not be located
type MissingElementError struct {
	Selector  string
	SourceURL string
}

func (e *MissingElementError) Error() string {
	msg := fmt.Sprintf("missing element %q", e.Selector)
	if e.SourceURL != "" {
		msg += " in " + e.SourceURL
	}
	return msg + ": " + e.Guidance()
}

func (e *MissingElementError) Unwrap() error {
	return ErrMissingElement
}

// Guidance returns a hint tailored to the page that failed
func (e *MissingElementError) Guidance() string {
	sel := strings.ToLower(e.Selector)
	switch {
	case strings.Contains(sel, "blob"):
		return "the file content is missing or incomplete"
	case strings.Contains(sel, "diff"):
		return "the commit may have no changes, or the page is still loading"
	case strings.Contains(sel, "list"):
		return "the server may be in the middle of an update, try again shortly"
	default:
		return "the page layout is not recognized"
	}
}

// NewMissingElementError creates a new MissingElementError
func NewMissingElementError(selector, sourceURL string) *MissingElementError {
	return &MissingElementError{
		Selector:  selector,
		SourceURL: sourceURL,
	}
}

// ParseFailureError wraps an underlying document parser error
type ParseFailureError struct {
	Reason    string
	SourceURL string
	Err       error
}

func (e *ParseFailureError) Error() string {
	if e.SourceURL != "" {
		return fmt.Sprintf("parse failure for %s: %s", e.SourceURL, e.Reason)
	}
	return fmt.Sprintf("parse failure: %s", e.Reason)
}

// Unwrap exposes both the taxonomy sentinel and the cause
func (e *ParseFailureError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParseFailure}
	}
	return []error{ErrParseFailure, e.Err}
}

// NewParseFailureError creates a new ParseFailureError
func NewParseFailureError(sourceURL string, err error) *ParseFailureError {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return &ParseFailureError{
		Reason:    reason,
		SourceURL: sourceURL,
		Err:       err,
	}
}

// FetchError represents an error during fetching
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
