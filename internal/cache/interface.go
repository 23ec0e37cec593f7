package cache

import (
	"encoding/json"
	"time"

	"github.com/quantmind-br/cgitscrape/internal/domain"
)

// Ensure BadgerCache implements domain.Cache
var _ domain.Cache = (*BadgerCache)(nil)

// Entry represents a cached page with metadata
type Entry struct {
	URL         string    `json:"url"`
	Content     []byte    `json:"content"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IsExpired returns true if the entry has expired. An entry without an
// expiry never expires.
func (e *Entry) IsExpired() bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the remaining time-to-live
func (e *Entry) TTL() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Encode serializes the entry for storage
func (e *Entry) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEntry restores an entry written by Encode
func DecodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Options contains cache configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
	// GCInterval is how often the value log is collected; zero uses the
	// default of five minutes.
	GCInterval time.Duration
}

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{
		Directory:  "",
		InMemory:   false,
		Logger:     false,
		GCInterval: 5 * time.Minute,
	}
}

// Stats describes the cache contents
type Stats struct {
	Entries  int64 `json:"entries"`
	LSMSize  int64 `json:"lsm_size"`
	VLogSize int64 `json:"vlog_size"`
}
