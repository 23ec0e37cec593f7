package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quantmind-br/cgitscrape/internal/domain"
)

// BadgerCache is a cache implementation using BadgerDB. Keys are stored
// as given; callers build them with PageKey.
type BadgerCache struct {
	db        *badger.DB
	stopGC    chan struct{}
	closeOnce sync.Once
}

// NewBadgerCache creates a new BadgerDB cache
func NewBadgerCache(opts Options) (*BadgerCache, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			opts.Directory = filepath.Join(homeDir, ".cgitscrape", "cache")
		}

		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, err
		}

		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	// Disable logging unless explicitly enabled
	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	c := &BadgerCache{db: db, stopGC: make(chan struct{})}

	interval := opts.GCInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if !opts.InMemory {
		go c.runGC(interval)
	}

	return c, nil
}

func (c *BadgerCache) runGC(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopGC:
			return
		case <-ticker.C:
			_ = c.db.RunValueLogGC(0.5)
		}
	}
}

// Get retrieves a value from cache
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrCacheMiss
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores a value in cache with TTL. A non-positive TTL keeps the
// value until it is deleted.
func (c *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Has checks if a key exists in cache
func (c *BadgerCache) Has(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}

	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})

	return err == nil
}

// Delete removes a key from cache
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close releases cache resources
func (c *BadgerCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopGC)
		err = c.db.Close()
	})
	return err
}

// Clear removes all entries from the cache
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

// Size returns the number of entries in the cache
func (c *BadgerCache) Size() int64 {
	var count int64
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Stats returns cache statistics
func (c *BadgerCache) Stats() Stats {
	lsm, vlog := c.db.Size()
	return Stats{
		Entries:  c.Size(),
		LSMSize:  lsm,
		VLogSize: vlog,
	}
}
