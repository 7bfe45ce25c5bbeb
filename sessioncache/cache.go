// Package sessioncache provides the expiring token cache backed by BadgerDB.
//
// Entries are written with a per-key TTL, so an expired session is simply a
// missing key: no background sweep is needed and logout is a single delete.
package sessioncache

import (
	"context"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Cache is a BadgerDB-backed key-value store with per-entry TTL.
// It is safe for concurrent use; Badger handles its own locking.
type Cache struct {
	db *badger.DB
}

// Options configures the cache backing store.
type Options struct {
	// Path is the on-disk directory for the badger database.
	// Ignored when InMemory is set.
	Path string
	// InMemory keeps all entries in memory; used in tests.
	InMemory bool
}

// Open opens the badger database. The caller must Close the returned cache.
func Open(opts Options) (*Cache, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger's own logger writes through stdlib log; keep it quiet and let
	// callers log open/close at the edges.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the value for key. ok is false when the key is absent or its
// TTL has elapsed; err reports transport failures only.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache get: %w", err)
	}

	return value, true, nil
}

// SetWithTTL stores key=value for the given lifetime.
func (c *Cache) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}

	return nil
}

// Ping reports whether the cache is usable. A nil or closed handle reports
// false rather than erroring.
func (c *Cache) Ping(ctx context.Context) bool {
	if c == nil || c.db == nil || c.db.IsClosed() {
		return false
	}
	if err := ctx.Err(); err != nil {
		return false
	}
	return true
}
