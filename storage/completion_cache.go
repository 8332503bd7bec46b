package storage

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("completions")

// HashPrompt returns the cache key for prompt: the hex MD5 digest of its
// exact bytes. Any byte difference, whitespace included, yields another key.
func HashPrompt(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// BoltCompletionCache persists completions in a single bbolt file. The file
// is opened for each access and closed before returning, so other processes
// can use the same file between calls; bbolt's file lock serializes them.
type BoltCompletionCache struct {
	path        string
	openTimeout time.Duration
	mu          sync.RWMutex
}

func NewBoltCompletionCache(path string, openTimeout time.Duration) *BoltCompletionCache {
	return &BoltCompletionCache{
		path:        path,
		openTimeout: openTimeout,
	}
}

// Path returns the location of the cache file.
func (c *BoltCompletionCache) Path() string {
	return c.path
}

// Get returns the completion stored under key. A missing file or bucket is a
// miss, not an error.
func (c *BoltCompletionCache) Get(key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	db, err := c.openReadOnly()
	if err != nil || db == nil {
		return "", false, err
	}
	defer db.Close()

	var (
		value string
		found bool
	)
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, found, nil
}

// Put stores value under key. A concurrent writer of the same key from
// another process wins if it commits last.
func (c *BoltCompletionCache) Put(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.openReadWrite()
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Count returns the number of cached completions.
func (c *BoltCompletionCache) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	db, err := c.openReadOnly()
	if err != nil || db == nil {
		return 0, err
	}
	defer db.Close()

	var n int
	err = db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketName); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}

// openReadOnly returns a nil DB without error when the file does not exist yet.
func (c *BoltCompletionCache) openReadOnly() (*bolt.DB, error) {
	if _, err := os.Stat(c.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	db, err := bolt.Open(c.path, 0600, &bolt.Options{Timeout: c.openTimeout, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return db, nil
}

func (c *BoltCompletionCache) openReadWrite() (*bolt.DB, error) {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for cache: %w", err)
		}
	}

	db, err := bolt.Open(c.path, 0600, &bolt.Options{Timeout: c.openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return db, nil
}
