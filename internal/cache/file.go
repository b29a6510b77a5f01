package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached HTTP response.
type Entry struct {
	Body       []byte    `json:"body"`
	ETag       string    `json:"etag,omitempty"`
	LastMod    string    `json:"last_modified,omitempty"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// FileCache stores HTTP responses on disk with a fixed TTL. Expired entries
// are still returned (marked stale) so callers can revalidate them with
// conditional requests instead of refetching the full body.
type FileCache struct {
	dir string
	ttl time.Duration
}

// New creates the cache directory if needed and returns a FileCache.
func New(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Get returns the entry for key and whether it is still fresh.
// A corrupt entry is removed and reported as a miss.
func (c *FileCache) Get(key string) (*Entry, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		os.Remove(path)
		return nil, false
	}

	return &entry, time.Since(entry.FetchedAt) <= c.ttl
}

// Set stores an entry under key, stamping it with the current time.
func (c *FileCache) Set(key string, entry *Entry) error {
	entry.FetchedAt = time.Now()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0o644)
}

func (c *FileCache) path(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:])+".json")
}
