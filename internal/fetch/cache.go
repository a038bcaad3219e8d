package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"newsmood/internal/logger"
	"newsmood/internal/models"
	"newsmood/pkg/cachemeta"
)

// ErrCacheMiss reports that a key has no entry on disk. Offline consumers
// treat it as a skip; the online pipeline falls through to the network.
var ErrCacheMiss = errors.New("no cache entry for key")

// PageFetcher is the seam between the cache and the network. Anything that
// can turn a URL into a page body satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Cache is the idempotent on-disk page store. Entries never expire; a page
// is refetched only when its entry is corrupt or missing. Concurrent
// requests for the same key serialize on a per-key lock so a page is fetched
// at most once per run.
type Cache struct {
	dir string
	log *logger.Logger

	mu     sync.Mutex
	claims map[string]string
	locks  map[string]*sync.Mutex
}

// NewCache creates a cache rooted at dir, creating the directory if needed.
func NewCache(dir string, log *logger.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		dir:    dir,
		log:    log,
		claims: make(map[string]string),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the on-disk location of a key.
func (c *Cache) Path(key string) string {
	return filepath.Join(c.dir, key)
}

// GetOrFetch returns the cached page for a reference, fetching and storing
// it on a miss. Two URLs mapping to the same key in one run is a collision
// and fails the second claimant.
func (c *Cache) GetOrFetch(ctx context.Context, ref models.ArticleRef, fetcher PageFetcher) (*models.CachedDocument, error) {
	key, err := CacheKey(ref.URL)
	if err != nil {
		return nil, err
	}

	if err := c.claim(key, ref.URL); err != nil {
		return nil, err
	}

	lock := c.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	doc, err := c.load(key, ref)
	if err == nil {
		return doc, nil
	}

	if !errors.Is(err, ErrCacheMiss) {
		return nil, err
	}

	body, err := fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return nil, err
	}

	if err := c.store(key, ref.URL, body); err != nil {
		return nil, err
	}

	return &models.CachedDocument{Ref: ref, HTML: body, Source: models.SourceNetwork}, nil
}

// Load returns the cached page for a reference without touching the network.
// Offline consumers use it to re-score previously fetched pages.
func (c *Cache) Load(ref models.ArticleRef) (*models.CachedDocument, error) {
	key, err := CacheKey(ref.URL)
	if err != nil {
		return nil, err
	}

	if err := c.claim(key, ref.URL); err != nil {
		return nil, err
	}

	return c.load(key, ref)
}

// claim records the key→URL binding for this run. A second URL claiming the
// same key is rejected rather than silently sharing an entry.
func (c *Cache) claim(key, rawURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.claims[key]; ok && existing != rawURL {
		return fmt.Errorf("%w: key %s held by %s, requested by %s", ErrKeyCollision, key, existing, rawURL)
	}

	c.claims[key] = rawURL

	return nil
}

// keyLock returns the mutex serializing work on one key.
func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}

	return lock
}

// load reads one entry and its sidecar. A corrupt entry is reported as a
// miss so callers refetch it; an entry without a sidecar is accepted as-is.
func (c *Cache) load(key string, ref models.ArticleRef) (*models.CachedDocument, error) {
	path := c.Path(key)

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}

		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	meta, err := cachemeta.Read(path + cachemeta.Suffix)

	switch {
	case errors.Is(err, cachemeta.ErrNoMetadata):
		c.log.Debug("Cache entry has no sidecar metadata", "key", key)
	case err != nil:
		return nil, fmt.Errorf("failed to read cache metadata: %w", err)
	default:
		if meta.URL != "" && meta.URL != ref.URL {
			return nil, fmt.Errorf("%w: key %s holds %s, requested by %s", ErrKeyCollision, key, meta.URL, ref.URL)
		}

		if verr := cachemeta.Verify(meta, body); verr != nil {
			c.log.Warn("Cache entry failed verification, treating as miss", "key", key, "error", verr)

			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}
	}

	c.log.Debug("Cache hit", "key", key)

	return &models.CachedDocument{Ref: ref, HTML: body, Source: models.SourceCache}, nil
}

// store writes an entry atomically via a temp file rename, then its sidecar.
// A failed sidecar write leaves a usable entry without verification.
func (c *Cache) store(key, rawURL string, body []byte) error {
	path := c.Path(key)

	tmp, err := os.CreateTemp(c.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to finalize cache entry: %w", err)
	}

	if err := cachemeta.Write(path+cachemeta.Suffix, cachemeta.New(rawURL, body)); err != nil {
		c.log.Warn("Failed to write cache sidecar", "key", key, "error", err)
	}

	c.log.Debug("Cache store", "key", key, "bytes", len(body))

	return nil
}

// Entry describes one cached page on disk.
type Entry struct {
	Key       string
	URL       string
	Size      int64
	FetchedAt time.Time
}

// Entries lists the cached pages, sorted by key. Sidecar fields are left
// zero for entries without metadata.
func (c *Cache) Entries() ([]Entry, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []Entry

	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), keyExtension) {
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}

		entry := Entry{Key: de.Name(), Size: info.Size()}

		if meta, err := cachemeta.Read(c.Path(de.Name()) + cachemeta.Suffix); err == nil {
			entry.URL = meta.URL
			entry.FetchedAt = meta.FetchedAt
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return entries, nil
}

// VerifyEntry checks one entry's body against its sidecar hash.
func (c *Cache) VerifyEntry(key string) error {
	path := c.Path(key)

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}

		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	meta, err := cachemeta.Read(path + cachemeta.Suffix)
	if err != nil {
		return fmt.Errorf("entry %s: %w", key, err)
	}

	if err := cachemeta.Verify(meta, body); err != nil {
		return fmt.Errorf("entry %s: %w", key, err)
	}

	return nil
}

// Remove deletes one entry and its sidecar.
func (c *Cache) Remove(key string) error {
	if key != filepath.Base(key) {
		return fmt.Errorf("%w: %q", ErrUnkeyableURL, key)
	}

	if err := os.Remove(c.Path(key)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCacheMiss, key)
		}

		return fmt.Errorf("failed to remove cache entry: %w", err)
	}

	if err := os.Remove(c.Path(key) + cachemeta.Suffix); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache sidecar: %w", err)
	}

	return nil
}
