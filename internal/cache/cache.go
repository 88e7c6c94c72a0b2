package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/singleflight"
)

// Entry represents a cached generation result.
type Entry struct {
	Fingerprint string    `json:"fingerprint"`
	Result      string    `json:"result"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Cache provides file-based caching for generated results, keyed by
// content fingerprint with time-based expiry.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	group   singleflight.Group

	now func() time.Time // injectable clock for TTL tests
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false, now: time.Now}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		now:     time.Now,
	}, nil
}

// Get retrieves a cached result by fingerprint. Expired entries are
// removed and reported as a miss; unreadable entries are a miss, never an
// error.
func (c *Cache) Get(fingerprint string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.entryPath(fingerprint)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry: degrade to a miss and drop the file.
		os.Remove(path)
		return "", false
	}
	if c.expired(entry) {
		os.Remove(path)
		return "", false
	}
	return entry.Result, true
}

// Put stores a result. Overwrites silently if the fingerprint exists.
func (c *Cache) Put(fingerprint, result string) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{
		Fingerprint: fingerprint,
		Result:      result,
		CreatedAt:   c.now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(fingerprint), data, 0o644)
}

// GetOrGenerate returns the cached result for fingerprint or runs generate
// to produce and store it. Concurrent misses for the same fingerprint are
// coalesced: exactly one caller runs generate, the rest wait and share its
// result (wait-for-first). cached reports whether generate was skipped.
func (c *Cache) GetOrGenerate(fingerprint string, generate func() (string, error)) (result string, cached bool, err error) {
	if v, ok := c.Get(fingerprint); ok {
		return v, true, nil
	}
	if !c.enabled {
		v, err := generate()
		return v, false, err
	}

	generated := false
	v, err, _ := c.group.Do(fingerprint, func() (any, error) {
		// Re-check under the flight: another caller may have stored it
		// between our miss and the flight starting.
		if v, ok := c.Get(fingerprint); ok {
			return v, nil
		}
		res, err := generate()
		if err != nil {
			return "", err
		}
		generated = true
		if err := c.Put(fingerprint, res); err != nil {
			// A failed write only costs a regeneration later.
			return res, nil
		}
		return res, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), !generated, nil
}

// Sweep removes all expired entries and returns how many were dropped.
func (c *Cache) Sweep() (int, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			if os.Remove(path) == nil {
				removed++
			}
			continue
		}
		if c.expired(entry) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Clear removes all cache entries regardless of age.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			stats.Expired++
			continue
		}
		if c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool { return c.enabled }

func (c *Cache) expired(entry Entry) bool {
	return c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl
}

func (c *Cache) entryPath(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".json")
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "comet"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "comet"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "comet", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "comet", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "comet"), nil
	}
}
