package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttlSeconds int) *Cache {
	t.Helper()
	c, err := New(true, t.TempDir(), ttlSeconds)
	require.NoError(t, err)
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := newTestCache(t, 300)

	fp := "abc123"
	_, ok := c.Get(fp)
	assert.False(t, ok, "miss before put")

	require.NoError(t, c.Put(fp, "feat: add widget"))

	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, "feat: add widget", got)
}

func TestCache_PutIsIdempotent(t *testing.T) {
	c := newTestCache(t, 300)

	require.NoError(t, c.Put("k", "first"))
	require.NoError(t, c.Put("k", "second"))

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t, 300)

	clock := time.Now()
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Put("k", "v"))

	_, ok := c.Get("k")
	assert.True(t, ok, "hit before expiry")

	// Advance the simulated clock past the TTL.
	clock = clock.Add(301 * time.Second)

	_, ok = c.Get("k")
	assert.False(t, ok, "miss after expiry")

	// Lazy removal: the entry file is gone after the expired Get.
	entries, err := os.ReadDir(c.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c := newTestCache(t, 300)

	path := filepath.Join(c.Dir(), "deadbeef.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := c.Get("deadbeef")
	assert.False(t, ok)
}

func TestCache_Sweep(t *testing.T) {
	c := newTestCache(t, 300)

	clock := time.Now()
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Put("old", "v1"))
	clock = clock.Add(200 * time.Second)
	require.NoError(t, c.Put("fresh", "v2"))
	clock = clock.Add(150 * time.Second) // old is 350s, fresh is 150s

	removed, err := c.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	assert.NoError(t, c.Put("k", "v"))
	_, ok := c.Get("k")
	assert.False(t, ok)

	// GetOrGenerate still generates.
	v, cached, err := c.GetOrGenerate("k", func() (string, error) { return "gen", nil })
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "gen", v)
}

func TestGetOrGenerate_CachesResult(t *testing.T) {
	c := newTestCache(t, 300)

	calls := 0
	gen := func() (string, error) {
		calls++
		return "result", nil
	}

	v, cached, err := c.GetOrGenerate("fp", gen)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "result", v)

	v, cached, err = c.GetOrGenerate("fp", gen)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "result", v)
	assert.Equal(t, 1, calls, "second call must be served from cache")
}

func TestGetOrGenerate_Error(t *testing.T) {
	c := newTestCache(t, 300)

	wantErr := errors.New("provider down")
	_, _, err := c.GetOrGenerate("fp", func() (string, error) { return "", wantErr })
	assert.ErrorIs(t, err, wantErr)

	// Failures are not cached.
	_, ok := c.Get("fp")
	assert.False(t, ok)
}

func TestGetOrGenerate_ConcurrentMissesCoalesce(t *testing.T) {
	c := newTestCache(t, 300)

	var calls atomic.Int32
	release := make(chan struct{})
	gen := func() (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started <- struct{}{}
			v, _, err := c.GetOrGenerate("fp", gen)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	for i := 0; i < n; i++ {
		<-started
	}
	// Give the flight a moment to collect waiters, then let it finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2), "concurrent misses must coalesce")
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}
