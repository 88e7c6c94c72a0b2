package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_SeesWrites(t *testing.T) {
	root := t.TempDir()
	c := NewCoalescer(50*time.Millisecond, 0, nil)
	defer c.Stop()

	w, err := NewWatcher(root, c)
	require.NoError(t, err)
	defer w.Stop()

	path := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	paths := awaitSignal(t, c, 2*time.Second)
	assert.Contains(t, paths, path)
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	c := NewCoalescer(50*time.Millisecond, 0, nil)
	defer c.Stop()

	w, err := NewWatcher(root, c)
	require.NoError(t, err)
	defer w.Stop()

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "pkg.go")
	require.NoError(t, os.WriteFile(path, []byte("package pkg\n"), 0o644))

	paths := awaitSignal(t, c, 2*time.Second)
	assert.Contains(t, paths, path)
}

func TestWatcher_SkipsDotGit(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	c := NewCoalescer(50*time.Millisecond, 0, []string{".git/"})
	defer c.Stop()

	w, err := NewWatcher(root, c)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "index.lock"), nil, 0o644))

	select {
	case paths := <-c.Signals():
		t.Fatalf("git internals produced a signal: %v", paths)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSkipDir(t *testing.T) {
	w := &Watcher{}
	assert.True(t, w.skipDir("/repo/.git"))
	assert.True(t, w.skipDir("/repo/node_modules"))
	assert.True(t, w.skipDir("/repo/__pycache__"))
	assert.False(t, w.skipDir("/repo/internal"))
}
