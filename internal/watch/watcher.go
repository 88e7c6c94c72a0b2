package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/comet/internal/logging"
)

// Watcher monitors a directory tree with fsnotify and feeds every
// relevant event into a Coalescer. fsnotify watches are not recursive,
// so every subdirectory is registered at start and newly created
// directories are registered as they appear.
type Watcher struct {
	root      string
	fsw       *fsnotify.Watcher
	coalescer *Coalescer
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewWatcher starts watching root and all its subdirectories, routing
// events through the given coalescer.
func NewWatcher(root string, coalescer *Coalescer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		root:      root,
		fsw:       fsw,
		coalescer: coalescer,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// Stop shuts down the watcher and waits for its event loop to drain.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.fsw.Close()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.L().Warnw("watch error", "error", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// A new directory needs its own watch before anything inside it
	// can be seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					logging.L().Warnw("watching new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	w.coalescer.Offer(event.Name)
}

// addTree registers root and every non-ignored subdirectory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish mid-walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logging.L().Debugw("adding watch", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) skipDir(path string) bool {
	base := filepath.Base(path)
	if base == ".git" || strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	switch base {
	case "node_modules", "__pycache__", "vendor", "dist", "build", "target":
		return true
	}
	return false
}
