// Package watch turns raw filesystem events into settle signals.
//
// A Watcher registers fsnotify watches over a repository tree and
// feeds events into a Coalescer, which folds a burst of events into a
// single signal after a quiet period. Consumers read path sets from
// Signals; each signal means the tree has gone quiet and is worth
// analyzing.
//
// The quiet period slides: every non-ignored event restarts it, so
// analysis never starts in the middle of a save storm. Paths with a
// high event rate widen their own quiet period up to a configured
// multiple of the base delay.
package watch
