// Package cache provides a file-based, TTL-governed cache for generated
// commit messages and reviews, keyed by content fingerprint.
//
// A fingerprint is a SHA-256 hash over the canonicalized chunk payload:
// entries are sorted by path before hashing, so the same content produces
// the same key regardless of discovery order. The scope component (provider,
// model, task) keeps results from different generation parameters apart.
//
// Expiry is lazy: expired or unreadable entries are treated as a miss on
// Get and removed when touched; [Cache.Sweep] drops all expired entries in
// one pass. A Get never scans the whole cache.
//
// Concurrent misses for the same fingerprint are coalesced through
// singleflight: one caller generates, the rest wait and share the result.
// The default cache directory is $XDG_CACHE_HOME/comet (or the
// OS-appropriate equivalent).
package cache
