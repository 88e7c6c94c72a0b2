package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/dshills/comet/internal/chunk"
)

// Field and record separators for the canonical hash input. Control
// characters cannot appear in paths or statuses, so the encoding is
// unambiguous.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	scopeSep  = "\x1d"
)

// Fingerprint returns the deterministic cache key for one chunk under the
// given scope. The scope ties a result to the generation parameters
// (provider, model, task) so switching models never serves stale text.
//
// Canonicalization sorts entries by path (then part) before hashing, so
// the fingerprint is stable under reordering of the same content.
func Fingerprint(scope string, c chunk.Chunk) string {
	return FingerprintEntries(scope, c.Entries)
}

// FingerprintEntries hashes an arbitrary entry list; used both per-chunk
// and across a whole change set for commit-message caching.
func FingerprintEntries(scope string, entries []chunk.Entry) string {
	sorted := make([]chunk.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Part < sorted[j].Part
	})

	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte(scopeSep))
	for _, e := range sorted {
		h.Write([]byte(e.Path))
		h.Write([]byte(fieldSep))
		h.Write([]byte(e.Status))
		h.Write([]byte(fieldSep))
		h.Write([]byte(e.Payload))
		h.Write([]byte(recordSep))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// FingerprintChunks flattens all chunk entries and fingerprints them as
// one unit.
func FingerprintChunks(scope string, chunks []chunk.Chunk) string {
	var all []chunk.Entry
	for _, c := range chunks {
		all = append(all, c.Entries...)
	}
	return FingerprintEntries(scope, all)
}

// Scope builds the canonical scope string for fingerprints.
func Scope(provider, model, task string) string {
	return provider + ":" + model + ":" + task
}
