package chunk

import (
	"strings"

	"github.com/dshills/comet/internal/changes"
)

// DefaultMaxChunkSize is the byte budget used when the caller passes a
// non-positive limit.
const DefaultMaxChunkSize = 2000

// Entry is one file's payload (or payload slice) inside a chunk.
type Entry struct {
	Path    string
	OldPath string // set for renames; the pair always travels together
	Status  changes.Status
	Payload string
	// Part and Parts describe a sub-chunk split of one oversized file.
	// Whole files carry 1/1.
	Part  int
	Parts int
}

// Chunk is a bounded grouping of entries whose combined payload size fits
// the chunk budget. SequenceIndex and TotalChunks are reassembly
// bookkeeping: results are reported in SequenceIndex order.
type Chunk struct {
	SequenceIndex int
	TotalChunks   int
	Entries       []Entry
}

// Size returns the combined payload size in bytes. Path and status
// metadata are not counted against the budget.
func (c Chunk) Size() int {
	var n int
	for _, e := range c.Entries {
		n += len(e.Payload)
	}
	return n
}

// Paths returns the distinct file paths in entry order.
func (c Chunk) Paths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, e := range c.Entries {
		if !seen[e.Path] {
			seen[e.Path] = true
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// Split packs a ChangeSet into bounded chunks. It is pure and
// deterministic: the same inputs always yield the same chunks.
//
// Whole FileChange entries are packed greedily in ChangeSet order while
// they fit the budget. A single entry larger than the budget is split on
// line boundaries into sub-chunks that each become their own chunk; lines
// are never split mid-line, so a single line longer than the budget is
// emitted as an oversized sub-chunk on its own. Entries without a payload
// (binary, tooLarge, deleted without diff) pack as zero-size entries so
// the chunk stream still lists every changed file.
//
// An empty ChangeSet yields nil: no chunks means nothing to analyze.
func Split(cs *changes.ChangeSet, maxChunkSize int) []Chunk {
	if cs.Empty() {
		return nil
	}
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}

	var chunks []Chunk
	var current []Entry
	currentSize := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{SequenceIndex: len(chunks), Entries: current})
		current = nil
		currentSize = 0
	}

	for _, fc := range cs.Changes {
		payload := fc.Payload()

		if len(payload) > maxChunkSize {
			flush()
			for _, piece := range splitLines(payload, maxChunkSize) {
				chunks = append(chunks, Chunk{
					SequenceIndex: len(chunks),
					Entries: []Entry{{
						Path:    fc.Path,
						OldPath: fc.OldPath,
						Status:  fc.Status,
						Payload: piece,
					}},
				})
			}
			stampParts(chunks, fc.Path)
			continue
		}

		if currentSize+len(payload) > maxChunkSize {
			flush()
		}
		current = append(current, Entry{
			Path:    fc.Path,
			OldPath: fc.OldPath,
			Status:  fc.Status,
			Payload: payload,
			Part:    1,
			Parts:   1,
		})
		currentSize += len(payload)
	}
	flush()

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}

// splitLines cuts payload into line-aligned pieces of at most max bytes.
func splitLines(payload string, max int) []string {
	lines := strings.SplitAfter(payload, "\n")
	var pieces []string
	var b strings.Builder

	for _, line := range lines {
		if line == "" {
			continue
		}
		if b.Len() > 0 && b.Len()+len(line) > max {
			pieces = append(pieces, b.String())
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		pieces = append(pieces, b.String())
	}
	return pieces
}

// stampParts back-fills Part/Parts on the sub-chunks just emitted for path.
func stampParts(chunks []Chunk, path string) {
	var idxs []int
	for i := range chunks {
		if len(chunks[i].Entries) == 1 && chunks[i].Entries[0].Path == path && chunks[i].Entries[0].Parts == 0 {
			idxs = append(idxs, i)
		}
	}
	for n, i := range idxs {
		chunks[i].Entries[0].Part = n + 1
		chunks[i].Entries[0].Parts = len(idxs)
	}
}
