package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/comet/internal/changes"
)

func diffOfSize(n int) string {
	// Build a payload of exactly n bytes out of 10-byte lines.
	line := "+ chg 123\n"
	var b strings.Builder
	for b.Len()+len(line) <= n {
		b.WriteString(line)
	}
	for b.Len() < n {
		b.WriteString("x")
	}
	return b.String()
}

func changeSet(sizes ...int) *changes.ChangeSet {
	cs := &changes.ChangeSet{Root: "/repo"}
	for i, n := range sizes {
		cs.Changes = append(cs.Changes, changes.FileChange{
			Path:     "file" + string(rune('a'+i)) + ".go",
			Status:   changes.StatusModified,
			DiffText: diffOfSize(n),
		})
	}
	return cs
}

func TestSplit_EmptyChangeSet(t *testing.T) {
	assert.Nil(t, Split(&changes.ChangeSet{}, 2000))
	assert.Nil(t, Split(nil, 2000))
}

func TestSplit_GreedyPacking(t *testing.T) {
	// 500B + 1500B fit one 2000B chunk; 3000B is split into <=2000B
	// sub-chunks. Exactly 3 chunks, in discovery order.
	cs := changeSet(500, 1500, 3000)
	chunks := Split(cs, 2000)

	require.Len(t, chunks, 3)

	assert.Equal(t, []string{"filea.go", "fileb.go"}, chunks[0].Paths())
	assert.Equal(t, []string{"filec.go"}, chunks[1].Paths())
	assert.Equal(t, []string{"filec.go"}, chunks[2].Paths())

	for _, c := range chunks {
		assert.LessOrEqual(t, c.Size(), 2000, "chunk %d over budget", c.SequenceIndex)
	}

	// Sub-chunk bookkeeping on the split file.
	assert.Equal(t, 1, chunks[1].Entries[0].Part)
	assert.Equal(t, 2, chunks[1].Entries[0].Parts)
	assert.Equal(t, 2, chunks[2].Entries[0].Part)
	assert.Equal(t, 2, chunks[2].Entries[0].Parts)
}

func TestSplit_SequenceAndTotals(t *testing.T) {
	chunks := Split(changeSet(1000, 1500, 800), 2000)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.Equal(t, i, c.SequenceIndex)
		assert.Equal(t, len(chunks), c.TotalChunks)
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	cs := changeSet(300, 2500, 100, 1900, 4100)
	chunks := Split(cs, 2000)

	// Concatenating entry payloads in sequence order reconstructs every
	// file's payload in the original discovery order.
	rebuilt := make(map[string]string)
	var order []string
	for _, c := range chunks {
		for _, e := range c.Entries {
			if _, ok := rebuilt[e.Path]; !ok {
				order = append(order, e.Path)
			}
			rebuilt[e.Path] += e.Payload
		}
	}

	require.Len(t, order, len(cs.Changes))
	for i, fc := range cs.Changes {
		assert.Equal(t, fc.Path, order[i])
		assert.Equal(t, fc.DiffText, rebuilt[fc.Path])
	}
}

func TestSplit_Deterministic(t *testing.T) {
	cs := changeSet(300, 2500, 100)
	a := Split(cs, 1000)
	b := Split(cs, 1000)
	assert.Equal(t, a, b)
}

func TestSplit_NeverSplitsMidLine(t *testing.T) {
	cs := changeSet(5000)
	chunks := Split(cs, 2000)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks[:len(chunks)-1] {
		payload := c.Entries[0].Payload
		assert.True(t, strings.HasSuffix(payload, "\n"),
			"non-final sub-chunk must end on a line boundary")
	}
}

func TestSplit_OversizedSingleLine(t *testing.T) {
	cs := &changes.ChangeSet{Changes: []changes.FileChange{{
		Path:     "minified.js",
		Status:   changes.StatusModified,
		DiffText: "+" + strings.Repeat("a", 3000) + "\n",
	}}}
	chunks := Split(cs, 2000)

	// The line cannot be split, so it travels whole in one sub-chunk.
	require.Len(t, chunks, 1)
	assert.Equal(t, 3002, chunks[0].Size())
}

func TestSplit_ZeroPayloadEntriesStillListed(t *testing.T) {
	cs := &changes.ChangeSet{Changes: []changes.FileChange{
		{Path: "img.png", Status: changes.StatusModified, Binary: true, SizeBytes: 4096},
		{Path: "main.go", Status: changes.StatusModified, DiffText: diffOfSize(100)},
	}}
	chunks := Split(cs, 2000)

	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"img.png", "main.go"}, chunks[0].Paths())
}

func TestSplit_RenameKeepsPairTogether(t *testing.T) {
	cs := &changes.ChangeSet{Changes: []changes.FileChange{{
		Path:     "new.go",
		OldPath:  "old.go",
		Status:   changes.StatusRenamed,
		DiffText: "Renamed: old.go -> new.go\n",
	}}}
	chunks := Split(cs, 2000)

	require.Len(t, chunks, 1)
	e := chunks[0].Entries[0]
	assert.Equal(t, "new.go", e.Path)
	assert.Equal(t, "old.go", e.OldPath)
}

func TestSplit_DefaultBudget(t *testing.T) {
	cs := changeSet(DefaultMaxChunkSize + 500)
	chunks := Split(cs, 0)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Size(), DefaultMaxChunkSize)
	}
}
