package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/comet/internal/analyze"
)

func sampleReport() *analyze.Report {
	return &analyze.Report{
		Tool:     "comet",
		Version:  "1.0",
		RunID:    "run-1",
		Root:     "/tmp/repo",
		Provider: "ollama",
		Model:    "gemma3:1b",
		Files: []analyze.FileSummary{
			{Path: "main.go", Status: "modified", Staged: true, Size: 120},
			{Path: "util.go", OldPath: "helpers.go", Status: "renamed"},
			{Path: "notes.txt", Status: "untracked"},
		},
		CommitMessage: "feat(core): add change collection",
		Reviews: []analyze.ChunkReview{
			{SequenceIndex: 0, TotalChunks: 2, Paths: []string{"main.go"}, Review: "Looks solid."},
			{SequenceIndex: 1, TotalChunks: 2, Paths: []string{"util.go"}, Error: "provider timeout"},
		},
		ChunksTotal: 2,
		Timing:      analyze.Timing{GitMs: 12, LLMMs: 340, TotalMs: 355},
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown"} {
		w, err := GetWriter(format)
		require.NoError(t, err, format)
		assert.NotNil(t, w)
	}
	_, err := GetWriter("yaml")
	assert.Error(t, err)
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "ollama / gemma3:1b")
	assert.Contains(t, out, "*M main.go")
	assert.Contains(t, out, "R helpers.go -> util.go")
	assert.Contains(t, out, "? notes.txt")
	assert.Contains(t, out, "feat(core): add change collection")
	assert.Contains(t, out, "FAILED: provider timeout")
	assert.Contains(t, out, "Completed in 355ms")
}

func TestTextWriter_NoChanges(t *testing.T) {
	report := &analyze.Report{Root: "/tmp/repo", Provider: "ollama", Model: "m"}

	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, report))
	assert.Contains(t, buf.String(), "No changes detected")
}

func TestJSONWriter_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, sampleReport()))

	var decoded analyze.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "feat(core): add change collection", decoded.CommitMessage)
	assert.Len(t, decoded.Reviews, 2)
	assert.Equal(t, "provider timeout", decoded.Reviews[1].Error)
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "## Comet Analysis")
	assert.Contains(t, out, "| `main.go` | modified | yes |")
	assert.Contains(t, out, "```\nfeat(core): add change collection\n```")
	assert.Contains(t, out, "<details>")
	assert.Contains(t, out, "Failed: provider timeout")
}

func TestStatusLetter(t *testing.T) {
	assert.Equal(t, "A", statusLetter("added"))
	assert.Equal(t, "M", statusLetter("modified"))
	assert.Equal(t, "D", statusLetter("deleted"))
	assert.Equal(t, "?", statusLetter("untracked"))
	assert.Equal(t, "L", statusLetter("tooLarge"))
	assert.Equal(t, " ", statusLetter("bogus"))
}

func TestTextWriter_PropagatesWriteError(t *testing.T) {
	w := &TextWriter{}
	err := w.Write(failingWriter{}, sampleReport())
	assert.ErrorIs(t, err, assert.AnError)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, assert.AnError
}
