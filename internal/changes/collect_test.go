package changes

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temp git repo with a committed baseline.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	gitRun(t, dir, "git", "init")
	gitRun(t, dir, "git", "checkout", "-b", "main")

	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "util.go"), []byte("package main\n\nfunc helper() {}\n"), 0o644)

	gitRun(t, dir, "git", "add", "-A")
	gitRun(t, dir, "git", "commit", "-m", "init")

	return dir
}

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=test",
		"GIT_COMMITTER_EMAIL=test@test.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
}

func TestCollect_NotARepository(t *testing.T) {
	dir := t.TempDir()
	_, err := Collect(dir, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestCollect_CleanTree(t *testing.T) {
	dir := setupTestRepo(t)
	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	assert.True(t, cs.Empty())
}

func TestCollect_DiscoveryOrder(t *testing.T) {
	dir := setupTestRepo(t)

	// Staged edit.
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { println(1) }\n"), 0o644)
	gitRun(t, dir, "git", "add", "main.go")
	// Unstaged edit.
	os.WriteFile(filepath.Join(dir, "util.go"), []byte("package main\n\nfunc helper() int { return 1 }\n"), 0o644)
	// Untracked file.
	os.WriteFile(filepath.Join(dir, "new.go"), []byte("package main\n"), 0o644)

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 3)

	assert.Equal(t, []string{"main.go", "util.go", "new.go"}, cs.Paths())
	assert.Equal(t, StatusModified, cs.Changes[0].Status)
	assert.True(t, cs.Changes[0].Staged)
	assert.Equal(t, StatusModified, cs.Changes[1].Status)
	assert.False(t, cs.Changes[1].Staged)
	assert.Equal(t, StatusUntracked, cs.Changes[2].Status)
}

func TestCollect_NoDuplicatePaths(t *testing.T) {
	dir := setupTestRepo(t)

	// Same file edited, staged, then edited again: shows up both staged
	// and unstaged, but must appear once with the staged entry winning.
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { println(1) }\n"), 0o644)
	gitRun(t, dir, "git", "add", "main.go")
	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { println(2) }\n"), 0o644)

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 1)
	assert.True(t, cs.Changes[0].Staged)
}

func TestCollect_PayloadKinds(t *testing.T) {
	dir := setupTestRepo(t)

	os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() { println(1) }\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("untracked content\n"), 0o644)

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 2)

	mod := cs.Changes[0]
	assert.Equal(t, "main.go", mod.Path)
	assert.Contains(t, mod.DiffText, "diff --git")
	assert.Empty(t, mod.FullContent)

	unt := cs.Changes[1]
	assert.Equal(t, "notes.txt", unt.Path)
	assert.Empty(t, unt.DiffText)
	assert.Equal(t, "untracked content\n", unt.FullContent)
}

func TestCollect_DeletedFile(t *testing.T) {
	dir := setupTestRepo(t)
	gitRun(t, dir, "git", "rm", "util.go")

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 1)
	assert.Equal(t, StatusDeleted, cs.Changes[0].Status)
	assert.Equal(t, "util.go", cs.Changes[0].Path)
}

func TestCollect_Rename(t *testing.T) {
	dir := setupTestRepo(t)
	gitRun(t, dir, "git", "mv", "util.go", "helpers.go")

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 1)

	fc := cs.Changes[0]
	assert.Equal(t, StatusRenamed, fc.Status)
	assert.Equal(t, "helpers.go", fc.Path)
	assert.Equal(t, "util.go", fc.OldPath)
	assert.NotEmpty(t, fc.Payload())
}

func TestCollect_BinaryUntracked(t *testing.T) {
	dir := setupTestRepo(t)
	os.WriteFile(filepath.Join(dir, "blob.bin"), []byte{0x00, 0x01, 0x02, 0xff, 0x00}, 0o644)

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 1)

	fc := cs.Changes[0]
	assert.True(t, fc.Binary)
	assert.Empty(t, fc.Payload())
	assert.Equal(t, int64(5), fc.SizeBytes)
}

func TestCollect_TooLarge(t *testing.T) {
	dir := setupTestRepo(t)
	big := strings.Repeat("x", 2*1024*1024) // 2MB
	os.WriteFile(filepath.Join(dir, "big.txt"), []byte(big), 0o644)

	cs, err := Collect(dir, Options{MaxFileSizeMB: 1})
	require.NoError(t, err)
	require.Len(t, cs.Changes, 1)

	fc := cs.Changes[0]
	assert.Equal(t, StatusTooLarge, fc.Status)
	assert.Empty(t, fc.Payload())
	assert.Equal(t, int64(len(big)), fc.SizeBytes)
}

func TestCollect_SymlinkEscapeExcluded(t *testing.T) {
	dir := setupTestRepo(t)

	outside := t.TempDir()
	os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("outside\n"), 0o644)
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	cs, err := Collect(dir, Options{})
	require.NoError(t, err)
	for _, fc := range cs.Changes {
		assert.NotEqual(t, "link.txt", fc.Path, "symlink escaping the root must be excluded")
	}
}

func TestWithinRoot(t *testing.T) {
	root := t.TempDir()
	root, _ = filepath.EvalSymlinks(root)

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"sub/dir/file.go", true},
		{"../outside.go", false},
		{"sub/../../outside.go", false},
		{"/etc/passwd", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withinRoot(root, tt.path), "path %q", tt.path)
	}
}

func TestParseNameStatus_Rename(t *testing.T) {
	out := "R100\x00old.go\x00new.go\x00M\x00other.go\x00"
	entries := parseNameStatus(out)
	require.Len(t, entries, 2)

	assert.Equal(t, byte('R'), entries[0].code)
	assert.Equal(t, "old.go", entries[0].oldPath)
	assert.Equal(t, "new.go", entries[0].path)
	assert.Equal(t, byte('M'), entries[1].code)
	assert.Equal(t, "other.go", entries[1].path)
}

func TestIsBinaryContent(t *testing.T) {
	assert.False(t, isBinaryContent([]byte("plain text\n")))
	assert.True(t, isBinaryContent([]byte{'a', 0x00, 'b'}))
	assert.False(t, isBinaryContent(nil))
}
