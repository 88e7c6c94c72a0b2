package changes

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotARepository is returned when the target path is not inside a git
// working tree. It aborts the whole run; there is nothing to analyze.
var ErrNotARepository = errors.New("not a git repository")

// Options controls a collection pass.
type Options struct {
	// MaxFileSizeMB is the per-file payload ceiling. Files over it are
	// recorded with StatusTooLarge and no payload. Zero means no ceiling.
	MaxFileSizeMB float64
}

func (o Options) maxFileBytes() int64 {
	if o.MaxFileSizeMB <= 0 {
		return 0
	}
	return int64(o.MaxFileSizeMB * 1024 * 1024)
}

// Collect reads the repository's index and working tree and returns a
// normalized ChangeSet: staged entries first, then unstaged, then
// untracked. Per-file read failures exclude that file and continue; only
// an invalid repository aborts.
func Collect(repoRoot string, opts Options) (*ChangeSet, error) {
	root, err := resolveRoot(repoRoot)
	if err != nil {
		return nil, err
	}

	cs := &ChangeSet{Root: root}
	seen := make(map[string]bool)

	add := func(fc FileChange) {
		if seen[fc.Path] {
			return
		}
		if !withinRoot(root, fc.Path) {
			return
		}
		seen[fc.Path] = true
		cs.Changes = append(cs.Changes, fc)
	}

	staged, err := nameStatus(root, true)
	if err != nil {
		return nil, fmt.Errorf("reading staged changes: %w", err)
	}
	for _, e := range staged {
		add(buildTracked(root, e, true, opts))
	}

	unstaged, err := nameStatus(root, false)
	if err != nil {
		return nil, fmt.Errorf("reading unstaged changes: %w", err)
	}
	for _, e := range unstaged {
		add(buildTracked(root, e, false, opts))
	}

	untracked, err := untrackedFiles(root)
	if err != nil {
		return nil, fmt.Errorf("listing untracked files: %w", err)
	}
	for _, path := range untracked {
		fc, ok := buildUntracked(root, path, opts)
		if !ok {
			continue // unreadable; excluded per-file
		}
		add(fc)
	}

	return cs, nil
}

// resolveRoot validates repoRoot and returns the symlink-resolved toplevel.
func resolveRoot(repoRoot string) (string, error) {
	out, err := gitOutput(repoRoot, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotARepository, repoRoot)
	}
	root := strings.TrimSpace(out)
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return root, nil
	}
	return resolved, nil
}

// withinRoot reports whether path, resolved against root (symlinks
// included), is a descendant of root. Escaping paths are silently
// excluded from collection, never surfaced as errors.
func withinRoot(root, path string) bool {
	if filepath.IsAbs(path) {
		return false
	}
	joined := filepath.Join(root, path)

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		// Deleted files can't be resolved; fall back to a lexical check.
		resolved = filepath.Clean(joined)
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// statusEntry is one parsed line of git diff --name-status output.
type statusEntry struct {
	code    byte
	path    string
	oldPath string
}

// nameStatus lists changed files. staged=true compares index vs HEAD,
// staged=false compares working tree vs index.
func nameStatus(root string, staged bool) ([]statusEntry, error) {
	args := []string{"diff", "--name-status", "--find-renames", "-z"}
	if staged {
		args = append(args, "--cached")
	}
	out, err := gitOutput(root, args...)
	if err != nil {
		// A repository with no commits has no HEAD to diff against; the
		// index contents still show up as untracked-style additions.
		if staged && !hasHead(root) {
			return stagedWithoutHead(root)
		}
		return nil, err
	}
	return parseNameStatus(out), nil
}

// parseNameStatus parses NUL-delimited --name-status output. Rename
// records consume two path fields (old, then new).
func parseNameStatus(out string) []statusEntry {
	fields := strings.Split(out, "\x00")
	var entries []statusEntry
	for i := 0; i < len(fields); i++ {
		code := strings.TrimSpace(fields[i])
		if code == "" {
			continue
		}
		switch code[0] {
		case 'R', 'C':
			if i+2 >= len(fields) {
				return entries
			}
			entries = append(entries, statusEntry{
				code:    code[0],
				oldPath: fields[i+1],
				path:    fields[i+2],
			})
			i += 2
		default:
			if i+1 >= len(fields) {
				return entries
			}
			entries = append(entries, statusEntry{
				code: code[0],
				path: fields[i+1],
			})
			i++
		}
	}
	return entries
}

// hasHead reports whether the repository has at least one commit.
func hasHead(root string) bool {
	_, err := gitOutput(root, "rev-parse", "--verify", "HEAD")
	return err == nil
}

// stagedWithoutHead lists everything in the index of a fresh repository
// as added entries.
func stagedWithoutHead(root string) ([]statusEntry, error) {
	out, err := gitOutput(root, "ls-files", "--cached", "-z")
	if err != nil {
		return nil, err
	}
	var entries []statusEntry
	for _, path := range strings.Split(out, "\x00") {
		if path == "" {
			continue
		}
		entries = append(entries, statusEntry{code: 'A', path: path})
	}
	return entries, nil
}

func untrackedFiles(root string) ([]string, error) {
	out, err := gitOutput(root, "ls-files", "--others", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

func buildTracked(root string, e statusEntry, staged bool, opts Options) FileChange {
	fc := FileChange{
		Path:    e.path,
		OldPath: e.oldPath,
		Staged:  staged,
	}
	switch e.code {
	case 'A':
		fc.Status = StatusAdded
	case 'D':
		fc.Status = StatusDeleted
	case 'R':
		fc.Status = StatusRenamed
	default:
		fc.Status = StatusModified
	}

	fc.SizeBytes = fileSize(root, e.path)
	if max := opts.maxFileBytes(); max > 0 && fc.SizeBytes > max && fc.Status != StatusDeleted {
		fc.Status = StatusTooLarge
		return fc
	}

	if isBinaryDiff(root, e.path, staged) {
		fc.Binary = true
		return fc
	}

	fc.DiffText = fileDiff(root, e.path, e.oldPath, staged)
	if fc.DiffText == "" && fc.Status == StatusRenamed {
		fc.DiffText = fmt.Sprintf("Renamed: %s -> %s\n", e.oldPath, e.path)
	}
	return fc
}

func buildUntracked(root, path string, opts Options) (FileChange, bool) {
	fc := FileChange{
		Path:   path,
		Status: StatusUntracked,
	}

	full := filepath.Join(root, path)
	info, err := os.Stat(full)
	if err != nil {
		return FileChange{}, false
	}
	fc.SizeBytes = info.Size()

	if max := opts.maxFileBytes(); max > 0 && fc.SizeBytes > max {
		fc.Status = StatusTooLarge
		return fc, true
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return FileChange{}, false
	}
	if isBinaryContent(data) {
		fc.Binary = true
		return fc, true
	}

	fc.FullContent = string(data)
	return fc, true
}

// fileDiff returns the unified diff for one tracked file.
func fileDiff(root, path, oldPath string, staged bool) string {
	args := []string{"diff", "--find-renames"}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--")
	if oldPath != "" {
		args = append(args, oldPath)
	}
	args = append(args, path)

	out, err := gitOutput(root, args...)
	if err != nil {
		return ""
	}
	return out
}

// isBinaryDiff detects binary files via git's numstat marker ("-\t-\t").
func isBinaryDiff(root, path string, staged bool) bool {
	args := []string{"diff", "--numstat"}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--", path)
	out, err := gitOutput(root, args...)
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(out), "-\t-\t")
}

// isBinaryContent applies git's own heuristic: a NUL byte in the first 8000
// bytes marks the file as binary.
func isBinaryContent(data []byte) bool {
	probe := data
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	for _, b := range probe {
		if b == 0 {
			return true
		}
	}
	return false
}

func fileSize(root, path string) int64 {
	info, err := os.Stat(filepath.Join(root, path))
	if err != nil {
		return 0
	}
	return info.Size()
}

func gitOutput(root string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
