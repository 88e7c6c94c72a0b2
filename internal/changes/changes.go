package changes

// Status classifies a single file's pending change.
type Status string

const (
	StatusAdded     Status = "added"
	StatusModified  Status = "modified"
	StatusDeleted   Status = "deleted"
	StatusUntracked Status = "untracked"
	StatusRenamed   Status = "renamed"
	// StatusTooLarge marks files over the configured size ceiling. They are
	// listed in the ChangeSet but carry no diff or content payload.
	StatusTooLarge Status = "tooLarge"
)

// FileChange is one file's delta. Constructed fresh on every collection
// pass and never mutated afterwards. DiffText and FullContent are mutually
// exclusive: tracked changes carry a diff, untracked files carry content,
// binary and tooLarge entries carry neither.
type FileChange struct {
	Path        string
	OldPath     string // set for renames
	Status      Status
	Staged      bool
	Binary      bool
	DiffText    string
	FullContent string
	SizeBytes   int64
}

// Payload returns the textual payload to summarize: the diff for tracked
// changes, the full content for untracked files, empty for binary or
// oversized entries.
func (fc FileChange) Payload() string {
	if fc.DiffText != "" {
		return fc.DiffText
	}
	return fc.FullContent
}

// ChangeSet is an ordered sequence of FileChange entries. Insertion order
// is discovery order: staged, then unstaged, then untracked. A path appears
// at most once; when a file has both staged and unstaged edits the staged
// entry wins and its diff covers both (collected against HEAD).
type ChangeSet struct {
	Root    string
	Changes []FileChange
}

// Empty reports whether the set has no changes at all.
func (cs *ChangeSet) Empty() bool {
	return cs == nil || len(cs.Changes) == 0
}

// Paths returns the changed paths in discovery order.
func (cs *ChangeSet) Paths() []string {
	if cs == nil {
		return nil
	}
	paths := make([]string, 0, len(cs.Changes))
	for _, fc := range cs.Changes {
		paths = append(paths, fc.Path)
	}
	return paths
}

// TotalSizeBytes returns the summed payload sizes of all entries.
func (cs *ChangeSet) TotalSizeBytes() int64 {
	if cs == nil {
		return 0
	}
	var total int64
	for _, fc := range cs.Changes {
		total += fc.SizeBytes
	}
	return total
}
