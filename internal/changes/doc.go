// Package changes collects pending edits from a git working tree into a
// normalized [ChangeSet].
//
// Collection shells out to git (diff --name-status, ls-files) and walks
// three sources in a fixed discovery order: staged changes, unstaged
// changes, untracked files. Each file appears at most once; staged entries
// win over unstaged ones for the same path.
//
// Binary files are recorded with status and size only and never carry a
// textual payload. Files over the configured size ceiling are listed with
// status tooLarge and likewise carry no payload. Candidate paths whose
// symlink-resolved form escapes the repository root are silently excluded.
package changes
