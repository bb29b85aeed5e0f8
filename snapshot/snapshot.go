// Package snapshot defines the read-only worktree view the core fuzzy
// matcher consumes, plus reference adapters used by tests and the cmd/
// binaries. The core package pathmatch never constructs a Snapshot
// itself — worktree scanning is an external collaborator per spec.
package snapshot

import (
	"github.com/sourcegraph/fuzzymatch/charbag"
)

// FileEntry is a single file known to a Snapshot.
type FileEntry struct {
	// Path is the file's path relative to the worktree root.
	Path string
	// CharBag is the precomputed lowercase character multiset of Path.
	CharBag charbag.CharBag
}

// Snapshot is an immutable, point-in-time view of a worktree's file
// list. Iteration order must be stable across calls within one process
// lifetime so that PathMatcher's range-based sharding is deterministic.
type Snapshot interface {
	// ID is a stable identifier for the worktree this snapshot belongs to.
	ID() uint64
	// RootName is the worktree's root directory name, optionally
	// prepended to paths before scoring (see include_root_name).
	RootName() string
	// FileCount is the total number of files in the snapshot, including
	// ignored ones.
	FileCount() int
	// VisibleFileCount is the number of non-ignored files.
	VisibleFileCount() int
	// Files returns an iterator over all files (including ignored ones),
	// skipping the first offset entries in O(1) amortized time.
	Files(offset int) FileIterator
	// VisibleFiles returns an iterator over non-ignored files, skipping
	// the first offset entries in O(1) amortized time.
	VisibleFiles(offset int) FileIterator
}

// FileIterator yields FileEntry values one at a time.
type FileIterator interface {
	// Next advances the iterator and reports whether a value is
	// available via Entry.
	Next() bool
	// Entry returns the current entry. Only valid after Next returns true.
	Entry() FileEntry
}

