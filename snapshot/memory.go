package snapshot

import "github.com/sourcegraph/fuzzymatch/charbag"

// InMemory is a slice-backed Snapshot for tests and small worktrees. All
// entries are considered visible; Ignore marks a subset as not visible
// (e.g. vendored or build-output paths), mirroring include_ignored.
type InMemory struct {
	id       uint64
	rootName string
	entries  []FileEntry
	ignored  map[string]bool
}

// NewInMemory builds an InMemory snapshot from relative paths. CharBag
// values are computed from the lowercased path.
func NewInMemory(id uint64, rootName string, paths []string) *InMemory {
	s := &InMemory{id: id, rootName: rootName, ignored: map[string]bool{}}
	for _, p := range paths {
		s.entries = append(s.entries, FileEntry{
			Path:    p,
			CharBag: charbag.FromString(lowercaseASCII(p)),
		})
	}
	return s
}

// Ignore marks p as ignored: it is included by Files but excluded by
// VisibleFiles.
func (s *InMemory) Ignore(p string) {
	s.ignored[p] = true
}

func (s *InMemory) ID() uint64        { return s.id }
func (s *InMemory) RootName() string  { return s.rootName }
func (s *InMemory) FileCount() int    { return len(s.entries) }
func (s *InMemory) VisibleFileCount() int {
	n := 0
	for _, e := range s.entries {
		if !s.ignored[e.Path] {
			n++
		}
	}
	return n
}

func (s *InMemory) Files(offset int) FileIterator {
	if offset > len(s.entries) {
		offset = len(s.entries)
	}
	return &sliceIterator{entries: s.entries[offset:], idx: -1}
}

func (s *InMemory) VisibleFiles(offset int) FileIterator {
	visible := make([]FileEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !s.ignored[e.Path] {
			visible = append(visible, e)
		}
	}
	if offset > len(visible) {
		offset = len(visible)
	}
	return &sliceIterator{entries: visible[offset:], idx: -1}
}

type sliceIterator struct {
	entries []FileEntry
	idx     int
}

func (it *sliceIterator) Next() bool {
	it.idx++
	return it.idx < len(it.entries)
}

func (it *sliceIterator) Entry() FileEntry {
	return it.entries[it.idx]
}

func lowercaseASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
