package snapshot

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/sourcegraph/fuzzymatch/charbag"
)

// FSSnapshot is a reference Snapshot implementation backed by a real
// directory tree, walked once at construction time with godirwalk. It is
// not used by package pathmatch or xmledit; it exists so cmd/fuzzyfind
// has something concrete to search, and so the gobwas/glob ignore-pattern
// matching the teacher's pathmatch package exercises has a home here.
type FSSnapshot struct {
	id       uint64
	rootName string
	all      []FileEntry // sorted, stable order
	visible  []FileEntry // subset of all not matched by any ignore glob
}

// NewFSSnapshot walks root and classifies every regular file found.
// ignoreGlobs are gitignore-style glob patterns (e.g. "*.log",
// "vendor/**") matched against the file's root-relative path.
func NewFSSnapshot(id uint64, root string, ignoreGlobs []string) (*FSSnapshot, error) {
	compiled := make([]glob.Glob, 0, len(ignoreGlobs))
	for _, pattern := range ignoreGlobs {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "compiling ignore pattern %q", pattern)
		}
		compiled = append(compiled, g)
	}

	s := &FSSnapshot{id: id, rootName: filepath.Base(filepath.Clean(root))}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, osPathname)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			entry := FileEntry{
				Path:    rel,
				CharBag: charbag.FromString(strings.ToLower(rel)),
			}
			s.all = append(s.all, entry)
			ignored := false
			for _, g := range compiled {
				if g.Match(rel) {
					ignored = true
					break
				}
			}
			if !ignored {
				s.visible = append(s.visible, entry)
			}
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}

	sort.Slice(s.all, func(i, j int) bool { return s.all[i].Path < s.all[j].Path })
	sort.Slice(s.visible, func(i, j int) bool { return s.visible[i].Path < s.visible[j].Path })

	return s, nil
}

func (s *FSSnapshot) ID() uint64       { return s.id }
func (s *FSSnapshot) RootName() string { return s.rootName }
func (s *FSSnapshot) FileCount() int   { return len(s.all) }
func (s *FSSnapshot) VisibleFileCount() int {
	return len(s.visible)
}

func (s *FSSnapshot) Files(offset int) FileIterator {
	if offset > len(s.all) {
		offset = len(s.all)
	}
	return &sliceIterator{entries: s.all[offset:], idx: -1}
}

func (s *FSSnapshot) VisibleFiles(offset int) FileIterator {
	if offset > len(s.visible) {
		offset = len(s.visible)
	}
	return &sliceIterator{entries: s.visible[offset:], idx: -1}
}
