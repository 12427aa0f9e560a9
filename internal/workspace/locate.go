package workspace

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// FindEnclosingWorkspace walks from start up to the filesystem root and
// returns the closest directory holding the metadata marker. A directory that
// cannot be inspected is treated as unmarked.
func (s *Store) FindEnclosingWorkspace(start string) (string, bool) {
	dir := absClean(start)
	for {
		if ok, _ := afero.DirExists(s.fs, MetadataRoot(dir)); ok {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// FindEnclosingProfile reports which profile a parallel build directory
// belongs to. start must lie below the root of the workspace that hint (or
// start, when hint is empty) resolves to. The path component directly under
// that root is returned when it names a registered profile.
func (s *Store) FindEnclosingProfile(start, hint string) (string, bool, error) {
	start = absClean(start)
	enclosing, ok := s.FindEnclosingWorkspace(start)
	if !ok {
		return "", false, nil
	}
	if hint == "" {
		hint = start
	}
	expected, ok := s.FindEnclosingWorkspace(hint)
	if !ok || expected != enclosing || enclosing == start {
		return "", false, nil
	}

	rel, err := filepath.Rel(enclosing, start)
	if err != nil {
		return "", false, nil
	}
	candidate, _, _ := strings.Cut(filepath.ToSlash(rel), "/")

	registered, err := s.ProfileExists(enclosing, candidate)
	if err != nil || !registered {
		return "", false, err
	}
	return candidate, true, nil
}
