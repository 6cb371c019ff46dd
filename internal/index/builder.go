package index

import (
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
)

// Builder walks filesystem roots and collects entries into a snapshot.
// Include and exclude patterns are doublestar globs matched against the
// slash-separated path relative to the walked root. Excludes win over
// includes; an empty include list admits everything.
type Builder struct {
	roots    []string
	includes []string
	excludes []string
}

// NewBuilder creates a builder for the given roots.
func NewBuilder(roots []string) *Builder {
	return &Builder{roots: roots}
}

// Include adds include glob patterns.
func (b *Builder) Include(patterns ...string) *Builder {
	b.includes = append(b.includes, patterns...)
	return b
}

// Exclude adds exclude glob patterns.
func (b *Builder) Exclude(patterns ...string) *Builder {
	b.excludes = append(b.excludes, patterns...)
	return b
}

// Build walks every root and returns the resulting snapshot. Unreadable
// directories are skipped rather than failing the whole walk; a root that
// does not exist is an error.
func (b *Builder) Build() (*Snapshot, error) {
	var entries []Entry
	for _, root := range b.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && b.excluded(relSlash(root, path)) {
					return fs.SkipDir
				}
				return nil
			}
			rel := relSlash(root, path)
			if b.excluded(rel) || !b.included(rel) {
				return nil
			}
			entries = append(entries, NewEntry(path))
			return nil
		})
		if err != nil {
			return nil, fsqerrors.NewSearchError("index build", root, err)
		}
	}
	return NewSnapshot(entries), nil
}

// BuildFromPaths constructs a snapshot directly from explicit paths,
// bypassing the walk. Used when the caller already knows the entry set.
func BuildFromPaths(paths []string) *Snapshot {
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, NewEntry(p))
	}
	return NewSnapshot(entries)
}

func (b *Builder) included(rel string) bool {
	if len(b.includes) == 0 {
		return true
	}
	for _, pat := range b.includes {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (b *Builder) excluded(rel string) bool {
	for _, pat := range b.excludes {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
