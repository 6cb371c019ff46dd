// Package index provides the searchable entry model and a filesystem
// builder that produces immutable snapshots for the search pipeline.
package index

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// Entry is one searchable file. Normalized holds the NFKC-folded,
// lowercased name used by the substring fallback path; regular query
// matching runs over the raw combined text instead.
type Entry struct {
	ID         uint64
	Name       string
	Path       string
	Size       int64
	Mtime      int64 // unix seconds, 0 when the file cannot be statted
	Normalized string
}

// NewEntry builds an entry for path. The ID is the xxhash64 of the path,
// stable across rebuilds. A file that cannot be statted still yields a
// valid entry with zero size and mtime, so stale index input never aborts
// a search.
func NewEntry(path string) Entry {
	name := filepath.Base(path)
	e := Entry{
		ID:         xxhash.Sum64String(path),
		Name:       name,
		Path:       path,
		Normalized: NormalizeName(name),
	}
	if info, err := os.Stat(path); err == nil {
		e.Size = info.Size()
		e.Mtime = info.ModTime().Unix()
	}
	return e
}

// Combined returns the text the matcher evaluates per entry: the name and
// the path joined by a newline. The newline cannot occur in either part,
// so field scoping can split on it unambiguously.
func (e Entry) Combined() []byte {
	b := make([]byte, 0, len(e.Name)+1+len(e.Path))
	b = append(b, e.Name...)
	b = append(b, '\n')
	b = append(b, e.Path...)
	return b
}

// NormalizeName folds s to NFKC and lowercases it.
func NormalizeName(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
