package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewEntryStatsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Report.TXT", "hello world")

	e := NewEntry(path)
	assert.Equal(t, "Report.TXT", e.Name)
	assert.Equal(t, path, e.Path)
	assert.Equal(t, int64(11), e.Size)
	assert.NotZero(t, e.Mtime)
	assert.Equal(t, "report.txt", e.Normalized)
	assert.NotZero(t, e.ID)
}

func TestNewEntryMissingFile(t *testing.T) {
	e := NewEntry("/no/such/file.txt")
	assert.Equal(t, "file.txt", e.Name)
	assert.Zero(t, e.Size)
	assert.Zero(t, e.Mtime)
	assert.NotZero(t, e.ID)
}

func TestEntryIDStableAcrossRebuilds(t *testing.T) {
	a := NewEntry("/some/path/a.txt")
	b := NewEntry("/some/path/a.txt")
	c := NewEntry("/some/path/b.txt")
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestEntryCombined(t *testing.T) {
	e := Entry{Name: "a.txt", Path: "/p/a.txt"}
	assert.Equal(t, "a.txt\n/p/a.txt", string(e.Combined()))
}

func TestNormalizeNameFoldsCompatibilityForms(t *testing.T) {
	// U+FB01 LATIN SMALL LIGATURE FI decomposes to "fi" under NFKC.
	assert.Equal(t, "file", NormalizeName("ﬁle"))
	// Fullwidth letters fold to their ASCII forms.
	assert.Equal(t, "abc", NormalizeName("ＡＢＣ"))
	assert.Equal(t, "notes.md", NormalizeName("Notes.MD"))
}

func TestSnapshotResolvesIDCollisions(t *testing.T) {
	entries := []Entry{
		{ID: 7, Name: "a"},
		{ID: 7, Name: "b"},
		{ID: 8, Name: "c"},
	}
	snap := NewSnapshot(entries)

	seen := make(map[uint64]bool)
	for _, e := range snap.Entries() {
		assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
	}
	assert.Equal(t, 3, snap.Len())
	// Input slice is not mutated.
	assert.Equal(t, uint64(7), entries[1].ID)
}

func TestSnapshotNilSafe(t *testing.T) {
	var snap *Snapshot
	assert.Zero(t, snap.Len())
	assert.Nil(t, snap.Entries())
}

func TestBuilderWalksAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", "package main")
	writeFile(t, dir, "src/util.go", "package main")
	writeFile(t, dir, "docs/readme.md", "# hi")
	writeFile(t, dir, "vendor/dep/dep.go", "package dep")

	snap, err := NewBuilder([]string{dir}).
		Include("**/*.go").
		Exclude("vendor/**").
		Build()
	require.NoError(t, err)

	var names []string
	for _, e := range snap.Entries() {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"main.go", "util.go"}, names)
}

func TestBuilderExcludePrunesDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep/a.txt", "a")
	writeFile(t, dir, "skip/b.txt", "b")

	snap, err := NewBuilder([]string{dir}).Exclude("skip").Build()
	require.NoError(t, err)

	require.Equal(t, 1, snap.Len())
	assert.Equal(t, "a.txt", snap.Entries()[0].Name)
}

func TestBuilderEmptyIncludeAdmitsEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "b.md", "b")

	snap, err := NewBuilder([]string{dir}).Build()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
}

func TestBuilderMissingRootFails(t *testing.T) {
	_, err := NewBuilder([]string{filepath.Join(t.TempDir(), "gone")}).Build()
	require.Error(t, err)
}

func TestBuildFromPaths(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "one.txt", "1")
	p2 := writeFile(t, dir, "two.txt", "22")

	snap := BuildFromPaths([]string{p1, p2})
	require.Equal(t, 2, snap.Len())
	assert.Equal(t, "one.txt", snap.Entries()[0].Name)
	assert.Equal(t, int64(2), snap.Entries()[1].Size)
}
