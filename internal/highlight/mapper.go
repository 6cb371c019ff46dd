// Package highlight converts byte-offset capture ranges into
// grapheme-cluster-aligned UTF-16 code-unit ranges. The matching engine
// indexes text by UTF-8 bytes; GUI toolkits index by UTF-16 code units, and
// a regex capture may start or end mid-grapheme (combining marks,
// multi-codepoint emoji). The mapper widens ranges outward to cluster
// boundaries so a renderer never splits a user-perceived character.
package highlight

import (
	"github.com/rivo/uniseg"
)

// surrogateSelf is the first code point needing a UTF-16 surrogate pair.
const surrogateSelf = 0x10000

// UnitRange is a half-open [Start, End) range in UTF-16 code units.
type UnitRange struct {
	Start int
	End   int
}

// Mapper computes grapheme-safe UTF-16 ranges for one string. Boundary and
// prefix-length computation is done once at construction, so mapping many
// capture ranges for the same entry text is cheap.
type Mapper struct {
	boundaries []int // grapheme boundary byte offsets, ascending, first 0, last len(s)
	units      []int // units[i] = UTF-16 code units in s[:boundaries[i]]
}

// NewMapper analyzes s and returns a mapper for it.
func NewMapper(s string) *Mapper {
	m := &Mapper{
		boundaries: []int{0},
		units:      []int{0},
	}
	pos := 0
	unitCount := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		cluster, tail, _, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		for _, r := range cluster {
			unitCount += utf16RuneLen(r)
		}
		pos += len(cluster)
		m.boundaries = append(m.boundaries, pos)
		m.units = append(m.units, unitCount)
		rest = tail
		state = newState
	}
	return m
}

// Map widens the byte range [start, end) outward to grapheme boundaries and
// returns the corresponding UTF-16 code-unit range. Out-of-bounds inputs
// are clamped to the string; an inverted range collapses to its start.
func (m *Mapper) Map(start, end int) UnitRange {
	max := m.boundaries[len(m.boundaries)-1]
	start = clamp(start, 0, max)
	end = clamp(end, 0, max)
	if end < start {
		end = start
	}

	// Widen start down to the boundary at or before it.
	si := searchBoundary(m.boundaries, start)
	if m.boundaries[si] > start {
		si--
	}
	// Widen end up to the boundary at or after it.
	ei := searchBoundary(m.boundaries, end)

	return UnitRange{Start: m.units[si], End: m.units[ei]}
}

// searchBoundary returns the index of the smallest boundary >= off.
func searchBoundary(boundaries []int, off int) int {
	lo, hi := 0, len(boundaries)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if boundaries[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// utf16RuneLen returns how many UTF-16 code units encode r. Invalid runes
// decode as U+FFFD, a single unit.
func utf16RuneLen(r rune) int {
	if r >= surrogateSelf {
		return 2
	}
	return 1
}
