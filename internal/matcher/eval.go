package matcher

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/standardbeagle/fsq/internal/pattern"
	"github.com/standardbeagle/fsq/internal/query"
)

// Meta is field-aware match metadata suitable for UI highlighting. A nil
// Field means the match was not scoped to a particular field. Ranges are
// sorted, non-overlapping byte offsets into the tested text.
type Meta struct {
	Field  *string
	Ranges []pattern.Range
}

// FieldName is a convenience for building Meta field pointers.
func FieldName(s string) *string { return &s }

// extensionSlice extracts the extension portion of the combined
// "name\npath" text: the substring of the name after its last dot.
// ok is false when the name has no dot.
func extensionSlice(text []byte) (ext []byte, offset int, ok bool) {
	name := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		name = text[:i]
	}
	dot := bytes.LastIndexByte(name, '.')
	if dot < 0 {
		return nil, 0, false
	}
	return name[dot+1:], dot + 1, true
}

// IsMatch evaluates the compiled tree against text. And/Or short-circuit so
// pattern evaluation is skipped whenever the outcome is already decided.
func (m *Matcher) IsMatch(c *Compiled, text []byte) bool {
	switch c.Kind {
	case CompiledLeaf:
		var res bool
		if c.Field == "extension" {
			// Scope to the extension of the name portion only.
			if ext, _, ok := extensionSlice(text); ok {
				res = c.Pat.IsMatch(ext)
			}
		} else {
			res = c.Pat.IsMatch(text)
		}
		if c.Negated {
			return !res
		}
		return res

	case CompiledCompare:
		return evalCompare(c, text)

	case CompiledRange:
		return evalRange(c, text)

	case CompiledFunction:
		if isSubstringFunc(c.FuncName) && len(c.Args) > 0 {
			return bytes.Contains(text, []byte(c.Args[0]))
		}
		return false

	case CompiledNot:
		return !m.IsMatch(c.Left, text)
	case CompiledAnd:
		return m.IsMatch(c.Left, text) && m.IsMatch(c.Right, text)
	case CompiledOr:
		return m.IsMatch(c.Left, text) || m.IsMatch(c.Right, text)
	default:
		return false
	}
}

// evalCompare tries a numeric comparison first and falls back to string
// semantics: lexicographic for ordering operators, substring for Contains,
// equality for Eq.
func evalCompare(c *Compiled, text []byte) bool {
	lhs, lok := parseNumber(text)
	rhs, rok := parseNumber([]byte(c.Value))
	if lok && rok {
		switch c.Op {
		case query.CompareEq:
			return lhs == rhs
		case query.CompareContains:
			return strings.Contains(strconv.FormatInt(lhs, 10), strconv.FormatInt(rhs, 10))
		case query.CompareSmaller:
			return lhs < rhs
		case query.CompareSmallerEq:
			return lhs <= rhs
		case query.CompareGreater:
			return lhs > rhs
		case query.CompareGreaterEq:
			return lhs >= rhs
		}
		return false
	}
	s := string(text)
	switch c.Op {
	case query.CompareEq:
		return s == c.Value
	case query.CompareContains:
		return strings.Contains(s, c.Value)
	case query.CompareSmaller:
		return s < c.Value
	case query.CompareSmallerEq:
		return s <= c.Value
	case query.CompareGreater:
		return s > c.Value
	case query.CompareGreaterEq:
		return s >= c.Value
	}
	return false
}

// evalRange conjoins each bound independently, numeric-first with a
// lexicographic fallback. A numeric subject ignores bounds whose values do
// not parse, matching the comparison policy.
func evalRange(c *Compiled, text []byte) bool {
	if v, ok := parseNumber(text); ok {
		result := true
		if c.Low.Kind != query.BoundUnbounded {
			if lv, ok := parseNumber([]byte(c.Low.Value)); ok {
				if c.Low.Kind == query.BoundInclusive {
					result = result && v >= lv
				} else {
					result = result && v > lv
				}
			}
		}
		if c.High.Kind != query.BoundUnbounded {
			if hv, ok := parseNumber([]byte(c.High.Value)); ok {
				if c.High.Kind == query.BoundInclusive {
					result = result && v <= hv
				} else {
					result = result && v < hv
				}
			}
		}
		return result
	}
	s := string(text)
	result := true
	switch c.Low.Kind {
	case query.BoundInclusive:
		result = result && s >= c.Low.Value
	case query.BoundExclusive:
		result = result && s > c.Low.Value
	}
	switch c.High.Kind {
	case query.BoundInclusive:
		result = result && s <= c.High.Value
	case query.BoundExclusive:
		result = result && s < c.High.Value
	}
	return result
}

// Captures returns capture ranges for leaf matches as byte offsets into
// text. For extension-scoped leaves the ranges are shifted so they remain
// valid indices into the combined text.
func (m *Matcher) Captures(c *Compiled, text []byte) []pattern.Range {
	switch c.Kind {
	case CompiledLeaf:
		if c.Field == "extension" {
			ext, offset, ok := extensionSlice(text)
			if !ok {
				return nil
			}
			ranges, ok := c.Pat.CaptureRanges(ext)
			if !ok {
				return nil
			}
			for i := range ranges {
				ranges[i].Start += offset
				ranges[i].End += offset
			}
			return ranges
		}
		ranges, _ := c.Pat.CaptureRanges(text)
		return ranges

	case CompiledCompare, CompiledRange:
		return nil

	case CompiledFunction:
		if isSubstringFunc(c.FuncName) && len(c.Args) > 0 {
			h, err := m.pool.Acquire(buildLiteralPattern(c.Args[0], nil))
			if err != nil {
				return nil
			}
			defer m.pool.Release(h)
			ranges, _ := h.CaptureRanges(text)
			return ranges
		}
		return nil

	case CompiledNot:
		return m.Captures(c.Left, text)

	case CompiledAnd:
		return append(m.Captures(c.Left, text), m.Captures(c.Right, text)...)

	case CompiledOr:
		if ranges := m.Captures(c.Left, text); len(ranges) > 0 {
			return ranges
		}
		return m.Captures(c.Right, text)

	default:
		return nil
	}
}

// CapturesMeta returns field-aware match metadata for the compiled tree.
//
// An extension-scoped leaf produces two entries: one tagged "name" carrying
// the real ranges (the extension bytes live inside the filename) and one
// tagged "extension" with empty ranges as a presence marker for a dedicated
// extension column. Compare/Range leaves produce one entry with their field
// and no ranges. Metadata entries lacking a field inherit the first field
// found anywhere in the combined subtree, left-to-right depth-first.
func (m *Matcher) CapturesMeta(c *Compiled, text []byte) []Meta {
	switch c.Kind {
	case CompiledLeaf:
		ranges := normalizeRanges(m.Captures(c, text))
		if len(ranges) == 0 {
			return nil
		}
		if c.Field == "extension" {
			return []Meta{
				{Field: FieldName("name"), Ranges: ranges},
				{Field: FieldName("extension")},
			}
		}
		var field *string
		if c.Field != "" {
			field = FieldName(c.Field)
		}
		return []Meta{{Field: field, Ranges: ranges}}

	case CompiledCompare, CompiledRange:
		var field *string
		if c.Field != "" {
			field = FieldName(c.Field)
		}
		return []Meta{{Field: field}}

	case CompiledFunction:
		ranges := normalizeRanges(m.Captures(c, text))
		if len(ranges) == 0 {
			return nil
		}
		return []Meta{{Ranges: ranges}}

	case CompiledNot:
		return nil

	case CompiledAnd:
		metas := append(m.CapturesMeta(c.Left, text), m.CapturesMeta(c.Right, text)...)
		m.inheritField(c, metas)
		return metas

	case CompiledOr:
		if metas := m.CapturesMeta(c.Left, text); len(metas) > 0 {
			return metas
		}
		metas := m.CapturesMeta(c.Right, text)
		m.inheritField(c, metas)
		return metas

	default:
		return nil
	}
}

// inheritField normalizes each entry's ranges and fills missing fields with
// the subtree's representative field, when one exists.
func (m *Matcher) inheritField(c *Compiled, metas []Meta) {
	inherited, ok := collectField(c)
	for i := range metas {
		metas[i].Ranges = normalizeRanges(metas[i].Ranges)
		if metas[i].Field == nil && ok {
			metas[i].Field = FieldName(inherited)
		}
	}
}

// collectField finds a representative field name in the subtree,
// left-to-right depth-first.
func collectField(c *Compiled) (string, bool) {
	if c == nil {
		return "", false
	}
	switch c.Kind {
	case CompiledLeaf, CompiledCompare, CompiledRange:
		if c.Field != "" {
			return c.Field, true
		}
		return "", false
	case CompiledFunction:
		return "", false
	case CompiledNot:
		return collectField(c.Left)
	case CompiledAnd, CompiledOr:
		if f, ok := collectField(c.Left); ok {
			return f, true
		}
		return collectField(c.Right)
	default:
		return "", false
	}
}

// normalizeRanges sorts ranges ascending and merges overlapping or adjacent
// pairs. The result is the canonical form handed to callers.
func normalizeRanges(ranges []pattern.Range) []pattern.Range {
	if len(ranges) == 0 {
		return ranges
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
		} else {
			out = append(out, r)
		}
	}
	return out
}

func isSubstringFunc(name string) bool {
	return strings.EqualFold(name, "contains") || strings.EqualFold(name, "exists")
}

// parseNumber parses a decimal signed integer from trimmed text. Values
// beyond int64 fall back to string comparison at the call sites.
func parseNumber(b []byte) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
