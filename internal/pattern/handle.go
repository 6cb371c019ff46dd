package pattern

import "regexp"

// Range is a half-open [Start, End) byte-offset pair into matched text.
type Range struct {
	Start int
	End   int
}

// Handle is a shareable reference to a compiled pattern owned by a Pool.
// Go's regexp is safe for concurrent use, so one compiled program serves
// any number of search workers simultaneously. A Handle stays valid until
// released back to the pool by every holder.
type Handle struct {
	key string
	re  *regexp.Regexp
}

// Pattern returns the pattern text this handle was compiled from.
func (h *Handle) Pattern() string {
	return h.key
}

// IsMatch reports whether the pattern matches anywhere in text.
func (h *Handle) IsMatch(text []byte) bool {
	return h.re.Match(text)
}

// CaptureRanges returns the byte-offset ranges of the leftmost match:
// group 0 is the whole match, followed by each capturing group that
// participated in the match. ok is false when the pattern does not match.
func (h *Handle) CaptureRanges(text []byte) ([]Range, bool) {
	m := h.re.FindSubmatchIndex(text)
	if m == nil {
		return nil, false
	}
	ranges := make([]Range, 0, len(m)/2)
	for i := 0; i < len(m); i += 2 {
		if m[i] < 0 {
			// group did not participate in the match
			continue
		}
		ranges = append(ranges, Range{Start: m[i], End: m[i+1]})
	}
	return ranges, true
}
