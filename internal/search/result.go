package search

import (
	"encoding/json"

	"github.com/standardbeagle/fsq/internal/highlight"
	"github.com/standardbeagle/fsq/internal/index"
	"github.com/standardbeagle/fsq/internal/matcher"
)

// Result is one match record. Highlights is the JSON serialization of the
// entry's highlight metadata: a sequence of {field, ranges} objects whose
// ranges are [start,end) pairs in UTF-16 code units over the rendered
// field text. Fallback matches carry an empty highlight list.
type Result struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	Mtime      int64  `json:"mtime"`
	Highlights string `json:"highlights"`
}

// Highlight is one serialized metadata entry. A nil Field serializes as
// JSON null, meaning the match was not scoped to a particular field.
type Highlight struct {
	Field  *string  `json:"field"`
	Ranges [][2]int `json:"ranges"`
}

const emptyHighlights = "[]"

// newResult builds a result record for entry with the given serialized
// highlights.
func newResult(e index.Entry, highlights string) Result {
	return Result{
		ID:         e.ID,
		Name:       e.Name,
		Path:       e.Path,
		Size:       e.Size,
		Mtime:      e.Mtime,
		Highlights: highlights,
	}
}

// serializeHighlights converts capture metadata for combined into the
// result record's highlight JSON. Byte ranges are widened to grapheme
// boundaries and converted to UTF-16 code units before serialization.
func serializeHighlights(metas []matcher.Meta, combined []byte) string {
	if len(metas) == 0 {
		return emptyHighlights
	}
	mapper := highlight.NewMapper(string(combined))
	out := make([]Highlight, 0, len(metas))
	for _, meta := range metas {
		h := Highlight{Field: meta.Field, Ranges: [][2]int{}}
		for _, r := range meta.Ranges {
			u := mapper.Map(r.Start, r.End)
			h.Ranges = append(h.Ranges, [2]int{u.Start, u.End})
		}
		out = append(out, h)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return emptyHighlights
	}
	return string(data)
}
