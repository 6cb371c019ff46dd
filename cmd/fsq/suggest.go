package main

import (
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"github.com/standardbeagle/fsq/internal/query"
)

// knownFields are the entry fields a query can scope to.
var knownFields = []string{"name", "path", "size", "mtime", "extension"}

// suggestThreshold is the minimum Jaro-Winkler similarity for a hint.
const suggestThreshold = 0.75

// unknownFields parses queryText and returns the field names it scopes to
// that are not known entry fields. A query that does not parse has no
// fields to check.
func unknownFields(queryText string) []string {
	ast, ok := query.NewParser(queryText).Parse()
	if !ok {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	collectUnknown(ast, seen, &out)
	return out
}

func collectUnknown(n *query.Node, seen map[string]bool, out *[]string) {
	if n == nil {
		return
	}
	switch n.Kind {
	case query.NodeField, query.NodeCompare, query.NodeRange:
		f := strings.ToLower(n.Field)
		if f != "" && !isKnownField(f) && !seen[f] {
			seen[f] = true
			*out = append(*out, n.Field)
		}
	}
	collectUnknown(n.Left, seen, out)
	collectUnknown(n.Right, seen, out)
}

func isKnownField(name string) bool {
	for _, f := range knownFields {
		if f == name {
			return true
		}
	}
	return false
}

// suggestField returns the known field most similar to name, when the
// similarity clears the threshold.
func suggestField(name string) (string, bool) {
	best := ""
	bestScore := float32(0)
	for _, f := range knownFields {
		score, err := edlib.StringsSimilarity(strings.ToLower(name), f, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = f
		}
	}
	if bestScore >= suggestThreshold {
		return best, true
	}
	return "", false
}
