package config

import (
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
)

// LoadKDL loads configuration from .fsq.kdl in dir. A missing file yields
// the defaults; a file that exists but cannot be parsed is an error.
func LoadKDL(dir string) (*Config, error) {
	path := filepath.Join(dir, kdlFileName)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fsqerrors.NewConfigError(kdlFileName, path, err)
	}

	cfg := DefaultConfig()
	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fsqerrors.NewConfigError(kdlFileName, path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.Workers = v
					}
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				}
			}
		case "pool":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_idle_per_shard" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Pool.MaxIdlePerShard = v
					}
				}
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Index.Roots = []string{s}
					}
				case "roots":
					if roots := collectStringArgs(cn); len(roots) > 0 {
						cfg.Index.Roots = roots
					}
				case "include":
					cfg.Index.Include = append(cfg.Index.Include, collectStringArgs(cn)...)
				case "exclude":
					cfg.Index.Exclude = append(cfg.Index.Exclude, collectStringArgs(cn)...)
				}
			}
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

// collectStringArgs gathers string values from inline arguments or, for
// block form like `exclude { "vendor/**" }`, from child nodes whose name
// carries the value.
func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
