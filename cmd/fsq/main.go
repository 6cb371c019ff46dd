package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/fsq/internal/config"
	"github.com/standardbeagle/fsq/internal/debug"
	"github.com/standardbeagle/fsq/internal/index"
	"github.com/standardbeagle/fsq/internal/pattern"
	"github.com/standardbeagle/fsq/internal/search"
	"github.com/standardbeagle/fsq/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	dir := c.String("config-dir")
	if dir == "" {
		dir = "."
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", dir, err)
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Index.Roots = []string{absRoot}
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Index.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Index.Exclude = append(cfg.Index.Exclude, excludeFlags...)
	}
	if c.IsSet("workers") {
		cfg.Search.Workers = c.Int("workers")
	}
	if c.IsSet("max-results") {
		cfg.Search.MaxResults = c.Int("max-results")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSnapshot(cfg *config.Config) (*index.Snapshot, error) {
	return index.NewBuilder(cfg.Index.Roots).
		Include(cfg.Index.Include...).
		Exclude(cfg.Index.Exclude...).
		Build()
}

func main() {
	app := &cli.App{
		Name:                   "fsq",
		Usage:                  "Query-driven file search over filesystem snapshots",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"c"},
				Usage:   "Directory containing .fsq.kdl or .fsq.toml",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Root directory to index (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude 'vendor/**')",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				os.Setenv("DEBUG", "1")
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Search the snapshot with a query expression",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Emit results as JSON lines",
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Stop after this many results (0 = unlimited)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Entry evaluation fan-out width (0 = GOMAXPROCS)",
					},
				},
				Action: searchCommand,
			},
			{
				Name:   "list",
				Usage:  "List the entries the snapshot would contain",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Emit entries as JSON lines",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fsq: %v\n", err)
		os.Exit(1)
	}
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: fsq search <query>", 2)
	}
	queryText := c.Args().First()

	asJSON := c.Bool("json")
	if asJSON {
		debug.SetQuietMode(true)
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	snap, err := buildSnapshot(cfg)
	if err != nil {
		return err
	}
	debug.LogIndex("snapshot built: %d entries\n", snap.Len())

	// Advisory only: a typo'd field still runs (as a substring of the
	// combined text), so a hint beats an error here.
	for _, field := range unknownFields(queryText) {
		if hint, ok := suggestField(field); ok {
			fmt.Fprintf(c.App.ErrWriter, "fsq: unknown field %q (did you mean %q?)\n", field, hint)
		} else {
			fmt.Fprintf(c.App.ErrWriter, "fsq: unknown field %q\n", field)
		}
	}

	pool := pattern.NewPool(cfg.Pool.MaxIdlePerShard)
	orch := search.NewOrchestrator(pool, cfg.Search.Workers)
	defer orch.ShutdownAll()

	handle := orch.StartSearch(snap, queryText)
	enc := json.NewEncoder(c.App.Writer)

	printed := 0
	for orch.Active(handle) {
		for _, r := range orch.PollResults(handle) {
			if cfg.Search.MaxResults > 0 && printed >= cfg.Search.MaxResults {
				orch.CancelSearch(handle)
				return nil
			}
			if asJSON {
				if err := enc.Encode(r); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", r.Name, r.Path)
			}
			printed++
		}
		time.Sleep(2 * time.Millisecond)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	if c.Bool("json") {
		debug.SetQuietMode(true)
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	snap, err := buildSnapshot(cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	for _, e := range snap.Entries() {
		if c.Bool("json") {
			rec := map[string]interface{}{
				"id":    e.ID,
				"name":  e.Name,
				"path":  e.Path,
				"size":  e.Size,
				"mtime": e.Mtime,
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(c.App.Writer, "%s\t%s\t%d\n", e.Name, e.Path, e.Size)
		}
	}
	return nil
}
