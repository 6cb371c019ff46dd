// Package config loads fsq configuration from .fsq.kdl or .fsq.toml in a
// directory. KDL is the primary format; TOML is accepted as an alternative.
// Missing files are not an error - defaults apply and CLI flags override.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
)

const (
	// DefaultMaxResults caps how many results the CLI prints per search.
	DefaultMaxResults = 1000

	// DefaultMaxIdlePerShard bounds idle compiled patterns kept per pool
	// shard.
	DefaultMaxIdlePerShard = 64

	kdlFileName  = ".fsq.kdl"
	tomlFileName = ".fsq.toml"
)

// Config is the complete fsq configuration.
type Config struct {
	Search SearchConfig
	Pool   PoolConfig
	Index  IndexConfig
}

// SearchConfig controls the orchestrator.
type SearchConfig struct {
	// Workers bounds per-search entry fan-out; 0 means GOMAXPROCS.
	Workers int
	// MaxResults caps results delivered to the CLI; 0 means unlimited.
	MaxResults int
}

// PoolConfig controls the pattern pool.
type PoolConfig struct {
	// MaxIdlePerShard bounds unreferenced compiled patterns kept per
	// shard; 0 means the pool default.
	MaxIdlePerShard int
}

// IndexConfig controls snapshot building.
type IndexConfig struct {
	Roots   []string
	Include []string
	Exclude []string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Workers:    0,
			MaxResults: DefaultMaxResults,
		},
		Pool: PoolConfig{
			MaxIdlePerShard: DefaultMaxIdlePerShard,
		},
		Index: IndexConfig{
			Roots: []string{"."},
		},
	}
}

// Load reads configuration from dir, preferring .fsq.kdl over .fsq.toml.
// When neither exists the defaults are returned.
func Load(dir string) (*Config, error) {
	if _, err := os.Stat(filepath.Join(dir, kdlFileName)); err == nil {
		return LoadKDL(dir)
	}
	if _, err := os.Stat(filepath.Join(dir, tomlFileName)); err == nil {
		return LoadTOML(dir)
	}
	return DefaultConfig(), nil
}

// Validate rejects values outside their meaningful ranges.
func (c *Config) Validate() error {
	if c.Search.Workers < 0 {
		return fsqerrors.NewConfigError("search.workers", strconv.Itoa(c.Search.Workers), nil)
	}
	if c.Search.MaxResults < 0 {
		return fsqerrors.NewConfigError("search.max_results", strconv.Itoa(c.Search.MaxResults), nil)
	}
	if c.Pool.MaxIdlePerShard < 0 {
		return fsqerrors.NewConfigError("pool.max_idle_per_shard", strconv.Itoa(c.Pool.MaxIdlePerShard), nil)
	}
	if len(c.Index.Roots) == 0 {
		return fsqerrors.NewConfigError("index.roots", "", nil)
	}
	return nil
}
