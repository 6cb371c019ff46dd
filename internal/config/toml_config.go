package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
)

// tomlConfig mirrors Config with TOML field tags. Pointer fields
// distinguish "absent" from "zero" so file values only override what they
// actually set.
type tomlConfig struct {
	Search struct {
		Workers    *int `toml:"workers"`
		MaxResults *int `toml:"max_results"`
	} `toml:"search"`
	Pool struct {
		MaxIdlePerShard *int `toml:"max_idle_per_shard"`
	} `toml:"pool"`
	Index struct {
		Roots   []string `toml:"roots"`
		Include []string `toml:"include"`
		Exclude []string `toml:"exclude"`
	} `toml:"index"`
}

// LoadTOML loads configuration from .fsq.toml in dir. A missing file
// yields the defaults; a file that exists but cannot be parsed is an
// error.
func LoadTOML(dir string) (*Config, error) {
	path := filepath.Join(dir, tomlFileName)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fsqerrors.NewConfigError(tomlFileName, path, err)
	}

	var file tomlConfig
	if err := toml.Unmarshal(content, &file); err != nil {
		return nil, fsqerrors.NewConfigError(tomlFileName, path, err)
	}

	cfg := DefaultConfig()
	if file.Search.Workers != nil {
		cfg.Search.Workers = *file.Search.Workers
	}
	if file.Search.MaxResults != nil {
		cfg.Search.MaxResults = *file.Search.MaxResults
	}
	if file.Pool.MaxIdlePerShard != nil {
		cfg.Pool.MaxIdlePerShard = *file.Pool.MaxIdlePerShard
	}
	if len(file.Index.Roots) > 0 {
		cfg.Index.Roots = file.Index.Roots
	}
	cfg.Index.Include = append(cfg.Index.Include, file.Index.Include...)
	cfg.Index.Exclude = append(cfg.Index.Exclude, file.Index.Exclude...)
	return cfg, nil
}
