// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Language forces the grammar: "c" or "cpp". Empty picks C++.
	Language string `toml:"language"`
	// Recursive lets declarations from transitively included files
	// contribute to output scopes.
	Recursive bool `toml:"recursive"`
	// Headers is a glob selecting which header basenames count as
	// origin files, e.g. "*.h".
	Headers string `toml:"headers"`
	// WarnLevel is the minimum severity that gets logged (1..4).
	WarnLevel int `toml:"warn_level"`
	// Strict aborts the run on severity >= 3 parse diagnostics.
	Strict bool `toml:"strict"`

	Flags   Flags   `toml:"flags"`
	Output  Output  `toml:"output"`
	Watch   Watch   `toml:"watch"`
	Exclude Exclude `toml:"exclude"`
}

type Flags struct {
	// AutoDefine emits empty ctypedef stubs for types that were
	// referenced but never declared.
	AutoDefine bool `toml:"autodefine"`
	// NoImport suppresses the cimport prologue.
	NoImport bool `toml:"noimport"`
}

type Output struct {
	// Path is the output file (single-unit mode) or directory
	// (directory mode). Empty writes single-unit output to stdout.
	Path string `toml:"path"`
	// RelativeTo strips this prefix when deriving import module paths
	// from header paths.
	RelativeTo string `toml:"relative_to"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

func Default() *Config {
	return &Config{
		Language:  "cpp",
		Headers:   "*",
		WarnLevel: 2,
		Watch:     Watch{Debounce: 500 * time.Millisecond},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Headers == "" {
		cfg.Headers = "*"
	}
	if cfg.Language != "c" && cfg.Language != "cpp" {
		return nil, fmt.Errorf("unknown language %q", cfg.Language)
	}

	return cfg, nil
}
