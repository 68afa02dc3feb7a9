// # internal/config/config_test.go
package config

import (
	"os"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
language = "c"
recursive = true
headers = "*.h"
warn_level = 1
strict = true

[flags]
autodefine = true
noimport = true

[output]
path = "out"
relative_to = "include"

[watch]
enabled = true
debounce = "1s"

[exclude]
dirs = [".git"]
files = ["*_private.h"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Language != "c" {
		t.Errorf("Expected language c, got %s", cfg.Language)
	}
	if !cfg.Recursive || !cfg.Strict {
		t.Errorf("Expected recursive and strict set")
	}
	if cfg.Headers != "*.h" {
		t.Errorf("Unexpected headers glob: %s", cfg.Headers)
	}
	if !cfg.Flags.AutoDefine || !cfg.Flags.NoImport {
		t.Errorf("Unexpected flags: %+v", cfg.Flags)
	}
	if cfg.Output.Path != "out" || cfg.Output.RelativeTo != "include" {
		t.Errorf("Unexpected output: %+v", cfg.Output)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.Exclude.Files) != 1 || cfg.Exclude.Files[0] != "*_private.h" {
		t.Errorf("Unexpected excludes: %+v", cfg.Exclude)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `recursive = false`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Language != "cpp" {
		t.Errorf("Expected default language cpp, got %s", cfg.Language)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Headers != "*" {
		t.Errorf("Expected default headers glob *, got %s", cfg.Headers)
	}
	if cfg.WarnLevel != 2 {
		t.Errorf("Expected default warn level 2, got %d", cfg.WarnLevel)
	}
}

func TestLoadError(t *testing.T) {
	if _, err := Load("nonexistent.toml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}

	if _, err := Load(writeConfig(t, "bad = toml = format")); err == nil {
		t.Error("Expected error for malformed TOML")
	}

	if _, err := Load(writeConfig(t, `language = "rust"`)); err == nil {
		t.Error("Expected error for unknown language")
	}
}
