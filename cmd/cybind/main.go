// # cmd/cybind/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"cybind/internal/app"
	"cybind/internal/config"
)

var (
	configPath = flag.String("config", "./cybind.toml", "Path to config file")
	outPath    = flag.String("o", "", "Output file (single header) or directory (directory mode)")
	language   = flag.String("x", "", "Force input language: c or cpp")
	headers    = flag.String("H", "", "Glob of header basenames allowed to contribute declarations")
	relativeTo = flag.String("relative-to", "", "Strip this prefix from header paths in extern blocks")
	recursive  = flag.Bool("r", false, "Let declarations from any scanned header contribute to every unit")
	warnLevel  = flag.Int("W", 0, "Minimum warning severity to report (1..4)")
	strict     = flag.Bool("strict", false, "Abort on upstream parse diagnostics")
	autodefine = flag.Bool("autodefine", false, "Emit stub definitions for unknown referenced types")
	noimport   = flag.Bool("noimport", false, "Suppress the cimport prologue")
	watch      = flag.Bool("watch", false, "Regenerate when headers change")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("cybind v%s\n", VERSION)
		os.Exit(0)
	}

	// Logs go to stderr; single-unit output may claim stdout.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cybind [flags] <header file or directory>")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg)

	if cfg.Language != "c" && cfg.Language != "cpp" {
		fmt.Fprintf(os.Stderr, "unknown language %q (want c or cpp)\n", cfg.Language)
		os.Exit(1)
	}

	a, err := app.New(cfg, flag.Arg(0))
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when it exists. A missing file is an
// error only when the path was given explicitly.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if flagWasSet("config") {
			return nil, err
		}
		return config.Default(), nil
	}
	return config.Load(path)
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// applyFlags overrides config values with every flag that was set on
// the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output.Path = *outPath
		case "x":
			cfg.Language = *language
		case "H":
			cfg.Headers = *headers
		case "relative-to":
			cfg.Output.RelativeTo = *relativeTo
		case "r":
			cfg.Recursive = *recursive
		case "W":
			cfg.WarnLevel = *warnLevel
		case "strict":
			cfg.Strict = *strict
		case "autodefine":
			cfg.Flags.AutoDefine = *autodefine
		case "noimport":
			cfg.Flags.NoImport = *noimport
		case "watch":
			cfg.Watch.Enabled = *watch
		}
	})
}
