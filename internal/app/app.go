// # internal/app/app.go
//
// Orchestration for one generation run: scan headers, parse, register
// every translation unit with the shared index and resolver, then
// render each unit and write the pxd output. Watch mode re-runs the
// whole pipeline on header changes.
package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gobwas/glob"

	"cybind/internal/ast"
	"cybind/internal/config"
	"cybind/internal/gen"
	"cybind/internal/parser"
	"cybind/internal/resolve"
	"cybind/internal/warn"
	"cybind/internal/watcher"
)

// headerExts lists the extensions that count as headers in directory mode.
var headerExts = map[string]bool{
	".h":   true,
	".hh":  true,
	".hpp": true,
	".hxx": true,
}

type App struct {
	Config *config.Config
	// Input is a single header path or a directory root.
	Input string
	Sink  warn.Sink
	// Out receives single-unit output when no output path is configured.
	Out io.Writer

	headerGlob   glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

// unit is one parsed translation unit of a directory run.
type unit struct {
	path string
	rel  string
	root *ast.Node
}

func New(cfg *config.Config, input string) (*App, error) {
	a := &App{
		Config: cfg,
		Input:  input,
		Sink:   &warn.Logger{Level: cfg.WarnLevel},
		Out:    os.Stdout,
	}

	g, err := glob.Compile(cfg.Headers)
	if err != nil {
		return nil, fmt.Errorf("invalid headers pattern %q: %w", cfg.Headers, err)
	}
	a.headerGlob = g

	for _, pattern := range cfg.Exclude.Dirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", pattern, err)
		}
		a.excludeDirs = append(a.excludeDirs, g)
	}
	for _, pattern := range cfg.Exclude.Files {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", pattern, err)
		}
		a.excludeFiles = append(a.excludeFiles, g)
	}

	return a, nil
}

// Run generates once and, when watch mode is enabled, keeps
// regenerating until interrupted.
func (a *App) Run() error {
	if err := a.Generate(); err != nil {
		return err
	}
	if a.Config.Watch.Enabled {
		return a.watch()
	}
	return nil
}

// Generate performs one full generation over Input.
func (a *App) Generate() error {
	info, err := os.Stat(a.Input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return a.generateTree()
	}
	return a.generateSingle()
}

func (a *App) generateSingle() error {
	p := a.newParser()
	root, err := a.parseHeader(p, a.Input)
	if err != nil {
		return err
	}

	ix := ast.NewIndex()
	ix.AddTree(root)

	res := resolve.New(a.Sink)
	registerTypes(res, root, "")

	var origins map[string]bool
	if !a.Config.Recursive {
		origins = map[string]bool{a.Input: true}
	}

	scopes := gen.Aggregate([]*ast.Node{root}, gen.AggregateOpts{Index: ix, Origins: origins})
	r := &gen.Renderer{Resolver: res, Index: ix, Warn: a.Sink}

	text := a.renderUnit(r, res, scopes, a.includeSpelling(a.Input, a.Input), "")
	res.WarnUnresolved()

	if a.Config.Output.Path == "" {
		_, err := io.WriteString(a.Out, text)
		return err
	}
	return writeFile(a.Config.Output.Path, text)
}

func (a *App) generateTree() error {
	outDir := a.Config.Output.Path
	if outDir == "" {
		return fmt.Errorf("directory mode requires an output directory")
	}

	paths, err := a.scanHeaders(a.Input)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no headers found under %s", a.Input)
	}

	p := a.newParser()
	units := make([]*unit, 0, len(paths))
	for _, path := range paths {
		root, err := a.parseHeader(p, path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(a.Input, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		units = append(units, &unit{path: path, rel: rel, root: root})
	}

	ix := ast.NewIndex()
	res := resolve.New(a.Sink)
	for _, u := range units {
		ix.AddTree(u.root)
		registerTypes(res, u.root, importPath(u.rel))
	}

	r := &gen.Renderer{Resolver: res, Index: ix, Warn: a.Sink}
	for _, u := range units {
		scopes := gen.Aggregate([]*ast.Node{u.root}, gen.AggregateOpts{
			Index:   ix,
			Origins: a.originsFor(u, units),
		})
		text := a.renderUnit(r, res, scopes, a.includeSpelling(u.path, u.rel), importPath(u.rel))

		out := filepath.Join(outDir, strings.TrimSuffix(u.rel, filepath.Ext(u.rel))+".pxd")
		if err := writeFile(out, text); err != nil {
			return err
		}
		slog.Info("wrote unit", "header", u.rel, "output", out)
	}

	res.WarnUnresolved()
	return nil
}

// originsFor builds the origin-file set of one unit: the unit's own
// header plus every scanned header whose base name matches the allow
// glob. Recursive mode lifts the filter entirely.
func (a *App) originsFor(u *unit, units []*unit) map[string]bool {
	if a.Config.Recursive {
		return nil
	}
	origins := map[string]bool{u.path: true}
	for _, other := range units {
		if a.headerGlob.Match(filepath.Base(other.path)) {
			origins[other.path] = true
		}
	}
	return origins
}

// renderUnit assembles one output unit: import prologue, extern blocks,
// and the autodefine epilogue for unknown types the unit references.
func (a *App) renderUnit(r *gen.Renderer, res *resolve.Resolver, scopes []*gen.Scope, include, unitPath string) string {
	var blocks [][]string
	for _, sc := range scopes {
		blocks = append(blocks, r.Render(sc, include, unitPath))
	}

	imports := res.DrainImports()
	if a.Config.Flags.NoImport {
		imports = nil
	}

	var parts []string
	if len(imports) > 0 {
		parts = append(parts, strings.Join(imports, "\n"))
	}
	for _, blk := range blocks {
		parts = append(parts, strings.Join(blk, "\n"))
	}
	if a.Config.Flags.AutoDefine {
		if stub := autodefineBlock(res, scopes); stub != "" {
			parts = append(parts, stub)
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// autodefineBlock emits empty struct stubs for every unqualified type
// name the scopes reference that never resolved.
func autodefineBlock(res *resolve.Resolver, scopes []*gen.Scope) string {
	var names []string
	seen := make(map[string]bool)
	for _, sc := range scopes {
		for _, c := range sc.Children {
			for _, name := range ast.TypeNames(c) {
				if seen[name] || strings.Contains(name, "::") {
					continue
				}
				seen[name] = true
				if !res.Known(name, sc.Path) {
					names = append(names, name)
				}
			}
		}
	}
	if len(names) == 0 {
		return ""
	}

	lines := []string{"cdef extern from *:"}
	for _, name := range names {
		lines = append(lines, "    ctypedef struct "+name+":", "        pass")
	}
	return strings.Join(lines, "\n")
}

func (a *App) newParser() *parser.Parser {
	p := parser.NewParser(parser.NewGrammarLoader())
	p.ForceLanguage = a.Config.Language
	p.RegisterExtractor("c", &parser.CppExtractor{})
	p.RegisterExtractor("cpp", &parser.CppExtractor{})
	return p
}

func (a *App) parseHeader(p *parser.Parser, path string) (*ast.Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, diags, err := p.ParseFile(path, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, d := range diags {
		a.Sink.Warn(fmt.Sprintf("%s: %s", path, d), warn.Diagnostic)
	}
	if a.Config.Strict && len(diags) > 0 {
		return nil, fmt.Errorf("aborting on %d parse diagnostics in %s", len(diags), path)
	}
	return root, nil
}

func (a *App) scanHeaders(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		if d.IsDir() {
			for _, g := range a.excludeDirs {
				if g.Match(base) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !headerExts[filepath.Ext(path)] {
			return nil
		}
		for _, g := range a.excludeFiles {
			if g.Match(base) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// includeSpelling is the path written into the extern header. The
// configured relative_to prefix wins, then the unit-relative path.
func (a *App) includeSpelling(path, rel string) string {
	if base := a.Config.Output.RelativeTo; base != "" {
		if r, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(r, "..") {
			return filepath.ToSlash(r)
		}
	}
	return filepath.ToSlash(rel)
}

// importPath derives the cimport module path of an output unit from its
// relative header path.
func importPath(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}

// registerTypes records every named type-introducing declaration and
// every referenced type name, so later units resolve across the run
// and unresolved references are pending before rendering starts.
func registerTypes(res *resolve.Resolver, root *ast.Node, unitPath string) {
	stack := []*ast.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch n.Kind {
		case ast.KindStruct, ast.KindClass, ast.KindClassTemplate,
			ast.KindUnion, ast.KindEnum, ast.KindTypedef:
			res.RegisterDeclared(n, unitPath)
		}
		for _, name := range ast.OwnTypeNames(n) {
			res.ProcessReference(name, n.Namespace())
		}
		stack = append(stack, n.Children...)
		stack = append(stack, n.Params...)
	}
}

func writeFile(path, content string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func (a *App) watch() error {
	lim := newLimiter(1, 2)
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) {
			if err := lim.Wait(context.Background(), 1); err != nil {
				return
			}
			slog.Info("headers changed, regenerating", "count", len(paths))
			if err := a.Generate(); err != nil {
				slog.Error("regeneration failed", "error", err)
			}
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	root := a.Input
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}
	if err := w.Watch([]string{root}); err != nil {
		return err
	}
	slog.Info("watching for header changes", "path", root)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}
