// # internal/app/app_test.go
package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybind/internal/ast"
	"cybind/internal/config"
	"cybind/internal/resolve"
)

func writeHeader(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGenerateSingleUnit(t *testing.T) {
	tmp := t.TempDir()
	header := writeHeader(t, tmp, "item.h", `
typedef struct {
    uint32_t id;
} item_t;

int item_count(void);
`)

	cfg := config.Default()
	cfg.Output.RelativeTo = tmp

	a, err := New(cfg, header)
	require.NoError(t, err)
	var out bytes.Buffer
	a.Out = &out

	require.NoError(t, a.Generate())
	text := out.String()

	assert.Contains(t, text, "from libc.stdint cimport uint32_t")
	assert.Contains(t, text, `cdef extern from "item.h":`)
	assert.Contains(t, text, "ctypedef struct item_t:")
	assert.Contains(t, text, "uint32_t id")
	assert.Contains(t, text, "int item_count()")
}

func TestGenerateDirectoryTree(t *testing.T) {
	tmp := t.TempDir()
	writeHeader(t, tmp, filepath.Join("a", "api.h"), `
struct Widget {
    int id;
};
`)
	writeHeader(t, tmp, filepath.Join("b", "use.h"), `
struct Holder {
    struct Widget* w;
};
`)
	outDir := filepath.Join(tmp, "out")

	cfg := config.Default()
	cfg.Output.Path = outDir

	a, err := New(cfg, tmp)
	require.NoError(t, err)
	require.NoError(t, a.Generate())

	apiOut, err := os.ReadFile(filepath.Join(outDir, "a", "api.pxd"))
	require.NoError(t, err)
	assert.Contains(t, string(apiOut), `cdef extern from "a/api.h":`)
	assert.Contains(t, string(apiOut), "Widget")

	useOut, err := os.ReadFile(filepath.Join(outDir, "b", "use.pxd"))
	require.NoError(t, err)
	assert.Contains(t, string(useOut), "from a.api cimport Widget")
	assert.Contains(t, string(useOut), "Holder")
}

func TestGenerateDirectoryNeedsOutputPath(t *testing.T) {
	tmp := t.TempDir()
	writeHeader(t, tmp, "api.h", "int f(void);\n")

	a, err := New(config.Default(), tmp)
	require.NoError(t, err)
	assert.Error(t, a.Generate())
}

func TestStrictAbortsOnParseDiagnostics(t *testing.T) {
	tmp := t.TempDir()
	header := writeHeader(t, tmp, "broken.h", "struct {{{")

	cfg := config.Default()
	cfg.Strict = true

	a, err := New(cfg, header)
	require.NoError(t, err)
	a.Out = &bytes.Buffer{}

	assert.Error(t, a.Generate())
}

func TestAutodefineEpilogue(t *testing.T) {
	tmp := t.TempDir()
	header := writeHeader(t, tmp, "draw.h", "void draw(Canvas* c);\n")

	cfg := config.Default()
	cfg.Flags.AutoDefine = true

	a, err := New(cfg, header)
	require.NoError(t, err)
	var out bytes.Buffer
	a.Out = &out

	require.NoError(t, a.Generate())
	text := out.String()

	assert.Contains(t, text, "cdef extern from *:")
	assert.Contains(t, text, "ctypedef struct Canvas:")
}

func TestNoImportSuppressesPrologue(t *testing.T) {
	tmp := t.TempDir()
	header := writeHeader(t, tmp, "ids.h", `
struct Ids {
    uint64_t hi;
};
`)

	cfg := config.Default()
	cfg.Flags.NoImport = true

	a, err := New(cfg, header)
	require.NoError(t, err)
	var out bytes.Buffer
	a.Out = &out

	require.NoError(t, a.Generate())
	assert.NotContains(t, out.String(), "cimport")
	assert.Contains(t, out.String(), "uint64_t hi")
}

func TestImportPath(t *testing.T) {
	assert.Equal(t, "api", importPath("api.h"))
	assert.Equal(t, "sub.dir.api", importPath(filepath.Join("sub", "dir", "api.h")))
}

func TestRegisterTypesRecordsReferences(t *testing.T) {
	res := resolve.New(nil)

	root := &ast.Node{Kind: ast.KindNamespace, Definition: true}
	fn := &ast.Node{Kind: ast.KindFunction, Spelling: "draw", Type: "void", Definition: true, Parent: root}
	fn.Params = []*ast.Node{{Kind: ast.KindParam, Spelling: "c", Type: "Canvas*", Parent: fn}}
	root.Children = []*ast.Node{fn}

	// Pass 1 records the parameter's type as pending.
	registerTypes(res, root, "draw")
	assert.Equal(t, []string{"Canvas"}, res.Unknown())

	// A later unit declaring the type clears it.
	canvasRoot := &ast.Node{Kind: ast.KindNamespace, Definition: true}
	canvas := &ast.Node{Kind: ast.KindStruct, Spelling: "Canvas", Definition: true, Parent: canvasRoot}
	canvasRoot.Children = []*ast.Node{canvas}
	registerTypes(res, canvasRoot, "canvas")
	assert.Empty(t, res.Unknown())
}
