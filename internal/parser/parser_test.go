// # internal/parser/parser_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybind/internal/ast"
)

func parseSource(t *testing.T, lang, src string) *ast.Node {
	t.Helper()
	p := NewParser(NewGrammarLoader())
	p.ForceLanguage = lang
	p.RegisterExtractor("c", &CppExtractor{})
	p.RegisterExtractor("cpp", &CppExtractor{})

	root, diags, err := p.ParseFile("test.h", []byte(src))
	require.NoError(t, err)
	require.Empty(t, diags)
	return root
}

func findChild(n *ast.Node, kind ast.Kind, name string) *ast.Node {
	for _, c := range n.Children {
		if c.Kind == kind && c.Spelling == name {
			return c
		}
	}
	return nil
}

func TestParseStructFields(t *testing.T) {
	root := parseSource(t, "c", `
struct Point {
    double x;
    double y;
    int* tags;
};
`)
	s := findChild(root, ast.KindStruct, "Point")
	require.NotNil(t, s)
	assert.True(t, s.Definition)
	require.Len(t, s.Children, 3)

	assert.Equal(t, "double", s.Children[0].Type)
	assert.Equal(t, "x", s.Children[0].Spelling)
	assert.Equal(t, ast.KindField, s.Children[0].Kind)
	assert.Equal(t, "int*", s.Children[2].Type)
}

func TestParseForwardDeclaration(t *testing.T) {
	root := parseSource(t, "c", "struct Opaque;\n")
	s := findChild(root, ast.KindStruct, "Opaque")
	require.NotNil(t, s)
	assert.False(t, s.Definition)
}

func TestParseNamespaceAndClass(t *testing.T) {
	root := parseSource(t, "cpp", `
namespace ui {
class Widget {
public:
    void draw();
private:
    int id_;
};
}
`)
	ns := findChild(root, ast.KindNamespace, "ui")
	require.NotNil(t, ns)

	cls := findChild(ns, ast.KindClass, "Widget")
	require.NotNil(t, cls)
	assert.Equal(t, "ui::Widget", cls.Address())

	draw := findChild(cls, ast.KindMethod, "draw")
	require.NotNil(t, draw)
	assert.Equal(t, ast.Public, draw.Access)
	assert.Equal(t, "void", draw.Type)

	id := findChild(cls, ast.KindField, "id_")
	require.NotNil(t, id)
	assert.Equal(t, ast.Private, id.Access)
}

func TestParseNestedNamespaceSpelling(t *testing.T) {
	root := parseSource(t, "cpp", `
namespace a::b {
void f();
}
`)
	a := findChild(root, ast.KindNamespace, "a")
	require.NotNil(t, a)
	b := findChild(a, ast.KindNamespace, "b")
	require.NotNil(t, b)
	require.NotNil(t, findChild(b, ast.KindFunction, "f"))
}

func TestParseDefaultArguments(t *testing.T) {
	root := parseSource(t, "cpp", "void f(int a, int b = 0, int c = 0);\n")
	f := findChild(root, ast.KindFunction, "f")
	require.NotNil(t, f)
	require.Len(t, f.Params, 3)

	assert.False(t, f.Params[0].HasDefault)
	assert.True(t, f.Params[1].HasDefault)
	assert.True(t, f.Params[2].HasDefault)
}

func TestParseVariadicFunction(t *testing.T) {
	root := parseSource(t, "c", "int logf(const char* fmt, ...);\n")
	f := findChild(root, ast.KindFunction, "logf")
	require.NotNil(t, f)
	assert.True(t, f.Variadic)
	require.Len(t, f.Params, 1)
	assert.Equal(t, "const char*", f.Params[0].Type)
}

func TestParseVoidParameterList(t *testing.T) {
	root := parseSource(t, "c", "int rand_init(void);\n")
	f := findChild(root, ast.KindFunction, "rand_init")
	require.NotNil(t, f)
	assert.Empty(t, f.Params)
}

func TestParseEnum(t *testing.T) {
	root := parseSource(t, "c", `
enum Color {
    RED,
    GREEN = 5,
    BLUE
};
`)
	e := findChild(root, ast.KindEnum, "Color")
	require.NotNil(t, e)
	require.Len(t, e.Children, 3)
	assert.Equal(t, int64(0), e.Children[0].EnumValue)
	assert.Equal(t, int64(5), e.Children[1].EnumValue)
	assert.Equal(t, int64(6), e.Children[2].EnumValue)
}

func TestParseTypedefOfAnonymousStruct(t *testing.T) {
	root := parseSource(t, "c", `
typedef struct {
    int x;
} point_t;
`)
	var anon *ast.Node
	for _, c := range root.Children {
		if c.Kind == ast.KindStruct && c.Anonymous {
			anon = c
		}
	}
	require.NotNil(t, anon)

	td := findChild(root, ast.KindTypedef, "point_t")
	require.NotNil(t, td)
	assert.Same(t, anon, td.AnonRef)
}

func TestParseAnonymousFieldAggregate(t *testing.T) {
	root := parseSource(t, "c", `
struct Foo {
    int a;
    struct {
        int b;
    } inner;
};
`)
	foo := findChild(root, ast.KindStruct, "Foo")
	require.NotNil(t, foo)

	var anon *ast.Node
	for _, c := range foo.Children {
		if c.Kind == ast.KindStruct && c.Anonymous {
			anon = c
		}
	}
	require.NotNil(t, anon)

	inner := findChild(foo, ast.KindField, "inner")
	require.NotNil(t, inner)
	assert.Same(t, anon, inner.AnonRef)
}

func TestParseFunctionPointerTypedef(t *testing.T) {
	root := parseSource(t, "c", "typedef int (*handler_t)(void*, int);\n")
	td := findChild(root, ast.KindTypedef, "handler_t")
	require.NotNil(t, td)
	require.NotNil(t, td.FuncPtr)
	assert.Equal(t, "int", td.FuncPtr.Result)
	assert.Equal(t, []string{"void*", "int"}, td.FuncPtr.Args)
}

func TestParseFunctionPointerField(t *testing.T) {
	root := parseSource(t, "c", `
struct Ops {
    void (*cb)(int);
};
`)
	ops := findChild(root, ast.KindStruct, "Ops")
	require.NotNil(t, ops)
	cb := findChild(ops, ast.KindField, "cb")
	require.NotNil(t, cb)
	require.NotNil(t, cb.FuncPtr)
	assert.Equal(t, "void", cb.FuncPtr.Result)
	assert.Equal(t, []string{"int"}, cb.FuncPtr.Args)
}

func TestParseMacros(t *testing.T) {
	root := parseSource(t, "c", `
#define MAX_SIZE 128
#define SQUARE(x) ((x) * (x))
`)
	m := findChild(root, ast.KindMacro, "MAX_SIZE")
	require.NotNil(t, m)
	assert.Equal(t, "128", m.MacroBody)
	assert.False(t, m.MacroFunc)

	sq := findChild(root, ast.KindMacro, "SQUARE")
	require.NotNil(t, sq)
	assert.True(t, sq.MacroFunc)
}

func TestParseClassTemplate(t *testing.T) {
	root := parseSource(t, "cpp", `
template <typename T>
class Box {
public:
    T value;
};
`)
	box := findChild(root, ast.KindClassTemplate, "Box")
	require.NotNil(t, box)
	assert.Equal(t, []string{"T"}, box.TemplateParams)

	v := findChild(box, ast.KindField, "value")
	require.NotNil(t, v)
	assert.Equal(t, "T", v.Type)
}

func TestParseUsingAlias(t *testing.T) {
	root := parseSource(t, "cpp", "using Names = std::vector<std::string>;\n")
	td := findChild(root, ast.KindTypedef, "Names")
	require.NotNil(t, td)
	assert.Equal(t, "std::vector<std::string>", td.Type)
}

func TestParseStaticMethod(t *testing.T) {
	root := parseSource(t, "cpp", `
class Util {
public:
    static int count();
};
`)
	util := findChild(root, ast.KindClass, "Util")
	require.NotNil(t, util)
	count := findChild(util, ast.KindMethod, "count")
	require.NotNil(t, count)
	assert.True(t, count.Static)
}

func TestParseExternC(t *testing.T) {
	root := parseSource(t, "cpp", `
extern "C" {
int add(int a, int b);
}
`)
	require.NotNil(t, findChild(root, ast.KindFunction, "add"))
}

func TestParseDiagnosticsOnBrokenSource(t *testing.T) {
	p := NewParser(NewGrammarLoader())
	p.ForceLanguage = "cpp"
	p.RegisterExtractor("cpp", &CppExtractor{})

	_, diags, err := p.ParseFile("broken.h", []byte("struct {{{"))
	require.NoError(t, err)
	assert.NotEmpty(t, diags)
}
