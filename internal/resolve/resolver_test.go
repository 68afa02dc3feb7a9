// # internal/resolve/resolver_test.go
package resolve

import (
	"strings"
	"testing"

	"cybind/internal/ast"
	"cybind/internal/warn"
)

func declare(ns []string, name string) *ast.Node {
	var parent *ast.Node
	for _, s := range ns {
		n := &ast.Node{Kind: ast.KindNamespace, Spelling: s, Definition: true, Parent: parent}
		if parent != nil {
			parent.Children = append(parent.Children, n)
		}
		parent = n
	}
	n := &ast.Node{Kind: ast.KindStruct, Spelling: name, Definition: true, Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, n)
	}
	return n
}

func TestAncestorNamespaceNeedsNoImport(t *testing.T) {
	r := New(nil)
	r.RegisterDeclared(declare([]string{"A"}, "Widget"), "")

	token, changed := r.ImportFor("Widget", "A::B", "")
	if token != "Widget" || changed {
		t.Fatalf("token = %q changed = %v", token, changed)
	}
	if imports := r.DrainImports(); imports != nil {
		t.Fatalf("unexpected imports %v", imports)
	}
}

func TestCrossNamespaceAliasedImport(t *testing.T) {
	r := New(nil)
	r.RegisterDeclared(declare([]string{"A"}, "Widget"), "pkg.widget")

	token, changed := r.ImportFor("Widget", "C", "pkg.consumer")
	if token != "A_Widget" || !changed {
		t.Fatalf("token = %q changed = %v", token, changed)
	}

	imports := r.DrainImports()
	if len(imports) != 1 || imports[0] != "from pkg.widget cimport Widget as A_Widget" {
		t.Fatalf("imports = %v", imports)
	}
}

func TestImportSetSemantics(t *testing.T) {
	r := New(nil)
	r.RegisterDeclared(declare([]string{"A"}, "Widget"), "pkg.widget")

	r.ImportFor("Widget", "C", "pkg.consumer")
	r.ImportFor("Widget", "C", "pkg.consumer")
	r.ImportFor("A::Widget", "C", "pkg.consumer")

	if imports := r.DrainImports(); len(imports) != 1 {
		t.Fatalf("imports doubled: %v", imports)
	}
}

func TestStdTableMappings(t *testing.T) {
	r := New(nil)

	token, changed := r.ImportFor("std::vector", "", "")
	if token != "vector" || !changed {
		t.Fatalf("vector token = %q changed = %v", token, changed)
	}
	token, changed = r.ImportFor("std::size_t", "", "")
	if token != "size_t" || !changed {
		t.Fatalf("size_t token = %q changed = %v", token, changed)
	}
	if token, _ := r.ImportFor("uint32_t", "", ""); token != "uint32_t" {
		t.Fatalf("uint32_t token = %q", token)
	}

	imports := r.DrainImports()
	want := []string{
		"from libc.stdint cimport uint32_t",
		"from libcpp.vector cimport vector",
	}
	if len(imports) != len(want) {
		t.Fatalf("imports = %v", imports)
	}
	for i := range want {
		if imports[i] != want[i] {
			t.Errorf("imports[%d] = %q, want %q", i, imports[i], want[i])
		}
	}
}

func TestBuiltinsPassThrough(t *testing.T) {
	r := New(nil)
	for _, b := range []string{"int", "size_t", "long long", "void"} {
		token, changed := r.ImportFor(b, "ns", "u")
		if token != b || changed {
			t.Errorf("builtin %q: token = %q changed = %v", b, token, changed)
		}
	}
	if imports := r.DrainImports(); imports != nil {
		t.Fatalf("builtins produced imports: %v", imports)
	}
}

func TestUnknownRecordedAndWarned(t *testing.T) {
	rec := &warn.Recorder{}
	r := New(rec)

	r.ProcessReference("Mystery", "ns")
	if got := r.Unknown(); len(got) != 1 || got[0] != "Mystery" {
		t.Fatalf("unknown = %v", got)
	}

	r.WarnUnresolved()
	if len(rec.Entries) != 1 || rec.Entries[0].Severity != warn.Degraded {
		t.Fatalf("entries = %v", rec.Entries)
	}
	if !strings.Contains(rec.Entries[0].Msg, "Mystery") {
		t.Fatalf("msg = %q", rec.Entries[0].Msg)
	}
}

func TestKnownRemovesFromUnknown(t *testing.T) {
	r := New(nil)
	r.ProcessReference("Widget", "A")
	r.RegisterDeclared(declare([]string{"A"}, "Widget"), "")

	if got := r.Unknown(); len(got) != 0 {
		t.Fatalf("unknown after declaration = %v", got)
	}
}

func TestNestedLocalPath(t *testing.T) {
	ns := &ast.Node{Kind: ast.KindNamespace, Spelling: "A", Definition: true}
	outer := &ast.Node{Kind: ast.KindClass, Spelling: "Outer", Definition: true, Parent: ns}
	inner := &ast.Node{Kind: ast.KindClass, Spelling: "Inner", Definition: true, Parent: outer}

	r := New(nil)
	r.RegisterDeclared(inner, "")

	token, changed := r.ImportFor("Outer::Inner", "A", "")
	if token != "Outer.Inner" || !changed {
		t.Fatalf("token = %q changed = %v", token, changed)
	}
}

func TestBestEffortFallback(t *testing.T) {
	r := New(nil)
	token, _ := r.ImportFor("A::B::Thing", "A", "")
	if token != "B.Thing" {
		t.Fatalf("fallback token = %q", token)
	}
}

func TestDefinitionWinsAcrossUnits(t *testing.T) {
	fwd := &ast.Node{Kind: ast.KindStruct, Spelling: "Foo"}
	def := &ast.Node{Kind: ast.KindStruct, Spelling: "Foo", Definition: true}

	check := func(r *Resolver) {
		t.Helper()
		token, _ := r.ImportFor("Foo", "", "c.use")
		if token != "Foo" {
			t.Fatalf("token = %q", token)
		}
		imports := r.DrainImports()
		if len(imports) != 1 || imports[0] != "from b.def cimport Foo" {
			t.Fatalf("imports = %v", imports)
		}
	}

	r := New(nil)
	r.RegisterDeclared(fwd, "a.fwd")
	r.RegisterDeclared(def, "b.def")
	check(r)

	// Registration order must not matter.
	r = New(nil)
	r.RegisterDeclared(def, "b.def")
	r.RegisterDeclared(fwd, "a.fwd")
	check(r)
}

func TestStubOverlayScopedToUnit(t *testing.T) {
	r := New(nil)
	color := declare(nil, "Color")
	r.RegisterDeclared(color, "colors")

	// A restricted unit stubs the foreign type: local, no import.
	r.RegisterStub(color, "app")
	token, changed := r.ImportFor("Color", "", "app")
	if token != "Color" || changed {
		t.Fatalf("token = %q changed = %v", token, changed)
	}
	if imports := r.DrainImports(); imports != nil {
		t.Fatalf("stubbing unit produced imports: %v", imports)
	}

	// The drain clears the overlay: the defining unit resolves its own
	// type same-unit and must not import it back.
	token, changed = r.ImportFor("Color", "", "colors")
	if token != "Color" || changed {
		t.Fatalf("token = %q changed = %v", token, changed)
	}
	if imports := r.DrainImports(); imports != nil {
		t.Fatalf("defining unit imported its own type: %v", imports)
	}

	// Other units still import from the defining unit.
	r.ImportFor("Color", "", "third")
	if imports := r.DrainImports(); len(imports) != 1 || imports[0] != "from colors cimport Color" {
		t.Fatalf("imports = %v", imports)
	}
}
