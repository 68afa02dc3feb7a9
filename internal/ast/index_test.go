// # internal/ast/index_test.go
package ast

import "testing"

func widgetTree(file string, def bool) (*Node, *Node) {
	root := &Node{Kind: KindNamespace}
	ns := &Node{Kind: KindNamespace, Spelling: "ui", File: file, Parent: root}
	w := &Node{Kind: KindClass, Spelling: "Widget", File: file, Definition: def, Parent: ns}
	ns.Children = []*Node{w}
	root.Children = []*Node{ns}
	return root, w
}

func TestIndexDefinitionWins(t *testing.T) {
	fwdRoot, _ := widgetTree("z.h", false)
	defRoot, def := widgetTree("a.h", true)

	ix := NewIndex()
	ix.AddTree(fwdRoot)
	ix.AddTree(defRoot)
	if ix.Lookup("ui::Widget") != def {
		t.Error("expected definition to shadow forward declaration")
	}

	// Same outcome regardless of registration order.
	ix = NewIndex()
	ix.AddTree(defRoot)
	ix.AddTree(fwdRoot)
	if ix.Lookup("ui::Widget") != def {
		t.Error("expected tie-break to be order independent")
	}
}

func TestIndexFileTieBreak(t *testing.T) {
	bRoot, _ := widgetTree("b.h", true)
	aRoot, a := widgetTree("a.h", true)

	ix := NewIndex()
	ix.AddTree(bRoot)
	ix.AddTree(aRoot)
	if ix.Lookup("ui::Widget") != a {
		t.Error("expected smallest origin path to win among definitions")
	}
}

func TestIndexResolveScopeChain(t *testing.T) {
	nsRoot, inner := widgetTree("a.h", true)
	global := &Node{Kind: KindStruct, Spelling: "Widget", File: "b.h", Definition: true}
	globalRoot := &Node{Kind: KindNamespace, Children: []*Node{global}}
	global.Parent = globalRoot

	ix := NewIndex()
	ix.AddTree(nsRoot)
	ix.AddTree(globalRoot)

	if ix.Resolve("Widget", inner) != inner {
		t.Error("expected lookup from inside ui to find ui::Widget")
	}
	if ix.Resolve("Widget", global) != global {
		t.Error("expected lookup from global scope to find the global struct")
	}
	if ix.Resolve("ui::Widget", global) != inner {
		t.Error("expected qualified lookup to find ui::Widget")
	}
	if ix.Resolve("Missing", inner) != nil {
		t.Error("expected unknown name to resolve to nil")
	}
}
