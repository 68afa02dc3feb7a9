// # internal/gen/scope.go
//
// Scope aggregation: grouping translation-unit roots and namespace
// declarations that share one qualified path, with the child filter
// rules applied up front so rendering only ever sees emittable nodes.
package gen

import "cybind/internal/ast"

// Scope is an ordered, deduplicated group of declarations sharing one
// qualified namespace path.
type Scope struct {
	// Path is the qualified C++ namespace path, empty for the global scope.
	Path string
	// Children is the filtered union of every contributing root's children.
	Children []*ast.Node
	// Origins is the set of files allowed to contribute declarations.
	Origins map[string]bool
	// Restricted marks non-recursive mode: foreign-file declarations were
	// filtered out and referenced foreign types need stub prologues.
	Restricted bool
}

func (s *Scope) HasDeclarations() bool { return len(s.Children) > 0 }

// AggregateOpts configures one aggregation pass.
type AggregateOpts struct {
	// Index resolves redeclarations: a child is kept only when it is the
	// index's surviving node for its address.
	Index *ast.Index
	// Origins restricts contributions to these files. Nil means every
	// file contributes (recursive mode).
	Origins map[string]bool
}

// Aggregate walks translation-unit roots and groups declarations into
// scopes by qualified namespace path, in first-encounter order. Scopes
// whose filtered child list is empty are dropped.
func Aggregate(roots []*ast.Node, o AggregateOpts) []*Scope {
	byPath := make(map[string]*Scope)
	var order []string

	var walk func(n *ast.Node, path string)
	walk = func(n *ast.Node, path string) {
		sc, ok := byPath[path]
		if !ok {
			sc = &Scope{Path: path, Origins: o.Origins, Restricted: o.Origins != nil}
			byPath[path] = sc
			order = append(order, path)
		}
		for _, c := range n.Children {
			if c.Kind == ast.KindNamespace {
				sub := path
				if c.Spelling != "" {
					if sub == "" {
						sub = c.Spelling
					} else {
						sub += "::" + c.Spelling
					}
				}
				walk(c, sub)
				continue
			}
			if keep(c, o) {
				sc.Children = append(sc.Children, c)
			}
		}
	}
	for _, root := range roots {
		walk(root, "")
	}

	out := make([]*Scope, 0, len(order))
	for _, path := range order {
		if sc := byPath[path]; sc.HasDeclarations() {
			out = append(out, sc)
		}
	}
	return out
}

// keep applies the per-child filter rules.
func keep(c *ast.Node, o AggregateOpts) bool {
	if c.Access != ast.Public {
		return false
	}
	// Namespace space never holds instance members or loose parameters.
	switch c.Kind {
	case ast.KindParam, ast.KindEnumConstant, ast.KindMethod:
		return false
	}
	// The index keeps exactly one node per address: the definition when
	// one exists, with the smallest origin path as tie-break. Every
	// other redeclaration is shadowed.
	if o.Index != nil {
		if survivor := o.Index.Lookup(c.Address()); survivor != nil && survivor != c {
			return false
		}
	}
	if o.Origins != nil && !o.Origins[c.File] {
		return false
	}
	return true
}
