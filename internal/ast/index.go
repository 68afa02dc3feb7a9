// # internal/ast/index.go
package ast

import "strings"

// Index maps qualified addresses to declarations across every
// translation unit of a run. Redeclarations collapse with an
// order-independent tie-break: a definition always wins over a forward
// declaration, and among multiple definitions the lexicographically
// smallest origin path wins.
type Index struct {
	byAddr map[string]*Node
}

func NewIndex() *Index {
	return &Index{byAddr: make(map[string]*Node)}
}

// AddTree registers root and every named descendant.
func (ix *Index) AddTree(root *Node) {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Spelling != "" || n.Anonymous {
			ix.add(n)
		}
		stack = append(stack, n.Children...)
	}
}

func (ix *Index) add(n *Node) {
	addr := n.Address()
	old, ok := ix.byAddr[addr]
	if !ok {
		ix.byAddr[addr] = n
		return
	}
	switch {
	case n.Definition && !old.Definition:
		ix.byAddr[addr] = n
	case n.Definition == old.Definition && n.File < old.File:
		ix.byAddr[addr] = n
	}
}

// Lookup returns the declaration registered under addr, or nil.
func (ix *Index) Lookup(addr string) *Node {
	return ix.byAddr[addr]
}

// Resolve finds the declaration a (possibly qualified) name refers to
// when written inside from's scope, walking enclosing scopes from
// innermost to outermost and ending at the global scope.
func (ix *Index) Resolve(name string, from *Node) *Node {
	name = strings.TrimPrefix(name, "::")
	if name == "" {
		return nil
	}

	var chain []string
	if from != nil {
		for p := from; p != nil; p = p.Parent {
			if p.IsSpace() && p.Spelling != "" {
				chain = append(chain, p.Spelling)
			}
		}
	}
	// chain is innermost-first; build prefixes longest-first.
	for i := 0; i < len(chain); i++ {
		parts := make([]string, 0, len(chain)-i)
		for j := len(chain) - 1; j >= i; j-- {
			parts = append(parts, chain[j])
		}
		if n := ix.byAddr[strings.Join(parts, "::")+"::"+name]; n != nil {
			return n
		}
	}
	return ix.byAddr[name]
}

// Len reports the number of registered declarations.
func (ix *Index) Len() int { return len(ix.byAddr) }
