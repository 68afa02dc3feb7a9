// # internal/ast/assoc.go
package ast

import "cybind/internal/dialect"

// Associated returns every declaration reachable from n's type
// references: field, parameter, and result types, function-pointer
// pieces, template arguments, and the references of the declarations
// those resolve to, transitively. Traversal is an explicit work-list
// with a visited set keyed by qualified address, so template nesting
// depth never turns into call-stack depth and shared references are
// walked once.
func Associated(n *Node, resolve func(name string, from *Node) *Node) []*Node {
	visited := map[string]bool{n.Address(): true}
	var found []*Node

	work := []*Node{n}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]

		for _, ref := range referencedSpellings(cur) {
			for _, name := range dialect.ReferencedNames(ref) {
				decl := resolve(name, cur)
				if decl == nil || visited[decl.Address()] {
					continue
				}
				visited[decl.Address()] = true
				found = append(found, decl)
				work = append(work, decl)
			}
		}

		// Members and parameters are scan sources, not results.
		for _, c := range cur.Children {
			if !visited[c.Address()] {
				visited[c.Address()] = true
				work = append(work, c)
			}
		}
		for _, p := range cur.Params {
			if !visited[p.Address()] {
				visited[p.Address()] = true
				work = append(work, p)
			}
		}
	}
	return found
}

// TypeNames returns the sanitized type names n and its descendants
// reference, deduplicated, in first-use order. Unlike Associated it
// does not resolve the names, so unknown references are included.
func TypeNames(n *Node) []string {
	var out []string
	seen := make(map[string]bool)

	work := []*Node{n}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]

		for _, ref := range referencedSpellings(cur) {
			for _, name := range dialect.ReferencedNames(ref) {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
		work = append(work, cur.Params...)
		work = append(work, cur.Children...)
	}
	return out
}

// OwnTypeNames returns the sanitized type names n itself references,
// without descending into children or parameters. Used by pass-1
// registration, where the walk already visits every node.
func OwnTypeNames(n *Node) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ref := range referencedSpellings(n) {
		for _, name := range dialect.ReferencedNames(ref) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// referencedSpellings gathers the raw type spellings one node mentions.
func referencedSpellings(n *Node) []string {
	var out []string
	if n.Type != "" {
		out = append(out, n.Type)
	}
	if n.FuncPtr != nil {
		out = append(out, n.FuncPtr.Result)
		out = append(out, n.FuncPtr.Args...)
	}
	for _, b := range n.Bases {
		out = append(out, b)
	}
	return out
}
