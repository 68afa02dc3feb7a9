// # internal/gen/render.go
//
// Declaration rendering: one Scope in, one extern block of pxd text
// out, with every cross-reference routed through the resolver.
package gen

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cybind/internal/ast"
	"cybind/internal/resolve"
	"cybind/internal/warn"
)

type Renderer struct {
	Resolver *resolve.Resolver
	Index    *ast.Index
	Warn     warn.Sink
}

// Render emits the extern block for one scope. header is the include
// path written into the extern header, unitPath the import module path
// of the output unit (empty in single-unit mode).
func (r *Renderer) Render(sc *Scope, header, unitPath string) []string {
	seed := strings.ReplaceAll(sc.Path, "::", "_")
	if seed == "" {
		seed = fileStem(header)
	}

	_, body := ast.Members(sc.Children, ast.MemberOpts{
		ScopeName: seed,
		Warn:      r.Warn,
	})

	var stubs []string
	if sc.Restricted {
		stubs = r.foreignStubs(sc, unitPath)
	}

	body = r.resolveReferences(sc, unitPath, body)

	top := fmt.Sprintf("cdef extern from %q:", header)
	if sc.Path != "" {
		top = fmt.Sprintf("cdef extern from %q namespace %q:", header, sc.Path)
	}

	inner := append(stubs, body...)
	if len(inner) == 0 {
		inner = []string{"pass"}
	}
	return append([]string{top}, indent(inner)...)
}

// foreignStubs builds empty-body declarations for every referenced type
// that lives outside the scope's allowed origin files. The stubbed
// names go into the resolver's per-unit overlay so references render
// unqualified without claiming the declaration for this unit.
func (r *Renderer) foreignStubs(sc *Scope, unitPath string) []string {
	foreign := make(map[string]*ast.Node)
	for _, c := range sc.Children {
		for _, d := range ast.Associated(c, r.Index.Resolve) {
			if d.Spelling == "" || sc.Origins[d.File] {
				continue
			}
			switch d.Kind {
			case ast.KindStruct, ast.KindClass, ast.KindClassTemplate,
				ast.KindUnion, ast.KindEnum, ast.KindTypedef:
				foreign[d.Address()] = d
			}
		}
	}
	if len(foreign) == 0 {
		return nil
	}

	addrs := make([]string, 0, len(foreign))
	for addr := range foreign {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	var out []string
	for _, addr := range addrs {
		d := foreign[addr]
		r.Resolver.RegisterStub(d, unitPath)
		r.Warn.Warn(fmt.Sprintf("type '%s' declared outside origin headers, stub emitted", addr), warn.Remark)
		if d.Kind == ast.KindTypedef {
			out = append(out, ast.Specialize(d).Lines(ast.LineOpts{Warn: r.Warn})...)
			continue
		}
		stub := *d
		stub.Definition = false
		stub.Children = nil
		out = append(out, ast.Specialize(&stub).Lines(ast.LineOpts{Warn: r.Warn})...)
	}
	return out
}

// resolveReferences rewrites every referenced type name in the emitted
// lines to the token the resolver hands back, accumulating imports as a
// side effect.
func (r *Renderer) resolveReferences(sc *Scope, unitPath string, lines []string) []string {
	repl := make(map[string]string)
	var order []string
	for _, c := range sc.Children {
		for _, name := range ast.TypeNames(c) {
			if _, done := repl[name]; done {
				continue
			}
			token, changed := r.Resolver.ImportFor(name, sc.Path, unitPath)
			if changed {
				repl[name] = token
				order = append(order, name)
			} else {
				repl[name] = name
			}
		}
	}

	// Longest names first so a short name never clobbers part of a
	// longer qualified one.
	sort.Slice(order, func(i, j int) bool { return len(order[i]) > len(order[j]) })

	for i, line := range lines {
		for _, old := range order {
			line = replaceToken(line, old, repl[old])
		}
		lines[i] = line
	}
	return lines
}

func isIdentChar(b byte) bool {
	return b == '_' || b == ':' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// replaceToken substitutes whole-token occurrences of old, leaving
// occurrences embedded in longer identifiers or qualified names alone.
func replaceToken(line, old, repl string) string {
	if old == repl || old == "" {
		return line
	}
	var b strings.Builder
	for i := 0; i < len(line); {
		j := strings.Index(line[i:], old)
		if j == -1 {
			b.WriteString(line[i:])
			break
		}
		j += i
		end := j + len(old)
		before := j == 0 || !isIdentChar(line[j-1])
		after := end == len(line) || !isIdentChar(line[end])
		if before && after {
			b.WriteString(line[i:j])
			b.WriteString(repl)
		} else {
			b.WriteString(line[i:end])
		}
		i = end
	}
	return b.String()
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = ""
			continue
		}
		out[i] = "    " + l
	}
	return out
}

// fileStem is the header's base name without extension, cleaned into an
// identifier fragment.
func fileStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
