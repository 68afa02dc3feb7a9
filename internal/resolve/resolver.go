// # internal/resolve/resolver.go
//
// Cross-reference resolution. The Resolver is the one long-lived object
// of a run: pass 1 registers every declaration of every translation
// unit, pass 2 asks it for the rewritten token of every referenced name
// and drains the accumulated import statements once per output unit.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"cybind/internal/ast"
	"cybind/internal/dialect"
	"cybind/internal/warn"
)

// Entry is the resolution record of one known declaration.
type Entry struct {
	Addr string
	// NS is the enclosing namespace chain, "A::B", empty at global scope.
	NS string
	// Local is the dotted path below NS: "Widget" or "Outer.Inner".
	Local string
	// Unit is the import module path of the defining translation unit,
	// empty in single-unit mode.
	Unit string
	// Definition mirrors the declaration's definition flag: a unit that
	// only forward-declares a name never owns its entry.
	Definition bool
}

type Resolver struct {
	known   map[string]*Entry
	stubs   map[string]*Entry // per-unit overlay of restricted-mode stubs
	unknown map[string]string // sanitized name -> referencing namespace
	imports map[string]bool   // rendered import lines, set semantics
	aliases map[string]string // module+symbol -> alias guard
	sink    warn.Sink
}

func New(sink warn.Sink) *Resolver {
	if sink == nil {
		sink = warn.Discard{}
	}
	return &Resolver{
		known:   make(map[string]*Entry),
		stubs:   make(map[string]*Entry),
		unknown: make(map[string]string),
		imports: make(map[string]bool),
		aliases: make(map[string]string),
		sink:    sink,
	}
}

func newEntry(n *ast.Node, unit string) *Entry {
	addr := n.Address()
	ns := n.Namespace()
	local := addr
	if ns != "" {
		local = strings.TrimPrefix(addr, ns+"::")
	}
	return &Entry{
		Addr:       addr,
		NS:         ns,
		Local:      strings.ReplaceAll(local, "::", "."),
		Unit:       unit,
		Definition: n.Definition,
	}
}

// RegisterDeclared records a declaration as locally known. unit is the
// import module path of the translation unit that defines it. Anonymous
// declarations are not addressable by name and are skipped.
// Redeclarations collapse order-independently: a definition wins over a
// forward declaration, then the smallest unit path wins.
func (r *Resolver) RegisterDeclared(n *ast.Node, unit string) {
	if n.Spelling == "" {
		return
	}
	e := newEntry(n, unit)
	if old, ok := r.known[e.Addr]; ok {
		switch {
		case old.Definition && !e.Definition:
			return
		case e.Definition && !old.Definition:
		case old.Unit != "" && old.Unit <= unit:
			return
		}
	}
	r.known[e.Addr] = e

	// Once known, a name never stays pending.
	for name, refNS := range r.unknown {
		if _, ok := r.lookup(name, refNS); ok {
			delete(r.unknown, name)
		}
	}
}

// RegisterStub records a foreign declaration stubbed into the output
// unit currently rendering. The overlay shadows the run-wide table
// until the unit's imports drain, so references inside the stubbing
// unit render unqualified without claiming the declaration away from
// its defining unit.
func (r *Resolver) RegisterStub(n *ast.Node, unit string) {
	if n.Spelling == "" {
		return
	}
	e := newEntry(n, unit)
	r.stubs[e.Addr] = e
}

// ProcessReference records name as pending when it resolves neither
// locally nor through the builtin and standard tables. name may carry
// decorations; it is sanitized before lookup.
func (r *Resolver) ProcessReference(name, currentNS string) {
	key := dialect.Sanitize(name)
	if key == "" || Builtins[key] {
		return
	}
	if _, ok := r.lookup(key, currentNS); ok {
		return
	}
	if _, ok := stdImports[key]; ok {
		return
	}
	r.unknown[key] = currentNS
}

// lookup walks the enclosing namespace chain innermost to outermost,
// then the global scope. The stub overlay shadows the run-wide table.
func (r *Resolver) lookup(name, currentNS string) (*Entry, bool) {
	if e, ok := lookupIn(r.stubs, name, currentNS); ok {
		return e, true
	}
	return lookupIn(r.known, name, currentNS)
}

func lookupIn(table map[string]*Entry, name, currentNS string) (*Entry, bool) {
	name = strings.TrimPrefix(name, "::")
	if currentNS != "" {
		parts := strings.Split(currentNS, "::")
		for i := len(parts); i > 0; i-- {
			addr := strings.Join(parts[:i], "::") + "::" + name
			if e, ok := table[addr]; ok {
				return e, true
			}
		}
	}
	e, ok := table[name]
	return e, ok
}

// ImportFor resolves one sanitized referenced name seen inside
// currentNS of the unit currentUnit. It returns the token the emitted
// text must use and whether that token differs from name. Any needed
// import statement accumulates inside the resolver.
func (r *Resolver) ImportFor(name, currentNS, currentUnit string) (string, bool) {
	if name == "" || Builtins[name] {
		return name, false
	}

	if std, ok := stdImports[name]; ok {
		if !std.NoImport {
			r.addImport(std.Module, std.Symbol, "")
		}
		return std.Symbol, std.Symbol != name
	}

	if e, ok := r.lookup(name, currentNS); ok {
		sameNS := e.NS == currentNS ||
			(e.NS != "" && strings.HasPrefix(currentNS+"::", e.NS+"::")) ||
			e.NS == ""
		sameUnit := e.Unit == "" || e.Unit == currentUnit

		switch {
		case sameNS && sameUnit:
			return e.Local, e.Local != name
		case sameNS:
			r.addImport(e.Unit, topSegment(e.Local), "")
			return e.Local, e.Local != name
		case sameUnit:
			// Another extern block of the same output unit declares it;
			// the module-level name is already in scope.
			return e.Local, e.Local != name
		default:
			top := topSegment(e.Local)
			alias := flatten(e.NS) + "_" + top
			r.addImport(e.Unit, top, alias)
			token := alias + strings.TrimPrefix(e.Local, top)
			return token, token != name
		}
	}

	r.unknown[name] = currentNS

	// Best-effort fallback: dotted relative path with the shared
	// namespace prefix stripped.
	token := strings.ReplaceAll(trimSharedNS(name, currentNS), "::", ".")
	return token, token != name
}

func topSegment(local string) string {
	if i := strings.Index(local, "."); i != -1 {
		return local[:i]
	}
	return local
}

func flatten(ns string) string {
	return strings.ReplaceAll(ns, "::", "_")
}

func trimSharedNS(name, currentNS string) string {
	if currentNS == "" {
		return name
	}
	parts := strings.Split(currentNS, "::")
	for i := len(parts); i > 0; i-- {
		prefix := strings.Join(parts[:i], "::") + "::"
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

func (r *Resolver) addImport(module, symbol, alias string) {
	if module == "" {
		return
	}
	guard := module + "::" + symbol
	if prev, ok := r.aliases[guard]; ok && prev != alias {
		r.sink.Warn(fmt.Sprintf("symbol '%s' from '%s' already imported as '%s', keeping first alias", symbol, module, prev), warn.Remark)
		return
	}
	r.aliases[guard] = alias

	line := fmt.Sprintf("from %s cimport %s", module, symbol)
	if alias != "" {
		line += " as " + alias
	}
	r.imports[line] = true
}

// DrainImports returns the accumulated import statements sorted and
// clears the set and the stub overlay for the next output unit.
func (r *Resolver) DrainImports() []string {
	r.stubs = make(map[string]*Entry)
	if len(r.imports) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.imports))
	for line := range r.imports {
		out = append(out, line)
	}
	sort.Strings(out)
	r.imports = make(map[string]bool)
	r.aliases = make(map[string]string)
	return out
}

// WarnUnresolved reports every still-pending name once, sorted.
func (r *Resolver) WarnUnresolved() {
	names := make([]string, 0, len(r.unknown))
	for name, ns := range r.unknown {
		if _, ok := r.lookup(name, ns); ok {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.sink.Warn(fmt.Sprintf("type '%s' was never declared, emitted best effort", name), warn.Degraded)
	}
}

// Unknown reports the still-pending names, sorted. Used by the
// autodefine epilogue.
func (r *Resolver) Unknown() []string {
	names := make([]string, 0, len(r.unknown))
	for name := range r.unknown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether a sanitized name resolves from currentNS.
func (r *Resolver) Known(name, currentNS string) bool {
	if Builtins[name] {
		return true
	}
	if _, ok := stdImports[name]; ok {
		return true
	}
	_, ok := r.lookup(name, currentNS)
	return ok
}

// LookupEntry exposes the resolution record for a name, if known.
func (r *Resolver) LookupEntry(name, currentNS string) (*Entry, bool) {
	return r.lookup(name, currentNS)
}
