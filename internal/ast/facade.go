// # internal/ast/facade.go
//
// Declaration variants behind the Specialize factory. Each variant turns
// one Node into Cython pxd declaration lines. Variants are pure: they
// never mutate the node tree, and recoverable trouble surfaces through
// the warning sink in LineOpts.
package ast

import (
	"fmt"
	"regexp"
	"strings"

	"cybind/internal/dialect"
	"cybind/internal/warn"
)

// LineOpts parameterizes rendering of one declaration.
type LineOpts struct {
	// Name overrides the node's own spelling. Used for synthetic
	// anonymous-aggregate names and typedef-supplied names.
	Name string
	// Typedef renders an aggregate in its ctypedef form
	// ("ctypedef struct X:" instead of "struct X:").
	Typedef bool
	Warn    warn.Sink
}

func (o LineOpts) warn(msg string, severity int) {
	if o.Warn != nil {
		o.Warn.Warn(msg, severity)
	}
}

// Decl is the closed set of renderable declaration variants.
type Decl interface {
	Node() *Node
	Address() string
	IsAnonymous() bool
	IsForward() bool
	Lines(o LineOpts) []string
}

// Specialize dispatches a node to its declaration variant. The switch is
// the single place kind dispatch happens; adding a Kind means adding an
// arm here.
func Specialize(n *Node) Decl {
	switch n.Kind {
	case KindField, KindVar:
		return DataType{base{n}}
	case KindFunction:
		return Function{base{n}}
	case KindMethod, KindFunctionTemplate:
		if isConstructor(n) {
			return Constructor{Function{base{n}}}
		}
		return Function{base{n}}
	case KindEnum:
		return Enumeration{base{n}}
	case KindUnion:
		return Union{base{n}}
	case KindStruct, KindClass, KindClassTemplate:
		return Struct{base{n}}
	case KindTypedef:
		return Typedef{base{n}}
	case KindMacro:
		return Macro{base{n}}
	default:
		return Opaque{base{n}}
	}
}

// isConstructor recognizes methods and function templates declared with
// no result type whose base name (before any template bracket) matches
// the enclosing class.
func isConstructor(n *Node) bool {
	if n.Parent == nil || !n.Parent.IsCppClass() {
		return false
	}
	res := strings.TrimSpace(n.Type)
	if res != "" && res != "void" {
		return false
	}
	name := n.Spelling
	if i := strings.Index(name, "<"); i != -1 {
		name = name[:i]
	}
	return name == n.Parent.Spelling
}

type base struct{ n *Node }

func (b base) Node() *Node       { return b.n }
func (b base) Address() string   { return b.n.Address() }
func (b base) IsAnonymous() bool { return b.n.Anonymous }
func (b base) IsForward() bool   { return !b.n.Definition }

func (b base) name(o LineOpts) string {
	if o.Name != "" {
		return o.Name
	}
	return b.n.Spelling
}

// Spellings the target dialect cannot express in a declaration position.
var unsupportedFragments = []string{"(^", "typename ", "decltype", "(unnamed"}

func unsupportedType(t string) bool {
	for _, f := range unsupportedFragments {
		if strings.Contains(t, f) {
			return true
		}
	}
	return false
}

// Function names Cython refuses in extern declarations.
var unsupportedNames = map[string]bool{
	"operator+=": true,
	"operator-=": true,
	"operator*=": true,
	"operator/=": true,
	"operator%=": true,
	"operator^=": true,
	"operator&=": true,
	"operator|=": true,
	"operator->": true,
	"is":         true,
	"global":     true,
}

func unsupportedName(name string) bool {
	if unsupportedNames[name] {
		return true
	}
	return strings.HasPrefix(name, `operator""`)
}

// splitDecor separates a type spelling's trailing decoration tokens:
// pointer/reference characters and an array suffix. "int*[4]" yields
// ("int", "*", "[4]").
func splitDecor(t string) (bare, ptr, arr string) {
	bare = strings.TrimSpace(t)
	if i := strings.Index(bare, "["); i != -1 {
		arr = bare[i:]
		bare = strings.TrimSpace(bare[:i])
	}
	for strings.HasSuffix(bare, "*") || strings.HasSuffix(bare, "&") {
		ptr = bare[len(bare)-1:] + ptr
		bare = strings.TrimSpace(bare[:len(bare)-1])
	}
	return bare, ptr, arr
}

func commented(s string) string { return "#  " + s }

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

// DataType renders fields and variables.
type DataType struct{ base }

func (d DataType) Lines(o LineOpts) []string {
	n := d.n
	name := d.name(o)

	if n.FuncPtr != nil {
		res := dialect.Convert(dialect.StripAllTypeIDs(n.FuncPtr.Result))
		args := dialect.Convert(dialect.StripAllTypeIDs(strings.Join(n.FuncPtr.Args, ", ")))
		return []string{fmt.Sprintf("%s (*%s)(%s)", res, name, args)}
	}

	if n.AnonRef != nil && o.Name == "" {
		// The member's aggregate never got a name. A pure-pointer member
		// can degrade to void*; anything else has no spellable type.
		_, ptr, arr := splitDecor(n.Type)
		if ptr != "" && arr == "" {
			o.warn(fmt.Sprintf("unnamed aggregate behind pointer member '%s' lowered to void%s", n.Address(), ptr), warn.Degraded)
			return []string{fmt.Sprintf("void%s %s", ptr, name)}
		}
		o.warn(fmt.Sprintf("member '%s' has an unnamed, unreferenced aggregate type", n.Address()), warn.Degraded)
		return []string{commented(fmt.Sprintf("<unnamed aggregate> %s", name))}
	}

	if unsupportedType(n.Type) {
		o.warn(fmt.Sprintf("type of '%s' is not representable: %s", n.Address(), n.Type), warn.Degraded)
		return []string{commented(fmt.Sprintf("%s %s", n.Type, name))}
	}

	bare, ptr, arr := splitDecor(n.Type)
	t := dialect.Convert(dialect.StripLeadingTypeID(bare)) + ptr
	return []string{fmt.Sprintf("%s %s%s", t, name, arr)}
}

// Function renders free functions, methods, and function templates,
// expanding default-valued parameter suffixes into fixed-arity overloads.
type Function struct{ base }

func (f Function) Lines(o LineOpts) []string {
	n := f.n
	name := f.name(o)

	if unsupportedName(name) {
		o.warn(fmt.Sprintf("function name '%s' is not declarable in the target dialect", n.Address()), warn.Degraded)
		return []string{commented(f.declaration(name, len(n.Params)))}
	}
	if unsupportedType(n.Type) {
		o.warn(fmt.Sprintf("result type of '%s' is not representable: %s", n.Address(), n.Type), warn.Degraded)
		return []string{commented(f.declaration(name, len(n.Params)))}
	}

	k := firstDefaultIndex(n.Params)
	var out []string
	for i := k; i <= len(n.Params); i++ {
		out = append(out, f.declaration(name, i))
	}
	return out
}

// firstDefaultIndex is the index of the first parameter carrying a
// default value, or len(params) when none does.
func firstDefaultIndex(params []*Node) int {
	for i, p := range params {
		if p.HasDefault {
			return i
		}
	}
	return len(params)
}

func (f Function) declaration(name string, numArgs int) string {
	n := f.n

	var args []string
	for _, p := range n.Params[:numArgs] {
		args = append(args, formatParam(p))
	}
	if n.Variadic && numArgs == len(n.Params) {
		args = append(args, "...")
	}
	argList := strings.Join(args, ", ")

	tmpl := dialect.TemplateParamList(n.TemplateParams)
	tail := ""
	if n.ExceptSpec != "" {
		if conv := dialect.Convert(n.ExceptSpec); conv != "" {
			tail = " " + conv
		}
	}

	if n.FuncPtr != nil {
		// Function returning a function pointer: the declared name and
		// argument list sit inside the pointer declarator.
		res := dialect.Convert(dialect.StripAllTypeIDs(n.FuncPtr.Result))
		fpArgs := dialect.Convert(dialect.StripAllTypeIDs(strings.Join(n.FuncPtr.Args, ", ")))
		return fmt.Sprintf("%s (*%s%s(%s))(%s)%s", res, name, tmpl, argList, fpArgs, tail)
	}

	res := dialect.Convert(dialect.StripLeadingTypeID(n.Type))
	if res == "" {
		return fmt.Sprintf("%s%s(%s)%s", name, tmpl, argList, tail)
	}
	return fmt.Sprintf("%s %s%s(%s)%s", res, name, tmpl, argList, tail)
}

func formatParam(p *Node) string {
	if p.FuncPtr != nil {
		res := dialect.Convert(dialect.StripAllTypeIDs(p.FuncPtr.Result))
		args := dialect.Convert(dialect.StripAllTypeIDs(strings.Join(p.FuncPtr.Args, ", ")))
		return fmt.Sprintf("%s (*%s)(%s)", res, p.Spelling, args)
	}
	bare, ptr, arr := splitDecor(p.Type)
	t := dialect.Convert(dialect.StripLeadingTypeID(bare)) + ptr
	if p.Spelling == "" {
		return t + arr
	}
	return fmt.Sprintf("%s %s%s", t, p.Spelling, arr)
}

// Constructor is a Function whose declarations carry no result type.
type Constructor struct{ Function }

func (c Constructor) Lines(o LineOpts) []string {
	n := c.n
	name := n.Parent.Spelling
	k := firstDefaultIndex(n.Params)
	var out []string
	for i := k; i <= len(n.Params); i++ {
		out = append(out, c.declaration(name, i))
	}
	return out
}

func (c Constructor) declaration(name string, numArgs int) string {
	var args []string
	for _, p := range c.n.Params[:numArgs] {
		args = append(args, formatParam(p))
	}
	tail := ""
	if c.n.ExceptSpec != "" {
		if conv := dialect.Convert(c.n.ExceptSpec); conv != "" {
			tail = " " + conv
		}
	}
	return fmt.Sprintf("%s(%s)%s", name, strings.Join(args, ", "), tail)
}

// Enumeration renders an enum and its constants.
type Enumeration struct{ base }

func (e Enumeration) Lines(o LineOpts) []string {
	header := fmt.Sprintf("enum %s:", e.name(o))
	if o.Typedef {
		header = "ctypedef " + header
	}
	var consts []string
	for _, c := range e.n.Children {
		if c.Kind == KindEnumConstant {
			consts = append(consts, c.Spelling)
		}
	}
	if len(consts) == 0 {
		consts = []string{"pass"}
	}
	return append([]string{header}, indent(consts)...)
}

// Union renders a union via the shared member block.
type Union struct{ base }

func (u Union) Lines(o LineOpts) []string {
	header := fmt.Sprintf("union %s:", u.name(o))
	if o.Typedef {
		header = "ctypedef " + header
	}
	return aggregateLines(u.n, header, o)
}

// Struct renders structs, classes, and class templates.
type Struct struct{ base }

func (s Struct) Lines(o LineOpts) []string {
	n := s.n
	name := s.name(o)

	var header string
	if n.IsCppClass() {
		header = fmt.Sprintf("cppclass %s%s", name, dialect.TemplateParamList(n.TemplateParams))
		if len(n.Bases) > 0 {
			var bases []string
			for _, b := range n.Bases {
				bases = append(bases, dialect.Convert(b))
			}
			header += "(" + strings.Join(bases, ", ") + ")"
		}
		header += ":"
	} else {
		header = fmt.Sprintf("struct %s:", name)
		if o.Typedef {
			header = "ctypedef " + header
		}
	}
	return aggregateLines(n, header, o)
}

// aggregateLines assembles an aggregate's block: hoisted anonymous
// bodies (C mode), the header, and the indented member lines.
func aggregateLines(n *Node, header string, o LineOpts) []string {
	if !n.Definition {
		return []string{header, "    pass"}
	}
	pre, body := Members(n.Children, MemberOpts{
		ScopeName:  flatten(n.Address()),
		ClassSpace: n.IsCppClass(),
		// C aggregates cannot nest definitions in the target dialect, so
		// anonymous bodies are hoisted above the header.
		Restricted: !n.IsCppClass(),
		Warn:       o.Warn,
	})
	if len(body) == 0 {
		body = []string{"pass"}
	}
	out := append([]string{}, pre...)
	out = append(out, header)
	return append(out, indent(body)...)
}

// flatten turns a qualified address into an identifier fragment.
func flatten(addr string) string {
	return strings.ReplaceAll(addr, "::", "_")
}

// Typedef renders type aliases, including function-pointer prototypes
// and the va_list special case.
type Typedef struct{ base }

func (t Typedef) Lines(o LineOpts) []string {
	n := t.n
	name := t.name(o)

	if strings.Contains(n.Type, "__builtin_va_list") || n.Type == "va_list" {
		return []string{fmt.Sprintf("ctypedef void* %s", name)}
	}

	if n.FuncPtr != nil {
		res := dialect.Convert(dialect.StripAllTypeIDs(n.FuncPtr.Result))
		args := dialect.Convert(dialect.StripAllTypeIDs(strings.Join(n.FuncPtr.Args, ", ")))
		return []string{fmt.Sprintf("ctypedef %s (*%s)(%s)", res, name, args)}
	}

	if n.AnonRef != nil {
		// Typedef of an unnamed aggregate declared inline: the alias
		// supplies the aggregate's visible name.
		return Specialize(n.AnonRef).Lines(LineOpts{Name: name, Typedef: true, Warn: o.Warn})
	}

	if unsupportedType(n.Type) {
		o.warn(fmt.Sprintf("underlying type of '%s' is not representable: %s", n.Address(), n.Type), warn.Degraded)
		return []string{commented(fmt.Sprintf("ctypedef %s %s", n.Type, name))}
	}

	bare, ptr, arr := splitDecor(n.Type)
	conv := dialect.Convert(dialect.StripLeadingTypeID(bare)) + ptr
	return []string{fmt.Sprintf("ctypedef %s %s%s", conv, name, arr)}
}

var (
	intLitRe   = regexp.MustCompile(`^[+-]?(0[xX][0-9a-fA-F]+|0[bB][01]+|[0-9]+)[uUlL]*$`)
	floatLitRe = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.[0-9]+|[0-9]+[eE][+-]?[0-9]+)([eE][+-]?[0-9]+)?[fFlL]?$`)
)

// Macro renders preprocessor definitions as extern constants.
type Macro struct{ base }

func (m Macro) Lines(o LineOpts) []string {
	n := m.n
	name := m.name(o)
	if n.MacroFunc {
		return []string{fmt.Sprintf("const int %s(...)", name)}
	}
	body := strings.TrimSpace(n.MacroBody)
	switch {
	case intLitRe.MatchString(body):
		return []string{fmt.Sprintf("const long %s", name)}
	case floatLitRe.MatchString(body):
		return []string{fmt.Sprintf("const double %s", name)}
	default:
		return []string{fmt.Sprintf("const int %s", name)}
	}
}

// Opaque covers constructs the dialect has no form for. They render as
// comments so a scope's structure stays visible in the output.
type Opaque struct{ base }

func (p Opaque) Lines(o LineOpts) []string {
	n := p.n
	o.warn(fmt.Sprintf("no target form for %s '%s'", n.Kind, n.Address()), warn.Degraded)
	return []string{commented(fmt.Sprintf("%s %s", n.Kind, n.Spelling))}
}
