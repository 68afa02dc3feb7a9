// # internal/ast/node.go
package ast

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind tags the declaration variant a Node represents. The set is closed:
// every consumer switches exhaustively over it.
type Kind int

const (
	KindOpaque Kind = iota // recognized but not representable (using-directives, friend decls, ...)
	KindNamespace
	KindStruct
	KindClass
	KindClassTemplate
	KindUnion
	KindEnum
	KindEnumConstant
	KindTypedef
	KindField
	KindVar
	KindParam
	KindFunction
	KindMethod
	KindFunctionTemplate
	KindMacro
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindStruct:
		return "struct"
	case KindClass:
		return "class"
	case KindClassTemplate:
		return "class template"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindEnumConstant:
		return "enum constant"
	case KindTypedef:
		return "typedef"
	case KindField:
		return "field"
	case KindVar:
		return "variable"
	case KindParam:
		return "parameter"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindFunctionTemplate:
		return "function template"
	case KindMacro:
		return "macro"
	default:
		return "opaque"
	}
}

type Access int

const (
	Public Access = iota
	Protected
	Private
)

// Node is a read-only projection of one parsed declaration. Values are
// built by the front end (internal/parser) and never mutated afterwards;
// identity is the qualified address, not pointer identity, because the
// same logical declaration can be reached through redeclarations in
// several headers.
type Node struct {
	Kind      Kind
	Spelling  string
	File      string
	Line      int
	Access    Access
	Anonymous bool
	// Definition is false for forward declarations.
	Definition bool
	Static     bool
	Variadic   bool

	// Type is the full source spelling of the declared type: the field or
	// variable type, a function's result type, or a typedef's underlying
	// type. Decoration tokens (*, &, [N]) stay embedded in the spelling.
	Type string
	// FuncPtr holds the pieces of a function-pointer type when Type
	// spells one, so renderers can re-inject the declared name.
	FuncPtr *FuncPtrType

	TemplateParams []string
	Params         []*Node // KindParam, in declaration order
	HasDefault     bool    // parameter carries a default-value expression

	// ExceptSpec holds a function's raw exception specifier text
	// ("noexcept", "throw(...)"), empty when none was written.
	ExceptSpec string
	// Bases lists the public base class spellings of a class declaration.
	Bases []string

	// AnonRef points at the unnamed aggregate a field's or typedef's type
	// refers to, when the aggregate was declared inline with no name.
	AnonRef *Node

	// EnumValue is meaningful for KindEnumConstant only.
	EnumValue int64
	// MacroFunc marks a function-like macro; MacroBody holds its token text.
	MacroFunc bool
	MacroBody string

	Parent   *Node
	Children []*Node

	addr string // memoized qualified address
}

// FuncPtrType carries the decomposed pieces of a function-pointer spelling.
type FuncPtrType struct {
	Result string
	Args   []string
}

var spaceKinds = map[Kind]bool{
	KindNamespace:     true,
	KindStruct:        true,
	KindClass:         true,
	KindClassTemplate: true,
}

var structuredKinds = map[Kind]bool{
	KindStruct:        true,
	KindClass:         true,
	KindClassTemplate: true,
}

var functionKinds = map[Kind]bool{
	KindFunction:         true,
	KindMethod:           true,
	KindFunctionTemplate: true,
}

// anonCapable lists the kinds that may legally appear without a spelling.
var anonCapable = map[Kind]bool{
	KindStruct: true,
	KindClass:  true,
	KindUnion:  true,
	KindEnum:   true,
}

func (n *Node) IsSpace() bool          { return spaceKinds[n.Kind] }
func (n *Node) IsStructuredData() bool { return structuredKinds[n.Kind] }
func (n *Node) IsFunctional() bool     { return functionKinds[n.Kind] }

// IsCppClass reports whether the node is rendered as a cppclass rather
// than a POD struct.
func (n *Node) IsCppClass() bool {
	return n.Kind == KindClass || n.Kind == KindClassTemplate
}

// key is the last path segment of the qualified address. Anonymous
// declarations get a location-derived placeholder so that two anonymous
// siblings never share an address.
func (n *Node) key() string {
	if n.Spelling != "" {
		return n.Spelling
	}
	return fmt.Sprintf("(anonymous %s:%d)", filepath.Base(n.File), n.Line)
}

// Location is the qualified path of the enclosing scopes, without the
// node's own name.
func (n *Node) Location() string {
	var parts []string
	for p := n.Parent; p != nil; p = p.Parent {
		if p.IsSpace() && (p.Spelling != "" || p.Anonymous) {
			parts = append(parts, p.key())
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// Address is the fully qualified name, scopes joined with "::". It is
// the node's identity for dedup, visited sets, and resolver keys.
func (n *Node) Address() string {
	if n.addr == "" {
		loc := n.Location()
		if loc == "" {
			n.addr = n.key()
		} else {
			n.addr = loc + "::" + n.key()
		}
	}
	return n.addr
}

// Namespace is the chain of enclosing namespace declarations only,
// excluding class scopes. Used when deciding import aliasing.
func (n *Node) Namespace() string {
	var parts []string
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindNamespace && p.Spelling != "" {
			parts = append(parts, p.Spelling)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}
