// # internal/parser/cpp.go
//
// Lowering of the tree-sitter C/C++ concrete syntax tree into the
// declaration model. One extractor serves both grammars; the C grammar
// simply never produces the C++-only node kinds.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"cybind/internal/ast"
)

type CppExtractor struct{}

func (e *CppExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*ast.Node, []string, error) {
	unit := &ast.Node{
		Kind:       ast.KindNamespace,
		Spelling:   "",
		File:       filePath,
		Definition: true,
	}

	w := &cppWalker{src: source, file: filePath}
	w.scope(root, unit, ast.Public)
	if len(w.diags) == 0 && root.HasError() {
		w.diags = append(w.diags, fmt.Sprintf("%s: syntax errors in translation unit", filePath))
	}
	return unit, w.diags, nil
}

type cppWalker struct {
	src   []byte
	file  string
	diags []string
}

func (w *cppWalker) text(n *sitter.Node) string {
	return n.Utf8Text(w.src)
}

func (w *cppWalker) line(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// scope walks the children of a declaration container (translation
// unit, namespace body, class body) into parent.
func (w *cppWalker) scope(container *sitter.Node, parent *ast.Node, access ast.Access) {
	for i := uint(0); i < container.ChildCount(); i++ {
		c := container.Child(i)
		if c.IsError() {
			w.diags = append(w.diags, fmt.Sprintf("%s:%d: syntax error near %q", w.file, w.line(c), clip(w.text(c))))
			continue
		}

		switch c.Kind() {
		case "namespace_definition":
			w.namespaceDef(c, parent)
		case "linkage_specification":
			// extern "C" { ... } is transparent for declarations.
			if body := c.ChildByFieldName("body"); body != nil {
				w.scope(body, parent, access)
			}
		case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif":
			w.scope(c, parent, access)
		case "access_specifier":
			access = parseAccess(w.text(c))
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			w.aggregate(c, parent, access, nil)
		case "template_declaration":
			w.templateDecl(c, parent, access)
		case "function_definition":
			w.functionLike(c, parent, access, nil)
		case "declaration", "field_declaration":
			w.declaration(c, parent, access)
		case "type_definition":
			w.typedef(c, parent, access)
		case "alias_declaration":
			w.aliasDecl(c, parent, access)
		case "preproc_def":
			w.macro(c, parent, false)
		case "preproc_function_def":
			w.macro(c, parent, true)
		case "friend_declaration", "using_declaration", "static_assert_declaration":
			// Recognized but not representable.
			w.opaque(c, parent, access)
		}
	}
}

func parseAccess(s string) ast.Access {
	switch {
	case strings.Contains(s, "public"):
		return ast.Public
	case strings.Contains(s, "protected"):
		return ast.Protected
	default:
		return ast.Private
	}
}

func (w *cppWalker) opaque(c *sitter.Node, parent *ast.Node, access ast.Access) {
	n := &ast.Node{
		Kind:       ast.KindOpaque,
		Spelling:   clip(w.text(c)),
		File:       w.file,
		Line:       w.line(c),
		Access:     access,
		Definition: true,
		Parent:     parent,
	}
	parent.Children = append(parent.Children, n)
}

// namespaceDef handles both plain and nested (a::b::c) namespace
// definitions, creating one node per path segment.
func (w *cppWalker) namespaceDef(c *sitter.Node, parent *ast.Node) {
	name := ""
	if nn := c.ChildByFieldName("name"); nn != nil {
		name = w.text(nn)
	}

	target := parent
	for _, seg := range strings.Split(name, "::") {
		ns := &ast.Node{
			Kind:       ast.KindNamespace,
			Spelling:   strings.TrimSpace(seg),
			File:       w.file,
			Line:       w.line(c),
			Definition: true,
			Parent:     target,
		}
		target.Children = append(target.Children, ns)
		target = ns
	}

	if body := c.ChildByFieldName("body"); body != nil {
		w.scope(body, target, ast.Public)
	}
}

// aggregate lowers class/struct/union/enum specifiers. templateParams
// is non-nil when the specifier sits under a template declaration.
func (w *cppWalker) aggregate(c *sitter.Node, parent *ast.Node, access ast.Access, templateParams []string) *ast.Node {
	var kind ast.Kind
	switch c.Kind() {
	case "class_specifier":
		kind = ast.KindClass
		if templateParams != nil {
			kind = ast.KindClassTemplate
		}
	case "struct_specifier":
		kind = ast.KindStruct
		if templateParams != nil {
			kind = ast.KindClassTemplate
		}
	case "union_specifier":
		kind = ast.KindUnion
	case "enum_specifier":
		kind = ast.KindEnum
	}

	name := ""
	if nn := c.ChildByFieldName("name"); nn != nil {
		name = w.text(nn)
	}

	body := c.ChildByFieldName("body")
	n := &ast.Node{
		Kind:           kind,
		Spelling:       name,
		File:           w.file,
		Line:           w.line(c),
		Access:         access,
		Anonymous:      name == "",
		Definition:     body != nil,
		TemplateParams: templateParams,
		Parent:         parent,
	}

	for i := uint(0); i < c.ChildCount(); i++ {
		if bc := c.Child(i); bc.Kind() == "base_class_clause" {
			n.Bases = w.baseClasses(bc)
		}
	}

	parent.Children = append(parent.Children, n)

	if body == nil {
		return n
	}
	if kind == ast.KindEnum {
		w.enumerators(body, n)
		return n
	}

	defaultAccess := ast.Public
	if kind == ast.KindClass || (kind == ast.KindClassTemplate && c.Kind() == "class_specifier") {
		defaultAccess = ast.Private
	}
	w.scope(body, n, defaultAccess)
	return n
}

func (w *cppWalker) baseClasses(clause *sitter.Node) []string {
	var bases []string
	for i := uint(0); i < clause.ChildCount(); i++ {
		c := clause.Child(i)
		switch c.Kind() {
		case "type_identifier", "qualified_identifier", "template_type":
			bases = append(bases, w.text(c))
		}
	}
	return bases
}

func (w *cppWalker) enumerators(body *sitter.Node, enum *ast.Node) {
	next := int64(0)
	for i := uint(0); i < body.ChildCount(); i++ {
		c := body.Child(i)
		if c.Kind() != "enumerator" {
			continue
		}
		ec := &ast.Node{
			Kind:       ast.KindEnumConstant,
			File:       w.file,
			Line:       w.line(c),
			Definition: true,
			Parent:     enum,
		}
		if nn := c.ChildByFieldName("name"); nn != nil {
			ec.Spelling = w.text(nn)
		}
		if vn := c.ChildByFieldName("value"); vn != nil {
			if v, err := strconv.ParseInt(strings.TrimSpace(w.text(vn)), 0, 64); err == nil {
				next = v
			}
		}
		ec.EnumValue = next
		next++
		enum.Children = append(enum.Children, ec)
	}
}

// templateDecl unwraps template<...> and lowers the inner declaration
// with the parameter names attached.
func (w *cppWalker) templateDecl(c *sitter.Node, parent *ast.Node, access ast.Access) {
	var params []string
	if pl := c.ChildByFieldName("parameters"); pl != nil {
		params = w.templateParams(pl)
	}
	if params == nil {
		params = []string{}
	}

	for i := uint(0); i < c.ChildCount(); i++ {
		inner := c.Child(i)
		switch inner.Kind() {
		case "class_specifier", "struct_specifier":
			w.aggregate(inner, parent, access, params)
		case "function_definition":
			w.functionLike(inner, parent, access, params)
		case "declaration", "field_declaration":
			if findDescendant(inner, "function_declarator") != nil {
				w.functionLike(inner, parent, access, params)
			}
		case "alias_declaration":
			w.aliasDecl(inner, parent, access)
		}
	}
}

func (w *cppWalker) templateParams(pl *sitter.Node) []string {
	var out []string
	for i := uint(0); i < pl.ChildCount(); i++ {
		c := pl.Child(i)
		switch c.Kind() {
		case "type_parameter_declaration", "optional_type_parameter_declaration":
			// "typename T" / "class T = X": the trailing type identifier
			// is the parameter name.
			var name string
			for j := uint(0); j < c.ChildCount(); j++ {
				if id := c.Child(j); id.Kind() == "type_identifier" {
					name = w.text(id)
					break
				}
			}
			if name != "" {
				out = append(out, name)
			}
		case "parameter_declaration", "optional_parameter_declaration":
			// Non-type parameter, "int N".
			d := declaratorInfo{}
			w.declarator(c, &d)
			if d.name != "" {
				out = append(out, d.name)
			}
		}
	}
	return out
}

// declaration handles declarations and field declarations, which cover
// variables, fields, method prototypes, and inline anonymous aggregate
// members.
func (w *cppWalker) declaration(c *sitter.Node, parent *ast.Node, access ast.Access) {
	if fd := findDescendant(c, "function_declarator"); fd != nil {
		inner := fd.ChildByFieldName("declarator")
		// A parenthesized declarator marks a function-pointer member,
		// which stays on the data path.
		if inner == nil || inner.Kind() != "parenthesized_declarator" {
			w.functionLike(c, parent, access, nil)
			return
		}
	}

	typeNode := c.ChildByFieldName("type")
	var anonRef *ast.Node
	typeText := ""
	if typeNode != nil {
		switch typeNode.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			if typeNode.ChildByFieldName("body") != nil {
				// The aggregate is declared inline; it becomes a sibling
				// emitted ahead of the member that uses it.
				agg := w.aggregate(typeNode, parent, access, nil)
				if agg.Anonymous {
					anonRef = agg
				} else {
					typeText = tagSpelling(typeNode.Kind()) + " " + agg.Spelling
				}
			} else {
				typeText = w.text(typeNode)
			}
		default:
			typeText = w.typeSpelling(c, typeNode)
		}
	}

	static := w.hasStorageClass(c, "static")

	declared := false
	for i := uint(0); i < c.ChildCount(); i++ {
		dc := c.Child(i)
		switch dc.Kind() {
		case "identifier", "field_identifier", "pointer_declarator", "reference_declarator",
			"array_declarator", "init_declarator", "parenthesized_declarator", "function_declarator":
			d := declaratorInfo{}
			w.declaratorNode(dc, &d)
			if d.name == "" {
				continue
			}
			declared = true
			w.addDataNode(c, parent, access, typeText, anonRef, static, d)
		}
	}

	// An inline anonymous aggregate can stand alone (C11 anonymous
	// member); the aggregate node itself already joined the parent.
	if !declared && anonRef == nil && typeText != "" {
		w.opaque(c, parent, access)
	}
}

func (w *cppWalker) addDataNode(c *sitter.Node, parent *ast.Node, access ast.Access, typeText string, anonRef *ast.Node, static bool, d declaratorInfo) {
	kind := ast.KindVar
	if parent.IsStructuredData() || parent.Kind == ast.KindUnion {
		kind = ast.KindField
	}
	n := &ast.Node{
		Kind:       kind,
		Spelling:   d.name,
		File:       w.file,
		Line:       w.line(c),
		Access:     access,
		Definition: true,
		Static:     static,
		AnonRef:    anonRef,
		Parent:     parent,
	}
	if anonRef != nil {
		// Only the decoration tokens survive; the base type has no name.
		n.Type = d.ptr + d.arr
	} else {
		n.Type = typeText + d.ptr + d.arr
	}
	if d.fnPtrParams != nil {
		n.FuncPtr = &ast.FuncPtrType{
			Result: typeText + d.fnPtrResultPtr,
			Args:   w.paramTypeTexts(d.fnPtrParams),
		}
		n.Type = n.FuncPtr.Result + " (*)(" + strings.Join(n.FuncPtr.Args, ", ") + ")"
	}
	parent.Children = append(parent.Children, n)
}

// functionLike lowers function definitions and prototypes, free or
// member, template or plain.
func (w *cppWalker) functionLike(c *sitter.Node, parent *ast.Node, access ast.Access, templateParams []string) {
	fd := findDescendant(c, "function_declarator")
	if fd == nil {
		return
	}

	d := declaratorInfo{}
	w.declaratorNode(fd, &d)
	if d.name == "" || strings.HasPrefix(d.name, "~") {
		// Destructors have no target-dialect declaration form.
		return
	}

	typeNode := c.ChildByFieldName("type")
	result := ""
	if typeNode != nil {
		result = w.typeSpelling(c, typeNode)
	}
	result += d.resultPtr

	kind := ast.KindFunction
	if parent.IsCppClass() || parent.Kind == ast.KindStruct {
		kind = ast.KindMethod
	}
	if templateParams != nil {
		kind = ast.KindFunctionTemplate
	}

	n := &ast.Node{
		Kind:           kind,
		Spelling:       d.name,
		File:           w.file,
		Line:           w.line(c),
		Access:         access,
		Definition:     true,
		Static:         w.hasStorageClass(c, "static"),
		Type:           result,
		TemplateParams: templateParams,
		ExceptSpec:     d.exceptSpec,
		Parent:         parent,
	}

	if d.params != nil {
		w.params(d.params, n)
	}
	if d.fnPtrParams != nil {
		// Function returning a function pointer: the outer parameter
		// list belongs to the returned pointer type.
		n.FuncPtr = &ast.FuncPtrType{
			Result: strings.TrimSuffix(result, d.resultPtr),
			Args:   w.paramTypeTexts(d.fnPtrParams),
		}
	}

	parent.Children = append(parent.Children, n)
}

func (w *cppWalker) params(paramList *sitter.Node, fn *ast.Node) {
	for i := uint(0); i < paramList.ChildCount(); i++ {
		c := paramList.Child(i)
		switch c.Kind() {
		case "variadic_parameter_declaration", "variadic_parameter", "...":
			fn.Variadic = true
		case "parameter_declaration", "optional_parameter_declaration":
			p := w.param(c, fn)
			if p.Type == "void" && p.Spelling == "" && paramList.NamedChildCount() == 1 {
				// f(void) declares zero parameters.
				continue
			}
			fn.Params = append(fn.Params, p)
		}
	}
}

func (w *cppWalker) param(c *sitter.Node, fn *ast.Node) *ast.Node {
	typeText := ""
	if tn := c.ChildByFieldName("type"); tn != nil {
		typeText = w.typeSpelling(c, tn)
	}
	d := declaratorInfo{}
	w.declarator(c, &d)

	p := &ast.Node{
		Kind:       ast.KindParam,
		Spelling:   d.name,
		File:       w.file,
		Line:       w.line(c),
		Definition: true,
		HasDefault: c.Kind() == "optional_parameter_declaration",
		Type:       typeText + d.ptr + d.arr,
		Parent:     fn,
	}
	if d.fnPtrParams != nil {
		p.FuncPtr = &ast.FuncPtrType{
			Result: typeText + d.fnPtrResultPtr,
			Args:   w.paramTypeTexts(d.fnPtrParams),
		}
		p.Type = p.FuncPtr.Result + " (*)(" + strings.Join(p.FuncPtr.Args, ", ") + ")"
	}
	return p
}

// paramTypeTexts renders a parameter list as bare type spellings, used
// for function-pointer argument lists.
func (w *cppWalker) paramTypeTexts(paramList *sitter.Node) []string {
	var out []string
	for i := uint(0); i < paramList.ChildCount(); i++ {
		c := paramList.Child(i)
		switch c.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
			typeText := ""
			if tn := c.ChildByFieldName("type"); tn != nil {
				typeText = w.typeSpelling(c, tn)
			}
			d := declaratorInfo{}
			w.declarator(c, &d)
			spelled := typeText + d.ptr + d.arr
			if spelled != "void" {
				out = append(out, spelled)
			}
		case "variadic_parameter_declaration", "variadic_parameter", "...":
			out = append(out, "...")
		}
	}
	return out
}

// typedef lowers type_definition nodes, covering plain aliases,
// aliases of inline aggregates, and function-pointer prototypes.
func (w *cppWalker) typedef(c *sitter.Node, parent *ast.Node, access ast.Access) {
	typeNode := c.ChildByFieldName("type")
	typeText := ""
	var anonRef *ast.Node

	if typeNode != nil {
		switch typeNode.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			if typeNode.ChildByFieldName("body") != nil {
				agg := w.aggregate(typeNode, parent, access, nil)
				if agg.Anonymous {
					anonRef = agg
				} else {
					typeText = tagSpelling(typeNode.Kind()) + " " + agg.Spelling
				}
			} else {
				typeText = w.text(typeNode)
			}
		default:
			typeText = w.typeSpelling(c, typeNode)
		}
	}

	for i := uint(0); i < c.ChildCount(); i++ {
		dc := c.Child(i)
		switch dc.Kind() {
		case "type_identifier", "pointer_declarator", "array_declarator", "function_declarator":
			if dc == typeNode {
				continue
			}
			d := declaratorInfo{}
			w.declaratorNode(dc, &d)
			if d.name == "" {
				continue
			}
			n := &ast.Node{
				Kind:       ast.KindTypedef,
				Spelling:   d.name,
				File:       w.file,
				Line:       w.line(c),
				Access:     access,
				Definition: true,
				AnonRef:    anonRef,
				Parent:     parent,
			}
			if anonRef != nil {
				n.Type = d.ptr + d.arr
			} else {
				n.Type = typeText + d.ptr + d.arr
			}
			if d.params != nil || d.fnPtrParams != nil {
				pl := d.fnPtrParams
				if pl == nil {
					pl = d.params
				}
				n.FuncPtr = &ast.FuncPtrType{
					Result: typeText + d.fnPtrResultPtr,
					Args:   w.paramTypeTexts(pl),
				}
				n.Type = n.FuncPtr.Result + " (*)(" + strings.Join(n.FuncPtr.Args, ", ") + ")"
			}
			parent.Children = append(parent.Children, n)
		}
	}
}

// aliasDecl lowers "using X = Y" to the same typedef node form.
func (w *cppWalker) aliasDecl(c *sitter.Node, parent *ast.Node, access ast.Access) {
	nameNode := c.ChildByFieldName("name")
	typeNode := c.ChildByFieldName("type")
	if nameNode == nil || typeNode == nil {
		return
	}
	n := &ast.Node{
		Kind:       ast.KindTypedef,
		Spelling:   w.text(nameNode),
		File:       w.file,
		Line:       w.line(c),
		Access:     access,
		Definition: true,
		Type:       w.text(typeNode),
		Parent:     parent,
	}
	parent.Children = append(parent.Children, n)
}

func (w *cppWalker) macro(c *sitter.Node, parent *ast.Node, funcLike bool) {
	nameNode := c.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	n := &ast.Node{
		Kind:       ast.KindMacro,
		Spelling:   w.text(nameNode),
		File:       w.file,
		Line:       w.line(c),
		Definition: true,
		MacroFunc:  funcLike,
		Parent:     parent,
	}
	if vn := c.ChildByFieldName("value"); vn != nil {
		n.MacroBody = strings.TrimSpace(w.text(vn))
	}
	parent.Children = append(parent.Children, n)
}

// typeSpelling joins the type specifiers of a declaration, keeping
// qualifiers and tags so downstream rewriting sees the full spelling.
func (w *cppWalker) typeSpelling(decl, typeNode *sitter.Node) string {
	var parts []string
	for i := uint(0); i < decl.ChildCount(); i++ {
		c := decl.Child(i)
		if c.Kind() == "type_qualifier" {
			parts = append(parts, w.text(c))
		}
		if c == typeNode {
			break
		}
	}
	parts = append(parts, w.text(typeNode))
	return strings.Join(parts, " ")
}

func (w *cppWalker) hasStorageClass(c *sitter.Node, want string) bool {
	for i := uint(0); i < c.ChildCount(); i++ {
		sc := c.Child(i)
		if sc.Kind() == "storage_class_specifier" && w.text(sc) == want {
			return true
		}
	}
	return false
}

// declaratorInfo accumulates the pieces of a declarator chain.
type declaratorInfo struct {
	name string
	// ptr and arr are the decoration tokens between the base type and
	// the declared name.
	ptr string
	arr string
	// params is the parameter list of a function declarator.
	params *sitter.Node
	// fnPtrParams is the parameter list of a parenthesized pointer
	// declarator, i.e. a function-pointer type.
	fnPtrParams    *sitter.Node
	fnPtrResultPtr string
	resultPtr      string
	exceptSpec     string
}

// declarator scans a declaration node for its declarator child.
func (w *cppWalker) declarator(c *sitter.Node, d *declaratorInfo) {
	if dn := c.ChildByFieldName("declarator"); dn != nil {
		w.declaratorNode(dn, d)
	}
}

// declaratorNode walks one declarator chain.
func (w *cppWalker) declaratorNode(n *sitter.Node, d *declaratorInfo) {
	switch n.Kind() {
	case "identifier", "field_identifier", "type_identifier", "qualified_identifier",
		"destructor_name", "operator_name":
		d.name = w.text(n)

	case "pointer_declarator", "abstract_pointer_declarator":
		d.ptr += "*"
		if inner := n.ChildByFieldName("declarator"); inner != nil {
			w.declaratorNode(inner, d)
		}

	case "reference_declarator", "abstract_reference_declarator":
		d.ptr += "&"
		for i := uint(0); i < n.ChildCount(); i++ {
			if inner := n.Child(i); strings.Contains(inner.Kind(), "declarator") ||
				inner.Kind() == "identifier" || inner.Kind() == "field_identifier" {
				w.declaratorNode(inner, d)
			}
		}

	case "array_declarator":
		full := w.text(n)
		if i := strings.Index(full, "["); i != -1 {
			d.arr = full[i:] + d.arr
		}
		if inner := n.ChildByFieldName("declarator"); inner != nil {
			w.declaratorNode(inner, d)
		}

	case "init_declarator":
		if inner := n.ChildByFieldName("declarator"); inner != nil {
			w.declaratorNode(inner, d)
		}

	case "parenthesized_declarator":
		for i := uint(0); i < n.ChildCount(); i++ {
			inner := n.Child(i)
			if inner.Kind() == "pointer_declarator" {
				// The pointer level belongs to the function-pointer
				// form, not the member's own decoration.
				if id := inner.ChildByFieldName("declarator"); id != nil {
					w.declaratorNode(id, d)
				}
			} else if strings.Contains(inner.Kind(), "declarator") {
				w.declaratorNode(inner, d)
			}
		}

	case "function_declarator":
		inner := n.ChildByFieldName("declarator")
		params := n.ChildByFieldName("parameters")
		if inner != nil && inner.Kind() == "parenthesized_declarator" {
			// T (*name)(args): a function-pointer declarator.
			d.fnPtrParams = params
			d.fnPtrResultPtr = d.ptr
			d.ptr = ""
			w.declaratorNode(inner, d)
		} else {
			if d.params == nil {
				d.params = params
			} else if d.fnPtrParams == nil {
				// T (*f(a))(b): the outer list declares f, the inner one
				// belongs to the returned pointer.
				d.fnPtrParams = d.params
				d.params = params
			}
			d.resultPtr = d.ptr
			d.ptr = ""
			if inner != nil {
				w.declaratorNode(inner, d)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			spec := n.Child(i)
			switch spec.Kind() {
			case "noexcept":
				d.exceptSpec = "noexcept"
			case "throw_specifier":
				d.exceptSpec = w.text(spec)
			}
		}
	}
}

func tagSpelling(kind string) string {
	switch kind {
	case "union_specifier":
		return "union"
	case "enum_specifier":
		return "enum"
	default:
		return "struct"
	}
}

// findDescendant returns the first node of the wanted kind, depth
// first, using an explicit stack.
func findDescendant(n *sitter.Node, kind string) *sitter.Node {
	stack := []*sitter.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Kind() == kind {
			return cur
		}
		for i := cur.ChildCount(); i > 0; i-- {
			stack = append(stack, cur.Child(i-1))
		}
	}
	return nil
}

func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
