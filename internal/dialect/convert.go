// # internal/dialect/convert.go
//
// Pure token rewriting from C/C++ type spellings into Cython pxd
// spellings. Nothing in this package resolves names; qualified-name
// handling belongs to internal/resolve.
package dialect

import "strings"

var typeIDs = []string{"struct ", "enum ", "union "}

// Convert rewrites a C/C++ dialect string into the Cython dialect:
// template delimiters, exception specifications, the boolean type, and
// qualifiers Cython has no spelling for. Idempotent.
func Convert(s string) string {
	ret := strings.ReplaceAll(strings.ReplaceAll(s, "<", "["), ">", "]")

	if tloc := strings.Index(ret, "throw("); tloc != -1 {
		if eb := strings.Index(ret[tloc:], ")"); eb != -1 {
			ret = strings.Replace(ret, ret[tloc:tloc+eb+1], "except +", 1)
		}
	} else {
		ret = strings.ReplaceAll(ret, "noexcept", "")
	}

	ret = strings.ReplaceAll(ret, "_Bool", "bint")
	ret = strings.ReplaceAll(ret, "bool ", "bint ")
	ret = strings.ReplaceAll(ret, "bool,", "bint,")
	ret = strings.ReplaceAll(ret, "(bool)", "(bint)")
	if ret == "bool" {
		ret = "bint"
	}
	ret = strings.ReplaceAll(ret, "restrict ", "")
	ret = strings.ReplaceAll(ret, "volatile ", "")

	return strings.TrimRight(ret, " ")
}

// StripLeadingTypeID removes a struct/enum/union tag at the start of a
// type spelling, keeping a leading const.
func StripLeadingTypeID(s string) string {
	for _, id := range typeIDs {
		if strings.HasPrefix(s, id) {
			return s[len(id):]
		}
		if c := "const " + id; strings.HasPrefix(s, c) {
			return strings.Replace(s, c, "const ", 1)
		}
	}
	return s
}

// StripAllTypeIDs deletes every struct/enum/union tag in the spelling.
// Used for function-pointer spellings where tags can appear per argument.
func StripAllTypeIDs(s string) string {
	for _, id := range typeIDs {
		s = strings.ReplaceAll(s, id, "")
	}
	return s
}

// Sanitize reduces a type spelling to the bare identifier submitted to
// the resolver: qualifiers, signedness, template arguments, array and
// pointer/reference decorations all go.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "unsigned ", "")
	s = strings.ReplaceAll(s, "signed ", "")
	s = strings.ReplaceAll(s, "const ", "")
	s = strings.ReplaceAll(s, "volatile ", "")
	s = StripLeadingTypeID(s)

	for _, cut := range []string{"<", "["} {
		if i := strings.Index(s, cut); i != -1 {
			s = s[:i]
		}
	}
	// Cutting at * also removes a trailing C99 restrict.
	if i := strings.Index(s, "*"); i != -1 {
		s = s[:i]
	}
	if i := strings.Index(s, "&"); i != -1 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}

// NestedTemplateArgs returns the top-level template argument spellings of
// s, recursively. For "std::map<std::string, ns::T<int>>" it yields
// "std::string", "ns::T<int>", "int".
func NestedTemplateArgs(s string) []string {
	open := strings.Index(s, "<")
	if open == -1 {
		return nil
	}
	depth := 0
	end := -1
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil
	}

	var args []string
	inner := s[open+1 : end]
	depth = 0
	last := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[last:i]))
				last = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(inner[last:]); tail != "" {
		args = append(args, tail)
	}

	var all []string
	for _, a := range args {
		all = append(all, a)
		all = append(all, NestedTemplateArgs(a)...)
	}
	return all
}

// ReferencedNames returns the sanitized resolver-facing identifiers a
// spelling depends on: its own base name plus every nested template
// argument's base name. Empty and builtin-decoration-only results are
// dropped.
func ReferencedNames(s string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(raw string) {
		name := Sanitize(raw)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, arg := range NestedTemplateArgs(s) {
		add(arg)
	}
	add(s)
	return out
}

// TemplateParamList renders the Cython parameter bracket for a template
// declaration, "[T, U]", or "" when there are no parameters.
func TemplateParamList(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "[" + strings.Join(params, ", ") + "]"
}

// TightenRef collapses the space before a trailing pointer or reference
// token: "char *" -> "char*".
func TightenRef(s string) string {
	if strings.HasSuffix(s, "*") {
		return strings.ReplaceAll(s, " *", "*")
	}
	if strings.HasSuffix(s, "&") {
		return strings.ReplaceAll(s, " &", "&")
	}
	return s
}
