// # internal/ast/block.go
//
// Shared member-block rendering used by aggregate variants and by the
// namespace-scope renderer. This is where anonymous nested aggregates
// get their names and where typedef suppression happens.
package ast

import (
	"fmt"

	"cybind/internal/warn"
)

// MemberOpts parameterizes one member block.
type MemberOpts struct {
	// ScopeName is the flattened qualified name of the enclosing scope,
	// used to build synthetic anonymous-aggregate names.
	ScopeName string
	// ClassSpace marks an instance scope: access filtering applies and
	// static methods get the @staticmethod marker.
	ClassSpace bool
	// Restricted hoists anonymous aggregate bodies into pre instead of
	// emitting them inline, for aggregate forms that cannot nest
	// definitions.
	Restricted bool
	Warn       warn.Sink
}

// Members renders children in declaration order. pre holds hoisted
// anonymous aggregate blocks, body the member lines; neither carries
// indentation, the caller owns layout.
//
// Anonymous aggregates are named deterministically: if a sibling typedef
// aliases the aggregate, the first such typedef supplies the name and
// the aggregate is emitted in ctypedef form at the typedef's position;
// otherwise the aggregate gets anon_<scope>_<i>, i counting anonymous
// siblings in order. Members referencing the aggregate are rewritten to
// the assigned name with their decoration tokens kept in place.
func Members(children []*Node, o MemberOpts) (pre, body []string) {
	lo := LineOpts{Warn: o.Warn}

	assigned := make(map[*Node]string)
	namedBy := make(map[*Node]*Node)
	ordinal := 0
	for _, c := range children {
		if !c.Anonymous || !anonCapable[c.Kind] {
			continue
		}
		for _, t := range children {
			if t.Kind == KindTypedef && t.AnonRef == c {
				assigned[c] = t.Spelling
				namedBy[c] = t
				break
			}
		}
		if _, ok := assigned[c]; !ok {
			assigned[c] = fmt.Sprintf("anon_%s_%d", o.ScopeName, ordinal)
		}
		ordinal++
	}

	for _, c := range children {
		if o.ClassSpace && c.Access != Public {
			continue
		}

		switch {
		case c.Anonymous && anonCapable[c.Kind]:
			if namedBy[c] != nil {
				continue // emitted at the naming typedef's position
			}
			block := Specialize(c).Lines(LineOpts{Name: assigned[c], Warn: o.Warn})
			if o.Restricted {
				pre = append(pre, block...)
			} else {
				body = append(body, block...)
			}

		case c.Kind == KindTypedef && c.AnonRef != nil && assigned[c.AnonRef] != "":
			if namedBy[c.AnonRef] == c {
				body = append(body, Specialize(c.AnonRef).Lines(LineOpts{Name: c.Spelling, Typedef: true, Warn: o.Warn})...)
				continue
			}
			// A later alias of an already-named declaration.
			_, ptr, arr := splitDecor(c.Type)
			body = append(body, fmt.Sprintf("ctypedef %s%s %s%s", assigned[c.AnonRef], ptr, c.Spelling, arr))

		case (c.Kind == KindField || c.Kind == KindVar) && c.AnonRef != nil && assigned[c.AnonRef] != "":
			_, ptr, arr := splitDecor(c.Type)
			body = append(body, fmt.Sprintf("%s%s %s%s", assigned[c.AnonRef], ptr, c.Spelling, arr))

		case c.Kind == KindParam || c.Kind == KindEnumConstant || c.Kind == KindNamespace:
			// Not members of an aggregate body.

		case c.IsFunctional() && c.Static && o.ClassSpace:
			for _, line := range Specialize(c).Lines(lo) {
				body = append(body, "@staticmethod", line)
			}

		default:
			body = append(body, Specialize(c).Lines(lo)...)
		}
	}
	return pre, body
}
