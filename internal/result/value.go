package result

import (
	"strings"
)

// Value is a sealed interface representing one RDF term bound to a variable.
// Only URI, Literal, BlankNode, and Unbound implement it.
type Value interface {
	value() // Sealed - only these types implement it

	// Token renders the value in the canonical token syntax used for
	// row formatting and diagnostics: <uri>, "lex", "lex"@lang,
	// "lex"^^<dt>, _:label.
	Token() string
}

// URI is an absolute IRI reference.
type URI string

func (URI) value() {}

// Token implements Value.
func (u URI) Token() string { return "<" + string(u) + ">" }

// Literal is a lexical form with an optional datatype IRI and an optional
// language tag. A literal never carries both.
type Literal struct {
	Lexical  string
	Datatype string // empty when plain or language-tagged
	Lang     string // empty when plain or datatyped
}

func (Literal) value() {}

// Token implements Value.
func (l Literal) Token() string {
	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escapeLexical(l.Lexical))
	b.WriteByte('"')
	if l.Lang != "" {
		b.WriteByte('@')
		b.WriteString(l.Lang)
	} else if l.Datatype != "" {
		b.WriteString("^^<")
		b.WriteString(l.Datatype)
		b.WriteByte('>')
	}
	return b.String()
}

// BlankNode is an anonymous node. Labels are implementation-assigned and
// never portable between an expected and an actual result; comparison code
// must relabel them consistently before comparing tokens.
type BlankNode struct {
	Label string
}

func (BlankNode) value() {}

// Token implements Value.
func (b BlankNode) Token() string { return "_:" + b.Label }

// Unbound is the explicit-unbound marker. Parsers emit it when a surface
// format marks a binding as present-but-empty (e.g. an empty DSV field)
// rather than omitting it. Omission from a Row means unbound too; the
// normalizer reconciles the two conventions.
type Unbound struct{}

func (Unbound) value() {}

// UnboundToken is the rendering of an unbound binding in formatted rows.
// Both the omit and explicit-unbound conventions render to this token, so
// the two compare identically after formatting.
const UnboundToken = "UNBOUND"

// Token implements Value.
func (Unbound) Token() string { return UnboundToken }

// Equal reports structural equality of two values. Blank nodes compare
// equal only on identical labels; callers needing label-insensitive
// comparison must relabel first (see Bindings.FormatRows).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case URI:
		bv, ok := b.(URI)
		return ok && av == bv
	case Literal:
		bv, ok := b.(Literal)
		return ok && av == bv
	case BlankNode:
		bv, ok := b.(BlankNode)
		return ok && av.Label == bv.Label
	case Unbound:
		_, ok := b.(Unbound)
		return ok
	default:
		return false
	}
}

// IsUnbound reports whether v is absent or the explicit-unbound marker.
func IsUnbound(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Unbound)
	return ok
}

// escapeLexical escapes the characters that would make a token ambiguous.
func escapeLexical(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
