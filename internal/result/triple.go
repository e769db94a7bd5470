package result

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Triple is one (subject, predicate, object) statement. Subjects are URIs
// or blank nodes, predicates URIs, objects any term; the model does not
// enforce this so parsers can surface malformed input for diagnostics.
type Triple struct {
	Subject   Value
	Predicate Value
	Object    Value
}

// Token renders the triple in N-Triples-like token syntax.
func (t Triple) Token() string {
	return t.Subject.Token() + " " + t.Predicate.Token() + " " + t.Object.Token() + " ."
}

// Graph is an unordered triple set.
type Graph struct {
	Triples []Triple
}

func (*Graph) result() {}

// Kind implements Result.
func (*Graph) Kind() Kind { return KindGraph }

// CanonicalLines renders the graph as sorted canonical statement lines.
// Literal lexical forms are NFC-normalized so byte-identical semantics
// produce byte-identical lines.
//
// Blank-node labels are carried verbatim: this rendering is the input to
// the line-diff fallback, which is strictly weaker than isomorphism
// checking and can report false mismatches on relabeled blank nodes.
// Callers wanting isomorphism must configure the external graph comparator.
func (g *Graph) CanonicalLines() []string {
	lines := make([]string, len(g.Triples))
	for i, t := range g.Triples {
		lines[i] = Triple{
			Subject:   nfcValue(t.Subject),
			Predicate: nfcValue(t.Predicate),
			Object:    nfcValue(t.Object),
		}.Token()
	}
	sort.Strings(lines)
	return lines
}

// CanonicalText is CanonicalLines joined with newlines, trailing newline
// included. This is what gets written to scratch files for external diff
// tooling and the external graph comparator.
func (g *Graph) CanonicalText() string {
	lines := g.CanonicalLines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func nfcValue(v Value) Value {
	lit, ok := v.(Literal)
	if !ok {
		return v
	}
	lit.Lexical = norm.NFC.String(lit.Lexical)
	return lit
}
