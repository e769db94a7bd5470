// Package result defines the canonical, format-independent model of a query
// result: a bindings table, a boolean answer, or a graph. Format parsers
// produce it, the normalizer rewrites it, and the comparator consumes it.
package result

import (
	"fmt"
	"sort"
	"strings"
)

// Result is a sealed interface over the three result variants.
// Only *Bindings, Boolean, and *Graph implement it.
type Result interface {
	result() // Sealed - only these types implement it

	// Kind identifies the variant for dispatch and diagnostics.
	Kind() Kind
}

// Kind identifies a result variant.
type Kind string

const (
	KindBindings Kind = "bindings"
	KindBoolean  Kind = "boolean"
	KindGraph    Kind = "graph"
)

// Row maps variable names to values for one solution. A variable absent
// from the map is unbound for that row ("omit" convention); a variable
// mapped to Unbound{} is explicitly unbound ("explicit-unbound"
// convention). Both render identically in formatted rows.
type Row map[string]Value

// Bindings is an ordered solution sequence over a declared projection.
type Bindings struct {
	// Vars is the projection in declared order. Row formatting and
	// positional comparison follow this order.
	Vars []string

	// Rows is the solution sequence in the order encountered. The model
	// never reorders rows; order sensitivity is a comparator concern.
	Rows []Row
}

func (*Bindings) result() {}

// Kind implements Result.
func (*Bindings) Kind() Kind { return KindBindings }

// HasVar reports whether name is in the declared projection.
func (b *Bindings) HasVar(name string) bool {
	for _, v := range b.Vars {
		if v == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. The normalizer rewrites copies so callers
// keep the parsed originals for diagnostics.
func (b *Bindings) Clone() *Bindings {
	c := &Bindings{
		Vars: append([]string(nil), b.Vars...),
		Rows: make([]Row, len(b.Rows)),
	}
	for i, row := range b.Rows {
		nr := make(Row, len(row))
		for k, v := range row {
			nr[k] = v
		}
		c.Rows[i] = nr
	}
	return c
}

// FormatRow renders one row as "var=token" pairs joined in the given
// variable order. Missing bindings render as the explicit unbound marker,
// so the omit and explicit-unbound conventions compare identically.
func FormatRow(vars []string, row Row) string {
	parts := make([]string, len(vars))
	for i, name := range vars {
		v, ok := row[name]
		if !ok || IsUnbound(v) {
			parts[i] = name + "=" + UnboundToken
			continue
		}
		parts[i] = name + "=" + v.Token()
	}
	return strings.Join(parts, " ")
}

// FormatRows renders every row with blank-node labels replaced by canonical
// labels assigned in order of first appearance (row order, then variable
// order). Labels are implementation-assigned, so two results that differ
// only in labeling format identically.
func (b *Bindings) FormatRows() []string {
	labels := make(map[string]string)
	out := make([]string, len(b.Rows))
	for i, row := range b.Rows {
		relabeled := make(Row, len(row))
		for _, name := range b.Vars {
			v, ok := row[name]
			if !ok {
				continue
			}
			if bn, isBN := v.(BlankNode); isBN {
				canon, seen := labels[bn.Label]
				if !seen {
					canon = fmt.Sprintf("b%d", len(labels))
					labels[bn.Label] = canon
				}
				relabeled[name] = BlankNode{Label: canon}
				continue
			}
			relabeled[name] = v
		}
		out[i] = FormatRow(b.Vars, relabeled)
	}
	return out
}

// SortedFormatRows is FormatRows followed by a total, deterministic byte
// ordering, for order-insensitive comparison.
func (b *Bindings) SortedFormatRows() []string {
	rows := b.FormatRows()
	sort.Strings(rows)
	return rows
}

// Boolean is the answer to an existence-style query.
type Boolean bool

func (Boolean) result() {}

// Kind implements Result.
func (Boolean) Kind() Kind { return KindBoolean }
