// Package normalize reconciles representational differences between an
// expected and an actual bindings result before structural comparison.
// It only ever relaxes the expected side toward the actual side, or trims
// harmless excess from the actual side; it never invents or removes a value
// that changes which solutions are present, and it never reorders rows.
package normalize

import (
	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// Bindings normalizes an (expected, actual) pair of bindings results and
// returns rewritten copies. Boolean and graph results bypass this step
// entirely. The function is idempotent: normalizing an already-normalized
// pair yields no further change.
func Bindings(expected, actual *result.Bindings) (*result.Bindings, *result.Bindings) {
	expected = expected.Clone()
	actual = actual.Clone()

	if !SameVarSet(expected.Vars, actual.Vars) {
		// Expected being a strict superset models engines that omit
		// variables absent from every solution. Shrinkage on the actual
		// side relative to expected is never auto-corrected: it may hide
		// a real defect, so it surfaces as a comparison mismatch.
		if isStrictSuperset(expected.Vars, actual.Vars) {
			dropVars(expected, varSet(actual.Vars))
		}
		return expected, actual
	}

	// Variable sets match; reconcile per-row unbound conventions.
	if allExplicitUnbound(actual) && hasBoundValue(expected) {
		// The engine could produce no bindings at all here; compare
		// shape, not values, by unbinding the expected side too.
		makeAllExplicitUnbound(expected)
		return expected, actual
	}

	if excessIsExplicitUnbound(expected, actual) {
		dropExcessUnbound(expected, actual)
	}
	// The opposite direction (expected-side explicit-unbound back to
	// omitted) is intentionally not performed. The tolerance is one-way;
	// see the comparator's row formatting, which renders both unbound
	// conventions identically anyway.

	return expected, actual
}

// SameVarSet reports whether two projections bind the same variable names.
// Declared order carries no meaning; it is presentation, not semantics.
func SameVarSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := varSet(a)
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

// isStrictSuperset reports whether super contains every element of sub and
// at least one more.
func isStrictSuperset(super, sub []string) bool {
	set := varSet(super)
	if len(set) <= len(varSet(sub)) {
		return false
	}
	for _, v := range sub {
		if !set[v] {
			return false
		}
	}
	return true
}

func varSet(vars []string) map[string]bool {
	set := make(map[string]bool, len(vars))
	for _, v := range vars {
		set[v] = true
	}
	return set
}

// dropVars removes from b every projection variable not in keep, along
// with all its bindings.
func dropVars(b *result.Bindings, keep map[string]bool) {
	kept := b.Vars[:0]
	for _, v := range b.Vars {
		if keep[v] {
			kept = append(kept, v)
		}
	}
	b.Vars = kept
	for _, row := range b.Rows {
		for name := range row {
			if !keep[name] {
				delete(row, name)
			}
		}
	}
}

// allExplicitUnbound reports whether the result is in the explicit-unbound
// style: at least one explicit-unbound marker is present and no row binds a
// real value. Rows that merely omit bindings do not qualify on their own,
// so an actual result with empty rows never triggers the expected-side
// relaxation.
func allExplicitUnbound(b *result.Bindings) bool {
	marked := false
	for _, row := range b.Rows {
		for _, v := range row {
			if _, unbound := v.(result.Unbound); !unbound {
				return false
			}
			marked = true
		}
	}
	return marked
}

// hasBoundValue reports whether any row binds any variable to a real value.
func hasBoundValue(b *result.Bindings) bool {
	for _, row := range b.Rows {
		for _, v := range row {
			if !result.IsUnbound(v) {
				return true
			}
		}
	}
	return false
}

// makeAllExplicitUnbound replaces every binding with the explicit-unbound
// marker, keeping row count and bound-variable presence intact.
func makeAllExplicitUnbound(b *result.Bindings) {
	for _, row := range b.Rows {
		for name := range row {
			row[name] = result.Unbound{}
		}
	}
}

// excessIsExplicitUnbound reports whether the actual result carries
// strictly more bindings per row than the expected result, with every
// excess binding being the explicit-unbound marker.
func excessIsExplicitUnbound(expected, actual *result.Bindings) bool {
	if len(expected.Rows) != len(actual.Rows) {
		return false
	}
	excess := false
	for i, arow := range actual.Rows {
		erow := expected.Rows[i]
		if len(arow) < len(erow) {
			return false
		}
		if len(arow) > len(erow) {
			excess = true
		}
		for name, v := range arow {
			if _, inExpected := erow[name]; inExpected {
				continue
			}
			if _, unbound := v.(result.Unbound); !unbound {
				return false
			}
		}
	}
	return excess
}

// dropExcessUnbound removes from each actual row the explicit-unbound
// bindings that the corresponding expected row omits, converting the
// verbose engine output back to the omit convention.
func dropExcessUnbound(expected, actual *result.Bindings) {
	for i, arow := range actual.Rows {
		erow := expected.Rows[i]
		for name, v := range arow {
			if _, inExpected := erow[name]; inExpected {
				continue
			}
			if _, unbound := v.(result.Unbound); unbound {
				delete(arow, name)
			}
		}
	}
}
