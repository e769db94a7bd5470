package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

func lit(s string) result.Value { return result.Literal{Lexical: s} }

func TestBindings_ExpectedSupersetShrinksToActual(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("1")}},
	}

	ne, na := Bindings(expected, actual)

	assert.Equal(t, []string{"x"}, ne.Vars)
	assert.Equal(t, actual.Vars, na.Vars)
	assert.Equal(t, ne.FormatRows(), na.FormatRows())
}

func TestBindings_SupersetDropsBindingsToo(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1"), "y": lit("2")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("1")}},
	}

	ne, _ := Bindings(expected, actual)

	_, stillBound := ne.Rows[0]["y"]
	assert.False(t, stillBound, "dropped variable must lose its bindings")
}

func TestBindings_ActualShrinkageNeverCorrected(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("1")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1"), "y": lit("2")}},
	}

	ne, na := Bindings(expected, actual)

	// Expected keeps its shape; the comparator will report the mismatch.
	assert.Equal(t, []string{"x"}, ne.Vars)
	assert.Equal(t, []string{"x", "y"}, na.Vars)
}

func TestBindings_AllUnboundActualRelaxesExpected(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("1")}, {"x": lit("2")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": result.Unbound{}}, {"x": result.Unbound{}}},
	}

	ne, na := Bindings(expected, actual)
	assert.Equal(t, ne.FormatRows(), na.FormatRows())
}

// Rows that omit every binding are not the explicit-unbound style: the
// expected side must keep its bound values so the mismatch surfaces.
func TestBindings_EmptyActualRowsNotRelaxed(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("1")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{}},
	}

	ne, _ := Bindings(expected, actual)
	assert.Equal(t, lit("1"), ne.Rows[0]["x"])
}

func TestBindings_ExcessExplicitUnboundDroppedFromActual(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1"), "y": result.Unbound{}}},
	}

	_, na := Bindings(expected, actual)
	_, present := na.Rows[0]["y"]
	assert.False(t, present, "excess explicit-unbound binding must be dropped")
}

func TestBindings_ExcessWithBoundValueLeftAlone(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1"), "y": lit("2")}},
	}

	_, na := Bindings(expected, actual)
	assert.Equal(t, lit("2"), na.Rows[0]["y"], "bound excess must surface as a mismatch")
}

// The unbound tolerance is one-way: expected-side explicit-unbound
// bindings are not converted to the omit convention. Known asymmetry,
// preserved on purpose.
func TestBindings_ExpectedUnboundNotConverted(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1"), "y": result.Unbound{}}},
	}
	actual := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1")}},
	}

	ne, _ := Bindings(expected, actual)
	_, present := ne.Rows[0]["y"]
	assert.True(t, present, "expected-side explicit-unbound stays as-is")
}

func TestBindings_Idempotent(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x", "y"},
		Rows: []result.Row{{"x": lit("1"), "y": result.Unbound{}}, {"x": lit("2")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("1")}, {"x": lit("2")}},
	}

	e1, a1 := Bindings(expected, actual)
	e2, a2 := Bindings(e1, a1)

	assert.Equal(t, e1, e2)
	assert.Equal(t, a1, a2)
}

func TestBindings_RowOrderPreserved(t *testing.T) {
	expected := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("b")}, {"x": lit("a")}},
	}
	actual := &result.Bindings{
		Vars: []string{"x"},
		Rows: []result.Row{{"x": lit("a")}, {"x": lit("b")}},
	}

	ne, na := Bindings(expected, actual)
	require.Len(t, ne.Rows, 2)
	assert.Equal(t, lit("b"), ne.Rows[0]["x"])
	assert.Equal(t, lit("a"), na.Rows[0]["x"])
}
