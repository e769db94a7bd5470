package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

func TestParseDSV_CSV(t *testing.T) {
	data := []byte("x,y\nhttp://example.org/a,1\nplain,\n")

	r, err := ParseDSV(data, ',', nil)
	require.NoError(t, err)

	b, ok := r.(*result.Bindings)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, b.Vars)
	require.Len(t, b.Rows, 2)

	// No term typing in this format: everything is an opaque literal.
	assert.Equal(t, result.Literal{Lexical: "http://example.org/a"}, b.Rows[0]["x"])
	assert.Equal(t, result.Literal{Lexical: "1"}, b.Rows[0]["y"])

	// Empty field is the explicit-unbound marker, not an omitted binding.
	assert.Equal(t, result.Unbound{}, b.Rows[1]["y"])
}

func TestParseDSV_HeaderQuestionMarksStripped(t *testing.T) {
	r, err := ParseDSV([]byte("?x\t?y\nv1\tv2\n"), '\t', nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, r.(*result.Bindings).Vars)
}

func TestDSV_QuotingRoundTrip(t *testing.T) {
	b := &result.Bindings{
		Vars: []string{"a", "b"},
		Rows: []result.Row{{
			"a": result.Literal{Lexical: "has,comma"},
			"b": result.Literal{Lexical: `has"quote`},
		}},
	}

	data, err := WriteDSV(b, ',')
	require.NoError(t, err)
	assert.Contains(t, string(data), `"has,comma"`)
	assert.Contains(t, string(data), `"has""quote"`)

	back, err := ParseDSV(data, ',', nil)
	require.NoError(t, err)
	rows := back.(*result.Bindings).Rows
	require.Len(t, rows, 1)
	assert.Equal(t, result.Literal{Lexical: "has,comma"}, rows[0]["a"])
	assert.Equal(t, result.Literal{Lexical: `has"quote`}, rows[0]["b"])
}

func TestParseDSV_TSVDoesNotInterpretQuotes(t *testing.T) {
	// A value that merely starts with a quote must survive untouched.
	r, err := ParseDSV([]byte("x\n\"lex\"@en\n"), '\t', nil)
	require.NoError(t, err)
	assert.Equal(t, result.Literal{Lexical: `"lex"@en`}, r.(*result.Bindings).Rows[0]["x"])
}

func TestParseDSV_BooleanLine(t *testing.T) {
	r, err := ParseDSV([]byte("true\n"), ',', nil)
	require.NoError(t, err)
	assert.Equal(t, result.Boolean(true), r)

	r, err = ParseDSV([]byte("false"), '\t', nil)
	require.NoError(t, err)
	assert.Equal(t, result.Boolean(false), r)
}

func TestParseDSV_MalformedQuotingIsParseError(t *testing.T) {
	_, err := ParseDSV([]byte("x\n\"unterminated\n"), ',', nil)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, FormatCSV, pe.Format)
}

func TestParseBoolean(t *testing.T) {
	r, err := ParseBoolean([]byte(" True\n"))
	require.NoError(t, err)
	assert.Equal(t, result.Boolean(true), r)

	_, err = ParseBoolean([]byte("maybe"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, FormatBoolean, pe.Format)
}
