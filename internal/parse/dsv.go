package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// ParseDSV parses delimited-text results. The first record is the header
// giving variable names; later records are values. The comma dialect uses
// RFC 4180 quoting, unescaped losslessly; the tab dialect is split on raw
// tabs with no quoting. The format carries no term typing, so every
// non-empty field becomes an opaque plain literal and an empty field the
// explicit-unbound marker. A single non-delimited line holding a boolean
// literal is a Boolean result.
func ParseDSV(data []byte, delim rune, vars []string) (result.Result, error) {
	format := FormatCSV
	if delim == '\t' {
		format = FormatTSV
	}

	if b, ok := dsvBoolean(data, delim); ok {
		return b, nil
	}

	var records [][]string
	var err error
	if delim == '\t' {
		records = splitTSV(data)
	} else {
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		records, err = r.ReadAll()
		if err != nil {
			return nil, newParseError(format, data, csvErrorOffset(err, data), err)
		}
	}

	if len(records) == 0 {
		return nil, newParseError(format, data, 0, fmt.Errorf("missing header row"))
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimPrefix(strings.TrimSpace(name), "?")
	}
	if vars == nil {
		vars = header
	}

	bindings := &result.Bindings{Vars: vars}
	for rowIdx, rec := range records[1:] {
		if len(rec) > len(header) {
			return nil, newParseError(format, data, 0,
				fmt.Errorf("row %d has %d fields, header has %d", rowIdx+1, len(rec), len(header)))
		}
		row := make(result.Row, len(rec))
		for i, field := range rec {
			if field == "" {
				row[header[i]] = result.Unbound{}
				continue
			}
			row[header[i]] = result.Literal{Lexical: field}
		}
		bindings.Rows = append(bindings.Rows, row)
	}
	return bindings, nil
}

// WriteDSV serializes a bindings result in the given dialect. The comma
// dialect quotes per RFC 4180 (embedded quotes doubled), so WriteDSV and
// ParseDSV round-trip losslessly. Unbound values write as empty fields.
func WriteDSV(b *result.Bindings, delim rune) ([]byte, error) {
	var buf bytes.Buffer

	if delim == '\t' {
		rows := make([][]string, 0, len(b.Rows)+1)
		rows = append(rows, b.Vars)
		for _, row := range b.Rows {
			rows = append(rows, dsvFields(b.Vars, row))
		}
		for _, rec := range rows {
			for _, f := range rec {
				if strings.ContainsAny(f, "\t\n") {
					return nil, fmt.Errorf("tab dialect cannot encode field %q", f)
				}
			}
			buf.WriteString(strings.Join(rec, "\t"))
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	}

	w := csv.NewWriter(&buf)
	if err := w.Write(b.Vars); err != nil {
		return nil, err
	}
	for _, row := range b.Rows {
		if err := w.Write(dsvFields(b.Vars, row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// dsvFields renders a row in variable order; unbound becomes empty.
func dsvFields(vars []string, row result.Row) []string {
	fields := make([]string, len(vars))
	for i, name := range vars {
		v, ok := row[name]
		if !ok || result.IsUnbound(v) {
			fields[i] = ""
			continue
		}
		switch tv := v.(type) {
		case result.Literal:
			fields[i] = tv.Lexical
		case result.URI:
			fields[i] = string(tv)
		case result.BlankNode:
			fields[i] = "_:" + tv.Label
		}
	}
	return fields
}

// dsvBoolean recognizes a lone boolean literal with no delimiter.
func dsvBoolean(data []byte, delim rune) (result.Boolean, bool) {
	text := strings.TrimSpace(string(data))
	if strings.ContainsRune(text, delim) || strings.ContainsAny(text, "\n") {
		return false, false
	}
	switch strings.ToLower(text) {
	case "true":
		return result.Boolean(true), true
	case "false":
		return result.Boolean(false), true
	}
	return false, false
}

// splitTSV splits raw tab-delimited records with no quote processing.
// Values are opaque tokens; interpreting quotes would corrupt them.
func splitTSV(data []byte) [][]string {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = strings.Split(strings.TrimSuffix(line, "\r"), "\t")
	}
	return records
}

// csvErrorOffset maps a csv.ParseError back to an approximate byte offset.
func csvErrorOffset(err error, data []byte) int64 {
	pe, ok := err.(*csv.ParseError)
	if !ok {
		return 0
	}
	// Column is a 1-based byte position within the line.
	var offset int64
	line := 1
	for i, c := range data {
		if line == pe.Line {
			offset = int64(i) + int64(pe.Column) - 1
			break
		}
		if c == '\n' {
			line++
		}
	}
	return offset
}
