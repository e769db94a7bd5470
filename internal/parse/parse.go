// Package parse turns serialized query results into the canonical result
// model. One parser per serialization; parsers are format-pure and know
// nothing about normalization or comparison.
package parse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// Format identifies a result serialization.
type Format string

const (
	// FormatSRX is the tagged-XML results format.
	FormatSRX Format = "srx"
	// FormatSRJ is the tagged-JSON results format.
	FormatSRJ Format = "srj"
	// FormatCSV is the comma-delimited results format (RFC 4180 quoting).
	FormatCSV Format = "csv"
	// FormatTSV is the tab-delimited results format.
	FormatTSV Format = "tsv"
	// FormatBoolean is a bare true/false token.
	FormatBoolean Format = "boolean"
	// FormatGraph is an N-Triples graph serialization.
	FormatGraph Format = "ntriples"
)

// ParseError reports malformed input. It carries the byte offset and a
// snippet of the offending content so the failure can be located without
// re-running the engine. A ParseError is never a comparison mismatch; the
// comparator surfaces it as an unresolved verdict.
type ParseError struct {
	Format  Format
	Offset  int64
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("%s parse error at byte %d near %q: %v", e.Format, e.Offset, e.Snippet, e.Err)
	}
	return fmt.Sprintf("%s parse error at byte %d: %v", e.Format, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError builds a ParseError with a snippet clipped around offset.
func newParseError(format Format, data []byte, offset int64, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Offset:  offset,
		Snippet: snippetAt(data, offset),
		Err:     err,
	}
}

// snippetAt extracts up to 40 bytes of context around offset.
func snippetAt(data []byte, offset int64) string {
	if len(data) == 0 {
		return ""
	}
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	start := offset - 20
	if start < 0 {
		start = 0
	}
	end := offset + 20
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return string(data[start:end])
}

// Parse dispatches raw serialized text to the parser for format. vars is an
// optional externally-supplied variable ordering for bindings formats; nil
// keeps the order declared in the document.
func Parse(format Format, data []byte, vars []string) (result.Result, error) {
	switch format {
	case FormatSRX:
		return ParseSRX(data, vars)
	case FormatSRJ:
		return ParseSRJ(data, vars)
	case FormatCSV:
		return ParseDSV(data, ',', vars)
	case FormatTSV:
		return ParseDSV(data, '\t', vars)
	case FormatBoolean:
		return ParseBoolean(data)
	case FormatGraph:
		return ParseNTriples(data)
	default:
		return nil, fmt.Errorf("unknown result format %q", format)
	}
}

// DetectFormat guesses a format from a file name extension. Used by the
// offline compare command; the run pipeline always knows its format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srx", ".xml":
		return FormatSRX, nil
	case ".srj", ".json":
		return FormatSRJ, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".nt", ".ntriples":
		return FormatGraph, nil
	default:
		return "", fmt.Errorf("cannot detect result format from %q", path)
	}
}
