package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// ParseNTriples reads a line-oriented triple serialization into a Graph.
// This is deliberately minimal: one statement per line, URI / blank-node /
// literal terms, # comments and blank lines ignored. Full RDF syntax
// handling is an external collaborator's job; this reader exists for graph
// results and manifest triples that are already in line form.
func ParseNTriples(data []byte) (result.Result, error) {
	g := &result.Graph{}
	var offset int64
	for _, line := range strings.Split(string(data), "\n") {
		lineLen := int64(len(line)) + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			offset += lineLen
			continue
		}
		t, err := parseTripleLine(trimmed)
		if err != nil {
			return nil, newParseError(FormatGraph, data, offset, err)
		}
		g.Triples = append(g.Triples, t)
		offset += lineLen
	}
	return g, nil
}

// ReadTriples is ParseNTriples narrowed to the triple slice, for manifest
// consumption.
func ReadTriples(data []byte) ([]result.Triple, error) {
	r, err := ParseNTriples(data)
	if err != nil {
		return nil, err
	}
	return r.(*result.Graph).Triples, nil
}

func parseTripleLine(line string) (result.Triple, error) {
	rest := line
	var terms []result.Value
	for i := 0; i < 3; i++ {
		term, remainder, err := parseTerm(rest)
		if err != nil {
			return result.Triple{}, fmt.Errorf("term %d: %w", i+1, err)
		}
		terms = append(terms, term)
		rest = strings.TrimLeft(remainder, " \t")
	}
	if rest != "." {
		return result.Triple{}, fmt.Errorf("statement must end with '.', got %q", rest)
	}
	return result.Triple{Subject: terms[0], Predicate: terms[1], Object: terms[2]}, nil
}

// parseTerm consumes one term from the front of s, returning the remainder.
func parseTerm(s string) (result.Value, string, error) {
	switch {
	case strings.HasPrefix(s, "<"):
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return nil, "", fmt.Errorf("unterminated URI")
		}
		return result.URI(s[1:end]), s[end+1:], nil

	case strings.HasPrefix(s, "_:"):
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		return result.BlankNode{Label: s[2:end]}, s[end:], nil

	case strings.HasPrefix(s, `"`):
		lexical, rest, err := parseQuoted(s)
		if err != nil {
			return nil, "", err
		}
		lit := result.Literal{Lexical: lexical}
		if strings.HasPrefix(rest, "@") {
			end := strings.IndexAny(rest, " \t")
			if end < 0 {
				end = len(rest)
			}
			lit.Lang = rest[1:end]
			rest = rest[end:]
		} else if strings.HasPrefix(rest, "^^<") {
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return nil, "", fmt.Errorf("unterminated datatype URI")
			}
			lit.Datatype = rest[3:end]
			rest = rest[end+1:]
		}
		return lit, rest, nil

	default:
		return nil, "", fmt.Errorf("unrecognized term start %q", firstRune(s))
	}
}

// parseQuoted unescapes a double-quoted lexical form.
func parseQuoted(s string) (string, string, error) {
	var b strings.Builder
	i := 1 // skip opening quote
	for i < len(s) {
		c := s[i]
		switch c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", fmt.Errorf("dangling escape")
			}
			i++
			switch s[i] {
			case 't':
				b.WriteByte('\t')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'u', 'U':
				width := 4
				if s[i] == 'U' {
					width = 8
				}
				if i+width >= len(s) {
					return "", "", fmt.Errorf("truncated \\%c escape", s[i])
				}
				code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
				if err != nil {
					return "", "", fmt.Errorf("invalid \\%c escape: %w", s[i], err)
				}
				b.WriteRune(rune(code))
				i += width
			default:
				return "", "", fmt.Errorf("unknown escape \\%c", s[i])
			}
		default:
			b.WriteByte(c)
		}
		i++
	}
	return "", "", fmt.Errorf("unterminated literal")
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
