package parse

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// srxDocument mirrors the tagged-XML results document. A document carries
// either a <boolean> answer or a <results> section, never both.
type srxDocument struct {
	XMLName xml.Name    `xml:"sparql"`
	Head    srxHead     `xml:"head"`
	Boolean *string     `xml:"boolean"`
	Results *srxResults `xml:"results"`
}

type srxHead struct {
	Variables []srxVariable `xml:"variable"`
}

type srxVariable struct {
	Name string `xml:"name,attr"`
}

type srxResults struct {
	Results []srxResult `xml:"result"`
}

type srxResult struct {
	Bindings []srxBinding `xml:"binding"`
}

// srxBinding types its value by which child element is present.
type srxBinding struct {
	Name    string      `xml:"name,attr"`
	URI     *string     `xml:"uri"`
	Literal *srxLiteral `xml:"literal"`
	BNode   *string     `xml:"bnode"`
}

type srxLiteral struct {
	Datatype string `xml:"datatype,attr"`
	Lang     string `xml:"lang,attr"`
	Value    string `xml:",chardata"`
}

// ParseSRX parses a tagged-XML results document. Rows are emitted in
// document order; a binding absent from a row is unbound. A document whose
// only payload is a <boolean> element yields a Boolean result.
func ParseSRX(data []byte, vars []string) (result.Result, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var doc srxDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, newParseError(FormatSRX, data, dec.InputOffset(), err)
	}

	if doc.Boolean != nil {
		b, err := strconv.ParseBool(*doc.Boolean)
		if err != nil {
			return nil, newParseError(FormatSRX, data, dec.InputOffset(),
				fmt.Errorf("invalid boolean element %q", *doc.Boolean))
		}
		return result.Boolean(b), nil
	}

	if doc.Results == nil {
		return nil, newParseError(FormatSRX, data, dec.InputOffset(),
			fmt.Errorf("document has neither <results> nor <boolean>"))
	}

	if vars == nil {
		vars = make([]string, 0, len(doc.Head.Variables))
		for _, v := range doc.Head.Variables {
			vars = append(vars, v.Name)
		}
	}

	bindings := &result.Bindings{Vars: vars}
	for i, row := range doc.Results.Results {
		r := make(result.Row, len(row.Bindings))
		for _, b := range row.Bindings {
			v, err := srxValue(b)
			if err != nil {
				return nil, newParseError(FormatSRX, data, dec.InputOffset(),
					fmt.Errorf("result %d binding %q: %w", i, b.Name, err))
			}
			r[b.Name] = v
		}
		bindings.Rows = append(bindings.Rows, r)
	}
	return bindings, nil
}

// srxValue converts one binding element to a Value by child element name.
func srxValue(b srxBinding) (result.Value, error) {
	switch {
	case b.URI != nil:
		return result.URI(*b.URI), nil
	case b.BNode != nil:
		return result.BlankNode{Label: *b.BNode}, nil
	case b.Literal != nil:
		return result.Literal{
			Lexical:  b.Literal.Value,
			Datatype: b.Literal.Datatype,
			Lang:     b.Literal.Lang,
		}, nil
	default:
		return nil, fmt.Errorf("binding has no uri, literal, or bnode child")
	}
}
