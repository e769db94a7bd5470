package parse

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

//go:embed srj.schema.json
var srjSchemaJSON []byte

var (
	srjSchema      *jsonschema.Schema
	srjCompileOnce sync.Once
	srjCompileErr  error
)

// compileSRJSchema compiles the embedded results-document schema once.
func compileSRJSchema() error {
	srjCompileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(srjSchemaJSON))
		if err != nil {
			srjCompileErr = fmt.Errorf("unmarshal srj schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("srj.schema.json", doc); err != nil {
			srjCompileErr = fmt.Errorf("add srj schema resource: %w", err)
			return
		}
		srjSchema, srjCompileErr = compiler.Compile("srj.schema.json")
	})
	return srjCompileErr
}

// srjDocument mirrors the tagged-JSON results document.
type srjDocument struct {
	Head    *srjHead    `json:"head"`
	Boolean *bool       `json:"boolean"`
	Results *srjResults `json:"results"`
}

type srjHead struct {
	Vars []string `json:"vars"`
}

type srjResults struct {
	Bindings []map[string]srjTerm `json:"bindings"`
}

type srjTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// ParseSRJ parses a tagged-JSON results document. A top-level "boolean"
// field signals a Boolean result; otherwise head/vars gives the projection
// order and each bindings object's keys are the bound variables (absence =
// unbound). Malformed JSON and schema violations are parse failures, never
// comparison failures.
func ParseSRJ(data []byte, vars []string) (result.Result, error) {
	var doc srjDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, newParseError(FormatSRJ, data, jsonErrorOffset(err), err)
	}

	if err := validateSRJ(data); err != nil {
		return nil, newParseError(FormatSRJ, data, 0, err)
	}

	if doc.Boolean != nil {
		return result.Boolean(*doc.Boolean), nil
	}

	if doc.Head == nil || doc.Results == nil {
		return nil, newParseError(FormatSRJ, data, 0,
			fmt.Errorf("document has neither boolean nor head/results"))
	}

	if vars == nil {
		vars = doc.Head.Vars
	}

	bindings := &result.Bindings{Vars: vars}
	for i, obj := range doc.Results.Bindings {
		row := make(result.Row, len(obj))
		for name, term := range obj {
			v, err := srjValue(term)
			if err != nil {
				return nil, newParseError(FormatSRJ, data, 0,
					fmt.Errorf("binding %d variable %q: %w", i, name, err))
			}
			row[name] = v
		}
		bindings.Rows = append(bindings.Rows, row)
	}
	return bindings, nil
}

// validateSRJ checks the document shape against the embedded schema.
func validateSRJ(data []byte) error {
	if err := compileSRJSchema(); err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return srjSchema.Validate(doc)
}

// srjValue converts one term object to a Value by its "type" tag.
func srjValue(t srjTerm) (result.Value, error) {
	switch t.Type {
	case "uri":
		return result.URI(t.Value), nil
	case "bnode":
		return result.BlankNode{Label: t.Value}, nil
	case "literal", "typed-literal":
		return result.Literal{
			Lexical:  t.Value,
			Datatype: t.Datatype,
			Lang:     t.Lang,
		}, nil
	default:
		return nil, fmt.Errorf("unknown term type %q", t.Type)
	}
}

// jsonErrorOffset extracts the byte offset from a JSON decode error.
func jsonErrorOffset(err error) int64 {
	switch e := err.(type) {
	case *json.SyntaxError:
		return e.Offset
	case *json.UnmarshalTypeError:
		return e.Offset
	default:
		return 0
	}
}
