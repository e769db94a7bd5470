package store

import (
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/sparqlcheck/sparqlcheck/internal/runner"
)

// marshalOutcome converts an outcome to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so the detail column is byte-stable across
// runs and safe to diff directly.
func marshalOutcome(o runner.Outcome) (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return "", fmt.Errorf("canonicalize outcome: %w", err)
	}
	return string(canonical), nil
}

// unmarshalOutcome parses canonical JSON TEXT back into an outcome.
func unmarshalOutcome(data string) (runner.Outcome, error) {
	var o runner.Outcome
	if data == "" || data == "{}" {
		return o, nil
	}
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return runner.Outcome{}, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return o, nil
}
