// Package harness runs declarative comparison scenarios: YAML files that
// pair serialized result documents with the verdict the comparator must
// produce. Scenarios double as executable documentation of the comparison
// semantics and as regression fixtures pinned by golden files.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sparqlcheck/sparqlcheck/internal/parse"
)

// Scenario defines one comparison scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Format names the serialization of both documents
	// (srx, srj, csv, tsv, boolean, ntriples).
	Format string `yaml:"format"`

	// Ordered requires identical row order during comparison.
	Ordered bool `yaml:"ordered,omitempty"`

	// Expected and Actual are the inline serialized documents.
	Expected string `yaml:"expected"`
	Actual   string `yaml:"actual"`

	// Want describes the verdict the comparator must produce.
	Want WantClause `yaml:"want"`
}

// WantClause specifies the expected comparison verdict.
type WantClause struct {
	// Outcome is "match", "mismatch", or "unresolved".
	Outcome string `yaml:"outcome"`

	// DiagnosticContains lists substrings that must appear in the
	// mismatch diagnostic. Only meaningful for mismatch outcomes.
	DiagnosticContains []string `yaml:"diagnostic_contains,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expect:" vs "expected:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch parse.Format(s.Format) {
	case parse.FormatSRX, parse.FormatSRJ, parse.FormatCSV,
		parse.FormatTSV, parse.FormatBoolean, parse.FormatGraph:
	default:
		return fmt.Errorf("unknown format %q", s.Format)
	}

	if s.Expected == "" {
		return fmt.Errorf("expected document is required")
	}
	if s.Actual == "" {
		return fmt.Errorf("actual document is required")
	}

	switch s.Want.Outcome {
	case "match", "mismatch", "unresolved":
	case "":
		return fmt.Errorf("want.outcome is required")
	default:
		return fmt.Errorf("unknown want.outcome %q", s.Want.Outcome)
	}

	if len(s.Want.DiagnosticContains) > 0 && s.Want.Outcome != "mismatch" {
		return fmt.Errorf("diagnostic_contains only applies to mismatch outcomes")
	}

	return nil
}
