package harness

import (
	"encoding/json"
	"testing"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/sebdah/goldie/v2"
)

// verdictSnapshot captures a scenario's verdict for golden comparison.
// Canonical JSON keeps the byte representation stable across Go versions.
type verdictSnapshot struct {
	ScenarioName string `json:"scenario_name"`
	Outcome      string `json:"outcome"`
	Diagnostic   string `json:"diagnostic,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// RunWithGolden executes a scenario and compares its verdict against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := verdictSnapshot{
		ScenarioName: scenario.Name,
		Outcome:      string(result.Verdict.Outcome),
		Diagnostic:   result.Verdict.Diagnostic,
		Reason:       result.Verdict.Reason,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, canonical)

	return nil
}
