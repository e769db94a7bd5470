package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparqlcheck/sparqlcheck/internal/compare"
	"github.com/sparqlcheck/sparqlcheck/internal/parse"
)

// Result carries the verdict a scenario produced.
type Result struct {
	Scenario *Scenario
	Verdict  compare.Verdict
}

// Run executes one scenario: parse both documents in the declared format,
// compare them, and return the verdict. A parse failure of either document
// yields an unresolved verdict, mirroring the run pipeline.
func Run(scenario *Scenario) (*Result, error) {
	format := parse.Format(scenario.Format)

	expected, err := parse.Parse(format, []byte(scenario.Expected), nil)
	if err != nil {
		return &Result{
			Scenario: scenario,
			Verdict:  compare.Unresolved(fmt.Sprintf("expected document: %v", err)),
		}, nil
	}
	actual, err := parse.Parse(format, []byte(scenario.Actual), nil)
	if err != nil {
		return &Result{
			Scenario: scenario,
			Verdict:  compare.Unresolved(fmt.Sprintf("actual document: %v", err)),
		}, nil
	}

	verdict := compare.Results(context.Background(), expected, actual, compare.Options{
		Ordered: scenario.Ordered,
	})
	return &Result{Scenario: scenario, Verdict: verdict}, nil
}

// Assert checks the result against the scenario's want clause.
func (r *Result) Assert(t *testing.T) {
	t.Helper()

	assert.Equal(t, r.Scenario.Want.Outcome, string(r.Verdict.Outcome),
		"scenario %s: verdict outcome", r.Scenario.Name)

	for _, substr := range r.Scenario.Want.DiagnosticContains {
		assert.Contains(t, r.Verdict.Diagnostic, substr,
			"scenario %s: diagnostic", r.Scenario.Name)
	}
}

// RunDir loads every scenario under dir and runs each as a subtest.
// Scenarios execute in file-name order so failures are stable to report.
func RunDir(t *testing.T, dir string) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenarios under %s", dir)
	sort.Strings(paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			result.Assert(t)
		})
	}
}
