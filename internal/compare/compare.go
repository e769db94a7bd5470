// Package compare decides whether an actual query result is semantically
// equivalent to the expected one. Dispatch is exhaustive over the closed
// result variants so a new format cannot silently fall through.
package compare

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/normalize"
	"github.com/sparqlcheck/sparqlcheck/internal/result"
)

// Scratch file names written into the per-test working directory for
// external diff tooling. Removed on a match, left in place on failure for
// postmortem inspection.
const (
	ExpectedScratchName = "expected.out"
	ActualScratchName   = "actual.out"
)

// Options configures one comparison.
type Options struct {
	// Ordered selects the "strict" cardinality mode: rows must match
	// positionally. When false, both row sequences are sorted with a
	// total deterministic ordering over formatted rows first.
	Ordered bool

	// GraphComparator is the path of an external semantic-graph
	// comparison tool taking (expected, actual) file paths and answering
	// via exit status. Empty selects the line-diff fallback, which is
	// strictly weaker: it can report false mismatches when blank nodes
	// are relabeled.
	GraphComparator string

	// ScratchDir, when set, receives the normalized expected/actual
	// content under well-known names. Required when GraphComparator is
	// set.
	ScratchDir string
}

// Results compares an expected/actual pair of canonical results.
func Results(ctx context.Context, expected, actual result.Result, opts Options) Verdict {
	if expected.Kind() != actual.Kind() {
		return Mismatch(fmt.Sprintf("result kind differs: expected %s, got %s",
			expected.Kind(), actual.Kind()))
	}

	switch exp := expected.(type) {
	case *result.Bindings:
		return bindings(exp, actual.(*result.Bindings), opts)
	case result.Boolean:
		return boolean(exp, actual.(result.Boolean))
	case *result.Graph:
		return graph(ctx, exp, actual.(*result.Graph), opts)
	default:
		return Unresolved(fmt.Sprintf("unknown result kind %T", expected))
	}
}

// bindings runs semantic normalization, then compares formatted row
// sequences. Formatting renders both unbound conventions identically and
// relabels blank nodes consistently, so labels never cause false
// mismatches here.
func bindings(expected, actual *result.Bindings, opts Options) Verdict {
	expected, actual = normalize.Bindings(expected, actual)

	// One active order drives both renderings when the variable sets
	// agree, so a reordered projection never reads as a mismatch. When
	// the sets differ the headers stay apart and the diff shows it.
	if normalize.SameVarSet(expected.Vars, actual.Vars) {
		actual.Vars = append([]string(nil), expected.Vars...)
	}

	var expRows, actRows []string
	if opts.Ordered {
		expRows = expected.FormatRows()
		actRows = actual.FormatRows()
	} else {
		expRows = expected.SortedFormatRows()
		actRows = actual.SortedFormatRows()
	}

	expText := joinRows(expected.Vars, expRows)
	actText := joinRows(actual.Vars, actRows)

	verdict := Match()
	if expText != actText {
		verdict = Mismatch(unifiedDiff(expText, actText))
	}
	if err := writeScratch(opts, expText, actText, verdict.Matched()); err != nil {
		return Unresolved(err.Error())
	}
	return verdict
}

// boolean is direct value equality; no normalization applies.
func boolean(expected, actual result.Boolean) Verdict {
	if expected == actual {
		return Match()
	}
	return Mismatch(sideBySide(fmt.Sprintf("%v", bool(expected)), fmt.Sprintf("%v", bool(actual))))
}

// graph delegates to the external semantic-graph comparator when one is
// configured; otherwise it falls back to a line diff of the canonical
// serialization.
func graph(ctx context.Context, expected, actual *result.Graph, opts Options) Verdict {
	expText := expected.CanonicalText()
	actText := actual.CanonicalText()

	if opts.GraphComparator == "" {
		verdict := Match()
		if expText != actText {
			verdict = Mismatch(unifiedDiff(expText, actText))
		}
		if err := writeScratch(opts, expText, actText, verdict.Matched()); err != nil {
			return Unresolved(err.Error())
		}
		return verdict
	}

	if opts.ScratchDir == "" {
		return Unresolved("graph comparator configured without a scratch directory")
	}
	if err := writeScratch(opts, expText, actText, false); err != nil {
		return Unresolved(err.Error())
	}

	expPath := filepath.Join(opts.ScratchDir, ExpectedScratchName)
	actPath := filepath.Join(opts.ScratchDir, ActualScratchName)
	cmd := exec.CommandContext(ctx, opts.GraphComparator, expPath, actPath)
	out, err := cmd.CombinedOutput()
	if err == nil {
		removeScratch(opts)
		return Match()
	}
	if _, isExit := err.(*exec.ExitError); isExit {
		return Mismatch(fmt.Sprintf("graph comparator reported difference:\n%s",
			truncateLines(string(out), maxDiagnosticLines)))
	}
	return Unresolved(fmt.Sprintf("graph comparator failed to run: %v", err))
}

// joinRows renders a complete comparison text: the active variable order
// on the first line, then one formatted row per line.
func joinRows(vars []string, rows []string) string {
	var sb strings.Builder
	sb.WriteString("vars: ")
	sb.WriteString(strings.Join(vars, " "))
	sb.WriteByte('\n')
	for _, r := range rows {
		sb.WriteString(r)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// writeScratch persists normalized content for external tooling, removing
// it again when the comparison matched.
func writeScratch(opts Options, expected, actual string, matched bool) error {
	if opts.ScratchDir == "" {
		return nil
	}
	if matched {
		removeScratch(opts)
		return nil
	}
	if err := os.MkdirAll(opts.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("scratch dir: %w", err)
	}
	expPath := filepath.Join(opts.ScratchDir, ExpectedScratchName)
	actPath := filepath.Join(opts.ScratchDir, ActualScratchName)
	if err := os.WriteFile(expPath, []byte(expected), 0o644); err != nil {
		return fmt.Errorf("write expected scratch: %w", err)
	}
	if err := os.WriteFile(actPath, []byte(actual), 0o644); err != nil {
		return fmt.Errorf("write actual scratch: %w", err)
	}
	return nil
}

func removeScratch(opts Options) {
	if opts.ScratchDir == "" {
		return
	}
	os.Remove(filepath.Join(opts.ScratchDir, ExpectedScratchName))
	os.Remove(filepath.Join(opts.ScratchDir, ActualScratchName))
}
