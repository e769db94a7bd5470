package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sparqlcheck/sparqlcheck/internal/runner"
)

// renderSummary writes the batch summary in the configured format. Text
// mode prints one line per test that needs attention (every test in
// verbose mode) followed by the tallies; JSON mode emits the whole summary
// as a single response document.
func renderSummary(f *OutputFormatter, runID string, s *runner.Summary) error {
	if f.Format == "json" {
		status := "ok"
		if !s.Clean() {
			status = "error"
		}
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: status,
			Data:   s,
			RunID:  runID,
		})
	}

	for _, o := range s.Outcomes {
		if o.Status == runner.StatusPassed && !f.Verbose {
			continue
		}
		line := fmt.Sprintf("%-10s %s", strings.ToUpper(string(o.Status)), o.Name)
		if o.Reason != "" {
			line += ": " + o.Reason
		}
		fmt.Fprintln(f.Writer, line)
		if f.Verbose && o.Diagnostic != "" {
			fmt.Fprintln(f.Writer, indent(o.Diagnostic, "    "))
		}
	}

	fmt.Fprintf(f.Writer,
		"passed %d, failed %d, skipped %d, unresolved %d, errors %d, timeouts %d (total %d)\n",
		s.Passed, s.Failed, s.Skipped, s.Unresolved, s.Errored, s.TimedOut, s.Total)
	return nil
}

// indent prefixes every non-empty line of text.
func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
