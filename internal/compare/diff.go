package compare

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxDiagnosticLines caps diagnostic output so a pathological mismatch does
// not flood the summary. Full content is always in the scratch files.
const maxDiagnosticLines = 200

// unifiedDiff renders a line-level diff of expected vs actual content in
// unified-diff style (- expected, + actual).
func unifiedDiff(expected, actual string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitKeepNonEmpty(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return truncateLines(sb.String(), maxDiagnosticLines)
}

// sideBySide renders expected and actual blocks for mismatches where a
// line diff adds no insight (booleans, kind mismatches).
func sideBySide(expected, actual string) string {
	return fmt.Sprintf("expected:\n%s\nactual:\n%s",
		truncateLines(expected, maxDiagnosticLines/2),
		truncateLines(actual, maxDiagnosticLines/2))
}

func splitKeepNonEmpty(text string) []string {
	split := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(split) == 1 && split[0] == "" {
		return nil
	}
	return split
}

// truncateLines keeps the first n lines and notes how much was cut.
func truncateLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	kept := strings.Join(lines[:n], "\n")
	return fmt.Sprintf("%s\n... (%d more lines truncated)", kept, len(lines)-n)
}
