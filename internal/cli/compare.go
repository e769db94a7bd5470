package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sparqlcheck/sparqlcheck/internal/compare"
	"github.com/sparqlcheck/sparqlcheck/internal/parse"
)

// CompareOptions holds flags for the compare command.
type CompareOptions struct {
	*RootOptions
	Ordered         bool
	GraphComparator string
}

// NewCompareCommand creates the compare command: an offline semantic
// comparison of two result files, no engine involved. Useful for checking
// whether a manually captured output matches a recorded expectation.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compare <expected> <actual>",
		Short: "Compare two result files semantically",
		Long: `Compare two serialized result files without running an engine. Formats
are detected from file extensions and both files must use the same format.
Exit code 0 on a match, 1 on mismatch or an undecidable comparison.

Example:
  sparqlcheck compare expected.srx actual.srx
  sparqlcheck compare expected.srj actual.srj --ordered`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Ordered, "ordered", false, "require identical row order")
	cmd.Flags().StringVar(&opts.GraphComparator, "graph-comparator", "", "external graph comparison tool")

	return cmd
}

func runCompare(opts *CompareOptions, expectedPath, actualPath string, cmd *cobra.Command) error {
	format, err := parse.DetectFormat(expectedPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot determine format", err)
	}
	actualFormat, err := parse.DetectFormat(actualPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot determine format", err)
	}
	if format != actualFormat {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("format mismatch: %s is %s, %s is %s", expectedPath, format, actualPath, actualFormat))
	}

	expectedRaw, err := os.ReadFile(expectedPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read expected", err)
	}
	actualRaw, err := os.ReadFile(actualPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read actual", err)
	}

	expected, err := parse.Parse(format, expectedRaw, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse expected", err)
	}
	actual, err := parse.Parse(format, actualRaw, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse actual", err)
	}

	verdict := compare.Results(cmd.Context(), expected, actual, compare.Options{
		Ordered:         opts.Ordered,
		GraphComparator: opts.GraphComparator,
		ScratchDir:      scratchDirFor(opts),
	})

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	switch verdict.Outcome {
	case compare.OutcomeMatch:
		return formatter.Success("match")
	case compare.OutcomeMismatch:
		formatter.Error("MISMATCH", "results differ", verdict.Diagnostic)
		if opts.Format == "text" && verdict.Diagnostic != "" {
			fmt.Fprintln(formatter.Writer, verdict.Diagnostic)
		}
		return NewExitError(ExitFailure, "results differ")
	default:
		formatter.Error("UNRESOLVED", verdict.Reason, nil)
		return NewExitError(ExitFailure, verdict.Reason)
	}
}

// scratchDirFor provides a scratch directory only when the external graph
// comparator needs one.
func scratchDirFor(opts *CompareOptions) string {
	if opts.GraphComparator == "" {
		return ""
	}
	dir, err := os.MkdirTemp("", "sparqlcheck-compare-*")
	if err != nil {
		return ""
	}
	return dir
}
