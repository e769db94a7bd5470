package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparqlcheck/sparqlcheck/internal/classify"
	"github.com/sparqlcheck/sparqlcheck/internal/manifest"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	RequireApproval bool
}

// classification is one entry's resolved behavior, without running it.
type classification struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Execute bool   `json:"execute"`
	Expect  string `json:"expect"`
	Dialect string `json:"dialect"`
	Skip    string `json:"skip,omitempty"`
}

// NewClassifyCommand creates the classify command: it resolves a manifest
// and reports how each entry would be handled, without invoking the engine.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify <manifest>",
		Short: "Show how each manifest entry would be handled",
		Long: `Resolve a manifest and print the execution behavior of every entry:
whether it runs, what outcome is expected, which dialect applies, and the
skip reason when one applies.

Example:
  sparqlcheck classify ./suites/manifest.nt --require-approval`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.RequireApproval, "require-approval", false, "skip tests without explicit approval")

	return cmd
}

func runClassify(opts *ClassifyOptions, manifestPath string, cmd *cobra.Command) error {
	tests, err := manifest.Resolve(manifestPath, manifest.NTriplesLoader)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve manifest", err)
	}

	entries := make([]classification, 0, len(tests))
	for _, tc := range tests {
		behavior := classify.Lookup(tc.Type)
		skip := classify.Skip(tc.Type, classify.Flags{
			Approved:        tc.Approved,
			Withdrawn:       tc.Withdrawn,
			HasEntailment:   tc.HasEntailment,
			RequireApproval: opts.RequireApproval,
		})
		entries = append(entries, classification{
			Name:    tc.Name,
			Type:    tc.Type,
			Execute: behavior.Execute,
			Expect:  string(behavior.Expect),
			Dialect: behavior.Dialect,
			Skip:    string(skip),
		})
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	return renderClassifications(formatter, entries)
}

func renderClassifications(f *OutputFormatter, entries []classification) error {
	if f.Format == "json" {
		return f.Success(entries)
	}
	for _, e := range entries {
		if e.Skip != "" {
			fmt.Fprintf(f.Writer, "%-40s skip (%s)\n", e.Name, e.Skip)
			continue
		}
		mode := "evaluate"
		if !e.Execute {
			mode = "parse-only"
		}
		fmt.Fprintf(f.Writer, "%-40s %s dialect=%s expect=%s\n", e.Name, mode, e.Dialect, e.Expect)
	}
	return nil
}
