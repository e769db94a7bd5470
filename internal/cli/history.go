package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sparqlcheck/sparqlcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Since    string // run id to diff against, newest run is the other side
}

// NewHistoryCommand creates the history command: it lists recorded runs
// and, given a baseline run, reports regressions against the newest one.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs and spot regressions",
		Long: `List the most recent recorded runs, newest first. With --since, also
report tests that passed in the given run but no longer pass in the
newest one.

Example:
  sparqlcheck history --db history.db
  sparqlcheck history --db history.db --since 0c8f6c2a-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run-history database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of runs to list")
	cmd.Flags().StringVar(&opts.Since, "since", "", "baseline run id for regression reporting")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

// historyEntry is one run row rendered for output.
type historyEntry struct {
	ID       string `json:"id"`
	Started  string `json:"started"`
	Engine   string `json:"engine"`
	Manifest string `json:"manifest"`
	Passed   int    `json:"passed"`
	Failed   int    `json:"failed"`
	Total    int    `json:"total"`
}

type historyReport struct {
	Runs        []historyEntry `json:"runs"`
	Regressions []string       `json:"regressions,omitempty"`
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	records, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	report := historyReport{}
	for _, rec := range records {
		report.Runs = append(report.Runs, historyEntry{
			ID:       rec.Run.ID,
			Started:  rec.Run.Started.UTC().Format(time.RFC3339),
			Engine:   rec.Run.Engine,
			Manifest: rec.Run.Manifest,
			Passed:   rec.Passed,
			Failed:   rec.Failed,
			Total:    rec.Total,
		})
	}

	if opts.Since != "" && len(records) > 0 {
		newest := records[0].Run.ID
		report.Regressions, err = st.Regressions(ctx, opts.Since, newest)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to compute regressions", err)
		}
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}

	for _, r := range report.Runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s  passed %d/%d\n",
			r.ID, r.Started, r.Manifest, r.Passed, r.Total)
	}
	if len(report.Regressions) > 0 {
		fmt.Fprintln(formatter.Writer, "regressions:")
		for _, name := range report.Regressions {
			fmt.Fprintf(formatter.Writer, "  %s\n", name)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d regressions since %s", len(report.Regressions), opts.Since))
	}
	return nil
}
