package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sparqlcheck/sparqlcheck/internal/config"
	"github.com/sparqlcheck/sparqlcheck/internal/manifest"
	"github.com/sparqlcheck/sparqlcheck/internal/runner"
	"github.com/sparqlcheck/sparqlcheck/internal/store"
)

// RunOptions holds flags for the run command. Flags override the
// corresponding configuration file fields.
type RunOptions struct {
	*RootOptions
	ConfigPath      string
	Engine          string
	Database        string
	Parallelism     int
	Timeout         string
	RequireApproval bool
	FailFast        bool
	WorkDir         string
	GraphComparator string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Run a test manifest against the engine",
		Long: `Run every test in a manifest (and its includes) against the engine.

Each test is classified, executed as a subprocess with a bounded timeout,
and its serialized output is compared semantically against the recorded
expectation. The exit code is 0 when every executed test matched, 1 when
any test failed or went unresolved, and 2 on command errors.

Example:
  sparqlcheck run ./suites/manifest.nt --engine roqet
  sparqlcheck run ./suites/manifest.nt --config run.yaml --db history.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML run configuration")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "engine executable (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run-history database (overrides config)")
	cmd.Flags().IntVar(&opts.Parallelism, "parallelism", 0, "concurrent engine invocations (overrides config)")
	cmd.Flags().StringVar(&opts.Timeout, "timeout", "", "per-invocation timeout (overrides config)")
	cmd.Flags().BoolVar(&opts.RequireApproval, "require-approval", false, "skip tests without explicit approval")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "cancel remaining tests after the first failure")
	cmd.Flags().StringVar(&opts.WorkDir, "work-dir", "", "scratch root for per-test directories (overrides config)")
	cmd.Flags().StringVar(&opts.GraphComparator, "graph-comparator", "", "external graph comparison tool (overrides config)")

	return cmd
}

func runManifest(opts *RunOptions, manifestPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := loadRunConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	logger.Info("resolving manifest", "path", manifestPath)
	tests, err := manifest.Resolve(manifestPath, manifest.NTriplesLoader)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve manifest", err)
	}
	logger.Info("manifest resolved", "tests", len(tests))

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "sparqlcheck-*")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create scratch directory", err)
		}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, canceling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	batch := &runner.Batch{
		Engine: &runner.Engine{
			Binary:  cfg.Engine,
			Timeout: timeout,
			Logger:  logger,
		},
		Parallelism:     cfg.Parallelism,
		WorkDir:         workDir,
		RequireApproval: cfg.RequireApproval,
		GraphComparator: cfg.GraphComparator,
		FailFast:        cfg.FailFast,
		Logger:          logger,
	}

	started := time.Now()
	summary, err := batch.Run(ctx, tests)
	if err != nil {
		return WrapExitError(ExitCommandError, "run aborted", err)
	}
	finished := time.Now()

	runID := uuid.NewString()
	if cfg.Database != "" {
		if err := recordRun(ctx, cfg, runID, manifestPath, started, finished, summary); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		logger.Info("run recorded", "id", runID, "db", cfg.Database)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	if err := renderSummary(formatter, runID, summary); err != nil {
		return WrapExitError(ExitCommandError, "failed to render summary", err)
	}

	if !summary.Clean() {
		return NewExitError(ExitFailure, fmt.Sprintf(
			"%d of %d tests did not pass", summary.Total-summary.Passed-summary.Skipped, summary.Total))
	}
	return nil
}

// loadRunConfig merges the configuration file with explicit flag overrides.
func loadRunConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = opts.Engine
	}
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = opts.Parallelism
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
	if flags.Changed("require-approval") {
		cfg.RequireApproval = opts.RequireApproval
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = opts.FailFast
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = opts.WorkDir
	}
	if flags.Changed("graph-comparator") {
		cfg.GraphComparator = opts.GraphComparator
	}
	return cfg, nil
}

// recordRun persists the summary to the run-history database.
func recordRun(ctx context.Context, cfg config.Config, runID, manifestPath string, started, finished time.Time, summary *runner.Summary) error {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.RecordRun(ctx, store.Run{
		ID:       runID,
		Started:  started,
		Finished: finished,
		Engine:   cfg.Engine,
		Manifest: manifestPath,
	}, summary)
}
