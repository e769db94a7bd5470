package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sparqlcheck/sparqlcheck/internal/classify"
	"github.com/sparqlcheck/sparqlcheck/internal/compare"
	"github.com/sparqlcheck/sparqlcheck/internal/manifest"
	"github.com/sparqlcheck/sparqlcheck/internal/parse"
)

// Batch executes a resolved test list against one engine with bounded
// parallelism. Each test is independent: the worker pool admits up to
// Parallelism invocations at once and failures never leak across tests.
type Batch struct {
	Engine *Engine

	// Parallelism bounds concurrent engine invocations; values below one
	// run sequentially.
	Parallelism int

	// WorkDir is the scratch root. Each test gets a fresh subdirectory,
	// removed when the test passes and left in place otherwise.
	WorkDir string

	// RequireApproval skips entries without explicit approval.
	RequireApproval bool

	// GraphComparator is an optional external graph comparison tool.
	GraphComparator string

	// FailFast cancels remaining tests after the first failure or error.
	FailFast bool

	Logger *slog.Logger
}

// Run executes every test and aggregates outcomes in manifest order,
// regardless of completion order. The engine binary is resolved up front;
// a missing binary aborts the whole batch before any test runs.
func (b *Batch) Run(ctx context.Context, tests []manifest.TestConfig) (*Summary, error) {
	if _, err := exec.LookPath(b.Engine.Binary); err != nil {
		return nil, &HarnessError{
			Code:    ErrCodeConfig,
			Message: fmt.Sprintf("engine binary %q not found", b.Engine.Binary),
			Err:     err,
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parallelism := b.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	sem := make(chan struct{}, parallelism)
	outcomes := make([]Outcome, len(tests))
	var wg sync.WaitGroup

	for i, cfg := range tests {
		wg.Add(1)
		go func(i int, cfg manifest.TestConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[i] = b.runOne(ctx, cfg)
			if b.FailFast {
				switch outcomes[i].Status {
				case StatusFailed, StatusError, StatusTimeout, StatusUnresolved:
					cancel()
				}
			}
		}(i, cfg)
	}
	wg.Wait()

	summary := &Summary{}
	for _, o := range outcomes {
		summary.add(o)
	}
	return summary, nil
}

// runOne executes the full pipeline for a single test: skip decision,
// engine invocation, output parsing, comparison. Any panic inside the
// pipeline is contained as an error outcome for that test alone.
func (b *Batch) runOne(ctx context.Context, cfg manifest.TestConfig) (out Outcome) {
	start := time.Now()
	out = Outcome{Name: cfg.Name, URI: cfg.URI}
	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusError
			out.Reason = fmt.Sprintf("internal failure: %v", r)
		}
		out.Duration = time.Since(start)
		if b.Logger != nil {
			b.Logger.Info("test finished",
				"test", cfg.Name,
				"status", string(out.Status),
				"elapsed", out.Duration,
			)
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Status = StatusError
		out.Reason = "run canceled"
		return out
	}

	flags := classify.Flags{
		Approved:        cfg.Approved,
		Withdrawn:       cfg.Withdrawn,
		HasEntailment:   cfg.HasEntailment,
		RequireApproval: b.RequireApproval,
	}
	if reason := classify.Skip(cfg.Type, flags); reason != classify.SkipNone {
		out.Status = StatusSkipped
		out.Reason = string(reason)
		return out
	}

	behavior := classify.Lookup(cfg.Type)

	if he := b.checkInputs(cfg); he != nil {
		return outcomeFor(out, he)
	}

	if !behavior.Execute {
		return b.runSyntax(ctx, cfg, behavior, out)
	}
	return b.runEvaluation(ctx, cfg, behavior, out)
}

// outcomeFor maps a categorized harness error onto the outcome it
// produces: malformed output is unresolved, everything else errors.
func outcomeFor(out Outcome, he *HarnessError) Outcome {
	if he.Code == ErrCodeParse {
		out.Status = StatusUnresolved
	} else {
		out.Status = StatusError
	}
	out.Reason = he.Message
	if he.Err != nil {
		out.Reason += ": " + he.Err.Error()
	}
	return out
}

// checkInputs verifies every referenced file exists before the engine is
// launched, so missing fixtures report as configuration errors rather than
// engine failures.
func (b *Batch) checkInputs(cfg manifest.TestConfig) *HarnessError {
	paths := []string{cfg.Query}
	paths = append(paths, cfg.DataFiles...)
	paths = append(paths, cfg.NamedDataFiles...)
	if cfg.ExpectedResult != "" {
		paths = append(paths, cfg.ExpectedResult)
	}
	for _, p := range paths {
		if p == "" {
			return NewConfigError(cfg.Name, "test has no query file", nil)
		}
		if _, err := os.Stat(p); err != nil {
			return NewConfigError(cfg.Name, fmt.Sprintf("missing input file %s", p), err)
		}
	}
	return nil
}

// runSyntax asks the engine to parse only. Positive tests pass when the
// engine accepts, negative tests pass when it rejects.
func (b *Batch) runSyntax(ctx context.Context, cfg manifest.TestConfig, behavior classify.Behavior, out Outcome) Outcome {
	res := b.Engine.Invoke(ctx, InvokeRequest{
		QueryFile: cfg.Query,
		Dialect:   behavior.Dialect,
		ParseOnly: true,
	})

	switch res.Status {
	case InvokeOK:
		if behavior.Expect == classify.ExpectFailed {
			out.Status = StatusFailed
			out.Reason = "engine accepted input that must be rejected"
			out.Stderr = res.Stderr
			return out
		}
		out.Status = StatusPassed
		return out
	case InvokeNonZeroExit:
		if behavior.Expect == classify.ExpectFailed {
			out.Status = StatusPassed
			return out
		}
		out.Status = StatusFailed
		out.Reason = "engine rejected input that must parse"
		out.Stderr = res.Stderr
		return out
	case InvokeTimedOut:
		out.Status = StatusTimeout
		out.Reason = "engine invocation timed out"
		return out
	case InvokeCanceled:
		out.Status = StatusError
		out.Reason = "run canceled"
		return out
	default:
		out = outcomeFor(out, NewExecError(cfg.Name, incompleteRunMessage(res), nil))
		out.Stderr = res.Stderr
		return out
	}
}

// incompleteRunMessage describes an engine process that never produced a
// usable exit status.
func incompleteRunMessage(res InvokeResult) string {
	msg := fmt.Sprintf("engine did not run to completion (%s)", res.Status)
	if res.Signal != "" {
		msg += ": " + res.Signal
	}
	return msg
}

// orderByPattern matches an ORDER BY clause outside of analysis; a textual
// scan is enough to pick the strict comparison mode.
var orderByPattern = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)

// runEvaluation executes the query and compares its serialized result
// against the recorded expectation.
func (b *Batch) runEvaluation(ctx context.Context, cfg manifest.TestConfig, behavior classify.Behavior, out Outcome) Outcome {
	format := parse.FormatSRX
	if cfg.ExpectedResult != "" {
		if f, err := parse.DetectFormat(cfg.ExpectedResult); err == nil {
			format = f
		}
	}

	res := b.Engine.Invoke(ctx, InvokeRequest{
		QueryFile:      cfg.Query,
		Dialect:        behavior.Dialect,
		Format:         format,
		DataFiles:      cfg.DataFiles,
		NamedDataFiles: cfg.NamedDataFiles,
	})

	switch res.Status {
	case InvokeOK:
	case InvokeTimedOut:
		out.Status = StatusTimeout
		out.Reason = "engine invocation timed out"
		return out
	case InvokeCanceled:
		out.Status = StatusError
		out.Reason = "run canceled"
		return out
	case InvokeNonZeroExit:
		out = outcomeFor(out, NewExecError(cfg.Name, fmt.Sprintf("engine exited with status %d", res.ExitCode), nil))
		out.Stderr = res.Stderr
		return out
	default:
		out = outcomeFor(out, NewExecError(cfg.Name, incompleteRunMessage(res), nil))
		out.Stderr = res.Stderr
		return out
	}

	// Without a recorded expectation, completing the run is the test.
	if cfg.ExpectedResult == "" {
		out.Status = StatusPassed
		return out
	}

	expectedRaw, err := os.ReadFile(cfg.ExpectedResult)
	if err != nil {
		return outcomeFor(out, NewConfigError(cfg.Name, "read expected result", err))
	}

	// A structural comparison of the canonicalized documents settles exact
	// matches cheaply before any model-level work.
	if format == parse.FormatSRJ {
		if v := compare.SRJDocuments(expectedRaw, res.Payload); v.Matched() {
			out.Status = StatusPassed
			return out
		}
	}

	expected, err := parse.Parse(format, expectedRaw, nil)
	if err != nil {
		return outcomeFor(out, NewParseError(cfg.Name, "expected result unreadable", err))
	}
	actual, err := parse.Parse(format, res.Payload, nil)
	if err != nil {
		out = outcomeFor(out, NewParseError(cfg.Name, "engine output unreadable", err))
		out.Stderr = res.Stderr
		return out
	}

	scratch := ""
	if b.WorkDir != "" {
		scratch = filepath.Join(b.WorkDir, uuid.NewString())
	}
	verdict := compare.Results(ctx, expected, actual, compare.Options{
		Ordered:         b.isOrdered(cfg),
		GraphComparator: b.GraphComparator,
		ScratchDir:      scratch,
	})

	switch verdict.Outcome {
	case compare.OutcomeMatch:
		if scratch != "" {
			os.RemoveAll(scratch)
		}
		out.Status = StatusPassed
	case compare.OutcomeMismatch:
		out.Status = StatusFailed
		out.Reason = "result differs from expectation"
		out.Diagnostic = verdict.Diagnostic
	default:
		out.Status = StatusUnresolved
		out.Reason = verdict.Reason
	}
	return out
}

// isOrdered picks strict positional comparison when the query itself
// imposes an ordering and the manifest does not relax cardinality.
func (b *Batch) isOrdered(cfg manifest.TestConfig) bool {
	if cfg.LaxCardinality {
		return false
	}
	text, err := os.ReadFile(cfg.Query)
	if err != nil {
		return false
	}
	return orderByPattern.MatchString(string(text))
}
