// Package runner invokes the external query engine per test case and
// orchestrates batches of test executions with bounded parallelism.
package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sparqlcheck/sparqlcheck/internal/parse"
)

// Engine invokes the query processor as a black-box subprocess.
type Engine struct {
	// Binary is the engine executable path or name.
	Binary string

	// Timeout bounds each invocation; zero means no bound.
	Timeout time.Duration

	// Logger receives per-invocation diagnostics.
	Logger *slog.Logger
}

// InvokeRequest describes one engine run.
type InvokeRequest struct {
	QueryFile      string
	Dialect        string
	Format         parse.Format
	DataFiles      []string
	NamedDataFiles []string

	// ParseOnly asks the engine to check syntax without executing.
	ParseOnly bool
}

// InvokeStatus classifies how the engine process ended. Process-level
// failures are values here, never raised errors, so callers above the
// runner never catch process failures directly.
type InvokeStatus string

const (
	InvokeOK          InvokeStatus = "ok"
	InvokeNonZeroExit InvokeStatus = "nonzero-exit"
	InvokeSignaled    InvokeStatus = "signaled"
	InvokeTimedOut    InvokeStatus = "timed-out"
	InvokeCanceled    InvokeStatus = "canceled"
	InvokeStartFailed InvokeStatus = "start-failed"
)

// InvokeResult is the structured outcome of one engine run.
type InvokeResult struct {
	Status   InvokeStatus
	ExitCode int
	Signal   string
	Stderr   string

	// Payload is stdout with leading non-result debug lines removed.
	Payload []byte
}

// Invoke runs the engine synchronously with a bounded timeout. Exceeding
// the timeout kills the whole process group and reports InvokeTimedOut;
// external cancellation kills the same way but reports InvokeCanceled.
func (e *Engine) Invoke(ctx context.Context, req InvokeRequest) InvokeResult {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := e.buildArgs(req)
	cmd := exec.CommandContext(ctx, e.Binary, args...)

	// The engine may spawn helpers; a process group lets the kill reach
	// all of them.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	res := InvokeResult{
		Stderr:  stderr.String(),
		Payload: FilterPayload(req.Format, stdout.Bytes()),
	}

	switch {
	case err == nil:
		res.Status = InvokeOK
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Status = InvokeTimedOut
	case ctx.Err() != nil:
		// External cancellation, not this invocation's own deadline.
		res.Status = InvokeCanceled
	default:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.Status = InvokeStartFailed
			res.Stderr = err.Error()
			break
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Status = InvokeSignaled
			res.Signal = ws.Signal().String()
			break
		}
		res.Status = InvokeNonZeroExit
		res.ExitCode = exitErr.ExitCode()
	}

	if e.Logger != nil {
		e.Logger.Debug("engine invocation finished",
			"query", req.QueryFile,
			"status", string(res.Status),
			"elapsed", elapsed,
		)
	}
	return res
}

// buildArgs assembles the engine command line per the invocation contract:
// dialect flag, output-format selector, data-source locators, query file.
func (e *Engine) buildArgs(req InvokeRequest) []string {
	args := []string{"-i", req.Dialect}
	if req.ParseOnly {
		args = append(args, "-n")
	} else {
		args = append(args, "-r", formatSelector(req.Format))
	}
	for _, d := range req.DataFiles {
		args = append(args, "-D", d)
	}
	for _, g := range req.NamedDataFiles {
		args = append(args, "-G", g)
	}
	return append(args, req.QueryFile)
}

// formatSelector maps a parse format to the engine's output selector.
func formatSelector(f parse.Format) string {
	switch f {
	case parse.FormatSRX:
		return "xml"
	case parse.FormatSRJ:
		return "json"
	case parse.FormatCSV:
		return "csv"
	case parse.FormatTSV:
		return "tsv"
	case parse.FormatGraph:
		return "ntriples"
	default:
		return "xml"
	}
}

// FilterPayload removes non-result debug lines an engine may interleave
// before its serialized output, by locating the start-of-payload marker
// for the format. Delimited and boolean formats have no reliable marker;
// for those the engine must keep debug output on stderr.
func FilterPayload(format parse.Format, raw []byte) []byte {
	switch format {
	case parse.FormatSRX:
		if i := bytes.Index(raw, []byte("<?xml")); i >= 0 {
			return raw[i:]
		}
		if i := bytes.Index(raw, []byte("<sparql")); i >= 0 {
			return raw[i:]
		}
	case parse.FormatSRJ:
		if i := bytes.IndexByte(raw, '{'); i >= 0 {
			return raw[i:]
		}
	case parse.FormatGraph:
		lines := strings.SplitAfter(string(raw), "\n")
		for i, line := range lines {
			t := strings.TrimSpace(line)
			if t == "" || strings.HasPrefix(t, "<") || strings.HasPrefix(t, "_:") || strings.HasPrefix(t, "#") {
				if t == "" {
					continue
				}
				return []byte(strings.Join(lines[i:], ""))
			}
		}
	}
	return raw
}
