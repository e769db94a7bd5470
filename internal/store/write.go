package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sparqlcheck/sparqlcheck/internal/runner"
)

// Run identifies one batch execution.
type Run struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Engine   string
	Manifest string
}

// RecordRun persists a run and all of its outcomes in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same run
// twice is silently ignored, outcomes included.
func (s *Store) RecordRun(ctx context.Context, run Run, summary *runner.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, finished_at, engine, manifest,
		 passed, failed, skipped, unresolved, errored, timed_out, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Started.UTC().Format(time.RFC3339Nano),
		run.Finished.UTC().Format(time.RFC3339Nano),
		run.Engine,
		run.Manifest,
		summary.Passed,
		summary.Failed,
		summary.Skipped,
		summary.Unresolved,
		summary.Errored,
		summary.TimedOut,
		summary.Total,
	)
	if err != nil {
		return fmt.Errorf("record run: insert run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record run: rows affected: %w", err)
	}
	if affected == 0 {
		// Run already recorded; keep its outcomes as-is.
		return tx.Commit()
	}

	for i, o := range summary.Outcomes {
		detail, err := marshalOutcome(o)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outcomes
			(run_id, position, name, uri, status, reason, diagnostic, duration_ns, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			i,
			o.Name,
			o.URI,
			string(o.Status),
			o.Reason,
			o.Diagnostic,
			int64(o.Duration),
			detail,
		)
		if err != nil {
			return fmt.Errorf("record run: insert outcome %q: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: commit: %w", err)
	}
	return nil
}
