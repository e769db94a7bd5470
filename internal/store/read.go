package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sparqlcheck/sparqlcheck/internal/runner"
)

// RunRecord is a run row with its stored tallies.
type RunRecord struct {
	Run        Run
	Passed     int
	Failed     int
	Skipped    int
	Unresolved int
	Errored    int
	TimedOut   int
	Total      int
}

// ListRuns returns the most recent runs, newest first, up to limit.
// Results are ordered by start time then id so the order is deterministic
// even for runs started in the same instant.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, engine, manifest,
		       passed, failed, skipped, unresolved, errored, timed_out, total
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished string
		if err := rows.Scan(
			&rec.Run.ID, &started, &finished, &rec.Run.Engine, &rec.Run.Manifest,
			&rec.Passed, &rec.Failed, &rec.Skipped, &rec.Unresolved,
			&rec.Errored, &rec.TimedOut, &rec.Total,
		); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		if rec.Run.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("list runs: started_at: %w", err)
		}
		if rec.Run.Finished, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("list runs: finished_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RunOutcomes returns the outcomes of one run in execution order.
func (s *Store) RunOutcomes(ctx context.Context, runID string) ([]runner.Outcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT detail
		FROM outcomes
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []runner.Outcome
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("run outcomes: scan: %w", err)
		}
		o, err := unmarshalOutcome(detail)
		if err != nil {
			return nil, fmt.Errorf("run outcomes: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// Regressions returns the names of tests that passed in the earlier run
// but did not pass in the later one.
func (s *Store) Regressions(ctx context.Context, earlierID, laterID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT later.name
		FROM outcomes AS earlier
		JOIN outcomes AS later ON later.name = earlier.name
		WHERE earlier.run_id = ? AND later.run_id = ?
		  AND earlier.status = 'passed' AND later.status != 'passed'
		ORDER BY later.position ASC
	`, earlierID, laterID)
	if err != nil {
		return nil, fmt.Errorf("regressions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("regressions: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
