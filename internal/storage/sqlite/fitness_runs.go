package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/alterego/alterego/internal/types"
)

// timeLayout sorts lexicographically in chronological order for UTC times.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordRun stores one fitness evaluation.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *types.FitnessRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid fitness run: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fitness_runs (
			id, started_at, duration_ms, verdict,
			files_ok, integrity_ok, governance_ok, deps_ok, connectivity_ok,
			unknown_docs, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Duration.Milliseconds(),
		string(run.Verdict),
		run.FilesOK,
		run.IntegrityOK,
		run.GovernanceOK,
		run.DepsOK,
		run.ConnectivityOK,
		run.UnknownDocs,
		run.Summary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fitness run: %w", err)
	}

	return nil
}

// RecentRuns retrieves up to limit runs, newest first.
func (s *SQLiteStorage) RecentRuns(ctx context.Context, limit int) ([]*types.FitnessRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, verdict,
		       files_ok, integrity_ok, governance_ok, deps_ok, connectivity_ok,
		       unknown_docs, summary
		FROM fitness_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fitness runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*types.FitnessRun
	for rows.Next() {
		run := &types.FitnessRun{}
		var startedAt, verdict string
		var durationMs int64

		err := rows.Scan(
			&run.ID,
			&startedAt,
			&durationMs,
			&verdict,
			&run.FilesOK,
			&run.IntegrityOK,
			&run.GovernanceOK,
			&run.DepsOK,
			&run.ConnectivityOK,
			&run.UnknownDocs,
			&run.Summary,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fitness run: %w", err)
		}

		run.StartedAt, err = time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at %q: %w", startedAt, err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.Verdict = types.HealthVerdict(verdict)

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fitness run rows: %w", err)
	}

	return runs, nil
}
