package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/pkgensure/internal/ensure"
)

// InsertRun records a run and returns its ID.
func (s *Store) InsertRun(run *Run) (int64, error) {
	query := `
		INSERT INTO runs
		(package, outcome, exit_code, list_output, install_output, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		run.Package,
		string(run.Outcome),
		run.ExitCode,
		run.ListOutput,
		run.InstallOutput,
		run.Error,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, wrapQueryErr(err, "failed to insert run for %s", run.Package)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id

	return id, nil
}

// ListRuns returns recorded runs, newest first. An empty pkg means every
// package; limit <= 0 means no limit.
func (s *Store) ListRuns(pkg string, limit int) ([]*Run, error) {
	query := `
		SELECT id, package, outcome, exit_code, list_output, install_output, error, started_at, duration_ms
		FROM runs
		WHERE (? = '' OR package = ?)
		ORDER BY id DESC
	`
	args := []any{pkg, pkg}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapQueryErr(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// LastRun returns the most recent run for pkg, or nil if it has never run.
func (s *Store) LastRun(pkg string) (*Run, error) {
	query := `
		SELECT id, package, outcome, exit_code, list_output, install_output, error, started_at, duration_ms
		FROM runs
		WHERE package = ?
		ORDER BY id DESC
		LIMIT 1
	`

	run, err := scanRun(s.db.QueryRow(query, pkg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapQueryErr(err, "failed to get last run for %s", pkg)
	}

	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var outcome, startedAt string
	var listOutput, installOutput, errMsg sql.NullString
	var durationMS int64

	err := row.Scan(
		&run.ID,
		&run.Package,
		&outcome,
		&run.ExitCode,
		&listOutput,
		&installOutput,
		&errMsg,
		&startedAt,
		&durationMS,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, wrapQueryErr(err, "failed to scan run row")
	}

	run.Outcome = ensure.Outcome(outcome)
	run.ListOutput = listOutput.String
	run.InstallOutput = installOutput.String
	run.Error = errMsg.String
	run.Duration = time.Duration(durationMS) * time.Millisecond

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at for run %d: %w", run.ID, err)
	}

	return &run, nil
}
