package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"squish/internal/artifact"
	"squish/internal/report"
)

const timeLayout = time.RFC3339Nano

// Run identifies one `squish run` invocation.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Level       int
	Concurrency int
}

// RunSummary is a stored run with its totals.
type RunSummary struct {
	Run
	Summary report.Summary
}

// Record stores run and its reports in one transaction.
func (s *Store) Record(ctx context.Context, run Run, reports []artifact.Report) error {
	summary := report.Summarize(reports)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `INSERT INTO runs
			(id, started_at, finished_at, level, concurrency, files, completed, skipped, failed, original_bytes, optimized_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.StartedAt.UTC().Format(timeLayout),
			run.FinishedAt.UTC().Format(timeLayout),
			run.Level,
			run.Concurrency,
			summary.Files,
			summary.Completed,
			summary.Skipped,
			summary.Failed,
			summary.OriginalBytes,
			summary.OptimizedBytes,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO reports
			(run_id, position, input_file, kind, original_size, optimized_size, status, outcome, percent, elapsed_ms, detail, stages_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare report insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range reports {
			stages, err := json.Marshal(r.Stages)
			if err != nil {
				return fmt.Errorf("encode stages for %s: %w", r.InputFile, err)
			}
			if _, err := stmt.ExecContext(ctx,
				run.ID, i, r.InputFile, nullString(r.Kind), r.OriginalSize, r.OptimizedSize,
				r.Status, string(r.Outcome), r.Percent, r.Elapsed.Milliseconds(), nullString(r.Detail), string(stages),
			); err != nil {
				return fmt.Errorf("insert report %s: %w", r.InputFile, err)
			}
		}
		return tx.Commit()
	})
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, started_at, finished_at, level, concurrency,
		files, completed, skipped, failed, original_bytes, optimized_bytes
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs                  RunSummary
			startedRaw, doneRaw string
		)
		if err := rows.Scan(&rs.ID, &startedRaw, &doneRaw, &rs.Level, &rs.Concurrency,
			&rs.Summary.Files, &rs.Summary.Completed, &rs.Summary.Skipped, &rs.Summary.Failed,
			&rs.Summary.OriginalBytes, &rs.Summary.OptimizedBytes); err != nil {
			return nil, err
		}
		rs.StartedAt = parseTime(startedRaw)
		rs.FinishedAt = parseTime(doneRaw)
		rs.Summary.Elapsed = rs.FinishedAt.Sub(rs.StartedAt)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Reports returns the stored reports of runID in their original order.
func (s *Store) Reports(ctx context.Context, runID string) ([]artifact.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT input_file, kind, original_size, optimized_size,
		status, outcome, percent, elapsed_ms, detail, stages_json
		FROM reports WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []artifact.Report
	for rows.Next() {
		var (
			r         artifact.Report
			kind      sql.NullString
			detail    sql.NullString
			stages    sql.NullString
			outcome   string
			elapsedMs int64
		)
		if err := rows.Scan(&r.InputFile, &kind, &r.OriginalSize, &r.OptimizedSize,
			&r.Status, &outcome, &r.Percent, &elapsedMs, &detail, &stages); err != nil {
			return nil, err
		}
		r.Kind = kind.String
		r.Detail = detail.String
		r.Outcome = artifact.Outcome(outcome)
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		if stages.Valid && stages.String != "" && stages.String != "null" {
			if err := json.Unmarshal([]byte(stages.String), &r.Stages); err != nil {
				return nil, fmt.Errorf("decode stages for %s: %w", r.InputFile, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Totals sums every stored run.
func (s *Store) Totals(ctx context.Context) (report.Summary, error) {
	var t report.Summary
	err := s.db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(files), 0), COALESCE(SUM(completed), 0), COALESCE(SUM(skipped), 0),
		COALESCE(SUM(failed), 0), COALESCE(SUM(original_bytes), 0), COALESCE(SUM(optimized_bytes), 0)
		FROM runs`).Scan(&t.Files, &t.Completed, &t.Skipped, &t.Failed, &t.OriginalBytes, &t.OptimizedBytes)
	if err != nil {
		return report.Summary{}, fmt.Errorf("sum runs: %w", err)
	}
	return t, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	const kept = `SELECT id FROM runs ORDER BY started_at DESC LIMIT ?`
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE run_id NOT IN (`+kept+`)`, max(keep, 0)); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id NOT IN (`+kept+`)`, max(keep, 0))
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
