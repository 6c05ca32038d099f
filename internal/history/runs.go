package history

import (
	"fmt"
	"time"
)

// RecordRun appends a run summary for a target
func (db *DB) RecordRun(r *Run) error {
	result, err := db.conn.Exec(`
		INSERT INTO mirror_runs (target_id, started_at, duration_ms, created, updated, skipped, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.TargetID, r.StartedAt.Unix(), r.Duration.Milliseconds(),
		r.Created, r.Updated, r.Skipped, r.ErrorCount)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		r.ID = id
	}
	return nil
}

// ListRuns returns the most recent runs for a target, newest first
func (db *DB) ListRuns(targetID string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(`
		SELECT id, target_id, started_at, duration_ms, created, updated, skipped, error_count
		FROM mirror_runs WHERE target_id = ?
		ORDER BY started_at DESC, id DESC LIMIT ?`, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var startedAt, durationMs int64
		if err := rows.Scan(&r.ID, &r.TargetID, &startedAt, &durationMs,
			&r.Created, &r.Updated, &r.Skipped, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0).UTC()
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
