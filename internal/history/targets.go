package history

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveTarget inserts or replaces a saved mirror target
func (db *DB) SaveTarget(t *Target) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.Exec(`
		INSERT INTO mirror_targets (id, local_root, remote_root_id, recursive, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			local_root = excluded.local_root,
			remote_root_id = excluded.remote_root_id,
			recursive = excluded.recursive`,
		t.ID, t.LocalRoot, t.RemoteRootID, boolToInt(t.Recursive), t.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save target: %w", err)
	}
	return nil
}

// GetTarget retrieves a saved target by ID
func (db *DB) GetTarget(id string) (*Target, error) {
	row := db.conn.QueryRow(`
		SELECT id, local_root, remote_root_id, recursive, created_at
		FROM mirror_targets WHERE id = ?`, id)

	var t Target
	var recursive int
	var createdAt int64
	if err := row.Scan(&t.ID, &t.LocalRoot, &t.RemoteRootID, &recursive, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("target '%s' not found", id)
		}
		return nil, fmt.Errorf("failed to load target: %w", err)
	}
	t.Recursive = recursive != 0
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &t, nil
}

// ListTargets returns all saved targets ordered by creation time
func (db *DB) ListTargets() ([]*Target, error) {
	rows, err := db.conn.Query(`
		SELECT id, local_root, remote_root_id, recursive, created_at
		FROM mirror_targets ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []*Target
	for rows.Next() {
		var t Target
		var recursive int
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.LocalRoot, &t.RemoteRootID, &recursive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		t.Recursive = recursive != 0
		t.CreatedAt = time.Unix(createdAt, 0).UTC()
		targets = append(targets, &t)
	}
	return targets, rows.Err()
}

// DeleteTarget removes a saved target and its run history
func (db *DB) DeleteTarget(id string) error {
	result, err := db.conn.Exec(`DELETE FROM mirror_targets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete target: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("target '%s' not found", id)
	}
	// ON DELETE CASCADE needs foreign keys on; delete runs explicitly instead
	if _, err := db.conn.Exec(`DELETE FROM mirror_runs WHERE target_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete target runs: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
