package store

import (
	"database/sql"
	"fmt"
)

// recordEventTx writes an event using the provided transaction. This helper
// is useful when an outer transaction is already in progress to avoid nested
// writes.
func (r *Repository) recordEventTx(trx *sql.Tx, releaseID int64, operation, detail string) error {
	var maxSeq sql.NullInt64
	row := trx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM release_events WHERE release_id = ?", releaseID)
	if err := row.Scan(&maxSeq); err != nil {
		return err
	}
	seq := int(maxSeq.Int64) + 1
	_, err := trx.Exec(`INSERT INTO release_events (release_id, seq, created_at, operation, detail)
		VALUES (?, ?, datetime('now'), ?, ?)`, releaseID, seq, operation, detail)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// RecordEvent appends an event to a release's history.
func (r *Repository) RecordEvent(releaseID int64, operation, detail string) error {
	trx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()
	if err := r.recordEventTx(trx, releaseID, operation, detail); err != nil {
		return err
	}
	return trx.Commit()
}

// ListEvents returns all events for a release id, newest first.
func (r *Repository) ListEvents(releaseID int64) ([]ReleaseEvent, error) {
	rows, err := r.db.Query(`SELECT id, release_id, seq, created_at, operation, detail
		FROM release_events WHERE release_id = ? ORDER BY seq DESC`, releaseID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ReleaseEvent
	for rows.Next() {
		var ev ReleaseEvent
		var detail sql.NullString
		if err := rows.Scan(&ev.ID, &ev.ReleaseID, &ev.Seq, &ev.CreatedAt, &ev.Operation, &detail); err != nil {
			return nil, err
		}
		ev.Detail = detail.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListEventsByTag finds the release by tag and returns its events. Returns
// (nil, nil) when the tag is unknown.
func (r *Repository) ListEventsByTag(tag string) ([]ReleaseEvent, error) {
	row := r.db.QueryRow("SELECT id FROM releases WHERE tag = ?", tag)
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return r.ListEvents(id)
}
