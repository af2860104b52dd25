package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Repository provides CRUD operations for releases and their events.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository using db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const releaseColumns = `id, tag, version, commit_sha, branch, channel, status,
	pr_number, artifact_url, notes, author_name, author_email, created_at, published_at`

// CreateRelease inserts a new release row and records its create event in the
// same transaction. Returns the new ID. Fails when the (trimmed) tag is
// already tracked.
func (r *Repository) CreateRelease(rel Release) (int64, error) {
	rel.Tag = strings.TrimSpace(rel.Tag)
	if rel.Tag == "" {
		return 0, fmt.Errorf("invalid release: tag cannot be empty")
	}
	if rel.Channel == "" {
		rel.Channel = ChannelStable
	}
	if rel.Status == "" {
		rel.Status = StatusPending
	}

	trx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = trx.Rollback() }()

	// The existence check runs inside the DB engine and avoids TOCTOU races
	// across processes.
	res, err := trx.Exec(`INSERT INTO releases
		(tag, version, commit_sha, branch, channel, status, pr_number, artifact_url, notes, author_name, author_email, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now')
		WHERE NOT EXISTS(SELECT 1 FROM releases WHERE TRIM(tag) = ?)`,
		rel.Tag, rel.Version, rel.CommitSHA, rel.Branch, rel.Channel, rel.Status,
		rel.PRNumber, rel.ArtifactURL, rel.Notes, rel.AuthorName, rel.AuthorEmail, rel.Tag)
	if err != nil {
		return 0, fmt.Errorf("insert release: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, fmt.Errorf("tag %q already tracked", rel.Tag)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	detail := fmt.Sprintf(`{"tag":%q,"commit":%q,"channel":%q}`, rel.Tag, rel.CommitSHA, rel.Channel)
	if err := r.recordEventTx(trx, id, OpCreate, detail); err != nil {
		return 0, err
	}
	if err := trx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetReleaseByTag retrieves a release by tag. Returns (nil, nil) when not
// found.
func (r *Repository) GetReleaseByTag(tag string) (*Release, error) {
	row := r.db.QueryRow("SELECT "+releaseColumns+" FROM releases WHERE tag = ?", tag)
	rel, err := scanRelease(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rel, nil
}

// ListReleases returns all tracked releases, newest first.
func (r *Repository) ListReleases() ([]Release, error) {
	return r.queryReleases("SELECT " + releaseColumns + " FROM releases ORDER BY created_at DESC, id DESC")
}

// ListByChannel returns releases for one channel, newest first.
func (r *Repository) ListByChannel(channel string) ([]Release, error) {
	return r.queryReleases("SELECT "+releaseColumns+" FROM releases WHERE channel = ? ORDER BY created_at DESC, id DESC", channel)
}

// ListOpenPrereleases returns prerelease-channel rows that have not been
// cleaned or yanked.
func (r *Repository) ListOpenPrereleases() ([]Release, error) {
	return r.queryReleases("SELECT "+releaseColumns+` FROM releases
		WHERE channel = ? AND status IN (?, ?) ORDER BY created_at DESC, id DESC`,
		ChannelPrerelease, StatusPending, StatusPublished)
}

// ListByPRNumber returns all prereleases recorded for a pull request.
func (r *Repository) ListByPRNumber(prNumber int) ([]Release, error) {
	return r.queryReleases("SELECT "+releaseColumns+" FROM releases WHERE pr_number = ? ORDER BY created_at DESC, id DESC", prNumber)
}

// SearchReleases searches releases by tag, version, commit SHA or notes.
func (r *Repository) SearchReleases(query string) ([]Release, error) {
	pattern := "%" + query + "%"
	return r.queryReleases("SELECT "+releaseColumns+` FROM releases
		WHERE tag LIKE ? OR version LIKE ? OR commit_sha LIKE ? OR notes LIKE ?
		ORDER BY created_at DESC, id DESC`, pattern, pattern, pattern, pattern)
}

// SetStatus transitions a release to status, recording an event of the given
// operation in the same transaction. Moving to published stamps published_at.
func (r *Repository) SetStatus(releaseID int64, status, operation, detail string) error {
	trx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	if status == StatusPublished {
		_, err = trx.Exec("UPDATE releases SET status = ?, published_at = datetime('now') WHERE id = ?", status, releaseID)
	} else {
		_, err = trx.Exec("UPDATE releases SET status = ? WHERE id = ?", status, releaseID)
	}
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := r.recordEventTx(trx, releaseID, operation, detail); err != nil {
		return err
	}
	return trx.Commit()
}

// SetArtifactURL stores the built artifact location for a release.
func (r *Repository) SetArtifactURL(releaseID int64, url string) error {
	if _, err := r.db.Exec("UPDATE releases SET artifact_url = ? WHERE id = ?", url, releaseID); err != nil {
		return fmt.Errorf("update artifact url: %w", err)
	}
	return nil
}

// SetNotes stores release notes text on a release.
func (r *Repository) SetNotes(releaseID int64, notes string) error {
	if _, err := r.db.Exec("UPDATE releases SET notes = ? WHERE id = ?", notes, releaseID); err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	return nil
}

// DeleteRelease removes a release and its events by tag. Deleting an unknown
// tag is a no-op.
func (r *Repository) DeleteRelease(tag string) error {
	trx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	var id int64
	row := trx.QueryRow("SELECT id FROM releases WHERE tag = ?", tag)
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	}
	if _, err := trx.Exec("DELETE FROM release_events WHERE release_id = ?", id); err != nil {
		return err
	}
	if _, err := trx.Exec("DELETE FROM releases WHERE id = ?", id); err != nil {
		return err
	}
	return trx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*Release, error) {
	var rel Release
	if err := row.Scan(&rel.ID, &rel.Tag, &rel.Version, &rel.CommitSHA, &rel.Branch,
		&rel.Channel, &rel.Status, &rel.PRNumber, &rel.ArtifactURL, &rel.Notes,
		&rel.AuthorName, &rel.AuthorEmail, &rel.CreatedAt, &rel.PublishedAt); err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *Repository) queryReleases(query string, args ...any) ([]Release, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Release
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rel)
	}
	return out, rows.Err()
}
