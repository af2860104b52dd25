package archive

import (
	"database/sql"
	"fmt"

	dbpkg "github.com/relr-dev/relr/internal/db"
)

// ImportDatabase merges releases from the relr database at srcPath into
// dstDB. Tags already tracked in dstDB are skipped. Returns counts of
// imported and skipped releases.
func ImportDatabase(dstDB *sql.DB, srcPath string) (imported, skipped int, err error) {
	srcDB, err := dbpkg.Open(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open import source: %w", err)
	}
	defer func() { _ = srcDB.Close() }()

	rows, err := srcDB.Query(`SELECT id, tag, version, commit_sha, branch, channel, status,
		pr_number, artifact_url, notes, author_name, author_email, created_at, published_at
		FROM releases ORDER BY id ASC`)
	if err != nil {
		return 0, 0, fmt.Errorf("select releases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			srcID                   int64
			tag, version, sha       string
			channel, status         string
			branch, artifact, notes sql.NullString
			authorName, authorEmail sql.NullString
			createdAt               string
			publishedAt             sql.NullString
			prNumber                sql.NullInt64
		)
		if err := rows.Scan(&srcID, &tag, &version, &sha, &branch, &channel, &status,
			&prNumber, &artifact, &notes, &authorName, &authorEmail, &createdAt, &publishedAt); err != nil {
			return imported, skipped, err
		}

		var existing int64
		err := dstDB.QueryRow("SELECT id FROM releases WHERE tag = ?", tag).Scan(&existing)
		if err == nil {
			skipped++
			continue
		}
		if err != sql.ErrNoRows {
			return imported, skipped, err
		}

		if err := importOne(dstDB, srcDB, srcID,
			tag, version, sha, branch, channel, status, prNumber, artifact, notes,
			authorName, authorEmail, createdAt, publishedAt); err != nil {
			return imported, skipped, err
		}
		imported++
	}
	return imported, skipped, rows.Err()
}

func importOne(dstDB, srcDB *sql.DB, srcID int64,
	tag, version, sha string, branch sql.NullString, channel, status string,
	prNumber sql.NullInt64, artifact, notes, authorName, authorEmail sql.NullString,
	createdAt string, publishedAt sql.NullString) error {

	trx, err := dstDB.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	res, err := trx.Exec(`INSERT INTO releases
		(tag, version, commit_sha, branch, channel, status, pr_number, artifact_url, notes, author_name, author_email, created_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tag, version, sha, branch, channel, status, prNumber, artifact, notes, authorName, authorEmail, createdAt, publishedAt)
	if err != nil {
		return fmt.Errorf("insert release %s: %w", tag, err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	evRows, err := srcDB.Query("SELECT seq, created_at, operation, detail FROM release_events WHERE release_id = ? ORDER BY seq ASC", srcID)
	if err != nil {
		return fmt.Errorf("select events for %s: %w", tag, err)
	}
	defer func() { _ = evRows.Close() }()
	for evRows.Next() {
		var seq int
		var evCreated, operation string
		var detail sql.NullString
		if err := evRows.Scan(&seq, &evCreated, &operation, &detail); err != nil {
			return err
		}
		if _, err := trx.Exec("INSERT INTO release_events (release_id, seq, created_at, operation, detail) VALUES (?, ?, ?, ?, ?)",
			newID, seq, evCreated, operation, detail); err != nil {
			return fmt.Errorf("insert event for %s: %w", tag, err)
		}
	}
	if err := evRows.Err(); err != nil {
		return err
	}
	return trx.Commit()
}
