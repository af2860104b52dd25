// Package archive moves release records between relr databases: whole-file
// backups, standalone single-release exports, and merge imports.
package archive

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"

	"github.com/relr-dev/relr/internal/config"
	dbpkg "github.com/relr-dev/relr/internal/db"
)

// ExportDatabase copies the active relr database to dstPath.
func ExportDatabase(dstPath string) error {
	src, err := config.DBPath()
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source db: %w", err)
	}
	defer func() { _ = in.Close() }()
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create dst db: %w", err)
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy db: %w", err)
	}
	return nil
}

// ExportRelease exports a single tagged release and its event history into a
// standalone SQLite DB at dstPath. If the tag is not tracked an error is
// returned.
func ExportRelease(srcDB *sql.DB, tag string, dstPath string) error {
	row := srcDB.QueryRow(`SELECT id, tag, version, commit_sha, branch, channel, status,
		pr_number, artifact_url, notes, author_name, author_email, created_at, published_at
		FROM releases WHERE tag = ?`, tag)
	var (
		id                      int64
		relTag, version, sha    string
		channel, status         string
		branch, artifact, notes sql.NullString
		authorName, authorEmail sql.NullString
		createdAt               string
		publishedAt             sql.NullString
		prNumber                sql.NullInt64
	)
	if err := row.Scan(&id, &relTag, &version, &sha, &branch, &channel, &status,
		&prNumber, &artifact, &notes, &authorName, &authorEmail, &createdAt, &publishedAt); err != nil {
		return fmt.Errorf("select release: %w", err)
	}

	type event struct {
		seq       int
		createdAt string
		operation string
		detail    sql.NullString
	}
	rows, err := srcDB.Query("SELECT seq, created_at, operation, detail FROM release_events WHERE release_id = ? ORDER BY seq ASC", id)
	if err != nil {
		return fmt.Errorf("select events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var events []event
	for rows.Next() {
		var ev event
		if err := rows.Scan(&ev.seq, &ev.createdAt, &ev.operation, &ev.detail); err != nil {
			return err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create dst dir: %w", err)
	}
	dstDB, err := sql.Open("sqlite", dstPath)
	if err != nil {
		return fmt.Errorf("open dst db: %w", err)
	}
	defer func() { _ = dstDB.Close() }()

	if err := dbpkg.ApplyMigrations(dstDB); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	res, err := dstDB.Exec(`INSERT INTO releases
		(tag, version, commit_sha, branch, channel, status, pr_number, artifact_url, notes, author_name, author_email, created_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		relTag, version, sha, branch, channel, status, prNumber, artifact, notes, authorName, authorEmail, createdAt, publishedAt)
	if err != nil {
		return fmt.Errorf("insert release: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, ev := range events {
		if _, err := dstDB.Exec("INSERT INTO release_events (release_id, seq, created_at, operation, detail) VALUES (?, ?, ?, ?, ?)",
			newID, ev.seq, ev.createdAt, ev.operation, ev.detail); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}
