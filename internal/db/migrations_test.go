package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestInitDBCreatesDataDir(t *testing.T) {
	tmp := t.TempDir()
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", tmp)
	defer func() { _ = os.Setenv("HOME", oldHome) }()

	conn, err := InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := os.Stat(filepath.Join(tmp, ".relr", "relr.db")); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	if _, err := conn.Exec("INSERT INTO releases (tag, version, commit_sha, created_at) VALUES ('v0.0.1', '0.0.1', 'abc', datetime('now'))"); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}
}

func TestApplyMigrationsUpgradesLegacySchema(t *testing.T) {
	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "legacy.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = conn.Close() }()

	// an old database created before pr_number/artifact_url existed
	legacy := `CREATE TABLE releases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tag TEXT NOT NULL UNIQUE,
		version TEXT NOT NULL,
		commit_sha TEXT NOT NULL,
		branch TEXT,
		channel TEXT NOT NULL DEFAULT 'stable',
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT,
		author_name TEXT,
		author_email TEXT,
		created_at TEXT NOT NULL,
		published_at TEXT
	)`
	if _, err := conn.Exec(legacy); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}

	if err := ApplyMigrations(conn); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	if _, err := conn.Exec("INSERT INTO releases (tag, version, commit_sha, pr_number, artifact_url, created_at) VALUES ('v1.0.0', '1.0.0', 'abc', 7, 'https://example.test', datetime('now'))"); err != nil {
		t.Fatalf("new columns missing after migration: %v", err)
	}

	// running again is harmless
	if err := ApplyMigrations(conn); err != nil {
		t.Fatalf("second ApplyMigrations: %v", err)
	}
}
