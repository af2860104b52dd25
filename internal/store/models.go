// Package store provides the SQLite-backed release registry.
package store

import "database/sql"

// Release channels.
const (
	ChannelStable     = "stable"
	ChannelPrerelease = "prerelease"
)

// Release lifecycle states.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusCleaned   = "cleaned"
	StatusYanked    = "yanked"
)

// Release represents a tagged release (or a pull-request prerelease) tracked
// by relr.
type Release struct {
	ID          int64
	Tag         string
	Version     string
	CommitSHA   string
	Branch      sql.NullString
	Channel     string
	Status      string
	PRNumber    sql.NullInt64
	ArtifactURL sql.NullString
	Notes       sql.NullString
	AuthorName  sql.NullString
	AuthorEmail sql.NullString
	CreatedAt   string
	PublishedAt sql.NullString
}

// ReleaseEvent is one step in a release's history. Seq is monotonic per
// release.
type ReleaseEvent struct {
	ID        int64
	ReleaseID int64
	Seq       int
	CreatedAt string
	Operation string
	Detail    string
}

// Event operations.
const (
	OpCreate  = "create"
	OpTag     = "tag"
	OpPublish = "publish"
	OpComment = "comment"
	OpCleanup = "cleanup"
	OpYank    = "yank"
)
