// Package orchestrate drives the release and prerelease flows: guard rails,
// tag creation, GitHub release publication and registry bookkeeping.
package orchestrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/relr-dev/relr/internal/config"
	"github.com/relr-dev/relr/internal/ghub"
	"github.com/relr-dev/relr/internal/semtag"
	"github.com/relr-dev/relr/internal/store"
	"github.com/relr-dev/relr/internal/userprofile"
)

// Git is the slice of gitx.Repo the orchestrator uses. Kept as an interface
// so flows can be tested without a real repository.
type Git interface {
	HeadSHA(ctx context.Context) (string, error)
	ShortSHA(ctx context.Context) (string, error)
	CurrentBranch(ctx context.Context) (string, error)
	IsClean(ctx context.Context) (bool, error)
	LatestTag(ctx context.Context) (tag string, ok bool, err error)
	CommitsSince(ctx context.Context, tag string) (int, error)
	CommitCount(ctx context.Context) (int, error)
	CreateTag(ctx context.Context, tag, message string) error
	PushTag(ctx context.Context, remote, tag string) error
	DeleteLocalTag(ctx context.Context, tag string) error
	DeleteRemoteTag(ctx context.Context, remote, tag string) error
	Identity(ctx context.Context) (name, email string)
}

// Hub is the slice of ghub.Client the orchestrator uses.
type Hub interface {
	CreateRelease(ctx context.Context, tag, name, body string, draft, prerelease bool) (*ghub.Release, error)
	GetReleaseByTag(ctx context.Context, tag string) (*ghub.Release, error)
	DeleteRelease(ctx context.Context, id int64) error
	CreateIssueComment(ctx context.Context, number int, body string) (*ghub.Comment, error)
}

// Service wires the release flows together.
type Service struct {
	git  Git
	hub  Hub
	repo *store.Repository
	cfg  *config.Settings
	log  *log.Logger
}

// NewService creates a Service. hub may be nil for flows that never reach
// GitHub (status, plan).
func NewService(git Git, hub Hub, repo *store.Repository, cfg *config.Settings, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{git: git, hub: hub, repo: repo, cfg: cfg, log: logger}
}

// CutOptions controls a release cut.
type CutOptions struct {
	// Tag pins the exact tag; when empty the next tag is derived from the
	// latest tag using Bump.
	Tag    string
	Bump   string // major, minor or patch; defaults to patch
	Notes  string
	Draft  bool
	DryRun bool
	// Force skips the clean-work-tree guard.
	Force bool
}

// fallbackBase is the tag bumps start from in a repository with no tags yet.
const fallbackBase = "v0.0.0"

// resolveCutTag determines the tag a cut would create.
func (s *Service) resolveCutTag(ctx context.Context, opts CutOptions) (semtag.Tag, error) {
	if opts.Tag != "" {
		t, err := semtag.Parse(opts.Tag)
		if err != nil {
			return semtag.Tag{}, err
		}
		if t.IsPrerelease() {
			return semtag.Tag{}, fmt.Errorf("cut: %s is a prerelease tag; stable releases use plain vX.Y.Z", t)
		}
		return t, nil
	}
	base, err := s.latestBase(ctx)
	if err != nil {
		return semtag.Tag{}, err
	}
	part := opts.Bump
	if part == "" {
		part = "patch"
	}
	return semtag.Bump(base, part)
}

// latestBase returns the latest reachable release tag, or the fallback base
// in an untagged repository.
func (s *Service) latestBase(ctx context.Context) (semtag.Tag, error) {
	raw, ok, err := s.git.LatestTag(ctx)
	if err != nil {
		return semtag.Tag{}, err
	}
	if !ok {
		return semtag.Parse(fallbackBase)
	}
	return semtag.Parse(raw)
}

// CutPlan returns the actions Cut would perform, without side effects.
func (s *Service) CutPlan(ctx context.Context, opts CutOptions) ([]string, semtag.Tag, error) {
	tag, err := s.resolveCutTag(ctx, opts)
	if err != nil {
		return nil, semtag.Tag{}, err
	}
	sha, err := s.git.HeadSHA(ctx)
	if err != nil {
		return nil, semtag.Tag{}, err
	}
	actions := []string{
		fmt.Sprintf("Create annotated tag %s at %s", tag, shortOf(sha)),
		fmt.Sprintf("Push %s to %s", tag, s.cfg.Git.Remote),
		fmt.Sprintf("Create GitHub release %s (the wheel build workflow runs on publish)", tag),
		"Record release in the local registry",
	}
	if clean, err := s.git.IsClean(ctx); err == nil && !clean {
		actions = append([]string{"WARNING: work tree has uncommitted changes"}, actions...)
	}
	return actions, tag, nil
}

// Cut tags HEAD, pushes the tag, creates the GitHub release and records it.
// Returns the actions performed.
func (s *Service) Cut(ctx context.Context, opts CutOptions) ([]string, error) {
	if opts.DryRun {
		actions, _, err := s.CutPlan(ctx, opts)
		return actions, err
	}
	if !opts.Force {
		clean, err := s.git.IsClean(ctx)
		if err != nil {
			return nil, err
		}
		if !clean {
			return nil, fmt.Errorf("work tree has uncommitted changes; commit or stash them (or use --force)")
		}
	}
	branch, err := s.git.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if branch != s.cfg.Git.DefaultBranch {
		s.log.Warn("cutting a release off the default branch", "branch", branch, "default", s.cfg.Git.DefaultBranch)
	}
	tag, err := s.resolveCutTag(ctx, opts)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetReleaseByTag(tag.Raw); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("tag %s is already tracked (status %s)", tag, existing.Status)
	}
	sha, err := s.git.HeadSHA(ctx)
	if err != nil {
		return nil, err
	}

	actions := []string{}
	s.log.Debug("creating annotated tag", "tag", tag.Raw, "sha", sha)
	if err := s.git.CreateTag(ctx, tag.Raw, fmt.Sprintf("Release %s", tag)); err != nil {
		return nil, err
	}
	actions = append(actions, fmt.Sprintf("Created annotated tag %s at %s", tag, shortOf(sha)))

	if err := s.git.PushTag(ctx, s.cfg.Git.Remote, tag.Raw); err != nil {
		return nil, err
	}
	actions = append(actions, fmt.Sprintf("Pushed %s to %s", tag, s.cfg.Git.Remote))

	name, email := s.identity(ctx)
	rel := store.Release{
		Tag:         tag.Raw,
		Version:     tag.Version.String(),
		CommitSHA:   sha,
		Branch:      nullString(branch),
		Channel:     store.ChannelStable,
		Status:      store.StatusPending,
		Notes:       nullString(opts.Notes),
		AuthorName:  nullString(name),
		AuthorEmail: nullString(email),
	}
	id, err := s.repo.CreateRelease(rel)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RecordEvent(id, store.OpTag, fmt.Sprintf(`{"tag":%q,"sha":%q}`, tag.Raw, sha)); err != nil {
		return nil, err
	}

	if s.hub != nil {
		ghRel, err := s.hub.CreateRelease(ctx, tag.Raw, tag.Raw, opts.Notes, opts.Draft, false)
		if err != nil {
			return nil, err
		}
		actions = append(actions, fmt.Sprintf("Created GitHub release %s", ghRel.HTMLURL))
		if !opts.Draft {
			detail := fmt.Sprintf(`{"release_id":%d,"url":%q}`, ghRel.ID, ghRel.HTMLURL)
			if err := s.repo.SetStatus(id, store.StatusPublished, store.OpPublish, detail); err != nil {
				return nil, err
			}
			actions = append(actions, "Wheel build workflow will attach the artifact to the release")
		}
	} else {
		s.log.Warn("github not configured; tag pushed but no release created")
	}
	actions = append(actions, fmt.Sprintf("Recorded %s in the local registry", tag))
	return actions, nil
}

// identity resolves the author identity from git config, falling back to the
// persisted profile.
func (s *Service) identity(ctx context.Context) (string, string) {
	name, email := s.git.Identity(ctx)
	if name == "" && email == "" {
		if p, ok, err := userprofile.Get(); err == nil && ok {
			return p.Name, p.Email
		}
	}
	return name, email
}

func shortOf(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
