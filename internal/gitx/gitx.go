// Package gitx wraps the git binary for the repository interrogation and tag
// operations relr needs. All operations run against a repository root
// directory and take a context for cancellation.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Repo runs git commands inside a repository root.
type Repo struct {
	dir string
}

// Open returns a Repo for the given directory. The directory is verified to
// be inside a git work tree.
func Open(ctx context.Context, dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}
	if strings.TrimSpace(out) != "true" {
		return nil, fmt.Errorf("not a git work tree: %s", dir)
	}
	return r, nil
}

// run executes git with args and returns trimmed stdout. Stderr is folded
// into the error.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// HeadSHA returns the full SHA of HEAD.
func (r *Repo) HeadSHA(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// ShortSHA returns the abbreviated SHA of HEAD.
func (r *Repo) ShortSHA(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--short", "HEAD")
}

// CurrentBranch returns the current branch name, or "HEAD" when detached.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// IsClean reports whether the work tree has no uncommitted changes.
func (r *Repo) IsClean(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// LatestTag returns the most recent tag reachable from HEAD. ok is false when
// the repository has no tags yet.
func (r *Repo) LatestTag(ctx context.Context) (tag string, ok bool, err error) {
	out, err := r.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		if strings.Contains(err.Error(), "cannot describe") || strings.Contains(err.Error(), "No names found") {
			return "", false, nil
		}
		return "", false, err
	}
	return out, true, nil
}

// CommitsSince returns the number of commits on HEAD since tag.
func (r *Repo) CommitsSince(ctx context.Context, tag string) (int, error) {
	return r.revListCount(ctx, tag+"..HEAD")
}

// CommitCount returns the total number of commits reachable from HEAD.
func (r *Repo) CommitCount(ctx context.Context) (int, error) {
	return r.revListCount(ctx, "HEAD")
}

func (r *Repo) revListCount(ctx context.Context, spec string) (int, error) {
	out, err := r.run(ctx, "rev-list", "--count", spec)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parse commit count %q: %w", out, err)
	}
	return n, nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repo) CreateTag(ctx context.Context, tag, message string) error {
	if message == "" {
		message = tag
	}
	_, err := r.run(ctx, "tag", "-a", tag, "-m", message)
	return err
}

// PushTag pushes a tag to the remote.
func (r *Repo) PushTag(ctx context.Context, remote, tag string) error {
	_, err := r.run(ctx, "push", remote, "refs/tags/"+tag)
	return err
}

// DeleteLocalTag removes a tag from the local repository.
func (r *Repo) DeleteLocalTag(ctx context.Context, tag string) error {
	_, err := r.run(ctx, "tag", "-d", tag)
	return err
}

// DeleteRemoteTag removes a tag from the remote. Used by prerelease cleanup
// when a pull request closes.
func (r *Repo) DeleteRemoteTag(ctx context.Context, remote, tag string) error {
	_, err := r.run(ctx, "push", remote, "--delete", "refs/tags/"+tag)
	return err
}

// Identity returns the committer identity from git config. Either value may
// be empty when unset.
func (r *Repo) Identity(ctx context.Context) (name, email string) {
	name, _ = r.run(ctx, "config", "user.name")
	email, _ = r.run(ctx, "config", "user.email")
	return name, email
}
