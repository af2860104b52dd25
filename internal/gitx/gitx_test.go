package gitx

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initRepo creates a throwaway repository with one commit.
func initRepo(t *testing.T) *Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-b", "main")
	run("config", "user.name", "Test Author")
	run("config", "user.email", "author@example.test")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	run("add", ".")
	run("commit", "-m", "initial commit")

	r, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

func TestOpenRejectsNonRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	if _, err := Open(context.Background(), t.TempDir()); err == nil {
		t.Fatalf("expected error for non-repository directory")
	}
}

func TestRepoInspection(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()

	sha, err := r.HeadSHA(ctx)
	if err != nil {
		t.Fatalf("HeadSHA: %v", err)
	}
	if len(sha) != 40 {
		t.Fatalf("sha = %q", sha)
	}
	short, err := r.ShortSHA(ctx)
	if err != nil {
		t.Fatalf("ShortSHA: %v", err)
	}
	if len(short) < 4 || sha[:len(short)] != short {
		t.Fatalf("short sha %q does not prefix %q", short, sha)
	}
	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Fatalf("branch = %q", branch)
	}
	clean, err := r.IsClean(ctx)
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Fatalf("fresh repo reported dirty")
	}

	name, email := r.Identity(ctx)
	if name != "Test Author" || email != "author@example.test" {
		t.Fatalf("identity = %q <%q>", name, email)
	}
}

func TestIsCleanDetectsChanges(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(r.dir, "dirty.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	clean, err := r.IsClean(ctx)
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if clean {
		t.Fatalf("untracked file not detected")
	}
}

func TestTagLifecycle(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()

	if _, ok, err := r.LatestTag(ctx); err != nil {
		t.Fatalf("LatestTag: %v", err)
	} else if ok {
		t.Fatalf("fresh repo reported a tag")
	}

	if err := r.CreateTag(ctx, "v0.1.0", "Release v0.1.0"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	tag, ok, err := r.LatestTag(ctx)
	if err != nil {
		t.Fatalf("LatestTag: %v", err)
	}
	if !ok || tag != "v0.1.0" {
		t.Fatalf("latest tag = %q ok=%v", tag, ok)
	}

	n, err := r.CommitsSince(ctx, "v0.1.0")
	if err != nil {
		t.Fatalf("CommitsSince: %v", err)
	}
	if n != 0 {
		t.Fatalf("commits since tag = %d, want 0", n)
	}

	// creating the same tag twice fails
	if err := r.CreateTag(ctx, "v0.1.0", ""); err == nil {
		t.Fatalf("expected error for duplicate tag")
	}

	if err := r.DeleteLocalTag(ctx, "v0.1.0"); err != nil {
		t.Fatalf("DeleteLocalTag: %v", err)
	}
	if _, ok, err := r.LatestTag(ctx); err != nil {
		t.Fatalf("LatestTag: %v", err)
	} else if ok {
		t.Fatalf("tag survived deletion")
	}
}

func TestCommitsSinceCountsNewCommits(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()

	if err := r.CreateTag(ctx, "v1.0.0", ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "next.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	for _, args := range [][]string{{"add", "."}, {"commit", "-m", "follow-up"}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = r.dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	n, err := r.CommitsSince(ctx, "v1.0.0")
	if err != nil {
		t.Fatalf("CommitsSince: %v", err)
	}
	if n != 1 {
		t.Fatalf("commits since tag = %d, want 1", n)
	}

	total, err := r.CommitCount(ctx)
	if err != nil {
		t.Fatalf("CommitCount: %v", err)
	}
	if total != 2 {
		t.Fatalf("commit count = %d, want 2", total)
	}
}

func TestPushTagToLocalRemote(t *testing.T) {
	r := initRepo(t)
	ctx := context.Background()

	// a bare repository on disk acts as the remote
	remote := t.TempDir()
	cmd := exec.Command("git", "init", "--bare", remote)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git init --bare: %v\n%s", err, out)
	}
	add := exec.Command("git", "remote", "add", "origin", remote)
	add.Dir = r.dir
	if out, err := add.CombinedOutput(); err != nil {
		t.Fatalf("git remote add: %v\n%s", err, out)
	}

	if err := r.CreateTag(ctx, "v0.2.0", ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := r.PushTag(ctx, "origin", "v0.2.0"); err != nil {
		t.Fatalf("PushTag: %v", err)
	}
	if err := r.DeleteRemoteTag(ctx, "origin", "v0.2.0"); err != nil {
		t.Fatalf("DeleteRemoteTag: %v", err)
	}
	// deleting again fails, the ref is gone
	if err := r.DeleteRemoteTag(ctx, "origin", "v0.2.0"); err == nil {
		t.Fatalf("expected error deleting a missing remote tag")
	}
}
