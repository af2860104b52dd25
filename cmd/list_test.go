package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/relr-dev/relr/internal/db"
	"github.com/relr-dev/relr/internal/ghub"
	"github.com/relr-dev/relr/internal/store"
)

// seedRegistry points HOME at a temp dir and records two releases.
func seedRegistry(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	oldHome := os.Getenv("HOME")
	_ = os.Setenv("HOME", tmp)
	t.Cleanup(func() { _ = os.Setenv("HOME", oldHome) })

	dbConn, err := db.InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = dbConn.Close() }()

	r := store.NewRepository(dbConn)
	if _, err := r.CreateRelease(store.Release{Tag: "v1.0.0", Version: "1.0.0", CommitSHA: "aaa111"}); err != nil {
		t.Fatalf("CreateRelease: %v", err)
	}
	pre := store.Release{Tag: "v1.0.1-pr7.abc1234", Version: "1.0.1-pr7.abc1234", CommitSHA: "abc1234", Channel: store.ChannelPrerelease}
	pre.PRNumber.Int64, pre.PRNumber.Valid = 7, true
	if _, err := r.CreateRelease(pre); err != nil {
		t.Fatalf("CreateRelease: %v", err)
	}
}

func TestListCommand(t *testing.T) {
	seedRegistry(t)

	out := captureStdout(t, func() error {
		return listCmd.RunE(listCmd, nil)
	})
	if !strings.Contains(out, "v1.0.0") || !strings.Contains(out, "v1.0.1-pr7.abc1234") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	_ = listCmd.Flags().Set("channel", store.ChannelPrerelease)
	defer func() { _ = listCmd.Flags().Set("channel", "") }()
	out = captureStdout(t, func() error {
		return listCmd.RunE(listCmd, nil)
	})
	if strings.Contains(out, "v1.0.0\t") {
		t.Fatalf("channel filter leaked stable release:\n%s", out)
	}
	if !strings.Contains(out, "v1.0.1-pr7.abc1234") {
		t.Fatalf("prerelease missing from filtered output:\n%s", out)
	}
}

func TestListCommandFilter(t *testing.T) {
	seedRegistry(t)

	_ = listCmd.Flags().Set("filter", "abc1234")
	defer func() { _ = listCmd.Flags().Set("filter", "") }()
	out := captureStdout(t, func() error {
		return listCmd.RunE(listCmd, nil)
	})
	if !strings.Contains(out, "v1.0.1-pr7.abc1234") || strings.Contains(out, "v1.0.0\t") {
		t.Fatalf("unexpected filter output:\n%s", out)
	}
}

func TestListCommandRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widgets/releases" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]ghub.Release{
			{ID: 1, TagName: "v1.0.0", HTMLURL: "https://github.test/releases/v1.0.0"},
			{ID: 2, TagName: "v1.0.1-pr3.abc1234", Prerelease: true},
		})
	}))
	defer srv.Close()

	t.Setenv("RELR_GITHUB_OWNER", "acme")
	t.Setenv("RELR_GITHUB_REPO", "widgets")
	t.Setenv("RELR_GITHUB_TOKEN", "tok")
	t.Setenv("RELR_GITHUB_API_URL", srv.URL)

	listCmd.SetContext(context.Background())
	_ = listCmd.Flags().Set("remote", "true")
	defer func() { _ = listCmd.Flags().Set("remote", "false") }()
	out := captureStdout(t, func() error {
		return listCmd.RunE(listCmd, nil)
	})
	if !strings.Contains(out, "v1.0.0\trelease") {
		t.Fatalf("remote output lacks stable release:\n%s", out)
	}
	if !strings.Contains(out, "v1.0.1-pr3.abc1234\tprerelease") {
		t.Fatalf("remote output lacks prerelease:\n%s", out)
	}
}

func TestDescribeCommand(t *testing.T) {
	seedRegistry(t)

	out := captureStdout(t, func() error {
		return describeCmd.RunE(describeCmd, []string{"v1.0.1-pr7.abc1234"})
	})
	if !strings.Contains(out, "pr:        #7") {
		t.Fatalf("describe output lacks PR number:\n%s", out)
	}
	if !strings.Contains(out, "channel:   prerelease") {
		t.Fatalf("describe output lacks channel:\n%s", out)
	}

	if err := describeCmd.RunE(describeCmd, []string{"v9.9.9"}); err == nil {
		t.Fatalf("expected error for untracked tag")
	}
}

func TestDescribeCommandSetNotes(t *testing.T) {
	seedRegistry(t)

	_ = describeCmd.Flags().Set("set-notes", "hotfix for the wheel build")
	defer func() {
		f := describeCmd.Flags().Lookup("set-notes")
		_ = f.Value.Set("")
		f.Changed = false
	}()
	out := captureStdout(t, func() error {
		return describeCmd.RunE(describeCmd, []string{"v1.0.0"})
	})
	if !strings.Contains(out, "hotfix for the wheel build") {
		t.Fatalf("describe output lacks updated notes:\n%s", out)
	}

	dbConn, err := db.InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = dbConn.Close() }()
	rel, err := store.NewRepository(dbConn).GetReleaseByTag("v1.0.0")
	if err != nil {
		t.Fatalf("GetReleaseByTag: %v", err)
	}
	if rel.Notes.String != "hotfix for the wheel build" {
		t.Fatalf("notes not persisted: %q", rel.Notes.String)
	}
}

func TestHistoryCommand(t *testing.T) {
	seedRegistry(t)

	out := captureStdout(t, func() error {
		return historyCmd.RunE(historyCmd, []string{"v1.0.0"})
	})
	if !strings.Contains(out, store.OpCreate) {
		t.Fatalf("history output lacks create event:\n%s", out)
	}

	out = captureStdout(t, func() error {
		return historyCmd.RunE(historyCmd, []string{"v9.9.9"})
	})
	if !strings.Contains(out, "no history") {
		t.Fatalf("unexpected output for untracked tag:\n%s", out)
	}
}

func TestYankCommand(t *testing.T) {
	seedRegistry(t)

	_ = yankCmd.Flags().Set("yes", "true")
	_ = yankCmd.Flags().Set("reason", "broken wheel")
	defer func() { _ = yankCmd.Flags().Set("yes", "false") }()
	out := captureStdout(t, func() error {
		return yankCmd.RunE(yankCmd, []string{"v1.0.0"})
	})
	if !strings.Contains(out, "marked v1.0.0 as yanked") {
		t.Fatalf("unexpected yank output:\n%s", out)
	}

	dbConn, err := db.InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = dbConn.Close() }()
	r := store.NewRepository(dbConn)
	rel, err := r.GetReleaseByTag("v1.0.0")
	if err != nil {
		t.Fatalf("GetReleaseByTag: %v", err)
	}
	if rel.Status != store.StatusYanked {
		t.Fatalf("status = %s, want %s", rel.Status, store.StatusYanked)
	}
	events, err := r.ListEvents(rel.ID)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if events[0].Operation != store.OpYank {
		t.Fatalf("newest event = %s, want %s", events[0].Operation, store.OpYank)
	}

	if err := yankCmd.RunE(yankCmd, []string{"v9.9.9"}); err == nil {
		t.Fatalf("expected error for untracked tag")
	}
}

func TestDeleteCommandWithYesFlag(t *testing.T) {
	seedRegistry(t)

	_ = deleteCmd.Flags().Set("yes", "true")
	defer func() { _ = deleteCmd.Flags().Set("yes", "false") }()
	out := captureStdout(t, func() error {
		return deleteCmd.RunE(deleteCmd, []string{"v1.0.0"})
	})
	if !strings.Contains(out, "deleted registry record") {
		t.Fatalf("unexpected delete output:\n%s", out)
	}

	dbConn, err := db.InitDB()
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = dbConn.Close() }()
	rel, err := store.NewRepository(dbConn).GetReleaseByTag("v1.0.0")
	if err != nil {
		t.Fatalf("GetReleaseByTag: %v", err)
	}
	if rel != nil {
		t.Fatalf("release still tracked after delete")
	}
}
