package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Git.Remote != "origin" {
		t.Fatalf("remote = %s, want origin", cfg.Git.Remote)
	}
	if cfg.Git.DefaultBranch != "main" {
		t.Fatalf("default branch = %s, want main", cfg.Git.DefaultBranch)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("log settings = %+v", cfg.Log)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Fatalf("api url = %s", cfg.GitHub.APIURL)
	}
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"github:",
		"  owner: acme",
		"  repo: my-ext",
		"git:",
		"  remote: upstream",
		"project:",
		"  package: my_ext",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.Owner != "acme" || cfg.GitHub.Repo != "my-ext" {
		t.Fatalf("github settings = %+v", cfg.GitHub)
	}
	if cfg.Git.Remote != "upstream" {
		t.Fatalf("remote = %s, want upstream", cfg.Git.Remote)
	}
	// unset keys keep their defaults
	if cfg.Git.DefaultBranch != "main" {
		t.Fatalf("default branch = %s, want main", cfg.Git.DefaultBranch)
	}
	if cfg.Project.Package != "my_ext" {
		t.Fatalf("package = %s", cfg.Project.Package)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFile), []byte("github:\n  owner: acme\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RELR_GITHUB_OWNER", "other")
	t.Setenv("RELR_GITHUB_TOKEN", "sekrit")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.Owner != "other" {
		t.Fatalf("owner = %s, want env override", cfg.GitHub.Owner)
	}
	if cfg.GitHub.Token != "sekrit" {
		t.Fatalf("token = %s", cfg.GitHub.Token)
	}
}

func TestLoadEnvMultiWordKeys(t *testing.T) {
	t.Setenv("RELR_GIT_DEFAULT_BRANCH", "trunk")
	t.Setenv("RELR_GITHUB_API_URL", "https://ghe.example.test/api/v3")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Git.DefaultBranch != "trunk" {
		t.Fatalf("default branch = %s, env override dropped", cfg.Git.DefaultBranch)
	}
	if cfg.GitHub.APIURL != "https://ghe.example.test/api/v3" {
		t.Fatalf("api url = %s, env override dropped", cfg.GitHub.APIURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("RELR_LOG_LEVEL", "banana")
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatalf("expected validation error for bad log level")
	}
}

func TestRequireGitHub(t *testing.T) {
	cfg := &Settings{}
	if err := cfg.RequireGitHub(); err == nil {
		t.Fatalf("expected error for empty github settings")
	}
	cfg.GitHub = GitHubSettings{Owner: "acme", Repo: "my-ext"}
	if err := cfg.RequireGitHub(); err == nil {
		t.Fatalf("expected error for missing token")
	}
	cfg.GitHub.Token = "tok"
	if err := cfg.RequireGitHub(); err != nil {
		t.Fatalf("RequireGitHub: %v", err)
	}
}
