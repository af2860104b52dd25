// Package config provides relr data paths and project configuration loading
// using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ProjectFile is the per-project configuration file relr looks for in the
// working directory.
const ProjectFile = ".relr.yaml"

// Settings is the root configuration structure.
type Settings struct {
	GitHub  GitHubSettings  `koanf:"github"`
	Git     GitSettings     `koanf:"git"     validate:"required"`
	Project ProjectSettings `koanf:"project"`
	Log     LogSettings     `koanf:"log"     validate:"required"`
}

// GitHubSettings identifies the repository relr publishes releases to.
type GitHubSettings struct {
	Owner  string `koanf:"owner"`
	Repo   string `koanf:"repo"`
	Token  string `koanf:"token"`
	APIURL string `koanf:"api_url" validate:"omitempty,url"`
}

// GitSettings controls how relr talks to the local repository.
type GitSettings struct {
	Remote        string `koanf:"remote"         validate:"required"`
	DefaultBranch string `koanf:"default_branch" validate:"required"`
}

// ProjectSettings describes the project relr operates on.
type ProjectSettings struct {
	// Package is the python package directory used by the overlay rewrite.
	Package string `koanf:"package"`
}

// LogSettings controls diagnostic output.
type LogSettings struct {
	Level  string `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"required,oneof=text json"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"github.owner":       "",
		"github.repo":        "",
		"github.token":       "",
		"github.api_url":     "https://api.github.com",
		"git.remote":         "origin",
		"git.default_branch": "main",
		"project.package":    "",
		"log.level":          "info",
		"log.format":         "text",
	}
}

// envKeys maps the env-var spelling of every known key back to its koanf
// path. Leaf names contain underscores (default_branch, api_url), so a blanket
// underscore-to-dot rewrite would produce paths no struct field matches.
var envKeys = func() map[string]string {
	m := make(map[string]string, len(defaults()))
	for key := range defaults() {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}
	return m
}()

func envKeyMapper(s string) string {
	name := strings.ToLower(strings.TrimPrefix(s, "RELR_"))
	if key, ok := envKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "_", ".")
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (RELR_ prefix)
//  2. Project config file (.relr.yaml in dir)
//  3. Default values
func Load(dir string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	path := ProjectFile
	if dir != "" {
		path = filepath.Join(dir, ProjectFile)
	}
	if err := loadFileIfExists(k, path); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := k.Load(env.Provider("RELR_", ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Settings
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks a Settings value against its struct tags.
func Validate(cfg *Settings) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// RequireGitHub returns an error unless owner, repo and token are all set.
func (s *Settings) RequireGitHub() error {
	if s.GitHub.Owner == "" || s.GitHub.Repo == "" {
		return fmt.Errorf("github.owner and github.repo must be configured (set them in %s or via RELR_GITHUB_OWNER / RELR_GITHUB_REPO)", ProjectFile)
	}
	if s.GitHub.Token == "" {
		return fmt.Errorf("github.token must be configured (set RELR_GITHUB_TOKEN)")
	}
	return nil
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}
