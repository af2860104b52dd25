// Package semtag parses, validates and derives the version tags relr
// operates on. Release tags follow the vX.Y.Z convention; prerelease tags
// derived for pull requests carry a pr<NUM>.<shortsha> prerelease suffix.
package semtag

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
)

// Tag is a parsed version tag.
type Tag struct {
	// Raw is the canonical tag string including the leading 'v'.
	Raw     string
	Version *semver.Version
}

// Parse parses a release tag of the form vX.Y.Z (prerelease and build
// metadata suffixes are accepted). The leading 'v' is required; tags are what
// the release workflow triggers on and the convention is part of the
// contract.
func Parse(s string) (Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tag{}, fmt.Errorf("invalid tag: tag cannot be empty")
	}
	if !utf8.ValidString(s) {
		return Tag{}, fmt.Errorf("invalid tag: contains invalid encoding")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return Tag{}, fmt.Errorf("invalid tag: contains control character U+%04X (%q)", r, r)
		}
	}
	if !strings.HasPrefix(s, "v") {
		return Tag{}, fmt.Errorf("invalid tag %q: release tags must start with 'v' (vX.Y.Z)", s)
	}
	v, err := semver.StrictNewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return Tag{}, fmt.Errorf("invalid tag %q: %w", s, err)
	}
	return Tag{Raw: s, Version: v}, nil
}

// String returns the canonical tag string.
func (t Tag) String() string { return t.Raw }

// IsPrerelease reports whether the tag carries a prerelease suffix.
func (t Tag) IsPrerelease() bool {
	return t.Version != nil && t.Version.Prerelease() != ""
}

// Bump returns the next release tag for the given part (major, minor or
// patch). Lower parts reset to zero; any prerelease suffix is dropped.
func Bump(t Tag, part string) (Tag, error) {
	if t.Version == nil {
		return Tag{}, fmt.Errorf("bump: tag not parsed")
	}
	var next semver.Version
	switch strings.ToLower(strings.TrimSpace(part)) {
	case "major":
		next = t.Version.IncMajor()
	case "minor":
		next = t.Version.IncMinor()
	case "patch":
		next = t.Version.IncPatch()
	default:
		return Tag{}, fmt.Errorf("bump: unknown part %q (want major, minor or patch)", part)
	}
	return Tag{Raw: "v" + next.String(), Version: &next}, nil
}

// ForPullRequest derives the prerelease tag published for a pull request
// preview build: the next patch of base with a pr<NUM>.<shortsha> prerelease
// suffix, e.g. v1.2.4-pr42.abc1234.
func ForPullRequest(base Tag, prNumber int, shortSHA string) (Tag, error) {
	if base.Version == nil {
		return Tag{}, fmt.Errorf("prerelease tag: base tag not parsed")
	}
	if prNumber <= 0 {
		return Tag{}, fmt.Errorf("prerelease tag: invalid PR number %d", prNumber)
	}
	shortSHA = strings.TrimSpace(shortSHA)
	if shortSHA == "" {
		return Tag{}, fmt.Errorf("prerelease tag: short SHA required")
	}
	next := base.Version.IncPatch()
	pre, err := next.SetPrerelease(fmt.Sprintf("pr%d.%s", prNumber, shortSHA))
	if err != nil {
		return Tag{}, fmt.Errorf("prerelease tag: %w", err)
	}
	return Tag{Raw: "v" + pre.String(), Version: &pre}, nil
}

// DevVersion renders the development version string a tag-driven build would
// produce for a commit that is commitsAhead commits past base: the next patch
// with a .dev<N> suffix and a +g<shortsha> local part. When commitsAhead is
// zero the base version itself is returned. noLocal drops the local part,
// matching the no-local-version scheme used for uploadable artifacts.
func DevVersion(base Tag, commitsAhead int, shortSHA string, noLocal bool) (string, error) {
	if base.Version == nil {
		return "", fmt.Errorf("dev version: base tag not parsed")
	}
	if commitsAhead < 0 {
		return "", fmt.Errorf("dev version: negative commit distance %d", commitsAhead)
	}
	if commitsAhead == 0 {
		return base.Version.String(), nil
	}
	next := base.Version.IncPatch()
	s := fmt.Sprintf("%s.dev%d", next.String(), commitsAhead)
	if !noLocal && shortSHA != "" {
		s += "+g" + shortSHA
	}
	return s, nil
}

// Less reports whether a sorts before b under semver precedence. Prerelease
// tags sort below the release they precede.
func Less(a, b Tag) bool {
	if a.Version == nil || b.Version == nil {
		return a.Raw < b.Raw
	}
	return a.Version.LessThan(b.Version)
}
