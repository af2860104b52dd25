// Package userprofile stores the fallback author identity stamped on
// registry records when git config carries none.
package userprofile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/relr-dev/relr/internal/config"
)

const profileFile = "whoami.json"

// Profile is the persisted identity.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func path() (string, error) {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, profileFile), nil
}

// Set writes the profile, replacing any previous one.
func Set(p Profile) error {
	fp, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fp, append(b, '\n'), 0o644)
}

// Get loads the profile. ok is false when none has been saved.
func Get() (p Profile, ok bool, err error) {
	fp, err := path()
	if err != nil {
		return Profile{}, false, err
	}
	b, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Profile{}, false, nil
		}
		return Profile{}, false, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

// Clear deletes the saved profile if present.
func Clear() error {
	fp, err := path()
	if err != nil {
		return err
	}
	if err := os.Remove(fp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
