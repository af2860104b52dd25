// Package overlay converts a wheel-shipping extension project from
// template-pinned versioning to tag-driven versioning: the build backend
// reads the version from git tags, so cutting a release is tagging a commit.
// It rewrites pyproject.toml, adds a version fallback to the package
// __init__.py and removes workflow files the tag-driven flow replaces.
package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Options controls overlay behavior.
type Options struct {
	// Root is the project root containing pyproject.toml.
	Root string
	// Package is the python package directory (holds __init__.py).
	Package string
	DryRun  bool
}

// Files removed because the tag-driven flow replaces them.
var cleanupTargets = []string{
	".nvmrc",
	"setup.py",
	filepath.Join(".github", "workflows", "check-release.yml"),
	filepath.Join(".github", "workflows", "prep-release.yml"),
	filepath.Join(".github", "workflows", "publish-release.yml"),
	filepath.Join(".github", "workflows", "enforce-label.yml"),
}

var (
	reNodejsRequire   = regexp.MustCompile(`"hatch-nodejs-version>=[\d.]+"`)
	reVersionSource   = regexp.MustCompile(`\[tool\.hatch\.version\]\nsource = "nodejs"`)
	reVersionVCS      = regexp.MustCompile(`\[tool\.hatch\.version\]\nsource = "vcs"`)
	reRequiresPython  = regexp.MustCompile(`requires-python = ">=3\.\d+"`)
	reOldClassifiers  = regexp.MustCompile(`(?m)^[ \t]*"Programming Language :: Python :: 3\.[89]",?\n`)
	reManyBlankLines  = regexp.MustCompile(`\n{3,}`)
	jupyterBuilderHdr = "[tool.hatch.build.hooks.jupyter-builder]"
)

// Plan returns the human-readable actions Apply would perform.
func Plan(opts Options) ([]string, error) {
	actions := []string{}

	pyproject := filepath.Join(opts.Root, "pyproject.toml")
	if b, err := os.ReadFile(pyproject); err == nil {
		if _, changed := RewritePyproject(string(b), opts.Package); changed {
			actions = append(actions, fmt.Sprintf("Rewrite %s for tag-driven versioning (hatch-vcs)", pyproject))
		} else {
			actions = append(actions, fmt.Sprintf("No changes needed in %s", pyproject))
		}
	} else if os.IsNotExist(err) {
		actions = append(actions, fmt.Sprintf("WARNING: %s not found; skipping", pyproject))
	} else {
		return nil, fmt.Errorf("read pyproject: %w", err)
	}

	if opts.Package != "" {
		initPath := filepath.Join(opts.Root, opts.Package, "__init__.py")
		if b, err := os.ReadFile(initPath); err == nil {
			if _, changed := RewriteInit(string(b), opts.Package); changed {
				actions = append(actions, fmt.Sprintf("Add _version fallback import to %s", initPath))
			} else {
				actions = append(actions, fmt.Sprintf("No changes needed in %s", initPath))
			}
		} else if os.IsNotExist(err) {
			actions = append(actions, fmt.Sprintf("%s not found; skipping", initPath))
		} else {
			return nil, fmt.Errorf("read __init__.py: %w", err)
		}
	}

	for _, f := range cleanupTargets {
		p := filepath.Join(opts.Root, f)
		if _, err := os.Stat(p); err == nil {
			actions = append(actions, fmt.Sprintf("Delete %s", p))
		}
	}
	return actions, nil
}

// Apply performs the overlay conversion and returns the actions taken. With
// DryRun set it behaves like Plan.
func Apply(opts Options) ([]string, error) {
	if opts.DryRun {
		return Plan(opts)
	}
	actions := []string{}

	pyproject := filepath.Join(opts.Root, "pyproject.toml")
	if b, err := os.ReadFile(pyproject); err == nil {
		out, changed := RewritePyproject(string(b), opts.Package)
		if changed {
			if err := writeFileAtomic(pyproject, []byte(out), 0o644); err != nil {
				return nil, fmt.Errorf("write pyproject: %w", err)
			}
			actions = append(actions, fmt.Sprintf("Rewrote %s", pyproject))
		}
	} else if os.IsNotExist(err) {
		actions = append(actions, fmt.Sprintf("WARNING: %s not found; skipped", pyproject))
	} else {
		return nil, fmt.Errorf("read pyproject: %w", err)
	}

	if opts.Package != "" {
		initPath := filepath.Join(opts.Root, opts.Package, "__init__.py")
		if b, err := os.ReadFile(initPath); err == nil {
			out, changed := RewriteInit(string(b), opts.Package)
			if changed {
				if err := writeFileAtomic(initPath, []byte(out), 0o644); err != nil {
					return nil, fmt.Errorf("write __init__.py: %w", err)
				}
				actions = append(actions, fmt.Sprintf("Updated %s", initPath))
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read __init__.py: %w", err)
		}
	}

	for _, f := range cleanupTargets {
		p := filepath.Join(opts.Root, f)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("delete %s: %w", p, err)
		}
		actions = append(actions, fmt.Sprintf("Deleted %s", p))
	}
	return actions, nil
}

// RewritePyproject transforms pyproject.toml content for tag-driven
// versioning. The edits are textual and format-preserving; a TOML round-trip
// would reorder and reformat the file. Returns the new content and whether
// anything changed.
func RewritePyproject(content, pkg string) (string, bool) {
	orig := content

	content = reNodejsRequire.ReplaceAllString(content, `"hatch-vcs>=0.4.0"`)
	content = reVersionSource.ReplaceAllString(content, "[tool.hatch.version]\nsource = \"vcs\"")

	if !strings.Contains(content, "local_scheme") {
		content = reVersionVCS.ReplaceAllString(content,
			"[tool.hatch.version]\nsource = \"vcs\"\n\n[tool.hatch.version.raw-options]\nlocal_scheme = \"no-local-version\"")
	}

	if pkg != "" && !strings.Contains(content, "[tool.hatch.build.hooks.version]") {
		hook := fmt.Sprintf("[tool.hatch.build.hooks.version]\npath = \"%s/_version.py\"", pkg)
		content = strings.Replace(content, jupyterBuilderHdr, hook+"\n\n"+jupyterBuilderHdr, 1)
	}

	content = removeSection(content, "[tool.jupyter-releaser.options]")
	content = removeSection(content, "[tool.jupyter-releaser.hooks]")

	content = reRequiresPython.ReplaceAllString(content, `requires-python = ">=3.10"`)
	content = reOldClassifiers.ReplaceAllString(content, "")
	content = reManyBlankLines.ReplaceAllString(content, "\n\n")

	return content, content != orig
}

// removeSection drops a TOML table header line and its body, up to the next
// table header or EOF. Line-based so array values containing '[' inside the
// body do not end the section early.
func removeSection(content, header string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	skipping := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if skipping {
			if strings.HasPrefix(trimmed, "[") && trimmed != header {
				skipping = false
			} else {
				continue
			}
		}
		if trimmed == header {
			skipping = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// RewriteInit inserts a _version import-with-fallback block into __init__.py
// content. The block goes after the module docstring when one exists. Content
// already referencing _version is left untouched.
func RewriteInit(content, pkg string) (string, bool) {
	if strings.Contains(content, "_version") {
		return content, false
	}
	block := fmt.Sprintf(`try:
    from ._version import __version__
except ImportError:
    import warnings
    warnings.warn("Importing '%s' outside a proper installation.")
    __version__ = "dev"
`, pkg)

	if strings.Contains(content, `"""`) {
		parts := strings.SplitN(content, `"""`, 3)
		if len(parts) >= 3 {
			return parts[0] + `"""` + parts[1] + `"""` + "\n\n" + block + parts[2], true
		}
	}
	return block + "\n" + content, true
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".relr_tmp_")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
