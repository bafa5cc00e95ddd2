package git

import (
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ChangeDetector detects files that have changed in git
type ChangeDetector struct {
	baseBranch string // branch to compare against (e.g., "main", "develop")
	git        func(args ...string) ([]byte, error)
}

// NewChangeDetector creates a new change detector
func NewChangeDetector(baseBranch string) *ChangeDetector {
	return &ChangeDetector{
		baseBranch: baseBranch,
		git: func(args ...string) ([]byte, error) {
			return exec.Command("git", args...).Output()
		},
	}
}

// GetChangedFiles returns repo-relative files that differ from the base branch,
// including staged and unstaged changes. Sources that fail are skipped.
func (cd *ChangeDetector) GetChangedFiles() ([]string, error) {
	filesMap := make(map[string]bool)
	collect := func(args ...string) bool {
		output, err := cd.git(args...)
		if err != nil || len(output) == 0 {
			return false
		}
		for _, f := range strings.Split(strings.TrimSpace(string(output)), "\n") {
			if f = strings.TrimSpace(f); f != "" {
				filesMap[filepath.ToSlash(f)] = true
			}
		}
		return true
	}

	// Unstaged and staged modifications
	collect("diff", "--name-only")
	collect("diff", "--cached", "--name-only")

	compareRef := cd.baseBranch
	if compareRef == "" {
		compareRef = "main"
	}

	// Base branch, then its remote-tracking copy (common in CI), then the merge base
	if !collect("diff", "--name-only", compareRef) && !collect("diff", "--name-only", "origin/"+compareRef) {
		for _, args := range [][]string{
			{"merge-base", "--fork-point", compareRef},
			{"merge-base", "HEAD", compareRef},
			{"merge-base", "HEAD", "origin/" + compareRef},
		} {
			out, err := cd.git(args...)
			if err == nil && len(out) > 0 {
				collect("diff", "--name-only", strings.TrimSpace(string(out)))
				break
			}
		}
	}

	result := make([]string, 0, len(filesMap))
	for f := range filesMap {
		result = append(result, f)
	}
	sort.Strings(result)
	return result, nil
}

// FilterChanged keeps the paths whose file has changed. Paths may be absolute
// or relative to the working directory; they are matched against the
// repository root reported by git.
func (cd *ChangeDetector) FilterChanged(paths []string) ([]string, error) {
	files, err := cd.GetChangedFiles()
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool, len(files))
	for _, f := range files {
		changed[f] = true
	}

	root := ""
	if out, err := cd.git("rev-parse", "--show-toplevel"); err == nil {
		root = strings.TrimSpace(string(out))
	}

	var result []string
	for _, path := range paths {
		if changed[cd.repoRelative(root, path)] {
			result = append(result, path)
		}
	}
	return result, nil
}

func (cd *ChangeDetector) repoRelative(root, path string) string {
	if root == "" {
		return filepath.ToSlash(filepath.Clean(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}
