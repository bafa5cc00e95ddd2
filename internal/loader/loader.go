package loader

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourceplane/campaignctl/internal/campaign"
	"github.com/sourceplane/campaignctl/internal/schema"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader reads campaign files and validates them
type Loader struct {
	fs        afero.Fs
	validator *schema.Validator
}

// New creates a loader reading from fs
func New(fs afero.Fs, validator *schema.Validator) *Loader {
	return &Loader{fs: fs, validator: validator}
}

// Parse decodes campaign YAML into a generic tree. It fails only when the
// bytes are not a YAML document at all.
func Parse(data []byte) (interface{}, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse campaign YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("campaign document is empty")
	}
	return raw, nil
}

// Load reads, parses and validates the campaign at path. Scenario references
// are resolved relative to the campaign file's directory.
func (l *Loader) Load(path string) (*campaign.Model, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file: %w", err)
	}

	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}

	resolver := &FileResolver{Fs: l.fs, Dir: filepath.Dir(path)}
	def, err := l.validator.WithScenarios(resolver).Validate(raw)
	if err != nil {
		return nil, err
	}

	return campaign.New(def, l.validator.Settings()), nil
}

// FileResolver resolves scenario references against a directory
type FileResolver struct {
	Fs  afero.Fs
	Dir string
}

// Resolve checks that ref names an existing regular file
func (r *FileResolver) Resolve(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("empty path")
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, path)
	}
	info, err := r.Fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// Discover finds campaign files (*.yaml, *.yml).
// Supports glob patterns for recursive search:
//   - Exact path: non-recursive, campaign files directly inside the directory
//   - Path with *: glob, matched directories are searched recursively
//   - Path with **: same as *, kept for parity with other tools' conventions
//
// Example paths:
//   - "resources/campaigns" - only files in that directory
//   - "resources/campaigns/*" - every campaign below its subdirectories
func Discover(fsys afero.Fs, dir string) ([]string, error) {
	isRecursive := strings.Contains(dir, "*")

	var searchPaths []string
	if isRecursive {
		matches, err := afero.Glob(fsys, strings.ReplaceAll(dir, "**", "*"))
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate glob pattern %s: %w", dir, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("glob pattern %s matched nothing", dir)
		}
		searchPaths = matches
	} else {
		info, err := fsys.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to access campaign directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("campaign path is not a directory: %s", dir)
		}
		searchPaths = []string{dir}
	}

	seen := make(map[string]bool)
	for _, basePath := range searchPaths {
		if isRecursive {
			err := afero.Walk(fsys, basePath, func(path string, info fs.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isCampaignFile(path) {
					seen[path] = true
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk directory %s: %w", basePath, err)
			}
			continue
		}

		entries, err := afero.ReadDir(fsys, basePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", basePath, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isCampaignFile(entry.Name()) {
				seen[filepath.Join(basePath, entry.Name())] = true
			}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no campaign files found in %s", dir)
	}

	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func isCampaignFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
