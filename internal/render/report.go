package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sourceplane/campaignctl/internal/runner"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Report is the serialized form of a validation run
type Report struct {
	Valid     bool            `json:"valid" yaml:"valid"`
	Campaigns []runner.Result `json:"campaigns" yaml:"campaigns"`
}

// Renderer formats validation results
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

func newReport(results []runner.Result) Report {
	return Report{Valid: !runner.Failed(results), Campaigns: results}
}

// RenderJSON renders results as JSON
func (r *Renderer) RenderJSON(results []runner.Result) ([]byte, error) {
	return json.MarshalIndent(newReport(results), "", "  ")
}

// RenderYAML renders results as YAML
func (r *Renderer) RenderYAML(results []runner.Result) ([]byte, error) {
	return yaml.Marshal(newReport(results))
}

// RenderText renders results for a terminal
func (r *Renderer) RenderText(results []runner.Result) string {
	var sb strings.Builder
	invalid := 0
	for _, res := range results {
		switch {
		case res.Valid:
			fmt.Fprintf(&sb, "✓ %s (%s)\n", res.Path, res.Campaign)
		case res.Fatal != "":
			invalid++
			fmt.Fprintf(&sb, "✗ %s\n    %s\n", res.Path, res.Fatal)
		default:
			invalid++
			fmt.Fprintf(&sb, "✗ %s (%d errors)\n", res.Path, len(res.Errors))
			for _, fe := range res.Errors {
				fmt.Fprintf(&sb, "    %-36s %-20s %s\n", fe.Path, fe.Kind, fe.Reason)
			}
		}
	}
	fmt.Fprintf(&sb, "\n%d campaigns checked, %d invalid\n", len(results), invalid)
	return sb.String()
}

// Render renders results in the named format (text, json or yaml)
func (r *Renderer) Render(results []runner.Result, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return []byte(r.RenderText(results)), nil
	case "json":
		return r.RenderJSON(results)
	case "yaml", "yml":
		return r.RenderYAML(results)
	}
	return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// WriteReport writes results to path (JSON or YAML based on extension)
func (r *Renderer) WriteReport(fs afero.Fs, results []runner.Result, path string) error {
	var data []byte
	var err error

	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Determine format from extension
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = r.RenderYAML(results)
	default:
		data, err = r.RenderJSON(results)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}

	return nil
}
