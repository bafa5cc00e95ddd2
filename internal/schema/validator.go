package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sourceplane/campaignctl/internal/model"
	"github.com/sourceplane/campaignctl/internal/normalize"
	"github.com/sourceplane/campaignctl/internal/settings"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultMaxSquadronSize is used when Options.MaxSquadronSize is unset
const DefaultMaxSquadronSize = 32

//go:embed campaign.schema.yaml
var campaignSchemaYAML []byte

const campaignSchemaURL = "campaign.schema.json"

var typeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(campaignSchemaURL, campaignSchemaYAML)
})

// Catalog resolves game-data identifiers. It is supplied by the caller; the
// validator never carries game data of its own.
type Catalog interface {
	HasTheater(id string) bool
	HasFaction(id string) bool
	HasAircraft(id string) bool
}

// ScenarioResolver checks that a scenario file reference can be opened
type ScenarioResolver interface {
	Resolve(ref string) error
}

// VersionRange bounds the campaign format versions an engine accepts.
// Either end may be empty to leave it open.
type VersionRange struct {
	Min string
	Max string
}

// Options configures a Validator
type Options struct {
	Settings        *settings.Registry
	Versions        VersionRange
	MaxSquadronSize int
	Scenarios       ScenarioResolver
}

// Validator turns parsed campaign documents into CampaignDefinitions
type Validator struct {
	catalog Catalog
	opts    Options
	types   *jsonschema.Schema
	min     string
	max     string
}

// NewValidator creates a validator bound to the given catalog
func NewValidator(catalog Catalog, opts Options) (*Validator, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if opts.Settings == nil {
		opts.Settings = settings.DefaultRegistry()
	}
	if opts.MaxSquadronSize <= 0 {
		opts.MaxSquadronSize = DefaultMaxSquadronSize
	}

	types, err := typeSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign schema: %w", err)
	}

	v := &Validator{catalog: catalog, opts: opts, types: types}
	if opts.Versions.Min != "" {
		if v.min = canonicalVersion(opts.Versions.Min); v.min == "" {
			return nil, fmt.Errorf("invalid minimum version %q", opts.Versions.Min)
		}
	}
	if opts.Versions.Max != "" {
		if v.max = canonicalVersion(opts.Versions.Max); v.max == "" {
			return nil, fmt.Errorf("invalid maximum version %q", opts.Versions.Max)
		}
	}
	if v.min != "" && v.max != "" && semver.Compare(v.min, v.max) > 0 {
		return nil, fmt.Errorf("minimum version %s is above maximum %s", opts.Versions.Min, opts.Versions.Max)
	}
	return v, nil
}

// WithScenarios returns a copy of v that resolves scenario references with r
func (v *Validator) WithScenarios(r ScenarioResolver) *Validator {
	out := *v
	out.opts.Scenarios = r
	return &out
}

// Settings returns the registry used to check settings options
func (v *Validator) Settings() *settings.Registry {
	return v.opts.Settings
}

// Validate checks a parsed document and builds its definition. The phases run
// in order and the first failing phase ends validation; all violations of
// that phase are returned together in a *ValidationError.
func (v *Validator) Validate(raw interface{}) (*model.CampaignDefinition, error) {
	tree, conflicts, err := normalize.Document(raw)
	if err != nil {
		return nil, fail(TypeMismatch, "/", "%v", err)
	}

	root, ok := tree.(map[string]interface{})
	if !ok {
		return nil, fail(TypeMismatch, "/", "document must be a mapping")
	}
	doc := document(root)

	phases := []func(document, *collector){
		v.checkRequired,
		v.checkTypes,
		v.checkReferences,
		v.checkRanges,
		func(d document, c *collector) { v.checkStructure(d, conflicts, c) },
	}
	for _, phase := range phases {
		c := &collector{}
		phase(doc, c)
		if c.failed() {
			return nil, &ValidationError{Errors: c.errs}
		}
	}

	c := &collector{}
	squadrons := v.buildSquadrons(doc, c)
	if c.failed() {
		return nil, &ValidationError{Errors: c.errs}
	}

	return v.build(doc, squadrons), nil
}

func fail(k Kind, path, format string, args ...interface{}) error {
	c := &collector{}
	c.add(k, path, format, args...)
	return &ValidationError{Errors: c.errs}
}

// canonicalVersion maps "10.9" or "v10.9" to a semver string, or "" if invalid
func canonicalVersion(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	if !semver.IsValid(s) {
		return ""
	}
	return s
}

// compileSchema compiles a YAML-encoded JSON schema
func compileSchema(url string, data []byte) (*jsonschema.Schema, error) {
	// Parse YAML to interface{} (supports both YAML and JSON)
	var schemaData interface{}
	if err := yaml.Unmarshal(data, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}

	// Convert to JSON for schema compiler
	jsonData, err := json.Marshal(schemaData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, strings.NewReader(string(jsonData))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return schema, nil
}
