package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sourceplane/campaignctl/internal/model"
	"github.com/sourceplane/campaignctl/internal/normalize"
	"github.com/sourceplane/campaignctl/internal/settings"
	"golang.org/x/mod/semver"
)

// Top-level document fields
const (
	fieldName             = "name"
	fieldTheater          = "theater"
	fieldAuthors          = "authors"
	fieldPlayerFaction    = "recommended_player_faction"
	fieldEnemyFaction     = "recommended_enemy_faction"
	fieldDescription      = "description"
	fieldScenario         = "miz"
	fieldPerformance      = "performance"
	fieldStartDate        = "recommended_start_date"
	fieldEnemyMoney       = "recommended_enemy_money"
	fieldIncomeMultiplier = "recommended_enemy_income_multiplier"
	fieldVersion          = "version"
	fieldSettings         = "settings"
	fieldSquadrons        = "squadrons"
)

// RequiredFields lists the top-level fields every campaign must declare
var RequiredFields = []string{
	fieldName,
	fieldTheater,
	fieldPlayerFaction,
	fieldEnemyFaction,
	fieldScenario,
	fieldPerformance,
	fieldVersion,
	fieldSquadrons,
}

// Defaults applied when optional numeric fields are absent
const (
	DefaultEnemyMoney            = 2000
	DefaultEnemyIncomeMultiplier = 1.0
)

// document is the normalized root mapping
type document map[string]interface{}

// present reports whether key is set to a non-null value
func (d document) present(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

func (d document) str(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d document) number(key string) (json.Number, bool) {
	n, ok := d[key].(json.Number)
	return n, ok
}

func (d document) mapping(key string) map[string]interface{} {
	m, _ := d[key].(map[string]interface{})
	return m
}

// (a) presence of required top-level fields
func (v *Validator) checkRequired(doc document, c *collector) {
	for _, field := range RequiredFields {
		if !doc.present(field) {
			c.add(MissingField, normalize.Pointer(field), "required field %q is missing", field)
		}
	}
}

// (b) value types, via the embedded JSON schema, plus settings option kinds
func (v *Validator) checkTypes(doc document, c *collector) {
	if err := v.types.Validate(map[string]interface{}(doc)); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			c.add(TypeMismatch, "/", "%v", err)
			return
		}
		for _, leaf := range leafCauses(verr) {
			c.add(TypeMismatch, pointerOrRoot(leaf.InstanceLocation), "%s", leaf.Message)
		}
	}

	for _, key := range sortedKeys(doc.mapping(fieldSettings)) {
		opt, ok := v.opts.Settings.Lookup(key)
		if !ok {
			continue
		}
		if _, err := settings.Coerce(opt.Kind, doc.mapping(fieldSettings)[key]); err != nil {
			c.add(TypeMismatch, normalize.Pointer(fieldSettings, key), "%v", err)
		}
	}
}

// leafCauses flattens a jsonschema error tree to its most specific failures
func leafCauses(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, leafCauses(cause)...)
	}
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].InstanceLocation < leaves[j].InstanceLocation
	})
	return leaves
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// (c) references into the catalogs, the scenario resolver and the settings registry
func (v *Validator) checkReferences(doc document, c *collector) {
	if theater := doc.str(fieldTheater); !v.catalog.HasTheater(theater) {
		c.add(UnknownReference, normalize.Pointer(fieldTheater), "unknown theater %q", theater)
	}
	for _, field := range []string{fieldPlayerFaction, fieldEnemyFaction} {
		if faction := doc.str(field); !v.catalog.HasFaction(faction) {
			c.add(UnknownReference, normalize.Pointer(field), "unknown faction %q", faction)
		}
	}
	if v.opts.Scenarios != nil {
		if err := v.opts.Scenarios.Resolve(doc.str(fieldScenario)); err != nil {
			c.add(UnknownReference, normalize.Pointer(fieldScenario), "scenario file cannot be resolved: %v", err)
		}
	}
	for _, key := range sortedKeys(doc.mapping(fieldSettings)) {
		if _, ok := v.opts.Settings.Lookup(key); !ok {
			c.add(UnknownReference, normalize.Pointer(fieldSettings, key), "unrecognized settings option %q", key)
		}
	}
}

// (d) numeric ranges, enums, dates and the format version
func (v *Validator) checkRanges(doc document, c *collector) {
	if strings.TrimSpace(doc.str(fieldName)) == "" {
		c.add(OutOfRange, normalize.Pointer(fieldName), "name must not be empty")
	}

	if n, ok := doc.number(fieldPerformance); ok {
		tier, err := n.Int64()
		if err != nil || !model.PerformanceTier(tier).Valid() {
			c.add(OutOfRange, normalize.Pointer(fieldPerformance), "performance must be one of %d, %d or %d, got %s",
				model.PerformanceLight, model.PerformanceMedium, model.PerformanceHeavy, n)
		}
	}

	for _, field := range []string{fieldEnemyMoney, fieldIncomeMultiplier} {
		if n, ok := doc.number(field); ok {
			if f, err := n.Float64(); err != nil || f < 0 {
				c.add(OutOfRange, normalize.Pointer(field), "must be a non-negative number, got %s", n)
			}
		}
	}

	if doc.present(fieldStartDate) {
		if _, err := time.Parse(model.DateLayout, doc.str(fieldStartDate)); err != nil {
			c.add(OutOfRange, normalize.Pointer(fieldStartDate), "not a valid calendar date (want YYYY-MM-DD): %q", doc.str(fieldStartDate))
		}
	}

	raw := doc.str(fieldVersion)
	version := canonicalVersion(raw)
	switch {
	case version == "":
		c.add(VersionIncompatible, normalize.Pointer(fieldVersion), "cannot parse version %q", raw)
	case v.min != "" && semver.Compare(version, v.min) < 0:
		c.add(VersionIncompatible, normalize.Pointer(fieldVersion), "version %s is older than the oldest supported version %s", raw, v.opts.Versions.Min)
	case v.max != "" && semver.Compare(version, v.max) > 0:
		c.add(VersionIncompatible, normalize.Pointer(fieldVersion), "version %s is newer than the newest supported version %s", raw, v.opts.Versions.Max)
	}
}

// (e) key collisions and the shape of the base -> squadron list mapping
func (v *Validator) checkStructure(doc document, conflicts []*normalize.KeyConflictError, c *collector) {
	for _, conflict := range conflicts {
		c.add(Structural, conflict.Path, "duplicate key %q", conflict.Key)
	}

	seen := make(map[int]string)
	squadrons := doc.mapping(fieldSquadrons)
	for _, key := range sortedKeys(squadrons) {
		path := normalize.Pointer(fieldSquadrons, key)
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id <= 0 {
			c.add(Structural, path, "base id %q is not a positive integer", key)
			continue
		}
		if prev, dup := seen[id]; dup {
			c.add(Structural, path, "base id %q duplicates %q", key, prev)
			continue
		}
		seen[id] = key

		if list, _ := squadrons[key].([]interface{}); len(list) == 0 {
			c.add(Structural, path, "base %d must list at least one squadron", id)
		}
	}
}

// (f) individual squadrons; returns the parsed squadrons keyed by base id
func (v *Validator) buildSquadrons(doc document, c *collector) map[int][]model.SquadronSpec {
	out := make(map[int][]model.SquadronSpec)
	squadrons := doc.mapping(fieldSquadrons)
	for _, key := range sortedKeys(squadrons) {
		id, _ := strconv.Atoi(strings.TrimSpace(key))
		list := squadrons[key].([]interface{})
		specs := make([]model.SquadronSpec, 0, len(list))
		for i, item := range list {
			entry := document(item.(map[string]interface{}))
			specs = append(specs, v.buildSquadron(entry, []string{fieldSquadrons, key, strconv.Itoa(i)}, c))
		}
		out[id] = specs
	}
	return out
}

func (v *Validator) buildSquadron(entry document, at []string, c *collector) model.SquadronSpec {
	path := func(tokens ...string) string {
		return normalize.Pointer(append(append([]string{}, at...), tokens...)...)
	}
	spec := model.SquadronSpec{Name: entry.str("name")}

	if !entry.present("primary") {
		c.add(MissingField, path("primary"), "squadron has no primary role")
	} else if role, ok := model.ParseRole(entry.str("primary")); ok {
		spec.Primary = role
	} else {
		c.add(OutOfRange, path("primary"), "unknown role %q (valid roles: %s)", entry.str("primary"), roleList())
	}

	if entry.present("secondary") {
		switch s := entry.str("secondary"); {
		case s == model.AnySecondary:
			spec.Secondary = model.SecondaryRole{Kind: model.SecondaryAny}
		default:
			if role, ok := model.ParseRole(s); ok {
				spec.Secondary = model.SecondaryRole{Kind: model.SecondarySpecific, Role: role}
			} else {
				c.add(OutOfRange, path("secondary"), "unknown role %q (valid roles: %s, or %q)", s, roleList(), model.AnySecondary)
			}
		}
	}

	if !entry.present("aircraft") {
		c.add(MissingField, path("aircraft"), "squadron has no aircraft list")
	} else {
		list := entry["aircraft"].([]interface{})
		if len(list) == 0 {
			c.add(Structural, path("aircraft"), "aircraft list must not be empty")
		}
		for i, item := range list {
			aircraft := item.(string)
			if !v.catalog.HasAircraft(aircraft) {
				c.add(UnknownReference, path("aircraft", strconv.Itoa(i)), "unknown aircraft type %q", aircraft)
				continue
			}
			spec.Aircraft = append(spec.Aircraft, aircraft)
		}
	}

	if n, ok := entry.number("size"); !ok {
		c.add(MissingField, path("size"), "squadron has no size")
	} else if size, err := n.Int64(); err != nil || size < 1 || size > int64(v.opts.MaxSquadronSize) {
		c.add(OutOfRange, path("size"), "size must be between 1 and %d, got %s", v.opts.MaxSquadronSize, n)
	} else {
		spec.Size = int(size)
	}

	return spec
}

// build assembles the definition from a document that passed every phase
func (v *Validator) build(doc document, squadrons map[int][]model.SquadronSpec) *model.CampaignDefinition {
	def := &model.CampaignDefinition{
		Name:                  doc.str(fieldName),
		Theater:               doc.str(fieldTheater),
		Authors:               doc.str(fieldAuthors),
		PlayerFaction:         doc.str(fieldPlayerFaction),
		EnemyFaction:          doc.str(fieldEnemyFaction),
		Description:           doc.str(fieldDescription),
		Scenario:              doc.str(fieldScenario),
		Version:               doc.str(fieldVersion),
		EnemyMoney:            DefaultEnemyMoney,
		EnemyIncomeMultiplier: DefaultEnemyIncomeMultiplier,
		Settings:              make(map[string]settings.Value),
		Squadrons:             squadrons,
	}

	if n, ok := doc.number(fieldPerformance); ok {
		tier, _ := n.Int64()
		def.Performance = model.PerformanceTier(tier)
	}
	if n, ok := doc.number(fieldEnemyMoney); ok {
		def.EnemyMoney, _ = n.Float64()
	}
	if n, ok := doc.number(fieldIncomeMultiplier); ok {
		def.EnemyIncomeMultiplier, _ = n.Float64()
	}
	if doc.present(fieldStartDate) {
		def.StartDate, _ = time.Parse(model.DateLayout, doc.str(fieldStartDate))
	}

	raw := doc.mapping(fieldSettings)
	for _, key := range sortedKeys(raw) {
		opt, _ := v.opts.Settings.Lookup(key)
		def.Settings[key], _ = settings.Coerce(opt.Kind, raw[key])
	}

	nameUnnamedSquadrons(def.Squadrons)
	return def
}

// nameUnnamedSquadrons numbers squadrons without a name in ascending base order,
// then declaration order
func nameUnnamedSquadrons(squadrons map[int][]model.SquadronSpec) {
	bases := make([]int, 0, len(squadrons))
	for id := range squadrons {
		bases = append(bases, id)
	}
	sort.Ints(bases)

	next := 1
	for _, id := range bases {
		for i := range squadrons[id] {
			if squadrons[id][i].Name == "" {
				squadrons[id][i].Name = fmt.Sprintf("Squadron %03d", next)
				next++
			}
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func roleList() string {
	roles := model.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
