package schema

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sourceplane/campaignctl/internal/catalog"
	"github.com/sourceplane/campaignctl/internal/model"
	"github.com/sourceplane/campaignctl/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const validCampaign = `
name: Operation Vectron
theater: Caucasus
authors: Starfire
recommended_player_faction: USA 2005
recommended_enemy_faction: Russia 2010
description: <p>Hold the line at <strong>Kutaisi</strong>.</p>
miz: vectron.miz
performance: 1
recommended_start_date: 2008-08-08
recommended_enemy_money: 0
recommended_enemy_income_multiplier: 0.0
version: "10.9"
settings:
  hercules: true
  squadron_start_full: false
squadrons:
  7:
    - primary: Transport
      aircraft:
        - C-130J-30 Super Hercules
      size: 4
    - primary: CAS
      secondary: any
      aircraft:
        - A-10C Thunderbolt II (Suite 7)
        - Su-25T Frogfoot
      size: 4
  22:
    - name: Wolfpack
      primary: BARCAP
      secondary: Escort
      aircraft: [F-15C Eagle]
      size: 2
`

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]string{"Caucasus", "Persian Gulf"},
		[]string{"USA 2005", "Russia 2010"},
		[]string{"C-130J-30 Super Hercules", "A-10C Thunderbolt II (Suite 7)", "Su-25T Frogfoot", "F-15C Eagle"},
	)
}

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(testCatalog(), Options{
		Versions:        VersionRange{Min: "10.0", Max: "10.9"},
		MaxSquadronSize: 16,
	})
	require.NoError(t, err)
	return v
}

func parse(t *testing.T, src string) interface{} {
	t.Helper()
	var raw interface{}
	require.NoError(t, yaml.Unmarshal([]byte(src), &raw))
	return raw
}

// edit parses the valid campaign and applies fn to its root mapping
func edit(t *testing.T, fn func(root map[string]interface{})) interface{} {
	t.Helper()
	raw := parse(t, validCampaign)
	fn(raw.(map[string]interface{}))
	return raw
}

func validationErrors(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}

func TestValidate_ValidCampaign(t *testing.T) {
	v := newTestValidator(t)

	def, err := v.Validate(parse(t, validCampaign))
	require.NoError(t, err)

	assert.Equal(t, "Operation Vectron", def.Name)
	assert.Equal(t, "Caucasus", def.Theater)
	assert.Equal(t, "vectron.miz", def.Scenario)
	assert.Equal(t, model.PerformanceLight, def.Performance)
	assert.Equal(t, time.Date(2008, 8, 8, 0, 0, 0, 0, time.UTC), def.StartDate)
	assert.Equal(t, 0.0, def.EnemyMoney)
	assert.Equal(t, 0.0, def.EnemyIncomeMultiplier)
	assert.Equal(t, "<p>Hold the line at <strong>Kutaisi</strong>.</p>", def.Description)
	assert.True(t, def.Settings["hercules"].Bool())
	assert.Equal(t, settings.Bool, def.Settings["squadron_start_full"].Kind())

	require.Len(t, def.Squadrons[7], 2)
	assert.Equal(t, model.RoleTransport, def.Squadrons[7][0].Primary)
	assert.Equal(t, 4, def.Squadrons[7][0].Size)
	assert.Equal(t, model.SecondaryNone, def.Squadrons[7][0].Secondary.Kind)
	assert.Equal(t, model.RoleCAS, def.Squadrons[7][1].Primary)
	assert.Equal(t, model.SecondaryAny, def.Squadrons[7][1].Secondary.Kind)
	assert.Equal(t, []string{"A-10C Thunderbolt II (Suite 7)", "Su-25T Frogfoot"}, def.Squadrons[7][1].Aircraft)

	require.Len(t, def.Squadrons[22], 1)
	assert.Equal(t, "Wolfpack", def.Squadrons[22][0].Name)
	assert.True(t, def.Squadrons[22][0].Secondary.Allows(model.RoleEscort))
}

func TestValidate_GeneratesSquadronNames(t *testing.T) {
	def, err := newTestValidator(t).Validate(parse(t, validCampaign))
	require.NoError(t, err)

	assert.Equal(t, "Squadron 001", def.Squadrons[7][0].Name)
	assert.Equal(t, "Squadron 002", def.Squadrons[7][1].Name)
	assert.Equal(t, "Wolfpack", def.Squadrons[22][0].Name)
}

func TestValidate_Idempotent(t *testing.T) {
	v := newTestValidator(t)
	raw := parse(t, validCampaign)

	first, err := v.Validate(raw)
	require.NoError(t, err)
	second, err := v.Validate(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidate_OptionalFieldDefaults(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		delete(root, "authors")
		delete(root, "description")
		delete(root, "recommended_start_date")
		delete(root, "recommended_enemy_money")
		delete(root, "recommended_enemy_income_multiplier")
		delete(root, "settings")
	})

	def, err := newTestValidator(t).Validate(raw)
	require.NoError(t, err)
	assert.True(t, def.StartDate.IsZero())
	assert.Equal(t, float64(DefaultEnemyMoney), def.EnemyMoney)
	assert.Equal(t, DefaultEnemyIncomeMultiplier, def.EnemyIncomeMultiplier)
	assert.Empty(t, def.Settings)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	v := newTestValidator(t)

	for _, field := range RequiredFields {
		t.Run(field, func(t *testing.T) {
			raw := edit(t, func(root map[string]interface{}) { delete(root, field) })

			def, err := v.Validate(raw)
			assert.Nil(t, def)
			verr := validationErrors(t, err)
			assert.True(t, verr.Has(MissingField, "/"+field), "errors: %v", verr)
			assert.True(t, errors.Is(err, ErrMissingField))
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestValidate_CollectsAllMissingFields(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		delete(root, "name")
		delete(root, "theater")
		root["version"] = 10 // type error is a later phase and must not be reported
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	require.Len(t, verr.Errors, 2)
	assert.True(t, verr.Has(MissingField, "/name"))
	assert.True(t, verr.Has(MissingField, "/theater"))
}

func TestValidate_RootNotMapping(t *testing.T) {
	_, err := newTestValidator(t).Validate(parse(t, "- just\n- a list\n"))
	verr := validationErrors(t, err)
	assert.True(t, verr.Has(TypeMismatch, "/"))
}

func TestValidate_TypeMismatches(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		root["name"] = 42
		root["performance"] = "high"
		root["recommended_enemy_money"] = []interface{}{1}
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	assert.True(t, verr.Has(TypeMismatch, "/name"), "errors: %v", verr)
	assert.True(t, verr.Has(TypeMismatch, "/performance"), "errors: %v", verr)
	assert.True(t, verr.Has(TypeMismatch, "/recommended_enemy_money"), "errors: %v", verr)
	assert.True(t, errors.Is(verr, ErrTypeMismatch))
}

func TestValidate_SquadronFieldTypes(t *testing.T) {
	src := strings.Replace(validCampaign, "      size: 2\n", "      size: two\n", 1)

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(parse(t, src))))
	assert.True(t, verr.Has(TypeMismatch, "/squadrons/22/0/size"), "errors: %v", verr)
}

func TestValidate_SettingsTypeMismatch(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		root["settings"] = map[string]interface{}{"hercules": "yes"}
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	assert.True(t, verr.Has(TypeMismatch, "/settings/hercules"), "errors: %v", verr)
}

func TestValidate_UnknownSettingsKey(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		root["settings"] = map[string]interface{}{"hercules": true, "hercles": true}
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	require.Len(t, verr.Errors, 1)
	assert.True(t, verr.Has(UnknownReference, "/settings/hercles"))
	assert.Contains(t, verr.Error(), `"hercles"`)
}

func TestValidate_RegisteredSettingsAccepted(t *testing.T) {
	registry := settings.DefaultRegistry()
	require.NoError(t, registry.Register(settings.Option{
		Name:    "max_frontline_length",
		Kind:    settings.Int,
		Default: settings.IntValue(80),
	}))
	v, err := NewValidator(testCatalog(), Options{Settings: registry})
	require.NoError(t, err)

	raw := edit(t, func(root map[string]interface{}) {
		root["settings"] = map[string]interface{}{"max_frontline_length": 120, "squadron_start_full": true}
	})

	def, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(120), def.Settings["max_frontline_length"].Int())
	assert.True(t, def.Settings["squadron_start_full"].Bool())
}

func TestValidate_UnknownReferences(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		root["theater"] = "Atlantis"
		root["recommended_enemy_faction"] = "Martians"
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	require.Len(t, verr.Errors, 2)
	assert.True(t, verr.Has(UnknownReference, "/theater"))
	assert.True(t, verr.Has(UnknownReference, "/recommended_enemy_faction"))
	assert.True(t, errors.Is(verr, ErrUnknownReference))
}

type scenarioFunc func(string) error

func (f scenarioFunc) Resolve(ref string) error { return f(ref) }

func TestValidate_ScenarioResolver(t *testing.T) {
	v := newTestValidator(t).WithScenarios(scenarioFunc(func(ref string) error {
		return errors.New("file does not exist")
	}))

	verr := validationErrors(t, firstErr(v.Validate(parse(t, validCampaign))))
	assert.True(t, verr.Has(UnknownReference, "/miz"))

	// the original validator keeps resolving nothing
	_, err := newTestValidator(t).Validate(parse(t, validCampaign))
	assert.NoError(t, err)
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
		kind  Kind
	}{
		{"performance below tiers", "performance", 0, OutOfRange},
		{"performance above tiers", "performance", 4, OutOfRange},
		{"negative money", "recommended_enemy_money", -1, OutOfRange},
		{"negative multiplier", "recommended_enemy_income_multiplier", -0.5, OutOfRange},
		{"bad date", "recommended_start_date", "2008-02-30", OutOfRange},
		{"empty name", "name", "  ", OutOfRange},
		{"unparseable version", "version", "ten", VersionIncompatible},
		{"version too new", "version", "11.0", VersionIncompatible},
		{"version too old", "version", "9.4", VersionIncompatible},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := edit(t, func(root map[string]interface{}) { root[tt.field] = tt.value })

			verr := validationErrors(t, firstErr(v.Validate(raw)))
			assert.True(t, verr.Has(tt.kind, "/"+tt.field), "errors: %v", verr)
		})
	}
}

func TestValidate_BoundaryValuesAccepted(t *testing.T) {
	v := newTestValidator(t)
	for _, version := range []string{"10.0", "10.9", "v10.4", "10.9.0"} {
		raw := edit(t, func(root map[string]interface{}) {
			root["performance"] = 1
			root["recommended_enemy_income_multiplier"] = 0.0
			root["version"] = version
		})
		_, err := v.Validate(raw)
		assert.NoError(t, err, version)
	}
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{
			name: "non-numeric base id",
			src:  "squadrons:\n  Blue-CV:\n    - {primary: CAS, aircraft: [Su-25T Frogfoot], size: 2}\n",
			path: "/squadrons/Blue-CV",
		},
		{
			name: "zero base id",
			src:  "squadrons:\n  0:\n    - {primary: CAS, aircraft: [Su-25T Frogfoot], size: 2}\n",
			path: "/squadrons/0",
		},
		{
			name: "empty base",
			src:  "squadrons:\n  3: []\n",
			path: "/squadrons/3",
		},
		{
			name: "duplicate base id",
			src:  "squadrons:\n  7:\n    - {primary: CAS, aircraft: [Su-25T Frogfoot], size: 2}\n  \"+7\":\n    - {primary: CAS, aircraft: [Su-25T Frogfoot], size: 2}\n",
			path: "/squadrons/7",
		},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := edit(t, func(root map[string]interface{}) {
				root["squadrons"] = parse(t, tt.src).(map[string]interface{})["squadrons"]
			})

			verr := validationErrors(t, firstErr(v.Validate(raw)))
			assert.True(t, verr.Has(Structural, tt.path), "errors: %v", verr)
			assert.True(t, errors.Is(verr, ErrStructural))
		})
	}
}

func TestValidate_EmptyAircraftList(t *testing.T) {
	src := strings.Replace(validCampaign, "      aircraft: [F-15C Eagle]\n", "      aircraft: []\n", 1)

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(parse(t, src))))
	assert.True(t, verr.Has(Structural, "/squadrons/22/0/aircraft"), "errors: %v", verr)
}

func TestValidate_SquadronErrorsAreCollected(t *testing.T) {
	src := `
squadrons:
  7:
    - primary: Transport
      aircraft: [C-130J-30 Super Hercules, Flying Carpet]
      size: 0
    - primary: Crop dusting
      secondary: Sightseeing
      aircraft: [Su-25T Frogfoot]
      size: 40
    - aircraft: [Su-25T Frogfoot]
`
	raw := edit(t, func(root map[string]interface{}) {
		root["squadrons"] = parse(t, src).(map[string]interface{})["squadrons"]
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	assert.True(t, verr.Has(UnknownReference, "/squadrons/7/0/aircraft/1"))
	assert.True(t, verr.Has(OutOfRange, "/squadrons/7/0/size"))
	assert.True(t, verr.Has(OutOfRange, "/squadrons/7/1/primary"))
	assert.True(t, verr.Has(OutOfRange, "/squadrons/7/1/secondary"))
	assert.True(t, verr.Has(OutOfRange, "/squadrons/7/1/size"))
	assert.True(t, verr.Has(MissingField, "/squadrons/7/2/primary"))
	assert.True(t, verr.Has(MissingField, "/squadrons/7/2/size"))
	assert.Len(t, verr.Errors, 7)

	for _, fe := range verr.Errors {
		if fe.Path == "/squadrons/7/1/primary" {
			assert.Contains(t, fe.Reason, `unknown role "Crop dusting"`)
			assert.Contains(t, fe.Reason, "Fighter sweep", "reason lists the valid roles")
		}
	}
}

func TestValidate_DuplicateKeyAcrossTypes(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		entry := []interface{}{map[string]interface{}{"primary": "CAS", "aircraft": []interface{}{"Su-25T Frogfoot"}, "size": 2}}
		root["squadrons"] = map[interface{}]interface{}{7: entry, "7": entry}
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	require.Len(t, verr.Errors, 1)
	assert.True(t, verr.Has(Structural, "/squadrons"))
	assert.Contains(t, verr.Error(), `duplicate key "7"`)
}

func TestValidate_MissingFieldReportedBeforeKeyConflict(t *testing.T) {
	raw := edit(t, func(root map[string]interface{}) {
		delete(root, "name")
		entry := []interface{}{map[string]interface{}{"primary": "CAS", "aircraft": []interface{}{"Su-25T Frogfoot"}, "size": 2}}
		root["squadrons"] = map[interface{}]interface{}{7: entry, "7": entry}
	})

	verr := validationErrors(t, firstErr(newTestValidator(t).Validate(raw)))
	require.Len(t, verr.Errors, 1)
	assert.True(t, verr.Has(MissingField, "/name"))
	assert.True(t, errors.Is(verr, ErrMissingField))
	assert.False(t, errors.Is(verr, ErrStructural))
}

func TestNewValidator_Errors(t *testing.T) {
	_, err := NewValidator(nil, Options{})
	assert.Error(t, err)

	_, err = NewValidator(testCatalog(), Options{Versions: VersionRange{Min: "abc"}})
	assert.Error(t, err)

	_, err = NewValidator(testCatalog(), Options{Versions: VersionRange{Min: "11.0", Max: "10.0"}})
	assert.Error(t, err)
}

func TestFieldError_Format(t *testing.T) {
	fe := &FieldError{Kind: MissingField, Path: "/name", Reason: `required field "name" is missing`}
	assert.Equal(t, `/name: missing field: required field "name" is missing`, fe.Error())

	text, err := OutOfRange.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "out_of_range", string(text))
}

func firstErr(_ *model.CampaignDefinition, err error) error {
	return err
}
