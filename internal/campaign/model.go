// Package campaign exposes a validated campaign definition to the engine.
//
// A Model is only ever built from a definition that passed validation and is
// never modified afterwards, so it can be shared between goroutines without
// locking. Accessors hand out copies.
package campaign

import (
	"slices"
	"sort"
	"time"

	"github.com/sourceplane/campaignctl/internal/model"
	"github.com/sourceplane/campaignctl/internal/settings"
)

// Metadata is the descriptive part of a campaign
type Metadata struct {
	Name                  string                `json:"name" yaml:"name"`
	Theater               string                `json:"theater" yaml:"theater"`
	Authors               string                `json:"authors" yaml:"authors"`
	PlayerFaction         string                `json:"recommendedPlayerFaction" yaml:"recommendedPlayerFaction"`
	EnemyFaction          string                `json:"recommendedEnemyFaction" yaml:"recommendedEnemyFaction"`
	Description           string                `json:"description" yaml:"description"`
	Scenario              string                `json:"scenario" yaml:"scenario"`
	Performance           model.PerformanceTier `json:"performance" yaml:"performance"`
	StartDate             time.Time             `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EnemyMoney            float64               `json:"recommendedEnemyMoney" yaml:"recommendedEnemyMoney"`
	EnemyIncomeMultiplier float64               `json:"recommendedEnemyIncomeMultiplier" yaml:"recommendedEnemyIncomeMultiplier"`
	Version               string                `json:"version" yaml:"version"`
}

// Model is the read-only view of a validated campaign
type Model struct {
	def      *model.CampaignDefinition
	registry *settings.Registry
	bases    []int
}

// New wraps a validated definition. The definition is copied, so later
// changes by the caller are not observed. A nil definition yields an empty
// model with no bases.
func New(def *model.CampaignDefinition, registry *settings.Registry) *Model {
	if registry == nil {
		registry = settings.DefaultRegistry()
	}
	if def == nil {
		def = &model.CampaignDefinition{}
	}
	def = def.Clone()

	bases := make([]int, 0, len(def.Squadrons))
	for id := range def.Squadrons {
		bases = append(bases, id)
	}
	sort.Ints(bases)

	return &Model{def: def, registry: registry, bases: bases}
}

// SquadronsAt returns the squadrons of a base in declared order. A base
// without squadrons yields an empty slice.
func (m *Model) SquadronsAt(baseID int) []model.SquadronSpec {
	list := m.def.Squadrons[baseID]
	out := make([]model.SquadronSpec, len(list))
	for i, sq := range list {
		sq.Aircraft = slices.Clone(sq.Aircraft)
		out[i] = sq
	}
	return out
}

// Bases returns the ids of all bases with squadrons, ascending
func (m *Model) Bases() []int {
	return slices.Clone(m.bases)
}

// SettingsOption returns the value set by the campaign, falling back to the
// registered default. Unknown names return the zero Value.
func (m *Model) SettingsOption(name string) settings.Value {
	if v, ok := m.def.Settings[name]; ok {
		return v
	}
	return m.registry.Default(name)
}

// Registry returns the settings registry the model resolves defaults from
func (m *Model) Registry() *settings.Registry {
	return m.registry
}

// Bool is SettingsOption for boolean options
func (m *Model) Bool(name string) bool {
	return m.SettingsOption(name).Bool()
}

// Metadata returns the descriptive fields of the campaign
func (m *Model) Metadata() Metadata {
	return Metadata{
		Name:                  m.def.Name,
		Theater:               m.def.Theater,
		Authors:               m.def.Authors,
		PlayerFaction:         m.def.PlayerFaction,
		EnemyFaction:          m.def.EnemyFaction,
		Description:           m.def.Description,
		Scenario:              m.def.Scenario,
		Performance:           m.def.Performance,
		StartDate:             m.def.StartDate,
		EnemyMoney:            m.def.EnemyMoney,
		EnemyIncomeMultiplier: m.def.EnemyIncomeMultiplier,
		Version:               m.def.Version,
	}
}

// SquadronCount returns the total number of squadrons across all bases
func (m *Model) SquadronCount() int {
	n := 0
	for _, list := range m.def.Squadrons {
		n += len(list)
	}
	return n
}

// Definition returns a copy of the underlying definition
func (m *Model) Definition() *model.CampaignDefinition {
	return m.def.Clone()
}
