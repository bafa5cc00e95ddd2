package model

import (
	"maps"
	"slices"
	"time"

	"github.com/sourceplane/campaignctl/internal/settings"
)

// DateLayout is the calendar date format used by recommended_start_date
const DateLayout = "2006-01-02"

// CampaignDefinition is the validated form of a campaign document
type CampaignDefinition struct {
	Name                  string                    `json:"name" yaml:"name"`
	Theater               string                    `json:"theater" yaml:"theater"`
	Authors               string                    `json:"authors" yaml:"authors"`
	PlayerFaction         string                    `json:"recommended_player_faction" yaml:"recommended_player_faction"`
	EnemyFaction          string                    `json:"recommended_enemy_faction" yaml:"recommended_enemy_faction"`
	Description           string                    `json:"description" yaml:"description"` // opaque, may embed markup
	Scenario              string                    `json:"miz" yaml:"miz"`
	Performance           PerformanceTier           `json:"performance" yaml:"performance"`
	StartDate             time.Time                 `json:"recommended_start_date,omitempty" yaml:"recommended_start_date,omitempty"`
	EnemyMoney            float64                   `json:"recommended_enemy_money" yaml:"recommended_enemy_money"`
	EnemyIncomeMultiplier float64                   `json:"recommended_enemy_income_multiplier" yaml:"recommended_enemy_income_multiplier"`
	Version               string                    `json:"version" yaml:"version"`
	Settings              map[string]settings.Value `json:"settings" yaml:"settings"`
	Squadrons             map[int][]SquadronSpec    `json:"squadrons" yaml:"squadrons"`
}

// SquadronSpec is one squadron stationed at a base
type SquadronSpec struct {
	Name      string        `json:"name" yaml:"name"`
	Primary   Role          `json:"primary" yaml:"primary"`
	Secondary SecondaryRole `json:"secondary" yaml:"secondary"`
	Aircraft  []string      `json:"aircraft" yaml:"aircraft"` // preference order
	Size      int           `json:"size" yaml:"size"`
}

// PreferredAircraft returns the first aircraft type accepted by allowed,
// walking the list in declared preference order.
func (s SquadronSpec) PreferredAircraft(allowed func(string) bool) (string, bool) {
	for _, aircraft := range s.Aircraft {
		if allowed == nil || allowed(aircraft) {
			return aircraft, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the definition
func (d *CampaignDefinition) Clone() *CampaignDefinition {
	if d == nil {
		return nil
	}
	out := *d
	out.Settings = maps.Clone(d.Settings)
	out.Squadrons = make(map[int][]SquadronSpec, len(d.Squadrons))
	for base, list := range d.Squadrons {
		copied := make([]SquadronSpec, len(list))
		for i, sq := range list {
			sq.Aircraft = slices.Clone(sq.Aircraft)
			copied[i] = sq
		}
		out.Squadrons[base] = copied
	}
	return &out
}
