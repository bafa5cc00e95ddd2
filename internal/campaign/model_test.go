package campaign

import (
	"sync"
	"testing"

	"github.com/sourceplane/campaignctl/internal/model"
	"github.com/sourceplane/campaignctl/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition() *model.CampaignDefinition {
	return &model.CampaignDefinition{
		Name:        "Operation Vectron",
		Theater:     "Caucasus",
		Authors:     "Starfire",
		Scenario:    "vectron.miz",
		Performance: model.PerformanceLight,
		Version:     "10.9",
		Settings: map[string]settings.Value{
			"hercules": settings.BoolValue(true),
		},
		Squadrons: map[int][]model.SquadronSpec{
			7: {
				{Name: "Squadron 001", Primary: model.RoleTransport, Aircraft: []string{"C-130J-30 Super Hercules"}, Size: 4},
				{Name: "Squadron 002", Primary: model.RoleCAS, Aircraft: []string{"A-10C Thunderbolt II (Suite 7)"}, Size: 4},
			},
			3: {
				{Name: "Squadron 003", Primary: model.RoleAEWC, Aircraft: []string{"E-3A"}, Size: 1},
			},
		},
	}
}

func TestSquadronsAt_PreservesOrder(t *testing.T) {
	m := New(testDefinition(), nil)

	squadrons := m.SquadronsAt(7)
	require.Len(t, squadrons, 2)
	assert.Equal(t, model.RoleTransport, squadrons[0].Primary)
	assert.Equal(t, 4, squadrons[0].Size)
	assert.Equal(t, model.RoleCAS, squadrons[1].Primary)
	assert.Equal(t, 4, squadrons[1].Size)
}

func TestSquadronsAt_UnknownBase(t *testing.T) {
	m := New(testDefinition(), nil)

	squadrons := m.SquadronsAt(999)
	assert.NotNil(t, squadrons)
	assert.Empty(t, squadrons)
}

func TestModel_IsolatedFromCallers(t *testing.T) {
	def := testDefinition()
	m := New(def, nil)

	def.Squadrons[7][0].Size = 99
	def.Name = "changed"

	out := m.SquadronsAt(7)
	out[0].Aircraft[0] = "changed"
	out[1].Size = 12

	again := m.SquadronsAt(7)
	assert.Equal(t, 4, again[0].Size)
	assert.Equal(t, "C-130J-30 Super Hercules", again[0].Aircraft[0])
	assert.Equal(t, 4, again[1].Size)
	assert.Equal(t, "Operation Vectron", m.Metadata().Name)

	copied := m.Definition()
	copied.Squadrons[3] = nil
	assert.Len(t, m.SquadronsAt(3), 1)
}

func TestSettingsOption(t *testing.T) {
	m := New(testDefinition(), settings.DefaultRegistry())

	assert.True(t, m.Bool("hercules"))
	assert.False(t, m.Bool("squadron_start_full"), "unset option falls back to default")
	assert.Equal(t, settings.Bool, m.SettingsOption("squadron_start_full").Kind())

	unknown := m.SettingsOption("no_such_option")
	assert.False(t, unknown.IsValid())
	assert.False(t, m.Bool("no_such_option"))

	assert.NotNil(t, New(testDefinition(), nil).Registry(), "nil registry falls back to defaults")
}

func TestMetadataAndBases(t *testing.T) {
	m := New(testDefinition(), nil)

	meta := m.Metadata()
	assert.Equal(t, "Operation Vectron", meta.Name)
	assert.Equal(t, "Caucasus", meta.Theater)
	assert.Equal(t, "vectron.miz", meta.Scenario)
	assert.Equal(t, model.PerformanceLight, meta.Performance)

	assert.Equal(t, []int{3, 7}, m.Bases())
	assert.Equal(t, 3, m.SquadronCount())
}

func TestModel_ConcurrentReads(t *testing.T) {
	m := New(testDefinition(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.SquadronsAt(7)
				_ = m.Bool("hercules")
				_ = m.Metadata()
			}
		}()
	}
	wg.Wait()
}

func TestPreferredAircraft(t *testing.T) {
	sq := model.SquadronSpec{Aircraft: []string{"F-14B", "F/A-18C", "F-15C"}}

	got, ok := sq.PreferredAircraft(func(a string) bool { return a != "F-14B" })
	require.True(t, ok)
	assert.Equal(t, "F/A-18C", got)

	got, ok = sq.PreferredAircraft(nil)
	require.True(t, ok)
	assert.Equal(t, "F-14B", got)

	_, ok = sq.PreferredAircraft(func(string) bool { return false })
	assert.False(t, ok)
}

func TestNew_NilDefinition(t *testing.T) {
	m := New(nil, nil)

	assert.Empty(t, m.Bases())
	assert.Equal(t, 0, m.SquadronCount())
	assert.NotNil(t, m.SquadronsAt(7))
	assert.False(t, m.Bool("hercules"))
	assert.Equal(t, "", m.Metadata().Name)
}
