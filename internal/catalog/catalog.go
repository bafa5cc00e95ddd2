package catalog

import (
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Catalog is a set of known theater, faction and aircraft identifiers.
// It is read-only once built.
type Catalog struct {
	theaters map[string]bool
	factions map[string]bool
	aircraft map[string]bool
}

// File is the on-disk layout of a catalog
type File struct {
	Theaters []string `yaml:"theaters" json:"theaters"`
	Factions []string `yaml:"factions" json:"factions"`
	Aircraft []string `yaml:"aircraft" json:"aircraft"`
}

// New builds a catalog from identifier lists
func New(theaters, factions, aircraft []string) *Catalog {
	return &Catalog{
		theaters: toSet(theaters),
		factions: toSet(factions),
		aircraft: toSet(aircraft),
	}
}

// Load reads a catalog YAML file
func Load(fs afero.Fs, path string) (*Catalog, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	if len(file.Theaters) == 0 {
		return nil, fmt.Errorf("catalog %s defines no theaters", path)
	}
	if len(file.Factions) == 0 {
		return nil, fmt.Errorf("catalog %s defines no factions", path)
	}
	if len(file.Aircraft) == 0 {
		return nil, fmt.Errorf("catalog %s defines no aircraft", path)
	}

	return New(file.Theaters, file.Factions, file.Aircraft), nil
}

func (c *Catalog) HasTheater(id string) bool { return c.theaters[id] }
func (c *Catalog) HasFaction(id string) bool { return c.factions[id] }
func (c *Catalog) HasAircraft(id string) bool { return c.aircraft[id] }

// File returns the catalog contents with sorted identifier lists
func (c *Catalog) File() File {
	return File{
		Theaters: sortedSet(c.theaters),
		Factions: sortedSet(c.factions),
		Aircraft: sortedSet(c.aircraft),
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
