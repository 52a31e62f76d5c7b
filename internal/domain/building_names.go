package domain

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuildingAlias maps a fragment of a report file name to a canonical building.
type BuildingAlias struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

// BuildingNameMap resolves report source ids to canonical building names.
// Keys are compared case-insensitively as substrings of the source id. When
// several keys match, the longest wins; equal lengths fall back to table order.
type BuildingNameMap struct {
	aliases []BuildingAlias
	lowered []string
}

// NewBuildingNameMap validates aliases and builds a map. Keys must be
// non-empty and unique ignoring case.
func NewBuildingNameMap(aliases []BuildingAlias) (*BuildingNameMap, error) {
	m := &BuildingNameMap{
		aliases: make([]BuildingAlias, 0, len(aliases)),
		lowered: make([]string, 0, len(aliases)),
	}
	seen := make(map[string]string, len(aliases))
	for i, a := range aliases {
		key := strings.ToLower(a.Key)
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("building alias %d: empty key", i)
		}
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("building alias %q: empty name", a.Key)
		}
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("building alias %q duplicates %q", a.Key, prev)
		}
		seen[key] = a.Key
		m.aliases = append(m.aliases, a)
		m.lowered = append(m.lowered, key)
	}
	return m, nil
}

// Resolve returns the canonical building name for sourceID.
func (m *BuildingNameMap) Resolve(sourceID string) (string, bool) {
	id := strings.ToLower(sourceID)
	best := -1
	for i, key := range m.lowered {
		if !strings.Contains(id, key) {
			continue
		}
		if best < 0 || len(key) > len(m.lowered[best]) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return m.aliases[best].Name, true
}

// Aliases returns a copy of the table in definition order.
func (m *BuildingNameMap) Aliases() []BuildingAlias {
	out := make([]BuildingAlias, len(m.aliases))
	copy(out, m.aliases)
	return out
}

type buildingNameFile struct {
	Buildings []BuildingAlias `yaml:"buildings"`
}

// LoadBuildingNameMap reads a YAML alias table of the form
//
//	buildings:
//	  - key: Cardston Temple
//	    name: Cardston Temple
func LoadBuildingNameMap(path string) (*BuildingNameMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open building map: %w", err)
	}
	defer f.Close()
	return DecodeBuildingNameMap(f)
}

// DecodeBuildingNameMap decodes a YAML alias table from r.
func DecodeBuildingNameMap(r io.Reader) (*BuildingNameMap, error) {
	var file buildingNameFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode building map: %w", err)
	}
	if len(file.Buildings) == 0 {
		return nil, fmt.Errorf("decode building map: no buildings defined")
	}
	return NewBuildingNameMap(file.Buildings)
}

// defaultBuildingAliases is the mapping used for the 2025 report set.
var defaultBuildingAliases = []BuildingAlias{
	{Key: "Cardston Temple", Name: "Cardston Temple"},
	{Key: "Waterton", Name: "Waterton Chapel"},
	{Key: "Magrath SC", Name: "Magrath Stake Center"},
	{Key: "Raymond Tay", Name: "Raymond Taylor Street"},
	{Key: "Fort Macleod SC", Name: "Fort Macleod Stake Center"},
	{Key: "Champion", Name: "Champion"},
	{Key: "Claresholm", Name: "Claresholm"},
	{Key: "Park Lake", Name: "Park Lake"},
	{Key: "Cardston ESC", Name: "Cardston East Stake"},
	{Key: "Cardston S.Hill", Name: "Cardston Spring Hill"},
	{Key: "Raymond Kni", Name: "Raymond Knights"},
	{Key: "spring coulee", Name: "Spring Coulee"},
	{Key: "Alpine stables Waterton", Name: "Alpine Stables Waterton"},
	{Key: "Cardston west st", Name: "Cardston West Stake"},
	{Key: "Hill spring", Name: "Hill Spring"},
	{Key: "Leavitt", Name: "Leavitt"},
	{Key: "Magrath GP", Name: "Magrath Grandview Park"},
	{Key: "Raymond seminary 3", Name: "Raymond Seminary"},
	{Key: "Raymond stake center", Name: "Raymond Stake Center"},
	{Key: "Seminary  cardston", Name: "Seminary Cardston"},
	{Key: "Seminary magrath", Name: "Seminary Magrath"},
	{Key: "waterton opps bld", Name: "Waterton Operations Building"},
}

// DefaultBuildingNameMap returns the built-in alias table.
func DefaultBuildingNameMap() *BuildingNameMap {
	m, err := NewBuildingNameMap(defaultBuildingAliases)
	if err != nil {
		panic(err)
	}
	return m
}
