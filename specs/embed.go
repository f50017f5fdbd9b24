// Package specs provides the embedded core HL7 v2 reference definitions.
//
// The embedded files cover the definition kinds the engine is driven by:
//   - datatypes.json: primitive and composite data types
//   - segments.json: segment definitions with ordered fields
//   - tables.json: code tables
//   - events.json: trigger events
//   - structures.json: message structure node trees
//
// Usage:
//
//	set, err := specs.Load()
//	reg, err := specs.NewRegistry()
package specs

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/gohl7/hl7v2/definition"
	"github.com/gohl7/hl7v2/registry"
)

//go:embed data/*.json
var files embed.FS

// Load parses the embedded definition files into a definition set.
func Load() (definition.Set, error) {
	var set definition.Set

	if err := loadFile("data/datatypes.json", &set.DataTypes); err != nil {
		return definition.Set{}, err
	}
	if err := loadFile("data/segments.json", &set.Segments); err != nil {
		return definition.Set{}, err
	}
	if err := loadFile("data/tables.json", &set.Tables); err != nil {
		return definition.Set{}, err
	}
	if err := loadFile("data/events.json", &set.Events); err != nil {
		return definition.Set{}, err
	}
	if err := loadFile("data/structures.json", &set.Structures); err != nil {
		return definition.Set{}, err
	}

	return set, nil
}

// NewRegistry builds a registry from the embedded definitions.
func NewRegistry() (*registry.Registry, error) {
	set, err := Load()
	if err != nil {
		return nil, err
	}
	return registry.New(set)
}

func loadFile(name string, out any) error {
	data, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read embedded %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse embedded %s: %w", name, err)
	}
	return nil
}
