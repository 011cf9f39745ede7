package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// FieldMetaEntry overlays one field's built-in Metadata defaults. Every
// member is optional; an empty value leaves the built-in default untouched.
type FieldMetaEntry struct {
	RawMin     string   `yaml:"raw_min"`
	RawMax     string   `yaml:"raw_max"`
	RawDefault string   `yaml:"raw_default"`
	RawUnits   string   `yaml:"units"`
	Enum       []string `yaml:"enum"`
	Bitmask    []string `yaml:"bitmask"`
}

// FieldMetaOverlay is the parsed form of a human-authored fieldmeta.yaml: a
// per-airframe tuning layer on top of the built-in descriptors.
type FieldMetaOverlay struct {
	Fields map[string]FieldMetaEntry `yaml:"fields"`
}

// LoadFieldMetaOverlay reads and parses a fieldmeta.yaml document.
func LoadFieldMetaOverlay(path string) (*FieldMetaOverlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read field meta overlay: %w", err)
	}

	var overlay FieldMetaOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("config: parse field meta overlay: %w", err)
	}
	return &overlay, nil
}

// Apply walks group's flat field index and, for every field with a matching
// overlay entry, updates its Metadata in place.
func (o *FieldMetaOverlay) Apply(group *field.Group) {
	for name, f := range group.FlatFields() {
		entry, ok := o.Fields[name]
		if !ok {
			continue
		}
		m := f.Metadata()
		if m == nil {
			continue
		}
		applyEntry(m, entry)
	}
}

func applyEntry(m *field.Metadata, entry FieldMetaEntry) {
	if entry.RawMin != "" {
		m.SetRawMin(field.FromString(m.Type, entry.RawMin))
	}
	if entry.RawMax != "" {
		m.SetRawMax(field.FromString(m.Type, entry.RawMax))
	}
	if entry.RawDefault != "" {
		m.SetRawDefault(field.FromString(m.Type, entry.RawDefault))
	}
	if entry.RawUnits != "" {
		m.SetUnits(entry.RawUnits)
	}
	for i, name := range entry.Enum {
		m.AddEnumInfo(name, field.FromInt32(int32(i)))
	}
	for i, name := range entry.Bitmask {
		m.AddBitmaskInfo(name, field.FromUint32(uint32(1)<<uint(i)))
	}
}
