package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flightpath-dev/groundstation-core/internal/field"
)

func TestLoadFieldMetaOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fieldmeta.yaml")
	content := `
fields:
  vehicle.gps.horizAccuracy:
    raw_min: "0"
    raw_max: "50"
    units: "m"
  vehicle.system.mode:
    enum: ["MANUAL", "AUTO"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	overlay, err := LoadFieldMetaOverlay(path)
	if err != nil {
		t.Fatalf("LoadFieldMetaOverlay() error: %v", err)
	}
	if len(overlay.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(overlay.Fields))
	}
	entry := overlay.Fields["vehicle.gps.horizAccuracy"]
	if entry.RawMin != "0" || entry.RawMax != "50" || entry.RawUnits != "m" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestFieldMetaOverlayApply(t *testing.T) {
	group := field.NewGroup("vehicle", 0, false)
	f := field.New(1, "horizAccuracy", field.KindFloat64)
	meta := field.NewMetadataNamed(field.KindFloat64, "horizAccuracy")
	f.SetMetadata(meta)
	group.AddField(f)

	overlay := &FieldMetaOverlay{
		Fields: map[string]FieldMetaEntry{
			"vehicle.horizAccuracy": {
				RawMin:   "0",
				RawMax:   "50",
				RawUnits: "m",
			},
		},
	}
	overlay.Apply(group)

	got := f.Metadata()
	if got.RawMin.AsFloat64() != 0 || got.RawMax.AsFloat64() != 50 {
		t.Fatalf("RawMin/RawMax = %v/%v, want 0/50", got.RawMin.AsFloat64(), got.RawMax.AsFloat64())
	}
	if got.RawUnits != "m" {
		t.Fatalf("RawUnits = %q, want m", got.RawUnits)
	}
}

func TestFieldMetaOverlayApplySkipsUnmatchedFields(t *testing.T) {
	group := field.NewGroup("vehicle", 0, false)
	f := field.New(1, "alt", field.KindFloat64)
	meta := field.NewMetadataNamed(field.KindFloat64, "alt")
	f.SetMetadata(meta)
	group.AddField(f)

	overlay := &FieldMetaOverlay{Fields: map[string]FieldMetaEntry{"vehicle.other": {RawUnits: "ft"}}}
	overlay.Apply(group)

	if f.Metadata().RawUnits != "" {
		t.Fatalf("RawUnits = %q, want untouched empty string", f.Metadata().RawUnits)
	}
}
