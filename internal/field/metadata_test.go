package field

import "testing"

func TestNewMetadataOfTypeDefaultsBounds(t *testing.T) {
	m := NewMetadataOfType(KindUint8)
	if m.RawMin.Uint8() != 0 {
		t.Fatalf("RawMin = %d, want 0", m.RawMin.Uint8())
	}
	if m.RawMax.Uint8() != 255 {
		t.Fatalf("RawMax = %d, want 255", m.RawMax.Uint8())
	}
	if m.DecimalPlaces() != DefaultDecimalPlaces {
		t.Fatalf("DecimalPlaces() = %d, want default", m.DecimalPlaces())
	}
}

func TestSetUnitsTracksCookedUnlessExplicit(t *testing.T) {
	m := NewMetadataOfType(KindFloat64)
	m.SetUnits("m")
	if m.CookedUnits != "m" {
		t.Fatalf("CookedUnits = %q, want %q", m.CookedUnits, "m")
	}

	m.SetTranslators(CentiDegreesToDegrees, DegreesToCentiDegrees)
	m.CookedUnits = "deg"
	m.SetUnits("cdeg")
	if m.CookedUnits != "deg" {
		t.Fatalf("CookedUnits changed to %q after explicit translators were set", m.CookedUnits)
	}
}

func TestConvertAndValidateRawBounds(t *testing.T) {
	m := NewMetadataOfType(KindInt32)
	m.SetRawMin(FromInt32(0))
	m.SetRawMax(FromInt32(100))

	if _, errStr := m.ConvertAndValidateRaw(FromInt32(50), false); errStr != "" {
		t.Fatalf("in-range value rejected: %q", errStr)
	}
	if _, errStr := m.ConvertAndValidateRaw(FromInt32(200), false); errStr == "" {
		t.Fatal("out-of-range value accepted")
	}
}

func TestConvertAndValidateRawConvertOnlySkipsBounds(t *testing.T) {
	m := NewMetadataOfType(KindInt32)
	m.SetRawMin(FromInt32(0))
	m.SetRawMax(FromInt32(100))
	if _, errStr := m.ConvertAndValidateRaw(FromInt32(999), true); errStr != "" {
		t.Fatalf("convertOnly should skip bound checks, got %q", errStr)
	}
}

func TestCustomValidatorRejects(t *testing.T) {
	m := NewMetadataOfType(KindInt32)
	m.SetCustomValidator(func(cooked TypedValue) string {
		if cooked.Int32()%2 != 0 {
			return "must be even"
		}
		return ""
	})
	if _, errStr := m.ConvertAndValidateRaw(FromInt32(3), false); errStr == "" {
		t.Fatal("expected custom validator to reject an odd value")
	}
	if _, errStr := m.ConvertAndValidateRaw(FromInt32(4), false); errStr != "" {
		t.Fatalf("expected custom validator to accept an even value, got %q", errStr)
	}
}

func TestClampValue(t *testing.T) {
	m := NewMetadataOfType(KindFloat64)
	m.SetRawMin(FromFloat64(0))
	m.SetRawMax(FromFloat64(10))

	if v, clamped := m.ClampValue(FromFloat64(15)); !clamped || v.Float64() != 10 {
		t.Fatalf("ClampValue(15) = (%v, %v), want (10, true)", v.Float64(), clamped)
	}
	if v, clamped := m.ClampValue(FromFloat64(5)); clamped || v.Float64() != 5 {
		t.Fatalf("ClampValue(5) = (%v, %v), want (5, false)", v.Float64(), clamped)
	}
}

func TestEnumAndBitmaskInfo(t *testing.T) {
	m := NewMetadataOfType(KindUint8)
	m.AddEnumInfo("OFF", FromUint8(0))
	m.AddEnumInfo("ON", FromUint8(1))
	if len(m.EnumStrings) != 2 {
		t.Fatalf("len(EnumStrings) = %d, want 2", len(m.EnumStrings))
	}
	m.RemoveEnumInfo(FromUint8(0))
	if len(m.EnumStrings) != 1 || m.EnumStrings[0] != "ON" {
		t.Fatalf("RemoveEnumInfo left %v, want only ON", m.EnumStrings)
	}

	m.AddBitmaskInfo("ARMED", FromUint8(1))
	m.AddBitmaskInfo("GUIDED", FromUint8(2))
	if len(m.BitmaskStrings) != 2 {
		t.Fatalf("len(BitmaskStrings) = %d, want 2", len(m.BitmaskStrings))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMetadataOfType(KindUint8)
	m.AddEnumInfo("ON", FromUint8(1))
	c := m.Clone()
	c.AddEnumInfo("OFF", FromUint8(0))
	if len(m.EnumStrings) != 1 {
		t.Fatalf("mutating clone affected original: %v", m.EnumStrings)
	}
}
