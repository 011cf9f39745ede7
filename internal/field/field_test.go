package field

import "testing"

func TestFieldSetRawNotifiesListener(t *testing.T) {
	f := New(1, "alt", KindFloat64)
	var got TypedValue
	calls := 0
	f.AddListener(func(cooked TypedValue) {
		got = cooked
		calls++
	})
	f.SetRaw(FromFloat64(12.5))
	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}
	if got.Float64() != 12.5 {
		t.Fatalf("listener got %v, want 12.5", got.Float64())
	}
}

func TestFieldDeferredNotification(t *testing.T) {
	f := New(1, "alt", KindFloat64)
	calls := 0
	f.AddListener(func(TypedValue) { calls++ })
	f.SetNotificationsEnabled(false)
	f.SetRaw(FromFloat64(1))
	if calls != 0 {
		t.Fatalf("expected no notification while disabled, got %d calls", calls)
	}
	f.FlushDeferred()
	if calls != 1 {
		t.Fatalf("expected one notification after flush, got %d", calls)
	}
	// Flushing again with nothing pending must not re-fire.
	f.FlushDeferred()
	if calls != 1 {
		t.Fatalf("expected flush to be a no-op without a pending value, got %d calls", calls)
	}
}

func TestFieldCookedValueUsesMetadataTranslator(t *testing.T) {
	f := New(1, "heading", KindInt32)
	meta := NewMetadataOfType(KindInt32)
	meta.SetTranslators(CentiDegreesToDegrees, DegreesToCentiDegrees)
	f.SetMetadata(meta)

	f.SetRaw(FromInt32(9000))
	if got := f.CookedValue().AsFloat64(); got != 90 {
		t.Fatalf("CookedValue() = %v, want 90", got)
	}
}

func TestFieldSetCookedInvertsThroughMetadata(t *testing.T) {
	f := New(1, "heading", KindInt32)
	meta := NewMetadataOfType(KindInt32)
	meta.SetTranslators(CentiDegreesToDegrees, DegreesToCentiDegrees)
	f.SetMetadata(meta)

	f.SetCooked(FromFloat64(45))
	if got := f.RawValue().Int32(); got != 4500 {
		t.Fatalf("RawValue().Int32() = %d, want 4500", got)
	}
}

func TestFieldValidateWithoutMetadata(t *testing.T) {
	f := New(1, "x", KindInt32)
	if errStr := f.Validate("5", false); errStr != "Missing metadata" {
		t.Fatalf("Validate() = %q, want sentinel for missing metadata", errStr)
	}
}

func TestFieldEnumIndexAndString(t *testing.T) {
	f := New(1, "mode", KindUint8)
	meta := NewMetadataOfType(KindUint8)
	meta.AddEnumInfo("MANUAL", FromUint8(0))
	meta.AddEnumInfo("AUTO", FromUint8(1))
	f.SetMetadata(meta)

	f.ContainerSetRaw(FromUint8(1))
	if idx := f.EnumIndex(); idx != 1 {
		t.Fatalf("EnumIndex() = %d, want 1", idx)
	}
	if s := f.EnumStringValue(); s != "AUTO" {
		t.Fatalf("EnumStringValue() = %q, want AUTO", s)
	}
}

func TestFieldSelectedBitmaskStrings(t *testing.T) {
	f := New(1, "status", KindUint32)
	meta := NewMetadataOfType(KindUint32)
	meta.AddBitmaskInfo("ARMED", FromUint32(1))
	meta.AddBitmaskInfo("GUIDED", FromUint32(2))
	meta.AddBitmaskInfo("LANDED", FromUint32(4))
	f.SetMetadata(meta)

	f.ContainerSetRaw(FromUint32(1 | 4))
	got := f.SelectedBitmaskStrings()
	if len(got) != 2 || got[0] != "ARMED" || got[1] != "LANDED" {
		t.Fatalf("SelectedBitmaskStrings() = %v, want [ARMED LANDED]", got)
	}
}

func TestContainerSetRawSkipsNotification(t *testing.T) {
	f := New(1, "x", KindInt32)
	calls := 0
	f.AddListener(func(TypedValue) { calls++ })
	f.ContainerSetRaw(FromInt32(7))
	if calls != 0 {
		t.Fatalf("ContainerSetRaw should never notify, got %d calls", calls)
	}
	if f.RawValue().Int32() != 7 {
		t.Fatalf("RawValue().Int32() = %d, want 7", f.RawValue().Int32())
	}
}
