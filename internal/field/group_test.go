package field

import "testing"

func TestGroupAddFieldAndLookup(t *testing.T) {
	g := NewGroup("gps", 0, false)
	f := New(1, "lat", KindInt32)
	g.AddField(f)

	if got := g.Field("lat"); got != f {
		t.Fatal("Field() did not return the registered field")
	}
	if got := g.Field("missing"); got != nil {
		t.Fatal("Field() returned non-nil for an unregistered name")
	}
}

func TestGroupAddFieldFiresCallback(t *testing.T) {
	g := NewGroup("gps", 0, false)
	var gotName string
	g.SetOnFieldAdded(func(group *Group, f *Field) { gotName = f.Name() })
	g.AddField(New(1, "lat", KindInt32))
	if gotName != "lat" {
		t.Fatalf("onFieldAdded fired with %q, want %q", gotName, "lat")
	}
}

func TestGroupMarkTelemetryAvailableFiresOnce(t *testing.T) {
	g := NewGroup("gps", 0, false)
	calls := 0
	g.SetOnTelemetryAvailable(func(*Group) { calls++ })
	g.MarkTelemetryAvailable()
	g.MarkTelemetryAvailable()
	if calls != 1 {
		t.Fatalf("onTelemetryAvailable fired %d times, want 1 (false->true transition only)", calls)
	}
	if !g.TelemetryAvailable() {
		t.Fatal("TelemetryAvailable() = false after MarkTelemetryAvailable")
	}
}

func TestGroupSubGroupsAndFlatFields(t *testing.T) {
	root := NewGroup("vehicle", 0, false)
	gps := NewGroup("gps", 0, false)
	gps.AddField(New(1, "lat", KindInt32))
	root.AddSubGroup(gps)

	if root.SubGroup("gps") != gps {
		t.Fatal("SubGroup() did not return the registered child")
	}

	flat := root.FlatFields()
	if _, ok := flat["vehicle.gps.lat"]; !ok {
		t.Fatalf("FlatFields() = %v, missing dotted path vehicle.gps.lat", keysOf(flat))
	}
}

func TestGroupFlatFieldsIgnoreCamelCase(t *testing.T) {
	root := NewGroup("vehicleStatus", 0, true)
	root.AddField(New(1, "batteryLevel", KindInt32))

	flat := root.FlatFields()
	if _, ok := flat["vehicle Status.battery Level"]; !ok {
		t.Fatalf("FlatFields() = %v, missing camelCase-split path", keysOf(flat))
	}
}

func TestGroupFlushDeferredAllRecursesIntoSubGroups(t *testing.T) {
	root := NewGroup("vehicle", 0, false)
	gps := NewGroup("gps", 0, false)
	root.AddSubGroup(gps)

	f := New(1, "lat", KindInt32)
	calls := 0
	f.AddListener(func(TypedValue) { calls++ })
	gps.AddField(f)

	f.SetNotificationsEnabled(false)
	f.SetRaw(FromInt32(42))
	root.FlushDeferredAll()

	if calls != 1 {
		t.Fatalf("expected the deferred notification to flush through the parent, got %d calls", calls)
	}
}

func keysOf(m map[string]*Field) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
