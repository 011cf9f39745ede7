package telemetry

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func TestTemperatureGroupHandlesScaledPressure(t *testing.T) {
	g := NewTemperatureGroup(1, "baro")
	msg := &common.MessageScaledPressure{PressAbs: 1013.25, PressDiff: 0.5, Temperature: 2345}
	if !g.HandleMessage(msg) {
		t.Fatal("HandleMessage() = false for MessageScaledPressure")
	}
	if !g.TelemetryAvailable() {
		t.Fatal("TelemetryAvailable() = false after a SCALED_PRESSURE message")
	}
	if got := g.Field("pressureAbsolute").RawValue().AsFloat64(); float32(got) != 1013.25 {
		t.Fatalf("pressureAbsolute = %v, want ~1013.25", got)
	}
	if got := g.Field("temperature").RawValue().AsFloat64(); got != 23.45 {
		t.Fatalf("temperature = %v, want 23.45", got)
	}
}

func TestTemperatureGroupHandlesScaledPressure2And3(t *testing.T) {
	g := NewTemperatureGroup(1, "baro2")
	if !g.HandleMessage(&common.MessageScaledPressure2{Temperature: 1000}) {
		t.Fatal("HandleMessage() = false for MessageScaledPressure2")
	}
	if got := g.Field("temperature").RawValue().AsFloat64(); got != 10.0 {
		t.Fatalf("temperature (pressure2) = %v, want 10.0", got)
	}
	g2 := NewTemperatureGroup(1, "baro3")
	if !g2.HandleMessage(&common.MessageScaledPressure3{Temperature: 500}) {
		t.Fatal("HandleMessage() = false for MessageScaledPressure3")
	}
	if got := g2.Field("temperature").RawValue().AsFloat64(); got != 5.0 {
		t.Fatalf("temperature (pressure3) = %v, want 5.0", got)
	}
}

func TestTemperatureGroupIgnoresUnrelatedMessage(t *testing.T) {
	g := NewTemperatureGroup(1, "baro")
	if g.HandleMessage(&common.MessageHeartbeat{}) {
		t.Fatal("HandleMessage() = true for an unrelated message type")
	}
}
