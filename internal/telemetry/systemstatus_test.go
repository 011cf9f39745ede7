package telemetry

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func TestSystemStatusGroupDecodesSensorBits(t *testing.T) {
	g := NewSystemStatusGroup(1)

	msg := &common.MessageSysStatus{
		OnboardControlSensorsPresent: 1, // bit 0: 3dGyro
		OnboardControlSensorsEnabled: 1,
		OnboardControlSensorsHealth:  0,
		Load:                         450,
		DropRateComm:                 250,
		ErrorsComm:                   3,
	}

	if !g.HandleMessage(msg) {
		t.Fatal("HandleMessage() = false for MessageSysStatus")
	}
	if !g.TelemetryAvailable() {
		t.Fatal("TelemetryAvailable() = false after a SYS_STATUS message")
	}

	if !g.Field("3dGyroPresent").RawValue().Bool() {
		t.Fatal("3dGyroPresent = false, want true for bit 0 set")
	}
	if g.Field("3dAccelPresent").RawValue().Bool() {
		t.Fatal("3dAccelPresent = true, want false for bit 1 clear")
	}
	if !g.Field("3dGyroEnabled").RawValue().Bool() {
		t.Fatal("3dGyroEnabled = false, want true")
	}
	if g.Field("3dGyroHealthy").RawValue().Bool() {
		t.Fatal("3dGyroHealthy = true, want false (health bit clear)")
	}
	if got := g.Field("load").RawValue().AsFloat64(); got != 45.0 {
		t.Fatalf("load = %v, want 45.0", got)
	}
	if got := g.Field("dropRateComm").RawValue().AsFloat64(); got != 2.5 {
		t.Fatalf("dropRateComm = %v, want 2.5", got)
	}
	if got := g.Field("errorsComm").RawValue().Int32(); got != 3 {
		t.Fatalf("errorsComm = %v, want 3", got)
	}
}

func TestSystemStatusGroupIgnoresUnrelatedMessage(t *testing.T) {
	g := NewSystemStatusGroup(1)
	if g.HandleMessage(&common.MessageHeartbeat{}) {
		t.Fatal("HandleMessage() = true for an unrelated message type")
	}
}
