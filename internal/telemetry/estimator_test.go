package telemetry

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func TestEstimatorStatusGroupDecodesFlagsAndRatios(t *testing.T) {
	g := NewEstimatorStatusGroup(1)

	msg := &common.MessageEstimatorStatus{
		Flags:         3, // bits 0 (attitude) and 1 (velocityHoriz) set
		VelRatio:      0.1,
		PosHorizRatio: 0.2,
		PosVertRatio:  0.3,
		MagRatio:      0.4,
		HaglRatio:     0.5,
		TasRatio:      0.6,
	}

	if !g.HandleMessage(msg) {
		t.Fatal("HandleMessage() = false for MessageEstimatorStatus")
	}
	if !g.TelemetryAvailable() {
		t.Fatal("TelemetryAvailable() = false after an ESTIMATOR_STATUS message")
	}
	if !g.Field("flagsAttitude").RawValue().Bool() {
		t.Fatal("flagsAttitude = false, want true for bit 0 set")
	}
	if !g.Field("flagsVelocityHoriz").RawValue().Bool() {
		t.Fatal("flagsVelocityHoriz = false, want true for bit 1 set")
	}
	if g.Field("flagsVelocityVert").RawValue().Bool() {
		t.Fatal("flagsVelocityVert = true, want false for bit 2 clear")
	}
	if got := g.Field("velocityRatio").RawValue().AsFloat64(); float32(got) != 0.1 {
		t.Fatalf("velocityRatio = %v, want ~0.1", got)
	}
}

func TestEstimatorStatusGroupIgnoresUnrelatedMessage(t *testing.T) {
	g := NewEstimatorStatusGroup(1)
	if g.HandleMessage(&common.MessageHeartbeat{}) {
		t.Fatal("HandleMessage() = true for an unrelated message type")
	}
}
