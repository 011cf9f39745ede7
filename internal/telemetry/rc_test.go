package telemetry

import (
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

func TestRCGroupHandlesRcChannels(t *testing.T) {
	g := NewRCGroup(1)

	msg := &common.MessageRcChannels{
		Chancount: 4,
		Chan1Raw:  1500,
		Chan2Raw:  1600,
		Chan3Raw:  1700,
		Chan4Raw:  1800,
		Rssi:      200,
	}

	if !g.HandleMessage(msg) {
		t.Fatal("HandleMessage() = false for MessageRcChannels")
	}
	if !g.TelemetryAvailable() {
		t.Fatal("TelemetryAvailable() = false after an RC_CHANNELS message")
	}
	if got := g.Field("channel1").RawValue().Int32(); got != 1500 {
		t.Fatalf("channel1 = %v, want 1500", got)
	}
	if got := g.Field("channel4").RawValue().Int32(); got != 1800 {
		t.Fatalf("channel4 = %v, want 1800", got)
	}
	if got := g.Field("rssi").RawValue().Int32(); got != 200 {
		t.Fatalf("rssi = %v, want 200", got)
	}
}

func TestRCGroupSkipsUnpopulatedChannelsAndRssi(t *testing.T) {
	g := NewRCGroup(1)
	msg := &common.MessageRcChannels{Chancount: 2, Chan1Raw: 0, Chan2Raw: 1500, Rssi: 255}
	g.HandleMessage(msg)
	if got := g.Field("channel1").RawValue().Int32(); got != 0 {
		t.Fatalf("channel1 = %v, want 0 (unset raw skipped)", got)
	}
	if got := g.Field("rssi").RawValue().Int32(); got != 0 {
		t.Fatalf("rssi = %v, want 0 (255 sentinel means unset, should not be applied)", got)
	}
}

func TestRCGroupHandlesRadioStatus(t *testing.T) {
	g := NewRCGroup(1)
	msg := &common.MessageRadioStatus{Rssi: 10, Remrssi: 20, Noise: 5, Remnoise: 6, Rxerrors: 7, Fixed: 8}
	if !g.HandleMessage(msg) {
		t.Fatal("HandleMessage() = false for MessageRadioStatus")
	}
	if got := g.Field("remoteRssi").RawValue().Int32(); got != 20 {
		t.Fatalf("remoteRssi = %v, want 20", got)
	}
	if got := g.Field("rxErrors").RawValue().Int32(); got != 7 {
		t.Fatalf("rxErrors = %v, want 7", got)
	}
}

func TestRCGroupIgnoresUnrelatedMessage(t *testing.T) {
	g := NewRCGroup(1)
	if g.HandleMessage(&common.MessageHeartbeat{}) {
		t.Fatal("HandleMessage() = true for an unrelated message type")
	}
}
