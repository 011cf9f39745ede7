package vehicle

import (
	"sync"
	"testing"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/flightpath-dev/groundstation-core/internal/param"
)

type fakeSender struct {
	mu  sync.Mutex
	out []message.Message
}

func (s *fakeSender) Send(msg message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = append(s.out, msg)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.out)
}

func (s *fakeSender) any(match func(message.Message) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.out {
		if match(m) {
			return true
		}
	}
	return false
}

func TestVehicleDispatchesGpsMessageToGPSGroup(t *testing.T) {
	sender := &fakeSender{}
	v := New(1, 1, sender, t.TempDir(), Callbacks{}, param.Callbacks{}, nil)

	v.HandleMessage(&common.MessageGpsRawInt{Lat: 473977420, Lon: 85455940}, 1, 1)

	if got := v.GPS.Field("lat").RawValue().AsFloat64(); got != 47.397742 {
		t.Fatalf("GPS.lat = %v, want 47.397742", got)
	}
}

func TestVehicleDispatchesParamValueToParameterManager(t *testing.T) {
	sender := &fakeSender{}
	v := New(1, 1, sender, t.TempDir(), Callbacks{}, param.Callbacks{}, nil)
	v.Parameters.RefreshAll(1)

	v.HandleMessage(&common.MessageParamValue{
		ParamId: "PARAM_A", ParamValue: 1, ParamType: uint8(common.MAV_PARAM_TYPE_REAL32),
		ParamCount: 1, ParamIndex: 0,
	}, 1, 1)

	if !v.Parameters.ParametersReady() {
		t.Fatal("ParametersReady() = false after the only parameter index was delivered")
	}
}

func TestFirstHeartbeatTriggersRefreshAndVersionRequest(t *testing.T) {
	sender := &fakeSender{}
	v := New(1, 1, sender, t.TempDir(), Callbacks{}, param.Callbacks{}, nil)

	v.HandleMessage(&common.MessageHeartbeat{Type: uint8(common.MAV_TYPE_QUADROTOR)}, 1, 1)

	if !sender.any(func(m message.Message) bool {
		_, ok := m.(*common.MessageParamRequestList)
		return ok
	}) {
		t.Fatal("expected a ParamRequestList to be sent on the first heartbeat")
	}
	if !sender.any(func(m message.Message) bool {
		_, ok := m.(*common.MessageCommandLong)
		return ok
	}) {
		t.Fatal("expected an AUTOPILOT_VERSION request (MessageCommandLong) to be sent on the first heartbeat")
	}
}

func TestSecondHeartbeatDoesNotRetrigger(t *testing.T) {
	sender := &fakeSender{}
	v := New(1, 1, sender, t.TempDir(), Callbacks{}, param.Callbacks{}, nil)

	v.HandleMessage(&common.MessageHeartbeat{Type: uint8(common.MAV_TYPE_QUADROTOR)}, 1, 1)
	afterFirst := sender.count()

	v.HandleMessage(&common.MessageHeartbeat{Type: uint8(common.MAV_TYPE_QUADROTOR)}, 1, 1)
	if sender.count() != afterFirst {
		t.Fatalf("sender saw %d more messages after the second heartbeat, want 0", sender.count()-afterFirst)
	}
}

func TestHeartbeatFiresIdentityChangedOnlyWhenChanged(t *testing.T) {
	var calls int
	var lastSeen Identity
	sender := &fakeSender{}
	cb := Callbacks{IdentityChanged: func(id Identity) { calls++; lastSeen = id }}
	v := New(1, 1, sender, t.TempDir(), cb, param.Callbacks{}, nil)

	v.HandleMessage(&common.MessageHeartbeat{Type: 1, CustomMode: 5}, 1, 1)
	if calls != 1 {
		t.Fatalf("calls = %d after first heartbeat, want 1", calls)
	}
	if lastSeen.CustomMode != 5 {
		t.Fatalf("CustomMode = %d, want 5", lastSeen.CustomMode)
	}

	v.HandleMessage(&common.MessageHeartbeat{Type: 1, CustomMode: 5}, 1, 1)
	if calls != 1 {
		t.Fatalf("calls = %d after an identical second heartbeat, want 1 (no change)", calls)
	}

	v.HandleMessage(&common.MessageHeartbeat{Type: 1, CustomMode: 6}, 1, 1)
	if calls != 2 {
		t.Fatalf("calls = %d after a heartbeat with a changed CustomMode, want 2", calls)
	}
}

func TestAutopilotVersionSetsBoardName(t *testing.T) {
	var lastSeen Identity
	sender := &fakeSender{}
	cb := Callbacks{IdentityChanged: func(id Identity) { lastSeen = id }}
	v := New(1, 1, sender, t.TempDir(), cb, param.Callbacks{}, nil)

	v.HandleMessage(&common.MessageAutopilotVersion{VendorId: 9900, ProductId: 17}, 1, 1)

	if !lastSeen.HaveAutopilotVersion {
		t.Fatal("HaveAutopilotVersion = false after an AUTOPILOT_VERSION message")
	}
	if lastSeen.BoardName != "PX4 FMU V2" {
		t.Fatalf("BoardName = %q, want %q", lastSeen.BoardName, "PX4 FMU V2")
	}
}

func TestStatustextInvokesTextMessageCallback(t *testing.T) {
	var gotSeverity Severity
	var gotText string
	sender := &fakeSender{}
	cb := Callbacks{TextMessage: func(sev Severity, text string) { gotSeverity = sev; gotText = text }}
	v := New(1, 1, sender, t.TempDir(), cb, param.Callbacks{}, nil)

	v.HandleMessage(&common.MessageStatustext{Severity: uint8(common.MAV_SEVERITY_WARNING), Text: "low battery"}, 1, 1)

	if gotSeverity != SeverityWarning {
		t.Fatalf("severity = %v, want SeverityWarning", gotSeverity)
	}
	if gotText != "low battery" {
		t.Fatalf("text = %q, want %q", gotText, "low battery")
	}
}

func TestSeverityFromWireOutOfRangeIsUnknown(t *testing.T) {
	if got := severityFromWire(200); got != SeverityUnknown {
		t.Fatalf("severityFromWire(200) = %v, want SeverityUnknown", got)
	}
	if got := severityFromWire(uint8(SeverityDebug)); got != SeverityDebug {
		t.Fatalf("severityFromWire(%d) = %v, want SeverityDebug", uint8(SeverityDebug), got)
	}
}

func TestSoftwareVersionStringFormatsPackedVersion(t *testing.T) {
	// major=1, minor=2, patch=3, type=4 (release)
	packed := uint32(1)<<24 | uint32(2)<<16 | uint32(3)<<8 | uint32(4)
	if got := SoftwareVersionString(packed); got != "1.2.3 (release)" {
		t.Fatalf("SoftwareVersionString() = %q, want %q", got, "1.2.3 (release)")
	}
}

func TestFlightCustomVersionStringHexEncodes(t *testing.T) {
	v := [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 0}
	if got := FlightCustomVersionString(v); got != "deadbeef00000000" {
		t.Fatalf("FlightCustomVersionString() = %q, want %q", got, "deadbeef00000000")
	}
}
