package events

import "testing"

func TestConnectWithEmptyURLIsNoOp(t *testing.T) {
	bus, err := Connect("", "groundstation", nil)
	if err != nil {
		t.Fatalf("Connect(\"\") error: %v", err)
	}
	if bus == nil {
		t.Fatal("Connect(\"\") returned a nil Bus")
	}
	// None of these should panic or block against a real connection.
	bus.PublishFieldValueChanged(FieldValueChangedEvent{FieldName: "alt"})
	bus.PublishIdentityChanged(IdentityChangedEvent{SystemID: 1})
	bus.PublishParametersReady(ParametersReadyEvent{ComponentID: 1})
	bus.Close()
}

func TestSubjectPrefixing(t *testing.T) {
	bus := &Bus{prefix: "groundstation"}
	if got := bus.subject("identity_changed"); got != "groundstation.identity_changed" {
		t.Fatalf("subject() = %q, want prefixed subject", got)
	}

	unprefixed := &Bus{}
	if got := unprefixed.subject("identity_changed"); got != "identity_changed" {
		t.Fatalf("subject() = %q, want bare name with no prefix", got)
	}
}

func TestConnectInvalidURLErrors(t *testing.T) {
	if _, err := Connect("not-a-valid-nats-url", "groundstation", nil); err == nil {
		t.Fatal("expected Connect() to fail for a malformed URL")
	}
}
