// Package events republishes vehicle callbacks onto NATS subjects for
// collaborators living outside this process, mirroring cc-backend's
// pkg/nats connection-management shape: a thin client wrapping *nats.Conn,
// a no-address skip, and reconnect/error logging handlers.
package events

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Bus publishes groundstation domain events. A Bus constructed with no
// address is a no-op publisher, matching cc-backend's Connect() skip when
// Keys.Address is empty.
type Bus struct {
	conn   *nats.Conn
	prefix string
	logger *log.Logger
}

// Connect opens a NATS connection for publishing under subjectPrefix. An
// empty url returns a no-op Bus rather than an error, so embedders can wire
// events unconditionally and opt in only by setting the URL.
func Connect(url, subjectPrefix string, logger *log.Logger) (*Bus, error) {
	if logger == nil {
		logger = log.Default()
	}
	if url == "" {
		return &Bus{prefix: subjectPrefix, logger: logger}, nil
	}

	conn, err := nats.Connect(url,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Printf("events: NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Printf("events: NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Printf("events: NATS error: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("events: NATS connect failed: %w", err)
	}

	logger.Printf("events: NATS connected to %s", url)
	return &Bus{conn: conn, prefix: subjectPrefix, logger: logger}, nil
}

// Close closes the underlying connection, if any, without draining it.
func (b *Bus) Close() {
	if b.conn != nil {
		b.conn.Close()
	}
}

func (b *Bus) subject(name string) string {
	if b.prefix == "" {
		return name
	}
	return b.prefix + "." + name
}

func (b *Bus) publish(name string, payload any) {
	if b.conn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Printf("events: marshal %s failed: %v", name, err)
		return
	}
	if err := b.conn.Publish(b.subject(name), data); err != nil {
		b.logger.Printf("events: publish %s failed: %v", name, err)
	}
}

// FieldValueChangedEvent mirrors a field's change-notification payload.
type FieldValueChangedEvent struct {
	ComponentID uint8  `json:"component_id"`
	GroupName   string `json:"group_name"`
	FieldName   string `json:"field_name"`
	Value       string `json:"value"`
}

// PublishFieldValueChanged republishes a field_value_changed notification.
func (b *Bus) PublishFieldValueChanged(e FieldValueChangedEvent) {
	b.publish("field_value_changed", e)
}

// IdentityChangedEvent mirrors vehicle.Identity for wire transport.
type IdentityChangedEvent struct {
	SystemID     uint8  `json:"system_id"`
	ComponentID  uint8  `json:"component_id"`
	VehicleType  uint8  `json:"vehicle_type"`
	Autopilot    uint8  `json:"autopilot"`
	SystemStatus uint8  `json:"system_status"`
	BoardName    string `json:"board_name,omitempty"`
}

// PublishIdentityChanged republishes an identity_changed notification.
func (b *Bus) PublishIdentityChanged(e IdentityChangedEvent) {
	b.publish("identity_changed", e)
}

// ParametersReadyEvent reports a parameter sync cycle's outcome.
type ParametersReadyEvent struct {
	ComponentID uint8 `json:"component_id"`
	FieldCount  int   `json:"field_count"`
	Missing     bool  `json:"missing"`
}

// PublishParametersReady republishes a parameters_ready notification.
func (b *Bus) PublishParametersReady(e ParametersReadyEvent) {
	b.publish("parameters_ready", e)
}
