// Package vehicle wires transport, telemetry and parameter synchronization
// into the root telemetry group, dispatching decoded messages to the right
// sub-group and to the parameter manager.
package vehicle

import (
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/flightpath-dev/groundstation-core/internal/boardid"
	"github.com/flightpath-dev/groundstation-core/internal/field"
	"github.com/flightpath-dev/groundstation-core/internal/param"
	"github.com/flightpath-dev/groundstation-core/internal/telemetry"
)

const rootUpdatePeriod = 100 * time.Millisecond

// Severity is the decoded STATUSTEXT severity level.
type Severity int

const (
	SeverityEmergency Severity = iota
	SeverityAlert
	SeverityCritical
	SeverityError
	SeverityWarning
	SeverityNotice
	SeverityInfo
	SeverityDebug
	SeverityUnknown
)

func (s Severity) String() string {
	switch s {
	case SeverityEmergency:
		return "EMERGENCY"
	case SeverityAlert:
		return "ALERT"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityNotice:
		return "NOTICE"
	case SeverityInfo:
		return "INFO"
	case SeverityDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

func severityFromWire(v uint8) Severity {
	if v > uint8(SeverityDebug) {
		return SeverityUnknown
	}
	return Severity(v)
}

// Identity holds the vehicle's heartbeat- and AUTOPILOT_VERSION-derived
// state.
type Identity struct {
	SystemID        uint8
	ComponentID     uint8
	VehicleType     uint8
	Autopilot       uint8
	BaseMode        uint8
	CustomMode      uint32
	SystemStatus    uint8
	ProtocolVersion uint8

	Capabilities         uint64
	UID                  uint64
	FlightSWVersion      uint32
	MiddlewareSWVersion  uint32
	OSSWVersion          uint32
	BoardVersion         uint32
	VendorID             uint16
	ProductID            uint16
	FlightCustomVersion  [8]byte
	HaveAutopilotVersion bool

	// BoardName is resolved from VendorID/ProductID via internal/boardid
	// once AUTOPILOT_VERSION has been received.
	BoardName string
}

// Sender abstracts the transport's outbound path.
type Sender interface {
	Send(msg message.Message) error
}

// Callbacks mirrors the remaining embedder-facing closures not already
// covered by param.Callbacks.
type Callbacks struct {
	IdentityChanged func(Identity)
	TextMessage     func(severity Severity, text string)
}

// Vehicle is the root FieldGroup: a 100ms-period group that
// owns every concrete telemetry group plus the ParameterManager, and
// dispatches every decoded message to the right place.
type Vehicle struct {
	*field.Group

	send   Sender
	logger *log.Logger
	cb     Callbacks

	mu       sync.Mutex
	identity Identity

	firstHeartbeatSeen bool
	lastHeartbeatTime  time.Time

	Attitude    *telemetry.AttitudeGroup
	GPS         *telemetry.GPSGroup
	GPS2        *telemetry.GPSGroup
	Battery     *telemetry.BatteryGroup
	System      *telemetry.SystemStatusGroup
	RC          *telemetry.RCGroup
	Vibration   *telemetry.VibrationGroup
	Temperature *telemetry.TemperatureGroup
	Estimator   *telemetry.EstimatorStatusGroup
	Wind        *telemetry.WindGroup

	Parameters *param.Manager
}

// New constructs a Vehicle for componentID, wired to send outbound messages
// through sender and cacheDir for the parameter manager's cache files.
func New(componentID uint8, systemID uint8, sender Sender, cacheDir string, cb Callbacks, paramCB param.Callbacks, logger *log.Logger) *Vehicle {
	if logger == nil {
		logger = log.Default()
	}

	v := &Vehicle{
		Group:  field.NewGroup("vehicle", rootUpdatePeriod, false),
		send:   sender,
		logger: logger,
		cb:     cb,
	}

	v.Attitude = telemetry.NewAttitudeGroup(componentID)
	v.GPS = telemetry.NewGPSGroup(componentID, "gps")
	v.GPS2 = telemetry.NewGPSGroup(componentID, "gps2")
	v.Battery = telemetry.NewBatteryGroup(componentID)
	v.System = telemetry.NewSystemStatusGroup(componentID)
	v.RC = telemetry.NewRCGroup(componentID)
	v.Vibration = telemetry.NewVibrationGroup(componentID)
	v.Temperature = telemetry.NewTemperatureGroup(componentID, "temperature")
	v.Estimator = telemetry.NewEstimatorStatusGroup(componentID)
	v.Wind = telemetry.NewWindGroup(componentID)

	for _, sub := range []*field.Group{
		v.Attitude.Group, v.GPS.Group, v.GPS2.Group, v.Battery.Group,
		v.System.Group, v.RC.Group, v.Vibration.Group, v.Temperature.Group,
		v.Estimator.Group, v.Wind.Group,
	} {
		v.AddSubGroup(sub)
	}

	v.Parameters = param.New(sender, systemID, cacheDir, paramCB, logger)

	return v
}

// HandleMessage dispatches msg
func (v *Vehicle) HandleMessage(msg message.Message, systemID, componentID uint8) {
	switch m := msg.(type) {
	case *common.MessageHeartbeat:
		v.handleHeartbeat(m, systemID, componentID)

	case *common.MessageAutopilotVersion:
		v.handleAutopilotVersion(m)

	case *common.MessageStatustext:
		if v.cb.TextMessage != nil {
			v.cb.TextMessage(severityFromWire(uint8(m.Severity)), m.Text)
		}

	case *common.MessageCommandAck:
		// Only logged; the ack is not stored.
		v.logger.Printf("vehicle: command %d ack result %d", m.Command, m.Result)

	case *common.MessageParamValue:
		v.Parameters.HandleParamValue(componentID, m)

	default:
		v.dispatchToGroups(msg)
		// Anything not handled by a named case goes to the telemetry
		// groups only. The parameter manager acts on PARAM_VALUE alone,
		// which reaches it through its own case above.
	}
}

func (v *Vehicle) dispatchToGroups(msg message.Message) {
	groups := []interface{ HandleMessage(interface{}) bool }{
		v.Attitude, v.GPS, v.GPS2, v.Battery, v.System, v.RC, v.Vibration, v.Temperature, v.Estimator, v.Wind,
	}
	for _, g := range groups {
		g.HandleMessage(msg)
	}
}

func (v *Vehicle) handleHeartbeat(m *common.MessageHeartbeat, systemID, componentID uint8) {
	v.mu.Lock()
	prev := v.identity
	v.identity.SystemID = systemID
	v.identity.ComponentID = componentID
	v.identity.VehicleType = uint8(m.Type)
	v.identity.Autopilot = uint8(m.Autopilot)
	v.identity.BaseMode = uint8(m.BaseMode)
	v.identity.CustomMode = m.CustomMode
	v.identity.SystemStatus = uint8(m.SystemStatus)
	v.identity.ProtocolVersion = m.MavlinkVersion
	changed := prev != v.identity
	v.lastHeartbeatTime = time.Now()
	first := !v.firstHeartbeatSeen
	v.firstHeartbeatSeen = true
	v.mu.Unlock()

	v.MarkTelemetryAvailable()

	if changed && v.cb.IdentityChanged != nil {
		v.cb.IdentityChanged(v.Identity())
	}

	if first {
		v.Parameters.RefreshAll(0)
		v.requestAutopilotVersion(componentID)
	}
}

func (v *Vehicle) handleAutopilotVersion(m *common.MessageAutopilotVersion) {
	v.mu.Lock()
	v.identity.Capabilities = uint64(m.Capabilities)
	v.identity.UID = m.Uid
	v.identity.FlightSWVersion = m.FlightSwVersion
	v.identity.MiddlewareSWVersion = m.MiddlewareSwVersion
	v.identity.OSSWVersion = m.OsSwVersion
	v.identity.BoardVersion = m.BoardVersion
	v.identity.VendorID = m.VendorId
	v.identity.ProductID = m.ProductId
	copy(v.identity.FlightCustomVersion[:], m.FlightCustomVersion[:])
	v.identity.HaveAutopilotVersion = true
	v.identity.BoardName = boardid.Identify(v.identity.VendorID, v.identity.ProductID)
	identity := v.identity
	v.mu.Unlock()

	if v.cb.IdentityChanged != nil {
		v.cb.IdentityChanged(identity)
	}
}

func (v *Vehicle) requestAutopilotVersion(targetComponent uint8) {
	_ = v.send.Send(&common.MessageCommandLong{
		TargetSystem:    v.identity.SystemID,
		TargetComponent: targetComponent,
		Command:         common.MAV_CMD_REQUEST_AUTOPILOT_CAPABILITIES,
		Confirmation:    0,
		Param1:          1,
	})
}

// Identity returns a snapshot of the vehicle's current identity state.
func (v *Vehicle) Identity() Identity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.identity
}

// LastHeartbeatTime returns when the last HEARTBEAT was processed.
func (v *Vehicle) LastHeartbeatTime() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastHeartbeatTime
}

// softwareVersionTypes maps the version type byte (v & 0xFF) to its label.
var softwareVersionTypes = []string{"dev", "alpha", "beta", "rc", "release"}

// SoftwareVersionString renders a packed MAVLink version number as
// "major.minor.patch (type)"
func SoftwareVersionString(version uint32) string {
	major := (version >> 24) & 0xff
	minor := (version >> 16) & 0xff
	patch := (version >> 8) & 0xff
	typ := version & 0xff
	label := "unknown"
	if int(typ) < len(softwareVersionTypes) {
		label = softwareVersionTypes[typ]
	}
	return fmt.Sprintf("%d.%d.%d (%s)", major, minor, patch, label)
}

// FlightCustomVersionString renders the 8-byte flight_custom_version as
// lowercase hex
func FlightCustomVersionString(v [8]byte) string {
	return hex.EncodeToString(v[:])
}
