package telemetry

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// sensorNames enumerates the MAV_SYS_STATUS_SENSOR bits this group exposes
// as individual boolean fields, in bit order.
var sensorNames = []string{
	"3dGyro", "3dAccel", "3dMag", "absolutePressure", "differentialPressure",
	"gps", "opticalFlow", "visionPosition", "laserPosition", "externalGroundTruth",
	"angularRateControl", "attitudeStabilization", "yawPosition", "zAltitudeControl",
	"xyPositionControl", "motorOutputs", "rcReceiver", "3dGyro2", "3dAccel2", "3dMag2",
	"geofence", "aHRS", "terrain", "reverseMotor", "logging", "battery", "proximity",
	"satcom", "preArmCheck", "obstacleAvoidance", "propulsion", "extensionUsed",
}

// SystemStatusGroup covers the sensor-health and load subset of SYS_STATUS.
type SystemStatusGroup struct {
	*field.Group

	sensorPresent [32]*field.Field
	sensorEnabled [32]*field.Field
	sensorHealthy [32]*field.Field

	load, dropRate, errorsComm *field.Field
}

func NewSystemStatusGroup(componentID uint8) *SystemStatusGroup {
	g := &SystemStatusGroup{Group: field.NewGroup("systemStatus", 0, false)}

	for i, name := range sensorNames {
		g.sensorPresent[i] = newBoolField(g.Group, componentID, name+"Present")
		g.sensorEnabled[i] = newBoolField(g.Group, componentID, name+"Enabled")
		g.sensorHealthy[i] = newBoolField(g.Group, componentID, name+"Healthy")
	}

	g.load = newField(g.Group, componentID, "load", "%")
	g.dropRate = newField(g.Group, componentID, "dropRateComm", "%")
	g.errorsComm = newIntField(g.Group, componentID, "errorsComm", "")

	return g
}

func (g *SystemStatusGroup) HandleMessage(msg interface{}) bool {
	m, ok := msg.(*common.MessageSysStatus)
	if !ok {
		return false
	}

	present := uint32(m.OnboardControlSensorsPresent)
	enabled := uint32(m.OnboardControlSensorsEnabled)
	healthy := uint32(m.OnboardControlSensorsHealth)
	for i := range sensorNames {
		bit := uint32(1) << uint(i)
		setB(g.sensorPresent[i], present&bit != 0)
		setB(g.sensorEnabled[i], enabled&bit != 0)
		setB(g.sensorHealthy[i], healthy&bit != 0)
	}

	setF(g.load, float64(m.Load)/10.0)
	setF(g.dropRate, float64(m.DropRateComm)/100.0)
	setI(g.errorsComm, int32(m.ErrorsComm))

	g.MarkTelemetryAvailable()
	return true
}
