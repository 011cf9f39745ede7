package telemetry

import (
	"math"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
	"gonum.org/v1/gonum/num/quat"
)

// AttitudeGroup covers orientation, altitude and IMU telemetry: ATTITUDE,
// ATTITUDE_QUATERNION, ALTITUDE, VFR_HUD, RAW_IMU, SCALED_IMU2, SCALED_IMU3
// and NAV_CONTROLLER_OUTPUT.
type AttitudeGroup struct {
	*field.Group

	roll, pitch, yaw          *field.Field
	rollRate, pitchRate, yawRate *field.Field

	altitudeMsl, altitudeRelative, altitudeTerrain *field.Field

	heading, groundspeed, airspeed, throttle, climbRate *field.Field

	navRoll, navPitch, navBearing, targetBearing, wpDistance *field.Field

	accel [3]*field.Field
	gyro  [3]*field.Field
	mag   [3]*field.Field
}

// NewAttitudeGroup builds the group and registers all of its fields under
// componentID.
func NewAttitudeGroup(componentID uint8) *AttitudeGroup {
	g := &AttitudeGroup{Group: field.NewGroup("vehicle", 0, false)}

	g.roll = newField(g.Group, componentID, "roll", "deg")
	g.pitch = newField(g.Group, componentID, "pitch", "deg")
	g.yaw = newField(g.Group, componentID, "yaw", "deg")
	g.rollRate = newField(g.Group, componentID, "rollRate", "deg/s")
	g.pitchRate = newField(g.Group, componentID, "pitchRate", "deg/s")
	g.yawRate = newField(g.Group, componentID, "yawRate", "deg/s")

	g.altitudeMsl = newField(g.Group, componentID, "altitudeAMSL", "m")
	g.altitudeRelative = newField(g.Group, componentID, "altitudeRelative", "m")
	g.altitudeTerrain = newField(g.Group, componentID, "altitudeAboveTerr", "m")

	g.heading = newField(g.Group, componentID, "heading", "deg")
	g.groundspeed = newField(g.Group, componentID, "groundSpeed", "m/s")
	g.airspeed = newField(g.Group, componentID, "airSpeed", "m/s")
	g.throttle = newField(g.Group, componentID, "throttlePct", "%")
	g.climbRate = newField(g.Group, componentID, "climbRate", "m/s")

	g.navRoll = newField(g.Group, componentID, "navRoll", "deg")
	g.navPitch = newField(g.Group, componentID, "navPitch", "deg")
	g.navBearing = newField(g.Group, componentID, "navBearing", "deg")
	g.targetBearing = newField(g.Group, componentID, "targetBearing", "deg")
	g.wpDistance = newField(g.Group, componentID, "waypointDistance", "m")

	for i, axis := range []string{"X", "Y", "Z"} {
		g.accel[i] = newField(g.Group, componentID, "accel"+axis, "m/s/s")
		g.gyro[i] = newField(g.Group, componentID, "gyro"+axis, "deg/s")
		g.mag[i] = newField(g.Group, componentID, "mag"+axis, "mgauss")
	}

	return g
}

// HandleMessage decodes the subset of messages this group cares about and
// returns true if msg was recognized.
func (g *AttitudeGroup) HandleMessage(msg interface{}) bool {
	switch m := msg.(type) {
	case *common.MessageAttitude:
		setF(g.roll, radToDeg(float64(m.Roll)))
		setF(g.pitch, radToDeg(float64(m.Pitch)))
		setF(g.yaw, normalizeHeading(radToDeg(float64(m.Yaw))))
		setF(g.rollRate, radToDeg(float64(m.Rollspeed)))
		setF(g.pitchRate, radToDeg(float64(m.Pitchspeed)))
		setF(g.yawRate, radToDeg(float64(m.Yawspeed)))
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageAttitudeQuaternion:
		q := quat.Number{Real: float64(m.Q1), Imag: float64(m.Q2), Jmag: float64(m.Q3), Kmag: float64(m.Q4)}
		roll, pitch, yaw := quaternionToEuler(q)
		setF(g.roll, radToDeg(roll))
		setF(g.pitch, radToDeg(pitch))
		setF(g.yaw, normalizeHeading(radToDeg(yaw)))
		setF(g.rollRate, radToDeg(float64(m.Rollspeed)))
		setF(g.pitchRate, radToDeg(float64(m.Pitchspeed)))
		setF(g.yawRate, radToDeg(float64(m.Yawspeed)))
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageAltitude:
		setF(g.altitudeMsl, float64(m.AltitudeAmsl))
		setF(g.altitudeRelative, float64(m.AltitudeRelative))
		setF(g.altitudeTerrain, float64(m.AltitudeTerrain))
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageVfrHud:
		setF(g.heading, normalizeHeading(float64(m.Heading)))
		setF(g.groundspeed, float64(m.Groundspeed))
		setF(g.airspeed, float64(m.Airspeed))
		setF(g.throttle, float64(m.Throttle))
		setF(g.climbRate, float64(m.Climb))
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageNavControllerOutput:
		setF(g.navRoll, float64(m.NavRoll))
		setF(g.navPitch, float64(m.NavPitch))
		setF(g.navBearing, normalizeHeading(float64(m.NavBearing)))
		setF(g.targetBearing, normalizeHeading(float64(m.TargetBearing)))
		setF(g.wpDistance, float64(m.WpDist))
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageRawImu:
		setF(g.accel[0], float64(m.Xacc))
		setF(g.accel[1], float64(m.Yacc))
		setF(g.accel[2], float64(m.Zacc))
		setF(g.gyro[0], radToDeg(float64(m.Xgyro)/1000.0))
		setF(g.gyro[1], radToDeg(float64(m.Ygyro)/1000.0))
		setF(g.gyro[2], radToDeg(float64(m.Zgyro)/1000.0))
		setF(g.mag[0], float64(m.Xmag))
		setF(g.mag[1], float64(m.Ymag))
		setF(g.mag[2], float64(m.Zmag))
		return true

	case *common.MessageScaledImu2:
		setF(g.accel[0], float64(m.Xacc)/1000.0*9.80665)
		setF(g.accel[1], float64(m.Yacc)/1000.0*9.80665)
		setF(g.accel[2], float64(m.Zacc)/1000.0*9.80665)
		return true

	case *common.MessageScaledImu3:
		setF(g.accel[0], float64(m.Xacc)/1000.0*9.80665)
		setF(g.accel[1], float64(m.Yacc)/1000.0*9.80665)
		setF(g.accel[2], float64(m.Zacc)/1000.0*9.80665)
		return true

	default:
		return false
	}
}

// quaternionToEuler converts a unit quaternion (w,x,y,z) to roll/pitch/yaw
// radians using the standard aerospace ZYX convention. gonum's quat.Number
// carries the value through the call; the trigonometric decomposition itself
// has no direct gonum equivalent and is applied by hand here.
func quaternionToEuler(q quat.Number) (roll, pitch, yaw float64) {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (w*y - z*x)
	switch {
	case sinp >= 1:
		pitch = math.Pi / 2
	case sinp <= -1:
		pitch = -math.Pi / 2
	default:
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (w*z + x*y)
	cosyCosp := 1 - 2*(y*y+z*z)
	yaw = math.Atan2(sinyCosp, cosyCosp)
	return roll, pitch, yaw
}
