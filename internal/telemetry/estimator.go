package telemetry

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// estimatorFlagFields enumerates the ESTIMATOR_STATUS_FLAGS bits, in bit
// order, named after VehicleEstimatorStatusFactGroup's individual flag facts.
var estimatorFlagFields = []string{
	"flagsAttitude", "flagsVelocityHoriz", "flagsVelocityVert", "flagsPosHorizRel",
	"flagsPosHorizAbs", "flagsPosVertAbs", "flagsPosVertAGL", "flagsConstPosMode",
	"flagsPredPosHorizRel", "flagsPredPosHorizAbs", "flagsGps", "flagsAccelError",
}

// EstimatorStatusGroup covers ESTIMATOR_STATUS.
type EstimatorStatusGroup struct {
	*field.Group

	flags *field.Field
	flag  [len(estimatorFlagFields)]*field.Field

	velocityRatio, posHorizRatio, posVertRatio, magRatio, haglRatio, tasRatio *field.Field
	posHorizAccuracy, posVertAccuracy                                         *field.Field
}

func NewEstimatorStatusGroup(componentID uint8) *EstimatorStatusGroup {
	g := &EstimatorStatusGroup{Group: field.NewGroup("estimatorStatus", 0, false)}

	g.flags = newIntField(g.Group, componentID, "flags", "")
	for i, name := range estimatorFlagFields {
		g.flag[i] = newBoolField(g.Group, componentID, name)
	}

	g.velocityRatio = newField(g.Group, componentID, "velocityRatio", "")
	g.posHorizRatio = newField(g.Group, componentID, "posHorizRatio", "")
	g.posVertRatio = newField(g.Group, componentID, "posVertRatio", "")
	g.magRatio = newField(g.Group, componentID, "magRatio", "")
	g.haglRatio = newField(g.Group, componentID, "haglRatio", "")
	g.tasRatio = newField(g.Group, componentID, "tasRatio", "")
	g.posHorizAccuracy = newField(g.Group, componentID, "posHorizAccuracy", "m")
	g.posVertAccuracy = newField(g.Group, componentID, "posVertAccuracy", "m")

	return g
}

func (g *EstimatorStatusGroup) HandleMessage(msg interface{}) bool {
	m, ok := msg.(*common.MessageEstimatorStatus)
	if !ok {
		return false
	}

	bits := uint16(m.Flags)
	setI(g.flags, int32(bits))
	for i := range estimatorFlagFields {
		bit := uint16(1) << uint(i)
		setB(g.flag[i], bits&bit != 0)
	}

	setF(g.velocityRatio, float64(m.VelRatio))
	setF(g.posHorizRatio, float64(m.PosHorizRatio))
	setF(g.posVertRatio, float64(m.PosVertRatio))
	setF(g.magRatio, float64(m.MagRatio))
	setF(g.haglRatio, float64(m.HaglRatio))
	setF(g.tasRatio, float64(m.TasRatio))
	setF(g.posHorizAccuracy, float64(m.PosHorizAccuracy))
	setF(g.posVertAccuracy, float64(m.PosVertAccuracy))

	g.MarkTelemetryAvailable()
	return true
}
