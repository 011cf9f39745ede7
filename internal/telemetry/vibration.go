package telemetry

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// VibrationGroup covers the VIBRATION message.
type VibrationGroup struct {
	*field.Group

	vibeX, vibeY, vibeZ                      *field.Field
	clipping0, clipping1, clipping2          *field.Field
}

func NewVibrationGroup(componentID uint8) *VibrationGroup {
	g := &VibrationGroup{Group: field.NewGroup("vibration", 0, false)}

	g.vibeX = newField(g.Group, componentID, "vibrationX", "")
	g.vibeY = newField(g.Group, componentID, "vibrationY", "")
	g.vibeZ = newField(g.Group, componentID, "vibrationZ", "")
	g.clipping0 = newIntField(g.Group, componentID, "clipping0", "")
	g.clipping1 = newIntField(g.Group, componentID, "clipping1", "")
	g.clipping2 = newIntField(g.Group, componentID, "clipping2", "")

	return g
}

func (g *VibrationGroup) HandleMessage(msg interface{}) bool {
	m, ok := msg.(*common.MessageVibration)
	if !ok {
		return false
	}
	setF(g.vibeX, float64(m.VibrationX))
	setF(g.vibeY, float64(m.VibrationY))
	setF(g.vibeZ, float64(m.VibrationZ))
	setI(g.clipping0, int32(m.Clipping0))
	setI(g.clipping1, int32(m.Clipping1))
	setI(g.clipping2, int32(m.Clipping2))
	g.MarkTelemetryAvailable()
	return true
}
