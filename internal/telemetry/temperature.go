package telemetry

import (
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// TemperatureGroup covers the barometer/pressure-sensor readings carried by
// SCALED_PRESSURE, SCALED_PRESSURE2 and SCALED_PRESSURE3. All three messages
// write the same three fields of one instance, so the group holds whichever
// sensor reported last; the vehicle attaches a single instance.
type TemperatureGroup struct {
	*field.Group

	pressAbs, pressDiff, temperature *field.Field
}

func NewTemperatureGroup(componentID uint8, name string) *TemperatureGroup {
	g := &TemperatureGroup{Group: field.NewGroup(name, 0, false)}

	g.pressAbs = newField(g.Group, componentID, "pressureAbsolute", "hPa")
	g.pressDiff = newField(g.Group, componentID, "pressureDifferential", "hPa")
	g.temperature = newField(g.Group, componentID, "temperature", "degC")

	return g
}

func (g *TemperatureGroup) HandleMessage(msg interface{}) bool {
	switch m := msg.(type) {
	case *common.MessageScaledPressure:
		setF(g.pressAbs, float64(m.PressAbs))
		setF(g.pressDiff, float64(m.PressDiff))
		setF(g.temperature, float64(m.Temperature)/100.0)
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageScaledPressure2:
		setF(g.pressAbs, float64(m.PressAbs))
		setF(g.pressDiff, float64(m.PressDiff))
		setF(g.temperature, float64(m.Temperature)/100.0)
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageScaledPressure3:
		setF(g.pressAbs, float64(m.PressAbs))
		setF(g.pressDiff, float64(m.PressDiff))
		setF(g.temperature, float64(m.Temperature)/100.0)
		g.MarkTelemetryAvailable()
		return true

	default:
		return false
	}
}
