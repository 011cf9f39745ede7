package telemetry

import "github.com/flightpath-dev/groundstation-core/internal/field"

// WindGroup exists for hierarchy completeness among the vehicle's canonical
// sub-groups, but has no dedicated MAVLink message
// wired to it in this build: no dialect message in the pack carried wind
// estimates directly usable without a dedicated wind-estimation filter, and
// adding one is out of scope here. HandleMessage always reports false; the
// group exists so callers that walk Vehicle's sub-group set (e.g. FlatFields
// consumers) see a stable "wind" entry instead of a hole.
type WindGroup struct {
	*field.Group

	speed, direction, speedZ *field.Field
}

func NewWindGroup(componentID uint8) *WindGroup {
	g := &WindGroup{Group: field.NewGroup("wind", 0, false)}

	g.speed = newField(g.Group, componentID, "speed", "m/s")
	g.direction = newField(g.Group, componentID, "direction", "deg")
	g.speedZ = newField(g.Group, componentID, "speedZ", "m/s")

	return g
}

func (g *WindGroup) HandleMessage(msg interface{}) bool {
	return false
}
