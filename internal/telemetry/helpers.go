// Package telemetry holds the concrete FieldGroup specializations that
// subscribe to specific MAVLink message IDs: attitude/vehicle, GPS, GPS2,
// battery, system status, RC, vibration, temperature, estimator status and
// wind.
package telemetry

import (
	"math"

	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// newField registers and returns a float64-backed Field (KindFloat64) with
// the given raw/cooked units, attached to g under name.
func newField(g *field.Group, componentID uint8, name string, units string) *field.Field {
	f := field.New(componentID, name, field.KindFloat64)
	meta := field.NewMetadataNamed(field.KindFloat64, name)
	meta.SetUnits(units)
	f.SetMetadata(meta)
	g.AddField(f)
	return f
}

func newIntField(g *field.Group, componentID uint8, name string, units string) *field.Field {
	f := field.New(componentID, name, field.KindInt32)
	meta := field.NewMetadataNamed(field.KindInt32, name)
	meta.SetUnits(units)
	f.SetMetadata(meta)
	g.AddField(f)
	return f
}

func newBoolField(g *field.Group, componentID uint8, name string) *field.Field {
	f := field.New(componentID, name, field.KindBool)
	meta := field.NewMetadataNamed(field.KindBool, name)
	f.SetMetadata(meta)
	g.AddField(f)
	return f
}

func setF(f *field.Field, v float64) { f.SetRaw(field.FromFloat64(v)) }
func setI(f *field.Field, v int32)   { f.SetRaw(field.FromInt32(v)) }
func setB(f *field.Field, v bool)    { f.SetRaw(field.FromBool(v)) }

// normalizeHeading wraps deg into [0, 360).
func normalizeHeading(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// radToDeg converts radians to degrees without going through a Field's
// translator pair (used for values computed in-process, e.g. Euler angles).
func radToDeg(r float64) float64 { return r * 180.0 / math.Pi }
