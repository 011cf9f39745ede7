package telemetry

import (
	"strconv"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

const maxSatellites = 20

// GPSGroup covers one GPS receiver's worth of telemetry: GPS_RAW_INT,
// GPS2_RAW, GLOBAL_POSITION_INT and GPS_STATUS; HIGH_LATENCY2 is not
// decoded. A vehicle with a second GPS attaches a
// second instance under the "gps2" group name.
type GPSGroup struct {
	*field.Group

	fixType                                    *field.Field
	lat, lon, alt, altEllipsoid                *field.Field
	eph, epv, groundSpeed, course, heading     *field.Field
	satellitesVisible                          *field.Field
	horizAccuracy, vertAccuracy, speedAccuracy *field.Field
	yawAccuracy                                *field.Field
	relLat, relLon, relAlt, relVx, relVy, relVz *field.Field

	satPRN  [maxSatellites]*field.Field
	satUsed [maxSatellites]*field.Field
	satElev [maxSatellites]*field.Field
	satAzim [maxSatellites]*field.Field
	satSNR  [maxSatellites]*field.Field
}

// NewGPSGroup builds a GPS telemetry group named groupName ("gps" or "gps2").
func NewGPSGroup(componentID uint8, groupName string) *GPSGroup {
	g := &GPSGroup{Group: field.NewGroup(groupName, 0, false)}

	g.fixType = newIntField(g.Group, componentID, "fixType", "")
	g.lat = newField(g.Group, componentID, "lat", "deg")
	g.lon = newField(g.Group, componentID, "lon", "deg")
	g.alt = newField(g.Group, componentID, "alt", "m")
	g.altEllipsoid = newField(g.Group, componentID, "altEllipsoid", "m")
	g.eph = newField(g.Group, componentID, "eph", "m")
	g.epv = newField(g.Group, componentID, "epv", "m")
	g.groundSpeed = newField(g.Group, componentID, "groundSpeed", "m/s")
	g.course = newField(g.Group, componentID, "course", "deg")
	g.heading = newField(g.Group, componentID, "heading", "deg")
	g.satellitesVisible = newIntField(g.Group, componentID, "satellitesVisible", "")
	g.horizAccuracy = newField(g.Group, componentID, "horizAccuracy", "m")
	g.vertAccuracy = newField(g.Group, componentID, "vertAccuracy", "m")
	g.speedAccuracy = newField(g.Group, componentID, "speedAccuracy", "m/s")
	g.yawAccuracy = newField(g.Group, componentID, "yawAccuracy", "deg")

	g.relLat = newField(g.Group, componentID, "globalLat", "deg")
	g.relLon = newField(g.Group, componentID, "globalLon", "deg")
	g.relAlt = newField(g.Group, componentID, "globalRelativeAlt", "m")
	g.relVx = newField(g.Group, componentID, "globalVx", "m/s")
	g.relVy = newField(g.Group, componentID, "globalVy", "m/s")
	g.relVz = newField(g.Group, componentID, "globalVz", "m/s")

	for i := 0; i < maxSatellites; i++ {
		suffix := strconv.Itoa(i)
		g.satPRN[i] = newIntField(g.Group, componentID, "satPrn"+suffix, "")
		g.satUsed[i] = newBoolField(g.Group, componentID, "satUsed"+suffix)
		g.satElev[i] = newIntField(g.Group, componentID, "satElevation"+suffix, "deg")
		g.satAzim[i] = newIntField(g.Group, componentID, "satAzimuth"+suffix, "deg")
		g.satSNR[i] = newIntField(g.Group, componentID, "satSnr"+suffix, "dB")
	}

	return g
}

func (g *GPSGroup) HandleMessage(msg interface{}) bool {
	switch m := msg.(type) {
	case *common.MessageGpsRawInt:
		setI(g.fixType, int32(m.FixType))
		setF(g.lat, float64(m.Lat)/1e7)
		setF(g.lon, float64(m.Lon)/1e7)
		setF(g.alt, float64(m.Alt)/1000.0)
		setF(g.altEllipsoid, float64(m.AltEllipsoid)/1000.0)
		setF(g.eph, float64(m.Eph)/100.0)
		setF(g.epv, float64(m.Epv)/100.0)
		setF(g.groundSpeed, float64(m.Vel)/100.0)
		setF(g.course, float64(m.Cog)/100.0)
		setF(g.heading, float64(m.Yaw)/100.0)
		setI(g.satellitesVisible, int32(m.SatellitesVisible))
		setF(g.horizAccuracy, float64(m.HAcc)/1000.0)
		setF(g.vertAccuracy, float64(m.VAcc)/1000.0)
		setF(g.speedAccuracy, float64(m.VelAcc)/1000.0)
		setF(g.yawAccuracy, float64(m.HdgAcc)/100000.0)
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageGps2Raw:
		setI(g.fixType, int32(m.FixType))
		setF(g.lat, float64(m.Lat)/1e7)
		setF(g.lon, float64(m.Lon)/1e7)
		setF(g.alt, float64(m.Alt)/1000.0)
		setF(g.eph, float64(m.Eph)/100.0)
		setF(g.epv, float64(m.Epv)/100.0)
		setF(g.groundSpeed, float64(m.Vel)/100.0)
		setF(g.course, float64(m.Cog)/100.0)
		setI(g.satellitesVisible, int32(m.SatellitesVisible))
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageGlobalPositionInt:
		setF(g.relLat, float64(m.Lat)/1e7)
		setF(g.relLon, float64(m.Lon)/1e7)
		setF(g.relAlt, float64(m.RelativeAlt)/1000.0)
		setF(g.relVx, float64(m.Vx)/100.0)
		setF(g.relVy, float64(m.Vy)/100.0)
		setF(g.relVz, float64(m.Vz)/100.0)
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageGpsStatus:
		setI(g.satellitesVisible, int32(m.SatellitesVisible))
		n := int(m.SatellitesVisible)
		if n > maxSatellites {
			n = maxSatellites
		}
		for i := 0; i < n; i++ {
			setI(g.satPRN[i], int32(m.SatellitePrn[i]))
			setB(g.satUsed[i], m.SatelliteUsed[i] != 0)
			setI(g.satElev[i], int32(m.SatelliteElevation[i]))
			setI(g.satAzim[i], int32(m.SatelliteAzimuth[i]))
			setI(g.satSNR[i], int32(m.SatelliteSnr[i]))
		}
		return true

	default:
		return false
	}
}
