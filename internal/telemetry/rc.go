package telemetry

import (
	"strconv"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

const maxRCChannels = 18

// RCGroup covers RC_CHANNELS, RC_CHANNELS_RAW and RADIO_STATUS.
type RCGroup struct {
	*field.Group

	channel  [maxRCChannels]*field.Field
	rssi     *field.Field
	remRssi  *field.Field
	noise    *field.Field
	remNoise *field.Field
	rxErrors *field.Field
	fixed    *field.Field
}

func NewRCGroup(componentID uint8) *RCGroup {
	g := &RCGroup{Group: field.NewGroup("rc", 0, false)}

	for i := 0; i < maxRCChannels; i++ {
		g.channel[i] = newIntField(g.Group, componentID, "channel"+strconv.Itoa(i+1), "us")
	}
	g.rssi = newIntField(g.Group, componentID, "rssi", "")
	g.remRssi = newIntField(g.Group, componentID, "remoteRssi", "")
	g.noise = newIntField(g.Group, componentID, "noise", "")
	g.remNoise = newIntField(g.Group, componentID, "remoteNoise", "")
	g.rxErrors = newIntField(g.Group, componentID, "rxErrors", "")
	g.fixed = newIntField(g.Group, componentID, "fixedErrors", "")

	return g
}

func (g *RCGroup) HandleMessage(msg interface{}) bool {
	switch m := msg.(type) {
	case *common.MessageRcChannels:
		raws := [maxRCChannels]uint16{
			m.Chan1Raw, m.Chan2Raw, m.Chan3Raw, m.Chan4Raw, m.Chan5Raw, m.Chan6Raw,
			m.Chan7Raw, m.Chan8Raw, m.Chan9Raw, m.Chan10Raw, m.Chan11Raw, m.Chan12Raw,
			m.Chan13Raw, m.Chan14Raw, m.Chan15Raw, m.Chan16Raw, m.Chan17Raw, m.Chan18Raw,
		}
		n := int(m.Chancount)
		if n > maxRCChannels {
			n = maxRCChannels
		}
		for i := 0; i < n; i++ {
			if raws[i] == 0 {
				continue
			}
			setI(g.channel[i], int32(raws[i]))
		}
		if m.Rssi != 255 {
			setI(g.rssi, int32(m.Rssi))
		}
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageRcChannelsRaw:
		raws := [8]uint16{m.Chan1Raw, m.Chan2Raw, m.Chan3Raw, m.Chan4Raw, m.Chan5Raw, m.Chan6Raw, m.Chan7Raw, m.Chan8Raw}
		for i, v := range raws {
			if v == 0 {
				continue
			}
			setI(g.channel[i], int32(v))
		}
		if m.Rssi != 255 {
			setI(g.rssi, int32(m.Rssi))
		}
		return true

	case *common.MessageRadioStatus:
		setI(g.rssi, int32(m.Rssi))
		setI(g.remRssi, int32(m.Remrssi))
		setI(g.noise, int32(m.Noise))
		setI(g.remNoise, int32(m.Remnoise))
		setI(g.rxErrors, int32(m.Rxerrors))
		setI(g.fixed, int32(m.Fixed))
		return true

	default:
		return false
	}
}
