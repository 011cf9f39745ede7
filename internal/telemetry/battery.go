package telemetry

import (
	"strconv"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

const maxBatteryCells = 14

// BatteryGroup covers BATTERY_STATUS, BATTERY2, SMART_BATTERY_INFO and the
// battery-relevant subset of SYS_STATUS. BATTERY_STATUS
// carries up to 10 cells in Voltages plus 4 more in VoltagesExt, which is
// where the 14-cell ceiling comes from.
type BatteryGroup struct {
	*field.Group

	voltage, current, consumed, energyConsumed *field.Field
	percent, timeRemaining                     *field.Field
	temperature                                 *field.Field
	cellVoltage [maxBatteryCells]*field.Field

	capacityFull, cycleCount *field.Field
}

func NewBatteryGroup(componentID uint8) *BatteryGroup {
	g := &BatteryGroup{Group: field.NewGroup("battery", 0, false)}

	g.voltage = newField(g.Group, componentID, "voltage", "V")
	g.current = newField(g.Group, componentID, "current", "A")
	g.consumed = newField(g.Group, componentID, "consumed", "mAh")
	g.energyConsumed = newField(g.Group, componentID, "energyConsumed", "hJ")
	g.percent = newIntField(g.Group, componentID, "percent", "%")
	g.timeRemaining = newIntField(g.Group, componentID, "timeRemaining", "s")
	g.temperature = newField(g.Group, componentID, "temperature", "degC")
	g.capacityFull = newIntField(g.Group, componentID, "fullChargeCapacity", "mAh")
	g.cycleCount = newIntField(g.Group, componentID, "cycleCount", "")

	for i := 0; i < maxBatteryCells; i++ {
		g.cellVoltage[i] = newField(g.Group, componentID, "cellVoltage"+strconv.Itoa(i), "V")
	}

	return g
}

func (g *BatteryGroup) HandleMessage(msg interface{}) bool {
	switch m := msg.(type) {
	case *common.MessageBatteryStatus:
		setF(g.current, float64(m.CurrentBattery)/100.0)
		setF(g.consumed, float64(m.CurrentConsumed))
		setF(g.energyConsumed, float64(m.EnergyConsumed))
		setI(g.percent, int32(m.BatteryRemaining))
		setI(g.timeRemaining, m.TimeRemaining)
		setF(g.temperature, float64(m.Temperature)/100.0)

		sumMillivolts := 0
		for i, mv := range m.Voltages {
			if i >= maxBatteryCells || mv == 0xFFFF {
				continue
			}
			setF(g.cellVoltage[i], float64(mv)/1000.0)
			sumMillivolts += int(mv)
		}
		for i, mv := range m.VoltagesExt {
			idx := len(m.Voltages) + i
			if idx >= maxBatteryCells || mv == 0 {
				continue
			}
			setF(g.cellVoltage[idx], float64(mv)/1000.0)
			sumMillivolts += int(mv)
		}
		setF(g.voltage, float64(sumMillivolts)/1000.0)
		g.MarkTelemetryAvailable()
		return true

	case *common.MessageBattery2:
		setF(g.voltage, float64(m.VoltageBattery)/1000.0)
		setF(g.current, float64(m.CurrentBattery)/100.0)
		return true

	case *common.MessageSmartBatteryInfo:
		setI(g.capacityFull, m.CapacityFullSpecification)
		setI(g.cycleCount, int32(m.CycleCount))
		return true

	case *common.MessageSysStatus:
		if m.VoltageBattery != 0xFFFF {
			setF(g.voltage, float64(m.VoltageBattery)/1000.0)
		}
		if m.CurrentBattery != -1 {
			setF(g.current, float64(m.CurrentBattery)/100.0)
		}
		if m.BatteryRemaining >= 0 {
			setI(g.percent, int32(m.BatteryRemaining))
		}
		return true

	default:
		return false
	}
}
