// Package param implements the parameter synchronization state machine: a
// retrying, index-batched, cache-authenticated protocol that brings a
// possibly-thousands-entry vehicle parameter table into sync and keeps
// writes ordered.
package param

import (
	"math"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

const (
	initialRequestTimeout = 5 * time.Second
	waitingParamTimeout   = 3 * time.Second

	initialRequestRetryMax = 4
	singleParamRetryMax    = 5

	maxBatchSize = 10

	unsolicitedIndex = 65535

	hashCheckName = "_HASH_CHECK"
)

// Sender abstracts the transport's outbound path so the manager can be unit
// tested without a live socket.
type Sender interface {
	Send(msg message.Message) error
}

// Callbacks mirrors the embedder-facing closures that pertain to parameter
// synchronization.
type Callbacks struct {
	Ready             func(ready bool)
	Progress          func(fraction float64)
	FieldAdded        func(componentID uint8, f *field.Field)
	FieldValueChanged func(groupName, name string, cooked field.TypedValue)
}

// mavParamTypeForKind maps a field.Kind to the MAV_PARAM_TYPE wire byte.
// KindBool, KindString and KindBytes have no
// parameter-protocol representation and fall through to REAL32; parameter
// fields are only created with the kinds kindForMavParamType returns, and
// Set encodes with the field's own kind, so Set never passes them.
func mavParamTypeForKind(k field.Kind) uint8 {
	switch k {
	case field.KindUint8:
		return uint8(common.MAV_PARAM_TYPE_UINT8)
	case field.KindInt8:
		return uint8(common.MAV_PARAM_TYPE_INT8)
	case field.KindUint16:
		return uint8(common.MAV_PARAM_TYPE_UINT16)
	case field.KindInt16:
		return uint8(common.MAV_PARAM_TYPE_INT16)
	case field.KindUint32:
		return uint8(common.MAV_PARAM_TYPE_UINT32)
	case field.KindInt32:
		return uint8(common.MAV_PARAM_TYPE_INT32)
	case field.KindUint64:
		return uint8(common.MAV_PARAM_TYPE_UINT64)
	case field.KindInt64:
		return uint8(common.MAV_PARAM_TYPE_INT64)
	case field.KindFloat32:
		return uint8(common.MAV_PARAM_TYPE_REAL32)
	case field.KindFloat64:
		return uint8(common.MAV_PARAM_TYPE_REAL64)
	default:
		return uint8(common.MAV_PARAM_TYPE_REAL32)
	}
}

func kindForMavParamType(t uint8) field.Kind {
	switch common.MAV_PARAM_TYPE(t) {
	case common.MAV_PARAM_TYPE_UINT8:
		return field.KindUint8
	case common.MAV_PARAM_TYPE_INT8:
		return field.KindInt8
	case common.MAV_PARAM_TYPE_UINT16:
		return field.KindUint16
	case common.MAV_PARAM_TYPE_INT16:
		return field.KindInt16
	case common.MAV_PARAM_TYPE_UINT32:
		return field.KindUint32
	case common.MAV_PARAM_TYPE_INT32:
		return field.KindInt32
	case common.MAV_PARAM_TYPE_UINT64:
		return field.KindUint64
	case common.MAV_PARAM_TYPE_INT64:
		return field.KindInt64
	case common.MAV_PARAM_TYPE_REAL32:
		return field.KindFloat32
	case common.MAV_PARAM_TYPE_REAL64:
		return field.KindFloat64
	default:
		return field.KindFloat32
	}
}

// encodeParamValue packs v's bits into the wire float32, per the MAVLink
// parameter protocol's long-standing convention of reinterpreting (not
// numerically casting) non-float types through the four bytes of param_value.
func encodeParamValue(v field.TypedValue) float32 {
	var bits uint32
	switch v.Kind {
	case field.KindUint8:
		bits = uint32(v.Uint8())
	case field.KindInt8:
		bits = uint32(uint8(v.Int8()))
	case field.KindUint16:
		bits = uint32(v.Uint16())
	case field.KindInt16:
		bits = uint32(uint16(v.Int16()))
	case field.KindUint32:
		bits = v.Uint32()
	case field.KindInt32:
		bits = uint32(v.Int32())
	case field.KindUint64:
		bits = uint32(v.Uint64())
	case field.KindInt64:
		bits = uint32(v.Int64())
	case field.KindFloat32:
		return v.Float32()
	case field.KindFloat64:
		return float32(v.Float64())
	default:
		bits = 0
	}
	return math.Float32frombits(bits)
}

// decodeParamValue is the inverse of encodeParamValue for a given wire type.
func decodeParamValue(paramType uint8, wire float32) field.TypedValue {
	kind := kindForMavParamType(paramType)
	bits := math.Float32bits(wire)
	switch kind {
	case field.KindUint8:
		return field.FromUint8(uint8(bits))
	case field.KindInt8:
		return field.FromInt8(int8(bits))
	case field.KindUint16:
		return field.FromUint16(uint16(bits))
	case field.KindInt16:
		return field.FromInt16(int16(bits))
	case field.KindUint32:
		return field.FromUint32(bits)
	case field.KindInt32:
		return field.FromInt32(int32(bits))
	case field.KindUint64:
		return field.FromUint64(uint64(bits))
	case field.KindInt64:
		return field.FromInt64(int64(int32(bits)))
	case field.KindFloat32:
		return field.FromFloat32(wire)
	case field.KindFloat64:
		return field.FromFloat64(float64(wire))
	default:
		return field.FromFloat32(wire)
	}
}
