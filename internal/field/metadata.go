package field

import "math"

// Translator converts a TypedValue from one representation to another
// (raw->cooked or cooked->raw). The default translator pair is identity.
type Translator func(TypedValue) TypedValue

func identityTranslator(v TypedValue) TypedValue { return v }

// CustomCookedValidator returns a non-empty error message when cooked is
// rejected, or "" on success.
type CustomCookedValidator func(cooked TypedValue) string

const (
	DefaultDecimalPlaces = 3
	UnknownDecimalPlaces = -1
)

// Metadata is the per-field descriptor: exactly one instance per logical
// field name per vehicle.
type Metadata struct {
	Type Kind

	Name             string
	ShortDescription string
	LongDescription  string
	Category         string
	Group            string

	RawMin     TypedValue
	RawMax     TypedValue
	RawDefault *TypedValue
	RawIncrement *float64

	decimalPlaces int

	RawUnits    string
	CookedUnits string

	EnumStrings []string
	EnumValues  []TypedValue

	BitmaskStrings []string
	BitmaskValues  []TypedValue

	VehicleRebootRequired bool
	GroundRebootRequired  bool
	ReadOnly              bool
	WriteOnly             bool
	Volatile              bool
	HasControl            bool

	rawToCooked         Translator
	cookedToRaw         Translator
	translatorsExplicit bool

	CustomValidator CustomCookedValidator
}

// NewMetadata is the default constructor: type = i32.
func NewMetadata() *Metadata { return NewMetadataOfType(KindInt32) }

// NewMetadataOfType constructs metadata with the given type; raw bounds
// default to the primitive's min/max.
func NewMetadataOfType(t Kind) *Metadata {
	return &Metadata{
		Type:          t,
		RawMin:        minForType(t),
		RawMax:        maxForType(t),
		decimalPlaces: UnknownDecimalPlaces,
		rawToCooked:   identityTranslator,
		cookedToRaw:   identityTranslator,
	}
}

// NewMetadataNamed constructs metadata with type and name set.
func NewMetadataNamed(t Kind, name string) *Metadata {
	m := NewMetadataOfType(t)
	m.Name = name
	return m
}

// Clone performs a full copy (the C++ original's copy constructor); Metadata
// is treated as copy-on-write by convention once installed on a Field.
func (m *Metadata) Clone() *Metadata {
	c := *m
	c.EnumStrings = append([]string(nil), m.EnumStrings...)
	c.EnumValues = append([]TypedValue(nil), m.EnumValues...)
	c.BitmaskStrings = append([]string(nil), m.BitmaskStrings...)
	c.BitmaskValues = append([]TypedValue(nil), m.BitmaskValues...)
	return &c
}

func minForType(t Kind) TypedValue {
	switch t {
	case KindUint8:
		return FromUint8(0)
	case KindInt8:
		return FromInt8(math.MinInt8)
	case KindUint16:
		return FromUint16(0)
	case KindInt16:
		return FromInt16(math.MinInt16)
	case KindUint32:
		return FromUint32(0)
	case KindInt32:
		return FromInt32(math.MinInt32)
	case KindUint64:
		return FromUint64(0)
	case KindInt64:
		return FromInt64(math.MinInt64)
	case KindFloat32:
		return FromFloat32(-math.MaxFloat32)
	case KindFloat64:
		return FromFloat64(-math.MaxFloat64)
	default:
		return Zero(t)
	}
}

func maxForType(t Kind) TypedValue {
	switch t {
	case KindUint8:
		return FromUint8(math.MaxUint8)
	case KindInt8:
		return FromInt8(math.MaxInt8)
	case KindUint16:
		return FromUint16(math.MaxUint16)
	case KindInt16:
		return FromInt16(math.MaxInt16)
	case KindUint32:
		return FromUint32(math.MaxUint32)
	case KindInt32:
		return FromInt32(math.MaxInt32)
	case KindUint64:
		return FromUint64(math.MaxUint64)
	case KindInt64:
		return FromInt64(math.MaxInt64)
	case KindFloat32:
		return FromFloat32(math.MaxFloat32)
	case KindFloat64:
		return FromFloat64(math.MaxFloat64)
	default:
		return Zero(t)
	}
}

// DecimalPlaces returns the configured decimal places, or
// DefaultDecimalPlaces when unknown.
func (m *Metadata) DecimalPlaces() int {
	if m.decimalPlaces == UnknownDecimalPlaces {
		return DefaultDecimalPlaces
	}
	return m.decimalPlaces
}

func (m *Metadata) SetDecimalPlaces(n int) { m.decimalPlaces = n }

// AddEnumInfo appends one enum entry.
func (m *Metadata) AddEnumInfo(name string, value TypedValue) {
	m.EnumStrings = append(m.EnumStrings, name)
	m.EnumValues = append(m.EnumValues, value)
}

// RemoveEnumInfo removes every enum entry whose value equals value.
func (m *Metadata) RemoveEnumInfo(value TypedValue) {
	strs := m.EnumStrings[:0]
	vals := m.EnumValues[:0]
	for i, v := range m.EnumValues {
		if !v.Equal(value) {
			strs = append(strs, m.EnumStrings[i])
			vals = append(vals, v)
		}
	}
	m.EnumStrings, m.EnumValues = strs, vals
}

func (m *Metadata) AddBitmaskInfo(name string, value TypedValue) {
	m.BitmaskStrings = append(m.BitmaskStrings, name)
	m.BitmaskValues = append(m.BitmaskValues, value)
}

func (m *Metadata) SetRawMin(v TypedValue) { m.RawMin = v }
func (m *Metadata) SetRawMax(v TypedValue) { m.RawMax = v }
func (m *Metadata) SetRawDefault(v TypedValue) {
	c := v
	m.RawDefault = &c
}

// SetUnits sets RawUnits, and also CookedUnits unless translators have
// already been installed explicitly.
func (m *Metadata) SetUnits(units string) {
	m.RawUnits = units
	if !m.translatorsExplicit {
		m.CookedUnits = units
	}
}

// SetTranslators installs an explicit raw<->cooked translator pair.
func (m *Metadata) SetTranslators(rawToCooked, cookedToRaw Translator) {
	m.rawToCooked = rawToCooked
	m.cookedToRaw = cookedToRaw
	m.translatorsExplicit = true
}

func (m *Metadata) RawToCooked() Translator { return m.rawToCooked }
func (m *Metadata) CookedToRaw() Translator { return m.cookedToRaw }

func (m *Metadata) SetCustomValidator(v CustomCookedValidator) { m.CustomValidator = v }

// CookedMin/CookedMax apply the raw->cooked translator to the raw bounds.
func (m *Metadata) CookedMin() TypedValue { return m.rawToCooked(m.RawMin) }
func (m *Metadata) CookedMax() TypedValue { return m.rawToCooked(m.RawMax) }

// ConvertAndValidateRaw coerces raw (possibly text, passed pre-parsed by the
// caller via FromString) to m.Type, then — unless convertOnly — checks raw
// bounds and invokes CustomValidator against the cooked projection.
func (m *Metadata) ConvertAndValidateRaw(raw TypedValue, convertOnly bool) (TypedValue, string) {
	v := coerce(raw, m.Type)
	if convertOnly {
		return v, ""
	}
	if !withinBounds(v, m.RawMin, m.RawMax) {
		return v, "Value out of range"
	}
	if m.CustomValidator != nil {
		if errStr := m.CustomValidator(m.rawToCooked(v)); errStr != "" {
			return v, errStr
		}
	}
	return v, ""
}

// ConvertAndValidateCooked mirrors ConvertAndValidateRaw but for a cooked
// input; bound checking is against CookedMin/CookedMax.
func (m *Metadata) ConvertAndValidateCooked(cooked TypedValue, convertOnly bool) (TypedValue, string) {
	v := coerce(cooked, m.Type)
	if convertOnly {
		return v, ""
	}
	if !withinBounds(v, m.CookedMin(), m.CookedMax()) {
		return v, "Value out of range"
	}
	if m.CustomValidator != nil {
		if errStr := m.CustomValidator(v); errStr != "" {
			return v, errStr
		}
	}
	return v, ""
}

// ClampValue clips cooked to [CookedMin, CookedMax] and reports whether
// clipping occurred.
func (m *Metadata) ClampValue(cooked TypedValue) (TypedValue, bool) {
	lo, hi := m.CookedMin().AsFloat64(), m.CookedMax().AsFloat64()
	f := cooked.AsFloat64()
	if f < lo {
		return WithFloat64(cooked.Kind, lo), true
	}
	if f > hi {
		return WithFloat64(cooked.Kind, hi), true
	}
	return cooked, false
}

func coerce(v TypedValue, to Kind) TypedValue {
	if v.Kind == to {
		return v
	}
	if v.Kind == KindString {
		return FromString(to, v.s)
	}
	return WithFloat64(to, v.AsFloat64())
}

func withinBounds(v, lo, hi TypedValue) bool {
	f := v.AsFloat64()
	return f >= lo.AsFloat64() && f <= hi.AsFloat64()
}

// --- Built-in unit translators ---

const (
	metersToFeet        = 3.2808399
	milesInMeters        = 1609.344
	secondsPerHour        = 3600.0
	kmPerNauticalMile      = 1.852
	inchesToCentimeters   = 2.54
	ouncesToGrams        = 28.3495
	poundsToGrams        = 453.592
	acresToSquareMeters   = 4046.86
	squareFeetToSqMeters = 0.0929
	squareMilesToSqMeters = 2589988.11
)

func scaleTranslator(factor float64) Translator {
	return func(v TypedValue) TypedValue { return WithFloat64(v.Kind, v.AsFloat64()*factor) }
}

// DegreesToRadians / RadiansToDegrees
func DegreesToRadians(v TypedValue) TypedValue {
	return WithFloat64(v.Kind, v.AsFloat64()*math.Pi/180.0)
}
func RadiansToDegrees(v TypedValue) TypedValue {
	return WithFloat64(v.Kind, v.AsFloat64()*180.0/math.Pi)
}

// CentiDegreesToDegrees / DegreesToCentiDegrees
func CentiDegreesToDegrees(v TypedValue) TypedValue { return WithFloat64(v.Kind, v.AsFloat64()/100.0) }
func DegreesToCentiDegrees(v TypedValue) TypedValue { return WithFloat64(v.Kind, v.AsFloat64()*100.0) }

// CentiCelsiusToCelsius / CelsiusToCentiCelsius
func CentiCelsiusToCelsius(v TypedValue) TypedValue { return WithFloat64(v.Kind, v.AsFloat64()/100.0) }
func CelsiusToCentiCelsius(v TypedValue) TypedValue { return WithFloat64(v.Kind, v.AsFloat64()*100.0) }

// MetersToFeet / FeetToMeters
func MetersToFeet(v TypedValue) TypedValue { return scaleTranslator(metersToFeet)(v) }
func FeetToMeters(v TypedValue) TypedValue { return scaleTranslator(1.0 / metersToFeet)(v) }

// MetersPerSecondToMph / MphToMetersPerSecond: m/s -> ft/s -> mph
func MetersPerSecondToMph(v TypedValue) TypedValue {
	feetPerSecond := v.AsFloat64() * metersToFeet
	miles := feetPerSecond * secondsPerHour / (milesInMeters * metersToFeet)
	return WithFloat64(v.Kind, miles)
}
func MphToMetersPerSecond(v TypedValue) TypedValue {
	miles := v.AsFloat64()
	metersPerSecond := miles * milesInMeters / secondsPerHour
	return WithFloat64(v.Kind, metersPerSecond)
}

// MetersPerSecondToKmh / KmhToMetersPerSecond
func MetersPerSecondToKmh(v TypedValue) TypedValue { return scaleTranslator(3.6)(v) }
func KmhToMetersPerSecond(v TypedValue) TypedValue { return scaleTranslator(1.0 / 3.6)(v) }

// MetersPerSecondToKnots / KnotsToMetersPerSecond: via km/h and nm/km
func MetersPerSecondToKnots(v TypedValue) TypedValue {
	kmh := v.AsFloat64() * 3.6
	return WithFloat64(v.Kind, kmh/kmPerNauticalMile)
}
func KnotsToMetersPerSecond(v TypedValue) TypedValue {
	kmh := v.AsFloat64() * kmPerNauticalMile
	return WithFloat64(v.Kind, kmh/3.6)
}

// PercentToUnit / UnitToPercent: %  <->  0..1
func PercentToUnit(v TypedValue) TypedValue { return scaleTranslator(0.01)(v) }
func UnitToPercent(v TypedValue) TypedValue { return scaleTranslator(100.0)(v) }

// InchesToCentimeters / CentimetersToInches
func InchesToCentimeters(v TypedValue) TypedValue { return scaleTranslator(inchesToCentimeters)(v) }
func CentimetersToInches(v TypedValue) TypedValue {
	return scaleTranslator(1.0 / inchesToCentimeters)(v)
}

// GramsToOunces / OuncesToGrams, GramsToPounds / PoundsToGrams,
// GramsToKilograms / KilogramsToGrams
func OuncesToGrams(v TypedValue) TypedValue  { return scaleTranslator(ouncesToGrams)(v) }
func GramsToOunces(v TypedValue) TypedValue  { return scaleTranslator(1.0 / ouncesToGrams)(v) }
func PoundsToGrams(v TypedValue) TypedValue  { return scaleTranslator(poundsToGrams)(v) }
func GramsToPounds(v TypedValue) TypedValue  { return scaleTranslator(1.0 / poundsToGrams)(v) }
func GramsToKilograms(v TypedValue) TypedValue { return scaleTranslator(0.001)(v) }
func KilogramsToGrams(v TypedValue) TypedValue { return scaleTranslator(1000.0)(v) }

// Area: square meters <-> acre/hectare/ft^2/mi^2
func SquareMetersToAcres(v TypedValue) TypedValue {
	return scaleTranslator(1.0 / acresToSquareMeters)(v)
}
func AcresToSquareMeters(v TypedValue) TypedValue { return scaleTranslator(acresToSquareMeters)(v) }
func SquareMetersToHectares(v TypedValue) TypedValue { return scaleTranslator(0.0001)(v) }
func HectaresToSquareMeters(v TypedValue) TypedValue { return scaleTranslator(10000.0)(v) }
func SquareMetersToSquareFeet(v TypedValue) TypedValue {
	return scaleTranslator(1.0 / squareFeetToSqMeters)(v)
}
func SquareFeetToSquareMeters(v TypedValue) TypedValue {
	return scaleTranslator(squareFeetToSqMeters)(v)
}
func SquareMetersToSquareMiles(v TypedValue) TypedValue {
	return scaleTranslator(1.0 / squareMilesToSqMeters)(v)
}
func SquareMilesToSquareMeters(v TypedValue) TypedValue {
	return scaleTranslator(squareMilesToSqMeters)(v)
}
