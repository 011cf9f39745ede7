package field

import "sync"

// ChangeFunc is invoked with the cooked view of a Field after a successful
// mutation. Implementations must not re-enter the emitting Field's setter
//; the Field snapshots its callback list before invoking, so a
// callback is free to read other Fields but should not call back into this
// one synchronously.
type ChangeFunc func(cooked TypedValue)

// Field is a live instance of a named, typed value bound (optionally) to a
// Metadata descriptor. It is exclusively owned by its enclosing FieldGroup.
type Field struct {
	mu sync.Mutex

	componentID uint8
	name        string
	kind        Kind
	raw         TypedValue
	metadata    *Metadata

	notify        bool
	deferred      bool
	deferredValue TypedValue
	listeners     []ChangeFunc
}

// New constructs a Field initialised to the zero of kind. Notifications are
// enabled by default.
func New(componentID uint8, name string, kind Kind) *Field {
	return &Field{
		componentID: componentID,
		name:        name,
		kind:        kind,
		raw:         Zero(kind),
		notify:      true,
	}
}

func (f *Field) ComponentID() uint8 { return f.componentID }
func (f *Field) Name() string       { return f.name }
func (f *Field) Kind() Kind         { return f.kind }

func (f *Field) SetMetadata(m *Metadata) {
	f.mu.Lock()
	f.metadata = m
	f.mu.Unlock()
}

func (f *Field) Metadata() *Metadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metadata
}

// RawValue returns the current raw value. Invariant: its Kind always equals
// f.Kind().
func (f *Field) RawValue() TypedValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw
}

// CookedValue applies the metadata's raw->cooked translator (identity if no
// metadata is attached).
func (f *Field) CookedValue() TypedValue {
	f.mu.Lock()
	raw, meta := f.raw, f.metadata
	f.mu.Unlock()
	if meta == nil {
		return raw
	}
	return meta.RawToCooked()(raw)
}

// SetNotificationsEnabled toggles whether SetRaw emits immediately or
// defers. Disabling does not flush a value already deferred.
func (f *Field) SetNotificationsEnabled(enabled bool) {
	f.mu.Lock()
	f.notify = enabled
	f.mu.Unlock()
}

// SetRaw stores v (which must already carry f.Kind()) and either emits the
// change callback immediately or marks the deferred-change flag.
func (f *Field) SetRaw(v TypedValue) {
	f.setRaw(v, true)
}

// ForceSetRaw bypasses the owning metadata's validation path entirely (used
// by callers that already validated, e.g. the parameter manager echoing a
// PARAM_VALUE) but still honors the notify/defer contract.
func (f *Field) ForceSetRaw(v TypedValue) {
	f.setRaw(v, true)
}

// ContainerSetRaw stores v without any notification, deferred or immediate;
// used for bulk loads (e.g. cache import) where per-field callbacks would
// be wasteful.
func (f *Field) ContainerSetRaw(v TypedValue) {
	f.setRaw(v, false)
}

func (f *Field) setRaw(v TypedValue, allowNotify bool) {
	if v.Kind != f.kind {
		v = coerce(v, f.kind)
	}

	f.mu.Lock()
	f.raw = v
	if !allowNotify {
		f.mu.Unlock()
		return
	}
	meta := f.metadata
	cooked := v
	if meta != nil {
		cooked = meta.RawToCooked()(v)
	}
	if !f.notify {
		f.deferred = true
		f.deferredValue = cooked
		f.mu.Unlock()
		return
	}
	listeners := append([]ChangeFunc(nil), f.listeners...)
	f.mu.Unlock()

	for _, l := range listeners {
		l(cooked)
	}
}

// SetCooked translator-inverts cooked through the attached metadata (or
// identity, absent metadata) then calls SetRaw.
func (f *Field) SetCooked(cooked TypedValue) {
	f.mu.Lock()
	meta := f.metadata
	f.mu.Unlock()
	raw := cooked
	if meta != nil {
		raw = meta.CookedToRaw()(cooked)
	}
	f.SetRaw(raw)
}

// FlushDeferred emits the pending signal, if any, and clears the flag.
func (f *Field) FlushDeferred() {
	f.mu.Lock()
	if !f.deferred {
		f.mu.Unlock()
		return
	}
	cooked := f.deferredValue
	f.deferred = false
	listeners := append([]ChangeFunc(nil), f.listeners...)
	f.mu.Unlock()

	for _, l := range listeners {
		l(cooked)
	}
}

// AddListener registers a change callback, returning nothing: listeners
// accumulate for the lifetime of the Field (which is the lifetime of its
// owning FieldGroup).
func (f *Field) AddListener(cb ChangeFunc) {
	f.mu.Lock()
	f.listeners = append(f.listeners, cb)
	f.mu.Unlock()
}

// Validate coerces text against the attached metadata (or reports the
// "Missing metadata" sentinel when none is attached) and returns the error
// string, "" on success.
func (f *Field) Validate(text string, convertOnly bool) string {
	f.mu.Lock()
	meta := f.metadata
	kind := f.kind
	f.mu.Unlock()
	if meta == nil {
		return "Missing metadata"
	}
	_, errStr := meta.ConvertAndValidateCooked(FromString(kind, text), convertOnly)
	return errStr
}

// EnumIndex finds the index of the current raw value in metadata's
// EnumValues, or 0 if absent or no metadata is attached.
func (f *Field) EnumIndex() int {
	meta := f.Metadata()
	if meta == nil {
		return 0
	}
	raw := f.RawValue()
	for i, v := range meta.EnumValues {
		if v.Equal(raw) {
			return i
		}
	}
	return 0
}

// EnumStringValue returns the string for the current raw value, or "".
func (f *Field) EnumStringValue() string {
	meta := f.Metadata()
	if meta == nil {
		return ""
	}
	raw := f.RawValue()
	for i, v := range meta.EnumValues {
		if v.Equal(raw) {
			return meta.EnumStrings[i]
		}
	}
	return ""
}

// SelectedBitmaskStrings returns the strings whose value bit is set in the
// current raw value, widening unsigned to 64 bits for the comparison.
func (f *Field) SelectedBitmaskStrings() []string {
	meta := f.Metadata()
	if meta == nil {
		return nil
	}
	raw := widenToUint64(f.RawValue())
	var out []string
	for i, v := range meta.BitmaskValues {
		bit := widenToUint64(v)
		if bit != 0 && raw&bit == bit {
			out = append(out, meta.BitmaskStrings[i])
		}
	}
	return out
}

func widenToUint64(v TypedValue) uint64 {
	switch v.Kind {
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return v.u64
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return uint64(v.i64)
	default:
		return 0
	}
}
