package field

import (
	"strings"
	"sync"
	"time"
	"unicode"
)

// TelemetryAvailableFunc fires on the false->true transition of a Group's
// telemetry-available flag.
type TelemetryAvailableFunc func(group *Group)

// FieldAddedFunc fires whenever a Field is registered into a Group.
type FieldAddedFunc func(group *Group, f *Field)

// Group is a named container of Fields plus nested sub-groups. Concrete
// telemetry groups (internal/telemetry) embed *Group
// and add their own MAVLink message decoding on top.
type Group struct {
	mu sync.RWMutex

	name        string
	fields      map[string]*Field
	subGroups   map[string]*Group
	updatePeriod time.Duration
	ignoreCamelCase bool

	liveUpdates        bool
	telemetryAvailable bool
	lastUpdateTime     time.Time

	onTelemetryAvailable TelemetryAvailableFunc
	onFieldAdded         FieldAddedFunc

	stop chan struct{}
	done chan struct{}
}

// NewGroup constructs a Group. If updatePeriod > 0, a goroutine wakes every
// updatePeriod and flushes deferred Field notifications across the whole
// subtree; it is joined when Close is called. ignoreCamelCase mirrors the
// original FactGroup constructor flag: when true, the flat
// name index built by FlatFields splits field names on camelCase word
// boundaries instead of using them verbatim.
func NewGroup(name string, updatePeriod time.Duration, ignoreCamelCase bool) *Group {
	g := &Group{
		name:            name,
		fields:          make(map[string]*Field),
		subGroups:       make(map[string]*Group),
		updatePeriod:    updatePeriod,
		ignoreCamelCase: ignoreCamelCase,
		liveUpdates:     true,
	}
	if updatePeriod > 0 {
		g.stop = make(chan struct{})
		g.done = make(chan struct{})
		go g.flushLoop()
	}
	return g
}

func (g *Group) flushLoop() {
	defer close(g.done)
	ticker := time.NewTicker(g.updatePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.FlushDeferredAll()
		}
	}
}

// Close stops the periodic flush goroutine, if any, and joins it.
func (g *Group) Close() {
	g.mu.RLock()
	subs := make([]*Group, 0, len(g.subGroups))
	for _, s := range g.subGroups {
		subs = append(subs, s)
	}
	g.mu.RUnlock()
	for _, s := range subs {
		s.Close()
	}
	if g.stop == nil {
		return
	}
	close(g.stop)
	<-g.done
}

func (g *Group) Name() string { return g.name }

// AddField registers f under its own name and fires FieldAddedFunc.
func (g *Group) AddField(f *Field) {
	g.mu.Lock()
	g.fields[f.Name()] = f
	cb := g.onFieldAdded
	g.mu.Unlock()
	if cb != nil {
		cb(g, f)
	}
}

// Field looks up a directly-owned field by name.
func (g *Group) Field(name string) *Field {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fields[name]
}

// Fields returns a snapshot of directly-owned fields.
func (g *Group) Fields() map[string]*Field {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]*Field, len(g.fields))
	for k, v := range g.fields {
		out[k] = v
	}
	return out
}

// AddSubGroup registers a child group by name; ownership is strictly
// downward — parents never hold a back-reference.
func (g *Group) AddSubGroup(child *Group) {
	g.mu.Lock()
	g.subGroups[child.Name()] = child
	g.mu.Unlock()
}

// SubGroup looks up a child group by name.
func (g *Group) SubGroup(name string) *Group {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.subGroups[name]
}

// SetOnFieldAdded installs the field_added callback.
func (g *Group) SetOnFieldAdded(cb FieldAddedFunc) {
	g.mu.Lock()
	g.onFieldAdded = cb
	g.mu.Unlock()
}

// SetOnTelemetryAvailable installs the telemetry-available transition
// callback.
func (g *Group) SetOnTelemetryAvailable(cb TelemetryAvailableFunc) {
	g.mu.Lock()
	g.onTelemetryAvailable = cb
	g.mu.Unlock()
}

// MarkTelemetryAvailable sets the flag true (idempotent) and fires the
// callback only on the false->true transition
func (g *Group) MarkTelemetryAvailable() {
	g.mu.Lock()
	wasAvailable := g.telemetryAvailable
	g.telemetryAvailable = true
	g.lastUpdateTime = time.Now()
	cb := g.onTelemetryAvailable
	g.mu.Unlock()
	if !wasAvailable && cb != nil {
		cb(g)
	}
}

func (g *Group) TelemetryAvailable() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.telemetryAvailable
}

func (g *Group) LastUpdateTime() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastUpdateTime
}

func (g *Group) SetLiveUpdates(enabled bool) {
	g.mu.Lock()
	g.liveUpdates = enabled
	g.mu.Unlock()
	for _, f := range g.Fields() {
		f.SetNotificationsEnabled(enabled)
	}
}

// FlushDeferredAll walks this group and its sub-groups, flushing any
// pending deferred Field notification.
func (g *Group) FlushDeferredAll() {
	for _, f := range g.Fields() {
		f.FlushDeferred()
	}
	g.mu.RLock()
	subs := make([]*Group, 0, len(g.subGroups))
	for _, s := range g.subGroups {
		subs = append(subs, s)
	}
	g.mu.RUnlock()
	for _, s := range subs {
		s.FlushDeferredAll()
	}
}

// FlatFields returns every Field owned by this group and its sub-groups,
// keyed by a dotted path (group.subgroup.field). When ignoreCamelCase was
// set at construction, each path component is split into words on
// camelCase boundaries and re-joined with spaces for display purposes.
func (g *Group) FlatFields() map[string]*Field {
	out := make(map[string]*Field)
	g.flatFieldsInto(out, "")
	return out
}

func (g *Group) flatFieldsInto(out map[string]*Field, prefix string) {
	name := g.componentName(g.name)
	path := name
	if prefix != "" {
		path = prefix + "." + name
	}
	for fname, f := range g.Fields() {
		out[path+"."+g.componentName(fname)] = f
	}
	g.mu.RLock()
	subs := make([]*Group, 0, len(g.subGroups))
	for _, s := range g.subGroups {
		subs = append(subs, s)
	}
	g.mu.RUnlock()
	for _, s := range subs {
		s.flatFieldsInto(out, path)
	}
}

func (g *Group) componentName(s string) string {
	if !g.ignoreCamelCase {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
