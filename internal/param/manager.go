package param

import (
	"log"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// syncState names the position in the parameter sync state machine.
type syncState int

const (
	stateIdle syncState = iota
	stateAwaitingList
	stateFillingIndices
	stateReady
)

// componentState holds the per-component bookkeeping: the expected table
// size, the live fields synced so far, and which indices are still
// outstanding together with their retry counts.
type componentState struct {
	expectedCount  int
	knownCount     bool
	fields         map[string]*field.Field
	indexToName    map[uint16]string
	missingIndices map[uint16]int // index -> retry_count
	pendingWrites  map[string]int // name -> outstanding PARAM_SET acks awaited
}

func newComponentState() *componentState {
	return &componentState{
		fields:         make(map[string]*field.Field),
		indexToName:    make(map[uint16]string),
		missingIndices: make(map[uint16]int),
		pendingWrites:  make(map[string]int),
	}
}

// Manager synchronises the vehicle's parameter table for one or more
// component IDs against a retry, index-batch and hash-anchored-cache
// protocol.
type Manager struct {
	mu sync.Mutex

	send      Sender
	vehicleID uint8
	cacheDir  string
	logger    *log.Logger
	cb        Callbacks

	components map[uint8]*componentState

	state               syncState
	activeComponent     uint8
	parametersReady     bool
	missingParameters   bool
	initialLoadComplete bool
	loadProgress        float64
	initialRequestRetry int
	hashAckSent         bool

	initialTimerGen int64
	waitingTimerGen int64
}

// New constructs a Manager that talks to the vehicle with systemID
// vehicleID via send, writing/reading its cache under cacheDir (a directory
// named "ParamCache" by convention).
func New(send Sender, vehicleID uint8, cacheDir string, cb Callbacks, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		send:       send,
		vehicleID:  vehicleID,
		cacheDir:   cacheDir,
		logger:     logger,
		cb:         cb,
		components: make(map[uint8]*componentState),
	}
}

// ParametersReady reports whether the most recent refresh cycle has
// completed (successfully or with missing parameters).
func (m *Manager) ParametersReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parametersReady
}

// MissingParameters reports whether the most recent refresh cycle gave up
// on one or more indices after exhausting retries.
func (m *Manager) MissingParameters() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missingParameters
}

// LoadProgress returns the monotonic-within-a-cycle progress fraction.
func (m *Manager) LoadProgress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadProgress
}

// FieldCount returns the number of parameter fields currently known for
// componentID, or 0 if nothing has synced yet.
func (m *Manager) FieldCount(componentID uint8) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	comp := m.components[componentID]
	if comp == nil {
		return 0
	}
	return len(comp.fields)
}

// Field looks up a synced parameter Field by component and name.
func (m *Manager) Field(componentID uint8, name string) *field.Field {
	m.mu.Lock()
	defer m.mu.Unlock()
	comp := m.components[componentID]
	if comp == nil {
		return nil
	}
	return comp.fields[name]
}

// RefreshAll clears the table for componentID (0 resolves to "all known" via
// the first known component id, else a well-known autopilot id) and
// re-requests the full parameter list
func (m *Manager) RefreshAll(componentID uint8) {
	m.mu.Lock()
	target := m.resolveComponent(componentID)
	m.components[target] = newComponentState()
	m.activeComponent = target
	m.state = stateAwaitingList
	m.parametersReady = false
	m.missingParameters = false
	m.initialLoadComplete = false
	m.loadProgress = 0
	m.initialRequestRetry = 0
	m.hashAckSent = false
	m.mu.Unlock()

	atomic.AddInt64(&m.waitingTimerGen, 1)
	m.sendRequestList(target)
	m.startInitialTimer(target)
}

func (m *Manager) resolveComponent(componentID uint8) uint8 {
	if componentID != 0 {
		return componentID
	}
	for id := range m.components {
		return id
	}
	return uint8(common.MAV_COMP_ID_AUTOPILOT1)
}

func (m *Manager) sendRequestList(componentID uint8) {
	_ = m.send.Send(&common.MessageParamRequestList{
		TargetSystem:    m.vehicleID,
		TargetComponent: componentID,
	})
}

// startInitialTimer arms the 5s "awaiting list" timeout. Starting a new
// timer invalidates any prior one via the generation counter: starting a
// timer cancels the previous instance.
func (m *Manager) startInitialTimer(componentID uint8) {
	gen := atomic.AddInt64(&m.initialTimerGen, 1)
	go func() {
		time.Sleep(initialRequestTimeout)
		if atomic.LoadInt64(&m.initialTimerGen) != gen {
			return
		}
		m.onInitialTimeout(componentID)
	}()
}

func (m *Manager) startWaitingTimer(componentID uint8) {
	gen := atomic.AddInt64(&m.waitingTimerGen, 1)
	go func() {
		time.Sleep(waitingParamTimeout)
		if atomic.LoadInt64(&m.waitingTimerGen) != gen {
			return
		}
		m.onWaitingTimeout(componentID)
	}()
}

func (m *Manager) onInitialTimeout(componentID uint8) {
	m.mu.Lock()
	if m.state != stateAwaitingList || m.activeComponent != componentID {
		m.mu.Unlock()
		return
	}
	m.initialRequestRetry++
	retry := m.initialRequestRetry
	m.mu.Unlock()

	if retry > initialRequestRetryMax {
		m.finishMissing(componentID)
		return
	}
	m.sendRequestList(componentID)
	m.startInitialTimer(componentID)
}

func (m *Manager) onWaitingTimeout(componentID uint8) {
	m.mu.Lock()
	if m.state != stateFillingIndices || m.activeComponent != componentID {
		m.mu.Unlock()
		return
	}
	comp := m.components[componentID]
	if comp == nil {
		m.mu.Unlock()
		return
	}

	batch := make([]uint16, 0, maxBatchSize)
	for idx, retryCount := range comp.missingIndices {
		if retryCount > singleParamRetryMax {
			continue
		}
		batch = append(batch, idx)
		if len(batch) == maxBatchSize {
			break
		}
	}
	for _, idx := range batch {
		comp.missingIndices[idx]++
	}
	m.mu.Unlock()

	for _, idx := range batch {
		_ = m.send.Send(&common.MessageParamRequestRead{
			TargetSystem:    m.vehicleID,
			TargetComponent: componentID,
			ParamId:         "",
			ParamIndex:      int16(idx),
		})
	}

	if len(batch) > 0 {
		m.startWaitingTimer(componentID)
	} else {
		// Every remaining index has exhausted its retry budget (or none
		// remained): settle, counting any leftovers as missing.
		m.checkComplete(componentID)
	}
}

// HandleParamValue processes an incoming PARAM_VALUE message for
// componentID, advancing the sync state machine.
func (m *Manager) HandleParamValue(componentID uint8, msg *common.MessageParamValue) {
	if msg.ParamId == hashCheckName {
		m.handleHashCheck(componentID, msg)
		return
	}

	m.mu.Lock()
	comp := m.components[componentID]
	if comp == nil {
		comp = newComponentState()
		m.components[componentID] = comp
	}

	if msg.ParamIndex == unsolicitedIndex {
		if m.state != stateFillingIndices && m.state != stateReady {
			m.mu.Unlock()
			return
		}
	}

	firstValue := !comp.knownCount
	if firstValue {
		comp.expectedCount = int(msg.ParamCount)
		comp.knownCount = true
		for i := uint16(0); i < msg.ParamCount; i++ {
			comp.missingIndices[i] = 0
		}
		m.activeComponent = componentID
		m.state = stateFillingIndices
		atomic.AddInt64(&m.initialTimerGen, 1) // stop initial-request timer
	}

	kind := kindForMavParamType(msg.ParamType)
	v := decodeParamValue(msg.ParamType, msg.ParamValue)
	f := comp.fields[msg.ParamId]
	isNewField := f == nil
	if isNewField {
		f = field.New(componentID, msg.ParamId, kind)
		comp.fields[msg.ParamId] = f
	}
	f.ContainerSetRaw(v)

	if msg.ParamIndex != unsolicitedIndex {
		comp.indexToName[msg.ParamIndex] = msg.ParamId
		delete(comp.missingIndices, msg.ParamIndex)
	}

	if comp.pendingWrites[msg.ParamId] > 0 {
		comp.pendingWrites[msg.ParamId]--
	}

	progress := m.computeProgress(comp)
	m.loadProgress = progress
	remaining := len(comp.missingIndices)
	m.mu.Unlock()

	if isNewField && m.cb.FieldAdded != nil {
		m.cb.FieldAdded(componentID, f)
	}
	if m.cb.Progress != nil {
		m.cb.Progress(progress)
	}
	if m.cb.FieldValueChanged != nil {
		m.cb.FieldValueChanged("parameters", msg.ParamId, f.CookedValue())
	}

	if firstValue {
		m.startWaitingTimer(componentID)
	}
	if remaining == 0 {
		m.checkComplete(componentID)
	}
}

func (m *Manager) computeProgress(comp *componentState) float64 {
	if !comp.knownCount || comp.expectedCount == 0 {
		return 0
	}
	remaining := len(comp.missingIndices)
	p := float64(comp.expectedCount-remaining) / float64(comp.expectedCount)
	if p > m.loadProgress {
		return p
	}
	return m.loadProgress
}

func (m *Manager) handleHashCheck(componentID uint8, msg *common.MessageParamValue) {
	receivedCRC := math.Float32bits(msg.ParamValue)
	entries, found, err := readCache(m.cacheDir, m.vehicleID, componentID)
	if err != nil || !found {
		return
	}
	if computeCRC(entries) != receivedCRC {
		return
	}

	m.mu.Lock()
	comp := newComponentState()
	comp.knownCount = true
	comp.expectedCount = len(entries)
	for _, e := range entries {
		f := field.New(componentID, e.name, e.value.Kind)
		f.ContainerSetRaw(e.value)
		comp.fields[e.name] = f
	}
	m.components[componentID] = comp
	m.activeComponent = componentID
	m.state = stateReady
	m.parametersReady = true
	m.initialLoadComplete = true
	m.loadProgress = 1.0
	m.hashAckSent = true
	atomic.AddInt64(&m.initialTimerGen, 1)
	atomic.AddInt64(&m.waitingTimerGen, 1)
	m.mu.Unlock()

	_ = m.send.Send(&common.MessageParamSet{
		TargetSystem:    m.vehicleID,
		TargetComponent: componentID,
		ParamId:         hashCheckName,
		ParamValue:      math.Float32frombits(receivedCRC),
		ParamType:       uint8(common.MAV_PARAM_TYPE_UINT32),
	})

	if m.cb.Ready != nil {
		m.cb.Ready(true)
	}
	if m.cb.Progress != nil {
		m.cb.Progress(1.0)
	}
}

func (m *Manager) checkComplete(componentID uint8) {
	m.mu.Lock()
	comp := m.components[componentID]
	if comp == nil || m.activeComponent != componentID || m.state == stateReady {
		m.mu.Unlock()
		return
	}

	for _, retryCount := range comp.missingIndices {
		if retryCount <= singleParamRetryMax {
			// At least one index can still be retried; not done yet.
			m.mu.Unlock()
			return
		}
	}
	missing := len(comp.missingIndices) > 0

	m.state = stateReady
	m.parametersReady = true
	m.missingParameters = missing
	m.initialLoadComplete = true
	m.loadProgress = 1.0

	var entries []cacheEntry
	for name, f := range comp.fields {
		entries = append(entries, cacheEntry{name: name, value: f.RawValue()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	vehicleID := m.vehicleID
	cacheDir := m.cacheDir
	m.mu.Unlock()

	if !missing {
		_ = writeCache(cacheDir, vehicleID, componentID, entries)
	}

	if m.cb.Ready != nil {
		m.cb.Ready(true)
	}
	if m.cb.Progress != nil {
		m.cb.Progress(1.0)
	}
}

func (m *Manager) finishMissing(componentID uint8) {
	m.mu.Lock()
	m.state = stateReady
	m.parametersReady = true
	m.missingParameters = true
	m.initialLoadComplete = true
	m.loadProgress = 1.0
	m.mu.Unlock()

	if m.cb.Ready != nil {
		m.cb.Ready(true)
	}
}

// Set encodes cooked into the MAVLink parameter union by the field's known
// type, sends PARAM_SET, and increments pending_writes; the authoritative
// acknowledgement is the next PARAM_VALUE echoing the same name. Called
// directly by an embedder and by ReadFrom; no Field change callback is
// wired to it.
func (m *Manager) Set(componentID uint8, name string, cooked field.TypedValue) {
	m.mu.Lock()
	comp := m.components[componentID]
	if comp == nil {
		m.mu.Unlock()
		return
	}
	f := comp.fields[name]
	if f == nil {
		m.mu.Unlock()
		return
	}
	meta := f.Metadata()
	raw := cooked
	if meta != nil {
		raw = meta.CookedToRaw()(cooked)
	}
	if raw.Kind == field.KindString {
		raw = field.FromString(f.Kind(), raw.StringVal())
	} else if raw.Kind != f.Kind() {
		raw = field.WithFloat64(f.Kind(), raw.AsFloat64())
	}
	comp.pendingWrites[name]++
	m.mu.Unlock()

	_ = m.send.Send(&common.MessageParamSet{
		TargetSystem:    m.vehicleID,
		TargetComponent: componentID,
		ParamId:         name,
		ParamValue:      encodeParamValue(raw),
		ParamType:       mavParamTypeForKind(raw.Kind),
	})
}
