// Package transport implements the datagram endpoint toward the autopilot:
// bind, receive loop, heartbeat loop, health loop, MAVLink v1/v2 framing,
// dynamic peer learning and per-(system,component) sequence-loss
// accounting.
//
// Byte-level MAVLink framing, CRC and message (de)serialization are
// delegated to gomavlib's frame/message/dialect packages — the generated
// codec library this package assumes as an external collaborator. Everything
// above that layer (which peer we last heard from, whether a given
// (sys,comp) pair just lost a frame, whether the link has gone stale long
// enough to warrant a restart) is this package's own bookkeeping: one
// struct, a receive goroutine ranging over decoded events, a ticker-driven
// heartbeat goroutine, mutex-guarded state, and a *log.Logger field.
package transport

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/frame"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
)

// State is the transport state machine.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Config holds the embedder-facing connection parameters.
type Config struct {
	TargetAddress string
	TargetPort    uint16
	LocalPort     uint16

	SystemID    uint8
	ComponentID uint8

	HealthCheckEnabled   bool
	AutoRestartEnabled   bool
	ConnectionTimeout    time.Duration
	RestartDelay         time.Duration
	AutoVersionDetection bool

	Logger *log.Logger
}

// Callbacks are the transport-level closures an embedder may register.
type Callbacks struct {
	ConnectionChanged func(connected bool)
	MessageReceived   func(msg message.Message, sysID, compID uint8)
}

// peerLossState tracks sequence-loss accounting for one (sys,comp) pair.
type peerLossState struct {
	hasSeen  bool
	lastSeq  byte
	firstSeq byte
}

// Stats is a point-in-time snapshot of transport counters.
type Stats struct {
	Connected              bool
	PacketsRx, PacketsTx   uint64
	BytesRx, BytesTx       uint64
	TotalLoss              uint64
	RestartCount           uint64
	DetectedProtoVersion   int
	LastMessageTime        time.Time
	RunningLossPercent     float64
}

// Transport is the UDP datagram endpoint toward one vehicle.
type Transport struct {
	cfg Config
	cb  Callbacks

	logger *log.Logger

	mu              sync.Mutex
	node            *gomavlib.Node
	connected       bool
	running         bool
	state           State
	restartInProg   int32
	detectedVersion int // 0 = undetected, 1, 2

	lastLearnedPeer bool // true once any frame has been received

	lossMu sync.Mutex
	loss   map[[2]uint8]*peerLossState

	statsMu         sync.Mutex
	packetsRx       uint64
	packetsTx       uint64
	bytesRx         uint64
	bytesTx         uint64
	totalLoss       uint64
	restartCount    uint64
	lastMessageTime time.Time

	stopHeartbeat chan struct{}
	heartbeatDone chan struct{}
	stopHealth    chan struct{}
	healthDone    chan struct{}
}

// New constructs a disconnected Transport; call Connect to start it.
func New(cfg Config, cb Callbacks) *Transport {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Transport{
		cfg:    cfg,
		cb:     cb,
		logger: cfg.Logger,
		state:  StateIdle,
		loss:   make(map[[2]uint8]*peerLossState),
	}
}

// Connect opens the datagram socket, binds to INADDR_ANY on LocalPort, and
// starts the receive, heartbeat and (if enabled) health goroutines.
func (t *Transport) Connect() error {
	t.mu.Lock()
	t.state = StateConnecting
	t.mu.Unlock()

	// The on-wire outbound version follows whatever was last detected; since
	// gomavlib fixes OutVersion for the lifetime of a Node, a version
	// flip detected mid-connection only takes effect on the next Restart.
	// Absent any detection yet, default to v2.
	outVersion := gomavlib.V2
	if v := t.DetectedVersion(); v == 1 {
		outVersion = gomavlib.V1
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints: []gomavlib.EndpointConf{
			gomavlib.EndpointUDPServer{
				Address: fmt.Sprintf(":%d", t.cfg.LocalPort),
			},
			gomavlib.EndpointUDPClient{
				Address: fmt.Sprintf("%s:%d", t.cfg.TargetAddress, t.cfg.TargetPort),
			},
		},
		Dialect:     common.Dialect,
		OutVersion:  outVersion,
		OutSystemID: t.cfg.SystemID,
	})
	if err != nil {
		t.mu.Lock()
		t.state = StateIdle
		t.mu.Unlock()
		return fmt.Errorf("transport: bind failed: %w", err)
	}

	t.mu.Lock()
	t.node = node
	t.running = true
	t.connected = true
	t.state = StateConnected
	t.lastLearnedPeer = true
	t.stopHeartbeat = make(chan struct{})
	t.heartbeatDone = make(chan struct{})
	if t.cfg.HealthCheckEnabled {
		t.stopHealth = make(chan struct{})
		t.healthDone = make(chan struct{})
	}
	t.mu.Unlock()

	t.statsMu.Lock()
	t.lastMessageTime = time.Now()
	t.statsMu.Unlock()

	go t.receiveLoop(node)
	go t.heartbeatLoop()
	if t.cfg.HealthCheckEnabled {
		go t.healthLoop()
	}

	if t.cb.ConnectionChanged != nil {
		t.cb.ConnectionChanged(true)
	}
	return nil
}

// receiveLoop ranges over decoded frame events: it updates loss statistics,
// tracks protocol-version detection, and forwards to the message callback.
// A timeout is not observable at this layer (gomavlib's UDP endpoints loop
// internally); receive errors surface as the Events() channel closing,
// which ends this loop and disconnects the endpoint.
func (t *Transport) receiveLoop(node *gomavlib.Node) {
	for evt := range node.Events() {
		frm, ok := evt.(*gomavlib.EventFrame)
		if !ok {
			continue
		}

		t.statsMu.Lock()
		t.packetsRx++
		t.lastMessageTime = time.Now()
		t.statsMu.Unlock()

		sysID, compID := frm.SystemID(), frm.ComponentID()

		if t.cfg.AutoVersionDetection {
			t.detectVersion(frm)
		}

		t.recordSequence(sysID, compID, frm)

		if t.cb.MessageReceived != nil {
			t.cb.MessageReceived(frm.Message(), sysID, compID)
		}
	}

	t.mu.Lock()
	wasConnected := t.connected
	t.connected = false
	t.running = false
	t.mu.Unlock()
	if wasConnected && t.cb.ConnectionChanged != nil {
		t.cb.ConnectionChanged(false)
	}
}

// sequencedFrame is the subset of frame.Frame this package needs;
// satisfied by frame.V1Frame and frame.V2Frame.
type sequencedFrame interface {
	GetSequenceID() byte
}

func (t *Transport) detectVersion(frm *gomavlib.EventFrame) {
	var version int
	switch frm.Frame.(type) {
	case *frame.V1Frame:
		version = 1
	case *frame.V2Frame:
		version = 2
	default:
		return
	}

	t.mu.Lock()
	first := t.detectedVersion == 0
	t.detectedVersion = version
	t.mu.Unlock()
	if first {
		t.logger.Printf("MAVLink: detected protocol v%d", version)
	}
}

// recordSequence implements the loss-accounting algorithm: for the first
// frame from (sys,comp), record its sequence as expected. Thereafter
// expected = lastSeq+1 (mod 256); lost = (seq-expected) mod 256.
func (t *Transport) recordSequence(sysID, compID uint8, frm *gomavlib.EventFrame) {
	sf, ok := frm.Frame.(sequencedFrame)
	if !ok {
		return
	}
	seq := sf.GetSequenceID()
	key := [2]uint8{sysID, compID}

	t.lossMu.Lock()
	st, exists := t.loss[key]
	if !exists {
		st = &peerLossState{hasSeen: true, lastSeq: seq, firstSeq: seq}
		t.loss[key] = st
		t.lossMu.Unlock()
		return
	}
	expected := st.lastSeq + 1
	lost := uint8(seq - expected)
	st.lastSeq = seq
	t.lossMu.Unlock()

	if lost > 0 {
		t.statsMu.Lock()
		t.totalLoss += uint64(lost)
		t.statsMu.Unlock()
	}
}

// Send transmits msg through every open channel of the node: the configured
// target and each peer that has sent to the local port. Without a learned
// peer, Send fails.
func (t *Transport) Send(msg message.Message) error {
	t.mu.Lock()
	node := t.node
	learned := t.lastLearnedPeer
	t.mu.Unlock()

	if node == nil || !learned {
		return errors.New("transport: no learned peer")
	}
	if err := node.WriteMessageAll(msg); err != nil {
		return fmt.Errorf("transport: send failed: %w", err)
	}
	t.statsMu.Lock()
	t.packetsTx++
	t.statsMu.Unlock()
	return nil
}

func (t *Transport) heartbeatLoop() {
	defer close(t.heartbeatDone)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopHeartbeat:
			return
		case <-ticker.C:
			if !t.Connected() {
				continue
			}
			err := t.Send(&common.MessageHeartbeat{
				Type:         common.MAV_TYPE_GCS,
				Autopilot:    common.MAV_AUTOPILOT_GENERIC,
				BaseMode:     common.MAV_MODE_FLAG_CUSTOM_MODE_ENABLED,
				CustomMode:   0,
				SystemStatus: common.MAV_STATE_ACTIVE,
			})
			if err != nil {
				t.logger.Printf("MAVLink: heartbeat send failed: %v", err)
			}
		}
	}
}

// healthLoop watches for a stale link and triggers Restart, serialized by
// restartInProg so overlapping ticks never race each other.
func (t *Transport) healthLoop() {
	defer close(t.healthDone)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopHealth:
			return
		case <-ticker.C:
			t.statsMu.Lock()
			last := t.lastMessageTime
			t.statsMu.Unlock()

			if time.Since(last) > t.cfg.ConnectionTimeout && t.cfg.AutoRestartEnabled {
				// Restart's Disconnect joins this very goroutine via
				// healthDone; calling it inline here would deadlock the
				// health loop against itself. Run it off a separate
				// goroutine instead, with restartInProg still serializing
				// overlapping attempts.
				go t.Restart()
			}
		}
	}
}

// Restart disconnects and reconnects to the originally configured target,
// guarded by a compare-and-set flag so concurrent health ticks never
// overlap a restart in progress.
func (t *Transport) Restart() {
	if !atomic.CompareAndSwapInt32(&t.restartInProg, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&t.restartInProg, 0)

	t.logger.Println("MAVLink: restarting connection")
	t.mu.Lock()
	t.state = StateReconnecting
	t.mu.Unlock()

	t.Disconnect()
	time.Sleep(t.cfg.RestartDelay)

	if err := t.Connect(); err != nil {
		t.logger.Printf("MAVLink: restart failed: %v", err)
		t.mu.Lock()
		t.state = StateIdle
		t.mu.Unlock()
		return
	}

	t.statsMu.Lock()
	t.restartCount++
	t.statsMu.Unlock()
}

// Disconnect flips running false, closes the socket (unblocking the
// receive goroutine), and joins every goroutine this endpoint started.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	node := t.node
	stopHB := t.stopHeartbeat
	hbDone := t.heartbeatDone
	stopHealth := t.stopHealth
	healthDone := t.healthDone
	t.running = false
	t.connected = false
	t.state = StateIdle
	t.node = nil
	t.mu.Unlock()

	if stopHB != nil {
		close(stopHB)
		<-hbDone
	}
	if stopHealth != nil {
		close(stopHealth)
		<-healthDone
	}
	if node != nil {
		node.Close()
	}
}

// DetectedVersion returns the auto-detected MAVLink protocol version
// (1 or 2), or 0 if none has been detected yet.
func (t *Transport) DetectedVersion() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.detectedVersion
}

func (t *Transport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Stats returns a point-in-time snapshot of transport counters.
func (t *Transport) Stats() Stats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()

	runningLossPercent := 0.0
	if total := t.packetsRx + t.totalLoss; total > 0 {
		runningLossPercent = float64(t.totalLoss) / float64(total) * 100
	}

	t.mu.Lock()
	connected := t.connected
	version := t.detectedVersion
	t.mu.Unlock()

	return Stats{
		Connected:            connected,
		PacketsRx:            t.packetsRx,
		PacketsTx:            t.packetsTx,
		BytesRx:              t.bytesRx,
		BytesTx:              t.bytesTx,
		TotalLoss:            t.totalLoss,
		RestartCount:         t.restartCount,
		DetectedProtoVersion: version,
		LastMessageTime:      t.lastMessageTime,
		RunningLossPercent:   runningLossPercent,
	}
}
