package connection

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trackingkind/linkd/pkg/log"
	"github.com/trackingkind/linkd/pkg/transport"
)

// DefaultBufferSize is the pump read buffer size.
const DefaultBufferSize = 1024

// Connection errors.
var (
	ErrNotConnected = errors.New("not connected")
	ErrClosed       = errors.New("connection manager closed")
)

// Config configures a Manager.
type Config struct {
	// Logger is used for operational logging. Nil disables it.
	Logger *slog.Logger

	// ProtocolLogger receives link events. Nil disables capture.
	ProtocolLogger log.Logger

	// BufferSize is the pump read buffer size.
	// Default: 1024 bytes.
	BufferSize int

	// LocalRole is the local device name recorded in link events.
	LocalRole string
}

// Manager owns the connection state and the worker references. Workers
// report back through its methods; every mutation happens under one mutex
// that is never held across blocking I/O.
type Manager struct {
	transport transport.Transport
	config    Config
	logger    *slog.Logger

	mu               sync.Mutex
	state            State
	secureListener   *listener
	insecureListener *listener
	connector        *connector
	pump             *pump
	closed           bool

	// listenerExits holds, per variant, the done channel of the most
	// recently started listener.
	listenerExits map[transport.Variant]<-chan struct{}

	events  *dispatcher[Event]
	records *dispatcher[log.Event] // nil without a protocol logger
	workers sync.WaitGroup
}

// NewManager creates a manager in state NONE. Nothing runs until
// StartListening or Connect is called.
func NewManager(t transport.Transport, config Config) *Manager {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	m := &Manager{
		transport: t,
		config:    config,
		logger:    config.Logger,
		state:     StateNone,
		events:    newDispatcher[Event](),

		listenerExits: make(map[transport.Variant]<-chan struct{}),
	}
	if config.ProtocolLogger != nil {
		m.records = newDispatcher[log.Event]()
		m.records.subscribe(config.ProtocolLogger.Log)
	}
	return m
}

// OnEvent registers a handler. Handlers run in registration order on the
// event goroutine and may call back into the manager, except Close.
func (m *Manager) OnEvent(h EventHandler) {
	m.events.subscribe(h)
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Peer returns the connected peer. The second result is false unless the
// state is CONNECTED.
func (m *Manager) Peer() (transport.Peer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected || m.pump == nil {
		return transport.Peer{}, false
	}
	return m.pump.peer, true
}

// Variant returns the service variant of the connected link.
func (m *Manager) Variant() (transport.Variant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConnected || m.pump == nil {
		return 0, false
	}
	return m.pump.variant, true
}

// StartListening enters LISTENING. Any connector and pump are cancelled and
// each listener variant is created only if it does not exist yet. A state
// change event is emitted even when already listening.
func (m *Manager) StartListening() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.startListeningLocked()
}

// Connect starts a connect attempt to peer with the secure or insecure
// service. Any existing connector and pump are cancelled; listeners keep
// running.
func (m *Manager) Connect(peer transport.Peer, secure bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.cancelConnectorLocked()
	m.cancelPumpLocked()

	variant := transport.VariantInsecure
	if secure {
		variant = transport.VariantSecure
	}

	c := newConnector(m, peer, variant)
	m.connector = c
	m.debugLog("connect", "peer", peer.String(), "variant", variant.String())
	m.setStateLocked(StateConnecting, peer.DisplayName(), true)
	m.startWorker(c.run)
}

// Send writes data to the connected peer. It returns ErrNotConnected, and
// emits nothing, unless the state is CONNECTED. The write itself happens
// outside the manager lock.
func (m *Manager) Send(data []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state != StateConnected || m.pump == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	p := m.pump
	m.mu.Unlock()

	return p.write(data)
}

// Stop cancels every worker and enters NONE. Nothing restarts on its own.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.stopLocked()
}

// Close stops the manager, waits for worker goroutines to exit, then delivers
// the remaining events and flushes the protocol log. Later calls are no-ops; the manager cannot be
// restarted.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.stopLocked()
	m.closed = true
	m.mu.Unlock()

	m.workers.Wait()
	m.events.close()
	if m.records != nil {
		m.records.close()
	}
}

// connected is called by a listener or the connector that obtained a link.
// It returns false when the link lost the tie-break and was closed.
func (m *Manager) connected(link transport.Link, peer transport.Peer, variant transport.Variant, from any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	connID := uuid.New().String()

	reject := ""
	switch w := from.(type) {
	case *listener:
		if m.closed || m.state == StateNone || m.state == StateConnected {
			reject = "state " + m.state.String()
		}
	case *connector:
		if m.closed || m.connector != w {
			reject = "connector superseded"
		} else {
			// The winner hands its link over instead of closing it.
			m.connector = nil
			w.release()
		}
	}

	if reject != "" {
		m.debugLog("dropping link", "peer", peer.String(), "reason", reject)
		m.record(log.Event{
			ConnectionID: connID,
			Worker:       workerOf(from),
			Category:     log.CategoryLink,
			PeerAddress:  peer.Address,
			PeerName:     peer.Name,
			Variant:      variant.String(),
			Link:         &log.LinkEvent{Action: log.LinkRejected, Reason: reject},
		})
		closeQuietly(m, link, "rejected link")
		return false
	}

	m.cancelConnectorLocked()
	m.cancelPumpLocked()
	m.cancelListenersLocked()

	p := newPump(m, link, peer, variant, connID)
	m.pump = p

	m.record(log.Event{
		ConnectionID: connID,
		Worker:       workerOf(from),
		Category:     log.CategoryLink,
		PeerAddress:  peer.Address,
		PeerName:     peer.Name,
		Variant:      variant.String(),
		Link:         &log.LinkEvent{Action: log.LinkOpened},
	})

	m.events.enqueue(Event{
		Type:       EventDeviceIdentified,
		Peer:       peer,
		DeviceName: peer.DisplayName(),
	})
	m.setStateLocked(StateConnected, peer.DisplayName(), true)
	m.startWorker(p.run)
	return true
}

// connectionFailed is called by a connector whose attempt failed.
func (m *Manager) connectionFailed(c *connector, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.connector != c {
		return
	}
	m.connector = nil

	if m.logger != nil {
		m.logger.Warn("connect failed", "peer", c.peer.String(), "variant", c.variant.String(), "error", err)
	}
	m.recordError(log.WorkerConnector, "", err, "connect "+c.peer.String())
	m.noticeLocked(NoticeConnectFailed)

	m.setStateLocked(StateNone, "connect failed", false)
	m.startListeningLocked()
}

// connectionLost is called by a pump whose read failed.
func (m *Manager) connectionLost(p *pump, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.pump != p {
		return
	}
	m.pump = nil
	p.cancel()

	if m.logger != nil {
		m.logger.Warn("connection lost", "peer", p.peer.String(), "error", err)
	}
	m.record(log.Event{
		ConnectionID: p.connID,
		Worker:       log.WorkerPump,
		Category:     log.CategoryLink,
		PeerAddress:  p.peer.Address,
		PeerName:     p.peer.Name,
		Variant:      p.variant.String(),
		Link:         &log.LinkEvent{Action: log.LinkClosed, Reason: err.Error()},
	})
	m.noticeLocked(NoticeConnectionLost)

	m.setStateLocked(StateNone, "connection lost", false)
	m.startListeningLocked()
}

// dataReceived is called by a pump for every successful read.
func (m *Manager) dataReceived(p *pump, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.pump != p {
		return
	}

	m.record(log.Event{
		ConnectionID: p.connID,
		Direction:    log.DirectionIn,
		Worker:       log.WorkerPump,
		Category:     log.CategoryData,
		PeerAddress:  p.peer.Address,
		Frame:        log.NewFrameEvent(data),
	})
	m.events.enqueue(Event{Type: EventDataReceived, Peer: p.peer, Data: data})
}

// dataSent is called by a pump after a successful write.
func (m *Manager) dataSent(p *pump, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	m.record(log.Event{
		ConnectionID: p.connID,
		Direction:    log.DirectionOut,
		Worker:       log.WorkerPump,
		Category:     log.CategoryData,
		PeerAddress:  p.peer.Address,
		Frame:        log.NewFrameEvent(data),
	})
	m.events.enqueue(Event{Type: EventDataSent, Peer: p.peer, Data: append([]byte(nil), data...)})
}

// sendFailed is called by a pump whose write failed. The state is unchanged.
func (m *Manager) sendFailed(p *pump, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	if m.logger != nil {
		m.logger.Warn("send failed", "peer", p.peer.String(), "error", err)
	}
	m.recordError(log.WorkerPump, p.connID, err, "write")
	m.noticeLocked(NoticeSendFailed)
}

// listenerDone is called when a listener's accept loop has ended.
func (m *Manager) listenerDone(l *listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.secureListener == l {
		m.secureListener = nil
	}
	if m.insecureListener == l {
		m.insecureListener = nil
	}
}

func (m *Manager) startListeningLocked() {
	m.cancelConnectorLocked()
	m.cancelPumpLocked()

	if m.secureListener == nil {
		m.secureListener = m.newListener(transport.VariantSecure)
	}
	if m.insecureListener == nil {
		m.insecureListener = m.newListener(transport.VariantInsecure)
	}

	m.setStateLocked(StateListening, "", true)
}

func (m *Manager) stopLocked() {
	m.cancelConnectorLocked()
	m.cancelPumpLocked()
	m.cancelListenersLocked()
	m.setStateLocked(StateNone, "stopped", true)
}

func (m *Manager) cancelConnectorLocked() {
	if m.connector != nil {
		m.connector.cancel()
		m.connector = nil
	}
}

func (m *Manager) cancelPumpLocked() {
	if m.pump == nil {
		return
	}
	p := m.pump
	m.pump = nil
	p.cancel()

	m.record(log.Event{
		ConnectionID: p.connID,
		Worker:       log.WorkerManager,
		Category:     log.CategoryLink,
		PeerAddress:  p.peer.Address,
		PeerName:     p.peer.Name,
		Variant:      p.variant.String(),
		Link:         &log.LinkEvent{Action: log.LinkClosed, Reason: "cancelled"},
	})
}

func (m *Manager) cancelListenersLocked() {
	if m.secureListener != nil {
		m.secureListener.cancel()
		m.secureListener = nil
	}
	if m.insecureListener != nil {
		m.insecureListener.cancel()
		m.insecureListener = nil
	}
}

// setStateLocked changes the state. When notify is false the transition is
// recorded but no event is emitted.
func (m *Manager) setStateLocked(s State, reason string, notify bool) {
	old := m.state
	m.state = s

	m.debugLog("state change", "from", old.String(), "to", s.String(), "reason", reason)
	m.record(log.Event{
		Worker:   log.WorkerManager,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: old.String(),
			NewState: s.String(),
			Reason:   reason,
		},
	})

	if notify {
		m.events.enqueue(Event{Type: EventStateChanged, State: s})
	}
}

func (m *Manager) noticeLocked(msg string) {
	m.record(log.Event{
		Worker:   log.WorkerManager,
		Category: log.CategoryNotice,
		Notice:   &log.NoticeEvent{Message: msg},
	})
	m.events.enqueue(Event{Type: EventNotice, Message: msg})
}

func (m *Manager) startWorker(fn func()) {
	m.workers.Add(1)
	go func() {
		defer m.workers.Done()
		fn()
	}()
}

// record queues a link event for the protocol logger, if configured. The
// logger is called from the record goroutine, never under m.mu.
func (m *Manager) record(event log.Event) {
	if m.records == nil {
		return
	}
	event.Timestamp = time.Now()
	event.LocalRole = m.config.LocalRole
	m.records.enqueue(event)
}

func (m *Manager) recordError(worker log.Worker, connID string, err error, context string) {
	m.record(log.Event{
		ConnectionID: connID,
		Worker:       worker,
		Category:     log.CategoryError,
		Error:        &log.ErrorEventData{Message: err.Error(), Context: context},
	})
}

// debugLog logs a debug message if logging is enabled.
func (m *Manager) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func workerOf(from any) log.Worker {
	switch from.(type) {
	case *listener:
		return log.WorkerListener
	case *connector:
		return log.WorkerConnector
	default:
		return log.WorkerManager
	}
}

// closeQuietly closes c and logs a failure at debug level.
func closeQuietly(m *Manager, c interface{ Close() error }, what string) {
	if err := c.Close(); err != nil {
		m.debugLog("close failed", "what", what, "error", err)
	}
}
