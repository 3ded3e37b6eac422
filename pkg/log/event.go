package log

import "time"

// MaxFrameCapture is the number of payload bytes kept in a FrameEvent.
const MaxFrameCapture = 256

// Event represents a link event captured by the connection manager.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the link (UUID). Empty for events
	// that are not tied to a link.
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Worker that produced the event.
	Worker Worker `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole is the local device name.
	LocalRole string `cbor:"6,keyasint,omitempty"`

	// PeerAddress is the remote device address.
	PeerAddress string `cbor:"7,keyasint,omitempty"`

	// PeerName is the remote device name, if known.
	PeerName string `cbor:"8,keyasint,omitempty"`

	// Variant is the service variant of the link ("Secure" or "Insecure").
	Variant string `cbor:"9,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Link        *LinkEvent        `cbor:"12,keyasint,omitempty"`
	Notice      *NoticeEvent      `cbor:"13,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionNone is used for events without a data direction.
	DirectionNone Direction = 0
	// DirectionIn indicates incoming data.
	DirectionIn Direction = 1
	// DirectionOut indicates outgoing data.
	DirectionOut Direction = 2
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "-"
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Worker identifies which part of the connection manager produced an event.
type Worker uint8

const (
	// WorkerManager is the state machine itself.
	WorkerManager Worker = 0
	// WorkerListener is a listener worker (secure or insecure).
	WorkerListener Worker = 1
	// WorkerConnector is the connector worker.
	WorkerConnector Worker = 2
	// WorkerPump is the data pump worker.
	WorkerPump Worker = 3
)

// String returns the worker name.
func (w Worker) String() string {
	switch w {
	case WorkerManager:
		return "MANAGER"
	case WorkerListener:
		return "LISTENER"
	case WorkerConnector:
		return "CONNECTOR"
	case WorkerPump:
		return "PUMP"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryData indicates link payload.
	CategoryData Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryLink indicates a link lifecycle event.
	CategoryLink Category = 2
	// CategoryNotice indicates a user notice.
	CategoryNotice Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryData:
		return "DATA"
	case CategoryState:
		return "STATE"
	case CategoryLink:
		return "LINK"
	case CategoryNotice:
		return "NOTICE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures bytes read from or written to a link.
type FrameEvent struct {
	// Size is the number of bytes transferred.
	Size int `cbor:"1,keyasint"`

	// Data is the payload (truncated to MaxFrameCapture bytes).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent captures data, copying at most MaxFrameCapture bytes.
func NewFrameEvent(data []byte) *FrameEvent {
	frame := &FrameEvent{Size: len(data)}
	n := len(data)
	if n > MaxFrameCapture {
		n = MaxFrameCapture
		frame.Truncated = true
	}
	if n > 0 {
		frame.Data = append([]byte(nil), data[:n]...)
	}
	return frame
}

// StateChangeEvent captures a connection state transition.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// LinkEvent captures the lifecycle of a link.
type LinkEvent struct {
	// Action is what happened to the link.
	Action LinkAction `cbor:"1,keyasint"`

	// Reason for the action (if available).
	Reason string `cbor:"2,keyasint,omitempty"`
}

// LinkAction indicates what happened to a link.
type LinkAction uint8

const (
	// LinkOpened indicates a link became the active connection.
	LinkOpened LinkAction = 0
	// LinkClosed indicates the active link was closed.
	LinkClosed LinkAction = 1
	// LinkRejected indicates a link lost the tie-break and was dropped.
	LinkRejected LinkAction = 2
)

// String returns the link action name.
func (a LinkAction) String() string {
	switch a {
	case LinkOpened:
		return "OPENED"
	case LinkClosed:
		return "CLOSED"
	case LinkRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// NoticeEvent captures a notice delivered to the user.
type NoticeEvent struct {
	// Message is the notice text.
	Message string `cbor:"1,keyasint"`
}

// ErrorEventData captures errors in any worker.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
