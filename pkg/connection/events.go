package connection

import "github.com/trackingkind/linkd/pkg/transport"

// Notice texts delivered with EventNotice.
const (
	NoticeConnectionLost = "Device connection was lost"
	NoticeConnectFailed  = "Unable to connect device"
	NoticeSendFailed     = "Couldn't send data to the other device"
)

// EventType identifies the kind of event.
type EventType uint8

const (
	// EventStateChanged reports the new state in Event.State.
	EventStateChanged EventType = iota

	// EventDeviceIdentified reports the connected peer in Event.DeviceName.
	EventDeviceIdentified

	// EventDataReceived carries bytes read from the link in Event.Data.
	EventDataReceived

	// EventDataSent carries the bytes written to the link in Event.Data.
	EventDataSent

	// EventNotice carries a user-facing message in Event.Message.
	EventNotice
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "StateChanged"
	case EventDeviceIdentified:
		return "DeviceIdentified"
	case EventDataReceived:
		return "DataReceived"
	case EventDataSent:
		return "DataSent"
	case EventNotice:
		return "Notice"
	default:
		return "Unknown"
	}
}

// Event is delivered to handlers registered with Manager.OnEvent.
// Only the fields relevant to Type are set. Data is owned by the handler.
type Event struct {
	Type       EventType
	State      State
	Peer       transport.Peer
	DeviceName string
	Data       []byte
	Message    string
}

// EventHandler receives manager events.
type EventHandler func(Event)
