package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ExchangeID identifies the onboarding exchange (UUID), when known.
	ExchangeID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates message flow relative to this device.
	Direction Direction `cbor:"3,keyasint"`

	// Transport indicates which side of the bridge carried the message.
	Transport Transport `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// PeerMAC is the Enrollee or Controller MAC, when known.
	PeerMAC string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an inbound message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outbound message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Transport indicates which transport carried the message.
type Transport uint8

const (
	// Transport80211 is the local radio side (action/GAS frames).
	Transport80211 Transport = 0
	// Transport1905 is the wired backhaul side (1905.1 TLVs).
	Transport1905 Transport = 1
	// TransportLocal marks events with no wire counterpart
	// (state changes, cache operations).
	TransportLocal Transport = 2
)

// String returns the transport name.
func (t Transport) String() string {
	switch t {
	case Transport80211:
		return "802.11"
	case Transport1905:
		return "1905"
	case TransportLocal:
		return "LOCAL"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a protocol frame or TLV.
	CategoryFrame Category = 0
	// CategoryState indicates a connection state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a frame or TLV passing through the bridge.
type FrameEvent struct {
	// FrameType is the DPP frame type, when the payload is a DPP frame.
	FrameType uint8 `cbor:"1,keyasint"`

	// Size is the full payload size in bytes.
	Size int `cbor:"2,keyasint"`

	// Data is the raw payload (may be truncated for large frames).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures connection lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state name (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state name.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}

// MaxFrameDataSize is the maximum frame payload captured in an event.
// Larger frames are truncated to bound log size.
const MaxFrameDataSize = 4096

// NewFrameEvent builds a frame event, truncating oversized payloads.
func NewFrameEvent(frameType uint8, data []byte) *FrameEvent {
	fe := &FrameEvent{
		FrameType: frameType,
		Size:      len(data),
		Data:      data,
	}
	if len(data) > MaxFrameDataSize {
		fe.Data = data[:MaxFrameDataSize]
		fe.Truncated = true
	}
	return fe
}
