package log

// Logger is the interface applications implement to receive protocol
// log events. Pass nil or Noop to disable logging.
type Logger interface {
	// Log records a protocol event. Implementations must be thread-safe.
	Log(event Event)
}

// Noop discards all events. Usable as a zero value.
type Noop struct{}

// Log discards the event.
func (Noop) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = Noop{}
