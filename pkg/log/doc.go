// Package log provides protocol event logging for the configurator.
//
// The engine emits an Event for every frame it handles, every
// connection state change, and every failure. Applications receive
// events through the Logger interface: use SlogAdapter for console
// output during development, FileLogger for a compact CBOR capture
// that can be replayed with ReadEvents, or Noop to disable logging.
//
// Implementations of Logger must be safe for concurrent use; events
// should be queued or processed quickly since the engine logs inline.
package log
