package log

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func sampleEvent() Event {
	return Event{
		Timestamp:  time.Now(),
		ExchangeID: "e2a1",
		Direction:  DirectionIn,
		Transport:  Transport80211,
		Category:   CategoryFrame,
		PeerMAC:    "aa:bb:cc:dd:ee:ff",
		Frame:      NewFrameEvent(13, []byte{0x04, 0x09, 0x50, 0x6F, 0x9A}),
	}
}

func TestEncodeDecodeEvent(t *testing.T) {
	event := sampleEvent()

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	if decoded.ExchangeID != event.ExchangeID {
		t.Errorf("ExchangeID = %q, want %q", decoded.ExchangeID, event.ExchangeID)
	}
	if decoded.Transport != Transport80211 {
		t.Errorf("Transport = %v, want %v", decoded.Transport, Transport80211)
	}
	if decoded.Frame == nil {
		t.Fatal("Frame = nil")
	}
	if !bytes.Equal(decoded.Frame.Data, event.Frame.Data) {
		t.Error("frame data did not round-trip")
	}
}

func TestFrameEventTruncation(t *testing.T) {
	big := make([]byte, MaxFrameDataSize+100)
	fe := NewFrameEvent(0, big)

	if !fe.Truncated {
		t.Error("Truncated = false for oversized payload")
	}
	if len(fe.Data) != MaxFrameDataSize {
		t.Errorf("len(Data) = %d, want %d", len(fe.Data), MaxFrameDataSize)
	}
	if fe.Size != len(big) {
		t.Errorf("Size = %d, want %d", fe.Size, len(big))
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	fl.Log(sampleEvent())
	fl.Log(Event{
		Timestamp: time.Now(),
		Direction: DirectionOut,
		Transport: Transport1905,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: "NEW",
			NewState: "PRESENCE_SEEN",
		},
	})

	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Close is idempotent and later Log calls are ignored.
	if err := fl.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	fl.Log(sampleEvent())

	events, err := ReadEvents(path)
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[1].StateChange == nil || events[1].StateChange.NewState != "PRESENCE_SEEN" {
		t.Errorf("events[1].StateChange = %+v", events[1].StateChange)
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adapter := NewSlogAdapter(logger)
	adapter.Log(sampleEvent())
	adapter.Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Transport: TransportLocal,
		Error:     &ErrorEventData{Message: "send failed", Context: "chirp notification"},
	})

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("aa:bb:cc:dd:ee:ff")) {
		t.Error("peer MAC missing from slog output")
	}
	if !bytes.Contains([]byte(out), []byte("send failed")) {
		t.Error("error message missing from slog output")
	}
}

func TestNoop(t *testing.T) {
	var l Logger = Noop{}
	l.Log(sampleEvent()) // must not panic
}
