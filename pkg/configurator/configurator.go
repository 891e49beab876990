package configurator

import (
	"time"

	"github.com/easymesh-protocol/easyconnect-go/pkg/bootstrap"
	"github.com/easymesh-protocol/easyconnect-go/pkg/log"
	"github.com/easymesh-protocol/easyconnect-go/pkg/session"
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

// Engine is the dispatch contract both roles implement. The external
// dispatcher identifies an inbound message's type and invokes exactly
// one handler; the bool result tells it whether the message was
// handled (or harmlessly ignored) versus failed.
type Engine interface {
	OnboardEnrollee(boot *bootstrap.Info) bool

	HandlePresenceAnnouncement(frame []byte, src wire.MACAddress) bool
	HandleAuthResponse(frame []byte, src wire.MACAddress) bool
	HandleConfigRequest(buf []byte, src wire.MACAddress) bool
	HandleConfigResult(frame []byte, src wire.MACAddress) bool
	HandleConnStatusResult(frame []byte, src wire.MACAddress) bool
	ProcessChirpNotification(chirp *wire.ChirpValue) bool
	ProcessProxyEncapDPP(encap *wire.EncapDPP, chirp *wire.ChirpValue) bool

	HandleProxiedConfigRequest(encap []byte, dest wire.MACAddress) bool
	HandleProxiedConfigResult(encap []byte, dest wire.MACAddress) bool
	HandleProxiedConnStatusResult(encap []byte, dest wire.MACAddress) bool

	TeardownConnection(mac wire.MACAddress)
	MACAddr() string
}

// Compile-time interface satisfaction checks.
var (
	_ Engine = (*Configurator)(nil)
	_ Engine = (*ProxyAgent)(nil)
)

// noCopy triggers a vet warning when a struct containing it is copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Configurator is the base engine: the Controller-role contract. It
// owns the connection table and the onboarding entry point; all 802.11
// handlers are permissive no-ops, overridden by ProxyAgent where local
// radio termination is required.
//
// A Configurator must not be copied: each instance is the sole owner
// of its connection table, and an alias could release the same crypto
// state twice.
type Configurator struct {
	noCopy noCopy

	mac  wire.MACAddress
	caps Capabilities

	// canOnboard gates admission of additional APs. Base role only;
	// nil means unconstrained.
	canOnboard func() bool

	conns  map[wire.MACAddress]*Connection
	logger log.Logger
}

// NewConfigurator creates a base engine for the device with the given
// MAC address. canOnboard may be nil; logger may be nil to disable
// logging.
func NewConfigurator(mac wire.MACAddress, caps Capabilities, canOnboard func() bool, logger log.Logger) *Configurator {
	if logger == nil {
		logger = log.Noop{}
	}
	return &Configurator{
		mac:        mac,
		caps:       caps,
		canOnboard: canOnboard,
		conns:      make(map[wire.MACAddress]*Connection),
		logger:     logger,
	}
}

// MACAddr returns the device's own MAC address as a string.
func (c *Configurator) MACAddr() string { return c.mac.String() }

// ConnectionCount returns the number of live connection records.
func (c *Configurator) ConnectionCount() int { return len(c.conns) }

// Connections returns the live connection records in no particular
// order.
func (c *Configurator) Connections() []*Connection {
	out := make([]*Connection, 0, len(c.conns))
	for _, conn := range c.conns {
		out = append(out, conn)
	}
	return out
}

// OnboardEnrollee starts onboarding for the peer described by boot.
// It creates (or resets) the peer's connection record and reports
// whether the flow was initiated; completion is asynchronous and
// observed through the handlers. A nil boot, a zero peer MAC, or a
// denied admission check all fail without side effects.
func (c *Configurator) OnboardEnrollee(boot *bootstrap.Info) bool {
	if boot == nil || boot.MAC.IsZero() {
		c.logError("onboard rejected: missing bootstrap MAC", "onboard")
		return false
	}
	if c.canOnboard != nil && !c.canOnboard() {
		c.logError("onboard rejected: no onboarding capacity", "onboard")
		return false
	}

	eph, err := session.NewEphemeral(session.DefaultDigestLen, session.DefaultNonceLen)
	if err != nil {
		c.logError(err.Error(), "onboard")
		return false
	}

	// Restarting onboarding for a known peer replaces its record; the
	// old crypto material is released first.
	if old, ok := c.conns[boot.MAC]; ok {
		old.releaseEphemeral()
	}

	conn := newConnection(boot.MAC)
	conn.bootData = boot
	conn.eph = eph
	conn.chirpHash = boot.ChirpHash()
	c.conns[boot.MAC] = conn

	c.logState(conn, "", "onboarding started")
	return true
}

// TeardownConnection releases the peer's crypto material and removes
// its record. Unknown MACs are a silent no-op; calling twice is safe.
func (c *Configurator) TeardownConnection(mac wire.MACAddress) {
	conn, ok := c.conns[mac]
	if !ok {
		return
	}
	old := conn.state.String()
	conn.releaseEphemeral()
	conn.state = StateTornDown
	delete(c.conns, mac)
	c.logState(conn, old, "teardown")
}

// connection looks up a peer's record. It never creates one: creation
// happens only in OnboardEnrollee or at explicit first contact.
func (c *Configurator) connection(mac wire.MACAddress) (*Connection, bool) {
	conn, ok := c.conns[mac]
	return conn, ok
}

// ephemeral looks up a peer's crypto state, logging a diagnostic when
// the peer or its material is unknown.
func (c *Configurator) ephemeral(mac wire.MACAddress) (*session.Ephemeral, bool) {
	conn, ok := c.conns[mac]
	if !ok || conn.eph == nil {
		c.logError("no ephemeral context for "+mac.String(), "lookup")
		return nil, false
	}
	return conn.eph, true
}

// bootData looks up a peer's bootstrapping data with the same
// not-found discipline as ephemeral.
func (c *Configurator) bootData(mac wire.MACAddress) (*bootstrap.Info, bool) {
	conn, ok := c.conns[mac]
	if !ok || conn.bootData == nil {
		c.logError("no bootstrap data for "+mac.String(), "lookup")
		return nil, false
	}
	return conn.bootData, true
}

// clearEphemeral zeroes a peer's crypto material while keeping the
// record, used when restarting a handshake without discarding
// bootstrapping data.
func (c *Configurator) clearEphemeral(mac wire.MACAddress) {
	conn, ok := c.conns[mac]
	if !ok {
		return
	}
	conn.releaseEphemeral()
}

// setState transitions a connection and logs the change.
func (c *Configurator) setState(conn *Connection, s State, reason string) {
	if conn.state == s {
		return
	}
	old := conn.state.String()
	conn.state = s
	c.logState(conn, old, reason)
}

// The base role never touches raw 802.11 frames: a Controller only
// receives and emits 1905.1 messages, so every handler below reports
// "nothing to do here".

func (c *Configurator) HandlePresenceAnnouncement([]byte, wire.MACAddress) bool { return true }
func (c *Configurator) HandleAuthResponse([]byte, wire.MACAddress) bool         { return true }
func (c *Configurator) HandleConfigRequest([]byte, wire.MACAddress) bool        { return true }
func (c *Configurator) HandleConfigResult([]byte, wire.MACAddress) bool         { return true }
func (c *Configurator) HandleConnStatusResult([]byte, wire.MACAddress) bool     { return true }

// ProcessChirpNotification handles an inbound DPP Chirp Value TLV.
// No-op in the base role.
func (c *Configurator) ProcessChirpNotification(*wire.ChirpValue) bool { return true }

// ProcessProxyEncapDPP handles an inbound 1905 Encap DPP TLV with an
// optional accompanying chirp. No-op in the base role.
func (c *Configurator) ProcessProxyEncapDPP(*wire.EncapDPP, *wire.ChirpValue) bool { return true }

// Proxied GAS handlers, overridden by whichever side terminates
// 802.11.

func (c *Configurator) HandleProxiedConfigRequest([]byte, wire.MACAddress) bool    { return true }
func (c *Configurator) HandleProxiedConfigResult([]byte, wire.MACAddress) bool     { return true }
func (c *Configurator) HandleProxiedConnStatusResult([]byte, wire.MACAddress) bool { return true }

func (c *Configurator) logState(conn *Connection, oldState, reason string) {
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		ExchangeID: conn.exchangeID,
		Transport:  log.TransportLocal,
		Category:   log.CategoryState,
		PeerMAC:    conn.mac.String(),
		StateChange: &log.StateChangeEvent{
			OldState: oldState,
			NewState: conn.state.String(),
			Reason:   reason,
		},
	})
}

func (c *Configurator) logError(msg, context string) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Transport: log.TransportLocal,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Message: msg, Context: context},
	})
}

func (c *Configurator) logFrame(dir log.Direction, transport log.Transport, peer wire.MACAddress, frameType uint8, data []byte) {
	ev := log.Event{
		Timestamp: time.Now(),
		Direction: dir,
		Transport: transport,
		Category:  log.CategoryFrame,
		PeerMAC:   peer.String(),
		Frame:     log.NewFrameEvent(frameType, data),
	}
	if conn, ok := c.conns[peer]; ok {
		ev.ExchangeID = conn.exchangeID
	}
	c.logger.Log(ev)
}
