package configurator

import (
	"bytes"

	"github.com/easymesh-protocol/easyconnect-go/pkg/log"
	"github.com/easymesh-protocol/easyconnect-go/pkg/session"
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

// maxChirpHashLen bounds the bootstrapping key hash accepted from a
// presence announcement; the chirp TLV carries a one-byte hash length.
const maxChirpHashLen = 0xFF

// ProxyAgent terminates the 802.11 side of Easy Connect for Enrollees
// in radio range and relays protocol content across the 1905.1
// backhaul toward the Controller, which makes all cryptographic
// decisions. The agent owns two caches that absorb the ordering slack
// between the transports: the chirp-hash cache for normal onboarding
// and the stored-reconfiguration cache for reconfiguration requests,
// which carry no usable hash until the signing key is known.
type ProxyAgent struct {
	*Configurator

	// toggleCCE flips CCE advertisement in beacon/probe templates.
	toggleCCE  func(enable bool) bool
	cceEnabled bool

	chirps   *chirpCache
	reconfig *reconfigStore
}

// NewProxyAgent creates a proxy-agent engine. The agent takes a
// toggleCCE capability in place of the base role's admission check:
// admission control is not its concern. logger may be nil.
func NewProxyAgent(mac wire.MACAddress, caps Capabilities, toggleCCE func(enable bool) bool, logger log.Logger) *ProxyAgent {
	return &ProxyAgent{
		Configurator: NewConfigurator(mac, caps, nil, logger),
		toggleCCE:    toggleCCE,
		chirps:       newChirpCache(),
		reconfig:     &reconfigStore{},
	}
}

// CCEEnabled reports the agent's view of CCE advertisement.
func (a *ProxyAgent) CCEEnabled() bool { return a.cceEnabled }

// ToggleCCE enables or disables advertisement of the Configurator
// Connectivity Element. The update is all-or-nothing: on failure the
// agent falls back to removing all advertisement, so a false return
// always means fully disabled, never partially enabled.
func (a *ProxyAgent) ToggleCCE(enable bool) bool {
	if a.toggleCCE == nil {
		return false
	}
	if !a.toggleCCE(enable) {
		if enable {
			a.toggleCCE(false)
		}
		a.cceEnabled = false
		return false
	}
	a.cceEnabled = enable
	return true
}

// HandlePresenceAnnouncement processes an inbound presence or
// reconfiguration announcement from an Enrollee.
//
// For a presence announcement the agent records (or restarts) the
// peer's connection and emits a chirp notification toward the
// Controller; a cached authentication request correlated to the
// announced hash is delivered over the air at the same time. A
// re-announcement from a known peer restarts its handshake: crypto
// material is released and re-drawn, bootstrapping data is kept.
//
// For a reconfiguration announcement the agent scans the stored
// reconfiguration requests for one signed by the announced
// configuration-signing key and, on a match, delivers it.
func (a *ProxyAgent) HandlePresenceAnnouncement(frame []byte, src wire.MACAddress) bool {
	f, err := wire.ParseFrame(frame)
	if err != nil {
		a.logError(err.Error(), "presence announcement")
		return false
	}
	a.logFrame(log.DirectionIn, log.Transport80211, src, uint8(f.Type), frame)

	switch f.Type {
	case wire.FramePresenceAnnouncement:
		return a.handlePresence(f, src)
	case wire.FrameReconfigAnnouncement:
		return a.handleReconfigAnnouncement(f, src)
	default:
		a.logError("unexpected frame type "+f.Type.String(), "presence announcement")
		return false
	}
}

func (a *ProxyAgent) handlePresence(f *wire.Frame, src wire.MACAddress) bool {
	hash, ok := f.Attr(wire.AttrRespBootstrapKeyHash)
	if !ok {
		a.logError("presence announcement without bootstrapping key hash", "presence announcement")
		return false
	}

	// Validate the hash and build the chirp TLV before touching the
	// record: malformed input must leave connection state unchanged.
	if len(hash) == 0 || len(hash) > maxChirpHashLen {
		a.logError("presence announcement with invalid hash length", "presence announcement")
		return false
	}
	chirp := &wire.ChirpValue{
		EnrolleeMAC:  src,
		MACPresent:   true,
		HashValidity: true,
		Hash:         hash,
	}
	chirpTLV, err := chirp.Marshal()
	if err != nil {
		a.logError(err.Error(), "presence announcement")
		return false
	}

	eph, err := session.NewEphemeral(session.DefaultDigestLen, session.DefaultNonceLen)
	if err != nil {
		a.logError(err.Error(), "presence announcement")
		return false
	}

	conn, known := a.connection(src)
	if known {
		// A re-announcement restarts the handshake. Bootstrapping data
		// survives; crypto material does not.
		conn.releaseEphemeral()
		conn.chirpAcked = false
	} else {
		conn = newConnection(src)
		a.conns[src] = conn
	}
	conn.eph = eph
	conn.chirpHash = hash
	a.setState(conn, StatePresenceSeen, "presence announcement")
	if a.caps.SendChirpNotification == nil {
		return false
	}
	ok = a.caps.SendChirpNotification(chirpTLV)
	a.logFrame(log.DirectionOut, log.Transport1905, src, uint8(wire.FramePresenceAnnouncement), chirpTLV)

	// An authentication request buffered ahead of this announcement is
	// deliverable now.
	if cached, hit := a.chirps.Take(hash); hit {
		if a.caps.SendActionFrame == nil || !a.caps.SendActionFrame(src, cached, 0, 0) {
			ok = false
		} else {
			a.setState(conn, StateAuthInProgress, "cached authentication request delivered")
		}
	}
	return ok
}

func (a *ProxyAgent) handleReconfigAnnouncement(f *wire.Frame, src wire.MACAddress) bool {
	want, ok := f.Attr(wire.AttrCSignKeyHash)
	if !ok {
		a.logError("reconfiguration announcement without signing key hash", "reconfiguration")
		return false
	}

	matched, hit := a.reconfig.TakeMatch(func(stored []byte) bool {
		return bytes.Equal(cSignKeyHash(stored), want)
	})
	if !hit {
		// No pending request signed by this key; nothing to do yet.
		return true
	}
	if a.caps.SendActionFrame == nil {
		return false
	}
	sent := a.caps.SendActionFrame(src, matched, 0, 0)
	a.logFrame(log.DirectionOut, log.Transport80211, src, uint8(wire.FrameReconfigAuthRequest), matched)
	return sent
}

// cSignKeyHash extracts the configuration-signing key hash attribute
// from a raw frame, or nil if the frame does not carry one.
func cSignKeyHash(raw []byte) []byte {
	f, err := wire.ParseFrame(raw)
	if err != nil {
		return nil
	}
	v, ok := f.Attr(wire.AttrCSignKeyHash)
	if !ok {
		return nil
	}
	return v
}

// HandleAuthResponse processes an authentication response received
// over the air from an Enrollee and forwards it, encapsulated, toward
// the Controller. If the agent's chirp notification for this peer has
// not been acknowledged yet, the raw response is also cached under its
// chirp hash and the chirp rides along with the encapsulation, since
// ordering between the transports is not guaranteed.
func (a *ProxyAgent) HandleAuthResponse(frame []byte, src wire.MACAddress) bool {
	f, err := wire.ParseFrame(frame)
	if err != nil {
		a.logError(err.Error(), "auth response")
		return false
	}
	if f.Type != wire.FrameAuthResponse && f.Type != wire.FrameReconfigAuthResponse {
		a.logError("unexpected frame type "+f.Type.String(), "auth response")
		return false
	}
	if _, ok := f.Attr(wire.AttrWrappedData); !ok {
		a.logError("auth response without wrapped data", "auth response")
		return false
	}
	if _, ok := a.ephemeral(src); !ok {
		return false
	}
	conn, _ := a.connection(src)
	a.logFrame(log.DirectionIn, log.Transport80211, src, uint8(f.Type), frame)

	encap := &wire.EncapDPP{
		EnrolleeMAC: src,
		MACPresent:  true,
		FrameType:   f.Type,
		Payload:     frame,
	}
	encapTLV, err := encap.Marshal()
	if err != nil {
		a.logError(err.Error(), "auth response")
		return false
	}

	var chirpTLV []byte
	if !conn.chirpAcked && len(conn.chirpHash) > 0 {
		a.chirps.Put(conn.chirpHash, frame)
		cv := &wire.ChirpValue{
			EnrolleeMAC:  src,
			MACPresent:   true,
			HashValidity: true,
			Hash:         conn.chirpHash,
		}
		if chirpTLV, err = cv.Marshal(); err != nil {
			a.logError(err.Error(), "auth response")
			return false
		}
	}

	if a.caps.SendProxiedEncapDPP == nil {
		return false
	}
	sent := a.caps.SendProxiedEncapDPP(encapTLV, chirpTLV)
	if sent {
		a.setState(conn, StateAuthInProgress, "auth response forwarded")
	}
	a.logFrame(log.DirectionOut, log.Transport1905, src, uint8(f.Type), encapTLV)
	return sent
}

// HandleConfigRequest forwards a GAS configuration request from an
// Enrollee across the backhaul. The agent terminates transport framing
// only; it makes no configuration decisions.
func (a *ProxyAgent) HandleConfigRequest(buf []byte, src wire.MACAddress) bool {
	if len(buf) == 0 {
		a.logError("empty configuration request", "config request")
		return false
	}
	a.logFrame(log.DirectionIn, log.Transport80211, src, 0, buf)

	encap := &wire.EncapDPP{
		EnrolleeMAC: src,
		MACPresent:  true,
		GASFrame:    true,
		Payload:     buf,
	}
	encapTLV, err := encap.Marshal()
	if err != nil {
		a.logError(err.Error(), "config request")
		return false
	}
	if a.caps.SendProxiedEncapDPP == nil {
		return false
	}
	sent := a.caps.SendProxiedEncapDPP(encapTLV, nil)
	if sent {
		if conn, ok := a.connection(src); ok {
			a.setState(conn, StateConfigInProgress, "config request forwarded")
		}
	}
	return sent
}

// HandleConfigResult forwards a configuration result frame toward the
// Controller. A result for an unknown MAC is still forwarded; forward
// paths never create connection records.
func (a *ProxyAgent) HandleConfigResult(frame []byte, src wire.MACAddress) bool {
	f, err := wire.ParseFrame(frame)
	if err != nil || f.Type != wire.FrameConfigResult {
		a.logError("malformed configuration result", "config result")
		return false
	}
	a.logFrame(log.DirectionIn, log.Transport80211, src, uint8(f.Type), frame)

	encap := &wire.EncapDPP{
		EnrolleeMAC: src,
		MACPresent:  true,
		FrameType:   f.Type,
		Payload:     frame,
	}
	encapTLV, err := encap.Marshal()
	if err != nil {
		a.logError(err.Error(), "config result")
		return false
	}
	if a.caps.SendProxiedEncapDPP == nil {
		return false
	}
	sent := a.caps.SendProxiedEncapDPP(encapTLV, nil)
	if !sent {
		return false
	}
	if conn, ok := a.connection(src); ok {
		if status, err := f.Status(); err == nil && status == wire.StatusOK {
			a.setState(conn, StateConfigured, "configuration result OK")
		}
	}
	return true
}

// HandleConnStatusResult forwards a connection status result toward
// the Controller and reports whether the Enrollee announced success.
// The return value is informational; it gates nothing at the agent.
func (a *ProxyAgent) HandleConnStatusResult(frame []byte, src wire.MACAddress) bool {
	f, err := wire.ParseFrame(frame)
	if err != nil || f.Type != wire.FrameConnStatusResult {
		a.logError("malformed connection status result", "conn status")
		return false
	}
	status, err := f.Status()
	if err != nil {
		a.logError(err.Error(), "conn status")
		return false
	}
	a.logFrame(log.DirectionIn, log.Transport80211, src, uint8(f.Type), frame)

	encap := &wire.EncapDPP{
		EnrolleeMAC: src,
		MACPresent:  true,
		FrameType:   f.Type,
		Payload:     frame,
	}
	encapTLV, err := encap.Marshal()
	if err != nil {
		a.logError(err.Error(), "conn status")
		return false
	}
	if a.caps.SendProxiedEncapDPP == nil {
		return false
	}
	if !a.caps.SendProxiedEncapDPP(encapTLV, nil) {
		return false
	}
	if conn, ok := a.connection(src); ok {
		a.setState(conn, StateConnStatusKnown, "connection status "+status.String())
	}
	return status == wire.StatusOK
}

// ProcessChirpNotification handles an inbound chirp TLV on the 1905
// side. Controller-to-agent chirps are not an expected flow; the
// handler exists for defensive handling of misrouted traffic. A chirp
// with hash validity cleared purges any buffered frame for that hash.
func (a *ProxyAgent) ProcessChirpNotification(chirp *wire.ChirpValue) bool {
	if chirp == nil || (chirp.HashValidity && len(chirp.Hash) == 0) {
		return false
	}
	if !chirp.HashValidity {
		a.chirps.Take(chirp.Hash)
	}
	a.logFrame(log.DirectionIn, log.Transport1905, chirp.EnrolleeMAC, uint8(wire.FramePresenceAnnouncement), chirp.Hash)
	return true
}

// ProcessProxyEncapDPP de-encapsulates a DPP message from the
// Controller and dispatches it to the matching 802.11 send path. An
// accompanying chirp value acknowledges the agent's own chirp and is
// correlated against the chirp-hash cache; an authentication request
// for an Enrollee that has not announced itself yet is buffered there
// instead of sent. Reconfiguration authentication requests go to the
// stored-reconfiguration cache, since they cannot be hashed up front.
func (a *ProxyAgent) ProcessProxyEncapDPP(encap *wire.EncapDPP, chirp *wire.ChirpValue) bool {
	if encap == nil {
		return false
	}

	if chirp != nil && len(chirp.Hash) > 0 {
		a.ackChirp(chirp)
	}

	if encap.GASFrame {
		return a.sendEncapPayload(encap, chirp, StateConfigInProgress, "config frame delivered")
	}

	switch encap.FrameType {
	case wire.FrameReconfigAuthRequest:
		a.reconfig.Add(encap.Payload)
		return true
	case wire.FrameAuthRequest:
		dest, ok := resolveDest(encap, chirp)
		if _, known := a.conns[dest]; !ok || !known {
			// The Enrollee has not announced itself here yet. Hold the
			// request until its chirp hash shows up over the air.
			if chirp == nil || len(chirp.Hash) == 0 {
				a.logError("auth request with no addressable Enrollee", "encap dpp")
				return false
			}
			a.chirps.Put(chirp.Hash, encap.Payload)
			return true
		}
		return a.sendEncapPayload(encap, chirp, StateAuthInProgress, "auth request delivered")
	case wire.FrameAuthConfirm:
		return a.sendEncapPayload(encap, chirp, StateAuthConfirmed, "auth confirm delivered")
	default:
		return a.sendEncapPayload(encap, chirp, StateNew, "")
	}
}

// ackChirp marks the connection matching the chirp as acknowledged and
// consumes the buffered counterpart frame, if any.
func (a *ProxyAgent) ackChirp(chirp *wire.ChirpValue) {
	if chirp.MACPresent {
		if conn, ok := a.conns[chirp.EnrolleeMAC]; ok {
			conn.chirpAcked = true
			a.chirps.Take(chirp.Hash)
			return
		}
	}
	for _, conn := range a.conns {
		if bytes.Equal(conn.chirpHash, chirp.Hash) {
			conn.chirpAcked = true
			a.chirps.Take(chirp.Hash)
			return
		}
	}
}

// sendEncapPayload transmits a de-encapsulated frame over the air and
// advances the destination's connection state. Forward paths never
// create connection records.
func (a *ProxyAgent) sendEncapPayload(encap *wire.EncapDPP, chirp *wire.ChirpValue, next State, reason string) bool {
	dest, ok := resolveDest(encap, chirp)
	if !ok {
		a.logError("encapsulated frame with no addressable Enrollee", "encap dpp")
		return false
	}
	if a.caps.SendActionFrame == nil {
		return false
	}
	sent := a.caps.SendActionFrame(dest, encap.Payload, 0, 0)
	a.logFrame(log.DirectionOut, log.Transport80211, dest, uint8(encap.FrameType), encap.Payload)
	if !sent {
		return false
	}
	if reason != "" {
		if conn, known := a.connection(dest); known {
			a.setState(conn, next, reason)
		}
	}
	return true
}

// resolveDest picks the over-the-air destination from the
// encapsulation or, failing that, the accompanying chirp.
func resolveDest(encap *wire.EncapDPP, chirp *wire.ChirpValue) (wire.MACAddress, bool) {
	if encap.MACPresent && !encap.EnrolleeMAC.IsZero() {
		return encap.EnrolleeMAC, true
	}
	if chirp != nil && chirp.MACPresent && !chirp.EnrolleeMAC.IsZero() {
		return chirp.EnrolleeMAC, true
	}
	return wire.ZeroMAC, false
}
