package configurator

import (
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

// ConfigObject is a DPP configuration object as handed to the JSON
// layer. Nil means the information is not available.
type ConfigObject map[string]any

// Capabilities are the outbound functions the environment injects into
// an engine at construction. The engine never performs I/O itself;
// every transmission goes through one of these. All functions must be
// non-blocking or queue internally, and a false return means the
// transport rejected the send.
//
// Nil members are treated as unavailable: any handler needing one
// fails rather than panics.
type Capabilities struct {
	// SendChirpNotification emits a DPP Chirp Value TLV toward the
	// Controller over 1905.1.
	SendChirpNotification func(chirpTLV []byte) bool

	// SendProxiedEncapDPP emits a 1905 Encap DPP TLV, optionally
	// accompanied by a Chirp Value TLV, toward the Controller.
	SendProxiedEncapDPP func(encapTLV, chirpTLV []byte) bool

	// SendActionFrame transmits an 802.11 action frame to dest on the
	// given frequency, dwelling waitMS for a reply window.
	SendActionFrame func(dest wire.MACAddress, frame []byte, frequency, waitMS uint) bool

	// BackhaulStaInfo returns the backhaul station configuration for
	// the given connection, or nil when none is available. Only the
	// Controller role consults it, when building configuration
	// responses; a proxy agent forwards config requests verbatim and
	// never calls it.
	BackhaulStaInfo func(conn *Connection) ConfigObject

	// IEEE1905Info returns the 1905-layer configuration for the given
	// connection, or nil when none is available. Controller-role only,
	// like BackhaulStaInfo.
	IEEE1905Info func(conn *Connection) ConfigObject
}
