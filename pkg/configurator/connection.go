package configurator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/easymesh-protocol/easyconnect-go/pkg/bootstrap"
	"github.com/easymesh-protocol/easyconnect-go/pkg/session"
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

// State is the onboarding phase of one connection.
type State uint8

const (
	StateNew State = iota
	StatePresenceSeen
	StateAuthInProgress
	StateAuthConfirmed
	StateConfigInProgress
	StateConfigured
	StateConnStatusKnown
	StateTornDown
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StatePresenceSeen:
		return "PRESENCE_SEEN"
	case StateAuthInProgress:
		return "AUTH_IN_PROGRESS"
	case StateAuthConfirmed:
		return "AUTH_CONFIRMED"
	case StateConfigInProgress:
		return "CONFIG_IN_PROGRESS"
	case StateConfigured:
		return "CONFIGURED"
	case StateConnStatusKnown:
		return "CONN_STATUS_KNOWN"
	case StateTornDown:
		return "TORN_DOWN"
	default:
		return fmt.Sprintf("STATE(%d)", uint8(s))
	}
}

// Connection is the per-peer record of one onboarding exchange. It is
// the sole owner of its ephemeral crypto material; teardown is the
// only path that releases it.
type Connection struct {
	mac        wire.MACAddress
	exchangeID string

	// bootData is set once at onboarding start and read-only after.
	// Nil for peers first seen via presence announcement.
	bootData *bootstrap.Info

	eph   *session.Ephemeral
	state State

	// chirpHash correlates this peer's chirp notification with the
	// authentication exchange. chirpAcked flips once the Controller
	// responds to the chirp.
	chirpHash  []byte
	chirpAcked bool

	createdAt time.Time
}

func newConnection(mac wire.MACAddress) *Connection {
	return &Connection{
		mac:        mac,
		exchangeID: uuid.NewString(),
		state:      StateNew,
		createdAt:  time.Now(),
	}
}

// MAC returns the peer's MAC address.
func (c *Connection) MAC() wire.MACAddress { return c.mac }

// ExchangeID returns the exchange identifier assigned at creation.
func (c *Connection) ExchangeID() string { return c.exchangeID }

// State returns the current onboarding phase.
func (c *Connection) State() State { return c.state }

// BootData returns the out-of-band bootstrapping data, or nil when the
// peer was first seen over the air.
func (c *Connection) BootData() *bootstrap.Info { return c.bootData }

// Ephemeral returns the working crypto state, or nil once released.
func (c *Connection) Ephemeral() *session.Ephemeral { return c.eph }

// ChirpHash returns the hash correlating this peer's chirp, or nil if
// none is known yet.
func (c *Connection) ChirpHash() []byte { return c.chirpHash }

// CreatedAt returns when the record was created.
func (c *Connection) CreatedAt() time.Time { return c.createdAt }

// releaseEphemeral zeroes and drops the crypto material, keeping the
// record itself. Safe to call with no material present.
func (c *Connection) releaseEphemeral() {
	c.eph.Destroy()
	c.eph = nil
}
