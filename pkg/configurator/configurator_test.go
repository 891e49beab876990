package configurator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymesh-protocol/easyconnect-go/pkg/bootstrap"
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

func testMAC(t *testing.T, s string) wire.MACAddress {
	t.Helper()
	mac, err := wire.ParseMAC(s)
	require.NoError(t, err)
	return mac
}

func testBoot(t *testing.T, mac string) *bootstrap.Info {
	t.Helper()
	return &bootstrap.Info{
		MAC:       testMAC(t, mac),
		Version:   2,
		PublicKey: []byte{0x30, 0x39, 0x02, 0x01, 0x07},
	}
}

func TestLookupNeverCreates(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)

	unknown := testMAC(t, "aa:bb:cc:dd:ee:ff")
	_, ok := c.connection(unknown)
	assert.False(t, ok)
	_, ok = c.ephemeral(unknown)
	assert.False(t, ok)
	_, ok = c.bootData(unknown)
	assert.False(t, ok)

	assert.Equal(t, 0, c.ConnectionCount(), "lookups must not create entries")
}

func TestOnboardEnrollee(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)
	boot := testBoot(t, "aa:bb:cc:dd:ee:01")

	require.True(t, c.OnboardEnrollee(boot))

	conn, ok := c.connection(boot.MAC)
	require.True(t, ok)
	assert.Equal(t, StateNew, conn.State())
	assert.Equal(t, boot, conn.BootData())
	assert.NotNil(t, conn.Ephemeral())
	assert.NotEmpty(t, conn.ExchangeID())
	assert.Equal(t, boot.ChirpHash(), conn.ChirpHash())
}

func TestOnboardEnrolleeRejections(t *testing.T) {
	denied := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{},
		func() bool { return false }, nil)

	assert.False(t, denied.OnboardEnrollee(testBoot(t, "aa:bb:cc:dd:ee:01")),
		"admission check must gate onboarding")
	assert.Equal(t, 0, denied.ConnectionCount())

	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)
	assert.False(t, c.OnboardEnrollee(nil))
	assert.False(t, c.OnboardEnrollee(&bootstrap.Info{}), "zero MAC must be rejected")
}

func TestOnboardEnrolleeRestartReleasesOldMaterial(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)
	boot := testBoot(t, "aa:bb:cc:dd:ee:01")

	require.True(t, c.OnboardEnrollee(boot))
	first, _ := c.connection(boot.MAC)
	oldEph := first.Ephemeral()

	require.True(t, c.OnboardEnrollee(boot))
	assert.True(t, oldEph.Destroyed(), "restart must release the old crypto material")
	assert.Equal(t, 1, c.ConnectionCount())

	second, _ := c.connection(boot.MAC)
	assert.NotEqual(t, first.ExchangeID(), second.ExchangeID())
}

func TestTeardownIdempotent(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)
	boot := testBoot(t, "aa:bb:cc:dd:ee:01")
	require.True(t, c.OnboardEnrollee(boot))

	conn, _ := c.connection(boot.MAC)
	eph := conn.Ephemeral()

	c.TeardownConnection(boot.MAC)
	assert.True(t, eph.Destroyed())
	assert.Equal(t, 0, c.ConnectionCount())

	// Second teardown and unknown-MAC teardown are silent no-ops.
	c.TeardownConnection(boot.MAC)
	c.TeardownConnection(testMAC(t, "00:11:22:33:44:55"))
	assert.Equal(t, 0, c.ConnectionCount())
}

func TestBaseHandlersAreNoOps(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)
	src := testMAC(t, "aa:bb:cc:dd:ee:01")

	assert.True(t, c.HandlePresenceAnnouncement(nil, src))
	assert.True(t, c.HandleAuthResponse(nil, src))
	assert.True(t, c.HandleConfigRequest(nil, src))
	assert.True(t, c.HandleConfigResult(nil, src))
	assert.True(t, c.HandleConnStatusResult(nil, src))
	assert.True(t, c.ProcessChirpNotification(nil))
	assert.True(t, c.ProcessProxyEncapDPP(nil, nil))
	assert.True(t, c.HandleProxiedConfigRequest(nil, src))
	assert.True(t, c.HandleProxiedConfigResult(nil, src))
	assert.True(t, c.HandleProxiedConnStatusResult(nil, src))

	assert.Equal(t, 0, c.ConnectionCount(), "no-op handlers must not create entries")
}

func TestMACAddr(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:AB:CD:EF:01:23"), Capabilities{}, nil, nil)
	assert.Equal(t, "02:ab:cd:ef:01:23", c.MACAddr())
}

func TestClearEphemeralKeepsRecord(t *testing.T) {
	c := NewConfigurator(testMAC(t, "02:00:00:00:00:01"), Capabilities{}, nil, nil)
	boot := testBoot(t, "aa:bb:cc:dd:ee:01")
	require.True(t, c.OnboardEnrollee(boot))

	conn, _ := c.connection(boot.MAC)
	eph := conn.Ephemeral()

	c.clearEphemeral(boot.MAC)
	assert.True(t, eph.Destroyed())
	assert.Nil(t, conn.Ephemeral())

	// Record and bootstrapping data survive a handshake restart.
	kept, ok := c.connection(boot.MAC)
	require.True(t, ok)
	assert.Equal(t, boot, kept.BootData())

	c.clearEphemeral(boot.MAC) // second clear is safe
}
