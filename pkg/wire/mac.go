package wire

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MACLen is the length of an 802.11 / 1905.1 MAC address in bytes.
const MACLen = 6

// MACAddress is a 6-byte MAC address. The array form is comparable, so
// it can be used directly as a map key for per-peer state.
type MACAddress [MACLen]byte

// ZeroMAC is the all-zero MAC address. It is never a valid peer.
var ZeroMAC MACAddress

// ParseMAC parses a MAC address in colon-separated ("aa:bb:cc:dd:ee:ff"),
// hyphen-separated, or bare-hex ("aabbccddeeff") form.
func ParseMAC(s string) (MACAddress, error) {
	cleaned := strings.NewReplacer(":", "", "-", "").Replace(s)
	if len(cleaned) != MACLen*2 {
		return ZeroMAC, fmt.Errorf("invalid MAC address %q", s)
	}
	raw, err := hex.DecodeString(cleaned)
	if err != nil {
		return ZeroMAC, fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	var mac MACAddress
	copy(mac[:], raw)
	return mac, nil
}

// MACFromBytes builds a MACAddress from a 6-byte slice.
func MACFromBytes(b []byte) (MACAddress, error) {
	if len(b) != MACLen {
		return ZeroMAC, fmt.Errorf("MAC address must be %d bytes, got %d", MACLen, len(b))
	}
	var mac MACAddress
	copy(mac[:], b)
	return mac, nil
}

// String returns the canonical lowercase colon-separated form.
func (m MACAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsZero returns true for the all-zero address.
func (m MACAddress) IsZero() bool {
	return m == ZeroMAC
}
