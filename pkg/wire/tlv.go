package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TLV flag bits shared by the Chirp Value and Encap DPP TLVs.
const (
	flagEnrolleeMACPresent = 0x80
	flagHashValidity       = 0x40
	flagGASFrame           = 0x40
)

// TLV parsing errors.
var (
	// ErrTLVTooShort indicates the TLV value is shorter than its fixed fields.
	ErrTLVTooShort = errors.New("TLV too short")

	// ErrTLVTruncated indicates a variable-length field overruns the TLV.
	ErrTLVTruncated = errors.New("TLV truncated")
)

// ChirpValue is the Multi-AP DPP Chirp Value TLV. It correlates a
// chirping Enrollee with its bootstrapping key hash across the 1905
// backhaul.
type ChirpValue struct {
	// EnrolleeMAC is the chirping Enrollee's MAC address.
	// Valid only when MACPresent is set.
	EnrolleeMAC MACAddress
	MACPresent  bool

	// HashValidity indicates Hash establishes (true) or purges (false)
	// the correlation for this Enrollee.
	HashValidity bool

	// Hash is the chirp hash: SHA-256 over "chirp" and the Enrollee's
	// bootstrapping key.
	Hash []byte
}

// ParseChirpValue decodes a DPP Chirp Value TLV value field.
func ParseChirpValue(raw []byte) (*ChirpValue, error) {
	if len(raw) < 1 {
		return nil, ErrTLVTooShort
	}
	cv := &ChirpValue{
		MACPresent:   raw[0]&flagEnrolleeMACPresent != 0,
		HashValidity: raw[0]&flagHashValidity != 0,
	}
	off := 1
	if cv.MACPresent {
		if len(raw)-off < MACLen {
			return nil, ErrTLVTruncated
		}
		copy(cv.EnrolleeMAC[:], raw[off:off+MACLen])
		off += MACLen
	}
	if len(raw)-off < 1 {
		return nil, ErrTLVTruncated
	}
	hashLen := int(raw[off])
	off++
	if len(raw)-off < hashLen {
		return nil, ErrTLVTruncated
	}
	cv.Hash = make([]byte, hashLen)
	copy(cv.Hash, raw[off:off+hashLen])
	return cv, nil
}

// Marshal encodes the TLV value field.
func (cv *ChirpValue) Marshal() ([]byte, error) {
	if len(cv.Hash) > 0xFF {
		return nil, fmt.Errorf("chirp hash too long: %d bytes", len(cv.Hash))
	}
	var flags byte
	if cv.MACPresent {
		flags |= flagEnrolleeMACPresent
	}
	if cv.HashValidity {
		flags |= flagHashValidity
	}
	buf := make([]byte, 0, 2+MACLen+len(cv.Hash))
	buf = append(buf, flags)
	if cv.MACPresent {
		buf = append(buf, cv.EnrolleeMAC[:]...)
	}
	buf = append(buf, byte(len(cv.Hash)))
	return append(buf, cv.Hash...), nil
}

// EncapDPP is the 1905.1 Encap DPP TLV: a DPP frame carried across
// the wired backhaul between a Proxy Agent and the Controller.
type EncapDPP struct {
	// EnrolleeMAC addresses the frame to/from a specific Enrollee.
	// Valid only when MACPresent is set.
	EnrolleeMAC MACAddress
	MACPresent  bool

	// GASFrame marks Payload as an 802.11 GAS frame rather than a DPP
	// public action frame.
	GASFrame bool

	// FrameType is the DPP frame type of the payload. Meaningless when
	// GASFrame is set (GAS frames carry their own framing).
	FrameType FrameType

	// Payload is the encapsulated frame, byte-for-byte as sent or
	// received on the air.
	Payload []byte
}

// ParseEncapDPP decodes a 1905 Encap DPP TLV value field.
func ParseEncapDPP(raw []byte) (*EncapDPP, error) {
	if len(raw) < 1 {
		return nil, ErrTLVTooShort
	}
	e := &EncapDPP{
		MACPresent: raw[0]&flagEnrolleeMACPresent != 0,
		GASFrame:   raw[0]&flagGASFrame != 0,
	}
	off := 1
	if e.MACPresent {
		if len(raw)-off < MACLen {
			return nil, ErrTLVTruncated
		}
		copy(e.EnrolleeMAC[:], raw[off:off+MACLen])
		off += MACLen
	}
	if len(raw)-off < 3 {
		return nil, ErrTLVTruncated
	}
	e.FrameType = FrameType(raw[off])
	payloadLen := int(binary.BigEndian.Uint16(raw[off+1:]))
	off += 3
	if len(raw)-off < payloadLen {
		return nil, ErrTLVTruncated
	}
	e.Payload = make([]byte, payloadLen)
	copy(e.Payload, raw[off:off+payloadLen])
	return e, nil
}

// Marshal encodes the TLV value field. Encapsulation is lossless: the
// payload round-trips byte-for-byte through ParseEncapDPP.
func (e *EncapDPP) Marshal() ([]byte, error) {
	if len(e.Payload) > 0xFFFF {
		return nil, fmt.Errorf("encap payload too long: %d bytes", len(e.Payload))
	}
	var flags byte
	if e.MACPresent {
		flags |= flagEnrolleeMACPresent
	}
	if e.GASFrame {
		flags |= flagGASFrame
	}
	buf := make([]byte, 0, 4+MACLen+len(e.Payload))
	buf = append(buf, flags)
	if e.MACPresent {
		buf = append(buf, e.EnrolleeMAC[:]...)
	}
	var lenField [2]byte
	binary.BigEndian.PutUint16(lenField[:], uint16(len(e.Payload)))
	buf = append(buf, byte(e.FrameType))
	buf = append(buf, lenField[:]...)
	return append(buf, e.Payload...), nil
}
