package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DPP public action frame header constants (Easy Connect §8.2).
const (
	// CategoryPublicAction is the 802.11 public action frame category.
	CategoryPublicAction = 0x04

	// ActionVendorSpecific is the vendor-specific public action field.
	ActionVendorSpecific = 0x09

	// OUITypeDPP identifies DPP within the WFA OUI namespace.
	OUITypeDPP = 0x1A

	// CryptoSuiteDefault is the only crypto suite defined by Easy Connect R2.
	CryptoSuiteDefault = 0x01

	// FrameHeaderLen is the fixed DPP action frame header length:
	// category, action, OUI (3), OUI type, crypto suite, frame type.
	FrameHeaderLen = 8
)

// OUIWFA is the Wi-Fi Alliance OUI carried in every DPP action frame.
var OUIWFA = [3]byte{0x50, 0x6F, 0x9A}

// FrameType identifies a DPP public action frame (Easy Connect Table 33).
type FrameType uint8

const (
	FrameAuthRequest          FrameType = 0
	FrameAuthResponse         FrameType = 1
	FrameAuthConfirm          FrameType = 2
	FramePeerDiscoveryRequest FrameType = 5
	FramePeerDiscoveryResp    FrameType = 6
	FrameConfigResult         FrameType = 11
	FrameConnStatusResult     FrameType = 12
	FramePresenceAnnouncement FrameType = 13
	FrameReconfigAnnouncement FrameType = 14
	FrameReconfigAuthRequest  FrameType = 15
	FrameReconfigAuthResponse FrameType = 16
	FrameReconfigAuthConfirm  FrameType = 17
)

// String returns the frame type name.
func (t FrameType) String() string {
	switch t {
	case FrameAuthRequest:
		return "AUTH_REQUEST"
	case FrameAuthResponse:
		return "AUTH_RESPONSE"
	case FrameAuthConfirm:
		return "AUTH_CONFIRM"
	case FramePeerDiscoveryRequest:
		return "PEER_DISCOVERY_REQUEST"
	case FramePeerDiscoveryResp:
		return "PEER_DISCOVERY_RESPONSE"
	case FrameConfigResult:
		return "CONFIG_RESULT"
	case FrameConnStatusResult:
		return "CONN_STATUS_RESULT"
	case FramePresenceAnnouncement:
		return "PRESENCE_ANNOUNCEMENT"
	case FrameReconfigAnnouncement:
		return "RECONFIG_ANNOUNCEMENT"
	case FrameReconfigAuthRequest:
		return "RECONFIG_AUTH_REQUEST"
	case FrameReconfigAuthResponse:
		return "RECONFIG_AUTH_RESPONSE"
	case FrameReconfigAuthConfirm:
		return "RECONFIG_AUTH_CONFIRM"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
	}
}

// Frame parsing errors.
var (
	// ErrFrameTooShort indicates the buffer is shorter than the DPP header.
	ErrFrameTooShort = errors.New("frame too short")

	// ErrNotDPPFrame indicates the header is not a WFA DPP public action frame.
	ErrNotDPPFrame = errors.New("not a DPP public action frame")

	// ErrAttrTruncated indicates a DPP attribute overruns the frame body.
	ErrAttrTruncated = errors.New("attribute truncated")

	// ErrAttrNotFound indicates a required attribute is absent.
	ErrAttrNotFound = errors.New("attribute not found")
)

// Frame is a parsed DPP public action frame. Attributes hold the body
// in wire order; cryptographically wrapped content stays opaque.
type Frame struct {
	Type       FrameType
	Attributes []Attribute
}

// ParseFrame parses a DPP public action frame from raw 802.11 action
// frame bytes (starting at the category field).
func ParseFrame(raw []byte) (*Frame, error) {
	if len(raw) < FrameHeaderLen {
		return nil, ErrFrameTooShort
	}
	if raw[0] != CategoryPublicAction || raw[1] != ActionVendorSpecific {
		return nil, ErrNotDPPFrame
	}
	if raw[2] != OUIWFA[0] || raw[3] != OUIWFA[1] || raw[4] != OUIWFA[2] || raw[5] != OUITypeDPP {
		return nil, ErrNotDPPFrame
	}

	attrs, err := ParseAttributes(raw[FrameHeaderLen:])
	if err != nil {
		return nil, err
	}

	return &Frame{
		Type:       FrameType(raw[7]),
		Attributes: attrs,
	}, nil
}

// Marshal encodes the frame back to raw action frame bytes.
func (f *Frame) Marshal() []byte {
	body := MarshalAttributes(f.Attributes)
	buf := make([]byte, 0, FrameHeaderLen+len(body))
	buf = append(buf, CategoryPublicAction, ActionVendorSpecific)
	buf = append(buf, OUIWFA[0], OUIWFA[1], OUIWFA[2], OUITypeDPP)
	buf = append(buf, CryptoSuiteDefault, byte(f.Type))
	return append(buf, body...)
}

// Attr returns the first attribute with the given ID.
func (f *Frame) Attr(id AttributeID) ([]byte, bool) {
	for _, a := range f.Attributes {
		if a.ID == id {
			return a.Value, true
		}
	}
	return nil, false
}

// Status returns the DPP Status attribute value. Frames that carry a
// status (configuration result, connection status result) include it
// unwrapped or inside wrapped data; only the unwrapped form is visible
// at this layer.
func (f *Frame) Status() (StatusCode, error) {
	v, ok := f.Attr(AttrStatus)
	if !ok || len(v) < 1 {
		return 0, fmt.Errorf("%w: status", ErrAttrNotFound)
	}
	return StatusCode(v[0]), nil
}

// StatusCode is the DPP Status attribute value (Easy Connect Table 20).
type StatusCode uint8

const (
	StatusOK            StatusCode = 0
	StatusNotCompatible StatusCode = 1
	StatusAuthFailure   StatusCode = 2
	StatusBadCode       StatusCode = 4
	StatusConfigFailure StatusCode = 5
	StatusNoMatch       StatusCode = 8
	StatusNoAP          StatusCode = 10
)

// String returns the status name.
func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotCompatible:
		return "NOT_COMPATIBLE"
	case StatusAuthFailure:
		return "AUTH_FAILURE"
	case StatusBadCode:
		return "BAD_CODE"
	case StatusConfigFailure:
		return "CONFIG_FAILURE"
	case StatusNoMatch:
		return "NO_MATCH"
	case StatusNoAP:
		return "NO_AP"
	default:
		return fmt.Sprintf("STATUS(%d)", uint8(s))
	}
}

// AttributeID identifies a DPP attribute (Easy Connect Table 17).
type AttributeID uint16

const (
	AttrStatus               AttributeID = 0x1000
	AttrInitBootstrapKeyHash AttributeID = 0x1001
	AttrRespBootstrapKeyHash AttributeID = 0x1002
	AttrInitProtocolKey      AttributeID = 0x1003
	AttrWrappedData          AttributeID = 0x1004
	AttrInitNonce            AttributeID = 0x1005
	AttrInitCapabilities     AttributeID = 0x1006
	AttrRespNonce            AttributeID = 0x1007
	AttrRespCapabilities     AttributeID = 0x1008
	AttrRespProtocolKey      AttributeID = 0x1009
	AttrConfigObject         AttributeID = 0x100C
	AttrConnector            AttributeID = 0x100D
	AttrConfigRequestObject  AttributeID = 0x100E
	AttrBootstrapKey         AttributeID = 0x100F
	AttrChannel              AttributeID = 0x1018
	AttrProtocolVersion      AttributeID = 0x1019
	AttrEnrolleeNonce        AttributeID = 0x101A
	AttrConfigReconfigFlags  AttributeID = 0x101D
	AttrCSignKeyHash         AttributeID = 0x101E
)

// Attribute is a single DPP attribute TLV. ID and length are
// little-endian on the wire.
type Attribute struct {
	ID    AttributeID
	Value []byte
}

// attrHeaderLen is the attribute ID + length field size.
const attrHeaderLen = 4

// ParseAttributes walks a DPP attribute list.
func ParseAttributes(body []byte) ([]Attribute, error) {
	var attrs []Attribute
	for off := 0; off < len(body); {
		if len(body)-off < attrHeaderLen {
			return nil, ErrAttrTruncated
		}
		id := AttributeID(binary.LittleEndian.Uint16(body[off:]))
		length := int(binary.LittleEndian.Uint16(body[off+2:]))
		off += attrHeaderLen
		if len(body)-off < length {
			return nil, ErrAttrTruncated
		}
		value := make([]byte, length)
		copy(value, body[off:off+length])
		attrs = append(attrs, Attribute{ID: id, Value: value})
		off += length
	}
	return attrs, nil
}

// MarshalAttributes encodes an attribute list in wire order.
func MarshalAttributes(attrs []Attribute) []byte {
	size := 0
	for _, a := range attrs {
		size += attrHeaderLen + len(a.Value)
	}
	buf := make([]byte, 0, size)
	var hdr [attrHeaderLen]byte
	for _, a := range attrs {
		binary.LittleEndian.PutUint16(hdr[:2], uint16(a.ID))
		binary.LittleEndian.PutUint16(hdr[2:], uint16(len(a.Value)))
		buf = append(buf, hdr[:]...)
		buf = append(buf, a.Value...)
	}
	return buf
}
