package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseMAC(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "colon form", in: "AA:BB:CC:DD:EE:FF", want: "aa:bb:cc:dd:ee:ff"},
		{name: "bare hex", in: "aabbccddeeff", want: "aa:bb:cc:dd:ee:ff"},
		{name: "hyphen form", in: "aa-bb-cc-dd-ee-ff", want: "aa:bb:cc:dd:ee:ff"},
		{name: "too short", in: "aabbcc", wantErr: true},
		{name: "not hex", in: "zz:bb:cc:dd:ee:ff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mac, err := ParseMAC(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMAC(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMAC(%q) error = %v", tt.in, err)
			}
			if mac.String() != tt.want {
				t.Errorf("String() = %q, want %q", mac.String(), tt.want)
			}
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	f := &Frame{
		Type: FramePresenceAnnouncement,
		Attributes: []Attribute{
			{ID: AttrRespBootstrapKeyHash, Value: bytes.Repeat([]byte{0xAB}, 32)},
		},
	}

	raw := f.Marshal()
	parsed, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}

	if parsed.Type != FramePresenceAnnouncement {
		t.Errorf("Type = %v, want %v", parsed.Type, FramePresenceAnnouncement)
	}
	hash, ok := parsed.Attr(AttrRespBootstrapKeyHash)
	if !ok {
		t.Fatal("Attr(AttrRespBootstrapKeyHash) not found")
	}
	if !bytes.Equal(hash, bytes.Repeat([]byte{0xAB}, 32)) {
		t.Error("attribute value did not round-trip")
	}
}

func TestParseFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want error
	}{
		{name: "empty", raw: nil, want: ErrFrameTooShort},
		{name: "short header", raw: []byte{CategoryPublicAction, ActionVendorSpecific}, want: ErrFrameTooShort},
		{
			name: "wrong category",
			raw:  []byte{0x05, ActionVendorSpecific, 0x50, 0x6F, 0x9A, OUITypeDPP, 1, 0},
			want: ErrNotDPPFrame,
		},
		{
			name: "wrong OUI",
			raw:  []byte{CategoryPublicAction, ActionVendorSpecific, 0x00, 0x11, 0x22, OUITypeDPP, 1, 0},
			want: ErrNotDPPFrame,
		},
		{
			name: "truncated attribute",
			raw: append(
				[]byte{CategoryPublicAction, ActionVendorSpecific, 0x50, 0x6F, 0x9A, OUITypeDPP, 1, 0},
				0x00, 0x10, 0xFF, 0x00, // value claims 255 bytes, none follow
			),
			want: ErrAttrTruncated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFrameStatus(t *testing.T) {
	f := &Frame{
		Type: FrameConnStatusResult,
		Attributes: []Attribute{
			{ID: AttrStatus, Value: []byte{byte(StatusNoAP)}},
		},
	}

	raw := f.Marshal()
	parsed, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}

	status, err := parsed.Status()
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status != StatusNoAP {
		t.Errorf("Status() = %v, want %v", status, StatusNoAP)
	}

	// A frame without a status attribute reports not-found.
	bare := &Frame{Type: FrameConfigResult}
	if _, err := bare.Status(); !errors.Is(err, ErrAttrNotFound) {
		t.Errorf("Status() error = %v, want %v", err, ErrAttrNotFound)
	}
}

func TestAttributesPreserveOrder(t *testing.T) {
	attrs := []Attribute{
		{ID: AttrInitNonce, Value: []byte{1, 2, 3}},
		{ID: AttrWrappedData, Value: []byte{4, 5}},
		{ID: AttrInitNonce, Value: []byte{6}}, // duplicate IDs are legal on the wire
	}

	parsed, err := ParseAttributes(MarshalAttributes(attrs))
	if err != nil {
		t.Fatalf("ParseAttributes() error = %v", err)
	}
	if len(parsed) != 3 {
		t.Fatalf("len = %d, want 3", len(parsed))
	}
	for i := range attrs {
		if parsed[i].ID != attrs[i].ID || !bytes.Equal(parsed[i].Value, attrs[i].Value) {
			t.Errorf("attribute %d = %+v, want %+v", i, parsed[i], attrs[i])
		}
	}
}
