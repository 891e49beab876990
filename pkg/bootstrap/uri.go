// Package bootstrap parses and formats DPP bootstrapping URIs, the
// out-of-band data (QR code, NFC tag) that starts onboarding.
package bootstrap

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

// URIPrefix is the scheme prefix of a DPP bootstrapping URI.
const URIPrefix = "DPP:"

// chirpHashTag is the tag hashed with the bootstrapping key to form
// the chirp hash (Easy Connect §6.2.2).
const chirpHashTag = "chirp"

// URI parsing errors.
var (
	ErrInvalidPrefix     = errors.New("missing DPP: prefix")
	ErrInvalidTerminator = errors.New("URI not terminated with ;;")
	ErrMissingKey        = errors.New("missing public key (K:) field")
	ErrInvalidChannel    = errors.New("invalid channel list")
	ErrInvalidMAC        = errors.New("invalid MAC field")
	ErrInvalidKey        = errors.New("invalid public key encoding")
)

// ChannelSpec is one operating class / channel pair from the C: field.
type ChannelSpec struct {
	OpClass uint8
	Channel uint8
}

// Info is parsed bootstrapping data for one Enrollee: the Go form of
// the data scanned out-of-band. It is read-only once onboarding starts.
type Info struct {
	// Channels lists where the Enrollee listens for DPP frames.
	Channels []ChannelSpec

	// MAC is the Enrollee's radio MAC address, if the URI carried one.
	MAC wire.MACAddress

	// Version is the Enrollee's DPP protocol version (V: field, 0 if absent).
	Version uint8

	// Information is the free-form I: field.
	Information string

	// PublicKey is the Enrollee's bootstrapping public key,
	// base64-decoded DER (SubjectPublicKeyInfo).
	PublicKey []byte
}

// ParseURI parses a DPP bootstrapping URI.
//
// Example: DPP:C:81/1,115/36;M:aabbccddeeff;V:2;K:MDkwEwY...;;
func ParseURI(uri string) (*Info, error) {
	if !strings.HasPrefix(uri, URIPrefix) {
		return nil, ErrInvalidPrefix
	}
	body, ok := strings.CutSuffix(uri[len(URIPrefix):], ";;")
	if !ok {
		return nil, ErrInvalidTerminator
	}

	info := &Info{}
	for _, field := range strings.Split(body, ";") {
		if field == "" {
			continue
		}
		tag, value, found := strings.Cut(field, ":")
		if !found {
			return nil, fmt.Errorf("malformed field %q", field)
		}
		switch tag {
		case "C":
			channels, err := parseChannelList(value)
			if err != nil {
				return nil, err
			}
			info.Channels = channels
		case "M":
			mac, err := wire.ParseMAC(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidMAC, err)
			}
			info.MAC = mac
		case "V":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid version %q", value)
			}
			info.Version = uint8(v)
		case "I":
			info.Information = value
		case "K":
			key, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
			}
			info.PublicKey = key
		default:
			// Unknown tags are ignored for forward compatibility.
		}
	}

	if len(info.PublicKey) == 0 {
		return nil, ErrMissingKey
	}
	return info, nil
}

// parseChannelList parses "81/1,115/36" into channel specs.
func parseChannelList(s string) ([]ChannelSpec, error) {
	var channels []ChannelSpec
	for _, pair := range strings.Split(s, ",") {
		classStr, chanStr, found := strings.Cut(pair, "/")
		if !found {
			return nil, ErrInvalidChannel
		}
		class, err := strconv.ParseUint(classStr, 10, 8)
		if err != nil {
			return nil, ErrInvalidChannel
		}
		ch, err := strconv.ParseUint(chanStr, 10, 8)
		if err != nil {
			return nil, ErrInvalidChannel
		}
		channels = append(channels, ChannelSpec{OpClass: uint8(class), Channel: uint8(ch)})
	}
	return channels, nil
}

// URI returns the bootstrapping data formatted as a DPP URI.
func (i *Info) URI() string {
	var b strings.Builder
	b.WriteString(URIPrefix)
	if len(i.Channels) > 0 {
		parts := make([]string, len(i.Channels))
		for n, c := range i.Channels {
			parts[n] = fmt.Sprintf("%d/%d", c.OpClass, c.Channel)
		}
		fmt.Fprintf(&b, "C:%s;", strings.Join(parts, ","))
	}
	if !i.MAC.IsZero() {
		fmt.Fprintf(&b, "M:%s;", strings.ReplaceAll(i.MAC.String(), ":", ""))
	}
	if i.Information != "" {
		fmt.Fprintf(&b, "I:%s;", i.Information)
	}
	if i.Version != 0 {
		fmt.Fprintf(&b, "V:%d;", i.Version)
	}
	fmt.Fprintf(&b, "K:%s;;", base64.StdEncoding.EncodeToString(i.PublicKey))
	return b.String()
}

// KeyHash is the SHA-256 digest of the bootstrapping public key, the
// correlation value used in authentication request key-hash attributes.
func (i *Info) KeyHash() []byte {
	sum := sha256.Sum256(i.PublicKey)
	return sum[:]
}

// ChirpHash is the hash a chirping Enrollee advertises:
// SHA-256("chirp" || bootstrapping key).
func (i *Info) ChirpHash() []byte {
	h := sha256.New()
	h.Write([]byte(chirpHashTag))
	h.Write(i.PublicKey)
	return h.Sum(nil)
}
