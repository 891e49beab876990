// Package discovery advertises and locates Easy Connect controllers
// on the wired backhaul using mDNS. A proxy agent browses for the
// controller service to learn where to route 1905 traffic; a
// controller registers the service so agents can find it without
// static configuration.
package discovery

import (
	"errors"
	"net"
)

const (
	// ServiceTypeController is the service type a mesh controller
	// registers.
	ServiceTypeController = "_easyconnect._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default controller service port.
	DefaultPort = 8912

	// MaxInstanceNameLen is the maximum mDNS instance name length.
	MaxInstanceNameLen = 63
)

// TXT record keys for the controller service.
const (
	// TXTKeyALMAC is the controller's 1905 AL MAC address.
	TXTKeyALMAC = "almac"

	// TXTKeyVersion is the supported DPP protocol version.
	TXTKeyVersion = "ver"

	// TXTKeyFriendlyName is an optional human-readable name.
	TXTKeyFriendlyName = "fn"
)

// Discovery errors.
var (
	// ErrNotFound indicates the requested service is not registered.
	ErrNotFound = errors.New("service not found")

	// ErrMissingRequired indicates a required TXT record is missing.
	ErrMissingRequired = errors.New("missing required TXT record")

	// ErrInvalidVersion indicates a malformed version TXT record.
	ErrInvalidVersion = errors.New("invalid version")
)

// ControllerInfo describes a controller service for advertisement.
type ControllerInfo struct {
	// ALMAC is the controller's 1905 abstraction-layer MAC address.
	ALMAC string

	// Version is the supported DPP protocol version.
	Version uint8

	// FriendlyName is an optional human-readable name.
	FriendlyName string

	// Port is the service port (0 means DefaultPort).
	Port uint16
}

// ControllerService is a discovered controller.
type ControllerService struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Info is the decoded TXT payload.
	Info ControllerInfo

	// Addresses are the controller's resolved IP addresses.
	Addresses []net.IP

	// Port is the resolved service port.
	Port int
}
