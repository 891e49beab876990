package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures mDNS advertisement.
type AdvertiserConfig struct {
	// Interface restricts advertisement to one network interface.
	// Empty means all interfaces.
	Interface string

	// TTL is the record time-to-live. Zero uses the library default.
	TTL time.Duration
}

// MDNSAdvertiser registers the controller service using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{config: config}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise starts advertising the controller service, replacing any
// previous registration.
func (a *MDNSAdvertiser) Advertise(info *ControllerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	instanceName := "EasyConnect-" + info.ALMAC
	if len(instanceName) > MaxInstanceNameLen {
		instanceName = instanceName[:MaxInstanceNameLen]
	}

	txtStrings := TXTRecordsToStrings(EncodeControllerTXT(info))

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceTypeController,
		Domain,
		port,
		txtStrings,
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register controller service: %w", err)
	}

	a.server = server
	return nil
}

// Update replaces the TXT records of the active registration.
func (a *MDNSAdvertiser) Update(info *ControllerInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotFound
	}
	a.server.SetText(TXTRecordsToStrings(EncodeControllerTXT(info)))
	return nil
}

// Stop withdraws the advertisement.
func (a *MDNSAdvertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// browserOptions returns zeroconf client options for the given
// interface name. Empty means all interfaces.
func browserOptions(ifaceName string) []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if ifaceName != "" {
		iface, err := net.InterfaceByName(ifaceName)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}

	return opts
}

// BrowseControllers searches for controller services until ctx ends.
// An empty ifaceName browses on all interfaces. Discovered services
// are emitted on the returned channel, which is closed when browsing
// stops.
func BrowseControllers(ctx context.Context, ifaceName string) (<-chan *ControllerService, error) {
	out := make(chan *ControllerService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToController(entry)
				if svc == nil {
					continue
				}
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case <-removed:
				// Withdrawn services are not tracked; callers re-browse.

			case <-ctx.Done():
				return
			}
		}
	}()

	// Start browsing in background
	go func() {
		_ = zeroconf.Browse(ctx, ServiceTypeController, Domain, entries, removed, browserOptions(ifaceName)...)
	}()

	return out, nil
}

// entryToController converts a raw mDNS entry, or returns nil when the
// TXT payload is not a valid controller record.
func entryToController(entry *zeroconf.ServiceEntry) *ControllerService {
	info, err := DecodeControllerTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}

	var addrs []net.IP
	addrs = append(addrs, entry.AddrIPv4...)
	addrs = append(addrs, entry.AddrIPv6...)

	return &ControllerService{
		InstanceName: entry.Instance,
		Info:         *info,
		Addresses:    addrs,
		Port:         entry.Port,
	}
}
