// Command ec-agent runs an Easy Connect proxy agent with an
// interactive shell for driving Enrollee onboarding.
//
// The agent terminates the 802.11 side of DPP locally and bridges
// protocol content toward the mesh controller over the 1905 backhaul.
// Actual radio and backhaul I/O is provided by the surrounding stack;
// this command wires the engine to a recording transport so flows can
// be exercised and inspected end to end.
//
// Usage:
//
//	ec-agent [flags]
//
// Flags:
//
//	-config string   Configuration file path (YAML)
//	-mac string      Agent radio MAC address (overrides config)
//	-state string    State file path (overrides config)
//	-log string      CBOR protocol log file (overrides config)
//
// Examples:
//
//	# Start with a config file
//	ec-agent -config /etc/easyconnect/agent.yaml
//
//	# Start with an explicit MAC and protocol log
//	ec-agent -mac 02:11:22:33:44:55 -log /var/log/ec-agent.cbor
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/easymesh-protocol/easyconnect-go/pkg/audit"
	"github.com/easymesh-protocol/easyconnect-go/pkg/beacon"
	"github.com/easymesh-protocol/easyconnect-go/pkg/configurator"
	"github.com/easymesh-protocol/easyconnect-go/pkg/discovery"
	"github.com/easymesh-protocol/easyconnect-go/pkg/log"
	"github.com/easymesh-protocol/easyconnect-go/pkg/persistence"
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path (YAML)")
		macFlag    = flag.String("mac", "", "Agent radio MAC address")
		stateFlag  = flag.String("state", "", "State file path")
		logFlag    = flag.String("log", "", "CBOR protocol log file")
	)
	flag.Parse()

	cfg := &Config{}
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			stdlog.Fatalf("config: %v", err)
		}
	}
	if *macFlag != "" {
		cfg.MAC = *macFlag
	}
	if *stateFlag != "" {
		cfg.StateFile = *stateFlag
	}
	if *logFlag != "" {
		cfg.LogFile = *logFlag
	}
	if cfg.MAC == "" {
		stdlog.Fatal("a MAC address is required (-mac or config)")
	}

	mac, err := wire.ParseMAC(cfg.MAC)
	if err != nil {
		stdlog.Fatalf("invalid MAC: %v", err)
	}

	var logger log.Logger = log.Noop{}
	if cfg.LogFile != "" {
		fl, err := log.NewFileLogger(cfg.LogFile)
		if err != nil {
			stdlog.Fatalf("log file: %v", err)
		}
		defer fl.Close()
		logger = fl
	}

	auditPath := cfg.AuditDB
	if auditPath == "" {
		auditPath = ":memory:"
	}
	store, err := audit.NewStore(auditPath)
	if err != nil {
		stdlog.Fatalf("audit store: %v", err)
	}
	defer store.Close()

	// One beacon template per configured BSS; updates print so the
	// operator can watch the element toggle.
	updaters := make([]beacon.TemplateUpdater, 0, len(cfg.BSS))
	for _, name := range cfg.BSS {
		bss := name
		updaters = append(updaters, beacon.TemplateUpdaterFunc(func(enable bool) error {
			fmt.Printf("[beacon] %s: CCE %v\n", bss, enable)
			return nil
		}))
	}
	if len(updaters) == 0 {
		updaters = append(updaters, beacon.TemplateUpdaterFunc(func(bool) error { return nil }))
	}
	cce := beacon.NewCCEController(updaters...)

	transport := newRecordingTransport()
	agent := configurator.NewProxyAgent(mac, transport.capabilities(), cce.Apply, logger)

	stateStore := persistence.NewAgentStateStore(statePath(cfg))
	if state, err := stateStore.Load(); err != nil {
		stdlog.Printf("state: %v", err)
	} else if state != nil && state.CCEEnabled {
		agent.ToggleCCE(true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch for the mesh controller on the backhaul.
	controllers, err := discovery.BrowseControllers(ctx, cfg.Interface)
	if err == nil {
		go func() {
			for svc := range controllers {
				fmt.Printf("[discovery] controller %s (AL MAC %s)\n",
					svc.InstanceName, svc.Info.ALMAC)
			}
		}()
	}

	shell, err := newShell(agent, store, transport)
	if err != nil {
		stdlog.Fatalf("shell: %v", err)
	}
	shell.run(ctx, cancel)

	saveState(stateStore, agent)
}

func statePath(cfg *Config) string {
	if cfg.StateFile != "" {
		return cfg.StateFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "ec-agent-state.json"
	}
	return home + "/.easyconnect/agent-state.json"
}

func saveState(store *persistence.AgentStateStore, agent *configurator.ProxyAgent) {
	state := &persistence.AgentState{CCEEnabled: agent.CCEEnabled()}
	for _, conn := range agent.Connections() {
		pe := persistence.PendingEnrollee{
			MAC:       conn.MAC().String(),
			StartedAt: conn.CreatedAt(),
		}
		if boot := conn.BootData(); boot != nil {
			pe.URI = boot.URI()
		}
		state.PendingEnrollees = append(state.PendingEnrollees, pe)
	}
	if err := store.Save(state); err != nil {
		stdlog.Printf("state save: %v", err)
	}
}

// recordingTransport queues outbound sends so the shell can show what
// the engine emitted. It stands in for the radio driver and the 1905
// stack, which live outside this process.
type recordingTransport struct {
	chirps  int
	encaps  int
	actions int
	lastAt  time.Time
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{}
}

func (t *recordingTransport) capabilities() configurator.Capabilities {
	return configurator.Capabilities{
		SendChirpNotification: func(chirpTLV []byte) bool {
			t.chirps++
			t.lastAt = time.Now()
			fmt.Printf("[1905] chirp notification (%d bytes)\n", len(chirpTLV))
			return true
		},
		SendProxiedEncapDPP: func(encapTLV, chirpTLV []byte) bool {
			t.encaps++
			t.lastAt = time.Now()
			fmt.Printf("[1905] encap DPP (%d bytes, chirp=%v)\n", len(encapTLV), chirpTLV != nil)
			return true
		},
		SendActionFrame: func(dest wire.MACAddress, frame []byte, frequency, waitMS uint) bool {
			t.actions++
			t.lastAt = time.Now()
			fmt.Printf("[802.11] action frame to %s (%d bytes)\n", dest, len(frame))
			return true
		},
	}
}
