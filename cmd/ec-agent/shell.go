package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/chzyer/readline"

	"github.com/easymesh-protocol/easyconnect-go/pkg/audit"
	"github.com/easymesh-protocol/easyconnect-go/pkg/bootstrap"
	"github.com/easymesh-protocol/easyconnect-go/pkg/configurator"
	"github.com/easymesh-protocol/easyconnect-go/pkg/wire"
)

// shell is the interactive command loop for the agent.
type shell struct {
	agent     *configurator.ProxyAgent
	store     *audit.Store
	transport *recordingTransport
	rl        *readline.Instance
}

func newShell(agent *configurator.ProxyAgent, store *audit.Store, transport *recordingTransport) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "agent> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &shell{agent: agent, store: store, transport: transport, rl: rl}, nil
}

// run starts the interactive command loop.
func (s *shell) run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "onboard", "o":
			s.cmdOnboard(args)

		case "connections", "c":
			s.cmdConnections()

		case "teardown", "t":
			s.cmdTeardown(args)

		case "cce":
			s.cmdCCE(args)

		case "attempts", "a":
			s.cmdAttempts()

		case "status":
			s.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Easy Connect Agent Commands:
  Onboarding:
    onboard <dpp-uri>  - Start onboarding for a scanned bootstrapping URI
    connections        - List connection records and their states
    teardown <mac>     - Tear down one connection
    attempts           - Show recent onboarding attempts

  Advertisement:
    cce on|off         - Toggle the Configurator Connectivity Element

  Other:
    status             - Show agent status
    help               - Show this help
    exit               - Exit`)
}

func (s *shell) cmdOnboard(args []string) {
	out := s.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: onboard <dpp-uri>")
		return
	}

	boot, err := bootstrap.ParseURI(args[0])
	if err != nil {
		fmt.Fprintf(out, "invalid bootstrapping URI: %v\n", err)
		return
	}
	if boot.MAC.IsZero() {
		fmt.Fprintln(out, "URI carries no MAC address; onboarding needs one")
		return
	}

	if !s.agent.OnboardEnrollee(boot) {
		fmt.Fprintln(out, "onboarding could not be initiated")
		return
	}

	conn := s.findConnection(boot.MAC)
	if conn != nil {
		if err := s.store.RecordStart(conn.ExchangeID(), conn.MAC().String(), conn.State().String()); err != nil {
			fmt.Fprintf(out, "audit: %v\n", err)
		}
	}
	fmt.Fprintf(out, "onboarding started for %s\n", boot.MAC)
}

func (s *shell) cmdConnections() {
	out := s.rl.Stdout()
	conns := s.agent.Connections()
	if len(conns) == 0 {
		fmt.Fprintln(out, "no connections")
		return
	}
	for _, conn := range conns {
		fmt.Fprintf(out, "  %s  %-18s  exchange %s\n",
			conn.MAC(), conn.State(), conn.ExchangeID())
	}
}

func (s *shell) cmdTeardown(args []string) {
	out := s.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: teardown <mac>")
		return
	}
	mac, err := wire.ParseMAC(args[0])
	if err != nil {
		fmt.Fprintf(out, "%v\n", err)
		return
	}

	if conn := s.findConnection(mac); conn != nil {
		_ = s.store.Complete(conn.ExchangeID(), audit.OutcomeFailure, "torn down by operator")
	}
	s.agent.TeardownConnection(mac)
	fmt.Fprintf(out, "torn down %s\n", mac)
}

func (s *shell) cmdCCE(args []string) {
	out := s.rl.Stdout()
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(out, "usage: cce on|off")
		return
	}
	enable := args[0] == "on"
	if !s.agent.ToggleCCE(enable) {
		fmt.Fprintln(out, "beacon update failed; advertisement is fully disabled")
		return
	}
	fmt.Fprintf(out, "CCE advertisement %s\n", args[0])
}

func (s *shell) cmdAttempts() {
	out := s.rl.Stdout()
	attempts, err := s.store.List(20)
	if err != nil {
		fmt.Fprintf(out, "audit: %v\n", err)
		return
	}
	if len(attempts) == 0 {
		fmt.Fprintln(out, "no attempts recorded")
		return
	}
	for _, a := range attempts {
		outcome := a.Outcome
		if outcome == "" {
			outcome = "in flight"
		}
		fmt.Fprintf(out, "  %s  %s  %-18s  %s\n", a.StartedAt.Format("15:04:05"), a.PeerMAC, a.Phase, outcome)
	}
}

func (s *shell) cmdStatus() {
	out := s.rl.Stdout()
	fmt.Fprintf(out, "agent MAC:    %s\n", s.agent.MACAddr())
	fmt.Fprintf(out, "connections:  %d\n", s.agent.ConnectionCount())
	fmt.Fprintf(out, "CCE enabled:  %v\n", s.agent.CCEEnabled())
	fmt.Fprintf(out, "sent:         %d chirps, %d encap DPP, %d action frames\n",
		s.transport.chirps, s.transport.encaps, s.transport.actions)
	if !s.transport.lastAt.IsZero() {
		fmt.Fprintf(out, "last send:    %s\n", s.transport.lastAt.Format("15:04:05"))
	}
}

func (s *shell) findConnection(mac wire.MACAddress) *configurator.Connection {
	for _, conn := range s.agent.Connections() {
		if conn.MAC() == mac {
			return conn
		}
	}
	return nil
}
