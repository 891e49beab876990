package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the agent configuration.
type Config struct {
	// MAC is the agent's own radio MAC address.
	MAC string `yaml:"mac"`

	// Interface restricts mDNS controller discovery to one interface.
	Interface string `yaml:"interface,omitempty"`

	// BSS lists the BSS names whose beacon templates carry the CCE.
	BSS []string `yaml:"bss,omitempty"`

	// StateFile is where agent runtime state is persisted.
	StateFile string `yaml:"state_file,omitempty"`

	// AuditDB is the SQLite path for onboarding attempt records.
	// Empty uses an in-memory database.
	AuditDB string `yaml:"audit_db,omitempty"`

	// LogFile receives the CBOR protocol event log.
	LogFile string `yaml:"log_file,omitempty"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
