// Package persistence stores agent runtime state as JSON on disk.
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// AgentState contains the runtime state a proxy agent carries across
// restarts. Crypto material is never persisted; an in-flight exchange
// restarts from its bootstrapping data.
type AgentState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// PendingEnrollees lists Enrollees whose onboarding had started
	// but not reached a terminal state.
	PendingEnrollees []PendingEnrollee `json:"pending_enrollees,omitempty"`

	// CCEEnabled records whether beacon advertisement was on, so it
	// can be restored after restart.
	CCEEnabled bool `json:"cce_enabled,omitempty"`
}

// PendingEnrollee describes one incomplete onboarding flow.
type PendingEnrollee struct {
	// MAC is the Enrollee's radio MAC address.
	MAC string `json:"mac"`

	// URI is the bootstrapping URI scanned out-of-band, kept so the
	// flow can restart without rescanning.
	URI string `json:"uri,omitempty"`

	// StartedAt is when onboarding was initiated.
	StartedAt time.Time `json:"started_at"`
}

// AgentStateStore manages persistence of agent state to a JSON file.
type AgentStateStore struct {
	mu   sync.Mutex
	path string
}

// NewAgentStateStore creates a new agent state store.
func NewAgentStateStore(path string) *AgentStateStore {
	return &AgentStateStore{path: path}
}

// Save persists the agent state to disk.
func (s *AgentStateStore) Save(state *AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the agent state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *AgentStateStore) Load() (*AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &AgentState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *AgentStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
