package persistence

import (
	"path/filepath"
	"testing"
	"time"
)

func TestAgentStateStore(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		dir := t.TempDir()
		store := NewAgentStateStore(filepath.Join(dir, "state.json"))

		state := &AgentState{
			PendingEnrollees: []PendingEnrollee{
				{
					MAC:       "aa:bb:cc:dd:ee:ff",
					URI:       "DPP:V:2;K:dGVzdA==;;",
					StartedAt: time.Now(),
				},
			},
			CCEEnabled: true,
		}

		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if !got.CCEEnabled {
			t.Error("CCEEnabled should survive the round trip")
		}
		if len(got.PendingEnrollees) != 1 {
			t.Fatalf("PendingEnrollees = %d, want 1", len(got.PendingEnrollees))
		}
		if got.PendingEnrollees[0].MAC != "aa:bb:cc:dd:ee:ff" {
			t.Errorf("MAC = %q", got.PendingEnrollees[0].MAC)
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		dir := t.TempDir()
		store := NewAgentStateStore(filepath.Join(dir, "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		// Should return nil (empty state) for non-existent file
		if got != nil {
			t.Errorf("Load() = %v, want nil for non-existent file", got)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		dir := t.TempDir()
		store := NewAgentStateStore(filepath.Join(dir, "state.json"))

		if err := store.Save(&AgentState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		got, err := store.Load()
		if err != nil || got != nil {
			t.Errorf("Load() after Clear = (%v, %v), want (nil, nil)", got, err)
		}

		// Clearing twice is fine.
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}
