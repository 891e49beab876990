package audit

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAttemptLifecycle(t *testing.T) {
	s := newTestStore(t)

	const id = "c1f0a3e2-0000-4000-8000-000000000001"
	if err := s.RecordStart(id, "aa:bb:cc:dd:ee:ff", "PRESENCE_SEEN"); err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if err := s.UpdatePhase(id, "AUTH_IN_PROGRESS"); err != nil {
		t.Fatalf("UpdatePhase() error = %v", err)
	}
	if err := s.Complete(id, OutcomeSuccess, ""); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.PeerMAC != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("PeerMAC = %q", got.PeerMAC)
	}
	if got.Phase != "AUTH_IN_PROGRESS" {
		t.Errorf("Phase = %q", got.Phase)
	}
	if got.Outcome != OutcomeSuccess {
		t.Errorf("Outcome = %q", got.Outcome)
	}
	if got.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}
}

func TestUpdateUnknownAttempt(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpdatePhase("missing", "CONFIGURED"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdatePhase() error = %v, want sql.ErrNoRows", err)
	}
	if err := s.Complete("missing", OutcomeFailure, "timeout"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Complete() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.RecordStart(id, "aa:bb:cc:dd:ee:0"+id, "NEW"); err != nil {
			t.Fatalf("RecordStart(%s) error = %v", id, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	attempts, err := s.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("len = %d, want 2", len(attempts))
	}
	if attempts[0].ID != "c" || attempts[1].ID != "b" {
		t.Errorf("order = [%s, %s], want [c, b]", attempts[0].ID, attempts[1].ID)
	}
}

func TestPruneOnlyCompleted(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordStart("done", "aa:bb:cc:dd:ee:01", "CONFIGURED"); err != nil {
		t.Fatal(err)
	}
	if err := s.Complete("done", OutcomeSuccess, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordStart("inflight", "aa:bb:cc:dd:ee:02", "NEW"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	n, err := s.Prune(time.Nanosecond)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
	if _, err := s.Get("inflight"); err != nil {
		t.Errorf("in-flight attempt must survive pruning: %v", err)
	}
}
