package session

import (
	"context"
	"testing"
	"time"

	"github.com/tailored-agentic-units/voicedesk/core/protocol"
)

func sweepConfig() Config {
	cfg := DefaultConfig()
	cfg.SweepIntervalSeconds = 0 // sweeps are driven manually
	return cfg
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	cfg := sweepConfig()
	store := NewMemoryStore(&cfg)
	defer store.Close()

	ctx := context.Background()
	idle, _ := store.GetOrCreate(ctx, "")
	active, _ := store.GetOrCreate(ctx, "")

	// Backdate the idle session past the timeout.
	store.records[idle].lastActive = time.Now().Add(-time.Duration(cfg.IdleTimeoutSeconds+1) * time.Second)

	store.sweep(time.Now())

	if _, err := store.find(idle); err != ErrUnknownSession {
		t.Errorf("idle session not evicted: %v", err)
	}
	if _, err := store.find(active); err != nil {
		t.Errorf("active session evicted: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestSweep_SkipsSessionMidRequest(t *testing.T) {
	cfg := sweepConfig()
	store := NewMemoryStore(&cfg)
	defer store.Close()

	ctx := context.Background()
	id, _ := store.GetOrCreate(ctx, "")
	store.records[id].lastActive = time.Now().Add(-time.Duration(cfg.IdleTimeoutSeconds+1) * time.Second)

	release, err := store.Acquire(ctx, id)
	if err != nil {
		t.Fatalf("Acquire() failed: %v", err)
	}

	store.sweep(time.Now())
	if _, err := store.find(id); err != nil {
		t.Fatal("session with an in-flight request was evicted")
	}

	release()
	store.sweep(time.Now())
	if _, err := store.find(id); err != ErrUnknownSession {
		t.Error("session not evicted after the request released it")
	}
}

func TestSweep_ActivityResetsIdleClock(t *testing.T) {
	cfg := sweepConfig()
	store := NewMemoryStore(&cfg)
	defer store.Close()

	ctx := context.Background()
	id, _ := store.GetOrCreate(ctx, "")
	store.records[id].lastActive = time.Now().Add(-time.Duration(cfg.IdleTimeoutSeconds+1) * time.Second)

	// An append counts as activity.
	if err := store.Append(ctx, id, protocol.NewMessage(protocol.RoleUser, "still here")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	store.sweep(time.Now())
	if _, err := store.find(id); err != nil {
		t.Errorf("recently active session evicted: %v", err)
	}
}

func TestClose_StopsSweeper(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SweepIntervalSeconds = 1
	store := NewMemoryStore(&cfg)

	done := make(chan struct{})
	go func() {
		store.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not stop the sweeper")
	}

	// Closing twice is safe.
	if err := store.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
