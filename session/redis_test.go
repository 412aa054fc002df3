package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/tailored-agentic-units/voicedesk/core/protocol"
	"github.com/tailored-agentic-units/voicedesk/session"
)

func newRedisStore(t *testing.T) (session.Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)

	cfg := session.DefaultConfig()
	cfg.Backend = session.BackendRedis
	cfg.RedisAddr = srv.Addr()

	store, err := session.NewStore(&cfg)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, srv
}

func TestRedis_RequiresAddr(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Backend = session.BackendRedis
	if _, err := session.NewStore(&cfg); err == nil {
		t.Error("NewStore() should reject a redis backend without an address")
	}
}

func TestRedis_RoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	id, err := store.GetOrCreate(ctx, "")
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}

	msg := protocol.Message{
		Role:      protocol.RoleAssistant,
		Content:   "checking",
		ToolCalls: []protocol.ToolCall{{ID: "call_1", Name: "get_customer_issues", Arguments: `{"name":"ada"}`}},
	}
	if err := store.Append(ctx, id, msg); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	msgs, err := store.History(ctx, id, 0)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Content != "checking" || len(msgs[0].ToolCalls) != 1 || msgs[0].ToolCalls[0].Name != "get_customer_issues" {
		t.Errorf("round-tripped message = %+v", msgs[0])
	}
}

func TestRedis_ExistingIDIsStable(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	id, _ := store.GetOrCreate(ctx, "")
	again, err := store.GetOrCreate(ctx, id)
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if again != id {
		t.Errorf("existing session resolved to %q, want %q", again, id)
	}
}

func TestRedis_UnknownSession(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, "missing", protocol.NewMessage(protocol.RoleUser, "hi")); !errors.Is(err, session.ErrUnknownSession) {
		t.Errorf("Append() error = %v, want ErrUnknownSession", err)
	}
	if _, err := store.History(ctx, "missing", 0); !errors.Is(err, session.ErrUnknownSession) {
		t.Errorf("History() error = %v, want ErrUnknownSession", err)
	}
	if _, err := store.Acquire(ctx, "missing"); !errors.Is(err, session.ErrUnknownSession) {
		t.Errorf("Acquire() error = %v, want ErrUnknownSession", err)
	}
}

func TestRedis_TTLEviction(t *testing.T) {
	store, srv := newRedisStore(t)
	ctx := context.Background()

	id, _ := store.GetOrCreate(ctx, "")
	store.Append(ctx, id, protocol.NewMessage(protocol.RoleUser, "hello"))

	srv.FastForward(time.Duration(session.DefaultConfig().IdleTimeoutSeconds+1) * time.Second)

	if _, err := store.History(ctx, id, 0); !errors.Is(err, session.ErrUnknownSession) {
		t.Errorf("expired session History() error = %v, want ErrUnknownSession", err)
	}

	// A new request under the stale id gets a fresh session.
	fresh, err := store.GetOrCreate(ctx, id)
	if err != nil {
		t.Fatalf("GetOrCreate() failed: %v", err)
	}
	if fresh == id {
		t.Error("expired id should not be resurrected")
	}
}

func TestRedis_ActivityRefreshesTTL(t *testing.T) {
	store, srv := newRedisStore(t)
	ctx := context.Background()
	idle := time.Duration(session.DefaultConfig().IdleTimeoutSeconds) * time.Second

	id, _ := store.GetOrCreate(ctx, "")
	store.Append(ctx, id, protocol.NewMessage(protocol.RoleUser, "one"))

	srv.FastForward(idle / 2)
	if err := store.Append(ctx, id, protocol.NewMessage(protocol.RoleUser, "two")); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	srv.FastForward(idle / 2)
	msgs, err := store.History(ctx, id, 0)
	if err != nil {
		t.Fatalf("active session expired: %v", err)
	}
	if len(msgs) != 2 {
		t.Errorf("got %d messages, want 2", len(msgs))
	}
}

func TestRedis_Truncation(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	id, _ := store.GetOrCreate(ctx, "")
	for _, msg := range []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "u0"),
		{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{{ID: "c1", Name: "x", Arguments: "{}"}}},
		{Role: protocol.RoleTool, Content: "t0", ToolCallID: "c1"},
		protocol.NewMessage(protocol.RoleAssistant, "a0"),
	} {
		if err := store.Append(ctx, id, msg); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	msgs, err := store.History(ctx, id, 2)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "a0" {
		t.Errorf("truncated history = %+v, want the final assistant turn only", msgs)
	}
}
