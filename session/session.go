// Package session manages per-conversation state: an append-only message
// history keyed by an opaque session identifier, with per-session
// serialization and idle eviction.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/voicedesk/core/protocol"
)

// ErrUnknownSession is returned by Append, History, and Acquire when the
// identifier does not name a live session. Callers that go through
// GetOrCreate first should never observe it.
var ErrUnknownSession = errors.New("unknown session")

// Store holds conversation histories for many concurrent sessions.
// Implementations must be safe for concurrent use and must serialize all
// mutation per session; histories are strictly append-only.
type Store interface {
	// GetOrCreate resolves a session identifier. An empty or unknown id
	// yields a freshly created session under a new unpredictable
	// identifier. The session's last-activity time is updated.
	GetOrCreate(ctx context.Context, id string) (string, error)

	// Acquire takes the session's serialization lock, queueing behind any
	// in-flight request for the same session. The returned release
	// function must be called exactly once. Returns ErrUnknownSession for
	// ids not present in the store.
	Acquire(ctx context.Context, id string) (release func(), err error)

	// Append adds one message to the session's history and updates its
	// last-activity time. Returns ErrUnknownSession for ids not present.
	Append(ctx context.Context, id string, msg protocol.Message) error

	// History returns the session's messages in append order. A positive
	// maxTurns bounds the result to the most recent messages, dropping
	// oldest first; a tool-result message is never returned without the
	// assistant message that requested it.
	History(ctx context.Context, id string, maxTurns int) ([]protocol.Message, error)

	// Close releases backend resources and stops background eviction.
	Close() error
}

// NewStore creates a Store from configuration.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryStore(cfg), nil
	case BackendRedis:
		return NewRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// truncate bounds msgs to the max most recent entries, dropping oldest
// first. Leading tool-result messages left orphaned by the cut are dropped
// too, so a tool turn never appears without its requesting assistant turn.
func truncate(msgs []protocol.Message, max int) []protocol.Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}

	start := len(msgs) - max
	for start < len(msgs) && msgs[start].Role == protocol.RoleTool {
		start++
	}
	return msgs[start:]
}
