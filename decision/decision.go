// Package decision defines the decision-provider boundary of the reasoning
// agent: an external oracle that, given conversation history and the
// available tool specs, either answers the user or requests tool calls.
package decision

import (
	"context"

	"github.com/tailored-agentic-units/voicedesk/core/protocol"
)

// Kind tags the variant of a Decision.
type Kind int

const (
	// KindRespond is terminal: the agent answers the user directly.
	KindRespond Kind = iota
	// KindInvoke is non-terminal: the agent requests tool calls and the
	// loop continues with their results.
	KindInvoke
)

// Decision is the provider's per-iteration output. Exactly one variant is
// populated: Reply for KindRespond, Calls for KindInvoke.
type Decision struct {
	Kind  Kind
	Reply string
	Calls []protocol.ToolCall
}

// Respond builds a terminal decision carrying the final reply text.
func Respond(text string) Decision {
	return Decision{Kind: KindRespond, Reply: text}
}

// Invoke builds a non-terminal decision carrying the requested tool calls.
func Invoke(calls ...protocol.ToolCall) Decision {
	return Decision{Kind: KindInvoke, Calls: calls}
}

// Provider produces one Decision from conversation history and tool specs.
// Implementations must be safe for concurrent use; the orchestrator calls
// Decide from one goroutine per session but many sessions run in parallel.
type Provider interface {
	Decide(ctx context.Context, messages []protocol.Message, specs []protocol.Tool) (Decision, error)
}
