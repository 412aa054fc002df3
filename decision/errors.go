package decision

import "errors"

// Sentinel errors for the decision-provider boundary. Both are fatal to the
// request that observes them; the orchestrator never retries a THINKING step.
var (
	ErrUnavailable = errors.New("decision provider unavailable")
	ErrTimeout     = errors.New("decision provider timed out")
)
