package kernel

import "github.com/tailored-agentic-units/voicedesk/observability"

// Kernel event types emitted during request handling.
const (
	EventRequestStart    observability.EventType = "kernel.request.start"
	EventTranscription   observability.EventType = "kernel.transcription"
	EventIterationStart  observability.EventType = "kernel.iteration.start"
	EventToolCall        observability.EventType = "kernel.tool.call"
	EventToolComplete    observability.EventType = "kernel.tool.complete"
	EventResponse        observability.EventType = "kernel.response"
	EventBudgetExhausted observability.EventType = "kernel.budget.exhausted"
	EventRequestComplete observability.EventType = "kernel.request.complete"
	EventError           observability.EventType = "kernel.error"
)
