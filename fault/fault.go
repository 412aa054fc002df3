// Package fault defines the request-scoped error taxonomy. Every failure
// that reaches the protocol boundary carries a Kind for propagation policy
// and a stable machine-readable code for the caller.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for propagation policy. Tool faults are
// recovered inside the reasoning loop and never reach the caller; all other
// kinds propagate to the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindInput         // bad or missing audio, unknown session misuse
	KindAdapter       // transcription or synthesis provider failure
	KindTool          // unknown tool, schema mismatch, handler failure
	KindProvider      // decision provider unreachable or timed out
	KindBudget        // iteration cap hit
)

// String returns the taxonomy name for the kind.
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAdapter:
		return "adapter"
	case KindTool:
		return "tool"
	case KindProvider:
		return "provider"
	case KindBudget:
		return "budget"
	default:
		return "internal"
	}
}

// Stable error codes surfaced to callers.
const (
	CodeUnsupportedFormat   = "unsupported_format"
	CodeDecodeError         = "decode_error"
	CodeEmptyAudio          = "empty_audio"
	CodeTranscriptionFailed = "transcription_failed"
	CodeSynthesisFailed     = "synthesis_failed"
	CodeProviderUnavailable = "provider_unavailable"
	CodeProviderTimeout     = "provider_timeout"
	CodeUnknownSession      = "unknown_session"
	CodeInternal            = "internal_error"
)

// Error is a classified failure with a stable code and human-readable message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without an underlying cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates a classified error wrapping an underlying cause.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) a fault error,
// KindInternal otherwise.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// CodeOf returns the stable code of err if it is (or wraps) a fault error,
// CodeInternal otherwise.
func CodeOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable message of err if it is (or wraps) a
// fault error, a generic message otherwise.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "an unexpected error occurred"
}
