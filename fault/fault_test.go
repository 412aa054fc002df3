package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tailored-agentic-units/voicedesk/fault"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind fault.Kind
		want string
	}{
		{fault.KindInput, "input"},
		{fault.KindAdapter, "adapter"},
		{fault.KindTool, "tool"},
		{fault.KindProvider, "provider"},
		{fault.KindBudget, "budget"},
		{fault.KindInternal, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fault.Wrap(fault.KindProvider, fault.CodeProviderUnavailable, "decision provider unreachable", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped fault should match its cause with errors.Is")
	}

	wrapped := fmt.Errorf("request failed: %w", err)
	if fault.KindOf(wrapped) != fault.KindProvider {
		t.Errorf("KindOf() = %v, want KindProvider", fault.KindOf(wrapped))
	}
	if fault.CodeOf(wrapped) != fault.CodeProviderUnavailable {
		t.Errorf("CodeOf() = %q, want %q", fault.CodeOf(wrapped), fault.CodeProviderUnavailable)
	}
	if fault.MessageOf(wrapped) != "decision provider unreachable" {
		t.Errorf("MessageOf() = %q", fault.MessageOf(wrapped))
	}
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("plain")

	if fault.KindOf(err) != fault.KindInternal {
		t.Errorf("KindOf(plain) = %v, want KindInternal", fault.KindOf(err))
	}
	if fault.CodeOf(err) != fault.CodeInternal {
		t.Errorf("CodeOf(plain) = %q, want %q", fault.CodeOf(err), fault.CodeInternal)
	}
}

func TestError_Message(t *testing.T) {
	err := fault.New(fault.KindInput, fault.CodeDecodeError, "audio payload is not decodable")

	want := "decode_error: audio payload is not decodable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
