package response_test

import (
	"math"
	"testing"

	"github.com/tailored-agentic-units/voicedesk/core/response"
)

func TestParseTools(t *testing.T) {
	body := `{
		"id": "chatcmpl-1",
		"model": "llama-3.3-70b-versatile",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call_1",
					"type": "function",
					"function": {
						"name": "register_customer_issue",
						"arguments": "{\"name\":\"Ada\",\"issue\":\"login broken\"}"
					}
				}]
			},
			"finish_reason": "tool_calls"
		}],
		"usage": {"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120}
	}`

	resp, err := response.ParseTools([]byte(body))
	if err != nil {
		t.Fatalf("ParseTools() failed: %v", err)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("got %d choices, want 1", len(resp.Choices))
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].Name != "register_customer_issue" {
		t.Errorf("tool call name = %q, want %q", msg.ToolCalls[0].Name, "register_customer_issue")
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 120 {
		t.Errorf("usage = %+v, want total 120", resp.Usage)
	}
}

func TestParseTools_TextResponse(t *testing.T) {
	body := `{
		"model": "llama-3.3-70b-versatile",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "Your ticket has been created."},
			"finish_reason": "stop"
		}]
	}`

	resp, err := response.ParseTools([]byte(body))
	if err != nil {
		t.Fatalf("ParseTools() failed: %v", err)
	}

	msg := resp.Choices[0].Message
	if msg.Content != "Your ticket has been created." {
		t.Errorf("content = %q, want confirmation text", msg.Content)
	}
	if len(msg.ToolCalls) != 0 {
		t.Errorf("got %d tool calls, want 0", len(msg.ToolCalls))
	}
}

func TestParseTools_Invalid(t *testing.T) {
	if _, err := response.ParseTools([]byte("not json")); err == nil {
		t.Error("ParseTools() should fail on invalid JSON")
	}
}

func TestParseAudio(t *testing.T) {
	body := `{
		"task": "transcribe",
		"language": "en",
		"duration": 2.4,
		"text": "add a task to call the client tomorrow",
		"segments": [
			{"id": 0, "start": 0, "end": 2.4, "text": "add a task to call the client tomorrow", "no_speech_prob": 0.02}
		]
	}`

	resp, err := response.ParseAudio([]byte(body))
	if err != nil {
		t.Fatalf("ParseAudio() failed: %v", err)
	}

	if resp.Content() != "add a task to call the client tomorrow" {
		t.Errorf("Content() = %q", resp.Content())
	}
	if got := resp.Confidence(); math.Abs(got-0.98) > 1e-9 {
		t.Errorf("Confidence() = %v, want 0.98", got)
	}
}

func TestParseAudio_NoSegments(t *testing.T) {
	resp, err := response.ParseAudio([]byte(`{"text": "hello"}`))
	if err != nil {
		t.Fatalf("ParseAudio() failed: %v", err)
	}
	if got := resp.Confidence(); got != 0 {
		t.Errorf("Confidence() = %v, want 0 without segments", got)
	}
}

func TestParseAudio_Invalid(t *testing.T) {
	if _, err := response.ParseAudio([]byte("{")); err == nil {
		t.Error("ParseAudio() should fail on invalid JSON")
	}
}
