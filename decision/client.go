package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tailored-agentic-units/voicedesk/core/protocol"
	"github.com/tailored-agentic-units/voicedesk/core/response"
)

// ChatClient is a Provider backed by an OpenAI-compatible chat-completions
// endpoint with function calling.
type ChatClient struct {
	cfg    Config
	client *http.Client
}

// NewChatClient creates a ChatClient from configuration.
func NewChatClient(cfg Config) *ChatClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type toolWrapper struct {
	Type     string        `json:"type"`
	Function protocol.Tool `json:"function"`
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []protocol.Message `json:"messages"`
	Tools       []toolWrapper      `json:"tools,omitempty"`
	ToolChoice  string             `json:"tool_choice,omitempty"`
	Temperature float64            `json:"temperature"`
}

// Decide posts one chat-completions request and maps the first choice to a
// Decision: tool calls present means Invoke, otherwise Respond. Transport
// timeouts map to ErrTimeout and every other failure to ErrUnavailable.
func (c *ChatClient) Decide(ctx context.Context, messages []protocol.Message, specs []protocol.Tool) (Decision, error) {
	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
	}
	if len(specs) > 0 {
		reqBody.ToolChoice = "auto"
		for _, spec := range specs {
			reqBody.Tools = append(reqBody.Tools, toolWrapper{Type: "function", Function: spec})
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := c.apiKey(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Decision{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return Decision{}, fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, body)
	}

	parsed, err := response.ParseTools(body)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return Decision{}, fmt.Errorf("%w: response carried no choices", ErrUnavailable)
	}

	choice := parsed.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		return Invoke(choice.Message.ToolCalls...), nil
	}
	return Respond(choice.Message.Content), nil
}

func (c *ChatClient) apiKey() string {
	if c.cfg.APIKey != "" {
		return c.cfg.APIKey
	}
	if c.cfg.APIKeyEnv != "" {
		return os.Getenv(c.cfg.APIKeyEnv)
	}
	return ""
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
