package kernel

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/voicedesk/decision"
	"github.com/tailored-agentic-units/voicedesk/issues"
	"github.com/tailored-agentic-units/voicedesk/session"
	"github.com/tailored-agentic-units/voicedesk/speech"
)

const (
	defaultMaxIterations = 6
	defaultHistoryLimit  = 40
)

// defaultSystemPrompt frames the assistant as a support agent and steers it
// toward the issue tools.
const defaultSystemPrompt = "You are a helpful customer support assistant. " +
	"You talk with customers about their problems, register new issues with " +
	"register_customer_issue once you know the customer's name and what went " +
	"wrong, and look up previously reported issues with get_customer_issues. " +
	"Keep replies short and conversational; they are read aloud to the caller."

// Config holds initialization parameters for all kernel subsystems.
// Each subsystem section delegates to that subsystem's config-driven
// constructor.
type Config struct {
	Decision decision.Config `json:"decision"`
	Speech   speech.Config   `json:"speech"`
	Session  session.Config  `json:"session"`
	Issues   issues.Config   `json:"issues"`

	// MaxIterations bounds reasoning cycles per request. The loop degrades
	// to an apology when the budget runs out; it never errors.
	MaxIterations int `json:"max_iterations,omitempty"`

	// HistoryLimit bounds the number of history messages sent to the
	// decision provider. Zero means unbounded.
	HistoryLimit int `json:"history_limit,omitempty"`

	SystemPrompt string `json:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Decision:      decision.DefaultConfig(),
		Speech:        speech.DefaultConfig(),
		Session:       session.DefaultConfig(),
		Issues:        issues.DefaultConfig(),
		MaxIterations: defaultMaxIterations,
		HistoryLimit:  defaultHistoryLimit,
		SystemPrompt:  defaultSystemPrompt,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Decision.Merge(&source.Decision)
	c.Speech.Merge(&source.Speech)
	c.Session.Merge(&source.Session)
	c.Issues.Merge(&source.Issues)

	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
	if source.HistoryLimit > 0 {
		c.HistoryLimit = source.HistoryLimit
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
