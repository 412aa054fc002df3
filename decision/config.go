package decision

const (
	defaultBaseURL        = "https://api.groq.com/openai"
	defaultAPIKeyEnv      = "GROQ_API_KEY"
	defaultModel          = "llama-3.3-70b-versatile"
	defaultTimeoutSeconds = 60
)

// Config holds connection parameters for the chat-completions client.
type Config struct {
	BaseURL        string  `json:"base_url,omitempty"`
	APIKey         string  `json:"api_key,omitempty"`
	APIKeyEnv      string  `json:"api_key_env,omitempty"`
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns a Config targeting a Groq-hosted model at
// temperature 0, matching the deterministic bias the support agent wants.
func DefaultConfig() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		APIKeyEnv:      defaultAPIKeyEnv,
		Model:          defaultModel,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.APIKeyEnv != "" {
		c.APIKeyEnv = source.APIKeyEnv
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.Temperature > 0 {
		c.Temperature = source.Temperature
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}
