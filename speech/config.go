package speech

const (
	defaultBaseURL        = "https://api.groq.com/openai"
	defaultAPIKeyEnv      = "GROQ_API_KEY"
	defaultSTTModel       = "whisper-large-v3"
	defaultTTSModel       = "playai-tts"
	defaultTTSVoice       = "Fritz-PlayAI"
	defaultTimeoutSeconds = 60
)

// ProviderConfig holds connection parameters for one speech provider
// endpoint. APIKey takes precedence over APIKeyEnv; when both are empty the
// client sends unauthenticated requests (useful against local providers).
type ProviderConfig struct {
	BaseURL        string `json:"base_url,omitempty"`
	APIKey         string `json:"api_key,omitempty"`
	APIKeyEnv      string `json:"api_key_env,omitempty"`
	Model          string `json:"model,omitempty"`
	Voice          string `json:"voice,omitempty"` // synthesis only
	Language       string `json:"language,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *ProviderConfig) Merge(source *ProviderConfig) {
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
	if source.Voice != "" {
		c.Voice = source.Voice
	}
	if source.Language != "" {
		c.Language = source.Language
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}

// Config holds initialization parameters for both speech adapters.
type Config struct {
	Transcription ProviderConfig `json:"transcription"`
	Synthesis     ProviderConfig `json:"synthesis"`
}

// DefaultConfig returns a Config targeting a Groq-hosted Whisper
// transcription endpoint and its speech synthesis endpoint.
func DefaultConfig() Config {
	return Config{
		Transcription: ProviderConfig{
			BaseURL:        defaultBaseURL,
			APIKeyEnv:      defaultAPIKeyEnv,
			Model:          defaultSTTModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Synthesis: ProviderConfig{
			BaseURL:        defaultBaseURL,
			APIKeyEnv:      defaultAPIKeyEnv,
			Model:          defaultTTSModel,
			Voice:          defaultTTSVoice,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	c.Transcription.Merge(&source.Transcription)
	c.Synthesis.Merge(&source.Synthesis)
}
