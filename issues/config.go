package issues

const defaultPath = "voicedesk.db"

// Config holds issue store initialization parameters.
type Config struct {
	// Path is the SQLite database file. ":memory:" gives an ephemeral
	// store.
	Path string `json:"path,omitempty"`
}

// DefaultConfig returns the default issue store configuration.
func DefaultConfig() Config {
	return Config{Path: defaultPath}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
}
