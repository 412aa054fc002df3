package session

// Supported store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const (
	defaultIdleTimeoutSeconds   = 1800 // 30 minutes
	defaultSweepIntervalSeconds = 60
)

// Config holds session store initialization parameters.
type Config struct {
	Backend              string `json:"backend,omitempty"`
	RedisAddr            string `json:"redis_addr,omitempty"`
	RedisPassword        string `json:"redis_password,omitempty"`
	RedisDB              int    `json:"redis_db,omitempty"`
	IdleTimeoutSeconds   int    `json:"idle_timeout_seconds,omitempty"`
	SweepIntervalSeconds int    `json:"sweep_interval_seconds,omitempty"` // memory backend only
}

// DefaultConfig returns the default session configuration: in-memory
// sessions evicted after 30 idle minutes by a sweep every minute.
func DefaultConfig() Config {
	return Config{
		Backend:              BackendMemory,
		IdleTimeoutSeconds:   defaultIdleTimeoutSeconds,
		SweepIntervalSeconds: defaultSweepIntervalSeconds,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.RedisAddr != "" {
		c.RedisAddr = source.RedisAddr
	}
	if source.RedisPassword != "" {
		c.RedisPassword = source.RedisPassword
	}
	if source.RedisDB != 0 {
		c.RedisDB = source.RedisDB
	}
	if source.IdleTimeoutSeconds > 0 {
		c.IdleTimeoutSeconds = source.IdleTimeoutSeconds
	}
	if source.SweepIntervalSeconds > 0 {
		c.SweepIntervalSeconds = source.SweepIntervalSeconds
	}
}
