package kernel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/voicedesk/kernel"
	"github.com/tailored-agentic-units/voicedesk/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := kernel.DefaultConfig()

	if cfg.MaxIterations != 6 {
		t.Errorf("MaxIterations = %d, want 6", cfg.MaxIterations)
	}
	if cfg.HistoryLimit != 40 {
		t.Errorf("HistoryLimit = %d, want 40", cfg.HistoryLimit)
	}
	if cfg.SystemPrompt == "" {
		t.Error("SystemPrompt should have a default")
	}
	if cfg.Session.Backend != session.BackendMemory {
		t.Errorf("Session.Backend = %q, want %q", cfg.Session.Backend, session.BackendMemory)
	}
	if cfg.Decision.Model == "" {
		t.Error("Decision.Model should have a default")
	}
	if cfg.Speech.Transcription.Model == "" {
		t.Error("Speech.Transcription.Model should have a default")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := kernel.DefaultConfig()
	original := cfg

	cfg.Merge(&kernel.Config{
		MaxIterations: 3,
		SystemPrompt:  "custom prompt",
	})

	if cfg.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want 3", cfg.MaxIterations)
	}
	if cfg.SystemPrompt != "custom prompt" {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	// Untouched fields keep their defaults.
	if cfg.HistoryLimit != original.HistoryLimit {
		t.Errorf("HistoryLimit changed to %d", cfg.HistoryLimit)
	}
	if cfg.Decision.Model != original.Decision.Model {
		t.Errorf("Decision.Model changed to %q", cfg.Decision.Model)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	contents := `{
		"max_iterations": 4,
		"session": {"backend": "redis", "redis_addr": "localhost:6379"},
		"decision": {"model": "llama-3.1-8b-instant"}
	}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config fixture failed: %v", err)
	}

	cfg, err := kernel.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if cfg.MaxIterations != 4 {
		t.Errorf("MaxIterations = %d, want 4", cfg.MaxIterations)
	}
	if cfg.Session.Backend != session.BackendRedis {
		t.Errorf("Session.Backend = %q, want redis", cfg.Session.Backend)
	}
	if cfg.Decision.Model != "llama-3.1-8b-instant" {
		t.Errorf("Decision.Model = %q", cfg.Decision.Model)
	}
	// Values absent from the file keep defaults.
	if cfg.HistoryLimit != 40 {
		t.Errorf("HistoryLimit = %d, want 40", cfg.HistoryLimit)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := kernel.LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadConfig() should fail for a missing file")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing config fixture failed: %v", err)
	}
	if _, err := kernel.LoadConfig(path); err == nil {
		t.Error("LoadConfig() should fail for malformed JSON")
	}
}
