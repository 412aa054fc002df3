// Package speech provides the transcription and synthesis adapter
// boundaries: HTTP clients for Whisper-compatible speech-to-text and
// OpenAI-style text-to-speech endpoints.
package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tailored-agentic-units/voicedesk/audio"
	"github.com/tailored-agentic-units/voicedesk/core/response"
)

// Transcript is the result of transcribing one utterance.
type Transcript struct {
	Text       string
	Language   string
	Confidence float64
	Duration   time.Duration
}

// Transcriber converts a recorded utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip *audio.Clip) (*Transcript, error)
}

// WhisperClient transcribes audio through a Whisper-compatible HTTP API.
type WhisperClient struct {
	cfg    ProviderConfig
	client *http.Client
}

// NewTranscriber creates a WhisperClient from configuration.
func NewTranscriber(cfg ProviderConfig) *WhisperClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}
	return &WhisperClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Transcribe uploads the clip as a multipart form and parses the verbose
// JSON transcription response. An empty or whitespace-only transcript is
// reported as ErrTranscriptionFailed: there is nothing for the agent to
// reason over.
func (c *WhisperClient) Transcribe(ctx context.Context, clip *audio.Clip) (*Transcript, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", clip.FileName())
	if err != nil {
		return nil, fmt.Errorf("%w: building upload form: %v", ErrTranscriptionFailed, err)
	}
	if _, err := part.Write(clip.WAV()); err != nil {
		return nil, fmt.Errorf("%w: writing audio part: %v", ErrTranscriptionFailed, err)
	}

	_ = writer.WriteField("model", c.cfg.Model)
	_ = writer.WriteField("response_format", "verbose_json")
	if c.cfg.Language != "" {
		_ = writer.WriteField("language", c.cfg.Language)
	}
	writer.Close()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if key := apiKey(c.cfg); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTranscriptionFailed, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status=%d body=%s", ErrTranscriptionFailed, resp.StatusCode, body)
	}

	parsed, err := response.ParseAudio(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}

	return &Transcript{
		Text:       text,
		Language:   parsed.Language,
		Confidence: parsed.Confidence(),
		Duration:   time.Duration(parsed.Duration * float64(time.Second)),
	}, nil
}

func apiKey(cfg ProviderConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if cfg.APIKeyEnv != "" {
		return os.Getenv(cfg.APIKeyEnv)
	}
	return ""
}
