package speech

import "errors"

// Sentinel errors for the speech adapters.
var (
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrSynthesisFailed     = errors.New("synthesis failed")
)
