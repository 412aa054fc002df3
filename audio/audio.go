// Package audio decodes inbound utterance recordings into a canonical
// representation for transcription. WAV payloads are decoded to PCM-16
// samples; compressed containers the transcription provider accepts
// natively (WebM, Ogg, MP3) are validated and passed through tagged with
// their format.
package audio

import (
	"errors"
	"fmt"
)

// Format identifies the container format of an uploaded recording.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatWebM Format = "webm"
	FormatOgg  Format = "ogg"
	FormatMP3  Format = "mp3"
)

// Sentinel errors for decoding.
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrDecode            = errors.New("audio decode failed")
)

// Clip is a decoded utterance recording. For WAV input, Samples holds
// interleaved PCM-16 data and SampleRate/Channels describe it. For
// compressed containers, Samples is nil and Raw carries the original bytes.
type Clip struct {
	Format     Format
	SampleRate int
	Channels   int
	Samples    []int16
	Raw        []byte
}

// Detect sniffs the container format from the payload's magic bytes.
func Detect(raw []byte) (Format, error) {
	if len(raw) < 4 {
		return "", fmt.Errorf("%w: payload too short (%d bytes)", ErrDecode, len(raw))
	}

	switch {
	case string(raw[0:4]) == "RIFF":
		return FormatWAV, nil
	case raw[0] == 0x1A && raw[1] == 0x45 && raw[2] == 0xDF && raw[3] == 0xA3:
		return FormatWebM, nil
	case string(raw[0:4]) == "OggS":
		return FormatOgg, nil
	case string(raw[0:3]) == "ID3", raw[0] == 0xFF && raw[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	default:
		return "", fmt.Errorf("%w: unrecognized container magic", ErrUnsupportedFormat)
	}
}

// Decode validates the payload and produces a Clip. WAV input is fully
// decoded to PCM-16; other supported containers pass through unchanged.
// Returns ErrUnsupportedFormat for unrecognized containers and ErrDecode
// for malformed or empty payloads.
func Decode(raw []byte) (*Clip, error) {
	format, err := Detect(raw)
	if err != nil {
		return nil, err
	}

	if format == FormatWAV {
		return decodeWAV(raw)
	}

	return &Clip{Format: format, Raw: raw}, nil
}

// FileName returns a conventional upload filename for the clip's format.
func (c *Clip) FileName() string {
	return "audio." + string(c.Format)
}

// Duration returns the clip length in seconds, or 0 when the clip was not
// decoded to samples.
func (c *Clip) Duration() float64 {
	if len(c.Samples) == 0 || c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}
