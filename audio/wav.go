package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	riffHeaderSize = 12
	wavFormatPCM   = 1
)

// decodeWAV walks the RIFF chunk list and extracts PCM-16 sample data.
// Only uncompressed 16-bit PCM is accepted; anything else is a decode error.
func decodeWAV(raw []byte) (*Clip, error) {
	if len(raw) < riffHeaderSize || string(raw[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: truncated RIFF header", ErrDecode)
	}

	var (
		sampleRate int
		channels   int
		bits       int
		data       []byte
		haveFormat bool
	)

	offset := riffHeaderSize
	for offset+8 <= len(raw) {
		chunkID := string(raw[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(raw[offset+4 : offset+8]))
		body := offset + 8

		if chunkSize < 0 || body+chunkSize > len(raw) {
			return nil, fmt.Errorf("%w: chunk %q overruns payload", ErrDecode, chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrDecode)
			}
			audioFormat := int(binary.LittleEndian.Uint16(raw[body : body+2]))
			if audioFormat != wavFormatPCM {
				return nil, fmt.Errorf("%w: wav encoding %d is not PCM", ErrDecode, audioFormat)
			}
			channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			haveFormat = true
		case "data":
			data = raw[body : body+chunkSize]
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		offset = body + chunkSize + chunkSize%2
	}

	if !haveFormat {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrDecode)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrDecode)
	}
	if bits != 16 {
		return nil, fmt.Errorf("%w: %d-bit samples are not supported", ErrDecode, bits)
	}
	if channels < 1 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid fmt parameters", ErrDecode)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: odd data chunk length", ErrDecode)
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}

	return &Clip{
		Format:     FormatWAV,
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
		Raw:        raw,
	}, nil
}

// WAV renders the clip as a canonical PCM-16 WAV container for upload.
// Clips that were passed through undecoded return their original bytes.
func (c *Clip) WAV() []byte {
	if len(c.Samples) == 0 {
		return c.Raw
	}

	dataSize := len(c.Samples) * 2
	buf := make([]byte, riffHeaderSize+24+8+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(buf)-8))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(c.Channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(c.SampleRate*c.Channels*2))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(c.Channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(s))
	}

	return buf
}
