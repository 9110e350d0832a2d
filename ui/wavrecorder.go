package ui

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavChannels  = 2
	wavFormatPCM = 1
)

// WAVRecorder streams interleaved int16 stereo samples to a WAV file.
// The RIFF header sizes are written by Close.
type WAVRecorder struct {
	f   *os.File
	enc *wav.Encoder
	buf *audio.IntBuffer
}

// NewWAVRecorder creates path and prepares it for 16-bit stereo PCM at
// sampleRate.
func NewWAVRecorder(path string, sampleRate int) (*WAVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return &WAVRecorder{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, wavBitDepth, wavChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}, nil
}

// WriteSamples appends one batch of interleaved samples.
func (r *WAVRecorder) WriteSamples(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}
	r.buf.Data = r.buf.Data[:0]
	for _, s := range samples {
		r.buf.Data = append(r.buf.Data, int(s))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// Close finalizes the header and closes the file.
func (r *WAVRecorder) Close() error {
	encErr := r.enc.Close()
	fileErr := r.f.Close()
	if encErr != nil {
		return fmt.Errorf("wav: %w", encErr)
	}
	if fileErr != nil {
		return fmt.Errorf("wav: %w", fileErr)
	}
	return nil
}
