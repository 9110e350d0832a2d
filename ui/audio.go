package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Output is interleaved stereo signed 16-bit.
const audioChannels = 2

// ringBufferDuration is how much audio the ring buffer holds.
const ringBufferDuration = 170 * time.Millisecond

// playerBufferDuration is oto's per-player buffer.
const playerBufferDuration = 100 * time.Millisecond

// AudioPlayer plays the machine's int16 stereo stream through oto. The
// emulation goroutine writes into a ring buffer that the oto player
// drains.
type AudioPlayer struct {
	player      *oto.Player
	ringBuffer  *AudioRingBuffer
	bytesPerSec int
}

// One oto context exists per process and its rate is fixed on creation.
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

func audioContext(sampleRate int) (*oto.Context, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if otoRate != sampleRate {
			return nil, fmt.Errorf("audio context already open at %d Hz", otoRate)
		}
		return otoCtx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: audioChannels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	otoCtx, otoRate = ctx, sampleRate
	return ctx, nil
}

// bytesFor returns the byte length of d at the given stream rate.
func bytesFor(d time.Duration, bytesPerSec int) int {
	n := int(d * time.Duration(bytesPerSec) / time.Second)
	return n &^ (audioChannels*bytesPerSample - 1)
}

// NewAudioPlayer opens playback at sampleRate with the given volume.
func NewAudioPlayer(sampleRate int, volume float64) (*AudioPlayer, error) {
	ctx, err := audioContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	bytesPerSec := sampleRate * audioChannels * bytesPerSample
	rb := NewAudioRingBuffer(bytesFor(ringBufferDuration, bytesPerSec))
	player := ctx.NewPlayer(rb)
	player.SetBufferSize(bytesFor(playerBufferDuration, bytesPerSec))
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{
		player:      player,
		ringBuffer:  rb,
		bytesPerSec: bytesPerSec,
	}, nil
}

// QueueSamples queues interleaved stereo samples for playback.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.ringBuffer.WriteSamples(samples)
}

// Buffered returns how much audio is waiting in the ring buffer and in
// oto's player. The runner paces frames on it.
func (a *AudioPlayer) Buffered() time.Duration {
	n := a.ringBuffer.Buffered() + a.player.BufferedSize()
	return time.Duration(n) * time.Second / time.Duration(a.bytesPerSec)
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
