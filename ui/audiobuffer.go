package ui

import (
	"io"
	"sync"
)

// bytesPerSample is the size of one int16 sample on the wire.
const bytesPerSample = 2

// AudioRingBuffer is a fixed size queue of int16 samples implementing
// io.Reader for oto. The emulation goroutine pushes whole frames of
// samples; oto pulls little-endian bytes. When full the oldest samples
// are discarded so the producer never waits on the audio device.
type AudioRingBuffer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	data    []int16
	head    int  // next sample to read
	size    int  // samples queued
	half    bool // pending holds the high byte of a split sample
	pending byte
	closed  bool
}

// NewAudioRingBuffer creates a ring buffer holding capacity bytes of
// 16-bit audio.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	rb := &AudioRingBuffer{data: make([]int16, capacity/bytesPerSample)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// WriteSamples queues samples, overwriting the oldest on overflow.
func (rb *AudioRingBuffer) WriteSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.closed {
		return
	}

	n := len(rb.data)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	if drop := rb.size + len(samples) - n; drop > 0 {
		rb.head = (rb.head + drop) % n
		rb.size -= drop
	}
	tail := (rb.head + rb.size) % n
	c := copy(rb.data[tail:], samples)
	copy(rb.data, samples[c:])
	rb.size += len(samples)

	rb.cond.Signal()
}

// Read implements io.Reader. It blocks until samples are queued and
// returns io.EOF once closed and drained.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.size == 0 && !rb.half {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	i := 0
	if rb.half && len(p) > 0 {
		p[0] = rb.pending
		rb.half = false
		i++
	}
	for i < len(p) && rb.size > 0 {
		s := rb.data[rb.head]
		rb.head = (rb.head + 1) % len(rb.data)
		rb.size--
		p[i] = byte(s)
		i++
		if i == len(p) {
			// Hold the high byte for the next Read
			rb.pending = byte(s >> 8)
			rb.half = true
			break
		}
		p[i] = byte(s >> 8)
		i++
	}
	return i, nil
}

// Buffered returns the number of bytes waiting to be read.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	n := rb.size * bytesPerSample
	if rb.half {
		n++
	}
	return n
}

// Clear discards all queued samples. A split sample is still completed
// so the byte stream stays aligned.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	rb.head, rb.size = 0, 0
	rb.mu.Unlock()
}

// Close unblocks readers. Reads drain what is left, then return io.EOF.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	rb.closed = true
	rb.cond.Broadcast()
	rb.mu.Unlock()
}
