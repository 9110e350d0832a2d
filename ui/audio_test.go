package ui

import (
	"testing"
	"time"
)

func TestBytesFor(t *testing.T) {
	tests := []struct {
		d           time.Duration
		bytesPerSec int
		want        int
	}{
		{170 * time.Millisecond, 48000 * 4, 32640},
		{time.Millisecond, 44100 * 4, 176},
		{10 * time.Microsecond, 48000 * 4, 0},
		{5 * time.Millisecond, 22050 * 4, 440},
	}
	for _, tt := range tests {
		got := bytesFor(tt.d, tt.bytesPerSec)
		if got != tt.want {
			t.Errorf("bytesFor(%v, %d): expected %d, got %d", tt.d, tt.bytesPerSec, tt.want, got)
		}
		if got%4 != 0 {
			t.Errorf("bytesFor(%v, %d): %d not frame aligned", tt.d, tt.bytesPerSec, got)
		}
	}
}
