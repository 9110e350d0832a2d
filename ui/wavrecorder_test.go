package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWAVRecorder_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	r, err := NewWAVRecorder(path, 48000)
	if err != nil {
		t.Fatalf("NewWAVRecorder: %v", err)
	}
	if err := r.WriteSamples([]int16{100, -100, 200, -200}); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := r.WriteSamples([]int16{32767, -32768}); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("expected a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	if dec.SampleRate != 48000 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("format: got %d Hz %d ch %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	want := []int{100, -100, 200, -200, 32767, -32768}
	if len(buf.Data) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(buf.Data))
	}
	for i, v := range want {
		if buf.Data[i] != v {
			t.Errorf("sample %d: expected %d, got %d", i, v, buf.Data[i])
		}
	}
}

func TestWAVRecorder_EmptyWriteIsNoop(t *testing.T) {
	r, err := NewWAVRecorder(filepath.Join(t.TempDir(), "empty.wav"), 48000)
	if err != nil {
		t.Fatalf("NewWAVRecorder: %v", err)
	}
	if err := r.WriteSamples(nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestNewWAVRecorder_BadPath(t *testing.T) {
	if _, err := NewWAVRecorder(filepath.Join(t.TempDir(), "missing", "out.wav"), 48000); err == nil {
		t.Error("expected error for missing directory")
	}
}
