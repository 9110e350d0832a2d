package emu

const (
	sampleRate    = 48000
	psgBufferSize = 2048
	psgGain       = 1898.0
)

// mixAudio converts the frame's mono PSG output into the emulator's
// stereo audio buffer. The PSG runs every frame so the buffer length
// tracks the frame rate even with the cartridge removed.
func (e *Emulator) mixAudio() {
	e.audioBuffer = e.audioBuffer[:0]
	buf, count := e.psg.GetBuffer()
	for i := 0; i < count; i++ {
		s := int16(clampInt32(int32(buf[i]), -32768, 32767))
		e.audioBuffer = append(e.audioBuffer, s, s)
	}
}

// GetAudioSamples returns accumulated audio samples as 16-bit stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// clampInt32 clamps v to [min, max].
func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
