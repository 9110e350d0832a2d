// Package cli provides a command-line runner for the emulator.
// It handles input polling and runs the emulator in a window without the full UI.
package cli

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	emucore "github.com/user-none/eblitui/api"
	emubridge "github.com/user-none/emsx/bridge/ebiten"
	"github.com/user-none/emsx/ui"
)

// ADT keeps the queued audio between these levels.
const (
	adtMinBuffer = 50 * time.Millisecond
	adtMaxBuffer = 100 * time.Millisecond
)

// Button bits beyond the d-pad, matching the adapter's button IDs.
const (
	buttonA      = 1 << 4
	buttonB      = 1 << 5
	buttonStart  = 1 << 6
	buttonSelect = 1 << 7
)

// sampleRate is the emulator's audio output rate.
const sampleRate = 48000

// Runner wraps an emulator for command-line mode.
// The emulator runs on a dedicated goroutine with audio-driven timing.
// The Ebiten thread handles input polling and rendering from the shared framebuffer.
type Runner struct {
	emulator    *emubridge.Emulator
	audioPlayer *ui.AudioPlayer
	recorder    *ui.WAVRecorder

	// ADT goroutine control
	emuControl        *ui.EmuControl
	sharedInput       *ui.SharedInput
	sharedFramebuffer *ui.SharedFramebuffer
	emuDone           chan struct{}
}

// Options configures a Runner.
type Options struct {
	WAVPath string // Capture audio to this file when set
}

// NewRunner creates a new Runner wrapping the given emulator.
// Audio initialization failure is non-fatal; the runner will work without
// sound. A WAV capture file that cannot be created is an error.
func NewRunner(e *emubridge.Emulator, opts Options) (*Runner, error) {
	var recorder *ui.WAVRecorder
	if opts.WAVPath != "" {
		var err error
		recorder, err = ui.NewWAVRecorder(opts.WAVPath, sampleRate)
		if err != nil {
			return nil, err
		}
	}

	player, err := ui.NewAudioPlayer(sampleRate, 1.0)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	}

	r := &Runner{
		emulator:          e,
		audioPlayer:       player,
		recorder:          recorder,
		emuControl:        ui.NewEmuControl(),
		sharedInput:       &ui.SharedInput{},
		sharedFramebuffer: ui.NewSharedFramebuffer(),
		emuDone:           make(chan struct{}),
	}

	go r.emulationLoop()

	return r, nil
}

// Close stops emulation and releases audio resources. The WAV capture,
// if any, is finalized here.
func (r *Runner) Close() {
	if r.emuControl != nil {
		r.emuControl.Stop()
		<-r.emuDone
	}

	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}

	if r.recorder != nil {
		if err := r.recorder.Close(); err != nil {
			log.Printf("Warning: %v", err)
		}
		r.recorder = nil
	}
}

// emulationLoop runs on a dedicated goroutine with ADT.
func (r *Runner) emulationLoop() {
	defer close(r.emuDone)

	timing := r.emulator.GetTiming()
	frameTime := time.Duration(float64(time.Second) / float64(timing.FPS))
	lastFrameTime := time.Now()

	for {
		if !r.emuControl.CheckPause() {
			return
		}

		for player, buttons := range r.sharedInput.Read() {
			r.emulator.SetInput(player, buttons)
		}

		r.emulator.RunFrame()

		samples := r.emulator.GetAudioSamples()
		if r.audioPlayer != nil {
			r.audioPlayer.QueueSamples(samples)
		}
		if r.recorder != nil {
			if err := r.recorder.WriteSamples(samples); err != nil {
				log.Printf("Warning: stopping audio capture: %v", err)
				r.recorder.Close()
				r.recorder = nil
			}
		}

		r.sharedFramebuffer.Publish(
			r.emulator.GetFramebuffer(),
			r.emulator.GetFramebufferStride(),
			r.emulator.GetActiveHeight(),
		)

		// ADT sleep
		elapsed := time.Since(lastFrameTime)
		sleepTime := frameTime - elapsed

		if r.audioPlayer != nil {
			bufferLevel := r.audioPlayer.Buffered()
			if bufferLevel < adtMinBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if bufferLevel > adtMaxBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}

		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}

	r.pollInputToShared()
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	frame := r.sharedFramebuffer.Snapshot()
	if frame.Height == 0 {
		return
	}
	r.emulator.DrawFrame(screen, frame.Pixels, frame.Stride, frame.Height, frame.Seq)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// pollInputToShared reads the keyboard and gamepads. The keyboard and
// the first gamepad drive player 1; the second gamepad drives player 2.
func (r *Runner) pollInputToShared() {
	var buttons [ui.Players]uint32

	// WASD or arrows, J/K for the triggers, Enter and Backspace for
	// Start and Select
	keys := []struct {
		keys []ebiten.Key
		bit  uint32
	}{
		{[]ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}, 1 << emucore.ButtonUp},
		{[]ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}, 1 << emucore.ButtonDown},
		{[]ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}, 1 << emucore.ButtonLeft},
		{[]ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, 1 << emucore.ButtonRight},
		{[]ebiten.Key{ebiten.KeyJ, ebiten.KeySpace}, buttonA},
		{[]ebiten.Key{ebiten.KeyK}, buttonB},
		{[]ebiten.Key{ebiten.KeyEnter}, buttonStart},
		{[]ebiten.Key{ebiten.KeyBackspace}, buttonSelect},
	}
	for _, k := range keys {
		for _, key := range k.keys {
			if ebiten.IsKeyPressed(key) {
				buttons[0] |= k.bit
			}
		}
	}

	for i, id := range ebiten.AppendGamepadIDs(nil) {
		if i >= ui.Players {
			break
		}
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			buttons[i] |= gamepadButtons(id)
		}
	}

	for player, b := range buttons {
		r.sharedInput.Set(player, b)
	}
}

// gamepadButtons maps a standard layout gamepad onto a button mask.
func gamepadButtons(id ebiten.GamepadID) uint32 {
	var b uint32
	pads := []struct {
		button ebiten.StandardGamepadButton
		bit    uint32
	}{
		{ebiten.StandardGamepadButtonLeftTop, 1 << emucore.ButtonUp},
		{ebiten.StandardGamepadButtonLeftBottom, 1 << emucore.ButtonDown},
		{ebiten.StandardGamepadButtonLeftLeft, 1 << emucore.ButtonLeft},
		{ebiten.StandardGamepadButtonLeftRight, 1 << emucore.ButtonRight},
		{ebiten.StandardGamepadButtonRightBottom, buttonA},
		{ebiten.StandardGamepadButtonRightRight, buttonB},
		{ebiten.StandardGamepadButtonCenterRight, buttonStart},
		{ebiten.StandardGamepadButtonCenterLeft, buttonSelect},
	}
	for _, p := range pads {
		if ebiten.IsStandardGamepadButtonPressed(id, p.button) {
			b |= p.bit
		}
	}

	// Left analog stick (with deadzone)
	const deadzone = 0.5
	axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	if axisX < -deadzone {
		b |= 1 << emucore.ButtonLeft
	}
	if axisX > deadzone {
		b |= 1 << emucore.ButtonRight
	}
	if axisY < -deadzone {
		b |= 1 << emucore.ButtonUp
	}
	if axisY > deadzone {
		b |= 1 << emucore.ButtonDown
	}
	return b
}
