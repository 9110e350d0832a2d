package ui

import (
	"sync"

	"github.com/user-none/emsx/emu"
)

// Players is the number of controller ports polled by the front end.
const Players = 2

// SharedInput holds controller state written by the Ebiten thread
// and read by the emulation goroutine. Each player is a button mask in
// the emucore bit layout.
type SharedInput struct {
	mu      sync.Mutex
	buttons [Players]uint32
}

// Set stores the button mask for player.
func (si *SharedInput) Set(player int, buttons uint32) {
	if player < 0 || player >= Players {
		return
	}
	si.mu.Lock()
	si.buttons[player] = buttons
	si.mu.Unlock()
}

// Read returns the button masks for all players.
func (si *SharedInput) Read() [Players]uint32 {
	si.mu.Lock()
	b := si.buttons
	si.mu.Unlock()
	return b
}

// Frame is one published frame. Pixels are RGBA rows of Stride bytes.
type Frame struct {
	Pixels []byte
	Stride int
	Height int
	Seq    uint64 // Incremented on every Publish
}

// SharedFramebuffer hands frames from the emulation goroutine to the
// Ebiten Draw method. Publish fills the back buffer and swaps it to the
// front; Snapshot copies the front buffer out.
type SharedFramebuffer struct {
	mu    sync.Mutex
	front Frame
	back  []byte
	out   []byte // Returned by Snapshot, owned by the reader
}

// NewSharedFramebuffer creates buffers sized for the largest MSX2 frame.
func NewSharedFramebuffer() *SharedFramebuffer {
	size := emu.ScreenWidth * emu.MaxScreenHeight * 4
	return &SharedFramebuffer{
		front: Frame{Pixels: make([]byte, size)},
		back:  make([]byte, size),
		out:   make([]byte, size),
	}
}

// Publish stores a frame. Rows beyond the buffer size are dropped.
func (sf *SharedFramebuffer) Publish(pixels []byte, stride, height int) {
	n := min(stride*height, len(sf.back), len(pixels))
	copy(sf.back[:n], pixels[:n])

	sf.mu.Lock()
	sf.front.Pixels, sf.back = sf.back, sf.front.Pixels
	sf.front.Stride = stride
	sf.front.Height = height
	sf.front.Seq++
	sf.mu.Unlock()
}

// Snapshot returns a copy of the latest frame. The returned Pixels stay
// valid until the next Snapshot call.
func (sf *SharedFramebuffer) Snapshot() Frame {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	f := sf.front
	n := min(f.Stride*f.Height, len(f.Pixels))
	copy(sf.out[:n], f.Pixels[:n])
	f.Pixels = sf.out
	return f
}

type runState int

const (
	stateRunning runState = iota
	statePauseRequested
	statePaused
	stateStopped
)

// EmuControl coordinates pause, resume and stop between the Ebiten
// thread and the emulation goroutine.
type EmuControl struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state runState
}

// NewEmuControl creates a control in the running state.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the emulation goroutine to pause and blocks until
// it has parked in CheckPause or stopped.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.state != stateRunning {
		return
	}
	ec.state = statePauseRequested
	for ec.state == statePauseRequested {
		ec.cond.Wait()
	}
}

// RequestResume releases a paused or pausing goroutine.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	if ec.state == statePaused || ec.state == statePauseRequested {
		ec.state = stateRunning
		ec.cond.Broadcast()
	}
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames. It
// parks while paused and returns false once the goroutine should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if ec.state == statePauseRequested {
		ec.state = statePaused
		ec.cond.Broadcast()
	}
	for ec.state == statePaused {
		ec.cond.Wait()
	}
	return ec.state != stateStopped
}

// Stop makes the next CheckPause return false and wakes any waiter.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.state = stateStopped
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// ShouldRun reports whether Stop has not been called.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.state != stateStopped
}

// IsPaused reports whether the emulation goroutine is parked.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.state == statePaused
}
