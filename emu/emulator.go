package emu

import (
	"fmt"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/go-chip-sn76489"
	"github.com/user-none/go-chip-z80"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.BatterySaver = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const (
	Name    = "emsx"
	Version = "0.1.0"
)

// VDP master clock ticks per Z80 cycle.
const vdpClockRatio = 6

// Flat address boundaries for ReadMemory.
const (
	ramStart  = 0x00000
	ramEnd    = 0x0FFFF
	vramStart = 0x10000
)

// Config selects the machine configuration.
type Config struct {
	BIOS         []byte // Slot 0 image; nil boots cartridges directly
	VRAMSize     int    // Bytes of VRAM; 0 selects DefaultVRAMSize
	PSGCartridge bool   // SN76489 cartridge on port $3F
}

// Emulator is an MSX2 machine: a Z80 with 64KB RAM, a V9938 VDP and a
// cartridge slot.
type Emulator struct {
	cpu *z80.CPU
	mem *Memory
	bus *MSXBus
	vdp *VDP
	psg *sn76489.SN76489
	io  *IO

	// Z80 cycles since power-on. The VDP clock is six times this.
	cycles  uint64
	lineEnd uint64 // Cycle count at which the current scanline ends

	// Region timing
	region    Region
	timing    RegionTiming
	scanlines int

	// Pre-allocated audio buffer for external consumption
	audioBuffer []int16
}

// NewEmulator creates and initializes the machine. The VDP reads its
// clock from the returned Emulator, so it must not be copied.
func NewEmulator(rom []byte, region Region, cfg Config) (*Emulator, error) {
	switch cfg.VRAMSize {
	case 0, 0x4000, 0x10000, 0x20000, 0x30000:
	default:
		return nil, fmt.Errorf("unsupported VRAM size %d", cfg.VRAMSize)
	}
	if len(rom) == 0 && len(cfg.BIOS) == 0 {
		return nil, fmt.Errorf("nothing to run: no cartridge and no BIOS")
	}

	timing := GetTimingForRegion(region)

	e := &Emulator{
		mem:         NewMemory(cfg.BIOS, rom),
		region:      region,
		timing:      timing,
		scanlines:   timing.Scanlines,
		audioBuffer: make([]int16, 0, psgBufferSize*2),
	}

	e.vdp = NewVDP(cfg.VRAMSize, region == RegionPAL, e.vdpClock)
	e.psg = sn76489.New(timing.CPUClockHz, sampleRate, psgBufferSize, sn76489.Sega)
	e.psg.SetGain(psgGain)

	e.io = NewIO(e.vdp, e.mem, e.psg)
	e.io.SetPSGEnabled(cfg.PSGCartridge)
	e.bus = NewMSXBus(e.mem, e.io)
	e.cpu = z80.New(e.bus)

	return e, nil
}

// vdpClock returns the VDP master clock derived from the Z80 cycle count.
func (e *Emulator) vdpClock() uint32 {
	return uint32(e.cycles * vdpClockRatio)
}

// checkAndSetInterrupt drives the level-triggered Z80 INT line from the VDP.
func (e *Emulator) checkAndSetInterrupt() {
	e.cpu.INT(e.vdp.InterruptPending(), 0xFF)
}

// RunFrame executes one frame of emulation.
func (e *Emulator) RunFrame() {
	e.psg.ResetBuffer()

	for i := 0; i < e.scanlines; i++ {
		e.vdp.StartScanline(i)
		e.checkAndSetInterrupt()

		// Step one instruction at a time so port accesses see an exact
		// VDP clock and status reads release INT immediately. An
		// instruction crossing the line end is charged to this line.
		e.lineEnd += cyclesPerScanline
		for e.cycles < e.lineEnd {
			n := e.cpu.Step()
			if n <= 0 {
				n = int(e.lineEnd - e.cycles)
			}
			e.cycles += uint64(n)
			e.checkAndSetInterrupt()
		}

		// The active height can change mid-frame via R#9
		if i < e.vdp.ActiveHeight() {
			e.vdp.RenderScanline(i)
		}

		e.psg.Run(cyclesPerScanline)
	}

	e.mixAudio()
}

// SetInput unpacks a button bitmask and sets controller state for the given player.
// Player 0 also drives the cursor keys, SPACE, RETURN and F1.
func (e *Emulator) SetInput(player int, buttons uint32) {
	up := buttons&(1<<emucore.ButtonUp) != 0
	down := buttons&(1<<emucore.ButtonDown) != 0
	left := buttons&(1<<emucore.ButtonLeft) != 0
	right := buttons&(1<<emucore.ButtonRight) != 0
	btnA := buttons&(1<<4) != 0
	btnB := buttons&(1<<5) != 0
	start := buttons&(1<<6) != 0
	sel := buttons&(1<<7) != 0

	switch player {
	case 0:
		e.io.Input.SetJoystick(0, up, down, left, right, btnA, btnB)
		e.io.Input.SetCursorKeys(up, down, left, right, btnA, start, sel)
	case 1:
		e.io.Input.SetJoystick(1, up, down, left, right, btnA, btnB)
	}
}

// SetPSGCartridge inserts or removes the SN76489 sound cartridge.
func (e *Emulator) SetPSGCartridge(enabled bool) {
	e.io.SetPSGEnabled(enabled)
}

// GetFramebuffer returns raw RGBA pixel data for current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.vdp.GetFramebuffer()
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.vdp.GetStride()
}

// GetActiveHeight returns the current active display height (192 or 212).
func (e *Emulator) GetActiveHeight() int {
	return e.vdp.ActiveHeight()
}

// GetRegion returns the emulator's region setting.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count for the current region.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// SetRegion updates the emulator's region configuration.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
	e.timing = GetTimingForRegion(region)
	e.scanlines = e.timing.Scanlines
	e.vdp.SetPAL(region == RegionPAL)
}

// VDP returns the video processor.
func (e *Emulator) VDP() *VDP {
	return e.vdp
}

// HasBIOS reports whether a real BIOS was supplied.
func (e *Emulator) HasBIOS() bool {
	return e.mem.HasBIOS()
}

// HasSRAM returns false; plain MSX cartridges carry no battery RAM.
func (e *Emulator) HasSRAM() bool {
	return false
}

// GetSRAM returns nil as there is no SRAM.
func (e *Emulator) GetSRAM() []byte {
	return nil
}

// SetSRAM is a no-op as there is no SRAM.
func (e *Emulator) SetSRAM(data []byte) {}

// GetMainRAM returns a copy of the 64KB RAM in slot 3.
func (e *Emulator) GetMainRAM() []byte {
	out := make([]byte, ramSize)
	copy(out, e.mem.ram[:])
	return out
}

// SetMainRAM writes data into the slot 3 RAM.
func (e *Emulator) SetMainRAM(data []byte) {
	copy(e.mem.ram[:], data)
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// SetOption applies a core option change identified by key. vram_size
// only takes effect when the emulator is created.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "psg_cartridge":
		e.SetPSGCartridge(value == "true")
	}
}

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. RAM occupies $00000-$0FFFF and VRAM follows from
// $10000.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	vram := e.vdp.VRAM()
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		switch {
		case cur <= ramEnd:
			buf[i] = e.mem.ram[cur-ramStart]
		case cur-vramStart < uint32(len(vram)):
			buf[i] = vram[cur-vramStart]
		default:
			return count
		}
		count++
	}
	return count
}

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: ramSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		return e.GetMainRAM()
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	if regionType == emucore.MemorySystemRAM {
		e.SetMainRAM(data)
	}
}
