package emu

import "image"

const (
	ScreenWidth     = 512
	MaxScreenHeight = 212
	DefaultVRAMSize = 0x20000
)

// VDP clock ticks per scanline (228 Z80 cycles at 6 ticks each) and the
// part of it spent drawing pixels.
const (
	vdpTicksPerLine   = 1368
	vdpTicksDisplayed = 1024
)

// Register value masks. R#25-R#27 are the V9958 extension registers;
// R#24 and R#28-R#31 do not exist.
var vdpRegisterMask = [64]uint8{
	0x7E, 0x7B, 0x7F, 0xFF, 0x3F, 0xFF, 0x3F, 0xFF,
	0xFB, 0xBF, 0x07, 0x03, 0xFF, 0xFF, 0x07, 0x0F,
	0x0F, 0xBF, 0xFF, 0xFF, 0x3F, 0x3F, 0x3F, 0xFF,
	0x00, 0x7F, 0x3F, 0x07, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// Power-on palette, 0GRB with 3 bits per component.
var defaultPalette = [16]uint16{
	0x0000, 0x0000, 0x0611, 0x0733, 0x0117, 0x0327, 0x0151, 0x0627,
	0x0171, 0x0373, 0x0661, 0x0664, 0x0411, 0x0265, 0x0555, 0x0777,
}

// ClockFunc returns the current VDP clock in master clock ticks.
type ClockFunc func() uint32

// VDP is the V9938 Video Display Processor. Bitmap drawing is delegated
// to the command engine, which shares the VRAM buffer.
type VDP struct {
	vram    []uint8
	regs    [64]uint8
	status  [10]uint8
	palette [16]uint16
	cmd     *CmdEngine

	// CPU port state
	latch        uint8
	latchPending bool
	address      uint16 // Low 14 bits; R#14 holds the page
	readAhead    uint8
	palPending   bool

	// CPU view of VRAM
	vramOffsets [2]int
	vramMasks   [4]int
	vramOffset  int
	vramMask    int
	vramEnabled bool
	vramPages   int

	displayMode    int
	drawArea       bool
	lineIntPending bool
	currentLine    int
	lineStart      uint32 // Clock at the start of the current scanline

	isPAL bool
	clock ClockFunc

	framebuffer *image.RGBA
}

// NewVDP creates a V9938 with vramSize bytes of VRAM (16, 64, 128 or
// 192 KB). clock supplies the virtual time seen by the command engine.
func NewVDP(vramSize int, isPAL bool, clock ClockFunc) *VDP {
	if vramSize <= 0 {
		vramSize = DefaultVRAMSize
	}
	v := &VDP{
		vram:        make([]uint8, vramSize),
		isPAL:       isPAL,
		clock:       clock,
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, MaxScreenHeight)),
	}
	v.vramOffsets = [2]int{0, 0}
	if vramSize > 0x20000 {
		v.vramOffsets[1] = 0x20000
	}
	v.vramMasks = [4]int{vramSize - 1, vramSize - 1, vramSize - 1, vramSize - 1}
	if vramSize > 0x8000 {
		v.vramMasks[0], v.vramMasks[1] = 0x7FFF, 0x7FFF
	}
	if vramSize > 0x20000 {
		v.vramMasks[2], v.vramMasks[3] = 0x1FFFF, 0xFFFF
	}
	v.vramPages = min(vramSize, 0x20000) >> 14
	v.cmd = NewCmdEngine(v.vram, v.now())
	v.Reset()
	return v
}

// Reset returns the VDP to its power-on state. VRAM is kept.
func (v *VDP) Reset() {
	v.regs = [64]uint8{}
	v.regs[1] = 0x10
	v.regs[2] = 0xFF
	v.regs[3] = 0xFF
	v.regs[4] = 0xFF
	v.regs[5] = 0xFF
	v.regs[8] = 0x08
	if v.isPAL {
		v.regs[9] = 0x02
	}
	v.regs[21] = 0x3B
	v.regs[22] = 0x05

	v.status = [10]uint8{}
	v.status[0] = 0x9F
	v.status[2] = 0x6C

	v.palette = defaultPalette
	v.latchPending = false
	v.palPending = false
	v.address = 0
	v.readAhead = 0
	v.drawArea = false
	v.lineIntPending = false
	v.currentLine = 0
	v.lineStart = v.now()

	v.cmd.Reset(v.now())
	v.updateVRAMAccess()
	v.updateScreenMode()
	v.updateTimingMode()
}

// SetPAL switches the refresh rate reported in R#9.
func (v *VDP) SetPAL(pal bool) {
	v.isPAL = pal
	if pal {
		v.regs[9] |= 0x02
	} else {
		v.regs[9] &^= 0x02
	}
}

// CmdEngine returns the command engine driven by this VDP.
func (v *VDP) CmdEngine() *CmdEngine {
	return v.cmd
}

func (v *VDP) now() uint32 {
	if v.clock == nil {
		return 0
	}
	return v.clock()
}

// sync advances the command engine to the current time.
func (v *VDP) sync() {
	v.cmd.Execute(v.now())
}

// --- Register helpers ---

func (v *VDP) displayEnabled() bool {
	return v.regs[1]&0x40 != 0
}

func (v *VDP) frameIntEnabled() bool {
	return v.regs[1]&0x20 != 0
}

func (v *VDP) lineIntEnabled() bool {
	return v.regs[0]&0x10 != 0
}

func (v *VDP) lines212() bool {
	return v.regs[9]&0x80 != 0
}

// ActiveHeight returns the number of displayed lines, 192 or 212.
func (v *VDP) ActiveHeight() int {
	if v.lines212() {
		return 212
	}
	return 192
}

// DisplayMode returns the decoded display mode number (0-8, 13, 16, 32
// or 64 for an invalid combination).
func (v *VDP) DisplayMode() int {
	return v.displayMode
}

// updateScreenMode decodes M1-M5 and hands the result to the engine.
func (v *VDP) updateScreenMode() {
	switch (v.regs[0]&0x0E)>>1 | v.regs[1]&0x18 {
	case 0x10:
		v.displayMode = 0
	case 0x00:
		v.displayMode = 1
	case 0x01:
		v.displayMode = 2
	case 0x08:
		v.displayMode = 3
	case 0x02:
		v.displayMode = 4
	case 0x03:
		v.displayMode = 5
	case 0x04:
		v.displayMode = 6
	case 0x05:
		v.displayMode = 7
	case 0x07:
		v.displayMode = 8
	case 0x12:
		v.displayMode = 13
	case 0x11:
		v.displayMode = 16
	case 0x18, 0x19:
		v.displayMode = 32
	default:
		v.displayMode = 64
	}
	v.cmd.SetScreenMode(v.displayMode&0x0F, v.regs[25]&0x40 != 0)
}

func (v *VDP) updateTimingMode() {
	var mode uint8
	if v.drawArea {
		mode = (v.regs[1] >> 6) & 1
	}
	v.cmd.SetTimingMode(mode | v.regs[8]&0x02)
}

// updateVRAMAccess selects the CPU side VRAM window from R#8 bit 3 and
// the expansion bank bit in R#45.
func (v *VDP) updateVRAMAccess() {
	mxc := int(v.regs[45]>>6) & 1
	v.vramOffset = v.vramOffsets[mxc]
	v.vramMask = v.vramMasks[int(v.regs[8]&0x08)>>2|mxc]
	v.vramEnabled = len(v.vram) > 0x20000 || mxc == 0
	if v.vramPages == 1 && v.regs[14] != 0 {
		v.vramEnabled = false
	}
}

// --- Registers ---

// WriteRegister stores value into register reg and applies its side
// effects. Writes to R#32-R#46 go to the command engine.
func (v *VDP) WriteRegister(reg, value uint8) {
	reg &= 0x3F
	value &= vdpRegisterMask[reg]
	v.sync()

	change := v.regs[reg] ^ value
	v.regs[reg] = value

	if reg >= 0x20 {
		if reg == 45 && change&0x40 != 0 {
			v.updateVRAMAccess()
		}
		v.cmd.Write(reg-0x20, value, v.now())
		return
	}

	switch reg {
	case 0:
		if value&0x10 == 0 {
			v.lineIntPending = false
		}
		if change&0x0E != 0 {
			v.updateScreenMode()
		}
	case 1:
		if change&0x58 != 0 {
			v.updateScreenMode()
		}
		v.updateTimingMode()
	case 8:
		v.updateVRAMAccess()
		v.updateTimingMode()
	case 14:
		v.regs[14] = value & uint8(v.vramPages-1)
		v.updateVRAMAccess()
	case 16:
		v.palPending = false
	case 19:
		v.lineIntPending = false
	case 25:
		if change != 0 {
			v.updateScreenMode()
		}
	}
}

// Register returns the stored value of register reg.
func (v *VDP) Register(reg uint8) uint8 {
	return v.regs[reg&0x3F]
}

// --- VRAM access ---

// cpuIndex maps the current CPU address onto the VRAM buffer. In
// GRAPHIC6 and GRAPHIC7 the two 64KB halves are interleaved so the CPU
// sees the same layout as the command engine.
func (v *VDP) cpuIndex() int {
	addr := int(v.regs[14])<<14 | int(v.address)
	if v.displayMode >= 7 && v.displayMode <= 12 {
		addr = addr>>1 | (addr&1)<<16
	}
	return v.vramOffset + addr&v.vramMask
}

func (v *VDP) advanceAddress() {
	v.address = (v.address + 1) & 0x3FFF
	if v.address == 0 && v.displayMode > 3 {
		v.regs[14] = (v.regs[14] + 1) & uint8(v.vramPages-1)
	}
}

func (v *VDP) prefetch() {
	if v.vramEnabled {
		v.readAhead = v.vram[v.cpuIndex()]
	} else {
		v.readAhead = 0xFF
	}
	v.advanceAddress()
}

// --- Ports ---

// WriteData writes a byte to port 0x98 (VRAM data).
func (v *VDP) WriteData(val uint8) {
	v.sync()
	if v.vramEnabled {
		v.vram[v.cpuIndex()] = val
	}
	v.readAhead = val
	v.latchPending = false
	v.advanceAddress()
}

// ReadData reads a byte from port 0x98. The read-ahead buffer is
// returned and refilled from the next address.
func (v *VDP) ReadData() uint8 {
	v.sync()
	val := v.readAhead
	v.prefetch()
	v.latchPending = false
	return val
}

// WriteControl writes a byte to port 0x99. The first byte is latched;
// the second either writes a register or sets up the VRAM address.
func (v *VDP) WriteControl(val uint8) {
	if !v.latchPending {
		v.latch = val
		v.latchPending = true
		return
	}
	v.latchPending = false

	if val&0x80 != 0 {
		if val&0x40 == 0 {
			v.WriteRegister(val, v.latch)
		}
		return
	}
	v.address = (uint16(val)<<8 | uint16(v.latch)) & 0x3FFF
	if val&0x40 == 0 {
		v.sync()
		v.prefetch()
	}
}

// ReadStatus reads port 0x99, returning the status register selected by
// R#15. Reading S#0 clears the frame interrupt; reading S#1 clears the
// line interrupt; reading S#7 acknowledges an LMCM transfer.
func (v *VDP) ReadStatus() uint8 {
	v.sync()
	v.latchPending = false

	sel := v.regs[15]
	if int(sel) >= len(v.status) {
		return 0xFF
	}
	val := v.status[sel]

	switch sel {
	case 0:
		v.status[0] &= 0x1F
	case 1:
		if v.lineIntPending {
			val |= 0x01
			v.lineIntPending = false
		}
	case 2:
		val = v.status[2]&^(0x20|CmdStatusTR|CmdStatusBO|CmdStatusCE) | v.cmd.GetStatus()
		if v.inHBlank() {
			val |= 0x20
		}
	case 7:
		val = v.cmd.GetColor()
	case 8:
		val = uint8(v.cmd.GetBorderX())
	case 9:
		val = uint8(v.cmd.GetBorderX() >> 8)
	}
	return val
}

// WritePalette writes a byte to port 0x9A. Two writes set one entry:
// 0RRR0BBB then 00000GGG. R#16 advances after each entry.
func (v *VDP) WritePalette(val uint8) {
	if !v.palPending {
		v.latch = val
		v.palPending = true
		return
	}
	v.palPending = false
	entry := v.regs[16] & 0x0F
	v.palette[entry] = uint16(val&0x07)<<8 | uint16(v.latch&0x77)
	v.regs[16] = (entry + 1) & 0x0F
}

// WriteIndirect writes a byte to port 0x9B, the register selected by
// R#17. R#17 advances unless its bit 7 is set; R#17 cannot target itself.
func (v *VDP) WriteIndirect(val uint8) {
	reg := v.regs[17]
	if reg&0x3F != 17 {
		v.WriteRegister(reg&0x3F, val)
	}
	if reg&0x80 == 0 {
		v.regs[17] = (reg + 1) & 0x3F
	}
}

// inHBlank reports whether the current clock is past the displayed part
// of the scanline.
func (v *VDP) inHBlank() bool {
	return v.now()-v.lineStart >= vdpTicksDisplayed
}

// --- Interrupts ---

// InterruptPending reports the level of the VDP interrupt output.
func (v *VDP) InterruptPending() bool {
	if v.status[0]&0x80 != 0 && v.frameIntEnabled() {
		return true
	}
	return v.lineIntPending && v.lineIntEnabled()
}

// --- Scanline hooks ---

// StartScanline advances the VDP to the start of line. Line 0 is the
// first displayed line. The frame interrupt is raised when the last
// displayed line ends and the line interrupt at R#19 relative to the
// vertical scroll in R#23.
func (v *VDP) StartScanline(line int) {
	v.sync()
	v.currentLine = line
	v.lineStart = v.now()

	active := v.ActiveHeight()
	switch line {
	case 0:
		v.drawArea = true
		v.status[2] &^= 0x40
		v.status[2] ^= 0x02
		if !v.lineIntEnabled() {
			v.lineIntPending = false
		}
		v.updateTimingMode()
	case active:
		v.drawArea = false
		v.status[0] |= 0x80
		v.status[2] |= 0x40
		v.updateTimingMode()
	}

	if line < active && line == int((v.regs[19]-v.regs[23])&0xFF) && v.lineIntEnabled() {
		v.lineIntPending = true
	}
}

// GetFramebuffer returns the raw RGBA pixel data.
func (v *VDP) GetFramebuffer() []byte {
	return v.framebuffer.Pix
}

// GetStride returns the stride (bytes per row) of the framebuffer.
func (v *VDP) GetStride() int {
	return v.framebuffer.Stride
}

// VRAM returns the VRAM buffer shared with the command engine.
func (v *VDP) VRAM() []uint8 {
	return v.vram
}
