package emu

// Command engine status bits, as merged into status register S#2.
const (
	CmdStatusTR = 0x80 // Transfer ready
	CmdStatusBO = 0x10 // Border detected (SRCH)
	CmdStatusCE = 0x01 // Command executing
)

// Command opcodes (high nibble of command register 0x0E).
const (
	cmdABRT  = 0x0
	cmdNOOP1 = 0x1
	cmdNOOP2 = 0x2
	cmdNOOP3 = 0x3
	cmdPOINT = 0x4
	cmdPSET  = 0x5
	cmdSRCH  = 0x6
	cmdLINE  = 0x7
	cmdLMMV  = 0x8
	cmdLMMM  = 0x9
	cmdLMCM  = 0xA
	cmdLMMC  = 0xB
	cmdHMMV  = 0xC
	cmdHMMM  = 0xD
	cmdYMMM  = 0xE
	cmdHMMC  = 0xF
)

// Per accessor mode (0 = GRAPHIC4 .. 3 = GRAPHIC7).
var (
	cmdColorMask     = [4]uint8{0x0F, 0x03, 0x0F, 0xFF}
	cmdPixelsPerByte = [4]int{2, 4, 2, 1}
	cmdPixelsPerLine = [4]int{256, 512, 512, 256}
)

// CmdEngine is the V9938 command engine. It owns no memory of its own;
// it draws into the VRAM slice handed to NewCmdEngine, which belongs to
// the VDP.
//
// Coordinates are plain ints. Their 10 bit wrap and the -1 checks in
// the engines depend on signed arithmetic and must stay that way.
type CmdEngine struct {
	vram  []uint8
	banks vramBanks

	// Register file
	sx, sy int
	dx, dy int
	kNX    int // NX as written by the CPU
	nx, ny int // nx is derived from kNX at dispatch
	arg    uint8
	cl     uint8
	lo     uint8
	cm     uint8

	// Working cursors
	asx, adx, anx int

	status  uint8
	borderX uint16

	// Step directions and wrap mask, set at dispatch
	tx, ty int
	mx     int

	opsCnt     int32  // Remaining cycle budget, may go negative
	systemTime uint32 // Last virtual clock seen

	screenMode int // Accessor mode used by the running command, -1 = none
	newScrMode int // Latched at the next dispatch
	timingMode int
}

// NewCmdEngine creates a command engine drawing into vram. The bank map
// is derived from len(vram); clock is the current virtual clock.
func NewCmdEngine(vram []uint8, clock uint32) *CmdEngine {
	return &CmdEngine{
		vram:       vram,
		banks:      newVRAMBanks(len(vram)),
		systemTime: clock,
	}
}

// Reset returns the engine to its power-on state without touching VRAM.
func (c *CmdEngine) Reset(clock uint32) {
	vram := c.vram
	*c = CmdEngine{
		vram:       vram,
		banks:      newVRAMBanks(len(vram)),
		systemTime: clock,
	}
}

// --- Register file ---

// Write stores value into command register reg (0x00-0x0E, which the VDP
// exposes as R#32-R#46). Writing register 0x0E starts a command.
func (c *CmdEngine) Write(reg, value uint8, clock uint32) {
	v := int(value)
	switch reg & 0x1F {
	case 0x00:
		c.sx = (c.sx & 0xFF00) | v
	case 0x01:
		c.sx = (c.sx & 0x00FF) | (v&0x01)<<8
	case 0x02:
		c.sy = (c.sy & 0xFF00) | v
	case 0x03:
		c.sy = (c.sy & 0x00FF) | (v&0x03)<<8
	case 0x04:
		c.dx = (c.dx & 0xFF00) | v
	case 0x05:
		c.dx = (c.dx & 0x00FF) | (v&0x01)<<8
	case 0x06:
		c.dy = (c.dy & 0xFF00) | v
	case 0x07:
		c.dy = (c.dy & 0x00FF) | (v&0x03)<<8
	case 0x08:
		c.kNX = (c.kNX & 0xFF00) | v
	case 0x09:
		c.kNX = (c.kNX & 0x00FF) | (v&0x03)<<8
	case 0x0A:
		c.ny = (c.ny & 0xFF00) | v
	case 0x0B:
		c.ny = (c.ny & 0x00FF) | (v&0x03)<<8
	case 0x0C:
		c.cl = value
		c.status &^= CmdStatusTR
	case 0x0D:
		if (c.arg^value)&0x30 != 0 {
			c.banks.selectBanks(value)
		}
		c.arg = value
	case 0x0E:
		c.lo = value & 0x0F
		c.cm = value >> 4
		c.setCommand(clock)
	}
}

// Peek returns the stored value of command register reg without side
// effects. Registers outside 0x00-0x0E read as 0xFF.
func (c *CmdEngine) Peek(reg uint8, clock uint32) uint8 {
	switch reg & 0x1F {
	case 0x00:
		return uint8(c.sx)
	case 0x01:
		return uint8(c.sx >> 8)
	case 0x02:
		return uint8(c.sy)
	case 0x03:
		return uint8(c.sy >> 8)
	case 0x04:
		return uint8(c.dx)
	case 0x05:
		return uint8(c.dx >> 8)
	case 0x06:
		return uint8(c.dy)
	case 0x07:
		return uint8(c.dy >> 8)
	case 0x08:
		return uint8(c.kNX)
	case 0x09:
		return uint8(c.kNX >> 8)
	case 0x0A:
		return uint8(c.ny)
	case 0x0B:
		return uint8(c.ny >> 8)
	case 0x0C:
		return c.cl
	case 0x0D:
		return c.arg
	case 0x0E:
		return c.lo | c.cm<<4
	}
	return 0xFF
}

// setCommand decodes CM. Immediate commands complete here; the rest
// are primed and left for Execute.
func (c *CmdEngine) setCommand(clock uint32) {
	c.screenMode = c.newScrMode
	if c.screenMode < 0 {
		c.cm = 0
		c.status &^= CmdStatusCE
		return
	}

	c.sx &= 0x1FF
	c.sy &= 0x3FF
	c.dx &= 0x1FF
	c.dy &= 0x3FF
	c.nx &= 0x3FF
	c.ny &= 0x3FF

	mode := c.screenMode
	switch c.cm {
	case cmdABRT, cmdNOOP1, cmdNOOP2, cmdNOOP3:
		c.cm = 0
		c.status &^= CmdStatusCE
		return
	case cmdPOINT:
		c.cm = 0
		c.status &^= CmdStatusCE
		c.cl = c.getPixel(mode, c.sx, c.sy)
		return
	case cmdPSET:
		c.cm = 0
		c.status &^= CmdStatusCE
		c.setPixel(mode, c.dx, c.dy, c.cl&cmdColorMask[mode], c.lo)
		return
	}

	c.mx = cmdPixelsPerLine[mode]
	c.ty = 1
	if c.arg&0x08 != 0 {
		c.ty = -1
	}

	// Byte commands step a whole byte at a time
	if c.cm&0x0C == 0x0C {
		ppb := cmdPixelsPerByte[mode]
		c.tx = ppb
		if c.arg&0x04 != 0 {
			c.tx = -ppb
		}
		c.nx = c.kNX / ppb
	} else {
		c.nx = c.kNX
		c.tx = 1
		if c.arg&0x04 != 0 {
			c.tx = -1
		}
	}

	if c.cm == cmdLINE {
		c.asx = (c.nx - 1) >> 1
		c.adx = 0
	} else {
		c.asx = c.sx
		c.adx = c.dx
	}

	// SRCH keeps the "not equal" flag in ANX
	if c.cm == cmdSRCH {
		c.anx = 0
		if c.arg&0x02 != 0 {
			c.anx = 1
		}
	} else {
		c.anx = c.nx
	}

	c.status |= CmdStatusCE
	c.systemTime = clock
}

// --- Mode control ---

// SetScreenMode latches the accessor mode for the next command. mode is
// the VDP display mode number, not the accessor index 0-3 reported by
// ScreenMode: 5-8 select GRAPHIC4-7, 9-12 behave as
// GRAPHIC7 and anything else uses GRAPHIC6 addressing when
// commandEnable is set or disables commands otherwise. Disabling
// commands aborts the one in progress.
func (c *CmdEngine) SetScreenMode(mode int, commandEnable bool) {
	switch {
	case mode > 8 && mode <= 12:
		mode = 3
	case mode < 5 || mode > 12:
		if commandEnable {
			mode = 2
		} else {
			mode = -1
		}
	default:
		mode -= 5
	}

	if c.newScrMode != mode {
		c.newScrMode = mode
		if mode == -1 {
			c.cm = 0
			c.status &^= CmdStatusCE
		}
	}
}

// SetTimingMode selects the cost table row. Bit 0 is set while the
// display is enabled inside the draw area, bit 1 when sprites are off.
func (c *CmdEngine) SetTimingMode(mode uint8) {
	c.timingMode = int(mode & 3)
}

// --- Status ---

// GetStatus returns the TR, BO and CE bits.
func (c *CmdEngine) GetStatus() uint8 {
	return c.status
}

// GetBorderX returns the X coordinate found by the last SRCH.
func (c *CmdEngine) GetBorderX() uint16 {
	return c.borderX
}

// GetColor returns CL and clears TR, acknowledging an LMCM transfer.
func (c *CmdEngine) GetColor() uint8 {
	c.status &^= CmdStatusTR
	return c.cl
}

// Busy reports whether a command is executing.
func (c *CmdEngine) Busy() bool {
	return c.cm != 0
}
