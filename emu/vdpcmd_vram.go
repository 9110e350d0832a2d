package emu

// vramBanks maps the command engine's logical VRAM addresses onto the
// shared VRAM buffer. Two banks exist: bank 0 covers the first 128KB and
// bank 1 the 64KB expansion. ARG bit 4 selects the read bank and bit 5
// the write bank. With 128KB or less both banks alias the same memory.
type vramBanks struct {
	offset [2]int
	mask   [2]int

	readOffset  int
	readMask    int
	writeOffset int
	writeMask   int
}

// newVRAMBanks builds the bank map for a VRAM of size bytes.
// Both read and write start on bank 0.
func newVRAMBanks(size int) vramBanks {
	var b vramBanks
	if size > 0x20000 {
		b.offset = [2]int{0, 0x20000}
		b.mask = [2]int{0x1FFFF, 0xFFFF}
	} else {
		b.offset = [2]int{0, 0}
		b.mask = [2]int{size - 1, size - 1}
	}
	b.readOffset, b.readMask = b.offset[0], b.mask[0]
	b.writeOffset, b.writeMask = b.offset[0], b.mask[0]
	return b
}

// selectBanks recomputes the active read and write banks from ARG.
func (b *vramBanks) selectBanks(arg uint8) {
	r := int(arg>>4) & 1
	w := int(arg>>5) & 1
	b.readOffset, b.readMask = b.offset[r], b.mask[r]
	b.writeOffset, b.writeMask = b.offset[w], b.mask[w]
}

func (b *vramBanks) readIndex(addr int) int {
	return b.readOffset + addr&b.readMask
}

func (b *vramBanks) writeIndex(addr int) int {
	return b.writeOffset + addr&b.writeMask
}

// --- Address generation ---

// pixelAddr returns the unmasked byte address holding pixel (x, y) for
// the given accessor mode. Modes 2 and 3 interleave two 64KB halves.
// Unknown modes address byte 0.
func pixelAddr(mode, x, y int) int {
	switch mode {
	case 0:
		return (y&1023)<<7 + (x&255)>>1
	case 1:
		return (y&1023)<<7 + (x&511)>>2
	case 2:
		return (y&511)<<7 + (x&511)>>2 + (x&2)<<15
	case 3:
		return (y&511)<<7 + (x&255)>>1 + (x&1)<<16
	}
	return 0
}

// readByte returns the VRAM byte holding (x, y) through the read bank.
func (c *CmdEngine) readByte(mode, x, y int) uint8 {
	return c.vram[c.banks.readIndex(pixelAddr(mode, x, y))]
}

// writeByte stores a whole byte at (x, y) through the write bank.
func (c *CmdEngine) writeByte(mode, x, y int, val uint8) {
	c.vram[c.banks.writeIndex(pixelAddr(mode, x, y))] = val
}

// --- Pixel accessor ---

// getPixel returns the color index of pixel (x, y).
func (c *CmdEngine) getPixel(mode, x, y int) uint8 {
	switch mode {
	case 0, 2:
		return (c.readByte(mode, x, y) >> ((^uint(x) & 1) << 2)) & 15
	case 1:
		return (c.readByte(mode, x, y) >> ((^uint(x) & 3) << 1)) & 3
	case 3:
		return c.readByte(mode, x, y)
	}
	return 0
}

// setPixel composites color cl into pixel (x, y) using logical operation op.
func (c *CmdEngine) setPixel(mode, x, y int, cl, op uint8) {
	var sh uint
	var m uint8
	switch mode {
	case 0, 2:
		sh = (^uint(x) & 1) << 2
		m = ^uint8(15 << sh)
	case 1:
		sh = (^uint(x) & 3) << 1
		m = ^uint8(3 << sh)
	case 3:
		m = 0
	default:
		return
	}
	p := &c.vram[c.banks.writeIndex(pixelAddr(mode, x, y))]
	setPixelLow(p, cl<<sh, m, op)
}

// setPixelLow merges cl into *p. m keeps the bits outside the pixel.
// Operations 8-12 repeat 0-4 but leave the byte alone when cl is zero.
// Any other operation is ignored.
func setPixelLow(p *uint8, cl, m, op uint8) {
	if op >= 8 {
		if cl == 0 {
			return
		}
		op -= 8
	}
	switch op {
	case 0: // IMP
		*p = (*p & m) | cl
	case 1: // AND
		*p &= cl | m
	case 2: // OR
		*p |= cl
	case 3: // XOR
		*p ^= cl
	case 4: // NOT
		*p = (*p & m) | ^(cl | m)
	}
}

// ScreenMode returns the accessor mode latched for the next command
// (0 = GRAPHIC4 .. 3 = GRAPHIC7), or -1 when commands are disabled.
func (c *CmdEngine) ScreenMode() int {
	return c.newScrMode
}

// Pixel returns the color index at (x, y) in the latched accessor mode,
// read through the current read bank. It is 0 while commands are
// disabled.
func (c *CmdEngine) Pixel(x, y int) uint8 {
	if c.newScrMode < 0 {
		return 0
	}
	return c.getPixel(c.newScrMode, x, y)
}

// PixelsPerLine returns the line width of accessor mode m, or 0 for an
// invalid mode.
func PixelsPerLine(m int) int {
	if m < 0 || m > 3 {
		return 0
	}
	return cmdPixelsPerLine[m]
}
