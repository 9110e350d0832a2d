package emu

// Cycle cost of one unit of work, indexed by timing mode.
var (
	srchTiming = [4]int32{92, 125, 92, 92}
	lineTiming = [4]int32{120, 147, 120, 120}
	hmmvTiming = [4]int32{49, 65, 49, 62}
	lmmvTiming = [4]int32{98, 137, 98, 124}
	ymmmTiming = [4]int32{65, 125, 65, 68}
	hmmmTiming = [4]int32{92, 136, 92, 97}
	lmmmTiming = [4]int32{129, 197, 129, 132}
)

// flushBudget is the budget added per Flush iteration.
const flushBudget = 1000000

// cmdEngines maps CM to the routine that advances it. Opcodes without an
// entry are idle or immediate and never run under Execute.
var cmdEngines = [16]func(*CmdEngine){
	cmdSRCH: (*CmdEngine).srchEngine,
	cmdLINE: (*CmdEngine).lineEngine,
	cmdLMMV: (*CmdEngine).lmmvEngine,
	cmdLMMM: (*CmdEngine).lmmmEngine,
	cmdLMCM: (*CmdEngine).lmcmEngine,
	cmdLMMC: (*CmdEngine).lmmcEngine,
	cmdHMMV: (*CmdEngine).hmmvEngine,
	cmdHMMM: (*CmdEngine).hmmmEngine,
	cmdYMMM: (*CmdEngine).ymmmEngine,
	cmdHMMC: (*CmdEngine).hmmcEngine,
}

// Execute runs the active command up to virtual time clock. Elapsed time
// is added to the budget; each unit of work spends its cost. Budget left
// over when a command completes is discarded.
func (c *CmdEngine) Execute(clock uint32) {
	c.opsCnt += int32(clock - c.systemTime)
	c.systemTime = clock
	if c.opsCnt <= 0 {
		return
	}
	if run := cmdEngines[c.cm&0x0F]; run != nil {
		run(c)
		return
	}
	c.opsCnt = 0
}

// Flush runs the active command to completion, stopping early when it
// waits on a CPU transfer or makes no progress.
func (c *CmdEngine) Flush() {
	for c.cm != 0 && c.status&CmdStatusTR == 0 {
		c.opsCnt += flushBudget
		opsCnt := c.opsCnt
		c.Execute(c.systemTime + uint32(opsCnt))
		if c.opsCnt == 0 || c.opsCnt == opsCnt {
			break
		}
	}
}

// complete ends the running command.
func (c *CmdEngine) complete() {
	c.status &^= CmdStatusCE
	c.cm = 0
}

// --- Working state ---

// cmdWork is the loop state of a block command during one Execute call.
// Engines copy the registers in, advance the copy one unit at a time and
// write back only what the command reports when it stops.
type cmdWork struct {
	mode           int
	ppl            int // Wrap bit for X, pixels per line
	sx, sy, dx, dy int
	nx, ny         int
	asx, adx, anx  int
	tx, ty         int
}

func (c *CmdEngine) work() cmdWork {
	mode := c.screenMode
	ppl := 0
	if mode >= 0 && mode < 4 {
		ppl = cmdPixelsPerLine[mode]
	}
	return cmdWork{
		mode: mode,
		ppl:  ppl,
		sx:   c.sx,
		sy:   c.sy,
		dx:   c.dx,
		dy:   c.dy,
		nx:   c.nx,
		ny:   c.ny,
		asx:  c.asx,
		adx:  c.adx,
		anx:  c.anx,
		tx:   c.tx,
		ty:   c.ty,
	}
}

// run calls step until it reports the end of the command or the budget
// is spent. It returns true when the command ended.
func (c *CmdEngine) run(delta int32, step func() bool) bool {
	cnt := c.opsCnt
	for cnt > 0 {
		if step() {
			break
		}
		cnt -= delta
	}
	c.opsCnt = cnt
	return cnt > 0
}

// nextDest advances along a destination row. At the row end it moves to
// the next line and returns true once the last line is done.
func (w *cmdWork) nextDest() bool {
	w.adx += w.tx
	w.anx--
	if w.anx == 0 || w.adx&w.ppl != 0 {
		w.dy += w.ty
		w.adx = w.dx
		w.anx = w.nx
		w.ny--
		if w.ny&1023 == 0 || w.dy == -1 {
			return true
		}
	}
	return false
}

// nextSourceDest is nextDest for commands that also walk a source.
func (w *cmdWork) nextSourceDest() bool {
	w.asx += w.tx
	w.adx += w.tx
	w.anx--
	if w.anx == 0 || (w.asx|w.adx)&w.ppl != 0 {
		w.sy += w.ty
		w.dy += w.ty
		w.asx = w.sx
		w.adx = w.dx
		w.anx = w.nx
		w.ny--
		if w.ny&1023 == 0 || w.sy == -1 || w.dy == -1 {
			return true
		}
	}
	return false
}

// nextColumn advances YMMM, which always runs to the screen edge.
func (w *cmdWork) nextColumn() bool {
	w.adx += w.tx
	if w.adx&w.ppl != 0 {
		w.sy += w.ty
		w.dy += w.ty
		w.adx = w.dx
		w.ny--
		if w.ny&1023 == 0 || w.sy == -1 || w.dy == -1 {
			return true
		}
	}
	return false
}

// --- Engines ---

func (c *CmdEngine) srchEngine() {
	w := c.work()
	cl := c.cl & cmdColorMask[w.mode&3]
	done := c.run(srchTiming[c.timingMode], func() bool {
		match := 0
		if c.getPixel(w.mode, w.sx, w.sy) == cl {
			match = 1
		}
		if match^w.anx != 0 {
			c.status |= CmdStatusBO
			return true
		}
		w.sx += w.tx
		if w.sx&w.ppl != 0 {
			c.status &^= CmdStatusBO
			return true
		}
		return false
	})
	if done {
		c.complete()
		c.borderX = uint16(0xFE00 | w.sx)
		return
	}
	c.sx = w.sx
}

func (c *CmdEngine) lineEngine() {
	w := c.work()
	cl := c.cl & cmdColorMask[w.mode&3]
	lo := c.lo

	var step func() bool
	if c.arg&0x01 == 0 {
		// X is the major axis
		step = func() bool {
			c.setPixel(w.mode, w.dx, w.dy, cl, lo)
			w.dx += w.tx
			last := w.adx == w.nx
			w.adx++
			if last || w.dx&w.ppl != 0 {
				return true
			}
			w.asx -= w.ny
			if w.asx < 0 {
				w.asx += w.nx
				w.dy += w.ty
			}
			w.asx &= 1023
			return false
		}
	} else {
		step = func() bool {
			c.setPixel(w.mode, w.dx, w.dy, cl, lo)
			w.dy += w.ty
			w.asx -= w.ny
			if w.asx < 0 {
				w.asx += w.nx
				w.dx += w.tx
			}
			w.asx &= 1023
			last := w.adx == w.nx
			w.adx++
			return last || w.dx&w.ppl != 0
		}
	}

	if c.run(lineTiming[c.timingMode], step) {
		c.complete()
		c.dy = w.dy & 0x3FF
		return
	}
	c.dx = w.dx
	c.dy = w.dy
	c.asx = w.asx
	c.adx = w.adx
}

func (c *CmdEngine) lmmvEngine() {
	w := c.work()
	cl := c.cl & cmdColorMask[w.mode&3]
	lo := c.lo
	done := c.run(lmmvTiming[c.timingMode], func() bool {
		c.setPixel(w.mode, w.adx, w.dy, cl, lo)
		return w.nextDest()
	})
	if done {
		c.complete()
		c.dy = w.dy & 0x3FF
		c.ny = w.ny & 0x3FF
		return
	}
	c.dy = w.dy
	c.ny = w.ny
	c.anx = w.anx
	c.adx = w.adx
}

func (c *CmdEngine) lmmmEngine() {
	w := c.work()
	lo := c.lo
	done := c.run(lmmmTiming[c.timingMode], func() bool {
		c.setPixel(w.mode, w.adx, w.dy, c.getPixel(w.mode, w.asx, w.sy), lo)
		return w.nextSourceDest()
	})
	if done {
		c.complete()
		c.dy = w.dy & 0x3FF
		c.sy = w.sy & 0x3FF
		c.ny = w.ny & 0x3FF
		return
	}
	c.sy = w.sy
	c.dy = w.dy
	c.ny = w.ny
	c.anx = w.anx
	c.asx = w.asx
	c.adx = w.adx
}

func (c *CmdEngine) hmmvEngine() {
	w := c.work()
	cl := c.cl
	done := c.run(hmmvTiming[c.timingMode], func() bool {
		c.writeByte(w.mode, w.adx, w.dy, cl)
		return w.nextDest()
	})
	if done {
		c.complete()
		c.dy = w.dy & 0x3FF
		c.ny = w.ny & 0x3FF
		return
	}
	c.dy = w.dy
	c.ny = w.ny
	c.anx = w.anx
	c.adx = w.adx
}

// hmmmEngine keeps its cursors in the registers whether or not it
// finishes, and leaves them unmasked on completion.
func (c *CmdEngine) hmmmEngine() {
	w := c.work()
	done := c.run(hmmmTiming[c.timingMode], func() bool {
		c.writeByte(w.mode, w.adx, w.dy, c.readByte(w.mode, w.asx, w.sy))
		return w.nextSourceDest()
	})
	c.sy = w.sy
	c.dy = w.dy
	c.ny = w.ny
	c.anx = w.anx
	c.asx = w.asx
	c.adx = w.adx
	if done {
		c.complete()
	}
}

func (c *CmdEngine) ymmmEngine() {
	w := c.work()
	done := c.run(ymmmTiming[c.timingMode], func() bool {
		c.writeByte(w.mode, w.adx, w.dy, c.readByte(w.mode, w.adx, w.sy))
		return w.nextColumn()
	})
	if done {
		c.complete()
		c.dy = w.dy & 0x3FF
		c.sy = w.sy & 0x3FF
		c.ny = w.ny & 0x3FF
		return
	}
	c.sy = w.sy
	c.dy = w.dy
	c.ny = w.ny
	c.adx = w.adx
}

// --- CPU transfers ---
//
// LMCM, LMMC and HMMC move one unit per Execute call while TR is clear
// and then set TR. The CPU clears TR by reading S#7 or writing R#44.

func (c *CmdEngine) lmcmEngine() {
	if c.status&CmdStatusTR != 0 {
		return
	}
	c.cl = c.getPixel(c.screenMode, c.asx, c.sy)
	c.status |= CmdStatusTR
	if c.nextTransferX(&c.asx) {
		c.sy += c.ty
		c.ny--
		if c.ny&1023 == 0 || c.sy == -1 {
			c.complete()
		} else {
			c.asx = c.sx
			c.anx = c.nx
		}
	}
}

func (c *CmdEngine) lmmcEngine() {
	if c.status&CmdStatusTR != 0 {
		return
	}
	mode := c.screenMode
	c.setPixel(mode, c.adx, c.dy, c.cl&cmdColorMask[mode&3], c.lo)
	c.status |= CmdStatusTR
	c.nextTransferRow()
}

func (c *CmdEngine) hmmcEngine() {
	if c.status&CmdStatusTR != 0 {
		return
	}
	c.writeByte(c.screenMode, c.adx, c.dy, c.cl)
	c.opsCnt -= hmmvTiming[c.timingMode]
	c.status |= CmdStatusTR
	c.nextTransferRow()
}

// nextTransferX counts down ANX and, while the row continues, steps *x.
// It returns true at the end of the row. *x is not stepped when ANX runs out.
func (c *CmdEngine) nextTransferX(x *int) bool {
	c.anx--
	if c.anx == 0 {
		return true
	}
	*x += c.tx
	return *x&c.mx != 0
}

// nextTransferRow advances the destination of a CPU to VRAM transfer.
func (c *CmdEngine) nextTransferRow() {
	if !c.nextTransferX(&c.adx) {
		return
	}
	c.dy += c.ty
	c.ny--
	if c.ny&1023 == 0 || c.dy == -1 {
		c.complete()
		return
	}
	c.adx = c.dx
	c.anx = c.nx
}
