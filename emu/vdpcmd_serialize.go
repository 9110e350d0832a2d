package emu

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// The command engine state is a MessagePack map of named integers so a
// block written by an older build still loads: unknown keys are skipped
// and missing ones read as zero.

// cmdStateKeys lists the persisted fields in write order.
var cmdStateKeys = []string{
	"SX", "SY", "DX", "DY", "NX", "NY",
	"ASX", "ADX", "ANX",
	"ARG", "CL", "LO", "CM",
	"STATUS", "BORDERX",
	"TX", "TY", "MX",
	"VdpOpsCnt", "systemTime",
	"screenMode", "newScrMode", "timingMode",
	"kNX",
}

// field returns the persisted value named key.
func (c *CmdEngine) field(key string) int64 {
	switch key {
	case "SX":
		return int64(c.sx)
	case "SY":
		return int64(c.sy)
	case "DX":
		return int64(c.dx)
	case "DY":
		return int64(c.dy)
	case "NX":
		return int64(c.nx)
	case "NY":
		return int64(c.ny)
	case "ASX":
		return int64(c.asx)
	case "ADX":
		return int64(c.adx)
	case "ANX":
		return int64(c.anx)
	case "ARG":
		return int64(c.arg)
	case "CL":
		return int64(c.cl)
	case "LO":
		return int64(c.lo)
	case "CM":
		return int64(c.cm)
	case "STATUS":
		return int64(c.status)
	case "BORDERX":
		return int64(c.borderX)
	case "TX":
		return int64(c.tx)
	case "TY":
		return int64(c.ty)
	case "MX":
		return int64(c.mx)
	case "VdpOpsCnt":
		return int64(c.opsCnt)
	case "systemTime":
		return int64(c.systemTime)
	case "screenMode":
		return int64(c.screenMode)
	case "newScrMode":
		return int64(c.newScrMode)
	case "timingMode":
		return int64(c.timingMode)
	case "kNX":
		return int64(c.kNX)
	}
	return 0
}

func (c *CmdEngine) setField(key string, v int64) {
	switch key {
	case "SX":
		c.sx = int(v)
	case "SY":
		c.sy = int(v)
	case "DX":
		c.dx = int(v)
	case "DY":
		c.dy = int(v)
	case "NX":
		c.nx = int(v)
	case "NY":
		c.ny = int(v)
	case "ASX":
		c.asx = int(v)
	case "ADX":
		c.adx = int(v)
	case "ANX":
		c.anx = int(v)
	case "ARG":
		c.arg = uint8(v)
	case "CL":
		c.cl = uint8(v)
	case "LO":
		c.lo = uint8(v)
	case "CM":
		c.cm = uint8(v) & 0x0F
	case "STATUS":
		c.status = uint8(v)
	case "BORDERX":
		c.borderX = uint16(v)
	case "TX":
		c.tx = int(v)
	case "TY":
		c.ty = int(v)
	case "MX":
		c.mx = int(v)
	case "VdpOpsCnt":
		c.opsCnt = int32(v)
	case "systemTime":
		c.systemTime = uint32(v)
	case "screenMode":
		c.screenMode = int(v)
	case "newScrMode":
		c.newScrMode = int(v)
	case "timingMode":
		c.timingMode = int(v) & 3
	case "kNX":
		c.kNX = int(v)
	}
}

// AppendState appends the engine state to b as a MessagePack map.
// Bank selection is not stored; it follows from ARG.
func (c *CmdEngine) AppendState(b []byte) []byte {
	b = msgp.AppendMapHeader(b, uint32(len(cmdStateKeys)))
	for _, key := range cmdStateKeys {
		b = msgp.AppendString(b, key)
		b = msgp.AppendInt64(b, c.field(key))
	}
	return b
}

// LoadState restores the engine from a block written by AppendState and
// returns the bytes that follow it. Fields absent from the block read as
// zero, except systemTime which defaults to clock.
func (c *CmdEngine) LoadState(b []byte, clock uint32) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, fmt.Errorf("command engine state: %w", err)
	}

	vram := c.vram
	*c = CmdEngine{
		vram:       vram,
		banks:      newVRAMBanks(len(vram)),
		systemTime: clock,
	}

	for i := uint32(0); i < n; i++ {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return b, fmt.Errorf("command engine state key: %w", err)
		}
		v, rest, err := msgp.ReadInt64Bytes(b)
		if err != nil {
			// Skip values of a type this build does not understand
			if b, err = msgp.Skip(b); err != nil {
				return b, fmt.Errorf("command engine state %s: %w", key, err)
			}
			continue
		}
		b = rest
		c.setField(key, v)
	}

	c.banks.selectBanks(c.arg)
	return b, nil
}
