package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const vdpSerializeVersion = 1

// vdpSerializeFixedSize covers everything except VRAM and the command
// engine block:
// version(1) + vramSize(4) + regs(64) + status(10) + palette(32) +
// latch(1) + latchPending(1) + address(2) + readAhead(1) + palPending(1) +
// drawArea(1) + lineIntPending(1) + currentLine(4) + lineStart(4) +
// isPAL(1) + cmdLen(4)
const vdpSerializeFixedSize = 132

// cmdStateMaxSize bounds the engine block. The map holds a fixed set of
// short keys with values of at most 9 bytes each.
const cmdStateMaxSize = 512

// SerializeSize returns the bytes needed to serialize the VDP.
func (v *VDP) SerializeSize() int {
	return vdpSerializeFixedSize + len(v.vram) + cmdStateMaxSize
}

// Serialize writes VDP state to buf. buf must be at least SerializeSize
// bytes; unused space at the end of the engine block is left zero.
func (v *VDP) Serialize(buf []byte) error {
	if len(buf) < v.SerializeSize() {
		return errors.New("VDP serialize buffer too small")
	}

	offset := 0

	buf[offset] = vdpSerializeVersion
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(v.vram)))
	offset += 4

	copy(buf[offset:], v.vram)
	offset += len(v.vram)

	copy(buf[offset:], v.regs[:])
	offset += len(v.regs)
	copy(buf[offset:], v.status[:])
	offset += len(v.status)
	for _, p := range v.palette {
		binary.LittleEndian.PutUint16(buf[offset:], p)
		offset += 2
	}

	// Port state
	buf[offset] = v.latch
	offset++
	buf[offset] = boolByte(v.latchPending)
	offset++
	binary.LittleEndian.PutUint16(buf[offset:], v.address)
	offset += 2
	buf[offset] = v.readAhead
	offset++
	buf[offset] = boolByte(v.palPending)
	offset++

	// Scanline state
	buf[offset] = boolByte(v.drawArea)
	offset++
	buf[offset] = boolByte(v.lineIntPending)
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(v.currentLine)))
	offset += 4
	binary.LittleEndian.PutUint32(buf[offset:], v.lineStart)
	offset += 4
	buf[offset] = boolByte(v.isPAL)
	offset++

	// Command engine, length prefixed
	block := v.cmd.AppendState(nil)
	if len(block) > cmdStateMaxSize {
		return fmt.Errorf("command engine state too large: %d bytes", len(block))
	}
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(block)))
	offset += 4
	copy(buf[offset:], block)

	return nil
}

// Deserialize reads VDP state from buf. The VRAM size recorded in the
// state must match this VDP.
func (v *VDP) Deserialize(buf []byte) error {
	if len(buf) < v.SerializeSize() {
		return errors.New("VDP deserialize buffer too small")
	}

	offset := 0

	version := buf[offset]
	offset++
	if version > vdpSerializeVersion {
		return errors.New("unsupported VDP state version")
	}
	size := int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	if size != len(v.vram) {
		return fmt.Errorf("VDP state has %d bytes of VRAM, expected %d", size, len(v.vram))
	}

	copy(v.vram, buf[offset:offset+size])
	offset += size

	copy(v.regs[:], buf[offset:offset+len(v.regs)])
	offset += len(v.regs)
	copy(v.status[:], buf[offset:offset+len(v.status)])
	offset += len(v.status)
	for i := range v.palette {
		v.palette[i] = binary.LittleEndian.Uint16(buf[offset:])
		offset += 2
	}

	v.latch = buf[offset]
	offset++
	v.latchPending = buf[offset] != 0
	offset++
	v.address = binary.LittleEndian.Uint16(buf[offset:])
	offset += 2
	v.readAhead = buf[offset]
	offset++
	v.palPending = buf[offset] != 0
	offset++

	v.drawArea = buf[offset] != 0
	offset++
	v.lineIntPending = buf[offset] != 0
	offset++
	v.currentLine = int(int32(binary.LittleEndian.Uint32(buf[offset:])))
	offset += 4
	v.lineStart = binary.LittleEndian.Uint32(buf[offset:])
	offset += 4
	v.isPAL = buf[offset] != 0
	offset++

	n := int(binary.LittleEndian.Uint32(buf[offset:]))
	offset += 4
	if n > cmdStateMaxSize {
		return fmt.Errorf("command engine state too large: %d bytes", n)
	}
	if _, err := v.cmd.LoadState(buf[offset:offset+n], v.now()); err != nil {
		return err
	}

	// Derived state follows from the registers
	v.updateVRAMAccess()
	v.updateScreenMode()
	return nil
}
