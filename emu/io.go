package emu

import "github.com/user-none/go-chip-sn76489"

// I/O port numbers.
const (
	portSN76489     = 0x3F
	portVDPData     = 0x98
	portVDPControl  = 0x99
	portVDPPalette  = 0x9A
	portVDPIndirect = 0x9B
	portPSGAddress  = 0xA0
	portPSGWrite    = 0xA1
	portPSGRead     = 0xA2
	portPPIA        = 0xA8
	portPPIB        = 0xA9
	portPPIC        = 0xAA
	portPPIControl  = 0xAB
)

// keyboardRows is the number of rows in the MSX keyboard matrix.
const keyboardRows = 11

// Keyboard matrix positions used by the joypad mapping.
const (
	keyRowFunc   = 6 // bit 5: F1
	keyRowReturn = 7 // bit 7: RETURN
	keyRowCursor = 8 // bit 0: SPACE, bits 4-7: LEFT UP DOWN RIGHT
)

// Joystick lines as read through PSG register 14 (active low).
const (
	joyUp    = 0x01
	joyDown  = 0x02
	joyLeft  = 0x04
	joyRight = 0x08
	joyTrigA = 0x10
	joyTrigB = 0x20
)

// Input holds the joystick ports and keyboard matrix. All lines are
// active low.
type Input struct {
	Joy  [2]uint8
	Keys [keyboardRows]uint8
}

func newInput() *Input {
	in := &Input{Joy: [2]uint8{0x3F, 0x3F}}
	for i := range in.Keys {
		in.Keys[i] = 0xFF
	}
	return in
}

// IO decodes the MSX2 I/O port map: the VDP at $98-$9B, the PSG
// register window at $A0-$A2, the PPI at $A8-$AB and an optional
// SN76489 sound cartridge at $3F. Unmapped reads return $FF.
//
// Only PSG registers 14 and 15 (the joystick ports) have an effect;
// the other registers are stored and read back.
type IO struct {
	vdp   *VDP
	mem   *Memory
	psg   *sn76489.SN76489
	Input *Input

	psgEnabled bool // SN76489 cartridge inserted
	psgLatch   uint8
	psgRegs    [16]uint8
	ppiC       uint8 // Low nibble selects the keyboard row
}

// NewIO creates the port map. psg is the SN76489 cartridge chip; it only
// receives writes while enabled.
func NewIO(vdp *VDP, mem *Memory, psg *sn76489.SN76489) *IO {
	io := &IO{
		vdp:   vdp,
		mem:   mem,
		psg:   psg,
		Input: newInput(),
	}
	io.psgRegs[15] = 0x0F
	return io
}

// SetPSGEnabled inserts or removes the SN76489 cartridge.
func (io *IO) SetPSGEnabled(enabled bool) {
	io.psgEnabled = enabled
}

// PSGEnabled reports whether the SN76489 cartridge is inserted.
func (io *IO) PSGEnabled() bool {
	return io.psgEnabled
}

// In reads an I/O port.
func (io *IO) In(port uint8) uint8 {
	switch port {
	case portVDPData:
		return io.vdp.ReadData()
	case portVDPControl:
		return io.vdp.ReadStatus()
	case portPSGRead:
		return io.readPSG()
	case portPPIA:
		return io.mem.PrimarySlot()
	case portPPIB:
		return io.keyboardRow()
	case portPPIC:
		return io.ppiC
	}
	return 0xFF
}

// Out writes an I/O port.
func (io *IO) Out(port uint8, val uint8) {
	switch port {
	case portSN76489:
		if io.psgEnabled && io.psg != nil {
			io.psg.Write(val)
		}
	case portVDPData:
		io.vdp.WriteData(val)
	case portVDPControl:
		io.vdp.WriteControl(val)
	case portVDPPalette:
		io.vdp.WritePalette(val)
	case portVDPIndirect:
		io.vdp.WriteIndirect(val)
	case portPSGAddress:
		io.psgLatch = val & 0x0F
	case portPSGWrite:
		io.psgRegs[io.psgLatch] = val
	case portPPIA:
		io.mem.SetPrimarySlot(val)
	case portPPIC:
		io.ppiC = val
	case portPPIControl:
		// Bit set/reset of port C; mode words are ignored
		if val&0x80 == 0 {
			bit := uint8(1) << ((val >> 1) & 7)
			if val&1 != 0 {
				io.ppiC |= bit
			} else {
				io.ppiC &^= bit
			}
		}
	}
}

// readPSG returns the selected PSG register. Register 14 samples the
// joystick port chosen by bit 6 of register 15; bits 6-7 (keyboard
// layout and cassette input) read high.
func (io *IO) readPSG() uint8 {
	if io.psgLatch != 14 {
		return io.psgRegs[io.psgLatch]
	}
	port := (io.psgRegs[15] >> 6) & 1
	return 0xC0 | io.Input.Joy[port]&0x3F
}

func (io *IO) keyboardRow() uint8 {
	row := io.ppiC & 0x0F
	if int(row) >= keyboardRows {
		return 0xFF
	}
	return io.Input.Keys[row]
}

// SetJoystick updates one joystick port.
func (i *Input) SetJoystick(port int, up, down, left, right, trigA, trigB bool) {
	if port < 0 || port > 1 {
		return
	}
	v := uint8(0x3F)
	if up {
		v &^= joyUp
	}
	if down {
		v &^= joyDown
	}
	if left {
		v &^= joyLeft
	}
	if right {
		v &^= joyRight
	}
	if trigA {
		v &^= joyTrigA
	}
	if trigB {
		v &^= joyTrigB
	}
	i.Joy[port] = v
}

// SetKey presses or releases the key at row, bit in the matrix.
func (i *Input) SetKey(row int, bit uint, pressed bool) {
	if row < 0 || row >= keyboardRows {
		return
	}
	if pressed {
		i.Keys[row] &^= 1 << bit
	} else {
		i.Keys[row] |= 1 << bit
	}
}

// SetCursorKeys mirrors a joypad onto the cursor keys, SPACE, RETURN
// and F1 so BIOS driven games respond to it.
func (i *Input) SetCursorKeys(up, down, left, right, space, ret, f1 bool) {
	i.SetKey(keyRowCursor, 0, space)
	i.SetKey(keyRowCursor, 4, left)
	i.SetKey(keyRowCursor, 5, up)
	i.SetKey(keyRowCursor, 6, down)
	i.SetKey(keyRowCursor, 7, right)
	i.SetKey(keyRowReturn, 7, ret)
	i.SetKey(keyRowFunc, 5, f1)
}
