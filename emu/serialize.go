package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/user-none/go-chip-sn76489"
	"github.com/user-none/go-chip-z80"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eMSXSState\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// Fixed serialization sizes for inline components
const (
	memSerializeSize      = ramSize
	emulatorSerializeSize = 16 // cycles(8) + lineEnd(8)
)

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// stateSize returns the save state size for a machine with vramSize
// bytes of VRAM.
func stateSize(vramSize int) int {
	return stateHeaderSize +
		z80.SerializeSize +
		memSerializeSize +
		vdpSerializeFixedSize + vramSize + cmdStateMaxSize +
		sn76489.SerializeSize +
		IOSerializeSize +
		emulatorSerializeSize
}

// SerializeSize returns the save state size for the default 128KB VRAM
// configuration.
func SerializeSize() int {
	return stateSize(DefaultVRAMSize)
}

// SerializeSize returns the total size in bytes needed for a save state
// of this machine.
func (e *Emulator) SerializeSize() int {
	return stateSize(len(e.vdp.VRAM()))
}

// stateSection is one component's slice of the save state body.
type stateSection struct {
	name string
	size int
	save func([]byte) error
	load func([]byte) error
}

// sections lists the body layout. The clock section precedes the VDP
// because the VDP restores its command engine against the current clock.
func (e *Emulator) sections() []stateSection {
	return []stateSection{
		{"z80", z80.SerializeSize, e.cpu.Serialize, e.cpu.Deserialize},
		{"ram", memSerializeSize,
			func(b []byte) error { copy(b, e.mem.ram[:]); return nil },
			func(b []byte) error { copy(e.mem.ram[:], b); return nil }},
		{"clock", emulatorSerializeSize, e.serializeClock, e.deserializeClock},
		{"vdp", e.vdp.SerializeSize(), e.vdp.Serialize, e.vdp.Deserialize},
		{"psg", sn76489.SerializeSize, e.psg.Serialize, e.psg.Deserialize},
		{"io", IOSerializeSize, e.io.Serialize, e.io.Deserialize},
	}
}

// Serialize creates a save state and returns it as a byte slice. A
// command in progress is run to completion first.
func (e *Emulator) Serialize() ([]byte, error) {
	e.vdp.CmdEngine().Flush()

	data := make([]byte, e.SerializeSize())
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.mem.ROMCRC())

	offset := stateHeaderSize
	for _, s := range e.sections() {
		if err := s.save(data[offset : offset+s.size]); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		offset += s.size
	}

	binary.LittleEndian.PutUint32(data[18:22], crc32.ChecksumIEEE(data[stateHeaderSize:]))
	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
// Region is not restored; the current region setting is kept.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize
	for _, s := range e.sections() {
		if err := s.load(data[offset : offset+s.size]); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		offset += s.size
	}
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	expectedSize := e.SerializeSize()
	if len(data) < expectedSize {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	romCRC := binary.LittleEndian.Uint32(data[14:18])
	if romCRC != e.mem.ROMCRC() {
		return errors.New("save state is for a different ROM")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:expectedSize])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	return nil
}

func (e *Emulator) serializeClock(b []byte) error {
	binary.LittleEndian.PutUint64(b[0:8], e.cycles)
	binary.LittleEndian.PutUint64(b[8:16], e.lineEnd)
	return nil
}

func (e *Emulator) deserializeClock(b []byte) error {
	e.cycles = binary.LittleEndian.Uint64(b[0:8])
	e.lineEnd = binary.LittleEndian.Uint64(b[8:16])
	return nil
}
