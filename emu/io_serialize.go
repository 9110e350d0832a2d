package emu

import "errors"

const (
	ioSerializeVersion = 1
	// IOSerializeSize is the total bytes needed for IO serialization.
	// version(1) + primarySlot(1) + ppiC(1) + psgLatch(1) + psgRegs(16) +
	// psgEnabled(1) + joy(2) + keys(11)
	IOSerializeSize = 34
)

// Serialize writes IO state to buf. buf must be at least IOSerializeSize bytes.
// The primary slot register lives in Memory but is saved here with the
// rest of the PPI.
func (io *IO) Serialize(buf []byte) error {
	if len(buf) < IOSerializeSize {
		return errors.New("IO serialize buffer too small")
	}

	offset := 0

	buf[offset] = ioSerializeVersion
	offset++

	// PPI
	buf[offset] = io.mem.PrimarySlot()
	offset++
	buf[offset] = io.ppiC
	offset++

	// PSG register window
	buf[offset] = io.psgLatch
	offset++
	copy(buf[offset:], io.psgRegs[:])
	offset += len(io.psgRegs)

	buf[offset] = boolByte(io.psgEnabled)
	offset++

	// Input lines
	copy(buf[offset:], io.Input.Joy[:])
	offset += len(io.Input.Joy)
	copy(buf[offset:], io.Input.Keys[:])

	return nil
}

// Deserialize reads IO state from buf. buf must be at least IOSerializeSize bytes.
func (io *IO) Deserialize(buf []byte) error {
	if len(buf) < IOSerializeSize {
		return errors.New("IO deserialize buffer too small")
	}

	offset := 0

	version := buf[offset]
	offset++
	if version > ioSerializeVersion {
		return errors.New("unsupported IO state version")
	}

	io.mem.SetPrimarySlot(buf[offset])
	offset++
	io.ppiC = buf[offset]
	offset++

	io.psgLatch = buf[offset] & 0x0F
	offset++
	copy(io.psgRegs[:], buf[offset:offset+len(io.psgRegs)])
	offset += len(io.psgRegs)

	io.psgEnabled = buf[offset] != 0
	offset++

	copy(io.Input.Joy[:], buf[offset:offset+len(io.Input.Joy)])
	offset += len(io.Input.Joy)
	copy(io.Input.Keys[:], buf[offset:offset+len(io.Input.Keys)])

	return nil
}
