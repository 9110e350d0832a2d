package emu

import (
	"encoding/binary"
	"fmt"
)

// CartridgeHeader is the 16 byte header at the start of an MSX ROM
// cartridge. Address fields are zero when unused.
type CartridgeHeader struct {
	Init      uint16 // Called by the BIOS at boot
	Statement uint16 // BASIC CALL extension handler
	Device    uint16 // BASIC device extension handler
	Text      uint16 // Tokenized BASIC program
}

// ParseCartridgeHeader reads the "AB" header from the start of a ROM
// image. Images larger than 32KB may carry the header at $4000 instead.
func ParseCartridgeHeader(rom []byte) (CartridgeHeader, error) {
	for _, off := range []int{0, pageSize} {
		if len(rom) < off+0x10 {
			break
		}
		if rom[off] != 'A' || rom[off+1] != 'B' {
			continue
		}
		return CartridgeHeader{
			Init:      binary.LittleEndian.Uint16(rom[off+2:]),
			Statement: binary.LittleEndian.Uint16(rom[off+4:]),
			Device:    binary.LittleEndian.Uint16(rom[off+6:]),
			Text:      binary.LittleEndian.Uint16(rom[off+8:]),
		}, nil
	}
	if len(rom) < 0x10 {
		return CartridgeHeader{}, fmt.Errorf("ROM too short to contain cartridge header (%d bytes)", len(rom))
	}
	return CartridgeHeader{}, fmt.Errorf("missing cartridge ID: got %q", rom[0:2])
}

// ValidateCartridge checks that the ROM has a cartridge header with an
// entry point and that its size fits a plain (unmapped) cartridge slot.
func ValidateCartridge(rom []byte) error {
	if len(rom) > maxROMSize {
		return fmt.Errorf("ROM size %d exceeds %d bytes; mapper cartridges are not supported", len(rom), maxROMSize)
	}
	hdr, err := ParseCartridgeHeader(rom)
	if err != nil {
		return err
	}
	if hdr.Init == 0 && hdr.Text == 0 {
		return fmt.Errorf("cartridge has neither an INIT routine nor a BASIC program")
	}
	return nil
}
