package emu

import "hash/crc32"

const (
	ramSize     = 0x10000 // 64KB RAM in slot 3
	pageSize    = 0x4000
	maxBIOSSize = 0xC000  // BIOS + sub-ROM, pages 0-2 of slot 0
	maxROMSize  = 0x10000 // Plain cartridges only
)

// Primary slot numbers.
const (
	slotBIOS = 0
	slotCart = 1
	slotRAM  = 3
)

// Memory implements the MSX2 primary slot map.
//
// The primary slot register (PPI port A, I/O $A8) holds two bits per
// 16KB page:
//
//	bits 0-1  $0000-$3FFF
//	bits 2-3  $4000-$7FFF
//	bits 4-5  $8000-$BFFF
//	bits 6-7  $C000-$FFFF
//
// Slot 0 holds the BIOS, slot 1 the cartridge, slot 2 is empty and
// slot 3 is RAM. Empty space reads $FF and ignores writes.
type Memory struct {
	bios      []uint8
	rom       []uint8
	cartPages [4][]uint8 // ROM backing each page of slot 1, nil = empty
	ram       [ramSize]uint8
	primary   uint8
	romCRC    uint32
	stub      bool // bios holds bootStub
}

// bootStub stands in for a missing BIOS. It maps the cartridge into
// pages 1 and 2 and RAM into page 3, then jumps through the cartridge
// INIT vector at $4002. The handler at $0038 acknowledges the VDP
// interrupt and returns.
func bootStub() []uint8 {
	b := make([]uint8, 0x40)
	copy(b, []uint8{
		0xF3,             // DI
		0x31, 0x80, 0xF3, // LD SP,$F380
		0x3E, 0xD4,       // LD A,$D4
		0xD3, 0xA8,       // OUT ($A8),A
		0x2A, 0x02, 0x40, // LD HL,($4002)
		0xE9,             // JP (HL)
	})
	copy(b[0x38:], []uint8{
		0xF5,       // PUSH AF
		0xDB, 0x99, // IN A,($99)
		0xF1,       // POP AF
		0xFB,       // EI
		0xC9,       // RET
	})
	return b
}

// NewMemory creates the slot map with the given BIOS and cartridge
// images. Either may be nil; without a BIOS the boot stub is mapped
// into slot 0.
func NewMemory(bios, rom []byte) *Memory {
	stub := len(bios) == 0
	if stub {
		bios = bootStub()
	}
	if len(bios) > maxBIOSSize {
		bios = bios[:maxBIOSSize]
	}
	if len(rom) > maxROMSize {
		rom = rom[:maxROMSize]
	}

	m := &Memory{
		bios:   make([]uint8, len(bios)),
		rom:    make([]uint8, len(rom)),
		romCRC: crc32.ChecksumIEEE(rom),
		stub:   stub,
	}
	copy(m.bios, bios)
	copy(m.rom, rom)
	m.mapCartridge()
	return m
}

// mapCartridge places plain ROM images by size: up to 16KB at $4000,
// up to 32KB at $4000-$BFFF, up to 48KB from $0000 and 64KB linear.
func (m *Memory) mapCartridge() {
	m.cartPages = [4][]uint8{}
	n := len(m.rom)
	if n == 0 {
		return
	}

	first := 1
	if n > 2*pageSize {
		first = 0
	}
	for i := 0; i*pageSize < n; i++ {
		page := first + i
		if page > 3 {
			break
		}
		end := min((i+1)*pageSize, n)
		m.cartPages[page] = m.rom[i*pageSize : end]
	}
}

// slotFor returns the primary slot selected for addr.
func (m *Memory) slotFor(addr uint16) uint8 {
	page := addr >> 14
	return (m.primary >> (page * 2)) & 3
}

// Get reads a byte through the current slot selection.
func (m *Memory) Get(addr uint16) uint8 {
	switch m.slotFor(addr) {
	case slotBIOS:
		if int(addr) < len(m.bios) {
			return m.bios[addr]
		}
	case slotCart:
		p := m.cartPages[addr>>14]
		if off := int(addr & (pageSize - 1)); off < len(p) {
			return p[off]
		}
	case slotRAM:
		return m.ram[addr]
	}
	return 0xFF
}

// Set writes a byte through the current slot selection. Only RAM is
// writable.
func (m *Memory) Set(addr uint16, val uint8) {
	if m.slotFor(addr) == slotRAM {
		m.ram[addr] = val
	}
}

// PrimarySlot returns the primary slot register.
func (m *Memory) PrimarySlot() uint8 {
	return m.primary
}

// SetPrimarySlot writes the primary slot register.
func (m *Memory) SetPrimarySlot(val uint8) {
	m.primary = val
}

// HasBIOS reports whether a real BIOS image is loaded.
func (m *Memory) HasBIOS() bool {
	return !m.stub
}

// ROMCRC returns the CRC32 of the cartridge image.
func (m *Memory) ROMCRC() uint32 {
	return m.romCRC
}
