package emu

import "testing"

// createPatternROM creates a ROM of size bytes where each byte holds its
// 16KB page number in the high nibble.
func createPatternROM(size int) []byte {
	rom := make([]byte, size)
	for i := range rom {
		rom[i] = byte((i/pageSize)<<4 | 0x0A)
	}
	return rom
}

// selectAll selects slot for every page.
func selectAll(slot uint8) uint8 {
	return slot | slot<<2 | slot<<4 | slot<<6
}

func TestMemory_RAMReadWrite(t *testing.T) {
	mem := NewMemory(nil, nil)
	mem.SetPrimarySlot(selectAll(slotRAM))

	testCases := []struct {
		addr uint16
		val  uint8
	}{
		{0x0000, 0x42},
		{0x3FFF, 0xFF},
		{0x8000, 0xAB},
		{0xC000, 0xCD},
		{0xFFFF, 0x12},
	}

	for _, tc := range testCases {
		mem.Set(tc.addr, tc.val)
		if got := mem.Get(tc.addr); got != tc.val {
			t.Errorf("RAM[0x%04X]: expected 0x%02X, got 0x%02X", tc.addr, tc.val, got)
		}
	}
}

func TestMemory_PerPageSlotSelection(t *testing.T) {
	bios := make([]byte, 0x8000)
	for i := range bios {
		bios[i] = 0xB0
	}
	mem := NewMemory(bios, createPatternROM(0x8000))
	mem.ram[0xC000] = 0x33

	// page 0 BIOS, page 1 cartridge, page 2 empty slot 2, page 3 RAM
	mem.SetPrimarySlot(0<<0 | 1<<2 | 2<<4 | 3<<6)

	tests := []struct {
		addr uint16
		want uint8
	}{
		{0x0000, 0xB0},
		{0x4000, 0x0A},
		{0x8000, 0xFF},
		{0xC000, 0x33},
	}
	for _, tt := range tests {
		if got := mem.Get(tt.addr); got != tt.want {
			t.Errorf("Get(0x%04X): expected 0x%02X, got 0x%02X", tt.addr, tt.want, got)
		}
	}
}

func TestMemory_WritesOutsideRAMIgnored(t *testing.T) {
	mem := NewMemory(nil, createPatternROM(0x4000))
	mem.SetPrimarySlot(selectAll(slotCart))
	mem.Set(0x4000, 0x00)
	if got := mem.Get(0x4000); got != 0x0A {
		t.Errorf("expected ROM unchanged, got 0x%02X", got)
	}
	mem.SetPrimarySlot(selectAll(slotRAM))
	if got := mem.Get(0x4000); got != 0x00 {
		t.Errorf("expected RAM untouched by ROM write, got 0x%02X", got)
	}
}

func TestMemory_CartridgePlacement(t *testing.T) {
	tests := []struct {
		name string
		size int
		want [4]uint8 // first byte seen in each page, $FF = empty
	}{
		{"8KB", 0x2000, [4]uint8{0xFF, 0x0A, 0xFF, 0xFF}},
		{"16KB", 0x4000, [4]uint8{0xFF, 0x0A, 0xFF, 0xFF}},
		{"32KB", 0x8000, [4]uint8{0xFF, 0x0A, 0x1A, 0xFF}},
		{"48KB", 0xC000, [4]uint8{0x0A, 0x1A, 0x2A, 0xFF}},
		{"64KB", 0x10000, [4]uint8{0x0A, 0x1A, 0x2A, 0x3A}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemory(nil, createPatternROM(tt.size))
			mem.SetPrimarySlot(selectAll(slotCart))
			for page := 0; page < 4; page++ {
				if got := mem.Get(uint16(page * pageSize)); got != tt.want[page] {
					t.Errorf("page %d: expected 0x%02X, got 0x%02X", page, tt.want[page], got)
				}
			}
		})
	}
}

func TestMemory_ShortROMReadsFFPastEnd(t *testing.T) {
	mem := NewMemory(nil, createPatternROM(0x2000))
	mem.SetPrimarySlot(selectAll(slotCart))
	if got := mem.Get(0x5FFF); got != 0x0A {
		t.Errorf("expected last ROM byte, got 0x%02X", got)
	}
	if got := mem.Get(0x6000); got != 0xFF {
		t.Errorf("expected 0xFF past ROM end, got 0x%02X", got)
	}
}

func TestMemory_OversizedImagesTruncated(t *testing.T) {
	mem := NewMemory(make([]byte, 0x20000), make([]byte, 0x20000))
	if len(mem.bios) != maxBIOSSize {
		t.Errorf("expected BIOS truncated to 0x%X, got 0x%X", maxBIOSSize, len(mem.bios))
	}
	if len(mem.rom) != maxROMSize {
		t.Errorf("expected ROM truncated to 0x%X, got 0x%X", maxROMSize, len(mem.rom))
	}
}

func TestMemory_BootStubWithoutBIOS(t *testing.T) {
	mem := NewMemory(nil, nil)
	if mem.HasBIOS() {
		t.Error("expected HasBIOS false")
	}
	// Reset selects slot 0 everywhere
	if got := mem.Get(0x0000); got != 0xF3 {
		t.Errorf("expected DI at reset vector, got 0x%02X", got)
	}
	if got := mem.Get(0x0038); got != 0xF5 {
		t.Errorf("expected interrupt handler at 0x0038, got 0x%02X", got)
	}
	if got := mem.Get(0x0040); got != 0xFF {
		t.Errorf("expected 0xFF past stub, got 0x%02X", got)
	}

	withBIOS := NewMemory([]byte{0xC3}, nil)
	if !withBIOS.HasBIOS() {
		t.Error("expected HasBIOS true")
	}
}
