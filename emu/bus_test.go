package emu

import (
	"testing"

	"github.com/user-none/go-chip-z80"
)

// makeTestBus returns a bus with RAM selected in every page and the
// given program at $0000.
func makeTestBus(program ...uint8) *MSXBus {
	io := newTestIO()
	io.mem.SetPrimarySlot(selectAll(slotRAM))
	copy(io.mem.ram[:], program)
	return NewMSXBus(io.mem, io)
}

func TestMSXBus_StepReturnsCycles(t *testing.T) {
	cpu := z80.New(makeTestBus())

	// RAM is zeroed: NOP, 4 T-states
	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("NOP should return 4 cycles, got %d", cycles)
	}
	if cpu.Registers().PC != 1 {
		t.Errorf("PC after NOP should be 1, got 0x%04X", cpu.Registers().PC)
	}
}

func TestMSXBus_MemoryAccess(t *testing.T) {
	bus := makeTestBus(
		0x3E, 0x42,       // LD A,$42
		0x32, 0x00, 0xC0, // LD ($C000),A
	)
	cpu := z80.New(bus)
	cpu.Step()
	cpu.Step()

	if got := bus.mem.ram[0xC000]; got != 0x42 {
		t.Errorf("expected RAM[0xC000]=0x42, got 0x%02X", got)
	}
	if a := uint8(cpu.Registers().AF >> 8); a != 0x42 {
		t.Errorf("A register should be 0x42, got 0x%02X", a)
	}
}

func TestMSXBus_PortHighByteIgnored(t *testing.T) {
	bus := makeTestBus(
		0x01, 0xAA, 0x12, // LD BC,$12AA
		0x3E, 0x05,       // LD A,$05
		0xED, 0x79,       // OUT (C),A
		0x3E, 0x00,       // LD A,$00
		0x01, 0xAA, 0x77, // LD BC,$77AA
		0xED, 0x78,       // IN A,(C)
	)
	cpu := z80.New(bus)
	for i := 0; i < 6; i++ {
		cpu.Step()
	}

	if bus.io.ppiC != 0x05 {
		t.Errorf("expected PPI port C 0x05, got 0x%02X", bus.io.ppiC)
	}
	if a := uint8(cpu.Registers().AF >> 8); a != 0x05 {
		t.Errorf("expected IN to read 0x05, got 0x%02X", a)
	}
}

func TestMSXBus_SlotSwitchFromCode(t *testing.T) {
	io := newTestIO()
	bus := NewMSXBus(io.mem, io)
	cpu := z80.New(bus)

	// The stub: DI, LD SP, LD A, OUT ($A8),A
	for i := 0; i < 4; i++ {
		cpu.Step()
	}
	if io.mem.PrimarySlot() != 0xD4 {
		t.Errorf("expected primary slot 0xD4, got 0x%02X", io.mem.PrimarySlot())
	}
	if cpu.Registers().PC != 0x0008 {
		t.Errorf("expected PC 0x0008, got 0x%04X", cpu.Registers().PC)
	}
}

func TestMSXBus_InterruptIgnoredWhileDisabled(t *testing.T) {
	cpu := z80.New(makeTestBus())
	cpu.INT(true, 0xFF)

	cpu.Step()
	if cpu.Registers().PC != 1 {
		t.Errorf("INT with IFF1=false should not be serviced, PC expected 1, got 0x%04X", cpu.Registers().PC)
	}
	cpu.INT(false, 0)
}

func TestMSXBus_HaltBurnsCycles(t *testing.T) {
	cpu := z80.New(makeTestBus(0x76))

	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("HALT should return 4 cycles, got %d", cycles)
	}
	if cycles := cpu.Step(); cycles != 4 {
		t.Errorf("halted step should return 4 cycles, got %d", cycles)
	}
	if !cpu.Halted() {
		t.Error("CPU should be halted after executing HALT")
	}
}
