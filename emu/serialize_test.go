package emu

import (
	"encoding/binary"
	"hash/crc32"
	"testing"
)

// testCartProgram enables the frame interrupt and counts interrupts in
// RAM at $C000. It runs from the INIT vector at $4010.
var testCartProgram = []byte{
	0xDB, 0x99,       // IN A,($99)      clear the power-on F flag
	0x3E, 0x60,       // LD A,$60
	0xD3, 0x99,       // OUT ($99),A
	0x3E, 0x81,       // LD A,$81
	0xD3, 0x99,       // OUT ($99),A     R#1 = $60
	0xED, 0x56,       // IM 1
	0xFB,             // EI
	0x76,             // loop: HALT
	0x21, 0x00, 0xC0, // LD HL,$C000
	0x34,             // INC (HL)
	0x18, 0xF9,       // JR loop
}

// createTestROM creates a 16KB cartridge with an "AB" header whose INIT
// vector points at testCartProgram.
func createTestROM() []byte {
	rom := make([]byte, 0x4000)
	rom[0] = 'A'
	rom[1] = 'B'
	rom[2] = 0x10
	rom[3] = 0x40
	copy(rom[0x10:], testCartProgram)
	return rom
}

// createTestEmulator creates an emulator booting createTestROM through
// the built-in boot stub.
func createTestEmulator() *Emulator {
	e, err := NewEmulator(createTestROM(), RegionNTSC, Config{})
	if err != nil {
		panic("createTestEmulator: " + err.Error())
	}
	return e
}

func TestSerializeSize(t *testing.T) {
	e := createTestEmulator()
	if got := e.SerializeSize(); got != SerializeSize() {
		t.Errorf("SerializeSize: expected %d for default VRAM, got %d", SerializeSize(), got)
	}

	big, err := NewEmulator(createTestROM(), RegionNTSC, Config{VRAMSize: 0x30000})
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	if diff := big.SerializeSize() - e.SerializeSize(); diff != 0x10000 {
		t.Errorf("expected 192KB state to be 64KB larger, got %d", diff)
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	e := createTestEmulator()
	e.RunFrame()
	e.RunFrame()

	e.mem.ram[0x8000] = 0xAB
	e.io.Out(portVDPControl, 0x14)
	e.io.Out(portVDPControl, 0x87) // R#7 = $14

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	cycles := e.cycles
	pc := e.cpu.Registers().PC

	// Corrupt emulator state
	e.RunFrame()
	e.mem.ram[0x8000] = 0xFF
	e.io.Out(portVDPControl, 0x00)
	e.io.Out(portVDPControl, 0x87)

	if err := e.Deserialize(state); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if e.mem.ram[0x8000] != 0xAB {
		t.Errorf("RAM[0x8000]: expected 0xAB, got 0x%02X", e.mem.ram[0x8000])
	}
	if e.vdp.regs[7] != 0x14 {
		t.Errorf("VDP R#7: expected 0x14, got 0x%02X", e.vdp.regs[7])
	}
	if e.cycles != cycles {
		t.Errorf("cycles: expected %d, got %d", cycles, e.cycles)
	}
	if e.cpu.Registers().PC != pc {
		t.Errorf("PC: expected 0x%04X, got 0x%04X", pc, e.cpu.Registers().PC)
	}
	if e.mem.PrimarySlot() != 0xD4 {
		t.Errorf("primary slot: expected 0xD4, got 0x%02X", e.mem.PrimarySlot())
	}
}

func TestSerialize_FlushesCommand(t *testing.T) {
	e := createTestEmulator()
	// GRAPHIC4, then HMMV 256x212 with $77
	for _, w := range [][2]uint8{{0, 0x06}, {1, 0x00}, {40, 0x00}, {41, 0x01}, {42, 0xD4}, {44, 0x77}, {46, 0xC0}} {
		e.io.Out(portVDPControl, w[1])
		e.io.Out(portVDPControl, 0x80|w[0])
	}
	if !e.vdp.CmdEngine().Busy() {
		t.Fatal("expected HMMV running")
	}

	if _, err := e.Serialize(); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if e.vdp.CmdEngine().Busy() {
		t.Error("expected command flushed by Serialize")
	}
	if e.vdp.vram[211*128+127] != 0x77 {
		t.Errorf("expected last byte filled, got 0x%02X", e.vdp.vram[211*128+127])
	}
}

func TestVerifyState_ValidState(t *testing.T) {
	e := createTestEmulator()

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if err := e.VerifyState(state); err != nil {
		t.Errorf("VerifyState should pass for valid state: %v", err)
	}
}

func TestVerifyState_InvalidMagic(t *testing.T) {
	e := createTestEmulator()

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	state[0] = 'X'

	if err := e.VerifyState(state); err == nil {
		t.Error("VerifyState should reject invalid magic bytes")
	}
}

func TestVerifyState_UnsupportedVersion(t *testing.T) {
	e := createTestEmulator()

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	binary.LittleEndian.PutUint16(state[12:14], 9999)

	if err := e.VerifyState(state); err == nil {
		t.Error("VerifyState should reject unsupported version")
	}
}

func TestVerifyState_CorruptData(t *testing.T) {
	e := createTestEmulator()

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	state[stateHeaderSize+5] ^= 0xFF

	if err := e.VerifyState(state); err == nil {
		t.Error("VerifyState should reject corrupted data")
	}
}

func TestVerifyState_WrongROM(t *testing.T) {
	e1 := createTestEmulator()

	state, err := e1.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	rom := createTestROM()
	rom[0x3FFF] = 0x01
	e2, err := NewEmulator(rom, RegionNTSC, Config{})
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}

	if err := e2.VerifyState(state); err == nil {
		t.Error("VerifyState should reject state from different ROM")
	}
}

func TestVerifyState_VRAMSizeMismatch(t *testing.T) {
	e1 := createTestEmulator()
	state, err := e1.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	e2, err := NewEmulator(createTestROM(), RegionNTSC, Config{VRAMSize: 0x30000})
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	if err := e2.Deserialize(state); err == nil {
		t.Error("Deserialize should reject state from a smaller VRAM")
	}
}

func TestVerifyState_TooShort(t *testing.T) {
	e := createTestEmulator()

	state := make([]byte, stateHeaderSize-1)

	if err := e.VerifyState(state); err == nil {
		t.Error("VerifyState should reject data smaller than header")
	}
}

func TestDeserialize_PreservesRegion(t *testing.T) {
	ntsc, err := NewEmulator(createTestROM(), RegionNTSC, Config{})
	if err != nil {
		t.Fatalf("NewEmulator NTSC failed: %v", err)
	}

	state, err := ntsc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	pal, err := NewEmulator(createTestROM(), RegionPAL, Config{})
	if err != nil {
		t.Fatalf("NewEmulator PAL failed: %v", err)
	}

	if err := pal.Deserialize(state); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}

	if pal.GetRegion() != RegionPAL {
		t.Errorf("Region should be preserved as PAL, got %v", pal.GetRegion())
	}
}

func TestSerialize_StateIntegrity(t *testing.T) {
	e := createTestEmulator()

	state, err := e.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if string(state[0:12]) != stateMagic {
		t.Errorf("Magic bytes: expected %q, got %q", stateMagic, string(state[0:12]))
	}

	version := binary.LittleEndian.Uint16(state[12:14])
	if version != stateVersion {
		t.Errorf("Version: expected %d, got %d", stateVersion, version)
	}

	romCRC := binary.LittleEndian.Uint32(state[14:18])
	if expected := crc32.ChecksumIEEE(createTestROM()); romCRC != expected {
		t.Errorf("ROM CRC32: expected 0x%08X, got 0x%08X", expected, romCRC)
	}

	dataCRC := binary.LittleEndian.Uint32(state[18:22])
	calculatedCRC := crc32.ChecksumIEEE(state[stateHeaderSize:])
	if dataCRC != calculatedCRC {
		t.Errorf("Data CRC32: expected 0x%08X, got 0x%08X", calculatedCRC, dataCRC)
	}
}
