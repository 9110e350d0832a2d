package adapter

import (
	"os"
	"path/filepath"
	"testing"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emsx/emu"
)

func makeCartridge() []byte {
	rom := make([]byte, 0x4000)
	rom[0], rom[1] = 'A', 'B'
	rom[2], rom[3] = 0x10, 0x40
	rom[0x10] = 0x76 // HALT
	return rom
}

func writeBIOS(t *testing.T, id byte) string {
	t.Helper()
	bios := make([]byte, 0x8000)
	bios[0x2B] = id
	path := filepath.Join(t.TempDir(), "msx2.rom")
	if err := os.WriteFile(path, bios, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSystemInfo(t *testing.T) {
	f := &Factory{}
	info := f.SystemInfo()

	if info.ScreenWidth != 512 || info.MaxScreenHeight != 212 {
		t.Errorf("screen: got %dx%d, want 512x212", info.ScreenWidth, info.MaxScreenHeight)
	}
	if info.SerializeSize != emu.SerializeSize() {
		t.Errorf("SerializeSize: got %d, want %d", info.SerializeSize, emu.SerializeSize())
	}
	ids := map[string]int{}
	for _, b := range info.Buttons {
		ids[b.Name] = b.ID
	}
	for name, id := range map[string]int{"A": 4, "B": 5, "Start": 6, "Select": 7} {
		if ids[name] != id {
			t.Errorf("button %s: got ID %d, want %d", name, ids[name], id)
		}
	}
	if len(info.CoreOptions) != 1 || info.CoreOptions[0].Key != "psg_cartridge" {
		t.Errorf("unexpected core options %+v", info.CoreOptions)
	}
}

func TestSystemInfo_SerializeSizeFollowsVRAM(t *testing.T) {
	f := &Factory{VRAMSize: 0x30000}
	e, err := f.CreateEmulator(makeCartridge(), emucore.RegionNTSC)
	if err != nil {
		t.Fatalf("CreateEmulator: %v", err)
	}
	state, err := e.(emucore.SaveStater).Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if got := f.SystemInfo().SerializeSize; got != len(state) {
		t.Errorf("SerializeSize: got %d, want %d", got, len(state))
	}
}

func TestCreateEmulator_WithoutBIOS(t *testing.T) {
	t.Setenv(BIOSEnv, "")
	f := &Factory{}
	e, err := f.CreateEmulator(makeCartridge(), emucore.RegionNTSC)
	if err != nil {
		t.Fatalf("CreateEmulator: %v", err)
	}
	if e.(*emu.Emulator).HasBIOS() {
		t.Error("expected boot stub without BIOS")
	}
	e.RunFrame()
}

func TestCreateEmulator_BIOSFromEnv(t *testing.T) {
	t.Setenv(BIOSEnv, writeBIOS(t, 0x00))
	f := &Factory{}
	e, err := f.CreateEmulator(makeCartridge(), emucore.RegionNTSC)
	if err != nil {
		t.Fatalf("CreateEmulator: %v", err)
	}
	if !e.(*emu.Emulator).HasBIOS() {
		t.Error("expected BIOS loaded from environment")
	}
}

func TestCreateEmulator_MissingBIOSFile(t *testing.T) {
	f := &Factory{BIOSPath: filepath.Join(t.TempDir(), "nope.rom")}
	e, err := f.CreateEmulator(makeCartridge(), emucore.RegionNTSC)
	if err != nil {
		t.Fatalf("expected missing BIOS to be non-fatal, got %v", err)
	}
	if e.(*emu.Emulator).HasBIOS() {
		t.Error("expected boot stub when BIOS file is missing")
	}
}

func TestCreateEmulator_BadVRAMSize(t *testing.T) {
	f := &Factory{VRAMSize: 1000}
	if _, err := f.CreateEmulator(makeCartridge(), emucore.RegionNTSC); err == nil {
		t.Error("expected error for unsupported VRAM size")
	}
}

func TestDetectRegion(t *testing.T) {
	t.Setenv(BIOSEnv, "")
	f := &Factory{}
	if r, found := f.DetectRegion(makeCartridge()); r != emucore.RegionNTSC || found {
		t.Errorf("no BIOS: got %v/%v, want NTSC/false", r, found)
	}

	f.BIOSPath = writeBIOS(t, 0x91)
	if r, found := f.DetectRegion(makeCartridge()); r != emucore.RegionPAL || found {
		t.Errorf("50Hz BIOS: got %v/%v, want PAL/false", r, found)
	}
}
