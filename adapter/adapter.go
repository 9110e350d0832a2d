package adapter

import (
	"log"
	"os"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emsx/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// BIOSEnv names the environment variable consulted when BIOSPath is
// empty.
const BIOSEnv = "EMSX_BIOS"

// Factory implements emucore.CoreFactory for the MSX2 emulator.
type Factory struct {
	BIOSPath string // MSX2 BIOS (+ sub-ROM) image; falls back to $EMSX_BIOS
	VRAMSize int    // Bytes of VRAM; 0 selects emu.DefaultVRAMSize
}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "emsx",
		ConsoleName:     "MSX2",
		Extensions:      []string{".rom", ".mx2", ".mx1"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     4.0 / 3.0,
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "A", ID: 4, DefaultKey: "J", DefaultPad: "A"},
			{Name: "B", ID: 5, DefaultKey: "K", DefaultPad: "B"},
			{Name: "Start", ID: 6, DefaultKey: "Enter", DefaultPad: "Start"},
			{Name: "Select", ID: 7, DefaultKey: "Backspace", DefaultPad: "Back"},
		},
		Players: 2,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "psg_cartridge",
				Label:       "SN76489 Sound Cartridge",
				Description: "Insert an SN76489 sound cartridge on I/O port $3F",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryAudio,
				PerGame:     true,
			},
		},
		RDBName:       "Microsoft - MSX2",
		ThumbnailRepo: "Microsoft_-_MSX2",
		DataDirName:   "emsx",
		ConsoleID:     6,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: f.serializeSize(),
	}
}

func (f *Factory) serializeSize() int {
	if f.VRAMSize == 0 {
		return emu.SerializeSize()
	}
	return emu.SerializeSize() - emu.DefaultVRAMSize + f.VRAMSize
}

// CreateEmulator creates a new emulator instance with the given ROM and
// region. A missing or unreadable BIOS is not fatal: the machine boots
// the cartridge directly.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	if err := emu.ValidateCartridge(rom); err != nil {
		log.Printf("Warning: %v", err)
	}
	e, err := emu.NewEmulator(rom, region, emu.Config{
		BIOS:     f.loadBIOS(),
		VRAMSize: f.VRAMSize,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DetectRegion returns the region implied by the BIOS interrupt
// frequency. Cartridges carry no region, so the bool return is always
// false.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	if bios := f.loadBIOS(); bios != nil {
		return emu.DetectBIOSRegion(bios), false
	}
	return emu.DetectRegion(rom), false
}

// loadBIOS reads the configured BIOS image, or returns nil.
func (f *Factory) loadBIOS() []byte {
	path := f.BIOSPath
	if path == "" {
		path = os.Getenv(BIOSEnv)
	}
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: BIOS not loaded, booting cartridge directly: %v", err)
		return nil
	}
	return data
}
