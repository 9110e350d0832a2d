package emu

import emucore "github.com/user-none/eblitui/api"

// Region is the emucore video region, which selects NTSC or PAL line timing.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Z80 cycles per scanline. The VDP runs at six times the Z80 clock, so
// a line is 1368 VDP ticks in both regions.
const cyclesPerScanline = 228

// RegionTiming holds timing constants for a specific region.
// MSX machines use the same 3.579545 MHz Z80 clock in both regions;
// only the line count and refresh rate differ.
type RegionTiming struct {
	CPUClockHz int // Z80 clock frequency
	Scanlines  int // Total scanlines per frame
	FPS        int // Frames per second
}

// NTSC timing: 262 scanlines, 60 Hz
var NTSCTiming = RegionTiming{
	CPUClockHz: 3579545,
	Scanlines:  262,
	FPS:        60,
}

// PAL timing: 313 scanlines, 50 Hz
var PALTiming = RegionTiming{
	CPUClockHz: 3579545,
	Scanlines:  313,
	FPS:        50,
}

// GetTimingForRegion returns the appropriate timing constants
func GetTimingForRegion(r Region) RegionTiming {
	if r == RegionPAL {
		return PALTiming
	}
	return NTSCTiming
}

// biosIDByte is the BIOS location describing the machine's character
// set, date format and interrupt frequency. Bit 7 set means 50 Hz.
const biosIDByte = 0x002B

// DetectBIOSRegion reads the interrupt frequency flag from a BIOS image.
// Returns NTSC when the image is too short to carry it.
func DetectBIOSRegion(bios []byte) Region {
	if len(bios) <= biosIDByte {
		return RegionNTSC
	}
	if bios[biosIDByte]&0x80 != 0 {
		return RegionPAL
	}
	return RegionNTSC
}

// DetectRegion returns the display timing region for a cartridge.
// MSX cartridges carry no region information, so this is always NTSC.
func DetectRegion(rom []byte) Region {
	return RegionNTSC
}

// DefaultRegion returns the default region (NTSC).
func DefaultRegion() Region {
	return RegionNTSC
}
