package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emsx/adapter"
	emubridge "github.com/user-none/emsx/bridge/ebiten"
	"github.com/user-none/emsx/cli"
	"github.com/user-none/emsx/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (required)")
	biosPath := flag.String("bios", "", "path to MSX2 BIOS image (default $"+adapter.BIOSEnv+")")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	vramKB := flag.Int("vram", 128, "VRAM size in KB: 16, 64, 128 or 192")
	psgCart := flag.Bool("psg-cartridge", false, "insert an SN76489 sound cartridge")
	wavPath := flag.String("wav", "", "capture audio to a WAV file")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("ROM path is required. Usage: emsx -rom <path>")
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}
	if err := emu.ValidateCartridge(romData); err != nil {
		log.Printf("Warning: %v", err)
	}

	var bios []byte
	if *biosPath == "" {
		*biosPath = os.Getenv(adapter.BIOSEnv)
	}
	if *biosPath != "" {
		bios, err = os.ReadFile(*biosPath)
		if err != nil {
			log.Fatalf("Failed to load BIOS: %v", err)
		}
	} else {
		log.Printf("Warning: no BIOS given, booting the cartridge directly")
	}

	var region emu.Region
	switch strings.ToLower(*regionFlag) {
	case "auto":
		region = emu.DetectBIOSRegion(bios)
	case "ntsc":
		region = emu.RegionNTSC
	case "pal":
		region = emu.RegionPAL
	default:
		log.Fatalf("Invalid region: %s (use auto, ntsc, or pal)", *regionFlag)
	}

	e, err := emubridge.NewEmulator(romData, region, emu.Config{
		BIOS:         bios,
		VRAMSize:     *vramKB * 1024,
		PSGCartridge: *psgCart,
	})
	if err != nil {
		log.Fatalf("Failed to initialize emulator: %v", err)
	}

	ebiten.SetWindowSize(emu.ScreenWidth*2, emu.MaxScreenHeight*4)
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(512, 424, -1, -1)
	ebiten.SetTPS(e.GetTiming().FPS)

	runner, err := cli.NewRunner(e, cli.Options{WAVPath: *wavPath})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer runner.Close()
	defer e.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
