//go:build !libretro && !ios

package main

import (
	"flag"
	"log"
	"strconv"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/emsx/adapter"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	biosPath := flag.String("bios", "", "path to MSX2 BIOS image (default $"+adapter.BIOSEnv+")")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	vramKB := flag.Int("vram", 128, "VRAM size in KB: 16, 64, 128 or 192")
	psgCart := flag.Bool("psg-cartridge", false, "insert an SN76489 sound cartridge")
	flag.Parse()

	factory := &adapter.Factory{
		BIOSPath: *biosPath,
		VRAMSize: *vramKB * 1024,
	}

	if *romPath != "" {
		options := map[string]string{
			"psg_cartridge": strconv.FormatBool(*psgCart),
		}
		if err := standalone.RunDirect(factory, *romPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
