package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/emsx/adapter"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadB, BitID: 4},      // Trigger A
		{RetroID: libretro.JoypadA, BitID: 5},      // Trigger B
		{RetroID: libretro.JoypadStart, BitID: 6},  // Start (RETURN)
		{RetroID: libretro.JoypadSelect, BitID: 7}, // Select (F1)
	})
}

func main() {}
