// Command vdpscript drives the V9938 command engine from Lua scripts.
//
//	vdpscript [-vram 128] [-dump out.bmp] [script.lua]
//
// Without a script it reads from stdin, or starts an interactive prompt
// when stdin is a terminal.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/term"
)

func main() {
	vramKB := flag.Int("vram", 128, "VRAM size in KB: 16, 64, 128 or 192")
	dumpPath := flag.String("dump", "", "write the bitmap screen as BMP when done")
	flag.Parse()

	h, err := newHarness(*vramKB * 1024)
	if err != nil {
		log.Fatal(err)
	}

	L := lua.NewState()
	defer L.Close()
	h.register(L)

	switch {
	case flag.NArg() > 0:
		err = L.DoFile(flag.Arg(0))
	case term.IsTerminal(int(os.Stdin.Fd())):
		err = runREPL(L)
	default:
		var src []byte
		src, err = io.ReadAll(os.Stdin)
		if err == nil {
			err = L.DoString(string(src))
		}
	}
	if err != nil {
		log.Fatal(err)
	}

	if *dumpPath != "" {
		if err := h.writeBMP(*dumpPath); err != nil {
			log.Fatalf("Failed to write dump: %v", err)
		}
	}
}
