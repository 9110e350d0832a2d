package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/user-none/emsx/emu"
	"golang.org/x/image/bmp"
)

// dumpHeight is the number of lines written by a dump.
const dumpHeight = 212

// screenImage renders the bitmap screen seen through the command
// engine's current accessor mode.
func (h *harness) screenImage() (*image.RGBA, error) {
	mode := h.cmd.ScreenMode()
	w := emu.PixelsPerLine(mode)
	if w == 0 {
		return nil, fmt.Errorf("no bitmap mode selected")
	}

	img := image.NewRGBA(image.Rect(0, 0, w, dumpHeight))
	for y := 0; y < dumpHeight; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, pixelColor(mode, h.cmd.Pixel(x, y)))
		}
	}
	return img, nil
}

// pixelColor maps a color index to RGB: the power-on palette for 4 bpp,
// a grey ramp for 2 bpp and GRB 3-3-2 for 8 bpp.
func pixelColor(mode int, c uint8) color.RGBA {
	switch mode {
	case 1:
		v := (c & 3) * 85
		return color.RGBA{R: v, G: v, B: v, A: 0xFF}
	case 3:
		return emu.GRBColor(c)
	}
	return emu.DefaultColor(c)
}

// writeBMP writes the current screen to path.
func (h *harness) writeBMP(path string) error {
	img, err := h.screenImage()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("bmp: %w", err)
	}
	return f.Close()
}
