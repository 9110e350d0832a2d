package emu

import "image/color"

// paletteColor converts a 0GRB palette entry to R, G, B values.
func paletteColor(p uint16) (r, g, b uint8) {
	r = scale3((p >> 4) & 7)
	g = scale3((p >> 8) & 7)
	b = scale3(p & 7)
	return
}

// grbColor converts a GRAPHIC7 byte (GGGRRRBB) to R, G, B values. Blue
// has two bits; 3 maps to full intensity.
func grbColor(c uint8) (r, g, b uint8) {
	r = scale3(uint16(c>>2) & 7)
	g = scale3(uint16(c>>5) & 7)
	bb := uint16(c & 3)
	if bb == 3 {
		b = 255
	} else {
		b = scale3(bb * 2)
	}
	return
}

// DefaultColor returns power-on palette entry i (0-15) as RGBA.
func DefaultColor(i uint8) color.RGBA {
	r, g, b := paletteColor(defaultPalette[i&0x0F])
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

// GRBColor returns a GRAPHIC7 pixel byte as RGBA.
func GRBColor(c uint8) color.RGBA {
	r, g, b := grbColor(c)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

func scale3(c uint16) uint8 {
	return uint8(c * 255 / 7)
}

// backdropColor returns the border color from R#7.
func (v *VDP) backdropColor() (r, g, b uint8) {
	if v.displayMode == 8 {
		return grbColor(v.regs[7])
	}
	return paletteColor(v.palette[v.regs[7]&0x0F])
}

func (v *VDP) putPixel(offset int, r, g, b uint8) {
	pix := v.framebuffer.Pix
	pix[offset] = r
	pix[offset+1] = g
	pix[offset+2] = b
	pix[offset+3] = 0xFF
}

// fillBackdrop fills a framebuffer row with the backdrop color.
func (v *VDP) fillBackdrop(line int) {
	r, g, b := v.backdropColor()
	offset := line * v.framebuffer.Stride
	for x := 0; x < ScreenWidth; x++ {
		v.putPixel(offset+x*4, r, g, b)
	}
}

// RenderScanline draws one displayed line into the framebuffer. The
// bitmap modes GRAPHIC4-7 are drawn from VRAM; pattern and text modes
// show the backdrop only. 256 pixel modes are doubled horizontally.
func (v *VDP) RenderScanline(line int) {
	if line < 0 || line >= MaxScreenHeight {
		return
	}
	if !v.displayEnabled() || v.displayMode < 5 || v.displayMode > 8 {
		v.fillBackdrop(line)
		return
	}

	mode := v.displayMode - 5
	// R#2 selects the display page; R#23 scrolls vertically within it
	var y int
	switch mode {
	case 0, 1:
		y = int(v.regs[2]>>5&3)<<8 | (line+int(v.regs[23]))&0xFF
	default:
		y = int(v.regs[2]>>5&1)<<8 | (line+int(v.regs[23]))&0xFF
	}

	width := cmdPixelsPerLine[mode]
	offset := line * v.framebuffer.Stride
	for x := 0; x < width; x++ {
		var r, g, b uint8
		c := v.displayPixel(mode, x, y)
		if mode == 3 {
			r, g, b = grbColor(c)
		} else {
			r, g, b = paletteColor(v.palette[c])
		}
		if width == ScreenWidth {
			v.putPixel(offset+x*4, r, g, b)
		} else {
			v.putPixel(offset+x*8, r, g, b)
			v.putPixel(offset+x*8+4, r, g, b)
		}
	}
}

// displayPixel reads a pixel for display. Display always fetches from
// the first 128KB regardless of the command engine's bank selection.
func (v *VDP) displayPixel(mode, x, y int) uint8 {
	b := v.vram[pixelAddr(mode, x, y)&(min(len(v.vram), 0x20000)-1)]
	switch mode {
	case 0, 2:
		return b >> ((^uint(x) & 1) << 2) & 15
	case 1:
		return b >> ((^uint(x) & 3) << 1) & 3
	}
	return b
}
