// Package ebiten provides an Ebiten-specific wrapper for the emulator.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emsx/emu"
)

// lineHeight is the number of screen rows per VDP line. The framebuffer
// is 512 pixels wide so lines are doubled to keep square-ish pixels.
const lineHeight = 2

// Emulator wraps emu.Emulator with Ebiten rendering.
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image           // Native resolution frame
	drawOpts  ebiten.DrawImageOptions // Reused every frame
	uploaded  uint64                  // Sequence number of the frame in offscreen
}

// NewEmulator creates an emulator with Ebiten rendering.
func NewEmulator(rom []byte, region emu.Region, cfg emu.Config) (*Emulator, error) {
	base, err := emu.NewEmulator(rom, region, cfg)
	if err != nil {
		return nil, err
	}
	return &Emulator{Emulator: base}, nil
}

// Layout implements ebiten.Game.
func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// DrawFrame renders a frame copied out of the emulation goroutine.
// pixels is RGBA with the given stride. The texture upload is skipped
// when seq matches the frame already uploaded.
func (e *Emulator) DrawFrame(screen *ebiten.Image, pixels []byte, stride, activeHeight int, seq uint64) {
	if activeHeight == 0 || stride == 0 {
		return
	}
	requiredLen := stride * activeHeight
	if len(pixels) < requiredLen {
		return
	}

	if e.offscreen == nil || e.offscreen.Bounds().Dy() != activeHeight {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, activeHeight)
		e.uploaded = 0
	}
	if seq == 0 || seq != e.uploaded {
		e.offscreen.WritePixels(pixels[:requiredLen])
		e.uploaded = seq
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := fitScale(screenW, screenH, emu.ScreenWidth, activeHeight*lineHeight)

	scaledW := float64(emu.ScreenWidth) * scale
	scaledH := float64(activeHeight*lineHeight) * scale

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale*lineHeight)
	e.drawOpts.GeoM.Translate((float64(screenW)-scaledW)/2, (float64(screenH)-scaledH)/2)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(e.offscreen, &e.drawOpts)
}

// fitScale returns the largest uniform scale that fits w x h inside
// screenW x screenH.
func fitScale(screenW, screenH, w, h int) float64 {
	sx := float64(screenW) / float64(w)
	sy := float64(screenH) / float64(h)
	if sy < sx {
		return sy
	}
	return sx
}
