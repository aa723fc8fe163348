package stagefx

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSOverlay displays the current FPS and TPS in the top-left corner.
// The text is refreshed every ~0.5 seconds.
type FPSOverlay struct {
	img        *ebiten.Image
	lastUpdate float64
}

// NewFPSOverlay creates an overlay.
func NewFPSOverlay() *FPSOverlay {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	return &FPSOverlay{img: ebiten.NewImage(100, 32), lastUpdate: 0.5}
}

// Update advances the refresh timer by dt seconds.
func (f *FPSOverlay) Update(dt float64) {
	f.lastUpdate += dt
	if f.lastUpdate < 0.5 {
		return
	}
	f.lastUpdate = 0

	f.img.Clear()
	// Semi-transparent background for readability
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

// Draw draws the overlay on top of screen.
func (f *FPSOverlay) Draw(screen *ebiten.Image) {
	screen.DrawImage(f.img, nil)
}
