package stagefx

import "github.com/hajimehoshi/ebiten/v2"

// LiquidTextView uploads a LiquidText's frames into an ebiten image and
// draws them over the effect's container.
type LiquidTextView struct {
	Liquid *LiquidText
	// Bounds is the container in screen coordinates.
	Bounds Rect

	img *ebiten.Image
}

// NewLiquidTextView wraps l.
func NewLiquidTextView(l *LiquidText) *LiquidTextView {
	return &LiquidTextView{Liquid: l}
}

// Draw uploads the last composed frame and draws it scaled from device
// pixels to the container's CSS size. Nothing is drawn when the effect has
// no frame.
func (v *LiquidTextView) Draw(screen *ebiten.Image) {
	frame := v.Liquid.Frame()
	if frame == nil || v.Bounds.Empty() {
		return
	}
	if v.img == nil || v.img.Bounds().Dx() != frame.Width || v.img.Bounds().Dy() != frame.Height {
		if v.img != nil {
			v.img.Deallocate()
		}
		v.img = ebiten.NewImage(frame.Width, frame.Height)
	}
	v.img.WritePixels(frame.Pix)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(v.Bounds.Width/float64(frame.Width), v.Bounds.Height/float64(frame.Height))
	op.GeoM.Translate(v.Bounds.X, v.Bounds.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(v.img, &op)
}

// Dispose releases the GPU image.
func (v *LiquidTextView) Dispose() {
	if v.img != nil {
		v.img.Deallocate()
		v.img = nil
	}
}
