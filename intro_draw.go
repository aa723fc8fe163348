package stagefx

import (
	"bytes"
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gobold"
)

// Wordmark overlay geometry, in the 1600×900 artboard the overlay is
// designed on. The artboard covers the screen, cropping the overflow.
const (
	artboardW      = 1600.0
	artboardH      = 900.0
	wordmarkX      = 800.0
	wordmarkY      = 470.0
	overlayOpacity = 0.9
)

// Ripple ring look.
const (
	rippleMaxDiameter = 520.0
	rippleViewport    = 0.36
	rippleBorder      = 0.24
	rippleGlow        = 0.08
)

// wordmarkSize returns the overlay letter size and extra letter spacing.
func wordmarkSize(tier DeviceTier) (size, spacing float64) {
	switch tier {
	case TierMobile:
		return 250, -14
	case TierTablet:
		return 290, -18
	default:
		return 340, -24
	}
}

// introGraphics caches GPU resources for drawing an IntroSequencer.
type introGraphics struct {
	tiles   map[int]*ebiten.Image
	overlay *ebiten.Image
	source  *text.GoTextFaceSource
	noFont  bool
}

func (g *introGraphics) dispose() {
	for _, img := range g.tiles {
		img.Deallocate()
	}
	g.tiles = nil
	if g.overlay != nil {
		g.overlay.Deallocate()
		g.overlay = nil
	}
}

// tileImage uploads the image for a tile on first use.
func (g *introGraphics) tileImage(idx int, src image.Image) *ebiten.Image {
	if src == nil {
		return nil
	}
	if g.tiles == nil {
		g.tiles = make(map[int]*ebiten.Image)
	}
	img, ok := g.tiles[idx]
	if !ok {
		img = ebiten.NewImageFromImage(src)
		g.tiles[idx] = img
	}
	return img
}

func (g *introGraphics) face(size float64) *text.GoTextFace {
	if g.source == nil && !g.noFont {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
		if err != nil {
			Logger().Warn("intro: wordmark font unavailable", "error", err)
			g.noFont = true
			return nil
		}
		g.source = src
	}
	if g.source == nil {
		return nil
	}
	return &text.GoTextFace{Source: g.source, Size: size}
}

// artboard returns the scale and origin that map the overlay artboard onto
// a w×h screen, covering it.
func artboard(w, h float64) (scale, ox, oy float64) {
	scale = math.Max(w/artboardW, h/artboardH)
	return scale, (w - artboardW*scale) / 2, (h - artboardH*scale) / 2
}

// WordmarkBounds returns the wordmark's approximate on-screen rectangle on a
// w×h screen for tier.
func WordmarkBounds(w, h float64, tier DeviceTier, word string) Rect {
	scale, ox, oy := artboard(w, h)
	size, spacing := wordmarkSize(tier)
	n := float64(len([]rune(word)))
	// Bold capitals average roughly 0.72 em.
	width := (n*size*0.72 + (n-1)*spacing) * scale
	height := size * 0.72 * scale
	cx, cy := ox+wordmarkX*scale, oy+wordmarkY*scale
	return Rect{X: cx - width/2, Y: cy - height/2, Width: width, Height: height}
}

// Handoff returns where the wordmark settles on a w×h screen.
func (s *IntroSequencer) Handoff(w, h float64) Handoff {
	return ComputeHandoff(s.handoff, s.tier, WordmarkBounds(w, h, s.tier, s.cfg.Wordmark), Rect{Width: w, Height: h})
}

// SkipButtonBounds returns the skip button rectangle on a w×h screen.
func SkipButtonBounds(w, h float64, tier DeviceTier) Rect {
	margin, padX, padY := 20.0, 14.0, 8.0
	if tier == TierMobile {
		margin, padX, padY = 12, 10, 6
	}
	const glyphW, glyphH = 6, 16 // ebitenutil debug font cell
	bw := 4*glyphW + 2*padX
	bh := glyphH + 2*padY
	return Rect{X: w - margin - bw, Y: margin, Width: bw, Height: bh}
}

// HandleInput skips the intro on a click or tap inside the skip button, or
// on Escape. Call it from the game's Update before Update.
func (s *IntroSequencer) HandleInput(w, h float64) {
	if !s.Visible() {
		return
	}
	btn := SkipButtonBounds(w, h, s.tier)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.Skip()
		return
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if btn.Contains(float64(x), float64(y)) {
			s.Skip()
			return
		}
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		if btn.Contains(float64(x), float64(y)) {
			s.Skip()
			return
		}
	}
}

// Draw renders the intro over screen. Nothing is drawn once the intro has
// finished or been closed.
func (s *IntroSequencer) Draw(screen *ebiten.Image) {
	if !s.Visible() {
		return
	}
	var start time.Time
	if s.debug {
		start = time.Now()
	}
	b := screen.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	if s.phase != PhaseSplitting {
		screen.Fill(ColorBlack.toRGBA())
	}
	drawn := s.drawTiles(screen, Rect{Width: w, Height: h})
	if s.phase == PhaseRevealing {
		s.drawRipples(screen, w, h)
	}
	if op := s.overlay.Value(); op > 0 {
		s.drawOverlay(screen, w, h, op)
	}
	s.drawSkip(screen, w, h)

	if s.debug {
		logFrameStats("intro", frameStats{mode: s.phase.String(), drawn: drawn, duration: time.Since(start)})
	}
}

// drawTiles draws every cell of every tile with an image and returns the
// number of cells drawn.
func (s *IntroSequencer) drawTiles(screen *ebiten.Image, viewport Rect) int {
	drawn := 0
	for i := range s.tiles {
		rt := &s.tiles[i]
		img := s.gfx.tileImage(rt.Spec.ImageIndex, s.tileImage(rt.Spec))
		if img == nil {
			continue
		}
		tp := s.TilePose(i)
		if tp.Opacity <= 0 {
			continue
		}
		box := s.layout.Cell(rt.Spec, viewport)
		ib := img.Bounds()
		cw, ch := box.Width/float64(rt.SubCols), box.Height/float64(rt.SubRows)
		sw, sh := float64(ib.Dx())/float64(rt.SubCols), float64(ib.Dy())/float64(rt.SubRows)

		for j := range rt.Cells {
			c := &rt.Cells[j]
			cp := s.CellPose(i, j)
			alpha := cp.Opacity * tp.Opacity * blurFade(cp.Blur+tp.Blur)
			if alpha <= 0 {
				continue
			}
			src := image.Rect(
				ib.Min.X+int(float64(c.Col)*sw), ib.Min.Y+int(float64(c.Row)*sh),
				ib.Min.X+int(float64(c.Col+1)*sw), ib.Min.Y+int(float64(c.Row+1)*sh),
			)
			if src.Empty() {
				continue
			}
			slice := img.SubImage(src).(*ebiten.Image)

			var op ebiten.DrawImageOptions
			// Cell space: centred on the cell, posed, then placed in the tile.
			op.GeoM.Scale(cw/float64(src.Dx()), ch/float64(src.Dy()))
			op.GeoM.Translate(-cw/2, -ch/2)
			op.GeoM.Scale(cp.Scale*tiltFactor(cp.RotY), cp.Scale*tiltFactor(cp.RotX))
			op.GeoM.Translate(box.X+(float64(c.Col)+0.5)*cw, box.Y+(float64(c.Row)+0.5)*ch+cp.Y)
			// Tile pose around the tile centre.
			tc := box.Center()
			op.GeoM.Translate(-tc.X, -tc.Y)
			op.GeoM.Scale(tp.Scale*tiltFactor(tp.RotY), tp.Scale*tiltFactor(tp.RotX))
			op.GeoM.Translate(tc.X, tc.Y+tp.Y)
			op.ColorScale.ScaleAlpha(float32(alpha))
			op.Filter = ebiten.FilterLinear
			screen.DrawImage(slice, &op)
			drawn++
		}
	}
	return drawn
}

// tiltFactor projects a rotation about one axis onto the other axis'
// length, which is how a tilt reads without perspective.
func tiltFactor(deg float64) float64 {
	return math.Abs(math.Cos(deg * math.Pi / 180))
}

// blurFade softens alpha in place of a real blur.
func blurFade(blur float64) float64 {
	return 1 - math.Min(blur/16, 0.5)
}

func (s *IntroSequencer) drawRipples(screen *ebiten.Image, w, h float64) {
	base := math.Min(w*rippleViewport, rippleMaxDiameter) / 2
	cx, cy := float32(w/2), float32(h/2)
	for _, r := range s.ripples {
		if r.scale == nil {
			continue
		}
		op := r.opacity.Value()
		if op <= 0 {
			continue
		}
		radius := float32(base * r.scale.Value())
		vector.StrokeCircle(screen, cx, cy, radius, 1, Color{1, 1, 1, rippleBorder * op}.toRGBA(), true)
		vector.StrokeCircle(screen, cx, cy, radius, 14, Color{1, 1, 1, rippleGlow * op * 0.25}.toRGBA(), true)
	}
}

// drawOverlay draws the black overlay with the wordmark punched out. During
// the split the wordmark moves toward its handoff placement.
func (s *IntroSequencer) drawOverlay(screen *ebiten.Image, w, h, opacity float64) {
	iw, ih := int(w), int(h)
	if s.gfx.overlay == nil || s.gfx.overlay.Bounds().Dx() != iw || s.gfx.overlay.Bounds().Dy() != ih {
		if s.gfx.overlay != nil {
			s.gfx.overlay.Deallocate()
		}
		s.gfx.overlay = ebiten.NewImage(iw, ih)
	}
	ov := s.gfx.overlay
	ov.Fill(Color{0, 0, 0, overlayOpacity}.toRGBA())

	scale, ox, oy := artboard(w, h)
	size, spacing := wordmarkSize(s.tier)
	cx, cy := ox+wordmarkX*scale, oy+wordmarkY*scale
	k := scale

	if s.phase == PhaseSplitting && s.cfg.Timings.Split > 0 {
		lin := clamp01(float64(s.now.Sub(s.phaseAt)) / float64(s.cfg.Timings.Split))
		p := float64(splitEase(float32(lin), 0, 1, 1))
		ho := s.Handoff(w, h)
		k = scale * lerp(1, ho.Scale, p)
		cx = lerp(cx, ho.Center.X, p)
		cy = lerp(cy, ho.Center.Y, p)
	}

	if face := s.gfx.face(size * k); face != nil {
		drawSpaced(ov, s.cfg.Wordmark, face, cx, cy, spacing*k)
	}

	var op ebiten.DrawImageOptions
	op.ColorScale.ScaleAlpha(float32(opacity))
	screen.DrawImage(ov, &op)
}

// drawSpaced erases word from dst centred on (cx, cy) with extra spacing
// between letters.
func drawSpaced(dst *ebiten.Image, word string, face *text.GoTextFace, cx, cy, spacing float64) {
	runes := []rune(word)
	total := 0.0
	adv := make([]float64, len(runes))
	for i, r := range runes {
		adv[i] = text.Advance(string(r), face)
		total += adv[i]
	}
	total += spacing * float64(max(len(runes)-1, 0))

	m := face.Metrics()
	x := cx - total/2
	y := cy - (m.HAscent+m.HDescent)/2
	for i, r := range runes {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, y)
		op.Blend = ebiten.BlendDestinationOut
		text.Draw(dst, string(r), face, op)
		x += adv[i] + spacing
	}
}

func (s *IntroSequencer) drawSkip(screen *ebiten.Image, w, h float64) {
	btn := SkipButtonBounds(w, h, s.tier)
	fill := Color{1, 1, 1, 0.06}
	border := Color{1, 1, 1, 0.22}
	mx, my := ebiten.CursorPosition()
	if btn.Contains(float64(mx), float64(my)) {
		fill = Color{0, 240.0 / 255, 1, 0.12}
		border = Color{0, 240.0 / 255, 1, 0.5}
	}
	x, y := float32(btn.X), float32(btn.Y)
	vector.DrawFilledRect(screen, x, y, float32(btn.Width), float32(btn.Height), fill.toRGBA(), true)
	vector.StrokeRect(screen, x, y, float32(btn.Width), float32(btn.Height), 1, border.toRGBA(), true)
	pad := (btn.Width - 4*6) / 2
	ebitenutil.DebugPrintAt(screen, "SKIP", int(btn.X+pad), int(btn.Y+(btn.Height-16)/2))
}
