package stagefx

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
)

var (
	// ErrNoSurface is returned when a glyph buffer is requested for an empty surface.
	ErrNoSurface = errors.New("stagefx: empty drawing surface")
	// ErrNoFont is returned when the rasterizer has no usable font.
	ErrNoFont = errors.New("stagefx: no usable font")
)

// GradientStop is one color stop of the wordmark's horizontal gradient.
type GradientStop struct {
	Offset float64
	Color  Color
}

// GlyphStyle describes how the wordmark is painted: a faint base fill, a
// glowing gradient fill, and a highlight fill, in that order.
type GlyphStyle struct {
	Base      Color
	Gradient  []GradientStop
	Glow      Color
	Highlight Color
	// GlowRadius is the glow blur in CSS pixels.
	GlowRadius float64

	// The font size is the smaller of height×HeightFill and width×WidthFill,
	// or the Small* pair on coarse pointers and containers narrower than
	// SmallScreenWidth CSS pixels.
	HeightFill       float64
	WidthFill        float64
	SmallHeightFill  float64
	SmallWidthFill   float64
	SmallScreenWidth float64
	// BaselineNudge moves the text down by this fraction of the font size.
	BaselineNudge float64
}

// DefaultGlyphStyle returns the cyan/purple wordmark style.
func DefaultGlyphStyle() GlyphStyle {
	cyan := Color{R: 0, G: 240.0 / 255, B: 1, A: 1}
	purple := Color{R: 139.0 / 255, G: 0, B: 1, A: 1}
	return GlyphStyle{
		Base: ColorWhite.WithAlpha(0.05),
		Gradient: []GradientStop{
			{Offset: 0, Color: cyan},
			{Offset: 0.5, Color: purple},
			{Offset: 1, Color: cyan},
		},
		Glow:             cyan.WithAlpha(0.42),
		Highlight:        ColorWhite.WithAlpha(0.3),
		GlowRadius:       14,
		HeightFill:       0.82,
		WidthFill:        0.34,
		SmallHeightFill:  0.72,
		SmallWidthFill:   0.3,
		SmallScreenWidth: 768,
		BaselineNudge:    0.03,
	}
}

// GlyphRequest asks a rasterizer for one styled snapshot of text.
type GlyphRequest struct {
	Text string
	// Width and Height are the surface size in device pixels.
	Width, Height int
	PixelRatio    float64
	Coarse        bool
	// OffsetX shifts the text horizontally, in CSS pixels.
	OffsetX float64
	Style   GlyphStyle
}

// cssWidth returns the request width in CSS pixels.
func (r GlyphRequest) cssWidth() float64 {
	dpr := r.PixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	return float64(r.Width) / dpr
}

// GlyphRasterizer paints styled text into a new pixel buffer.
type GlyphRasterizer interface {
	Rasterize(req GlyphRequest) (*PixelBuffer, error)
}

// TextRasterizer is the default GlyphRasterizer. It shapes and rasterizes
// glyph coverage with gg's text package and composites the style passes on
// the CPU.
type TextRasterizer struct {
	source *text.FontSource
}

// NewTextRasterizer parses TTF/OTF font data. Nil data selects the bundled
// Go Bold face.
func NewTextRasterizer(fontData []byte) (*TextRasterizer, error) {
	if fontData == nil {
		fontData = gobold.TTF
	}
	src, err := text.NewFontSource(fontData)
	if err != nil {
		return nil, fmt.Errorf("load font: %w: %w", ErrNoFont, err)
	}
	return &TextRasterizer{source: src}, nil
}

// Close releases the font source.
func (r *TextRasterizer) Close() error {
	if r.source == nil {
		return nil
	}
	return r.source.Close()
}

// fontSize returns the face size in device pixels.
func (req GlyphRequest) fontSize() float64 {
	st := req.Style
	hf, wf := st.HeightFill, st.WidthFill
	if req.Coarse || req.cssWidth() < st.SmallScreenWidth {
		hf, wf = st.SmallHeightFill, st.SmallWidthFill
	}
	return math.Min(float64(req.Height)*hf, float64(req.Width)*wf)
}

// Rasterize implements GlyphRasterizer.
func (r *TextRasterizer) Rasterize(req GlyphRequest) (*PixelBuffer, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, ErrNoSurface
	}
	if r == nil || r.source == nil {
		return nil, ErrNoFont
	}
	dpr := req.PixelRatio
	if dpr <= 0 {
		dpr = 1
	}

	out := NewPixelBuffer(req.Width, req.Height)
	size := req.fontSize()
	if req.Text == "" || size < 1 {
		return out, nil
	}

	face := r.source.Face(size)
	m := face.Metrics()
	w, _ := text.Measure(req.Text, face)
	cx := float64(req.Width)/2 + req.OffsetX*dpr
	cy := float64(req.Height)/2 + size*req.Style.BaselineNudge
	// Centre the em box on cy the way a middle text baseline does.
	baseline := cy + (m.Ascent-m.Descent)/2

	cov := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	text.Draw(cov, req.Text, face, cx-w/2, baseline, color.White)
	coverage := alphaPlane(cov)

	st := req.Style
	fillSolid(out, coverage, st.Base)
	if st.Glow.A > 0 && st.GlowRadius > 0 {
		glow := boxBlur(coverage, req.Width, req.Height, int(math.Round(st.GlowRadius*dpr/2)), 3)
		fillSolid(out, glow, st.Glow)
	}
	fillGradient(out, coverage, st.Gradient)
	fillSolid(out, coverage, st.Highlight)
	return out, nil
}

// alphaPlane extracts the alpha channel as coverage in [0, 1].
func alphaPlane(img *image.RGBA) []float32 {
	b := img.Bounds()
	plane := make([]float32, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			plane[y*b.Dx()+x] = float32(row[x*4+3]) / 255
		}
	}
	return plane
}

// fillSolid composites c, modulated by coverage, over dst.
func fillSolid(dst *PixelBuffer, coverage []float32, c Color) {
	if c.A <= 0 {
		return
	}
	for i, cv := range coverage {
		if cv <= 0 {
			continue
		}
		a := float64(cv) * c.A * 255
		dst.blendOver(i*4, c.R*a, c.G*a, c.B*a, a)
	}
}

// fillGradient composites a left-to-right linear gradient spanning the
// surface width, modulated by coverage, over dst.
func fillGradient(dst *PixelBuffer, coverage []float32, stops []GradientStop) {
	if len(stops) == 0 {
		return
	}
	brush := gg.NewLinearGradientBrush(0, 0, float64(dst.Width), 0)
	for _, s := range stops {
		brush.AddColorStop(s.Offset, gg.RGBA2(s.Color.R, s.Color.G, s.Color.B, s.Color.A))
	}
	// The gradient is horizontal, so one sample per column is enough.
	column := make([]gg.RGBA, dst.Width)
	for x := range column {
		column[x] = brush.ColorAt(float64(x)+0.5, 0)
	}
	for i, cv := range coverage {
		if cv <= 0 {
			continue
		}
		c := column[i%dst.Width]
		a := float64(cv) * c.A * 255
		dst.blendOver(i*4, c.R*a, c.G*a, c.B*a, a)
	}
}

// boxBlur approximates a gaussian blur of a coverage plane with repeated
// separable box passes.
func boxBlur(src []float32, w, h, radius, passes int) []float32 {
	out := make([]float32, len(src))
	copy(out, src)
	if radius <= 0 {
		return out
	}
	tmp := make([]float32, len(src))
	norm := 1 / float32(2*radius+1)
	for p := 0; p < passes; p++ {
		for y := 0; y < h; y++ {
			row := y * w
			var sum float32
			for x := -radius; x <= radius; x++ {
				sum += out[row+clampInt(x, 0, w-1)]
			}
			for x := 0; x < w; x++ {
				tmp[row+x] = sum * norm
				sum += out[row+clampInt(x+radius+1, 0, w-1)] - out[row+clampInt(x-radius, 0, w-1)]
			}
		}
		for x := 0; x < w; x++ {
			var sum float32
			for y := -radius; y <= radius; y++ {
				sum += tmp[clampInt(y, 0, h-1)*w+x]
			}
			for y := 0; y < h; y++ {
				out[y*w+x] = sum * norm
				sum += tmp[clampInt(y+radius+1, 0, h-1)*w+x] - tmp[clampInt(y-radius, 0, h-1)*w+x]
			}
		}
	}
	return out
}

// GlyphPixelBuffer is one styled snapshot of the wordmark plus the byte
// offsets of every pixel with non-zero alpha. It is rebuilt whenever the
// text, the surface size or the pixel ratio changes, and belongs to exactly
// one LiquidText.
type GlyphPixelBuffer struct {
	Original   *PixelBuffer
	Opaque     []int
	Generation uint64
	Text       string
}

// BuildGlyphBuffer rasterizes req and indexes its opaque pixels.
func BuildGlyphBuffer(r GlyphRasterizer, req GlyphRequest, generation uint64) (*GlyphPixelBuffer, error) {
	if r == nil {
		return nil, ErrNoFont
	}
	pb, err := r.Rasterize(req)
	if err != nil {
		return nil, fmt.Errorf("rasterize %q: %w", req.Text, err)
	}
	return &GlyphPixelBuffer{
		Original:   pb,
		Opaque:     opaqueOffsets(pb),
		Generation: generation,
		Text:       req.Text,
	}, nil
}

// opaqueOffsets lists the byte offset of every pixel whose alpha is non-zero.
func opaqueOffsets(pb *PixelBuffer) []int {
	var offsets []int
	for i := 3; i < len(pb.Pix); i += 4 {
		if pb.Pix[i] > 0 {
			offsets = append(offsets, i-3)
		}
	}
	return offsets
}
