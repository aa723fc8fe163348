package stagefx

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

// blockRasterizer paints an opaque white rectangle over the middle half of
// the surface, shifted by OffsetX.
type blockRasterizer struct {
	calls int
	last  GlyphRequest
	err   error
}

func (r *blockRasterizer) Rasterize(req GlyphRequest) (*PixelBuffer, error) {
	r.calls++
	r.last = req
	if r.err != nil {
		return nil, r.err
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, ErrNoSurface
	}
	pb := NewPixelBuffer(req.Width, req.Height)
	if req.Text == "" {
		return pb, nil
	}
	dpr := req.PixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	shift := int(math.Round(req.OffsetX * dpr))
	for y := req.Height / 4; y < req.Height*3/4; y++ {
		for x := req.Width / 4; x < req.Width*3/4; x++ {
			pb.Set(x+shift, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return pb, nil
}

// --- Sizing ---

func TestGlyphRequestFontSize(t *testing.T) {
	st := DefaultGlyphStyle()
	tests := []struct {
		name string
		req  GlyphRequest
		want float64
	}{
		{"wide desktop", GlyphRequest{Width: 800, Height: 300, PixelRatio: 1}, 246},
		{"narrow screen", GlyphRequest{Width: 600, Height: 300, PixelRatio: 1}, 180},
		{"coarse pointer", GlyphRequest{Width: 1000, Height: 300, PixelRatio: 1, Coarse: true}, 216},
		{"retina", GlyphRequest{Width: 1600, Height: 600, PixelRatio: 2}, 492},
		{"retina narrow css", GlyphRequest{Width: 1400, Height: 600, PixelRatio: 2}, 420},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Style = st
			if got := tt.req.fontSize(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("fontSize = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- Glyph buffer ---

func TestBuildGlyphBuffer(t *testing.T) {
	r := &blockRasterizer{}
	g, err := BuildGlyphBuffer(r, GlyphRequest{Text: "EHDU", Width: 40, Height: 20, PixelRatio: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if g.Generation != 7 || g.Text != "EHDU" {
		t.Errorf("generation %d text %q", g.Generation, g.Text)
	}
	if want := 20 * 10; len(g.Opaque) != want {
		t.Errorf("opaque = %d, want %d", len(g.Opaque), want)
	}
	for _, off := range g.Opaque {
		if g.Original.Pix[off+3] == 0 {
			t.Fatalf("offset %d is transparent", off)
		}
	}
}

func TestBuildGlyphBufferErrors(t *testing.T) {
	if _, err := BuildGlyphBuffer(nil, GlyphRequest{Width: 1, Height: 1}, 1); !errors.Is(err, ErrNoFont) {
		t.Errorf("nil rasterizer err = %v, want ErrNoFont", err)
	}
	boom := errors.New("boom")
	if _, err := BuildGlyphBuffer(&blockRasterizer{err: boom}, GlyphRequest{Width: 1, Height: 1}, 1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestOpaqueOffsets(t *testing.T) {
	pb := NewPixelBuffer(3, 2)
	pb.Set(0, 0, color.RGBA{A: 1})
	pb.Set(2, 1, color.RGBA{A: 255})
	pb.Set(1, 1, color.RGBA{R: 200}) // color without alpha is not opaque
	got := opaqueOffsets(pb)
	want := []int{pb.Offset(0, 0), pb.Offset(2, 1)}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("opaqueOffsets = %v, want %v", got, want)
	}
	if got := opaqueOffsets(NewPixelBuffer(4, 4)); len(got) != 0 {
		t.Errorf("empty buffer has %d opaque pixels", len(got))
	}
}

// --- Style passes ---

func TestBoxBlur(t *testing.T) {
	const w, h = 21, 21
	t.Run("zero radius copies", func(t *testing.T) {
		src := make([]float32, w*h)
		src[5] = 1
		out := boxBlur(src, w, h, 0, 3)
		if out[5] != 1 {
			t.Error("radius 0 should return the input")
		}
		out[5] = 0
		if src[5] != 1 {
			t.Error("boxBlur must not modify its input")
		}
	})
	t.Run("uniform stays uniform", func(t *testing.T) {
		src := make([]float32, w*h)
		for i := range src {
			src[i] = 0.5
		}
		for i, v := range boxBlur(src, w, h, 3, 3) {
			if math.Abs(float64(v)-0.5) > 1e-5 {
				t.Fatalf("pixel %d = %v, want 0.5", i, v)
			}
		}
	})
	t.Run("impulse spreads and keeps its mass", func(t *testing.T) {
		src := make([]float32, w*h)
		src[10*w+10] = 1
		out := boxBlur(src, w, h, 2, 1)
		if got := out[10*w+10]; math.Abs(float64(got)-1.0/25) > 1e-6 {
			t.Errorf("centre = %v, want 1/25", got)
		}
		if out[10*w+13] != 0 {
			t.Errorf("pixel outside the kernel = %v, want 0", out[10*w+13])
		}
		var sum float64
		for _, v := range out {
			sum += float64(v)
		}
		if math.Abs(sum-1) > 1e-5 {
			t.Errorf("mass = %v, want 1", sum)
		}
	})
}

func TestFillSolid(t *testing.T) {
	pb := NewPixelBuffer(2, 1)
	fillSolid(pb, []float32{1, 0}, Color{R: 1, A: 0.5})
	if got := pb.At(0, 0); got != (color.RGBA{R: 128, A: 128}) {
		t.Errorf("covered pixel = %v, want half red premultiplied", got)
	}
	if got := pb.At(1, 0); got.A != 0 {
		t.Errorf("uncovered pixel = %v, want transparent", got)
	}
	fillSolid(pb, []float32{1, 1}, Color{R: 1, A: 0})
	if got := pb.At(1, 0); got.A != 0 {
		t.Error("transparent color should not paint")
	}
}

func TestFillGradientRunsLeftToRight(t *testing.T) {
	pb := NewPixelBuffer(10, 1)
	cov := make([]float32, 10)
	for i := range cov {
		cov[i] = 1
	}
	fillGradient(pb, cov, []GradientStop{
		{Offset: 0, Color: Color{R: 1, A: 1}},
		{Offset: 1, Color: Color{B: 1, A: 1}},
	})
	left, right := pb.At(0, 0), pb.At(9, 0)
	if left.R <= left.B || right.B <= right.R {
		t.Errorf("left %v should be red, right %v blue", left, right)
	}
	if left.A != 255 || right.A != 255 {
		t.Errorf("alpha %d/%d, want opaque", left.A, right.A)
	}
	before := pb.Clone()
	fillGradient(pb, cov, nil)
	if !pb.Equal(before) {
		t.Error("no stops should paint nothing")
	}
}

// --- Text rasterizer ---

func TestTextRasterizer(t *testing.T) {
	r, err := NewTextRasterizer(nil)
	if err != nil {
		t.Fatalf("NewTextRasterizer: %v", err)
	}
	defer r.Close()

	req := GlyphRequest{Text: "EHDU", Width: 400, Height: 160, PixelRatio: 1, Style: DefaultGlyphStyle()}
	pb, err := r.Rasterize(req)
	if err != nil {
		t.Fatal(err)
	}
	if pb.Width != 400 || pb.Height != 160 {
		t.Fatalf("size = %dx%d", pb.Width, pb.Height)
	}
	opaque := opaqueOffsets(pb)
	if len(opaque) == 0 {
		t.Fatal("no glyph pixels rendered")
	}
	var sumX float64
	for _, off := range opaque {
		x, _ := pb.Coords(off)
		sumX += float64(x)
	}
	if mean := sumX / float64(len(opaque)); math.Abs(mean-200) > 40 {
		t.Errorf("glyphs centred at x=%.1f, want near 200", mean)
	}

	req.Text = ""
	empty, err := r.Rasterize(req)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(opaqueOffsets(empty)); n != 0 {
		t.Errorf("empty text rendered %d pixels", n)
	}
}

func TestTextRasterizerErrors(t *testing.T) {
	r, err := NewTextRasterizer(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.Rasterize(GlyphRequest{Text: "A", Width: 0, Height: 10}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("zero width err = %v, want ErrNoSurface", err)
	}

	var nilR *TextRasterizer
	if _, err := nilR.Rasterize(GlyphRequest{Text: "A", Width: 10, Height: 10}); !errors.Is(err, ErrNoFont) {
		t.Errorf("nil rasterizer err = %v, want ErrNoFont", err)
	}

	if _, err := NewTextRasterizer([]byte("not a font")); !errors.Is(err, ErrNoFont) {
		t.Errorf("bad font err = %v, want ErrNoFont", err)
	}
}
