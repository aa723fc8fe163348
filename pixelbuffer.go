package stagefx

import (
	"bytes"
	"image"
	"image/color"
)

// PixelBuffer is a flat row-major RGBA buffer, 4 bytes per pixel, holding
// premultiplied color the way image.RGBA does. Access goes through At, Set
// and Offset so callers never do their own stride arithmetic.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer allocates a transparent buffer. Non-positive sizes are
// raised to 1×1.
func NewPixelBuffer(width, height int) *PixelBuffer {
	width = max(width, 1)
	height = max(height, 1)
	return &PixelBuffer{Width: width, Height: height, Pix: make([]byte, 4*width*height)}
}

// PixelBufferFromImage copies img into a new buffer.
func PixelBufferFromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	pb := NewPixelBuffer(b.Dx(), b.Dy())
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() {
		copy(pb.Pix, rgba.Pix)
		return pb
	}
	for y := 0; y < pb.Height; y++ {
		for x := 0; x < pb.Width; x++ {
			pb.Set(x, y, color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA))
		}
	}
	return pb
}

// InBounds reports whether (x, y) addresses a pixel of the buffer.
func (p *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && x < p.Width && y >= 0 && y < p.Height
}

// Offset returns the byte offset of pixel (x, y). The caller must ensure the
// pixel is in bounds.
func (p *PixelBuffer) Offset(x, y int) int {
	return (y*p.Width + x) * 4
}

// Coords converts a byte offset back to pixel coordinates.
func (p *PixelBuffer) Coords(offset int) (x, y int) {
	id := offset / 4
	return id % p.Width, id / p.Width
}

// At returns the pixel at (x, y), or transparent black outside the buffer.
func (p *PixelBuffer) At(x, y int) color.RGBA {
	if !p.InBounds(x, y) {
		return color.RGBA{}
	}
	i := p.Offset(x, y)
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: p.Pix[i+3]}
}

// Set writes the pixel at (x, y). Writes outside the buffer are dropped.
func (p *PixelBuffer) Set(x, y int, c color.RGBA) {
	if !p.InBounds(x, y) {
		return
	}
	i := p.Offset(x, y)
	p.Pix[i] = c.R
	p.Pix[i+1] = c.G
	p.Pix[i+2] = c.B
	p.Pix[i+3] = c.A
}

// SameSize reports whether p and other have identical dimensions.
func (p *PixelBuffer) SameSize(other *PixelBuffer) bool {
	return other != nil && p.Width == other.Width && p.Height == other.Height
}

// Clone returns a deep copy.
func (p *PixelBuffer) Clone() *PixelBuffer {
	c := &PixelBuffer{Width: p.Width, Height: p.Height, Pix: make([]byte, len(p.Pix))}
	copy(c.Pix, p.Pix)
	return c
}

// CopyFrom overwrites p with src. Returns false, leaving p untouched, when
// the sizes differ.
func (p *PixelBuffer) CopyFrom(src *PixelBuffer) bool {
	if !p.SameSize(src) {
		return false
	}
	copy(p.Pix, src.Pix)
	return true
}

// CopyShifted overwrites p with src translated dx pixels horizontally.
// Columns shifted in from outside src are transparent.
func (p *PixelBuffer) CopyShifted(src *PixelBuffer, dx int) bool {
	if !p.SameSize(src) {
		return false
	}
	p.Clear()
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			sx := x - dx
			if sx < 0 || sx >= src.Width {
				continue
			}
			d, s := p.Offset(x, y), src.Offset(sx, y)
			copy(p.Pix[d:d+4], src.Pix[s:s+4])
		}
	}
	return true
}

// Equal reports whether p and other hold identical pixels.
func (p *PixelBuffer) Equal(other *PixelBuffer) bool {
	return p.SameSize(other) && bytes.Equal(p.Pix, other.Pix)
}

// Clear makes every pixel transparent.
func (p *PixelBuffer) Clear() {
	clear(p.Pix)
}

// RGBA returns an image.RGBA view sharing p's pixel memory.
func (p *PixelBuffer) RGBA() *image.RGBA {
	return &image.RGBA{Pix: p.Pix, Stride: 4 * p.Width, Rect: image.Rect(0, 0, p.Width, p.Height)}
}

// blendOver composites a premultiplied source pixel over the pixel at byte
// offset i.
func (p *PixelBuffer) blendOver(i int, r, g, b, a float64) {
	inv := 1 - a/255
	p.Pix[i] = clampByte(r + float64(p.Pix[i])*inv)
	p.Pix[i+1] = clampByte(g + float64(p.Pix[i+1])*inv)
	p.Pix[i+2] = clampByte(b + float64(p.Pix[i+2])*inv)
	p.Pix[i+3] = clampByte(a + float64(p.Pix[i+3])*inv)
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
