package stagefx

import (
	"errors"
	"math"
)

// ErrStaleBuffer is returned when a frame buffer and a glyph buffer come from
// different generations (their sizes disagree).
var ErrStaleBuffer = errors.New("stagefx: frame buffer does not match glyph buffer")

// Field shape, as fractions of the smaller surface dimension.
const (
	fieldRadiusFrac   = 0.48
	fieldStrengthFrac = 0.16
	fieldSwirlFrac    = 0.065
	fieldDeadZoneFrac = 0.06 // of the radius

	swirlPhaseRate = 2.6
	swirlDistRate  = 0.09

	survivalBase  = 0.35
	survivalSlope = 0.55
	influenceFade = 0.72
)

// FieldParams sizes the displacement field. All lengths are in device pixels.
type FieldParams struct {
	Radius   float64
	Strength float64
	Swirl    float64
	DeadZone float64
}

// NewFieldParams scales the field to a width×height surface.
func NewFieldParams(width, height int) FieldParams {
	m := float64(min(width, height))
	r := m * fieldRadiusFrac
	return FieldParams{
		Radius:   r,
		Strength: m * fieldStrengthFrac,
		Swirl:    m * fieldSwirlFrac,
		DeadZone: r * fieldDeadZoneFrac,
	}
}

// DisplaceStats counts what happened to the opaque pixels in one pass.
type DisplaceStats struct {
	Influenced int // inside the radius, outside the dead zone
	Dropped    int // influenced but culled by the survival noise
	Clipped    int // destination fell outside the surface
}

// survivalNoise is a deterministic hash of (x, y, phase) in [0, 1).
func survivalNoise(x, y int, phase float64) float64 {
	v := math.Abs(math.Sin((float64(x)*12.9898+float64(y)*78.233+phase*130)*0.017) * 43758.5453)
	return v - math.Floor(v)
}

// Displace renders one shattered frame of g into dst around the pointer at
// (mx, my). dst is first reset to the pristine glyph pixels. Each opaque
// pixel inside the field, outside the dead zone, is removed from its source
// location and, if it survives the noise gate, redrawn at a destination
// pushed radially away from the pointer and swirled tangentially. Pixels in
// the dead zone stay in place. Every opaque pixel inside the radius is
// written with its alpha faded; pixels outside it are left as they were.
func Displace(dst *PixelBuffer, g *GlyphPixelBuffer, mx, my, phase float64, p FieldParams) (DisplaceStats, error) {
	var stats DisplaceStats
	if g == nil || g.Original == nil || !dst.CopyFrom(g.Original) {
		return stats, ErrStaleBuffer
	}
	src := g.Original.Pix
	out := dst.Pix
	limit := len(src)

	for _, si := range g.Opaque {
		if si < 0 || si+3 >= limit {
			return stats, ErrStaleBuffer
		}
		x, y := g.Original.Coords(si)
		dx, dy := float64(x)-mx, float64(y)-my
		d := math.Hypot(dx, dy)

		tx, ty := x, y
		if d >= p.DeadZone && d < p.Radius {
			stats.Influenced++
			t := (p.Radius - d) / p.Radius
			sin, cos := math.Sincos(math.Atan2(dy, dx))
			radial := t * t * p.Strength
			swirl := t * p.Swirl * math.Sin(phase*swirlPhaseRate+d*swirlDistRate)
			tx = int(math.Round(float64(x) + cos*radial - sin*swirl))
			ty = int(math.Round(float64(y) + sin*radial + cos*swirl))

			clear(out[si : si+4])
			if survivalNoise(x, y, phase) >= survivalBase+t*survivalSlope {
				stats.Dropped++
				continue
			}
		}

		if !dst.InBounds(tx, ty) {
			stats.Clipped++
			continue
		}
		di := dst.Offset(tx, ty)
		if d >= p.Radius {
			copy(out[di:di+4], src[si:si+4])
			continue
		}
		// Premultiplied, so fading alpha fades the color channels with it.
		for c := 0; c < 4; c++ {
			out[di+c] = clampByte(float64(src[si+c]) * influenceFade)
		}
	}
	return stats, nil
}
