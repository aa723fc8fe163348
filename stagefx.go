package stagefx

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is written to a pixel buffer or
// submitted to ebiten.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the base of the default glyph fills.
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is the intro backdrop color.
var ColorBlack = Color{0, 0, 0, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// WithAlpha returns a copy of c with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// PointerEventKind identifies a kind of pointer event delivered by PlatformSignals.
type PointerEventKind uint8

const (
	PointerEnter PointerEventKind = iota // pointer entered the observed container
	PointerMove                          // pointer moved inside the container
	PointerLeave                         // pointer left the container
)

// String returns the event kind's name.
func (k PointerEventKind) String() string {
	switch k {
	case PointerEnter:
		return "enter"
	case PointerMove:
		return "move"
	case PointerLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// PointerEvent is a pointer notification in container-local CSS pixels.
type PointerEvent struct {
	Kind PointerEventKind
	X, Y float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
