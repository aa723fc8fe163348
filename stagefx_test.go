package stagefx

import (
	"image/color"
	"testing"
)

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want color.RGBA
	}{
		{"white", ColorWhite, color.RGBA{255, 255, 255, 255}},
		{"black", ColorBlack, color.RGBA{0, 0, 0, 255}},
		{"half red", Color{R: 1, A: 0.5}, color.RGBA{R: 128, A: 128}},
		{"clamped", Color{R: 2, G: -1, A: 3}, color.RGBA{R: 255, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.toRGBA(); got != tt.want {
				t.Errorf("toRGBA = %v, want %v", got, tt.want)
			}
		})
	}
	if c := ColorWhite.WithAlpha(0.25); c.A != 0.25 || c.R != 1 {
		t.Errorf("WithAlpha = %+v", c)
	}
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	if !r.Contains(10, 20) || !r.Contains(40, 60) || r.Contains(41, 30) {
		t.Error("Contains should include edges only")
	}
	if c := r.Center(); c != (Vec2{X: 25, Y: 40}) {
		t.Errorf("Center = %+v", c)
	}
	if r.Empty() || !(Rect{Width: 5}).Empty() {
		t.Error("Empty mismatch")
	}
}
