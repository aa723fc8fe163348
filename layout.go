package stagefx

import "math"

// LoaderImageCount is the number of image slots the intro grid draws from.
const LoaderImageCount = 8

// TileSpec is one rectangular region of the intro grid. Columns and rows are
// 1-based, matching CSS grid lines.
type TileSpec struct {
	Key        string
	ColStart   int
	RowStart   int
	ColSpan    int
	RowSpan    int
	ImageIndex int
}

// center returns the tile's centre in grid cell units.
func (t TileSpec) center() (float64, float64) {
	return float64(t.ColStart) + float64(t.ColSpan)/2 - 0.5,
		float64(t.RowStart) + float64(t.RowSpan)/2 - 0.5
}

// TileLayout is a fixed tile table for one device tier.
type TileLayout struct {
	Columns int
	Rows    int
	Tiles   []TileSpec
}

// Center returns the geometric centre of the grid in cell units, measured
// between the centres of the first and last cells.
func (l TileLayout) Center() (cx, cy float64) {
	return float64(1+l.Columns) / 2, float64(1+l.Rows) / 2
}

// MaxDistance is the distance from the grid centre to the centre of a corner
// cell. It normalises tile and cell distances into [0, 1].
func (l TileLayout) MaxDistance() float64 {
	cx, cy := l.Center()
	d := math.Hypot(cx-1, cy-1)
	if d == 0 {
		return 1
	}
	return d
}

// Cell returns the grid rectangle (in cell units, 0-based) covered by t,
// scaled into a viewport of the given size.
func (l TileLayout) Cell(t TileSpec, viewport Rect) Rect {
	cw := viewport.Width / float64(l.Columns)
	ch := viewport.Height / float64(l.Rows)
	return Rect{
		X:      viewport.X + float64(t.ColStart-1)*cw,
		Y:      viewport.Y + float64(t.RowStart-1)*ch,
		Width:  float64(t.ColSpan) * cw,
		Height: float64(t.RowSpan) * ch,
	}
}

var desktopLayout = TileLayout{
	Columns: 10,
	Rows:    10,
	Tiles: []TileSpec{
		{Key: "div1", ColStart: 1, RowStart: 1, ColSpan: 2, RowSpan: 3, ImageIndex: 0},
		{Key: "div2", ColStart: 3, RowStart: 1, ColSpan: 5, RowSpan: 3, ImageIndex: 1},
		{Key: "div3", ColStart: 8, RowStart: 1, ColSpan: 3, RowSpan: 5, ImageIndex: 2},
		{Key: "div5", ColStart: 1, RowStart: 4, ColSpan: 4, RowSpan: 3, ImageIndex: 3},
		{Key: "div6", ColStart: 5, RowStart: 6, ColSpan: 6, RowSpan: 5, ImageIndex: 4},
		{Key: "div7", ColStart: 5, RowStart: 4, ColSpan: 3, RowSpan: 2, ImageIndex: 5},
		{Key: "div8", ColStart: 1, RowStart: 7, ColSpan: 2, RowSpan: 4, ImageIndex: 6},
		{Key: "div9", ColStart: 3, RowStart: 7, ColSpan: 2, RowSpan: 4, ImageIndex: 7},
	},
}

// Mobile keeps five of the eight images on a narrower grid.
var mobileLayout = TileLayout{
	Columns: 6,
	Rows:    10,
	Tiles: []TileSpec{
		{Key: "div1", ColStart: 1, RowStart: 1, ColSpan: 3, RowSpan: 3, ImageIndex: 0},
		{Key: "div2", ColStart: 4, RowStart: 1, ColSpan: 3, RowSpan: 3, ImageIndex: 1},
		{Key: "div3", ColStart: 1, RowStart: 7, ColSpan: 3, RowSpan: 3, ImageIndex: 2},
		{Key: "div5", ColStart: 4, RowStart: 7, ColSpan: 3, RowSpan: 3, ImageIndex: 3},
		{Key: "div9", ColStart: 2, RowStart: 4, ColSpan: 4, RowSpan: 3, ImageIndex: 7},
	},
}

// LayoutFor returns the tile table for a device tier. Tablets share the
// desktop table.
func LayoutFor(tier DeviceTier) TileLayout {
	if tier == TierMobile {
		return mobileLayout
	}
	return desktopLayout
}
