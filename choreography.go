package stagefx

import "math"

// Delay weights. Reveal blends global and local distance; split leans on the
// global distance so the break-up reads as one wave from the centre outward.
const (
	tileDelayWeight    = 0.55
	tileJitterAmp      = 0.03
	tileSplitFactor    = 0.85
	cellRevealGlobal   = 0.56
	cellRevealLocal    = 0.11
	cellSplitGlobal    = 0.5
	cellSplitLocal     = 0.08
	cellJitterAmp      = 0.025
	tiltFrequency      = 22.0
	baseLift           = 30.0
	liftFalloff        = 0.55
	minSubCols         = 3
	maxSubCols         = 10
	minSubRows         = 3
	maxSubRows         = 8
	backgroundMidpoint = 50.0
)

// TileRuntime is the per-mount choreography of one tile. Delays are in
// seconds relative to the start of the phase that uses them.
type TileRuntime struct {
	Spec               TileSpec
	Index              int
	CenterDistanceNorm float64
	RevealDelay        float64
	SplitDelay         float64
	// TiltSign alternates the 3-D rotation direction between tiles: +1 or -1.
	TiltSign int
	// Lift is the peak upward travel of the tile's cells during the reveal, in pixels.
	Lift    float64
	SubCols int
	SubRows int
	Cells   []SubCell
}

// SubCell is one slice of a tile's local sub-grid.
type SubCell struct {
	Row, Col           int
	LocalNormDistance  float64
	GlobalNormDistance float64
	RevealDelay        float64
	SplitDelay         float64
	// BackgroundOffsetX and BackgroundOffsetY position the cell's slice of the
	// tile image, in percent.
	BackgroundOffsetX float64
	BackgroundOffsetY float64
}

// tileJitter is a deterministic sine hash of the tile index in [0, tileJitterAmp).
func tileJitter(index int) float64 {
	return (math.Sin(float64(index)*1.31) + 1) * 0.5 * tileJitterAmp
}

// cellJitter is a deterministic sine hash of the cell position in [0, cellJitterAmp].
func cellJitter(col, row int) float64 {
	return (math.Sin(float64(col+1)*1.23+float64(row+1)*0.91) + 1) * 0.5 * cellJitterAmp
}

// baseTileDelay is the jitter-free tile reveal delay for a normalised distance.
func baseTileDelay(norm float64) float64 {
	return norm * tileDelayWeight
}

// tiltSign is sign(sin(delay·22)) with zero mapped to +1.
func tiltSign(delay float64) int {
	if math.Sin(delay*tiltFrequency) >= 0 {
		return 1
	}
	return -1
}

// subGridSize returns the sub-grid density for a tile span on a tier.
func subGridSize(colSpan, rowSpan int, tier DeviceTier) (cols, rows int) {
	colK, rowK := 1.7, 1.5
	if tier == TierMobile {
		colK, rowK = 1.4, 1.2
	}
	cols = clampInt(int(math.Round(float64(colSpan)*colK)), minSubCols, maxSubCols)
	rows = clampInt(int(math.Round(float64(rowSpan)*rowK)), minSubRows, maxSubRows)
	return cols, rows
}

// Choreograph computes the runtime choreography for every tile of the layout.
// The result is deterministic for a given layout and tier.
func Choreograph(layout TileLayout, tier DeviceTier) []TileRuntime {
	cx, cy := layout.Center()
	maxDist := layout.MaxDistance()

	tiles := make([]TileRuntime, len(layout.Tiles))
	for i, spec := range layout.Tiles {
		tx, ty := spec.center()
		norm := math.Min(1, math.Hypot(tx-cx, ty-cy)/maxDist)
		reveal := baseTileDelay(norm) + tileJitter(i)

		rt := TileRuntime{
			Spec:               spec,
			Index:              i,
			CenterDistanceNorm: norm,
			RevealDelay:        reveal,
			SplitDelay:         reveal * tileSplitFactor,
			TiltSign:           tiltSign(reveal),
			Lift:               baseLift * (1 - norm*liftFalloff),
		}
		rt.SubCols, rt.SubRows = subGridSize(spec.ColSpan, spec.RowSpan, tier)
		rt.Cells = subdivide(spec, rt.SubCols, rt.SubRows, cx, cy, maxDist)
		tiles[i] = rt
	}
	return tiles
}

// subdivide splits a tile into its local sub-grid and computes per-cell
// delays from both the local and the grid-wide centre distance.
func subdivide(spec TileSpec, cols, rows int, cx, cy, maxDist float64) []SubCell {
	localCX := float64(cols-1) / 2
	localCY := float64(rows-1) / 2
	localMax := math.Hypot(localCX, localCY)
	if localMax == 0 {
		localMax = 1
	}

	cells := make([]SubCell, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			local := math.Hypot(float64(c)-localCX, float64(r)-localCY) / localMax
			absX := float64(spec.ColStart) + (float64(c)+0.5)/float64(cols)*float64(spec.ColSpan) - 0.5
			absY := float64(spec.RowStart) + (float64(r)+0.5)/float64(rows)*float64(spec.RowSpan) - 0.5
			global := math.Min(1, math.Hypot(absX-cx, absY-cy)/maxDist)
			j := cellJitter(c, r)

			cells = append(cells, SubCell{
				Row:                r,
				Col:                c,
				LocalNormDistance:  local,
				GlobalNormDistance: global,
				RevealDelay:        global*cellRevealGlobal + local*cellRevealLocal + j,
				SplitDelay:         global*cellSplitGlobal + (1-local)*cellSplitLocal + j*0.5,
				BackgroundOffsetX:  backgroundOffset(c, cols),
				BackgroundOffsetY:  backgroundOffset(r, rows),
			})
		}
	}
	return cells
}

func backgroundOffset(i, n int) float64 {
	if n <= 1 {
		return backgroundMidpoint
	}
	return float64(i) / float64(n-1) * 100
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
