package stagefx

import (
	"cmp"
	"math"
	"reflect"
	"slices"
	"testing"
)

// --- Layout tables ---

func TestLayoutForTileCounts(t *testing.T) {
	tests := []struct {
		tier        DeviceTier
		tiles, cols int
	}{
		{TierDesktop, 8, 10},
		{TierTablet, 8, 10},
		{TierMobile, 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			l := LayoutFor(tt.tier)
			if len(l.Tiles) != tt.tiles {
				t.Errorf("tiles = %d, want %d", len(l.Tiles), tt.tiles)
			}
			if l.Columns != tt.cols || l.Rows != 10 {
				t.Errorf("grid = %dx%d, want %dx10", l.Columns, l.Rows, tt.cols)
			}
		})
	}
}

func TestLayoutTilesFitAndDoNotOverlap(t *testing.T) {
	for _, tier := range []DeviceTier{TierDesktop, TierMobile} {
		l := LayoutFor(tier)
		owner := make(map[[2]int]string)
		for _, spec := range l.Tiles {
			if spec.ColStart < 1 || spec.RowStart < 1 ||
				spec.ColStart+spec.ColSpan-1 > l.Columns || spec.RowStart+spec.RowSpan-1 > l.Rows {
				t.Errorf("%v %s: outside the %dx%d grid", tier, spec.Key, l.Columns, l.Rows)
			}
			if spec.ImageIndex < 0 || spec.ImageIndex >= LoaderImageCount {
				t.Errorf("%v %s: image index %d out of range", tier, spec.Key, spec.ImageIndex)
			}
			for c := spec.ColStart; c < spec.ColStart+spec.ColSpan; c++ {
				for r := spec.RowStart; r < spec.RowStart+spec.RowSpan; r++ {
					if prev, ok := owner[[2]int{c, r}]; ok {
						t.Errorf("%v: cell (%d,%d) shared by %s and %s", tier, c, r, prev, spec.Key)
					}
					owner[[2]int{c, r}] = spec.Key
				}
			}
		}
	}
}

func TestLayoutCenterAndMaxDistance(t *testing.T) {
	l := LayoutFor(TierDesktop)
	cx, cy := l.Center()
	if cx != 5.5 || cy != 5.5 {
		t.Errorf("Center = (%v, %v), want (5.5, 5.5)", cx, cy)
	}
	if d := l.MaxDistance(); math.Abs(d-math.Hypot(4.5, 4.5)) > 1e-9 {
		t.Errorf("MaxDistance = %v, want %v", d, math.Hypot(4.5, 4.5))
	}
	if d := (TileLayout{Columns: 1, Rows: 1}).MaxDistance(); d != 1 {
		t.Errorf("1x1 MaxDistance = %v, want 1", d)
	}
}

func TestLayoutCell(t *testing.T) {
	l := LayoutFor(TierDesktop)
	viewport := Rect{X: 10, Y: 20, Width: 1000, Height: 500}
	got := l.Cell(l.Tiles[1], viewport) // div2: cols 3-7, rows 1-3
	want := Rect{X: 210, Y: 20, Width: 500, Height: 150}
	if got != want {
		t.Errorf("Cell = %+v, want %+v", got, want)
	}
}

// --- Choreography ---

func TestChoreographDeterministic(t *testing.T) {
	for _, tier := range []DeviceTier{TierDesktop, TierTablet, TierMobile} {
		a := Choreograph(LayoutFor(tier), tier)
		b := Choreograph(LayoutFor(tier), tier)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%v: two runs differ", tier)
		}
	}
}

func TestChoreographBounds(t *testing.T) {
	for _, tier := range []DeviceTier{TierDesktop, TierMobile} {
		for _, rt := range Choreograph(LayoutFor(tier), tier) {
			if rt.CenterDistanceNorm < 0 || rt.CenterDistanceNorm > 1 {
				t.Errorf("%s: norm %v outside [0, 1]", rt.Spec.Key, rt.CenterDistanceNorm)
			}
			if rt.RevealDelay < 0 || rt.RevealDelay > tileDelayWeight+tileJitterAmp {
				t.Errorf("%s: reveal delay %v out of range", rt.Spec.Key, rt.RevealDelay)
			}
			if math.Abs(rt.SplitDelay-rt.RevealDelay*tileSplitFactor) > 1e-12 {
				t.Errorf("%s: split delay %v, want %v", rt.Spec.Key, rt.SplitDelay, rt.RevealDelay*tileSplitFactor)
			}
			if rt.TiltSign != 1 && rt.TiltSign != -1 {
				t.Errorf("%s: tilt sign %d", rt.Spec.Key, rt.TiltSign)
			}
			if rt.Lift < baseLift*(1-liftFalloff)-1e-9 || rt.Lift > baseLift {
				t.Errorf("%s: lift %v out of range", rt.Spec.Key, rt.Lift)
			}
			if len(rt.Cells) != rt.SubCols*rt.SubRows {
				t.Errorf("%s: %d cells, want %d", rt.Spec.Key, len(rt.Cells), rt.SubCols*rt.SubRows)
			}
			for _, c := range rt.Cells {
				if c.LocalNormDistance < 0 || c.LocalNormDistance > 1+1e-9 ||
					c.GlobalNormDistance < 0 || c.GlobalNormDistance > 1 {
					t.Errorf("%s cell (%d,%d): distances out of range", rt.Spec.Key, c.Col, c.Row)
				}
				if c.RevealDelay < 0 || c.SplitDelay < 0 {
					t.Errorf("%s cell (%d,%d): negative delay", rt.Spec.Key, c.Col, c.Row)
				}
			}
		}
	}
}

func TestChoreographRevealsFromCentre(t *testing.T) {
	for _, tier := range []DeviceTier{TierDesktop, TierMobile} {
		t.Run(tier.String(), func(t *testing.T) {
			tiles := Choreograph(LayoutFor(tier), tier)
			sorted := slices.Clone(tiles)
			slices.SortStableFunc(sorted, func(a, b TileRuntime) int {
				return cmp.Compare(a.CenterDistanceNorm, b.CenterDistanceNorm)
			})
			for i, rt := range sorted {
				if base := rt.RevealDelay - tileJitter(rt.Index); math.Abs(base-baseTileDelay(rt.CenterDistanceNorm)) > 1e-12 {
					t.Errorf("tile %s delay %.4f is not base plus jitter", rt.Spec.Key, rt.RevealDelay)
				}
				if i > 0 && baseTileDelay(rt.CenterDistanceNorm) < baseTileDelay(sorted[i-1].CenterDistanceNorm) {
					t.Errorf("tile %s reveals before nearer tile %s", rt.Spec.Key, sorted[i-1].Spec.Key)
				}
			}

			// The local term and the jitter can only reorder cells whose
			// global distances are within this margin.
			margin := (cellRevealLocal + cellJitterAmp) / cellRevealGlobal
			var cells []SubCell
			for _, rt := range tiles {
				for _, c := range rt.Cells {
					want := c.GlobalNormDistance*cellRevealGlobal + c.LocalNormDistance*cellRevealLocal
					if base := c.RevealDelay - cellJitter(c.Col, c.Row); math.Abs(base-want) > 1e-12 {
						t.Fatalf("%s cell (%d,%d) base delay %.4f, want %.4f", rt.Spec.Key, c.Col, c.Row, base, want)
					}
				}
				cells = append(cells, rt.Cells...)

				// Cells at the same local distance order purely by global distance.
				for _, a := range rt.Cells {
					for _, b := range rt.Cells {
						if math.Abs(a.LocalNormDistance-b.LocalNormDistance) > 1e-9 || a.GlobalNormDistance >= b.GlobalNormDistance {
							continue
						}
						ba := a.GlobalNormDistance*cellRevealGlobal + a.LocalNormDistance*cellRevealLocal
						bb := b.GlobalNormDistance*cellRevealGlobal + b.LocalNormDistance*cellRevealLocal
						if ba > bb {
							t.Errorf("%s cell (%d,%d) outpaces nearer cell (%d,%d)", rt.Spec.Key, b.Col, b.Row, a.Col, a.Row)
						}
					}
				}
			}
			for _, a := range cells {
				for _, b := range cells {
					if b.GlobalNormDistance-a.GlobalNormDistance > margin && b.RevealDelay <= a.RevealDelay {
						t.Fatalf("cell at global %.3f reveals at %.3f, not after cell at %.3f (%.3f)",
							b.GlobalNormDistance, b.RevealDelay, a.GlobalNormDistance, a.RevealDelay)
					}
				}
			}
		})
	}
}

func TestSubGridSize(t *testing.T) {
	tests := []struct {
		name               string
		colSpan, rowSpan   int
		tier               DeviceTier
		wantCols, wantRows int
	}{
		{"desktop 2x3", 2, 3, TierDesktop, 3, 5},
		{"desktop 6x5 clamps", 6, 5, TierDesktop, 10, 8},
		{"desktop 1x1 floors", 1, 1, TierDesktop, 3, 3},
		{"mobile 3x3", 3, 3, TierMobile, 4, 4},
		{"tablet matches desktop", 5, 3, TierTablet, 9, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r := subGridSize(tt.colSpan, tt.rowSpan, tt.tier)
			if c != tt.wantCols || r != tt.wantRows {
				t.Errorf("subGridSize = %dx%d, want %dx%d", c, r, tt.wantCols, tt.wantRows)
			}
		})
	}
}

func TestJitterRanges(t *testing.T) {
	for i := 0; i < 64; i++ {
		if j := tileJitter(i); j < 0 || j > tileJitterAmp {
			t.Errorf("tileJitter(%d) = %v", i, j)
		}
		if j := cellJitter(i%10, i/10); j < 0 || j > cellJitterAmp {
			t.Errorf("cellJitter(%d, %d) = %v", i%10, i/10, j)
		}
	}
	if tiltSign(0) != 1 {
		t.Error("tiltSign(0) should be +1")
	}
}

func TestBackgroundOffsets(t *testing.T) {
	if got := backgroundOffset(0, 1); got != backgroundMidpoint {
		t.Errorf("single cell offset = %v, want %v", got, backgroundMidpoint)
	}
	if got := backgroundOffset(0, 4); got != 0 {
		t.Errorf("first offset = %v, want 0", got)
	}
	if got := backgroundOffset(3, 4); got != 100 {
		t.Errorf("last offset = %v, want 100", got)
	}
}
