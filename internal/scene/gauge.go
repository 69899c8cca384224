package scene

import (
	"math"

	"github.com/danmuck/tlns/internal/grid"
)

// Gauge is a bar of Cells segments filled bottom-up to a percentage. Fully
// covered segments are at max brightness, the segment holding the remainder
// is partially lit, the rest are dark.
type Gauge struct {
	cells   int
	percent float64
	levels  []uint8
}

func NewGauge(cells int, percent float64) *Gauge {
	if cells < 1 {
		cells = 1
	}
	g := &Gauge{cells: cells, levels: make([]uint8, cells)}
	g.Fill(percent)
	return g
}

// Fill sets the gauge, clamping percent to [0,100].
func (g *Gauge) Fill(percent float64) {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	g.percent = percent

	weight := 100 / float64(g.cells)
	full := math.Floor(percent / weight)
	for i := range g.levels {
		idx := float64(i)
		switch {
		case idx < full:
			g.levels[i] = grid.MaxBrightness
		case idx == full:
			partial := math.Mod(percent, weight) / weight
			g.levels[i] = uint8(partial * float64(grid.MaxBrightness))
		default:
			g.levels[i] = 0
		}
	}
}

// Add moves the gauge by delta percent.
func (g *Gauge) Add(delta float64) {
	g.Fill(g.percent + delta)
}

func (g *Gauge) Percent() float64 {
	return g.percent
}

func (g *Gauge) Cells() int {
	return g.cells
}

// Levels returns per-segment brightness, bottom segment first.
func (g *Gauge) Levels() []uint8 {
	out := make([]uint8, len(g.levels))
	copy(out, g.levels)
	return out
}

// GaugeLayout places a gauge on a grid. Segment i covers SegmentRows rows
// starting at Row+i*SegmentRows across Columns columns from Column.
type GaugeLayout struct {
	Column      int
	Row         int
	Columns     int
	SegmentRows int
}

// Draw paints the gauge; off-grid segments are clipped.
func (g *Gauge) Draw(dst *grid.Grid, layout GaugeLayout) {
	columns := max(layout.Columns, 1)
	rows := max(layout.SegmentRows, 1)
	for i, level := range g.levels {
		for dr := 0; dr < rows; dr++ {
			for dc := 0; dc < columns; dc++ {
				dst.SetLenient(layout.Column+dc, layout.Row+i*rows+dr, level)
			}
		}
	}
}

// DrawSpread paints the gauge horizontally on Rows rows, growing outward from
// center in both directions.
func (g *Gauge) DrawSpread(dst *grid.Grid, center, row, rows int) {
	rows = max(rows, 1)
	for i, level := range g.levels {
		for dr := 0; dr < rows; dr++ {
			dst.SetLenient(center-i, row+dr, level)
			dst.SetLenient(center+i, row+dr, level)
		}
	}
}
