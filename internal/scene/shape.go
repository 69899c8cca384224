// Package scene draws higher-level figures onto a grid.Grid.
//
// Ownership boundary:
// - Shape variants and union rendering
// - column gauges with a partially lit top cell
// - markers with explicit position commits
package scene

import (
	"errors"
	"fmt"

	"github.com/danmuck/tlns/internal/grid"
)

var ErrInvalidShape = errors.New("scene: invalid shape")

// Shape is a set of lit cells at one brightness.
type Shape interface {
	Contains(column, row int) bool
	Level() uint8
}

// Rectangle spans [OriginColumn, OriginColumn+Width) x [OriginRow,
// OriginRow+Height). When not Filled only a border Thickness cells wide is
// lit.
type Rectangle struct {
	OriginColumn int
	OriginRow    int
	Width        int
	Height       int
	Thickness    int
	Filled       bool
	// Brightness 0 means grid.MaxBrightness.
	Brightness uint8
}

func (r Rectangle) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: rectangle %dx%d", ErrInvalidShape, r.Width, r.Height)
	}
	if !r.Filled && r.Thickness <= 0 {
		return fmt.Errorf("%w: outline thickness %d", ErrInvalidShape, r.Thickness)
	}
	return nil
}

func (r Rectangle) Contains(column, row int) bool {
	insideColumns := column >= r.OriginColumn && column < r.OriginColumn+r.Width
	insideRows := row >= r.OriginRow && row < r.OriginRow+r.Height
	if !insideColumns || !insideRows {
		return false
	}
	if r.Filled {
		return true
	}
	onColumnEdge := column < r.OriginColumn+r.Thickness || column >= r.OriginColumn+r.Width-r.Thickness
	onRowEdge := row < r.OriginRow+r.Thickness || row >= r.OriginRow+r.Height-r.Thickness
	return onColumnEdge || onRowEdge
}

func (r Rectangle) Level() uint8 {
	if r.Brightness == 0 {
		return grid.MaxBrightness
	}
	return r.Brightness
}

// Render lights every cell any shape contains. Cells no shape contains are
// left untouched; later shapes win where shapes overlap.
func Render(g *grid.Grid, shapes ...Shape) {
	for column := 0; column < g.Width(); column++ {
		for row := 0; row < g.Height(); row++ {
			for _, s := range shapes {
				if s.Contains(column, row) {
					g.SetLenient(column, row, s.Level())
				}
			}
		}
	}
}
