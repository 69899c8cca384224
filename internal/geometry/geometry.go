// Package geometry maps between continuous screen coordinates and discrete
// grid cells.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrOutOfGrid      = errors.New("geometry: cell outside grid")
	ErrInvalidMapping = errors.New("geometry: invalid mapping")
)

// Cell addresses one grid cell.
type Cell struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

func (c Cell) String() string {
	return fmt.Sprintf("%d,%d", c.Column, c.Row)
}

// Mapping describes a grid drawn on screen with a fixed per-axis cell size.
type Mapping struct {
	CellWidth  float64
	CellHeight float64
	Columns    int
	Rows       int
}

// NewMapping returns a validated mapping.
func NewMapping(cellWidth, cellHeight float64, columns, rows int) (Mapping, error) {
	m := Mapping{CellWidth: cellWidth, CellHeight: cellHeight, Columns: columns, Rows: rows}
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

func (m Mapping) Validate() error {
	if !(m.CellWidth > 0) || !(m.CellHeight > 0) {
		return fmt.Errorf("%w: cell size %vx%v", ErrInvalidMapping, m.CellWidth, m.CellHeight)
	}
	if m.Columns <= 0 || m.Rows <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidMapping, m.Columns, m.Rows)
	}
	return nil
}

// ScreenSize is the pixel extent of the whole grid.
func (m Mapping) ScreenSize() (width, height float64) {
	return float64(m.Columns) * m.CellWidth, float64(m.Rows) * m.CellHeight
}

func (m Mapping) Contains(c Cell) bool {
	return c.Column >= 0 && c.Column < m.Columns && c.Row >= 0 && c.Row < m.Rows
}

// CellOf returns the cell under a screen point. The result may be off-grid;
// pair it with lenient grid accessors or Contains.
func (m Mapping) CellOf(x, y float64) Cell {
	return CellOf(x, y, m.CellWidth, m.CellHeight)
}

// Origin returns the top-left screen corner of c.
func (m Mapping) Origin(c Cell) (x, y float64) {
	return Origin(c, m.CellWidth, m.CellHeight)
}

// Center returns the screen center of an on-grid cell.
func (m Mapping) Center(c Cell) (x, y float64, err error) {
	if !m.Contains(c) {
		return 0, 0, fmt.Errorf("%w: %s in %dx%d", ErrOutOfGrid, c, m.Columns, m.Rows)
	}
	x, y = m.Origin(c)
	return x + m.CellWidth/2, y + m.CellHeight/2, nil
}

// Hit reports whether a screen point lies strictly within half a cell of
// the center of c on both axes.
func (m Mapping) Hit(x, y float64, c Cell) bool {
	cx, cy := m.Origin(c)
	cx += m.CellWidth / 2
	cy += m.CellHeight / 2
	return math.Abs(x-cx) < m.CellWidth/2 && math.Abs(y-cy) < m.CellHeight/2
}

// Snap returns the top-left corner of the cell containing a screen point.
func (m Mapping) Snap(x, y float64) (float64, float64) {
	return m.Origin(m.CellOf(x, y))
}

// CellOf floors a screen point onto a cell of the given size.
func CellOf(x, y, cellWidth, cellHeight float64) Cell {
	return Cell{
		Column: int(math.Floor(x / cellWidth)),
		Row:    int(math.Floor(y / cellHeight)),
	}
}

// Origin is the inverse of CellOf for a cell's top-left corner.
func Origin(c Cell, cellWidth, cellHeight float64) (x, y float64) {
	return float64(c.Column) * cellWidth, float64(c.Row) * cellHeight
}
