package grid

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultWidth  = 21
	DefaultHeight = 21

	MaxBrightness  uint8 = 0xFF
	HalfBrightness uint8 = 0x80
)

// Grid is a fixed-size raster of 8-bit brightness values.
//
// Cells are stored column-major: the cell at (column, row) lives at
// column*height + row, which is also its position in Bytes().
// A Grid has a single owner and does no locking.
type Grid struct {
	width  int
	height int
	cells  []uint8
}

// New creates a width x height grid with every cell at 0.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]uint8, width*height),
	}, nil
}

// NewDefault creates a grid with the LED matrix default dimensions.
func NewDefault() *Grid {
	g, _ := New(DefaultWidth, DefaultHeight)
	return g
}

// FromBytes rebuilds a grid from a payload produced by Bytes.
func FromBytes(width, height int, payload []byte) (*Grid, error) {
	g, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if len(payload) != width*height {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrPayloadSize, len(payload), width*height)
	}
	copy(g.cells, payload)
	return g, nil
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

// InBounds reports whether (column, row) addresses a cell.
func (g *Grid) InBounds(column, row int) bool {
	return column >= 0 && column < g.width && row >= 0 && row < g.height
}

func (g *Grid) index(column, row int) int {
	return column*g.height + row
}

func (g *Grid) check(column, row int) error {
	if g.InBounds(column, row) {
		return nil
	}
	return &OutOfBoundsError{Column: column, Row: row, Width: g.width, Height: g.height}
}

// Set overwrites one cell. Off-grid coordinates are a caller bug and fail
// with ErrOutOfBounds.
func (g *Grid) Set(column, row int, value uint8) error {
	if err := g.check(column, row); err != nil {
		return err
	}
	g.cells[g.index(column, row)] = value
	return nil
}

// SetFraction stores a normalized brightness in [0,1], scaled to [0,255]
// with truncation.
func (g *Grid) SetFraction(column, row int, fraction float64) error {
	value, err := FractionToBrightness(fraction)
	if err != nil {
		return err
	}
	return g.Set(column, row, value)
}

// SetLenient is Set for computed coordinates that may fall off the edge;
// off-grid writes are dropped.
func (g *Grid) SetLenient(column, row int, value uint8) {
	if !g.InBounds(column, row) {
		return
	}
	g.cells[g.index(column, row)] = value
}

func (g *Grid) SetFractionLenient(column, row int, fraction float64) {
	value, err := FractionToBrightness(fraction)
	if err != nil {
		return
	}
	g.SetLenient(column, row, value)
}

// Unset turns a cell off.
func (g *Grid) Unset(column, row int) error {
	return g.Set(column, row, 0)
}

// Get returns the brightness of one cell.
func (g *Grid) Get(column, row int) (uint8, error) {
	if err := g.check(column, row); err != nil {
		return 0, err
	}
	return g.cells[g.index(column, row)], nil
}

// GetLenient returns 0 for off-grid coordinates.
func (g *Grid) GetLenient(column, row int) uint8 {
	if !g.InBounds(column, row) {
		return 0
	}
	return g.cells[g.index(column, row)]
}

func (g *Grid) Clear() {
	g.Fill(0)
}

func (g *Grid) Fill(value uint8) {
	for i := range g.cells {
		g.cells[i] = value
	}
}

func (g *Grid) Clone() *Grid {
	cells := make([]uint8, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// Equal reports whether both grids have the same dimensions and cells.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Bytes serializes the grid as width*height bytes. For outer index i over
// columns and inner index j over rows, byte i*height+j is the cell at
// (column=i, row=j). Existing receivers depend on this order.
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.cells))
	copy(out, g.cells)
	return out
}

// String renders the grid for diagnostics, highest row first.
func (g *Grid) String() string {
	var b strings.Builder
	for row := g.height - 1; row >= 0; row-- {
		b.WriteString(strconv.Itoa(row))
		b.WriteString(":\t")
		for column := 0; column < g.width; column++ {
			b.WriteByte(glyph(g.cells[g.index(column, row)]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(v uint8) byte {
	switch {
	case v == 0:
		return '-'
	case v <= HalfBrightness:
		return '+'
	default:
		return 'o'
	}
}

// FractionToBrightness scales a normalized value in [0,1] to [0,255].
func FractionToBrightness(fraction float64) (uint8, error) {
	if fraction < 0 || fraction > 1 || fraction != fraction {
		return 0, fmt.Errorf("%w: fraction %v outside [0,1]", ErrInvalidBrightness, fraction)
	}
	return uint8(fraction * float64(MaxBrightness)), nil
}
