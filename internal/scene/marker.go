package scene

import (
	"math"

	"github.com/danmuck/tlns/internal/geometry"
	"github.com/danmuck/tlns/internal/grid"
)

// Marker is a point that moves in continuous coordinates and is drawn at a
// truncated cell. The last drawn cell is recorded only by Commit, so reading
// Position never changes state.
type Marker struct {
	X, Y                  float64
	ShiftColumn, ShiftRow float64
	stored                geometry.Cell
}

func NewMarker(x, y, shiftColumn, shiftRow float64) *Marker {
	m := &Marker{X: x, Y: y, ShiftColumn: shiftColumn, ShiftRow: shiftRow}
	m.stored = m.Position()
	return m
}

func (m *Marker) Position() geometry.Cell {
	return geometry.Cell{
		Column: int(m.X + m.ShiftColumn),
		Row:    int(m.Y + m.ShiftRow),
	}
}

// Commit records and returns the current position.
func (m *Marker) Commit() geometry.Cell {
	m.stored = m.Position()
	return m.stored
}

func (m *Marker) Stored() geometry.Cell {
	return m.stored
}

func (m *Marker) MoveTo(x, y float64) {
	m.X, m.Y = x, y
}

// Redraw darkens the previously committed cell, commits, and lights the new
// one. Off-grid cells are skipped.
func (m *Marker) Redraw(g *grid.Grid, level uint8) geometry.Cell {
	old := m.stored
	next := m.Commit()
	g.SetLenient(old.Column, old.Row, 0)
	g.SetLenient(next.Column, next.Row, level)
	return next
}

// PolarMarker places a Marker at an angle and a percentage of MaxDistance
// from its shift point. Angle is in radians, counter-clockwise from the
// positive column axis.
type PolarMarker struct {
	Marker
	angle       float64
	distance    float64
	maxDistance float64
}

// DefaultMaxDistance keeps a polar marker inside the default grid.
const DefaultMaxDistance = grid.DefaultHeight - 2

func NewPolarMarker(angle, distancePercent, maxDistance, shiftColumn, shiftRow float64) *PolarMarker {
	p := &PolarMarker{
		Marker:      Marker{ShiftColumn: shiftColumn, ShiftRow: shiftRow},
		angle:       angle,
		distance:    clampPercent(distancePercent),
		maxDistance: maxDistance,
	}
	p.update()
	p.stored = p.Position()
	return p
}

func (p *PolarMarker) Angle() float64 {
	return p.angle
}

func (p *PolarMarker) SetAngle(angle float64) {
	p.angle = angle
	p.update()
}

func (p *PolarMarker) Distance() float64 {
	return p.distance
}

// SetDistance sets the distance as a percentage, clamped to [0,100].
func (p *PolarMarker) SetDistance(percent float64) {
	p.distance = clampPercent(percent)
	p.update()
}

func (p *PolarMarker) update() {
	r := p.maxDistance * p.distance / 100
	p.X = r * math.Cos(p.angle)
	p.Y = r * math.Sin(p.angle)
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
