package server

import (
	"sync"

	"github.com/danmuck/tlns/internal/grid"
)

// Board serializes access to one grid shared by HTTP handlers, the
// transmitter, and stream subscribers.
type Board struct {
	mu      sync.Mutex
	grid    *grid.Grid
	version uint64
}

func NewBoard(g *grid.Grid) *Board {
	return &Board{grid: g}
}

// BoardSnapshot is a consistent copy of the board at one version.
type BoardSnapshot struct {
	Version uint64
	Grid    *grid.Grid
}

// Update runs fn under the board lock. The version advances only when fn
// succeeds.
func (b *Board) Update(fn func(g *grid.Grid) error) (BoardSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := fn(b.grid); err != nil {
		return BoardSnapshot{}, err
	}
	b.version++
	return BoardSnapshot{Version: b.version, Grid: b.grid.Clone()}, nil
}

// Replace swaps in a new grid of any size.
func (b *Board) Replace(g *grid.Grid) BoardSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.grid = g
	b.version++
	return BoardSnapshot{Version: b.version, Grid: g.Clone()}
}

func (b *Board) Snapshot() BoardSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BoardSnapshot{Version: b.version, Grid: b.grid.Clone()}
}
