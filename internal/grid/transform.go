package grid

// Transform adjusts the serialization traversal for receivers that are
// mounted mirrored or rotated.
//
// The traversal has an outer index and an inner index. MirrorColumns
// reflects the outer index and MirrorRows the inner one. Without SwapAxes
// the outer index addresses columns and the inner index rows, as in Bytes.
// With SwapAxes the outer index runs over rows and the inner over columns,
// which yields plain row-major order on any grid.
type Transform struct {
	MirrorRows    bool
	MirrorColumns bool
	SwapAxes      bool
}

// IsIdentity reports whether t leaves Bytes() order untouched.
func (t Transform) IsIdentity() bool {
	return !t.MirrorRows && !t.MirrorColumns && !t.SwapAxes
}

// Transformed serializes the grid with t applied. The result always has
// width*height bytes.
func (g *Grid) Transformed(t Transform) []byte {
	outerLen, innerLen := g.width, g.height
	if t.SwapAxes {
		outerLen, innerLen = g.height, g.width
	}

	out := make([]byte, 0, len(g.cells))
	for i := 0; i < outerLen; i++ {
		outer := i
		if t.MirrorColumns {
			outer = outerLen - 1 - i
		}
		for j := 0; j < innerLen; j++ {
			inner := j
			if t.MirrorRows {
				inner = innerLen - 1 - j
			}
			column, row := outer, inner
			if t.SwapAxes {
				column, row = inner, outer
			}
			out = append(out, g.cells[g.index(column, row)])
		}
	}
	return out
}
