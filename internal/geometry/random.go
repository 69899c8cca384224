package geometry

import "math/rand"

type avoid struct {
	column, row       int
	hasColumn, hasRow bool
}

// AvoidOption constrains RandomCell.
type AvoidOption func(*avoid)

// AvoidColumn re-draws the column until it differs from column.
func AvoidColumn(column int) AvoidOption {
	return func(a *avoid) {
		a.column = column
		a.hasColumn = true
	}
}

// AvoidRow re-draws the row until it differs from row.
func AvoidRow(row int) AvoidOption {
	return func(a *avoid) {
		a.row = row
		a.hasRow = true
	}
}

// AvoidCell avoids both coordinates of c. Each axis is retried on its own,
// so the result may still share one axis with c only if that axis has a
// single value.
func AvoidCell(c Cell) AvoidOption {
	return func(a *avoid) {
		AvoidColumn(c.Column)(a)
		AvoidRow(c.Row)(a)
	}
}

// RandomCell draws a uniform on-grid cell. Avoided coordinates are checked
// per axis, never jointly: AvoidColumn alone can return a cell on the
// avoided row. An axis with one possible value returns it unchanged.
func (m Mapping) RandomCell(rng *rand.Rand, opts ...AvoidOption) Cell {
	var a avoid
	for _, opt := range opts {
		opt(&a)
	}
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}

	c := Cell{Column: intn(m.Columns), Row: intn(m.Rows)}
	if a.hasColumn && m.Columns > 1 {
		for c.Column == a.column {
			c.Column = intn(m.Columns)
		}
	}
	if a.hasRow && m.Rows > 1 {
		for c.Row == a.row {
			c.Row = intn(m.Rows)
		}
	}
	return c
}
