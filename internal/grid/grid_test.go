package grid

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewRejectsInvalidDimensions(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{name: "valid", width: 3, height: 2},
		{name: "default", width: DefaultWidth, height: DefaultHeight},
		{name: "zero width", width: 0, height: 2, wantErr: true},
		{name: "zero height", width: 3, height: 0, wantErr: true},
		{name: "negative", width: -1, height: 4, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.width, tt.height)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Fatalf("expected ErrInvalidDimensions, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("new grid: %v", err)
			}
			if g.Width() != tt.width || g.Height() != tt.height {
				t.Fatalf("dimensions = %dx%d, want %dx%d", g.Width(), g.Height(), tt.width, tt.height)
			}
			for _, v := range g.Bytes() {
				if v != 0 {
					t.Fatalf("expected zeroed grid, got %v", g.Bytes())
				}
			}
		})
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	g, err := New(5, 4)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	for column := 0; column < 5; column++ {
		for row := 0; row < 4; row++ {
			for _, v := range []uint8{0, 1, 0x7D, 0x7E, 128, 129, 255} {
				if err := g.Set(column, row, v); err != nil {
					t.Fatalf("set(%d,%d,%d): %v", column, row, v, err)
				}
				got, err := g.Get(column, row)
				if err != nil {
					t.Fatalf("get(%d,%d): %v", column, row, err)
				}
				if got != v {
					t.Fatalf("get(%d,%d) = %d, want %d", column, row, got, v)
				}
			}
		}
	}
}

func TestStrictAccessorsRejectOutOfBounds(t *testing.T) {
	g, _ := New(3, 2)
	coords := [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {3, 2}, {100, 100}}
	for _, c := range coords {
		err := g.Set(c[0], c[1], 9)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("set%v: expected ErrOutOfBounds, got %v", c, err)
		}
		var oob *OutOfBoundsError
		if !errors.As(err, &oob) || oob.Column != c[0] || oob.Row != c[1] {
			t.Fatalf("set%v: expected OutOfBoundsError with coordinate, got %v", c, err)
		}
		if _, err := g.Get(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("get%v: expected ErrOutOfBounds, got %v", c, err)
		}
		if err := g.Unset(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("unset%v: expected ErrOutOfBounds, got %v", c, err)
		}
	}
}

func TestLenientAccessorsIgnoreOutOfBounds(t *testing.T) {
	g, _ := New(3, 2)
	if err := g.Set(1, 1, 42); err != nil {
		t.Fatalf("set: %v", err)
	}
	before := g.Bytes()

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		g.SetLenient(c[0], c[1], 200)
		g.SetFractionLenient(c[0], c[1], 1)
		if v := g.GetLenient(c[0], c[1]); v != 0 {
			t.Fatalf("get lenient%v = %d, want 0", c, v)
		}
	}
	if !bytes.Equal(before, g.Bytes()) {
		t.Fatalf("lenient writes mutated grid: before=%v after=%v", before, g.Bytes())
	}

	g.SetLenient(2, 0, 7)
	if v := g.GetLenient(2, 0); v != 7 {
		t.Fatalf("in-bounds lenient write lost: %d", v)
	}
}

func TestSetFractionScalesAndTruncates(t *testing.T) {
	g, _ := New(2, 2)
	tests := []struct {
		fraction float64
		want     uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 127},
		{0.999, 254},
	}
	for _, tt := range tests {
		if err := g.SetFraction(0, 0, tt.fraction); err != nil {
			t.Fatalf("set fraction %v: %v", tt.fraction, err)
		}
		if got, _ := g.Get(0, 0); got != tt.want {
			t.Fatalf("fraction %v stored %d, want %d", tt.fraction, got, tt.want)
		}
	}
	if err := g.SetFraction(0, 0, 1.5); !errors.Is(err, ErrInvalidBrightness) {
		t.Fatalf("expected ErrInvalidBrightness, got %v", err)
	}
	if err := g.SetFraction(0, 0, -0.1); !errors.Is(err, ErrInvalidBrightness) {
		t.Fatalf("expected ErrInvalidBrightness, got %v", err)
	}
}

func TestBytesTransposedOrder(t *testing.T) {
	g, _ := New(3, 2)
	if err := g.Set(0, 0, 255); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := g.Set(2, 1, 128); err != nil {
		t.Fatalf("set: %v", err)
	}

	got := g.Bytes()
	want := []byte{255, 0, 0, 0, 0, 128}
	if !bytes.Equal(got, want) {
		t.Fatalf("bytes = %v, want %v", got, want)
	}
	if got[2*2+1] != 128 {
		t.Fatalf("byte at i*height+j for (2,1) = %d, want 128", got[5])
	}
}

func TestBytesLengthAndFromBytesIdempotent(t *testing.T) {
	for _, dims := range [][2]int{{1, 1}, {3, 2}, {2, 3}, {21, 21}} {
		g, _ := New(dims[0], dims[1])
		for column := 0; column < dims[0]; column++ {
			for row := 0; row < dims[1]; row++ {
				g.SetLenient(column, row, uint8(column*31+row*7))
			}
		}
		payload := g.Bytes()
		if len(payload) != dims[0]*dims[1] {
			t.Fatalf("%v: payload length %d", dims, len(payload))
		}
		back, err := FromBytes(dims[0], dims[1], payload)
		if err != nil {
			t.Fatalf("%v: from bytes: %v", dims, err)
		}
		if !back.Equal(g) {
			t.Fatalf("%v: rebuilt grid differs", dims)
		}
		if !bytes.Equal(back.Bytes(), payload) {
			t.Fatalf("%v: re-serialized payload differs", dims)
		}
	}
}

func TestFromBytesRejectsWrongSize(t *testing.T) {
	if _, err := FromBytes(3, 2, make([]byte, 5)); !errors.Is(err, ErrPayloadSize) {
		t.Fatalf("expected ErrPayloadSize, got %v", err)
	}
	if _, err := FromBytes(0, 2, nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
}

func TestTransformed(t *testing.T) {
	g, _ := New(3, 2)
	// cell value encodes its coordinate: 10*column + row + 1
	for column := 0; column < 3; column++ {
		for row := 0; row < 2; row++ {
			_ = g.Set(column, row, uint8(10*column+row+1))
		}
	}

	tests := []struct {
		name string
		tr   Transform
		want []byte
	}{
		{name: "identity", tr: Transform{}, want: []byte{1, 2, 11, 12, 21, 22}},
		{name: "mirror rows", tr: Transform{MirrorRows: true}, want: []byte{2, 1, 12, 11, 22, 21}},
		{name: "mirror columns", tr: Transform{MirrorColumns: true}, want: []byte{21, 22, 11, 12, 1, 2}},
		{name: "swap axes", tr: Transform{SwapAxes: true}, want: []byte{1, 11, 21, 2, 12, 22}},
		{name: "swap and mirror", tr: Transform{SwapAxes: true, MirrorRows: true, MirrorColumns: true}, want: []byte{22, 12, 2, 21, 11, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Transformed(tt.tr)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("transformed = %v, want %v", got, tt.want)
			}
		})
	}

	if !bytes.Equal(g.Transformed(Transform{}), g.Bytes()) {
		t.Fatalf("identity transform differs from Bytes")
	}
}

func TestStringDump(t *testing.T) {
	g, _ := New(3, 2)
	_ = g.Set(0, 0, 255)
	_ = g.Set(2, 1, 128)
	_ = g.Set(1, 1, 129)

	want := "1:\t-o+\n0:\to--\n"
	if got := g.String(); got != want {
		t.Fatalf("dump = %q, want %q", got, want)
	}
}

func TestCloneClearFill(t *testing.T) {
	g, _ := New(2, 2)
	g.Fill(9)
	c := g.Clone()
	g.Clear()
	if v, _ := c.Get(1, 1); v != 9 {
		t.Fatalf("clone shares cells with original")
	}
	if v, _ := g.Get(1, 1); v != 0 {
		t.Fatalf("clear left %d", v)
	}
	if g.Equal(c) {
		t.Fatalf("expected grids to differ")
	}
}
