package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksumKnownVector(t *testing.T) {
	if got := Checksum([]byte("123456789")); got != 0x906E {
		t.Fatalf("checksum = %#04x, want 0x906e", got)
	}
}

func TestEncodeEscapesFlag(t *testing.T) {
	out := Encode([]byte{0x7E})
	if !bytes.HasPrefix(out, []byte{0x7E, 0x7D, 0x5E}) {
		t.Fatalf("unexpected frame prefix: % x", out)
	}
	if out[len(out)-1] != Flag {
		t.Fatalf("frame must end with flag: % x", out)
	}

	fcs := Checksum([]byte{0x7E})
	var want []byte
	want = append(want, 0x7E, 0x7D, 0x5E)
	want = appendEscaped(want, byte(fcs))
	want = appendEscaped(want, byte(fcs>>8))
	want = append(want, 0x7E)
	if !bytes.Equal(out, want) {
		t.Fatalf("frame = % x, want % x", out, want)
	}
}

func TestEncodeHasNoInteriorReservedBytes(t *testing.T) {
	payload := []byte{0x7E, 0x7D, 0x7E, 0x00, 0x7D, 0x5E, 0x5D}
	out := Encode(payload)
	for i, b := range out[1 : len(out)-1] {
		if b == Flag {
			t.Fatalf("interior flag at %d: % x", i+1, out)
		}
	}
	if len(out) > EncodedLenBound(len(payload)) {
		t.Fatalf("frame length %d exceeds bound %d", len(out), EncodedLenBound(len(payload)))
	}
}

func TestRoundTripPayloads(t *testing.T) {
	big := make([]byte, 441)
	for i := range big {
		big[i] = byte(i)
	}
	payloads := [][]byte{
		{},
		{0x00},
		{0x7E},
		{0x7D},
		{0x7E, 0x7D, 0x7E, 0x7D},
		{0x20, 0x5E, 0x5D},
		[]byte("hello, matrix"),
		big,
	}
	for _, payload := range payloads {
		d := NewDecoder(DefaultLimits())
		got := d.Feed(Encode(payload))
		if len(got) != 1 {
			t.Fatalf("payload % x: got %d frames", payload, len(got))
		}
		if !bytes.Equal(got[0], payload) {
			t.Fatalf("payload mismatch: got % x want % x", got[0], payload)
		}
		if s := d.Stats(); s.Frames != 1 || s.Errors != 0 {
			t.Fatalf("unexpected stats: %+v", s)
		}
	}
}

func TestChunkedDeliveryMatchesWhole(t *testing.T) {
	payloads := [][]byte{
		{0x7E, 0x01, 0x7D},
		[]byte("second"),
		{},
		{0xFF, 0x7E},
	}
	var stream []byte
	for _, p := range payloads {
		stream = append(stream, Encode(p)...)
	}

	for _, size := range []int{1, 2, 3, 7, len(stream)} {
		d := NewDecoder(DefaultLimits())
		var got [][]byte
		for i := 0; i < len(stream); i += size {
			end := i + size
			if end > len(stream) {
				end = len(stream)
			}
			got = append(got, d.Feed(stream[i:end])...)
		}
		if len(got) != len(payloads) {
			t.Fatalf("chunk=%d: got %d payloads, want %d", size, len(got), len(payloads))
		}
		for i := range payloads {
			if !bytes.Equal(got[i], payloads[i]) {
				t.Fatalf("chunk=%d payload %d: got % x want % x", size, i, got[i], payloads[i])
			}
		}
	}
}

func TestIdleFlagsAreNotErrors(t *testing.T) {
	d := NewDecoder(DefaultLimits())
	stream := []byte{Flag, Flag, Flag}
	stream = append(stream, Encode([]byte{1, 2, 3})...)
	stream = append(stream, Flag, Flag)
	got := d.Feed(stream)
	if len(got) != 1 || !bytes.Equal(got[0], []byte{1, 2, 3}) {
		t.Fatalf("unexpected payloads: %v", got)
	}
	if s := d.Stats(); s.Errors != 0 {
		t.Fatalf("idle flags counted as errors: %+v", s)
	}
}

func TestSingleByteCorruptionDropsFrameAndRecovers(t *testing.T) {
	first := []byte{0x01, 0x7E, 0x10, 0x7D, 0x42, 0xFF}
	second := []byte{0xAA, 0x55, 0x7E}
	encoded := Encode(first)

	// every byte between the delimiters: payload and checksum region
	for pos := 1; pos < len(encoded)-1; pos++ {
		corrupted := append([]byte(nil), encoded...)
		corrupted[pos] ^= 0x01

		d := NewDecoder(DefaultLimits())
		var reasons []ErrorReason
		d.OnError = func(r ErrorReason) { reasons = append(reasons, r) }

		got := d.Feed(append(corrupted, Encode(second)...))
		if len(got) != 1 {
			t.Fatalf("pos=%d: got %d payloads, want only the second frame", pos, len(got))
		}
		if !bytes.Equal(got[0], second) {
			t.Fatalf("pos=%d: second payload corrupted: % x", pos, got[0])
		}
		s := d.Stats()
		if s.Errors == 0 || len(reasons) == 0 {
			t.Fatalf("pos=%d: corruption not counted: %+v", pos, s)
		}
		if s.Frames != 1 {
			t.Fatalf("pos=%d: frames = %d, want 1", pos, s.Frames)
		}
	}
}

func TestMalformedSequencesAreCounted(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		check  func(Stats) bool
	}{
		{
			name:   "escape before flag",
			stream: []byte{Flag, 0x01, 0x02, 0x03, Escape, Flag},
			check:  func(s Stats) bool { return s.Aborted == 1 && s.Errors == 1 },
		},
		{
			name:   "shorter than checksum",
			stream: []byte{Flag, 0x01, Flag},
			check:  func(s Stats) bool { return s.Short == 1 && s.Errors == 1 },
		},
		{
			name:   "bad checksum",
			stream: []byte{Flag, 0x01, 0x02, 0x00, 0x00, Flag},
			check:  func(s Stats) bool { return s.Checksum == 1 && s.Errors == 1 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(DefaultLimits())
			if got := d.Feed(tt.stream); len(got) != 0 {
				t.Fatalf("malformed stream yielded payloads: %v", got)
			}
			if s := d.Stats(); !tt.check(s) {
				t.Fatalf("unexpected stats: %+v", s)
			}
			if d.Pending() != 0 {
				t.Fatalf("accumulator not reset: %d", d.Pending())
			}
			got := d.Feed(Encode([]byte{9}))
			if len(got) != 1 || got[0][0] != 9 {
				t.Fatalf("decoder did not recover: %v", got)
			}
		})
	}
}

func TestOverflowDiscardsUntilFlag(t *testing.T) {
	d := NewDecoder(Limits{MaxPayloadBytes: 4})
	stream := []byte{Flag}
	stream = append(stream, bytes.Repeat([]byte{0x11}, 32)...)
	stream = append(stream, Flag)
	stream = append(stream, Encode([]byte{1, 2, 3, 4})...)

	got := d.Feed(stream)
	if len(got) != 1 || !bytes.Equal(got[0], []byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected payloads: %v", got)
	}
	if s := d.Stats(); s.Overflow != 1 || s.Errors != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestResetClearsState(t *testing.T) {
	d := NewDecoder(DefaultLimits())
	d.Feed([]byte{Flag, 0x01, Flag})
	d.Feed([]byte{Flag, 0x01, 0x02})
	d.Reset()
	if d.Pending() != 0 || d.Stats() != (Stats{}) {
		t.Fatalf("reset left state: pending=%d stats=%+v", d.Pending(), d.Stats())
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte{0x7E, 1}, DefaultLimits()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), Encode([]byte{0x7E, 1})) {
		t.Fatalf("written frame differs from Encode")
	}

	err := WriteFrame(&buf, make([]byte, 5), Limits{MaxPayloadBytes: 4})
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}

	if err := WriteFrame(shortWriter{}, []byte{1}, DefaultLimits()); !errors.Is(err, ErrShortWrite) {
		t.Fatalf("expected ErrShortWrite, got %v", err)
	}
}
