package frame

import (
	"errors"
	"fmt"
	"io"
)

const (
	Flag      byte = 0x7E
	Escape    byte = 0x7D
	EscapeXOR byte = 0x20

	ChecksumLen = 2
)

var (
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrShortWrite      = errors.New("frame: short write")
)

// Limits constrains frame decode/encode memory use.
type Limits struct {
	MaxPayloadBytes int
}

func DefaultLimits() Limits {
	return Limits{
		MaxPayloadBytes: 64 * 1024,
	}
}

// Encode wraps payload in one delimited, escaped, checksummed frame.
func Encode(payload []byte) []byte {
	return AppendEncode(make([]byte, 0, EncodedLenBound(len(payload))), payload)
}

// EncodedLenBound is the worst-case frame size for an n-byte payload.
func EncodedLenBound(n int) int {
	return 2 + 2*(n+ChecksumLen)
}

// AppendEncode appends the frame for payload to dst.
func AppendEncode(dst, payload []byte) []byte {
	dst = append(dst, Flag)
	for _, b := range payload {
		dst = appendEscaped(dst, b)
	}
	fcs := Checksum(payload)
	dst = appendEscaped(dst, byte(fcs))
	dst = appendEscaped(dst, byte(fcs>>8))
	return append(dst, Flag)
}

func appendEscaped(dst []byte, b byte) []byte {
	if b == Flag || b == Escape {
		return append(dst, Escape, b^EscapeXOR)
	}
	return append(dst, b)
}

// WriteFrame encodes payload and writes the whole frame to w.
func WriteFrame(w io.Writer, payload []byte, limits Limits) error {
	if limits.MaxPayloadBytes > 0 && len(payload) > limits.MaxPayloadBytes {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(payload), limits.MaxPayloadBytes)
	}
	buf := Encode(payload)
	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(buf))
	}
	return nil
}
