package link

import (
	"errors"
	"sync"
)

var (
	ErrClosed      = errors.New("link: driver closed")
	ErrUnavailable = errors.New("link: driver unavailable")
	ErrShortWrite  = errors.New("link: short write")
)

// Driver is the byte transport under a link.
//
// Poll returns whatever bytes arrived since the last call and must not block
// beyond the transport's short read timeout. An empty result means nothing
// arrived yet.
type Driver interface {
	Write(p []byte) (int, error)
	Poll() ([]byte, error)
	Close() error
}

// Opener dials a fresh Driver. Transmitters use it to reconnect.
type Opener func() (Driver, error)

// Loopback is an in-memory Driver: bytes written are returned by Poll.
type Loopback struct {
	mu      sync.Mutex
	buf     []byte
	chunk   int
	written uint64
	closed  bool
}

// NewLoopback returns a loopback that hands out at most chunk bytes per Poll.
// chunk <= 0 returns everything buffered.
func NewLoopback(chunk int) *Loopback {
	return &Loopback{chunk: chunk}
}

func (l *Loopback) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	l.buf = append(l.buf, p...)
	l.written += uint64(len(p))
	return len(p), nil
}

func (l *Loopback) Poll() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	n := len(l.buf)
	if n == 0 {
		return nil, nil
	}
	if l.chunk > 0 && n > l.chunk {
		n = l.chunk
	}
	out := make([]byte, n)
	copy(out, l.buf[:n])
	l.buf = l.buf[n:]
	return out, nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.buf = nil
	return nil
}

// Written reports the total bytes accepted since construction.
func (l *Loopback) Written() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}
