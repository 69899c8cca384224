package link

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 50 * time.Millisecond
	pollBufferSize     = 4096
)

// SerialConfig describes an 8N1 serial device.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

func (c SerialConfig) withDefaults() SerialConfig {
	if c.Baud <= 0 {
		c.Baud = DefaultBaud
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	return c
}

// SerialDriver is a Driver over a tarm/serial port.
type SerialDriver struct {
	cfg SerialConfig

	mu   sync.Mutex
	port *serial.Port
	buf  []byte
}

// OpenSerial opens cfg.Device as 8N1 with a short read timeout so Poll
// returns promptly when the line is idle.
func OpenSerial(cfg SerialConfig) (*SerialDriver, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: empty device", ErrUnavailable)
	}
	cfg = cfg.withDefaults()
	port, err := openPort(cfg)
	if err != nil {
		return nil, err
	}
	return &SerialDriver{cfg: cfg, port: port, buf: make([]byte, pollBufferSize)}, nil
}

// SerialOpener adapts OpenSerial to an Opener.
func SerialOpener(cfg SerialConfig) Opener {
	return func() (Driver, error) {
		return OpenSerial(cfg)
	}
}

func openPort(cfg SerialConfig) (*serial.Port, error) {
	c := &serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
	port, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, cfg.Device, err)
	}
	return port, nil
}

func (d *SerialDriver) Device() string {
	return d.cfg.Device
}

func (d *SerialDriver) Write(p []byte) (int, error) {
	d.mu.Lock()
	port := d.port
	d.mu.Unlock()
	if port == nil {
		return 0, ErrClosed
	}
	n, err := port.Write(p)
	if err != nil {
		return n, fmt.Errorf("link: write %s: %w", d.cfg.Device, err)
	}
	return n, nil
}

func (d *SerialDriver) Poll() ([]byte, error) {
	d.mu.Lock()
	port := d.port
	d.mu.Unlock()
	if port == nil {
		return nil, ErrClosed
	}
	n, err := port.Read(d.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("link: read %s: %w", d.cfg.Device, err)
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out, d.buf[:n])
	return out, nil
}

// Reopen closes the current port, if any, and opens the device again.
func (d *SerialDriver) Reopen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port != nil {
		_ = d.port.Close()
		d.port = nil
	}
	port, err := openPort(d.cfg)
	if err != nil {
		return err
	}
	d.port = port
	return nil
}

func (d *SerialDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.port == nil {
		return nil
	}
	err := d.port.Close()
	d.port = nil
	return err
}
