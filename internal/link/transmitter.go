package link

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/danmuck/tlns/internal/grid"
	"github.com/danmuck/tlns/internal/logging"
	"github.com/danmuck/tlns/internal/observability"
	"github.com/danmuck/tlns/internal/protocol/frame"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// TransmitterConfig controls how grids become bytes on the wire.
type TransmitterConfig struct {
	Name      string
	Transform grid.Transform
	// Raw writes the serialized payload without framing.
	Raw    bool
	Limits frame.Limits
	// FrameRate caps sends per second; <= 0 disables pacing.
	FrameRate float64
	Burst     int
	Backoff   BackoffConfig
}

func DefaultTransmitterConfig() TransmitterConfig {
	return TransmitterConfig{
		Name:      "serial",
		Limits:    frame.DefaultLimits(),
		FrameRate: 30,
		Burst:     1,
		Backoff:   DefaultBackoff(),
	}
}

// TransmitStats counts transmit outcomes.
type TransmitStats struct {
	Sent     uint64 `json:"sent"`
	Failed   uint64 `json:"failed"`
	Bytes    uint64 `json:"bytes"`
	Redials  uint64 `json:"redials"`
	LastSize int    `json:"last_size"`
}

// Transmitter serializes, frames, paces, and writes grids to a Driver.
// Send is safe for concurrent use; writes are serialized.
type Transmitter struct {
	cfg     TransmitterConfig
	open    Opener
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu     sync.Mutex
	driver Driver
	rng    *rand.Rand
	stats  TransmitStats
}

// NewTransmitter wraps driver. When driver is nil or a write fails, open (if
// set) is used to redial before the next send.
func NewTransmitter(cfg TransmitterConfig, driver Driver, open Opener) *Transmitter {
	if cfg.Name == "" {
		cfg.Name = "link"
	}
	if cfg.Limits.MaxPayloadBytes <= 0 {
		cfg.Limits = frame.DefaultLimits()
	}
	limit := rate.Inf
	if cfg.FrameRate > 0 {
		limit = rate.Limit(cfg.FrameRate)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Transmitter{
		cfg:     cfg,
		open:    open,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logging.Component("link").With().Str("link", cfg.Name).Logger(),
		driver:  driver,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Payload returns the grid bytes in wire order for this link.
func (t *Transmitter) Payload(g *grid.Grid) []byte {
	if t.cfg.Transform.IsIdentity() {
		return g.Bytes()
	}
	return g.Transformed(t.cfg.Transform)
}

// Encode returns exactly the bytes Send would write for g.
func (t *Transmitter) Encode(g *grid.Grid) ([]byte, error) {
	return t.encode(t.Payload(g))
}

func (t *Transmitter) encode(payload []byte) ([]byte, error) {
	if len(payload) > t.cfg.Limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d > %d", frame.ErrPayloadTooLarge, len(payload), t.cfg.Limits.MaxPayloadBytes)
	}
	if t.cfg.Raw {
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	}
	return frame.Encode(payload), nil
}

// Send pushes the current contents of g. Failures are returned and counted,
// never retried.
func (t *Transmitter) Send(ctx context.Context, g *grid.Grid) error {
	return t.SendPayload(ctx, t.Payload(g))
}

func (t *Transmitter) SendPayload(ctx context.Context, payload []byte) error {
	wire, err := t.encode(payload)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("link: rate wait: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.driver == nil {
		if err := t.redialLocked(ctx); err != nil {
			t.stats.Failed++
			observability.RecordLinkWrite(t.cfg.Name, len(wire), time.Since(start), err)
			return err
		}
	}

	n, err := t.driver.Write(wire)
	if err == nil && n != len(wire) {
		err = fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(wire))
	}
	observability.RecordLinkWrite(t.cfg.Name, len(wire), time.Since(start), err)
	if err != nil {
		t.stats.Failed++
		t.logger.Warn().Err(err).Int("bytes", len(wire)).Msg("link write failed")
		if t.open != nil {
			_ = t.driver.Close()
			t.driver = nil
		}
		return err
	}

	t.stats.Sent++
	t.stats.Bytes += uint64(len(wire))
	t.stats.LastSize = len(wire)
	t.logger.Debug().Int("payload", len(payload)).Int("bytes", len(wire)).Msg("frame sent")
	return nil
}

func (t *Transmitter) redialLocked(ctx context.Context) error {
	if t.open == nil {
		return ErrClosed
	}
	d, err := Dial(ctx, t.open, t.cfg.Backoff, t.rng)
	if err != nil {
		t.logger.Error().Err(err).Msg("link redial failed")
		return err
	}
	t.stats.Redials++
	t.driver = d
	t.logger.Info().Msg("link connected")
	return nil
}

func (t *Transmitter) Stats() TransmitStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Connected reports whether a driver is currently attached.
func (t *Transmitter) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.driver != nil
}

func (t *Transmitter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.driver == nil {
		return nil
	}
	err := t.driver.Close()
	t.driver = nil
	t.open = nil
	return err
}
