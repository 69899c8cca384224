package link

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/danmuck/tlns/internal/logging"
	"github.com/danmuck/tlns/internal/observability"
	"github.com/danmuck/tlns/internal/protocol/frame"
	"github.com/rs/zerolog"
)

const DefaultPollInterval = 10 * time.Millisecond

// Receiver polls a Driver and feeds a frame.Decoder.
type Receiver struct {
	name     string
	driver   Driver
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	decoder *frame.Decoder
}

func NewReceiver(name string, driver Driver, limits frame.Limits, interval time.Duration) *Receiver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	r := &Receiver{
		name:     name,
		driver:   driver,
		interval: interval,
		logger:   logging.Component("link").With().Str("link", name).Logger(),
		decoder:  frame.NewDecoder(limits),
	}
	r.decoder.OnError = func(reason frame.ErrorReason) {
		observability.RecordDecodeError(name, string(reason))
		r.logger.Debug().Str("reason", string(reason)).Msg("frame dropped")
	}
	return r
}

// Run polls until ctx ends or the driver fails, calling handle for every
// recovered payload in arrival order. A cancelled context is not an error.
func (r *Receiver) Run(ctx context.Context, handle func(payload []byte)) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		chunk, err := r.driver.Poll()
		if err != nil {
			if errors.Is(err, ErrClosed) && ctx.Err() != nil {
				return nil
			}
			return err
		}
		if len(chunk) == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			continue
		}
		for _, payload := range r.feed(chunk) {
			observability.RecordFrameDecoded(r.name)
			if handle != nil {
				handle(payload)
			}
		}
	}
}

func (r *Receiver) feed(chunk []byte) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decoder.Feed(chunk)
}

func (r *Receiver) Stats() frame.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decoder.Stats()
}
