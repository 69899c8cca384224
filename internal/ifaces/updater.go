package ifaces

import (
	"context"
	"sync"
	"time"

	"github.com/danmuck/tlns/internal/logging"
	"github.com/danmuck/tlns/internal/observability"
	"github.com/rs/zerolog"
)

// Updater refreshes a Lister snapshot on a fixed interval. The owner starts
// and stops it explicitly; readers get the latest snapshot without blocking
// on a scan.
type Updater struct {
	lister   *Lister
	interval time.Duration
	logger   zerolog.Logger

	mu   sync.RWMutex
	snap Snapshot

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewUpdater(lister *Lister, interval time.Duration) *Updater {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Updater{
		lister:   lister,
		interval: interval,
		logger:   logging.Component("ifaces"),
	}
}

// Start performs one synchronous scan and then refreshes in the background
// until Stop or ctx ends.
func (u *Updater) Start(ctx context.Context) error {
	u.runMu.Lock()
	defer u.runMu.Unlock()
	if u.cancel != nil {
		return ErrAlreadyStarted
	}

	u.refresh(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.done = make(chan struct{})
	go u.run(runCtx, u.done)
	u.logger.Debug().Dur("interval", u.interval).Msg("iface updater started")
	return nil
}

func (u *Updater) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.refresh(ctx)
		}
	}
}

func (u *Updater) refresh(ctx context.Context) {
	snap, err := u.lister.List(ctx)
	if err != nil {
		u.logger.Warn().Err(err).Msg("iface scan failed")
		return
	}
	u.mu.Lock()
	u.snap = snap
	u.mu.Unlock()
	observability.SetSerialInterfaces(len(snap))
}

// Stop cancels the background scan and waits for it to exit. It is safe to
// call more than once.
func (u *Updater) Stop() {
	u.runMu.Lock()
	cancel, done := u.cancel, u.done
	u.cancel, u.done = nil, nil
	u.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	u.logger.Debug().Msg("iface updater stopped")
}

// Snapshot returns a copy of the latest scan.
func (u *Updater) Snapshot() Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make(Snapshot, len(u.snap))
	copy(out, u.snap)
	return out
}
