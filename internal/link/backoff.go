package link

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig defines reconnect backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
	// MaxAttempts bounds one reconnect cycle; <= 0 retries until the
	// context ends.
	MaxAttempts int
}

func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       true,
		MaxAttempts:  5,
	}
}

// NextBackoffDelay returns the retry delay for attempt N (1-based).
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter && rng != nil {
		delay = delay * (0.5 + rng.Float64())
	}
	return time.Duration(delay)
}

// Dial calls open until it succeeds, the attempts run out, or ctx ends.
func Dial(ctx context.Context, open Opener, cfg BackoffConfig, rng *rand.Rand) (Driver, error) {
	if open == nil {
		return nil, fmt.Errorf("%w: no opener", ErrUnavailable)
	}
	var lastErr error
	for attempt := 1; cfg.MaxAttempts <= 0 || attempt <= cfg.MaxAttempts; attempt++ {
		d, err := open()
		if err == nil {
			return d, nil
		}
		lastErr = err
		if cfg.MaxAttempts > 0 && attempt == cfg.MaxAttempts {
			break
		}
		timer := time.NewTimer(NextBackoffDelay(cfg, attempt, rng))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("%w: %d attempts: %v", ErrUnavailable, cfg.MaxAttempts, lastErr)
}
