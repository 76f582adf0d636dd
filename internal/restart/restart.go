// Package restart retries capture start-up with exponential backoff.
package restart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// ErrMaxRetries is returned once a policy's retries are used up.
var ErrMaxRetries = errors.New("restart: max retries exceeded")

// Policy contains the backoff parameters
type Policy struct {
	MaxRetries   int           // Retries after the first attempt (default: 5)
	InitialDelay time.Duration // Delay before the first retry (default: 1 second)
	MaxDelay     time.Duration // Delay cap (default: 30 seconds)
}

// DefaultPolicy returns the default restart policy
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// State tracks retries across calls to Run
type State struct {
	// Retries is the number of consecutive failed attempts
	Retries int
	// Restarts counts every retry ever made
	Restarts atomic.Uint32
}

// Reset clears the consecutive failure count after the capture ran
// successfully for a while.
func (s *State) Reset() {
	s.Retries = 0
	slog.Debug("restart: state reset")
}

// StartFunc attempts to start capture
type StartFunc func(ctx context.Context) error

// Run calls start until it succeeds, retrying with exponential backoff.
//
// Backoff schedule with the default policy:
//   - Retry 1: 1s
//   - Retry 2: 2s
//   - Retry 3: 4s
//   - Retry 4: 8s
//   - Retry 5: 16s
//   - Then ErrMaxRetries
//
// Returns ctx.Err() if the context is cancelled first.
func Run(ctx context.Context, start StartFunc, p Policy, state *State) error {
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("restart: context cancelled, giving up")
			return err
		}

		err := start(ctx)
		if err == nil {
			state.Retries = 0
			return nil
		}

		slog.Error("restart: capture start failed", "error", err)

		state.Retries++
		state.Restarts.Add(1)
		if state.Retries > p.MaxRetries {
			return fmt.Errorf("%w (%d attempts): %w", ErrMaxRetries, p.MaxRetries, err)
		}

		delay := Backoff(state.Retries, p)
		slog.Warn("restart: retrying capture",
			"attempt", state.Retries,
			"max_retries", p.MaxRetries,
			"delay", delay,
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			slog.Info("restart: context cancelled during backoff")
			return ctx.Err()
		}
	}
}

// Backoff returns the delay before retry number attempt (1-based):
// InitialDelay * 2^(attempt-1), capped at MaxDelay.
func Backoff(attempt int, p Policy) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// Past 2^30 the cap applies anyway.
	if attempt > 31 {
		attempt = 31
	}
	delay := p.InitialDelay * time.Duration(1<<uint(attempt-1))
	if p.MaxDelay > 0 && (delay > p.MaxDelay || delay < 0) {
		delay = p.MaxDelay
	}
	return delay
}
