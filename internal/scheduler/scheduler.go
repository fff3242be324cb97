// Package scheduler drives the periodic decision cycle. Ticks are aligned
// to the top of the hour; a failed cycle is logged and the loop carries on
// to the next boundary, and a fault that escapes the cycle's failure
// boundary degrades the loop to fixed-backoff polling instead of crashing.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hourly-trading-bot/internal/logger"
	"hourly-trading-bot/internal/types"
)

// Ticker is the per-cycle work unit, satisfied by engine.Engine.
type Ticker interface {
	Tick(ctx context.Context) (*types.TickResult, error)
}

// Fault is an error that escaped the per-cycle failure boundary, such as
// a panic inside the cycle. It triggers the backoff delay.
type Fault struct {
	Reason any
}

func (f *Fault) Error() string {
	return fmt.Sprintf("scheduling fault: %v", f.Reason)
}

type Scheduler struct {
	tick    Ticker
	backoff time.Duration
	loc     *time.Location
	now     func() time.Time

	// delayFn computes how long to sleep after a completed cycle.
	// Overridable in tests.
	delayFn func(time.Time) time.Duration
}

func New(tick Ticker, backoff time.Duration, loc *time.Location) *Scheduler {
	return &Scheduler{
		tick:    tick,
		backoff: backoff,
		loc:     loc,
		now:     time.Now,
		delayFn: NextTickDelay,
	}
}

// NextTickDelay returns the time remaining until the top of the next hour.
func NextTickDelay(now time.Time) time.Duration {
	return now.Truncate(time.Hour).Add(time.Hour).Sub(now)
}

// Run loops until ctx is cancelled. Cancellation is cooperative: an
// in-flight cycle always finishes, a new one is never started.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.Info(ctx, "Scheduler started", "backoff", s.backoff.String())
	for {
		if ctx.Err() != nil {
			logger.Info(ctx, "Scheduler stopped")
			return nil
		}

		res, err := s.safeCycle(ctx)
		if err != nil {
			var fault *Fault
			if errors.As(err, &fault) {
				logger.ErrorWithErr(ctx, "Cycle fault, backing off", err, "backoff", s.backoff.String())
				if !s.sleep(ctx, s.backoff) {
					logger.Info(ctx, "Scheduler stopped")
					return nil
				}
				continue
			}
			logger.ErrorWithErr(ctx, "Cycle failed", err)
		} else if res != nil {
			logger.Info(ctx, "Cycle complete", "hour", res.Hour, "notes", res.Notes)
		}

		delay := s.delayFn(s.now().In(s.loc))
		logger.Debug(ctx, "Waiting for next cycle", "delay", delay.String())
		if !s.sleep(ctx, delay) {
			logger.Info(ctx, "Scheduler stopped")
			return nil
		}
	}
}

// safeCycle is the failure boundary: errors come back classified, panics
// come back as a Fault.
func (s *Scheduler) safeCycle(ctx context.Context) (res *types.TickResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &Fault{Reason: r}
		}
	}()
	return s.tick.Tick(ctx)
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
