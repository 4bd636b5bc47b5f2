package rate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	xrate "golang.org/x/time/rate"
)

// DefaultInterval keeps us under ~6.6 requests per second against Drive.
const DefaultInterval = 150 * time.Millisecond

// Limiter gates outbound API calls so we respect Drive and Sheets rate limits.
type Limiter interface {
	Do(ctx context.Context, op func(ctx context.Context) error) error
}

// Submit runs op through l and hands back its typed result.
func Submit[T any](ctx context.Context, l Limiter, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := l.Do(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Serial admits one operation at a time and spaces the start of consecutive
// operations by at least the configured interval. Waiting callers queue
// without bound.
type Serial struct {
	interval time.Duration
	slot     *semaphore.Weighted
	pacer    *xrate.Limiter
	// last is the previous admission instant; only the slot holder touches it.
	last time.Time
}

// NewSerial returns a limiter that starts at most one operation per interval.
func NewSerial(interval time.Duration) *Serial {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Serial{
		interval: interval,
		slot:     semaphore.NewWeighted(1),
		// burst of one: the first call proceeds immediately
		pacer: xrate.NewLimiter(xrate.Every(interval), 1),
	}
}

// Interval reports the minimum spacing between operation starts.
func (s *Serial) Interval() time.Duration { return s.interval }

// Do blocks until op may start, runs it, and returns its error untouched.
func (s *Serial) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := s.slot.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("rate wait canceled: %w", err)
	}
	defer s.slot.Release(1)

	if err := s.pace(ctx); err != nil {
		return err
	}
	return op(ctx)
}

// pace takes the token at the instant the operation is allowed to start so the
// spacing is measured between real starts, not between reservations. The
// pacer's float token math can admit a few nanoseconds early, so the gap to
// last is also checked in whole durations.
func (s *Serial) pace(ctx context.Context) error {
	for {
		now := time.Now()
		delay := s.interval - now.Sub(s.last)
		if delay <= 0 {
			if s.pacer.AllowN(now, 1) {
				s.last = now
				return nil
			}
			missing := 1 - s.pacer.TokensAt(now)
			delay = time.Duration(missing * float64(s.interval))
		}
		if delay <= 0 {
			delay = time.Millisecond
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rate wait canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// Unlimited runs every operation immediately.
type Unlimited struct{}

// Do implements Limiter.
func (Unlimited) Do(ctx context.Context, op func(ctx context.Context) error) error {
	return op(ctx)
}

var (
	_ Limiter = (*Serial)(nil)
	_ Limiter = Unlimited{}
)
