package rate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSerialSpacingAndSingleFlight(t *testing.T) {
	const (
		interval = 30 * time.Millisecond
		ops      = 6
	)
	lim := NewSerial(interval)

	var (
		mu       sync.Mutex
		starts   []time.Time
		inFlight int32
		maxSeen  int32
		wg       sync.WaitGroup
	)
	for i := 0; i < ops; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lim.Do(context.Background(), func(context.Context) error {
				cur := atomic.AddInt32(&inFlight, 1)
				defer atomic.AddInt32(&inFlight, -1)
				for {
					prev := atomic.LoadInt32(&maxSeen)
					if cur <= prev || atomic.CompareAndSwapInt32(&maxSeen, prev, cur) {
						break
					}
				}
				// op holds the slot, so reading the admission instant is safe
				mu.Lock()
				starts = append(starts, lim.last)
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one operation in flight, saw %d", maxSeen)
	}
	if len(starts) != ops {
		t.Fatalf("expected %d starts, got %d", ops, len(starts))
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < interval {
			t.Fatalf("operations %d and %d started %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestSerialFirstCallImmediate(t *testing.T) {
	lim := NewSerial(time.Second)
	begin := time.Now()
	if err := lim.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 100*time.Millisecond {
		t.Fatalf("first call waited %v", elapsed)
	}
}

func TestSerialPropagatesErrorWithoutRetry(t *testing.T) {
	lim := NewSerial(time.Millisecond)
	boom := errors.New("boom")
	calls := 0
	err := lim.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestSerialCanceledWhileQueued(t *testing.T) {
	lim := NewSerial(time.Hour)
	if err := lim.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := lim.Do(ctx, func(context.Context) error {
		ran = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if ran {
		t.Fatalf("operation ran despite canceled wait")
	}
}

func TestSubmitReturnsTypedResult(t *testing.T) {
	got, err := Submit(context.Background(), Unlimited{}, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d want 42", got)
	}

	boom := errors.New("boom")
	got, err = Submit(context.Background(), NewSerial(time.Millisecond), func(context.Context) (int, error) {
		return 7, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got != 0 {
		t.Fatalf("expected zero value on error, got %d", got)
	}
}
