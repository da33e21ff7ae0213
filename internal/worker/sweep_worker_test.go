package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSweeper struct {
	calls int
	err   error
}

func (f *fakeSweeper) SweepExpired(ctx context.Context) (int, error) {
	f.calls++
	return 0, f.err
}

func newTestWorker(sweeper *fakeSweeper, start time.Time) (*SweepWorker, *time.Time) {
	clock := start
	w := NewSweepWorker(sweeper, zerolog.Nop())
	w.now = func() time.Time { return clock }
	return w, &clock
}

func TestPollSweepsOncePerLocalDay(t *testing.T) {
	sweeper := &fakeSweeper{}
	w, clock := newTestWorker(sweeper, time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	w.lastSweptDay = w.sweep(ctx)
	if sweeper.calls != 1 {
		t.Fatalf("startup sweeps = %d, want 1", sweeper.calls)
	}

	// Hourly ticks within the same day must not sweep again.
	for hour := 9; hour <= 23; hour++ {
		*clock = time.Date(2026, 9, 1, hour, 0, 0, 0, time.Local)
		w.poll(ctx)
	}
	if sweeper.calls != 1 {
		t.Errorf("sweeps after same-day ticks = %d, want 1", sweeper.calls)
	}

	// The first tick of the next day sweeps once.
	*clock = time.Date(2026, 9, 2, 0, 0, 0, 0, time.Local)
	w.poll(ctx)
	*clock = time.Date(2026, 9, 2, 1, 0, 0, 0, time.Local)
	w.poll(ctx)
	if sweeper.calls != 2 {
		t.Errorf("sweeps after day rollover = %d, want 2", sweeper.calls)
	}
}

func TestPollRetriesAfterFailedSweep(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	w, clock := newTestWorker(sweeper, time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	// The failed startup sweep must not mark the day as done.
	w.lastSweptDay = w.sweep(ctx)
	if w.lastSweptDay != "" {
		t.Fatalf("lastSweptDay = %q, want empty after failure", w.lastSweptDay)
	}

	// The next tick retries within the same day.
	*clock = time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	w.poll(ctx)
	if sweeper.calls != 2 {
		t.Fatalf("sweeps = %d, want 2 (retry after failure)", sweeper.calls)
	}

	// Once a sweep succeeds, the rest of the day stays quiet.
	sweeper.err = nil
	*clock = time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	w.poll(ctx)
	if w.lastSweptDay != "2026-09-01" {
		t.Errorf("lastSweptDay = %q, want 2026-09-01", w.lastSweptDay)
	}
	*clock = time.Date(2026, 9, 1, 11, 0, 0, 0, time.Local)
	w.poll(ctx)
	if sweeper.calls != 3 {
		t.Errorf("sweeps = %d, want 3 (no extra sweep after success)", sweeper.calls)
	}
}
