package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SweepPollInterval is how often the worker wakes to check whether the
// local day has rolled over. The sweep itself runs once per day.
const SweepPollInterval = 1 * time.Hour

// scheduleSweeper removes expired schedules and reports how many went.
type scheduleSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// SweepWorker deletes exam schedules whose date has passed, together
// with their participants and file attachments. It runs one sweep at
// startup and then once per local day.
type SweepWorker struct {
	schedules    scheduleSweeper
	now          func() time.Time
	lastSweptDay string
	log          zerolog.Logger
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(schedules scheduleSweeper, log zerolog.Logger) *SweepWorker {
	return &SweepWorker{
		schedules: schedules,
		now:       time.Now,
		log:       log.With().Str("component", "sweep_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SweepWorker started")

	w.lastSweptDay = w.sweep(ctx)

	ticker := time.NewTicker(SweepPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SweepWorker stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll runs on every tick and sweeps only when the local day has changed
// since the last successful sweep.
func (w *SweepWorker) poll(ctx context.Context) {
	if today := localDay(w.now()); today != w.lastSweptDay {
		w.lastSweptDay = w.sweep(ctx)
	}
}

// sweep runs one pass and returns the local day it ran on. Failures are
// logged; the empty return makes the next tick try again instead of
// waiting for the next day change.
func (w *SweepWorker) sweep(ctx context.Context) string {
	day := localDay(w.now())

	removed, err := w.schedules.SweepExpired(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Schedule sweep failed")
		return ""
	}

	if removed > 0 {
		w.log.Info().Int("removed", removed).Msg("Schedule sweep complete")
	} else {
		w.log.Debug().Msg("Schedule sweep found nothing to remove")
	}
	return day
}

func localDay(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
