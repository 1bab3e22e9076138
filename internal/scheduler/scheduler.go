// Package scheduler fires the daily report at a configured wall-clock time.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidmaw/hotdaily/pkg/report"
)

// minSleep keeps a trigger that just fired from retriggering in a tight loop.
const minSleep = 5 * time.Second

// defaultTriggerHour, defaultTriggerMinute back a malformed trigger_time.
const (
	defaultTriggerHour   = 9
	defaultTriggerMinute = 0
)

// Scheduler emits one report request per day at triggerTime.
type Scheduler struct {
	worker      *report.Worker
	triggerTime string
	now         func() time.Time
}

// New creates a scheduler. triggerTime is "HH:MM" local time; now is the
// clock, nil means time.Now.
func New(worker *report.Worker, triggerTime string, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{worker: worker, triggerTime: triggerTime, now: now}
}

// Run blocks until ctx is cancelled, enqueueing a scheduled report each time
// the trigger passes.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := NextTrigger(s.now(), s.triggerTime)
		sleep := next.Sub(s.now())
		if sleep < minSleep {
			sleep = minSleep
		}
		log.Info().Time("next", next).Dur("sleep", sleep).Msg("scheduler waiting")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
			s.worker.Enqueue(report.Request{Reason: "schedule"})
		}
	}
}

// NextTrigger returns the next occurrence of triggerTime ("HH:MM") after now:
// today when still ahead, otherwise tomorrow. Malformed input falls back to
// 09:00.
func NextTrigger(now time.Time, triggerTime string) time.Time {
	hour, minute := defaultTriggerHour, defaultTriggerMinute
	if t, err := time.Parse("15:04", triggerTime); err == nil {
		hour, minute = t.Hour(), t.Minute()
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
