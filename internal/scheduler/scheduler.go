// Package scheduler runs a task on wall-clock aligned interval boundaries.
package scheduler

import (
	"context"
	"time"

	"fieldpulse/internal/logger"
)

// AlignedScheduler fires at multiples of Interval (plus Offset) so that
// restarts keep the same cadence.
type AlignedScheduler struct {
	Name           string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	nowFn func() time.Time
}

func NewAlignedScheduler(name string, interval, offset time.Duration) *AlignedScheduler {
	return &AlignedScheduler{
		Name:     name,
		Interval: interval,
		Offset:   offset,
		nowFn:    time.Now,
	}
}

// Start blocks, invoking task at every aligned tick until ctx is done.
func (s *AlignedScheduler) Start(ctx context.Context, task func(context.Context)) {
	if s == nil {
		return
	}
	prefix := "scheduler"
	if s.Name != "" {
		prefix = prefix + "[" + s.Name + "]"
	}
	if task == nil {
		logger.Warnf("%s: task is nil, exit", prefix)
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("%s: invalid interval=%s, exit", prefix, s.Interval)
		return
	}
	if s.Offset < 0 {
		logger.Warnf("%s: negative offset=%s, clamp to 0", prefix, s.Offset)
		s.Offset = 0
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	startAt := s.nowFn().UTC()
	logger.Infof("%s: started interval=%s offset=%s run_immediately=%v at=%s",
		prefix, s.Interval, s.Offset, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		task(ctx)
	}

	for {
		if ctx.Err() != nil {
			logger.Infof("%s: ctx done, exit", prefix)
			return
		}
		now := s.nowFn().UTC()
		wakeAt, wait := s.nextTimes(now)
		logger.Debugf("%s: next run at=%s (in %s) uptime=%s",
			prefix, wakeAt.Format(time.RFC3339), wait.Truncate(time.Millisecond), now.Sub(startAt).Truncate(time.Second))

		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				logger.Infof("%s: ctx done, exit", prefix)
				return
			case <-timer.C:
			}
		}
		task(ctx)
	}
}

func (s *AlignedScheduler) nextTimes(now time.Time) (wakeAt time.Time, wait time.Duration) {
	now = now.UTC()
	boundary := now.Truncate(s.Interval).Add(s.Interval)
	wakeAt = boundary.Add(s.Offset)
	return wakeAt, wakeAt.Sub(now)
}
