package relayer

import (
	"context"
	"time"

	log "github.com/InjectiveLabs/suplog"
	"github.com/jpillora/backoff"

	"github.com/InjectiveLabs/metrics"
)

const (
	// CycleInterval is the target spacing between submission cycle starts.
	CycleInterval = 45 * time.Second

	// rescheduleFloor is the minimum pause between cycles, applied when a
	// cycle ran longer than the interval.
	rescheduleFloor = 500 * time.Millisecond

	// failureBackoff is the fixed wait after a failed cycle before the next
	// attempt, whatever the failure cause.
	failureBackoff = 10 * time.Second
)

// Scheduler re-invokes the submission cycle indefinitely. At most one cycle
// is in flight at a time: the next cycle is scheduled only once the previous
// one returned.
type Scheduler struct {
	svc Service

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	retry *backoff.Backoff

	logger  log.Logger
	svcTags metrics.Tags
}

func NewScheduler(svc Service) *Scheduler {
	return &Scheduler{
		svc: svc,

		now:   time.Now,
		sleep: sleepCtx,
		retry: &backoff.Backoff{
			Min: failureBackoff,
			Max: failureBackoff,
		},

		logger: log.WithField("svc", "scheduler"),
		svcTags: metrics.Tags{
			"svc": "scheduler",
		},
	}
}

// Run loops between the Running and Backoff states until ctx is cancelled.
// Cancellation is only observed between cycles, never mid-cycle.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		started := s.now()

		if _, err := s.svc.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			metrics.ReportFuncError(s.svcTags)
			wait := s.retry.Duration()
			s.logger.WithError(err).Errorf("submission cycle failed, backing off for %s", wait)

			if err := s.sleep(ctx, wait); err != nil {
				return err
			}
			continue
		}

		s.retry.Reset()

		delay := nextDelay(s.now().Sub(started))
		s.logger.Debugf("cycle done, next run in %s", delay)

		if err := s.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// nextDelay computes the pause after a successful cycle that took elapsed:
// the remainder of the interval, never less than the floor.
func nextDelay(elapsed time.Duration) time.Duration {
	delay := CycleInterval - elapsed
	if delay < rescheduleFloor {
		return rescheduleFloor
	}
	return delay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
