package move

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryDelay returns the wait before automatic retry number attempt (1-based):
// base doubled per attempt, capped at max, without jitter.
func RetryDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	if d > max {
		return max
	}
	return d
}

// retrySchedule is a deterministic backoff.BackOff over RetryDelay.
type retrySchedule struct {
	base    time.Duration
	max     time.Duration
	attempt int
}

var _ backoff.BackOff = (*retrySchedule)(nil)

func (r *retrySchedule) NextBackOff() time.Duration {
	r.attempt++
	return RetryDelay(r.attempt, r.base, r.max)
}

func (r *retrySchedule) Reset() {
	r.attempt = 0
}
