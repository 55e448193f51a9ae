package usecase

import (
	"context"
	"time"
)

// DefaultConfirmSchedule is the delay applied after each negative check.
var DefaultConfirmSchedule = []time.Duration{
	200 * time.Millisecond,
	600 * time.Millisecond,
	1200 * time.Millisecond,
	2 * time.Second,
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs check once per schedule entry, sleeping for that entry after each
// negative result. With finalCheck set, one more check follows the last delay.
// It returns true as soon as check does.
func Retry(ctx context.Context, schedule []time.Duration, finalCheck bool, sleep Sleeper, check func(context.Context) bool) bool {
	if sleep == nil {
		sleep = sleepContext
	}
	for _, delay := range schedule {
		if check(ctx) {
			return true
		}
		if err := sleep(ctx, delay); err != nil {
			return false
		}
	}
	if finalCheck {
		return check(ctx)
	}
	return false
}
