package library

import (
	"context"
	"fmt"
	"time"

	"github.com/aphonin/fonoteka/internal/utils"
)

// maxBackoffExponent keeps the shifted base pause well inside the int64
// nanosecond range.
const maxBackoffExponent = 20

// retryPolicy spaces repeated attempts of one operation exponentially.
type retryPolicy struct {
	// attempts is the total attempt budget, the first try included.
	attempts int64
	// basePause is the pause before the second attempt; every further
	// pause doubles it.
	basePause time.Duration
}

// run invokes operation until it succeeds, the attempt budget runs out, or
// the context is done. The pause before attempt i+1 is basePause<<i scaled
// by a random factor in [0.5, 1.0) so parallel tracks do not thunder in
// lockstep.
func (p retryPolicy) run(ctx context.Context, operation func(ctx context.Context) error) error {
	var lastErr error

	for attempt := int64(0); attempt < p.attempts; attempt++ {
		if attempt > 0 {
			if err := sleepWithContext(ctx, p.pause(attempt-1)); err != nil {
				return fmt.Errorf("interrupted between attempts: %w", err)
			}
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			return lastErr
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", p.attempts, lastErr)
}

// pause returns the jittered delay that follows the given 0-based attempt.
func (p retryPolicy) pause(exponent int64) time.Duration {
	if exponent > maxBackoffExponent {
		exponent = maxBackoffExponent
	}

	pause := p.basePause << exponent

	return utils.RandomDuration(pause/2, pause)
}

// sleepWithContext pauses like time.Sleep but wakes up on cancellation.
func sleepWithContext(ctx context.Context, pause time.Duration) error {
	timer := time.NewTimer(pause)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
