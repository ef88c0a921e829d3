package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAttemptFailed = errors.New("attempt failed")

func TestRetryPolicy_Run_SucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	policy := retryPolicy{attempts: 5, basePause: time.Millisecond}

	var calls int

	err := policy.run(context.Background(), func(context.Context) error {
		calls++
		if calls <= 2 {
			return errAttemptFailed
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_Run_ExhaustsBudget(t *testing.T) {
	t.Parallel()

	policy := retryPolicy{attempts: 2, basePause: time.Millisecond}

	var calls int

	err := policy.run(context.Background(), func(context.Context) error {
		calls++

		return errAttemptFailed
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, errAttemptFailed)
	assert.ErrorContains(t, err, "all 2 attempts failed")
}

func TestRetryPolicy_Run_StopsWhenContextDies(t *testing.T) {
	t.Parallel()

	policy := retryPolicy{attempts: 5, basePause: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())

	var calls int

	err := policy.run(ctx, func(context.Context) error {
		calls++
		cancel()

		return errAttemptFailed
	})

	require.Error(t, err)
	// The attempt error comes back as is; no further attempts follow.
	assert.ErrorIs(t, err, errAttemptFailed)
	assert.NotContains(t, err.Error(), "attempts failed")
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Run_InterruptedDuringPause(t *testing.T) {
	t.Parallel()

	policy := retryPolicy{attempts: 5, basePause: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())

	var calls int

	timer := time.AfterFunc(50*time.Millisecond, cancel)
	defer timer.Stop()

	err := policy.run(ctx, func(context.Context) error {
		calls++

		return errAttemptFailed
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "interrupted between attempts")
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_Pause_StaysWithinBounds(t *testing.T) {
	t.Parallel()

	policy := retryPolicy{attempts: 5, basePause: 100 * time.Millisecond}

	for exponent := int64(0); exponent <= 3; exponent++ {
		upper := policy.basePause << exponent
		lower := upper / 2

		for iter := 0; iter < 50; iter++ {
			pause := policy.pause(exponent)
			assert.GreaterOrEqual(t, pause, lower, "exponent %d", exponent)
			assert.Less(t, pause, upper, "exponent %d", exponent)
		}
	}
}

func TestRetryPolicy_Pause_CapsTheExponent(t *testing.T) {
	t.Parallel()

	policy := retryPolicy{attempts: 5, basePause: time.Second}

	// Far beyond the cap the pause must stay finite and positive.
	pause := policy.pause(10_000)
	assert.Positive(t, pause)
	assert.LessOrEqual(t, pause, time.Second<<maxBackoffExponent)
}
