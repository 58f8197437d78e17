package authflow

import (
	"context"
	"errors"
	"time"
)

// errDeadlineElapsed is the race outcome when the timeout settles first.
var errDeadlineElapsed = errors.New("operation deadline elapsed")

// runWithTimeout races op against a one-shot timer and returns whichever
// settles first. The losing side is NOT cancelled: op receives the caller's
// ctx unchanged and may keep running after the timer fires; its eventual
// result lands in a buffered channel and is discarded. Callers rely on this
// fire-and-forget-if-slow behavior; do not replace it with a derived
// cancellation context.
func runWithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errDeadlineElapsed
	case <-ctx.Done():
		return ctx.Err()
	}
}
