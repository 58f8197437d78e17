package authflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunWithTimeoutCompletesInTime(t *testing.T) {
	err := runWithTimeout(context.Background(), time.Second, func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestRunWithTimeoutPropagatesOpError(t *testing.T) {
	opErr := errors.New("boom")
	err := runWithTimeout(context.Background(), time.Second, func(context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("expected op error, got %v", err)
	}
}

func TestRunWithTimeoutDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := runWithTimeout(context.Background(), 20*time.Millisecond, func(context.Context) error {
		<-release
		return nil
	})
	if !errors.Is(err, errDeadlineElapsed) {
		t.Fatalf("expected errDeadlineElapsed, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("deadline took %v to fire", elapsed)
	}
}

func TestRunWithTimeoutLoserKeepsCallerContext(t *testing.T) {
	sawCancel := make(chan bool, 1)
	release := make(chan struct{})
	defer close(release)

	err := runWithTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) error {
		<-release
		sawCancel <- ctx.Err() != nil
		return nil
	})
	if !errors.Is(err, errDeadlineElapsed) {
		t.Fatalf("expected errDeadlineElapsed, got %v", err)
	}

	// Let the loser finish: it must still see a live context because losing
	// the race does not cancel the operation.
	release <- struct{}{}
	select {
	case cancelled := <-sawCancel:
		if cancelled {
			t.Fatal("loser observed a cancelled context")
		}
	case <-time.After(time.Second):
		t.Fatal("loser never finished")
	}
}

func TestRunWithTimeoutCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	defer close(release)

	err := runWithTimeout(ctx, time.Minute, func(context.Context) error {
		<-release
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
