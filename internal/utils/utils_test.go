package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForSleeps(t *testing.T) {
	var slept time.Duration
	original := sleep
	sleep = func(d time.Duration) { slept = d }
	defer func() { sleep = original }()

	if err := WaitFor(context.Background(), 30*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 30*time.Second {
		t.Fatalf("expected 30s sleep, got %s", slept)
	}
}

func TestWaitForCancelled(t *testing.T) {
	release := make(chan struct{})
	original := sleep
	sleep = func(time.Duration) { <-release }
	defer func() {
		close(release)
		sleep = original
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForNonPositive(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

var errTransient = errors.New("transient")

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var waits []time.Duration
	original := sleep
	sleep = func(d time.Duration) { waits = append(waits, d) }
	t.Cleanup(func() { sleep = original })
	return &waits
}

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func TestRetryUntilSuccess(t *testing.T) {
	waits := noSleep(t)

	tries, err := Retry(context.Background(), 5, time.Second, isTransient, func(attempt int) error {
		if attempt < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil || tries != 3 {
		t.Fatalf("expected success on the third call, got %d, %v", tries, err)
	}
	if len(*waits) != 2 || (*waits)[0] != time.Second {
		t.Fatalf("expected two one-second waits, got %v", *waits)
	}
}

func TestRetryStops(t *testing.T) {
	noSleep(t)
	permanent := errors.New("unauthorized")

	tests := []struct {
		name      string
		attempts  int
		wait      time.Duration
		err       error
		wantTries int
	}{
		{name: "attempts spent", attempts: 2, wait: time.Second, err: errTransient, wantTries: 2},
		{name: "permanent error", attempts: 5, wait: time.Second, err: permanent, wantTries: 1},
		{name: "no wait", attempts: 5, wait: 0, err: errTransient, wantTries: 1},
		{name: "non-positive attempts", attempts: 0, wait: time.Second, err: errTransient, wantTries: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			tries, err := Retry(context.Background(), tt.attempts, tt.wait, isTransient, func(int) error {
				calls++
				return tt.err
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if tries != tt.wantTries || calls != tt.wantTries {
				t.Fatalf("expected %d calls, got tries=%d calls=%d", tt.wantTries, tries, calls)
			}
		})
	}
}

func TestRetryCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	original := sleep
	sleep = func(time.Duration) { <-release }
	defer func() {
		close(release)
		sleep = original
	}()

	tries, err := Retry(ctx, 3, time.Minute, isTransient, func(int) error { return errTransient })
	if !errors.Is(err, context.Canceled) || tries != 1 {
		t.Fatalf("expected cancellation after one call, got %d, %v", tries, err)
	}
}
