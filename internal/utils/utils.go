package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done. Callers use it to back off after a
// provider reports a cold start.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Retry calls fn until it succeeds or attempts calls were made. It waits for
// wait between calls, and only keeps going while retryable accepts the last
// error. It returns the number of calls made and the last error.
func Retry(ctx context.Context, attempts int, wait time.Duration, retryable func(error) bool, fn func(attempt int) error) (int, error) {
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; ; i++ {
		err := fn(i)
		if err == nil {
			return i, nil
		}
		if i == attempts || wait <= 0 || retryable == nil || !retryable(err) {
			return i, err
		}
		if werr := WaitFor(ctx, wait); werr != nil {
			return i, werr
		}
	}
}
