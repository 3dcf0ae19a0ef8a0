package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegisterRejectsBadInput(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) error { return nil }

	if err := s.Register("", "@weekly", noop); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := s.Register("weekly", "@weekly", nil); err == nil {
		t.Fatalf("expected error for nil func")
	}
	if err := s.Register("weekly", "every monday", noop); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	assert.Empty(t, s.Jobs())
}

func TestRunNow(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := New(zap.New(core))

	calls := 0
	boom := errors.New("boom")
	require.NoError(t, s.Register("ok", "0 8 * * 1", func(context.Context) error { calls++; return nil }))
	require.NoError(t, s.Register("fails", "0 8 * * 1", func(context.Context) error { return boom }))

	require.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.Equal(t, 1, calls)

	err := s.RunNow(context.Background(), "fails")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.FilterMessage("job failed").Len())

	if err := s.RunNow(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown job")
	}
	assert.Equal(t, []string{"fails", "ok"}, s.Jobs())
}

func TestRegisterReplaces(t *testing.T) {
	s := New(nil)
	var got string
	require.NoError(t, s.Register("job", "@daily", func(context.Context) error { got = "first"; return nil }))
	require.NoError(t, s.Register("job", "0 8 * * 1", func(context.Context) error { got = "second"; return nil }))

	require.NoError(t, s.RunNow(context.Background(), "job"))
	assert.Equal(t, "second", got)
	assert.Len(t, s.Jobs(), 1)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestNext(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Register("checkins", "0 8 * * 1", func(context.Context) error { return nil }))

	// 2026-10-18 is a Sunday.
	from := time.Date(2026, 10, 18, 12, 0, 0, 0, time.Local)
	next, ok := s.Next("checkins", from)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local), next)

	if _, ok := s.Next("missing", from); ok {
		t.Fatalf("expected no schedule for unknown job")
	}
}

func TestStartRunsAndStopCancels(t *testing.T) {
	s := New(nil)
	started := make(chan struct{}, 1)
	done := make(chan error, 1)
	require.NoError(t, s.Register("tick", "@every 1s", func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		<-ctx.Done()
		done <- ctx.Err()
		return nil
	}))

	s.Start(context.Background())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run")
	}

	s.Stop()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatalf("job context was not cancelled")
	}
}
