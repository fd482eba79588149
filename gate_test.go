package redgreen

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("no predicates passes through", func(t *testing.T) {
		r := newTestRun(&stubWorkflow{}, nil, nil)
		gt.NoError(t, r.checkpoint(ctx))
	})

	t.Run("cancel raises ErrCancelled", func(t *testing.T) {
		r := newTestRun(&stubWorkflow{}, nil, nil)
		r.cfg.shouldCancel = func() bool { return true }

		err := r.checkpoint(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ErrCancelled))
	})

	t.Run("context cancellation counts as cancel", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		r := newTestRun(&stubWorkflow{}, nil, nil)
		err := r.checkpoint(cancelled)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ErrCancelled))
	})

	t.Run("pause blocks until released and emits lifecycle events", func(t *testing.T) {
		var paused atomic.Bool
		paused.Store(true)
		time.AfterFunc(5*time.Millisecond, func() { paused.Store(false) })

		sink := &eventRecorder{}
		r := newTestRun(&stubWorkflow{}, nil, sink)
		r.cfg.shouldPause = paused.Load

		gt.NoError(t, r.checkpoint(ctx))
		gt.Equal(t, sink.types(), []string{EventPaused, EventResumed})
	})

	t.Run("pause keeps draining updates", func(t *testing.T) {
		var paused atomic.Bool
		paused.Store(true)

		delivered := make(chan string, 1)
		delivered <- "queued while paused"
		updates := UpdateSourceFunc(func() []any {
			select {
			case msg := <-delivered:
				paused.Store(false)
				return []any{msg}
			default:
				return nil
			}
		})

		r := newTestRun(&stubWorkflow{}, updates, nil)
		r.cfg.shouldPause = paused.Load

		gt.NoError(t, r.checkpoint(ctx))
		gt.Equal(t, r.queue, []string{"queued while paused"})
	})

	t.Run("cancel during pause is honored promptly", func(t *testing.T) {
		var cancelled atomic.Bool
		time.AfterFunc(3*time.Millisecond, func() { cancelled.Store(true) })

		r := newTestRun(&stubWorkflow{}, nil, nil)
		r.cfg.shouldPause = func() bool { return true }
		r.cfg.shouldCancel = cancelled.Load

		err := r.checkpoint(ctx)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ErrCancelled))
	})
}

func TestWaitWithCancel(t *testing.T) {
	t.Run("returns after the delay", func(t *testing.T) {
		gt.NoError(t, waitWithCancel(context.Background(), time.Millisecond))
	})

	t.Run("context cancellation wins", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := waitWithCancel(ctx, time.Hour)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, ErrCancelled))
	})
}
