package redgreen

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// cancelled reports whether the cancel predicate or the context asks the
// run to stop. Cancellation is cooperative: in-flight collaborator calls
// are allowed to finish before it is observed.
func (r *run) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return r.cfg.shouldCancel != nil && r.cfg.shouldCancel()
}

func (r *run) paused() bool {
	return r.cfg.shouldPause != nil && r.cfg.shouldPause()
}

// checkpoint is the pause/cancel gate, invoked at every safe boundary and
// before every externally visible side effect. A cancel raises ErrCancelled
// immediately. While paused it loops on a short delay, re-checking
// cancellation and draining user updates so instructions submitted during a
// pause are not lost.
func (r *run) checkpoint(ctx context.Context) error {
	if r.cancelled(ctx) {
		return goerr.Wrap(ErrCancelled, "cancellation requested")
	}

	if !r.paused() {
		return nil
	}

	r.emit(ctx, EventPaused, "autopilot paused", nil)
	LoggerFromContext(ctx).Info("autopilot paused")

	for r.paused() {
		if err := waitWithCancel(ctx, r.cfg.pollInterval); err != nil {
			return err
		}
		if r.cancelled(ctx) {
			return goerr.Wrap(ErrCancelled, "cancellation requested during pause")
		}
		r.drainInto(ctx)
	}

	r.emit(ctx, EventResumed, "autopilot resumed", nil)
	LoggerFromContext(ctx).Info("autopilot resumed")

	return nil
}

// waitWithCancel sleeps for d or until the context is done. It is the single
// scheduling primitive behind the pause and guidance polls, so the polling
// model can later be replaced by push notification without touching engine
// logic.
func waitWithCancel(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return goerr.Wrap(ErrCancelled, "context cancelled", goerr.V("cause", ctx.Err()))
	case <-timer.C:
		return nil
	}
}
