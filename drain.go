package redgreen

import "context"

// replanMarker is the pending replan set by a boundary drain. At most one
// marker is live at a time; a later marker overwrites an earlier unconsumed
// one.
type replanMarker struct {
	kind    UpdateKind
	message string
}

// drainBoundary pulls all currently buffered user updates in one shot and
// reacts to them: rollback requests are executed immediately and in order,
// plain instructions are returned in arrival order, and the last goal-change
// update (if any) becomes the returned replan marker. Control updates are
// handled by the pause/cancel predicates, not here. Draining always
// completes; rollback failures are captured in events, never raised.
func (r *run) drainBoundary(ctx context.Context) ([]string, *replanMarker) {
	if r.cfg.updates == nil {
		return nil, nil
	}

	var instructions []string
	var marker *replanMarker

	for _, raw := range r.cfg.updates.ConsumeUpdates() {
		update, ok := classifyUpdate(raw)
		if !ok || update.IsControl() {
			continue
		}

		switch update.Kind {
		case UpdateRollback:
			r.performRollback(ctx, "user requested rollback", update.Message)

		case UpdateGoalChange, UpdateNewGoal:
			marker = &replanMarker{kind: update.Kind, message: update.Message}

		default:
			instructions = append(instructions, update.Message)
		}
	}

	return instructions, marker
}

// drainInto runs a boundary drain and folds the result into the run state:
// instructions append to the queue tail, a marker replaces any pending one.
func (r *run) drainInto(ctx context.Context) {
	instructions, marker := r.drainBoundary(ctx)
	if len(instructions) > 0 {
		r.queue = append(r.queue, instructions...)
		LoggerFromContext(ctx).Info("queued user instructions", "count", len(instructions))
	}
	if marker != nil {
		r.replan = marker
	}
}

// performRollback runs a best-effort rollback with the three-part event
// sequence (planned, applied, complete) so observers can tell a failed
// rollback from a successful one.
func (r *run) performRollback(ctx context.Context, reason, prompt string) {
	logger := LoggerFromContext(ctx)

	r.emit(ctx, EventRollbackPlanned, reason, map[string]any{"prompt": prompt})

	err := r.workflow.Rollback(ctx, RollbackRequest{
		ProjectID:  r.projectID,
		BranchName: r.branch,
		Prompt:     prompt,
		Reason:     reason,
	})

	applied := map[string]any{"ok": err == nil}
	if err != nil {
		applied["error"] = err.Error()
		logger.Warn("rollback failed", "reason", reason, "error", err)
	} else {
		logger.Info("rollback applied", "reason", reason)
	}

	r.emit(ctx, EventRollbackApplied, reason, applied)
	r.emit(ctx, EventRollbackComplete, reason, nil)
}
