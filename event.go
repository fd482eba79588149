package redgreen

import "context"

// Event is an append-only timeline entry. Events are best-effort telemetry:
// a sink failure never aborts the run.
type Event struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

const (
	EventRunStart          = "autopilot:start"
	EventRunDone           = "autopilot:done"
	EventPaused            = "autopilot:paused"
	EventResumed           = "autopilot:resumed"
	EventPlanReplaced      = "plan:replaced"
	EventStepStart         = "step:start"
	EventStepDone          = "step:done"
	EventAutoFixAttempt    = "autofix:attempt"
	EventGuidanceRequested = "guidance:requested"
	EventRollbackPlanned   = "rollback:planned"
	EventRollbackApplied   = "rollback:applied"
	EventRollbackComplete  = "rollback:complete"
)

// emit appends an event to the configured sink. Sink errors are logged and
// dropped.
func (r *run) emit(ctx context.Context, evType, message string, payload map[string]any) {
	if r.cfg.eventSink == nil {
		return
	}

	ev := Event{
		Type:    evType,
		Message: message,
		Payload: payload,
		Meta: map[string]any{
			"project_id": r.projectID,
			"branch":     r.branch,
		},
	}

	if err := r.cfg.eventSink.AppendEvent(ctx, ev); err != nil {
		LoggerFromContext(ctx).Debug("event sink rejected event", "type", evType, "error", err)
	}
}

// status reports a human-readable progress line. Reporter errors are logged
// and dropped.
func (r *run) status(ctx context.Context, text string) {
	if r.cfg.statusReporter == nil {
		return
	}
	if err := r.cfg.statusReporter.ReportStatus(ctx, text); err != nil {
		LoggerFromContext(ctx).Debug("status reporter rejected status", "error", err)
	}
}
