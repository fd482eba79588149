package redgreen

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// edit invokes the editor bracketed by cancellation checks and a boundary
// drain, so user updates discovered around the call are queued for the next
// safe point.
func (r *run) edit(ctx context.Context, prompt string) (*EditResult, error) {
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	result, err := r.editor.Edit(ctx, r.projectID, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "edit failed")
	}

	r.drainInto(ctx)
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	if result == nil {
		result = &EditResult{}
	}
	LoggerFromContext(ctx).Debug("edit applied", "steps", len(result.Steps))

	return result, nil
}

// runTests executes the suite with the configured coverage thresholds,
// bracketed like edit. A cancellation that arrives while tests run is
// observed here, before the result is acted on.
func (r *run) runTests(ctx context.Context) (*RunResult, error) {
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	result, err := r.workflow.RunTests(ctx, r.projectID, r.branch, TestOptions{
		CoverageThresholds: r.cfg.thresholds,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "test run failed")
	}

	r.drainInto(ctx)
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// executeStep runs the per-step TDD state machine for one queued
// instruction: write a failing test, verify red, implement, verify green,
// then auto-fix / escalate / roll back as needed. A style-only instruction
// skips the test-first phase with a synthesized skipped run.
func (r *run) executeStep(ctx context.Context, instruction string) error {
	startedAt := time.Now()
	logger := LoggerFromContext(ctx)

	r.emit(ctx, EventStepStart, instruction, nil)

	var redRun *RunResult
	if classifyStyleOnly(instruction) {
		logger.Info("style-only step, skipping test-first phase")
		redRun = skippedRunResult()
	} else {
		prompt, err := renderPrompt(writeTestTmpl, writeTestTemplateData{Instruction: instruction})
		if err != nil {
			return err
		}
		if _, err := r.edit(ctx, prompt); err != nil {
			return err
		}

		result, err := r.runTests(ctx)
		if err != nil {
			return err
		}
		if result.Status == RunStatusPassed {
			// The instruction claims a code gap but the new test did not
			// demonstrate one. The whole run aborts.
			r.performRollback(ctx, "red verification unexpectedly passed", instruction)
			return goerr.Wrap(ErrPolicyViolation, "red phase did not demonstrate a failure",
				goerr.V("instruction", instruction))
		}
		redRun = result
	}

	implPrompt, err := renderPrompt(implementTmpl, implementTemplateData{
		Instruction: instruction,
		RedSummary:  summarizeRun(redRun),
	})
	if err != nil {
		return err
	}
	if _, err := r.edit(ctx, implPrompt); err != nil {
		return err
	}

	greenRun, err := r.runTests(ctx)
	if err != nil {
		return err
	}

	if greenRun.Status != RunStatusPassed {
		greenRun, err = r.autoFix(ctx, instruction, greenRun)
		if err != nil {
			return err
		}
	}

	if greenRun == nil {
		if r.replan != nil {
			// The user redirected the run while this step was failing. The
			// step is abandoned, not fatal: roll it back and let the engine
			// apply the pending replan at the next boundary.
			logger.Info("abandoning failing step for pending replan")
			r.performRollback(ctx, "step abandoned for replan", instruction)
			return nil
		}
		r.performRollback(ctx, "verification attempts exhausted", instruction)
		return goerr.Wrap(ErrVerificationExhausted, "step never reached a green run",
			goerr.V("instruction", instruction))
	}

	r.children = append(r.children, instruction)
	r.emit(ctx, EventStepDone, instruction, map[string]any{
		"artifacts": map[string]any{
			"failingRun": redRun,
			"passingRun": greenRun,
		},
		"elapsed_ms": time.Since(startedAt).Milliseconds(),
	})
	logger.Info("step done", "elapsed", time.Since(startedAt))

	return nil
}

// autoFix retries failed verification up to the configured limit. Before
// spending an attempt it compares the latest failure fingerprint with the
// previous one: once the fingerprint repeats stallThreshold times in a row
// the loop stops early, since identical failure shape means no measurable
// progress. Returns the green run, or nil when attempts are exhausted.
func (r *run) autoFix(ctx context.Context, instruction string, failing *RunResult) (*RunResult, error) {
	logger := LoggerFromContext(ctx)

	latest := failing
	prevFingerprint := ""
	stallRepeats := 0

	for attempt := 1; attempt <= r.cfg.fixRetryLimit; attempt++ {
		fingerprint := fingerprintRun(latest)
		if prevFingerprint != "" {
			if fingerprint == prevFingerprint {
				stallRepeats++
				if stallRepeats >= r.cfg.stallThreshold {
					logger.Info("auto-fix stalled, failure shape unchanged",
						"attempt", attempt, "stall_repeats", stallRepeats)
					break
				}
			} else {
				stallRepeats = 0
			}
		}
		prevFingerprint = fingerprint

		r.emit(ctx, EventAutoFixAttempt, instruction, map[string]any{
			"attempt":      attempt,
			"max_attempts": r.cfg.fixRetryLimit,
		})

		prompt, err := renderPrompt(fixTmpl, fixTemplateData{
			Instruction:    instruction,
			Attempt:        attempt,
			MaxAttempts:    r.cfg.fixRetryLimit,
			FailureSummary: summarizeRun(latest),
		})
		if err != nil {
			return nil, err
		}
		if _, err := r.edit(ctx, prompt); err != nil {
			return nil, err
		}

		result, err := r.runTests(ctx)
		if err != nil {
			return nil, err
		}
		if result.Status == RunStatusPassed {
			return result, nil
		}
		latest = result
	}

	if r.cfg.updates != nil {
		return r.escalateGuidance(ctx, instruction, latest)
	}

	return nil, nil
}

// escalateGuidance asks a human for help, up to GuidanceAttemptLimit rounds.
// Only reachable when an update source is configured. If no guidance ever
// arrives the loop exits without erroring and the caller rolls back.
func (r *run) escalateGuidance(ctx context.Context, instruction string, failing *RunResult) (*RunResult, error) {
	latest := failing

	for attempt := 1; attempt <= GuidanceAttemptLimit; attempt++ {
		r.emit(ctx, EventGuidanceRequested, "needs user input", map[string]any{
			"attempt": attempt,
			"failure": summarizeRun(latest),
		})
		r.status(ctx, "waiting for user guidance")

		guidance, err := r.awaitGuidance(ctx)
		if err != nil {
			return nil, err
		}
		if guidance == "" {
			return nil, nil
		}

		prompt, err := renderPrompt(guidanceTmpl, guidanceTemplateData{
			Instruction:    instruction,
			Guidance:       guidance,
			FailureSummary: summarizeRun(latest),
		})
		if err != nil {
			return nil, err
		}
		if _, err := r.edit(ctx, prompt); err != nil {
			return nil, err
		}

		result, err := r.runTests(ctx)
		if err != nil {
			return nil, err
		}
		if result.Status == RunStatusPassed {
			return result, nil
		}
		latest = result
	}

	return nil, nil
}

// awaitGuidance consumes updates looking for a plain instruction to use as
// guidance. In blocking mode it polls until one arrives; otherwise it
// samples the source once. Rollbacks found along the way are handled as in
// any drain and surplus instructions queue as regular work. A goal change
// ends the wait: the user redirected the run, so blocking for step-level
// guidance no longer makes sense.
func (r *run) awaitGuidance(ctx context.Context) (string, error) {
	for {
		if r.cancelled(ctx) {
			return "", goerr.Wrap(ErrCancelled, "cancellation requested while awaiting guidance")
		}

		instructions, marker := r.drainBoundary(ctx)
		if marker != nil {
			r.replan = marker
		}
		if len(instructions) > 0 {
			if len(instructions) > 1 {
				r.queue = append(r.queue, instructions[1:]...)
			}
			return instructions[0], nil
		}
		if marker != nil {
			return "", nil
		}

		if !r.cfg.guidanceBlocking {
			return "", nil
		}
		if err := waitWithCancel(ctx, r.cfg.pollInterval); err != nil {
			return "", err
		}
	}
}
