package redgreen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Run executes the full autopilot cycle for one goal: plan the prompt into
// steps, drive each step through the test-first loop, then commit and merge
// the branch. It returns the terminal result or one of the error kinds in
// errors.go. Run owns the branch for its whole duration; do not run two
// engines against the same branch concurrently.
func (x *Engine) Run(ctx context.Context, projectID, prompt string, options ...Option) (*Result, error) {
	if projectID == "" {
		return nil, goerr.Wrap(ErrValidation, "projectID is required")
	}
	if prompt == "" {
		return nil, goerr.Wrap(ErrValidation, "prompt is required")
	}

	cfg := x.engineConfig.Clone()
	for _, opt := range options {
		opt(cfg)
	}

	ctx, logger := withRunLogger(ctx, cfg.logger, uuid.New().String())
	logger.Info("starting autopilot run", "project_id", projectID, "prompt", prompt)

	r := &run{
		cfg:        cfg,
		planner:    x.planner,
		editor:     x.editor,
		workflow:   x.workflow,
		projectID:  projectID,
		parentGoal: prompt,
	}

	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	r.status(ctx, "planning: "+prompt)
	plan, err := r.planner.Plan(ctx, projectID, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "planning failed")
	}
	steps, err := validatePlan(plan)
	if err != nil {
		return nil, err
	}
	if plan.ParentPrompt != "" {
		r.parentGoal = plan.ParentPrompt
	}
	r.branch = plan.BranchName

	if err := r.createOrCheckoutBranch(ctx, plan); err != nil {
		return nil, err
	}

	r.queue = steps
	r.emit(ctx, EventRunStart, r.parentGoal, map[string]any{"steps": len(steps)})
	r.drainInto(ctx)

	for {
		if err := r.processQueue(ctx); err != nil {
			return nil, err
		}

		// Boundary before commit: a replan arriving here sends the engine
		// back into step processing instead of committing.
		r.drainInto(ctx)
		if err := r.applyReplan(ctx); err != nil {
			return nil, err
		}
		if len(r.queue) > 0 {
			continue
		}

		if err := r.commit(ctx, prompt); err != nil {
			return nil, err
		}

		// Same rule before merge.
		r.drainInto(ctx)
		if err := r.applyReplan(ctx); err != nil {
			return nil, err
		}
		if len(r.queue) > 0 {
			continue
		}

		merge, err := r.merge(ctx)
		if err != nil {
			return nil, err
		}

		result := &Result{
			Kind:       "feature",
			ParentGoal: r.parentGoal,
			Children:   r.children,
			BranchName: r.branch,
			Merge:      merge,
		}
		r.emit(ctx, EventRunDone, r.parentGoal, map[string]any{"children": len(r.children)})
		r.status(ctx, "autopilot run complete")
		logger.Info("autopilot run complete", "branch", r.branch, "children", len(r.children))

		return result, nil
	}
}

func validatePlan(plan *Plan) ([]string, error) {
	if plan == nil {
		return nil, goerr.Wrap(ErrPlanning, "planner returned no plan")
	}
	if plan.BranchName == "" {
		return nil, goerr.Wrap(ErrPlanning, "planner returned no branch name")
	}

	steps := nonEmptyPrompts(plan.Children)
	if len(steps) == 0 {
		return nil, goerr.Wrap(ErrPlanning, "planner returned no steps",
			goerr.V("branch", plan.BranchName))
	}

	return steps, nil
}

func nonEmptyPrompts(children []PlanStep) []string {
	prompts := make([]string, 0, len(children))
	for _, child := range children {
		if p := strings.TrimSpace(child.Prompt); p != "" {
			prompts = append(prompts, p)
		}
	}
	return prompts
}

func (r *run) createOrCheckoutBranch(ctx context.Context, plan *Plan) error {
	if err := r.checkpoint(ctx); err != nil {
		return err
	}

	err := r.workflow.CreateBranch(ctx, r.projectID, BranchSpec{
		Name:        plan.BranchName,
		Description: r.parentGoal,
		Type:        "feature",
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrBranchConflict) {
		return goerr.Wrap(err, "failed to create branch", goerr.V("branch", plan.BranchName))
	}

	// Branch already exists: resume on it.
	LoggerFromContext(ctx).Info("branch exists, checking out", "branch", plan.BranchName)
	if err := r.workflow.Checkout(ctx, r.projectID, plan.BranchName); err != nil {
		return goerr.Wrap(err, "failed to checkout existing branch", goerr.V("branch", plan.BranchName))
	}

	return nil
}

// processQueue executes queued steps in FIFO order until the queue is empty,
// draining updates and applying replans at the boundary around each step.
func (r *run) processQueue(ctx context.Context) error {
	for {
		r.drainInto(ctx)
		if err := r.applyReplan(ctx); err != nil {
			return err
		}
		if len(r.queue) == 0 {
			return nil
		}

		instruction := r.queue[0]
		r.queue = r.queue[1:]

		r.status(ctx, fmt.Sprintf("step %d: %s", len(r.children)+1, instruction))
		if err := r.executeStep(ctx, instruction); err != nil {
			return err
		}

		r.drainInto(ctx)
		if err := r.applyReplan(ctx); err != nil {
			return err
		}
	}
}

// applyReplan consumes the pending replan marker, re-invokes the planner and
// atomically replaces the remaining queue with the new plan's steps. The
// branch is immutable once created, so the new plan's branch name is
// ignored. A goal-update amends the current goal; a new-goal replaces it.
// A replan with no usable steps is ErrPlanning, same as at startup.
func (r *run) applyReplan(ctx context.Context) error {
	if r.replan == nil {
		return nil
	}
	marker := r.replan
	r.replan = nil

	if err := r.checkpoint(ctx); err != nil {
		return err
	}

	prompt := marker.message
	if marker.kind == UpdateGoalChange {
		prompt = r.parentGoal + "\n\nUpdated direction: " + marker.message
	}

	r.status(ctx, "replanning: "+marker.message)
	plan, err := r.planner.Plan(ctx, r.projectID, prompt)
	if err != nil {
		return goerr.Wrap(err, "replanning failed")
	}
	if plan == nil {
		return goerr.Wrap(ErrPlanning, "planner returned no plan on replan")
	}

	steps := nonEmptyPrompts(plan.Children)
	if len(steps) == 0 {
		return goerr.Wrap(ErrPlanning, "planner returned no steps on replan",
			goerr.V("kind", string(marker.kind)))
	}
	r.queue = steps

	if marker.kind == UpdateNewGoal {
		if plan.ParentPrompt != "" {
			r.parentGoal = plan.ParentPrompt
		} else {
			r.parentGoal = marker.message
		}
	}

	r.emit(ctx, EventPlanReplaced, marker.message, map[string]any{
		"kind":  string(marker.kind),
		"steps": len(steps),
	})
	LoggerFromContext(ctx).Info("plan replaced", "kind", marker.kind, "steps", len(steps))

	return nil
}

func (r *run) commit(ctx context.Context, prompt string) error {
	if err := r.checkpoint(ctx); err != nil {
		return err
	}

	r.status(ctx, "committing changes")
	_, err := r.workflow.Commit(ctx, r.projectID, r.branch, CommitOptions{
		Message:         prompt,
		AutoChangelog:   true,
		AutoVersionBump: true,
		ChangelogEntry:  changelogEntry(prompt),
	})
	if err != nil {
		return goerr.Wrap(err, "commit failed", goerr.V("branch", r.branch))
	}

	return nil
}

func (r *run) merge(ctx context.Context) (*MergeResult, error) {
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	r.status(ctx, "merging branch "+r.branch)
	merge, err := r.workflow.Merge(ctx, r.projectID, r.branch)
	if err != nil {
		return nil, goerr.Wrap(err, "merge failed", goerr.V("branch", r.branch))
	}

	return merge, nil
}
