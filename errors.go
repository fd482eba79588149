package redgreen

import "errors"

var (
	// ErrValidation is returned when a required input of Run is missing.
	ErrValidation = errors.New("missing required input")

	// ErrPlanning is returned when the planner produces an unusable plan,
	// e.g. no branch name or no steps.
	ErrPlanning = errors.New("invalid planner output")

	// ErrBranchConflict must be returned by Workflow.CreateBranch when the
	// branch already exists. The engine recovers by checking the branch out,
	// so callers of Run never observe this error.
	ErrBranchConflict = errors.New("branch already exists")

	// ErrPolicyViolation is returned when the red phase unexpectedly passes:
	// the instruction claims a code gap but the freshly written test did not
	// demonstrate one. The workspace is rolled back before this is raised.
	ErrPolicyViolation = errors.New("tests passed before implementation")

	// ErrVerificationExhausted is returned when auto-fix and guidance
	// attempts are used up without a green run. The workspace is rolled back
	// before this is raised.
	ErrVerificationExhausted = errors.New("implementation did not pass verification")

	// ErrCancelled is returned when the cancel predicate or the context
	// reports cancellation. No automatic rollback is performed; cleanup is
	// the caller's decision.
	ErrCancelled = errors.New("autopilot cancelled")
)
