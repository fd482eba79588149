package redgreen

import "context"

// Planner turns a natural-language goal into a goal plan. Implementations
// are expected to be LLM-backed; see the llm subpackages.
type Planner interface {
	Plan(ctx context.Context, projectID, prompt string) (*Plan, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, projectID, prompt string) (*Plan, error)

func (f PlannerFunc) Plan(ctx context.Context, projectID, prompt string) (*Plan, error) {
	return f(ctx, projectID, prompt)
}

// Editor applies a described change to the project files and reports what it
// did. The engine never inspects file contents, only the reported steps.
type Editor interface {
	Edit(ctx context.Context, projectID, prompt string) (*EditResult, error)
}

// EditorFunc adapts a function to the Editor interface.
type EditorFunc func(ctx context.Context, projectID, prompt string) (*EditResult, error)

func (f EditorFunc) Edit(ctx context.Context, projectID, prompt string) (*EditResult, error) {
	return f(ctx, projectID, prompt)
}

// Workflow is the branch/version-control collaborator. The engine owns the
// branch for the duration of a run; callers must not run two engines against
// the same branch concurrently.
type Workflow interface {
	// CreateBranch creates the plan's branch. It must return an error
	// wrapping ErrBranchConflict when the branch already exists.
	CreateBranch(ctx context.Context, projectID string, spec BranchSpec) error

	// Checkout switches the workspace to an existing branch.
	Checkout(ctx context.Context, projectID, name string) error

	// RunTests executes the test suite against the branch and evaluates the
	// coverage gate.
	RunTests(ctx context.Context, projectID, branch string, opts TestOptions) (*RunResult, error)

	// Commit records the accumulated changes with an auto-generated
	// changelog entry.
	Commit(ctx context.Context, projectID, branch string, opts CommitOptions) (*CommitResult, error)

	// Merge merges the branch back into its parent.
	Merge(ctx context.Context, projectID, branch string) (*MergeResult, error)

	// Rollback reverts uncommitted work. It is best-effort: the engine
	// reports failures in events but never propagates them.
	Rollback(ctx context.Context, req RollbackRequest) error
}

// UpdateSource delivers user updates submitted while the engine runs.
// ConsumeUpdates must not block: it returns whatever is currently buffered,
// possibly nothing. Raw updates may be strings, UserUpdate values or loosely
// shaped maps; the engine normalizes them once at the boundary.
type UpdateSource interface {
	ConsumeUpdates() []any
}

// UpdateSourceFunc adapts a function to the UpdateSource interface.
type UpdateSourceFunc func() []any

func (f UpdateSourceFunc) ConsumeUpdates() []any {
	return f()
}

// EventSink receives timeline events. Errors are swallowed by the engine.
type EventSink interface {
	AppendEvent(ctx context.Context, ev Event) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, ev Event) error

func (f EventSinkFunc) AppendEvent(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// StatusReporter receives human-readable progress lines. Errors are
// swallowed by the engine.
type StatusReporter interface {
	ReportStatus(ctx context.Context, text string) error
}

// StatusReporterFunc adapts a function to the StatusReporter interface.
type StatusReporterFunc func(ctx context.Context, text string) error

func (f StatusReporterFunc) ReportStatus(ctx context.Context, text string) error {
	return f(ctx, text)
}
