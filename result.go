package redgreen

// RunStatus is the overall outcome of one test execution.
type RunStatus string

const (
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusSkipped RunStatus = "skipped"
)

// Coverage holds per-metric coverage percentages (0-100).
type Coverage struct {
	Lines      float64 `json:"lines"`
	Statements float64 `json:"statements"`
	Functions  float64 `json:"functions"`
	Branches   float64 `json:"branches"`
}

// UncoveredLine points at a source line the coverage gate flagged.
type UncoveredLine struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// GateResult is the coverage gate verdict of a test run.
type GateResult struct {
	Passed  bool `json:"passed"`
	Skipped bool `json:"skipped"`
}

// RunSummary aggregates the gate verdict, coverage totals and failure counts
// of a test run.
type RunSummary struct {
	Gate        GateResult      `json:"gate"`
	Totals      Coverage        `json:"totals"`
	FailedTests int             `json:"failed_tests"`
	Uncovered   []UncoveredLine `json:"uncovered,omitempty"`
}

// WorkspaceRun is the outcome of a test run in one workspace of the project.
type WorkspaceRun struct {
	Workspace string    `json:"workspace"`
	Status    RunStatus `json:"status"`
	Totals    Coverage  `json:"totals"`
	Log       string    `json:"log,omitempty"`
}

// RunResult is the immutable snapshot returned by Workflow.RunTests. The
// engine only reads it to build prompts, fingerprints and events.
type RunResult struct {
	Status        RunStatus      `json:"status"`
	Summary       RunSummary     `json:"summary"`
	WorkspaceRuns []WorkspaceRun `json:"workspace_runs,omitempty"`
}

// skippedRunResult synthesizes the run result used for style-only steps so
// downstream logic treats the red phase as satisfied without a test run.
func skippedRunResult() *RunResult {
	return &RunResult{
		Status: RunStatusSkipped,
		Summary: RunSummary{
			Gate: GateResult{Passed: true, Skipped: true},
		},
	}
}

// Plan is the goal plan produced by the planner: a parent instruction plus
// ordered child step instructions. It is regenerated wholesale on replan.
type Plan struct {
	ParentPrompt string     `json:"parent_prompt"`
	BranchName   string     `json:"branch_name"`
	Children     []PlanStep `json:"children"`
}

// PlanStep is one child instruction of a plan.
type PlanStep struct {
	Prompt string `json:"prompt"`
}

// EditStep is one file-write action or observation reported by the editor.
type EditStep struct {
	Action string `json:"action"`
	Path   string `json:"path,omitempty"`
	Note   string `json:"note,omitempty"`
}

// EditResult is the outcome of one Editor.Edit call.
type EditResult struct {
	Steps []EditStep `json:"steps"`
}

// BranchSpec describes the branch to create for a run.
type BranchSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// TestOptions carries the coverage thresholds for one test run.
type TestOptions struct {
	CoverageThresholds Coverage `json:"coverage_thresholds"`
}

// CommitOptions configures the commit performed after all steps pass.
type CommitOptions struct {
	Message         string `json:"message"`
	AutoChangelog   bool   `json:"auto_changelog"`
	AutoVersionBump bool   `json:"auto_version_bump"`
	ChangelogEntry  string `json:"changelog_entry"`
}

// CommitResult is the outcome of Workflow.Commit.
type CommitResult struct {
	Commit string `json:"commit"`
}

// MergeResult is the outcome of Workflow.Merge.
type MergeResult struct {
	MergedBranch string `json:"merged_branch"`
	Current      string `json:"current"`
}

// RollbackRequest describes a best-effort rollback of the workspace.
type RollbackRequest struct {
	ProjectID  string `json:"project_id"`
	BranchName string `json:"branch_name"`
	Prompt     string `json:"prompt"`
	Reason     string `json:"reason"`
}

// Result is the terminal outcome of a successful Run.
type Result struct {
	Kind       string       `json:"kind"`
	ParentGoal string       `json:"parent_goal"`
	Children   []string     `json:"children"`
	BranchName string       `json:"branch_name"`
	Merge      *MergeResult `json:"merge"`
}
