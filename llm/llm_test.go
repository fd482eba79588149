package llm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/redgreen"
	"github.com/m-mizutani/redgreen/llm"
)

func TestParsePlan(t *testing.T) {
	t.Run("bare JSON", func(t *testing.T) {
		plan, err := llm.ParsePlan(`{
			"parent_prompt": "add export",
			"branch_name": "feature/export",
			"children": [{"prompt": "write the exporter"}]
		}`)
		gt.NoError(t, err)
		gt.Equal(t, plan.BranchName, "feature/export")
		gt.Equal(t, len(plan.Children), 1)
		gt.Equal(t, plan.Children[0].Prompt, "write the exporter")
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		plan, err := llm.ParsePlan("Here is the plan:\n```json\n" +
			`{"branch_name": "feature/x", "children": [{"prompt": "step"}]}` +
			"\n```\nLet me know if you need changes.")
		gt.NoError(t, err)
		gt.Equal(t, plan.BranchName, "feature/x")
	})

	t.Run("missing branch name violates schema", func(t *testing.T) {
		_, err := llm.ParsePlan(`{"children": [{"prompt": "step"}]}`)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, redgreen.ErrPlanning))
	})

	t.Run("empty children violates schema", func(t *testing.T) {
		_, err := llm.ParsePlan(`{"branch_name": "feature/x", "children": []}`)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, redgreen.ErrPlanning))
	})

	t.Run("non-JSON output", func(t *testing.T) {
		_, err := llm.ParsePlan("I could not produce a plan, sorry.")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, redgreen.ErrPlanning))
	})
}

func TestParseEditResult(t *testing.T) {
	t.Run("edit log object", func(t *testing.T) {
		result := llm.ParseEditResult(`{"steps": [{"action": "write", "path": "src/a.ts"}]}`)
		gt.Equal(t, len(result.Steps), 1)
		gt.Equal(t, result.Steps[0].Action, "write")
	})

	t.Run("bare step array", func(t *testing.T) {
		result := llm.ParseEditResult(`[{"action": "delete", "path": "src/old.ts"}]`)
		gt.Equal(t, len(result.Steps), 1)
		gt.Equal(t, result.Steps[0].Action, "delete")
	})

	t.Run("prose degrades to a note step", func(t *testing.T) {
		result := llm.ParseEditResult("I rewrote the exporter to stream rows.")
		gt.Equal(t, len(result.Steps), 1)
		gt.Equal(t, result.Steps[0].Action, "note")
		gt.True(t, strings.Contains(result.Steps[0].Note, "exporter"))
	})

	t.Run("empty output yields empty log", func(t *testing.T) {
		result := llm.ParseEditResult("   ")
		gt.Equal(t, len(result.Steps), 0)
	})
}

func TestPrompts(t *testing.T) {
	plan, err := llm.PlanPrompt("add an export button")
	gt.NoError(t, err)
	gt.True(t, strings.Contains(plan, "add an export button"))
	gt.True(t, strings.Contains(plan, "branch_name"))

	edit, err := llm.EditPrompt("rename the helper")
	gt.NoError(t, err)
	gt.True(t, strings.Contains(edit, "rename the helper"))
}
