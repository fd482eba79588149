package redgreen_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/redgreen"
)

func TestClassifyUpdate(t *testing.T) {
	t.Run("string becomes instruction", func(t *testing.T) {
		update, ok := redgreen.ClassifyUpdate("add a search box")
		gt.True(t, ok)
		gt.Equal(t, update.Kind, redgreen.UpdateInstruction)
		gt.Equal(t, update.Message, "add a search box")
	})

	t.Run("map with kind and message", func(t *testing.T) {
		update, ok := redgreen.ClassifyUpdate(map[string]any{
			"kind":    "rollback",
			"message": "undo the last change",
		})
		gt.True(t, ok)
		gt.Equal(t, update.Kind, redgreen.UpdateRollback)
		gt.Equal(t, update.Message, "undo the last change")
	})

	t.Run("map with alternate key names", func(t *testing.T) {
		update, ok := redgreen.ClassifyUpdate(map[string]any{
			"type": "goal-update",
			"text": "make it responsive too",
		})
		gt.True(t, ok)
		gt.Equal(t, update.Kind, redgreen.UpdateGoalChange)
		gt.Equal(t, update.Message, "make it responsive too")
	})

	t.Run("control kinds never carry instruction text", func(t *testing.T) {
		for _, kind := range []string{"pause", "resume", "stop"} {
			update, ok := redgreen.ClassifyUpdate(map[string]any{
				"kind":    kind,
				"message": "should be discarded",
			})
			gt.True(t, ok)
			gt.Equal(t, update.Message, "")
			gt.True(t, update.IsControl())
		}
	})

	t.Run("unexpected shapes coerce to string form", func(t *testing.T) {
		update, ok := redgreen.ClassifyUpdate(42)
		gt.True(t, ok)
		gt.Equal(t, update.Kind, redgreen.UpdateInstruction)
		gt.Equal(t, update.Message, "42")
	})

	t.Run("empty after trimming is filtered", func(t *testing.T) {
		_, ok := redgreen.ClassifyUpdate("   \n\t ")
		gt.False(t, ok)

		_, ok = redgreen.ClassifyUpdate(map[string]any{"kind": "rollback"})
		gt.False(t, ok)
	})

	t.Run("nil is filtered", func(t *testing.T) {
		_, ok := redgreen.ClassifyUpdate(nil)
		gt.False(t, ok)
	})

	t.Run("classification is idempotent", func(t *testing.T) {
		raw := map[string]any{"kind": "new-goal", "prompt": "build a dashboard"}

		first, ok1 := redgreen.ClassifyUpdate(raw)
		second, ok2 := redgreen.ClassifyUpdate(raw)
		gt.True(t, ok1)
		gt.True(t, ok2)
		gt.Equal(t, first, second)

		again, ok3 := redgreen.ClassifyUpdate(first)
		gt.True(t, ok3)
		gt.Equal(t, first, again)
	})

	t.Run("unknown kind falls back to instruction", func(t *testing.T) {
		update, ok := redgreen.ClassifyUpdate(map[string]any{
			"kind":    "mystery",
			"message": "do the thing",
		})
		gt.True(t, ok)
		gt.Equal(t, update.Kind, redgreen.UpdateInstruction)
	})
}
