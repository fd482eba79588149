package redgreen

import (
	"fmt"
	"strings"
)

// UpdateKind tags a normalized user update.
type UpdateKind string

const (
	UpdateInstruction UpdateKind = "instruction"
	UpdateRollback    UpdateKind = "rollback"
	UpdateGoalChange  UpdateKind = "goal-update"
	UpdateNewGoal     UpdateKind = "new-goal"
	UpdatePause       UpdateKind = "pause"
	UpdateResume      UpdateKind = "resume"
	UpdateStop        UpdateKind = "stop"
)

// UserUpdate is the tagged union every raw user update is normalized into.
// It is classified once at the boundary and never re-interpreted downstream.
type UserUpdate struct {
	Kind    UpdateKind `json:"kind"`
	Message string     `json:"message,omitempty"`
}

// IsControl reports whether the update is a control signal (pause, resume,
// stop). Control updates carry no instruction text and are never queued as
// work.
func (u UserUpdate) IsControl() bool {
	switch u.Kind {
	case UpdatePause, UpdateResume, UpdateStop:
		return true
	}
	return false
}

// classifyUpdate normalizes a raw user update. Strings become instructions,
// UserUpdate values pass through, loosely shaped maps are read by their
// kind/message keys, and anything else is coerced to its string form.
// Updates whose message is empty after trimming are dropped (ok=false),
// except control updates which legitimately carry no text.
func classifyUpdate(raw any) (UserUpdate, bool) {
	if raw == nil {
		return UserUpdate{}, false
	}

	var update UserUpdate
	switch v := raw.(type) {
	case UserUpdate:
		update = v
	case *UserUpdate:
		if v == nil {
			return UserUpdate{}, false
		}
		update = *v
	case string:
		update = UserUpdate{Kind: UpdateInstruction, Message: v}
	case map[string]any:
		update = UserUpdate{
			Kind:    parseUpdateKind(mapString(v, "kind", "type")),
			Message: mapString(v, "message", "text", "prompt"),
		}
	default:
		update = UserUpdate{Kind: UpdateInstruction, Message: fmt.Sprint(raw)}
	}

	if update.Kind == "" {
		update.Kind = UpdateInstruction
	}
	update.Message = strings.TrimSpace(update.Message)

	if update.IsControl() {
		update.Message = ""
		return update, true
	}

	if update.Message == "" {
		return UserUpdate{}, false
	}

	return update, true
}

func parseUpdateKind(s string) UpdateKind {
	switch UpdateKind(strings.ToLower(strings.TrimSpace(s))) {
	case UpdateRollback:
		return UpdateRollback
	case UpdateGoalChange:
		return UpdateGoalChange
	case UpdateNewGoal:
		return UpdateNewGoal
	case UpdatePause:
		return UpdatePause
	case UpdateResume:
		return UpdateResume
	case UpdateStop:
		return UpdateStop
	}
	return UpdateInstruction
}

func mapString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}
