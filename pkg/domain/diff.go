package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	ActiveStep      *string        `json:"active_step,omitempty"`
	ActiveStepIndex *int           `json:"active_step_index,omitempty"`
	MaxStepIndex    *int           `json:"max_step_index,omitempty"`
	Status          *SessionStatus `json:"status,omitempty"`

	// Values contains only changed, added or deleted top-level keys.
	// Deleted keys are present with a nil value.
	Values map[string]any `json:"values,omitempty"`

	PrevSteps *HistoryDelta `json:"prev_steps,omitempty"`

	// NavSchema is sent whole whenever it changed (dynamic wizards only).
	NavSchema []NavEntry `json:"nav_schema,omitempty"`
}

// HistoryDelta represents changes to prevSteps.
// Backward jumps in dynamic wizards truncate the list; Truncated then holds the new length.
type HistoryDelta struct {
	Appended  []string `json:"appended,omitempty"`
	Truncated *int     `json:"truncated,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: newState.SessionID}

	if oldState == nil || oldState.ActiveStep != newState.ActiveStep {
		diff.ActiveStep = &newState.ActiveStep
	}
	if oldState == nil || oldState.ActiveStepIndex != newState.ActiveStepIndex {
		diff.ActiveStepIndex = &newState.ActiveStepIndex
	}
	if oldState == nil || oldState.MaxStepIndex != newState.MaxStepIndex {
		diff.MaxStepIndex = &newState.MaxStepIndex
	}
	if oldState == nil || oldState.Status != newState.Status {
		diff.Status = &newState.Status
	}

	diff.Values = diffValues(oldState, newState)
	diff.PrevSteps = diffPrevSteps(oldState, newState)

	if oldState == nil || !reflect.DeepEqual(oldState.NavSchema, newState.NavSchema) {
		if len(newState.NavSchema) > 0 {
			diff.NavSchema = newState.NavSchema
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffValues(old, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Values {
			delta[k] = v
		}
	} else {
		for k, newVal := range new.Values {
			oldVal, exists := old.Values[k]
			if !exists || !reflect.DeepEqual(oldVal, newVal) {
				delta[k] = newVal
			}
		}
		for k := range old.Values {
			if _, exists := new.Values[k]; !exists {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffPrevSteps(old, new *State) *HistoryDelta {
	if old == nil {
		if len(new.PrevSteps) == 0 {
			return nil
		}
		return &HistoryDelta{Appended: new.PrevSteps}
	}

	oldLen, newLen := len(old.PrevSteps), len(new.PrevSteps)
	switch {
	case newLen > oldLen:
		return &HistoryDelta{Appended: new.PrevSteps[oldLen:]}
	case newLen < oldLen:
		return &HistoryDelta{Truncated: &newLen}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.ActiveStep == nil &&
		d.ActiveStepIndex == nil &&
		d.MaxStepIndex == nil &&
		d.Status == nil &&
		len(d.Values) == 0 &&
		d.PrevSteps == nil &&
		d.NavSchema == nil
}
