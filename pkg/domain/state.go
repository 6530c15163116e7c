package domain

// SessionStatus tells whether a wizard session still accepts transitions.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusSubmitted SessionStatus = "submitted"
	StatusCancelled SessionStatus = "cancelled"
)

// State is the navigation snapshot of one wizard session.
type State struct {
	SessionID string `json:"session_id,omitempty"`

	// ActiveStep is the key of the step currently shown.
	ActiveStep string `json:"active_step"`

	// ActiveStepIndex is the position of ActiveStep in the traversal so far.
	ActiveStepIndex int `json:"active_step_index"`

	// PrevSteps lists previously active step keys, without duplicates, in insertion order.
	PrevSteps []string `json:"prev_steps"`

	// MaxStepIndex is the highest index reached so far.
	MaxStepIndex int `json:"max_step_index"`

	// NavSchema is fixed for static wizards and grows/shrinks with the traversal for dynamic ones.
	NavSchema []NavEntry `json:"nav_schema"`

	Dynamic bool `json:"dynamic"`

	// RegisteredFieldsHistory holds, per step key, the field names that were live while it was active.
	RegisteredFieldsHistory map[string][]string `json:"registered_fields_history,omitempty"`

	// Values is the value store used by stateless hosts.
	Values map[string]any `json:"values,omitempty"`

	Status SessionStatus `json:"status"`

	// Result holds the reduced submission once Status is StatusSubmitted.
	Result map[string]any `json:"result,omitempty"`
}

// NewState creates a clean state positioned on the first step.
func NewState(sessionID, firstStep string) *State {
	return &State{
		SessionID:               sessionID,
		ActiveStep:              firstStep,
		PrevSteps:               []string{},
		NavSchema:               []NavEntry{},
		RegisteredFieldsHistory: make(map[string][]string),
		Values:                  make(map[string]any),
		Status:                  StatusActive,
	}
}

// Clone returns a copy that shares nothing mutable at the top level with s.
// Nested values inside Values are copied recursively for maps and slices.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.PrevSteps = append([]string{}, s.PrevSteps...)
	next.NavSchema = append([]NavEntry{}, s.NavSchema...)
	next.RegisteredFieldsHistory = make(map[string][]string, len(s.RegisteredFieldsHistory))
	for k, v := range s.RegisteredFieldsHistory {
		next.RegisteredFieldsHistory[k] = append([]string{}, v...)
	}
	next.Values = copyMap(s.Values)
	if s.Result != nil {
		next.Result = copyMap(s.Result)
	}
	return &next
}

// Visited returns prevSteps followed by the active step (if not already listed).
func (s *State) Visited() []string {
	out := append([]string{}, s.PrevSteps...)
	for _, k := range out {
		if k == s.ActiveStep {
			return out
		}
	}
	return append(out, s.ActiveStep)
}

// IsActive reports whether the session still accepts transitions.
func (s *State) IsActive() bool {
	return s.Status == "" || s.Status == StatusActive
}

// CopyValues deep-copies a value store (nested maps and []any lists).
func CopyValues(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	return copyMap(src)
}

func copyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
