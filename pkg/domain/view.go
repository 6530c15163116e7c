package domain

// View is the render model of the active step, computed without transitioning.
type View struct {
	SessionID   string        `json:"session_id,omitempty"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      SessionStatus `json:"status"`
	Step        StepView      `json:"step"`
	Buttons     Buttons       `json:"buttons"`
	Nav         []NavItem     `json:"nav"`
	Valid       bool          `json:"valid"`
	Layout      Layout        `json:"layout"`
}

// StepView describes the active step.
type StepView struct {
	Key         string  `json:"step_key"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Index       int     `json:"index"`
	Fields      []Field `json:"fields,omitempty"`
}

// Buttons describes the footer of the active step.
// When Terminal is true the primary action is Submit, otherwise Next (towards NextStep).
type Buttons struct {
	Primary     string `json:"primary"`
	Terminal    bool   `json:"terminal"`
	NextStep    string `json:"next_step,omitempty"`
	NextEnabled bool   `json:"next_enabled"`
	Back        string `json:"back"`
	BackEnabled bool   `json:"back_enabled"`
	Cancel      string `json:"cancel"`
}

// NavItem is one rendered navigation link. A group is titled by its SubstepOf name
// and nests every member, the leader included, under Substeps.
type NavItem struct {
	Title    string    `json:"title"`
	Index    int       `json:"index"`
	Current  bool      `json:"current"`
	Disabled bool      `json:"disabled"`
	Substeps []NavItem `json:"substeps,omitempty"`
}
