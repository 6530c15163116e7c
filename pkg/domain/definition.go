package domain

// ButtonLabels overrides the captions of the wizard buttons.
type ButtonLabels struct {
	Submit string `json:"submit,omitempty" mapstructure:"submit"`
	Cancel string `json:"cancel,omitempty" mapstructure:"cancel"`
	Back   string `json:"back,omitempty" mapstructure:"back"`
	Next   string `json:"next,omitempty" mapstructure:"next"`
}

// DefaultButtonLabels are used for every label the author leaves empty.
var DefaultButtonLabels = ButtonLabels{
	Submit: "Submit",
	Cancel: "Cancel",
	Back:   "Back",
	Next:   "Next",
}

// WithDefaults fills empty labels from DefaultButtonLabels.
func (l ButtonLabels) WithDefaults() ButtonLabels {
	if l.Submit == "" {
		l.Submit = DefaultButtonLabels.Submit
	}
	if l.Cancel == "" {
		l.Cancel = DefaultButtonLabels.Cancel
	}
	if l.Back == "" {
		l.Back = DefaultButtonLabels.Back
	}
	if l.Next == "" {
		l.Next = DefaultButtonLabels.Next
	}
	return l
}

// Layout carries cosmetic flags for the host. The engine never reads them.
type Layout struct {
	CompactNav bool `json:"compact_nav,omitempty" mapstructure:"compact_nav"`
	FullWidth  bool `json:"full_width,omitempty" mapstructure:"full_width"`
	FullHeight bool `json:"full_height,omitempty" mapstructure:"full_height"`
	InModal    bool `json:"in_modal,omitempty" mapstructure:"in_modal"`
}

// Definition is the complete configuration surface of one wizard.
type Definition struct {
	Title        string           `json:"title,omitempty"`
	Description  string           `json:"description,omitempty"`
	Steps        []StepDefinition `json:"steps"`
	Dynamic      bool             `json:"dynamic,omitempty"`
	ButtonLabels ButtonLabels     `json:"button_labels"`
	Layout       Layout           `json:"layout"`
}
