package model

// ComponentType is the form widget used to render a field
type ComponentType string

const (
	ComponentText   ComponentType = "text"
	ComponentSelect ComponentType = "select"
	ComponentNumber ComponentType = "number"
	ComponentToggle ComponentType = "toggle"
)

// FieldOption is one choice of a select field
type FieldOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldDefinition describes a form field the client can render
type FieldDefinition struct {
	ID            string        `json:"id" yaml:"id"`
	ComponentType ComponentType `json:"component_type" yaml:"component_type"`
	Label         string        `json:"label" yaml:"label"`
	Placeholder   string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options       []FieldOption `json:"options,omitempty" yaml:"options,omitempty"`
	Min           *float64      `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64      `json:"max,omitempty" yaml:"max,omitempty"`
	Step          *float64      `json:"step,omitempty" yaml:"step,omitempty"`
	Required      bool          `json:"required" yaml:"required"`
	Default       any           `json:"default,omitempty" yaml:"default,omitempty"`
	Priority      int           `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Clone returns a copy that shares nothing mutable with the receiver
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.Options != nil {
		out.Options = append([]FieldOption(nil), f.Options...)
	}
	out.Min = cloneFloat(f.Min)
	out.Max = cloneFloat(f.Max)
	out.Step = cloneFloat(f.Step)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// SuggestionCategory explains why a field was suggested
type SuggestionCategory string

const (
	CategoryRequired   SuggestionCategory = "required"
	CategoryDetected   SuggestionCategory = "detected"
	CategoryHighValue  SuggestionCategory = "high_value"
	CategoryContextual SuggestionCategory = "contextual"
)

// FieldSuggestion is a ranked candidate for the next form step
type FieldSuggestion struct {
	FieldID    string             `json:"field_id"`
	Priority   int                `json:"priority"`
	Category   SuggestionCategory `json:"category"`
	Confidence float64            `json:"confidence"`
	Reason     string             `json:"reason"`
}
