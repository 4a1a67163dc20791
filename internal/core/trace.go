package core

// LinkTrace captures the detailed result of a link attempt: one entry per
// slot kind, so a caller can see exactly which slot/filler pairing failed.
type LinkTrace struct {
	// CorrelationID is the unique identifier for the link request.
	CorrelationID string `yaml:"correlation_id" json:"correlation_id"`

	// TemplateID of the template being linked, when known.
	TemplateID string `yaml:"template_id,omitempty" json:"template_id,omitempty"`

	// SlotResults contains one result per slot kind.
	SlotResults []SlotResult `yaml:"slot_results" json:"slot_results"`

	// Linked indicates whether the link attempt succeeded overall.
	Linked bool `yaml:"linked" json:"linked"`

	// LinkedSource is the resolved static policy text on success.
	LinkedSource string `yaml:"linked_source,omitempty" json:"linked_source,omitempty"`

	// Error is the failure message when Linked is false.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`
}

// SlotResult captures how one slot kind fared during a link attempt.
type SlotResult struct {
	// Slot name, e.g. "?principal".
	Slot string `yaml:"slot" json:"slot"`

	// InTemplate indicates the template declares this slot.
	InTemplate bool `yaml:"in_template" json:"in_template"`

	// FillerSupplied indicates the caller provided a filler for it.
	FillerSupplied bool `yaml:"filler_supplied" json:"filler_supplied"`

	// Filler is the canonical text of the supplied filler, if any.
	Filler string `yaml:"filler,omitempty" json:"filler,omitempty"`

	// OK means declared-and-filled or absent-and-unfilled.
	OK bool `yaml:"ok" json:"ok"`

	// Reason explains a mismatch.
	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
}
