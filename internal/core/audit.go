package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "policy.parse", "template.link")
	Action string `json:"action"`

	// PolicyID of the policy or template the operation produced or targeted
	PolicyID string `json:"policy_id,omitempty"`

	// SourceFingerprint is a short hash of the submitted source text,
	// so the audit log never stores raw policy bodies.
	SourceFingerprint string `json:"source_fingerprint,omitempty"`

	// Template indicates the operation ran in template mode
	Template bool `json:"template,omitempty"`

	// TemplateID of the template a link operation resolved, so the
	// attempt can later be replayed against the registry.
	TemplateID string `json:"template_id,omitempty"`

	// Slot fillers supplied on link operations (canonical text form)
	Principal string `json:"principal,omitempty"`
	Resource  string `json:"resource,omitempty"`

	// Outcome
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	// Stacktrace holds the underlying error chain for debugging
	Stacktrace string `json:"stacktrace,omitempty"`
}
