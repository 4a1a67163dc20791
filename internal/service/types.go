package service

import "github.com/felixzheng98/cedarlink/internal/core"

type ParseRequest struct {
	// Src is the raw policy text.
	Src string

	// Template selects template mode: the source must contain at least
	// one slot. In static mode any slot is rejected.
	Template bool

	// ID is optional. If empty, an id is generated.
	ID string

	// Publish stores the parsed policy in the registry.
	Publish bool
}

type ParseResponse struct {
	// Policy carries the generated or requested id plus canonical text.
	Policy *core.Policy

	// Kind is "static" or "template".
	Kind core.PolicyKind
}

type LinkRequest struct {
	// TemplateID selects a stored template. Mutually exclusive with Src.
	TemplateID string

	// Src is an inline template body.
	Src string

	// Principal and Resource are the slot fillers in entity UID text
	// form, e.g. `App::User::"alice"`. Empty means the slot is not
	// filled, which only succeeds when the template lacks that slot.
	Principal string
	Resource  string

	// ID is optional. If empty, an id is generated.
	ID string

	// Publish stores the resolved policy in the registry.
	Publish bool
}

type LinkResponse struct {
	// Policy is the resolved static policy.
	Policy *core.Policy

	// TemplateID is set when the template came from the registry.
	TemplateID string
}

type JSONRequest struct {
	// PolicyID selects a stored policy. Mutually exclusive with Src.
	PolicyID string

	// Src is an inline static policy body.
	Src string
}

type JSONResponse struct {
	// JSON is the compact document form.
	JSON string
}

type ExplainRequest struct {
	// ReplayID replays a past link attempt from the audit log.
	ReplayID string

	// TemplateID or Src identify the template for a live trace.
	TemplateID string
	Src        string

	// Principal and Resource are the slot fillers in entity UID text form.
	Principal string
	Resource  string
}
