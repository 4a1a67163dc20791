package core

// SyntaxParser is the language frontend consumed by the model layer.
// All three entry points are synchronous, pure functions of their inputs.
// Implementation: internal/parser.
type SyntaxParser interface {
	// ParseStaticPolicy validates src as a slot-free policy and returns
	// its canonical re-serialized text.
	ParseStaticPolicy(src string) (string, error)

	// ParsePolicyTemplate validates src as a template (at least one slot,
	// each in its legal scope position) and returns its canonical text.
	ParsePolicyTemplate(src string) (string, error)

	// ValidateTemplateLinkedPolicy checks that the supplied fillers match
	// the template's slot set exactly and that the substituted result is a
	// valid static policy. A nil filler means "slot not filled", which is
	// distinct from a filler that failed to parse upstream.
	ValidateTemplateLinkedPolicy(templateSrc string, principal, resource *EntityUID) (bool, error)
}

// Linker resolves a template plus fillers into static policy text.
// The language frontend implements this alongside SyntaxParser.
type Linker interface {
	Link(templateSrc string, principal, resource *EntityUID) (string, error)
}

// PolicyStore is the registry that policies are published into.
// Implementations must be safe for concurrent use.
type PolicyStore interface {
	Put(record PolicyRecord) error
	Get(id string) (PolicyRecord, bool)
	List() []PolicyRecord
	Remove(id string) bool
}

// PolicyKind distinguishes how a stored policy came to be.
type PolicyKind string

const (
	KindStatic   PolicyKind = "static"
	KindTemplate PolicyKind = "template"
	KindLinked   PolicyKind = "linked"
)

// Known record origins.
const (
	OriginConfig = "config"
	OriginAPI    = "api"
	OriginSource = "source"
)

// PolicyRecord is a stored policy plus registry metadata.
type PolicyRecord struct {
	Policy *Policy    `json:"-"`
	ID     string     `json:"id"`
	Source string     `json:"source"`
	Kind   PolicyKind `json:"kind"`

	// Origin records where the policy came from (config, api, source),
	// so a source re-sync only replaces its own records.
	Origin string `json:"origin,omitempty"`

	// TemplateID is set on linked policies: the template they came from.
	TemplateID string `json:"template_id,omitempty"`
}

// Auditor records policy operations for later inspection.
type Auditor interface {
	Log(entry AuditEntry) error

	// Find returns up to limit entries matching the predicate,
	// newest first. Auditors without retention return nothing.
	Find(pred func(AuditEntry) bool, limit int) ([]AuditEntry, error)

	Close() error
}

// ParseStaticPolicy runs the parser in static mode and wraps the canonical
// text in a fresh Policy with a generated id.
func ParseStaticPolicy(parser SyntaxParser, src string) (*Policy, error) {
	if src == "" {
		return nil, ErrNilSource
	}
	canonical, err := parser.ParseStaticPolicy(src)
	if err != nil {
		return nil, err
	}
	return NewPolicy(canonical, "")
}

// ParsePolicyTemplate runs the parser in template mode and wraps the
// canonical text in a fresh Policy with a generated id.
func ParsePolicyTemplate(parser SyntaxParser, src string) (*Policy, error) {
	if src == "" {
		return nil, ErrNilSource
	}
	canonical, err := parser.ParsePolicyTemplate(src)
	if err != nil {
		return nil, err
	}
	return NewPolicy(canonical, "")
}
