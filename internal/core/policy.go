package core

import (
	"strconv"
	"sync/atomic"
)

// idCounter backs generated policy ids. It is process-wide and strictly
// increasing; AddAndGet-style increments keep concurrently constructed
// policies from colliding.
var idCounter atomic.Int64

// Policy is a single policy (or template) in the policy language: its
// canonical source text plus a unique id. Both are fixed at construction.
//
// A template is not a distinct type: a Policy whose source contains the
// slots ?principal and/or ?resource is a template, and the distinction is
// enforced at parse, link and serialization time.
type Policy struct {
	src string
	id  string
}

// NewPolicy constructs a Policy from raw source text. The text is not
// checked for language-level correctness here; use the parser entry points
// for that. If id is empty, a fresh "policy<N>" id is generated.
func NewPolicy(src, id string) (*Policy, error) {
	if src == "" {
		return nil, ErrNilSource
	}
	if id == "" {
		id = GeneratePolicyID()
	}
	return &Policy{src: src, id: id}, nil
}

// GeneratePolicyID returns the next generated policy id.
func GeneratePolicyID() string {
	return "policy" + strconv.FormatInt(idCounter.Add(1), 10)
}

// ID returns the policy id.
func (p *Policy) ID() string {
	return p.id
}

// Source returns the policy source text.
func (p *Policy) Source() string {
	return p.src
}

// String renders a diagnostic form: a comment line carrying the id,
// followed by the source. Not suitable for round-tripping.
func (p *Policy) String() string {
	return "// Policy ID: " + p.id + "\n" + p.src
}
