package parser

import (
	"strings"

	"github.com/felixzheng98/cedarlink/internal/core"
)

// Effect is the head keyword of a policy.
type Effect string

const (
	EffectPermit Effect = "permit"
	EffectForbid Effect = "forbid"
)

// ScopeOp is the constraint operator of a scope clause.
type ScopeOp int

const (
	// OpAll is an unconstrained scope variable ("principal" alone).
	OpAll ScopeOp = iota
	OpEq
	OpIn
	OpIs
	OpIsIn
)

// Slot names recognized in scope position.
const (
	SlotPrincipal = "?principal"
	SlotResource  = "?resource"
)

// ScopeClause is one element of the policy scope: the variable plus its
// constraint. Exactly one of Entity, Entities, Slot or none is populated,
// depending on Op; IsType is set for OpIs/OpIsIn.
type ScopeClause struct {
	Var    string // "principal", "action" or "resource"
	Op     ScopeOp
	Entity *core.EntityUID
	// Entities holds the set form "action in [...]".
	Entities []core.EntityUID
	// Slot is "?principal" or "?resource" when the right-hand side is open.
	Slot   string
	IsType core.EntityTypeName
}

// Condition is a when/unless clause. The body is carried as raw text with
// normalized whitespace; its expression grammar is not interpreted here.
type Condition struct {
	Kind string // "when" or "unless"
	Body string
}

// Policy is the parsed form of a single policy or template.
type Policy struct {
	Effect     Effect
	Principal  ScopeClause
	Action     ScopeClause
	Resource   ScopeClause
	Conditions []Condition
}

// Slots returns the slot names the policy declares, in scope order.
func (p *Policy) Slots() []string {
	var slots []string
	if p.Principal.Slot != "" {
		slots = append(slots, p.Principal.Slot)
	}
	if p.Resource.Slot != "" {
		slots = append(slots, p.Resource.Slot)
	}
	return slots
}

// IsTemplate reports whether the policy declares any slot.
func (p *Policy) IsTemplate() bool {
	return p.Principal.Slot != "" || p.Resource.Slot != ""
}

// Format re-serializes the policy into canonical single-line text.
// Parsing the result yields an identical Policy.
func (p *Policy) Format() string {
	var b strings.Builder
	b.WriteString(string(p.Effect))
	b.WriteByte('(')
	b.WriteString(p.Principal.format())
	b.WriteString(", ")
	b.WriteString(p.Action.format())
	b.WriteString(", ")
	b.WriteString(p.Resource.format())
	b.WriteByte(')')
	for _, cond := range p.Conditions {
		b.WriteByte(' ')
		b.WriteString(cond.Kind)
		b.WriteString(" { ")
		b.WriteString(cond.Body)
		b.WriteString(" }")
	}
	b.WriteByte(';')
	return b.String()
}

func (c ScopeClause) format() string {
	switch c.Op {
	case OpEq:
		return c.Var + " == " + c.rhs()
	case OpIn:
		if c.Entities != nil {
			var refs []string
			for _, e := range c.Entities {
				refs = append(refs, e.String())
			}
			return c.Var + " in [" + strings.Join(refs, ", ") + "]"
		}
		return c.Var + " in " + c.rhs()
	case OpIs:
		return c.Var + " is " + c.IsType.String()
	case OpIsIn:
		return c.Var + " is " + c.IsType.String() + " in " + c.rhs()
	default:
		return c.Var
	}
}

func (c ScopeClause) rhs() string {
	if c.Slot != "" {
		return c.Slot
	}
	return c.Entity.String()
}
