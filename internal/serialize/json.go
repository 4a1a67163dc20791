// Package serialize converts static policies into their canonical
// JSON document form. Templates are refused: a policy is only
// serializable once every slot has been linked.
package serialize

import (
	"encoding/json"

	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/parser"
)

// Document is the JSON form of a static policy. Field order and key names
// are part of the external contract; downstream consumers match on them.
type Document struct {
	Effect     string      `json:"effect"`
	Principal  Scope       `json:"principal"`
	Action     Scope       `json:"action"`
	Resource   Scope       `json:"resource"`
	Conditions []Condition `json:"conditions"`
}

// Scope is one scope constraint. "op" is always present; the remaining
// fields depend on it: "All" carries nothing, "=="/"in" carry an entity
// (or an entity set for actions), "is" carries an entity type and
// optionally a container.
type Scope struct {
	Op         string       `json:"op"`
	Entity     *EntityRef   `json:"entity,omitempty"`
	Entities   []EntityRef  `json:"entities,omitempty"`
	EntityType string       `json:"entity_type,omitempty"`
	In         *ScopeInside `json:"in,omitempty"`
}

// ScopeInside is the container part of an "is ... in ..." constraint.
type ScopeInside struct {
	Entity EntityRef `json:"entity"`
}

// EntityRef is a serialized entity UID.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Condition is a serialized when/unless clause. The body is the raw
// normalized condition text; its internal structure is not modelled here.
type Condition struct {
	Kind string `json:"kind"`
	Body string `json:"body"`
}

// ToJSON serializes a static policy into its compact JSON document form.
// It fails with core.ErrNilSource when the policy has no source (which
// construction normally prevents) and with a *core.SerializationError
// naming the offending slot when the policy is still a template.
func ToJSON(p *core.Policy) (string, error) {
	if p == nil || p.Source() == "" {
		return "", core.ErrNilSource
	}
	parsed, err := parser.Parse(p.Source())
	if err != nil {
		return "", err
	}
	if slots := parsed.Slots(); len(slots) > 0 {
		return "", core.SerializationErrorf(
			"expected a static policy, got a template containing the slot %s", slots[len(slots)-1])
	}

	doc := Build(parsed)
	out, err := json.Marshal(doc)
	if err != nil {
		return "", core.SerializationErrorf("encoding policy document: %v", err)
	}
	return string(out), nil
}

// Build maps a parsed slot-free policy onto the document model.
func Build(p *parser.Policy) Document {
	doc := Document{
		Effect:     string(p.Effect),
		Principal:  buildScope(p.Principal),
		Action:     buildScope(p.Action),
		Resource:   buildScope(p.Resource),
		Conditions: []Condition{},
	}
	for _, c := range p.Conditions {
		doc.Conditions = append(doc.Conditions, Condition{Kind: c.Kind, Body: c.Body})
	}
	return doc
}

func buildScope(c parser.ScopeClause) Scope {
	switch c.Op {
	case parser.OpEq:
		return Scope{Op: "==", Entity: entityRef(c.Entity)}
	case parser.OpIn:
		if c.Entities != nil {
			refs := make([]EntityRef, 0, len(c.Entities))
			for _, e := range c.Entities {
				refs = append(refs, EntityRef{Type: e.Type().String(), ID: e.ID()})
			}
			return Scope{Op: "in", Entities: refs}
		}
		return Scope{Op: "in", Entity: entityRef(c.Entity)}
	case parser.OpIs:
		return Scope{Op: "is", EntityType: c.IsType.String()}
	case parser.OpIsIn:
		return Scope{Op: "is", EntityType: c.IsType.String(), In: &ScopeInside{Entity: *entityRef(c.Entity)}}
	default:
		return Scope{Op: "All"}
	}
}

func entityRef(e *core.EntityUID) *EntityRef {
	return &EntityRef{Type: e.Type().String(), ID: e.ID()}
}
