// Package parser is the policy-language frontend: it turns raw source text
// into a parsed Policy and re-serializes it into canonical form. It enforces
// the static/template distinction and the positional rules for slots, but
// does not evaluate policies.
package parser

import (
	"strings"

	"github.com/felixzheng98/cedarlink/internal/core"
)

// Parse parses src without enforcing the static/template distinction.
// Slot-position rules still apply.
func Parse(src string) (*Policy, error) {
	return parse(src)
}

// ParseStatic parses src as a slot-free policy.
func ParseStatic(src string) (*Policy, error) {
	p, err := parse(src)
	if err != nil {
		return nil, err
	}
	if slots := p.Slots(); len(slots) > 0 {
		return nil, core.ParseErrorf(
			"expected a static policy, got a template containing the slot %s", slots[len(slots)-1])
	}
	return p, nil
}

// ParseTemplate parses src as a template: at least one slot, each in its
// legal scope position.
func ParseTemplate(src string) (*Policy, error) {
	p, err := parse(src)
	if err != nil {
		return nil, err
	}
	if !p.IsTemplate() {
		return nil, core.ParseErrorf("expected a template, got a static policy with no slots")
	}
	return p, nil
}

func parse(src string) (*Policy, error) {
	s := newScanner(src)
	p := &Policy{}

	tok, err := s.next()
	if err != nil {
		return nil, err
	}
	switch tok.text {
	case "permit":
		p.Effect = EffectPermit
	case "forbid":
		p.Effect = EffectForbid
	default:
		return nil, core.ParseErrorf("expected 'permit' or 'forbid', got '%s'", tok.text)
	}

	if err := expect(s, tokLParen, "'('"); err != nil {
		return nil, err
	}

	if p.Principal, err = parseScopeClause(s, "principal"); err != nil {
		return nil, err
	}
	if err := expect(s, tokComma, "','"); err != nil {
		return nil, err
	}
	if p.Action, err = parseScopeClause(s, "action"); err != nil {
		return nil, err
	}
	if err := expect(s, tokComma, "','"); err != nil {
		return nil, err
	}
	if p.Resource, err = parseScopeClause(s, "resource"); err != nil {
		return nil, err
	}
	if err := expect(s, tokRParen, "')'"); err != nil {
		return nil, err
	}

	for {
		tok, err := s.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokIdent || (tok.text != "when" && tok.text != "unless") {
			break
		}
		_, _ = s.next()
		body, err := s.captureBlock()
		if err != nil {
			return nil, err
		}
		p.Conditions = append(p.Conditions, Condition{Kind: tok.text, Body: body})
	}

	if err := expect(s, tokSemicolon, "';'"); err != nil {
		return nil, err
	}
	tok, err = s.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokEOF {
		return nil, core.ParseErrorf("unexpected input after policy: '%s'", tok.text)
	}
	return p, nil
}

func expect(s *scanner, kind tokenKind, what string) error {
	tok, err := s.next()
	if err != nil {
		return err
	}
	if tok.kind != kind {
		if tok.kind == tokEOF {
			return core.ParseErrorf("unexpected end of input, expected %s", what)
		}
		return core.ParseErrorf("expected %s, got '%s'", what, tok.text)
	}
	return nil
}

func parseScopeClause(s *scanner, varName string) (ScopeClause, error) {
	clause := ScopeClause{Var: varName, Op: OpAll}

	tok, err := s.next()
	if err != nil {
		return clause, err
	}
	if tok.kind != tokIdent || tok.text != varName {
		// permit() and friends land here: the scope must always name all
		// three variables, even when unconstrained.
		got := tok.text
		if tok.kind == tokEOF {
			got = "end of input"
		}
		return clause, core.ParseErrorf(
			"missing required scope element: expected '%s', got '%s'", varName, got)
	}

	op, err := s.peek()
	if err != nil {
		return clause, err
	}
	switch {
	case op.kind == tokComma || op.kind == tokRParen:
		return clause, nil

	case op.kind == tokEq:
		_, _ = s.next()
		clause.Op = OpEq
		return parseScopeRHS(s, clause)

	case op.kind == tokIdent && op.text == "in":
		_, _ = s.next()
		clause.Op = OpIn
		if varName == "action" {
			return parseActionIn(s, clause)
		}
		return parseScopeRHS(s, clause)

	case op.kind == tokIdent && op.text == "is":
		if varName == "action" {
			return clause, core.ParseErrorf("'is' is not allowed in the action scope")
		}
		_, _ = s.next()
		clause.Op = OpIs
		if clause.IsType, err = parseTypePath(s); err != nil {
			return clause, err
		}
		nxt, err := s.peek()
		if err != nil {
			return clause, err
		}
		if nxt.kind == tokIdent && nxt.text == "in" {
			_, _ = s.next()
			clause.Op = OpIsIn
			return parseScopeRHS(s, clause)
		}
		return clause, nil

	default:
		return clause, core.ParseErrorf("unexpected '%s' in %s scope", op.text, varName)
	}
}

// parseScopeRHS parses the right-hand side of "== x" / "in x" for the
// principal and resource scopes (and the entity form for action "=="):
// either an entity UID or, for principal/resource, the matching slot.
func parseScopeRHS(s *scanner, clause ScopeClause) (ScopeClause, error) {
	tok, err := s.peek()
	if err != nil {
		return clause, err
	}
	if tok.kind == tokSlot {
		_, _ = s.next()
		if clause.Var == "action" {
			return clause, core.ParseErrorf("slots are not allowed in the action scope")
		}
		if tok.text != "?"+clause.Var {
			return clause, core.ParseErrorf(
				"the slot %s may not appear in the %s scope", tok.text, clause.Var)
		}
		clause.Slot = tok.text
		return clause, nil
	}
	uid, err := parseEntityRef(s)
	if err != nil {
		return clause, err
	}
	clause.Entity = &uid
	return clause, nil
}

// parseActionIn parses "action in X" where X is an entity UID or a
// bracketed set of entity UIDs.
func parseActionIn(s *scanner, clause ScopeClause) (ScopeClause, error) {
	tok, err := s.peek()
	if err != nil {
		return clause, err
	}
	if tok.kind == tokSlot {
		_, _ = s.next()
		return clause, core.ParseErrorf("slots are not allowed in the action scope")
	}
	if tok.kind != tokLBracket {
		return parseScopeRHS(s, clause)
	}
	_, _ = s.next()

	clause.Entities = []core.EntityUID{}
	for {
		uid, err := parseEntityRef(s)
		if err != nil {
			return clause, err
		}
		clause.Entities = append(clause.Entities, uid)

		tok, err := s.next()
		if err != nil {
			return clause, err
		}
		switch tok.kind {
		case tokComma:
		case tokRBracket:
			return clause, nil
		default:
			return clause, core.ParseErrorf("expected ',' or ']' in action set, got '%s'", tok.text)
		}
	}
}

// parseEntityRef parses Type::"id" with an optional namespace path and
// delegates final validation to core.ParseEntityUID.
func parseEntityRef(s *scanner) (core.EntityUID, error) {
	tok, err := s.next()
	if err != nil {
		return core.EntityUID{}, err
	}
	if tok.kind != tokIdent {
		return core.EntityUID{}, core.ParseErrorf("expected an entity reference, got '%s'", tok.text)
	}

	parts := []string{tok.text}
	for {
		if err := expect(s, tokDColon, "'::'"); err != nil {
			return core.EntityUID{}, err
		}
		tok, err := s.next()
		if err != nil {
			return core.EntityUID{}, err
		}
		switch tok.kind {
		case tokIdent:
			parts = append(parts, tok.text)
		case tokString:
			raw := strings.Join(parts, "::") + "::" + tok.text
			uid, err := core.ParseEntityUID(raw)
			if err != nil {
				return core.EntityUID{}, core.ParseErrorf("%v", err)
			}
			return uid, nil
		default:
			return core.EntityUID{}, core.ParseErrorf(
				"expected a type name or id literal after '::', got '%s'", tok.text)
		}
	}
}

// parseTypePath parses a bare "::"-joined type path (no id literal), as
// used by "is" constraints.
func parseTypePath(s *scanner) (core.EntityTypeName, error) {
	tok, err := s.next()
	if err != nil {
		return core.EntityTypeName{}, err
	}
	if tok.kind != tokIdent {
		return core.EntityTypeName{}, core.ParseErrorf("expected a type name, got '%s'", tok.text)
	}
	parts := []string{tok.text}
	for {
		saved := s.pos
		tok, err := s.next()
		if err != nil || tok.kind != tokDColon {
			s.pos = saved
			break
		}
		tok, err = s.next()
		if err != nil {
			return core.EntityTypeName{}, err
		}
		if tok.kind != tokIdent {
			return core.EntityTypeName{}, core.ParseErrorf(
				"expected a type name component after '::', got '%s'", tok.text)
		}
		parts = append(parts, tok.text)
	}
	typ, err := core.ParseEntityTypeName(strings.Join(parts, "::"))
	if err != nil {
		return core.EntityTypeName{}, core.ParseErrorf("%v", err)
	}
	return typ, nil
}
