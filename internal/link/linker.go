// Package link decides whether concrete entity values correctly and
// completely fill a template's slots, producing a resolved static policy
// or a rejection.
package link

import (
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/parser"
)

// Validator is the slot-linking validator. It also exposes the two parse
// entry points, so it satisfies core.SyntaxParser and is the single
// language frontend handed to the service layer.
type Validator struct{}

var _ core.SyntaxParser = (*Validator)(nil)

func NewValidator() *Validator {
	return &Validator{}
}

// ParseStaticPolicy validates src as a static policy and returns its
// canonical text.
func (v *Validator) ParseStaticPolicy(src string) (string, error) {
	p, err := parser.ParseStatic(src)
	if err != nil {
		return "", err
	}
	return p.Format(), nil
}

// ParsePolicyTemplate validates src as a template and returns its
// canonical text.
func (v *Validator) ParsePolicyTemplate(src string) (string, error) {
	p, err := parser.ParseTemplate(src)
	if err != nil {
		return "", err
	}
	return p.Format(), nil
}

// ValidateTemplateLinkedPolicy reports whether the supplied fillers link
// the template into a valid static policy. A nil filler means the slot is
// deliberately left unfilled. Every failure surfaces as a *core.LinkError.
func (v *Validator) ValidateTemplateLinkedPolicy(templateSrc string, principal, resource *core.EntityUID) (bool, error) {
	if _, err := v.Link(templateSrc, principal, resource); err != nil {
		return false, err
	}
	return true, nil
}

// Link substitutes the fillers into the template and returns the canonical
// text of the resolved static policy.
//
// The filler set must match the template's slot set exactly, by slot name:
// a declared slot with no filler, a filler for an undeclared slot, and a
// directionally wrong filler are all rejected. Linking a zero-slot policy
// with both fillers absent succeeds and simply confirms it is static.
func (v *Validator) Link(templateSrc string, principal, resource *core.EntityUID) (string, error) {
	p, err := parser.Parse(templateSrc)
	if err != nil {
		return "", core.LinkErrorf("invalid template: %v", err)
	}

	if err := checkSlot(p.Principal.Slot != "", principal != nil, parser.SlotPrincipal, "principal"); err != nil {
		return "", err
	}
	if err := checkSlot(p.Resource.Slot != "", resource != nil, parser.SlotResource, "resource"); err != nil {
		return "", err
	}

	if p.Principal.Slot != "" {
		p.Principal.Slot = ""
		p.Principal.Entity = principal
	}
	if p.Resource.Slot != "" {
		p.Resource.Slot = ""
		p.Resource.Entity = resource
	}

	linked := p.Format()
	if _, err := parser.ParseStatic(linked); err != nil {
		return "", core.LinkErrorf("substituted policy is not a valid static policy: %v", err)
	}
	return linked, nil
}

// Trace runs a link attempt and reports per-slot detail instead of a bare
// error, for diagnostics.
func (v *Validator) Trace(templateSrc string, principal, resource *core.EntityUID) core.LinkTrace {
	trace := core.LinkTrace{}

	p, err := parser.Parse(templateSrc)
	if err != nil {
		trace.Error = err.Error()
		return trace
	}

	trace.SlotResults = []core.SlotResult{
		slotResult(parser.SlotPrincipal, p.Principal.Slot != "", principal),
		slotResult(parser.SlotResource, p.Resource.Slot != "", resource),
	}

	linked, err := v.Link(templateSrc, principal, resource)
	if err != nil {
		trace.Error = err.Error()
		return trace
	}
	trace.Linked = true
	trace.LinkedSource = linked
	return trace
}

func checkSlot(declared, supplied bool, slot, filler string) error {
	switch {
	case declared && !supplied:
		return core.LinkErrorf("the template slot %s requires a filler, but none was supplied", slot)
	case !declared && supplied:
		return core.LinkErrorf("a %s filler was supplied, but the template has no %s slot", filler, slot)
	default:
		return nil
	}
}

func slotResult(slot string, declared bool, filler *core.EntityUID) core.SlotResult {
	res := core.SlotResult{
		Slot:           slot,
		InTemplate:     declared,
		FillerSupplied: filler != nil,
		OK:             declared == (filler != nil),
	}
	if filler != nil {
		res.Filler = filler.String()
	}
	switch {
	case declared && filler == nil:
		res.Reason = "slot declared but no filler supplied"
	case !declared && filler != nil:
		res.Reason = "filler supplied for a slot the template does not declare"
	}
	return res
}
