package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixzheng98/cedarlink/internal/core"
)

func TestParseStatic(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantCanonical string
		wantErr       string
	}{
		{
			name:          "Unconstrained Scope",
			input:         "permit(principal, action, resource);",
			wantCanonical: "permit(principal, action, resource);",
		},
		{
			name:          "Forbid",
			input:         "forbid(principal, action, resource);",
			wantCanonical: "forbid(principal, action, resource);",
		},
		{
			name:          "Whitespace And Comments Normalized",
			input:         "permit(\n  principal , // who\n  action,resource\n) ;",
			wantCanonical: "permit(principal, action, resource);",
		},
		{
			name:          "Entity Constraints",
			input:         `permit(principal == Library::User::"Victor", action, resource in Library::Shelf::"A3");`,
			wantCanonical: `permit(principal == Library::User::"Victor", action, resource in Library::Shelf::"A3");`,
		},
		{
			name:          "Action Set",
			input:         `permit(principal, action in [Action::"read", Action::"list"], resource);`,
			wantCanonical: `permit(principal, action in [Action::"read", Action::"list"], resource);`,
		},
		{
			name:          "Is Constraint",
			input:         `permit(principal is Library::User, action, resource is Library::Book in Library::Shelf::"A3");`,
			wantCanonical: `permit(principal is Library::User, action, resource is Library::Book in Library::Shelf::"A3");`,
		},
		{
			name:          "When Condition",
			input:         "permit(principal, action, resource) when { principal has x && principal.x == 5};",
			wantCanonical: "permit(principal, action, resource) when { principal has x && principal.x == 5 };",
		},
		{
			name:          "When And Unless",
			input:         "permit(principal, action, resource)\nwhen { resource.open }\nunless { principal.banned };",
			wantCanonical: "permit(principal, action, resource) when { resource.open } unless { principal.banned };",
		},
		{
			name:    "Empty Scope",
			input:   "permit();",
			wantErr: "missing required scope element",
		},
		{
			name:    "Missing Resource",
			input:   "permit(principal, action);",
			wantErr: "expected ','",
		},
		{
			name:    "Unknown Effect",
			input:   "allow(principal, action, resource);",
			wantErr: "expected 'permit' or 'forbid'",
		},
		{
			name:    "Scope Out Of Order",
			input:   "permit(action, principal, resource);",
			wantErr: "expected 'principal'",
		},
		{
			name:    "Missing Semicolon",
			input:   "permit(principal, action, resource)",
			wantErr: "unexpected end of input",
		},
		{
			name:    "Trailing Garbage",
			input:   "permit(principal, action, resource); extra",
			wantErr: "unexpected input after policy",
		},
		{
			name:    "Template Rejected",
			input:   "permit(principal == ?principal, action, resource);",
			wantErr: "expected a static policy, got a template containing the slot ?principal",
		},
		{
			name:    "Both Slots Rejected Naming Resource",
			input:   "permit(principal == ?principal, action, resource in ?resource);",
			wantErr: "containing the slot ?resource",
		},
		{
			name:    "Empty Condition Body",
			input:   "permit(principal, action, resource) when { };",
			wantErr: "empty condition body",
		},
		{
			name:    "Unterminated Condition Body",
			input:   "permit(principal, action, resource) when { resource.open ;",
			wantErr: "unterminated condition body",
		},
		{
			name:    "Unbalanced Condition Parens",
			input:   "permit(principal, action, resource) when { (resource.open };",
			wantErr: "unbalanced parentheses",
		},
		{
			name:    "Misordered Condition Parens",
			input:   "permit(principal, action, resource) when { ) ( };",
			wantErr: "unbalanced parentheses",
		},
		{
			name:    "Bad Entity Reference",
			input:   "permit(principal == Victor, action, resource);",
			wantErr: "expected '::'",
		},
		{
			name:    "Single Equals",
			input:   "permit(principal = User::\"x\", action, resource);",
			wantErr: "did you mean '=='",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseStatic(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseStatic(%q) expected error containing %q, got none", tt.input, tt.wantErr)
				}
				var parseErr *core.ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("ParseStatic(%q) error is %T, want *core.ParseError", tt.input, err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatic(%q) error = %v", tt.input, err)
			}
			if got := p.Format(); got != tt.wantCanonical {
				t.Errorf("Format() = %q, want %q", got, tt.wantCanonical)
			}
		})
	}
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSlots []string
		wantErr   string
	}{
		{
			name:      "Both Slots",
			input:     "permit(principal == ?principal, action, resource in ?resource);",
			wantSlots: []string{"?principal", "?resource"},
		},
		{
			name:      "Principal Only",
			input:     "permit(principal == ?principal, action, resource);",
			wantSlots: []string{"?principal"},
		},
		{
			name:      "Resource Only",
			input:     "permit(principal, action, resource in ?resource);",
			wantSlots: []string{"?resource"},
		},
		{
			name:      "Slot After Is",
			input:     "permit(principal is Library::User in ?principal, action, resource);",
			wantSlots: []string{"?principal"},
		},
		{
			name:    "Static Policy Is Not A Template",
			input:   "permit(principal, action, resource);",
			wantErr: "expected a template",
		},
		{
			name:    "Resource Slot In Principal Scope",
			input:   "permit(principal in ?resource, action, resource);",
			wantErr: "the slot ?resource may not appear in the principal scope",
		},
		{
			name:    "Principal Slot In Resource Scope",
			input:   "permit(principal, action, resource == ?principal);",
			wantErr: "the slot ?principal may not appear in the resource scope",
		},
		{
			name:    "Slot In Action Scope",
			input:   "permit(principal, action in ?principal, resource);",
			wantErr: "slots are not allowed in the action scope",
		},
		{
			name:    "Unknown Slot Name",
			input:   "permit(principal == ?user, action, resource);",
			wantErr: "the slot ?user may not appear in the principal scope",
		},
		{
			name:    "Empty Scope",
			input:   "permit();",
			wantErr: "missing required scope element",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseTemplate(tt.input)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseTemplate(%q) expected error containing %q, got none", tt.input, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTemplate(%q) error = %v", tt.input, err)
			}
			got := p.Slots()
			if len(got) != len(tt.wantSlots) {
				t.Fatalf("Slots() = %v, want %v", got, tt.wantSlots)
			}
			for i := range got {
				if got[i] != tt.wantSlots[i] {
					t.Errorf("Slots()[%d] = %q, want %q", i, got[i], tt.wantSlots[i])
				}
			}
		})
	}
}

// Canonical text is a fixed point: parsing the formatter's output and
// formatting it again changes nothing.
func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"permit(principal, action, resource);",
		"permit(\n\tprincipal\t== Library::User::\"Victor\",\n\taction,\n\tresource\n);",
		`forbid(principal, action in [Action::"read"], resource) when {  resource.owner   ==  principal  };`,
		"permit(principal == ?principal, action, resource in ?resource);",
	}
	for _, input := range inputs {
		first, err := parse(input)
		if err != nil {
			t.Fatalf("parse(%q) error = %v", input, err)
		}
		second, err := parse(first.Format())
		if err != nil {
			t.Fatalf("re-parse of %q error = %v", first.Format(), err)
		}
		if first.Format() != second.Format() {
			t.Errorf("format not idempotent: %q != %q", first.Format(), second.Format())
		}
	}
}

// Template canonical form of an already-canonical body is the input itself.
func TestParseTemplate_PreservesCanonicalInput(t *testing.T) {
	body := "permit(principal == ?principal, action, resource in ?resource);"
	p, err := ParseTemplate(body)
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	if p.Format() != body {
		t.Errorf("Format() = %q, want %q", p.Format(), body)
	}
}
