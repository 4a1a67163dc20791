package link

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixzheng98/cedarlink/internal/core"
)

func mustUID(t *testing.T, s string) *core.EntityUID {
	t.Helper()
	uid, err := core.ParseEntityUID(s)
	if err != nil {
		t.Fatalf("ParseEntityUID(%q) error = %v", s, err)
	}
	return &uid
}

func TestValidator_ValidateTemplateLinkedPolicy(t *testing.T) {
	v := NewValidator()

	principal := `Library::User::"Victor"`
	resource := `Library::Book::"Thinking Fast and Slow"`

	tests := []struct {
		name      string
		template  string
		principal string
		resource  string
		wantErr   string
	}{
		{
			name:      "Both Slots Both Fillers",
			template:  "permit(principal == ?principal, action, resource in ?resource);",
			principal: principal,
			resource:  resource,
		},
		{
			name:     "Resource Slot Resource Filler",
			template: "permit(principal, action, resource in ?resource);",
			resource: resource,
		},
		{
			name:      "Principal Slot Principal Filler",
			template:  "permit(principal == ?principal, action, resource);",
			principal: principal,
		},
		{
			name:     "Zero Slots Zero Fillers",
			template: "permit(principal, action, resource);",
		},
		{
			name:      "Both Slots Principal Only",
			template:  "permit(principal == ?principal, action, resource in ?resource);",
			principal: principal,
			wantErr:   "the template slot ?resource requires a filler",
		},
		{
			name:      "Resource Slot Principal Filler",
			template:  "permit(principal, action, resource in ?resource);",
			principal: principal,
			wantErr:   "a principal filler was supplied, but the template has no ?principal slot",
		},
		{
			name:      "Resource Slot Both Fillers",
			template:  "permit(principal, action, resource in ?resource);",
			principal: principal,
			resource:  resource,
			wantErr:   "a principal filler was supplied",
		},
		{
			name:     "Principal Slot Resource Filler",
			template: "permit(principal == ?principal, action, resource);",
			resource: resource,
			wantErr:  "requires a filler",
		},
		{
			name:      "Principal Slot Both Fillers",
			template:  "permit(principal == ?principal, action, resource);",
			principal: principal,
			resource:  resource,
			wantErr:   "a resource filler was supplied",
		},
		{
			name:      "Zero Slots With Filler",
			template:  "permit(principal, action, resource);",
			principal: principal,
			wantErr:   "a principal filler was supplied",
		},
		{
			name:     "Invalid Template Text",
			template: "permit();",
			wantErr:  "invalid template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pUID, rUID *core.EntityUID
			if tt.principal != "" {
				pUID = mustUID(t, tt.principal)
			}
			if tt.resource != "" {
				rUID = mustUID(t, tt.resource)
			}

			ok, err := v.ValidateTemplateLinkedPolicy(tt.template, pUID, rUID)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got ok=%v", tt.wantErr, ok)
				}
				var linkErr *core.LinkError
				if !errors.As(err, &linkErr) {
					t.Fatalf("error is %T, want *core.LinkError", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateTemplateLinkedPolicy() error = %v", err)
			}
			if !ok {
				t.Fatalf("ValidateTemplateLinkedPolicy() = false, want true")
			}
		})
	}
}

func TestValidator_Link(t *testing.T) {
	v := NewValidator()

	pUID := mustUID(t, `Library::User::"Victor"`)
	rUID := mustUID(t, `Library::Book::"The black Swan"`)

	linked, err := v.Link("permit(principal == ?principal, action, resource in ?resource);", pUID, rUID)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	want := `permit(principal == Library::User::"Victor", action, resource in Library::Book::"The black Swan");`
	if linked != want {
		t.Errorf("Link() = %q, want %q", linked, want)
	}

	// the linked output must itself pass static parsing
	if _, err := v.ParseStaticPolicy(linked); err != nil {
		t.Errorf("linked policy rejected by static parse: %v", err)
	}
}

func TestValidator_Trace(t *testing.T) {
	v := NewValidator()
	pUID := mustUID(t, `Library::User::"Victor"`)

	t.Run("Success", func(t *testing.T) {
		trace := v.Trace("permit(principal == ?principal, action, resource);", pUID, nil)
		if !trace.Linked {
			t.Fatalf("Trace() not linked: %s", trace.Error)
		}
		if len(trace.SlotResults) != 2 {
			t.Fatalf("SlotResults = %d, want 2", len(trace.SlotResults))
		}
		for _, sr := range trace.SlotResults {
			if !sr.OK {
				t.Errorf("slot %s not OK: %s", sr.Slot, sr.Reason)
			}
		}
	})

	t.Run("Missing Filler", func(t *testing.T) {
		trace := v.Trace("permit(principal == ?principal, action, resource);", nil, nil)
		if trace.Linked {
			t.Fatalf("Trace() linked, want failure")
		}
		if trace.SlotResults[0].OK {
			t.Errorf("principal slot reported OK despite missing filler")
		}
		if trace.SlotResults[0].Reason == "" {
			t.Errorf("missing reason for failed slot")
		}
		if !trace.SlotResults[1].OK {
			t.Errorf("resource slot should be OK (absent and unfilled)")
		}
	})
}
