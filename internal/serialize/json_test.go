package serialize

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixzheng98/cedarlink/internal/core"
)

func policy(t *testing.T, src string) *core.Policy {
	t.Helper()
	p, err := core.NewPolicy(src, "")
	if err != nil {
		t.Fatalf("NewPolicy(%q) error = %v", src, err)
	}
	return p
}

func TestToJSON(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "Unconstrained",
			src:  "permit(principal, action, resource);",
			want: `{"effect":"permit","principal":{"op":"All"},"action":{"op":"All"},"resource":{"op":"All"},"conditions":[]}`,
		},
		{
			name: "Forbid With Entities",
			src:  `forbid(principal == Library::User::"Victor", action, resource in Library::Shelf::"A3");`,
			want: `{"effect":"forbid","principal":{"op":"==","entity":{"type":"Library::User","id":"Victor"}},"action":{"op":"All"},"resource":{"op":"in","entity":{"type":"Library::Shelf","id":"A3"}},"conditions":[]}`,
		},
		{
			name: "Action Set",
			src:  `permit(principal, action in [Action::"read", Action::"list"], resource);`,
			want: `{"effect":"permit","principal":{"op":"All"},"action":{"op":"in","entities":[{"type":"Action","id":"read"},{"type":"Action","id":"list"}]},"resource":{"op":"All"},"conditions":[]}`,
		},
		{
			name: "Is With Container",
			src:  `permit(principal is Library::User, action, resource is Library::Book in Library::Shelf::"A3");`,
			want: `{"effect":"permit","principal":{"op":"is","entity_type":"Library::User"},"action":{"op":"All"},"resource":{"op":"is","entity_type":"Library::Book","in":{"entity":{"type":"Library::Shelf","id":"A3"}}},"conditions":[]}`,
		},
		{
			name: "Conditions",
			src:  "permit(principal, action, resource) when { resource.open } unless { principal.banned };",
			want: `{"effect":"permit","principal":{"op":"All"},"action":{"op":"All"},"resource":{"op":"All"},"conditions":[{"kind":"when","body":"resource.open"},{"kind":"unless","body":"principal.banned"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToJSON(policy(t, tt.src))
			if err != nil {
				t.Fatalf("ToJSON() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ToJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToJSON_RefusesTemplates(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantSlot string
	}{
		{
			name:     "Both Slots Names Resource",
			src:      "permit(principal == ?principal, action, resource in ?resource);",
			wantSlot: "?resource",
		},
		{
			name:     "Principal Slot",
			src:      "permit(principal == ?principal, action, resource);",
			wantSlot: "?principal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToJSON(policy(t, tt.src))
			if err == nil {
				t.Fatalf("ToJSON() expected error for template")
			}
			var serErr *core.SerializationError
			if !errors.As(err, &serErr) {
				t.Fatalf("error is %T, want *core.SerializationError", err)
			}
			want := "expected a static policy, got a template containing the slot " + tt.wantSlot
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not contain %q", err.Error(), want)
			}
		})
	}
}

func TestToJSON_InvalidSource(t *testing.T) {
	_, err := ToJSON(policy(t, "permit();"))
	if err == nil {
		t.Fatalf("ToJSON() expected error for invalid source")
	}
	var parseErr *core.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error is %T, want *core.ParseError", err)
	}
}

func TestToJSON_NilPolicy(t *testing.T) {
	if _, err := ToJSON(nil); !errors.Is(err, core.ErrNilSource) {
		t.Errorf("ToJSON(nil) error = %v, want ErrNilSource", err)
	}
}
