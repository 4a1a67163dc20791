package validation

import (
	"strings"
	"testing"

	"github.com/felixzheng98/cedarlink/internal/config"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/link"
)

func TestValidatePolicies(t *testing.T) {
	frontend := link.NewValidator()

	tests := []struct {
		name    string
		entries []config.PolicyEntry
		links   []config.LinkEntry
		wantErr string
	}{
		{
			name: "Valid Mix",
			entries: []config.PolicyEntry{
				{ID: "static-1", Src: "permit(principal, action, resource);"},
				{ID: "tmpl-1", Template: true, Src: "permit(principal == ?principal, action, resource);"},
			},
			links: []config.LinkEntry{
				{ID: "link-1", Template: "tmpl-1", Principal: `App::User::"alice"`},
			},
		},
		{
			name: "Duplicate ID",
			entries: []config.PolicyEntry{
				{ID: "p", Src: "permit(principal, action, resource);"},
				{ID: "p", Src: "forbid(principal, action, resource);"},
			},
			wantErr: "not unique",
		},
		{
			name: "Static Entry With Slots",
			entries: []config.PolicyEntry{
				{ID: "p", Src: "permit(principal == ?principal, action, resource);"},
			},
			wantErr: "expected a static policy",
		},
		{
			name: "Template Entry Without Slots",
			entries: []config.PolicyEntry{
				{ID: "p", Template: true, Src: "permit(principal, action, resource);"},
			},
			wantErr: "expected a template",
		},
		{
			name: "Duplicate Link ID",
			entries: []config.PolicyEntry{
				{ID: "tmpl", Template: true, Src: "permit(principal == ?principal, action, resource);"},
			},
			links: []config.LinkEntry{
				{ID: "l", Template: "tmpl", Principal: `App::User::"alice"`},
				{ID: "l", Template: "tmpl", Principal: `App::User::"bob"`},
			},
			wantErr: "not unique",
		},
		{
			name: "Link ID Collides With Policy ID",
			entries: []config.PolicyEntry{
				{ID: "tmpl", Template: true, Src: "permit(principal == ?principal, action, resource);"},
			},
			links: []config.LinkEntry{
				{ID: "tmpl", Template: "tmpl", Principal: `App::User::"alice"`},
			},
			wantErr: "not unique",
		},
		{
			name: "Link To Unknown Template",
			links: []config.LinkEntry{
				{ID: "l", Template: "nope", Principal: `App::User::"alice"`},
			},
			wantErr: "unknown template",
		},
		{
			name: "Link To Static Policy",
			entries: []config.PolicyEntry{
				{ID: "p", Src: "permit(principal, action, resource);"},
			},
			links:   []config.LinkEntry{{ID: "l", Template: "p"}},
			wantErr: "not a template",
		},
		{
			name: "Link With Bad Filler",
			entries: []config.PolicyEntry{
				{ID: "tmpl", Template: true, Src: "permit(principal == ?principal, action, resource);"},
			},
			links:   []config.LinkEntry{{ID: "l", Template: "tmpl", Principal: "not-a-uid"}},
			wantErr: "invalid principal",
		},
		{
			name: "Link With Wrong Filler Set",
			entries: []config.PolicyEntry{
				{ID: "tmpl", Template: true, Src: "permit(principal == ?principal, action, resource);"},
			},
			links:   []config.LinkEntry{{ID: "l", Template: "tmpl", Resource: `App::Doc::"x"`}},
			wantErr: "requires a filler",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ValidatePolicies(frontend, tt.entries, tt.links)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got records %v", tt.wantErr, records)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidatePolicies() error = %v", err)
			}
			if want := len(tt.entries) + len(tt.links); len(records) != want {
				t.Errorf("got %d records, want %d", len(records), want)
			}
			for _, rec := range records {
				if rec.Origin != core.OriginConfig {
					t.Errorf("record %s has origin %q, want config", rec.ID, rec.Origin)
				}
				if rec.Kind == core.KindTemplate && !strings.Contains(rec.Source, "?") {
					t.Errorf("template record %s lost its slots: %s", rec.ID, rec.Source)
				}
				if rec.Kind == core.KindLinked {
					if rec.TemplateID == "" {
						t.Errorf("linked record %s has no template id", rec.ID)
					}
					if strings.Contains(rec.Source, "?") {
						t.Errorf("linked record %s still contains a slot: %s", rec.ID, rec.Source)
					}
				}
			}
		})
	}
}
