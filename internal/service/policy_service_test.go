package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/felixzheng98/cedarlink/internal/audit"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/link"
	"github.com/felixzheng98/cedarlink/internal/store"
)

func newTestService() *PolicyService {
	return NewPolicyService(
		link.NewValidator(),
		store.NewInMemoryPolicyStore(),
		audit.NewMemoryAuditor(),
		nil,
	)
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %v is not an HTTPError", err)
	}
	return httpErr.StatusCode
}

func TestPolicyService_Parse(t *testing.T) {
	ctx := context.Background()

	t.Run("Static", func(t *testing.T) {
		s := newTestService()
		resp, err := s.Parse(ctx, ParseRequest{
			Src:     `permit(principal == App::User::"alice", action, resource);`,
			Publish: true,
		})
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if resp.Kind != core.KindStatic {
			t.Errorf("Kind = %v, want static", resp.Kind)
		}
		if !strings.HasPrefix(resp.Policy.ID(), "policy") {
			t.Errorf("generated id = %q", resp.Policy.ID())
		}
		if _, ok := s.store.Get(resp.Policy.ID()); !ok {
			t.Errorf("published policy not in store")
		}
	})

	t.Run("Template Rejected In Static Mode", func(t *testing.T) {
		s := newTestService()
		_, err := s.Parse(ctx, ParseRequest{
			Src: "permit(principal == ?principal, action, resource);",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if got := statusCode(t, err); got != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", got)
		}
		if !strings.Contains(err.Error(), "expected a static policy") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("Duplicate ID Conflict", func(t *testing.T) {
		s := newTestService()
		if _, err := s.Parse(ctx, ParseRequest{
			ID: "p1", Src: "permit(principal, action, resource);", Publish: true,
		}); err != nil {
			t.Fatalf("first Parse() error = %v", err)
		}
		_, err := s.Parse(ctx, ParseRequest{
			ID: "p1", Src: "forbid(principal, action, resource);", Publish: true,
		})
		if err == nil {
			t.Fatal("expected conflict")
		}
		if got := statusCode(t, err); got != http.StatusConflict {
			t.Errorf("status = %d, want 409", got)
		}
	})
}

func TestPolicyService_Link(t *testing.T) {
	ctx := context.Background()

	t.Run("Stored Template", func(t *testing.T) {
		s := newTestService()
		if _, err := s.Parse(ctx, ParseRequest{
			ID:       "tmpl",
			Src:      "permit(principal == ?principal, action, resource in ?resource);",
			Template: true,
			Publish:  true,
		}); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}

		resp, err := s.Link(ctx, LinkRequest{
			TemplateID: "tmpl",
			Principal:  `App::User::"alice"`,
			Resource:   `App::Folder::"docs"`,
			Publish:    true,
		})
		if err != nil {
			t.Fatalf("Link() error = %v", err)
		}
		if strings.Contains(resp.Policy.Source(), "?") {
			t.Errorf("linked source still has slots: %s", resp.Policy.Source())
		}
		rec, ok := s.store.Get(resp.Policy.ID())
		if !ok || rec.Kind != core.KindLinked || rec.TemplateID != "tmpl" {
			t.Errorf("stored record = %+v, %v", rec, ok)
		}
	})

	t.Run("Missing Filler", func(t *testing.T) {
		s := newTestService()
		_, err := s.Link(ctx, LinkRequest{
			Src:       "permit(principal == ?principal, action, resource in ?resource);",
			Principal: `App::User::"alice"`,
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "the template slot ?resource requires a filler, but none was supplied") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("Unknown Template", func(t *testing.T) {
		s := newTestService()
		_, err := s.Link(ctx, LinkRequest{TemplateID: "nope"})
		if err == nil {
			t.Fatal("expected error")
		}
		if got := statusCode(t, err); got != http.StatusNotFound {
			t.Errorf("status = %d, want 404", got)
		}
	})

	t.Run("Bad Filler Text", func(t *testing.T) {
		s := newTestService()
		_, err := s.Link(ctx, LinkRequest{
			Src:       "permit(principal == ?principal, action, resource);",
			Principal: "not-a-uid",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "invalid principal filler") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestPolicyService_ToJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("Inline", func(t *testing.T) {
		s := newTestService()
		resp, err := s.ToJSON(ctx, JSONRequest{Src: "permit(principal, action, resource);"})
		if err != nil {
			t.Fatalf("ToJSON() error = %v", err)
		}
		want := `{"effect":"permit","principal":{"op":"All"},"action":{"op":"All"},"resource":{"op":"All"},"conditions":[]}`
		if resp.JSON != want {
			t.Errorf("JSON = %s, want %s", resp.JSON, want)
		}
	})

	t.Run("Stored Template Refused", func(t *testing.T) {
		s := newTestService()
		if _, err := s.Parse(ctx, ParseRequest{
			ID:       "tmpl",
			Src:      "permit(principal == ?principal, action, resource);",
			Template: true,
			Publish:  true,
		}); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		_, err := s.ToJSON(ctx, JSONRequest{PolicyID: "tmpl"})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "expected a static policy, got a template containing the slot ?principal") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("Unknown Policy", func(t *testing.T) {
		s := newTestService()
		_, err := s.ToJSON(ctx, JSONRequest{PolicyID: "nope"})
		if err == nil {
			t.Fatal("expected error")
		}
		if got := statusCode(t, err); got != http.StatusNotFound {
			t.Errorf("status = %d, want 404", got)
		}
	})
}

func TestPolicyService_ExplainLink_Replay(t *testing.T) {
	ctx := context.WithValue(context.Background(), "correlation_id", "req-1")
	s := newTestService()

	if _, err := s.Parse(ctx, ParseRequest{
		ID:       "tmpl",
		Src:      "permit(principal == ?principal, action, resource);",
		Template: true,
		Publish:  true,
	}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// failed link attempt, recorded in the audit log
	if _, err := s.Link(ctx, LinkRequest{TemplateID: "tmpl"}); err == nil {
		t.Fatal("expected link to fail")
	}

	trace, err := s.ExplainLink(context.Background(), ExplainRequest{ReplayID: "req-1"})
	if err != nil {
		t.Fatalf("ExplainLink() error = %v", err)
	}
	if trace.Linked {
		t.Errorf("trace.Linked = true, want false")
	}
	if trace.TemplateID != "tmpl" || trace.CorrelationID != "req-1" {
		t.Errorf("trace = %+v", trace)
	}
	var principalResult *core.SlotResult
	for i := range trace.SlotResults {
		if trace.SlotResults[i].Slot == "?principal" {
			principalResult = &trace.SlotResults[i]
		}
	}
	if principalResult == nil || principalResult.OK || !principalResult.InTemplate {
		t.Errorf("principal slot result = %+v", principalResult)
	}
}

func TestPolicyService_SyncSource_NotConfigured(t *testing.T) {
	s := newTestService()
	_, err := s.SyncSource(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := statusCode(t, err); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}
