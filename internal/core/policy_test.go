package core

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewPolicy(t *testing.T) {
	t.Run("Explicit ID", func(t *testing.T) {
		p, err := NewPolicy("permit(principal, action, resource);", "my-policy")
		if err != nil {
			t.Fatalf("NewPolicy() error = %v", err)
		}
		if p.ID() != "my-policy" {
			t.Errorf("ID() = %q, want %q", p.ID(), "my-policy")
		}
		if p.Source() != "permit(principal, action, resource);" {
			t.Errorf("Source() = %q", p.Source())
		}
	})

	t.Run("Generated ID", func(t *testing.T) {
		p1, err := NewPolicy("permit(principal, action, resource);", "")
		if err != nil {
			t.Fatalf("NewPolicy() error = %v", err)
		}
		p2, err := NewPolicy("forbid(principal, action, resource);", "")
		if err != nil {
			t.Fatalf("NewPolicy() error = %v", err)
		}
		if !strings.HasPrefix(p1.ID(), "policy") {
			t.Errorf("generated id %q missing 'policy' prefix", p1.ID())
		}
		if p1.ID() == p2.ID() {
			t.Errorf("generated ids collide: %q", p1.ID())
		}
	})

	t.Run("Empty Source", func(t *testing.T) {
		if _, err := NewPolicy("", ""); !errors.Is(err, ErrNilSource) {
			t.Errorf("NewPolicy(\"\") error = %v, want ErrNilSource", err)
		}
	})
}

func TestPolicy_String(t *testing.T) {
	p, err := NewPolicy("permit(principal, action, resource);", "p0")
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	want := "// Policy ID: p0\npermit(principal, action, resource);"
	if p.String() != want {
		t.Errorf("String() = %q, want %q", p.String(), want)
	}
}

// Generated ids must stay unique when policies are constructed from many
// goroutines at once.
func TestGeneratePolicyID_Concurrent(t *testing.T) {
	const workers = 16
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				p, err := NewPolicy("permit(principal, action, resource);", "")
				if err != nil {
					t.Errorf("NewPolicy() error = %v", err)
					return
				}
				ids = append(ids, p.ID())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate generated id %q", id)
				}
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d distinct ids, want %d", len(seen), workers*perWorker)
	}
}
