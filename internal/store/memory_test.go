package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/felixzheng98/cedarlink/internal/core"
)

func rec(id string, kind core.PolicyKind) core.PolicyRecord {
	return core.PolicyRecord{
		ID:     id,
		Source: "permit(principal, action, resource);",
		Kind:   kind,
		Origin: core.OriginAPI,
	}
}

func srcRec(id string) core.PolicyRecord {
	r := rec(id, core.KindStatic)
	r.Origin = core.OriginSource
	return r
}

func TestInMemoryPolicyStore_PutGetList(t *testing.T) {
	s := NewInMemoryPolicyStore()

	if err := s.Put(rec("a", core.KindStatic)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(rec("b", core.KindTemplate)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(core.PolicyRecord{}); err == nil {
		t.Errorf("Put() with empty id should fail")
	}

	got, ok := s.Get("a")
	if !ok || got.Kind != core.KindStatic {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Errorf("Get(missing) found a record")
	}

	list := s.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("List() = %v, want insertion order a,b", list)
	}

	// overwriting keeps position
	if err := s.Put(rec("a", core.KindLinked)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	list = s.List()
	if len(list) != 2 || list[0].ID != "a" || list[0].Kind != core.KindLinked {
		t.Errorf("List() after overwrite = %v", list)
	}
}

func TestInMemoryPolicyStore_Remove(t *testing.T) {
	s := NewInMemoryPolicyStore()
	_ = s.Put(rec("a", core.KindStatic))

	if !s.Remove("a") {
		t.Errorf("Remove(a) = false")
	}
	if s.Remove("a") {
		t.Errorf("Remove(a) twice = true")
	}
	if len(s.List()) != 0 {
		t.Errorf("List() not empty after remove")
	}
}

func TestInMemoryPolicyStore_ReplaceOrigin(t *testing.T) {
	s := NewInMemoryPolicyStore()
	_ = s.Put(rec("manual", core.KindStatic))
	_ = s.Put(srcRec("synced-1"))
	_ = s.Put(srcRec("synced-2"))

	s.ReplaceOrigin(core.OriginSource, []core.PolicyRecord{srcRec("synced-3")})

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("List() = %v, want manual + synced-3", list)
	}
	if list[0].ID != "manual" || list[1].ID != "synced-3" {
		t.Errorf("List() = %v", list)
	}
}

func TestInMemoryPolicyStore_Concurrent(t *testing.T) {
	s := NewInMemoryPolicyStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("p-%d-%d", w, i)
				if err := s.Put(rec(id, core.KindStatic)); err != nil {
					t.Errorf("Put(%s) error = %v", id, err)
				}
				s.Get(id)
				s.List()
			}
		}(w)
	}
	wg.Wait()

	if got := len(s.List()); got != 800 {
		t.Errorf("List() has %d records, want 800", got)
	}
}
