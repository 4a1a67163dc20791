package store

import (
	"fmt"
	"sync"

	"github.com/felixzheng98/cedarlink/internal/core"
)

// InMemoryPolicyStore is the default policy registry. It is safe for
// concurrent use; records are stored by id and listed in insertion order.
type InMemoryPolicyStore struct {
	mu      sync.RWMutex
	records map[string]core.PolicyRecord
	order   []string
}

var _ core.PolicyStore = (*InMemoryPolicyStore)(nil)

func NewInMemoryPolicyStore() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{
		records: make(map[string]core.PolicyRecord),
	}
}

func (s *InMemoryPolicyStore) Put(record core.PolicyRecord) error {
	if record.ID == "" {
		return fmt.Errorf("policy record has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record
	return nil
}

func (s *InMemoryPolicyStore) Get(id string) (core.PolicyRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	return rec, ok
}

func (s *InMemoryPolicyStore) List() []core.PolicyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.PolicyRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

func (s *InMemoryPolicyStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// ReplaceOrigin swaps every record of the given origin for the supplied
// set, leaving records from other origins untouched. Used by the
// policy-sync task so a source refresh never drops manually registered
// policies.
func (s *InMemoryPolicyStore) ReplaceOrigin(origin string, records []core.PolicyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []string
	for _, id := range s.order {
		if s.records[id].Origin == origin {
			delete(s.records, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, exists := s.records[rec.ID]; !exists {
			s.order = append(s.order, rec.ID)
		}
		s.records[rec.ID] = rec
	}
}
