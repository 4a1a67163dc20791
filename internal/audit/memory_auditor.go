package audit

import (
	"sync"

	"github.com/felixzheng98/cedarlink/internal/core"
)

// MemoryAuditor keeps a bounded ring of audit entries in memory.
// Useful for tests and for deployments without a durable audit log.
type MemoryAuditor struct {
	mu      sync.RWMutex
	entries []core.AuditEntry
	max     int
}

var _ core.Auditor = (*MemoryAuditor)(nil)

const defaultMaxEntries = 10000

func NewMemoryAuditor() *MemoryAuditor {
	return &MemoryAuditor{max: defaultMaxEntries}
}

func (m *MemoryAuditor) Log(entry core.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
	return nil
}

func (m *MemoryAuditor) Find(pred func(core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []core.AuditEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if pred == nil || pred(m.entries[i]) {
			matched = append(matched, m.entries[i])
			if limit > 0 && len(matched) >= limit {
				break
			}
		}
	}
	return matched, nil
}

func (m *MemoryAuditor) Close() error {
	return nil
}
