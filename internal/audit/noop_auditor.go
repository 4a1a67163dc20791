package audit

import "github.com/felixzheng98/cedarlink/internal/core"

// NoopAuditor is an auditor that does nothing.
type NoopAuditor struct{}

var _ core.Auditor = (*NoopAuditor)(nil)

func NewNoopAuditor() *NoopAuditor {
	return &NoopAuditor{}
}

func (n *NoopAuditor) Log(core.AuditEntry) error {
	// noop
	return nil
}

func (n *NoopAuditor) Find(func(core.AuditEntry) bool, int) ([]core.AuditEntry, error) {
	// nothing retained
	return nil, nil
}

func (n *NoopAuditor) Close() error {
	// nothing to close
	return nil
}
