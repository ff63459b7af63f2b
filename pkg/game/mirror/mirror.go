// Package mirror keeps a read-only copy of the latest session snapshot for
// observers that do not run the rules engine.
package mirror

import (
	"sync"

	"github.com/cbodonnell/settlers/pkg/game/types"
)

type Mirror struct {
	mu     sync.RWMutex
	latest *types.GameSnapshot
}

func New() *Mirror {
	return &Mirror{}
}

// Apply stores s unless it is older than the stored snapshot of the same
// session. It reports whether s was stored.
func (m *Mirror) Apply(s *types.GameSnapshot) bool {
	if s == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest != nil && m.latest.SessionID == s.SessionID && s.Sequence < m.latest.Sequence {
		return false
	}
	m.latest = s
	return true
}

// Latest returns the stored snapshot. Callers must not modify it.
func (m *Mirror) Latest() (*types.GameSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, m.latest != nil
}

// Sequence returns the sequence number of the stored snapshot.
func (m *Mirror) Sequence() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return 0
	}
	return m.latest.Sequence
}
