package service

import "sync"

// inflightGuard covers the race window between the persisted running row
// check and the new row's insert completing. It is a best effort dedup for
// rapid duplicate triggers, not a distributed lock.
type inflightGuard struct {
	mu      sync.Mutex
	pending map[string]string
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{pending: make(map[string]string)}
}

// MarkIfAbsent marks the key as in flight for executionId. When the key is
// already marked it returns the pending execution's id and false.
func (g *inflightGuard) MarkIfAbsent(key string, executionId string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pendingId, ok := g.pending[key]; ok {
		return pendingId, false
	}
	g.pending[key] = executionId
	return executionId, true
}

// Clear removes the mark once the insert attempt finished, whether it
// succeeded or failed.
func (g *inflightGuard) Clear(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, key)
}
