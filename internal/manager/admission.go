package manager

import (
	"context"
	"time"
)

// beginGeneration reserves a queue slot and then the single in-flight slot
// for the instance. Returns the admitted instance and a release func to be
// deferred.
func (m *Manager) beginGeneration(ctx context.Context, key string) (*Instance, func(), error) {
	m.mu.RLock()
	inst := m.instances[key]
	var st State
	if inst != nil {
		st = inst.State
	}
	m.mu.RUnlock()
	if inst == nil {
		return nil, func() {}, modelNotFoundError{id: key}
	}
	// If draining, reject new work to allow graceful shutdown/unload
	if st == StateDraining {
		return nil, func() {}, tooBusyError{key: key}
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return nil, func() {}, err
	}

	// Try to reserve a queue slot with timeout
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case inst.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return nil, func() {}, ctx.Err()
	case <-timer.C:
		return nil, func() {}, tooBusyError{key: key}
	}

	// Wait to acquire the single in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-inst.queueCh
		}
	}()
	// Check for cancellation again before blocking on gen slot
	if err := ctx.Err(); err != nil {
		return nil, func() {}, err
	}
	timer2 := time.NewTimer(m.maxWait)
	defer timer2.Stop()
	select {
	case inst.genCh <- struct{}{}:
		// Eviction may have removed the instance between lookup and
		// acquisition; holding the gen slot makes this check stable.
		m.mu.Lock()
		if m.instances[key] != inst {
			m.mu.Unlock()
			<-inst.genCh
			return nil, func() {}, tooBusyError{key: key}
		}
		acquired = true
		inst.LastUsed = time.Now()
		m.mu.Unlock()
		return inst, func() { <-inst.genCh; <-inst.queueCh }, nil
	case <-ctx.Done():
		return nil, func() {}, ctx.Err()
	case <-timer2.C:
		return nil, func() {}, tooBusyError{key: key}
	}
}
