package manager

import "time"

// evictUntilFits removes LRU idle instances until requiredMB fits inside
// budget minus margin. Instances with queued or in-flight work are skipped;
// the loop gives up after a short deadline rather than waiting for them.
func (m *Manager) evictUntilFits(requiredMB int) {
	deadline := time.Now().Add(1 * time.Second)
	for {
		m.mu.Lock()
		fits := (m.usedEstMB + requiredMB + m.marginMB) <= m.budgetMB
		if fits {
			m.mu.Unlock()
			return
		}
		// Pick LRU idle instance (no in-flight and no queued requests)
		var lru *Instance
		for _, inst := range m.instances {
			if len(inst.genCh) > 0 || len(inst.queueCh) > 0 {
				// active or has queued work; skip
				continue
			}
			if inst.State != StateReady {
				continue
			}
			if lru == nil || inst.LastUsed.Before(lru.LastUsed) {
				lru = inst
			}
		}
		if lru == nil {
			// nothing to evict
			m.mu.Unlock()
			return
		}
		// Take the gen slot without blocking. Holding it guarantees nothing
		// is in flight and blocks late arrivals until they notice the
		// instance is gone.
		select {
		case lru.genCh <- struct{}{}:
		default:
			// A request grabbed the slot between the idle check and now.
			m.mu.Unlock()
			if time.Now().After(deadline) {
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}
		delete(m.instances, lru.Key)
		m.usedEstMB -= lru.EstMemMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
		m.lruMeta[lru.Key] = lruRecord{LastUsedUnix: lru.LastUsed.Unix(), EstMemMB: lru.EstMemMB}
		m.evictionsTotal++
		pipe := lru.pipe
		m.mu.Unlock()

		if pipe != nil {
			if err := pipe.Close(); err != nil {
				m.log.Warn().Err(err).Str("model", lru.ModelID).Str("task", string(lru.Task)).Msg("evicted pipeline close failed")
			}
		}
		m.publish("evict", lru, map[string]any{"freed_mb": lru.EstMemMB})
		m.log.Info().Str("model", lru.ModelID).Str("task", string(lru.Task)).Int("freed_mb", lru.EstMemMB).Msg("evicted instance")
		m.saveLRUMetadata()

		if time.Now().After(deadline) {
			return
		}
		// loop to re-check
	}
}
