package manager

import (
	"time"

	"textpipe/pkg/pipeline"
)

// Unload initiates a graceful drain of a pipeline instance and removes it.
// An empty task unloads every instance serving the model.
//   - Sets instance state to draining to reject new enqueues.
//   - Waits up to drainTimeout for in-flight and queued requests to finish.
//   - Closes the pipeline and removes the instance entry.
func (m *Manager) Unload(modelID, task string) error {
	if modelID == "" {
		return ErrModelNotFound("(unspecified)")
	}
	var keys []string
	m.mu.RLock()
	if task == "" {
		for k, inst := range m.instances {
			if inst.ModelID == modelID {
				keys = append(keys, k)
			}
		}
	} else {
		k := instanceKey(modelID, pipeline.Task(task))
		if m.instances[k] != nil {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()
	if len(keys) == 0 {
		return ErrModelNotFound(modelID)
	}
	var firstErr error
	for _, k := range keys {
		if err := m.unloadKey(k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) unloadKey(key string) error {
	m.mu.Lock()
	inst := m.instances[key]
	if inst == nil {
		m.mu.Unlock()
		return ErrModelNotFound(key)
	}
	inst.State = StateDraining
	m.mu.Unlock()
	m.publish("unload_start", inst, map[string]any{})

	deadline := time.Now().Add(m.drainTimeout)
	for {
		qlen := len(inst.queueCh)
		inflight := len(inst.genCh)
		if inflight == 0 && qlen == 0 {
			break
		}
		if time.Now().After(deadline) {
			m.publish("unload_timeout", inst, map[string]any{"inflight": inflight, "queue": qlen})
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Take the gen slot so a request that raced past the draining check
	// cannot start against a closing pipeline. On timeout we tear down
	// anyway; the drain deadline is the operator's escape hatch.
	gate := time.NewTimer(200 * time.Millisecond)
	select {
	case inst.genCh <- struct{}{}:
	case <-gate.C:
	}
	gate.Stop()

	m.mu.Lock()
	var pipe *pipeline.Pipeline
	if m.instances[key] == inst {
		m.usedEstMB -= inst.EstMemMB
		if m.usedEstMB < 0 {
			m.usedEstMB = 0
		}
		m.lruMeta[key] = lruRecord{LastUsedUnix: inst.LastUsed.Unix(), EstMemMB: inst.EstMemMB}
		delete(m.instances, key)
		pipe = inst.pipe
	}
	m.mu.Unlock()

	var closeErr error
	if pipe != nil {
		closeErr = pipe.Close()
	}
	m.saveLRUMetadata()
	m.publish("unload_done", inst, map[string]any{})
	m.log.Info().Str("model", inst.ModelID).Str("task", string(inst.Task)).Msg("unloaded instance")
	return closeErr
}
