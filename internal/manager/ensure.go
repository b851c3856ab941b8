package manager

import (
	"context"
	"time"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// resolveTarget maps request-level model/task names onto a registry entry
// and a validated task, applying server defaults for blanks.
func (m *Manager) resolveTarget(modelID, task string) (types.Model, pipeline.Task, error) {
	if modelID == "" {
		modelID = m.defaultModel
	}
	if modelID == "" {
		return types.Model{}, "", modelNotFoundError{id: "(unspecified)"}
	}
	mdl, ok := m.getModelByID(modelID)
	if !ok {
		return types.Model{}, "", modelNotFoundError{id: modelID}
	}
	if task == "" {
		task = mdl.DefaultTask
	}
	if task == "" {
		task = m.defaultTask
	}
	ptask, err := pipeline.ParseTask(task)
	if err != nil {
		return types.Model{}, "", err
	}
	return mdl, ptask, nil
}

// EnsurePipeline returns a ready instance for (model, task), loading it on
// demand. Concurrent callers for the same key share one load.
func (m *Manager) EnsurePipeline(ctx context.Context, modelID, task string) (*Instance, error) {
	mdl, ptask, err := m.resolveTarget(modelID, task)
	if err != nil {
		return nil, err
	}
	key := instanceKey(mdl.ID, ptask)

	// Fast path: already ready
	m.mu.RLock()
	if inst := m.instances[key]; inst != nil && inst.State == StateReady {
		m.mu.RUnlock()
		m.mu.Lock()
		inst.LastUsed = time.Now()
		m.mu.Unlock()
		return inst, nil
	}
	m.mu.RUnlock()

	est := estimateMemMB(mdl)
	if est <= 1 {
		// Unknown size; a record from a previous run beats the floor guess.
		m.mu.RLock()
		if rec, ok := m.lruMeta[key]; ok && rec.EstMemMB > est {
			est = rec.EstMemMB
		}
		m.mu.RUnlock()
	}
	if m.budgetMB > 0 {
		m.evictUntilFits(est)
		m.mu.RLock()
		over := (m.usedEstMB + est + m.marginMB) > m.budgetMB
		m.mu.RUnlock()
		if over {
			// The budget is advisory: load anyway, loudly.
			m.publisher.Publish(Event{Name: "budget_exceeded", ModelID: mdl.ID, Task: string(ptask), Fields: map[string]any{"est_mb": est}})
			m.log.Warn().Str("model", mdl.ID).Str("task", string(ptask)).Int("est_mb", est).Int("budget_mb", m.budgetMB).Msg("loading beyond memory budget")
		}
	}

	// Register a loading placeholder, or join a load already in progress.
	m.mu.Lock()
	if inst := m.instances[key]; inst != nil {
		switch inst.State {
		case StateReady:
			inst.LastUsed = time.Now()
			m.mu.Unlock()
			return inst, nil
		case StateLoading:
			m.mu.Unlock()
			return m.awaitReady(ctx, key, inst)
		default:
			m.mu.Unlock()
			return nil, tooBusyError{key: key}
		}
	}
	inst := &Instance{
		Key:      key,
		ModelID:  mdl.ID,
		Task:     ptask,
		State:    StateLoading,
		LastUsed: time.Now(),
		EstMemMB: est,
		genCh:    make(chan struct{}, 1),
		queueCh:  make(chan struct{}, m.maxQueueDepth),
	}
	m.instances[key] = inst
	m.mu.Unlock()

	m.publish("ensure_start", inst, map[string]any{"est_mb": est})
	m.log.Info().Str("model", mdl.ID).Str("task", string(ptask)).Int("est_mb", est).Msg("loading pipeline")

	cfg := pipeline.Config{
		ModelID:   runtimeModelRef(mdl),
		Task:      string(ptask),
		Device:    m.device,
		DeviceMap: m.deviceMap,
		BatchSize: m.batchSize,
	}
	if m.maxNewTokens > 0 {
		cfg.PipelineOptions = map[string]any{"max_new_tokens": m.maxNewTokens}
	}
	pipe, err := pipeline.FromModelID(ctx, cfg, pipeline.WithRuntime(m.runtime), pipeline.WithLogger(m.log))
	if err != nil {
		m.mu.Lock()
		inst.State = StateError
		inst.loadErr = err
		delete(m.instances, key)
		m.state = StateError
		m.err = err.Error()
		m.lastErr = err.Error()
		m.mu.Unlock()
		m.publish("ensure_error", inst, map[string]any{"error": err.Error()})
		m.log.Error().Err(err).Str("model", mdl.ID).Str("task", string(ptask)).Msg("pipeline load failed")
		return nil, err
	}

	m.mu.Lock()
	inst.pipe = pipe
	inst.State = StateReady
	inst.LastUsed = time.Now()
	m.usedEstMB += est
	m.loadsTotal++
	m.state = StateReady
	m.err = ""
	m.mu.Unlock()

	m.publish("ensure_ready", inst, map[string]any{"est_mb": est})
	m.log.Info().Str("model", mdl.ID).Str("task", string(ptask)).Msg("pipeline ready")
	m.saveLRUMetadata()
	return inst, nil
}

// awaitReady polls a load started by another caller until it settles.
func (m *Manager) awaitReady(ctx context.Context, key string, inst *Instance) (*Instance, error) {
	deadline := time.Now().Add(m.maxWait)
	for {
		m.mu.RLock()
		st := inst.State
		loadErr := inst.loadErr
		m.mu.RUnlock()
		switch st {
		case StateReady:
			return inst, nil
		case StateError:
			return nil, loadErr
		case StateDraining:
			return nil, tooBusyError{key: key}
		}
		if time.Now().After(deadline) {
			return nil, tooBusyError{key: key}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
