package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

type Manager struct {
	mu           sync.RWMutex
	state        State
	err          string // current error; cleared by the next successful load
	lastErr      string // most recent load failure, sticky for /status
	registry     []types.Model
	budgetMB     int
	marginMB     int
	defaultModel string
	defaultTask  string
	// Live pipelines keyed by modelID + "::" + task
	instances map[string]*Instance
	usedEstMB int

	// Queue config
	maxQueueDepth int
	maxWait       time.Duration
	drainTimeout  time.Duration

	// Pipeline construction
	batchSize    int
	maxNewTokens int
	device       *int
	deviceMap    string
	runtime      pipeline.ModelRuntime

	// Persistence and observability
	statePath string
	lruMeta   map[string]lruRecord
	publisher EventPublisher
	log       zerolog.Logger

	startTime      time.Time
	loadsTotal     uint64
	evictionsTotal uint64
	opSeq          uint64
}

func New(reg []types.Model, budgetMB, marginMB int, defaultModel string) *Manager {
	// Delegate to NewWithConfig to centralize defaults and option parsing
	return NewWithConfig(ManagerConfig{
		Registry:     reg,
		BudgetMB:     budgetMB,
		MarginMB:     marginMB,
		DefaultModel: defaultModel,
	})
}

// Ready reports whether the manager can serve requests. A manager with no
// loaded instances is still ready: the first request loads on demand.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state != StateError
}

func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// Tasks lists the task names the manager accepts.
func (m *Manager) Tasks() []string {
	ts := pipeline.SupportedTasks()
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

// Close drains and unloads every instance. Draining waits up to the drain
// timeout per instance before closing anyway.
func (m *Manager) Close() error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.instances))
	for k := range m.instances {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	var firstErr error
	for _, k := range keys {
		if err := m.unloadKey(k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
