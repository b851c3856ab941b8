package manager

import (
	"time"

	"github.com/rs/zerolog"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 10 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry     []types.Model
	BudgetMB     int
	MarginMB     int
	DefaultModel string
	// DefaultTask is served when neither the request nor the model names one.
	DefaultTask   string
	MaxQueueDepth int
	MaxWait       time.Duration
	// DrainTimeout bounds how long Unload waits for in-flight work.
	DrainTimeout time.Duration
	// Pipeline construction knobs applied to every instance.
	BatchSize    int
	MaxNewTokens int
	Device       *int
	DeviceMap    string
	// Runtime loads models and builds task objects. Nil selects the
	// build-tag default.
	Runtime pipeline.ModelRuntime
	// StatePath persists last-used metadata (JSON). Empty disables it.
	StatePath string
	// Publisher receives lifecycle events. Nil discards them.
	Publisher EventPublisher
	Logger    zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:        StateReady,
		registry:     cfg.Registry,
		budgetMB:     cfg.BudgetMB,
		marginMB:     cfg.MarginMB,
		defaultModel: cfg.DefaultModel,
		defaultTask:  cfg.DefaultTask,
		batchSize:    cfg.BatchSize,
		maxNewTokens: cfg.MaxNewTokens,
		device:       cfg.Device,
		deviceMap:    cfg.DeviceMap,
		runtime:      cfg.Runtime,
		statePath:    cfg.StatePath,
		publisher:    cfg.Publisher,
		log:          cfg.Logger,
		instances:    make(map[string]*Instance),
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	if m.runtime == nil {
		m.runtime = pipeline.DefaultRuntime()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.defaultTask == "" {
		m.defaultTask = string(pipeline.TaskTextGeneration)
	}
	m.lruMeta = loadLRUMetadata(m.statePath)
	m.startTime = time.Now()
	return m
}
