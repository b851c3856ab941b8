package manager

import (
	"time"

	"textpipe/pkg/pipeline"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateDraining State = "draining"
	StateError    State = "error"
)

// Instance represents a live pipeline (one per model id + task pair).
type Instance struct {
	Key      string // modelID + "::" + task
	ModelID  string
	Task     pipeline.Task
	State    State
	LastUsed time.Time
	EstMemMB int
	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	// Pipeline backing this instance; nil until loading completes.
	pipe *pipeline.Pipeline
	// loadErr records why loading failed so joined waiters see the cause.
	loadErr error
}
