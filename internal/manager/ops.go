package manager

import (
	"context"
	"strconv"
	"sync/atomic"
)

// Warm kicks off an async pipeline load and returns an operation ID.
// The load runs in the background; callers can poll Status() to observe
// state transitions. Unknown models or tasks fail synchronously.
func (m *Manager) Warm(ctx context.Context, modelID, task string) (string, error) {
	if _, _, err := m.resolveTarget(modelID, task); err != nil {
		return "", err
	}
	op := m.nextOpID()
	go func() {
		// Detached context: the warmup outlives the request that asked for it.
		_, _ = m.EnsurePipeline(context.Background(), modelID, task)
	}()
	return op, nil
}

func (m *Manager) nextOpID() string {
	n := atomic.AddUint64(&m.opSeq, 1)
	return "op-" + strconv.FormatUint(n, 10)
}
