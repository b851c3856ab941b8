package manager

import (
	"context"
	"sync"
	"testing"
	"time"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

func ensureReady(t *testing.T, m *Manager, modelID, task string) *Instance {
	t.Helper()
	inst, err := m.EnsurePipeline(context.Background(), modelID, task)
	if err != nil {
		t.Fatalf("EnsurePipeline: %v", err)
	}
	return inst
}

func TestBeginGenerationQueueTimeout(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, func(cfg *ManagerConfig) {
		cfg.MaxQueueDepth = 1
		cfg.MaxWait = 20 * time.Millisecond
	})
	inst := ensureReady(t, m, "alpha", "")
	// First acquire occupies both the queue and gen slots
	_, rel, err := m.beginGeneration(context.Background(), inst.Key)
	if err != nil {
		t.Fatalf("beginGeneration first: %v", err)
	}
	defer rel()
	// Second should time out on the queue slot (depth=1)
	_, _, err = m.beginGeneration(context.Background(), inst.Key)
	if !IsTooBusy(err) {
		t.Fatalf("expected tooBusyError, got %v", err)
	}
}

func TestBeginGenerationGenTimeout(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, func(cfg *ManagerConfig) {
		cfg.MaxQueueDepth = 2
		cfg.MaxWait = 20 * time.Millisecond
	})
	inst := ensureReady(t, m, "alpha", "")
	// Occupy genCh so acquisitions block at the gen stage
	inst.genCh <- struct{}{}
	defer func() { <-inst.genCh }()
	_, _, err := m.beginGeneration(context.Background(), inst.Key)
	if !IsTooBusy(err) {
		t.Fatalf("expected tooBusyError on gen wait, got %v", err)
	}
}

func TestBeginGenerationRejectsDraining(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	inst := ensureReady(t, m, "alpha", "")
	m.mu.Lock()
	inst.State = StateDraining
	m.mu.Unlock()
	_, _, err := m.beginGeneration(context.Background(), inst.Key)
	if !IsTooBusy(err) {
		t.Fatalf("expected tooBusyError while draining, got %v", err)
	}
}

func TestBeginGenerationUnknownKey(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	_, _, err := m.beginGeneration(context.Background(), instanceKey("ghost", pipeline.TaskTextGeneration))
	if !IsModelNotFound(err) {
		t.Fatalf("expected model not found, got %v", err)
	}
}

func TestBeginGenerationHonorsContext(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	inst := ensureReady(t, m, "alpha", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := m.beginGeneration(ctx, inst.Key)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateBackpressure(t *testing.T) {
	rt := &echoRuntime{runDelay: 150 * time.Millisecond}
	m := newTestManager(t, rt, func(cfg *ManagerConfig) {
		cfg.MaxQueueDepth = 1
		cfg.MaxWait = 10 * time.Millisecond
	})
	ensureReady(t, m, "alpha", "")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Generate(context.Background(), types.GenerateRequest{Prompt: "slow"})
	}()
	// Let the slow request take the gen slot.
	time.Sleep(30 * time.Millisecond)

	_, err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "fast"})
	if !IsTooBusy(err) {
		t.Fatalf("expected tooBusyError, got %v", err)
	}
	wg.Wait()
}

func TestGenerateQueuedRequestsAllComplete(t *testing.T) {
	rt := &echoRuntime{runDelay: 10 * time.Millisecond}
	m := newTestManager(t, rt, func(cfg *ManagerConfig) {
		cfg.MaxQueueDepth = 8
	})
	ensureReady(t, m, "alpha", "")

	var wg sync.WaitGroup
	outs := make([]string, 4)
	errs := make([]error, 4)
	prompts := []string{"a", "b", "c", "d"}
	for i, p := range prompts {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			resp, err := m.Generate(context.Background(), types.GenerateRequest{Prompt: p})
			outs[i], errs[i] = resp.Output, err
		}(i, p)
	}
	wg.Wait()
	for i := range prompts {
		if errs[i] != nil {
			t.Fatalf("generate %q: %v", prompts[i], errs[i])
		}
		if outs[i] != "<"+prompts[i]+">" {
			t.Fatalf("output %d = %q", i, outs[i])
		}
	}
}
