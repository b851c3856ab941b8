package manager

import (
	"context"
	"testing"
	"time"

	"textpipe/pkg/types"
)

func TestUnloadRemovesInstanceAndAccounting(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, func(cfg *ManagerConfig) {
		cfg.DrainTimeout = 200 * time.Millisecond
	})
	ensureReady(t, m, "alpha", "")

	if err := m.Unload("alpha", "text-generation"); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	m.mu.RLock()
	_, exists := m.instances["alpha::text-generation"]
	used := m.usedEstMB
	m.mu.RUnlock()
	if exists {
		t.Fatalf("instance still registered after unload")
	}
	if used != 0 {
		t.Fatalf("usedEstMB = %d, want 0", used)
	}
}

func TestUnloadUnknownModel(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	if err := m.Unload("ghost", ""); !IsModelNotFound(err) {
		t.Fatalf("expected model not found, got %v", err)
	}
	if err := m.Unload("", ""); !IsModelNotFound(err) {
		t.Fatalf("empty id: %v", err)
	}
}

func TestUnloadEmptyTaskDropsAllTasks(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	ensureReady(t, m, "alpha", "text-generation")
	ensureReady(t, m, "alpha", "summarization")
	ensureReady(t, m, "beta", "text-generation")

	if err := m.Unload("alpha", ""); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.instances) != 1 {
		t.Fatalf("instances = %d, want only beta left", len(m.instances))
	}
	if _, ok := m.instances["beta::text-generation"]; !ok {
		t.Fatalf("beta instance missing")
	}
}

func TestUnloadSpecificTaskKeepsOthers(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	ensureReady(t, m, "alpha", "text-generation")
	ensureReady(t, m, "alpha", "summarization")

	if err := m.Unload("alpha", "summarization"); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	m.mu.RLock()
	_, gen := m.instances["alpha::text-generation"]
	_, sum := m.instances["alpha::summarization"]
	m.mu.RUnlock()
	if !gen || sum {
		t.Fatalf("gen=%v sum=%v, want only summarization gone", gen, sum)
	}
}

func TestUnloadWaitsForInflightWork(t *testing.T) {
	rt := &echoRuntime{runDelay: 60 * time.Millisecond}
	m := newTestManager(t, rt, func(cfg *ManagerConfig) {
		cfg.DrainTimeout = time.Second
	})
	ensureReady(t, m, "alpha", "")

	done := make(chan error, 1)
	go func() {
		_, err := m.Generate(context.Background(), types.GenerateRequest{Prompt: "slow"})
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)

	if err := m.Unload("alpha", ""); err != nil {
		t.Fatalf("Unload: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("in-flight generation failed during drain: %v", err)
	}
}

func TestCloseUnloadsEverything(t *testing.T) {
	m := newTestManager(t, &echoRuntime{}, nil)
	ensureReady(t, m, "alpha", "")
	ensureReady(t, m, "beta", "")

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	m.mu.RLock()
	n := len(m.instances)
	used := m.usedEstMB
	m.mu.RUnlock()
	if n != 0 {
		t.Fatalf("instances left after close: %d", n)
	}
	if used != 0 {
		t.Fatalf("usedEstMB = %d, want 0", used)
	}
}
