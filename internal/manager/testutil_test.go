package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// echoRuntime assembles trivial pipelines without touching model files. The
// objects it builds wrap the input in angle brackets so outputs stay
// distinguishable per input.
type echoRuntime struct {
	mu         sync.Mutex
	loads      int
	loadErr    error
	loadDelay  time.Duration
	runDelay   time.Duration
	lastParams pipeline.CallParams
}

func (r *echoRuntime) Name() string { return "echo" }

func (r *echoRuntime) LoadTokenizer(ctx context.Context, modelID string) (pipeline.Tokenizer, error) {
	return nopTokenizer{}, nil
}

func (r *echoRuntime) LoadModel(ctx context.Context, modelID string, placement pipeline.Placement, options map[string]any) (pipeline.Model, error) {
	if r.loadDelay > 0 {
		select {
		case <-time.After(r.loadDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	r.loads++
	return echoModel{id: modelID}, nil
}

func (r *echoRuntime) BuildTaskPipeline(task pipeline.Task, model pipeline.Model, tok pipeline.Tokenizer, options map[string]any) (pipeline.InferenceObject, error) {
	return &echoObject{task: task, rt: r}, nil
}

func (r *echoRuntime) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

func (r *echoRuntime) params() pipeline.CallParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastParams
}

type nopTokenizer struct{}

func (nopTokenizer) Close() error { return nil }

type echoModel struct{ id string }

func (m echoModel) ID() string   { return m.id }
func (m echoModel) Close() error { return nil }

type echoObject struct {
	task pipeline.Task
	rt   *echoRuntime
}

func (o *echoObject) Task() pipeline.Task { return o.task }

func (o *echoObject) Run(ctx context.Context, text string, params pipeline.CallParams) (pipeline.Payload, error) {
	if o.rt.runDelay > 0 {
		select {
		case <-time.After(o.rt.runDelay):
		case <-ctx.Done():
			return pipeline.Payload{}, ctx.Err()
		}
	}
	o.rt.mu.Lock()
	o.rt.lastParams = params
	o.rt.mu.Unlock()
	out := "<" + text + ">"
	switch o.task {
	case pipeline.TaskSummarization:
		return pipeline.Payload{SummaryText: out}, nil
	case pipeline.TaskTranslation:
		return pipeline.Payload{TranslationText: out}, nil
	default:
		return pipeline.Payload{GeneratedText: out}, nil
	}
}

// writeModelFile creates a model file; sizeMB > 0 pads it so size-based
// memory estimates come out to that many MB.
func writeModelFile(t *testing.T, dir, name string, sizeMB int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := []byte("gguf")
	if sizeMB > 0 {
		data = make([]byte, sizeMB<<20)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	return path
}

// newTestManager builds a manager over two tiny models backed by rt.
func newTestManager(t *testing.T, rt pipeline.ModelRuntime, mutate func(*ManagerConfig)) *Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := ManagerConfig{
		Registry: []types.Model{
			{ID: "alpha", Path: writeModelFile(t, dir, "alpha.gguf", 0)},
			{ID: "beta", Path: writeModelFile(t, dir, "beta.gguf", 0)},
		},
		DefaultModel: "alpha",
		Runtime:      rt,
		Logger:       zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewWithConfig(cfg)
}
