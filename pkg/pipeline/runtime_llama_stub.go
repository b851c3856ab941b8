//go:build !llama

package pipeline

// This file provides a no-CGO stub for the llama runtime. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real runtime lives in runtime_llama.go (tagged 'llama').

import "context"

// llamaBuilt indicates this binary was compiled without real llama support.
var llamaBuilt = false

const llamaNotBuilt = "llama support not built (missing 'llama' build tag)"

// unavailableRuntime satisfies ModelRuntime but refuses to load anything.
// This avoids any mocked behavior in production binaries built without CGO
// support.
type unavailableRuntime struct{}

// defaultRuntime backs pipelines built without WithRuntime.
func defaultRuntime() ModelRuntime {
	return unavailableRuntime{}
}

func (unavailableRuntime) Name() string { return "llama" }

func (unavailableRuntime) LoadTokenizer(ctx context.Context, modelID string) (Tokenizer, error) {
	// Fail fast: llama runtime not available in this build.
	return nil, ErrRuntimeUnavailable(llamaNotBuilt)
}

func (unavailableRuntime) LoadModel(ctx context.Context, modelID string, placement Placement, options map[string]any) (Model, error) {
	return nil, ErrRuntimeUnavailable(llamaNotBuilt)
}

func (unavailableRuntime) BuildTaskPipeline(task Task, model Model, tokenizer Tokenizer, options map[string]any) (InferenceObject, error) {
	return nil, ErrRuntimeUnavailable(llamaNotBuilt)
}
