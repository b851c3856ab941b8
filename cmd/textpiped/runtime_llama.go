//go:build llama

package main

import "textpipe/pkg/pipeline"

// llamaRuntime returns the in-process llama.cpp runtime.
func llamaRuntime(modelsDir string, contextSize, threads int) pipeline.ModelRuntime {
	return pipeline.NewLlamaRuntime(pipeline.LlamaRuntimeConfig{
		ModelsDir:   modelsDir,
		ContextSize: contextSize,
		Threads:     threads,
	})
}
