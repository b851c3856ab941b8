//go:build !llama

package main

import "textpipe/pkg/pipeline"

// llamaRuntime resolves to the build-tag default. Without the llama tag that
// is a stub whose loads fail with a runtime-unavailable error; build with
// -tags=llama for in-process generation.
func llamaRuntime(modelsDir string, contextSize, threads int) pipeline.ModelRuntime {
	return pipeline.DefaultRuntime()
}
