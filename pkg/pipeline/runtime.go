package pipeline

import "context"

// defaultMaxNewTokens bounds generation when neither the pipeline nor the
// call sets a token budget.
const defaultMaxNewTokens = 128

// LlamaBuilt reports whether this binary carries the in-process llama
// runtime. Binaries built without the 'llama' tag can only attach to a
// server runtime.
func LlamaBuilt() bool { return llamaBuilt }

// DefaultRuntime returns the runtime selected by build tags: the in-process
// llama runtime when built with 'llama', otherwise a stub whose loads fail
// with a runtime-unavailable error.
func DefaultRuntime() ModelRuntime { return defaultRuntime() }

// ModelRuntime supplies model artifacts and assembles runnable task pipelines.
// Implementations own tokenization, weights, and generation internals; the
// adapter never looks inside them.
type ModelRuntime interface {
	// Name identifies the runtime in logs and status output.
	Name() string
	// LoadTokenizer resolves the tokenizer for a model identifier.
	LoadTokenizer(ctx context.Context, modelID string) (Tokenizer, error)
	// LoadModel resolves and initializes the model weights under the given
	// placement. Options are runtime-specific and pass through from Config.
	LoadModel(ctx context.Context, modelID string, placement Placement, options map[string]any) (Model, error)
	// BuildTaskPipeline binds model and tokenizer into a runnable object for
	// the task. Options carry runtime-specific generation defaults.
	BuildTaskPipeline(task Task, model Model, tokenizer Tokenizer, options map[string]any) (InferenceObject, error)
}

// Model is an opaque handle on loaded weights.
type Model interface {
	ID() string
	Close() error
}

// Tokenizer is an opaque handle on the text codec loaded alongside a model.
type Tokenizer interface {
	Close() error
}

// InferenceObject is a ready-to-run task pipeline: one call maps input text to
// a task-shaped payload.
type InferenceObject interface {
	Task() Task
	Run(ctx context.Context, text string, params CallParams) (Payload, error)
}

// BatchInferenceObject is implemented by objects that can run several inputs
// in one device pass. RunBatch must return exactly one payload per input, in
// input order.
type BatchInferenceObject interface {
	InferenceObject
	RunBatch(ctx context.Context, texts []string, params CallParams) ([]Payload, error)
}

// CallParams carries per-call generation overrides. Zero values mean "use the
// pipeline's configured default"; a non-empty Stop replaces the default stop
// set for the one call that carries it.
type CallParams struct {
	MaxNewTokens  int
	Temperature   float32
	TopP          float32
	TopK          int
	Seed          int
	RepeatPenalty float32
	Stop          []string
	Echo          bool
}

// mergeCallParams overlays per-call values onto configured defaults. Zero
// values inherit; Echo is sticky when either side requests it.
func mergeCallParams(defaults, call CallParams) CallParams {
	out := defaults
	if call.MaxNewTokens > 0 {
		out.MaxNewTokens = call.MaxNewTokens
	}
	if call.Temperature > 0 {
		out.Temperature = call.Temperature
	}
	if call.TopP > 0 {
		out.TopP = call.TopP
	}
	if call.TopK > 0 {
		out.TopK = call.TopK
	}
	if call.Seed != 0 {
		out.Seed = call.Seed
	}
	if call.RepeatPenalty > 0 {
		out.RepeatPenalty = call.RepeatPenalty
	}
	if len(call.Stop) > 0 {
		out.Stop = append([]string(nil), call.Stop...)
	}
	if call.Echo {
		out.Echo = true
	}
	return out
}
