//go:build llama

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// Defaults applied when corresponding LlamaRuntimeConfig fields are unset.
const (
	defaultLlamaContext = 2048
	fullOffloadLayers   = 999
)

// LlamaRuntimeConfig carries global knobs for the in-process runtime.
// Zero values fall back to defaults; per-model overrides arrive through
// Config.ModelOptions at load time.
type LlamaRuntimeConfig struct {
	// ModelsDir is prepended to relative model ids. Empty means ids are
	// used as filesystem paths verbatim.
	ModelsDir string
	// ContextSize is the default context window in tokens.
	ContextSize int
	// Threads caps generation threads (0 lets the library decide).
	Threads int
}

// LlamaRuntime loads GGUF weights in process through go-llama.cpp.
type LlamaRuntime struct {
	cfg LlamaRuntimeConfig
}

func NewLlamaRuntime(cfg LlamaRuntimeConfig) *LlamaRuntime {
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = defaultLlamaContext
	}
	return &LlamaRuntime{cfg: cfg}
}

// defaultRuntime backs pipelines built without WithRuntime.
func defaultRuntime() ModelRuntime {
	return NewLlamaRuntime(LlamaRuntimeConfig{})
}

func (r *LlamaRuntime) Name() string { return "llama" }

// resolveModelPath maps a model id to a GGUF file. Relative ids resolve under
// ModelsDir; ids without an extension also match "<id>.gguf".
func (r *LlamaRuntime) resolveModelPath(modelID string) (string, error) {
	id := strings.TrimSpace(modelID)
	if id == "" {
		return "", errors.New("model id is empty")
	}
	path := id
	if !filepath.IsAbs(id) && r.cfg.ModelsDir != "" {
		path = filepath.Join(r.cfg.ModelsDir, id)
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if filepath.Ext(path) == "" {
		if _, err := os.Stat(path + ".gguf"); err == nil {
			return path + ".gguf", nil
		}
	}
	return "", fmt.Errorf("model file not found for id %q", modelID)
}

// llamaTokenizer is a handle over the vocabulary embedded in the GGUF file.
// There is nothing to load separately; resolving it verifies the artifact
// exists before the heavier weight load starts.
type llamaTokenizer struct {
	path string
}

func (t *llamaTokenizer) Close() error { return nil }

func (r *LlamaRuntime) LoadTokenizer(ctx context.Context, modelID string) (Tokenizer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.resolveModelPath(modelID)
	if err != nil {
		return nil, err
	}
	return &llamaTokenizer{path: path}, nil
}

// llamaModel owns the loaded weights.
type llamaModel struct {
	id    string
	model *llama.LLama
}

func (m *llamaModel) ID() string { return m.id }

func (m *llamaModel) Close() error {
	if m.model != nil {
		m.model.Free()
		m.model = nil
	}
	return nil
}

func (r *LlamaRuntime) LoadModel(ctx context.Context, modelID string, placement Placement, options map[string]any) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := r.resolveModelPath(modelID)
	if err != nil {
		return nil, err
	}
	mo, err := r.modelOptions(placement, options)
	if err != nil {
		return nil, err
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaModel{id: modelID, model: m}, nil
}

// modelOptions merges placement and per-model load options into go-llama.cpp
// model options. Placement decides GPU offload; option keys can override it.
func (r *LlamaRuntime) modelOptions(placement Placement, options map[string]any) ([]llama.ModelOption, error) {
	ctxSize := r.cfg.ContextSize
	gpuLayers := 0
	mainGPU := ""
	tensorSplit := ""
	nBatch := 0

	switch {
	case placement.DeviceMap == "auto":
		gpuLayers = fullOffloadLayers
	case placement.DeviceMap != "":
		gpuLayers = fullOffloadLayers
		tensorSplit = placement.DeviceMap
	case placement.Device >= 0:
		gpuLayers = fullOffloadLayers
		mainGPU = strconv.Itoa(placement.Device)
	}

	for key, v := range options {
		switch key {
		case "context_size":
			n, ok := asInt(v)
			if !ok {
				return nil, badOption(key, "integer")
			}
			ctxSize = n
		case "gpu_layers":
			n, ok := asInt(v)
			if !ok {
				return nil, badOption(key, "integer")
			}
			gpuLayers = n
		case "main_gpu":
			s, ok := v.(string)
			if !ok {
				return nil, badOption(key, "string")
			}
			mainGPU = s
		case "tensor_split":
			s, ok := v.(string)
			if !ok {
				return nil, badOption(key, "string")
			}
			tensorSplit = s
		case "n_batch":
			n, ok := asInt(v)
			if !ok {
				return nil, badOption(key, "integer")
			}
			nBatch = n
		default:
			return nil, fmt.Errorf("unknown model option %q", key)
		}
	}

	mo := []llama.ModelOption{llama.SetContext(max(1, ctxSize))}
	if gpuLayers > 0 {
		mo = append(mo, llama.SetGPULayers(gpuLayers))
	}
	if mainGPU != "" {
		mo = append(mo, llama.SetMainGPU(mainGPU))
	}
	if tensorSplit != "" {
		mo = append(mo, llama.SetTensorSplit(tensorSplit))
	}
	if nBatch > 0 {
		mo = append(mo, llama.SetNBatch(nBatch))
	}
	return mo, nil
}

func (r *LlamaRuntime) BuildTaskPipeline(task Task, model Model, tokenizer Tokenizer, options map[string]any) (InferenceObject, error) {
	lm, ok := model.(*llamaModel)
	if !ok {
		return nil, fmt.Errorf("model %T was not loaded by this runtime", model)
	}
	if _, ok := tokenizer.(*llamaTokenizer); !ok {
		return nil, fmt.Errorf("tokenizer %T was not loaded by this runtime", tokenizer)
	}
	threads := r.cfg.Threads
	defaults := CallParams{}
	for key, v := range options {
		if key == "threads" {
			n, ok := asInt(v)
			if !ok {
				return nil, badOption(key, "integer")
			}
			threads = n
			continue
		}
		handled, err := setGenerationDefault(&defaults, key, v)
		if err != nil {
			return nil, err
		}
		if !handled {
			return nil, fmt.Errorf("unknown pipeline option %q", key)
		}
	}
	return &llamaObject{task: task, model: lm, threads: threads, defaults: defaults}, nil
}

// llamaObject serves one task over one loaded model. Instruction wrapping for
// summarization or translation prompts is the caller's concern (see the chain
// package); the object feeds inputs to the model verbatim and shapes the raw
// completion into the task's payload field.
type llamaObject struct {
	task     Task
	model    *llamaModel
	threads  int
	defaults CallParams
}

func (o *llamaObject) Task() Task { return o.task }

func (o *llamaObject) Run(ctx context.Context, text string, params CallParams) (Payload, error) {
	if o.model == nil || o.model.model == nil {
		return Payload{}, errors.New("llama model not initialized")
	}
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	merged := mergeCallParams(o.defaults, params)

	// Respect cancellation between tokens.
	o.model.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	po := predictOptions(merged, o.threads)
	out, err := o.model.model.Predict(text, po...)
	if err != nil {
		if ctx.Err() != nil {
			return Payload{}, ctx.Err()
		}
		return Payload{}, err
	}
	// Predict returns the completion only; the prompt is prepended when the
	// caller asked for it so downstream echo handling sees the full text.
	if merged.Echo && o.task == TaskTextGeneration {
		out = text + out
	}
	return taskPayload(o.task, out), nil
}

func (o *llamaObject) Close() error { return nil }

// predictOptions converts merged call params into go-llama.cpp options,
// falling back to library defaults for unset sampling knobs.
func predictOptions(params CallParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(zn(params.MaxNewTokens, defaultMaxNewTokens)),
		llama.SetTopP(zf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(params.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(zf(params.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if threads > 0 {
		po = append(po, llama.SetThreads(threads))
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}
