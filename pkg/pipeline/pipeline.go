package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
)

var errClosed = errors.New("pipeline is closed")

// Pipeline wraps one ready inference object behind a uniform text-in/text-out
// call surface. It owns the object (and, when built via FromModelID, the
// loaded artifacts) until Close.
type Pipeline struct {
	task      Task
	obj       InferenceObject
	batchSize int
	log       zerolog.Logger

	// artifacts held only on the FromModelID path
	model     Model
	tokenizer Tokenizer
	closed    bool
}

// FromModelID assembles a pipeline from a model identifier and task using the
// configured runtime. Placement and task are validated before any artifact is
// touched; loading then proceeds tokenizer, model, task pipeline, and a
// failure at any stage releases whatever was already loaded.
func FromModelID(ctx context.Context, cfg Config, opts ...Option) (*Pipeline, error) {
	s := newSettings(opts)
	placement, err := ResolvePlacement(cfg.Device, cfg.DeviceMap)
	if err != nil {
		return nil, err
	}
	task, err := ParseTask(cfg.Task)
	if err != nil {
		return nil, err
	}
	if cfg.ModelID == "" {
		return nil, ErrConfiguration("model id is required")
	}
	batch := cfg.BatchSize
	if s.batchSize > 0 {
		batch = s.batchSize
	}
	if batch < 0 {
		return nil, ErrConfiguration("batch size must be >= 0")
	}
	rt := s.runtime
	log := s.logger.With().Str("model", cfg.ModelID).Str("task", string(task)).Logger()

	log.Debug().Str("runtime", rt.Name()).Msg("loading tokenizer")
	tok, err := rt.LoadTokenizer(ctx, cfg.ModelID)
	if err != nil {
		return nil, loadErr(cfg.ModelID, "tokenizer", err)
	}
	log.Debug().Str("runtime", rt.Name()).Int("device", placement.Device).Str("device_map", placement.DeviceMap).Msg("loading model")
	mdl, err := rt.LoadModel(ctx, cfg.ModelID, placement, cfg.ModelOptions)
	if err != nil {
		_ = tok.Close()
		return nil, loadErr(cfg.ModelID, "model", err)
	}
	obj, err := rt.BuildTaskPipeline(task, mdl, tok, cfg.PipelineOptions)
	if err != nil {
		_ = mdl.Close()
		_ = tok.Close()
		if IsUnsupportedTask(err) {
			return nil, err
		}
		return nil, loadErr(cfg.ModelID, "pipeline", err)
	}
	log.Info().Str("runtime", rt.Name()).Msg("pipeline ready")
	return &Pipeline{task: task, obj: obj, batchSize: batch, log: log, model: mdl, tokenizer: tok}, nil
}

// loadErr classifies a runtime failure: missing-build errors keep their kind,
// everything else becomes a model load error for the failing stage.
func loadErr(modelID, stage string, err error) error {
	if IsRuntimeUnavailable(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrModelLoad(modelID, stage, err)
}

// FromExisting wraps a pre-built inference object. The object must satisfy
// InferenceObject and report a supported task; nothing is loaded and no
// configuration is copied.
func FromExisting(obj any, opts ...Option) (*Pipeline, error) {
	s := newSettings(opts)
	if obj == nil {
		return nil, ErrIncompatibleObject("object is nil")
	}
	inf, ok := obj.(InferenceObject)
	if !ok {
		return nil, ErrIncompatibleObject(fmt.Sprintf("%T does not implement the inference contract", obj))
	}
	task := inf.Task()
	if _, err := ParseTask(string(task)); err != nil {
		return nil, ErrIncompatibleObject("object reports unsupported task " + strconv.Quote(string(task)))
	}
	if s.batchSize < 0 {
		return nil, ErrConfiguration("batch size must be >= 0")
	}
	log := s.logger.With().Str("task", string(task)).Logger()
	return &Pipeline{task: task, obj: inf, batchSize: s.batchSize, log: log}, nil
}

// Task returns the task shape this pipeline serves.
func (p *Pipeline) Task() Task { return p.task }

// BatchSize returns the configured native batch cap (0 means sequential).
func (p *Pipeline) BatchSize() int { return p.batchSize }

// Invoke runs one input through the pipeline and returns the task-shaped
// output text.
func (p *Pipeline) Invoke(ctx context.Context, text string, opts ...CallOption) (string, error) {
	if p.closed {
		return "", ErrInference(errClosed)
	}
	params := applyCallOptions(opts)
	payload, err := p.obj.Run(ctx, text, params)
	if err != nil {
		return "", ErrInference(err)
	}
	return outputText(p.task, text, payload, params.Echo), nil
}

// InvokeBatch runs inputs in order and returns exactly one output per input at
// the same index. Inputs are grouped into BatchSize chunks when the object
// supports native batching; otherwise they run one at a time. Any item failure
// fails the whole call with the failing input's index, and grouping never
// changes results relative to the sequential path.
func (p *Pipeline) InvokeBatch(ctx context.Context, texts []string, opts ...CallOption) ([]string, error) {
	if p.closed {
		return nil, ErrInference(errClosed)
	}
	params := applyCallOptions(opts)
	outs := make([]string, 0, len(texts))
	if len(texts) == 0 {
		return outs, nil
	}
	chunk := p.batchSize
	if chunk < 1 {
		chunk = 1
	}
	bio, native := p.obj.(BatchInferenceObject)
	if !native || chunk == 1 {
		for i, text := range texts {
			payload, err := p.obj.Run(ctx, text, params)
			if err != nil {
				return nil, ErrInferenceAt(i, err)
			}
			outs = append(outs, outputText(p.task, text, payload, params.Echo))
		}
		return outs, nil
	}
	for start := 0; start < len(texts); start += chunk {
		end := start + chunk
		if end > len(texts) {
			end = len(texts)
		}
		group := texts[start:end]
		payloads, err := bio.RunBatch(ctx, group, params)
		if err != nil {
			return nil, ErrInferenceAt(start, err)
		}
		if len(payloads) != len(group) {
			return nil, ErrInferenceAt(start, fmt.Errorf("runtime returned %d payloads for %d inputs", len(payloads), len(group)))
		}
		for i, payload := range payloads {
			outs = append(outs, outputText(p.task, group[i], payload, params.Echo))
		}
	}
	return outs, nil
}

// Close releases the inference object and any artifacts loaded by FromModelID.
// Further invocations fail. Close is idempotent.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var first error
	if c, ok := p.obj.(io.Closer); ok {
		if err := c.Close(); err != nil {
			first = err
		}
	}
	if p.model != nil {
		if err := p.model.Close(); err != nil && first == nil {
			first = err
		}
	}
	if p.tokenizer != nil {
		if err := p.tokenizer.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.log.Debug().Msg("pipeline closed")
	return first
}
