package pipeline

import (
	"context"
)

// fakeTokenizer and fakeModel count Close calls so lifecycle tests can assert
// cleanup ordering and idempotency.
type fakeTokenizer struct {
	closed int
}

func (t *fakeTokenizer) Close() error {
	t.closed++
	return nil
}

type fakeModel struct {
	id     string
	closed int
}

func (m *fakeModel) ID() string { return m.id }

func (m *fakeModel) Close() error {
	m.closed++
	return nil
}

// fakeRuntime is an in-memory ModelRuntime. Generation is driven by run; the
// default wraps the input in angle brackets so order tests can tell outputs
// apart without tripping the prompt-echo strip.
type fakeRuntime struct {
	tokErr   error
	modelErr error
	buildErr error

	run   func(text string, params CallParams) (string, error)
	batch bool

	tokCalls   int
	modelCalls int
	buildCalls int

	placement    Placement
	modelOptions map[string]any

	tok *fakeTokenizer
	mdl *fakeModel
	obj *fakeObject
}

func (f *fakeRuntime) Name() string { return "fake" }

func (f *fakeRuntime) LoadTokenizer(ctx context.Context, modelID string) (Tokenizer, error) {
	f.tokCalls++
	if f.tokErr != nil {
		return nil, f.tokErr
	}
	f.tok = &fakeTokenizer{}
	return f.tok, nil
}

func (f *fakeRuntime) LoadModel(ctx context.Context, modelID string, placement Placement, options map[string]any) (Model, error) {
	f.modelCalls++
	f.placement = placement
	f.modelOptions = options
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	f.mdl = &fakeModel{id: modelID}
	return f.mdl, nil
}

func (f *fakeRuntime) BuildTaskPipeline(task Task, model Model, tokenizer Tokenizer, options map[string]any) (InferenceObject, error) {
	f.buildCalls++
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	run := f.run
	if run == nil {
		run = func(text string, _ CallParams) (string, error) { return "<" + text + ">", nil }
	}
	f.obj = &fakeObject{task: task, run: run}
	if f.batch {
		return &fakeBatchObject{fakeObject: f.obj}, nil
	}
	return f.obj, nil
}

// fakeObject runs the configured generation function and records calls.
type fakeObject struct {
	task   Task
	run    func(string, CallParams) (string, error)
	calls  []string
	params []CallParams
	closed int
}

func (o *fakeObject) Task() Task { return o.task }

func (o *fakeObject) Run(ctx context.Context, text string, params CallParams) (Payload, error) {
	o.calls = append(o.calls, text)
	o.params = append(o.params, params)
	out, err := o.run(text, params)
	if err != nil {
		return Payload{}, err
	}
	return taskPayload(o.task, out), nil
}

func (o *fakeObject) Close() error {
	o.closed++
	return nil
}

// fakeBatchObject adds native batching over the same generation function.
type fakeBatchObject struct {
	*fakeObject
	groups   [][]string
	batchErr error
	short    bool
}

func (o *fakeBatchObject) RunBatch(ctx context.Context, texts []string, params CallParams) ([]Payload, error) {
	o.groups = append(o.groups, append([]string(nil), texts...))
	if o.batchErr != nil {
		return nil, o.batchErr
	}
	outs := make([]Payload, 0, len(texts))
	for _, text := range texts {
		out, err := o.run(text, params)
		if err != nil {
			return nil, err
		}
		outs = append(outs, taskPayload(o.task, out))
	}
	if o.short && len(outs) > 0 {
		outs = outs[:len(outs)-1]
	}
	return outs, nil
}

func textGenConfig(model string) Config {
	return Config{ModelID: model, Task: string(TaskTextGeneration)}
}
