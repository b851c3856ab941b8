package manager

import (
	"context"
	"time"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// Generate runs a generation request end to end: resolve the target, ensure
// its pipeline, pass admission, invoke. Batched requests return one output
// per prompt at the same position.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	var resp types.GenerateResponse
	if (req.Prompt == "") == (len(req.Prompts) == 0) {
		return resp, pipeline.ErrConfiguration("exactly one of prompt or prompts must be set")
	}

	inst, err := m.EnsurePipeline(ctx, req.Model, req.Task)
	if err != nil {
		return resp, err
	}
	inst, release, err := m.beginGeneration(ctx, inst.Key)
	if err != nil {
		return resp, err
	}
	defer release()

	opts := callOptionsFromRequest(req)
	start := time.Now()
	if req.Prompt != "" {
		out, err := inst.pipe.Invoke(ctx, req.Prompt, opts...)
		if err != nil {
			return resp, err
		}
		resp.Output = out
		resp.InputCount = 1
	} else {
		outs, err := inst.pipe.InvokeBatch(ctx, req.Prompts, opts...)
		if err != nil {
			return resp, err
		}
		resp.Outputs = outs
		resp.InputCount = len(req.Prompts)
	}
	resp.DurationMs = time.Since(start).Milliseconds()
	resp.Model = inst.ModelID
	resp.Task = string(inst.Task)
	return resp, nil
}

// callOptionsFromRequest translates request fields into per-call options.
// Zero-valued fields are omitted so pipeline defaults apply.
func callOptionsFromRequest(req types.GenerateRequest) []pipeline.CallOption {
	var opts []pipeline.CallOption
	if req.MaxNewTokens > 0 {
		opts = append(opts, pipeline.WithMaxNewTokens(req.MaxNewTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, pipeline.WithTemperature(float32(req.Temperature)))
	}
	if req.TopP > 0 {
		opts = append(opts, pipeline.WithTopP(float32(req.TopP)))
	}
	if req.TopK > 0 {
		opts = append(opts, pipeline.WithTopK(req.TopK))
	}
	if len(req.Stop) > 0 {
		opts = append(opts, pipeline.WithStop(req.Stop...))
	}
	if req.Seed != 0 {
		opts = append(opts, pipeline.WithSeed(int(req.Seed)))
	}
	if req.RepeatPenalty > 0 {
		opts = append(opts, pipeline.WithRepeatPenalty(float32(req.RepeatPenalty)))
	}
	if req.Echo {
		opts = append(opts, pipeline.WithEcho(true))
	}
	return opts
}
