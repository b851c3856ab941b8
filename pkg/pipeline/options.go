package pipeline

import "github.com/rs/zerolog"

// Option configures pipeline construction.
type Option func(*settings)

type settings struct {
	runtime   ModelRuntime
	logger    zerolog.Logger
	batchSize int
}

func newSettings(opts []Option) settings {
	s := settings{runtime: defaultRuntime(), logger: zerolog.Nop()}
	for _, o := range opts {
		if o != nil {
			o(&s)
		}
	}
	return s
}

// WithRuntime selects the model runtime used to load artifacts and assemble
// the task pipeline. Defaults to the in-process llama runtime.
func WithRuntime(rt ModelRuntime) Option {
	return func(s *settings) {
		if rt != nil {
			s.runtime = rt
		}
	}
}

// WithLogger installs a structured logger. Defaults to a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithBatchSize overrides the batch size, which FromExisting has no Config to
// carry.
func WithBatchSize(n int) Option {
	return func(s *settings) { s.batchSize = n }
}

// CallOption adjusts generation parameters for a single invocation. Options
// never touch the pipeline's configuration; the override lives and dies with
// the one call that carries it.
type CallOption func(*CallParams)

func applyCallOptions(opts []CallOption) CallParams {
	var p CallParams
	for _, o := range opts {
		if o != nil {
			o(&p)
		}
	}
	return p
}

// WithMaxNewTokens caps the number of generated tokens for this call.
func WithMaxNewTokens(n int) CallOption { return func(p *CallParams) { p.MaxNewTokens = n } }

func WithTemperature(t float32) CallOption { return func(p *CallParams) { p.Temperature = t } }

func WithTopP(v float32) CallOption { return func(p *CallParams) { p.TopP = v } }

func WithTopK(k int) CallOption { return func(p *CallParams) { p.TopK = k } }

func WithSeed(seed int) CallOption { return func(p *CallParams) { p.Seed = seed } }

func WithRepeatPenalty(v float32) CallOption { return func(p *CallParams) { p.RepeatPenalty = v } }

// WithStop sets the stop sequences for this call only. The slice is copied so
// later caller mutation cannot leak into the run.
func WithStop(stop ...string) CallOption {
	return func(p *CallParams) { p.Stop = append([]string(nil), stop...) }
}

// WithEcho controls whether text-generation output keeps the leading prompt.
func WithEcho(echo bool) CallOption { return func(p *CallParams) { p.Echo = echo } }
