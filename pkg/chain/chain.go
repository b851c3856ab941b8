// Package chain sequences a prompt-formatting stage with an inference
// pipeline. The composed object accepts the formatter's input (a mapping of
// named values) and returns the pipeline's output, single or batched, with
// the same per-item ordering guarantees as the pipeline itself.
package chain

import (
	"context"
	"fmt"

	"textpipe/pkg/pipeline"
)

// Invoker is the inference stage of a chain. *pipeline.Pipeline satisfies it.
type Invoker interface {
	Task() pipeline.Task
	Invoke(ctx context.Context, text string, opts ...pipeline.CallOption) (string, error)
	InvokeBatch(ctx context.Context, texts []string, opts ...pipeline.CallOption) ([]string, error)
}

// Formatter renders a mapping of named values into one prompt string. It must
// be pure computation; failures abort the chain call before inference starts.
type Formatter interface {
	Format(values map[string]any) (string, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(values map[string]any) (string, error)

func (f FormatterFunc) Format(values map[string]any) (string, error) { return f(values) }

// Chain is the composed callable. Call options passed to New become chain
// defaults; options passed per call are applied after them and win, and
// neither touches the wrapped invoker.
type Chain struct {
	formatter Formatter
	invoker   Invoker
	defaults  []pipeline.CallOption
}

func New(f Formatter, inv Invoker, defaults ...pipeline.CallOption) (*Chain, error) {
	if f == nil {
		return nil, pipeline.ErrConfiguration("chain needs a formatter")
	}
	if inv == nil {
		return nil, pipeline.ErrConfiguration("chain needs an invoker")
	}
	return &Chain{
		formatter: f,
		invoker:   inv,
		defaults:  append([]pipeline.CallOption(nil), defaults...),
	}, nil
}

// Task returns the wrapped invoker's task shape.
func (c *Chain) Task() pipeline.Task { return c.invoker.Task() }

// Invoke formats values into a prompt and runs it through the pipeline.
// The result is exactly what invoking the pipeline with the formatted string
// would return.
func (c *Chain) Invoke(ctx context.Context, values map[string]any, opts ...pipeline.CallOption) (string, error) {
	prompt, err := c.formatter.Format(values)
	if err != nil {
		return "", fmt.Errorf("format input: %w", err)
	}
	return c.invoker.Invoke(ctx, prompt, c.callOptions(opts)...)
}

// InvokeBatch formats every mapping first, then runs the prompts as one
// ordered batch. A formatting failure names the offending input and stops
// before any inference happens.
func (c *Chain) InvokeBatch(ctx context.Context, values []map[string]any, opts ...pipeline.CallOption) ([]string, error) {
	prompts := make([]string, len(values))
	for i, v := range values {
		prompt, err := c.formatter.Format(v)
		if err != nil {
			return nil, fmt.Errorf("format input %d: %w", i, err)
		}
		prompts[i] = prompt
	}
	return c.invoker.InvokeBatch(ctx, prompts, c.callOptions(opts)...)
}

func (c *Chain) callOptions(call []pipeline.CallOption) []pipeline.CallOption {
	if len(c.defaults) == 0 {
		return call
	}
	merged := make([]pipeline.CallOption, 0, len(c.defaults)+len(call))
	merged = append(merged, c.defaults...)
	merged = append(merged, call...)
	return merged
}
