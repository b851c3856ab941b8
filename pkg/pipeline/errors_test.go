package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorPredicatesDiscriminate(t *testing.T) {
	cases := []struct {
		err  error
		want func(error) bool
		name string
	}{
		{ErrConfiguration("x"), IsConfiguration, "configuration"},
		{ErrModelLoad("m", "model", errors.New("boom")), IsModelLoad, "model load"},
		{ErrUnsupportedTask("x"), IsUnsupportedTask, "unsupported task"},
		{ErrIncompatibleObject("x"), IsIncompatibleObject, "incompatible object"},
		{ErrRuntimeUnavailable("x"), IsRuntimeUnavailable, "runtime unavailable"},
		{ErrInference(errors.New("boom")), IsInference, "inference"},
	}
	preds := []struct {
		fn   func(error) bool
		name string
	}{
		{IsConfiguration, "configuration"},
		{IsModelLoad, "model load"},
		{IsUnsupportedTask, "unsupported task"},
		{IsIncompatibleObject, "incompatible object"},
		{IsRuntimeUnavailable, "runtime unavailable"},
		{IsInference, "inference"},
	}
	for _, c := range cases {
		for _, p := range preds {
			got := p.fn(c.err)
			want := p.name == c.name
			if got != want {
				t.Fatalf("%s(%v) = %v, want %v", p.name, c.err, got, want)
			}
		}
	}
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrUnsupportedTask("chat"))
	if !IsUnsupportedTask(err) {
		t.Fatalf("wrapped unsupported task not detected")
	}
	err = fmt.Errorf("outer: %w", ErrModelLoad("m", "tokenizer", errors.New("gone")))
	if !IsModelLoad(err) {
		t.Fatalf("wrapped model load not detected")
	}
}

func TestModelLoadErrorCarriesStageAndCause(t *testing.T) {
	cause := errors.New("file truncated")
	err := ErrModelLoad("llama-7b", "model", cause)
	if !strings.Contains(err.Error(), "llama-7b") || !strings.Contains(err.Error(), "(model)") {
		t.Fatalf("message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable via Unwrap")
	}
}

func TestInferenceIndex(t *testing.T) {
	if got := InferenceIndex(ErrInference(errors.New("x"))); got != -1 {
		t.Fatalf("single invocation index = %d", got)
	}
	if got := InferenceIndex(ErrInferenceAt(3, errors.New("x"))); got != 3 {
		t.Fatalf("batch index = %d", got)
	}
	if got := InferenceIndex(errors.New("plain")); got != -1 {
		t.Fatalf("non-inference error index = %d", got)
	}
	wrapped := fmt.Errorf("call: %w", ErrInferenceAt(7, errors.New("x")))
	if got := InferenceIndex(wrapped); got != 7 {
		t.Fatalf("wrapped batch index = %d", got)
	}
}

func TestInferenceErrorMessageNamesFailingInput(t *testing.T) {
	err := ErrInferenceAt(2, errors.New("oom"))
	if !strings.Contains(err.Error(), "input 2") {
		t.Fatalf("message %q", err.Error())
	}
	err = ErrInference(errors.New("oom"))
	if strings.Contains(err.Error(), "input") {
		t.Fatalf("single invocation message should not name an index: %q", err.Error())
	}
}
