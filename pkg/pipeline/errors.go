package pipeline

import (
	"errors"
	"strconv"
)

// configurationError signals an invalid or contradictory Config.
type configurationError struct{ msg string }

func (e configurationError) Error() string { return "pipeline configuration: " + e.msg }

// ErrConfiguration constructs a configuration error.
func ErrConfiguration(msg string) error { return configurationError{msg: msg} }

// IsConfiguration reports whether err indicates an invalid configuration.
func IsConfiguration(err error) bool {
	var t configurationError
	return errors.As(err, &t)
}

// modelLoadError signals a failure while fetching or initializing model
// artifacts. Stage names the step that failed: tokenizer, model, or pipeline.
type modelLoadError struct {
	modelID string
	stage   string
	err     error
}

func (e modelLoadError) Error() string {
	return "load model " + e.modelID + " (" + e.stage + "): " + e.err.Error()
}

func (e modelLoadError) Unwrap() error { return e.err }

// ErrModelLoad constructs a model load error for the given stage.
func ErrModelLoad(modelID, stage string, err error) error {
	return modelLoadError{modelID: modelID, stage: stage, err: err}
}

// IsModelLoad reports whether err indicates a failed artifact load.
func IsModelLoad(err error) bool {
	var t modelLoadError
	return errors.As(err, &t)
}

// unsupportedTaskError signals a task outside the supported set.
type unsupportedTaskError struct{ task string }

func (e unsupportedTaskError) Error() string { return "unsupported task: " + strconv.Quote(e.task) }

// ErrUnsupportedTask constructs an unsupported task error.
func ErrUnsupportedTask(task string) error { return unsupportedTaskError{task: task} }

// IsUnsupportedTask reports whether err indicates a task outside the supported set.
func IsUnsupportedTask(err error) bool {
	var t unsupportedTaskError
	return errors.As(err, &t)
}

// incompatibleObjectError signals a pre-built object rejected by FromExisting.
type incompatibleObjectError struct{ reason string }

func (e incompatibleObjectError) Error() string { return "incompatible pipeline object: " + e.reason }

// ErrIncompatibleObject constructs an incompatible object error.
func ErrIncompatibleObject(reason string) error { return incompatibleObjectError{reason: reason} }

// IsIncompatibleObject reports whether err indicates an object FromExisting cannot wrap.
func IsIncompatibleObject(err error) bool {
	var t incompatibleObjectError
	return errors.As(err, &t)
}

// runtimeUnavailableError signals that the selected model runtime is missing
// from this build, so callers can fail fast (the HTTP layer maps it to 503).
type runtimeUnavailableError struct{ msg string }

func (e runtimeUnavailableError) Error() string { return e.msg }

// ErrRuntimeUnavailable constructs a runtime unavailable error.
func ErrRuntimeUnavailable(msg string) error { return runtimeUnavailableError{msg: msg} }

// IsRuntimeUnavailable reports whether err indicates a missing runtime build.
func IsRuntimeUnavailable(err error) bool {
	var t runtimeUnavailableError
	return errors.As(err, &t)
}

// inferenceError is a Run failure surfaced through Invoke or InvokeBatch.
// index is the position of the failing input, or -1 for single invocations.
type inferenceError struct {
	index int
	err   error
}

func (e inferenceError) Error() string {
	if e.index >= 0 {
		return "inference failed at input " + strconv.Itoa(e.index) + ": " + e.err.Error()
	}
	return "inference failed: " + e.err.Error()
}

func (e inferenceError) Unwrap() error { return e.err }

// ErrInference wraps a single-invocation failure.
func ErrInference(err error) error { return inferenceError{index: -1, err: err} }

// ErrInferenceAt wraps a batch failure with the failing input's index.
func ErrInferenceAt(index int, err error) error { return inferenceError{index: index, err: err} }

// IsInference reports whether err is an inference failure.
func IsInference(err error) bool {
	var t inferenceError
	return errors.As(err, &t)
}

// InferenceIndex returns the failing batch index carried by err, or -1 when
// err is not an inference error or came from a single invocation.
func InferenceIndex(err error) int {
	var t inferenceError
	if errors.As(err, &t) {
		return t.index
	}
	return -1
}
