// Package pipeline wraps locally loaded text generation models behind one
// uniform callable surface. It is structured into small files by concern:
//
//   - config.go: Config for the FromModelID path and the device field helper.
//   - device.go: placement resolution (device ordinal vs device_map policy).
//   - tasks.go: the closed task set and task-shaped output extraction.
//   - errors.go: error kinds and predicates (IsConfiguration, IsModelLoad, ...).
//   - runtime.go: the ModelRuntime boundary and the objects it assembles.
//   - options.go: construction options and per-call generation options.
//   - options_map.go: decoding of opaque pipeline option maps.
//   - pipeline.go: FromModelID/FromExisting construction and the
//     Invoke/InvokeBatch entry points.
//
// Build tags and runtimes:
//
//   - In-process llama (standard): go-llama.cpp runtime, enabled with
//     `-tags=llama` (runtime_llama.go, llama_cgo.go). Without the tag the
//     default runtime fails fast instead of pretending to generate
//     (runtime_llama_stub.go).
//   - Server attach: runtime_server.go talks to an OpenAI-compatible local
//     server over HTTP and is always compiled in.
//
// A Pipeline holds exactly one inference object and runs one generation at a
// time; it is not safe for concurrent use. Callers that need concurrency hold
// several pipelines or serialize access themselves.
package pipeline
