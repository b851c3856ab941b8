// Package manager provides lifecycle, admission, and inference coordination
// for pipeline instances. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Instance).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound).
//   - helpers.go: small utilities (instance keys, model lookup, memory estimation).
//   - admission.go: per-instance queueing and generation admission.
//   - ensure.go: EnsurePipeline lifecycle and loading.
//   - evict.go: eviction logic to fit within the memory budget.
//   - generate.go: the Generate API entry point.
//   - unload.go: explicit drain-and-unload.
//   - lru_persist.go: last-used metadata persistence across restarts.
//   - ops.go: async operations (Warm).
//   - status_report.go: Status reporting.
//
// Instances are keyed by (model id, task): the same model file loaded for two
// different tasks is two instances with independent queues and budgets. The
// actual loading and inference is delegated to a pipeline.ModelRuntime; the
// manager never touches model files beyond stat calls for size estimation.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (e.g. NewWithConfig, Ready, ListModels, Generate,
// Warm, Status). Internal types are subject to change.
package manager
