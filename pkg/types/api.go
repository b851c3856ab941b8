package types

// GenerateRequest represents a text generation request payload. Exactly one
// of Prompt or Prompts must be set; Prompts runs an ordered batch.
type GenerateRequest struct {
	// Model identifier. If empty, the server default is used.
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
	// Task identifier. If empty, the model's default task is used.
	Task string `json:"task,omitempty" example:"text-generation"`
	// Prompt text for a single generation.
	Prompt string `json:"prompt,omitempty" example:"Write a haiku about the ocean."`
	// Ordered prompts for a batched generation. The response carries one
	// output per prompt at the same position.
	Prompts []string `json:"prompts,omitempty"`
	// Maximum number of new tokens to generate.
	MaxNewTokens int `json:"max_new_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to the K most likely tokens.
	TopK int `json:"top_k,omitempty" example:"40"`
	// Stop sequences. Generation stops when any sequence is produced.
	Stop []string `json:"stop,omitempty"`
	// Random seed for reproducibility; 0 or omitted lets the runtime choose.
	Seed int64 `json:"seed,omitempty" example:"42"`
	// Repeat penalty applied by llama-family runtimes.
	RepeatPenalty float64 `json:"repeat_penalty,omitempty" example:"1.1"`
	// If true, text-generation output keeps the leading prompt instead of
	// returning only the continuation.
	Echo bool `json:"echo,omitempty" example:"false"`
}

// GenerateResponse is returned by POST /generate. Output is set for single
// prompts, Outputs for batched ones.
type GenerateResponse struct {
	// Model that served the request.
	Model string `json:"model" example:"tinyllama-q4"`
	// Task that shaped the output.
	Task string `json:"task" example:"text-generation"`
	// Generated text for a single prompt.
	Output string `json:"output,omitempty" example:"Salt wind over waves"`
	// Generated texts for a batch, one per prompt, input order.
	Outputs []string `json:"outputs,omitempty"`
	// Number of prompts in the request.
	InputCount int `json:"input_count" example:"1"`
	// Wall-clock generation time in milliseconds.
	DurationMs int64 `json:"duration_ms" example:"412"`
}

// WarmRequest asks the server to load a pipeline ahead of traffic.
type WarmRequest struct {
	// Model identifier to warm. If empty, the server default is used.
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
	// Task to warm the model for. If empty, the model's default task is used.
	Task string `json:"task,omitempty" example:"summarization"`
}

// WarmResponse acknowledges an accepted warm request.
type WarmResponse struct {
	// Identifier of the background load operation.
	Op string `json:"op" example:"op-1"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// TasksResponse wraps the supported task identifiers returned by GET /tasks.
type TasksResponse struct {
	// Supported task identifiers in stable order.
	Tasks []string `json:"tasks"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	Code int `json:"code" example:"400"`
}

// InstanceStatus summarizes a loaded pipeline instance for /status.
type InstanceStatus struct {
	// ID of the model this instance serves.
	ModelID string `json:"model_id" example:"tinyllama-q4"`
	// Task this instance is built for.
	Task string `json:"task" example:"text-generation"`
	// Lifecycle state of the instance (loading, ready, draining, error).
	State string `json:"state" example:"ready"`
	// Last time this instance served a request (unix seconds).
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Estimated memory usage in MB.
	EstMemMB int `json:"est_mem_mb" example:"1200"`
	// Requests waiting for the in-flight slot.
	QueueLen int `json:"queue_len" example:"0"`
	// Requests currently generating (0 or 1).
	Inflight int `json:"inflight" example:"1"`
	// Queue capacity before backpressure triggers.
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loaded/managed pipeline instances.
	Instances []InstanceStatus `json:"instances"`
	// Memory budget in MB across all instances (0 = unlimited).
	BudgetMB int `json:"budget_mb" example:"8192"`
	// Estimated used memory in MB.
	UsedMB int `json:"used_est_mb" example:"2048"`
	// Reserved memory margin in MB.
	MarginMB int `json:"margin_mb" example:"512"`
	// Current error, empty once a later load succeeds.
	Error string `json:"error,omitempty"`
	// Most recent load failure, kept for inspection.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of evictions performed to stay inside the budget.
	EvictionsTotal uint64 `json:"evictions_total" example:"5"`
	// Total number of pipeline loads.
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// Overall manager state (ready or error).
	State string `json:"state" example:"ready"`
	// Number of instances currently loading.
	WarmupsInProgress int `json:"warmups_in_progress" example:"1"`
	// Number of instances currently draining.
	DrainingCount int `json:"draining_count" example:"0"`
	// Name of the model runtime serving pipelines.
	Runtime string `json:"runtime" example:"llama"`
	// Whether this binary carries the in-process llama runtime.
	LlamaBuilt bool `json:"llama_built" example:"true"`
}
