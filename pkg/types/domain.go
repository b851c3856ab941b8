package types

// Model represents a discoverable text model on disk.
type Model struct {
	// Stable identifier for the model.
	ID string `json:"id" example:"tinyllama-q4"`
	// Human-friendly name.
	Name string `json:"name" example:"TinyLlama (Q4)"`
	// Absolute path to the model file on disk.
	Path string `json:"path" example:"/home/user/models/TinyLlama.Q4_K_M.gguf"`
	// Quantization level or variant string.
	Quant string `json:"quant" example:"Q4_K_M"`
	// Model family (llama, mistral, phi, ...), best-effort from the filename.
	Family string `json:"family,omitempty" example:"llama"`
	// Task served when a request does not name one.
	DefaultTask string `json:"default_task,omitempty" example:"text-generation"`
}
