package pipeline

// Config describes how to assemble a pipeline from a model identifier.
type Config struct {
	// ModelID names the model artifact to load. File-backed runtimes take a
	// path or a name resolved against their models directory; the server
	// runtime takes the identifier the server advertises.
	ModelID string
	// Task selects the output shape; see SupportedTasks.
	Task string
	// Device pins the model to one accelerator ordinal. Nil or CPUDevice
	// selects the CPU. Mutually exclusive with DeviceMap.
	Device *int
	// DeviceMap names a multi-device sharding policy interpreted by the
	// runtime, e.g. "auto". Mutually exclusive with Device.
	DeviceMap string
	// ModelOptions pass through to the runtime's model loader unread.
	ModelOptions map[string]any
	// PipelineOptions pass through to the runtime's task pipeline assembly
	// step unread; generation defaults live here.
	PipelineOptions map[string]any
	// BatchSize caps how many inputs are grouped into one native batch run.
	// Zero behaves as 1 (strictly sequential).
	BatchSize int
}

// DeviceOrdinal is a convenience for populating Config.Device.
func DeviceOrdinal(n int) *int { return &n }
