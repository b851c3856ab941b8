package pipeline

// CPUDevice is the device ordinal meaning "run on CPU".
const CPUDevice = -1

// Placement is the resolved device assignment for a model. Either Device names
// a single accelerator ordinal (CPUDevice for CPU) or DeviceMap names a
// sharding policy interpreted by the runtime (e.g. "auto").
type Placement struct {
	Device    int
	DeviceMap string
}

// OnCPU reports whether the placement pins the model to the CPU.
func (p Placement) OnCPU() bool { return p.DeviceMap == "" && p.Device == CPUDevice }

// ResolvePlacement turns the (device, deviceMap) configuration pair into a
// Placement. Setting both is a configuration error: they express conflicting
// ownership of the same decision. Setting neither selects the CPU.
func ResolvePlacement(device *int, deviceMap string) (Placement, error) {
	if device != nil && deviceMap != "" {
		return Placement{}, ErrConfiguration("device and device_map are mutually exclusive; set at most one")
	}
	if deviceMap != "" {
		return Placement{Device: CPUDevice, DeviceMap: deviceMap}, nil
	}
	if device == nil {
		return Placement{Device: CPUDevice}, nil
	}
	if *device < CPUDevice {
		return Placement{}, ErrConfiguration("device must be -1 (CPU) or a non-negative accelerator ordinal")
	}
	return Placement{Device: *device}, nil
}
