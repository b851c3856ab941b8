package manager

import (
	"textpipe/internal/common/fsutil"
	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// instanceKey names the instance serving one (model, task) pair.
func instanceKey(modelID string, task pipeline.Task) string {
	return modelID + "::" + string(task)
}

// Helper: find model in registry by id.
func (m *Manager) getModelByID(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// runtimeModelRef is the identifier handed to the runtime: the absolute file
// path for disk-backed registries, the bare id for server-side models.
func runtimeModelRef(mdl types.Model) string {
	if mdl.Path != "" {
		return mdl.Path
	}
	return mdl.ID
}

// Helper: estimate resident memory based on file size (MB).
func estimateMemMB(mdl types.Model) int {
	if mdl.Path == "" {
		// Server-side models occupy no local memory worth budgeting.
		return 1
	}
	mb, ok := fsutil.FileSizeMB(mdl.Path)
	if !ok || mb <= 0 {
		// An unstat-able file still participates in budget checks.
		return 1
	}
	return mb
}
