package manager

import (
	"encoding/json"
	"os"
)

type lruRecord struct {
	LastUsedUnix int64 `json:"last_used_unix"`
	EstMemMB     int   `json:"est_mem_mb"`
}

// loadLRUMetadata reads persisted recency records keyed by instance key.
// Missing or corrupt files yield an empty map.
func loadLRUMetadata(path string) map[string]lruRecord {
	out := map[string]lruRecord{}
	if path == "" {
		return out
	}
	f, err := os.Open(path)
	if err != nil {
		return out
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	var data map[string]lruRecord
	if err := dec.Decode(&data); err == nil {
		out = data
	}
	return out
}

// saveLRUMetadata persists recency for live instances plus records carried
// over from the previous run, so eviction order survives restarts.
func (m *Manager) saveLRUMetadata() {
	if m.statePath == "" {
		return
	}
	// Snapshot under lock
	m.mu.RLock()
	snap := make(map[string]lruRecord, len(m.instances)+len(m.lruMeta))
	for key, rec := range m.lruMeta {
		snap[key] = rec
	}
	for key, inst := range m.instances {
		snap[key] = lruRecord{LastUsedUnix: inst.LastUsed.Unix(), EstMemMB: inst.EstMemMB}
	}
	m.mu.RUnlock()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(m.statePath, b, 0o644)
}
