package manager

import (
	"sort"
	"time"

	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		BudgetMB:       m.budgetMB,
		UsedMB:         m.usedEstMB,
		MarginMB:       m.marginMB,
		Error:          m.err,
		LastError:      m.lastErr,
		State:          string(m.state),
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		LoadsTotal:     m.loadsTotal,
		EvictionsTotal: m.evictionsTotal,
		Runtime:        m.runtime.Name(),
		LlamaBuilt:     pipeline.LlamaBuilt(),
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(m.instances))
	warmups := 0
	draining := 0
	for _, inst := range m.instances {
		if inst.State == StateLoading {
			warmups++
		}
		if inst.State == StateDraining {
			draining++
		}
		resp.Instances = append(resp.Instances, types.InstanceStatus{
			ModelID:       inst.ModelID,
			Task:          string(inst.Task),
			State:         string(inst.State),
			LastUsed:      inst.LastUsed.Unix(),
			EstMemMB:      inst.EstMemMB,
			QueueLen:      len(inst.queueCh),
			Inflight:      len(inst.genCh),
			MaxQueueDepth: cap(inst.queueCh),
		})
	}
	sort.Slice(resp.Instances, func(i, j int) bool {
		a, b := resp.Instances[i], resp.Instances[j]
		if a.ModelID != b.ModelID {
			return a.ModelID < b.ModelID
		}
		return a.Task < b.Task
	})
	resp.WarmupsInProgress = warmups
	resp.DrainingCount = draining
	return resp
}
