package manager

import (
	"context"
	"time"

	"predictd/internal/history"
	"predictd/pkg/types"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State      State
	Generation uint64
	Models     int
	Err        string
}

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, Generation: m.generation, Models: len(m.registry), Err: m.err}
}

// Stats builds the /system/stats report. History totals are included when a
// recorder is configured; a failing recorder is reported through LastError.
func (m *Manager) Stats(ctx context.Context) types.StatsResponse {
	m.mu.RLock()
	resp := types.StatsResponse{
		State:              string(m.state),
		ModelsLoaded:       len(m.registry),
		RegistryGeneration: m.generation,
		LastError:          m.err,
		Models:             make([]types.ModelStats, 0, len(m.registry)),
	}
	for _, d := range m.registry {
		inst := m.instances[d.Name]
		ms := types.ModelStats{Name: d.Name, Domain: d.Domain}
		if c := m.counters[d.Name]; c != nil {
			ms.Requests = c.requests.Load()
			ms.Predictions = c.predictions.Load()
		}
		if inst != nil {
			ms.QueueLen = len(inst.queueCh)
			ms.Inflight = len(inst.genCh)
		}
		resp.Models = append(resp.Models, ms)
	}
	hist := m.history
	m.mu.RUnlock()

	resp.TotalRequests = m.totalRequests.Load()
	resp.TotalPredictions = m.totalPredictions.Load()
	resp.TotalErrors = m.totalErrors.Load()
	if resp.TotalRequests > 0 {
		resp.AvgProcessingMS = float64(m.totalProcNanos.Load()) / 1e6 / float64(resp.TotalRequests)
	}
	if m.cache != nil {
		resp.CacheHits = m.cache.hits.Load()
		resp.CacheMisses = m.cache.misses.Load()
	}
	if hist != nil {
		if hs, err := hist.Summary(ctx); err != nil {
			resp.LastError = err.Error()
		} else {
			if recent, err := hist.Recent(ctx, recentHistoryLimit); err != nil {
				resp.LastError = err.Error()
			} else {
				hs.Recent = toHistoryEntries(recent)
			}
			resp.History = &hs
		}
	}
	now := time.Now()
	resp.UptimeSeconds = int64(now.Sub(m.startTime).Seconds())
	resp.ServerTimeUnix = now.Unix()
	return resp
}

func toHistoryEntries(in []history.Entry) []types.HistoryEntry {
	out := make([]types.HistoryEntry, 0, len(in))
	for _, e := range in {
		out = append(out, types.HistoryEntry{
			RequestID:    e.RequestID,
			Model:        e.Model,
			Domain:       e.Domain,
			Records:      e.Records,
			ProcessingMS: e.ProcessingMS,
			Success:      e.Success,
			Error:        e.Error,
			Timestamp:    e.CreatedAt.Unix(),
		})
	}
	return out
}
