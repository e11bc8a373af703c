package manager

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"predictd/internal/registry"
	"predictd/pkg/types"
)

type Manager struct {
	mu         sync.RWMutex
	state      State
	err        string
	registry   []types.ModelDefinition
	instances  map[string]*instance   // by model name
	byDomain   map[string][]*instance // by normalized domain, best model first
	counters   map[string]*counters
	generation uint64

	// Queue config
	maxQueueDepth int
	maxInflight   int
	maxWait       time.Duration

	cache     *resultCache
	publisher EventPublisher
	history   HistoryRecorder
	log       zerolog.Logger
	startTime time.Time

	totalRequests    atomic.Uint64
	totalPredictions atomic.Uint64
	totalErrors      atomic.Uint64
	totalProcNanos   atomic.Uint64
}

// SetRegistry atomically replaces the served model set. Admission state is
// kept for models whose name survives the swap; cached results are dropped.
func (m *Manager) SetRegistry(defs []types.ModelDefinition) {
	reg := append([]types.ModelDefinition(nil), defs...)
	m.mu.Lock()
	instances := make(map[string]*instance, len(reg))
	byDomain := make(map[string][]*instance)
	gen := m.generation + 1
	for _, d := range reg {
		inst := &instance{def: d, domain: registry.NormalizeDomain(d.Domain), gen: gen}
		if old, ok := m.instances[d.Name]; ok {
			inst.queueCh, inst.genCh = old.queueCh, old.genCh
		} else {
			inst.queueCh = make(chan struct{}, m.maxQueueDepth)
			inst.genCh = make(chan struct{}, m.maxInflight)
		}
		instances[d.Name] = inst
		byDomain[inst.domain] = append(byDomain[inst.domain], inst)
		if _, ok := m.counters[d.Name]; !ok {
			m.counters[d.Name] = &counters{}
		}
	}
	for _, list := range byDomain {
		sort.SliceStable(list, func(i, j int) bool { return list[i].def.Accuracy > list[j].def.Accuracy })
	}
	m.registry = reg
	m.instances = instances
	m.byDomain = byDomain
	m.generation = gen
	pub := m.publisher
	if m.state != StateClosed {
		if len(reg) == 0 {
			m.state = StateError
			m.err = "registry is empty"
		} else {
			m.state = StateReady
			m.err = ""
		}
	}
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.purge()
	}
	m.log.Info().Int("models", len(reg)).Uint64("generation", gen).Msg("registry loaded")
	pub.Publish(Event{Name: "registry_reload", Fields: map[string]any{"models": len(reg), "generation": gen}})
}

// SetEventPublisher replaces the event sink. nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

// RecordError stores an out-of-band error (e.g. a failed reload) for /system/stats.
func (m *Manager) RecordError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.err = err.Error()
	m.mu.Unlock()
}

func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && len(m.instances) > 0
}

// ListModels returns descriptors in registry order.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, 0, len(m.registry))
	for _, d := range m.registry {
		out = append(out, d.Descriptor())
	}
	return out
}

// GetModel returns the descriptor of a named model.
func (m *Manager) GetModel(name string) (types.Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[name]
	if !ok {
		return types.Model{}, ErrModelNotFound(name)
	}
	return inst.def.Descriptor(), nil
}

func (m *Manager) events() EventPublisher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.publisher
}

// Uptime reports how long the manager has been running.
func (m *Manager) Uptime() time.Duration { return time.Since(m.startTime) }

// Close stops admitting new predictions. In-flight calls complete normally.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
	return nil
}
