package manager

import (
	"strings"

	"predictd/internal/registry"
)

// resolve picks the instance serving a request: the named model when given
// (its domain must agree with a non-empty requested domain), otherwise the
// most accurate model registered for the domain.
func (m *Manager) resolve(domain, modelName string) (*instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == StateClosed {
		return nil, ErrDependencyUnavailable("service is shutting down")
	}
	want := registry.NormalizeDomain(domain)
	if name := strings.TrimSpace(modelName); name != "" {
		inst, ok := m.instances[name]
		if !ok {
			return nil, ErrModelNotFound(name)
		}
		if want != "" && inst.domain != want {
			return nil, errInvalid("model %s serves domain %q, not %q", name, inst.def.Domain, strings.TrimSpace(domain))
		}
		return inst, nil
	}
	list := m.byDomain[want]
	if len(list) == 0 {
		return nil, ErrNoModelForDomain(strings.TrimSpace(domain))
	}
	return list[0], nil
}

func (m *Manager) countersFor(name string) *counters {
	m.mu.RLock()
	c := m.counters[name]
	m.mu.RUnlock()
	if c != nil {
		return c
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c = m.counters[name]; c == nil {
		c = &counters{}
		m.counters[name] = c
	}
	return c
}
