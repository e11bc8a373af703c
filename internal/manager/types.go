package manager

import (
	"sync/atomic"

	"predictd/pkg/types"
)

// State represents the lifecycle state of the manager.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
	StateClosed  State = "closed"
)

// instance is the servable form of one model definition.
type instance struct {
	def    types.ModelDefinition
	domain string // normalized
	gen    uint64 // registry generation the instance was built for
	// Queueing primitives
	queueCh chan struct{} // buffered: queue slots
	genCh   chan struct{} // buffered: in-flight scoring slots
}

// counters survive registry reloads; they are keyed by model name.
type counters struct {
	requests    atomic.Uint64
	predictions atomic.Uint64
}
