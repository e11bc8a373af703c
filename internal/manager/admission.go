package manager

import (
	"context"
	"time"
)

// beginPrediction reserves a queue slot and then an in-flight slot on inst.
// Returns a release func to be deferred.
func (m *Manager) beginPrediction(ctx context.Context, inst *instance) (func(), error) {
	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}

	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case inst.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{modelID: inst.def.Name}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-inst.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case inst.genCh <- struct{}{}:
		acquired = true
		return func() { <-inst.genCh; <-inst.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{modelID: inst.def.Name}
	}
}
