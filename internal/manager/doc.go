// Package manager coordinates model selection, admission and scoring for the
// prediction service. It is structured into small files by concern:
//
//   - manager.go: core Manager type, registry swap, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, instance, counters).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, IsInvalidRequest).
//   - helpers.go: model resolution by name or domain.
//   - admission.go: per-model queueing and in-flight limits.
//   - cache.go: LRU cache of per-record scoring results.
//   - predict.go: the Predict entry point.
//   - status_report.go: Stats reporting for /system/stats.
//   - events.go, eventpub_memory.go: lifecycle events.
//
// External packages should treat this package as the orchestration layer and use
// public methods only (New/NewWithConfig, Ready, ListModels, Predict, Stats).
package manager
