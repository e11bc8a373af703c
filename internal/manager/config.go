package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"predictd/internal/history"
	"predictd/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 64
	defaultMaxInflight   = 4
	defaultMaxWait       = 10 * time.Second
	defaultCacheSize     = 4096
	recentHistoryLimit   = 10
)

// HistoryRecorder persists prediction calls. *history.Store satisfies it.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) error
	Summary(ctx context.Context) (types.HistoryStats, error)
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry      []types.ModelDefinition
	MaxQueueDepth int
	MaxInflight   int
	MaxWait       time.Duration
	// CacheSize bounds the per-record result cache. Negative disables caching;
	// zero selects the default.
	CacheSize int
	Publisher EventPublisher
	History   HistoryRecorder
	Logger    *zerolog.Logger
}

// New constructs a Manager over reg with package defaults.
func New(reg []types.ModelDefinition) *Manager {
	return NewWithConfig(ManagerConfig{Registry: reg})
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateLoading,
		instances: make(map[string]*instance),
		byDomain:  make(map[string][]*instance),
		counters:  make(map[string]*counters),
		publisher: noopPublisher{},
		history:   cfg.History,
		log:       zerolog.Nop(),
		startTime: time.Now(),
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxInflight <= 0 {
		m.maxInflight = defaultMaxInflight
	} else {
		m.maxInflight = cfg.MaxInflight
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	switch {
	case cfg.CacheSize == 0:
		m.cache = newResultCache(defaultCacheSize)
	case cfg.CacheSize > 0:
		m.cache = newResultCache(cfg.CacheSize)
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	m.SetRegistry(cfg.Registry)
	return m
}
