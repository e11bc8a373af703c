package manager

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"predictd/internal/scoring"
	"predictd/pkg/types"
)

// resultCache memoizes per-record scoring results. Scoring is deterministic,
// so a hit is indistinguishable from recomputation.
type resultCache struct {
	lru    *lru.Cache[string, scoring.Result]
	hits   atomic.Uint64
	misses atomic.Uint64
}

func newResultCache(size int) *resultCache {
	c, err := lru.New[string, scoring.Result](size)
	if err != nil {
		return nil
	}
	return &resultCache{lru: c}
}

func (c *resultCache) get(key string) (scoring.Result, bool) {
	r, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return r, ok
}

func (c *resultCache) put(key string, r scoring.Result) { c.lru.Add(key, r) }

func (c *resultCache) purge() { c.lru.Purge() }

func (c *resultCache) len() int { return c.lru.Len() }

// cacheKey canonicalizes a record: model identity and registry generation
// followed by the record's features in sorted order.
func cacheKey(inst *instance, rec types.FeatureRecord) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(inst.def.Name)
	b.WriteByte(0)
	b.WriteString(inst.def.Version)
	b.WriteByte(0)
	b.WriteString(strconv.FormatUint(inst.gen, 10))
	for _, k := range keys {
		b.WriteByte(0)
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(rec[k], 'g', -1, 64))
	}
	return b.String()
}
