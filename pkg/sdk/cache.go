package sdk

import (
	"context"
	"strings"
	"sync"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// CachePrefix groups every cached article list under one invalidation scope.
const CachePrefix = "articles"

// ListCache is the key-value cache the mutation coordinator drives. Keys are
// canonical list-query strings; values are whole result pages. Cached lists
// are a rebuildable projection, never a source of truth.
type ListCache interface {
	Get(ctx context.Context, key string) (schema.ListResult, bool)
	Set(ctx context.Context, key string, val schema.ListResult)
	Invalidate(ctx context.Context, prefix string)
	Keys(ctx context.Context, prefix string) []string
}

// ListKey derives the cache key for a parameter combination.
func ListKey(params schema.ListParams) string {
	return CachePrefix + "?" + encodeListParams(params)
}

// MemCache is the in-process ListCache. Values are deep-copied on the way in
// and out, so a snapshot taken from it is a true rollback target.
type MemCache struct {
	mu   sync.RWMutex
	data map[string]schema.ListResult
}

func NewMemCache() *MemCache {
	return &MemCache{data: make(map[string]schema.ListResult)}
}

func (m *MemCache) Get(ctx context.Context, key string) (schema.ListResult, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return schema.ListResult{}, false
	}
	return val.Clone(), true
}

func (m *MemCache) Set(ctx context.Context, key string, val schema.ListResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val.Clone()
}

func (m *MemCache) Invalidate(ctx context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
}

func (m *MemCache) Keys(ctx context.Context, prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}
