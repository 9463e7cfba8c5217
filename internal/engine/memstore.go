package engine

import (
	"context"
	"sync"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// MemStorage is the thread-safe in-memory article backend.
// Articles keep stable insertion order so list queries are deterministic
// before sorting.
type MemStorage struct {
	mu        sync.RWMutex
	articles  []schema.Article
	index     map[string]int
	persister *Persistence
	wg        sync.WaitGroup
}

// NewMemStorage initializes a backend.
// It accepts existing articles (from Persistence.Load) and a persister.
func NewMemStorage(initial []schema.Article, p *Persistence) *MemStorage {
	m := &MemStorage{
		index:     make(map[string]int, len(initial)),
		persister: p,
	}
	for _, a := range initial {
		m.index[a.ID] = len(m.articles)
		m.articles = append(m.articles, a.Clone())
	}
	return m
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStorage) Wait() {
	m.wg.Wait()
}

func (m *MemStorage) Get(ctx context.Context, id string) (schema.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.index[id]
	if !ok {
		return schema.Article{}, ErrArticleNotFound
	}
	return m.articles[idx].Clone(), nil
}

func (m *MemStorage) Upsert(ctx context.Context, a schema.Article) error {
	m.mu.Lock()
	if idx, ok := m.index[a.ID]; ok {
		m.articles[idx] = a.Clone()
	} else {
		m.index[a.ID] = len(m.articles)
		m.articles = append(m.articles, a.Clone())
	}

	// Deep copy the current state to save safely in background
	snapshot := m.copyAll()
	m.mu.Unlock()

	if m.persister != nil {
		m.wg.Add(1)
		go func(articles []schema.Article) {
			defer m.wg.Done()
			m.persister.Save(articles)
		}(snapshot)
	}
	return nil
}

func (m *MemStorage) All(ctx context.Context) ([]schema.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyAll(), nil
}

// copyAll creates a deep copy of the article slice.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStorage) copyAll() []schema.Article {
	out := make([]schema.Article, len(m.articles))
	for i, a := range m.articles {
		out[i] = a.Clone()
	}
	return out
}
