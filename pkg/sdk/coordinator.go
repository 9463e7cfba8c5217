package sdk

import (
	"context"
	"sync"
	"time"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/audit"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// minScheduleLead is how far in the future a schedule target must be.
const minScheduleLead = time.Minute

// Coordinator owns the optimistic-update lifecycle for the cached article
// lists: it applies a speculative patch plus a synthetic audit entry before
// the server confirms, then reconciles or rolls back once the authoritative
// response arrives. Overlapping mutations on shared lists are last-write-wins.
type Coordinator struct {
	remote Newsdesk
	cache  ListCache

	mu       sync.Mutex
	known    map[string]schema.ListParams // cache key -> originating query
	inflight map[int]context.CancelFunc   // background refetches in flight
	nextID   int

	refetches sync.WaitGroup
}

// NewCoordinator wires a remote store to a list cache.
func NewCoordinator(remote Newsdesk, cache ListCache) *Coordinator {
	return &Coordinator{
		remote:   remote,
		cache:    cache,
		known:    make(map[string]schema.ListParams),
		inflight: make(map[int]context.CancelFunc),
	}
}

// PendingMutation is the rollback handle for one optimistic write.
type PendingMutation struct {
	snapshot map[string]schema.ListResult
}

// ListArticles serves a list query from cache, fetching and filling on miss.
func (c *Coordinator) ListArticles(ctx context.Context, params schema.ListParams) (schema.ListResult, error) {
	key := ListKey(params)

	c.mu.Lock()
	c.known[key] = params
	c.mu.Unlock()

	if cached, ok := c.cache.Get(ctx, key); ok {
		return cached, nil
	}

	result, err := c.remote.ListArticles(ctx, params)
	if err != nil {
		return schema.ListResult{}, err
	}
	c.cache.Set(ctx, key, result)
	return result, nil
}

// GetArticle bypasses the list cache; single fetches are always authoritative.
func (c *Coordinator) GetArticle(ctx context.Context, id string) (schema.Article, error) {
	return c.remote.GetArticle(ctx, id)
}

// UpdateArticle runs the full optimistic lifecycle for a generic field patch:
// speculative cache write, request, commit or rollback, then invalidation.
func (c *Coordinator) UpdateArticle(ctx context.Context, id string, patch schema.ArticlePatch) (schema.Article, error) {
	pending := c.ApplyOptimistic(ctx, id, patch)
	defer c.Finalize()

	updated, err := c.remote.PatchArticle(ctx, id, patch)
	if err != nil {
		c.Rollback(ctx, pending)
		return schema.Article{}, err
	}
	c.Commit(ctx, id, updated)
	return updated, nil
}

// ScheduleArticle validates the target time locally, then runs the optimistic
// lifecycle against the dedicated schedule endpoint.
func (c *Coordinator) ScheduleArticle(ctx context.Context, id string, scheduledAt string) (schema.Article, error) {
	target, err := time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		return schema.Article{}, err
	}
	if time.Until(target) < minScheduleLead {
		return schema.Article{}, ErrScheduleTooSoon
	}

	status := schema.StatusScheduled
	patch := schema.ArticlePatch{Status: &status, ScheduledAt: &scheduledAt}

	pending := c.ApplyOptimistic(ctx, id, patch)
	defer c.Finalize()

	updated, err := c.remote.ScheduleArticle(ctx, id, scheduledAt)
	if err != nil {
		c.Rollback(ctx, pending)
		return schema.Article{}, err
	}
	c.Commit(ctx, id, updated)
	return updated, nil
}

// SendToReview moves an article to IN_REVIEW.
func (c *Coordinator) SendToReview(ctx context.Context, id string) (schema.Article, error) {
	status := schema.StatusInReview
	return c.UpdateArticle(ctx, id, schema.ArticlePatch{Status: &status})
}

// Publish moves an article to PUBLISHED and clears any pending schedule.
func (c *Coordinator) Publish(ctx context.Context, id string) (schema.Article, error) {
	status := schema.StatusPublished
	unset := ""
	return c.UpdateArticle(ctx, id, schema.ArticlePatch{Status: &status, ScheduledAt: &unset})
}

// ApplyOptimistic quiesces in-flight refetches, snapshots every cached list,
// and rewrites each cached occurrence of the article with the locally merged
// next state plus a synthetic audit entry. The returned handle carries the
// snapshot for rollback.
func (c *Coordinator) ApplyOptimistic(ctx context.Context, id string, patch schema.ArticlePatch) *PendingMutation {
	c.cancelRefetches()

	snapshot := make(map[string]schema.ListResult)
	for _, key := range c.cache.Keys(ctx, CachePrefix) {
		if val, ok := c.cache.Get(ctx, key); ok {
			snapshot[key] = val
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for key, list := range snapshot {
		touched := false
		next := list.Clone()
		for i, a := range next.Items {
			if a.ID != id {
				continue
			}
			merged := audit.MergePatch(a, patch)
			merged.UpdatedAt = now

			diff := audit.ComputeDiff(a, merged)
			action, message := audit.Classify(patch)
			merged.AuditLog = audit.Prepend(merged.AuditLog, audit.NewEvent(action, message, diff))

			next.Items[i] = merged
			touched = true
		}
		if touched {
			c.cache.Set(ctx, key, next)
		}
	}

	return &PendingMutation{snapshot: snapshot}
}

// Commit replaces the article verbatim in every cached list. The server's
// entry supersedes the synthetic one; no merging or deduplication happens.
func (c *Coordinator) Commit(ctx context.Context, id string, server schema.Article) {
	for _, key := range c.cache.Keys(ctx, CachePrefix) {
		list, ok := c.cache.Get(ctx, key)
		if !ok {
			continue
		}
		touched := false
		for i, a := range list.Items {
			if a.ID == id {
				list.Items[i] = server.Clone()
				touched = true
			}
		}
		if touched {
			c.cache.Set(ctx, key, list)
		}
	}
}

// Rollback restores every snapshotted list, discarding all speculative
// writes. The whole cache entry is restored, never a single entity.
func (c *Coordinator) Rollback(ctx context.Context, p *PendingMutation) {
	if p == nil {
		return
	}
	for key, val := range p.snapshot {
		c.cache.Set(ctx, key, val)
	}
}

// Finalize marks every cached list stale and kicks fire-and-forget refetches
// so the cache re-synchronizes with the server within one cycle. It runs on
// success and failure alike.
func (c *Coordinator) Finalize() {
	ctx := context.Background()
	keys := c.cache.Keys(ctx, CachePrefix)
	c.cache.Invalidate(ctx, CachePrefix)
	for _, key := range keys {
		c.spawnRefetch(key)
	}
}

// Wait blocks until all background refetches complete.
func (c *Coordinator) Wait() {
	c.refetches.Wait()
}

func (c *Coordinator) spawnRefetch(key string) {
	c.mu.Lock()
	params, ok := c.known[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	rctx, cancel := context.WithCancel(context.Background())
	rid := c.nextID
	c.nextID++
	c.inflight[rid] = cancel
	c.mu.Unlock()

	c.refetches.Add(1)
	go func() {
		defer c.refetches.Done()
		defer func() {
			c.mu.Lock()
			delete(c.inflight, rid)
			c.mu.Unlock()
		}()

		result, err := c.remote.ListArticles(rctx, params)
		if err != nil || rctx.Err() != nil {
			// A superseded or failed refetch must not overwrite newer state.
			return
		}
		c.cache.Set(rctx, key, result)
	}()
}

// cancelRefetches quiesces in-flight refetches so a stale fetch cannot land
// on top of a speculative write.
func (c *Coordinator) cancelRefetches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, cancel := range c.inflight {
		cancel()
		delete(c.inflight, id)
	}
}
