package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/audit"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// Engine applies authoritative state transitions to stored articles.
//
// Concurrent patches to the same article are last-write-wins: there is no
// version counter, so two simultaneous writers silently clobber each other.
type Engine struct {
	storage Storage
}

// New creates an engine over the given storage backend.
func New(s Storage) *Engine {
	return &Engine{storage: s}
}

// PatchArticle merges a partial update into the stored article, records the
// resulting audit entry and returns the full new state.
func (e *Engine) PatchArticle(ctx context.Context, id string, patch schema.ArticlePatch) (schema.Article, error) {
	prev, err := e.storage.Get(ctx, id)
	if err != nil {
		return schema.Article{}, err
	}

	next := audit.MergePatch(prev, patch)
	next.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	diff := audit.ComputeDiff(prev, next)
	action, message := audit.Classify(patch)
	next.AuditLog = audit.Prepend(next.AuditLog, audit.NewEvent(action, message, diff))

	if err := e.storage.Upsert(ctx, next); err != nil {
		return schema.Article{}, fmt.Errorf("persisting article %s: %w", id, err)
	}
	return next, nil
}

// ScheduleArticle moves the article to SCHEDULED with the given target time.
func (e *Engine) ScheduleArticle(ctx context.Context, id string, scheduledAt string) (schema.Article, error) {
	if _, err := time.Parse(time.RFC3339, scheduledAt); err != nil {
		return schema.Article{}, fmt.Errorf("%w: %q", ErrInvalidScheduleTime, scheduledAt)
	}

	status := schema.StatusScheduled
	return e.PatchArticle(ctx, id, schema.ArticlePatch{
		Status:      &status,
		ScheduledAt: &scheduledAt,
	})
}

// GetArticle returns a single article by id.
func (e *Engine) GetArticle(ctx context.Context, id string) (schema.Article, error) {
	return e.storage.Get(ctx, id)
}

// CreateArticle stores a new draft and returns it with its CREATED entry.
func (e *Engine) CreateArticle(ctx context.Context, a schema.Article) (schema.Article, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = schema.StatusDraft
	}
	if a.Priority == "" {
		a.Priority = schema.PriorityMedium
	}
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	a.AuditLog = audit.Prepend(a.AuditLog, audit.NewEvent(schema.ActionCreated, "Article created", nil))

	if err := e.storage.Upsert(ctx, a); err != nil {
		return schema.Article{}, fmt.Errorf("persisting article %s: %w", a.ID, err)
	}
	return a, nil
}

// ListArticles filters, sorts and paginates the stored articles.
func (e *Engine) ListArticles(ctx context.Context, params schema.ListParams) (schema.ListResult, error) {
	params = params.Normalize()

	all, err := e.storage.All(ctx)
	if err != nil {
		return schema.ListResult{}, err
	}

	filtered := all[:0]
	for _, a := range all {
		if matchesSearch(a, params.Query) && matchesFilters(a, params) {
			filtered = append(filtered, a)
		}
	}

	sortArticles(filtered, params.Sort, params.Order)

	total := len(filtered)
	start := (params.Page - 1) * params.PageSize
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	return schema.ListResult{
		Items:    filtered[start:end],
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// matchesSearch reports whether the query term substring-matches any of
// headline, author, category or region, case-insensitively.
func matchesSearch(a schema.Article, q string) bool {
	s := strings.ToLower(strings.TrimSpace(q))
	if s == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Headline), s) ||
		strings.Contains(strings.ToLower(a.Author), s) ||
		strings.Contains(strings.ToLower(a.Category), s) ||
		strings.Contains(strings.ToLower(a.Region), s)
}

func matchesFilters(a schema.Article, p schema.ListParams) bool {
	return inSet(p.Status, string(a.Status)) &&
		inSet(p.Region, a.Region) &&
		inSet(p.Category, a.Category) &&
		inSet(p.Priority, string(a.Priority))
}

// inSet treats an empty set as "no filter on this field".
func inSet(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func sortArticles(items []schema.Article, key, order string) {
	sort.SliceStable(items, func(i, j int) bool {
		var cmp int
		switch key {
		case schema.SortPriority:
			cmp = items[i].Priority.Rank() - items[j].Priority.Rank()
		case schema.SortScheduledAt:
			// ISO-string comparison; absent sorts first ascending.
			cmp = strings.Compare(items[i].ScheduledAt, items[j].ScheduledAt)
		default:
			cmp = strings.Compare(items[i].UpdatedAt, items[j].UpdatedAt)
		}
		if order == schema.OrderAsc {
			return cmp < 0
		}
		return cmp > 0
	})
}
