package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

func testArticle(id string, status schema.Status, priority schema.Priority) schema.Article {
	return schema.Article{
		ID:        id,
		Headline:  "Headline " + id,
		Status:    status,
		Priority:  priority,
		Category:  "Business",
		Region:    "National",
		Author:    "Desk",
		UpdatedAt: "2026-08-01T10:00:00Z",
	}
}

func newTestEngine(t *testing.T, articles ...schema.Article) *Engine {
	t.Helper()
	return New(NewMemStorage(articles, nil))
}

func TestPatchArticle_NotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.PatchArticle(context.Background(), "missing", schema.ArticlePatch{})
	if !errors.Is(err, ErrArticleNotFound) {
		t.Errorf("Expected ErrArticleNotFound, got %v", err)
	}
}

func TestPatchArticle_AppendsAuditEntry(t *testing.T) {
	e := newTestEngine(t, testArticle("a1", schema.StatusDraft, schema.PriorityLow))

	headline := "Fresh headline"
	updated, err := e.PatchArticle(context.Background(), "a1", schema.ArticlePatch{Headline: &headline})
	if err != nil {
		t.Fatalf("PatchArticle failed: %v", err)
	}

	if updated.Headline != "Fresh headline" {
		t.Errorf("Expected merged headline, got %q", updated.Headline)
	}
	if len(updated.AuditLog) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(updated.AuditLog))
	}
	evt := updated.AuditLog[0]
	if evt.Action != schema.ActionUpdated || evt.Message != "Article updated" {
		t.Errorf("Unexpected entry: %s %q", evt.Action, evt.Message)
	}
	change, ok := evt.Diff["headline"]
	if !ok || *change.From != "Headline a1" || *change.To != "Fresh headline" {
		t.Errorf("Unexpected diff: %v", evt.Diff)
	}
}

func TestPatchArticle_Idempotence(t *testing.T) {
	e := newTestEngine(t, testArticle("a1", schema.StatusDraft, schema.PriorityLow))
	ctx := context.Background()
	headline := "X"

	first, err := e.PatchArticle(ctx, "a1", schema.ArticlePatch{Headline: &headline})
	if err != nil {
		t.Fatalf("First patch failed: %v", err)
	}
	second, err := e.PatchArticle(ctx, "a1", schema.ArticlePatch{Headline: &headline})
	if err != nil {
		t.Fatalf("Second patch failed: %v", err)
	}

	if len(second.AuditLog) != 2 {
		t.Fatalf("Expected 2 entries after 2 patches, got %d", len(second.AuditLog))
	}
	if second.AuditLog[0].ID == first.AuditLog[0].ID {
		t.Error("Each patch must produce a distinct audit entry")
	}
	// The second patch changed nothing, so its entry carries no diff.
	if second.AuditLog[0].Diff != nil {
		t.Errorf("Expected no diff on no-op patch, got %v", second.AuditLog[0].Diff)
	}
}

func TestPatchArticle_StatusTransitions(t *testing.T) {
	ctx := context.Background()

	review := schema.StatusInReview
	e := newTestEngine(t, testArticle("a1", schema.StatusDraft, schema.PriorityLow))
	updated, err := e.PatchArticle(ctx, "a1", schema.ArticlePatch{Status: &review})
	if err != nil {
		t.Fatalf("PatchArticle failed: %v", err)
	}
	if updated.AuditLog[0].Action != schema.ActionSentToReview {
		t.Errorf("Expected SENT_TO_REVIEW, got %s", updated.AuditLog[0].Action)
	}

	published := schema.StatusPublished
	unset := ""
	a := testArticle("a2", schema.StatusScheduled, schema.PriorityLow)
	a.ScheduledAt = "2026-09-02T10:00:00Z"
	e = newTestEngine(t, a)
	updated, err = e.PatchArticle(ctx, "a2", schema.ArticlePatch{Status: &published, ScheduledAt: &unset})
	if err != nil {
		t.Fatalf("PatchArticle failed: %v", err)
	}
	if updated.AuditLog[0].Action != schema.ActionPublished {
		t.Errorf("Expected PUBLISHED, got %s", updated.AuditLog[0].Action)
	}
	if updated.ScheduledAt != "" {
		t.Errorf("Publishing must clear scheduledAt, got %q", updated.ScheduledAt)
	}
}

func TestScheduleArticle(t *testing.T) {
	e := newTestEngine(t, testArticle("a1", schema.StatusDraft, schema.PriorityLow))

	updated, err := e.ScheduleArticle(context.Background(), "a1", "2026-09-02T15:30:00Z")
	if err != nil {
		t.Fatalf("ScheduleArticle failed: %v", err)
	}
	if updated.Status != schema.StatusScheduled {
		t.Errorf("Expected SCHEDULED status, got %s", updated.Status)
	}
	if updated.ScheduledAt != "2026-09-02T15:30:00Z" {
		t.Errorf("Unexpected scheduledAt: %q", updated.ScheduledAt)
	}
	evt := updated.AuditLog[0]
	if evt.Action != schema.ActionScheduled {
		t.Errorf("Expected SCHEDULED action, got %s", evt.Action)
	}
	if evt.Message != "Scheduled for Sep 2, 2026 3:30 PM" {
		t.Errorf("Unexpected message: %q", evt.Message)
	}
}

func TestScheduleArticle_InvalidTime(t *testing.T) {
	e := newTestEngine(t, testArticle("a1", schema.StatusDraft, schema.PriorityLow))
	_, err := e.ScheduleArticle(context.Background(), "a1", "tomorrow-ish")
	if !errors.Is(err, ErrInvalidScheduleTime) {
		t.Errorf("Expected ErrInvalidScheduleTime, got %v", err)
	}
}

func TestCreateArticle(t *testing.T) {
	e := newTestEngine(t)
	a, err := e.CreateArticle(context.Background(), schema.Article{Headline: "Brand new"})
	if err != nil {
		t.Fatalf("CreateArticle failed: %v", err)
	}
	if a.ID == "" || a.Status != schema.StatusDraft {
		t.Errorf("Unexpected created article: %+v", a)
	}
	if len(a.AuditLog) != 1 || a.AuditLog[0].Action != schema.ActionCreated {
		t.Errorf("Expected CREATED entry, got %v", a.AuditLog)
	}
}

func TestListArticles_PrioritySort(t *testing.T) {
	e := newTestEngine(t,
		testArticle("a1", schema.StatusDraft, schema.PriorityLow),
		testArticle("a2", schema.StatusDraft, schema.PriorityHigh),
		testArticle("a3", schema.StatusDraft, schema.PriorityMedium),
	)

	result, err := e.ListArticles(context.Background(), schema.ListParams{
		Sort:  schema.SortPriority,
		Order: schema.OrderDesc,
	})
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}

	var got []schema.Priority
	for _, a := range result.Items {
		got = append(got, a.Priority)
	}
	want := []schema.Priority{schema.PriorityHigh, schema.PriorityMedium, schema.PriorityLow}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
}

func TestListArticles_ScheduledAtSort(t *testing.T) {
	a1 := testArticle("a1", schema.StatusScheduled, schema.PriorityLow)
	a1.ScheduledAt = "2026-09-03T10:00:00Z"
	a2 := testArticle("a2", schema.StatusDraft, schema.PriorityLow) // no scheduledAt
	a3 := testArticle("a3", schema.StatusScheduled, schema.PriorityLow)
	a3.ScheduledAt = "2026-09-02T10:00:00Z"

	e := newTestEngine(t, a1, a2, a3)
	result, err := e.ListArticles(context.Background(), schema.ListParams{
		Sort:  schema.SortScheduledAt,
		Order: schema.OrderAsc,
	})
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}

	// Absent scheduledAt sorts first ascending.
	if result.Items[0].ID != "a2" || result.Items[1].ID != "a3" || result.Items[2].ID != "a1" {
		t.Errorf("Unexpected order: %s %s %s", result.Items[0].ID, result.Items[1].ID, result.Items[2].ID)
	}
}

func TestListArticles_Pagination(t *testing.T) {
	var articles []schema.Article
	for i := 0; i < 57; i++ {
		articles = append(articles, testArticle(fmt.Sprintf("a%02d", i), schema.StatusDraft, schema.PriorityLow))
	}
	e := newTestEngine(t, articles...)
	ctx := context.Background()

	for page, wantLen := range map[int]int{1: 25, 2: 25, 3: 7, 4: 0} {
		result, err := e.ListArticles(ctx, schema.ListParams{Page: page, PageSize: 25})
		if err != nil {
			t.Fatalf("ListArticles page %d failed: %v", page, err)
		}
		if result.Total != 57 {
			t.Errorf("Page %d: expected total 57, got %d", page, result.Total)
		}
		if len(result.Items) != wantLen {
			t.Errorf("Page %d: expected %d items, got %d", page, wantLen, len(result.Items))
		}
	}
}

func TestListArticles_PageSizeClamped(t *testing.T) {
	e := newTestEngine(t, testArticle("a1", schema.StatusDraft, schema.PriorityLow))
	ctx := context.Background()

	result, _ := e.ListArticles(ctx, schema.ListParams{PageSize: 1})
	if result.PageSize != schema.MinPageSize {
		t.Errorf("Expected clamp to %d, got %d", schema.MinPageSize, result.PageSize)
	}
	result, _ = e.ListArticles(ctx, schema.ListParams{PageSize: 500})
	if result.PageSize != schema.MaxPageSize {
		t.Errorf("Expected clamp to %d, got %d", schema.MaxPageSize, result.PageSize)
	}
}

func TestListArticles_Search(t *testing.T) {
	a := testArticle("a1", schema.StatusDraft, schema.PriorityLow)
	a.Headline = "Budget 2024"
	b := testArticle("a2", schema.StatusDraft, schema.PriorityLow)
	b.Headline = "Match report"

	e := newTestEngine(t, a, b)
	result, err := e.ListArticles(context.Background(), schema.ListParams{Query: "budget"})
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "a1" {
		t.Errorf("Expected case-insensitive substring match on a1, got %+v", result.Items)
	}
}

func TestListArticles_Filters(t *testing.T) {
	a := testArticle("a1", schema.StatusDraft, schema.PriorityLow)
	b := testArticle("a2", schema.StatusInReview, schema.PriorityHigh)
	c := testArticle("a3", schema.StatusPublished, schema.PriorityHigh)

	e := newTestEngine(t, a, b, c)
	result, err := e.ListArticles(context.Background(), schema.ListParams{
		Status:   []string{"IN_REVIEW", "PUBLISHED"},
		Priority: []string{"HIGH"},
	})
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Expected 2 matches, got %d", result.Total)
	}
}

func TestMemStorage_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "newsdesk-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	p, err := NewPersistence(tmpDir)
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}

	ms := NewMemStorage(nil, p)
	ctx := context.Background()
	if err := ms.Upsert(ctx, testArticle("a1", schema.StatusDraft, schema.PriorityLow)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	ms.Wait() // Wait for background persistence

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "a1" {
		t.Errorf("Loaded data mismatch: %+v", loaded)
	}

	ms2 := NewMemStorage(loaded, p)
	got, err := ms2.Get(ctx, "a1")
	if err != nil || got.Headline != "Headline a1" {
		t.Errorf("Get on reloaded store: %+v, %v", got, err)
	}
}

func TestMemStorage_Concurrent(t *testing.T) {
	ms := NewMemStorage(nil, nil)
	ctx := context.Background()
	const (
		numGoroutines = 10
		numOps        = 50
	)
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				a := testArticle(fmt.Sprintf("a-%d-%d", id, j), schema.StatusDraft, schema.PriorityLow)
				ms.Upsert(ctx, a)
				if _, err := ms.Get(ctx, a.ID); err != nil {
					fmt.Printf("Concurrent error: %v\n", err)
				}
			}
		}(i)
	}
	wg.Wait()

	all, _ := ms.All(ctx)
	if len(all) != numGoroutines*numOps {
		t.Errorf("Expected %d articles, got %d", numGoroutines*numOps, len(all))
	}
}

func TestSeedArticles(t *testing.T) {
	articles := SeedArticles(50)
	if len(articles) != 50 {
		t.Fatalf("Expected 50 articles, got %d", len(articles))
	}
	for _, a := range articles {
		if a.ID == "" || a.Headline == "" {
			t.Fatalf("Seeded article missing identity: %+v", a)
		}
		if a.Status == schema.StatusScheduled && a.ScheduledAt == "" {
			t.Error("Scheduled article must carry a scheduledAt")
		}
		if a.Status != schema.StatusScheduled && a.ScheduledAt != "" {
			t.Error("Only scheduled articles carry a scheduledAt")
		}
		if _, err := time.Parse(time.RFC3339, a.UpdatedAt); err != nil {
			t.Errorf("Bad updatedAt %q: %v", a.UpdatedAt, err)
		}
		if len(a.AuditLog) < 2 {
			t.Error("Seeded article must have an audit history")
		}
	}
}
