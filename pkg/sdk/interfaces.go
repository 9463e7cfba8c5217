package sdk

import (
	"context"
	"errors"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

var (
	// ErrArticleNotFound is returned when a requested article does not exist.
	ErrArticleNotFound = errors.New("article not found")
	// ErrScheduleTooSoon is returned when a schedule target is less than one
	// minute in the future. Rejected client-side, before any request is sent.
	ErrScheduleTooSoon = errors.New("schedule time must be at least 1 minute in the future")
)

// --- Functional Interfaces (Interface Segregation) ---

// ArticleLister runs filtered, sorted, paginated list queries.
type ArticleLister interface {
	ListArticles(ctx context.Context, params schema.ListParams) (schema.ListResult, error)
}

// ArticleReader fetches single articles.
type ArticleReader interface {
	GetArticle(ctx context.Context, id string) (schema.Article, error)
}

// ArticleMutator applies state transitions.
type ArticleMutator interface {
	PatchArticle(ctx context.Context, id string, patch schema.ArticlePatch) (schema.Article, error)
	ScheduleArticle(ctx context.Context, id string, scheduledAt string) (schema.Article, error)
}

// ArticleCreator adds new drafts.
type ArticleCreator interface {
	CreateArticle(ctx context.Context, a schema.Article) (schema.Article, error)
}

// --- Composite Interface ---

// Newsdesk is the full article contract. The server engine implements it
// in-process and Client implements it over HTTP; both sides of the wire
// honor the same semantics.
type Newsdesk interface {
	ArticleLister
	ArticleReader
	ArticleMutator
	ArticleCreator
}
