// Package engine implements the authoritative article state machine: patch
// merging, field-level diffing, audit-entry classification and list queries,
// layered over an injected Storage backend.
package engine

import (
	"context"
	"errors"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// ErrArticleNotFound is returned when a requested article does not exist.
var ErrArticleNotFound = errors.New("article not found")

// ErrInvalidScheduleTime is returned when a schedule request carries a
// timestamp that is not RFC 3339.
var ErrInvalidScheduleTime = errors.New("invalid schedule time")

// Storage is the persistence capability the transition engine requires.
// The engine never reaches around it, so a durable backend can replace the
// in-memory one without touching transition logic.
type Storage interface {
	// Get returns the article with the given id, or ErrArticleNotFound.
	Get(ctx context.Context, id string) (schema.Article, error)
	// Upsert stores the article as the new authoritative state.
	Upsert(ctx context.Context, a schema.Article) error
	// All returns every stored article in stable insertion order.
	All(ctx context.Context) ([]schema.Article, error)
}

// CopyStorage copies every article from src into dst.
// This works for:
// - Memory -> Postgres (seeding a durable backend)
// - Postgres -> Memory (offline snapshot/export)
func CopyStorage(ctx context.Context, src, dst Storage) (int, error) {
	articles, err := src.All(ctx)
	if err != nil {
		return 0, err
	}
	for i, a := range articles {
		if err := dst.Upsert(ctx, a); err != nil {
			return i, err
		}
	}
	return len(articles), nil
}
