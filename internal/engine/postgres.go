package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// PostgresStorage is a durable Storage backend. The audit log is stored as a
// JSONB document alongside the columns the list queries filter on.
type PostgresStorage struct {
	db *sql.DB
}

// OpenPostgres connects with a lib/pq DSN, verifies the connection and
// ensures the schema exists.
func OpenPostgres(dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStorage{db: db}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS articles (
			pos            BIGSERIAL,
			id             TEXT PRIMARY KEY,
			headline       TEXT NOT NULL,
			status         TEXT NOT NULL,
			priority       TEXT NOT NULL,
			category       TEXT NOT NULL DEFAULT '',
			region         TEXT NOT NULL DEFAULT '',
			author         TEXT NOT NULL DEFAULT '',
			updated_at     TEXT NOT NULL,
			scheduled_at   TEXT NOT NULL DEFAULT '',
			tags           TEXT[] NOT NULL DEFAULT '{}',
			has_hero_image BOOLEAN NOT NULL DEFAULT FALSE,
			has_caption    BOOLEAN NOT NULL DEFAULT FALSE,
			audit_log      JSONB NOT NULL DEFAULT '[]'
		)`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) Get(ctx context.Context, id string) (schema.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, headline, status, priority, category, region, author,
		       updated_at, scheduled_at, tags, has_hero_image, has_caption, audit_log
		FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return schema.Article{}, ErrArticleNotFound
	}
	return a, err
}

func (s *PostgresStorage) Upsert(ctx context.Context, a schema.Article) error {
	auditLog, err := json.Marshal(a.AuditLog)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (id, headline, status, priority, category, region, author,
		                      updated_at, scheduled_at, tags, has_hero_image, has_caption, audit_log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			headline = EXCLUDED.headline,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			category = EXCLUDED.category,
			region = EXCLUDED.region,
			author = EXCLUDED.author,
			updated_at = EXCLUDED.updated_at,
			scheduled_at = EXCLUDED.scheduled_at,
			tags = EXCLUDED.tags,
			has_hero_image = EXCLUDED.has_hero_image,
			has_caption = EXCLUDED.has_caption,
			audit_log = EXCLUDED.audit_log`,
		a.ID, a.Headline, string(a.Status), string(a.Priority), a.Category, a.Region, a.Author,
		a.UpdatedAt, a.ScheduledAt, pq.Array(a.Tags), a.HasHeroImage, a.HasCaption, auditLog)
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", a.ID, err)
	}
	return nil
}

func (s *PostgresStorage) All(ctx context.Context) ([]schema.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, headline, status, priority, category, region, author,
		       updated_at, scheduled_at, tags, has_hero_image, has_caption, audit_log
		FROM articles ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []schema.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (schema.Article, error) {
	var a schema.Article
	var status, priority string
	var auditLog []byte
	err := row.Scan(&a.ID, &a.Headline, &status, &priority, &a.Category, &a.Region, &a.Author,
		&a.UpdatedAt, &a.ScheduledAt, pq.Array(&a.Tags), &a.HasHeroImage, &a.HasCaption, &auditLog)
	if err != nil {
		return schema.Article{}, err
	}
	a.Status = schema.Status(status)
	a.Priority = schema.Priority(priority)
	if err := json.Unmarshal(auditLog, &a.AuditLog); err != nil {
		return schema.Article{}, err
	}
	return a, nil
}
